package gviz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/spreadsheets/d/sheet-123/gviz/tq", r.URL.Path)
		assert.Equal(t, "out:json", r.URL.Query().Get("tqx"))
		assert.Equal(t, "869590810", r.URL.Query().Get("gid"))
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write(wrap(testTable))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	rows, err := client.Query(context.Background(), "sheet-123", "869590810")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme Corp", rows[0].Text("Company Name"))
}

func TestQuery_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	rows, err := client.Query(context.Background(), "sheet", "0")
	require.Error(t, err)
	assert.Nil(t, rows)
	assert.Contains(t, err.Error(), "502")
}

func TestQuery_MalformedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"table":{}}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Query(context.Background(), "sheet", "0")
	require.Error(t, err)
}

func TestQuery_HTMLLoginPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<!DOCTYPE html><html><head><title>Sign in</title></head><body></body></html>"))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL))
	_, err := client.Query(context.Background(), "private", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode table")
}

func TestQuery_RequiresIDs(t *testing.T) {
	client := NewClient(WithBaseURL("http://unused"))
	_, err := client.Query(context.Background(), "", "0")
	assert.Error(t, err)
}

func TestQueryURL(t *testing.T) {
	assert.Equal(t,
		"https://docs.google.com/spreadsheets/d/abc/gviz/tq?tqx=out:json&gid=0",
		QueryURL(defaultBaseURL, "abc", "0"),
	)
}
