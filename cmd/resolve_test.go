package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fba-resolver/internal/model"
	"github.com/sells-group/fba-resolver/internal/provider"
	"github.com/sells-group/fba-resolver/internal/resolver"
)

type stubResolver struct {
	key string
	out model.Outcome
}

func (s *stubResolver) Resolve(_ context.Context, rawKey string) model.Outcome {
	s.key = rawKey
	return s.out
}

func TestResolveKey(t *testing.T) {
	tests := []struct {
		arg  string
		raw  bool
		want string
	}{
		{"Acme Corp", false, "Acme%20Corp"},
		{"AC/DC", false, "AC%2FDC"},
		{"100% Juice", false, "100%25%20Juice"},
		{"Foo+Bar", false, "Foo+Bar"},
		{"Acme%20Corp", true, "Acme%20Corp"},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveKey(tt.arg, tt.raw))
		})
	}
}

func TestResolveKey_RoundTrip(t *testing.T) {
	for _, name := range []string{"Acme Corp", "AC/DC", "100% Juice", "Foo+Bar", "Café Ltd."} {
		got, err := resolver.DecodeKey(resolveKey(name, false))
		require.NoError(t, err, name)
		assert.Equal(t, name, got)
	}
}

func TestResolveCompany_Found(t *testing.T) {
	rec := &model.Record{Source: model.SourceGait, Name: "Acme Corp"}
	r := &stubResolver{out: model.Found(rec)}
	var out, errOut bytes.Buffer

	err := resolveCompany(context.Background(), &out, &errOut, r, "Acme%20Corp")
	require.NoError(t, err)
	assert.Equal(t, "Acme%20Corp", r.key)

	var body map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Equal(t, "gait", body["source"])
	assert.Empty(t, errOut.String())
}

func TestResolveCompany_NotFound(t *testing.T) {
	var out, errOut bytes.Buffer
	err := resolveCompany(context.Background(), &out, &errOut, &stubResolver{out: model.NotFound()}, "Ghost")
	assert.ErrorIs(t, err, errNotFound)
	assert.Empty(t, out.String())
	assert.Empty(t, errOut.String())
}

func TestResolveCompany_Degraded(t *testing.T) {
	o := model.NotFound()
	o.Unavailable = []model.Source{model.SourceAuditAPI, model.SourceWaffler}
	var out, errOut bytes.Buffer

	err := resolveCompany(context.Background(), &out, &errOut, &stubResolver{out: o}, "Ghost")
	assert.ErrorIs(t, err, errNotFound)
	assert.Equal(t, "warning: providers unavailable: audit_api, waffler\n", errOut.String())
}

func TestResolveCompany_DecodeError(t *testing.T) {
	o := model.Failed(model.ErrDecode, "", errors.New("invalid URL escape"))
	var out, errOut bytes.Buffer

	err := resolveCompany(context.Background(), &out, &errOut, &stubResolver{out: o}, "%zz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid URL escape")
	assert.NotErrorIs(t, err, errNotFound)
}

type nameAdapter struct {
	src  model.Source
	name string
}

func (a nameAdapter) Source() model.Source { return a.src }

func (a nameAdapter) Resolve(_ context.Context, key string) model.Outcome {
	if key == a.name {
		return model.Found(&model.Record{Source: a.src, Name: key})
	}
	return model.NotFound()
}

func TestResolveCompany_WithResolver(t *testing.T) {
	r := resolver.New([]provider.Adapter{
		nameAdapter{src: model.SourceAuditAPI, name: "Other"},
		nameAdapter{src: model.SourceColive, name: "100% Juice"},
	}, resolver.WithRecorder(resolver.Recorders{}))
	var out, errOut bytes.Buffer

	require.NoError(t, resolveCompany(context.Background(), &out, &errOut, r, resolveKey("100% Juice", false)))
	assert.Contains(t, out.String(), `"source": "colive"`)
}
