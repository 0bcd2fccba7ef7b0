package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fba-resolver/internal/catalog"
	"github.com/sells-group/fba-resolver/internal/model"
	"github.com/sells-group/fba-resolver/internal/provider"
	"github.com/sells-group/fba-resolver/internal/store"
	"github.com/sells-group/fba-resolver/pkg/auditapi"
	"github.com/sells-group/fba-resolver/pkg/directory"
	"github.com/sells-group/fba-resolver/pkg/gviz"
)

const gvizPrefix = "/*O_o*/\ngoogle.visualization.Query.setResponse("

// gvizTable renders rows in the wrapped gviz wire format. The first row is
// the header.
func gvizTable(t *testing.T, rows ...[]string) string {
	t.Helper()
	type col struct {
		ID    string `json:"id"`
		Label string `json:"label"`
		Type  string `json:"type"`
	}
	type cell struct {
		V string `json:"v"`
	}
	type row struct {
		C []*cell `json:"c"`
	}

	var cols []col
	for i, label := range rows[0] {
		cols = append(cols, col{ID: string(rune('A' + i)), Label: label, Type: "string"})
	}
	var body []row
	for _, r := range rows[1:] {
		var cells []*cell
		for _, v := range r {
			if v == "" {
				cells = append(cells, nil)
				continue
			}
			cells = append(cells, &cell{V: v})
		}
		body = append(body, row{C: cells})
	}

	payload, err := json.Marshal(map[string]any{
		"version": "0.6",
		"status":  "ok",
		"table":   map[string]any{"cols": cols, "rows": body},
	})
	require.NoError(t, err)
	return gvizPrefix + string(payload) + ");"
}

// backend serves the audit API, every default sheet, and the directory.
type backend struct {
	audit  map[string]int    // company -> status (200 serves auditBody)
	sheets map[string]string // sheet id -> wrapped body

	mu   sync.Mutex
	hits map[string]int
}

func (b *backend) hitCount(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

func (b *backend) paths() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for p := range b.hits {
		out = append(out, p)
	}
	return out
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.hits[r.URL.Path]++
	b.mu.Unlock()
	switch {
	case strings.HasPrefix(r.URL.Path, "/api/audit/"):
		name := strings.TrimPrefix(r.URL.Path, "/api/audit/")
		status, ok := b.audit[name]
		if !ok {
			status = http.StatusNotFound
		}
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"data":{"properties":{"title":"` + name + `","short_description":"from audit"}}}`))
		}
	case strings.HasPrefix(r.URL.Path, "/spreadsheets/d/"):
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/spreadsheets/d/"), "/gviz/tq")
		if r.URL.Query().Get("tqx") != "out:json" || r.URL.Query().Get("gid") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		body, ok := b.sheets[id]
		if !ok {
			body = gvizEmpty
		}
		_, _ = w.Write([]byte(body))
	case r.URL.Path == "/search":
		_, _ = w.Write([]byte(`{"companies":[]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

var gvizEmpty = gvizPrefix + `{"status":"ok","table":{"cols":[{"id":"A","label":"Company Name","type":"string"}],"rows":[]}}` + ");"

func newScenario(t *testing.T, b *backend, opts ...Option) *Resolver {
	t.Helper()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	cat, err := catalog.Default()
	require.NoError(t, err)
	reg, err := provider.FromCatalog(cat, provider.Clients{
		Audit:     auditapi.NewClient(auditapi.WithBaseURL(srv.URL)),
		Sheets:    gviz.NewClient(gviz.WithBaseURL(srv.URL)),
		Directory: directory.NewClient(directory.WithBaseURL(srv.URL)),
	})
	require.NoError(t, err)
	return New(reg.Adapters(), opts...)
}

func sheetID(t *testing.T, src model.Source) string {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	for _, p := range cat.Providers {
		if p.Source == src {
			return p.SheetID
		}
	}
	t.Fatalf("no sheet for %s", src)
	return ""
}

func TestScenario_ThirdProviderMatch(t *testing.T) {
	b := &backend{
		hits: map[string]int{},
		sheets: map[string]string{
			sheetID(t, model.SourceSmallcap): gvizTable(t,
				[]string{"Company Name", "Industry"},
				[]string{"Other Co", "Retail"},
			),
			sheetID(t, model.SourceKnowYourAI): gvizTable(t,
				[]string{"Company Name", "Industry", "Revenue"},
				[]string{"Acme Corp", "Robotics", "$5M"},
			),
			sheetID(t, model.SourceWaffler): gvizTable(t,
				[]string{"Company Name", "Industry Focus"},
				[]string{"Acme Corp", "Should not be reached"},
			),
		},
	}
	r := newScenario(t, b)

	out := r.Resolve(context.Background(), "Acme Corp")

	require.True(t, out.IsFound())
	assert.Equal(t, model.SourceKnowYourAI, out.Source)
	assert.Equal(t, "Acme Corp", out.Record.Name)
	assert.Equal(t, map[string]string{"Industry": "Robotics"}, out.Record.GroupMap(model.GroupGeneral))
	assert.Equal(t, map[string]string{"Revenue": "$5M"}, out.Record.GroupMap(model.GroupFinancial))
	assert.Len(t, out.Record.Groups, 2)
	assert.Zero(t, b.hitCount("/spreadsheets/d/"+sheetID(t, model.SourceWaffler)+"/gviz/tq"))
	assert.Zero(t, b.hitCount("/search"))

	raw, err := json.Marshal(out.Record)
	require.NoError(t, err)
	assert.JSONEq(t, `{"source":"knowyourai","name":"Acme Corp","groups":{"general":{"Industry":"Robotics"},"financial":{"Revenue":"$5M"}}}`, string(raw))
}

func TestScenario_AuditServerErrorFallsThrough(t *testing.T) {
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	b := &backend{
		hits:  map[string]int{},
		audit: map[string]int{"Beta LLC": http.StatusInternalServerError},
		sheets: map[string]string{
			sheetID(t, model.SourceSmallcap): gvizTable(t,
				[]string{"Company Name", "Industry", "Company Valuation"},
				[]string{"Beta LLC", "Fintech", "$40M"},
			),
		},
	}
	capture := &captureRecorder{}
	r := newScenario(t, b, WithRecorder(Recorders{capture, StoreRecorder{Store: st}}))

	out := r.Resolve(context.Background(), "Beta%20LLC")

	require.True(t, out.IsFound())
	assert.Equal(t, model.SourceSmallcap, out.Source)
	assert.Equal(t, "$40M", out.Record.Value(model.GroupFinancial, "Company Valuation"))

	require.Len(t, capture.failures, 1)
	assert.Equal(t, model.SourceAuditAPI, capture.failures[0].Source)
	assert.Equal(t, model.ErrProviderUnavailable, capture.failures[0].Kind)

	failures, err := st.ListFailures(context.Background(), store.FailureFilter{})
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, model.SourceAuditAPI, failures[0].Source)
	assert.Equal(t, "Beta LLC", failures[0].Company)
	assert.Equal(t, "transient", failures[0].FaultClass)

	resolutions, err := st.ListResolutions(context.Background(), store.ResolutionFilter{})
	require.NoError(t, err)
	require.Len(t, resolutions, 1)
	assert.Equal(t, "found", resolutions[0].Outcome)
	assert.Equal(t, model.SourceSmallcap, resolutions[0].Source)
	assert.Equal(t, failures[0].RequestID, resolutions[0].RequestID)
}

func TestScenario_AuditMatchWinsOverSheets(t *testing.T) {
	b := &backend{
		hits:  map[string]int{},
		audit: map[string]int{"Acme Corp": http.StatusOK},
	}
	r := newScenario(t, b)

	out := r.Resolve(context.Background(), "Acme Corp")

	require.True(t, out.IsFound())
	assert.Equal(t, model.SourceAuditAPI, out.Source)
	assert.Equal(t, "from audit", out.Record.Value(model.GroupGeneral, "properties.short_description"))
	for _, path := range b.paths() {
		assert.False(t, strings.HasPrefix(path, "/spreadsheets/"), path)
	}
}

func TestScenario_BrokenSheetIsSkipped(t *testing.T) {
	b := &backend{
		hits: map[string]int{},
		sheets: map[string]string{
			sheetID(t, model.SourceSmallcap): "<html>Sign in</html>",
			sheetID(t, model.SourceGait): gvizTable(t,
				[]string{"Company Name", "Industry"},
				[]string{"Stride", "Wearables"},
			),
		},
	}
	rec := &captureRecorder{}
	r := newScenario(t, b, WithRecorder(rec))

	out := r.Resolve(context.Background(), "Stride")

	require.True(t, out.IsFound())
	assert.Equal(t, model.SourceGait, out.Source)
	require.Len(t, rec.failures, 1)
	assert.Equal(t, model.SourceSmallcap, rec.failures[0].Source)
}

func TestScenario_NotFoundAnywhere(t *testing.T) {
	r := newScenario(t, &backend{hits: map[string]int{}})

	out := r.Resolve(context.Background(), "Nobody")

	assert.True(t, out.IsNotFound())
	assert.Empty(t, out.Unavailable)
}
