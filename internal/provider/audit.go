package provider

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fba-resolver/internal/model"
	"github.com/sells-group/fba-resolver/internal/normalize"
	"github.com/sells-group/fba-resolver/internal/resilience"
	"github.com/sells-group/fba-resolver/pkg/auditapi"
)

// titleColumn holds the display name in a flattened audit.
const titleColumn = "properties.title"

// AuditAdapter resolves against the backend audit API.
type AuditAdapter struct {
	client auditapi.Client
	groups normalize.GroupMap
}

// NewAuditAdapter creates an audit adapter.
func NewAuditAdapter(client auditapi.Client, groups normalize.GroupMap) *AuditAdapter {
	return &AuditAdapter{client: client, groups: groups}
}

// Source returns model.SourceAuditAPI.
func (a *AuditAdapter) Source() model.Source { return model.SourceAuditAPI }

// Resolve fetches the audit for key. The backend answers a missing company
// with a 4xx or an empty data object, both of which are NotFound. Server
// errors, 408/425/429, transport faults and undecodable bodies are Failed.
func (a *AuditAdapter) Resolve(ctx context.Context, key string) model.Outcome {
	resp, err := a.client.GetAudit(ctx, key)
	if err != nil {
		var se *auditapi.StatusError
		if errors.As(err, &se) {
			if se.Code < 500 && !resilience.IsTransientHTTPStatus(se.Code) {
				return model.NotFound()
			}
			err = resilience.NewTransientError(err, se.Code)
		}
		return model.Failed(model.ErrProviderUnavailable, a.Source(),
			eris.Wrapf(err, "provider: %s", a.Source()))
	}
	if resp == nil || len(resp.Data) == 0 {
		return model.NotFound()
	}

	row := normalize.FlattenJSON(resp.Data)
	name := row.Text(titleColumn)
	if name == "" {
		name = key
	}
	return model.Found(normalize.Normalize(a.Source(), name, row, a.groups))
}
