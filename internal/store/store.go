// Package store persists provider failures and resolution outcomes. Rows are
// an append-only operator log; nothing here is read back to answer a lookup.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fba-resolver/internal/model"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

const defaultListLimit = 100

// Failure is one provider fault observed during a resolution.
type Failure struct {
	ID         string          `json:"id"`
	RequestID  string          `json:"request_id"`
	Company    string          `json:"company"`
	Source     model.Source    `json:"source"`
	ErrorKind  model.ErrorKind `json:"error_kind"`
	FaultClass string          `json:"fault_class"`
	Error      string          `json:"error"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Resolution is the final outcome of one lookup.
type Resolution struct {
	ID          string         `json:"id"`
	RequestID   string         `json:"request_id"`
	Company     string         `json:"company"`
	Outcome     string         `json:"outcome"`
	Source      model.Source   `json:"source,omitempty"`
	Unavailable []model.Source `json:"unavailable,omitempty"`
	Attempts    int            `json:"attempts"`
	DurationMs  int64          `json:"duration_ms"`
	CreatedAt   time.Time      `json:"created_at"`
}

// FailureFilter narrows ListFailures.
type FailureFilter struct {
	Source  model.Source `json:"source,omitempty"`
	Company string       `json:"company,omitempty"`
	Since   time.Time    `json:"since,omitempty"`
	Limit   int          `json:"limit,omitempty"`
	Offset  int          `json:"offset,omitempty"`
}

// ResolutionFilter narrows ListResolutions.
type ResolutionFilter struct {
	Outcome string    `json:"outcome,omitempty"`
	Company string    `json:"company,omitempty"`
	Since   time.Time `json:"since,omitempty"`
	Limit   int       `json:"limit,omitempty"`
	Offset  int       `json:"offset,omitempty"`
}

// Store defines the persistence interface for the resolution log.
type Store interface {
	RecordFailure(ctx context.Context, f Failure) error
	RecordResolution(ctx context.Context, r Resolution) error
	ListFailures(ctx context.Context, filter FailureFilter) ([]Failure, error)
	ListResolutions(ctx context.Context, filter ResolutionFilter) ([]Resolution, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open returns the store for driver. DriverNone yields a store that drops
// every write.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		if dsn == "" {
			return nil, eris.New("store: sqlite needs a database path")
		}
		return NewSQLite(dsn)
	case DriverPostgres:
		if dsn == "" {
			return nil, eris.New("store: postgres needs a database url")
		}
		return NewPostgres(ctx, dsn, nil)
	case DriverNone:
		return Nop{}, nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}

func stamp(id *string, at *time.Time, newID func() string) {
	if *id == "" {
		*id = newID()
	}
	if at.IsZero() {
		*at = time.Now().UTC()
	}
}

func marshalSources(srcs []model.Source) ([]byte, error) {
	if srcs == nil {
		srcs = []model.Source{}
	}
	return json.Marshal(srcs)
}
