package model

// OutcomeKind distinguishes the three resolution results.
type OutcomeKind int

const (
	OutcomeNotFound OutcomeKind = iota
	OutcomeFound
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFound:
		return "found"
	case OutcomeFailed:
		return "failed"
	default:
		return "not_found"
	}
}

// ErrorKind classifies a failed outcome.
type ErrorKind string

const (
	// ErrProviderUnavailable covers transport faults, server errors and
	// unparseable payloads from a single provider.
	ErrProviderUnavailable ErrorKind = "provider_unavailable"
	// ErrDecode means the caller's key could not be URL-decoded.
	ErrDecode ErrorKind = "decode_error"
)

// Outcome is the result of resolving a company key, either against one
// provider or against the whole chain.
type Outcome struct {
	Kind    OutcomeKind
	Record  *Record
	Source  Source
	ErrKind ErrorKind
	Err     error

	// Unavailable lists the providers that failed while the chain still
	// ended in NotFound. It lets callers tell "confirmed absent" from
	// "absent as far as the reachable providers know".
	Unavailable []Source
}

// Found wraps a record. The outcome source is the record's source.
func Found(rec *Record) Outcome {
	return Outcome{Kind: OutcomeFound, Record: rec, Source: rec.Source}
}

// NotFound reports a clean miss.
func NotFound() Outcome {
	return Outcome{Kind: OutcomeNotFound}
}

// Failed reports a fault from src (empty for resolver-level faults).
func Failed(kind ErrorKind, src Source, err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Source: src, ErrKind: kind, Err: err}
}

// IsFound reports whether the outcome carries a record.
func (o Outcome) IsFound() bool { return o.Kind == OutcomeFound }

// IsNotFound reports a clean or collapsed miss.
func (o Outcome) IsNotFound() bool { return o.Kind == OutcomeNotFound }

// IsFailed reports a fault.
func (o Outcome) IsFailed() bool { return o.Kind == OutcomeFailed }

// Degraded reports whether a NotFound result hides provider failures.
func (o Outcome) Degraded() bool {
	return o.Kind == OutcomeNotFound && len(o.Unavailable) > 0
}
