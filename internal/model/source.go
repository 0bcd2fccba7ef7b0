package model

import "github.com/rotisserie/eris"

// Source identifies the provider that produced a record.
type Source string

const (
	SourceAuditAPI   Source = "audit_api"
	SourceSmallcap   Source = "smallcap"
	SourceKnowYourAI Source = "knowyourai"
	SourceWaffler    Source = "waffler"
	SourceGait       Source = "gait"
	SourceColive     Source = "colive"
	SourceHandbag    Source = "handbag"
	SourceDirectory  Source = "directory"
)

var knownSources = []Source{
	SourceAuditAPI,
	SourceSmallcap,
	SourceKnowYourAI,
	SourceWaffler,
	SourceGait,
	SourceColive,
	SourceHandbag,
	SourceDirectory,
}

// Sources returns every known provider tag.
func Sources() []Source {
	out := make([]Source, len(knownSources))
	copy(out, knownSources)
	return out
}

// ParseSource converts a provider tag string into a Source.
func ParseSource(s string) (Source, error) {
	for _, src := range knownSources {
		if string(src) == s {
			return src, nil
		}
	}
	return "", eris.Errorf("model: unknown source %q", s)
}

func (s Source) String() string { return string(s) }
