// Package catalog loads the ordered provider configuration.
package catalog

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/fba-resolver/internal/model"
	"github.com/sells-group/fba-resolver/internal/normalize"
)

//go:embed providers.yaml
var defaultYAML []byte

// DefaultNameColumn is the sheet column matched against the company key.
const DefaultNameColumn = "Company Name"

// Kind selects the adapter type for a provider.
type Kind string

const (
	KindAudit     Kind = "audit"
	KindSheet     Kind = "sheet"
	KindDirectory Kind = "directory"
)

// Catalog is the provider list in priority order.
type Catalog struct {
	Providers []Provider `yaml:"providers"`
}

// Provider configures one data source.
type Provider struct {
	Source     model.Source       `yaml:"source"`
	Kind       Kind               `yaml:"kind"`
	SheetID    string             `yaml:"sheet_id,omitempty"`
	TabID      string             `yaml:"tab_id,omitempty"`
	Workbook   string             `yaml:"workbook,omitempty"`  // optional xlsx or csv snapshot used instead of the live sheet
	Worksheet  string             `yaml:"worksheet,omitempty"` // xlsx worksheet name; the first one when empty
	NameColumn string             `yaml:"name_column,omitempty"`
	Enabled    *bool              `yaml:"enabled,omitempty"`
	Groups     normalize.GroupMap `yaml:"groups"`
}

// IsEnabled reports whether the provider takes part in resolution.
// Providers are enabled unless explicitly switched off.
func (p Provider) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// Column returns the name column, falling back to DefaultNameColumn.
func (p Provider) Column() string {
	if p.NameColumn != "" {
		return p.NameColumn
	}
	return DefaultNameColumn
}

// Default returns the embedded production catalog.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Load reads a catalog from a YAML file. An empty path yields Default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", path)
	}
	return Parse(data)
}

// Parse decodes and validates catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrap(err, "catalog: parse")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks sources, kinds and groups. An audit provider, when
// enabled, must come first.
func (c *Catalog) Validate() error {
	if len(c.Providers) == 0 {
		return eris.New("catalog: no providers")
	}

	seen := make(map[model.Source]bool, len(c.Providers))
	enabledIdx := 0
	for i, p := range c.Providers {
		if _, err := model.ParseSource(string(p.Source)); err != nil {
			return eris.Wrapf(err, "catalog: provider %d", i)
		}
		if seen[p.Source] {
			return eris.Errorf("catalog: duplicate source %q", p.Source)
		}
		seen[p.Source] = true

		switch p.Kind {
		case KindAudit:
			if p.IsEnabled() && enabledIdx != 0 {
				return eris.Errorf("catalog: audit provider %q must be first", p.Source)
			}
		case KindSheet:
			if p.Workbook == "" && (p.SheetID == "" || p.TabID == "") {
				return eris.Errorf("catalog: sheet provider %q needs sheet_id and tab_id", p.Source)
			}
		case KindDirectory:
		default:
			return eris.Errorf("catalog: provider %q has unknown kind %q", p.Source, p.Kind)
		}

		for _, gs := range p.Groups {
			if !model.IsKnownGroup(gs.Group) {
				return eris.Errorf("catalog: provider %q has unknown group %q", p.Source, gs.Group)
			}
		}
		if p.IsEnabled() {
			enabledIdx++
		}
	}
	return nil
}

// Enabled returns the enabled providers in priority order.
func (c *Catalog) Enabled() []Provider {
	out := make([]Provider, 0, len(c.Providers))
	for _, p := range c.Providers {
		if p.IsEnabled() {
			out = append(out, p)
		}
	}
	return out
}

// Sheets returns the enabled sheet providers.
func (c *Catalog) Sheets() []Provider {
	var out []Provider
	for _, p := range c.Enabled() {
		if p.Kind == KindSheet {
			out = append(out, p)
		}
	}
	return out
}
