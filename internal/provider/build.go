package provider

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/fba-resolver/internal/catalog"
	"github.com/sells-group/fba-resolver/pkg/auditapi"
	"github.com/sells-group/fba-resolver/pkg/directory"
	"github.com/sells-group/fba-resolver/pkg/gviz"
)

// Clients are the shared API clients adapters are built on.
type Clients struct {
	Audit     auditapi.Client
	Sheets    gviz.Client
	Directory directory.Client
}

// FromCatalog builds a registry holding one adapter per enabled provider,
// in catalog order.
func FromCatalog(c *catalog.Catalog, clients Clients) (*Registry, error) {
	reg := NewRegistry()
	for _, p := range c.Enabled() {
		var a Adapter
		switch p.Kind {
		case catalog.KindAudit:
			if clients.Audit == nil {
				return nil, eris.Errorf("provider: %s needs an audit client", p.Source)
			}
			a = NewAuditAdapter(clients.Audit, p.Groups)
		case catalog.KindSheet:
			var rows RowSource
			if p.Workbook != "" {
				rows = NewWorkbookRows(p.Workbook, p.Worksheet)
			} else {
				if clients.Sheets == nil {
					return nil, eris.Errorf("provider: %s needs a sheet client", p.Source)
				}
				rows = NewQueryRows(clients.Sheets, p.SheetID, p.TabID)
			}
			a = NewSheetAdapter(p.Source, rows, p.Column(), p.Groups)
		case catalog.KindDirectory:
			if clients.Directory == nil {
				return nil, eris.Errorf("provider: %s needs a directory client", p.Source)
			}
			a = NewDirectoryAdapter(clients.Directory, p.Groups)
		default:
			return nil, eris.Errorf("provider: unknown kind %q", p.Kind)
		}
		if err := reg.Register(a); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
