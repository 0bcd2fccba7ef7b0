package listing

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fba-resolver/internal/model"
	"github.com/sells-group/fba-resolver/pkg/auditapi"
	"github.com/sells-group/fba-resolver/pkg/directory"
)

// Sheet column labels used by the listing pages.
const (
	ColumnIndustry     = "Industry"
	ColumnHeadquarters = "Headquarters"
	ColumnWebsiteURL   = "Website URL"
	ColumnWebsite      = "Website"
	ColumnValuation    = "Company Valuation"
)

// auditPageSize is the number of audits requested per listing.
const auditPageSize = 100

// AuditSource lists companies that have a completed audit.
type AuditSource struct {
	client auditapi.Client
}

// NewAuditSource creates an audit listing source.
func NewAuditSource(client auditapi.Client) *AuditSource {
	return &AuditSource{client: client}
}

// Source returns model.SourceAuditAPI.
func (a *AuditSource) Source() model.Source { return model.SourceAuditAPI }

// Entries returns the first page of audits matching search.
func (a *AuditSource) Entries(ctx context.Context, search string) ([]Entry, error) {
	resp, err := a.client.ListAudits(ctx, auditapi.ListRequest{Search: search, Page: 1, Limit: auditPageSize})
	if err != nil {
		return nil, eris.Wrap(err, "listing: audit")
	}
	out := make([]Entry, 0, len(resp.Companies))
	for _, c := range resp.Companies {
		out = append(out, Entry{
			Name:     c.CompanyName,
			Source:   model.SourceAuditAPI,
			Industry: c.Industry,
			Location: c.Location,
			Website:  c.Domain,
		})
	}
	return out, nil
}

// RowLister is the part of a sheet adapter the listing needs.
type RowLister interface {
	Source() model.Source
	Rows(ctx context.Context) ([]model.RawRow, error)
	NameColumn() string
}

// SheetSource lists every row of a sheet provider.
type SheetSource struct {
	sheet RowLister
}

// NewSheetSource creates a sheet listing source.
func NewSheetSource(sheet RowLister) *SheetSource {
	return &SheetSource{sheet: sheet}
}

// Source returns the sheet's provider id.
func (s *SheetSource) Source() model.Source { return s.sheet.Source() }

// Entries returns one entry per named row matching search. Sheets have no
// query endpoint, so the search runs here over name, industry and
// headquarters.
func (s *SheetSource) Entries(ctx context.Context, search string) ([]Entry, error) {
	rows, err := s.sheet.Rows(ctx)
	if err != nil {
		return nil, eris.Wrapf(err, "listing: %s", s.sheet.Source())
	}
	nameCol := s.sheet.NameColumn()
	out := make([]Entry, 0, len(rows))
	for _, row := range rows {
		name := row.Text(nameCol)
		if name == "" {
			continue
		}
		website := row.Text(ColumnWebsiteURL)
		if website == "" {
			website = row.Text(ColumnWebsite)
		}
		out = append(out, Entry{
			Name:      name,
			Source:    s.sheet.Source(),
			Industry:  row.Text(ColumnIndustry),
			Location:  row.Text(ColumnHeadquarters),
			Website:   website,
			Valuation: row.Text(ColumnValuation),
		})
	}
	return Filter(out, search), nil
}

// DirectorySource lists directory companies.
type DirectorySource struct {
	client directory.Client
	limit  int
}

// NewDirectorySource creates a directory listing source.
func NewDirectorySource(client directory.Client) *DirectorySource {
	return &DirectorySource{client: client, limit: directory.DefaultLimit}
}

// Source returns model.SourceDirectory.
func (d *DirectorySource) Source() model.Source { return model.SourceDirectory }

// Entries searches the directory, or lists it when search is empty.
func (d *DirectorySource) Entries(ctx context.Context, search string) ([]Entry, error) {
	var (
		companies []directory.Company
		err       error
	)
	if search == "" {
		companies, err = d.client.List(ctx, d.limit)
	} else {
		companies, err = d.client.Search(ctx, search, d.limit)
	}
	if err != nil {
		return nil, eris.Wrap(err, "listing: directory")
	}
	out := make([]Entry, 0, len(companies))
	for _, c := range companies {
		out = append(out, Entry{
			Name:     c.Name,
			Source:   model.SourceDirectory,
			Industry: c.Industry,
			Location: joinLocation(c.Locality, c.Country),
			Website:  c.Domain,
		})
	}
	return out, nil
}

func joinLocation(locality, country string) string {
	switch {
	case locality == "":
		return country
	case country == "":
		return locality
	default:
		return locality + ", " + country
	}
}
