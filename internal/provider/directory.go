package provider

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fba-resolver/internal/model"
	"github.com/sells-group/fba-resolver/internal/normalize"
	"github.com/sells-group/fba-resolver/pkg/directory"
)

// DirectoryAdapter resolves against the public company directory.
type DirectoryAdapter struct {
	client directory.Client
	groups normalize.GroupMap
	limit  int
}

// NewDirectoryAdapter creates a directory adapter.
func NewDirectoryAdapter(client directory.Client, groups normalize.GroupMap) *DirectoryAdapter {
	return &DirectoryAdapter{client: client, groups: groups, limit: directory.DefaultLimit}
}

// Source returns model.SourceDirectory.
func (d *DirectoryAdapter) Source() model.Source { return model.SourceDirectory }

// Resolve searches the directory and keeps the first result whose name
// equals key exactly. Search is fuzzy on the server side, so a non-empty
// result set alone is not a match.
func (d *DirectoryAdapter) Resolve(ctx context.Context, key string) model.Outcome {
	companies, err := d.client.Search(ctx, key, d.limit)
	if err != nil {
		return model.Failed(model.ErrProviderUnavailable, d.Source(),
			eris.Wrapf(err, "provider: %s", d.Source()))
	}
	for _, c := range companies {
		if c.Name == key {
			return model.Found(normalize.Normalize(d.Source(), key, DirectoryRow(c), d.groups))
		}
	}
	return model.NotFound()
}

// DirectoryRow converts a directory entry into a row keyed by its JSON
// field names.
func DirectoryRow(c directory.Company) model.RawRow {
	row := model.NewRawRow(8)
	row.Set("name", model.StringCell(c.Name))
	row.Set("industry", model.StringCell(c.Industry))
	row.Set("locality", model.StringCell(c.Locality))
	row.Set("country", model.StringCell(c.Country))
	row.Set("year_founded", model.StringCell(c.YearFoundedString()))
	row.Set("size_range", model.StringCell(c.SizeRange))
	row.Set("domain", model.StringCell(c.Domain))
	row.Set("linkedin_url", model.StringCell(c.LinkedInURL))
	return row
}
