package provider

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fba-resolver/internal/fetcher"
	"github.com/sells-group/fba-resolver/internal/model"
	"github.com/sells-group/fba-resolver/internal/normalize"
	"github.com/sells-group/fba-resolver/pkg/gviz"
)

// RowSource yields the rows of one sheet tab.
type RowSource interface {
	Rows(ctx context.Context) ([]model.RawRow, error)
}

// QueryRows reads a live sheet tab through the gviz endpoint.
type QueryRows struct {
	client  gviz.Client
	sheetID string
	tabID   string
}

// NewQueryRows creates a live row source.
func NewQueryRows(client gviz.Client, sheetID, tabID string) *QueryRows {
	return &QueryRows{client: client, sheetID: sheetID, tabID: tabID}
}

// Rows queries the sheet.
func (q *QueryRows) Rows(ctx context.Context) ([]model.RawRow, error) {
	return q.client.Query(ctx, q.sheetID, q.tabID)
}

// WorkbookRows reads an exported snapshot of a sheet: an xlsx workbook, or
// a csv file when the path ends in ".csv". The first row is the header.
type WorkbookRows struct {
	path string
	opts fetcher.XLSXOptions
}

// NewWorkbookRows creates a snapshot row source. worksheet names the xlsx
// worksheet to read; empty means the first one. It is ignored for csv.
func NewWorkbookRows(path, worksheet string) *WorkbookRows {
	return &WorkbookRows{path: path, opts: fetcher.XLSXOptions{Worksheet: worksheet}}
}

// Rows reads the snapshot. The file is re-read on every call so a refreshed
// export is picked up without a restart.
func (w *WorkbookRows) Rows(ctx context.Context) ([]model.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var (
		grid [][]string
		err  error
	)
	if strings.EqualFold(filepath.Ext(w.path), ".csv") {
		grid, err = fetcher.ReadCSVFile(ctx, w.path, fetcher.CSVOptions{})
	} else {
		grid, err = fetcher.ReadXLSX(ctx, w.path, w.opts)
	}
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, nil
	}
	return gviz.RowsFromGrid(grid[0], grid[1:]), nil
}

// SheetAdapter resolves against one spreadsheet tab.
type SheetAdapter struct {
	source     model.Source
	rows       RowSource
	nameColumn string
	groups     normalize.GroupMap
}

// NewSheetAdapter creates a sheet adapter. nameColumn is the column
// compared against the key.
func NewSheetAdapter(source model.Source, rows RowSource, nameColumn string, groups normalize.GroupMap) *SheetAdapter {
	return &SheetAdapter{
		source:     source,
		rows:       rows,
		nameColumn: nameColumn,
		groups:     groups,
	}
}

// Source returns the sheet's tag.
func (s *SheetAdapter) Source() model.Source { return s.source }

// Resolve scans the tab for the first row whose name column equals key
// exactly.
func (s *SheetAdapter) Resolve(ctx context.Context, key string) model.Outcome {
	rows, err := s.rows.Rows(ctx)
	if err != nil {
		return model.Failed(model.ErrProviderUnavailable, s.source,
			eris.Wrapf(err, "provider: %s", s.source))
	}
	for _, row := range rows {
		if row.Text(s.nameColumn) == key {
			return model.Found(normalize.Normalize(s.source, key, row, s.groups))
		}
	}
	return model.NotFound()
}

// Rows exposes the underlying rows for listing.
func (s *SheetAdapter) Rows(ctx context.Context) ([]model.RawRow, error) {
	return s.rows.Rows(ctx)
}

// NameColumn returns the column compared against keys.
func (s *SheetAdapter) NameColumn() string { return s.nameColumn }
