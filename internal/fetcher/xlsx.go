package fetcher

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ctxCheckEvery is how many rows are read between context checks.
const ctxCheckEvery = 500

// XLSXOptions selects the worksheet read from a workbook snapshot.
type XLSXOptions struct {
	Worksheet string // by name; the first worksheet when empty
}

// ReadXLSX reads one worksheet of an exported sheet as a grid of display
// strings, header row first. Blank rows and cells that exports pad the
// grid with are dropped from the end of the sheet and of each row.
func ReadXLSX(ctx context.Context, path string, opts XLSXOptions) ([][]string, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open %s", path)
	}

	ws, err := worksheet(wb, opts.Worksheet)
	if err != nil {
		return nil, err
	}

	grid := make([][]string, 0, len(ws.Rows))
	for i, row := range ws.Rows {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		var cells []string
		if row != nil {
			cells = displayValues(row.Cells)
		}
		grid = append(grid, cells)
	}

	for len(grid) > 0 && len(grid[len(grid)-1]) == 0 {
		grid = grid[:len(grid)-1]
	}
	return grid, nil
}

func worksheet(wb *xlsx.File, name string) (*xlsx.Sheet, error) {
	if len(wb.Sheets) == 0 {
		return nil, eris.New("xlsx: workbook has no worksheets")
	}
	if name == "" {
		return wb.Sheets[0], nil
	}
	ws, ok := wb.Sheet[name]
	if !ok {
		return nil, eris.Errorf("xlsx: worksheet %q not found", name)
	}
	return ws, nil
}

func displayValues(cells []*xlsx.Cell) []string {
	end := len(cells)
	for end > 0 && (cells[end-1] == nil || cells[end-1].String() == "") {
		end--
	}
	out := make([]string, end)
	for i := range end {
		if cells[i] != nil {
			out[i] = cells[i].String()
		}
	}
	return out
}
