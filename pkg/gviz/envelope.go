package gviz

import (
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/fba-resolver/internal/model"
)

// The gviz endpoint wraps its JSON payload in a JavaScript callback:
//
//	/*O_o*/\ngoogle.visualization.Query.setResponse({...});
//
// The wrapper has a fixed width and is cut by offset, never by searching
// for the JSON boundaries.
const (
	PrefixLen = 47
	SuffixLen = 2
)

// ErrEnvelope is returned when a body is too short to carry the wrapper.
var ErrEnvelope = eris.New("gviz: malformed response envelope")

// StripEnvelope removes exactly PrefixLen leading and SuffixLen trailing
// bytes from a gviz response body.
func StripEnvelope(body []byte) ([]byte, error) {
	if len(body) < PrefixLen+SuffixLen {
		return nil, eris.Wrapf(ErrEnvelope, "body is %d bytes", len(body))
	}
	return body[PrefixLen : len(body)-SuffixLen], nil
}

type response struct {
	Status string `json:"status"`
	Table  *table `json:"table"`
}

type table struct {
	Cols []column `json:"cols"`
	Rows []row    `json:"rows"`
}

type column struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

type row struct {
	C []*cell `json:"c"`
}

type cell struct {
	V any    `json:"v"`
	F string `json:"f,omitempty"`
}

// ParseTable decodes a stripped gviz payload into rows keyed by column
// label. Null cells and cells missing from the end of a short row become
// empty values.
func ParseTable(payload []byte) ([]model.RawRow, error) {
	var resp response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, eris.Wrap(err, "gviz: decode table")
	}
	if resp.Status == "error" {
		return nil, eris.New("gviz: query returned status error")
	}
	if resp.Table == nil {
		return nil, eris.New("gviz: response has no table")
	}

	labels := make([]string, len(resp.Table.Cols))
	for i, col := range resp.Table.Cols {
		labels[i] = columnLabel(col, i)
	}

	rows := make([]model.RawRow, 0, len(resp.Table.Rows))
	for _, r := range resp.Table.Rows {
		raw := model.NewRawRow(len(labels))
		for i, label := range labels {
			var c model.Cell
			if i < len(r.C) && r.C[i] != nil {
				c = model.CellOf(r.C[i].V)
			}
			raw.Set(label, c)
		}
		rows = append(rows, raw)
	}
	return rows, nil
}

// columnLabel falls back to the column id (A, B, ...) for unlabelled
// columns so their values stay addressable.
func columnLabel(col column, i int) string {
	if col.Label != "" {
		return col.Label
	}
	if col.ID != "" {
		return col.ID
	}
	return "col" + strconv.Itoa(i)
}

// RowsFromGrid zips a header row with data rows, the same way ParseTable
// zips gviz columns with cells. It is used for xlsx snapshots of a sheet.
func RowsFromGrid(header []string, grid [][]string) []model.RawRow {
	rows := make([]model.RawRow, 0, len(grid))
	for _, cells := range grid {
		raw := model.NewRawRow(len(header))
		for i, label := range header {
			if label == "" {
				continue
			}
			var v string
			if i < len(cells) {
				v = cells[i]
			}
			raw.Set(label, model.StringCell(v))
		}
		rows = append(rows, raw)
	}
	return rows
}
