package model

import (
	"encoding/json"
	"strconv"
)

// CellKind is the dynamic type of a cell value.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellString
	CellNumber
	CellBool
)

// Cell is a single value read from a provider: a string, number, boolean,
// or nothing.
type Cell struct {
	Kind CellKind
	Str  string
	Num  float64
	Bool bool
}

// StringCell returns a string cell. The empty string yields an empty cell.
func StringCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellString, Str: s}
}

// NumberCell returns a numeric cell.
func NumberCell(n float64) Cell { return Cell{Kind: CellNumber, Num: n} }

// BoolCell returns a boolean cell.
func BoolCell(b bool) Cell { return Cell{Kind: CellBool, Bool: b} }

// CellOf converts a decoded JSON scalar into a Cell. Values of any other
// type are compact-JSON encoded into a string cell.
func CellOf(v any) Cell {
	switch t := v.(type) {
	case nil:
		return Cell{}
	case string:
		return StringCell(t)
	case float64:
		return NumberCell(t)
	case int:
		return NumberCell(float64(t))
	case int64:
		return NumberCell(float64(t))
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return NumberCell(f)
		}
		return StringCell(t.String())
	case bool:
		return BoolCell(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return Cell{}
		}
		return StringCell(string(b))
	}
}

// IsEmpty reports whether the cell carries no displayable value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty || (c.Kind == CellString && c.Str == "")
}

// String renders the cell for display. Numbers use the shortest exact
// representation ("2015", "1.5").
func (c Cell) String() string {
	switch c.Kind {
	case CellString:
		return c.Str
	case CellNumber:
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	case CellBool:
		return strconv.FormatBool(c.Bool)
	default:
		return ""
	}
}

// RawRow maps column labels to cell values, preserving column order.
type RawRow struct {
	cols  []string
	cells map[string]Cell
}

// NewRawRow returns an empty row with capacity for n columns.
func NewRawRow(n int) RawRow {
	return RawRow{
		cols:  make([]string, 0, n),
		cells: make(map[string]Cell, n),
	}
}

// Set stores a cell under label. A label seen before keeps its original
// position but takes the new value, so with duplicate sheet headers the
// rightmost column wins.
func (r *RawRow) Set(label string, c Cell) {
	if r.cells == nil {
		r.cells = make(map[string]Cell)
	}
	if _, ok := r.cells[label]; !ok {
		r.cols = append(r.cols, label)
	}
	r.cells[label] = c
}

// Get returns the cell for label and whether the column exists.
func (r RawRow) Get(label string) (Cell, bool) {
	c, ok := r.cells[label]
	return c, ok
}

// Text returns the display string for label, or "" when absent.
func (r RawRow) Text(label string) string {
	return r.cells[label].String()
}

// Columns returns the column labels in source order.
func (r RawRow) Columns() []string {
	out := make([]string, len(r.cols))
	copy(out, r.cols)
	return out
}

// Len returns the number of columns.
func (r RawRow) Len() int { return len(r.cols) }

// MarshalJSON encodes the row as an object of display strings in column order.
func (r RawRow) MarshalJSON() ([]byte, error) {
	buf := []byte{'{'}
	for i, col := range r.cols {
		if i > 0 {
			buf = append(buf, ',')
		}
		k, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.cells[col].String())
		if err != nil {
			return nil, err
		}
		buf = append(buf, k...)
		buf = append(buf, ':')
		buf = append(buf, v...)
	}
	return append(buf, '}'), nil
}
