// Package normalize maps provider rows onto the fixed attribute groups used
// for display.
package normalize

import (
	"strings"

	"github.com/sells-group/fba-resolver/internal/model"
)

// wildcardSuffix marks a column entry that selects every dotted column
// sharing its prefix, e.g. "financial.*".
const wildcardSuffix = ".*"

// GroupSpec lists the raw columns that belong to one attribute group.
type GroupSpec struct {
	Group   model.Group `yaml:"group" json:"group"`
	Columns []string    `yaml:"columns" json:"columns"`
}

// GroupMap is a provider's ordered column-to-group table.
type GroupMap []GroupSpec

// Columns returns every column entry across all groups in map order.
func (m GroupMap) Columns() []string {
	var out []string
	for _, gs := range m {
		out = append(out, gs.Columns...)
	}
	return out
}

// Normalize builds a record from row using m. Only columns present in the
// row with a non-empty value are emitted, and a column is emitted at most
// once across the whole record. Wildcard columns are named without their
// prefix unless that name is already taken in the group, in which case the
// full column name is kept. Groups that end up empty are omitted.
func Normalize(source model.Source, name string, row model.RawRow, m GroupMap) *model.Record {
	rec := &model.Record{Source: source, Name: name}
	emitted := make(map[string]bool)
	index := make(map[model.Group]int)
	names := make(map[model.Group]map[string]bool)

	for _, gs := range m {
		taken := names[gs.Group]
		if taken == nil {
			taken = make(map[string]bool)
			names[gs.Group] = taken
		}
		var fields []model.Field
		for _, col := range gs.Columns {
			if prefix, ok := wildcardPrefix(col); ok {
				for _, c := range row.Columns() {
					if !strings.HasPrefix(c, prefix) || len(c) == len(prefix) {
						continue
					}
					fields = appendField(fields, emitted, taken, row, c, strings.TrimPrefix(c, prefix))
				}
				continue
			}
			fields = appendField(fields, emitted, taken, row, col, col)
		}
		if len(fields) == 0 {
			continue
		}
		if i, ok := index[gs.Group]; ok {
			rec.Groups[i].Fields = append(rec.Groups[i].Fields, fields...)
			continue
		}
		index[gs.Group] = len(rec.Groups)
		rec.Groups = append(rec.Groups, model.GroupFields{Name: gs.Group, Fields: fields})
	}
	return rec
}

func appendField(fields []model.Field, emitted, taken map[string]bool, row model.RawRow, col, display string) []model.Field {
	if emitted[col] {
		return fields
	}
	cell, ok := row.Get(col)
	if !ok || cell.IsEmpty() {
		return fields
	}
	if taken[display] {
		display = col
	}
	if taken[display] {
		return fields
	}
	emitted[col] = true
	taken[display] = true
	value := cell.String()
	return append(fields, model.Field{
		Name:     display,
		Value:    value,
		Segments: SplitLinks(value),
	})
}

func wildcardPrefix(col string) (string, bool) {
	if !strings.HasSuffix(col, wildcardSuffix) || len(col) == len(wildcardSuffix) {
		return "", false
	}
	return strings.TrimSuffix(col, "*"), true
}
