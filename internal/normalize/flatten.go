package normalize

import (
	"sort"

	"github.com/sells-group/fba-resolver/internal/model"
)

// FlattenJSON turns a decoded JSON object into a row. Top-level scalars keep
// their key; members of nested objects become "parent.child" columns. Values
// nested deeper, and arrays, are kept as compact JSON strings. Nulls and
// empty containers are dropped. Keys are emitted in sorted order.
func FlattenJSON(obj map[string]any) model.RawRow {
	row := model.NewRawRow(len(obj))
	for _, k := range sortedKeys(obj) {
		switch v := obj[k].(type) {
		case map[string]any:
			for _, sk := range sortedKeys(v) {
				setValue(&row, k+"."+sk, v[sk])
			}
		default:
			setValue(&row, k, v)
		}
	}
	return row
}

func setValue(row *model.RawRow, key string, v any) {
	switch t := v.(type) {
	case nil:
		return
	case map[string]any:
		if len(t) == 0 {
			return
		}
	case []any:
		if len(t) == 0 {
			return
		}
	}
	row.Set(key, model.CellOf(v))
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
