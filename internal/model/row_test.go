package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellOf(t *testing.T) {
	tests := []struct {
		name  string
		in    any
		want  string
		empty bool
	}{
		{"nil", nil, "", true},
		{"empty string", "", "", true},
		{"string", "Robotics", "Robotics", false},
		{"integer float", float64(2015), "2015", false},
		{"fraction", 1.5, "1.5", false},
		{"zero", float64(0), "0", false},
		{"bool false", false, "false", false},
		{"json number", json.Number("42"), "42", false},
		{"nested", map[string]any{"a": "b"}, `{"a":"b"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := CellOf(tt.in)
			assert.Equal(t, tt.want, c.String())
			assert.Equal(t, tt.empty, c.IsEmpty())
		})
	}
}

func TestRawRow_PreservesOrder(t *testing.T) {
	row := NewRawRow(3)
	row.Set("Company Name", StringCell("Acme Corp"))
	row.Set("Industry", StringCell("Robotics"))
	row.Set("Revenue", StringCell("$5M"))

	assert.Equal(t, []string{"Company Name", "Industry", "Revenue"}, row.Columns())
	assert.Equal(t, 3, row.Len())
	assert.Equal(t, "Robotics", row.Text("Industry"))
	assert.Equal(t, "", row.Text("Missing"))

	_, ok := row.Get("Missing")
	assert.False(t, ok)
}

func TestRawRow_DuplicateLabelLastValueWins(t *testing.T) {
	var row RawRow
	row.Set("Revenue", StringCell("$5M"))
	row.Set("Industry", StringCell("Robotics"))
	row.Set("Revenue", StringCell("$9M"))

	assert.Equal(t, 2, row.Len())
	assert.Equal(t, "$9M", row.Text("Revenue"))
	assert.Equal(t, []string{"Revenue", "Industry"}, row.Columns(), "position of first occurrence kept")
}

func TestRawRow_MarshalJSON(t *testing.T) {
	row := NewRawRow(2)
	row.Set("b", NumberCell(2))
	row.Set("a", StringCell("x"))

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"b":"2","a":"x"}`, string(data))
}
