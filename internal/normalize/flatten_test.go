package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenJSON(t *testing.T) {
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"properties": {"title": "Acme Corp", "short_description": "Robots", "logo": null},
		"financial": {"revenue": "$5M", "employees": 120, "public": false, "rounds": [{"series": "A"}]},
		"info": {"key_employee_change_list": ["Ann joined"], "empty": []},
		"competitors": ["Beta LLC", "Gamma"],
		"status": "complete",
		"legalRisk": null,
		"audit": {}
	}`), &data))

	row := FlattenJSON(data)

	assert.Equal(t, []string{
		"competitors",
		"financial.employees",
		"financial.public",
		"financial.revenue",
		"financial.rounds",
		"info.key_employee_change_list",
		"properties.short_description",
		"properties.title",
		"status",
	}, row.Columns())

	assert.Equal(t, "Acme Corp", row.Text("properties.title"))
	assert.Equal(t, "120", row.Text("financial.employees"))
	assert.Equal(t, "false", row.Text("financial.public"))
	assert.Equal(t, `[{"series":"A"}]`, row.Text("financial.rounds"))
	assert.Equal(t, `["Beta LLC","Gamma"]`, row.Text("competitors"))
	_, ok := row.Get("properties.logo")
	assert.False(t, ok)
	_, ok = row.Get("legalRisk")
	assert.False(t, ok)
}

func TestFlattenJSON_Empty(t *testing.T) {
	assert.Equal(t, 0, FlattenJSON(nil).Len())
}
