package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/fba-resolver/internal/catalog"
	"github.com/sells-group/fba-resolver/internal/model"
	auditmocks "github.com/sells-group/fba-resolver/pkg/auditapi/mocks"
	dirmocks "github.com/sells-group/fba-resolver/pkg/directory/mocks"
	gvizmocks "github.com/sells-group/fba-resolver/pkg/gviz/mocks"
)

func TestFromCatalog_Default(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	reg, err := FromCatalog(cat, Clients{
		Audit:     auditmocks.NewMockClient(t),
		Sheets:    gvizmocks.NewMockClient(t),
		Directory: dirmocks.NewMockClient(t),
	})
	require.NoError(t, err)

	assert.Equal(t, []model.Source{
		model.SourceAuditAPI,
		model.SourceSmallcap,
		model.SourceKnowYourAI,
		model.SourceWaffler,
		model.SourceGait,
		model.SourceColive,
		model.SourceHandbag,
		model.SourceDirectory,
	}, reg.List())

	_, ok := reg.Get(model.SourceGait).(*SheetAdapter)
	assert.True(t, ok)
	_, ok = reg.Get(model.SourceAuditAPI).(*AuditAdapter)
	assert.True(t, ok)
}

func TestFromCatalog_Workbook(t *testing.T) {
	cat := &catalog.Catalog{Providers: []catalog.Provider{
		{Source: model.SourceColive, Kind: catalog.KindSheet, Workbook: "/data/colive.xlsx"},
	}}
	reg, err := FromCatalog(cat, Clients{})
	require.NoError(t, err)

	a, ok := reg.Get(model.SourceColive).(*SheetAdapter)
	require.True(t, ok)
	_, ok = a.rows.(*WorkbookRows)
	assert.True(t, ok)
	assert.Equal(t, catalog.DefaultNameColumn, a.NameColumn())
}

func TestFromCatalog_MissingClient(t *testing.T) {
	cat := &catalog.Catalog{Providers: []catalog.Provider{
		{Source: model.SourceAuditAPI, Kind: catalog.KindAudit},
	}}
	_, err := FromCatalog(cat, Clients{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs an audit client")
}
