package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rvickery/gamedex/internal/catalog"
	"github.com/rvickery/gamedex/internal/catalog/catalogtest"
	"github.com/rvickery/gamedex/internal/domain"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func seedCatalog(t *testing.T, store *catalogtest.Store, count int) {
	t.Helper()
	engine := catalog.NewUpsertEngine(store, nil)
	for i := 0; i < count; i++ {
		_, err := engine.AddGame(context.Background(), domain.GameDocument{
			DisplayName: strPtr(fmt.Sprintf("Game %02d", i)),
			ReleaseYear: intPtr(2000 + i),
			Platforms:   []string{"pc"},
		})
		require.NoError(t, err)
	}
}

func TestExportGamesCSV(t *testing.T) {
	store := catalogtest.New()
	seedCatalog(t, store, 7)
	service := NewService(store, nil, WithPageSize(3))

	var buf bytes.Buffer
	exported, err := service.ExportGamesCSV(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 7, exported)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 8)
	assert.Equal(t, gameHeaders, records[0])

	seen := map[string]bool{}
	for _, rec := range records[1:] {
		require.Len(t, rec, len(gameHeaders))
		assert.False(t, seen[rec[1]], "game %q exported twice", rec[1])
		seen[rec[1]] = true
		assert.NotEmpty(t, rec[0])
		assert.NotEmpty(t, rec[13])
	}
}

func TestExportGamesCSV_EmptyCatalog(t *testing.T) {
	service := NewService(catalogtest.New(), nil)

	var buf bytes.Buffer
	exported, err := service.ExportGamesCSV(context.Background(), &buf)
	require.NoError(t, err)
	assert.Zero(t, exported)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestExportWorkbook(t *testing.T) {
	store := catalogtest.New()
	seedCatalog(t, store, 4)
	service := NewService(store, nil, WithPageSize(2))

	var buf bytes.Buffer
	exported, err := service.ExportWorkbook(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 4, exported)

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer file.Close()

	sheets := file.GetSheetList()
	assert.Contains(t, sheets, "games")
	assert.Contains(t, sheets, "platforms")
	assert.Contains(t, sheets, "tags")

	rows, err := file.GetRows("games")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "display_name", rows[0][1])

	platformRows, err := file.GetRows("platforms")
	require.NoError(t, err)
	require.Len(t, platformRows, 5)
	assert.Equal(t, "pc", platformRows[1][1])
}
