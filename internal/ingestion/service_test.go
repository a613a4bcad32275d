package ingestion

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvickery/gamedex/internal/catalog"
	"github.com/rvickery/gamedex/internal/catalog/catalogtest"
)

func newTestService() (*Service, *catalogtest.Store) {
	store := catalogtest.New()
	return NewService(catalog.NewUpsertEngine(store, nil), nil), store
}

func TestIngest_GameDocuments(t *testing.T) {
	service, store := newTestService()

	input := strings.Join([]string{
		`{"display_name":"Portal 2","release_year":2011,"tags":["puzzle"]}`,
		`{"display_name":"Hades","genre":["roguelike"]}`,
		``,
		`{"display_name":"portal 2"}`,
	}, "\n")

	summary, err := service.Ingest(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Lines)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 1, summary.Existing)
	assert.Zero(t, summary.Skipped)
	assert.Len(t, store.GamesByID, 2)
}

func TestIngest_RoutesAliasDocuments(t *testing.T) {
	service, store := newTestService()

	input := strings.Join([]string{
		`{"display_name":"The Legend of Zelda: Breath of the Wild"}`,
		`{"title":"The Legend of Zelda: Breath of the Wild","aliases":["botw","zelda botw"]}`,
	}, "\n")

	summary, err := service.Ingest(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 2, summary.AliasUpserts)
	assert.Len(t, store.GamesByID, 1)
	assert.Len(t, store.AliasRows, 2)
}

func TestIngest_AliasForUnknownTitleIsSkipped(t *testing.T) {
	service, store := newTestService()

	summary, err := service.Ingest(context.Background(),
		strings.NewReader(`{"title":"botw","aliases":["breath of the wild"]}`))
	require.NoError(t, err)

	assert.Zero(t, summary.AliasUpserts)
	assert.Equal(t, 1, summary.Skipped)
	assert.Empty(t, store.AliasRows)
}

func TestIngest_DisplayNameWinsOverTitle(t *testing.T) {
	service, store := newTestService()

	// A document carrying display_name is a game even with alias-ish keys.
	summary, err := service.Ingest(context.Background(),
		strings.NewReader(`{"display_name":"Doom","title":"Doom","aliases":["doom 1993"]}`))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.AliasUpserts)
	assert.Len(t, store.GamesByID, 1)
}

func TestIngest_SkipsBadLinesAndKeepsGoing(t *testing.T) {
	service, store := newTestService()

	input := strings.Join([]string{
		`not json at all`,
		`{"release_year":2020}`,
		`{"display_name":"Celeste"}`,
	}, "\n")

	summary, err := service.Ingest(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Lines)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 1, summary.Inserted)
	assert.Len(t, store.GamesByID, 1)
}

func TestIngest_OversizedLineIsSkippedNotFatal(t *testing.T) {
	service, store := newTestService()

	input := strings.Join([]string{
		`{"display_name":"Hades"}`,
		`{"display_name":"` + strings.Repeat("x", maxLineBytes+1) + `"}`,
		`{"display_name":"Celeste"}`,
	}, "\n")

	summary, err := service.Ingest(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Lines)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 1, summary.Skipped)
	assert.Len(t, store.GamesByID, 2)
}

func TestIngest_OversizedFinalLineWithoutNewline(t *testing.T) {
	service, store := newTestService()

	input := `{"display_name":"Quake"}` + "\n" +
		`{"display_name":"` + strings.Repeat("x", maxLineBytes+1)

	summary, err := service.Ingest(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Lines)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Skipped)
	assert.Len(t, store.GamesByID, 1)
}

func TestIngest_StripsByteOrderMark(t *testing.T) {
	service, _ := newTestService()

	summary, err := service.Ingest(context.Background(),
		strings.NewReader("\xEF\xBB\xBF{\"display_name\":\"Quake\"}"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	assert.Zero(t, summary.Skipped)
}
