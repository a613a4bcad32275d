package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvickery/gamedex/internal/catalog"
	"github.com/rvickery/gamedex/internal/catalog/catalogtest"
	"github.com/rvickery/gamedex/internal/domain"
)

func newTestHandler() http.Handler {
	store := catalogtest.New()
	return NewHandler(
		catalog.NewQueryEngine(store),
		catalog.NewUpsertEngine(store, nil),
		nil,
	)
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAddAndFetchGame(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodPost, "/games",
		`{"display_name":"Portal 2","release_year":2011,"tags":["puzzle"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created domain.UpsertResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Inserted)

	rec = doJSON(t, handler, http.MethodGet, "/games/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var game domain.Game
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &game))
	assert.Equal(t, "Portal 2", game.DisplayName)
	require.NotNil(t, game.ReleaseDecade)
	assert.Equal(t, 2010, *game.ReleaseDecade)

	// Re-posting the same name reports the existing row.
	rec = doJSON(t, handler, http.MethodPost, "/games", `{"display_name":"portal 2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAddGame_RequiresDisplayName(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodPost, "/games", `{"release_year":2011}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateGame_NotFoundIsStructured(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodPatch, "/games/nothing-here", `{"rating":9.1}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var res domain.UpdateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Updated)
}

func TestListByTagEndpoint(t *testing.T) {
	handler := newTestHandler()

	for _, body := range []string{
		`{"display_name":"Hades","tags":["roguelike"],"release_year":2020}`,
		`{"display_name":"Spelunky","tags":["roguelike"],"release_year":2008}`,
	} {
		rec := doJSON(t, handler, http.MethodPost, "/games", body)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, handler, http.MethodGet, "/games/by-tag/roguelike", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page domain.GamePage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Games, 2)
	assert.True(t, page.IsDone)

	rec = doJSON(t, handler, http.MethodGet, "/games/by-tag/roguelike?decade=2020", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = domain.GamePage{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Games, 1)
	assert.Equal(t, "Hades", page.Games[0].DisplayName)
}

func TestSearchEndpointRequiresQuery(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodGet, "/games/search", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/games/search?q=portal", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAliasEndpoint(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodPost, "/games", `{"display_name":"Doom"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/aliases",
		`{"title":"Doom","aliases":["doom 1993"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var res domain.AliasResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Upserted)

	// Unknown titles report zero upserts, not an error.
	rec = doJSON(t, handler, http.MethodPost, "/aliases",
		`{"title":"no such game","aliases":["x"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	res = domain.AliasResult{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Nil(t, res.GameID)
	assert.Zero(t, res.Upserted)
}

func TestMalformedCursorIsBadRequest(t *testing.T) {
	handler := newTestHandler()

	rec := doJSON(t, handler, http.MethodGet, "/games/by-tag/rpg?cursor=garbage", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
