package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/rvickery/gamedex/internal/catalog"
	"github.com/rvickery/gamedex/internal/domain"
	"github.com/rvickery/gamedex/pkg/validator"
)

// Handler maps the catalog engines onto a JSON HTTP surface. Routes carry no
// semantics of their own; every behavior lives in the engines.
type Handler struct {
	queries   *catalog.QueryEngine
	upserts   *catalog.UpsertEngine
	validator *validator.DocumentValidator
	logger    *zap.Logger
}

// NewHandler builds the route table.
func NewHandler(queries *catalog.QueryEngine, upserts *catalog.UpsertEngine, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		queries:   queries,
		upserts:   upserts,
		validator: validator.NewDocumentValidator(),
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /games", h.addGame)
	mux.HandleFunc("PATCH /games/{ref}", h.updateGame)
	mux.HandleFunc("POST /aliases", h.upsertAliases)

	mux.HandleFunc("GET /games/{id}", h.gameByID)
	mux.HandleFunc("GET /games/by-name/{name}", h.gameByName)
	mux.HandleFunc("GET /games/search", h.searchGames)

	mux.HandleFunc("GET /games/by-platform/{value}", h.listAttribute(h.queries.GamesByPlatform))
	mux.HandleFunc("GET /games/by-genre/{value}", h.listAttribute(h.queries.GamesByGenre))
	mux.HandleFunc("GET /games/by-tag/{value}", h.listAttribute(h.queries.GamesByTag))
	mux.HandleFunc("GET /games/by-multiplayer-mode/{value}", h.listAttribute(h.queries.GamesByMultiplayerMode))
	mux.HandleFunc("GET /games/by-input-method/{value}", h.listAttribute(h.queries.GamesByInputMethod))

	mux.HandleFunc("GET /games/by-decade/{decade}", h.gamesByDecade)
	mux.HandleFunc("GET /games/by-year/{year}", h.gamesByYear)
	mux.HandleFunc("GET /games/by-price-model/{value}", h.listField(h.queries.GamesByPriceModel))
	mux.HandleFunc("GET /games/by-developer/{value}", h.listField(h.queries.GamesByDeveloper))
	mux.HandleFunc("GET /games/by-publisher/{value}", h.listField(h.queries.GamesByPublisher))
	mux.HandleFunc("GET /games/by-franchise/{value}", h.listField(h.queries.GamesByFranchise))
	mux.HandleFunc("GET /games/vr/{value}", h.listFlag(h.queries.GamesByVR))
	mux.HandleFunc("GET /games/online/{value}", h.listFlag(h.queries.GamesByOnlineRequirement))
	mux.HandleFunc("GET /games/rating-at-least/{value}", h.listRange(h.queries.GamesByRatingAtLeast))
	mux.HandleFunc("GET /games/playtime-at-most/{value}", h.listRange(h.queries.GamesByPlaytimeAtMost))

	return mux
}

func (h *Handler) addGame(w http.ResponseWriter, r *http.Request) {
	var doc domain.GameDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		httpError(w, http.StatusBadRequest, "invalid game document: "+err.Error())
		return
	}
	if result := h.validator.ValidateDocument(doc); !result.IsValid {
		writeJSON(w, http.StatusBadRequest, result)
		return
	}
	res, err := h.upserts.AddGame(r.Context(), doc)
	if err != nil {
		h.serverError(w, err)
		return
	}
	status := http.StatusOK
	if res.Inserted {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

func (h *Handler) updateGame(w http.ResponseWriter, r *http.Request) {
	var patch domain.GamePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpError(w, http.StatusBadRequest, "invalid patch: "+err.Error())
		return
	}
	if result := h.validator.ValidatePatch(patch); !result.IsValid {
		writeJSON(w, http.StatusBadRequest, result)
		return
	}
	res, err := h.upserts.UpdateGame(r.Context(), r.PathValue("ref"), patch)
	if err != nil {
		h.serverError(w, err)
		return
	}
	if !res.Updated {
		writeJSON(w, http.StatusNotFound, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) upsertAliases(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string   `json:"title"`
		Aliases []string `json:"aliases"`
		Notes   *string  `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid alias request: "+err.Error())
		return
	}
	if req.Title == "" {
		httpError(w, http.StatusBadRequest, "title is required")
		return
	}
	res, err := h.upserts.UpsertAliases(r.Context(), req.Title, req.Aliases, req.Notes)
	if err != nil {
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) gameByID(w http.ResponseWriter, r *http.Request) {
	game, found, err := h.queries.GameByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.serverError(w, err)
		return
	}
	if !found {
		httpError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (h *Handler) gameByName(w http.ResponseWriter, r *http.Request) {
	game, found, err := h.queries.GameByNormalizedName(r.Context(), r.PathValue("name"))
	if err != nil {
		h.serverError(w, err)
		return
	}
	if !found {
		httpError(w, http.StatusNotFound, "game not found")
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (h *Handler) searchGames(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		httpError(w, http.StatusBadRequest, "q is required")
		return
	}
	games, err := h.queries.SearchGamesByName(r.Context(), query, queryLimit(r))
	if err != nil {
		h.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *Handler) gamesByDecade(w http.ResponseWriter, r *http.Request) {
	decade, err := strconv.Atoi(r.PathValue("decade"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid decade")
		return
	}
	page, err := h.queries.GamesByDecade(r.Context(), decade, queryCursor(r), queryLimit(r))
	h.writePage(w, page, err)
}

func (h *Handler) gamesByYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid year")
		return
	}
	page, err := h.queries.GamesByYear(r.Context(), year, queryCursor(r), queryLimit(r))
	h.writePage(w, page, err)
}

type attributeLister func(ctx context.Context, value string, decade *int, cursor string, limit int) (domain.GamePage, error)

func (h *Handler) listAttribute(list attributeLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var decade *int
		if raw := r.URL.Query().Get("decade"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				httpError(w, http.StatusBadRequest, "invalid decade")
				return
			}
			decade = &parsed
		}
		page, err := list(r.Context(), r.PathValue("value"), decade, queryCursor(r), queryLimit(r))
		h.writePage(w, page, err)
	}
}

func (h *Handler) listField(list func(ctx context.Context, value, cursor string, limit int) (domain.GamePage, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := list(r.Context(), r.PathValue("value"), queryCursor(r), queryLimit(r))
		h.writePage(w, page, err)
	}
}

func (h *Handler) listFlag(list func(ctx context.Context, value bool, cursor string, limit int) (domain.GamePage, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value, err := strconv.ParseBool(r.PathValue("value"))
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid flag value")
			return
		}
		page, err := list(r.Context(), value, queryCursor(r), queryLimit(r))
		h.writePage(w, page, err)
	}
}

func (h *Handler) listRange(list func(ctx context.Context, value float64, cursor string, limit int) (domain.GamePage, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		value, err := strconv.ParseFloat(r.PathValue("value"), 64)
		if err != nil {
			httpError(w, http.StatusBadRequest, "invalid numeric value")
			return
		}
		page, err := list(r.Context(), value, queryCursor(r), queryLimit(r))
		h.writePage(w, page, err)
	}
}

func (h *Handler) writePage(w http.ResponseWriter, page domain.GamePage, err error) {
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.logger.Error("request failed", zap.Error(err))
	httpError(w, http.StatusInternalServerError, "internal error")
}

func queryCursor(r *http.Request) string {
	return r.URL.Query().Get("cursor")
}

func queryLimit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
