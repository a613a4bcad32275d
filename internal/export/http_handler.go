package export

import (
	"fmt"
	"net/http"
	"time"
)

// Handler exposes catalog exports over HTTP. The format query parameter
// selects csv (default) or xlsx.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with a GET endpoint.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stamp := time.Now().UTC().Format("20060102-150405")

	switch r.URL.Query().Get("format") {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="games-%s.csv"`, stamp))
		if _, err := h.service.ExportGamesCSV(r.Context(), w); err != nil {
			// Headers are gone; all we can do is cut the stream short.
			return
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="catalog-%s.xlsx"`, stamp))
		if _, err := h.service.ExportWorkbook(r.Context(), w); err != nil {
			return
		}
	default:
		http.Error(w, "unsupported format", http.StatusBadRequest)
	}
}
