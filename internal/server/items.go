package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mosaic/internal/models"
	"github.com/desertthunder/mosaic/internal/services"
	"github.com/desertthunder/mosaic/internal/shared"
)

// Page size bounds for the items endpoint.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 500
)

// ItemStore is the catalog access the items endpoint needs. repositories.MediaRepository satisfies it.
type ItemStore interface {
	Page(ctx context.Context, after int64, limit int) ([]*models.MediaItem, error)
	GetBySequence(ctx context.Context, sequence int64) (*models.MediaItem, error)
}

// ItemsHandler serves catalog pages.
type ItemsHandler struct {
	store  ItemStore
	logger *log.Logger
}

// NewItemsHandler creates a handler over store.
func NewItemsHandler(store ItemStore, logger *log.Logger) *ItemsHandler {
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}
	return &ItemsHandler{store: store, logger: logger}
}

// Routes implements [Handler].
func (h *ItemsHandler) Routes() []string {
	return []string{services.ItemsPath, services.ItemsPath + "/"}
}

// ServeHTTP implements [Handler].
func (h *ItemsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if rest := strings.TrimPrefix(r.URL.Path, services.ItemsPath+"/"); rest != r.URL.Path && rest != "" {
		h.serveItem(w, r, rest)
		return
	}
	h.servePage(w, r)
}

func (h *ItemsHandler) servePage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	after, err := parseInt(q.Get("after"), 0)
	if err != nil || after < 0 {
		writeError(w, http.StatusBadRequest, "after must be a non-negative integer")
		return
	}
	limit, err := parseInt(q.Get("limit"), DefaultPageLimit)
	if err != nil || limit <= 0 {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	limit = min(limit, MaxPageLimit)

	media, err := h.store.Page(r.Context(), after, int(limit)+1)
	if err != nil {
		h.logger.Error("failed to load page", "after", after, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load items")
		return
	}

	resp := services.PageResponse{Items: make([]services.ItemJSON, 0, len(media))}
	if len(media) > int(limit) {
		media = media[:limit]
		resp.HasMore = true
	}
	for _, m := range media {
		resp.Items = append(resp.Items, toItemJSON(m))
	}
	if resp.HasMore {
		resp.Next = media[len(media)-1].Sequence()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ItemsHandler) serveItem(w http.ResponseWriter, r *http.Request, raw string) {
	seq, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seq <= 0 {
		writeError(w, http.StatusBadRequest, "item id must be a positive integer")
		return
	}

	m, err := h.store.GetBySequence(r.Context(), seq)
	if errors.Is(err, shared.ErrItemNotFound) {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to load item", "sequence", seq, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load item")
		return
	}
	writeJSON(w, http.StatusOK, toItemJSON(m))
}

// Health answers liveness probes.
func Health() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// NewCatalogRouter wires the catalog endpoints with the standard middleware stack.
func NewCatalogRouter(store ItemStore, token string, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger))
	router.Handle(http.MethodGet, "/healthz", Health())

	router.Use(BearerAuth(token))
	router.Handler(NewItemsHandler(store, logger))
	return router
}

func toItemJSON(m *models.MediaItem) services.ItemJSON {
	return services.ItemJSON{ID: m.Sequence(), Width: float64(m.Width()), Height: float64(m.Height()), Path: m.Name()}
}

func parseInt(s string, def int64) (int64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, services.ErrorResponse{Error: msg})
}
