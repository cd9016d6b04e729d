package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/trogers1052/market-radar/internal/marketdata"
	"github.com/trogers1052/market-radar/internal/models"
)

const defaultListLimit = 50

// EventStore is the slice of the database the API reads from.
type EventStore interface {
	GetRecentNewsEvents(limit int) ([]*models.NewsItem, error)
	GetValidatedNewsEvents(limit int) ([]*models.NewsItem, error)
	GetNewsEventsByTicker(ticker string, limit int) ([]*models.NewsItem, error)
	GetNewsEventByUID(uid string) (*models.NewsItem, error)
	GetRecentTradingSignals(limit int) ([]*models.TradingSignal, error)
	GetTradingSignalsByTicker(ticker string, limit int) ([]*models.TradingSignal, error)
}

// StatsSource exposes provider counters for observability.
type StatsSource interface {
	Stats() []marketdata.ProviderStats
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	store EventStore
	stats StatsSource
}

// NewHandler creates a new Handler
func NewHandler(store EventStore, stats StatsSource) *Handler {
	return &Handler{
		store: store,
		stats: stats,
	}
}

// GetEvents handles GET /api/v1/events
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r)

	var (
		items []*models.NewsItem
		err   error
	)
	switch {
	case r.URL.Query().Get("ticker") != "":
		items, err = h.store.GetNewsEventsByTicker(r.URL.Query().Get("ticker"), limit)
	case r.URL.Query().Get("validated") == "true":
		items, err = h.store.GetValidatedNewsEvents(limit)
	default:
		items, err = h.store.GetRecentNewsEvents(limit)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []*models.NewsItem{}
	}

	respondJSON(w, http.StatusOK, items)
}

// GetEvent handles GET /api/v1/events/{uid}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	uid := vars["uid"]

	item, err := h.store.GetNewsEventByUID(uid)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// GetSignals handles GET /api/v1/signals
func (h *Handler) GetSignals(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r)

	var (
		signals []*models.TradingSignal
		err     error
	)
	if ticker := r.URL.Query().Get("ticker"); ticker != "" {
		signals, err = h.store.GetTradingSignalsByTicker(ticker, limit)
	} else {
		signals, err = h.store.GetRecentTradingSignals(limit)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if signals == nil {
		signals = []*models.TradingSignal{}
	}

	respondJSON(w, http.StatusOK, signals)
}

// GetProviderStats handles GET /api/v1/providers/stats
func (h *Handler) GetProviderStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.stats.Stats())
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func queryLimit(r *http.Request) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			return n
		}
	}
	return defaultListLimit
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
