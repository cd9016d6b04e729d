package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Read-only observability routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/events", handler.GetEvents).Methods("GET")
	api.HandleFunc("/events/{uid}", handler.GetEvent).Methods("GET")
	api.HandleFunc("/signals", handler.GetSignals).Methods("GET")
	api.HandleFunc("/providers/stats", handler.GetProviderStats).Methods("GET")

	return r
}
