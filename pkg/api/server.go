package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/panuwat93/smpk-duty-roster/internal/config"
	"github.com/panuwat93/smpk-duty-roster/pkg/core/services"
	"github.com/panuwat93/smpk-duty-roster/pkg/db"
	"github.com/panuwat93/smpk-duty-roster/pkg/realtime"
)

// Server is the HTTP and websocket gateway in front of the exchange engine.
// It is a thin transport: every operation delegates to the services package
// and the store, and realtime updates flow out of the hub.
type Server struct {
	cfg    *config.Config
	store  db.Store
	hub    *realtime.Hub
	logger *zap.Logger
}

// NewServer wires a gateway over the given store and hub.
func NewServer(cfg *config.Config, store db.Store, hub *realtime.Hub, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, store: store, hub: hub, logger: logger}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/requests/exchange", s.handleSubmitExchange).Methods(http.MethodPost)
	api.HandleFunc("/requests/give", s.handleSubmitGive).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id}/approve", s.handleApprove).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id}/reject", s.handleReject).Methods(http.MethodPost)
	api.HandleFunc("/requests", s.handleListRequests).Methods(http.MethodGet)
	api.HandleFunc("/roster/{monthKey}", s.handleGetRoster).Methods(http.MethodGet)
	api.HandleFunc("/team", s.handleGetTeam).Methods(http.MethodGet)
	api.HandleFunc("/team/candidates", s.handleCandidates).Methods(http.MethodGet)

	r.HandleFunc("/ws", s.handleWebSocket)
	return r
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the service error taxonomy onto HTTP statuses. Unknown
// errors are reported as a store failure without leaking internals.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrConcurrentModification):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrIneligibleCounterpart),
		errors.Is(err, services.ErrNoAvailableSlot):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("Request failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "storage operation failed"})
	}
}
