package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler routes websocket sessions, metrics and health checks.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	return router
}

type health struct {
	Status   string `json:"status"`
	Sessions int64  `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	h := health{Status: "ok", Sessions: s.sessionCount.Load()}
	code := http.StatusOK
	if s.closed.Load() {
		h.Status = "stopping"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(h)
}
