package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status     string `json:"status"`
	Timestamp  string `json:"timestamp"`
	DataSource string `json:"data_source"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		DataSource: s.collector.Fetcher.Name(),
	})
}
