package api

import (
	"net/http"

	ver "github.com/evername/w3dns"
	"github.com/evername/w3dns/core/jsonhttp"
)

type statusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *server) healthHandler(w http.ResponseWriter, r *http.Request) {
	jsonhttp.OK(w, statusResponse{
		Status:  "ok",
		Version: ver.Version,
	})
}

func (s *server) readinessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
