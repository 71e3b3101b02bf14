package api

import (
	"net/http"

	"github.com/evername/w3dns/core/jsonhttp"
)

type tldsResponse struct {
	TLDs []string `json:"tlds"`
}

func (s *server) tldsHandler(w http.ResponseWriter, r *http.Request) {
	jsonhttp.OK(w, tldsResponse{
		TLDs: s.Resolver.TLDs(),
	})
}

func (s *server) tldsRefreshHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Resolver.RefreshTLDs(); err != nil {
		s.Logger.Debugf("tlds api: refresh: %v", err)
		s.Logger.Error("tlds api: refresh failed")
		jsonhttp.ServiceUnavailable(w, "cannot refresh supported tlds")
		return
	}
	jsonhttp.OK(w, tldsResponse{
		TLDs: s.Resolver.TLDs(),
	})
}
