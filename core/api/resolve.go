package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/evername/w3dns/core/jsonhttp"
	"github.com/evername/w3dns/core/record"
	"github.com/evername/w3dns/core/resolver"
	"github.com/evername/w3dns/core/resolver/client/unstoppable"
)

type resolveResponse struct {
	Name     string `json:"name"`
	Tag      string `json:"tag"`
	Target   string `json:"target,omitempty"`
	Content  string `json:"content,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

func (s *server) resolveHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	data, tag, err := s.Resolver.Resolve(name)
	if err != nil {
		s.Logger.Debugf("resolve api: resolve %s: %v", name, err)
		switch {
		case errors.Is(err, resolver.ErrNameNotFound):
			jsonhttp.NotFound(w, "name not found")
		case errors.Is(err, resolver.ErrNoResolvableRecord):
			jsonhttp.NotFound(w, "no resolvable record")
		case errors.Is(err, unstoppable.ErrProfileIncomplete):
			jsonhttp.NotFound(w, "profile incomplete")
		case errors.Is(err, resolver.ErrMalformedRecord):
			jsonhttp.BadGateway(w, "malformed record")
		default:
			s.Logger.Errorf("resolve api: resolve %s failed", name)
			jsonhttp.InternalServerError(w, nil)
		}
		return
	}
	s.metrics.ResolveCount.Inc()

	resp := resolveResponse{
		Name: name,
		Tag:  tag.String(),
	}
	switch data.Kind {
	case record.KindOnchainData:
		resp.Content = data.Value
	case record.KindOnchainContract:
		resp.Content = data.Value
		resp.MimeType = data.MimeType
	default:
		resp.Target = data.Value
	}
	jsonhttp.OK(w, resp)
}
