package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"resenje.org/web"

	"github.com/evername/w3dns/core/jsonhttp"
	"github.com/evername/w3dns/core/logging"
)

func (s *server) setupRouting() {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(jsonhttp.NotFoundHandler)

	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "w3dns resolver")
	})

	router.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "User-agent: *\nDisallow: /")
	})

	router.HandleFunc("/health", s.healthHandler)
	router.HandleFunc("/readiness", s.readinessHandler)

	router.Handle("/resolve/{name}", jsonhttp.MethodHandler{
		"GET": http.HandlerFunc(s.resolveHandler),
	})

	router.Handle("/tlds", jsonhttp.MethodHandler{
		"GET": http.HandlerFunc(s.tldsHandler),
	})

	router.Handle("/tlds/refresh", jsonhttp.MethodHandler{
		"POST": http.HandlerFunc(s.tldsRefreshHandler),
	})

	if s.MetricsRegistry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	s.Handler = web.ChainHandlers(
		logging.NewHTTPAccessLogHandler(s.Logger, logrus.InfoLevel, "api access"),
		handlers.CompressHandler,
		s.pageviewMetricsHandler,
		func(h http.Handler) http.Handler {
			if len(s.CORSAllowedOrigins) > 0 {
				return handlers.CORS(
					handlers.AllowedOrigins(s.CORSAllowedOrigins),
					handlers.AllowedMethods([]string{"GET", "POST"}),
				)(h)
			}
			return h
		},
		web.FinalHandler(router),
	)
}
