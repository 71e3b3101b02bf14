package api_test

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"resenje.org/web"

	"github.com/evername/w3dns/core/api"
	"github.com/evername/w3dns/core/logging"
)

type testServerOptions struct {
	Resolver api.Resolver
}

func newTestServer(t *testing.T, o testServerOptions) (client *http.Client, cleanup func()) {
	s := api.New(api.Options{
		Resolver: o.Resolver,
		Logger:   logging.New(ioutil.Discard, 0),
	})
	ts := httptest.NewServer(s)
	cleanup = ts.Close

	client = &http.Client{
		Transport: web.RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			u, err := url.Parse(ts.URL + r.URL.String())
			if err != nil {
				return nil, err
			}
			r.URL = u
			return ts.Client().Transport.RoundTrip(r)
		}),
	}
	return client, cleanup
}
