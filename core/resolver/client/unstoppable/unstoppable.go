// Package unstoppable resolves names registered with the Unstoppable Domains
// registrar through its public REST API. The registrar carries no per-record
// tag taxonomy: a resolved name yields a directly usable target, either the
// profile's web2 URL or its IPFS record turned into a gateway link.
package unstoppable

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"

	"github.com/evername/w3dns/core/record"
	"github.com/evername/w3dns/core/resolver"
	"github.com/evername/w3dns/core/resolver/client"
	"github.com/evername/w3dns/core/resolver/ipfsgw"
)

// DefaultEndpoint is the public registrar API.
const DefaultEndpoint = "https://api.unstoppabledomains.com"

const (
	tldsPath    = "/resolve/supported_tlds"
	profilePath = "/profile/public/"

	// dnsNamingService marks suffixes the registrar itself defers to plain
	// DNS; those are not eligible for this backend.
	dnsNamingService = "DNS"
)

var (
	// ErrProfileIncomplete denotes a profile that carries neither a web2
	// URL nor an IPFS record.
	ErrProfileIncomplete = errors.New("profile incomplete")
	// ErrFailedToConnect denotes that the registrar API could not be
	// reached during connect.
	ErrFailedToConnect = errors.New("failed to connect")
)

// Make sure Client implements the client.Interface.
var _ client.Interface = (*Client)(nil)

// Client is a connection to the registrar REST API.
type Client struct {
	endpoint    string
	gatewayHost string
	httpClient  *http.Client

	mu   sync.RWMutex
	tlds []string
}

// Option function sets an option on the Client.
type Option func(*Client)

// WithGatewayHost overrides the IPFS gateway host used for IPFS records.
func WithGatewayHost(host string) Option {
	return func(c *Client) {
		c.gatewayHost = host
	}
}

// NewClient will create a new Client connected to the given registrar
// endpoint. The initial supported-suffix fetch happens here; construction
// fails if the registrar cannot be reached.
func NewClient(endpoint string, opts ...Option) (client.Interface, error) {
	c := &Client{
		gatewayHost: ipfsgw.DefaultHost,
		httpClient:  &http.Client{},
	}

	// Apply all options.
	for _, o := range opts {
		o(c)
	}

	if err := c.Connect(endpoint); err != nil {
		return nil, err
	}
	return c, nil
}

// Connect implements the client.Interface.
func (c *Client) Connect(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint %q: unsupported scheme %q", endpoint, u.Scheme)
	}
	c.endpoint = strings.TrimSuffix(endpoint, "/")

	tlds, err := c.fetchTLDs()
	if err != nil {
		c.endpoint = ""
		return fmt.Errorf("%v: %w", err, ErrFailedToConnect)
	}

	c.mu.Lock()
	c.tlds = tlds
	c.mu.Unlock()
	return nil
}

// IsConnected implements the client.Interface.
func (c *Client) IsConnected() bool {
	return c.endpoint != ""
}

// Close implements the client.Interface.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	c.endpoint = ""
	return nil
}

// TLDs returns the last fetched supported suffixes, each prefixed with a
// dot. The list is refreshed only by an explicit RefreshTLDs call.
func (c *Client) TLDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tlds := make([]string, len(c.tlds))
	copy(tlds, c.tlds)
	return tlds
}

// RefreshTLDs re-fetches the supported suffixes and atomically replaces the
// current list. On failure the previous list stays intact.
func (c *Client) RefreshTLDs() error {
	tlds, err := c.fetchTLDs()
	if err != nil {
		return fmt.Errorf("refresh supported tlds: %w", err)
	}

	c.mu.Lock()
	c.tlds = tlds
	c.mu.Unlock()
	return nil
}

type tldsResponse struct {
	Meta map[string]struct {
		NamingService string `json:"namingService"`
	} `json:"meta"`
}

func (c *Client) fetchTLDs() ([]string, error) {
	body, err := c.get(c.endpoint + tldsPath)
	if err != nil {
		return nil, err
	}

	var resp tldsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode supported tlds: %w", err)
	}

	tlds := make([]string, 0, len(resp.Meta))
	for suffix, meta := range resp.Meta {
		if meta.NamingService == dnsNamingService {
			continue
		}
		tlds = append(tlds, "."+suffix)
	}
	sort.Strings(tlds)
	return tlds, nil
}

type profileResponse struct {
	Profile struct {
		Web2URL string `json:"web2Url"`
	} `json:"profile"`
	Records struct {
		IpfsHTML string `json:"ipfs.html.value"`
	} `json:"records"`
}

// Resolve implements the resolver.Interface. The profile's web2 URL wins
// over its IPFS record.
func (c *Client) Resolve(name string) (record.Data, record.Tag, error) {
	body, err := c.get(c.endpoint + profilePath + name)
	if err != nil {
		return record.Data{}, 0, fmt.Errorf("resolve %s: %w", name, err)
	}

	var profile profileResponse
	if err := json.Unmarshal(body, &profile); err != nil {
		return record.Data{}, 0, fmt.Errorf("resolve %s: decode profile: %w", name, err)
	}

	switch {
	case profile.Profile.Web2URL != "":
		return record.DomainString(profile.Profile.Web2URL), record.UnstoppableDomain, nil
	case profile.Records.IpfsHTML != "":
		link := ipfsgw.Link(c.gatewayHost, profile.Records.IpfsHTML)
		return record.DomainString(link), record.UnstoppableDomain, nil
	}
	return record.Data{}, 0, fmt.Errorf("resolve %s: %w", name, ErrProfileIncomplete)
}

func (c *Client) get(rawurl string) ([]byte, error) {
	resp, err := c.httpClient.Get(rawurl)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, resolver.ErrNameNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return ioutil.ReadAll(resp.Body)
}
