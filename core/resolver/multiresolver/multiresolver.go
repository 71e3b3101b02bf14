// Package multiresolver dispatches domain name lookups to the backend
// responsible for the name's suffix and layers a time-bounded in-memory
// cache over the results. Names matching no Web3 suffix pass through
// unresolved, so the resolver can sit transparently in front of ordinary
// input.
package multiresolver

import (
	"errors"
	"fmt"
	"io/ioutil"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/evername/w3dns/core/logging"
	"github.com/evername/w3dns/core/record"
	"github.com/evername/w3dns/core/resolver"
	"github.com/evername/w3dns/core/resolver/client/evername"
	"github.com/evername/w3dns/core/resolver/client/unstoppable"
)

const (
	// DefaultEverSuffix routes a name to the naming-system backend.
	DefaultEverSuffix = ".ever"
	// DefaultCacheTTL bounds how long a resolved name is served from cache.
	DefaultCacheTTL = 5 * time.Minute

	// cacheCapacity bounds the cache size; the LRU store evicts under
	// capacity pressure.
	cacheCapacity = 1000
)

var (
	// ErrInvalidCacheTTL denotes that the cache was enabled without a
	// positive TTL. This is a configuration error, raised at build time.
	ErrInvalidCacheTTL = errors.New("cache is on, but ttl is not set or invalid")
)

// Registrar is the registrar-API backend surface the orchestrator consumes.
type Registrar interface {
	resolver.Interface
	TLDs() []string
	RefreshTLDs() error
}

// MultiResolver is the single entry point for Web3 domain resolution. Both
// backends are fixed at build time.
type MultiResolver struct {
	ever       resolver.Interface
	registrar  Registrar
	everSuffix string

	cache    *lru.Cache // nil when caching is disabled
	cacheTTL time.Duration
	now      func() time.Time

	logger  logging.Logger
	metrics metrics
}

type cacheEntry struct {
	data   record.Data
	tag    record.Tag
	expiry time.Time
}

// Options holds the configuration assembled by the Option setters, validated
// once by New.
type Options struct {
	everEndpoint      string
	registrarEndpoint string
	gatewayHost       string
	rootAddress       string
	everSuffix        string
	useCache          bool
	cacheTTL          time.Duration
	logger            logging.Logger

	// backend overrides, settable from tests
	ever      resolver.Interface
	registrar Registrar
}

// Option function sets an option on the Options.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		everEndpoint:      evername.DefaultEndpoint,
		registrarEndpoint: unstoppable.DefaultEndpoint,
		everSuffix:        DefaultEverSuffix,
		useCache:          true,
		cacheTTL:          DefaultCacheTTL,
	}
}

// WithEverEndpoint sets the naming-system JSON-RPC gateway endpoint.
func WithEverEndpoint(endpoint string) Option {
	return func(o *Options) {
		o.everEndpoint = endpoint
	}
}

// WithRegistrarEndpoint sets the registrar API base URL.
func WithRegistrarEndpoint(endpoint string) Option {
	return func(o *Options) {
		o.registrarEndpoint = endpoint
	}
}

// WithGatewayHost sets the IPFS gateway host used for IPFS records.
func WithGatewayHost(host string) Option {
	return func(o *Options) {
		o.gatewayHost = host
	}
}

// WithRootAddress overrides the naming-system root resolver contract.
func WithRootAddress(address string) Option {
	return func(o *Options) {
		o.rootAddress = address
	}
}

// WithCache enables or disables the cache. Enabling it requires a positive
// TTL by the time New runs.
func WithCache(enable bool) Option {
	return func(o *Options) {
		o.useCache = enable
	}
}

// WithNoCache disables the cache and clears any configured TTL.
func WithNoCache() Option {
	return func(o *Options) {
		o.useCache = false
		o.cacheTTL = 0
	}
}

// WithCacheTTL sets the cache time to live.
func WithCacheTTL(ttl time.Duration) Option {
	return func(o *Options) {
		o.cacheTTL = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

// New assembles a MultiResolver. Both backends are constructed here, which
// performs the registrar's initial suffix fetch; construction fails if
// either backend cannot come up or the cache policy is invalid.
func New(opts ...Option) (*MultiResolver, error) {
	o := defaultOptions()

	// Apply all options.
	for _, opt := range opts {
		opt(o)
	}

	if o.useCache && o.cacheTTL <= 0 {
		return nil, fmt.Errorf("cache ttl %s: %w", o.cacheTTL, ErrInvalidCacheTTL)
	}

	logger := o.logger
	if logger == nil {
		logger = logging.New(ioutil.Discard, 0)
	}

	ever := o.ever
	if ever == nil {
		everOpts := []evername.Option{}
		if o.gatewayHost != "" {
			everOpts = append(everOpts, evername.WithGatewayHost(o.gatewayHost))
		}
		if o.rootAddress != "" {
			everOpts = append(everOpts, evername.WithRootAddress(o.rootAddress))
		}
		cl, err := evername.NewClient(o.everEndpoint, everOpts...)
		if err != nil {
			return nil, fmt.Errorf("connect naming system backend: %w", err)
		}
		ever = cl
	}

	registrar := o.registrar
	if registrar == nil {
		registrarOpts := []unstoppable.Option{}
		if o.gatewayHost != "" {
			registrarOpts = append(registrarOpts, unstoppable.WithGatewayHost(o.gatewayHost))
		}
		cl, err := unstoppable.NewClient(o.registrarEndpoint, registrarOpts...)
		if err != nil {
			return nil, fmt.Errorf("connect registrar backend: %w", err)
		}
		registrar = cl.(Registrar)
	}

	mr := &MultiResolver{
		ever:       ever,
		registrar:  registrar,
		everSuffix: o.everSuffix,
		cacheTTL:   o.cacheTTL,
		now:        time.Now,
		logger:     logger,
		metrics:    newMetrics(),
	}
	if o.useCache {
		cache, err := lru.New(cacheCapacity)
		if err != nil {
			return nil, err
		}
		mr.cache = cache
	}
	return mr, nil
}

// Resolve implements the resolver.Interface. Dispatch order: cache, the
// naming-system suffix, the registrar suffixes, plain passthrough. The
// naming-system suffix takes precedence over a registrar suffix overlap.
func (mr *MultiResolver) Resolve(name string) (record.Data, record.Tag, error) {
	if data, tag, ok := mr.cached(name); ok {
		mr.metrics.CacheHits.Inc()
		return data, tag, nil
	}

	var (
		data record.Data
		tag  record.Tag
		err  error
	)
	switch {
	case strings.HasSuffix(name, mr.everSuffix):
		data, tag, err = mr.ever.Resolve(name)
		if err != nil {
			mr.metrics.ResolveErrors.Inc()
			return record.Data{}, 0, err
		}
		mr.metrics.EverResolutions.Inc()
		mr.logger.Debugf("multiresolver: ever host %s resolved into %s with tag %s", name, data, tag)
	case mr.matchesRegistrarSuffix(name):
		data, tag, err = mr.registrar.Resolve(name)
		if err != nil {
			mr.metrics.ResolveErrors.Inc()
			return record.Data{}, 0, fmt.Errorf("resolve registrar domain: %w", err)
		}
		mr.metrics.RegistrarResolutions.Inc()
		mr.logger.Debugf("multiresolver: registrar host %s resolved into %s with tag %s", name, data, tag)
	default:
		data, tag = record.DomainString(name), record.NonWeb3
		mr.metrics.Passthroughs.Inc()
	}

	mr.store(name, data, tag)
	return data, tag, nil
}

// TLDs returns the registrar's current supported suffixes.
func (mr *MultiResolver) TLDs() []string {
	return mr.registrar.TLDs()
}

// RefreshTLDs re-fetches the registrar's supported suffixes.
func (mr *MultiResolver) RefreshTLDs() error {
	return mr.registrar.RefreshTLDs()
}

// Close implements the resolver.Interface.
func (mr *MultiResolver) Close() error {
	if err := mr.ever.Close(); err != nil {
		return err
	}
	return mr.registrar.Close()
}

func (mr *MultiResolver) matchesRegistrarSuffix(name string) bool {
	for _, tld := range mr.registrar.TLDs() {
		if strings.HasSuffix(name, tld) {
			return true
		}
	}
	return false
}

// cached looks up the literal queried name. Expired entries are discarded
// lazily on access.
func (mr *MultiResolver) cached(name string) (record.Data, record.Tag, bool) {
	if mr.cache == nil {
		return record.Data{}, 0, false
	}
	v, ok := mr.cache.Get(name)
	if !ok {
		return record.Data{}, 0, false
	}
	entry := v.(cacheEntry)
	if mr.now().After(entry.expiry) {
		mr.cache.Remove(name)
		return record.Data{}, 0, false
	}
	return entry.data, entry.tag, true
}

func (mr *MultiResolver) store(name string, data record.Data, tag record.Tag) {
	if mr.cache == nil {
		return
	}
	// do not cache on-chain content
	if tag == record.Onchain || tag == record.OnchainContract {
		return
	}
	mr.cache.Add(name, cacheEntry{
		data:   data,
		tag:    tag,
		expiry: mr.now().Add(mr.cacheTTL),
	})
}
