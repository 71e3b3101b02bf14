// Package evername resolves names registered on the Everscale naming system.
// Resolution walks two fixed contracts: the root resolver contract maps a
// name path to the address of a per-name certificate contract, whose records
// map holds tagged binary cells. A records entry may in turn point at a
// content contract whose chunks are assembled into one document.
package evername

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/evername/w3dns/core/record"
	"github.com/evername/w3dns/core/resolver"
	"github.com/evername/w3dns/core/resolver/client"
	"github.com/evername/w3dns/core/resolver/client/evername/evercall"
	"github.com/evername/w3dns/core/resolver/ipfsgw"
)

const (
	// DefaultEndpoint is the public Everscale JSON-RPC gateway.
	DefaultEndpoint = "https://jrpc.everwallet.net/rpc"
	// DefaultRootAddress is the root resolver contract of the naming system.
	DefaultRootAddress = "0:a7d0694c025b61e1a4a846f1cf88980a5df8adf737d17ac58e35bf172c9fca29"
)

const (
	resolveMethod = "resolve"
	recordsMethod = "getRecords"
	detailsMethod = "getDetails"

	certificateField = "certificate"
	recordsField     = "records"
	contentField     = "content"
	contentTypeField = "contentType"

	// defaultContentType is assumed when a content contract declares none.
	defaultContentType = "text/html; charset=utf-8"
)

// Make sure Client implements the client.Interface.
var _ client.Interface = (*Client)(nil)

type dialFunc func(endpoint string) (evercall.Caller, evercall.Codec, error)

func wrapDial(endpoint string) (evercall.Caller, evercall.Codec, error) {
	c, err := evercall.Dial(endpoint)
	if err != nil {
		return nil, nil, err
	}
	return c, c, nil
}

// Client is a connection to the Everscale naming system contracts.
type Client struct {
	endpoint    string
	rootAddress string
	gatewayHost string

	caller evercall.Caller
	codec  evercall.Codec
	dialFn dialFunc
}

// Option function sets an option on the Client.
type Option func(*Client)

// WithRootAddress overrides the root resolver contract address.
func WithRootAddress(address string) Option {
	return func(c *Client) {
		c.rootAddress = address
	}
}

// WithGatewayHost overrides the IPFS gateway host used for Ipfs records.
func WithGatewayHost(host string) Option {
	return func(c *Client) {
		c.gatewayHost = host
	}
}

// NewClient will create a new Client connected to the given gateway endpoint.
func NewClient(endpoint string, opts ...Option) (client.Interface, error) {
	c := &Client{
		rootAddress: DefaultRootAddress,
		gatewayHost: ipfsgw.DefaultHost,
		dialFn:      wrapDial,
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
	caller, codec, err := c.dialFn(endpoint)
	if err != nil {
		return fmt.Errorf("dial %q: %v: %w", endpoint, err, ErrFailedToConnect)
	}

	c.endpoint = endpoint
	c.caller = caller
	c.codec = codec
	return nil
}

// IsConnected implements the client.Interface.
func (c *Client) IsConnected() bool {
	return c.caller != nil
}

// Endpoint returns the gateway endpoint the client is connected to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Close implements the client.Interface.
func (c *Client) Close() error {
	if c.caller != nil {
		if err := c.caller.Close(); err != nil {
			return err
		}
	}
	c.caller = nil
	c.codec = nil
	return nil
}

// Resolve implements the resolver.Interface. The first record present in the
// priority order wins; resolution is all-or-nothing per name.
func (c *Client) Resolve(name string) (record.Data, record.Tag, error) {
	if !c.IsConnected() {
		return record.Data{}, 0, errNotConnected
	}

	certificate, err := c.certificateAddress(name)
	if err != nil {
		return record.Data{}, 0, err
	}

	records, err := c.records(name, certificate)
	if err != nil {
		return record.Data{}, 0, err
	}

	for _, tag := range record.Resolvable() {
		cell, ok := records[tag]
		if !ok {
			continue
		}
		data, err := c.decodeRecord(name, tag, cell)
		if err != nil {
			return record.Data{}, 0, err
		}
		return data, tag, nil
	}
	return record.Data{}, 0, fmt.Errorf("resolve %s: %w", name, resolver.ErrNoResolvableRecord)
}

// certificateAddress asks the root resolver contract for the certificate
// contract holding the records of the given name.
func (c *Client) certificateAddress(name string) (string, error) {
	out, err := c.caller.RunLocal(c.rootAddress, resolveMethod, map[string]interface{}{
		"answerId": 0,
		"path":     name,
	})
	if err != nil {
		if errors.Is(err, evercall.ErrAccountNotFound) {
			return "", fmt.Errorf("resolve %s: %w", name, resolver.ErrNameNotFound)
		}
		return "", fmt.Errorf("resolve %s: root lookup: %w", name, err)
	}

	address, err := out.Address(certificateField)
	if err != nil || address == "" {
		return "", fmt.Errorf("resolve %s: no certificate address: %w", name, resolver.ErrNameNotFound)
	}
	return address, nil
}

// records fetches the records map of a certificate contract, dropping
// entries with unrecognized wire identifiers for forward compatibility.
func (c *Client) records(name, certificate string) (map[record.Tag]evercall.Cell, error) {
	out, err := c.caller.RunLocal(certificate, recordsMethod, map[string]interface{}{
		"answerId": 0,
	})
	if err != nil {
		if errors.Is(err, evercall.ErrAccountNotFound) {
			return nil, fmt.Errorf("resolve %s: certificate %s: %w", name, certificate, resolver.ErrNameNotFound)
		}
		return nil, fmt.Errorf("resolve %s: records lookup: %w", name, err)
	}

	cells, err := out.CellMap(recordsField)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: records: %v: %w", name, err, resolver.ErrMalformedRecord)
	}

	records := make(map[record.Tag]evercall.Cell, len(cells))
	for id, cell := range cells {
		tag, err := record.FromWire(id)
		if err != nil {
			continue
		}
		records[tag] = cell
	}
	return records, nil
}

func (c *Client) decodeRecord(name string, tag record.Tag, cell evercall.Cell) (record.Data, error) {
	switch tag {
	case record.Onchain:
		value, err := c.codec.DecodeString(cell)
		if err != nil {
			return record.Data{}, malformed(name, tag, err)
		}
		return record.OnchainData(value), nil
	case record.OnchainContract:
		address, err := c.codec.DecodeAddress(cell)
		if err != nil {
			return record.Data{}, malformed(name, tag, err)
		}
		content, contentType, err := c.contractContent(name, address)
		if err != nil {
			return record.Data{}, err
		}
		return record.OnchainContractData(content, contentType), nil
	case record.Ipfs:
		cid, err := c.codec.DecodeString(cell)
		if err != nil {
			return record.Data{}, malformed(name, tag, err)
		}
		return record.DomainString(ipfsgw.Link(c.gatewayHost, cid)), nil
	default:
		value, err := c.codec.DecodeString(cell)
		if err != nil {
			return record.Data{}, malformed(name, tag, err)
		}
		return record.DomainString(value), nil
	}
}

// contractContent loads and assembles the chunked content of a content
// contract, along with its declared content type.
func (c *Client) contractContent(name, address string) (string, string, error) {
	out, err := c.caller.RunLocal(address, detailsMethod, nil)
	if err != nil {
		return "", "", fmt.Errorf("resolve %s: content contract %s: %w", name, address, err)
	}

	cells, err := out.CellMap(contentField)
	if err != nil {
		return "", "", fmt.Errorf("resolve %s: content contract %s: %v: %w", name, address, err, resolver.ErrMalformedRecord)
	}

	contentType, err := out.String(contentTypeField)
	if err != nil {
		if !errors.Is(err, evercall.ErrFieldMissing) {
			return "", "", fmt.Errorf("resolve %s: content contract %s: %v: %w", name, address, err, resolver.ErrMalformedRecord)
		}
		contentType = defaultContentType
	}

	// Chunks are keyed by position in the content map.
	keys := make([]uint32, 0, len(cells))
	for k := range cells {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var content strings.Builder
	for _, k := range keys {
		chunk, err := c.codec.DecodeString(cells[k])
		if err != nil {
			return "", "", fmt.Errorf("resolve %s: content chunk %d: %v: %w", name, k, err, resolver.ErrMalformedRecord)
		}
		content.WriteString(chunk)
	}
	return content.String(), contentType, nil
}

func malformed(name string, tag record.Tag, err error) error {
	return fmt.Errorf("resolve %s: record %s: %v: %w", name, tag, err, resolver.ErrMalformedRecord)
}
