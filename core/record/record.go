// Package record defines the typed taxonomy of answers a naming system can
// return for a queried name: which kind of record was found, and the payload
// decoded from it.
package record

import (
	"errors"
	"fmt"
)

// Tag identifies the kind of record a naming system returned for a name.
type Tag int

const (
	// Tor denotes an onion service address record.
	Tor Tag = iota
	// Ipfs denotes an IPFS content identifier record.
	Ipfs
	// Web2 denotes a plain URL or IP address record.
	Web2
	// Onchain denotes textual content stored directly on chain.
	Onchain
	// OnchainContract denotes a pointer to a secondary contract holding
	// chunked content.
	OnchainContract
	// NonWeb3 marks a name that was never looked up on any naming system.
	NonWeb3
	// UnstoppableDomain marks a result from the registrar API, which
	// carries no finer-grained tag.
	UnstoppableDomain
)

// Wire identifiers of the on-chain tags, as used for keys of the records map
// of a domain certificate contract. The sentinel tags have no wire identifier.
const (
	torWireTag             uint32 = 1001
	ipfsWireTag            uint32 = 1002
	web2WireTag            uint32 = 1003
	onchainWireTag         uint32 = 1004
	onchainContractWireTag uint32 = 1005
)

// ErrUnknownTag denotes a wire identifier that maps to no known record tag.
var ErrUnknownTag = errors.New("unknown address tag")

// FromWire returns the tag for a wire identifier found in a records map.
func FromWire(id uint32) (Tag, error) {
	switch id {
	case torWireTag:
		return Tor, nil
	case ipfsWireTag:
		return Ipfs, nil
	case web2WireTag:
		return Web2, nil
	case onchainWireTag:
		return Onchain, nil
	case onchainContractWireTag:
		return OnchainContract, nil
	}
	return 0, fmt.Errorf("wire identifier %d: %w", id, ErrUnknownTag)
}

// Wire returns the wire identifier of the tag, or 0 for the sentinel tags.
func (t Tag) Wire() uint32 {
	switch t {
	case Tor:
		return torWireTag
	case Ipfs:
		return ipfsWireTag
	case Web2:
		return web2WireTag
	case Onchain:
		return onchainWireTag
	case OnchainContract:
		return onchainContractWireTag
	}
	return 0
}

// Resolvable returns the on-chain tags a records map is probed for.
// Order is priority: the first tag present in a records map wins.
func Resolvable() []Tag {
	return []Tag{Tor, Ipfs, Web2, Onchain, OnchainContract}
}

// String returns a diagnostic form of the tag.
func (t Tag) String() string {
	switch t {
	case Tor:
		return fmt.Sprintf("tor(%d)", torWireTag)
	case Ipfs:
		return fmt.Sprintf("ipfs(%d)", ipfsWireTag)
	case Web2:
		return fmt.Sprintf("ip(%d)", web2WireTag)
	case Onchain:
		return fmt.Sprintf("onchain(%d)", onchainWireTag)
	case OnchainContract:
		return fmt.Sprintf("onchain-contract(%d)", onchainContractWireTag)
	case NonWeb3:
		return "non-ever(plain)"
	case UnstoppableDomain:
		return "unstoppable-domain"
	}
	return "invalid"
}

// Kind discriminates the payload shape of Data.
type Kind int

const (
	// KindDomainString is a directly usable string: URL, IP or gateway link.
	KindDomainString Kind = iota
	// KindOnchainData is raw textual content stored directly on chain.
	KindOnchainData
	// KindOnchainContract is content assembled from a secondary contract,
	// paired with its declared content type.
	KindOnchainContract
)

// Data is the resolved payload for a name. Which shape is populated is fully
// determined by the Tag paired with it: Tor, Web2, Ipfs, NonWeb3 and
// UnstoppableDomain yield a domain string, Onchain yields on-chain data and
// OnchainContract yields contract content with a mime type.
type Data struct {
	Kind     Kind
	Value    string
	MimeType string
}

// DomainString wraps a directly usable string target.
func DomainString(s string) Data {
	return Data{Kind: KindDomainString, Value: s}
}

// OnchainData wraps raw on-chain textual content.
func OnchainData(s string) Data {
	return Data{Kind: KindOnchainData, Value: s}
}

// OnchainContractData wraps content assembled from a secondary contract and
// its declared content type.
func OnchainContractData(content, mimeType string) Data {
	return Data{Kind: KindOnchainContract, Value: content, MimeType: mimeType}
}

// String returns a diagnostic form of the data. On-chain content is truncated
// to a short prefix to keep full page bodies out of the logs.
func (d Data) String() string {
	switch d.Kind {
	case KindOnchainData:
		return fmt.Sprintf("OnchainData(%s...)", prefix(d.Value, 10))
	case KindOnchainContract:
		return fmt.Sprintf("OnchainContractData(%s..., %s)", prefix(d.Value, 10), d.MimeType)
	}
	return fmt.Sprintf("DomainString(%s)", d.Value)
}

// prefix returns the first n runes of s, cutting on a rune boundary so the
// result stays valid UTF-8.
func prefix(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}
