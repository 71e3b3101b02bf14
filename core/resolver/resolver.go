// Package resolver defines the contract shared by all Web3 domain name
// backends: turning a name into a resolved target paired with a record tag.
package resolver

import (
	"errors"
	"io"

	"github.com/evername/w3dns/core/record"
)

var (
	// ErrParse denotes failure to parse a given value.
	ErrParse = errors.New("could not parse")
	// ErrNameNotFound denotes that the root lookup yielded no certificate
	// for the given name.
	ErrNameNotFound = errors.New("name not found")
	// ErrNoResolvableRecord denotes that records existed for the name but
	// none matched a known tag.
	ErrNoResolvableRecord = errors.New("no resolvable record")
	// ErrMalformedRecord denotes that a record cell was present but did not
	// decode to the expected shape.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrServiceNotAvailable denotes that a remote naming service could not
	// be reached.
	ErrServiceNotAvailable = errors.New("not available")
)

// Interface can resolve a Web3 domain name into a target with a record tag.
type Interface interface {
	Resolve(name string) (record.Data, record.Tag, error)
	io.Closer
}
