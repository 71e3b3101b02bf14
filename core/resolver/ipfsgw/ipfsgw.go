// Package ipfsgw turns IPFS content identifiers into subdomain gateway links.
package ipfsgw

import (
	"fmt"
	"strings"
)

// DefaultHost is the public gateway used when no other host is configured.
const DefaultHost = "w3s.link"

// Link builds a subdomain gateway URL for a content identifier. A leading
// ipfs:// or /ipfs/ prefix on the identifier is stripped first.
func Link(host, cid string) string {
	cid = strings.TrimPrefix(cid, "ipfs://")
	cid = strings.TrimPrefix(cid, "/ipfs/")
	return fmt.Sprintf("https://%s.ipfs.%s/", cid, host)
}
