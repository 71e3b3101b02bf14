package evername_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/evername/w3dns/core/record"
	"github.com/evername/w3dns/core/resolver"
	"github.com/evername/w3dns/core/resolver/client/evername"
	"github.com/evername/w3dns/core/resolver/client/evername/evercall"
)

type callFunc func(address, method string, args map[string]interface{}) (evercall.Output, error)

type callerMock struct {
	calls  int
	callFn callFunc
}

func (c *callerMock) RunLocal(address, method string, args map[string]interface{}) (evercall.Output, error) {
	c.calls++
	return c.callFn(address, method, args)
}

func (c *callerMock) Close() error {
	return nil
}

type outputMock struct {
	addresses map[string]string
	strings   map[string]string
	cellMaps  map[string]map[uint32]evercall.Cell
}

func (o *outputMock) Address(field string) (string, error) {
	v, ok := o.addresses[field]
	if !ok {
		return "", fmt.Errorf("field %q: %w", field, evercall.ErrFieldMissing)
	}
	return v, nil
}

func (o *outputMock) String(field string) (string, error) {
	v, ok := o.strings[field]
	if !ok {
		return "", fmt.Errorf("field %q: %w", field, evercall.ErrFieldMissing)
	}
	return v, nil
}

func (o *outputMock) CellMap(field string) (map[uint32]evercall.Cell, error) {
	v, ok := o.cellMaps[field]
	if !ok {
		return nil, fmt.Errorf("field %q: %w", field, evercall.ErrFieldMissing)
	}
	return v, nil
}

// newTestClient connects a client to a caller mock and the real evercall
// codec.
func newTestClient(t *testing.T, caller *callerMock) *evername.Client {
	t.Helper()

	codec, err := evercall.Dial("https://gateway.test")
	if err != nil {
		t.Fatal(err)
	}
	cl, err := evername.NewClient("https://gateway.test",
		evername.WithDialFunc(func(endpoint string) (evercall.Caller, evercall.Codec, error) {
			return caller, codec, nil
		}),
	)
	if err != nil {
		t.Fatal(err)
	}
	return cl.(*evername.Client)
}

// addressCell builds a 33 byte address cell and returns its decoded form.
func addressCell(workchain int8, fill byte) (evercall.Cell, string) {
	cell := make([]byte, 33)
	cell[0] = byte(workchain)
	for i := 1; i < len(cell); i++ {
		cell[i] = fill
	}
	return cell, fmt.Sprintf("%d:%x", workchain, cell[1:])
}

// chainCaller fakes the two-contract walk: the root contract resolves any
// name to certAddress, whose records are the given map. Content contracts
// are served from the details map.
func chainCaller(certAddress string, records map[uint32]evercall.Cell, details map[string]*outputMock) *callerMock {
	caller := &callerMock{}
	caller.callFn = func(address, method string, args map[string]interface{}) (evercall.Output, error) {
		switch method {
		case "resolve":
			return &outputMock{addresses: map[string]string{"certificate": certAddress}}, nil
		case "getRecords":
			if address != certAddress {
				return nil, evercall.ErrAccountNotFound
			}
			return &outputMock{cellMaps: map[string]map[uint32]evercall.Cell{"records": records}}, nil
		case "getDetails":
			out, ok := details[address]
			if !ok {
				return nil, evercall.ErrAccountNotFound
			}
			return out, nil
		}
		return nil, fmt.Errorf("unexpected method %q", method)
	}
	return caller
}

func TestResolvePriority(t *testing.T) {
	_, certAddress := addressCell(0, 0x11)

	for _, tc := range []struct {
		desc     string
		records  map[uint32]evercall.Cell
		wantTag  record.Tag
		wantData record.Data
	}{
		{
			desc: "tor wins over everything",
			records: map[uint32]evercall.Cell{
				1001: evercall.Cell("abc.onion"),
				1003: evercall.Cell("203.0.113.7"),
				1004: evercall.Cell("<html></html>"),
			},
			wantTag:  record.Tor,
			wantData: record.DomainString("abc.onion"),
		},
		{
			desc: "ipfs wins over web2",
			records: map[uint32]evercall.Cell{
				1002: evercall.Cell("ipfs://bafybeiabc"),
				1003: evercall.Cell("203.0.113.7"),
			},
			wantTag:  record.Ipfs,
			wantData: record.DomainString("https://bafybeiabc.ipfs.w3s.link/"),
		},
		{
			desc: "web2 record",
			records: map[uint32]evercall.Cell{
				1003: evercall.Cell("https://example.com"),
			},
			wantTag:  record.Web2,
			wantData: record.DomainString("https://example.com"),
		},
		{
			desc: "onchain record",
			records: map[uint32]evercall.Cell{
				1004: evercall.Cell("<html>hi</html>"),
			},
			wantTag:  record.Onchain,
			wantData: record.OnchainData("<html>hi</html>"),
		},
		{
			desc: "unknown wire identifier is skipped",
			records: map[uint32]evercall.Cell{
				2001: evercall.Cell{0xff, 0xfe},
				1003: evercall.Cell("203.0.113.7"),
			},
			wantTag:  record.Web2,
			wantData: record.DomainString("203.0.113.7"),
		},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			cl := newTestClient(t, chainCaller(certAddress, tc.records, nil))

			data, tag, err := cl.Resolve("site.ever")
			if err != nil {
				t.Fatal(err)
			}
			if tag != tc.wantTag {
				t.Errorf("got tag %s, want %s", tag, tc.wantTag)
			}
			if data != tc.wantData {
				t.Errorf("got data %s, want %s", data, tc.wantData)
			}
		})
	}
}

func TestResolveOnchainContract(t *testing.T) {
	_, certAddress := addressCell(0, 0x11)
	contentCell, contentAddress := addressCell(0, 0x22)

	t.Run("chunks assembled in key order with declared type", func(t *testing.T) {
		caller := chainCaller(certAddress,
			map[uint32]evercall.Cell{1005: contentCell},
			map[string]*outputMock{
				contentAddress: {
					strings: map[string]string{"contentType": "text/plain"},
					cellMaps: map[string]map[uint32]evercall.Cell{
						"content": {
							2: evercall.Cell("</html>"),
							0: evercall.Cell("<html>"),
							1: evercall.Cell("chunked"),
						},
					},
				},
			},
		)
		cl := newTestClient(t, caller)

		data, tag, err := cl.Resolve("site.ever")
		if err != nil {
			t.Fatal(err)
		}
		if tag != record.OnchainContract {
			t.Errorf("got tag %s, want %s", tag, record.OnchainContract)
		}
		if want := record.OnchainContractData("<html>chunked</html>", "text/plain"); data != want {
			t.Errorf("got data %s, want %s", data, want)
		}
		if caller.calls != 3 {
			t.Errorf("got %d contract calls, want 3", caller.calls)
		}
	})

	t.Run("missing content type defaults", func(t *testing.T) {
		caller := chainCaller(certAddress,
			map[uint32]evercall.Cell{1005: contentCell},
			map[string]*outputMock{
				contentAddress: {
					cellMaps: map[string]map[uint32]evercall.Cell{
						"content": {0: evercall.Cell("<html></html>")},
					},
				},
			},
		)
		cl := newTestClient(t, caller)

		data, _, err := cl.Resolve("site.ever")
		if err != nil {
			t.Fatal(err)
		}
		if data.MimeType != evername.DefaultContentType {
			t.Errorf("got content type %q, want %q", data.MimeType, evername.DefaultContentType)
		}
	})

	t.Run("malformed contract address cell", func(t *testing.T) {
		caller := chainCaller(certAddress,
			map[uint32]evercall.Cell{1005: evercall.Cell("not an address")},
			nil,
		)
		cl := newTestClient(t, caller)

		_, _, err := cl.Resolve("site.ever")
		if !errors.Is(err, resolver.ErrMalformedRecord) {
			t.Errorf("got error %v, want %v", err, resolver.ErrMalformedRecord)
		}
	})
}

func TestResolveNoResolvableRecord(t *testing.T) {
	_, certAddress := addressCell(0, 0x11)

	t.Run("empty records map", func(t *testing.T) {
		cl := newTestClient(t, chainCaller(certAddress, map[uint32]evercall.Cell{}, nil))

		_, _, err := cl.Resolve("site.ever")
		if !errors.Is(err, resolver.ErrNoResolvableRecord) {
			t.Errorf("got error %v, want %v", err, resolver.ErrNoResolvableRecord)
		}
	})

	t.Run("only unknown wire identifiers", func(t *testing.T) {
		records := map[uint32]evercall.Cell{2001: evercall.Cell("future record")}
		cl := newTestClient(t, chainCaller(certAddress, records, nil))

		_, _, err := cl.Resolve("site.ever")
		if !errors.Is(err, resolver.ErrNoResolvableRecord) {
			t.Errorf("got error %v, want %v", err, resolver.ErrNoResolvableRecord)
		}
	})
}

func TestResolveNameNotFound(t *testing.T) {
	t.Run("no certificate field", func(t *testing.T) {
		caller := &callerMock{callFn: func(address, method string, args map[string]interface{}) (evercall.Output, error) {
			return &outputMock{}, nil
		}}
		cl := newTestClient(t, caller)

		_, _, err := cl.Resolve("nosuch.ever")
		if !errors.Is(err, resolver.ErrNameNotFound) {
			t.Errorf("got error %v, want %v", err, resolver.ErrNameNotFound)
		}
	})

	t.Run("empty certificate address", func(t *testing.T) {
		caller := &callerMock{callFn: func(address, method string, args map[string]interface{}) (evercall.Output, error) {
			return &outputMock{addresses: map[string]string{"certificate": ""}}, nil
		}}
		cl := newTestClient(t, caller)

		_, _, err := cl.Resolve("nosuch.ever")
		if !errors.Is(err, resolver.ErrNameNotFound) {
			t.Errorf("got error %v, want %v", err, resolver.ErrNameNotFound)
		}
	})

	t.Run("root account not found", func(t *testing.T) {
		caller := &callerMock{callFn: func(address, method string, args map[string]interface{}) (evercall.Output, error) {
			return nil, evercall.ErrAccountNotFound
		}}
		cl := newTestClient(t, caller)

		_, _, err := cl.Resolve("nosuch.ever")
		if !errors.Is(err, resolver.ErrNameNotFound) {
			t.Errorf("got error %v, want %v", err, resolver.ErrNameNotFound)
		}
	})
}

func TestResolveMalformedRecords(t *testing.T) {
	t.Run("records field has wrong shape", func(t *testing.T) {
		calls := 0
		caller := &callerMock{callFn: func(address, method string, args map[string]interface{}) (evercall.Output, error) {
			calls++
			if calls == 1 {
				_, certAddress := addressCell(0, 0x11)
				return &outputMock{addresses: map[string]string{"certificate": certAddress}}, nil
			}
			return &outputMock{}, nil
		}}
		cl := newTestClient(t, caller)

		_, _, err := cl.Resolve("site.ever")
		if !errors.Is(err, resolver.ErrMalformedRecord) {
			t.Errorf("got error %v, want %v", err, resolver.ErrMalformedRecord)
		}
	})

	t.Run("string cell with invalid payload", func(t *testing.T) {
		_, certAddress := addressCell(0, 0x11)
		records := map[uint32]evercall.Cell{1003: {0xff, 0xfe, 0xfd}}
		cl := newTestClient(t, chainCaller(certAddress, records, nil))

		_, _, err := cl.Resolve("site.ever")
		if !errors.Is(err, resolver.ErrMalformedRecord) {
			t.Errorf("got error %v, want %v", err, resolver.ErrMalformedRecord)
		}
	})
}

func TestResolveNotConnected(t *testing.T) {
	cl := newTestClient(t, &callerMock{})
	if !cl.IsConnected() {
		t.Fatal("expected connected client")
	}
	if err := cl.Close(); err != nil {
		t.Fatal(err)
	}
	if cl.IsConnected() {
		t.Fatal("expected disconnected client")
	}

	_, _, err := cl.Resolve("site.ever")
	if !errors.Is(err, evername.ErrNotConnected) {
		t.Errorf("got error %v, want %v", err, evername.ErrNotConnected)
	}
}

func TestNewClientDialFailure(t *testing.T) {
	dialErr := errors.New("gateway down")
	_, err := evername.NewClient("https://gateway.test",
		evername.WithDialFunc(func(endpoint string) (evercall.Caller, evercall.Codec, error) {
			return nil, nil, dialErr
		}),
	)
	if !errors.Is(err, evername.ErrFailedToConnect) {
		t.Errorf("got error %v, want %v", err, evername.ErrFailedToConnect)
	}
}
