package unstoppable_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"

	"github.com/evername/w3dns/core/record"
	"github.com/evername/w3dns/core/resolver"
	"github.com/evername/w3dns/core/resolver/client/unstoppable"
)

type registrarMock struct {
	mu       sync.Mutex
	tldsBody string
	tldsFail bool
	profiles map[string]string
	requests int
}

func (m *registrarMock) handler(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++

	switch {
	case r.URL.Path == "/resolve/supported_tlds":
		if m.tldsFail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, m.tldsBody)
	default:
		name := r.URL.Path[len("/profile/public/"):]
		body, ok := m.profiles[name]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, body)
	}
}

func newTestClient(t *testing.T, m *registrarMock) *unstoppable.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(m.handler))
	t.Cleanup(srv.Close)

	cl, err := unstoppable.NewClient(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	return cl.(*unstoppable.Client)
}

const defaultTLDsBody = `{"meta":{
	"crypto":{"namingService":"UNS"},
	"x":{"namingService":"UNS"},
	"zil":{"namingService":"ZNS"},
	"com":{"namingService":"DNS"}
}}`

func TestTLDsFilterDNS(t *testing.T) {
	cl := newTestClient(t, &registrarMock{tldsBody: defaultTLDsBody})

	want := []string{".crypto", ".x", ".zil"}
	if got := cl.TLDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("got tlds %v, want %v", got, want)
	}
}

func TestTLDsReturnsCopy(t *testing.T) {
	cl := newTestClient(t, &registrarMock{tldsBody: defaultTLDsBody})

	tlds := cl.TLDs()
	tlds[0] = ".mutated"

	if got := cl.TLDs()[0]; got != ".crypto" {
		t.Errorf("internal list mutated: got %q", got)
	}
}

func TestRefreshTLDs(t *testing.T) {
	m := &registrarMock{tldsBody: defaultTLDsBody}
	cl := newTestClient(t, m)

	t.Run("replaces list on success", func(t *testing.T) {
		m.mu.Lock()
		m.tldsBody = `{"meta":{"nft":{"namingService":"UNS"}}}`
		m.mu.Unlock()

		if err := cl.RefreshTLDs(); err != nil {
			t.Fatal(err)
		}
		want := []string{".nft"}
		if got := cl.TLDs(); !reflect.DeepEqual(got, want) {
			t.Errorf("got tlds %v, want %v", got, want)
		}
	})

	t.Run("keeps previous list on failure", func(t *testing.T) {
		m.mu.Lock()
		m.tldsFail = true
		m.mu.Unlock()

		if err := cl.RefreshTLDs(); err == nil {
			t.Fatal("expected refresh error")
		}
		want := []string{".nft"}
		if got := cl.TLDs(); !reflect.DeepEqual(got, want) {
			t.Errorf("got tlds %v, want %v", got, want)
		}
	})
}

// TestRefreshTLDsConcurrent refreshes and reads the suffix list from
// concurrent goroutines; a reader must always see a complete list, never a
// partially swapped one.
func TestRefreshTLDsConcurrent(t *testing.T) {
	cl := newTestClient(t, &registrarMock{tldsBody: defaultTLDsBody})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if err := cl.RefreshTLDs(); err != nil {
					t.Error(err)
					return
				}
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if got := cl.TLDs(); len(got) != 3 {
					t.Errorf("got %d suffixes, want 3", len(got))
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestNewClientConnectFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := unstoppable.NewClient(srv.URL)
	if !errors.Is(err, unstoppable.ErrFailedToConnect) {
		t.Errorf("got error %v, want %v", err, unstoppable.ErrFailedToConnect)
	}
}

func TestResolve(t *testing.T) {
	m := &registrarMock{
		tldsBody: defaultTLDsBody,
		profiles: map[string]string{
			"both.crypto":  `{"profile":{"web2Url":"https://example.com"},"records":{"ipfs.html.value":"bafybeiabc"}}`,
			"ipfs.crypto":  `{"records":{"ipfs.html.value":"ipfs://bafybeiabc"}}`,
			"empty.crypto": `{"profile":{},"records":{}}`,
		},
	}
	cl := newTestClient(t, m)

	t.Run("web2 url wins over ipfs record", func(t *testing.T) {
		data, tag, err := cl.Resolve("both.crypto")
		if err != nil {
			t.Fatal(err)
		}
		if tag != record.UnstoppableDomain {
			t.Errorf("got tag %s, want %s", tag, record.UnstoppableDomain)
		}
		if want := record.DomainString("https://example.com"); data != want {
			t.Errorf("got data %s, want %s", data, want)
		}
	})

	t.Run("ipfs record becomes gateway link", func(t *testing.T) {
		data, _, err := cl.Resolve("ipfs.crypto")
		if err != nil {
			t.Fatal(err)
		}
		if want := record.DomainString("https://bafybeiabc.ipfs.w3s.link/"); data != want {
			t.Errorf("got data %s, want %s", data, want)
		}
	})

	t.Run("incomplete profile", func(t *testing.T) {
		_, _, err := cl.Resolve("empty.crypto")
		if !errors.Is(err, unstoppable.ErrProfileIncomplete) {
			t.Errorf("got error %v, want %v", err, unstoppable.ErrProfileIncomplete)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		_, _, err := cl.Resolve("missing.crypto")
		if !errors.Is(err, resolver.ErrNameNotFound) {
			t.Errorf("got error %v, want %v", err, resolver.ErrNameNotFound)
		}
	})
}
