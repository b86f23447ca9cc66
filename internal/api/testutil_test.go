package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bullion/bullion-cli/internal/secrets"
)

type failingStore struct{ err error }

func (f failingStore) Save(service, account, value string) error   { return f.err }
func (f failingStore) Read(service, account string) (string, error) { return "", f.err }
func (f failingStore) Delete(service, account string) error         { return f.err }

var errStoreLocked = errors.New("keychain locked")

func newTestClient(baseURL string, store secrets.Store) *Client {
	c := New(baseURL, store)
	c.NewBoundary = func() string { return "Boundary-TEST" }
	return c
}

func storeWithToken(t *testing.T, token string) *secrets.MemoryStore {
	t.Helper()
	store := secrets.NewMemoryStore()
	if err := store.Save(secrets.Service, secrets.AccountToken, token); err != nil {
		t.Fatalf("save token: %v", err)
	}
	return store
}

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}
