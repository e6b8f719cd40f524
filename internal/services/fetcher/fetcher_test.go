package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/aucsheet/internal/common"
	"github.com/ternarybob/aucsheet/internal/models"
)

func newTestFetcher() *Fetcher {
	config := &common.FetcherConfig{
		UserAgent:   "test-agent",
		MaxBodySize: 1 << 20,
	}
	return NewFetcher(config, arbor.NewLogger()).(*Fetcher)
}

func TestFetchPageSendsBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html><body>Lot 12345</body></html>"))
	}))
	defer server.Close()

	f := newTestFetcher()
	creds := &models.Credentials{Username: "user", Password: "secret"}
	body, err := f.FetchPage(context.Background(), server.URL, creds, "custom-agent")
	if err != nil {
		t.Fatal(err)
	}
	if gotUser != "user" || gotPass != "secret" {
		t.Errorf("Basic auth not sent: %s/%s", gotUser, gotPass)
	}
	if gotUA != "custom-agent" {
		t.Errorf("Expected job user agent, got %s", gotUA)
	}
	if len(body) == 0 {
		t.Error("Expected body")
	}
}

func TestFetchPageUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	f := newTestFetcher()
	_, err := f.FetchPage(context.Background(), server.URL, nil, "")
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("Expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestFetchPageLoginWall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 200 OK but serving the login form
		w.Write([]byte("<html><body><h1>ログイン</h1></body></html>"))
	}))
	defer server.Close()

	f := newTestFetcher()
	_, err := f.FetchPage(context.Background(), server.URL, nil, "")
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Expected ErrSessionExpired, got %v", err)
	}
}

func TestFetchPageServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := newTestFetcher()
	_, err := f.FetchPage(context.Background(), server.URL, nil, "")

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("Expected TransportError, got %v", err)
	}
	if transportErr.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", transportErr.StatusCode)
	}
}
