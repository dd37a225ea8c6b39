package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"dynamo-league/internal/config"

	"github.com/rs/zerolog"
)

func newHeadshotServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/headshots" {
			http.NotFound(w, r)
			return
		}
		switch r.URL.Query().Get("name") {
		case "Josh Allen":
			if r.URL.Query().Get("position") != "QB" {
				t.Errorf("expected position QB, got %q", r.URL.Query().Get("position"))
			}
			fmt.Fprint(w, `{"url":"https://img.example/allen.png"}`)
		case "Broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHeadshotLookup(t *testing.T) {
	srv := newHeadshotServer(t)
	client := NewHeadshotClient(&config.Config{HeadshotAPIURL: srv.URL + "/"}, zerolog.Nop())

	got, err := client.Lookup(context.Background(), "Josh Allen", "QB")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got != "https://img.example/allen.png" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestHeadshotLookupMissingPlayer(t *testing.T) {
	srv := newHeadshotServer(t)
	client := NewHeadshotClient(&config.Config{HeadshotAPIURL: srv.URL}, zerolog.Nop())

	got, err := client.Lookup(context.Background(), "Nobody", "K")
	if err != nil || got != "" {
		t.Fatalf("expected empty url without error, got %q %v", got, err)
	}
}

func TestHeadshotLookupUpstreamError(t *testing.T) {
	srv := newHeadshotServer(t)
	client := NewHeadshotClient(&config.Config{HeadshotAPIURL: srv.URL}, zerolog.Nop())

	if _, err := client.Lookup(context.Background(), "Broken", ""); err == nil {
		t.Fatal("expected upstream error")
	}
}

func TestHeadshotLookupDisabled(t *testing.T) {
	client := NewHeadshotClient(&config.Config{}, zerolog.Nop())
	if client.Enabled() {
		t.Fatal("expected client without base url to be disabled")
	}
	got, err := client.Lookup(context.Background(), "Josh Allen", "QB")
	if err != nil || got != "" {
		t.Fatalf("expected no-op lookup, got %q %v", got, err)
	}
}
