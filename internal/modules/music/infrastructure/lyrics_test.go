package infrastructure

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOVHLyricsProviderFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Artist/Title" {
			t.Errorf("path = %q, want /Artist/Title", r.URL.Path)
		}
		w.Write([]byte(`{"lyrics": "some lyrics"}`))
	}))
	defer server.Close()

	provider := NewOVHLyricsProvider()
	provider.baseURL = server.URL

	text, err := provider.Fetch(context.Background(), "Title", "Artist")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if text != "some lyrics" {
		t.Errorf("Fetch() = %q, want some lyrics", text)
	}
}

func TestOVHLyricsProviderNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewOVHLyricsProvider()
	provider.baseURL = server.URL

	text, err := provider.Fetch(context.Background(), "Unknown", "Nobody")
	if err != nil {
		t.Fatalf("Fetch() error = %v, want a miss without error", err)
	}
	if text != "" {
		t.Errorf("Fetch() = %q, want empty", text)
	}
}

func TestOVHLyricsProviderServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewOVHLyricsProvider()
	provider.baseURL = server.URL

	if _, err := provider.Fetch(context.Background(), "Title", "Artist"); err == nil {
		t.Error("Fetch() succeeded on a server error")
	}
}

func TestLRCLIBLyricsProviderFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get" {
			t.Errorf("path = %q, want /get", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("artist_name") != "Artist" || query.Get("track_name") != "Title" {
			t.Errorf("query = %v, want artist and track names", query)
		}
		w.Write([]byte(`{"plainLyrics": "plain text lyrics"}`))
	}))
	defer server.Close()

	provider := NewLRCLIBLyricsProvider()
	provider.baseURL = server.URL

	text, err := provider.Fetch(context.Background(), "Title", "Artist")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if text != "plain text lyrics" {
		t.Errorf("Fetch() = %q, want plain text lyrics", text)
	}
}

func TestLRCLIBLyricsProviderNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider := NewLRCLIBLyricsProvider()
	provider.baseURL = server.URL

	text, err := provider.Fetch(context.Background(), "Unknown", "Nobody")
	if err != nil {
		t.Fatalf("Fetch() error = %v, want a miss without error", err)
	}
	if text != "" {
		t.Errorf("Fetch() = %q, want empty", text)
	}
}
