package usecases

import (
	"context"
	"testing"
)

func TestLyricsFetcherFirstHitWins(t *testing.T) {
	fetcher := NewLyricsFetcher(
		&fakeLyricsProvider{name: "first", text: "first lyrics"},
		&fakeLyricsProvider{name: "second", text: "second lyrics"},
	)

	if got := fetcher.Fetch(context.Background(), "title", "author"); got != "first lyrics" {
		t.Errorf("Fetch() = %q, want the first backend's result", got)
	}
}

func TestLyricsFetcherFallsBack(t *testing.T) {
	tests := []struct {
		name  string
		first *fakeLyricsProvider
		want  string
	}{
		{"error falls through", &fakeLyricsProvider{name: "first", err: errBackend}, "second lyrics"},
		{"empty falls through", &fakeLyricsProvider{name: "first", text: ""}, "second lyrics"},
		{"whitespace falls through", &fakeLyricsProvider{name: "first", text: "  \n "}, "second lyrics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := NewLyricsFetcher(tt.first, &fakeLyricsProvider{name: "second", text: "second lyrics"})
			if got := fetcher.Fetch(context.Background(), "title", "author"); got != tt.want {
				t.Errorf("Fetch() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLyricsFetcherAllEmpty(t *testing.T) {
	fetcher := NewLyricsFetcher(
		&fakeLyricsProvider{name: "first", err: errBackend},
		&fakeLyricsProvider{name: "second", text: ""},
	)

	if got := fetcher.Fetch(context.Background(), "title", "author"); got != "" {
		t.Errorf("Fetch() = %q, want empty", got)
	}
}

func TestLyricsFetcherNoProviders(t *testing.T) {
	fetcher := NewLyricsFetcher()

	if got := fetcher.Fetch(context.Background(), "title", "author"); got != "" {
		t.Errorf("Fetch() = %q, want empty", got)
	}
}
