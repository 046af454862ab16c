package usecases

import (
	"context"
	"log/slog"
	"strings"

	"github.com/strlkr/fermata/internal/modules/music/application/ports"
)

// LyricsFetcher tries lyrics backends in order and returns the first
// non-empty result.
type LyricsFetcher struct {
	providers []ports.LyricsProvider
}

// NewLyricsFetcher creates a LyricsFetcher over the given backends,
// tried in argument order.
func NewLyricsFetcher(providers ...ports.LyricsProvider) *LyricsFetcher {
	return &LyricsFetcher{
		providers: providers,
	}
}

// Fetch returns lyrics for the track, or empty when every backend fails or
// has none. Backend failures are logged, never surfaced.
func (f *LyricsFetcher) Fetch(ctx context.Context, title, author string) string {
	for _, provider := range f.providers {
		text, err := provider.Fetch(ctx, title, author)
		if err != nil {
			slog.Debug("lyrics backend failed",
				"backend", provider.Name(),
				"title", title,
				"error", err,
			)
			continue
		}
		if strings.TrimSpace(text) != "" {
			return text
		}
	}
	return ""
}
