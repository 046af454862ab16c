package usecases

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/strlkr/fermata/internal/modules/music/application/ports"
	"github.com/strlkr/fermata/internal/modules/music/domain"
)

// Resolution is the outcome of resolving a query.
type Resolution struct {
	Tracks []*domain.Track
	// PlaylistName is set when the query resolved to a multi-track
	// collection; it drives "enqueue all" behavior.
	PlaylistName string
}

// IsPlaylist reports whether the resolution covers a whole collection.
func (r *Resolution) IsPlaylist() bool {
	return r.PlaylistName != ""
}

// TrackResolver turns free text or a URI into playable tracks, trying
// backends in a fixed priority order: an absolute URI is loaded directly
// and only directly; anything else goes to the primary search backend,
// falling back to the secondary one on failure or no matches.
type TrackResolver struct {
	loader ports.TrackLoader
}

// NewTrackResolver creates a new TrackResolver.
func NewTrackResolver(loader ports.TrackLoader) *TrackResolver {
	return &TrackResolver{
		loader: loader,
	}
}

// Resolve resolves the query, returning ErrNoMatches when every backend in
// the waterfall came up empty.
func (r *TrackResolver) Resolve(ctx context.Context, query string) (*Resolution, error) {
	query = strings.TrimSpace(query)

	var waterfall []ports.SearchSource
	if isURL(query) {
		waterfall = []ports.SearchSource{ports.SourceDirect}
	} else {
		waterfall = []ports.SearchSource{ports.SourceYouTube, ports.SourceSoundCloud}
	}

	for _, source := range waterfall {
		result, err := r.loader.LoadTracks(ctx, source, query)
		if err != nil {
			slog.Warn("track load failed", "source", string(source), "error", err)
			continue
		}
		if result.Type == ports.LoadTypeEmpty || result.Type == ports.LoadTypeError ||
			len(result.Tracks) == 0 {
			continue
		}

		resolution := &Resolution{Tracks: result.Tracks}
		if result.Type == ports.LoadTypePlaylist {
			resolution.PlaylistName = result.PlaylistName
		}
		return resolution, nil
	}

	return nil, ErrNoMatches
}

// isURL reports whether the input is an absolute URI.
func isURL(input string) bool {
	u, err := url.Parse(input)
	return err == nil && u.Scheme != "" && u.Host != ""
}
