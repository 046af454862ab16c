package ports

import (
	"context"

	"github.com/strlkr/fermata/internal/modules/music/domain"
)

// SearchSource selects the backend used for non-URI queries.
type SearchSource string

const (
	// SourceYouTube searches YouTube.
	SourceYouTube SearchSource = "ytsearch"
	// SourceSoundCloud searches SoundCloud.
	SourceSoundCloud SearchSource = "scsearch"
	// SourceDirect loads a URI as-is, without a search prefix.
	SourceDirect SearchSource = ""
)

// LoadType classifies a load result.
type LoadType int

const (
	// LoadTypeTrack is a single resolved track.
	LoadTypeTrack LoadType = iota
	// LoadTypePlaylist is a named multi-track collection.
	LoadTypePlaylist
	// LoadTypeSearch is an ordered list of search matches.
	LoadTypeSearch
	// LoadTypeEmpty means the backend found nothing.
	LoadTypeEmpty
	// LoadTypeError means the backend failed to load the query.
	LoadTypeError
)

// LoadResult is the outcome of one backend load attempt.
type LoadResult struct {
	Type         LoadType
	Tracks       []*domain.Track
	PlaylistName string // set for LoadTypePlaylist
}

// TrackLoader loads tracks from the playback backend.
type TrackLoader interface {
	LoadTracks(ctx context.Context, source SearchSource, query string) (*LoadResult, error)
}
