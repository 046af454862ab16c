package events

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/strlkr/fermata/internal/modules/music/domain"
)

// TrackStartedEvent is emitted when the backend starts playing a track.
type TrackStartedEvent struct {
	GuildID snowflake.ID
	Title   string
}

// TrackEndedEvent is emitted when the backend stops delivering a track.
type TrackEndedEvent struct {
	GuildID snowflake.ID
	Reason  domain.EndReason
}

// TrackStuckEvent is emitted when the backend stalls on a track.
type TrackStuckEvent struct {
	GuildID   snowflake.ID
	Title     string
	Threshold time.Duration
}

// TrackExceptionEvent is emitted when the backend hits a playback error.
type TrackExceptionEvent struct {
	GuildID snowflake.ID
	Title   string
	Message string
}

// WebSocketClosedEvent is emitted when the backend's voice websocket closes.
type WebSocketClosedEvent struct {
	GuildID snowflake.ID
	Code    int
	Reason  string
}
