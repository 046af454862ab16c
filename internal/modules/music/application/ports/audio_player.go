package ports

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/strlkr/fermata/internal/modules/music/domain"
)

// AudioPlayer controls playback on the backend for a guild.
type AudioPlayer interface {
	// Play starts playing the track, replacing whatever is playing.
	Play(ctx context.Context, guildID snowflake.ID, track *domain.Track) error

	// Stop stops the current playback.
	Stop(ctx context.Context, guildID snowflake.ID) error

	// Pause pauses the current playback.
	Pause(ctx context.Context, guildID snowflake.ID) error

	// Resume resumes paused playback.
	Resume(ctx context.Context, guildID snowflake.ID) error

	// Seek moves the playback cursor to the absolute position.
	// Bounds are enforced by the backend, not here.
	Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error

	// Position reports the current playback cursor, zero when unknown.
	Position(guildID snowflake.ID) time.Duration

	// SetVolume sets the playback volume.
	SetVolume(ctx context.Context, guildID snowflake.ID, volume int) error
}

// VoiceConnection manages the bot's voice channel membership.
type VoiceConnection interface {
	// JoinChannel connects to a voice channel and blocks until the
	// connection is established or ctx expires.
	JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error

	// LeaveChannel disconnects from the guild's voice channel.
	LeaveChannel(ctx context.Context, guildID snowflake.ID) error
}

// VoiceStateProvider reports current voice-channel membership.
type VoiceStateProvider interface {
	// UserVoiceChannel returns the voice channel the user is in, zero if none.
	UserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error)
}
