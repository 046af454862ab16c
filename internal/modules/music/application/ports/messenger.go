package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// Control reaction emojis, in their fixed attachment order.
const (
	EmojiPlayPause = "⏯️"
	EmojiSkip      = "⏭"
	EmojiStop      = "⏹️"
	EmojiRepeat    = "\U0001F502" // 🔂
	EmojiLyrics    = "\U0001F4DC" // 📜
)

// ControlEmojis returns the control reactions in attachment order.
func ControlEmojis() []string {
	return []string{EmojiPlayPause, EmojiSkip, EmojiStop, EmojiRepeat, EmojiLyrics}
}

// StatusView is a gateway-neutral rendering of the status message,
// derived from session state only.
type StatusView struct {
	Title         string
	URI           string
	ArtworkURL    string
	Duration      string
	RepeatEnabled bool
	Lyrics        string // empty hides the lyrics panel
}

// StatusMessenger owns the guild status message on the chat gateway.
type StatusMessenger interface {
	// SendStatus posts a new status message with the control reactions
	// attached in their fixed order and returns the message ID.
	SendStatus(ctx context.Context, channelID snowflake.ID, view StatusView) (snowflake.ID, error)

	// EditStatus rewrites an existing status message in place.
	EditStatus(ctx context.Context, channelID, messageID snowflake.ID, view StatusView) error

	// DeleteMessage removes a message. Deleting an already-deleted
	// message is not an error.
	DeleteMessage(ctx context.Context, channelID, messageID snowflake.ID) error

	// RemoveReaction strips a user's reaction from a message. Removing an
	// already-removed reaction is not an error.
	RemoveReaction(ctx context.Context, channelID, messageID snowflake.ID, emoji string, userID snowflake.ID) error
}

// LyricsProvider looks up display lyrics for a track.
type LyricsProvider interface {
	// Name identifies the backend for logging.
	Name() string

	// Fetch returns the lyrics text, empty when the backend has none.
	Fetch(ctx context.Context, title, author string) (string, error)
}
