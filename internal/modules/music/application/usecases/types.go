package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/strlkr/fermata/internal/modules/music/domain"
)

// StatusController is the slice of the status-message lifecycle the usecases
// drive. All methods expect the caller to hold the session lock.
type StatusController interface {
	// EnsureShown creates or edits the status message to match the session.
	EnsureShown(ctx context.Context, session *domain.PlaybackSession)

	// Refresh re-renders an existing status message; no-op when none exists.
	Refresh(ctx context.Context, session *domain.PlaybackSession)

	// Teardown deletes the status message if one exists.
	Teardown(ctx context.Context, session *domain.PlaybackSession)
}

// ReplyCanceler cancels pending ephemeral-reply deletions for a guild.
type ReplyCanceler interface {
	CancelGuildReplies(guildID snowflake.ID)
}
