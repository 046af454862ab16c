package application

import (
	"context"
	"log/slog"

	"github.com/strlkr/fermata/internal/modules/music/application/ports"
	"github.com/strlkr/fermata/internal/modules/music/domain"
)

// StatusMessageController maintains the per-guild "Now Playing" status
// message. At most one status message exists per session; the message is
// always rendered from session state, so repeated toggles converge.
//
// Every method expects the caller to hold the session lock.
type StatusMessageController struct {
	messenger ports.StatusMessenger
}

// NewStatusMessageController creates a new StatusMessageController.
func NewStatusMessageController(messenger ports.StatusMessenger) *StatusMessageController {
	return &StatusMessageController{messenger: messenger}
}

// EnsureShown brings the status message in line with the session: it edits
// the existing message if one is tracked, otherwise it sends a new one to
// the session's text channel and remembers the reference.
func (c *StatusMessageController) EnsureShown(ctx context.Context, session *domain.PlaybackSession) {
	track := session.CurrentTrack()
	if track == nil {
		return
	}
	view := renderStatusView(session, track)

	if ref := session.StatusMessage(); ref != nil {
		if err := c.messenger.EditStatus(ctx, ref.ChannelID, ref.MessageID, view); err == nil {
			return
		}
		// The message is gone, likely deleted by hand. Fall through and
		// send a fresh one.
		session.ClearStatusMessage()
	}

	messageID, err := c.messenger.SendStatus(ctx, session.TextChannelID(), view)
	if err != nil {
		slog.Error("failed to send status message",
			"guild_id", session.GuildID(),
			"channel_id", session.TextChannelID(),
			"error", err,
		)
		return
	}
	session.SetStatusMessage(session.TextChannelID(), messageID)
}

// Refresh re-renders the tracked status message from the session state.
// Without a tracked message or a current track it does nothing.
func (c *StatusMessageController) Refresh(ctx context.Context, session *domain.PlaybackSession) {
	ref := session.StatusMessage()
	track := session.CurrentTrack()
	if ref == nil || track == nil {
		return
	}

	view := renderStatusView(session, track)
	if err := c.messenger.EditStatus(ctx, ref.ChannelID, ref.MessageID, view); err != nil {
		slog.Debug("failed to edit status message",
			"guild_id", session.GuildID(),
			"message_id", ref.MessageID,
			"error", err,
		)
	}
}

// Teardown deletes the tracked status message, if any, and forgets the
// reference. Safe to call repeatedly.
func (c *StatusMessageController) Teardown(ctx context.Context, session *domain.PlaybackSession) {
	ref := session.StatusMessage()
	if ref == nil {
		return
	}
	session.ClearStatusMessage()

	if err := c.messenger.DeleteMessage(ctx, ref.ChannelID, ref.MessageID); err != nil {
		slog.Debug("failed to delete status message",
			"guild_id", session.GuildID(),
			"message_id", ref.MessageID,
			"error", err,
		)
	}
}

func renderStatusView(session *domain.PlaybackSession, track *domain.Track) ports.StatusView {
	return ports.StatusView{
		Title:         track.Title,
		URI:           track.URI,
		ArtworkURL:    track.ArtworkURL,
		Duration:      track.FormattedDuration(),
		RepeatEnabled: session.RepeatEnabled(),
		Lyrics:        session.Lyrics(),
	}
}
