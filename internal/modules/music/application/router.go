package application

import (
	"context"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/strlkr/fermata/internal/modules/music/application/ports"
	"github.com/strlkr/fermata/internal/modules/music/application/usecases"
	"github.com/strlkr/fermata/internal/modules/music/domain"
)

// maxLyricsFieldLength is the longest lyrics text that fits in the status
// embed field along with the surrounding code fence.
const maxLyricsFieldLength = 1018

// ControlEventRouter turns reactions on a guild's status message into
// playback actions. Reactions anywhere else, and reactions from the bot
// itself, are ignored.
type ControlEventRouter struct {
	botID     snowflake.ID
	registry  domain.SessionRegistry
	playback  *usecases.PlaybackService
	status    *StatusMessageController
	messenger ports.StatusMessenger
	lyrics    *usecases.LyricsFetcher
}

// NewControlEventRouter creates a new ControlEventRouter.
func NewControlEventRouter(
	botID snowflake.ID,
	registry domain.SessionRegistry,
	playback *usecases.PlaybackService,
	status *StatusMessageController,
	messenger ports.StatusMessenger,
	lyrics *usecases.LyricsFetcher,
) *ControlEventRouter {
	return &ControlEventRouter{
		botID:     botID,
		registry:  registry,
		playback:  playback,
		status:    status,
		messenger: messenger,
		lyrics:    lyrics,
	}
}

// HandleReactionAdd processes a single reaction added to some message.
// Reactions on the tracked status message are stripped back off so the
// control row stays at one reaction per emoji, then dispatched.
func (r *ControlEventRouter) HandleReactionAdd(
	ctx context.Context,
	guildID, channelID, messageID, userID snowflake.ID,
	emoji string,
) {
	if userID == r.botID {
		return
	}

	session, err := r.registry.Get(guildID)
	if err != nil {
		return
	}

	session.Lock()
	ref := session.StatusMessage()
	session.Unlock()
	if ref == nil || ref.ChannelID != channelID || ref.MessageID != messageID {
		return
	}

	if err := r.messenger.RemoveReaction(ctx, channelID, messageID, emoji, userID); err != nil {
		slog.Debug("failed to remove control reaction",
			"guild_id", guildID,
			"emoji", emoji,
			"error", err,
		)
	}

	switch emoji {
	case ports.EmojiPlayPause:
		r.togglePlayPause(ctx, guildID, session)
	case ports.EmojiSkip:
		r.skip(ctx, guildID, session)
	case ports.EmojiStop:
		r.stop(ctx, guildID)
	case ports.EmojiRepeat:
		if _, err := r.playback.ToggleRepeat(ctx, guildID); err != nil {
			slog.Debug("repeat control ignored", "guild_id", guildID, "error", err)
		}
	case ports.EmojiLyrics:
		r.toggleLyrics(ctx, guildID, session)
	}
}

func (r *ControlEventRouter) togglePlayPause(ctx context.Context, guildID snowflake.ID, session *domain.PlaybackSession) {
	session.Lock()
	state := session.State()
	session.Unlock()

	var err error
	switch state {
	case domain.StatePlaying:
		err = r.playback.Pause(ctx, guildID)
	case domain.StatePaused:
		err = r.playback.Resume(ctx, guildID)
	default:
		return
	}
	if err != nil {
		slog.Warn("play-pause control failed", "guild_id", guildID, "error", err)
	}
}

func (r *ControlEventRouter) skip(ctx context.Context, guildID snowflake.ID, session *domain.PlaybackSession) {
	session.Lock()
	skippable := session.State() == domain.StatePlaying && !session.Queue.IsEmpty()
	session.Unlock()
	if !skippable {
		return
	}

	if _, err := r.playback.Skip(ctx, guildID); err != nil {
		slog.Warn("skip control failed", "guild_id", guildID, "error", err)
	}
}

func (r *ControlEventRouter) stop(ctx context.Context, guildID snowflake.ID) {
	if err := r.playback.Stop(ctx, guildID); err != nil {
		slog.Debug("stop control ignored", "guild_id", guildID, "error", err)
	}
}

// toggleLyrics shows the lyrics panel on the status message, or hides it if
// it is already shown. A lookup that finds nothing leaves the message as is.
func (r *ControlEventRouter) toggleLyrics(ctx context.Context, guildID snowflake.ID, session *domain.PlaybackSession) {
	session.Lock()
	defer session.Unlock()

	track := session.CurrentTrack()
	if track == nil {
		return
	}

	if session.Lyrics() != "" {
		session.ClearLyrics()
		r.status.Refresh(ctx, session)
		return
	}

	text := r.lyrics.Fetch(ctx, track.Title, track.Author)
	if text == "" {
		return
	}

	session.SetLyrics(truncate(text, maxLyricsFieldLength))
	r.status.Refresh(ctx, session)
}

// truncate shortens s to at most max bytes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
