package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/strlkr/fermata/internal/modules/music/application/events"
	"github.com/strlkr/fermata/internal/modules/music/application/ports"
	"github.com/strlkr/fermata/internal/modules/music/domain"
)

// PlaybackEventHandler consumes backend lifecycle events from the bus and
// drives the session state machine: showing the status message when a track
// starts and deciding what plays next when one ends.
type PlaybackEventHandler struct {
	registry domain.SessionRegistry
	player   ports.AudioPlayer
	status   *StatusMessageController

	bus  *events.Bus
	done chan struct{}
	wg   sync.WaitGroup
}

// NewPlaybackEventHandler creates a new PlaybackEventHandler.
func NewPlaybackEventHandler(
	registry domain.SessionRegistry,
	player ports.AudioPlayer,
	status *StatusMessageController,
	bus *events.Bus,
) *PlaybackEventHandler {
	return &PlaybackEventHandler{
		registry: registry,
		player:   player,
		status:   status,
		bus:      bus,
		done:     make(chan struct{}),
	}
}

// Start launches the event loop. It runs until the context is cancelled,
// Stop is called, or the bus is closed.
func (h *PlaybackEventHandler) Start(ctx context.Context) {
	h.wg.Add(1)
	go h.run(ctx)
}

// Stop terminates the event loop and waits for it to drain.
func (h *PlaybackEventHandler) Stop() {
	close(h.done)
	h.wg.Wait()
}

func (h *PlaybackEventHandler) run(ctx context.Context) {
	defer h.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case event, ok := <-h.bus.TrackStarted():
			if !ok {
				return
			}
			h.handleTrackStarted(ctx, event)
		case event, ok := <-h.bus.TrackEnded():
			if !ok {
				return
			}
			h.handleTrackEnded(ctx, event)
		case event, ok := <-h.bus.TrackStuck():
			if !ok {
				return
			}
			slog.Warn("track stuck",
				"guild_id", event.GuildID,
				"title", event.Title,
				"threshold", event.Threshold,
			)
		case event, ok := <-h.bus.TrackException():
			if !ok {
				return
			}
			slog.Error("track exception",
				"guild_id", event.GuildID,
				"title", event.Title,
				"message", event.Message,
			)
		case event, ok := <-h.bus.WebSocketClosed():
			if !ok {
				return
			}
			slog.Error("voice websocket closed",
				"guild_id", event.GuildID,
				"code", event.Code,
				"reason", event.Reason,
			)
		}
	}
}

func (h *PlaybackEventHandler) handleTrackStarted(ctx context.Context, event events.TrackStartedEvent) {
	session, err := h.registry.Get(event.GuildID)
	if err != nil {
		return
	}

	slog.Info("track started", "guild_id", event.GuildID, "title", event.Title)

	session.Lock()
	defer session.Unlock()
	h.status.EnsureShown(ctx, session)
}

func (h *PlaybackEventHandler) handleTrackEnded(ctx context.Context, event events.TrackEndedEvent) {
	session, err := h.registry.Get(event.GuildID)
	if err != nil {
		return
	}

	session.Lock()
	defer session.Unlock()

	action := session.CompleteTrack(event.Reason)

	if action.DeleteStatus {
		h.status.Teardown(ctx, session)
	}

	next := action.Replay
	if next == nil {
		next = action.Next
	}
	if next == nil {
		return
	}

	if err := h.player.Play(ctx, session.GuildID(), next); err != nil {
		slog.Error("failed to start next track",
			"guild_id", event.GuildID,
			"title", next.Title,
			"error", err,
		)
		session.StopPlayback()
		h.status.Teardown(ctx, session)
	}
}
