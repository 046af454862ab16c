package application

import (
	"context"
	"testing"
	"time"

	"github.com/strlkr/fermata/internal/modules/music/application/events"
	"github.com/strlkr/fermata/internal/modules/music/domain"
)

type handlerFixture struct {
	registry  *fakeRegistry
	session   *domain.PlaybackSession
	player    *fakePlayer
	messenger *fakeMessenger
	bus       *events.Bus
	handler   *PlaybackEventHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	registry, session := boundSession()
	player := &fakePlayer{}
	messenger := newFakeMessenger()
	status := NewStatusMessageController(messenger)
	bus := events.NewBus(events.DefaultEventBufferSize)

	handler := NewPlaybackEventHandler(registry, player, status, bus)
	handler.Start(context.Background())
	t.Cleanup(func() {
		handler.Stop()
		bus.Close()
	})

	return &handlerFixture{
		registry:  registry,
		session:   session,
		player:    player,
		messenger: messenger,
		bus:       bus,
		handler:   handler,
	}
}

func (f *handlerFixture) sessionState() domain.State {
	f.session.Lock()
	defer f.session.Unlock()
	return f.session.State()
}

func TestHandlerShowsStatusOnTrackStart(t *testing.T) {
	f := newHandlerFixture(t)

	f.session.Lock()
	f.session.StartTrack(&domain.Track{Title: "song"})
	f.session.Unlock()

	f.bus.PublishTrackStarted(events.TrackStartedEvent{GuildID: testGuild, Title: "song"})

	if !eventually(time.Second, func() bool { return f.messenger.sentCount() == 1 }) {
		t.Fatal("no status message was sent for the started track")
	}
}

func TestHandlerAdvancesQueueOnTrackEnd(t *testing.T) {
	f := newHandlerFixture(t)

	next := &domain.Track{Title: "next"}
	f.session.Lock()
	f.session.StartTrack(&domain.Track{Title: "current"})
	f.session.Queue.Append(next)
	f.session.Unlock()

	f.bus.PublishTrackEnded(events.TrackEndedEvent{GuildID: testGuild, Reason: domain.EndFinished})

	if !eventually(time.Second, func() bool { return f.player.playedCount() == 1 }) {
		t.Fatal("the next track was never started")
	}

	f.session.Lock()
	current := f.session.CurrentTrack()
	f.session.Unlock()
	if current != next {
		t.Errorf("current track = %v, want the dequeued one", current)
	}
}

func TestHandlerReplaysOnRepeat(t *testing.T) {
	f := newHandlerFixture(t)

	track := &domain.Track{Title: "looped"}
	f.session.Lock()
	f.session.StartTrack(track)
	f.session.ToggleRepeat()
	f.session.Unlock()

	f.bus.PublishTrackEnded(events.TrackEndedEvent{GuildID: testGuild, Reason: domain.EndFinished})

	if !eventually(time.Second, func() bool { return f.player.playedCount() == 1 }) {
		t.Fatal("the track was never replayed")
	}

	f.player.mu.Lock()
	replayed := f.player.played[0]
	f.player.mu.Unlock()
	if replayed != track {
		t.Errorf("replayed %v, want the same track", replayed)
	}
}

func TestHandlerTearsDownStatusOnStop(t *testing.T) {
	f := newHandlerFixture(t)

	f.session.Lock()
	f.session.StartTrack(&domain.Track{Title: "song"})
	f.session.SetStatusMessage(testTextCh, testMessage)
	f.session.Unlock()

	f.bus.PublishTrackEnded(events.TrackEndedEvent{GuildID: testGuild, Reason: domain.EndStopped})

	if !eventually(time.Second, func() bool { return f.messenger.deletedCount() == 1 }) {
		t.Fatal("the status message was never deleted")
	}
	if got := f.sessionState(); got != domain.StateIdle {
		t.Errorf("session state = %v, want idle", got)
	}
}

func TestHandlerIgnoresReplaced(t *testing.T) {
	f := newHandlerFixture(t)

	track := &domain.Track{Title: "replacement already playing"}
	f.session.Lock()
	f.session.StartTrack(track)
	f.session.SetStatusMessage(testTextCh, testMessage)
	f.session.Unlock()

	f.bus.PublishTrackEnded(events.TrackEndedEvent{GuildID: testGuild, Reason: domain.EndReplaced})

	// Give the handler a moment to consume the event.
	time.Sleep(50 * time.Millisecond)

	if f.player.playedCount() != 0 {
		t.Error("a replaced track end started something new")
	}
	if f.messenger.deletedCount() != 0 {
		t.Error("a replaced track end deleted the status message")
	}
	if got := f.sessionState(); got != domain.StatePlaying {
		t.Errorf("session state = %v, want playing", got)
	}
}

func TestHandlerStopsPlaybackWhenNextFails(t *testing.T) {
	f := newHandlerFixture(t)
	f.player.playErr = errEdit

	f.session.Lock()
	f.session.StartTrack(&domain.Track{Title: "current"})
	f.session.Queue.Append(&domain.Track{Title: "broken"})
	f.session.SetStatusMessage(testTextCh, testMessage)
	f.session.Unlock()

	f.bus.PublishTrackEnded(events.TrackEndedEvent{GuildID: testGuild, Reason: domain.EndFinished})

	if !eventually(time.Second, func() bool { return f.sessionState() == domain.StateIdle }) {
		t.Fatal("session never went idle after the failed start")
	}
	if f.messenger.deletedCount() != 1 {
		t.Errorf("status messages deleted = %d, want 1", f.messenger.deletedCount())
	}
}

func TestHandlerIgnoresUnknownGuild(t *testing.T) {
	f := newHandlerFixture(t)

	f.bus.PublishTrackEnded(events.TrackEndedEvent{GuildID: 999, Reason: domain.EndFinished})
	f.bus.PublishTrackStarted(events.TrackStartedEvent{GuildID: 999, Title: "ghost"})

	time.Sleep(50 * time.Millisecond)

	if f.player.playedCount() != 0 || f.messenger.sentCount() != 0 {
		t.Error("events for an unknown guild had side effects")
	}
}
