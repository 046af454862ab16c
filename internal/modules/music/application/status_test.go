package application

import (
	"context"
	"testing"

	"github.com/strlkr/fermata/internal/modules/music/domain"
)

func TestEnsureShownSendsOnceThenEdits(t *testing.T) {
	_, session := boundSession()
	messenger := newFakeMessenger()
	controller := NewStatusMessageController(messenger)

	session.Lock()
	defer session.Unlock()
	session.StartTrack(&domain.Track{Title: "song", URI: "https://example.com", Duration: 0})

	controller.EnsureShown(context.Background(), session)
	if len(messenger.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(messenger.sent))
	}
	ref := session.StatusMessage()
	if ref == nil || ref.ChannelID != testTextCh {
		t.Fatalf("status ref = %v, want one in the bound text channel", ref)
	}

	controller.EnsureShown(context.Background(), session)
	if len(messenger.sent) != 1 {
		t.Errorf("sent = %d after second call, want still 1", len(messenger.sent))
	}
	if len(messenger.edited) != 1 {
		t.Errorf("edited = %d, want 1", len(messenger.edited))
	}
}

func TestEnsureShownResendsWhenEditFails(t *testing.T) {
	_, session := boundSession()
	messenger := newFakeMessenger()
	controller := NewStatusMessageController(messenger)

	session.Lock()
	defer session.Unlock()
	session.StartTrack(&domain.Track{Title: "song"})
	controller.EnsureShown(context.Background(), session)
	first := session.StatusMessage().MessageID

	// Simulate the message being deleted by hand.
	messenger.editErr = errEdit
	controller.EnsureShown(context.Background(), session)

	if len(messenger.sent) != 2 {
		t.Fatalf("sent = %d, want a replacement message", len(messenger.sent))
	}
	if session.StatusMessage().MessageID == first {
		t.Error("status ref still points at the dead message")
	}
}

func TestEnsureShownWithoutTrack(t *testing.T) {
	_, session := boundSession()
	messenger := newFakeMessenger()
	controller := NewStatusMessageController(messenger)

	session.Lock()
	defer session.Unlock()
	controller.EnsureShown(context.Background(), session)

	if len(messenger.sent) != 0 {
		t.Error("a status message was sent with nothing playing")
	}
}

func TestRefreshRendersSessionState(t *testing.T) {
	_, session := boundSession()
	messenger := newFakeMessenger()
	controller := NewStatusMessageController(messenger)

	session.Lock()
	defer session.Unlock()

	// No tracked message yet: Refresh must not create one.
	session.StartTrack(&domain.Track{Title: "song"})
	controller.Refresh(context.Background(), session)
	if len(messenger.sent)+len(messenger.edited) != 0 {
		t.Fatal("Refresh touched the messenger without a tracked message")
	}

	controller.EnsureShown(context.Background(), session)
	session.ToggleRepeat()
	session.SetLyrics("la la")
	controller.Refresh(context.Background(), session)

	if len(messenger.edited) != 1 {
		t.Fatalf("edited = %d, want 1", len(messenger.edited))
	}
	view := messenger.edited[0]
	if !view.RepeatEnabled {
		t.Error("rendered view missing the repeat indicator")
	}
	if view.Lyrics != "la la" {
		t.Errorf("rendered lyrics = %q, want la la", view.Lyrics)
	}
}

func TestTeardownDeletesOnceAndForgets(t *testing.T) {
	_, session := boundSession()
	messenger := newFakeMessenger()
	controller := NewStatusMessageController(messenger)

	session.Lock()
	defer session.Unlock()
	session.StartTrack(&domain.Track{Title: "song"})
	controller.EnsureShown(context.Background(), session)

	controller.Teardown(context.Background(), session)
	controller.Teardown(context.Background(), session)

	if len(messenger.deleted) != 1 {
		t.Errorf("deleted = %d, want 1", len(messenger.deleted))
	}
	if session.StatusMessage() != nil {
		t.Error("status ref survived Teardown")
	}
}
