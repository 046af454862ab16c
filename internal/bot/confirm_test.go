package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

type stripRecorder struct {
	stripped []string
}

func (s *stripRecorder) MessageReactionRemove(channelID, messageID, emojiID, userID string, options ...discordgo.RequestOption) error {
	s.stripped = append(s.stripped, emojiID)
	return nil
}

func reactionAdd(messageID, userID, emoji string) *discordgo.MessageReactionAdd {
	return &discordgo.MessageReactionAdd{
		MessageReaction: &discordgo.MessageReaction{
			MessageID: messageID,
			ChannelID: "channel",
			UserID:    userID,
			Emoji:     discordgo.Emoji{Name: emoji},
		},
	}
}

func TestConfirmListenerFiresOnce(t *testing.T) {
	fired := 0
	removed := false

	l := newConfirmListener("bot", "msg", "✅", func() { fired++ })
	l.remove = func() { removed = true }

	strip := &stripRecorder{}
	l.handle(strip, reactionAdd("msg", "user", "✅"))
	l.handle(strip, reactionAdd("msg", "user", "✅"))

	if fired != 1 {
		t.Errorf("action fired %d times, want 1", fired)
	}
	if !removed {
		t.Error("listener was not deregistered after firing")
	}
	if len(strip.stripped) != 0 {
		t.Errorf("matching emoji was stripped: %v", strip.stripped)
	}
}

func TestConfirmListenerStripsWrongEmoji(t *testing.T) {
	fired := false
	l := newConfirmListener("bot", "msg", "✅", func() { fired = true })

	strip := &stripRecorder{}
	l.handle(strip, reactionAdd("msg", "user", "❌"))

	if fired {
		t.Error("action fired on wrong emoji")
	}
	if len(strip.stripped) != 1 || strip.stripped[0] != "❌" {
		t.Errorf("stripped = %v, want the wrong emoji removed", strip.stripped)
	}
}

func TestConfirmListenerIgnoresBotAndOtherMessages(t *testing.T) {
	fired := false
	l := newConfirmListener("bot", "msg", "✅", func() { fired = true })

	strip := &stripRecorder{}
	l.handle(strip, reactionAdd("other", "user", "✅"))
	l.handle(strip, reactionAdd("msg", "bot", "✅"))

	if fired {
		t.Error("action fired for an ignored reaction")
	}
	if len(strip.stripped) != 0 {
		t.Errorf("stripped = %v, want none", strip.stripped)
	}
}

func TestConfirmListenerDeregisterBeforeFiring(t *testing.T) {
	fired := false
	removals := 0

	l := newConfirmListener("bot", "msg", "✅", func() { fired = true })
	l.remove = func() { removals++ }

	l.Deregister()
	l.Deregister()

	if fired {
		t.Error("action fired after deregistration")
	}
	if removals != 1 {
		t.Errorf("remove called %d times, want 1", removals)
	}
}
