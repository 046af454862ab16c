package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
)

func testMessage(guildID string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "trigger",
		ChannelID: "channel",
		GuildID:   guildID,
	}
}

func TestReplierCancelGuildStopsPendingDeletions(t *testing.T) {
	r := NewReplier(nil)

	r.scheduleCleanup(testMessage("guild-a"), &discordgo.Message{ID: "reply-1", ChannelID: "channel"})
	r.scheduleCleanup(testMessage("guild-a"), &discordgo.Message{ID: "reply-2", ChannelID: "channel"})
	r.scheduleCleanup(testMessage("guild-b"), &discordgo.Message{ID: "reply-3", ChannelID: "channel"})

	if got := r.pendingCount("guild-a"); got != 2 {
		t.Fatalf("pendingCount(guild-a) = %d, want 2", got)
	}

	r.CancelGuild("guild-a")

	if got := r.pendingCount("guild-a"); got != 0 {
		t.Errorf("pendingCount(guild-a) after cancel = %d, want 0", got)
	}
	if got := r.pendingCount("guild-b"); got != 1 {
		t.Errorf("pendingCount(guild-b) = %d, want 1", got)
	}
}

func TestReplierCancelGuildWithoutPending(t *testing.T) {
	r := NewReplier(nil)

	// Must not panic or create an entry.
	r.CancelGuild("guild-a")

	if got := r.pendingCount("guild-a"); got != 0 {
		t.Errorf("pendingCount(guild-a) = %d, want 0", got)
	}
}
