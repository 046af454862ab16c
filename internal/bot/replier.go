package bot

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// DefaultReplyTTL is how long an ephemeral reply stays visible.
const DefaultReplyTTL = 5 * time.Second

// Replier sends short-lived command responses and cleans them up after a
// fixed delay. Pending deletions are tracked per guild so they can be
// cancelled when the bot logically leaves a guild; deletion is best-effort
// and failures (already-deleted messages) are ignored.
type Replier struct {
	session *discordgo.Session
	ttl     time.Duration

	mu      sync.Mutex
	pending map[string]map[*time.Timer]struct{} // guild ID -> scheduled deletions
}

// NewReplier creates a Replier bound to the session.
func NewReplier(session *discordgo.Session) *Replier {
	return &Replier{
		session: session,
		ttl:     DefaultReplyTTL,
		pending: make(map[string]map[*time.Timer]struct{}),
	}
}

// ReplyTemporary sends text to the triggering message's channel, then deletes
// both the reply and the triggering message after the TTL.
func (r *Replier) ReplyTemporary(m *discordgo.Message, text string) {
	reply, err := r.session.ChannelMessageSend(m.ChannelID, text)
	if err != nil {
		slog.Warn("failed to send reply", "channel", m.ChannelID, "error", err)
		return
	}
	r.scheduleCleanup(m, reply)
}

// ReplyEmbedTemporary sends an embed to the triggering message's channel, then
// deletes both the reply and the triggering message after the TTL.
func (r *Replier) ReplyEmbedTemporary(m *discordgo.Message, embed *discordgo.MessageEmbed) {
	reply, err := r.session.ChannelMessageSendEmbed(m.ChannelID, embed)
	if err != nil {
		slog.Warn("failed to send embed reply", "channel", m.ChannelID, "error", err)
		return
	}
	r.scheduleCleanup(m, reply)
}

// Reply sends a permanent message to the triggering message's channel.
func (r *Replier) Reply(m *discordgo.Message, text string) (*discordgo.Message, error) {
	return r.session.ChannelMessageSend(m.ChannelID, text)
}

// DeleteMessage removes a message, ignoring already-deleted failures.
func (r *Replier) DeleteMessage(channelID, messageID string) {
	if err := r.session.ChannelMessageDelete(channelID, messageID); err != nil {
		slog.Debug("failed to delete message", "channel", channelID, "message", messageID, "error", err)
	}
}

// CancelGuild cancels all pending deletions for a guild. Called on session
// teardown so a stray deletion cannot fire against a channel the bot has
// already left logically.
func (r *Replier) CancelGuild(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for timer := range r.pending[guildID] {
		timer.Stop()
	}
	delete(r.pending, guildID)
}

func (r *Replier) scheduleCleanup(trigger, reply *discordgo.Message) {
	guildID := trigger.GuildID

	r.mu.Lock()
	defer r.mu.Unlock()

	var timer *time.Timer
	timer = time.AfterFunc(r.ttl, func() {
		r.DeleteMessage(reply.ChannelID, reply.ID)
		r.DeleteMessage(trigger.ChannelID, trigger.ID)
		r.forget(guildID, timer)
	})

	if r.pending[guildID] == nil {
		r.pending[guildID] = make(map[*time.Timer]struct{})
	}
	r.pending[guildID][timer] = struct{}{}
}

func (r *Replier) forget(guildID string, timer *time.Timer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pending[guildID], timer)
	if len(r.pending[guildID]) == 0 {
		delete(r.pending, guildID)
	}
}

// pendingCount reports the number of scheduled deletions for a guild.
func (r *Replier) pendingCount(guildID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending[guildID])
}
