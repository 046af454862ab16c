package bot

import (
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// listenerState tracks the lifecycle of a ConfirmListener.
type listenerState int

const (
	listenerArmed listenerState = iota
	listenerFired
)

// reactionStripper is the slice of the gateway API the listener needs to keep
// its target message clean. *discordgo.Session satisfies it.
type reactionStripper interface {
	MessageReactionRemove(channelID, messageID, emojiID, userID string, options ...discordgo.RequestOption) error
}

// ConfirmListener waits for a single confirmation reaction on one message.
// It fires its action exactly once when the expected emoji is added by a
// non-bot user, then deregisters itself. Any other reaction on the message
// is stripped without firing.
type ConfirmListener struct {
	mu     sync.Mutex
	state  listenerState
	remove func()

	botID     string
	messageID string
	emoji     string
	action    func()
}

// AwaitConfirmation arms a one-shot confirmation listener on the message.
// The action runs on the gateway event goroutine when the emoji matches.
func AwaitConfirmation(s *discordgo.Session, messageID, emoji string, action func()) *ConfirmListener {
	l := newConfirmListener(s.State.User.ID, messageID, emoji, action)
	l.remove = s.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
		l.handle(s, r)
	})
	return l
}

func newConfirmListener(botID, messageID, emoji string, action func()) *ConfirmListener {
	return &ConfirmListener{
		botID:     botID,
		messageID: messageID,
		emoji:     emoji,
		action:    action,
	}
}

// Deregister cancels an armed listener without firing it. Safe to call after
// the listener has fired.
func (l *ConfirmListener) Deregister() {
	l.mu.Lock()
	remove := l.remove
	l.remove = nil
	l.mu.Unlock()

	if remove != nil {
		remove()
	}
}

func (l *ConfirmListener) handle(strip reactionStripper, r *discordgo.MessageReactionAdd) {
	if r.MessageID != l.messageID || r.UserID == l.botID {
		return
	}

	if r.Emoji.Name != l.emoji {
		if err := strip.MessageReactionRemove(r.ChannelID, r.MessageID, r.Emoji.Name, r.UserID); err != nil {
			slog.Debug("failed to remove reaction", "message", r.MessageID, "error", err)
		}
		return
	}

	l.mu.Lock()
	if l.state != listenerArmed {
		l.mu.Unlock()
		return
	}
	l.state = listenerFired
	l.mu.Unlock()

	l.Deregister()
	l.action()
}
