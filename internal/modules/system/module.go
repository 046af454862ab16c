package system

import (
	"log/slog"

	"github.com/strlkr/fermata/internal/bot"
)

const confirmEmoji = "✅"

func init() {
	bot.Register(&Module{})
}

// Module provides housekeeping commands: liveness checks and shutdown.
type Module struct {
	deps bot.ModuleDependencies
}

// Name returns the module name.
func (m *Module) Name() string {
	return "system"
}

// Commands returns the command handlers for this module.
func (m *Module) Commands() map[string]bot.CommandHandler {
	return map[string]bot.CommandHandler{
		"ping":     m.HandlePing,
		"shutdown": m.HandleShutdown,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *Module) EventHandlers() []bot.EventHandler {
	return nil
}

// Init stores the module dependencies.
func (m *Module) Init(deps bot.ModuleDependencies) error {
	m.deps = deps
	return nil
}

// Shutdown does nothing; the module holds no resources.
func (m *Module) Shutdown() error {
	return nil
}

// HandlePing replies with a liveness check.
func (m *Module) HandlePing(ctx *bot.CommandContext) error {
	ctx.Replier.ReplyTemporary(ctx.Message, "Pong!")
	return nil
}

// HandleShutdown asks for confirmation before stopping the process. Reacting
// with the confirmation emoji within the prompt's lifetime shuts the bot
// down; "shutdown now" skips the prompt.
func (m *Module) HandleShutdown(ctx *bot.CommandContext) error {
	if len(ctx.Args) > 0 && (ctx.Args[0] == "now" || ctx.Args[0] == "force") {
		ctx.Replier.DeleteMessage(ctx.Message.ChannelID, ctx.Message.ID)
		m.deps.RequestShutdown()
		return nil
	}

	prompt, err := ctx.Replier.Reply(ctx.Message, "Do you really want to shut the bot down?")
	if err != nil {
		return err
	}

	if err := ctx.Session.MessageReactionAdd(prompt.ChannelID, prompt.ID, confirmEmoji); err != nil {
		slog.Debug("failed to seed shutdown confirmation reaction", "error", err)
	}

	trigger := ctx.Message
	replier := ctx.Replier
	bot.AwaitConfirmation(ctx.Session, prompt.ID, confirmEmoji, func() {
		replier.DeleteMessage(prompt.ChannelID, prompt.ID)
		replier.DeleteMessage(trigger.ChannelID, trigger.ID)
		m.deps.RequestShutdown()
	})

	return nil
}
