package bot

import (
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Bot manages the Discord bot lifecycle and module coordination.
type Bot struct {
	config   *Config
	session  *discordgo.Session
	modules  []Module
	handlers map[string]CommandHandler
	replier  *Replier

	done     chan struct{}
	stopOnce sync.Once
}

// NewBot creates a new Bot instance with the given configuration.
func NewBot(cfg *Config) *Bot {
	return &Bot{
		config:   cfg,
		modules:  make([]Module, 0),
		handlers: make(map[string]CommandHandler),
		done:     make(chan struct{}),
	}
}

// LoadModules loads modules from the global registry.
func (b *Bot) LoadModules() {
	b.modules = Modules()
}

// Done is closed when a module requests a graceful shutdown.
func (b *Bot) Done() <-chan struct{} {
	return b.done
}

// RequestShutdown signals that the process should shut down.
// Safe to call more than once.
func (b *Bot) RequestShutdown() {
	b.stopOnce.Do(func() { close(b.done) })
}

// Start initializes the bot, connects to Discord, and wires up the modules.
func (b *Bot) Start() error {
	session, err := discordgo.New("Bot " + b.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	b.session = session

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMessageReactions |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentMessageContent

	b.session.AddHandler(b.handleMessage)

	// Modules need the session's own user, which is only populated once the
	// gateway connection is open.
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	b.replier = NewReplier(session)

	if err := b.initModules(); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}

	b.buildHandlerMap()
	b.registerEventHandlers()

	slog.Info("started bot",
		"user_id", b.session.State.User.ID,
		"username", b.session.State.User.Username,
		"prefix", b.config.CommandPrefix,
	)

	return nil
}

// Stop gracefully shuts down the bot.
func (b *Bot) Stop() error {
	for _, mod := range b.modules {
		if err := mod.Shutdown(); err != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
		}
	}

	if b.session != nil {
		return b.session.Close()
	}

	return nil
}

// initModules initializes all loaded modules.
func (b *Bot) initModules() error {
	deps := ModuleDependencies{
		Session:         b.session,
		Replier:         b.replier,
		RequestShutdown: b.RequestShutdown,
	}

	for _, mod := range b.modules {
		if configurable, ok := mod.(ConfigurableModule); ok {
			if err := configurable.LoadConfig(); err != nil {
				return fmt.Errorf("failed to load %s module config: %w", mod.Name(), err)
			}
		}
		if err := mod.Init(deps); err != nil {
			return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
		}
		slog.Debug("initialized module", "module", mod.Name())
	}

	moduleNames := make([]string, len(b.modules))
	for i, mod := range b.modules {
		moduleNames[i] = mod.Name()
	}
	slog.Info("initialized modules", "modules", moduleNames)

	return nil
}

// buildHandlerMap builds the command name to handler mapping.
func (b *Bot) buildHandlerMap() {
	for _, mod := range b.modules {
		maps.Copy(b.handlers, mod.Commands())
	}
}

// registerEventHandlers registers all module event handlers with the session.
func (b *Bot) registerEventHandlers() {
	for _, mod := range b.modules {
		for _, handler := range mod.EventHandlers() {
			b.session.AddHandler(handler)
		}
	}
}

// handleMessage routes prefixed messages to the matching command handler.
func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		return
	}

	content, ok := strings.CutPrefix(m.Content, b.config.CommandPrefix)
	if !ok {
		return
	}

	tokens := strings.Fields(content)
	if len(tokens) == 0 {
		return
	}

	cmdName := strings.ToLower(tokens[0])
	handler, ok := b.handlers[cmdName]
	if !ok {
		slog.Debug("found no handler for command", "command", cmdName)
		return
	}

	ctx := &CommandContext{
		Session: s,
		Message: m.Message,
		Args:    tokens[1:],
		Replier: b.replier,
	}
	if err := handler(ctx); err != nil {
		slog.Error("failed to handle command", "command", cmdName, "error", err)
		b.replier.ReplyTemporary(m.Message, ":x: An error occurred while processing your command.")
	}
}
