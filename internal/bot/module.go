package bot

import "github.com/bwmarrin/discordgo"

// CommandContext carries everything a prefix-command handler needs.
type CommandContext struct {
	Session *discordgo.Session
	Message *discordgo.Message
	// Args holds the whitespace-separated tokens after the command name.
	Args    []string
	Replier *Replier
}

// CommandHandler handles a single prefix-command invocation.
type CommandHandler func(ctx *CommandContext) error

// EventHandler is a generic handler for any Discord event.
// It should be a function matching one of discordgo's handler signatures,
// e.g., func(s *discordgo.Session, m *discordgo.MessageReactionAdd)
type EventHandler any

// ModuleDependencies provides dependencies that modules may need during initialization.
type ModuleDependencies struct {
	Session *discordgo.Session
	Replier *Replier
	// RequestShutdown asks the process to shut down gracefully.
	RequestShutdown func()
}

// Module defines the interface that all bot modules must implement.
type Module interface {
	// Name returns the unique identifier for this module.
	Name() string

	// Commands returns a map of command names to their handlers.
	Commands() map[string]CommandHandler

	// EventHandlers returns event handlers for this module.
	// Each handler should match a discordgo handler signature.
	EventHandlers() []EventHandler

	// Init initializes the module with the provided dependencies.
	Init(deps ModuleDependencies) error

	// Shutdown gracefully shuts down the module.
	Shutdown() error
}

// ConfigurableModule is an optional interface for modules that need configuration.
// Modules implementing this interface will have LoadConfig called before Init.
type ConfigurableModule interface {
	// LoadConfig loads and validates module-specific configuration.
	// Called before Init().
	LoadConfig() error
}
