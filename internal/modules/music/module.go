package music

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/strlkr/fermata/internal/bot"
	"github.com/strlkr/fermata/internal/modules/music/application"
	"github.com/strlkr/fermata/internal/modules/music/application/events"
	"github.com/strlkr/fermata/internal/modules/music/application/usecases"
	"github.com/strlkr/fermata/internal/modules/music/infrastructure"
	"github.com/strlkr/fermata/internal/modules/music/presentation"
)

func init() {
	bot.Register(&Module{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*Module)(nil)

// Module provides voice playback commands backed by Lavalink.
type Module struct {
	config *Config

	registry        *infrastructure.MemorySessionRegistry
	lavalinkAdapter *infrastructure.LavalinkAdapter
	status          *application.StatusMessageController
	router          *application.ControlEventRouter
	commandHandlers *presentation.CommandHandlers

	eventBus        *events.Bus
	playbackHandler *application.PlaybackEventHandler

	ctx    context.Context
	cancel context.CancelFunc
}

// Name returns the module name.
func (m *Module) Name() string {
	return "music"
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *Module) LoadConfig() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init wires the module together and connects to Lavalink.
func (m *Module) Init(deps bot.ModuleDependencies) error {
	m.ctx, m.cancel = context.WithCancel(context.Background())

	m.eventBus = events.NewBus(events.DefaultEventBufferSize)

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(deps.Session, m.eventBus, infrastructure.LavalinkConfig{
		Address:           m.config.LavalinkAddress,
		Password:          m.config.LavalinkPassword,
		ReconnectAttempts: m.config.ReconnectAttempts,
		ReconnectDelay:    m.config.ReconnectDelay,
		SelfDeaf:          m.config.SelfDeaf,
	})
	if err != nil {
		return err
	}
	m.lavalinkAdapter = lavalinkAdapter

	m.registry = infrastructure.NewMemorySessionRegistry()
	voiceState := infrastructure.NewStateVoiceProvider(deps.Session)
	messenger := infrastructure.NewDiscordMessenger(deps.Session)
	m.status = application.NewStatusMessageController(messenger)

	resolver := usecases.NewTrackResolver(lavalinkAdapter)
	lyrics := usecases.NewLyricsFetcher(
		infrastructure.NewOVHLyricsProvider(),
		infrastructure.NewLRCLIBLyricsProvider(),
	)
	playback := usecases.NewPlaybackService(m.registry, lavalinkAdapter, resolver, m.status)
	voice := usecases.NewVoiceService(
		m.registry,
		lavalinkAdapter,
		voiceState,
		m.status,
		replyCanceler{deps.Replier},
	)

	m.playbackHandler = application.NewPlaybackEventHandler(m.registry, lavalinkAdapter, m.status, m.eventBus)
	m.playbackHandler.Start(m.ctx)

	botID, err := snowflake.Parse(deps.Session.State.User.ID)
	if err != nil {
		return err
	}
	m.router = application.NewControlEventRouter(botID, m.registry, playback, m.status, messenger, lyrics)
	m.commandHandlers = presentation.NewCommandHandlers(voice, playback, lyrics)

	slog.Info("music module initialized")

	return nil
}

// Commands returns the command handlers for this module.
func (m *Module) Commands() map[string]bot.CommandHandler {
	return m.commandHandlers.Handlers()
}

// EventHandlers returns the event handlers for this module.
func (m *Module) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			if m.lavalinkAdapter != nil {
				m.lavalinkAdapter.OnVoiceServerUpdate(event)
			}
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			if m.lavalinkAdapter != nil {
				m.lavalinkAdapter.OnVoiceStateUpdate(event)
			}
		},
		func(s *discordgo.Session, event *discordgo.MessageReactionAdd) {
			m.handleReactionAdd(event)
		},
	}
}

// Shutdown tears down every active session and disconnects from Lavalink.
func (m *Module) Shutdown() error {
	if m.registry != nil {
		for _, session := range m.registry.All() {
			session.Lock()
			m.status.Teardown(context.Background(), session)
			session.Unlock()
		}
	}

	if m.cancel != nil {
		m.cancel()
	}
	if m.playbackHandler != nil {
		m.playbackHandler.Stop()
	}
	if m.eventBus != nil {
		m.eventBus.Close()
	}
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Link().Close()
	}

	return nil
}

func (m *Module) handleReactionAdd(event *discordgo.MessageReactionAdd) {
	if m.router == nil {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		return
	}
	channelID, err := snowflake.Parse(event.ChannelID)
	if err != nil {
		return
	}
	messageID, err := snowflake.Parse(event.MessageID)
	if err != nil {
		return
	}
	userID, err := snowflake.Parse(event.UserID)
	if err != nil {
		return
	}

	m.router.HandleReactionAdd(m.ctx, guildID, channelID, messageID, userID, event.Emoji.Name)
}

// replyCanceler adapts the bot replier to the voice use case.
type replyCanceler struct {
	replier *bot.Replier
}

func (c replyCanceler) CancelGuildReplies(guildID snowflake.ID) {
	if c.replier != nil {
		c.replier.CancelGuild(guildID.String())
	}
}
