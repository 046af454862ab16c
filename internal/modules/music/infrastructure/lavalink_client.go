package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/strlkr/fermata/internal/modules/music/application/events"
	"github.com/strlkr/fermata/internal/modules/music/application/ports"
	"github.com/strlkr/fermata/internal/modules/music/domain"
)

// voiceConnectionTimeout is the maximum time to wait for a voice connection
// to be established.
const voiceConnectionTimeout = 10 * time.Second

// pendingVoiceConnection tracks a voice connection that JoinChannel is
// waiting on. The connection is ready once both the voice state and voice
// server updates have arrived.
type pendingVoiceConnection struct {
	mu             sync.Mutex
	hasVoiceState  bool
	hasVoiceServer bool
	ready          chan struct{}
}

func (p *pendingVoiceConnection) onEvent(isVoiceState bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if isVoiceState {
		p.hasVoiceState = true
	} else {
		p.hasVoiceServer = true
	}

	if p.hasVoiceState && p.hasVoiceServer {
		select {
		case <-p.ready:
		default:
			close(p.ready)
		}
	}
}

// voiceEventBuffer pairs up VoiceStateUpdate and VoiceServerUpdate before
// forwarding them to Lavalink. Forwarding only one of the two produces a
// partial voice state that Lavalink rejects.
type voiceEventBuffer struct {
	mu sync.Mutex

	hasVoiceState bool
	channelID     *snowflake.ID
	sessionID     string

	hasVoiceServer bool
	token          string
	endpoint       string
}

// setVoiceState stores voice state data and reports whether both halves
// are now present.
func (b *voiceEventBuffer) setVoiceState(channelID *snowflake.ID, sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceState = true
	b.channelID = channelID
	b.sessionID = sessionID

	return b.hasVoiceState && b.hasVoiceServer
}

// setVoiceServer stores voice server data and reports whether both halves
// are now present.
func (b *voiceEventBuffer) setVoiceServer(token, endpoint string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceServer = true
	b.token = token
	b.endpoint = endpoint

	return b.hasVoiceState && b.hasVoiceServer
}

// getData returns the buffered data and resets the buffer.
func (b *voiceEventBuffer) getData() (channelID *snowflake.ID, sessionID, token, endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	channelID = b.channelID
	sessionID = b.sessionID
	token = b.token
	endpoint = b.endpoint

	b.hasVoiceState = false
	b.hasVoiceServer = false
	b.channelID = nil
	b.sessionID = ""
	b.token = ""
	b.endpoint = ""

	return
}

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	Address           string
	Password          string
	ReconnectAttempts int
	ReconnectDelay    time.Duration
	SelfDeaf          bool
}

// LavalinkAdapter wraps DisGoLink to implement the audio playback, voice
// connection, and track loading ports.
type LavalinkAdapter struct {
	link     disgolink.Client
	session  *discordgo.Session
	botID    snowflake.ID
	selfDeaf bool

	pendingMu sync.Mutex
	pending   map[snowflake.ID]*pendingVoiceConnection

	voiceBufferMu sync.Mutex
	voiceBuffers  map[snowflake.ID]*voiceEventBuffer

	bus *events.Bus
}

// NewLavalinkAdapter creates a new LavalinkAdapter and connects it to the
// configured node, retrying per the reconnect policy.
func NewLavalinkAdapter(
	session *discordgo.Session,
	bus *events.Bus,
	config LavalinkConfig,
) (*LavalinkAdapter, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	adapter := &LavalinkAdapter{
		session:      session,
		botID:        botID,
		selfDeaf:     config.SelfDeaf,
		pending:      make(map[snowflake.ID]*pendingVoiceConnection),
		voiceBuffers: make(map[snowflake.ID]*voiceEventBuffer),
		bus:          bus,
	}

	link := disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
		disgolink.WithListenerFunc(adapter.onWebSocketClosed),
	)
	adapter.link = link

	if err := adapter.connectNode(config); err != nil {
		return nil, err
	}

	return adapter, nil
}

// connectNode adds the Lavalink node, retrying on failure.
func (c *LavalinkAdapter) connectNode(config LavalinkConfig) error {
	attempts := config.ReconnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		node, err := c.link.AddNode(context.Background(), disgolink.NodeConfig{
			Name:     "main",
			Address:  config.Address,
			Password: config.Password,
			Secure:   false,
		})
		if err == nil {
			slog.Info("connected to Lavalink",
				"node", node.Config().Name,
				"address", config.Address,
				"attempt", attempt,
			)
			return nil
		}

		lastErr = err
		slog.Warn("failed to connect to Lavalink",
			"address", config.Address,
			"attempt", attempt,
			"error", err,
		)
		if attempt < attempts {
			time.Sleep(config.ReconnectDelay)
		}
	}

	return fmt.Errorf("failed to add Lavalink node after %d attempts: %w", attempts, lastErr)
}

// Link returns the underlying DisGoLink client.
func (c *LavalinkAdapter) Link() disgolink.Client {
	return c.link
}

// JoinChannel connects to a voice channel. It waits until both the voice
// state and voice server updates have been observed before returning.
func (c *LavalinkAdapter) JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	pending := &pendingVoiceConnection{
		ready: make(chan struct{}),
	}

	c.pendingMu.Lock()
	c.pending[guildID] = pending
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, guildID)
		c.pendingMu.Unlock()
	}()

	err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, c.selfDeaf)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	select {
	case <-pending.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for voice connection: %w", ctx.Err())
	case <-time.After(voiceConnectionTimeout):
		return fmt.Errorf("timeout waiting for voice connection")
	}
}

// LeaveChannel destroys the guild's player and disconnects from voice.
func (c *LavalinkAdapter) LeaveChannel(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.ExistingPlayer(guildID)
	if player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild_id", guildID, "error", err)
		}
	}

	err := c.session.ChannelVoiceJoinManual(guildID.String(), "", false, c.selfDeaf)
	if err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// Play starts playing a track on the guild's player.
func (c *LavalinkAdapter) Play(ctx context.Context, guildID snowflake.ID, track *domain.Track) error {
	player := c.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithEncodedTrack(track.Encoded)); err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}
	return nil
}

// Stop stops the current playback.
func (c *LavalinkAdapter) Stop(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}
	return nil
}

// Pause pauses the current playback.
func (c *LavalinkAdapter) Pause(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithPaused(true)); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}
	return nil
}

// Resume resumes the current playback.
func (c *LavalinkAdapter) Resume(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithPaused(false)); err != nil {
		return fmt.Errorf("failed to resume playback: %w", err)
	}
	return nil
}

// Seek moves the playback cursor to an absolute position.
func (c *LavalinkAdapter) Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error {
	player := c.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithPosition(lavalink.Duration(position.Milliseconds()))); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	return nil
}

// Position returns the current playback position, or zero if the guild has
// no player.
func (c *LavalinkAdapter) Position(guildID snowflake.ID) time.Duration {
	player := c.link.ExistingPlayer(guildID)
	if player == nil {
		return 0
	}
	return time.Duration(player.Position()) * time.Millisecond
}

// SetVolume sets the playback volume.
func (c *LavalinkAdapter) SetVolume(ctx context.Context, guildID snowflake.ID, volume int) error {
	player := c.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithVolume(volume)); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}
	return nil
}

// LoadTracks loads tracks from Lavalink using the given search source.
func (c *LavalinkAdapter) LoadTracks(
	ctx context.Context,
	source ports.SearchSource,
	query string,
) (*ports.LoadResult, error) {
	node := c.link.BestNode()
	if node == nil {
		return nil, fmt.Errorf("no available Lavalink node")
	}

	if source != ports.SourceDirect {
		query = string(source) + ":" + query
	}

	result, err := node.LoadTracks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}

	return convertLoadResult(result), nil
}

func convertLoadResult(result *lavalink.LoadResult) *ports.LoadResult {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return &ports.LoadResult{
			Type:   ports.LoadTypeTrack,
			Tracks: []*domain.Track{convertTrack(data)},
		}

	case lavalink.Playlist:
		tracks := make([]*domain.Track, len(data.Tracks))
		for i, track := range data.Tracks {
			tracks[i] = convertTrack(track)
		}
		return &ports.LoadResult{
			Type:         ports.LoadTypePlaylist,
			Tracks:       tracks,
			PlaylistName: data.Info.Name,
		}

	case lavalink.Search:
		tracks := make([]*domain.Track, len(data))
		for i, track := range data {
			tracks[i] = convertTrack(track)
		}
		return &ports.LoadResult{
			Type:   ports.LoadTypeSearch,
			Tracks: tracks,
		}

	case lavalink.Empty:
		return &ports.LoadResult{
			Type: ports.LoadTypeEmpty,
		}

	case lavalink.Exception:
		return &ports.LoadResult{
			Type: ports.LoadTypeError,
		}

	default:
		return &ports.LoadResult{
			Type: ports.LoadTypeEmpty,
		}
	}
}

func convertTrack(track lavalink.Track) *domain.Track {
	info := track.Info

	return &domain.Track{
		Encoded:    track.Encoded,
		Title:      info.Title,
		Author:     info.Author,
		Duration:   time.Duration(info.Length) * time.Millisecond,
		URI:        derefString(info.URI),
		ArtworkURL: derefString(info.ArtworkURL),
		SourceName: info.SourceName,
		IsStream:   info.IsStream,
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OnVoiceServerUpdate handles Discord voice server updates.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	buffer := c.getOrCreateVoiceBuffer(guildID)
	if buffer.setVoiceServer(event.Token, event.Endpoint) {
		c.forwardBufferedVoiceEvents(guildID, buffer)
	}

	c.pendingMu.Lock()
	pending := c.pending[guildID]
	c.pendingMu.Unlock()

	if pending != nil {
		pending.onEvent(false)
	}
}

// OnVoiceStateUpdate handles Discord voice state updates for the bot user.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != c.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	var channelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return
		}
		channelID = &id
	}

	// A nil channel means the bot disconnected, which Lavalink can be told
	// about immediately.
	if channelID == nil {
		c.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		c.clearVoiceBuffer(guildID)
		return
	}

	buffer := c.getOrCreateVoiceBuffer(guildID)
	if buffer.setVoiceState(channelID, event.SessionID) {
		c.forwardBufferedVoiceEvents(guildID, buffer)
	}

	c.pendingMu.Lock()
	pending := c.pending[guildID]
	c.pendingMu.Unlock()

	if pending != nil {
		pending.onEvent(true)
	}
}

func (c *LavalinkAdapter) getOrCreateVoiceBuffer(guildID snowflake.ID) *voiceEventBuffer {
	c.voiceBufferMu.Lock()
	defer c.voiceBufferMu.Unlock()

	buffer, exists := c.voiceBuffers[guildID]
	if !exists {
		buffer = &voiceEventBuffer{}
		c.voiceBuffers[guildID] = buffer
	}
	return buffer
}

func (c *LavalinkAdapter) clearVoiceBuffer(guildID snowflake.ID) {
	c.voiceBufferMu.Lock()
	defer c.voiceBufferMu.Unlock()
	delete(c.voiceBuffers, guildID)
}

func (c *LavalinkAdapter) forwardBufferedVoiceEvents(guildID snowflake.ID, buffer *voiceEventBuffer) {
	channelID, sessionID, token, endpoint := buffer.getData()

	slog.Debug("forwarding buffered voice events to Lavalink",
		"guild_id", guildID,
		"channel_id", channelID,
	)

	c.link.OnVoiceStateUpdate(context.Background(), guildID, channelID, sessionID)
	c.link.OnVoiceServerUpdate(context.Background(), guildID, token, endpoint)
}

func (c *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	c.bus.PublishTrackStarted(events.TrackStartedEvent{
		GuildID: player.GuildID(),
		Title:   event.Track.Info.Title,
	})
}

func (c *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	c.bus.PublishTrackEnded(events.TrackEndedEvent{
		GuildID: player.GuildID(),
		Reason:  convertEndReason(event.Reason),
	})
}

func (c *LavalinkAdapter) onTrackException(player disgolink.Player, event lavalink.TrackExceptionEvent) {
	c.bus.PublishTrackException(events.TrackExceptionEvent{
		GuildID: player.GuildID(),
		Title:   event.Track.Info.Title,
		Message: event.Exception.Message,
	})
}

func (c *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	c.bus.PublishTrackStuck(events.TrackStuckEvent{
		GuildID:   player.GuildID(),
		Title:     event.Track.Info.Title,
		Threshold: time.Duration(event.Threshold) * time.Millisecond,
	})
}

func (c *LavalinkAdapter) onWebSocketClosed(player disgolink.Player, event lavalink.WebSocketClosedEvent) {
	c.bus.PublishWebSocketClosed(events.WebSocketClosedEvent{
		GuildID: player.GuildID(),
		Code:    event.Code,
		Reason:  event.Reason,
	})
}

func convertEndReason(reason lavalink.TrackEndReason) domain.EndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.EndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.EndLoadFailed
	case lavalink.TrackEndReasonStopped:
		return domain.EndStopped
	case lavalink.TrackEndReasonReplaced:
		return domain.EndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.EndCleanup
	default:
		return domain.EndStopped
	}
}

// Ensure LavalinkAdapter implements the port interfaces.
var (
	_ ports.AudioPlayer     = (*LavalinkAdapter)(nil)
	_ ports.VoiceConnection = (*LavalinkAdapter)(nil)
	_ ports.TrackLoader     = (*LavalinkAdapter)(nil)
)
