package usecases

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/strlkr/fermata/internal/modules/music/application/ports"
	"github.com/strlkr/fermata/internal/modules/music/domain"
)

// PlayInput contains the input for the Play use case.
type PlayInput struct {
	GuildID snowflake.ID
	// Query is free text or a URI. Empty means "start the next queued track".
	Query string
}

// PlayOutput contains the result of the Play use case. Exactly one of the
// fields describes what happened.
type PlayOutput struct {
	// Started is the track that began playing immediately.
	Started *domain.Track
	// EnqueuedTrack is a single track appended behind the current one.
	EnqueuedTrack *domain.Track
	// EnqueuedCount is the number of playlist tracks appended.
	EnqueuedCount int
	// PlaylistName names the enqueued collection, if any.
	PlaylistName string
}

// NowPlayingOutput describes the current track and playback position.
type NowPlayingOutput struct {
	Track    *domain.Track
	Position time.Duration
}

// QueueSnapshot is a point-in-time copy of a guild's queue.
type QueueSnapshot struct {
	Tracks         []*domain.Track
	VoiceChannelID snowflake.ID
}

// PlaybackService handles every playback mutation on a guild's session.
// All session access is serialized through the session lock, so a command
// and a concurrent backend callback can never both dequeue.
type PlaybackService struct {
	registry domain.SessionRegistry
	player   ports.AudioPlayer
	resolver *TrackResolver
	status   StatusController
}

// NewPlaybackService creates a new PlaybackService.
func NewPlaybackService(
	registry domain.SessionRegistry,
	player ports.AudioPlayer,
	resolver *TrackResolver,
	status StatusController,
) *PlaybackService {
	return &PlaybackService{
		registry: registry,
		player:   player,
		resolver: resolver,
		status:   status,
	}
}

// Play resolves the query and either starts it (idle session) or appends it
// to the queue (something already playing). Playlist queries enqueue every
// track; other queries use only the first match.
func (s *PlaybackService) Play(ctx context.Context, input PlayInput) (*PlayOutput, error) {
	session, err := s.registry.Get(input.GuildID)
	if err != nil {
		return nil, ErrNotConnected
	}

	if input.Query == "" {
		return s.playFromQueue(ctx, session)
	}

	resolution, err := s.resolver.Resolve(ctx, input.Query)
	if err != nil {
		return nil, err
	}

	session.Lock()
	defer session.Unlock()

	if session.State() == domain.StatePlaying || session.State() == domain.StatePaused {
		if resolution.IsPlaylist() {
			session.Queue.AppendAll(resolution.Tracks)
			return &PlayOutput{
				EnqueuedCount: len(resolution.Tracks),
				PlaylistName:  resolution.PlaylistName,
			}, nil
		}

		track := resolution.Tracks[0]
		session.Queue.Append(track)
		return &PlayOutput{EnqueuedTrack: track}, nil
	}

	first := resolution.Tracks[0]
	if err := s.startTrack(ctx, session, first); err != nil {
		return nil, err
	}

	output := &PlayOutput{Started: first}
	if resolution.IsPlaylist() {
		session.Queue.AppendAll(resolution.Tracks[1:])
		output.EnqueuedCount = len(resolution.Tracks) - 1
		output.PlaylistName = resolution.PlaylistName
	}
	return output, nil
}

// playFromQueue starts the next queued track without resolving anything.
func (s *PlaybackService) playFromQueue(ctx context.Context, session *domain.PlaybackSession) (*PlayOutput, error) {
	session.Lock()
	defer session.Unlock()

	if session.State() == domain.StatePlaying || session.State() == domain.StatePaused {
		return nil, ErrNothingPlaying
	}

	next := session.Queue.Next()
	if next == nil {
		return nil, ErrQueueEmpty
	}

	if err := s.startTrack(ctx, session, next); err != nil {
		return nil, err
	}
	return &PlayOutput{Started: next}, nil
}

// startTrack installs the track on the session and hands it to the backend.
// Caller holds the session lock.
func (s *PlaybackService) startTrack(ctx context.Context, session *domain.PlaybackSession, track *domain.Track) error {
	session.StartTrack(track)
	if err := s.player.Play(ctx, session.GuildID(), track); err != nil {
		session.StopPlayback()
		return err
	}
	return nil
}

// Stop halts playback and clears the current track. The queue is
// kept so a later play can resume from it.
func (s *PlaybackService) Stop(ctx context.Context, guildID snowflake.ID) error {
	session, err := s.registry.Get(guildID)
	if err != nil {
		return ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	if session.State() != domain.StatePlaying && session.State() != domain.StatePaused {
		return ErrAlreadyStopped
	}

	session.StopPlayback()
	s.status.Teardown(ctx, session)
	return s.player.Stop(ctx, guildID)
}

// Pause pauses the current playback.
func (s *PlaybackService) Pause(ctx context.Context, guildID snowflake.ID) error {
	session, err := s.registry.Get(guildID)
	if err != nil {
		return ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	if !session.Pause() {
		return ErrNothingPlaying
	}
	return s.player.Pause(ctx, guildID)
}

// Resume resumes paused playback.
func (s *PlaybackService) Resume(ctx context.Context, guildID snowflake.ID) error {
	session, err := s.registry.Get(guildID)
	if err != nil {
		return ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	if !session.Resume() {
		return ErrNotPaused
	}
	return s.player.Resume(ctx, guildID)
}

// Skip advances to the next queued track, ignoring the repeat flag: repeat
// never re-plays a skipped track. An empty queue makes Skip behave like Stop.
// Returns the track that started, or nil when playback stopped.
func (s *PlaybackService) Skip(ctx context.Context, guildID snowflake.ID) (*domain.Track, error) {
	session, err := s.registry.Get(guildID)
	if err != nil {
		return nil, ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	if session.State() != domain.StatePlaying {
		return nil, ErrNothingPlaying
	}

	return s.skipLocked(ctx, session)
}

// SkipTo removes the first index-1 queued tracks, then skips to what is now
// the head of the queue. Index is 1-based; out-of-range indexes leave the
// queue untouched.
func (s *PlaybackService) SkipTo(ctx context.Context, guildID snowflake.ID, index int) (*domain.Track, error) {
	session, err := s.registry.Get(guildID)
	if err != nil {
		return nil, ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	if session.State() != domain.StatePlaying {
		return nil, ErrNothingPlaying
	}
	if index < 1 || index > session.Queue.Len() {
		return nil, ErrIndexOutOfRange
	}

	for i := 0; i < index-1; i++ {
		session.Queue.RemoveAt(0)
	}
	return s.skipLocked(ctx, session)
}

// skipLocked performs the skip transition. Caller holds the session lock.
func (s *PlaybackService) skipLocked(ctx context.Context, session *domain.PlaybackSession) (*domain.Track, error) {
	next := session.Queue.Next()
	if next == nil {
		session.StopPlayback()
		s.status.Teardown(ctx, session)
		if err := s.player.Stop(ctx, session.GuildID()); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if err := s.startTrack(ctx, session, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Seek moves the playback cursor to an absolute position.
func (s *PlaybackService) Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error {
	session, err := s.registry.Get(guildID)
	if err != nil {
		return ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	if session.State() != domain.StatePlaying {
		return ErrNothingPlaying
	}
	return s.player.Seek(ctx, guildID, position)
}

// SeekBy moves the playback cursor relative to its current position and
// returns the new position. No bounds clamping beyond what the backend does.
func (s *PlaybackService) SeekBy(ctx context.Context, guildID snowflake.ID, delta time.Duration) (time.Duration, error) {
	session, err := s.registry.Get(guildID)
	if err != nil {
		return 0, ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	if session.State() != domain.StatePlaying {
		return 0, ErrNothingPlaying
	}

	position := s.player.Position(guildID) + delta
	if err := s.player.Seek(ctx, guildID, position); err != nil {
		return 0, err
	}
	return position, nil
}

// SetVolume sets the playback volume for the guild.
func (s *PlaybackService) SetVolume(ctx context.Context, guildID snowflake.ID, volume int) error {
	if _, err := s.registry.Get(guildID); err != nil {
		return ErrNotConnected
	}
	return s.player.SetVolume(ctx, guildID, volume)
}

// ToggleRepeat flips the repeat flag and updates the status message's
// Repeat indicator to match. Returns the new value.
func (s *PlaybackService) ToggleRepeat(ctx context.Context, guildID snowflake.ID) (bool, error) {
	session, err := s.registry.Get(guildID)
	if err != nil {
		return false, ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	if session.CurrentTrack() == nil ||
		(session.State() != domain.StatePlaying && session.State() != domain.StatePaused) {
		return false, ErrNothingPlaying
	}

	enabled := session.ToggleRepeat()
	s.status.Refresh(ctx, session)
	return enabled, nil
}

// Shuffle randomly permutes the queued tracks.
func (s *PlaybackService) Shuffle(guildID snowflake.ID) error {
	session, err := s.registry.Get(guildID)
	if err != nil {
		return ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	if session.Queue.IsEmpty() {
		return ErrQueueEmpty
	}
	session.Queue.Shuffle()
	return nil
}

// NowPlaying returns the current track and playback position.
func (s *PlaybackService) NowPlaying(guildID snowflake.ID) (*NowPlayingOutput, error) {
	session, err := s.registry.Get(guildID)
	if err != nil {
		return nil, ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	if session.State() != domain.StatePlaying || session.CurrentTrack() == nil {
		return nil, ErrNothingPlaying
	}

	return &NowPlayingOutput{
		Track:    session.CurrentTrack(),
		Position: s.player.Position(guildID),
	}, nil
}

// CurrentTrack returns the playing track, for lyric lookups and similar.
func (s *PlaybackService) CurrentTrack(guildID snowflake.ID) (*domain.Track, error) {
	session, err := s.registry.Get(guildID)
	if err != nil {
		return nil, ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	if session.State() != domain.StatePlaying || session.CurrentTrack() == nil {
		return nil, ErrNothingPlaying
	}
	return session.CurrentTrack(), nil
}

// QueueView returns a snapshot of the guild's queue.
func (s *PlaybackService) QueueView(guildID snowflake.ID) (*QueueSnapshot, error) {
	session, err := s.registry.Get(guildID)
	if err != nil {
		return nil, ErrNotConnected
	}

	session.Lock()
	defer session.Unlock()

	return &QueueSnapshot{
		Tracks:         session.Queue.List(),
		VoiceChannelID: session.VoiceChannelID(),
	}, nil
}
