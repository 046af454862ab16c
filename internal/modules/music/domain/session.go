package domain

import (
	"errors"
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// State is the playback state of a guild's session.
type State int

const (
	// StateDisconnected means the session has no channel binding.
	StateDisconnected State = iota
	// StateIdle means the session is bound but nothing is playing.
	StateIdle
	// StatePlaying means a track is currently playing.
	StatePlaying
	// StatePaused means the current track is paused.
	StatePaused
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// EndReason classifies why the backend stopped delivering a track.
type EndReason int

const (
	// EndFinished means the track played to completion.
	EndFinished EndReason = iota
	// EndLoadFailed means the backend could not load the track.
	EndLoadFailed
	// EndStopped means playback was explicitly stopped.
	EndStopped
	// EndReplaced means another track was started in its place.
	EndReplaced
	// EndCleanup means the backend tore the player down.
	EndCleanup
)

// String returns the reason name.
func (r EndReason) String() string {
	switch r {
	case EndFinished:
		return "finished"
	case EndLoadFailed:
		return "loadFailed"
	case EndStopped:
		return "stopped"
	case EndReplaced:
		return "replaced"
	case EndCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// StatusMessageRef identifies the guild's live status message. Both IDs are
// needed for deletion since the message may live in a channel the session is
// no longer bound to.
type StatusMessageRef struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
}

// PlaybackSession is the per-guild unit of shared mutable state: channel
// bindings, playback state, queue, repeat flag, and the status-message
// reference. All mutation must happen while holding the session lock;
// sessions for different guilds are fully independent.
type PlaybackSession struct {
	mu sync.Mutex

	guildID        snowflake.ID
	voiceChannelID snowflake.ID
	textChannelID  snowflake.ID

	state   State
	current *Track
	Queue   Queue
	repeat  bool
	lyrics  string // non-empty while the lyrics panel is shown

	statusMessage *StatusMessageRef
}

// NewPlaybackSession creates a session for the guild in the Disconnected state.
func NewPlaybackSession(guildID snowflake.ID) *PlaybackSession {
	return &PlaybackSession{
		guildID: guildID,
		state:   StateDisconnected,
		Queue:   NewQueue(),
	}
}

// Lock acquires the session's serialization lane.
func (s *PlaybackSession) Lock() { s.mu.Lock() }

// Unlock releases the session's serialization lane.
func (s *PlaybackSession) Unlock() { s.mu.Unlock() }

// GuildID returns the owning guild.
// No setter: guildID must not change after creation.
func (s *PlaybackSession) GuildID() snowflake.ID {
	return s.guildID
}

// VoiceChannelID returns the bound voice channel.
func (s *PlaybackSession) VoiceChannelID() snowflake.ID {
	return s.voiceChannelID
}

// TextChannelID returns the bound text channel.
func (s *PlaybackSession) TextChannelID() snowflake.ID {
	return s.textChannelID
}

// State returns the current playback state.
func (s *PlaybackSession) State() State {
	return s.state
}

// CurrentTrack returns the track being played, or nil.
func (s *PlaybackSession) CurrentTrack() *Track {
	return s.current
}

// RepeatEnabled reports whether the current track repeats when it finishes.
func (s *PlaybackSession) RepeatEnabled() bool {
	return s.repeat
}

// ToggleRepeat flips the repeat flag and returns the new value.
func (s *PlaybackSession) ToggleRepeat() bool {
	s.repeat = !s.repeat
	return s.repeat
}

// Lyrics returns the lyrics-panel text, empty when the panel is hidden.
func (s *PlaybackSession) Lyrics() string {
	return s.lyrics
}

// SetLyrics shows the lyrics panel with the given text.
func (s *PlaybackSession) SetLyrics(text string) {
	s.lyrics = text
}

// ClearLyrics hides the lyrics panel.
func (s *PlaybackSession) ClearLyrics() {
	s.lyrics = ""
}

// StatusMessage returns a copy of the status-message reference, or nil.
func (s *PlaybackSession) StatusMessage() *StatusMessageRef {
	if s.statusMessage == nil {
		return nil
	}
	ref := *s.statusMessage
	return &ref
}

// SetStatusMessage stores the status-message reference.
func (s *PlaybackSession) SetStatusMessage(channelID, messageID snowflake.ID) {
	s.statusMessage = &StatusMessageRef{
		ChannelID: channelID,
		MessageID: messageID,
	}
}

// ClearStatusMessage drops the status-message reference.
func (s *PlaybackSession) ClearStatusMessage() {
	s.statusMessage = nil
}

// Bind attaches the session to a voice and text channel: Disconnected -> Idle.
func (s *PlaybackSession) Bind(voiceChannelID, textChannelID snowflake.ID) {
	s.voiceChannelID = voiceChannelID
	s.textChannelID = textChannelID
	if s.state == StateDisconnected {
		s.state = StateIdle
	}
}

// StartTrack installs the track as current and moves to Playing. The lyrics
// panel belongs to the previous track, so it is cleared.
func (s *PlaybackSession) StartTrack(t *Track) {
	s.current = t
	s.lyrics = ""
	s.state = StatePlaying
}

// Pause moves Playing -> Paused. Returns false if nothing is playing.
func (s *PlaybackSession) Pause() bool {
	if s.state != StatePlaying {
		return false
	}
	s.state = StatePaused
	return true
}

// Resume moves Paused -> Playing. Returns false if not paused.
func (s *PlaybackSession) Resume() bool {
	if s.state != StatePaused {
		return false
	}
	s.state = StatePlaying
	return true
}

// StopPlayback clears the current track and returns to Idle.
// The queue is left intact: Stop does not drain it.
func (s *PlaybackSession) StopPlayback() {
	s.current = nil
	s.lyrics = ""
	if s.state == StatePlaying || s.state == StatePaused {
		s.state = StateIdle
	}
}

// Disconnect tears the session down: any state -> Disconnected, queue discarded.
func (s *PlaybackSession) Disconnect() {
	s.current = nil
	s.lyrics = ""
	s.Queue.Clear()
	s.voiceChannelID = 0
	s.textChannelID = 0
	s.state = StateDisconnected
}

// EndAction describes the side effects a track-end transition requires.
type EndAction struct {
	Replay       *Track // non-nil: play this same track again
	Next         *Track // non-nil: play this next track
	DeleteStatus bool   // tear down the status message
}

// CompleteTrack applies the track-end transition for the given reason and
// returns the required side effects.
//
//   - stopped/cleanup: playback over, status message deleted.
//   - replaced: no-op, a new track was already installed.
//   - finished with repeat on: replay the same track.
//   - finished/loadFailed otherwise: dequeue the next track; when the queue
//     is exhausted go Idle, deleting the status message unless repeat is on.
//
// A load-failed track never replays, even with repeat on, so a permanently
// broken track cannot wedge the session.
func (s *PlaybackSession) CompleteTrack(reason EndReason) EndAction {
	var action EndAction

	switch reason {
	case EndStopped, EndCleanup:
		action.DeleteStatus = true
		s.StopPlayback()
		return action
	case EndReplaced:
		return action
	}

	if s.repeat && reason == EndFinished && s.current != nil {
		action.Replay = s.current
		return action
	}

	next := s.Queue.Next()
	if next != nil {
		s.StartTrack(next)
		action.Next = next
		return action
	}

	action.DeleteStatus = !s.repeat
	s.StopPlayback()
	return action
}

// Registry errors.
var (
	// ErrSessionExists is returned when creating a session for a guild that already has one.
	ErrSessionExists = errors.New("a session already exists for this guild")

	// ErrSessionNotFound is returned when no session exists for a guild.
	ErrSessionNotFound = errors.New("no session exists for this guild")
)

// SessionRegistry owns the guild-to-session mapping. At most one session
// exists per guild; creation and removal go through the registry only.
type SessionRegistry interface {
	// Create registers a new session for the guild.
	// Returns ErrSessionExists if the guild already has one.
	Create(guildID snowflake.ID) (*PlaybackSession, error)

	// Get returns the guild's session, or ErrSessionNotFound.
	Get(guildID snowflake.ID) (*PlaybackSession, error)

	// Remove deletes the guild's session.
	Remove(guildID snowflake.ID)

	// All returns a snapshot of every live session.
	All() []*PlaybackSession
}
