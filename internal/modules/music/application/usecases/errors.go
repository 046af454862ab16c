package usecases

import "errors"

// User-facing errors for the music module.
var (
	// ErrAlreadyConnected is returned when joining while a session already exists.
	ErrAlreadyConnected = errors.New("already connected to a voice channel")

	// ErrNotConnected is returned when an operation requires the bot to be in a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrNoChannelSpecified is returned when neither an explicit channel nor
	// the requester's current channel is available.
	ErrNoChannelSpecified = errors.New("no voice channel to connect to")

	// ErrNothingPlaying is returned when no track is currently playing.
	ErrNothingPlaying = errors.New("there is nothing playing at the moment")

	// ErrAlreadyStopped is returned when stopping while nothing plays.
	ErrAlreadyStopped = errors.New("playback is already stopped")

	// ErrNotPaused is returned when trying to resume while not paused.
	ErrNotPaused = errors.New("playback is not paused at the moment")

	// ErrIndexOutOfRange is returned for queue indexes outside 1..len(queue).
	ErrIndexOutOfRange = errors.New("queue index out of range")

	// ErrQueueEmpty is returned when the queue has no tracks.
	ErrQueueEmpty = errors.New("the queue is empty")

	// ErrNoMatches is returned when every search backend came up empty.
	ErrNoMatches = errors.New("no search results")
)
