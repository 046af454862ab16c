package events

import (
	"log/slog"
	"sync"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

// Bus is a channel-based event bus carrying playback-backend lifecycle
// callbacks into the application layer.
type Bus struct {
	trackStarted    chan TrackStartedEvent
	trackEnded      chan TrackEndedEvent
	trackStuck      chan TrackStuckEvent
	trackException  chan TrackExceptionEvent
	websocketClosed chan WebSocketClosedEvent

	closed bool
	mu     sync.RWMutex
}

// NewBus creates a new Bus with the given buffer size.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	return &Bus{
		trackStarted:    make(chan TrackStartedEvent, bufferSize),
		trackEnded:      make(chan TrackEndedEvent, bufferSize),
		trackStuck:      make(chan TrackStuckEvent, bufferSize),
		trackException:  make(chan TrackExceptionEvent, bufferSize),
		websocketClosed: make(chan WebSocketClosedEvent, bufferSize),
	}
}

// publish sends an event without blocking: if the channel buffer is full,
// the event is dropped with a warning.
func publish[E any](b *Bus, ch chan<- E, kind string, event E) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", kind)
		return
	}

	select {
	case ch <- event:
		slog.Debug("published event", "type", kind)
	default:
		slog.Warn("event buffer full, dropping event", "type", kind)
	}
}

// PublishTrackStarted publishes a TrackStartedEvent.
func (b *Bus) PublishTrackStarted(event TrackStartedEvent) {
	publish(b, b.trackStarted, "TrackStarted", event)
}

// PublishTrackEnded publishes a TrackEndedEvent.
func (b *Bus) PublishTrackEnded(event TrackEndedEvent) {
	publish(b, b.trackEnded, "TrackEnded", event)
}

// PublishTrackStuck publishes a TrackStuckEvent.
func (b *Bus) PublishTrackStuck(event TrackStuckEvent) {
	publish(b, b.trackStuck, "TrackStuck", event)
}

// PublishTrackException publishes a TrackExceptionEvent.
func (b *Bus) PublishTrackException(event TrackExceptionEvent) {
	publish(b, b.trackException, "TrackException", event)
}

// PublishWebSocketClosed publishes a WebSocketClosedEvent.
func (b *Bus) PublishWebSocketClosed(event WebSocketClosedEvent) {
	publish(b, b.websocketClosed, "WebSocketClosed", event)
}

// TrackStarted returns the channel for TrackStartedEvent.
func (b *Bus) TrackStarted() <-chan TrackStartedEvent {
	return b.trackStarted
}

// TrackEnded returns the channel for TrackEndedEvent.
func (b *Bus) TrackEnded() <-chan TrackEndedEvent {
	return b.trackEnded
}

// TrackStuck returns the channel for TrackStuckEvent.
func (b *Bus) TrackStuck() <-chan TrackStuckEvent {
	return b.trackStuck
}

// TrackException returns the channel for TrackExceptionEvent.
func (b *Bus) TrackException() <-chan TrackExceptionEvent {
	return b.trackException
}

// WebSocketClosed returns the channel for WebSocketClosedEvent.
func (b *Bus) WebSocketClosed() <-chan WebSocketClosedEvent {
	return b.websocketClosed
}

// Close closes all event channels.
// After calling Close, publishing will no longer send events.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	close(b.trackStarted)
	close(b.trackEnded)
	close(b.trackStuck)
	close(b.trackException)
	close(b.websocketClosed)

	slog.Debug("event bus closed")
}
