package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/strlkr/fermata/internal/modules/music/domain"
)

// MemorySessionRegistry is an in-memory, guild-keyed session store.
type MemorySessionRegistry struct {
	mu       sync.RWMutex
	sessions map[snowflake.ID]*domain.PlaybackSession
}

var _ domain.SessionRegistry = (*MemorySessionRegistry)(nil)

// NewMemorySessionRegistry creates an empty MemorySessionRegistry.
func NewMemorySessionRegistry() *MemorySessionRegistry {
	return &MemorySessionRegistry{
		sessions: make(map[snowflake.ID]*domain.PlaybackSession),
	}
}

// Create registers a new session for the guild. Returns ErrSessionExists
// if the guild already has one.
func (r *MemorySessionRegistry) Create(guildID snowflake.ID) (*domain.PlaybackSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[guildID]; ok {
		return nil, domain.ErrSessionExists
	}

	session := domain.NewPlaybackSession(guildID)
	r.sessions[guildID] = session
	return session, nil
}

// Get returns the guild's session, or ErrSessionNotFound.
func (r *MemorySessionRegistry) Get(guildID snowflake.ID) (*domain.PlaybackSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[guildID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Remove drops the guild's session. Removing an absent guild is a no-op.
func (r *MemorySessionRegistry) Remove(guildID snowflake.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, guildID)
}

// All returns every registered session.
func (r *MemorySessionRegistry) All() []*domain.PlaybackSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]*domain.PlaybackSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	return sessions
}

// Count returns the number of registered sessions.
func (r *MemorySessionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
