package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/strlkr/fermata/internal/modules/music/application/ports"
	"github.com/strlkr/fermata/internal/modules/music/domain"
)

const (
	testGuild   snowflake.ID = 100
	testVoiceCh snowflake.ID = 300
	testTextCh  snowflake.ID = 400
	testMessage snowflake.ID = 500
	testUser    snowflake.ID = 600
	testBot     snowflake.ID = 700
)

type fakeRegistry struct {
	sessions map[snowflake.ID]*domain.PlaybackSession
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{sessions: make(map[snowflake.ID]*domain.PlaybackSession)}
}

func (r *fakeRegistry) Create(guildID snowflake.ID) (*domain.PlaybackSession, error) {
	if _, ok := r.sessions[guildID]; ok {
		return nil, domain.ErrSessionExists
	}
	session := domain.NewPlaybackSession(guildID)
	r.sessions[guildID] = session
	return session, nil
}

func (r *fakeRegistry) Get(guildID snowflake.ID) (*domain.PlaybackSession, error) {
	session, ok := r.sessions[guildID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *fakeRegistry) Remove(guildID snowflake.ID) {
	delete(r.sessions, guildID)
}

func (r *fakeRegistry) All() []*domain.PlaybackSession {
	result := make([]*domain.PlaybackSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		result = append(result, session)
	}
	return result
}

// boundSession creates a registry holding one session bound to the test
// channels.
func boundSession() (*fakeRegistry, *domain.PlaybackSession) {
	registry := newFakeRegistry()
	session, _ := registry.Create(testGuild)
	session.Lock()
	session.Bind(testVoiceCh, testTextCh)
	session.Unlock()
	return registry, session
}

type removedReaction struct {
	emoji  string
	userID snowflake.ID
}

type fakeMessenger struct {
	mu sync.Mutex

	nextMessageID snowflake.ID
	sent          []ports.StatusView
	edited        []ports.StatusView
	deleted       []snowflake.ID
	removed       []removedReaction
	editErr       error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{nextMessageID: testMessage}
}

func (m *fakeMessenger) SendStatus(ctx context.Context, channelID snowflake.ID, view ports.StatusView) (snowflake.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, view)
	id := m.nextMessageID
	m.nextMessageID++
	return id, nil
}

func (m *fakeMessenger) EditStatus(ctx context.Context, channelID, messageID snowflake.ID, view ports.StatusView) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.editErr != nil {
		return m.editErr
	}
	m.edited = append(m.edited, view)
	return nil
}

func (m *fakeMessenger) DeleteMessage(ctx context.Context, channelID, messageID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *fakeMessenger) RemoveReaction(ctx context.Context, channelID, messageID snowflake.ID, emoji string, userID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, removedReaction{emoji: emoji, userID: userID})
	return nil
}

func (m *fakeMessenger) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMessenger) deletedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.deleted)
}

type fakePlayer struct {
	mu      sync.Mutex
	played  []*domain.Track
	stops   int
	pauses  int
	resumes int
	playErr error
}

func (p *fakePlayer) Play(ctx context.Context, guildID snowflake.ID, track *domain.Track) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playErr != nil {
		return p.playErr
	}
	p.played = append(p.played, track)
	return nil
}

func (p *fakePlayer) Stop(ctx context.Context, guildID snowflake.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
	return nil
}

func (p *fakePlayer) Pause(ctx context.Context, guildID snowflake.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses++
	return nil
}

func (p *fakePlayer) Resume(ctx context.Context, guildID snowflake.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resumes++
	return nil
}

func (p *fakePlayer) Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error {
	return nil
}

func (p *fakePlayer) Position(guildID snowflake.ID) time.Duration { return 0 }

func (p *fakePlayer) SetVolume(ctx context.Context, guildID snowflake.ID, volume int) error {
	return nil
}

func (p *fakePlayer) playedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.played)
}

type fakeLoader struct{}

func (l *fakeLoader) LoadTracks(ctx context.Context, source ports.SearchSource, query string) (*ports.LoadResult, error) {
	return &ports.LoadResult{Type: ports.LoadTypeEmpty}, nil
}

type fakeLyricsProvider struct {
	text string
}

func (p *fakeLyricsProvider) Name() string { return "fake" }

func (p *fakeLyricsProvider) Fetch(ctx context.Context, title, author string) (string, error) {
	return p.text, nil
}

var errEdit = errors.New("unknown message")

// eventually polls the condition until it holds or the deadline passes.
func eventually(timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return condition()
}
