package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/strlkr/fermata/internal/modules/music/application/ports"
	"github.com/strlkr/fermata/internal/modules/music/domain"
)

type fakeRegistry struct {
	sessions map[snowflake.ID]*domain.PlaybackSession
	removed  []snowflake.ID
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
	r.removed = append(r.removed, guildID)
}

func (r *fakeRegistry) All() []*domain.PlaybackSession {
	result := make([]*domain.PlaybackSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		result = append(result, session)
	}
	return result
}

type fakePlayer struct {
	played   []*domain.Track
	stops    int
	pauses   int
	resumes  int
	seeks    []time.Duration
	volumes  []int
	position time.Duration
	playErr  error
}

func (p *fakePlayer) Play(ctx context.Context, guildID snowflake.ID, track *domain.Track) error {
	if p.playErr != nil {
		return p.playErr
	}
	p.played = append(p.played, track)
	return nil
}

func (p *fakePlayer) Stop(ctx context.Context, guildID snowflake.ID) error {
	p.stops++
	return nil
}

func (p *fakePlayer) Pause(ctx context.Context, guildID snowflake.ID) error {
	p.pauses++
	return nil
}

func (p *fakePlayer) Resume(ctx context.Context, guildID snowflake.ID) error {
	p.resumes++
	return nil
}

func (p *fakePlayer) Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error {
	p.seeks = append(p.seeks, position)
	return nil
}

func (p *fakePlayer) Position(guildID snowflake.ID) time.Duration {
	return p.position
}

func (p *fakePlayer) SetVolume(ctx context.Context, guildID snowflake.ID, volume int) error {
	p.volumes = append(p.volumes, volume)
	return nil
}

type fakeStatus struct {
	shown     int
	refreshes int
	teardowns int
}

func (s *fakeStatus) EnsureShown(ctx context.Context, session *domain.PlaybackSession) { s.shown++ }
func (s *fakeStatus) Refresh(ctx context.Context, session *domain.PlaybackSession)    { s.refreshes++ }
func (s *fakeStatus) Teardown(ctx context.Context, session *domain.PlaybackSession)   { s.teardowns++ }

type loadCall struct {
	source ports.SearchSource
	query  string
}

type fakeLoader struct {
	calls   []loadCall
	results map[ports.SearchSource]*ports.LoadResult
	errs    map[ports.SearchSource]error
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		results: make(map[ports.SearchSource]*ports.LoadResult),
		errs:    make(map[ports.SearchSource]error),
	}
}

func (l *fakeLoader) LoadTracks(ctx context.Context, source ports.SearchSource, query string) (*ports.LoadResult, error) {
	l.calls = append(l.calls, loadCall{source: source, query: query})
	if err := l.errs[source]; err != nil {
		return nil, err
	}
	if result := l.results[source]; result != nil {
		return result, nil
	}
	return &ports.LoadResult{Type: ports.LoadTypeEmpty}, nil
}

type fakeVoice struct {
	joined  []snowflake.ID
	left    []snowflake.ID
	joinErr error
}

func (v *fakeVoice) JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	if v.joinErr != nil {
		return v.joinErr
	}
	v.joined = append(v.joined, channelID)
	return nil
}

func (v *fakeVoice) LeaveChannel(ctx context.Context, guildID snowflake.ID) error {
	v.left = append(v.left, guildID)
	return nil
}

type fakeVoiceState struct {
	channels map[snowflake.ID]snowflake.ID // user -> voice channel
}

func (v *fakeVoiceState) UserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error) {
	return v.channels[userID], nil
}

type fakeReplies struct {
	cancelled []snowflake.ID
}

func (r *fakeReplies) CancelGuildReplies(guildID snowflake.ID) {
	r.cancelled = append(r.cancelled, guildID)
}

type fakeLyricsProvider struct {
	name string
	text string
	err  error
}

func (p *fakeLyricsProvider) Name() string { return p.name }

func (p *fakeLyricsProvider) Fetch(ctx context.Context, title, author string) (string, error) {
	return p.text, p.err
}

var errBackend = errors.New("backend unavailable")
