package usecases

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
	"github.com/strlkr/fermata/internal/modules/music/application/ports"
	"github.com/strlkr/fermata/internal/modules/music/domain"
)

// JoinInput contains the input for the Join use case.
type JoinInput struct {
	GuildID       snowflake.ID
	UserID        snowflake.ID
	TextChannelID snowflake.ID
	// VoiceChannelID is the explicitly requested channel; zero means
	// "the channel the requester is currently in".
	VoiceChannelID snowflake.ID
}

// JoinOutput contains the result of the Join use case.
type JoinOutput struct {
	VoiceChannelID snowflake.ID
}

// LeaveOutput contains the result of the Leave use case.
type LeaveOutput struct {
	VoiceChannelID snowflake.ID
}

// VoiceService handles session creation and teardown.
type VoiceService struct {
	registry   domain.SessionRegistry
	voice      ports.VoiceConnection
	voiceState ports.VoiceStateProvider
	status     StatusController
	replies    ReplyCanceler
}

// NewVoiceService creates a new VoiceService.
func NewVoiceService(
	registry domain.SessionRegistry,
	voice ports.VoiceConnection,
	voiceState ports.VoiceStateProvider,
	status StatusController,
	replies ReplyCanceler,
) *VoiceService {
	return &VoiceService{
		registry:   registry,
		voice:      voice,
		voiceState: voiceState,
		status:     status,
		replies:    replies,
	}
}

// Join creates the guild's session and connects to a voice channel.
func (s *VoiceService) Join(ctx context.Context, input JoinInput) (*JoinOutput, error) {
	channelID := input.VoiceChannelID
	if channelID == 0 {
		current, err := s.voiceState.UserVoiceChannel(input.GuildID, input.UserID)
		if err != nil {
			return nil, err
		}
		channelID = current
	}
	if channelID == 0 {
		return nil, ErrNoChannelSpecified
	}

	session, err := s.registry.Create(input.GuildID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExists) {
			return nil, ErrAlreadyConnected
		}
		return nil, err
	}

	if err := s.voice.JoinChannel(ctx, input.GuildID, channelID); err != nil {
		// The session never became usable; do not leave it behind.
		s.registry.Remove(input.GuildID)
		return nil, err
	}

	session.Lock()
	session.Bind(channelID, input.TextChannelID)
	session.Unlock()

	return &JoinOutput{VoiceChannelID: channelID}, nil
}

// Leave tears the guild's session down: status message deleted, queue
// discarded, pending ephemeral deletions cancelled, session removed.
func (s *VoiceService) Leave(ctx context.Context, guildID snowflake.ID) (*LeaveOutput, error) {
	session, err := s.registry.Get(guildID)
	if err != nil {
		return nil, ErrNotConnected
	}

	session.Lock()
	voiceChannelID := session.VoiceChannelID()
	s.status.Teardown(ctx, session)
	session.Disconnect()
	session.Unlock()

	s.registry.Remove(guildID)
	if s.replies != nil {
		s.replies.CancelGuildReplies(guildID)
	}

	if err := s.voice.LeaveChannel(ctx, guildID); err != nil {
		return nil, err
	}

	return &LeaveOutput{VoiceChannelID: voiceChannelID}, nil
}
