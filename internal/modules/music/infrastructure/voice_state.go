package infrastructure

import (
	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/strlkr/fermata/internal/modules/music/application/ports"
)

// StateVoiceProvider reads user voice channel membership from the discordgo
// state cache.
type StateVoiceProvider struct {
	session *discordgo.Session
}

// NewStateVoiceProvider creates a new StateVoiceProvider.
func NewStateVoiceProvider(session *discordgo.Session) *StateVoiceProvider {
	return &StateVoiceProvider{session: session}
}

// UserVoiceChannel returns the voice channel the user is connected to in the
// guild, or zero if they are not in one.
func (v *StateVoiceProvider) UserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error) {
	guild, err := v.session.State.Guild(guildID.String())
	if err != nil {
		return 0, err
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID.String() && vs.ChannelID != "" {
			channelID, err := snowflake.Parse(vs.ChannelID)
			if err != nil {
				return 0, err
			}
			return channelID, nil
		}
	}

	return 0, nil
}

var _ ports.VoiceStateProvider = (*StateVoiceProvider)(nil)
