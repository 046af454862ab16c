package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/strlkr/fermata/internal/modules/music/application/ports"
)

// DiscordMessenger renders playback status as Discord embeds and manages
// the control reaction row.
type DiscordMessenger struct {
	session *discordgo.Session
}

// NewDiscordMessenger creates a new DiscordMessenger.
func NewDiscordMessenger(session *discordgo.Session) *DiscordMessenger {
	return &DiscordMessenger{session: session}
}

// SendStatus sends a status embed to the channel and seeds it with the
// control reactions, in order.
func (m *DiscordMessenger) SendStatus(
	ctx context.Context,
	channelID snowflake.ID,
	view ports.StatusView,
) (snowflake.ID, error) {
	message, err := m.session.ChannelMessageSendEmbed(channelID.String(), renderStatusEmbed(view))
	if err != nil {
		return 0, fmt.Errorf("failed to send status message: %w", err)
	}

	messageID, err := snowflake.Parse(message.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to parse status message ID: %w", err)
	}

	for _, emoji := range ports.ControlEmojis() {
		if err := m.session.MessageReactionAdd(channelID.String(), message.ID, emoji); err != nil {
			return messageID, fmt.Errorf("failed to add control reaction %q: %w", emoji, err)
		}
	}

	return messageID, nil
}

// EditStatus replaces the embed on an existing status message.
func (m *DiscordMessenger) EditStatus(
	ctx context.Context,
	channelID, messageID snowflake.ID,
	view ports.StatusView,
) error {
	_, err := m.session.ChannelMessageEditEmbed(
		channelID.String(),
		messageID.String(),
		renderStatusEmbed(view),
	)
	if err != nil {
		return fmt.Errorf("failed to edit status message: %w", err)
	}
	return nil
}

// DeleteMessage deletes a message. A message that is already gone counts
// as deleted.
func (m *DiscordMessenger) DeleteMessage(ctx context.Context, channelID, messageID snowflake.ID) error {
	err := m.session.ChannelMessageDelete(channelID.String(), messageID.String())
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// RemoveReaction removes a user's reaction from a message.
func (m *DiscordMessenger) RemoveReaction(
	ctx context.Context,
	channelID, messageID snowflake.ID,
	emoji string,
	userID snowflake.ID,
) error {
	err := m.session.MessageReactionRemove(
		channelID.String(),
		messageID.String(),
		emoji,
		userID.String(),
	)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to remove reaction: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusNotFound
	}
	return false
}

func renderStatusEmbed(view ports.StatusView) *discordgo.MessageEmbed {
	description := view.Title
	if view.URI != "" {
		description = fmt.Sprintf("[%s](%s)", view.Title, view.URI)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Now Playing",
		Description: description,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Duration",
				Value:  fmt.Sprintf("`%s`", view.Duration),
				Inline: true,
			},
		},
	}

	if view.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: view.ArtworkURL}
	}

	if view.RepeatEnabled {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Repeat",
			Value:  "Enabled",
			Inline: true,
		})
	}

	if view.Lyrics != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Lyrics",
			Value: fmt.Sprintf("```%s```", view.Lyrics),
		})
	}

	return embed
}

var _ ports.StatusMessenger = (*DiscordMessenger)(nil)
