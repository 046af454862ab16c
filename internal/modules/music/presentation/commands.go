package presentation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/strlkr/fermata/internal/bot"
	"github.com/strlkr/fermata/internal/modules/music/application/usecases"
	"github.com/strlkr/fermata/internal/modules/music/domain"
)

const (
	// queuePageSize is how many tracks the queue listing shows.
	queuePageSize = 20
	// maxQueueDescriptionLength is the embed description limit.
	maxQueueDescriptionLength = 2048
	// maxLyricsMessageLength leaves room for the code fence inside the
	// message content limit.
	maxLyricsMessageLength = 2042
)

// CommandHandlers exposes the music use cases as chat commands.
type CommandHandlers struct {
	voice    *usecases.VoiceService
	playback *usecases.PlaybackService
	lyrics   *usecases.LyricsFetcher
}

// NewCommandHandlers creates a new CommandHandlers.
func NewCommandHandlers(
	voice *usecases.VoiceService,
	playback *usecases.PlaybackService,
	lyrics *usecases.LyricsFetcher,
) *CommandHandlers {
	return &CommandHandlers{
		voice:    voice,
		playback: playback,
		lyrics:   lyrics,
	}
}

// Handlers returns the command table for module registration.
func (h *CommandHandlers) Handlers() map[string]bot.CommandHandler {
	return map[string]bot.CommandHandler{
		"join":       h.Join,
		"leave":      h.Leave,
		"play":       h.Play,
		"stop":       h.Stop,
		"pause":      h.Pause,
		"resume":     h.Resume,
		"skip":       h.Skip,
		"seek":       h.Seek,
		"volume":     h.Volume,
		"nowplaying": h.NowPlaying,
		"np":         h.NowPlaying,
		"queue":      h.Queue,
		"lyrics":     h.Lyrics,
		"shuffle":    h.Shuffle,
		"repeat":     h.Repeat,
	}
}

// Join connects the bot to the requester's voice channel, or to the channel
// given as an argument.
func (h *CommandHandlers) Join(ctx *bot.CommandContext) error {
	guildID, err := snowflake.Parse(ctx.Message.GuildID)
	if err != nil {
		return err
	}
	userID, err := snowflake.Parse(ctx.Message.Author.ID)
	if err != nil {
		return err
	}
	textChannelID, err := snowflake.Parse(ctx.Message.ChannelID)
	if err != nil {
		return err
	}

	var voiceChannelID snowflake.ID
	if len(ctx.Args) > 0 {
		voiceChannelID, err = parseChannelArg(ctx.Args[0])
		if err != nil {
			ctx.Replier.ReplyTemporary(ctx.Message, ":x: That does not look like a voice channel.")
			return nil
		}
	}

	output, err := h.voice.Join(context.Background(), usecases.JoinInput{
		GuildID:        guildID,
		UserID:         userID,
		TextChannelID:  textChannelID,
		VoiceChannelID: voiceChannelID,
	})
	if err != nil {
		return h.replyKnownError(ctx, err)
	}

	ctx.Replier.ReplyTemporary(ctx.Message, fmt.Sprintf("Joined <#%s>.", output.VoiceChannelID))
	return nil
}

// Leave disconnects the bot from its voice channel.
func (h *CommandHandlers) Leave(ctx *bot.CommandContext) error {
	guildID, err := snowflake.Parse(ctx.Message.GuildID)
	if err != nil {
		return err
	}

	output, err := h.voice.Leave(context.Background(), guildID)
	if err != nil {
		return h.replyKnownError(ctx, err)
	}

	ctx.Replier.ReplyTemporary(ctx.Message, fmt.Sprintf("Left <#%s>.", output.VoiceChannelID))
	return nil
}

// Play resolves the query and starts it or adds it to the queue. Without a
// query it starts the next queued track.
func (h *CommandHandlers) Play(ctx *bot.CommandContext) error {
	guildID, err := snowflake.Parse(ctx.Message.GuildID)
	if err != nil {
		return err
	}

	query := strings.Join(ctx.Args, " ")

	output, err := h.playback.Play(context.Background(), usecases.PlayInput{
		GuildID: guildID,
		Query:   query,
	})
	if errors.Is(err, usecases.ErrNoMatches) {
		ctx.Replier.ReplyTemporary(ctx.Message, fmt.Sprintf(":x: No search results for `%s`.", query))
		return nil
	}
	if errors.Is(err, usecases.ErrNothingPlaying) {
		// Bare "play" while something is already running.
		ctx.Replier.ReplyTemporary(ctx.Message, ":x: Something is already playing. Give me a track to enqueue.")
		return nil
	}
	if err != nil {
		return h.replyKnownError(ctx, err)
	}

	switch {
	case output.EnqueuedTrack != nil:
		ctx.Replier.ReplyEmbedTemporary(ctx.Message, renderEnqueuedEmbed(output.EnqueuedTrack))
	case output.EnqueuedCount > 0:
		ctx.Replier.ReplyTemporary(ctx.Message,
			fmt.Sprintf("Enqueued %d tracks from **%s**.", output.EnqueuedCount, output.PlaylistName))
	default:
		// A started track announces itself through the status message.
		ctx.Replier.DeleteMessage(ctx.Message.ChannelID, ctx.Message.ID)
	}
	return nil
}

// Stop halts playback without clearing the queue.
func (h *CommandHandlers) Stop(ctx *bot.CommandContext) error {
	guildID, err := snowflake.Parse(ctx.Message.GuildID)
	if err != nil {
		return err
	}

	if err := h.playback.Stop(context.Background(), guildID); err != nil {
		return h.replyKnownError(ctx, err)
	}

	ctx.Replier.ReplyTemporary(ctx.Message, "Stopped.")
	return nil
}

// Pause pauses playback.
func (h *CommandHandlers) Pause(ctx *bot.CommandContext) error {
	guildID, err := snowflake.Parse(ctx.Message.GuildID)
	if err != nil {
		return err
	}

	if err := h.playback.Pause(context.Background(), guildID); err != nil {
		return h.replyKnownError(ctx, err)
	}

	ctx.Replier.ReplyTemporary(ctx.Message, "Paused.")
	return nil
}

// Resume resumes paused playback.
func (h *CommandHandlers) Resume(ctx *bot.CommandContext) error {
	guildID, err := snowflake.Parse(ctx.Message.GuildID)
	if err != nil {
		return err
	}

	if err := h.playback.Resume(context.Background(), guildID); err != nil {
		return h.replyKnownError(ctx, err)
	}

	ctx.Replier.ReplyTemporary(ctx.Message, "Resumed.")
	return nil
}

// Skip advances to the next queued track. "skip to <index>" jumps further
// ahead, dropping everything before the target.
func (h *CommandHandlers) Skip(ctx *bot.CommandContext) error {
	guildID, err := snowflake.Parse(ctx.Message.GuildID)
	if err != nil {
		return err
	}

	if len(ctx.Args) >= 2 && strings.EqualFold(ctx.Args[0], "to") {
		index, err := strconv.Atoi(ctx.Args[1])
		if err != nil {
			ctx.Replier.ReplyTemporary(ctx.Message, ":x: That is not a queue index.")
			return nil
		}
		if index < 1 {
			ctx.Replier.ReplyTemporary(ctx.Message, ":x: The index cannot be smaller than 1.")
			return nil
		}

		if _, err := h.playback.SkipTo(context.Background(), guildID, index); err != nil {
			if errors.Is(err, usecases.ErrIndexOutOfRange) {
				ctx.Replier.ReplyTemporary(ctx.Message, ":x: There are not that many tracks in the queue.")
				return nil
			}
			return h.replyKnownError(ctx, err)
		}

		ctx.Replier.ReplyTemporary(ctx.Message, fmt.Sprintf("Skipped to track %d.", index))
		return nil
	}

	next, err := h.playback.Skip(context.Background(), guildID)
	if err != nil {
		return h.replyKnownError(ctx, err)
	}

	if next == nil {
		ctx.Replier.ReplyTemporary(ctx.Message, "Stopped. The queue is empty.")
	} else {
		ctx.Replier.ReplyTemporary(ctx.Message, "Skipped.")
	}
	return nil
}

// Seek moves the playback cursor. An absolute timestamp jumps there;
// "seek forward 30" and "seek back 0:30" move relative to the current
// position.
func (h *CommandHandlers) Seek(ctx *bot.CommandContext) error {
	guildID, err := snowflake.Parse(ctx.Message.GuildID)
	if err != nil {
		return err
	}

	if len(ctx.Args) == 0 {
		ctx.Replier.ReplyTemporary(ctx.Message, ":x: Give me a timestamp, like `2:30`.")
		return nil
	}

	direction := 0
	timestampArg := ctx.Args[0]
	switch strings.ToLower(ctx.Args[0]) {
	case "forwards", "forward", "f", "+":
		direction = 1
	case "backwards", "backward", "back", "b", "-":
		direction = -1
	}
	if direction != 0 {
		if len(ctx.Args) < 2 {
			ctx.Replier.ReplyTemporary(ctx.Message, ":x: Give me a timestamp, like `2:30`.")
			return nil
		}
		timestampArg = ctx.Args[1]
	}

	offset, err := ParseTimestamp(timestampArg)
	if err != nil {
		ctx.Replier.ReplyTemporary(ctx.Message, fmt.Sprintf(":x: `%s` is not a valid timestamp.", timestampArg))
		return nil
	}

	var position = offset
	if direction != 0 {
		position, err = h.playback.SeekBy(context.Background(), guildID, time.Duration(direction)*offset)
	} else {
		err = h.playback.Seek(context.Background(), guildID, position)
	}
	if err != nil {
		return h.replyKnownError(ctx, err)
	}

	ctx.Replier.ReplyTemporary(ctx.Message, fmt.Sprintf("Seeked to `%s`.", FormatDuration(position)))
	return nil
}

// Volume sets the playback volume in percent.
func (h *CommandHandlers) Volume(ctx *bot.CommandContext) error {
	guildID, err := snowflake.Parse(ctx.Message.GuildID)
	if err != nil {
		return err
	}

	if len(ctx.Args) == 0 {
		ctx.Replier.ReplyTemporary(ctx.Message, ":x: Give me a volume between 0 and 1000.")
		return nil
	}

	volume, err := strconv.Atoi(ctx.Args[0])
	if err != nil || volume < 0 || volume > 1000 {
		ctx.Replier.ReplyTemporary(ctx.Message, ":x: The volume has to be between 0 and 1000.")
		return nil
	}

	if err := h.playback.SetVolume(context.Background(), guildID, volume); err != nil {
		return h.replyKnownError(ctx, err)
	}

	ctx.Replier.ReplyTemporary(ctx.Message, fmt.Sprintf("Volume set to %d%%.", volume))
	return nil
}

// NowPlaying shows the current track and playback position.
func (h *CommandHandlers) NowPlaying(ctx *bot.CommandContext) error {
	guildID, err := snowflake.Parse(ctx.Message.GuildID)
	if err != nil {
		return err
	}

	output, err := h.playback.NowPlaying(guildID)
	if err != nil {
		return h.replyKnownError(ctx, err)
	}

	track := output.Track
	position := fmt.Sprintf("`%s / %s`", FormatDuration(output.Position), track.FormattedDuration())
	if track.IsStream {
		position = "`LIVE`"
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Now Playing",
		Description: trackLink(track),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Position", Value: position, Inline: true},
		},
	}
	if track.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: track.ArtworkURL}
	}

	ctx.Replier.ReplyEmbedTemporary(ctx.Message, embed)
	return nil
}

// Queue lists the queued tracks.
func (h *CommandHandlers) Queue(ctx *bot.CommandContext) error {
	guildID, err := snowflake.Parse(ctx.Message.GuildID)
	if err != nil {
		return err
	}

	snapshot, err := h.playback.QueueView(guildID)
	if err != nil {
		return h.replyKnownError(ctx, err)
	}

	if len(snapshot.Tracks) == 0 {
		ctx.Replier.ReplyTemporary(ctx.Message, "The queue is empty.")
		return nil
	}

	var description strings.Builder
	shown := len(snapshot.Tracks)
	if shown > queuePageSize {
		shown = queuePageSize
	}
	for i := 0; i < shown; i++ {
		line := fmt.Sprintf("`%d. ` %s\n", i+1, trackLink(snapshot.Tracks[i]))
		if description.Len()+len(line) > maxQueueDescriptionLength {
			break
		}
		description.WriteString(line)
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Queue",
		Description: description.String(),
	}
	if len(snapshot.Tracks) > queuePageSize {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Length",
			Value:  fmt.Sprintf("%d tracks", len(snapshot.Tracks)),
			Inline: true,
		})
	}

	if _, err := ctx.Session.ChannelMessageSendEmbed(ctx.Message.ChannelID, embed); err != nil {
		return err
	}
	return nil
}

// Lyrics looks up lyrics for the current track and posts them.
func (h *CommandHandlers) Lyrics(ctx *bot.CommandContext) error {
	guildID, err := snowflake.Parse(ctx.Message.GuildID)
	if err != nil {
		return err
	}

	track, err := h.playback.CurrentTrack(guildID)
	if err != nil {
		return h.replyKnownError(ctx, err)
	}

	text := h.lyrics.Fetch(context.Background(), track.Title, track.Author)
	if text == "" {
		ctx.Replier.ReplyTemporary(ctx.Message, fmt.Sprintf("No lyrics found for **%s**.", track.Title))
		return nil
	}

	_, err = ctx.Replier.Reply(ctx.Message, fmt.Sprintf("```%s```", Truncate(text, maxLyricsMessageLength)))
	return err
}

// Shuffle randomizes the queue order.
func (h *CommandHandlers) Shuffle(ctx *bot.CommandContext) error {
	guildID, err := snowflake.Parse(ctx.Message.GuildID)
	if err != nil {
		return err
	}

	if err := h.playback.Shuffle(guildID); err != nil {
		return h.replyKnownError(ctx, err)
	}

	ctx.Replier.ReplyTemporary(ctx.Message, "The queue was shuffled.")
	return nil
}

// Repeat toggles repeat for the current track.
func (h *CommandHandlers) Repeat(ctx *bot.CommandContext) error {
	guildID, err := snowflake.Parse(ctx.Message.GuildID)
	if err != nil {
		return err
	}

	enabled, err := h.playback.ToggleRepeat(context.Background(), guildID)
	if err != nil {
		return h.replyKnownError(ctx, err)
	}

	if enabled {
		ctx.Replier.ReplyTemporary(ctx.Message, "Repeat is enabled.")
	} else {
		ctx.Replier.ReplyTemporary(ctx.Message, "Repeat is disabled.")
	}
	return nil
}

// replyKnownError translates use case errors into user-facing replies.
// Unknown errors propagate to the command dispatcher.
func (h *CommandHandlers) replyKnownError(ctx *bot.CommandContext, err error) error {
	var message string
	switch {
	case errors.Is(err, usecases.ErrAlreadyConnected):
		message = ":x: I am already connected to a voice channel."
	case errors.Is(err, usecases.ErrNoChannelSpecified):
		message = ":x: You have to be connected to a voice channel or specify a voice channel to connect to."
	case errors.Is(err, usecases.ErrNotConnected):
		message = ":x: I am not connected to a voice channel."
	case errors.Is(err, usecases.ErrNothingPlaying):
		message = ":x: There is nothing playing at the moment."
	case errors.Is(err, usecases.ErrAlreadyStopped):
		message = ":x: Playback is already stopped."
	case errors.Is(err, usecases.ErrNotPaused):
		message = ":x: Playback is not paused at the moment."
	case errors.Is(err, usecases.ErrQueueEmpty):
		message = ":x: The queue is empty."
	default:
		return err
	}

	ctx.Replier.ReplyTemporary(ctx.Message, message)
	return nil
}

func renderEnqueuedEmbed(track *domain.Track) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       "Enqueued",
		Description: trackLink(track),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Duration",
				Value:  fmt.Sprintf("`%s`", track.FormattedDuration()),
				Inline: true,
			},
		},
	}
	if track.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: track.ArtworkURL}
	}
	return embed
}

func trackLink(track *domain.Track) string {
	if track.URI == "" {
		return track.Title
	}
	return fmt.Sprintf("[%s](%s)", track.Title, track.URI)
}

// parseChannelArg accepts a raw channel ID or a <#id> channel mention.
func parseChannelArg(arg string) (snowflake.ID, error) {
	arg = strings.TrimSuffix(strings.TrimPrefix(arg, "<#"), ">")
	return snowflake.Parse(arg)
}
