package command

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// ErrNoUserVoicePresence is returned when the invoking user has no
// voice channel the bot could join.
var ErrNoUserVoicePresence = errors.New("user is not in any voice channel")

// findUserVoiceState locates the voice channel the user currently sits
// in, from gateway state.
func findUserVoiceState(s *discordgo.Session, guildID, userID string) (*discordgo.VoiceState, error) {
	guild, err := s.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving guild: %w", err)
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return vs, nil
		}
	}
	return nil, ErrNoUserVoicePresence
}

func channelMention(s *discordgo.Session, channelID string) string {
	if ch, err := s.State.Channel(channelID); err == nil {
		return "**" + ch.Name + "**"
	}
	return "<#" + channelID + ">"
}
