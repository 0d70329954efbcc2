package command

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type JoinCommand struct{}

func (c *JoinCommand) Name() string        { return "join" }
func (c *JoinCommand) Description() string { return "Have Dooberhut Bot join your current voice channel" }
func (c *JoinCommand) Group() string       { return "music" }

func (c *JoinCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *JoinCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	s := slash.Session
	e := slash.Event

	vs, err := findUserVoiceState(s, e.GuildID, e.Member.User.ID)
	if err != nil {
		return RespondEphemeral(s, e, "Join a voice channel first so I can connect.")
	}

	if _, err := slash.Players.Connect(e.GuildID, vs.ChannelID); err != nil {
		return RespondEphemeral(s, e, fmt.Sprintf("Couldn't join voice: %v", err))
	}

	return Respond(s, e, fmt.Sprintf("🤖 Dooberhut Bot joined %s.", channelMention(s, vs.ChannelID)))
}

func init() {
	Register(Apply(&JoinCommand{}, WithGuildOnly, WithCommandLogger))
}
