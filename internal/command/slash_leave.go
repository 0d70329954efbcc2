package command

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type LeaveCommand struct{}

func (c *LeaveCommand) Name() string        { return "leave" }
func (c *LeaveCommand) Description() string { return "Disconnect Dooberhut Bot from voice" }
func (c *LeaveCommand) Group() string       { return "music" }

func (c *LeaveCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *LeaveCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	if p := slash.Players.Get(slash.Event.GuildID); p != nil {
		p.Stop()
	}
	return Respond(slash.Session, slash.Event, "👋 Dooberhut Bot left the voice channel.")
}

func init() {
	Register(Apply(&LeaveCommand{}, WithGuildOnly, WithCommandLogger))
}
