package command

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type SkipCommand struct{}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Skip the current song" }
func (c *SkipCommand) Group() string       { return "music" }

func (c *SkipCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *SkipCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	if p := slash.Players.Get(slash.Event.GuildID); p != nil {
		p.Skip()
	}
	return Respond(slash.Session, slash.Event, "⏭️ Skipped.")
}

func init() {
	Register(Apply(&SkipCommand{}, WithGuildOnly, WithCommandLogger))
}
