package command

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type StopCommand struct{}

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop playback, clear the queue and leave voice" }
func (c *StopCommand) Group() string       { return "music" }

func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *StopCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	if p := slash.Players.Get(slash.Event.GuildID); p != nil {
		p.Stop()
	}
	return Respond(slash.Session, slash.Event, "⏹️ Stopped and cleared queue.")
}

func init() {
	Register(Apply(&StopCommand{}, WithGuildOnly, WithCommandLogger))
}
