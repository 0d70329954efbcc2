package command

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type QueueCommand struct{}

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Show upcoming songs" }
func (c *QueueCommand) Group() string       { return "music" }

func (c *QueueCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *QueueCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	s := slash.Session
	e := slash.Event

	p := slash.Players.Get(e.GuildID)
	if p == nil {
		return Respond(s, e, "Queue is empty.")
	}

	snap := p.Snapshot()

	var lines []string
	if snap.Current != nil {
		lines = append(lines, fmt.Sprintf("**Now:** %s *(requested by %s)*", snap.Current.Title, snap.Current.RequestedBy))
	}
	for i, t := range snap.Upcoming {
		lines = append(lines, fmt.Sprintf("%d. %s *(requested by %s)*", i+1, t.Title, t.RequestedBy))
	}
	if snap.Remaining > 0 {
		lines = append(lines, fmt.Sprintf("...and %d more", snap.Remaining))
	}

	if len(lines) == 0 {
		return Respond(s, e, "Queue is empty.")
	}
	return Respond(s, e, strings.Join(lines, "\n"))
}

func init() {
	Register(Apply(&QueueCommand{}, WithGuildOnly, WithCommandLogger))
}
