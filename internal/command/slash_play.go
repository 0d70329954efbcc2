package command

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type PlayCommand struct{}

func (c *PlayCommand) Name() string { return "play" }
func (c *PlayCommand) Description() string {
	return "Play a song by name, YouTube link, or Spotify link"
}
func (c *PlayCommand) Group() string { return "music" }

func (c *PlayCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Song name, YouTube URL, or Spotify track/album/playlist URL",
				Required:    true,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	s := slash.Session
	e := slash.Event

	var query string
	for _, opt := range e.ApplicationCommandData().Options {
		if opt.Name == "query" {
			query = opt.StringValue()
		}
	}

	// Resolution can take a while; defer before hitting the network.
	if err := RespondDeferred(s, e); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	p := slash.Players.Get(e.GuildID)
	if p == nil || !p.Connected() {
		vs, err := findUserVoiceState(s, e.GuildID, e.Member.User.ID)
		if err != nil {
			return Followup(s, e, "Dooberhut Bot isn't in a voice channel. Use `/join` first.")
		}
		p, err = slash.Players.Connect(e.GuildID, vs.ChannelID)
		if err != nil {
			return Followup(s, e, fmt.Sprintf("Couldn't join voice: %v", err))
		}
	}

	tracks := slash.Resolver.Resolve(query, e.Member.User.Username)
	if len(tracks) == 0 {
		return Followup(s, e, "Couldn't find anything to play.")
	}

	added := 0
	for _, t := range tracks {
		if _, err := p.Enqueue(t); err != nil {
			return Followup(s, e, fmt.Sprintf("Couldn't queue tracks: %v", err))
		}
		added++
	}

	return Followup(s, e, fmt.Sprintf("Queued **%d** track(s). Use `/queue` to view.", added))
}

func init() {
	Register(Apply(&PlayCommand{}, WithGuildOnly, WithCommandLogger))
}
