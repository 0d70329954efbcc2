package command

import (
	"github.com/bwmarrin/discordgo"

	"github.com/dooberhut/dooberhut-bot/internal/music/player"
	"github.com/dooberhut/dooberhut-bot/internal/music/resolver"
	"github.com/dooberhut/dooberhut-bot/internal/reminder"
	"github.com/dooberhut/dooberhut-bot/internal/storage"
)

type Command interface {
	Name() string
	Description() string
	Group() string
	Run(ctx interface{}) error
}

// SlashProvider - how this command should be registered with Discord.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// SlashContext is what the runtime hands a command when executing it.
type SlashContext struct {
	Session   *discordgo.Session
	Event     *discordgo.InteractionCreate
	Storage   *storage.Storage
	Players   *player.Registry
	Resolver  *resolver.Resolver
	Sound     *reminder.SoundDispatcher
	AssetsDir string
}
