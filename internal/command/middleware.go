package command

import (
	"log"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/dooberhut/dooberhut-bot/internal/storage"
)

type Middleware func(Command) Command

type wrappedCommand struct {
	Command
	wrap func(ctx interface{}) error
}

func (w *wrappedCommand) Run(ctx interface{}) error {
	return w.wrap(ctx)
}

func (w *wrappedCommand) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := w.Command.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// WithGuildOnly rejects command use outside a guild.
func WithGuildOnly(cmd Command) Command {
	return &wrappedCommand{
		Command: cmd,
		wrap: func(ctx interface{}) error {
			if v, ok := ctx.(*SlashContext); ok && v.Event.GuildID == "" {
				return RespondEphemeral(v.Session, v.Event, "You must be in a server to use this command.")
			}
			return cmd.Run(ctx)
		},
	}
}

// WithCommandLogger records every invocation in the guild's history.
func WithCommandLogger(cmd Command) Command {
	return &wrappedCommand{
		Command: cmd,
		wrap: func(ctx interface{}) error {
			if v, ok := ctx.(*SlashContext); ok && v.Event.Member != nil {
				err := v.Storage.AppendCommandToHistory(v.Event.GuildID, storage.CommandHistoryRecord{
					ChannelID: v.Event.ChannelID,
					UserID:    v.Event.Member.User.ID,
					Username:  v.Event.Member.User.Username,
					Command:   cmd.Name(),
					Datetime:  time.Now(),
				})
				if err != nil {
					log.Println("[WARN] Failed to log command:", err)
				}
			}
			return cmd.Run(ctx)
		},
	}
}

func Apply(cmd Command, mws ...Middleware) Command {
	for _, mw := range mws {
		cmd = mw(cmd)
	}
	return cmd
}
