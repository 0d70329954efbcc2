package discord

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"github.com/dooberhut/dooberhut-bot/internal/command"
	"github.com/dooberhut/dooberhut-bot/internal/config"
	"github.com/dooberhut/dooberhut-bot/internal/music/player"
	"github.com/dooberhut/dooberhut-bot/internal/music/resolver"
	"github.com/dooberhut/dooberhut-bot/internal/music/sink"
	"github.com/dooberhut/dooberhut-bot/internal/reminder"
	"github.com/dooberhut/dooberhut-bot/internal/storage"
)

// Bot wires the gateway session to the players, the resolver and the
// reminder scheduler.
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	storage  *storage.Storage
	players  *player.Registry
	resolver *resolver.Resolver
	sound    *reminder.SoundDispatcher

	// registerLimiter paces slash command registration across guilds,
	// staying under Discord's application command rate limit.
	registerLimiter *rate.Limiter
}

// StartBot runs the Discord bot until ctx is cancelled.
func StartBot(ctx context.Context, cfg *config.Config, store *storage.Storage) error {
	b := &Bot{
		cfg:             cfg,
		storage:         store,
		resolver:        resolver.New(cfg.SpotifyClientID, cfg.SpotifyClientSecret),
		registerLimiter: rate.NewLimiter(rate.Limit(2), 5),
	}
	if err := b.run(ctx, cfg.DiscordToken); err != nil {
		return fmt.Errorf("bot run error: %w", err)
	}
	return nil
}

func (b *Bot) run(ctx context.Context, token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b.dg = dg
	b.players = player.NewRegistry(sink.NewDiscordConnector(dg))
	b.sound = reminder.NewSoundDispatcher(b.players, b.cfg.AssetsDir)

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onGuildCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	scheduler := reminder.NewScheduler(b.storage, b, b.players, b.sound, b.cfg.ReminderTick)
	go scheduler.Run(ctx)

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	b.stopAllPlayers()
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates
}

// SendText posts a reminder message to a channel.
func (b *Bot) SendText(channelID, message string) error {
	_, err := b.dg.ChannelMessageSend(channelID, message)
	return err
}

func (b *Bot) stopAllPlayers() {
	for _, guild := range b.dg.State.Guilds {
		if p := b.players.Get(guild.ID); p != nil {
			p.Stop()
		}
	}
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	botInfo, err := s.User("@me")
	if err != nil {
		log.Println("[WARN] Error retrieving bot user:", err)
		return
	}

	if b.cfg.InitSlashCommands {
		for _, g := range r.Guilds {
			if err := b.registerCommands(g.ID); err != nil {
				log.Println("[ERR] Error registering slash commands for guild", g.ID, ":", err)
			}
		}
	} else {
		log.Println("[INFO] Registering slash commands skipped")
	}

	log.Printf("[INFO] ✅ %v is running.", botInfo.Username)
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Printf("[INFO] Bot added to guild: %s (%s)", g.Guild.ID, g.Guild.Name)

	if err := b.registerCommands(g.Guild.ID); err != nil {
		log.Printf("[ERR] Failed to register commands for new guild %s: %v", g.Guild.ID, err)
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	cmdName := i.ApplicationCommandData().Name
	cmd, ok := command.Get(cmdName)
	if !ok {
		log.Printf("[WARN] Unknown command: %s", cmdName)
		return
	}

	ctx := &command.SlashContext{
		Session:   s,
		Event:     i,
		Storage:   b.storage,
		Players:   b.players,
		Resolver:  b.resolver,
		Sound:     b.sound,
		AssetsDir: b.cfg.AssetsDir,
	}
	if err := cmd.Run(ctx); err != nil {
		log.Println("[ERR] Error running slash command:", err)
	}
}

// registerCommands reconciles the guild's slash commands with the
// registry: obsolete ones are deleted, current ones recreated.
func (b *Bot) registerCommands(guildID string) error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	wanted := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range command.All() {
		if def := normalizeDefinition(cmd); def != nil {
			wanted[def.Name] = def
		}
	}

	existing, _ := b.dg.ApplicationCommands(appID, guildID)
	for _, old := range existing {
		if _, ok := wanted[old.Name]; !ok {
			log.Printf("[INFO] [%s] Deleting obsolete command: %s", guildID, old.Name)
			if err := b.dg.ApplicationCommandDelete(appID, guildID, old.ID); err != nil {
				log.Printf("[ERR] [%s] Failed to delete %s: %v", guildID, old.Name, err)
			}
		}
	}

	for _, def := range wanted {
		if err := b.registerLimiter.Wait(context.Background()); err != nil {
			return err
		}
		if _, err := b.dg.ApplicationCommandCreate(appID, guildID, def); err != nil {
			log.Printf("[ERR] [%s] Can't create command %s: %v", guildID, def.Name, err)
		}
	}
	return nil
}

func normalizeDefinition(cmd command.Command) *discordgo.ApplicationCommand {
	slash, ok := cmd.(command.SlashProvider)
	if !ok {
		return nil
	}
	def := slash.SlashDefinition()
	if def != nil && def.Type == 0 {
		def.Type = discordgo.ChatApplicationCommand
	}
	return def
}
