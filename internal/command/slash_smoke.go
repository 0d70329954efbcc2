package command

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/dooberhut/dooberhut-bot/internal/reminder"
)

// maxSoundDownload caps custom sound downloads at 15 MB.
const maxSoundDownload = 15 * 1024 * 1024

type SmokeCommand struct{}

func (c *SmokeCommand) Name() string        { return "smoke" }
func (c *SmokeCommand) Description() string { return "Configure smoke break reminders" }
func (c *SmokeCommand) Group() string       { return "reminder" }

func (c *SmokeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set",
				Description: "Remind at fixed daily times in this channel",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "times",
						Description: "Comma-separated times, e.g. 4:20, 16:20",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "timezone",
						Description: "IANA timezone, e.g. Europe/Amsterdam (default UTC)",
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "message",
						Description: "Custom reminder text",
					},
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "Channel to post reminders in (default: this one)",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "every",
				Description: "Remind every N minutes while someone is in voice",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "minutes",
						Description: "Interval in minutes",
						Required:    true,
						MinValue:    &minIntervalMinutes,
						MaxValue:    maxIntervalMinutes,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "message",
						Description: "Custom reminder text",
					},
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "Channel to post reminders in (default: this one)",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "start35",
				Description: "Join your voice channel and remind every 35 minutes",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "Channel to post reminders in (default: this one)",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "sound",
				Description: "Toggle the reminder sound",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionBoolean,
						Name:        "enabled",
						Description: "Play a sound when the bot is in voice",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "soundurl",
				Description: "Set a custom reminder sound from a URL (max 15 MB)",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "url",
						Description: "Direct link to an audio file",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "soundset",
				Description: "Set a custom reminder sound from an attached audio file",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionAttachment,
						Name:        "file",
						Description: "Audio attachment (mp3, wav, ogg or m4a)",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "soundreset",
				Description: "Go back to the default reminder sound",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "message",
				Description: "Set the reminder text",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "text",
						Description: "Message to post when the reminder fires",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "tz",
				Description: "Change the timezone for fixed reminder times",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "zone",
						Description: "IANA timezone, e.g. America/New_York",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "Show the current reminder settings",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "off",
				Description: "Turn reminders off",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "test",
				Description: "Fire the reminder once, right now",
			},
		},
	}
}

var minIntervalMinutes float64 = 1

const maxIntervalMinutes = 1440

var allowedSoundExts = map[string]bool{
	".mp3": true, ".wav": true, ".ogg": true, ".m4a": true,
}

func allowedSoundExt(filename string) bool {
	return allowedSoundExts[strings.ToLower(filepath.Ext(filename))]
}

// reminderTargetChannel picks the channel option if given, else the
// invoking channel.
func reminderTargetChannel(e *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) string {
	for _, opt := range opts {
		if opt.Name == "channel" && opt.Type == discordgo.ApplicationCommandOptionChannel {
			return opt.ChannelValue(nil).ID
		}
	}
	return e.ChannelID
}

func (c *SmokeCommand) Run(ctx interface{}) error {
	slash, ok := ctx.(*SlashContext)
	if !ok {
		return fmt.Errorf("wrong context type")
	}

	s := slash.Session
	e := slash.Event

	options := e.ApplicationCommandData().Options
	if len(options) == 0 {
		return RespondEphemeral(s, e, "Pick a subcommand.")
	}
	sub := options[0]

	cfg, err := slash.Storage.GetReminderConfig(e.GuildID)
	if err != nil {
		return fmt.Errorf("failed to load reminder config: %w", err)
	}

	switch sub.Name {
	case "set":
		return c.runSet(slash, cfg, sub)
	case "every":
		var minutes int
		for _, opt := range sub.Options {
			switch opt.Name {
			case "minutes":
				minutes = int(opt.IntValue())
			case "message":
				cfg.Message = opt.StringValue()
			}
		}
		return c.runEvery(slash, cfg, minutes, reminderTargetChannel(e, sub.Options))
	case "start35":
		return c.runStart35(slash, cfg, sub)
	case "sound":
		cfg.Sound = sub.Options[0].BoolValue()
		if err := slash.Storage.SetConfig(e.GuildID, cfg); err != nil {
			return err
		}
		if cfg.Sound {
			return Respond(s, e, "🔊 Reminder sound on.")
		}
		return Respond(s, e, "🔇 Reminder sound off.")
	case "soundurl":
		return c.runSoundURL(slash, cfg, sub.Options[0].StringValue())
	case "soundset":
		return c.runSoundSet(slash, cfg, sub)
	case "soundreset":
		return c.runSoundReset(slash, cfg)
	case "message":
		cfg.Message = sub.Options[0].StringValue()
		if err := slash.Storage.SetConfig(e.GuildID, cfg); err != nil {
			return err
		}
		return Respond(s, e, fmt.Sprintf("💬 Reminder message set to: %s", cfg.Message))
	case "tz":
		return c.runTimezone(slash, cfg, sub.Options[0].StringValue())
	case "list":
		return c.runList(slash, cfg)
	case "off":
		cfg.Disable()
		if err := slash.Storage.SetConfig(e.GuildID, cfg); err != nil {
			return err
		}
		return Respond(s, e, "🚭 Reminders off.")
	case "test":
		return c.runTest(slash, cfg)
	}

	return RespondEphemeral(s, e, fmt.Sprintf("Unknown subcommand `%s`.", sub.Name))
}

func (c *SmokeCommand) runSet(slash *SlashContext, cfg *reminder.Config, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	s := slash.Session
	e := slash.Event

	var rawTimes, tz string
	for _, opt := range sub.Options {
		switch opt.Name {
		case "times":
			rawTimes = opt.StringValue()
		case "timezone":
			tz = opt.StringValue()
		case "message":
			cfg.Message = opt.StringValue()
		}
	}

	times := reminder.ParseTimes(rawTimes)
	if len(times) == 0 {
		return RespondEphemeral(s, e, "No valid times found. Use HH:MM, comma-separated, e.g. `4:20, 16:20`.")
	}
	if tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return RespondEphemeral(s, e, fmt.Sprintf("Unknown timezone `%s`.", tz))
		}
	}

	cfg.SetFixedTimes(times, tz)
	cfg.ChannelID = reminderTargetChannel(e, sub.Options)
	if err := slash.Storage.SetConfig(e.GuildID, cfg); err != nil {
		return err
	}

	return Respond(s, e, fmt.Sprintf("⏰ Reminders set for %s in %s.",
		strings.Join(times, ", "), channelMention(s, cfg.ChannelID)))
}

func (c *SmokeCommand) runEvery(slash *SlashContext, cfg *reminder.Config, minutes int, channelID string) error {
	s := slash.Session
	e := slash.Event

	if minutes < 1 || minutes > maxIntervalMinutes {
		return RespondEphemeral(s, e, "Interval must be between 1 and 1440 minutes.")
	}

	cfg.SetInterval(minutes)
	cfg.ChannelID = channelID
	if err := slash.Storage.SetConfig(e.GuildID, cfg); err != nil {
		return err
	}

	return Respond(s, e, fmt.Sprintf("⏱️ Reminding every %d minutes while someone is in voice, in %s.",
		minutes, channelMention(s, channelID)))
}

// runStart35 is the one-shot session starter: joins the caller's voice
// channel, enables sound and arms a 35-minute interval.
func (c *SmokeCommand) runStart35(slash *SlashContext, cfg *reminder.Config, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	s := slash.Session
	e := slash.Event

	vs, err := findUserVoiceState(s, e.GuildID, e.Member.User.ID)
	if err != nil {
		return RespondEphemeral(s, e, "Join a voice channel first, then run `/smoke start35`.")
	}
	if _, err := slash.Players.Connect(e.GuildID, vs.ChannelID); err != nil {
		return RespondEphemeral(s, e, fmt.Sprintf("Couldn't join voice: %v", err))
	}

	cfg.SetInterval(35)
	cfg.Sound = true
	cfg.ChannelID = reminderTargetChannel(e, sub.Options)
	if err := slash.Storage.SetConfig(e.GuildID, cfg); err != nil {
		return err
	}

	return Respond(s, e, fmt.Sprintf("🚬 Session started in %s: reminder every 35 minutes while in voice.",
		channelMention(s, vs.ChannelID)))
}

func (c *SmokeCommand) runSoundURL(slash *SlashContext, cfg *reminder.Config, url string) error {
	s := slash.Session
	e := slash.Event

	if err := RespondDeferred(s, e); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	dest := reminder.GuildSoundPath(slash.AssetsDir, e.GuildID)
	if err := downloadSound(url, dest); err != nil {
		return Followup(s, e, fmt.Sprintf("Couldn't fetch that sound: %v", err))
	}

	cfg.SoundPath = dest
	cfg.Sound = true
	if err := slash.Storage.SetConfig(e.GuildID, cfg); err != nil {
		return err
	}

	return Followup(s, e, "🔔 Custom reminder sound saved.")
}

func (c *SmokeCommand) runSoundSet(slash *SlashContext, cfg *reminder.Config, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	s := slash.Session
	e := slash.Event

	attID, _ := sub.Options[0].Value.(string)
	resolved := e.ApplicationCommandData().Resolved
	if resolved == nil || resolved.Attachments[attID] == nil {
		return RespondEphemeral(s, e, "Attach an audio file.")
	}
	att := resolved.Attachments[attID]

	if !allowedSoundExt(att.Filename) {
		return RespondEphemeral(s, e, "Unsupported file type. Use mp3, wav, ogg or m4a.")
	}

	if err := RespondDeferred(s, e); err != nil {
		return fmt.Errorf("failed to send deferred response: %w", err)
	}

	dest := reminder.GuildSoundPath(slash.AssetsDir, e.GuildID)
	if err := downloadSound(att.URL, dest); err != nil {
		return Followup(s, e, fmt.Sprintf("Couldn't save that sound: %v", err))
	}

	cfg.SoundPath = dest
	cfg.Sound = true
	if err := slash.Storage.SetConfig(e.GuildID, cfg); err != nil {
		return err
	}

	return Followup(s, e, "🔔 Custom reminder sound saved.")
}

func (c *SmokeCommand) runSoundReset(slash *SlashContext, cfg *reminder.Config) error {
	s := slash.Session
	e := slash.Event

	custom := reminder.GuildSoundPath(slash.AssetsDir, e.GuildID)
	if err := os.Remove(custom); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove custom sound: %w", err)
	}

	cfg.SoundPath = ""
	if err := slash.Storage.SetConfig(e.GuildID, cfg); err != nil {
		return err
	}

	return Respond(s, e, "🔔 Back to the default reminder sound.")
}

func (c *SmokeCommand) runTimezone(slash *SlashContext, cfg *reminder.Config, tz string) error {
	s := slash.Session
	e := slash.Event

	if _, err := time.LoadLocation(tz); err != nil {
		return RespondEphemeral(s, e, fmt.Sprintf("Unknown timezone `%s`.", tz))
	}

	cfg.SetTimezone(tz)
	if err := slash.Storage.SetConfig(e.GuildID, cfg); err != nil {
		return err
	}

	return Respond(s, e, fmt.Sprintf("🌍 Timezone set to %s.", tz))
}

func (c *SmokeCommand) runList(slash *SlashContext, cfg *reminder.Config) error {
	s := slash.Session
	e := slash.Event

	lines := []string{
		fmt.Sprintf("**Mode:** %s", cfg.Describe()),
		fmt.Sprintf("**Message:** %s", cfg.MessageOrDefault()),
	}
	if cfg.ChannelID != "" {
		lines = append(lines, fmt.Sprintf("**Channel:** %s", channelMention(s, cfg.ChannelID)))
	}
	if cfg.Sound {
		sound := "default"
		if cfg.SoundPath != "" {
			sound = "custom"
		}
		lines = append(lines, fmt.Sprintf("**Sound:** on (%s)", sound))
	} else {
		lines = append(lines, "**Sound:** off")
	}

	return Respond(s, e, strings.Join(lines, "\n"))
}

// runTest fires the reminder once: sound first, text as the fallback,
// matching what a real interval fire does.
func (c *SmokeCommand) runTest(slash *SlashContext, cfg *reminder.Config) error {
	s := slash.Session
	e := slash.Event

	if c.testFire(slash.Sound, e.GuildID, cfg) {
		return Respond(s, e, "🔔 Reminder sound played.")
	}
	return Respond(s, e, cfg.MessageOrDefault())
}

func (c *SmokeCommand) testFire(sound *reminder.SoundDispatcher, guildID string, cfg *reminder.Config) bool {
	if !cfg.Sound {
		return false
	}
	return sound.TryPlayAmbientSound(guildID, cfg.SoundPath)
}

// downloadSound fetches url into dest, refusing bodies over
// maxSoundDownload.
func downloadSound(url, dest string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if resp.ContentLength > maxSoundDownload {
		return fmt.Errorf("file too large (max 15 MB)")
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSoundDownload+1))
	if err != nil {
		return err
	}
	if len(data) > maxSoundDownload {
		return fmt.Errorf("file too large (max 15 MB)")
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0o644)
}

func init() {
	Register(Apply(&SmokeCommand{}, WithGuildOnly, WithCommandLogger))
}
