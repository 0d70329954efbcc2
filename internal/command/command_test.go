package command

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/dooberhut/dooberhut-bot/internal/reminder"
)

func TestRegistryHoldsAllSlashCommands(t *testing.T) {
	want := []string{
		"join", "play", "queue", "skip", "stop", "leave", "smoke",
	}
	for _, name := range want {
		cmd, ok := Get(name)
		if !ok {
			t.Fatalf("command %q not registered", name)
		}
		sp, ok := cmd.(SlashProvider)
		if !ok {
			t.Fatalf("command %q has no slash definition", name)
		}
		def := sp.SlashDefinition()
		if def == nil || def.Name != name {
			t.Fatalf("command %q: bad definition %+v", name, def)
		}
	}

	if len(All()) < len(want) {
		t.Fatalf("All: got %d commands, want at least %d", len(All()), len(want))
	}
}

func TestSmokeSubcommandsDefined(t *testing.T) {
	cmd, ok := Get("smoke")
	if !ok {
		t.Fatal("smoke not registered")
	}
	def := cmd.(SlashProvider).SlashDefinition()

	want := map[string]bool{
		"set": true, "every": true, "start35": true, "sound": true,
		"soundurl": true, "soundset": true, "soundreset": true,
		"message": true, "tz": true, "list": true, "off": true,
		"test": true,
	}
	for _, opt := range def.Options {
		if opt.Type != discordgo.ApplicationCommandOptionSubCommand {
			t.Fatalf("option %q is not a subcommand", opt.Name)
		}
		delete(want, opt.Name)
	}
	if len(want) != 0 {
		t.Fatalf("missing subcommands: %v", want)
	}
}

func smokeSubcommand(t *testing.T, name string) *discordgo.ApplicationCommandOption {
	t.Helper()
	cmd, ok := Get("smoke")
	if !ok {
		t.Fatal("smoke not registered")
	}
	for _, opt := range cmd.(SlashProvider).SlashDefinition().Options {
		if opt.Name == name {
			return opt
		}
	}
	t.Fatalf("subcommand %q not defined", name)
	return nil
}

func TestReminderChannelOption(t *testing.T) {
	for _, name := range []string{"set", "every", "start35"} {
		sub := smokeSubcommand(t, name)
		found := false
		for _, opt := range sub.Options {
			if opt.Name == "channel" {
				if opt.Type != discordgo.ApplicationCommandOptionChannel {
					t.Fatalf("%s: channel option has type %v", name, opt.Type)
				}
				if opt.Required {
					t.Fatalf("%s: channel option must be optional", name)
				}
				found = true
			}
		}
		if !found {
			t.Fatalf("%s: no channel option", name)
		}
	}
}

func TestReminderTargetChannel(t *testing.T) {
	e := &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{ChannelID: "chan-invoke"},
	}

	if got := reminderTargetChannel(e, nil); got != "chan-invoke" {
		t.Fatalf("default: got %s, want chan-invoke", got)
	}

	opts := []*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "minutes", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(35)},
		{Name: "channel", Type: discordgo.ApplicationCommandOptionChannel, Value: "chan-target"},
	}
	if got := reminderTargetChannel(e, opts); got != "chan-target" {
		t.Fatalf("override: got %s, want chan-target", got)
	}
}

func TestIntervalOptionBounds(t *testing.T) {
	sub := smokeSubcommand(t, "every")
	for _, opt := range sub.Options {
		if opt.Name != "minutes" {
			continue
		}
		if opt.MinValue == nil || *opt.MinValue != 1 {
			t.Fatalf("minutes MinValue: got %v, want 1", opt.MinValue)
		}
		if opt.MaxValue != maxIntervalMinutes {
			t.Fatalf("minutes MaxValue: got %v, want %d", opt.MaxValue, maxIntervalMinutes)
		}
		return
	}
	t.Fatal("no minutes option on every")
}

func TestAllowedSoundExt(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"beep.mp3", true},
		{"BEEP.WAV", true},
		{"clip.ogg", true},
		{"clip.m4a", true},
		{"payload.exe", false},
		{"noext", false},
		{"archive.zip", false},
	}
	for _, tt := range tests {
		if got := allowedSoundExt(tt.name); got != tt.ok {
			t.Fatalf("allowedSoundExt(%q): got %v, want %v", tt.name, got, tt.ok)
		}
	}
}

type stubAmbient struct {
	ok    bool
	calls int
}

func (f *stubAmbient) PlayAmbient(guildID, ref string, maxWait time.Duration) bool {
	f.calls++
	return f.ok
}

func TestTestFireSoundFirstTextFallback(t *testing.T) {
	assets := t.TempDir()
	beep := filepath.Join(assets, reminder.DefaultSoundFile)
	if err := os.WriteFile(beep, []byte("riff"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := &SmokeCommand{}

	// Sound fires: the text fallback must not be used.
	voice := &stubAmbient{ok: true}
	cfg := reminder.NewConfig()
	if !cmd.testFire(reminder.NewSoundDispatcher(voice, assets), "g1", cfg) {
		t.Fatal("expected sound to fire")
	}
	if voice.calls != 1 {
		t.Fatalf("ambient calls: got %d, want 1", voice.calls)
	}

	// Voice layer refuses: falls through to text.
	voice = &stubAmbient{ok: false}
	if cmd.testFire(reminder.NewSoundDispatcher(voice, assets), "g1", cfg) {
		t.Fatal("expected text fallback when sound cannot fire")
	}

	// Sound disabled: no ambient attempt at all.
	voice = &stubAmbient{ok: true}
	cfg.Sound = false
	if cmd.testFire(reminder.NewSoundDispatcher(voice, assets), "g1", cfg) {
		t.Fatal("expected no fire with sound disabled")
	}
	if voice.calls != 0 {
		t.Fatal("ambient attempted while sound disabled")
	}
}

func TestDownloadSound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("RIFF....WAVE"))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "assets", "smoke_custom_g1.dat")
	if err := downloadSound(srv.URL, dest); err != nil {
		t.Fatalf("downloadSound: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "RIFF....WAVE" {
		t.Fatalf("content: got %q", data)
	}
}

func TestDownloadSoundRejectsOversized(t *testing.T) {
	big := strings.Repeat("x", maxSoundDownload+1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(big))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "big.dat")
	if err := downloadSound(srv.URL, dest); err == nil {
		t.Fatal("expected an error for an oversized file")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatal("oversized download left a file behind")
	}
}

func TestDownloadSoundRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if err := downloadSound(srv.URL, filepath.Join(t.TempDir(), "x.dat")); err == nil {
		t.Fatal("expected an error for a 404")
	}
}
