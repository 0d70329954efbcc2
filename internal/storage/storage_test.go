package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dooberhut/dooberhut-bot/internal/reminder"
)

func tempStore(t *testing.T) (*Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "datastore.json")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestReminderConfigRoundTrip(t *testing.T) {
	s, path := tempStore(t)

	cfg := reminder.NewConfig()
	cfg.SetFixedTimes([]string{"04:20", "16:20"}, "Europe/Amsterdam")
	cfg.ChannelID = "chan-1"
	cfg.Message = "break time"
	cfg.MarkFired("202506010420")

	if err := s.SetConfig("g1", cfg); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}

	// Reopen from disk.
	s2, err := New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()

	got, err := s2.GetReminderConfig("g1")
	if err != nil {
		t.Fatalf("GetReminderConfig: %v", err)
	}
	if got.Mode.Kind != reminder.ModeFixed {
		t.Fatalf("mode: got %q", got.Mode.Kind)
	}
	if len(got.Mode.Times) != 2 || got.Mode.Times[0] != "04:20" {
		t.Fatalf("times: got %v", got.Mode.Times)
	}
	if got.Mode.TZ != "Europe/Amsterdam" {
		t.Fatalf("tz: got %q", got.Mode.TZ)
	}
	if got.ChannelID != "chan-1" || got.Message != "break time" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if !got.FiredMinutes["202506010420"] {
		t.Fatal("fired bucket lost across restart")
	}
}

func TestGetReminderConfigDefault(t *testing.T) {
	s, _ := tempStore(t)

	cfg, err := s.GetReminderConfig("g-unknown")
	if err != nil {
		t.Fatalf("GetReminderConfig: %v", err)
	}
	if cfg.Enabled() {
		t.Fatal("default config must be off")
	}
	if !cfg.Sound {
		t.Fatal("default config must have sound on")
	}
}

func TestAllConfigsSkipsGuildsWithoutReminder(t *testing.T) {
	s, _ := tempStore(t)

	// Guild with only command history, no reminder.
	if err := s.AppendCommandToHistory("g-hist", CommandHistoryRecord{
		Command: "queue", Datetime: time.Now(),
	}); err != nil {
		t.Fatalf("AppendCommandToHistory: %v", err)
	}

	cfg := reminder.NewConfig()
	cfg.SetInterval(35)
	cfg.ChannelID = "chan-1"
	if err := s.SetConfig("g-rem", cfg); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}

	all, err := s.AllConfigs()
	if err != nil {
		t.Fatalf("AllConfigs: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("configs: got %d, want 1", len(all))
	}
	if all["g-rem"] == nil || all["g-rem"].Mode.Minutes != 35 {
		t.Fatalf("unexpected config map: %+v", all)
	}
}

func TestAllConfigsReturnsIndependentSnapshots(t *testing.T) {
	s, _ := tempStore(t)

	cfg := reminder.NewConfig()
	cfg.SetInterval(35)
	cfg.ChannelID = "chan-1"
	if err := s.SetConfig("g1", cfg); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}

	first, err := s.AllConfigs()
	if err != nil {
		t.Fatalf("AllConfigs: %v", err)
	}
	first["g1"].Mode.LastFiredTS = 999

	second, err := s.AllConfigs()
	if err != nil {
		t.Fatalf("AllConfigs: %v", err)
	}
	if second["g1"].Mode.LastFiredTS == 999 {
		t.Fatal("snapshots share state across calls")
	}
}

func TestAllConfigsSkipsUnreadableRecord(t *testing.T) {
	s, _ := tempStore(t)

	cfg := reminder.NewConfig()
	cfg.SetInterval(35)
	cfg.ChannelID = "chan-1"
	if err := s.SetConfig("g-good", cfg); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}

	// A record that cannot unmarshal into Record.
	s.ds.Add("g-bad", []string{"junk"})
	s.indexGuild("g-bad")

	all, err := s.AllConfigs()
	if err != nil {
		t.Fatalf("AllConfigs: %v", err)
	}
	if len(all) != 1 || all["g-good"] == nil {
		t.Fatalf("good guild lost to a bad record: %+v", all)
	}
}

func TestCommandHistoryIsCapped(t *testing.T) {
	s, _ := tempStore(t)

	for i := 0; i < commandHistoryLimit+5; i++ {
		if err := s.AppendCommandToHistory("g1", CommandHistoryRecord{
			Command: "play", Username: "u", Datetime: time.Now(),
		}); err != nil {
			t.Fatalf("AppendCommandToHistory: %v", err)
		}
	}

	history, err := s.FetchCommandHistory("g1")
	if err != nil {
		t.Fatalf("FetchCommandHistory: %v", err)
	}
	if len(history) > commandHistoryLimit+1 {
		t.Fatalf("history: got %d entries, cap is %d", len(history), commandHistoryLimit)
	}
}
