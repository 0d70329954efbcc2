// internal/reminder/scheduler.go
package reminder

import (
	"context"
	"log"
	"time"
)

// Store is the persistence boundary the scheduler reads and writes.
// AllConfigs must return an independent snapshot; the scheduler mutates
// and saves entries without holding any store lock across a tick.
type Store interface {
	AllConfigs() (map[string]*Config, error)
	SetConfig(guildID string, cfg *Config) error
}

// Notifier posts text reminders to a channel.
type Notifier interface {
	SendText(channelID, message string) error
}

// VoiceStatus reports whether a guild holds a live voice connection.
// Interval mode is voice-gated: it never fires while the bot is absent
// from voice.
type VoiceStatus interface {
	Connected(guildID string) bool
}

// Sounder attempts ambient sound playback for a guild.
type Sounder interface {
	TryPlayAmbientSound(guildID, customPath string) bool
}

// Scheduler is the single global reminder evaluator. One instance runs
// per process; every tick it evaluates all guilds sequentially.
type Scheduler struct {
	store  Store
	notify Notifier
	voice  VoiceStatus
	sound  Sounder
	tick   time.Duration

	now func() time.Time
}

func NewScheduler(store Store, notify Notifier, voice VoiceStatus, sound Sounder, tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = 30 * time.Second
	}
	return &Scheduler{
		store:  store,
		notify: notify,
		voice:  voice,
		sound:  sound,
		tick:   tick,
		now:    time.Now,
	}
}

// Run ticks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("[INFO] [Reminder] Scheduler started (tick %v)", s.tick)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] [Reminder] Scheduler stopped")
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick evaluates every guild once. A failure in one guild never aborts
// evaluation of the rest.
func (s *Scheduler) Tick() {
	cfgs, err := s.store.AllConfigs()
	if err != nil {
		log.Printf("[ERR] [Reminder] Failed to load configs: %v", err)
		return
	}
	for guildID, cfg := range cfgs {
		s.evaluateGuild(guildID, cfg)
	}
}

func (s *Scheduler) evaluateGuild(guildID string, cfg *Config) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERR] [Reminder] Panic evaluating guild %s: %v", guildID, r)
		}
	}()

	if cfg == nil || cfg.ChannelID == "" {
		return
	}

	now := s.now().In(cfg.Location())
	fired := false

	switch cfg.Mode.Kind {
	case ModeFixed:
		fired = s.fireFixed(guildID, cfg, now)
	case ModeInterval:
		fired = s.fireInterval(guildID, cfg, now)
	}

	if fired {
		cfg.PruneFired()
		// Fire-and-forget: the in-memory record already prevents a
		// duplicate this run even if the save fails.
		if err := s.store.SetConfig(guildID, cfg); err != nil {
			log.Printf("[ERR] [Reminder] Failed to persist config for guild %s: %v", guildID, err)
		}
	}
}

// fireFixed fires when the local wall-clock HH:MM matches a configured
// time and the minute bucket has not fired yet. Text always goes out;
// sound is additional and best-effort.
func (s *Scheduler) fireFixed(guildID string, cfg *Config, now time.Time) bool {
	bucket := now.Format("200601021504")
	hhmm := now.Format("15:04")

	if !containsTime(cfg.Mode.Times, hhmm) || cfg.FiredMinutes[bucket] {
		return false
	}

	if err := s.notify.SendText(cfg.ChannelID, cfg.MessageOrDefault()); err != nil {
		log.Printf("[ERR] [Reminder] Failed to send text for guild %s: %v", guildID, err)
	}
	if cfg.Sound {
		s.sound.TryPlayAmbientSound(guildID, cfg.SoundPath)
	}
	cfg.MarkFired(bucket)
	log.Printf("[INFO] [Reminder] Fired fixed-time reminder | guild=%s bucket=%s", guildID, bucket)
	return true
}

// fireInterval fires only while the guild holds a live voice
// connection. Sound is preferred; text is the fallback so the guild is
// always notified one way or the other.
func (s *Scheduler) fireInterval(guildID string, cfg *Config, now time.Time) bool {
	if cfg.Mode.Minutes <= 0 || !s.voice.Connected(guildID) {
		return false
	}

	nowTS := now.Unix()
	due := cfg.Mode.LastFiredTS == 0 ||
		nowTS-cfg.Mode.LastFiredTS >= int64(cfg.Mode.Minutes)*60
	if !due {
		return false
	}

	didSound := false
	if cfg.Sound {
		didSound = s.sound.TryPlayAmbientSound(guildID, cfg.SoundPath)
	}
	if !didSound {
		if err := s.notify.SendText(cfg.ChannelID, cfg.MessageOrDefault()); err != nil {
			log.Printf("[ERR] [Reminder] Failed to send text for guild %s: %v", guildID, err)
		}
	}
	cfg.Mode.LastFiredTS = nowTS
	log.Printf("[INFO] [Reminder] Fired interval reminder | guild=%s sound=%v", guildID, didSound)
	return true
}

func containsTime(times []string, hhmm string) bool {
	for _, t := range times {
		if t == hhmm {
			return true
		}
	}
	return false
}
