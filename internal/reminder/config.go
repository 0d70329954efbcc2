// internal/reminder/config.go
package reminder

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultMessage  = "🚬 Time to smoke!"
	DefaultTimezone = "UTC"

	// firedMinutes retention bounds. Pruning keeps the most recent
	// firedKeep buckets once the set grows past firedCap.
	firedCap  = 5000
	firedKeep = 2000
)

// Mode kinds. Exactly one firing mode is active at a time; the zero
// value means reminders are off for the guild.
const (
	ModeNone     = ""
	ModeFixed    = "fixed"
	ModeInterval = "interval"
)

// Mode is the tagged firing-mode variant. Fields outside the active
// branch are always zero, so an invalid combination of fixed times and
// an interval is unrepresentable.
type Mode struct {
	Kind string `json:"kind"`

	// fixed branch
	Times []string `json:"times,omitempty"`
	TZ    string   `json:"tz,omitempty"`

	// interval branch
	Minutes     int   `json:"minutes,omitempty"`
	LastFiredTS int64 `json:"last_fired_ts,omitempty"`
}

// Config is one guild's reminder configuration.
type Config struct {
	ChannelID    string          `json:"channel_id,omitempty"`
	Mode         Mode            `json:"mode"`
	Message      string          `json:"message,omitempty"`
	FiredMinutes map[string]bool `json:"fired_minutes,omitempty"`
	Sound        bool            `json:"sound"`
	SoundPath    string          `json:"sound_path,omitempty"`
}

// NewConfig returns a config with defaults applied (sound on, no mode).
func NewConfig() *Config {
	return &Config{Sound: true}
}

// SetFixedTimes switches the guild to fixed daily times. The interval
// branch and its last-fired counter are cleared. Existing firedMinutes
// are kept so a mode round-trip cannot re-fire an already fired minute.
func (c *Config) SetFixedTimes(times []string, tz string) {
	if tz == "" {
		tz = DefaultTimezone
	}
	c.Mode = Mode{Kind: ModeFixed, Times: times, TZ: tz}
}

// SetInterval switches the guild to voice-gated interval firing every
// minutes minutes. The fixed branch and its firedMinutes dedup set are
// cleared; the interval starts counting from the first tick observed
// while the guild is in voice.
func (c *Config) SetInterval(minutes int) {
	c.Mode = Mode{Kind: ModeInterval, Minutes: minutes}
	c.FiredMinutes = nil
}

// Disable turns off both firing modes.
func (c *Config) Disable() {
	c.Mode = Mode{}
	c.FiredMinutes = nil
}

// Enabled reports whether any firing mode is active.
func (c *Config) Enabled() bool {
	switch c.Mode.Kind {
	case ModeFixed:
		return len(c.Mode.Times) > 0
	case ModeInterval:
		return c.Mode.Minutes > 0
	}
	return false
}

// SetTimezone updates the fixed-mode timezone without touching times.
func (c *Config) SetTimezone(tz string) {
	c.Mode.TZ = tz
}

// MessageOrDefault returns the configured text payload or the default.
func (c *Config) MessageOrDefault() string {
	if c.Message != "" {
		return c.Message
	}
	return DefaultMessage
}

// Location resolves the config's timezone, falling back to UTC on an
// unrecognized name rather than failing the caller.
func (c *Config) Location() *time.Location {
	tz := c.Mode.TZ
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// MarkFired records a minute bucket as fired under fixed mode.
func (c *Config) MarkFired(bucket string) {
	if c.FiredMinutes == nil {
		c.FiredMinutes = make(map[string]bool)
	}
	c.FiredMinutes[bucket] = true
}

// PruneFired bounds the firedMinutes set. Buckets are sorted by their
// chronological key order and only the most recent firedKeep survive,
// so recent history needed for dedup is never dropped.
func (c *Config) PruneFired() {
	if len(c.FiredMinutes) <= firedCap {
		return
	}
	keys := make([]string, 0, len(c.FiredMinutes))
	for k := range c.FiredMinutes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys[:len(keys)-firedKeep] {
		delete(c.FiredMinutes, k)
	}
}

var timeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// ParseTimes parses a comma-separated list of daily times like
// "4:20, 09:30" into zero-padded "HH:MM" strings. Invalid parts are
// skipped.
func ParseTimes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		t := strings.TrimSpace(part)
		if t == "" {
			continue
		}
		m := timeRe.FindStringSubmatch(t)
		if m == nil {
			continue
		}
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
			continue
		}
		out = append(out, fmt.Sprintf("%02d:%02d", hh, mm))
	}
	return out
}

// Describe renders the active mode for status replies.
func (c *Config) Describe() string {
	switch c.Mode.Kind {
	case ModeFixed:
		return fmt.Sprintf("times: %s (%s)", strings.Join(c.Mode.Times, ", "), c.Mode.TZ)
	case ModeInterval:
		return fmt.Sprintf("interval %d min (voice-gated)", c.Mode.Minutes)
	}
	return "off"
}
