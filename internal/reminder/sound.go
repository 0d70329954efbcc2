// internal/reminder/sound.go
package reminder

import (
	"os"
	"time"
)

// ambientMaxWait bounds how long a dispatch waits for a short clip to
// finish, so two dispatches in the same tick cannot overlap.
const ambientMaxWait = 2 * time.Second

// AmbientPlayer is the queue-bypassing playback capability of the
// voice layer. PlayAmbient must refuse to interrupt music: it returns
// false unless the guild's voice connection is live and idle.
type AmbientPlayer interface {
	PlayAmbient(guildID, ref string, maxWait time.Duration) bool
}

// SoundDispatcher decides at fire time whether ambient audio can be
// injected for a guild, and with which asset.
type SoundDispatcher struct {
	voice     AmbientPlayer
	assetsDir string
}

func NewSoundDispatcher(voice AmbientPlayer, assetsDir string) *SoundDispatcher {
	return &SoundDispatcher{voice: voice, assetsDir: assetsDir}
}

// TryPlayAmbientSound plays the guild's custom sound asset if one is
// configured and readable, else the built-in beep. Returns false when
// no asset resolves or the voice connection is absent or busy, so the
// caller can fall back to a text notification.
func (d *SoundDispatcher) TryPlayAmbientSound(guildID, customPath string) bool {
	ref := d.resolveAsset(customPath)
	if ref == "" {
		return false
	}
	return d.voice.PlayAmbient(guildID, ref, ambientMaxWait)
}

func (d *SoundDispatcher) resolveAsset(customPath string) string {
	if customPath != "" && fileExists(customPath) {
		return customPath
	}
	if def := DefaultSoundPath(d.assetsDir); fileExists(def) {
		return def
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
