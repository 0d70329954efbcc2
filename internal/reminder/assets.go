// internal/reminder/assets.go
package reminder

import (
	"fmt"
	"path/filepath"
)

// DefaultSoundFile is the built-in beep asset expected under the
// assets directory.
const DefaultSoundFile = "reminder_beep.wav"

// GuildSoundPath returns the per-guild custom sound asset path. The
// extension is deliberately opaque; ffmpeg sniffs the container.
func GuildSoundPath(assetsDir, guildID string) string {
	return filepath.Join(assetsDir, fmt.Sprintf("smoke_custom_%s.dat", guildID))
}

// DefaultSoundPath returns the built-in beep asset path.
func DefaultSoundPath(assetsDir string) string {
	return filepath.Join(assetsDir, DefaultSoundFile)
}
