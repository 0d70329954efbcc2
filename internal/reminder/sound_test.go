package reminder

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeAmbient struct {
	ok   bool
	refs []string
}

func (f *fakeAmbient) PlayAmbient(guildID, ref string, maxWait time.Duration) bool {
	f.refs = append(f.refs, ref)
	return f.ok
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("riff"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDispatcherPrefersCustomSound(t *testing.T) {
	assets := t.TempDir()
	writeFile(t, DefaultSoundPath(assets))
	custom := GuildSoundPath(assets, "g1")
	writeFile(t, custom)

	voice := &fakeAmbient{ok: true}
	d := NewSoundDispatcher(voice, assets)

	if !d.TryPlayAmbientSound("g1", custom) {
		t.Fatal("expected dispatch to succeed")
	}
	if len(voice.refs) != 1 || voice.refs[0] != custom {
		t.Fatalf("dispatched wrong asset: %v", voice.refs)
	}
}

func TestDispatcherFallsBackToDefault(t *testing.T) {
	assets := t.TempDir()
	writeFile(t, DefaultSoundPath(assets))

	voice := &fakeAmbient{ok: true}
	d := NewSoundDispatcher(voice, assets)

	// Custom path configured but the file is gone.
	missing := GuildSoundPath(assets, "g1")
	if !d.TryPlayAmbientSound("g1", missing) {
		t.Fatal("expected dispatch with the default asset")
	}
	if voice.refs[0] != DefaultSoundPath(assets) {
		t.Fatalf("dispatched wrong asset: %v", voice.refs)
	}
}

func TestDispatcherWithoutAnyAsset(t *testing.T) {
	assets := t.TempDir()
	voice := &fakeAmbient{ok: true}
	d := NewSoundDispatcher(voice, assets)

	if d.TryPlayAmbientSound("g1", "") {
		t.Fatal("expected failure when no asset resolves")
	}
	if len(voice.refs) != 0 {
		t.Fatal("voice layer called without an asset")
	}
}

func TestDispatcherReportsVoiceRefusal(t *testing.T) {
	assets := t.TempDir()
	writeFile(t, DefaultSoundPath(assets))

	voice := &fakeAmbient{ok: false}
	d := NewSoundDispatcher(voice, assets)

	if d.TryPlayAmbientSound("g1", "") {
		t.Fatal("expected false when the voice layer refuses")
	}
}
