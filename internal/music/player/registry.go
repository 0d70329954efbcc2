// internal/music/player/registry.go
package player

import (
	"sync"
	"time"

	"github.com/dooberhut/dooberhut-bot/internal/music/sink"
)

// Registry holds the per-guild players. Entries are created lazily on
// first Connect and guarded individually; the registry lock only
// covers the map itself, so guilds stay independent.
type Registry struct {
	mu        sync.Mutex
	players   map[string]*Player
	connector sink.Connector
}

func NewRegistry(connector sink.Connector) *Registry {
	return &Registry{
		players:   make(map[string]*Player),
		connector: connector,
	}
}

// Get returns the guild's player, or nil if none exists yet.
func (r *Registry) Get(guildID string) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.players[guildID]
}

// Connect attaches (or moves) the guild's voice connection to the
// given channel and returns the owning player. A stopped instance is
// replaced by a fresh one, clearing its terminal state. Idempotent
// when already connected to the same channel.
func (r *Registry) Connect(guildID, channelID string) (*Player, error) {
	r.mu.Lock()
	p := r.players[guildID]
	if p == nil || p.Stopped() {
		p = newPlayer(guildID)
		r.players[guildID] = p
	}
	r.mu.Unlock()

	if p.Connected() && p.ChannelID() == channelID {
		return p, nil
	}

	s, err := r.connector.Connect(guildID, channelID)
	if err != nil {
		return nil, err
	}
	p.attach(s, channelID)
	return p, nil
}

// Connected reports whether a guild holds a live voice connection.
// Satisfies the reminder scheduler's voice-gating check.
func (r *Registry) Connected(guildID string) bool {
	p := r.Get(guildID)
	return p != nil && p.Connected()
}

// PlayAmbient forwards queue-bypassing playback to the guild's player.
// Satisfies the sound dispatcher's voice capability.
func (r *Registry) PlayAmbient(guildID, ref string, maxWait time.Duration) bool {
	p := r.Get(guildID)
	if p == nil {
		return false
	}
	return p.PlayAmbient(ref, maxWait)
}
