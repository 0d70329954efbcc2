// internal/music/player/player.go
package player

import (
	"errors"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/dooberhut/dooberhut-bot/internal/music/sink"
)

var (
	// ErrStopped is returned once Stop has been called on an instance.
	// Stop is terminal; a fresh Connect creates a new instance.
	ErrStopped = errors.New("player is stopped, reconnect to start a new session")
)

// Player owns one guild's playback state: the FIFO queue, the current
// track and the voice sink. A single background loop drains the queue
// one track at a time; command-driven calls and the loop synchronize
// on the player's mutex.
type Player struct {
	guildID string

	mu        sync.Mutex
	queue     []Track
	current   *Track
	snk       sink.Sink
	channelID string
	running   bool
	stopped   bool

	wake     chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

func newPlayer(guildID string) *Player {
	return &Player{
		guildID: guildID,
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
}

// attach binds a live sink to this player. Idempotent for the same
// channel; a different channel just swaps the handle (the connector
// moves the underlying connection rather than opening a second one).
func (p *Player) attach(s sink.Sink, channelID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snk = s
	p.channelID = channelID
}

// Enqueue appends a track and returns its queue position (1-based).
// Starts the drain loop if it is not running; never blocks on
// playback.
func (p *Player) Enqueue(t Track) (int, error) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return 0, ErrStopped
	}
	p.queue = append(p.queue, t)
	pos := len(p.queue)
	startLoop := !p.running
	if startLoop {
		p.running = true
	}
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
	if startLoop {
		go p.loop()
	}

	log.Printf("[Player] Queued %q at position %d | guild=%s", t.Title, pos, p.guildID)
	return pos, nil
}

// loop is the single drain task per guild. It takes the next track,
// verifies the voice connection is still live, plays it to completion
// (natural end, skip or sink error all advance the loop) and repeats.
// It suspends while the queue is empty and exits only on Stop.
func (p *Player) loop() {
	log.Printf("[Player] Drain loop started | guild=%s", p.guildID)
	defer log.Printf("[Player] Drain loop finished | guild=%s", p.guildID)

	for {
		select {
		case <-p.stop:
			return
		default:
		}

		p.mu.Lock()
		if len(p.queue) == 0 {
			p.mu.Unlock()
			select {
			case <-p.stop:
				return
			case <-p.wake:
				continue
			}
		}
		track := p.queue[0]
		p.queue = p.queue[1:]
		snk := p.snk
		p.mu.Unlock()

		if snk == nil || !snk.Connected() {
			log.Printf("[Player] Voice connection gone, discarding %q | guild=%s", track.Title, p.guildID)
			continue
		}

		p.mu.Lock()
		p.current = &track
		p.mu.Unlock()

		// Sink failures count as track completion; not retried.
		if err := snk.Play(track.PlayableRef); err != nil {
			log.Printf("[Player] Playback ended with error for %q: %v | guild=%s", track.Title, err, p.guildID)
		}

		p.mu.Lock()
		p.current = nil
		p.mu.Unlock()
	}
}

// Skip preempts the current track; the loop treats it as a natural end
// and pulls the next queued item. No-op while idle.
func (p *Player) Skip() {
	p.mu.Lock()
	cur := p.current
	snk := p.snk
	p.mu.Unlock()

	if cur == nil || snk == nil {
		return
	}
	log.Printf("[Player] Skipping %q | guild=%s", cur.Title, p.guildID)
	snk.StopCurrent()
}

// Stop is terminal for this instance: it cancels the drain loop,
// discards all queued tracks, preempts any playback and releases the
// voice connection. Subsequent Enqueue calls fail with ErrStopped.
func (p *Player) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })

	p.mu.Lock()
	p.stopped = true
	dropped := len(p.queue)
	p.queue = nil
	snk := p.snk
	p.snk = nil
	p.channelID = ""
	p.mu.Unlock()

	if snk != nil {
		snk.StopCurrent()
		if err := snk.Disconnect(); err != nil {
			log.Printf("[Player] Voice disconnect error: %v | guild=%s", err, p.guildID)
		}
	}
	if dropped > 0 {
		log.Printf("[Player] Dropped %d queued track(s) on stop | guild=%s", dropped, p.guildID)
	}
}

// Stopped reports whether Stop has been called on this instance.
func (p *Player) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// Connected reports whether the guild holds a live voice connection.
func (p *Player) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.stopped && p.snk != nil && p.snk.Connected()
}

// ChannelID returns the attached voice channel, if any.
func (p *Player) ChannelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channelID
}

// Snapshot returns the current track and the first queued tracks for
// status display, plus a remainder count.
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	var snap Snapshot
	if p.current != nil {
		cur := *p.current
		snap.Current = &cur
	}
	limit := min(len(p.queue), UpcomingDisplayLimit)
	snap.Upcoming = slices.Clone(p.queue[:limit])
	snap.Remaining = len(p.queue) - limit
	return snap
}

// PlayAmbient plays a short clip outside the queue. It refuses when
// the connection is absent, a queued track is playing or the sink is
// otherwise busy, so ambient sound never interrupts music. The caller
// is held up to maxWait for the clip to finish.
func (p *Player) PlayAmbient(ref string, maxWait time.Duration) bool {
	p.mu.Lock()
	snk := p.snk
	busy := p.stopped || snk == nil || p.current != nil
	p.mu.Unlock()

	if busy {
		return false
	}
	if !snk.Connected() || snk.IsBusy() {
		return false
	}

	done := make(chan error, 1)
	go func() { done <- snk.Play(ref) }()

	select {
	case err := <-done:
		if err != nil {
			log.Printf("[Player] Ambient playback failed: %v | guild=%s", err, p.guildID)
			return false
		}
		return true
	case <-time.After(maxWait):
		// Clip still playing past the bounded wait; it fired.
		return true
	}
}
