// internal/music/sink/sink.go
package sink

import "errors"

var (
	ErrBusy         = errors.New("sink is already playing")
	ErrNotConnected = errors.New("voice connection is not live")
)

// Sink renders playable references into a single voice connection.
// Exactly one playback runs at a time; Play blocks until the reference
// finishes, StopCurrent preempts it, or the connection drops.
type Sink interface {
	Play(ref string) error
	IsBusy() bool
	StopCurrent()
	Connected() bool
	Disconnect() error
}

// Connector attaches a Sink to a guild voice channel. Connecting to a
// channel while already connected in the same guild moves the
// connection instead of opening a second one.
type Connector interface {
	Connect(guildID, channelID string) (Sink, error)
}
