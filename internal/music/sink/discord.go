// internal/music/sink/discord.go
package sink

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"
)

// DiscordConnector joins guild voice channels over an active gateway
// session.
type DiscordConnector struct {
	dg *discordgo.Session
}

func NewDiscordConnector(dg *discordgo.Session) *DiscordConnector {
	return &DiscordConnector{dg: dg}
}

func (c *DiscordConnector) Connect(guildID, channelID string) (Sink, error) {
	vc, err := c.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}
	log.Printf("[INFO] [Sink] Joined voice channel %s on guild %s", channelID, guildID)
	return &DiscordSink{vc: vc}, nil
}

// DiscordSink streams opus frames into one voice connection.
type DiscordSink struct {
	mu   sync.Mutex
	vc   *discordgo.VoiceConnection
	busy bool
	stop chan struct{}
}

// Play decodes ref through ffmpeg and streams it until it ends or
// StopCurrent preempts it. Blocks for the duration of playback.
func (s *DiscordSink) Play(ref string) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return ErrBusy
	}
	vc := s.vc
	if vc == nil || !vc.Ready {
		s.mu.Unlock()
		return ErrNotConnected
	}
	stop := make(chan struct{})
	s.stop = stop
	s.busy = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.stop = nil
		s.mu.Unlock()
	}()

	pcm, cleanup, err := openPCM(ref)
	if err != nil {
		return fmt.Errorf("failed to open PCM stream: %w", err)
	}
	defer cleanup()

	return streamOpus(pcm, stop, vc)
}

func (s *DiscordSink) IsBusy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// StopCurrent preempts the active playback, if any. Safe to call when
// idle or repeatedly.
func (s *DiscordSink) StopCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
}

func (s *DiscordSink) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vc != nil && s.vc.Ready
}

func (s *DiscordSink) Disconnect() error {
	s.mu.Lock()
	vc := s.vc
	s.vc = nil
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	if vc == nil {
		return nil
	}
	return vc.Disconnect()
}

// streamOpus encodes 20ms PCM frames to opus and sends them until the
// stream ends or stop closes. A short read means the source finished.
func streamOpus(pcm io.ReadCloser, stop <-chan struct{}, vc *discordgo.VoiceConnection) error {
	encoder, err := gopus.NewEncoder(sampleRate, channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("encoder error: %w", err)
	}

	defer pcm.Close()

	vc.Speaking(true)
	defer vc.Speaking(false)

	pcmBuf := make([]byte, frameSize*channels*2)
	intBuf := make([]int16, frameSize*channels)

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		_, err := io.ReadFull(pcm, pcmBuf)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}

		for i := range intBuf {
			intBuf[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
		}

		opus, err := encoder.Encode(intBuf, frameSize, len(pcmBuf))
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}

		select {
		case vc.OpusSend <- opus:
		case <-stop:
			return nil
		}
	}
}
