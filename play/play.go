// Package play sends the output of a DSP context to the default audio
// device.
package play

import (
	"context"
	"fmt"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/multierr"

	"github.com/gordonklaus/kiwi/dsp"
)

// A Player streams a DSP context until it is stopped.  The context must
// already be started with the Player's Params.
type Player struct {
	stream *portaudio.Stream
	done   chan struct{}
}

func Start(ctx *dsp.Context, c Config) (*Player, error) {
	c = c.WithDefaults()
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("play: %w", err)
	}
	s := &source{tick: ctx.Tick}
	stream, err := portaudio.OpenDefaultStream(0, c.Channels, c.SampleRate, c.FramesPerBuffer, func(out []float32) {
		s.fill(out, c.Channels)
	})
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("play: %w", err), portaudio.Terminate())
	}
	if err := stream.Start(); err != nil {
		return nil, multierr.Combine(fmt.Errorf("play: %w", err), stream.Close(), portaudio.Terminate())
	}
	return &Player{stream: stream, done: make(chan struct{})}, nil
}

// Stop closes the stream.
func (p *Player) Stop() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	close(p.done)
	return multierr.Combine(p.stream.Close(), portaudio.Terminate())
}

// Done is closed once the player is stopped.
func (p *Player) Done() <-chan struct{} { return p.done }

// Run plays ctx until cx is done.
func Run(cx context.Context, ctx *dsp.Context, c Config) error {
	p, err := Start(ctx, c)
	if err != nil {
		return err
	}
	<-cx.Done()
	return p.Stop()
}
