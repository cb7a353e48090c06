package main

import (
	"context"
	"errors"
	"sync"

	"github.com/teslashibe/go-pointlight/internal/log"
	"github.com/teslashibe/go-pointlight/pkg/actions"
	"github.com/teslashibe/go-pointlight/pkg/player"
	"github.com/teslashibe/go-pointlight/pkg/streamclient"
)

type playOptions struct {
	FPS    float64
	Speed  float64
	Loop   bool
	Format string
}

// source produces frames for the viewer, locally or from a server.
type source interface {
	Names(ctx context.Context) ([]string, error)
	// Play replaces the current action.
	Play(ctx context.Context, name string, draw func(player.Frame)) error
	Pause()
	Resume()
	// Done is signalled when playback fails.
	Done() <-chan struct{}
	Err() error
	Close()
}

// localSource plays actions from the built-in and custom registry.
type localSource struct {
	reg  *actions.Registry
	opts playOptions
	p    *player.Player

	mu     sync.Mutex
	cancel context.CancelFunc
	wait   chan struct{}
	done   chan struct{}
}

func newLocalSource(dir string, opts playOptions) (*localSource, error) {
	reg, err := actions.NewDefaultRegistry(dir)
	if err != nil {
		return nil, err
	}
	return &localSource{reg: reg, opts: opts, p: player.New(), done: make(chan struct{})}, nil
}

func (s *localSource) Names(context.Context) ([]string, error) {
	return s.reg.List(), nil
}

func (s *localSource) Play(ctx context.Context, name string, draw func(player.Frame)) error {
	a, err := s.reg.Get(name)
	if err != nil {
		return err
	}
	s.stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	pctx, cancel := context.WithCancel(ctx)
	wait := make(chan struct{})
	s.cancel, s.wait = cancel, wait

	opts := player.DefaultOptions()
	opts.FrameRate = s.opts.FPS
	opts.Speed = s.opts.Speed
	opts.Loop = s.opts.Loop

	go func() {
		defer close(wait)
		err := s.p.PlayWithOptions(pctx, a.Name, a.Generator, func(f player.Frame) bool {
			draw(f)
			return true
		}, opts)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warn("playback failed", "action", a.Name, "error", err)
		}
	}()
	return nil
}

func (s *localSource) stop() {
	s.mu.Lock()
	cancel, wait := s.cancel, s.wait
	s.cancel, s.wait = nil, nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
		<-wait
	}
}

func (s *localSource) Pause()                { s.p.Pause() }
func (s *localSource) Resume()               { s.p.Resume() }
func (s *localSource) Done() <-chan struct{} { return s.done }
func (s *localSource) Err() error            { return nil }
func (s *localSource) Close()                { s.stop() }

// remoteSource streams actions from a pointlight server.
type remoteSource struct {
	client *streamclient.Client
	opts   playOptions

	mu     sync.Mutex
	stream *streamclient.Stream
	done   chan struct{}
	err    error
}

func newRemoteSource(server string, opts playOptions) (*remoteSource, error) {
	c, err := streamclient.New(server)
	if err != nil {
		return nil, err
	}
	return &remoteSource{client: c, opts: opts, done: make(chan struct{})}, nil
}

func (s *remoteSource) Names(ctx context.Context) ([]string, error) {
	list, err := s.client.Actions(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(list.Actions))
	for i, a := range list.Actions {
		names[i] = a.Name
	}
	return names, nil
}

func (s *remoteSource) Play(ctx context.Context, name string, draw func(player.Frame)) error {
	s.closeStream()

	st, err := s.client.Stream(ctx, name, streamclient.Options{
		FPS:    s.opts.FPS,
		Speed:  s.opts.Speed,
		Loop:   s.opts.Loop,
		Format: s.opts.Format,
	})
	if err != nil {
		return err
	}
	log.Info("stream opened", "session", st.Hello().Session, "action", name)

	s.mu.Lock()
	s.stream = st
	s.mu.Unlock()

	go func() {
		for f := range st.Frames() {
			draw(f)
		}
		if err := st.Err(); err != nil {
			s.mu.Lock()
			if s.stream == st && s.err == nil {
				s.err = err
				close(s.done)
			}
			s.mu.Unlock()
		}
	}()
	return nil
}

func (s *remoteSource) current() *streamclient.Stream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream
}

func (s *remoteSource) closeStream() {
	s.mu.Lock()
	st := s.stream
	s.stream = nil
	s.mu.Unlock()
	if st != nil {
		st.Close()
	}
}

func (s *remoteSource) Pause() {
	if st := s.current(); st != nil {
		st.Pause()
	}
}

func (s *remoteSource) Resume() {
	if st := s.current(); st != nil {
		st.Resume()
	}
}

func (s *remoteSource) Done() <-chan struct{} { return s.done }

func (s *remoteSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *remoteSource) Close() { s.closeStream() }
