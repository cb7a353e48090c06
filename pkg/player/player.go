package player

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/teslashibe/go-pointlight/internal/log"
	"github.com/teslashibe/go-pointlight/pkg/motion"
)

// Player samples a generator on a ticker and hands frames to a callback.
type Player struct {
	mu      sync.RWMutex
	state   State
	name    string
	opts    Options
	startAt time.Time
	played  time.Duration // wall time played before startAt
	stopCh  chan struct{}
}

// New creates a stopped player.
func New() *Player {
	return &Player{
		state:  StateStopped,
		opts:   DefaultOptions(),
		stopCh: make(chan struct{}),
	}
}

// Play plays gen with default options. Blocks until playback completes,
// is stopped or ctx is done.
func (p *Player) Play(ctx context.Context, name string, gen motion.Generator, cb Callback) error {
	return p.PlayWithOptions(ctx, name, gen, cb, DefaultOptions())
}

// PlayWithOptions plays gen with custom options. Blocks like Play.
//
// Generator time starts at the first keyframe time (0 for looping
// generators) and advances by wall time times Speed.
func (p *Player) PlayWithOptions(ctx context.Context, name string, gen motion.Generator, cb Callback, opts Options) error {
	opts = opts.normalized()
	stopCh, err := p.claim(name, opts)
	if err != nil {
		return err
	}
	return p.run(ctx, name, gen, cb, opts, stopCh)
}

// Start is PlayWithOptions in the background. The player is claimed before
// Start returns, so ErrAlreadyPlaying is reported here; the channel then
// receives the playback result once.
func (p *Player) Start(ctx context.Context, name string, gen motion.Generator, cb Callback, opts Options) (<-chan error, error) {
	opts = opts.normalized()
	stopCh, err := p.claim(name, opts)
	if err != nil {
		return nil, err
	}
	result := make(chan error, 1)
	go func() {
		result <- p.run(ctx, name, gen, cb, opts, stopCh)
	}()
	return result, nil
}

func (p *Player) claim(name string, opts Options) (chan struct{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateStopped {
		return nil, ErrAlreadyPlaying
	}
	p.name = name
	p.opts = opts
	p.state = StatePlaying
	p.startAt = time.Now()
	p.played = 0
	p.stopCh = make(chan struct{})
	return p.stopCh, nil
}

func (p *Player) run(ctx context.Context, name string, gen motion.Generator, cb Callback, opts Options, stopCh chan struct{}) error {
	log.Debug("playback started", "action", name, "fps", opts.FrameRate, "speed", opts.Speed, "loop", opts.Loop)
	defer func() {
		p.mu.Lock()
		p.state = StateStopped
		p.mu.Unlock()
		log.Debug("playback finished", "action", name)
	}()

	start := 0.0
	if s, ok := gen.(interface{ Start() float64 }); ok {
		start = s.Start()
	}
	period := gen.Period()

	ticker := time.NewTicker(time.Duration(float64(time.Second) / opts.FrameRate))
	defer ticker.Stop()

	index := 0
	emit := func(t float64) bool {
		f := Frame{Action: name, T: t, Index: index, Points: gen.PoseAt(t)}
		index++
		return cb(f)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-stopCh:
			return nil

		case <-ticker.C:
			if p.State() == StatePaused {
				continue
			}
			elapsed := p.Elapsed().Seconds() * opts.Speed

			switch {
			case opts.Duration > 0:
				limit := opts.Duration.Seconds() * opts.Speed
				if elapsed >= limit {
					emit(start + limit)
					return nil
				}
			case opts.Loop:
				elapsed = math.Mod(elapsed, period)
			case elapsed >= period:
				emit(start + period)
				return nil
			}

			if !emit(start + elapsed) {
				return nil
			}
		}
	}
}

// Stop halts playback. Play returns nil.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StatePlaying || p.state == StatePaused {
		close(p.stopCh)
		p.state = StateStopped
	}
}

// Pause holds the playback clock.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StatePlaying {
		p.played += time.Since(p.startAt)
		p.state = StatePaused
	}
}

// Resume continues paused playback from where it was paused.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StatePaused {
		p.startAt = time.Now()
		p.state = StatePlaying
	}
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Current returns the name of the action being played, or "".
func (p *Player) Current() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.state == StateStopped {
		return ""
	}
	return p.name
}

// Elapsed returns the wall time played so far, excluding pauses.
func (p *Player) Elapsed() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch p.state {
	case StatePlaying:
		return p.played + time.Since(p.startAt)
	case StatePaused:
		return p.played
	default:
		return 0
	}
}
