package player

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-pointlight/pkg/motion"
	"github.com/teslashibe/go-pointlight/pkg/skeleton"
	"gonum.org/v1/gonum/spatial/r2"
)

// slide is a 50ms keyframe track moving the whole figure 1 unit along x.
func slide(t *testing.T) *motion.Keyframed {
	t.Helper()
	skel := skeleton.Default()
	rest := motion.RestPose(skel, r2.Vec{})
	g, err := motion.NewKeyframed(skel, motion.Track{
		{Time: 0, Pose: rest},
		{Time: 0.05, Pose: rest.Translate(r2.Vec{X: 1})},
	})
	if err != nil {
		t.Fatalf("NewKeyframed failed: %v", err)
	}
	return g
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.FrameRate != 60 {
		t.Errorf("Expected 60 Hz, got %v", opts.FrameRate)
	}
	if opts.Speed != 1 {
		t.Errorf("Expected speed 1, got %v", opts.Speed)
	}
	if opts.Loop {
		t.Error("Expected loop off by default")
	}

	n := Options{FrameRate: -1, Speed: 0}.normalized()
	if n.FrameRate != 60 || n.Speed != 1 {
		t.Errorf("Expected defaults for invalid values, got %+v", n)
	}
}

func TestPlay_Completes(t *testing.T) {
	p := New()
	var frames []Frame
	opts := Options{FrameRate: 200, Speed: 1}

	err := p.PlayWithOptions(context.Background(), "slide", slide(t), func(f Frame) bool {
		frames = append(frames, f)
		return true
	}, opts)
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if len(frames) == 0 {
		t.Fatal("Expected frames")
	}
	last := frames[len(frames)-1]
	if last.T != 0.05 {
		t.Errorf("Expected final frame at 0.05, got %v", last.T)
	}
	if math.Abs(last.Points[skeleton.Pelvis].X-1) > 1e-9 {
		t.Errorf("Expected final pose at x=1, got %v", last.Points[skeleton.Pelvis].X)
	}
	for i, f := range frames {
		if f.Index != i {
			t.Errorf("Expected frame index %d, got %d", i, f.Index)
		}
		if f.Action != "slide" {
			t.Errorf("Expected action slide, got %s", f.Action)
		}
		if i > 0 && f.T < frames[i-1].T {
			t.Errorf("Expected non-decreasing times, got %v after %v", f.T, frames[i-1].T)
		}
	}
	if p.State() != StateStopped {
		t.Errorf("Expected stopped after completion, got %s", p.State())
	}
}

func TestPlay_CallbackStops(t *testing.T) {
	p := New()
	count := 0
	err := p.PlayWithOptions(context.Background(), "slide", slide(t), func(f Frame) bool {
		count++
		return count < 3
	}, Options{FrameRate: 500, Loop: true})
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 frames, got %d", count)
	}
}

func TestPlay_Loop(t *testing.T) {
	p := New()
	gen := slide(t)
	var maxT float64
	count := 0
	err := p.PlayWithOptions(context.Background(), "slide", gen, func(f Frame) bool {
		maxT = math.Max(maxT, f.T)
		count++
		return count < 60
	}, Options{FrameRate: 500, Loop: true})
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if maxT >= gen.Period() {
		t.Errorf("Expected looped times below the period, got %v", maxT)
	}
}

func TestPlay_Duration(t *testing.T) {
	p := New()
	var last Frame
	err := p.PlayWithOptions(context.Background(), "slide", slide(t), func(f Frame) bool {
		last = f
		return true
	}, Options{FrameRate: 200, Speed: 2, Duration: 40 * time.Millisecond})
	if err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if math.Abs(last.T-0.08) > 1e-9 {
		t.Errorf("Expected final frame at 0.08, got %v", last.T)
	}
}

func TestPlay_Context(t *testing.T) {
	p := New()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := p.PlayWithOptions(ctx, "slide", slide(t), func(Frame) bool { return true },
		Options{FrameRate: 100, Loop: true})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected DeadlineExceeded, got %v", err)
	}
}

func TestStart(t *testing.T) {
	p := New()
	opts := DefaultOptions()
	opts.FrameRate = 200

	result, err := p.Start(context.Background(), "slide", slide(t), func(Frame) bool { return true }, opts)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if p.State() != StatePlaying {
		t.Errorf("Expected playing as soon as Start returns, got %v", p.State())
	}

	if _, err := p.Start(context.Background(), "again", slide(t), func(Frame) bool { return true }, opts); !errors.Is(err, ErrAlreadyPlaying) {
		t.Errorf("Expected ErrAlreadyPlaying, got %v", err)
	}

	select {
	case err := <-result:
		if err != nil {
			t.Errorf("Expected clean finish, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for playback to finish")
	}
	if p.State() != StateStopped {
		t.Errorf("Expected stopped after finish, got %v", p.State())
	}
}

func TestPlay_StopPauseResume(t *testing.T) {
	p := New()
	started := make(chan struct{})
	var once sync.Once

	done := make(chan error, 1)
	go func() {
		done <- p.PlayWithOptions(context.Background(), "slide", slide(t), func(Frame) bool {
			once.Do(func() { close(started) })
			return true
		}, Options{FrameRate: 100, Loop: true})
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for first frame")
	}

	if p.State() != StatePlaying {
		t.Errorf("Expected playing, got %s", p.State())
	}
	if p.Current() != "slide" {
		t.Errorf("Expected current slide, got %q", p.Current())
	}

	err := p.Play(context.Background(), "other", slide(t), func(Frame) bool { return true })
	if !errors.Is(err, ErrAlreadyPlaying) {
		t.Errorf("Expected ErrAlreadyPlaying, got %v", err)
	}

	p.Pause()
	if p.State() != StatePaused {
		t.Errorf("Expected paused, got %s", p.State())
	}
	held := p.Elapsed()
	time.Sleep(20 * time.Millisecond)
	if p.Elapsed() != held {
		t.Errorf("Expected elapsed to hold while paused, got %v then %v", held, p.Elapsed())
	}

	p.Resume()
	if p.State() != StatePlaying {
		t.Errorf("Expected playing after resume, got %s", p.State())
	}

	p.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil after Stop, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for Stop")
	}
	if p.Elapsed() != 0 {
		t.Errorf("Expected zero elapsed when stopped, got %v", p.Elapsed())
	}
}

func TestSample(t *testing.T) {
	gen := slide(t)
	frames, err := Sample("slide", gen, 0, 0.05, 100)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if len(frames) != 6 {
		t.Fatalf("Expected 6 frames, got %d", len(frames))
	}
	for i, f := range frames {
		if want := gen.PoseAt(f.T); f.Points != want {
			t.Errorf("frame %d: pose differs from direct evaluation", i)
		}
		if math.Abs(f.T-float64(i)*0.01) > 1e-12 {
			t.Errorf("frame %d: expected t=%v, got %v", i, float64(i)*0.01, f.T)
		}
	}
	if math.Abs(frames[5].Points[skeleton.Pelvis].X-1) > 1e-9 {
		t.Errorf("Expected last sample at x=1, got %v", frames[5].Points[skeleton.Pelvis].X)
	}
}

func TestSample_Errors(t *testing.T) {
	gen := slide(t)
	tests := []struct {
		name     string
		from, to float64
		fps      float64
	}{
		{"zero fps", 0, 1, 0},
		{"reversed", 1, 0, 30},
		{"nan", math.NaN(), 1, 30},
		{"too many", 0, 1e6, 60},
		{"infinite", 0, math.Inf(1), 60},
	}
	for _, tc := range tests {
		if _, err := Sample("slide", gen, tc.from, tc.to, tc.fps); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("%s: expected ErrInvalidRange, got %v", tc.name, err)
		}
	}
}
