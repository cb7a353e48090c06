package config

import (
	"testing"
	"time"
)

func TestPort(t *testing.T) {
	t.Setenv("POINTLIGHT_PORT", "")
	t.Setenv("PORT", "")
	if got := Port(); got != DefaultPort {
		t.Errorf("Expected default port %s, got %s", DefaultPort, got)
	}

	t.Setenv("PORT", "9000")
	if got := Port(); got != "9000" {
		t.Errorf("Expected PORT fallback 9000, got %s", got)
	}

	t.Setenv("POINTLIGHT_PORT", "9100")
	if got := Port(); got != "9100" {
		t.Errorf("Expected POINTLIGHT_PORT to win, got %s", got)
	}
}

func TestFPS(t *testing.T) {
	t.Setenv("POINTLIGHT_FPS", "30")
	if got := FPS(); got != 30 {
		t.Errorf("Expected 30, got %v", got)
	}

	t.Setenv("POINTLIGHT_FPS", "-5")
	if got := FPS(); got != DefaultFPS {
		t.Errorf("Expected fallback for negative fps, got %v", got)
	}

	t.Setenv("POINTLIGHT_FPS", "fast")
	if got := FPS(); got != DefaultFPS {
		t.Errorf("Expected fallback for invalid fps, got %v", got)
	}
}

func TestDuration(t *testing.T) {
	t.Setenv("POINTLIGHT_TEST_DURATION", "250ms")
	if got := Duration("POINTLIGHT_TEST_DURATION", time.Second); got != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", got)
	}

	t.Setenv("POINTLIGHT_TEST_DURATION", "soon")
	if got := Duration("POINTLIGHT_TEST_DURATION", time.Second); got != time.Second {
		t.Errorf("Expected fallback 1s, got %v", got)
	}
}
