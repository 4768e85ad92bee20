package main

import (
	"strconv"
	"testing"

	"github.com/gogpu/pointviz"
	"github.com/gogpu/pointviz/config"
)

func openTestSession(t *testing.T, cfgPath string) *session {
	t.Helper()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	s, err := openSession(cfg)
	if err != nil {
		t.Fatalf("openSession() error = %v", err)
	}
	t.Cleanup(s.close)
	s.viewer.Camera().Radius = 20
	return s
}

// screenOfPoint returns the pixel point i is drawn at.
func (s *session) screenOfPoint(t *testing.T, i int) (int, int) {
	t.Helper()
	pos := s.viewer.Positions()[i]
	clip := s.viewer.Transform().TransformPoint(pos)
	x := (clip.X/clip.W + 1) * 0.5 * float32(s.scene.Width())
	y := (1 - clip.Y/clip.W) * 0.5 * float32(s.scene.Height())
	return int(x), int(y)
}

func itoa(i int) string { return strconv.Itoa(i) }

func TestOpenSessionReleasesOnError(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	if _, err := openSession(cfg); err == nil {
		t.Fatal("openSession() with missing files error = nil")
	}
}

func TestSetupLogger(t *testing.T) {
	t.Cleanup(func() { pointviz.SetLogger(nil) })
	// Must not panic for any input.
	for _, level := range []string{"", "debug", "WARN", "bogus"} {
		setupLogger(level)
	}
}
