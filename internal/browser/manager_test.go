package browser

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"magicsplitgpt/internal/config"
)

func TestNewPageBeforeStart(t *testing.T) {
	m := NewManager(config.DefaultConfig().Browser, zap.NewNop())
	if _, err := m.NewPage(t.Context()); err == nil {
		t.Error("expected error when browser not started")
	}
}

func TestShutdownIdempotent(t *testing.T) {
	m := NewManager(config.DefaultConfig().Browser, zap.NewNop())
	m.Shutdown()
	m.Shutdown()
}

func TestProfileDirCreatesConfiguredDir(t *testing.T) {
	cfg := config.DefaultConfig().Browser
	cfg.ProfileDir = filepath.Join(t.TempDir(), "profile")
	m := NewManager(cfg, zap.NewNop())

	dir, err := m.profileDir()
	if err != nil {
		t.Fatalf("profileDir: %v", err)
	}
	if dir != cfg.ProfileDir {
		t.Errorf("dir = %s, want %s", dir, cfg.ProfileDir)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("profile dir not created: %v", err)
	}
}

func TestSaveScreenshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "day.png")
	if err := SaveScreenshot(path, []byte{0x89, 'P', 'N', 'G'}); err != nil {
		t.Fatalf("SaveScreenshot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 4 {
		t.Errorf("wrote %d bytes, want 4", len(data))
	}
}
