package config

import (
	"path/filepath"
	"testing"
)

func TestGetKodeklipDirWithExplicitEnv(t *testing.T) {
	tmpDir := t.TempDir()
	customDir := filepath.Join(tmpDir, "custom")

	t.Setenv("KODEKLIP_DIR", customDir)
	t.Setenv("XDG_DATA_HOME", "")

	got := GetKodeklipDir()
	if got != customDir {
		t.Fatalf("expected %q, got %q", customDir, got)
	}
}

func TestGetKodeklipDirFallsBackToXDG(t *testing.T) {
	tmpDir := t.TempDir()
	xdgDir := filepath.Join(tmpDir, "xdg")

	t.Setenv("KODEKLIP_DIR", "")
	t.Setenv("XDG_DATA_HOME", xdgDir)

	got := GetKodeklipDir()
	want := filepath.Join(xdgDir, "kodeklip")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestGetDBAndReposPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("KODEKLIP_DIR", tmpDir)

	if got, want := GetDBPath(), filepath.Join(tmpDir, "index.db"); got != want {
		t.Fatalf("GetDBPath expected %q, got %q", want, got)
	}

	if got, want := GetReposDir(), filepath.Join(tmpDir, "repos"); got != want {
		t.Fatalf("GetReposDir expected %q, got %q", want, got)
	}
}
