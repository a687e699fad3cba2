package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenMissingUsesDefault(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nope", "settings.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if s.Theme() != DefaultTheme {
		t.Fatalf("theme %q", s.Theme())
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestThemePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poimap", "settings.yaml")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s.SetTheme("ocean")
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Theme() != "ocean" {
		t.Fatalf("theme %q after reopen", s.Theme())
	}
}

func TestOpenRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("theme: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("garbage accepted")
	}
}

func TestUnchangedIsNotWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, _ := Open(path)
	s.SetTheme(DefaultTheme)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file written without changes: %v", err)
	}
}
