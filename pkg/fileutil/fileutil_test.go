package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestFindFileCaseInsensitive(t *testing.T) {
	tmpDir := t.TempDir()

	for _, filename := range []string{"TRACK01.XMI", "intro.mod", "Battle.Xmi"} {
		if err := os.WriteFile(filepath.Join(tmpDir, filename), []byte("FORM"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "music.xmi"), 0755); err != nil {
		t.Fatalf("Failed to create test dir: %v", err)
	}

	tests := []struct {
		name          string
		searchName    string
		expectedMatch string
	}{
		{"exact match", "TRACK01.XMI", "TRACK01.XMI"},
		{"lowercase search for uppercase file", "track01.xmi", "TRACK01.XMI"},
		{"uppercase search for lowercase file", "INTRO.MOD", "intro.mod"},
		{"mixed case", "battle.XMI", "Battle.Xmi"},
		{"not found", "track02.xmi", ""},
		{"directories are skipped", "MUSIC.XMI", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := FindFileCaseInsensitive(tmpDir, tt.searchName)

			if tt.expectedMatch == "" {
				if !errors.Is(err, fs.ErrNotExist) {
					t.Errorf("Expected fs.ErrNotExist, got path %q err %v", path, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected to find file, but got error: %v", err)
			}
			if got := filepath.Base(path); got != tt.expectedMatch {
				t.Errorf("Expected filename %s, got %s", tt.expectedMatch, got)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("Returned path does not exist: %s", path)
			}
		})
	}
}

func TestFindFileCaseInsensitive_MissingDirectory(t *testing.T) {
	_, err := FindFileCaseInsensitive(filepath.Join(t.TempDir(), "missing"), "a.xmi")
	if err == nil {
		t.Fatal("Expected error for missing directory")
	}
}

func TestRealFS_ReadFile(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "SONG.XMI"), []byte("data"), 0644); err != nil {
		t.Fatal(err)
	}

	fsys := NewRealFS(tmpDir)
	if fsys.BasePath() != tmpDir {
		t.Errorf("BasePath() = %q, want %q", fsys.BasePath(), tmpDir)
	}

	for _, name := range []string{"SONG.XMI", "song.xmi", "/song.xmi", `\Song.Xmi`} {
		data, err := fsys.ReadFile(name)
		if err != nil {
			t.Errorf("ReadFile(%q) failed: %v", name, err)
			continue
		}
		if string(data) != "data" {
			t.Errorf("ReadFile(%q) = %q", name, data)
		}
	}

	if _, err := fsys.ReadFile("other.xmi"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile(missing) error = %v, want fs.ErrNotExist", err)
	}

	entries, err := fsys.ReadDir(".")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("ReadDir returned %d entries, want 1", len(entries))
	}
}

func TestIOFS_ReadFile(t *testing.T) {
	mapFS := fstest.MapFS{
		"music/TRACK00.XMI": {Data: []byte("xmi")},
		"music/theme.mod":   {Data: []byte("mod")},
		"readme.txt":        {Data: []byte("txt")},
	}

	t.Run("with base path", func(t *testing.T) {
		fsys := NewIOFS(mapFS, "music")
		tests := map[string]string{
			"TRACK00.XMI": "xmi",
			"track00.xmi": "xmi",
			"/THEME.MOD":  "mod",
		}
		for name, want := range tests {
			data, err := fsys.ReadFile(name)
			if err != nil {
				t.Errorf("ReadFile(%q) failed: %v", name, err)
				continue
			}
			if string(data) != want {
				t.Errorf("ReadFile(%q) = %q, want %q", name, data, want)
			}
		}
		if _, err := fsys.ReadFile("readme.txt"); err == nil {
			t.Error("Expected error for file outside base path")
		}
		entries, err := fsys.ReadDir(".")
		if err != nil {
			t.Fatalf("ReadDir failed: %v", err)
		}
		if len(entries) != 2 {
			t.Errorf("ReadDir returned %d entries, want 2", len(entries))
		}
	})

	t.Run("without base path", func(t *testing.T) {
		fsys := NewIOFS(mapFS, "")
		data, err := fsys.ReadFile(`music\track00.xmi`)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if string(data) != "xmi" {
			t.Errorf("ReadFile = %q", data)
		}
	})
}

func TestFindFileCaseInsensitiveFS(t *testing.T) {
	mapFS := fstest.MapFS{
		"a/Song.XMI": {Data: []byte("x")},
	}
	got, err := FindFileCaseInsensitiveFS(mapFS, "a", "song.xmi")
	if err != nil {
		t.Fatalf("FindFileCaseInsensitiveFS failed: %v", err)
	}
	if got != "a/Song.XMI" {
		t.Errorf("got %q, want a/Song.XMI", got)
	}
	if _, err := FindFileCaseInsensitiveFS(mapFS, "a", "none.xmi"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error = %v, want fs.ErrNotExist", err)
	}
}
