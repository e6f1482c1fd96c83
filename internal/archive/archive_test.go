package archive

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestArchiveDir(t *testing.T) {
	tmpDir := t.TempDir()

	bookletDir := filepath.Join(tmpDir, "booklets")
	if err := os.MkdirAll(filepath.Join(bookletDir, "sub"), 0755); err != nil {
		t.Fatalf("Failed to create booklet directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(bookletDir, "0.json"), []byte("[]"), 0644); err != nil {
		t.Fatalf("Failed to create booklet: %v", err)
	}
	if err := os.WriteFile(filepath.Join(bookletDir, "sub", "note.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to create sub file: %v", err)
	}

	now := time.Date(2024, 3, 5, 14, 30, 15, 0, time.UTC)
	path, err := ArchiveDir(bookletDir+"/", now)
	if err != nil {
		t.Fatalf("ArchiveDir failed: %v", err)
	}

	want := filepath.Join(tmpDir, "archive", "booklets-20240305-143015")
	if path != want {
		t.Errorf("ArchiveDir() = %s, want %s", path, want)
	}

	if _, err := os.Stat(bookletDir); !os.IsNotExist(err) {
		t.Error("Booklet directory still exists after archiving")
	}
	for _, f := range []string{"0.json", filepath.Join("sub", "note.txt")} {
		if _, err := os.Stat(filepath.Join(path, f)); err != nil {
			t.Errorf("%s not found in archive: %v", f, err)
		}
	}
}

func TestArchiveDir_NonExistentDirectory(t *testing.T) {
	_, err := ArchiveDir(filepath.Join(t.TempDir(), "nonexistent"), time.Now())
	if !errors.Is(err, ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got: %v", err)
	}
}

func TestArchiveDir_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "booklets")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ArchiveDir(file, time.Now()); err == nil {
		t.Error("Expected error for a plain file")
	}
}

func TestArchiveDir_SameSecond(t *testing.T) {
	tmpDir := t.TempDir()
	bookletDir := filepath.Join(tmpDir, "booklets")
	now := time.Date(2024, 3, 5, 14, 30, 15, 123456000, time.UTC)

	var paths []string
	for i := 0; i < 2; i++ {
		if err := os.MkdirAll(bookletDir, 0755); err != nil {
			t.Fatalf("Failed to create booklet directory: %v", err)
		}
		path, err := ArchiveDir(bookletDir, now)
		if err != nil {
			t.Fatalf("ArchiveDir failed on iteration %d: %v", i, err)
		}
		paths = append(paths, path)
	}

	if paths[0] == paths[1] {
		t.Error("Archive names are not unique")
	}
	if !strings.HasSuffix(paths[1], ".123456") {
		t.Errorf("Expected microsecond suffix, got %s", paths[1])
	}

	entries, err := os.ReadDir(filepath.Join(tmpDir, "archive"))
	if err != nil {
		t.Fatalf("Failed to read archive directory: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries in archive directory, got %d", len(entries))
	}
}
