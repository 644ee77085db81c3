package source

import (
	"os"
	"path/filepath"
	"testing"
)

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unprepared.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	return path
}

func TestOpen(t *testing.T) {
	content := "erste zeile\nzweite zeile\n"
	path := writeInput(t, content)

	for _, useMmap := range []bool{false, true} {
		s, err := Open(path, useMmap)
		if err != nil {
			t.Fatalf("Open(mmap=%v) error = %v", useMmap, err)
		}

		if s.Size() != int64(len(content)) {
			t.Errorf("Size() = %d, want %d", s.Size(), len(content))
		}
		if s.Mapped() != useMmap {
			t.Errorf("Mapped() = %v, want %v", s.Mapped(), useMmap)
		}

		buf := make([]byte, 6)
		if _, err := s.ReadAt(buf, 12); err != nil {
			t.Fatalf("ReadAt() error = %v", err)
		}
		if string(buf) != "zweite" {
			t.Errorf("ReadAt() = %q, want %q", buf, "zweite")
		}

		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}
}

func TestOpen_EmptyFileIsNotMapped(t *testing.T) {
	s, err := Open(writeInput(t, ""), true)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if s.Mapped() {
		t.Error("empty file should not be mapped")
	}
	if s.Size() != 0 {
		t.Errorf("Size() = %d, want 0", s.Size())
	}
}

func TestOpen_Missing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.txt"), false); err == nil {
		t.Error("Open() on a missing file should fail")
	}
}
