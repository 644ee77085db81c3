package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFileSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"100M", 100 << 20, false},
		{"100m", 100 << 20, false},
		{"100MB", 100 << 20, false},
		{"100MiB", 100 << 20, false},
		{"512k", 512 << 10, false},
		{"2G", 2 << 30, false},
		{"1.5g", 3 << 29, false},
		{"4096", 4096, false},
		{" 64K ", 64 << 10, false},
		{"", 0, true},
		{"M", 0, true},
		{"ten", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFileSize(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFileSize(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFileSize(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatFileSize(t *testing.T) {
	if got := FormatFileSize(100 << 20); got != "100 MiB" {
		t.Errorf("FormatFileSize() = %q, want \"100 MiB\"", got)
	}
}

func TestFileHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocabulary.txt")
	data := []byte("der\ndie\ndas\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := FileHash(path)
	if err != nil {
		t.Fatalf("FileHash() error = %v", err)
	}
	if want := ContentHash(data); got != want {
		t.Errorf("FileHash() = %s, want %s", got, want)
	}
	if _, err := FileHash(path + ".missing"); err == nil {
		t.Error("FileHash() should fail on a missing file")
	}
}
