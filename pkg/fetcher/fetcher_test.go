package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownload(t *testing.T) {
	body := bytes.Repeat([]byte("Zeile eins\nZeile zwei\n"), 1000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/de.txt.gz" {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	f := NewFetcher(true)
	dst := filepath.Join(t.TempDir(), "models", "raw.txt.gz")

	n, err := f.Download(context.Background(), srv.URL+"/de.txt.gz", dst)
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if n != int64(len(body)) {
		t.Errorf("Download() = %d bytes, want %d", n, len(body))
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("failed to read download: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Error("downloaded content differs")
	}
	if _, err := os.Stat(dst + ".download"); !os.IsNotExist(err) {
		t.Error("temporary file left behind")
	}
}

func TestDownload_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dst := filepath.Join(t.TempDir(), "raw.txt.gz")
	if _, err := NewFetcher(true).Download(context.Background(), srv.URL+"/missing", dst); err == nil {
		t.Fatal("Download() should fail on 404")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("destination created for a failed download")
	}
}

func TestDownload_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFetcher(true).Download(ctx, srv.URL, filepath.Join(t.TempDir(), "x")); err == nil {
		t.Fatal("Download() should fail with a cancelled context")
	}
}

func TestGunzip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "raw.txt.gz")
	dst := filepath.Join(dir, "unprepared.txt")
	want := []byte("o rato roeu a roupa\ndo rei de roma\n")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write(want)
	zw.Close()
	if err := os.WriteFile(src, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	n, err := NewFetcher(true).Gunzip(src, dst)
	if err != nil {
		t.Fatalf("Gunzip() error = %v", err)
	}
	got, _ := os.ReadFile(dst)
	if !bytes.Equal(got, want) || n != int64(len(want)) {
		t.Errorf("Gunzip() wrote %q (%d), want %q", got, n, want)
	}
}

func TestGunzip_NotGzip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "raw.txt.gz")
	os.WriteFile(src, []byte("plain text"), 0644)

	if _, err := NewFetcher(true).Gunzip(src, filepath.Join(dir, "out")); err == nil {
		t.Fatal("Gunzip() should reject non-gzip input")
	}
}
