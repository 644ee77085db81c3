package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dtnitsch/lm-corpus/pkg/artifact_manager"
	"github.com/urfave/cli/v2"
)

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func runFetch(args ...string) error {
	app := &cli.App{
		Name:           "lmc",
		Flags:          Flags(),
		Action:         FetchAction,
		ExitErrHandler: func(*cli.Context, error) {},
	}
	return app.RunContext(context.Background(), append([]string{"lmc"}, args...))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestFetchAction_Stages(t *testing.T) {
	var hits atomic.Int32
	body := gzipped(t, "Hallo Welt\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(body)
	}))
	defer srv.Close()

	out := t.TempDir()
	manager, err := artifact_manager.NewManager(out, "de")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	raw := manager.Path(artifact_manager.RawCorpusFile)
	unprepared := manager.Path(artifact_manager.UnpreparedFile)
	if err := os.WriteFile(raw, gzipped(t, "alt\n"), 0644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	os.Chtimes(raw, past, past)

	args := []string{"--output-dir", out, "--url", srv.URL + "/de.txt.gz", "--quiet", "de"}

	if err := runFetch(args...); err != nil {
		t.Fatalf("FetchAction() error = %v", err)
	}
	if hits.Load() != 0 {
		t.Errorf("existing raw corpus was downloaded again")
	}
	if got := readFile(t, unprepared); got != "alt\n" {
		t.Errorf("unprepared = %q, want the existing raw corpus unzipped", got)
	}

	if err := os.WriteFile(unprepared, []byte("edited\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := runFetch(args...); err != nil {
		t.Fatalf("FetchAction() error = %v", err)
	}
	if got := readFile(t, unprepared); got != "edited\n" || hits.Load() != 0 {
		t.Errorf("up to date fetch redid a stage: unprepared = %q, hits = %d", got, hits.Load())
	}

	future := time.Now().Add(time.Hour)
	os.Chtimes(raw, future, future)
	if err := runFetch(args...); err != nil {
		t.Fatalf("FetchAction() error = %v", err)
	}
	if got := readFile(t, unprepared); got != "alt\n" || hits.Load() != 0 {
		t.Errorf("newer raw corpus: unprepared = %q, hits = %d, want unzip only", got, hits.Load())
	}

	if err := runFetch(append([]string{"--force"}, args...)...); err != nil {
		t.Fatalf("FetchAction() error = %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("forced fetch made %d requests, want 1", hits.Load())
	}
	if got := readFile(t, unprepared); got != "Hallo Welt\n" {
		t.Errorf("unprepared = %q, want the downloaded corpus", got)
	}
}

func TestFetchAction_UnknownLanguage(t *testing.T) {
	if err := runFetch("--output-dir", t.TempDir(), "xx"); err == nil {
		t.Error("FetchAction() should reject an unknown language")
	}
}
