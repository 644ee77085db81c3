package artifact_manager

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultBaseDir = "lmc-models"

	RawCorpusFile      = "raw.txt.gz"
	UnpreparedFile     = "unprepared.txt"
	PreparedFile       = "prepared.txt"
	VocabularyFile     = "vocabulary.txt"
	UnfilteredArpaFile = "unfiltered.arpa"
	FilteredArpaFile   = "filtered.arpa"
	BinaryModelFile    = "lm.binary"
	AlphabetFile       = "alphabet.txt"
	ManifestFile       = "manifest.yaml"
	TempPrefix         = "tmp"
)

// GetModelDir returns the directory holding every artifact of a language.
// Example: lmc-models/de/
func GetModelDir(baseDir, lang string) string {
	if baseDir == "" {
		baseDir = DefaultBaseDir
	}
	return filepath.Join(baseDir, strings.ToLower(lang))
}

// Manager resolves artifact paths inside one language's model directory.
type Manager struct {
	dir string
}

// NewManager creates a Manager and ensures the model directory exists.
func NewManager(baseDir, lang string) (*Manager, error) {
	if lang == "" {
		return nil, fmt.Errorf("language is required")
	}
	dir := GetModelDir(baseDir, lang)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}
	return &Manager{dir: dir}, nil
}

// Dir returns the model directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Path returns the full path of artifact inside the model directory.
// Example: lmc-models/de/prepared.txt
func (m *Manager) Path(artifact string) string {
	return filepath.Join(m.dir, artifact)
}

// TempPrefix returns the prefix for scratch files of external tools.
func (m *Manager) TempPrefix() string {
	return m.Path(TempPrefix)
}

// Exists reports whether every artifact is present as a regular file.
func (m *Manager) Exists(artifacts ...string) (bool, error) {
	for _, a := range artifacts {
		info, err := os.Stat(m.Path(a))
		if os.IsNotExist(err) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("error statting %s: %w", a, err)
		}
		if !info.Mode().IsRegular() {
			return false, fmt.Errorf("artifact %s is not a regular file", a)
		}
	}
	return true, nil
}

// NeedsBuild reports whether the stage turning inputs into outputs (artifact
// names) has to run: when forced, when an output is missing, or when an input
// changed after the outputs were written.
func (m *Manager) NeedsBuild(force bool, outputs []string, inputs ...string) (bool, error) {
	if force {
		return true, nil
	}
	return Outdated(m.paths(outputs), m.paths(inputs)...)
}

func (m *Manager) paths(artifacts []string) []string {
	paths := make([]string, len(artifacts))
	for i, a := range artifacts {
		paths[i] = m.Path(a)
	}
	return paths
}

// Outdated reports whether any output file is missing or older than any
// input file. Missing inputs are ignored; the stage reading them fails on
// its own.
func Outdated(outputs []string, inputs ...string) (bool, error) {
	var oldest time.Time
	for _, out := range outputs {
		info, err := os.Stat(out)
		if os.IsNotExist(err) {
			return true, nil
		}
		if err != nil {
			return false, fmt.Errorf("error statting %s: %w", out, err)
		}
		if !info.Mode().IsRegular() {
			return false, fmt.Errorf("artifact %s is not a regular file", out)
		}
		if oldest.IsZero() || info.ModTime().Before(oldest) {
			oldest = info.ModTime()
		}
	}

	for _, in := range inputs {
		info, err := os.Stat(in)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("error statting %s: %w", in, err)
		}
		if info.ModTime().After(oldest) {
			return true, nil
		}
	}
	return false, nil
}
