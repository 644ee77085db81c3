package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtnitsch/lm-corpus/models"
	"github.com/google/uuid"
)

// ErrRunNotFound is returned when no run matches an ID.
var ErrRunNotFound = errors.New("run not found")

// Artifact is a file recorded for a run.
type Artifact struct {
	Name        string
	FilePath    string
	SizeBytes   int64
	ContentHash string
	CreatedAt   time.Time
}

// NewRunID returns a fresh random run ID.
func NewRunID() string {
	return uuid.NewString()
}

// InsertRun records the start of a run. An empty RunID is filled in.
func (db *DB) InsertRun(run *models.Run) error {
	if run.RunID == "" {
		run.RunID = NewRunID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = models.RunStatusRunning
	}

	_, err := db.Exec(`
		INSERT INTO runs (run_id, language, input_path, input_bytes, workers, block_size,
			vocabulary_size, prune_factor, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.Language, run.InputPath, run.InputBytes, run.Workers, run.BlockSize,
		run.VocabularySize, run.PruneFactor, run.Status, run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// FinishRun stores the outcome of a run.
func (db *DB) FinishRun(runID, status string, runErr error, inputBytes int64, stats models.RunStats) error {
	var errMsg sql.NullString
	if runErr != nil {
		errMsg = sql.NullString{String: runErr.Error(), Valid: true}
	}

	result, err := db.Exec(`
		UPDATE runs
		SET status = ?, error = ?, finished_at = ?, input_bytes = ?,
			batches = ?, prunes = ?, vocabulary_words = ?, prepared_lines = ?, skipped_lines = ?
		WHERE run_id = ?
	`, status, errMsg, time.Now().UTC(), inputBytes,
		stats.Batches, stats.Prunes, stats.VocabularyWords, stats.PreparedLines, stats.SkippedLines, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// RecordArtifact inserts or updates a file produced by a run.
func (db *DB) RecordArtifact(runID string, a Artifact) error {
	_, err := db.Exec(`
		INSERT INTO run_artifacts (run_id, name, file_path, size_bytes, content_hash)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, name) DO UPDATE SET
			file_path = excluded.file_path,
			size_bytes = excluded.size_bytes,
			content_hash = excluded.content_hash
	`, runID, a.Name, a.FilePath, a.SizeBytes, a.ContentHash)
	if err != nil {
		return fmt.Errorf("failed to record artifact: %w", err)
	}
	return nil
}

const runColumns = `run_id, language, input_path, input_bytes, workers, block_size, vocabulary_size,
	prune_factor, status, error, started_at, finished_at,
	batches, prunes, vocabulary_words, prepared_lines, skipped_lines`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var r models.Run
	var errMsg sql.NullString
	var finished sql.NullTime
	err := row.Scan(&r.RunID, &r.Language, &r.InputPath, &r.InputBytes, &r.Workers, &r.BlockSize,
		&r.VocabularySize, &r.PruneFactor, &r.Status, &errMsg, &r.StartedAt, &finished,
		&r.Stats.Batches, &r.Stats.Prunes, &r.Stats.VocabularyWords, &r.Stats.PreparedLines, &r.Stats.SkippedLines)
	if err != nil {
		return nil, err
	}
	r.Error = errMsg.String
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return &r, nil
}

// GetRun returns a run by ID.
func (db *DB) GetRun(runID string) (*models.Run, error) {
	row := db.QueryRow("SELECT "+runColumns+" FROM runs WHERE run_id = ?", runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (db *DB) ListRuns(limit int) ([]models.Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, run_id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// GetRunArtifacts returns the files recorded for a run, by name.
func (db *DB) GetRunArtifacts(runID string) ([]Artifact, error) {
	rows, err := db.Query(`
		SELECT name, file_path, COALESCE(size_bytes, 0), COALESCE(content_hash, ''), created_at
		FROM run_artifacts WHERE run_id = ? ORDER BY name
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []Artifact
	for rows.Next() {
		var a Artifact
		if err := rows.Scan(&a.Name, &a.FilePath, &a.SizeBytes, &a.ContentHash, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}
