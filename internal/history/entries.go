package history

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Outcome is the result of resolving one stage.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
)

// Entry is one journal row.
type Entry struct {
	ID           int64     `json:"id" yaml:"id"`
	RunID        string    `json:"run_id" yaml:"run_id"`
	Dataset      string    `json:"dataset" yaml:"dataset"`
	Stage        string    `json:"stage" yaml:"stage"`
	Outcome      Outcome   `json:"outcome" yaml:"outcome"`
	Artifact     string    `json:"artifact,omitempty" yaml:"artifact,omitempty"`
	ErrorKind    string    `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	StartedAt    time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt   time.Time `json:"finished_at" yaml:"finished_at"`
}

// Duration returns the wall time spent on the stage.
func (e Entry) Duration() time.Duration {
	if e.FinishedAt.Before(e.StartedAt) {
		return 0
	}
	return e.FinishedAt.Sub(e.StartedAt)
}

// ListOptions filters journal queries.
type ListOptions struct {
	Dataset string
	RunID   string
	Limit   int
}

// timeLayout is fixed width so stored timestamps sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record appends an entry and returns its row ID.
func (s *Store) Record(ctx context.Context, entry Entry) (int64, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(entry.RunID) == "" {
		return 0, fmt.Errorf("record stage run: run id is required")
	}
	switch entry.Outcome {
	case OutcomeSkipped, OutcomeCompleted, OutcomeFailed:
	default:
		return 0, fmt.Errorf("record stage run: unknown outcome %q", entry.Outcome)
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = time.Now()
	}
	if entry.FinishedAt.IsZero() {
		entry.FinishedAt = entry.StartedAt
	}

	var id int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO stage_runs (run_id, dataset, stage, outcome, artifact, error_kind, error_message, started_at, finished_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.RunID,
			entry.Dataset,
			entry.Stage,
			string(entry.Outcome),
			entry.Artifact,
			entry.ErrorKind,
			entry.ErrorMessage,
			entry.StartedAt.UTC().Format(timeLayout),
			entry.FinishedAt.UTC().Format(timeLayout),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("record stage run: %w", err)
	}
	return id, nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	ctx = ensureContext(ctx)
	query := `SELECT id, run_id, dataset, stage, outcome, artifact, error_kind, error_message, started_at, finished_at
		FROM stage_runs`
	var (
		clauses []string
		args    []any
	)
	if opts.Dataset != "" {
		clauses = append(clauses, "dataset = ?")
		args = append(args, opts.Dataset)
	}
	if opts.RunID != "" {
		clauses = append(clauses, "run_id = ?")
		args = append(args, opts.RunID)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stage runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry    Entry
			outcome  string
			started  string
			finished string
		)
		if err := rows.Scan(&entry.ID, &entry.RunID, &entry.Dataset, &entry.Stage, &outcome,
			&entry.Artifact, &entry.ErrorKind, &entry.ErrorMessage, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan stage run: %w", err)
		}
		entry.Outcome = Outcome(outcome)
		entry.StartedAt, _ = time.Parse(timeLayout, started)
		entry.FinishedAt, _ = time.Parse(timeLayout, finished)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Prune deletes entries that finished before cutoff and returns how many
// rows were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx = ensureContext(ctx)
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM stage_runs WHERE finished_at < ?`, cutoff.UTC().Format(timeLayout))
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("prune stage runs: %w", err)
	}
	return removed, nil
}
