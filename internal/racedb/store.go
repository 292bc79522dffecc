package racedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"kartvid/internal/config"
)

// ErrAmbiguousRun is returned when a run ID prefix matches more than one run.
var ErrAmbiguousRun = errors.New("ambiguous run id")

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the run database at cfg.Paths.DatabasePath.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.Paths.DatabasePath)
}

// OpenPath opens the database file at path. Its directory must exist.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection; one connection keeps foreign keys enforced.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StartRun records the beginning of a run over source and returns it.
func (s *Store) StartRun(ctx context.Context, source string) (*Run, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errors.New("start run: source is required")
	}
	run := &Run{
		ID:        uuid.NewString(),
		Source:    source,
		StartedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, started_at) VALUES (?, ?, ?)`,
		run.ID, run.Source, run.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun closes a run with its final counters.
func (s *Store) FinishRun(ctx context.Context, id string, totals RunTotals) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, frames = ?, emitted = ?, races = ?, finished_races = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		totals.Frames, totals.Emitted, totals.Races, totals.FinishedRaces,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: run %s not found", id)
	}
	return nil
}

// AddEvent appends an emitted state to its run.
func (s *Store) AddEvent(ctx context.Context, ev Event) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO events (
            run_id, frame, time_ms, race_start, race_done, track, nplayers, players_json
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.RunID,
		ev.Frame,
		ev.TimeMs,
		boolToInt(ev.Start),
		boolToInt(ev.Done),
		nullableString(ev.Track),
		ev.NPlayers,
		ev.PlayersJSON,
	)
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

const runColumns = `id, source, started_at, finished_at, frames, emitted, races, finished_races`

// GetRun returns the run with the given ID, or nil when none exists.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// FindRun resolves a full run ID or a unique prefix of one. It returns nil
// when nothing matches and ErrAmbiguousRun when several runs do.
func (s *Store) FindRun(ctx context.Context, prefix string) (*Run, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil, errors.New("find run: id is required")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' ORDER BY started_at LIMIT 2`,
		escapeLike(prefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		found = append(found, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrAmbiguousRun, prefix)
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ListEvents returns the events of a run in frame order.
func (s *Store) ListEvents(ctx context.Context, runID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, frame, time_ms, race_start, race_done, track, nplayers, players_json
         FROM events WHERE run_id = ? ORDER BY frame, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev          Event
			start, done int
			track       sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.RunID, &ev.Frame, &ev.TimeMs, &start, &done, &track, &ev.NPlayers, &ev.PlayersJSON); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Start = start != 0
		ev.Done = done != 0
		ev.Track = track.String
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// DeleteRun removes a run and its events.
func (s *Store) DeleteRun(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// PruneRuns removes finished runs that started before cutoff, together with
// their events, and returns them. Runs still in progress are kept. With
// dryRun set nothing is deleted.
func (s *Store) PruneRuns(ctx context.Context, cutoff time.Time, dryRun bool) ([]*Run, error) {
	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		return nil, err
	}
	var stale []*Run
	for _, run := range runs {
		if run.Finished() && run.StartedAt.Before(cutoff) {
			stale = append(stale, run)
		}
	}
	if dryRun || len(stale) == 0 {
		return stale, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("prune runs: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	for _, run := range stale {
		if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, run.ID); err != nil {
			return nil, fmt.Errorf("prune run %s: %w", run.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("prune runs: %w", err)
	}
	return stale, nil
}
