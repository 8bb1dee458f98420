package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/modeldoc/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
)

// DatabaseFile is the database name inside the data directory.
const DatabaseFile = "history.db"

// Ensure Store implements the interface.
var _ driven.RunStore = (*Store)(nil)

// Store is the SQLite run history.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database in dataDir.
// If dataDir is empty, <home>/data is used.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home := os.Getenv("MODELDOC_HOME")
		if home == "" {
			userHome, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("getting home directory: %w", err)
			}
			home = filepath.Join(userHome, ".modeldoc")
		}
		dataDir = filepath.Join(home, "data")
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate applies every up migration newer than the recorded version, each
// in its own transaction together with its schema_migrations row.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_runs.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// Save stores or replaces a run record and its entity lines.
func (s *Store) Save(ctx context.Context, run *domain.RunRecord) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("%w: run has no id", domain.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, finished_at, model_path, status, phase,
			documented, failed, skipped, snapshot_dir, commit_id, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			model_path = excluded.model_path,
			status = excluded.status,
			phase = excluded.phase,
			documented = excluded.documented,
			failed = excluded.failed,
			skipped = excluded.skipped,
			snapshot_dir = excluded.snapshot_dir,
			commit_id = excluded.commit_id,
			error = excluded.error
	`,
		run.ID, toUnix(run.StartedAt), toUnix(run.FinishedAt), run.ModelPath,
		string(run.Status), string(run.Phase), run.Documented, run.Failed, run.Skipped,
		run.SnapshotDir, run.CommitID, run.Error,
	)
	if err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_entities WHERE run_id = ?", run.ID); err != nil {
		return fmt.Errorf("clearing run entities: %w", err)
	}

	if len(run.Entities) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO run_entities (run_id, position, table_name, entity_name, outcome, stage, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing entity insert: %w", err)
		}
		defer stmt.Close()

		for i, e := range run.Entities {
			_, err := stmt.ExecContext(ctx, run.ID, i, e.Ref.Table, e.Ref.Name,
				string(e.Outcome), e.Stage, e.Detail)
			if err != nil {
				return fmt.Errorf("saving entity %s: %w", e.Ref, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", run.ID, err)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, model_path, status, phase,
	documented, failed, skipped, snapshot_dir, commit_id, error`

// Get retrieves a run by ID, with its entity lines.
func (s *Store) Get(ctx context.Context, id string) (*domain.RunRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}

	entities, err := s.entities(ctx, id)
	if err != nil {
		return nil, err
	}
	run.Entities = entities
	return run, nil
}

// List returns the most recent runs, newest first. Entity lines are not
// loaded; use Get for the full record.
func (s *Store) List(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

func (s *Store) entities(ctx context.Context, runID string) ([]domain.RunEntity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, entity_name, outcome, stage, detail
		FROM run_entities WHERE run_id = ? ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying run entities: %w", err)
	}
	defer rows.Close()

	var entities []domain.RunEntity //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.RunEntity
		var outcome string
		if err := rows.Scan(&e.Ref.Table, &e.Ref.Name, &outcome, &e.Stage, &e.Detail); err != nil {
			return nil, fmt.Errorf("scanning run entity: %w", err)
		}
		e.Outcome = domain.RunEntityOutcome(outcome)
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run entities: %w", err)
	}
	return entities, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.RunRecord, error) {
	var (
		run               domain.RunRecord
		started, finished int64
		status, phase     string
	)
	err := row.Scan(&run.ID, &started, &finished, &run.ModelPath, &status, &phase,
		&run.Documented, &run.Failed, &run.Skipped, &run.SnapshotDir, &run.CommitID, &run.Error)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	run.StartedAt = fromUnix(started)
	run.FinishedAt = fromUnix(finished)
	run.Status = domain.RunStatus(status)
	run.Phase = domain.Phase(phase)
	return &run, nil
}

// Timestamps are stored as Unix nanoseconds; zero means unset.
func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
