package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type migrationFile struct {
	version string
	name    string
	sql     string
}

func loadMigrations() ([]migrationFile, error) {
	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}

	files := make([]migrationFile, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version, _, ok := strings.Cut(entry.Name(), "_")
		if !ok || version == "" {
			return nil, fmt.Errorf("migration %q does not follow NNNN_name.sql", entry.Name())
		}
		body, err := fs.ReadFile(migrationFiles, "migrations/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}
		files = append(files, migrationFile{version: version, name: entry.Name(), sql: string(body)})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

// Migrate applies pending embedded migrations in version order. Each file runs
// in its own transaction together with its schema_migrations row.
func (s *Storage) Migrate(ctx context.Context) error {
	const createVersionTable = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`
	if _, err := s.pool.DB().ExecContext(ctx, createVersionTable); err != nil {
		return fmt.Errorf("failed to initialize version table: %w", err)
	}

	files, err := loadMigrations()
	if err != nil {
		return err
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, file := range files {
		if _, done := applied[file.version]; done {
			continue
		}
		start := time.Now()
		err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, file.sql); err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", file.name, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
				file.version, s.now().UTC().Format(time.RFC3339Nano),
			); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", file.name, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		s.logger.InfoContext(ctx, "migration applied", "version", file.version, "file", file.name, "duration", time.Since(start))
	}
	return nil
}

func (s *Storage) appliedVersions(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.DB().QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]struct{})
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = struct{}{}
	}
	return applied, rows.Err()
}

// SchemaVersion returns the highest applied migration version, or "" when
// none has been applied.
func (s *Storage) SchemaVersion(ctx context.Context) (string, error) {
	var version sql.NullString
	err := s.pool.DB().QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return "", fmt.Errorf("failed to read schema version: %w", err)
	}
	return version.String, nil
}
