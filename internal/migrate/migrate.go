package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/emiliopalmerini/taskpulse/migrations"
)

// ErrDirty is returned when a previous migration failed half way.
var ErrDirty = errors.New("database is in dirty state")

// Migration is a single schema version with its up and down SQL.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// EnsureMigrationsTable creates the schema_migrations table if it doesn't exist.
func EnsureMigrationsTable(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

// GetCurrentVersion returns the current migration version and dirty state.
func GetCurrentVersion(ctx context.Context, db *sql.DB) (int, bool, error) {
	var version int
	var dirty int

	err := db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	return version, dirty == 1, nil
}

// SetVersion replaces the recorded version.
func SetVersion(ctx context.Context, db *sql.DB, version int, dirty bool) error {
	dirtyInt := 0
	if dirty {
		dirtyInt = 1
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return err
	}
	if version == 0 {
		return nil
	}
	_, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, dirtyInt)
	return err
}

var upPattern = regexp.MustCompile(`^(\d+)_(.+)\.up\.sql$`)

// Load reads the embedded migration files sorted by version.
func Load() ([]Migration, error) {
	return LoadFS(migrations.FS)
}

func LoadFS(fsys fs.FS) ([]Migration, error) {
	var result []Migration

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		matches := upPattern.FindStringSubmatch(filepath.Base(path))
		if matches == nil {
			return nil
		}

		version, _ := strconv.Atoi(matches[1])
		name := matches[2]

		upSQL, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		// Down migrations are optional.
		downSQL, _ := fs.ReadFile(fsys, fmt.Sprintf("%03d_%s.down.sql", version, name))

		result = append(result, Migration{
			Version: version,
			Name:    name,
			UpSQL:   string(upSQL),
			DownSQL: string(downSQL),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})
	return result, nil
}

// Run executes a single migration in the given direction, marking the
// version dirty until every statement succeeded.
func Run(ctx context.Context, db *sql.DB, m Migration, up bool) error {
	direction := "up"
	sqlContent := m.UpSQL
	targetVersion := m.Version
	if !up {
		direction = "down"
		sqlContent = m.DownSQL
		targetVersion = m.Version - 1
	}

	log.FromContext(ctx).Info("running migration", "direction", direction, "version", m.Version, "name", m.Name)

	if err := SetVersion(ctx, db, m.Version, true); err != nil {
		return fmt.Errorf("failed to set dirty flag: %w", err)
	}

	for _, stmt := range SplitSQL(sqlContent) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %d %s: %w\nSQL: %s", m.Version, direction, err, stmt)
		}
	}

	if err := SetVersion(ctx, db, targetVersion, false); err != nil {
		return fmt.Errorf("failed to clear dirty flag: %w", err)
	}
	return nil
}

// SplitSQL splits a SQL script on semicolons, dropping blank statements.
// Semicolons inside string literals are not supported.
func SplitSQL(script string) []string {
	var out []string
	for _, stmt := range strings.Split(script, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// To migrates db up or down to target. A negative target means the latest
// version. It returns the version the database ends up at.
func To(ctx context.Context, db *sql.DB, all []Migration, target int) (int, error) {
	if err := EnsureMigrationsTable(ctx, db); err != nil {
		return 0, fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, dirty, err := GetCurrentVersion(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	if dirty {
		return current, fmt.Errorf("%w at version %d", ErrDirty, current)
	}

	if target < 0 {
		target = 0
		if len(all) > 0 {
			target = all[len(all)-1].Version
		}
	}

	switch {
	case target > current:
		for _, m := range all {
			if m.Version <= current || m.Version > target {
				continue
			}
			if err := Run(ctx, db, m, true); err != nil {
				return m.Version, err
			}
			current = m.Version
		}
	case target < current:
		for i := len(all) - 1; i >= 0; i-- {
			m := all[i]
			if m.Version > current || m.Version <= target {
				continue
			}
			if m.DownSQL == "" {
				return current, fmt.Errorf("no down migration for version %d", m.Version)
			}
			if err := Run(ctx, db, m, false); err != nil {
				return m.Version, err
			}
			current = m.Version - 1
		}
	}

	return current, nil
}

// RunAll runs all pending embedded migrations on db.
func RunAll(ctx context.Context, db *sql.DB) error {
	all, err := Load()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	_, err = To(ctx, db, all, -1)
	return err
}
