// Package storage persists daily worklog records and manages its own schema
// through an embedded-file migration system.
//
// Migration SQL files are embedded under "migrations" in a driver-specific
// subdirectory. Filenames must match NNNN_name.up.sql or NNNN_name.down.sql;
// adding or removing a migration requires rebuilding the binary.
package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"
)

//go:embed migrations/**/*.sql
var migrationsFS embed.FS

var reMigrationFilename = regexp.MustCompile(`^(?P<Version>\d{4})\_(?P<Name>[^.]+)\.(?P<Direction>(up|down))\.sql$`)

var ErrMigrateCurrentVersionSameAsTarget = errors.New("current version is the same as target version")

// SchemaMigration represents a single database migration
type SchemaMigration struct {
	Version int
	Name    string
	Up      bool
	SQL     string
}

func migrationsDir(driver string) (string, error) {
	switch driver {
	case "sqlite3":
		return "migrations/sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported driver: %s", driver)
	}
}

// latestMigrationVersion scans migration files and returns the highest "up"
// version number.
func latestMigrationVersion(driver string) (int, error) {
	dirPath, err := migrationsDir(driver)
	if err != nil {
		return -1, err
	}

	entries, err := migrationsFS.ReadDir(dirPath)
	if err != nil {
		return -1, fmt.Errorf("failed to read migration directory: %w", err)
	}

	latest := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		migration, err := parseMigrationFile(filepath.Join(dirPath, entry.Name()))
		if err != nil || !migration.Up {
			continue
		}
		if migration.Version > latest {
			latest = migration.Version
		}
	}

	return latest, nil
}

// loadMigrations collects the migrations needed to move the schema from
// prior to target. A target of -1 means the latest version.
func loadMigrations(driver string, prior, target int, logger *slog.Logger) ([]SchemaMigration, error) {
	if target == -1 {
		latest, err := latestMigrationVersion(driver)
		if err != nil {
			return nil, fmt.Errorf("failed to get latest migration version: %w", err)
		}
		target = latest
	}

	if prior == target {
		return nil, ErrMigrateCurrentVersionSameAsTarget
	}

	dirPath, err := migrationsDir(driver)
	if err != nil {
		return nil, err
	}

	entries, err := migrationsFS.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var migrations []SchemaMigration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		migration, err := parseMigrationFile(filepath.Join(dirPath, entry.Name()))
		if err != nil {
			logger.Warn("Failed to parse migration file", "file", entry.Name(), "error", err)
			continue
		}
		if skipMigration(migration, prior, target) {
			continue
		}
		migrations = append(migrations, migration)
	}

	up := prior < target
	sort.Slice(migrations, func(i, j int) bool {
		if up {
			return migrations[i].Version < migrations[j].Version
		}
		return migrations[i].Version > migrations[j].Version
	})

	logger.Info("Loaded migrations", "count", len(migrations), "from_version", prior, "to_version", target)
	return migrations, nil
}

func skipMigration(migration SchemaMigration, currentVersion, targetVersion int) bool {
	if targetVersion > currentVersion {
		if !migration.Up {
			return true
		}
		return migration.Version > targetVersion || migration.Version <= currentVersion
	}

	if migration.Up {
		return true
	}
	return migration.Version <= targetVersion || migration.Version > currentVersion
}

// parseMigrationFile parses a migration filename and reads its content.
// Expected format: NNNN_description.up.sql or NNNN_description.down.sql
func parseMigrationFile(path string) (SchemaMigration, error) {
	filename := filepath.Base(path)
	parts := reMigrationFilename.FindStringSubmatch(filename)
	if parts == nil {
		return SchemaMigration{}, fmt.Errorf("invalid migration filename: %s", filename)
	}

	sqlBytes, err := migrationsFS.ReadFile(path)
	if err != nil {
		return SchemaMigration{}, fmt.Errorf("failed to read migration file: %w", err)
	}

	version, _ := strconv.Atoi(parts[reMigrationFilename.SubexpIndex("Version")])
	return SchemaMigration{
		Version: version,
		Name:    parts[reMigrationFilename.SubexpIndex("Name")],
		Up:      parts[reMigrationFilename.SubexpIndex("Direction")] == "up",
		SQL:     string(sqlBytes),
	}, nil
}

// runMigrations brings the schema up to the latest embedded version.
func (p *SQLProvider) runMigrations(driver string) error {
	ctx := context.Background()
	logger := slog.With("component", "migrations", "driver", driver)

	_, err := p.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS migrations_log (
		    version    INTEGER NOT NULL,
		    name       TEXT NOT NULL,
		    applied_at DATETIME NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("creating migrations log: %w", err)
	}

	current, err := p.GetSchemaVersion(ctx)
	if err != nil {
		return err
	}

	migrations, err := loadMigrations(driver, current, -1, logger)
	if errors.Is(err, ErrMigrateCurrentVersionSameAsTarget) {
		logger.Debug("Schema already up to date", "version", current)
		return nil
	}
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		if _, err := p.db.ExecContext(ctx, migration.SQL); err != nil {
			return fmt.Errorf("applying migration %04d_%s: %w", migration.Version, migration.Name, err)
		}
		if _, err := p.db.ExecContext(ctx,
			`INSERT INTO migrations_log (version, name, applied_at) VALUES (?, ?, ?)`,
			migration.Version, migration.Name, time.Now().UTC()); err != nil {
			return fmt.Errorf("recording migration %04d: %w", migration.Version, err)
		}
		logger.Info("Applied migration", "version", migration.Version, "name", migration.Name)
	}

	return nil
}
