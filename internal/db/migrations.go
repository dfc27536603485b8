package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	embeddedmigrations "github.com/terraincognita07/cyclesense/migrations"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	migrationFileName = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.sql$`)
	addColumnPattern  = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+(\S+)\s+ADD\s+COLUMN\s+(\S+)`)
)

type schemaMigration struct {
	Version    int
	Name       string
	Checksum   string
	statements []string
}

// AppliedMigration is a row of the schema_migrations bookkeeping table.
type AppliedMigration struct {
	Version   int       `gorm:"column:version" json:"version"`
	Name      string    `gorm:"column:name" json:"name"`
	Checksum  string    `gorm:"column:checksum" json:"checksum"`
	AppliedAt time.Time `gorm:"column:applied_at" json:"applied_at"`
}

// Migrate applies every embedded migration that is not yet recorded and
// returns the names it applied, oldest first.
func Migrate(ctx context.Context, database *gorm.DB, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	database = database.WithContext(ctx)

	if err := database.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  checksum TEXT NOT NULL DEFAULT '',
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`).Error; err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	pending, err := readMigrations(embeddedmigrations.Files)
	if err != nil {
		return nil, err
	}

	applied, err := AppliedMigrations(ctx, database)
	if err != nil {
		return nil, err
	}
	recorded := make(map[int]AppliedMigration, len(applied))
	for _, row := range applied {
		recorded[row.Version] = row
	}

	names := make([]string, 0, len(pending))
	for _, migration := range pending {
		if row, ok := recorded[migration.Version]; ok {
			if row.Checksum != "" && row.Checksum != migration.Checksum {
				logger.Warn("applied migration differs from embedded copy",
					zap.Int("version", migration.Version),
					zap.String("name", migration.Name),
				)
			}
			continue
		}

		if err := database.Transaction(func(tx *gorm.DB) error {
			return runMigration(tx, migration)
		}); err != nil {
			return names, err
		}
		logger.Info("applied migration", zap.Int("version", migration.Version), zap.String("name", migration.Name))
		names = append(names, migration.Name)
	}

	return names, nil
}

func AppliedMigrations(ctx context.Context, database *gorm.DB) ([]AppliedMigration, error) {
	rows := make([]AppliedMigration, 0)
	if err := database.WithContext(ctx).
		Raw(`SELECT version, name, checksum, applied_at FROM schema_migrations ORDER BY version ASC`).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load schema_migrations: %w", err)
	}
	return rows, nil
}

func readMigrations(files fs.FS) ([]schemaMigration, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	migrations := make([]schemaMigration, 0, len(entries))
	byVersion := make(map[int]string, len(entries))
	for _, entry := range entries {
		matches := migrationFileName.FindStringSubmatch(entry.Name())
		if entry.IsDir() || matches == nil {
			continue
		}

		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("migration %s: bad version: %w", entry.Name(), err)
		}
		if previous, taken := byVersion[version]; taken {
			return nil, fmt.Errorf("migration version %d used by %s and %s", version, previous, entry.Name())
		}
		byVersion[version] = entry.Name()

		body, err := fs.ReadFile(files, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		statements := splitStatements(string(body))
		if len(statements) == 0 {
			return nil, fmt.Errorf("migration %s has no statements", entry.Name())
		}

		sum := sha256.Sum256(body)
		migrations = append(migrations, schemaMigration{
			Version:    version,
			Name:       entry.Name(),
			Checksum:   hex.EncodeToString(sum[:]),
			statements: statements,
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func runMigration(tx *gorm.DB, migration schemaMigration) error {
	for _, statement := range migration.statements {
		// SQLite has no ADD COLUMN IF NOT EXISTS.
		if matches := addColumnPattern.FindStringSubmatch(statement); matches != nil {
			present, err := tableColumnExists(tx, unquoteIdentifier(matches[1]), unquoteIdentifier(matches[2]))
			if err != nil {
				return fmt.Errorf("migration %s: %w", migration.Name, err)
			}
			if present {
				continue
			}
		}

		if err := tx.Exec(statement).Error; err != nil {
			return fmt.Errorf("migration %s: %w", migration.Name, err)
		}
	}

	if err := tx.Exec(
		`INSERT INTO schema_migrations(version, name, checksum) VALUES (?, ?, ?)`,
		migration.Version, migration.Name, migration.Checksum,
	).Error; err != nil {
		return fmt.Errorf("record migration %s: %w", migration.Name, err)
	}
	return nil
}

func splitStatements(body string) []string {
	statements := make([]string, 0)
	for _, part := range strings.Split(body, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

func tableColumnExists(database *gorm.DB, table string, column string) (bool, error) {
	var names []string
	if err := database.Raw(`SELECT name FROM pragma_table_info(?)`, table).Scan(&names).Error; err != nil {
		return false, fmt.Errorf("inspect table %s: %w", table, err)
	}
	for _, name := range names {
		if strings.EqualFold(name, column) {
			return true, nil
		}
	}
	return false, nil
}

func unquoteIdentifier(identifier string) string {
	return strings.Trim(identifier, "\"`[]")
}
