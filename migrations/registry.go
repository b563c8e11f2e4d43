// Package migrations exposes the embedded lookup audit schema per SQL dialect
// and registers it with a persistence client.
package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	cryptoproviders "github.com/goliatone/go-cryptoproviders"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	defaultSourceLabel = "go-cryptoproviders"
	migrationsDir      = "data/sql/migrations"
)

// dialectDirs maps each dialect to its directory below migrationsDir.
var dialectDirs = []struct {
	dialect string
	dir     string
}{
	{dialect: DialectPostgres, dir: "."},
	{dialect: DialectSQLite, dir: "sqlite"},
}

type FilesystemSpec struct {
	Dialect string
	Path    string
	FS      fs.FS
}

type Registration struct {
	SourceLabel       string
	ValidationTargets []string
	Filesystems       []FilesystemSpec
}

type RegisterFunc func(ctx context.Context, dialect string, sourceLabel string, fsys fs.FS) error

type Option func(*Registration)

func WithDialectSourceLabel(label string) Option {
	return func(r *Registration) {
		if label = strings.TrimSpace(label); label != "" {
			r.SourceLabel = label
		}
	}
}

func WithValidationTargets(targets ...string) Option {
	return func(r *Registration) {
		if next := normalizeDialects(targets); len(next) > 0 {
			r.ValidationTargets = next
		}
	}
}

func WithFilesystems(filesystems ...FilesystemSpec) Option {
	return func(r *Registration) {
		kept := make([]FilesystemSpec, 0, len(filesystems))
		for _, source := range filesystems {
			source.Dialect = normalizeDialect(source.Dialect)
			if source.Dialect == "" || source.FS == nil {
				continue
			}
			kept = append(kept, source)
		}
		if len(kept) > 0 {
			r.Filesystems = kept
		}
	}
}

// DialectForDriver maps a database/sql driver name to the migration dialect
// that carries its schema.
func DialectForDriver(driver string) (string, error) {
	switch normalizeDialect(driver) {
	case "postgres", "postgresql", "pg", "pgx":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("migrations: no schema for driver %q", driver)
	}
}

// Filesystems returns one filesystem per dialect. The embedded tree is used
// unless a source is given. Every dialect must carry at least one *.up.sql.
func Filesystems(sources ...fs.FS) ([]FilesystemSpec, error) {
	root := cryptoproviders.GetMigrationsFS()
	if len(sources) > 0 && sources[0] != nil {
		root = sources[0]
	}
	base, basePath, err := locateMigrations(root)
	if err != nil {
		return nil, err
	}

	out := make([]FilesystemSpec, 0, len(dialectDirs))
	for _, entry := range dialectDirs {
		source := FilesystemSpec{Dialect: entry.dialect, Path: basePath, FS: base}
		if entry.dir != "." {
			sub, subErr := fs.Sub(base, entry.dir)
			if subErr != nil {
				return nil, fmt.Errorf("migrations: resolve %s filesystem: %w", entry.dialect, subErr)
			}
			source.FS = sub
			source.Path = joinPath(basePath, entry.dir)
		}
		ups, globErr := fs.Glob(source.FS, "*.up.sql")
		if globErr != nil {
			return nil, fmt.Errorf("migrations: glob %s %s: %w", source.Dialect, source.Path, globErr)
		}
		if len(ups) == 0 {
			return nil, fmt.Errorf("migrations: %s filesystem %q has no *.up.sql files", source.Dialect, source.Path)
		}
		out = append(out, source)
	}
	return out, nil
}

// Register calls registerFn once for every filesystem whose dialect is a
// validation target.
func Register(ctx context.Context, registerFn RegisterFunc, opts ...Option) (Registration, error) {
	reg := Registration{
		SourceLabel:       defaultSourceLabel,
		ValidationTargets: []string{DialectPostgres, DialectSQLite},
	}
	filesystems, err := Filesystems()
	if err != nil {
		return reg, err
	}
	reg.Filesystems = filesystems
	for _, opt := range opts {
		if opt != nil {
			opt(&reg)
		}
	}

	switch {
	case registerFn == nil:
		return reg, fmt.Errorf("migrations: register function is required")
	case len(reg.ValidationTargets) == 0:
		return reg, fmt.Errorf("migrations: validation targets are required")
	case len(reg.Filesystems) == 0:
		return reg, fmt.Errorf("migrations: filesystems are required")
	}

	for _, source := range reg.Filesystems {
		if !slices.Contains(reg.ValidationTargets, source.Dialect) {
			continue
		}
		if err := registerFn(ctx, source.Dialect, reg.SourceLabel, source.FS); err != nil {
			return reg, fmt.Errorf("migrations: register %s (%s): %w", source.Dialect, source.Path, err)
		}
	}
	return reg, nil
}

// RegisterForDriver hands the schema matching driver to apply, typically a
// closure over persistence.Client.RegisterSQLMigrations. Callers still run
// Migrate.
func RegisterForDriver(ctx context.Context, driver string, apply func(fs.FS)) error {
	if apply == nil {
		return fmt.Errorf("migrations: apply function is required")
	}
	dialect, err := DialectForDriver(driver)
	if err != nil {
		return err
	}
	_, err = Register(ctx, func(_ context.Context, _ string, _ string, fsys fs.FS) error {
		apply(fsys)
		return nil
	}, WithValidationTargets(dialect))
	return err
}

func locateMigrations(root fs.FS) (fs.FS, string, error) {
	if sub, err := fs.Sub(root, migrationsDir); err == nil {
		if _, statErr := fs.Stat(sub, "."); statErr == nil {
			return sub, migrationsDir, nil
		}
	}
	if ups, err := fs.Glob(root, "*.up.sql"); err == nil && len(ups) > 0 {
		return root, ".", nil
	}
	return nil, "", fmt.Errorf("migrations: %s not found", migrationsDir)
}

func normalizeDialect(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func normalizeDialects(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if value = normalizeDialect(value); value != "" && !slices.Contains(out, value) {
			out = append(out, value)
		}
	}
	return out
}

func joinPath(base string, dir string) string {
	if base == "." {
		return dir
	}
	return strings.TrimSuffix(base, "/") + "/" + dir
}
