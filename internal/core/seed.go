package core

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/shabtzak/shell/internal/fileutil"

	// Register the pure-Go SQLite driver (no CGO required).
	_ "modernc.org/sqlite"
)

// DatabaseURL returns the SQLAlchemy-style URL for dbPath. Backslashes
// become forward slashes so Windows paths survive the URL form.
func DatabaseURL(dbPath string) string {
	return "sqlite:///" + strings.ReplaceAll(dbPath, `\`, "/")
}

// SeedDatabase copies seedPath to dbPath when dbPath does not exist yet.
// An existing database is never touched. A missing seed is not an error;
// seeded reports whether a copy happened.
//
// After a copy the new database is checked with PRAGMA quick_check. A failed
// check is logged, not returned: the backend may still be able to repair or
// recreate the file.
func SeedDatabase(ctx context.Context, dbPath, seedPath string, log *slog.Logger) (seeded bool, err error) {
	if seedPath == "" {
		return false, nil
	}
	exists, err := fileutil.Exists(dbPath)
	if err != nil {
		return false, fmt.Errorf("check database: %w", err)
	}
	if exists {
		log.Debug("database present, not seeding", "db", dbPath)
		return false, nil
	}
	seedExists, err := fileutil.Exists(seedPath)
	if err != nil {
		return false, fmt.Errorf("check bundled database: %w", err)
	}
	if !seedExists {
		log.Info("no bundled database; backend will create an empty one", "seed", seedPath)
		return false, nil
	}

	mode := os.FileMode(0o644)
	err = fileutil.CopyFile(seedPath, dbPath, &fileutil.CopyFileOptions{
		Mode:      &mode,
		Sync:      true,
		Atomic:    true,
		NoClobber: true,
	})
	if errors.Is(err, fileutil.ErrDstExists) {
		// Someone created it between the check and the copy; theirs stands.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("copy bundled database from %s to %s: %w", seedPath, dbPath, err)
	}
	log.Info("initialized database from bundle", "db", dbPath)

	if err := checkDatabase(ctx, dbPath); err != nil {
		log.Warn("seeded database failed integrity check", "db", dbPath, "error", err)
	}
	return true, nil
}

// checkDatabase opens dbPath read-only and runs PRAGMA quick_check.
func checkDatabase(ctx context.Context, dbPath string) (retErr error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && retErr == nil {
			retErr = fmt.Errorf("close sqlite %s: %w", dbPath, closeErr)
		}
	}()
	db.SetMaxOpenConns(1)

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA quick_check").Scan(&result); err != nil {
		return fmt.Errorf("quick_check %s: %w", dbPath, err)
	}
	if result != "ok" {
		return fmt.Errorf("quick_check %s: %s", dbPath, result)
	}
	return nil
}
