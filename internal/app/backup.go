package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const backupTimeLayout = "20060102-150405"

var errInMemoryBackup = errors.New("cannot backup in-memory database")

// sqliteFile extracts the database file path from a SQLite DSN / Extrait le chemin du fichier depuis le DSN
func sqliteFile(dsn string) (string, error) {
	name := strings.TrimPrefix(dsn, "file:")
	if idx := strings.Index(name, "?"); idx >= 0 {
		name = name[:idx]
	}
	if name == "" || name == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return "", errInMemoryBackup
	}
	return name, nil
}

// performBackup creates database backup / Crée un backup de la base de données
func (c *Container) performBackup(ctx context.Context) (string, error) {
	// Create backup directory if not exists / Crée le répertoire de backup s'il n'existe pas
	if err := os.MkdirAll(c.Config.Backup.Path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	dbName, err := sqliteFile(c.Config.Database.DSN)
	if err != nil {
		return "", err
	}

	// Generate backup filename with timestamp / Génère le nom du fichier avec horodatage
	timestamp := time.Now().Format(backupTimeLayout)
	backupFilename := fmt.Sprintf("%s.backup-%s.db", filepath.Base(dbName), timestamp)
	backupPath := filepath.Join(c.Config.Backup.Path, backupFilename)

	// VACUUM INTO takes a literal, not a bind parameter
	query := "VACUUM INTO '" + strings.ReplaceAll(backupPath, "'", "''") + "'"
	if _, err := c.DB.ExecContext(ctx, query); err != nil {
		return "", fmt.Errorf("backup execution failed: %w", err)
	}

	slog.Info("database backup created", "path", backupPath)
	return backupPath, nil
}

// cleanOldBackups removes old backups / Supprime les anciens backups
func (c *Container) cleanOldBackups() error {
	if c.Config.Backup.RetentionDays <= 0 {
		return nil // No cleanup if retention is 0 or negative / Pas de nettoyage si rétention <= 0
	}

	cutoffTime := time.Now().AddDate(0, 0, -c.Config.Backup.RetentionDays)

	entries, err := os.ReadDir(c.Config.Backup.Path)
	if err != nil {
		return fmt.Errorf("failed to read backup directory: %w", err)
	}

	deletedCount := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		// Only delete .backup-*.db files / Ne supprime que les fichiers .backup-*.db
		if !strings.Contains(entry.Name(), ".backup-") || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			slog.Warn("failed to stat backup", "file", entry.Name(), "error", err)
			continue
		}

		if info.ModTime().Before(cutoffTime) {
			backupPath := filepath.Join(c.Config.Backup.Path, entry.Name())
			if err := os.Remove(backupPath); err != nil {
				slog.Warn("failed to delete old backup", "file", entry.Name(), "error", err)
				continue
			}
			deletedCount++
			slog.Info("deleted old backup", "file", entry.Name(),
				"age_days", int(time.Since(info.ModTime()).Hours()/24))
		}
	}

	if deletedCount > 0 {
		slog.Info("cleaned up old backups", "count", deletedCount)
	}

	return nil
}
