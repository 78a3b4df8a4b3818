package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nestflow/internal/config"

	"github.com/rs/zerolog"
)

const (
	snapshotPrefix = "nestflow_"
	snapshotExt    = ".db"
	snapshotLayout = "20060102_150405"
)

// BackupService snapshots a SQLite store on a schedule. Postgres
// deployments rely on their own tooling and never start it.
type BackupService struct {
	db     *DB
	dbPath string
	config config.BackupConfig
	now    func() time.Time
	logger *zerolog.Logger
}

func NewBackupService(db *DB, dbPath string, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &BackupService{
		db:     db,
		dbPath: dbPath,
		config: cfg,
		now:    time.Now,
		logger: logger,
	}
}

func (s *BackupService) enabled() bool {
	return s.config.Enabled && s.db.Driver() == driverSQLite && s.dbPath != "" && s.dbPath != ":memory:"
}

func (s *BackupService) interval() time.Duration {
	if s.config.Schedule == "" {
		return 24 * time.Hour
	}
	d, err := time.ParseDuration(s.config.Schedule)
	if err != nil || d <= 0 {
		s.logger.Warn().Err(err).Str("schedule", s.config.Schedule).Msg("Bad backup schedule, using 24h")
		return 24 * time.Hour
	}
	return d
}

// Start snapshots once immediately and then on every tick until ctx ends.
func (s *BackupService) Start(ctx context.Context) {
	if !s.enabled() {
		s.logger.Info().Msg("Backup service is disabled")
		return
	}

	every := s.interval()
	s.logger.Info().Dur("every", every).Int("retention_days", s.config.RetentionDays).Msg("Backup service started")

	s.runOnce(ctx)

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *BackupService) runOnce(ctx context.Context) {
	if _, err := s.PerformBackup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Backup failed")
	}
	if removed := s.CleanupOldBackups(); removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("Old backups removed")
	}
}

// PerformBackup writes a consistent snapshot through the live pool and
// returns its path.
func (s *BackupService) PerformBackup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	target := filepath.Join(s.config.StoragePath, snapshotPrefix+s.now().UTC().Format(snapshotLayout)+snapshotExt)

	// VACUUM INTO не блокирует читателей
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, target); err != nil {
		s.logger.Warn().Err(err).Str("path", target).Msg("VACUUM INTO failed, copying the file instead")
		if err := copyFile(s.dbPath, target); err != nil {
			return "", fmt.Errorf("failed to copy database: %w", err)
		}
	}

	s.logger.Info().Str("path", target).Msg("Backup written")
	return target, nil
}

// copyFile is not a consistent snapshot under concurrent writes.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// CleanupOldBackups removes snapshots older than the retention window. Files
// this service did not write are left alone.
func (s *BackupService) CleanupOldBackups() int {
	if s.config.RetentionDays <= 0 {
		return 0
	}

	entries, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read backup directory")
		return 0
	}

	cutoff := s.now().AddDate(0, 0, -s.config.RetentionDays)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.config.StoragePath, name)); err != nil {
			s.logger.Warn().Err(err).Str("file", name).Msg("Failed to remove old backup")
			continue
		}
		removed++
	}
	return removed
}
