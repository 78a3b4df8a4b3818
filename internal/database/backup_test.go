package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nestflow/internal/config"
	"nestflow/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupService(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "source.db")
	storagePath := filepath.Join(dir, "backups")

	logger := zerolog.Nop()
	db, err := NewSQLite(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()
	createUser(t, db, "keeper", models.RoleHost)

	cfg := config.BackupConfig{
		Enabled:       true,
		StoragePath:   storagePath,
		RetentionDays: 1,
	}
	s := NewBackupService(db, dbPath, cfg, &logger)
	s.now = func() time.Time { return time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC) }

	t.Run("PerformBackup", func(t *testing.T) {
		path, err := s.PerformBackup(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "nestflow_20300102_030405.db", filepath.Base(path))

		restored, err := NewSQLite(path, &logger)
		require.NoError(t, err)
		defer restored.Close()
		u, err := restored.GetUserByEmail(context.Background(), "keeper@example.com")
		require.NoError(t, err)
		assert.Equal(t, "keeper", u.Username)
	})

	t.Run("CleanupOldBackups", func(t *testing.T) {
		oldSnapshot := filepath.Join(storagePath, "nestflow_20291201_000000.db")
		foreign := filepath.Join(storagePath, "notes.txt")
		require.NoError(t, os.WriteFile(oldSnapshot, []byte("old"), 0o644))
		require.NoError(t, os.WriteFile(foreign, []byte("keep"), 0o644))

		// реальные часы: свежий снимок из PerformBackup должен остаться
		cleaner := NewBackupService(db, dbPath, cfg, &logger)
		oldTime := time.Now().AddDate(0, 0, -2)
		require.NoError(t, os.Chtimes(oldSnapshot, oldTime, oldTime))
		require.NoError(t, os.Chtimes(foreign, oldTime, oldTime))

		assert.Equal(t, 1, cleaner.CleanupOldBackups())

		_, err := os.Stat(oldSnapshot)
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(foreign)
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(storagePath, "nestflow_20300102_030405.db"))
		assert.NoError(t, err)
	})

	t.Run("DisabledDoesNotRun", func(t *testing.T) {
		off := NewBackupService(db, dbPath, config.BackupConfig{StoragePath: filepath.Join(dir, "off")}, &logger)
		off.Start(context.Background())
		_, err := os.Stat(filepath.Join(dir, "off"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("BadScheduleFallsBack", func(t *testing.T) {
		bad := NewBackupService(db, dbPath, config.BackupConfig{Schedule: "nightly"}, &logger)
		assert.Equal(t, 24*time.Hour, bad.interval())
	})
}
