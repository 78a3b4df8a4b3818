package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"nestflow/internal/config"
	"nestflow/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func mustDate(t *testing.T, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}

func createUser(t *testing.T, db *DB, name, role string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		Role:         role,
	}
	require.NoError(t, db.CreateUser(context.Background(), u))
	return u
}

func createProperty(t *testing.T, db *DB, hostID int64, title string, price float64) *models.Property {
	t.Helper()
	p := &models.Property{
		HostID:        hostID,
		Title:         title,
		Description:   "desc",
		PricePerNight: price,
		Location:      "Lyon",
		MaxGuests:     4,
		Amenities:     models.Amenities{"wifi"},
	}
	require.NoError(t, db.CreateProperty(context.Background(), p))
	return p
}

func createReservation(t *testing.T, db *DB, propertyID, guestID int64, start, end, status string) *models.Reservation {
	t.Helper()
	r := &models.Reservation{
		PropertyID: propertyID,
		GuestID:    guestID,
		StartDate:  mustDate(t, start),
		EndDate:    mustDate(t, end),
		TotalPrice: 100,
		Status:     status,
	}
	require.NoError(t, db.CreateReservationChecked(context.Background(), r))
	return r
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	logger := zerolog.Nop()

	db, err := NewDB(config.DatabaseConfig{Driver: config.DriverSQLite, Path: dbPath}, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
	assert.Equal(t, driverSQLite, db.Driver())
}

func TestNewDB_UnknownDriver(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewDB(config.DatabaseConfig{Driver: "oracle"}, &logger)
	assert.Error(t, err)
}

func TestNewSQLite_InMemory(t *testing.T) {
	db, err := NewSQLite(":memory:", nil)
	require.NoError(t, err)
	defer db.Close()

	u := createUser(t, db, "mem", models.RoleGuest)
	got, err := db.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "mem", got.Username)
}

func TestSchemaIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	require.NoError(t, db.createTables(context.Background()))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Contains(t, sqliteDSN("/tmp/x.db"), "_txlock=immediate")
	assert.Contains(t, sqliteDSN("/tmp/x.db"), "_foreign_keys=on")
	assert.Equal(t, "file::memory:?_busy_timeout=5000&_txlock=immediate&_foreign_keys=on", sqliteDSN(":memory:"))
}

func TestDB_ErrorPaths(t *testing.T) {
	logger := zerolog.New(io.Discard)
	db, err := NewSQLite(filepath.Join(t.TempDir(), "closed.db"), &logger)
	require.NoError(t, err)
	db.Close() // Close the DB to trigger errors

	ctx := context.Background()

	_, err = db.GetUserByID(ctx, 1)
	assert.Error(t, err)
	assert.Error(t, db.CreateProperty(ctx, &models.Property{}))
	_, err = db.ListProperties(ctx)
	assert.Error(t, err)
	_, err = db.HasConflict(ctx, 1, mustDate(t, "2024-01-01"), mustDate(t, "2024-01-02"))
	assert.Error(t, err)
	assert.Error(t, db.CreateReservationChecked(ctx, &models.Reservation{}))
	_, err = db.ListInbox(ctx, 1)
	assert.Error(t, err)
	_, err = db.GetPendingSyncTasks(ctx, 10)
	assert.Error(t, err)
}
