package database

import (
	"context"
	"testing"

	"nestflow/internal/domain"
	"nestflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservations_OverlapRules(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	host := createUser(t, db, "host", models.RoleHost)
	guest := createUser(t, db, "guest", models.RoleGuest)
	p := createProperty(t, db, host.ID, "Studio", 80)

	existing := createReservation(t, db, p.ID, guest.ID, "2024-01-10", "2024-01-15", models.StatusPending)
	assert.NotZero(t, existing.ID)

	tests := []struct {
		name       string
		start, end string
		wantErr    error
	}{
		{"BackToBackAfter", "2024-01-15", "2024-01-20", nil},
		{"BackToBackBefore", "2024-01-05", "2024-01-10", nil},
		{"PartialOverlap", "2024-01-12", "2024-01-18", domain.ErrDateRangeUnavailable},
		{"Contained", "2024-01-11", "2024-01-12", domain.ErrDateRangeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflict, err := db.HasConflict(ctx, p.ID, mustDate(t, tt.start), mustDate(t, tt.end))
			require.NoError(t, err)
			assert.Equal(t, tt.wantErr != nil, conflict)

			r := &models.Reservation{
				PropertyID: p.ID,
				GuestID:    guest.ID,
				StartDate:  mustDate(t, tt.start),
				EndDate:    mustDate(t, tt.end),
				TotalPrice: 1,
			}
			err = db.CreateReservationChecked(ctx, r)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.StatusPending, r.Status)
		})
	}
}

func TestReservations_CancelledFreesRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	host := createUser(t, db, "host", models.RoleHost)
	guest := createUser(t, db, "guest", models.RoleGuest)
	p := createProperty(t, db, host.ID, "Studio", 80)

	r := createReservation(t, db, p.ID, guest.ID, "2024-03-01", "2024-03-05", models.StatusPending)
	require.NoError(t, db.UpdateReservationStatus(ctx, r.ID, models.StatusPending, models.StatusCancelled))

	createReservation(t, db, p.ID, guest.ID, "2024-03-02", "2024-03-04", models.StatusPending)
}

func TestReservations_StatusUpdateIsConditional(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	host := createUser(t, db, "host", models.RoleHost)
	guest := createUser(t, db, "guest", models.RoleGuest)
	p := createProperty(t, db, host.ID, "Studio", 80)
	r := createReservation(t, db, p.ID, guest.ID, "2024-03-01", "2024-03-05", models.StatusPending)

	require.NoError(t, db.UpdateReservationStatus(ctx, r.ID, models.StatusPending, models.StatusConfirmed))

	err := db.UpdateReservationStatus(ctx, r.ID, models.StatusPending, models.StatusCancelled)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	got, err := db.GetReservation(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Equal(t, "2024-03-01", got.StartDate.String())
	assert.Equal(t, "2024-03-05", got.EndDate.String())

	_, err = db.GetReservation(ctx, 9999)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestReservations_Listings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	host := createUser(t, db, "host", models.RoleHost)
	guest := createUser(t, db, "guest", models.RoleGuest)
	p := createProperty(t, db, host.ID, "Studio", 80)
	_, err := db.AddPropertyImages(ctx, p.ID, []string{"cover.jpg"})
	require.NoError(t, err)

	first := createReservation(t, db, p.ID, guest.ID, "2024-03-01", "2024-03-05", models.StatusPending)
	second := createReservation(t, db, p.ID, guest.ID, "2024-04-01", "2024-04-05", models.StatusPending)

	trips, err := db.ListGuestTrips(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, second.ID, trips[0].ID, "latest start date first")
	assert.Equal(t, "Studio", trips[0].Title)
	assert.Equal(t, "Lyon", trips[0].Location)
	require.NotNil(t, trips[0].ImageURL)
	assert.Equal(t, "cover.jpg", *trips[0].ImageURL)

	managed, err := db.ListHostReservations(ctx, host.ID)
	require.NoError(t, err)
	require.Len(t, managed, 2)
	assert.Equal(t, second.ID, managed[0].ID, "newest first")
	assert.Equal(t, first.ID, managed[1].ID)
	assert.Equal(t, "Studio", managed[0].PropertyTitle)
	assert.Equal(t, "guest", managed[0].GuestName)
	assert.Equal(t, "guest@example.com", managed[0].GuestEmail)

	none, err := db.ListHostReservations(ctx, guest.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
