package export

import (
	"bytes"
	"testing"
	"time"

	"nestflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteHostReservations(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	reservations := []*models.HostReservation{
		{
			Reservation: models.Reservation{
				ID:         11,
				PropertyID: 2,
				GuestID:    5,
				StartDate:  models.NewDate(time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)),
				EndDate:    models.NewDate(time.Date(2026, 4, 13, 0, 0, 0, 0, time.UTC)),
				TotalPrice: 450.5,
				Status:     models.StatusConfirmed,
				CreatedAt:  created,
			},
			PropertyTitle: "Loft",
			GuestName:     "alice",
			GuestEmail:    "alice@example.com",
		},
		{
			Reservation: models.Reservation{
				ID:        12,
				StartDate: models.NewDate(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)),
				EndDate:   models.NewDate(time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)),
				Status:    models.StatusPending,
				CreatedAt: created,
			},
			PropertyTitle: "Cabin",
			GuestName:     "bob",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteHostReservations(&buf, reservations, created))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, headers, rows[1])
	assert.Equal(t, []string{"11", "Loft", "alice", "alice@example.com", "2026-04-10", "2026-04-13", "3", "450.5", "confirmed", "2026-03-01 09:30"}, rows[2])
	assert.Equal(t, "Cabin", rows[3][1])
	assert.Equal(t, "1", rows[3][6])
}

func TestWriteHostReservationsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHostReservations(&buf, nil, time.Now()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestFileName(t *testing.T) {
	name := FileName(7, time.Date(2026, 1, 2, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, "reservations_host7_2026-01-02.xlsx", name)
}
