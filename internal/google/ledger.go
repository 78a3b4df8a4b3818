package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"nestflow/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	sheetName  = "Reservations"
	lastColumn = "I"
	timeLayout = "2006-01-02 15:04:05"
)

var errRowNotFound = errors.New("reservation row not found")

var headerRow = []interface{}{"ID", "Property ID", "Guest ID", "Start Date", "End Date", "Total Price", "Status", "Created At", "Updated At"}

// SheetsLedger mirrors reservations into a spreadsheet, one row per reservation.
type SheetsLedger struct {
	service       *sheets.Service
	spreadsheetID string
	rowCache      map[int64]int
	cacheMu       sync.RWMutex
	now           func() time.Time
	logger        *zerolog.Logger
}

// NewSheetsLedger authenticates with a service account file.
func NewSheetsLedger(ctx context.Context, credentialsFile, spreadsheetID string, logger *zerolog.Logger) (*SheetsLedger, error) {
	// Читаем файл учетных данных сервисного аккаунта
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	cfg, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}

	return NewSheetsLedgerWithService(srv, spreadsheetID, logger), nil
}

// NewSheetsLedgerWithService wraps an already configured client.
func NewSheetsLedgerWithService(srv *sheets.Service, spreadsheetID string, logger *zerolog.Logger) *SheetsLedger {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &SheetsLedger{
		service:       srv,
		spreadsheetID: spreadsheetID,
		rowCache:      make(map[int64]int),
		now:           time.Now,
		logger:        logger,
	}
}

// TestConnection reads the header cell.
func (s *SheetsLedger) TestConnection(ctx context.Context) error {
	_, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, sheetName+"!A1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	return nil
}

// EnsureHeader writes the column titles into row 1.
func (s *SheetsLedger) EnsureHeader(ctx context.Context) error {
	rangeData := fmt.Sprintf("%s!A1:%s1", sheetName, lastColumn)
	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, &sheets.ValueRange{
		Values: [][]interface{}{headerRow},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// WarmUpCache rebuilds the row index from column A.
func (s *SheetsLedger) WarmUpCache(ctx context.Context) error {
	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, sheetName+"!A:A").Context(ctx).Do()
	if err != nil {
		return err
	}

	cache := make(map[int64]int, len(resp.Values))
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if id, ok := cellID(row[0]); ok {
			cache[id] = i + 1
		}
	}

	s.cacheMu.Lock()
	s.rowCache = cache
	s.cacheMu.Unlock()
	s.logger.Debug().Int("rows", len(cache)).Msg("Ledger row cache warmed up")
	return nil
}

// UpsertReservation updates the reservation row or appends a new one.
func (s *SheetsLedger) UpsertReservation(ctx context.Context, r *models.Reservation) error {
	if r == nil {
		return errors.New("reservation is nil")
	}

	rowIdx, err := s.FindReservationRow(ctx, r.ID)
	if errors.Is(err, errRowNotFound) {
		return s.appendReservation(ctx, r)
	}
	if err != nil {
		return err
	}

	rangeData := fmt.Sprintf("%s!A%d:%s%d", sheetName, rowIdx, lastColumn, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, &sheets.ValueRange{
		Values: [][]interface{}{s.rowValues(r)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// UpdateReservationStatus rewrites the status and updated-at cells.
func (s *SheetsLedger) UpdateReservationStatus(ctx context.Context, reservationID int64, status string) error {
	rowIdx, err := s.FindReservationRow(ctx, reservationID)
	if err != nil {
		return err
	}

	rangeData := fmt.Sprintf("%s!G%d:%s%d", sheetName, rowIdx, lastColumn, rowIdx)
	_, err = s.service.Spreadsheets.Values.Update(s.spreadsheetID, rangeData, &sheets.ValueRange{
		Values: [][]interface{}{{status, nil, s.now().UTC().Format(timeLayout)}},
	}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// FindReservationRow returns the 1-based row of a reservation.
func (s *SheetsLedger) FindReservationRow(ctx context.Context, reservationID int64) (int, error) {
	if reservationID == 0 {
		return 0, errors.New("reservation id is required")
	}

	if row, ok := s.getCachedRow(reservationID); ok {
		return row, nil
	}

	resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, sheetName+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, err
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if id, ok := cellID(row[0]); ok && id == reservationID {
			s.setCachedRow(reservationID, i+1)
			return i + 1, nil
		}
	}
	return 0, errRowNotFound
}

// ClearCache drops the row index.
func (s *SheetsLedger) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache = make(map[int64]int)
}

func (s *SheetsLedger) appendReservation(ctx context.Context, r *models.Reservation) error {
	resp, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, sheetName+"!A:A", &sheets.ValueRange{
		Values: [][]interface{}{s.rowValues(r)},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return err
	}

	if resp.Updates != nil {
		if row, ok := rowFromRange(resp.Updates.UpdatedRange); ok {
			s.setCachedRow(r.ID, row)
		}
	}
	return nil
}

func (s *SheetsLedger) rowValues(r *models.Reservation) []interface{} {
	return []interface{}{
		r.ID,
		r.PropertyID,
		r.GuestID,
		r.StartDate.String(),
		r.EndDate.String(),
		r.TotalPrice,
		r.Status,
		r.CreatedAt.UTC().Format(timeLayout),
		s.now().UTC().Format(timeLayout),
	}
}

func (s *SheetsLedger) getCachedRow(id int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[id]
	return row, ok
}

func (s *SheetsLedger) setCachedRow(id int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[id] = row
}

// cellID понимает и числа, и строки в колонке ID
func cellID(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case float64:
		return int64(val), val > 0
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		return id, err == nil && id > 0
	default:
		return 0, false
	}
}

// rowFromRange extracts the first row number from "Sheet!A10:I10".
func rowFromRange(a1 string) (int, bool) {
	if idx := strings.LastIndex(a1, "!"); idx >= 0 {
		a1 = a1[idx+1:]
	}
	if idx := strings.Index(a1, ":"); idx >= 0 {
		a1 = a1[:idx]
	}
	digits := strings.TrimLeft(a1, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	row, err := strconv.Atoi(digits)
	if err != nil || row <= 0 {
		return 0, false
	}
	return row, true
}
