package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"nestflow/internal/export"
	"nestflow/internal/models"
)

func (s *HTTPServer) handleCreateReservation(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	var req reservationRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	reservation, err := s.reservations.CreateReservation(r.Context(), user, req.PropertyID, start, end)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservationResponse{Message: "Reservation created", Reservation: reservation})
}

func (s *HTTPServer) handleUpdateStatus(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	var req statusRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	reservation, err := s.reservations.UpdateStatus(r.Context(), user, id, req.Status)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reservationResponse{Message: "Reservation status updated", Reservation: reservation})
}

func (s *HTTPServer) handleMyTrips(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	trips, err := s.reservations.GetMyTrips(r.Context(), user)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	if trips == nil {
		trips = []*models.Trip{}
	}
	writeJSON(w, http.StatusOK, trips)
}

func (s *HTTPServer) handleHostReservations(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	reservations, err := s.reservations.GetHostReservations(r.Context(), user)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	if reservations == nil {
		reservations = []*models.HostReservation{}
	}
	writeJSON(w, http.StatusOK, reservations)
}

// handleExportReservations streams the host's reservations as XLSX.
func (s *HTTPServer) handleExportReservations(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	reservations, err := s.reservations.GetHostReservations(r.Context(), user)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	now := time.Now()
	var buf bytes.Buffer
	if err := export.WriteHostReservations(&buf, reservations, now); err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(user.ID, now)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
