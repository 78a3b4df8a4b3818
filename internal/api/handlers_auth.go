package api

import (
	"net/http"

	"nestflow/internal/models"
)

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	session, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password, req.Role)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	session, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *HTTPServer) handleUpdateProfile(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	var req profileRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	updated, err := s.users.UpdateProfile(r.Context(), user, req.Username, req.Email, req.Bio)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *HTTPServer) handleUpdateAvatar(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	var req avatarRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	updated, err := s.users.UpdateAvatar(r.Context(), user, req.AvatarURL)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
