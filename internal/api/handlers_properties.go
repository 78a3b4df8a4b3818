package api

import (
	"net/http"

	"nestflow/internal/models"
)

func (s *HTTPServer) handleListProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := s.properties.ListProperties(r.Context())
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	if properties == nil {
		properties = []*models.PropertySummary{}
	}
	writeJSON(w, http.StatusOK, properties)
}

func (s *HTTPServer) handleCreateProperty(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	var req propertyRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	created, err := s.properties.CreateProperty(r.Context(), user, req.toModel(0))
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	details, err := s.properties.GetProperty(r.Context(), id)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *HTTPServer) handleUpdateProperty(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	var req propertyRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	updated, err := s.properties.UpdateProperty(r.Context(), user, req.toModel(id))
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *HTTPServer) handleDeleteProperty(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	if err := s.properties.DeleteProperty(r.Context(), user, id); err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "property deleted"})
}

func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	start, end, err := parseRange(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	availability, err := s.reservations.CheckAvailability(r.Context(), id, start, end)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, availability)
}

func (s *HTTPServer) handleAddImages(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	var req imagesRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	images, err := s.properties.AddImages(r.Context(), user, id, req.ImageURLs)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, images)
}

func (s *HTTPServer) handleDeleteImage(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	id, err := pathID(r, "imageId")
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	if err := s.properties.DeleteImage(r.Context(), user, id); err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "image deleted"})
}

func (s *HTTPServer) handleHostStats(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	stats, err := s.properties.GetHostStats(r.Context(), user)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
