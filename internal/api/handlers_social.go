package api

import (
	"net/http"

	"nestflow/internal/models"
)

func (s *HTTPServer) handleCreateReview(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	var req reviewRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	review, err := s.reviews.CreateReview(r.Context(), user, req.PropertyID, req.Rating, req.Comment)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (s *HTTPServer) handleListReviews(w http.ResponseWriter, r *http.Request) {
	propertyID, err := pathID(r, "propertyId")
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	reviews, err := s.reviews.ListReviews(r.Context(), propertyID)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	if reviews == nil {
		reviews = []*models.ReviewDetails{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (s *HTTPServer) handleSendMessage(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	var req messageRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	msg, err := s.messages.SendMessage(r.Context(), user, req.ReceiverID, req.PropertyID, req.Content)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *HTTPServer) handleInbox(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	inbox, err := s.messages.GetInbox(r.Context(), user)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	if inbox == nil {
		inbox = []*models.Conversation{}
	}
	writeJSON(w, http.StatusOK, inbox)
}

func (s *HTTPServer) handleChat(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	propertyID, contactID, ok := s.conversationIDs(w, r)
	if !ok {
		return
	}

	chat, err := s.messages.GetChat(r.Context(), user, propertyID, contactID)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	if chat == nil {
		chat = []*models.Message{}
	}
	writeJSON(w, http.StatusOK, chat)
}

func (s *HTTPServer) handleMarkRead(w http.ResponseWriter, r *http.Request, user models.AuthenticatedUser) {
	propertyID, contactID, ok := s.conversationIDs(w, r)
	if !ok {
		return
	}

	if err := s.messages.MarkAsRead(r.Context(), user, propertyID, contactID); err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "messages marked as read"})
}

func (s *HTTPServer) conversationIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	propertyID, err := pathID(r, "propertyId")
	if err != nil {
		respondError(w, r, s.logger, err)
		return 0, 0, false
	}
	contactID, err := pathID(r, "contactId")
	if err != nil {
		respondError(w, r, s.logger, err)
		return 0, 0, false
	}
	return propertyID, contactID, true
}
