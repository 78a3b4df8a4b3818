package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nestflow/internal/domain"
	"nestflow/internal/models"

	"github.com/rs/zerolog"
)

type MessageService struct {
	messages   domain.MessageRepository
	properties domain.PropertyRepository
	users      domain.UserRepository
	limiter    domain.CacheStore
	limit      int
	window     time.Duration
	logger     *zerolog.Logger
}

// NewMessageService builds messaging; limiter may be nil to disable throttling.
func NewMessageService(
	messages domain.MessageRepository,
	properties domain.PropertyRepository,
	users domain.UserRepository,
	limiter domain.CacheStore,
	limit int,
	window time.Duration,
	logger *zerolog.Logger,
) *MessageService {
	if limit <= 0 {
		limit = models.RateLimitMessages
	}
	if window <= 0 {
		window = models.RateLimitWindow * time.Second
	}
	return &MessageService{
		messages:   messages,
		properties: properties,
		users:      users,
		limiter:    limiter,
		limit:      limit,
		window:     window,
		logger:     orNop(logger),
	}
}

func (s *MessageService) SendMessage(ctx context.Context, user models.AuthenticatedUser, receiverID, propertyID int64, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrValidation)
	}
	if receiverID == user.ID {
		return nil, fmt.Errorf("%w: cannot message yourself", domain.ErrValidation)
	}

	if err := s.checkRateLimit(ctx, user.ID); err != nil {
		return nil, err
	}

	if _, err := s.properties.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetUserByID(ctx, receiverID); err != nil {
		return nil, err
	}

	msg := &models.Message{
		SenderID:   user.ID,
		ReceiverID: receiverID,
		PropertyID: propertyID,
		Content:    content,
	}
	if err := s.messages.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageService) GetInbox(ctx context.Context, user models.AuthenticatedUser) ([]*models.Conversation, error) {
	return s.messages.ListInbox(ctx, user.ID)
}

func (s *MessageService) GetChat(ctx context.Context, user models.AuthenticatedUser, propertyID, contactID int64) ([]*models.Message, error) {
	return s.messages.ListChat(ctx, user.ID, contactID, propertyID)
}

// MarkAsRead flags the contact's unread messages to the caller as read.
func (s *MessageService) MarkAsRead(ctx context.Context, user models.AuthenticatedUser, propertyID, contactID int64) error {
	updated, err := s.messages.MarkConversationRead(ctx, user.ID, contactID, propertyID)
	if err != nil {
		return err
	}
	s.logger.Debug().Int64("user_id", user.ID).Int64("contact_id", contactID).Int64("updated", updated).Msg("Conversation marked read")
	return nil
}

// checkRateLimit fails open when the counter store is unavailable.
func (s *MessageService) checkRateLimit(ctx context.Context, userID int64) error {
	if s.limiter == nil {
		return nil
	}
	allowed, err := s.limiter.CheckRateLimit(ctx, fmt.Sprintf("messages:%d", userID), s.limit, s.window)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("Message rate limit check failed")
		return nil
	}
	if !allowed {
		return domain.ErrRateLimited
	}
	return nil
}
