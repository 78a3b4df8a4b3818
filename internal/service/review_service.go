package service

import (
	"context"
	"fmt"
	"strings"

	"nestflow/internal/domain"
	"nestflow/internal/events"
	"nestflow/internal/models"

	"github.com/rs/zerolog"
)

type ReviewService struct {
	reviews    domain.ReviewRepository
	properties domain.PropertyRepository
	cache      domain.CacheStore
	eventBus   domain.EventPublisher
	logger     *zerolog.Logger
}

func NewReviewService(reviews domain.ReviewRepository, properties domain.PropertyRepository, cache domain.CacheStore, eventBus domain.EventPublisher, logger *zerolog.Logger) *ReviewService {
	return &ReviewService{
		reviews:    reviews,
		properties: properties,
		cache:      cache,
		eventBus:   eventBus,
		logger:     orNop(logger),
	}
}

// CreateReview requires a confirmed stay; one review per guest and property.
func (s *ReviewService) CreateReview(ctx context.Context, user models.AuthenticatedUser, propertyID int64, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}

	if _, err := s.properties.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}

	stayed, err := s.reviews.HasConfirmedStay(ctx, user.ID, propertyID)
	if err != nil {
		return nil, err
	}
	if !stayed {
		return nil, domain.ErrReviewNotAllowed
	}

	review := &models.Review{
		PropertyID: propertyID,
		GuestID:    user.ID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
	}
	if err := s.reviews.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	// средний рейтинг в карточке изменился
	invalidateProperty(ctx, s.cache, s.logger, propertyID)

	if s.eventBus != nil {
		payload := events.ReviewEventPayload{
			ReviewID:   review.ID,
			PropertyID: propertyID,
			GuestID:    user.ID,
			Rating:     rating,
		}
		if err := s.eventBus.PublishJSON(events.EventReviewCreated, payload); err != nil {
			s.logger.Error().Err(err).Int64("review_id", review.ID).Msg("publish event error")
		}
	}
	return review, nil
}

func (s *ReviewService) ListReviews(ctx context.Context, propertyID int64) ([]*models.ReviewDetails, error) {
	return s.reviews.ListReviews(ctx, propertyID)
}
