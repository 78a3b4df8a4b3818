package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nestflow/internal/booking"
	"nestflow/internal/domain"
	"nestflow/internal/metrics"
	"nestflow/internal/models"

	"github.com/rs/zerolog"
)

func propertyCacheKey(id int64) string {
	return fmt.Sprintf("property:%d", id)
}

type PropertyService struct {
	repo     domain.PropertyRepository
	cache    domain.CacheStore
	cacheTTL time.Duration
	now      func() time.Time
	logger   *zerolog.Logger
}

// NewPropertyService builds the catalogue service. cache may be nil.
func NewPropertyService(repo domain.PropertyRepository, cache domain.CacheStore, cacheTTL time.Duration, logger *zerolog.Logger) *PropertyService {
	if cacheTTL <= 0 {
		cacheTTL = models.DefaultCacheTTL * time.Second
	}
	return &PropertyService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		now:      time.Now,
		logger:   orNop(logger),
	}
}

func (s *PropertyService) CreateProperty(ctx context.Context, user models.AuthenticatedUser, property *models.Property) (*models.Property, error) {
	if !user.IsHost() {
		return nil, domain.ErrForbidden
	}
	property.ID = 0
	property.HostID = user.ID
	if err := s.repo.CreateProperty(ctx, property); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("property_id", property.ID).Int64("host_id", user.ID).Msg("Property created")
	return property, nil
}

func (s *PropertyService) ListProperties(ctx context.Context) ([]*models.PropertySummary, error) {
	return s.repo.ListProperties(ctx)
}

// GetProperty serves details from the cache and fills it on a miss.
func (s *PropertyService) GetProperty(ctx context.Context, id int64) (*models.PropertyDetails, error) {
	key := propertyCacheKey(id)
	if s.cache != nil {
		raw, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Property cache read failed")
		}
		if ok {
			var details models.PropertyDetails
			if err := json.Unmarshal(raw, &details); err == nil {
				metrics.IncCache(true)
				return &details, nil
			}
			s.logger.Warn().Str("key", key).Msg("Dropping undecodable cache entry")
		}
		metrics.IncCache(false)
	}

	details, err := s.repo.GetPropertyDetails(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(details); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
				s.logger.Warn().Err(err).Str("key", key).Msg("Property cache write failed")
			}
		}
	}
	return details, nil
}

func (s *PropertyService) UpdateProperty(ctx context.Context, user models.AuthenticatedUser, property *models.Property) (*models.Property, error) {
	existing, err := s.guardMutation(ctx, user, property.ID)
	if err != nil {
		return nil, err
	}

	property.HostID = existing.HostID
	property.CreatedAt = existing.CreatedAt
	if err := s.repo.UpdateProperty(ctx, property); err != nil {
		return nil, err
	}
	s.invalidate(ctx, property.ID)
	return property, nil
}

func (s *PropertyService) DeleteProperty(ctx context.Context, user models.AuthenticatedUser, id int64) error {
	if _, err := s.guardMutation(ctx, user, id); err != nil {
		return err
	}
	if err := s.repo.DeleteProperty(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.logger.Info().Int64("property_id", id).Int64("host_id", user.ID).Msg("Property deleted")
	return nil
}

// AddImages attaches 1..MaxImagesPerUpload URLs to the host's property.
func (s *PropertyService) AddImages(ctx context.Context, user models.AuthenticatedUser, propertyID int64, urls []string) ([]*models.PropertyImage, error) {
	if len(urls) == 0 || len(urls) > models.MaxImagesPerUpload {
		return nil, fmt.Errorf("%w: between 1 and %d image urls required", domain.ErrValidation, models.MaxImagesPerUpload)
	}

	property, err := s.repo.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if err := booking.EnsureHost(user, property); err != nil {
		return nil, err
	}

	images, err := s.repo.AddPropertyImages(ctx, propertyID, urls)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, propertyID)
	return images, nil
}

func (s *PropertyService) DeleteImage(ctx context.Context, user models.AuthenticatedUser, imageID int64) error {
	image, err := s.repo.GetPropertyImage(ctx, imageID)
	if err != nil {
		return err
	}

	property, err := s.repo.GetProperty(ctx, image.PropertyID)
	if err != nil {
		return err
	}
	if err := booking.EnsureHost(user, property); err != nil {
		return err
	}

	if err := s.repo.DeletePropertyImage(ctx, imageID); err != nil {
		return err
	}
	s.invalidate(ctx, image.PropertyID)
	return nil
}

func (s *PropertyService) GetHostStats(ctx context.Context, user models.AuthenticatedUser) (*models.HostStats, error) {
	return s.repo.GetHostStats(ctx, user.ID, booking.Today(s.now))
}

// guardMutation: exists (404), owner (403), no active bookings (403).
func (s *PropertyService) guardMutation(ctx context.Context, user models.AuthenticatedUser, id int64) (*models.Property, error) {
	property, err := s.repo.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := booking.EnsureHost(user, property); err != nil {
		return nil, err
	}

	active, err := s.repo.CountActiveReservations(ctx, id, booking.Today(s.now))
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, domain.ErrActiveBookingsExist
	}
	return property, nil
}

func (s *PropertyService) invalidate(ctx context.Context, id int64) {
	invalidateProperty(ctx, s.cache, s.logger, id)
}

func invalidateProperty(ctx context.Context, cache domain.CacheStore, logger *zerolog.Logger, id int64) {
	if cache == nil {
		return
	}
	if err := cache.Delete(ctx, propertyCacheKey(id)); err != nil {
		logger.Warn().Err(err).Int64("property_id", id).Msg("Property cache invalidation failed")
	}
}
