package service

import (
	"context"
	"testing"
	"time"

	"nestflow/internal/domain"
	"nestflow/internal/models"
	"nestflow/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPropertyService() (*PropertyService, *mockPropertyRepo, *repository.MemoryCache) {
	repo := new(mockPropertyRepo)
	cache := repository.NewMemoryCache()
	svc := NewPropertyService(repo, cache, time.Minute, nil)
	svc.now = func() time.Time { return time.Date(2026, 6, 15, 18, 0, 0, 0, time.UTC) }
	return svc, repo, cache
}

func TestCreateProperty(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newPropertyService()

	_, err := svc.CreateProperty(ctx, guest, &models.Property{Title: "Loft"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	repo.On("CreateProperty", ctx, mock.MatchedBy(func(p *models.Property) bool {
		return p.HostID == host.ID && p.Title == "Loft"
	})).Return(nil)

	p, err := svc.CreateProperty(ctx, host, &models.Property{HostID: 999, Title: "Loft"})
	require.NoError(t, err)
	assert.Equal(t, host.ID, p.HostID)
	repo.AssertExpectations(t)
}

func TestGetPropertyUsesCache(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newPropertyService()

	details := &models.PropertyDetails{
		Property:  models.Property{ID: 1, HostID: host.ID, Title: "Loft"},
		HostName:  "henry",
		HostEmail: "henry@example.com",
		Images:    []models.PropertyImage{{ID: 3, PropertyID: 1, ImageURL: "https://cdn/x.jpg", IsMain: true}},
	}
	repo.On("GetPropertyDetails", ctx, int64(1)).Return(details, nil).Once()

	first, err := svc.GetProperty(ctx, 1)
	require.NoError(t, err)
	second, err := svc.GetProperty(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, "henry", second.HostName)
	require.Len(t, second.Images, 1)
	assert.True(t, second.Images[0].IsMain)
	repo.AssertNumberOfCalls(t, "GetPropertyDetails", 1)
}

func TestUpdatePropertyInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	svc, repo, cache := newPropertyService()
	existing := &models.Property{ID: 1, HostID: host.ID, Title: "Old"}
	today := models.NewDate(svc.now())

	require.NoError(t, cache.Set(ctx, propertyCacheKey(1), []byte(`{"id":1,"title":"Old"}`), time.Minute))

	repo.On("GetProperty", ctx, int64(1)).Return(existing, nil)
	repo.On("CountActiveReservations", ctx, int64(1), today).Return(0, nil)
	repo.On("UpdateProperty", ctx, mock.Anything).Return(nil)

	updated, err := svc.UpdateProperty(ctx, host, &models.Property{ID: 1, Title: "New"})
	require.NoError(t, err)
	assert.Equal(t, host.ID, updated.HostID)

	_, ok, err := cache.Get(ctx, propertyCacheKey(1))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPropertyMutationGuards(t *testing.T) {
	ctx := context.Background()
	owned := &models.Property{ID: 1, HostID: host.ID}

	t.Run("not found", func(t *testing.T) {
		svc, repo, _ := newPropertyService()
		repo.On("GetProperty", ctx, int64(9)).Return(nil, domain.ErrPropertyNotFound)
		err := svc.DeleteProperty(ctx, host, 9)
		assert.ErrorIs(t, err, domain.ErrPropertyNotFound)
	})

	t.Run("not the owner", func(t *testing.T) {
		svc, repo, _ := newPropertyService()
		repo.On("GetProperty", ctx, int64(1)).Return(owned, nil)
		other := models.AuthenticatedUser{ID: 99, Role: models.RoleHost}
		_, err := svc.UpdateProperty(ctx, other, &models.Property{ID: 1})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		repo.AssertNotCalled(t, "CountActiveReservations", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("active bookings", func(t *testing.T) {
		svc, repo, _ := newPropertyService()
		repo.On("GetProperty", ctx, int64(1)).Return(owned, nil)
		repo.On("CountActiveReservations", ctx, int64(1), mock.Anything).Return(2, nil)

		err := svc.DeleteProperty(ctx, host, 1)
		assert.ErrorIs(t, err, domain.ErrActiveBookingsExist)
		_, err = svc.UpdateProperty(ctx, host, &models.Property{ID: 1})
		assert.ErrorIs(t, err, domain.ErrActiveBookingsExist)
		repo.AssertNotCalled(t, "DeleteProperty", mock.Anything, mock.Anything)
	})

	t.Run("delete succeeds", func(t *testing.T) {
		svc, repo, _ := newPropertyService()
		repo.On("GetProperty", ctx, int64(1)).Return(owned, nil)
		repo.On("CountActiveReservations", ctx, int64(1), mock.Anything).Return(0, nil)
		repo.On("DeleteProperty", ctx, int64(1)).Return(nil)
		assert.NoError(t, svc.DeleteProperty(ctx, host, 1))
	})
}

func TestAddImages(t *testing.T) {
	ctx := context.Background()
	owned := &models.Property{ID: 1, HostID: host.ID}

	svc, repo, _ := newPropertyService()
	_, err := svc.AddImages(ctx, host, 1, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.AddImages(ctx, host, 1, []string{"a", "b", "c", "d", "e", "f"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	repo.On("GetProperty", ctx, int64(1)).Return(owned, nil)
	_, err = svc.AddImages(ctx, guest, 1, []string{"https://cdn/a.jpg"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	urls := []string{"https://cdn/a.jpg", "https://cdn/b.jpg"}
	repo.On("AddPropertyImages", ctx, int64(1), urls).Return([]*models.PropertyImage{
		{ID: 1, PropertyID: 1, ImageURL: urls[0], IsMain: true},
		{ID: 2, PropertyID: 1, ImageURL: urls[1]},
	}, nil)
	images, err := svc.AddImages(ctx, host, 1, urls)
	require.NoError(t, err)
	assert.Len(t, images, 2)
}

func TestDeleteImage(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newPropertyService()

	repo.On("GetPropertyImage", ctx, int64(404)).Return(nil, domain.ErrImageNotFound)
	assert.ErrorIs(t, svc.DeleteImage(ctx, host, 404), domain.ErrNotFound)

	repo.On("GetPropertyImage", ctx, int64(5)).Return(&models.PropertyImage{ID: 5, PropertyID: 1}, nil)
	repo.On("GetProperty", ctx, int64(1)).Return(&models.Property{ID: 1, HostID: host.ID}, nil)
	assert.ErrorIs(t, svc.DeleteImage(ctx, guest, 5), domain.ErrForbidden)

	repo.On("DeletePropertyImage", ctx, int64(5)).Return(nil)
	assert.NoError(t, svc.DeleteImage(ctx, host, 5))
}

func TestGetHostStatsUsesToday(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newPropertyService()
	stats := &models.HostStats{Summary: models.HostSummary{TotalPosts: 2}}
	repo.On("GetHostStats", ctx, host.ID, models.NewDate(svc.now())).Return(stats, nil)

	got, err := svc.GetHostStats(ctx, host)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Summary.TotalPosts)
}
