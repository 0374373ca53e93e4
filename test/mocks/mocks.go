// Package mocks provides testify doubles for the repository and geocoder
// interfaces consumed by the resolver service.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/karstmaps/threewords/internal/models"
)

// Repository is a mock of repository.Interface.
type Repository struct {
	mock.Mock
}

// NewRepository creates a Repository mock that verifies its expectations
// during test cleanup.
func NewRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *Repository {
	m := &Repository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *Repository) FetchSitesMissingCoordinates(ctx context.Context, limit int) ([]models.Site, error) {
	args := m.Called(ctx, limit)

	var sites []models.Site
	if args.Get(0) != nil {
		sites = args.Get(0).([]models.Site)
	}

	return sites, args.Error(1)
}

func (m *Repository) FetchSitesMissingWords(ctx context.Context, limit int) ([]models.Site, error) {
	args := m.Called(ctx, limit)

	var sites []models.Site
	if args.Get(0) != nil {
		sites = args.Get(0).([]models.Site)
	}

	return sites, args.Error(1)
}

func (m *Repository) UpdateSiteCoordinates(ctx context.Context, siteID int, point models.Coordinates) error {
	args := m.Called(ctx, siteID, point)
	return args.Error(0)
}

func (m *Repository) UpdateSiteWords(ctx context.Context, siteID int, words string) error {
	args := m.Called(ctx, siteID, words)
	return args.Error(0)
}

func (m *Repository) IncrementFailureCount(ctx context.Context, siteID int, errMsg string) error {
	args := m.Called(ctx, siteID, errMsg)
	return args.Error(0)
}

// Geocoder is a mock of geocoding.Geocoder.
type Geocoder struct {
	mock.Mock
}

// NewGeocoder creates a Geocoder mock that verifies its expectations during
// test cleanup.
func NewGeocoder(t interface {
	mock.TestingT
	Cleanup(func())
}) *Geocoder {
	m := &Geocoder{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

func (m *Geocoder) Geocode(ctx context.Context, words, lang string) (*models.Location, error) {
	args := m.Called(ctx, words, lang)

	var location *models.Location
	if args.Get(0) != nil {
		location = args.Get(0).(*models.Location)
	}

	return location, args.Error(1)
}

func (m *Geocoder) Reverse(ctx context.Context, point models.Coordinates, lang string) (*models.Location, error) {
	args := m.Called(ctx, point, lang)

	var location *models.Location
	if args.Get(0) != nil {
		location = args.Get(0).(*models.Location)
	}

	return location, args.Error(1)
}
