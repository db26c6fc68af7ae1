// Package service holds the coordination logic between the Postgres store,
// the TTL cache, the websocket hub and the external enrichment clients.
package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/satyam1256/disaster/internal/cache"
	"github.com/satyam1256/disaster/internal/geocode"
	"github.com/satyam1256/disaster/internal/store"
	"github.com/satyam1256/disaster/pkg/models"
)

// Sentinel errors the API layer maps to HTTP statuses.
var (
	ErrNotFound      = store.ErrNotFound
	ErrNoLocation    = errors.New("service: no location found in description")
	ErrInvalidStatus = errors.New("service: invalid verification status")
)

// Store is the persistence contract the service depends on.
type Store interface {
	CreateDisaster(d *models.Disaster) (*models.Disaster, error)
	Disasters(tag string) ([]*models.Disaster, error)
	DisasterByID(id string) (*models.Disaster, error)
	UpdateDisaster(id string, patch models.DisasterPatch) (*models.Disaster, error)
	DeleteDisaster(id string) error
	AppendAuditTrail(id, action, userID string) error

	CreateReport(r *models.Report) (*models.Report, error)
	ReportByID(id string) (*models.Report, error)
	Reports(disasterID string, f models.ReportFilter) ([]*models.Report, error)
	AllReports(f models.ReportFilter) ([]*models.Report, error)
	UpdateReport(id string, patch models.ReportPatch) (*models.Report, error)
	DeleteReport(id string) error
	ReportStats(disasterID string) (*models.ReportStats, error)

	CreateResource(r *models.Resource) (*models.Resource, error)
	ResourceByID(id string) (*models.Resource, error)
	ResourcesForDisaster(disasterID string) ([]*models.Resource, error)
	ResourcesWithinRadius(disasterID string, lat, lng, radiusKm float64) ([]*models.Resource, error)
	UpdateResource(id string, patch models.ResourcePatch) (*models.Resource, error)
	DeleteResource(id string) error
}

// Publisher fans events out to connected websocket clients. Publishing is
// fire and forget; a mutation never fails because a broadcast did.
type Publisher interface {
	Publish(topic string, payload any)
}

// LLM covers the two generative-model calls the service makes.
type LLM interface {
	ExtractLocation(ctx context.Context, description string) (string, error)
	VerifyImage(ctx context.Context, imageURL string) (string, error)
}

// Geocoder resolves a location name to coordinates.
type Geocoder interface {
	Search(ctx context.Context, locationName string) (*geocode.Coordinates, error)
}

// UpdatesFetcher produces the aggregated official-updates feed.
type UpdatesFetcher interface {
	Aggregate(ctx context.Context) []models.OfficialUpdate
}

type Service struct {
	repo    Store
	cache   cache.Cache
	inval   *cache.Invalidator
	pub     Publisher
	llm     LLM
	geo     Geocoder
	updates UpdatesFetcher
	log     zerolog.Logger
}

func NewService(repo Store, c cache.Cache, pub Publisher, llm LLM, geo Geocoder, updates UpdatesFetcher, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   c,
		inval:   cache.NewInvalidator(c),
		pub:     pub,
		llm:     llm,
		geo:     geo,
		updates: updates,
		log:     log.With().Str("component", "service").Logger(),
	}
}
