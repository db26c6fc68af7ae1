package service

import (
	"context"

	"github.com/satyam1256/disaster/internal/ws"
	"github.com/satyam1256/disaster/pkg/models"
)

// DefaultRadiusKm is used when the caller omits or zeroes the radius.
const DefaultRadiusKm = 10.0

// ResourcesNear answers "resources near (lat, lon) for this disaster". The
// distance-filtered query is attempted first; if the store errors, the full
// unfiltered resource list for the disaster is returned instead, flagged as
// fallback so the caller never mistakes it for a spatially filtered result.
// An empty active result stays active: finding nothing nearby is an answer,
// not a failure.
func (s *Service) ResourcesNear(ctx context.Context, disasterID string, lat, lon, radiusKm float64, resourceType string) (*models.ResourceQueryResult, error) {
	if _, err := s.repo.DisasterByID(disasterID); err != nil {
		return nil, err
	}
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}

	result := &models.ResourceQueryResult{
		GeospatialStatus: models.GeoActive,
		QueryParams:      models.ResourceQueryParams{Lat: lat, Lon: lon, Radius: radiusKm},
		Type:             resourceType,
	}

	resources, err := s.repo.ResourcesWithinRadius(disasterID, lat, lon, radiusKm)
	if err != nil {
		s.log.Warn().Err(err).Str("disaster_id", disasterID).Msg("geospatial query failed, falling back to full list")
		resources, err = s.repo.ResourcesForDisaster(disasterID)
		if err != nil {
			return nil, err
		}
		result.GeospatialStatus = models.GeoFallback
		result.Note = "geospatial filtering unavailable, returning all resources for this disaster"
	}

	if resourceType != "" {
		total := len(resources)
		result.TotalFound = &total
		filtered := resources[:0:0]
		for _, r := range resources {
			if r.Type == resourceType {
				filtered = append(filtered, r)
			}
		}
		resources = filtered
	}
	result.Resources = resources

	s.pub.Publish(ws.TopicResourcesUpdated, map[string]any{
		"disaster_id":       disasterID,
		"resources":         resources,
		"geospatial_status": result.GeospatialStatus,
	})
	return result, nil
}

func (s *Service) CreateResource(ctx context.Context, r *models.Resource) (*models.Resource, error) {
	if _, err := s.repo.DisasterByID(r.DisasterID); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateResource(r)
	if err != nil {
		return nil, err
	}
	s.pub.Publish(ws.TopicResourcesUpdated, map[string]any{
		"disaster_id": created.DisasterID,
		"action":      "created",
		"resource":    created,
	})
	return created, nil
}

func (s *Service) Resource(ctx context.Context, id string) (*models.Resource, error) {
	return s.repo.ResourceByID(id)
}

func (s *Service) UpdateResource(ctx context.Context, id string, patch models.ResourcePatch) (*models.Resource, error) {
	updated, err := s.repo.UpdateResource(id, patch)
	if err != nil {
		return nil, err
	}
	s.pub.Publish(ws.TopicResourcesUpdated, map[string]any{
		"disaster_id": updated.DisasterID,
		"action":      "updated",
		"resource":    updated,
	})
	return updated, nil
}

func (s *Service) DeleteResource(ctx context.Context, id string) error {
	r, err := s.repo.ResourceByID(id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteResource(id); err != nil {
		return err
	}
	s.pub.Publish(ws.TopicResourcesUpdated, map[string]any{
		"disaster_id": r.DisasterID,
		"action":      "deleted",
		"id":          id,
	})
	return nil
}
