package service

import (
	"context"
	"encoding/json"

	"github.com/satyam1256/disaster/internal/cache"
	"github.com/satyam1256/disaster/pkg/models"
)

// Geocode turns a free-text description into coordinates. When the caller
// already knows the location name the extraction step is skipped. Results are
// cached for an hour keyed on the description, since both upstreams are
// rate-limited.
func (s *Service) Geocode(ctx context.Context, description, locationName string) (*models.GeocodeResult, error) {
	cacheKey := description
	if cacheKey == "" {
		cacheKey = locationName
	}
	key := cache.GeocodeKey(cacheKey)
	if b, ok := s.cache.Get(ctx, key); ok {
		var res models.GeocodeResult
		if err := json.Unmarshal(b, &res); err == nil {
			return &res, nil
		}
		s.cache.Delete(ctx, key)
	}

	name := locationName
	if name == "" {
		extracted, err := s.llm.ExtractLocation(ctx, description)
		if err != nil {
			return nil, err
		}
		name = extracted
	}
	if name == "" {
		return nil, ErrNoLocation
	}

	coords, err := s.geo.Search(ctx, name)
	if err != nil {
		return nil, err
	}
	if coords == nil {
		return nil, ErrNoLocation
	}

	res := &models.GeocodeResult{LocationName: name, Lat: coords.Lat, Lng: coords.Lng}
	if b, err := json.Marshal(res); err == nil {
		s.cache.Set(ctx, key, b, cache.DefaultTTL)
	}
	return res, nil
}
