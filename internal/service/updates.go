package service

import (
	"context"
	"encoding/json"

	"github.com/satyam1256/disaster/internal/cache"
	"github.com/satyam1256/disaster/pkg/models"
)

// OfficialUpdates returns the aggregated official-sources feed for a
// disaster, cache-aside with a 30 minute TTL. Empty results are cached too:
// if every source is down, re-scraping on each request would only hammer
// sources that are already failing.
func (s *Service) OfficialUpdates(ctx context.Context, disasterID string) ([]models.OfficialUpdate, error) {
	if _, err := s.repo.DisasterByID(disasterID); err != nil {
		return nil, err
	}

	key := cache.OfficialUpdatesKey(disasterID)
	if b, ok := s.cache.Get(ctx, key); ok {
		var updates []models.OfficialUpdate
		if err := json.Unmarshal(b, &updates); err == nil {
			return updates, nil
		}
		s.cache.Delete(ctx, key)
	}

	updates := s.updates.Aggregate(ctx)
	if b, err := json.Marshal(updates); err == nil {
		s.cache.Set(ctx, key, b, cache.OfficialUpdatesTTL)
	}
	return updates, nil
}
