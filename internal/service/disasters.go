package service

import (
	"context"

	"github.com/satyam1256/disaster/internal/cache"
	"github.com/satyam1256/disaster/internal/ws"
	"github.com/satyam1256/disaster/pkg/models"
)

// CreateDisaster persists a new disaster owned by userID and broadcasts it.
func (s *Service) CreateDisaster(ctx context.Context, d *models.Disaster, userID string) (*models.Disaster, error) {
	d.OwnerID = userID
	created, err := s.repo.CreateDisaster(d)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AppendAuditTrail(created.ID, "create", userID); err != nil {
		s.log.Warn().Err(err).Str("disaster_id", created.ID).Msg("audit trail append failed")
	}

	s.pub.Publish(ws.TopicDisasterUpdated, map[string]any{
		"action":   "create",
		"disaster": created,
	})
	s.log.Info().Str("disaster_id", created.ID).Str("user", userID).Msg("disaster created")
	return created, nil
}

func (s *Service) Disasters(ctx context.Context, tag string) ([]*models.Disaster, error) {
	return s.repo.Disasters(tag)
}

func (s *Service) Disaster(ctx context.Context, id string) (*models.Disaster, error) {
	return s.repo.DisasterByID(id)
}

// UpdateDisaster applies a partial update. The official-updates cache entry
// for the disaster is erased before the result is returned, so no caller can
// read an aggregate derived from the pre-update record.
func (s *Service) UpdateDisaster(ctx context.Context, id string, patch models.DisasterPatch, userID string) (*models.Disaster, error) {
	updated, err := s.repo.UpdateDisaster(id, patch)
	if err != nil {
		return nil, err
	}
	if err := s.repo.AppendAuditTrail(id, "update", userID); err != nil {
		s.log.Warn().Err(err).Str("disaster_id", id).Msg("audit trail append failed")
	}

	s.inval.Invalidate(ctx, cache.MutationDisaster, id)
	s.pub.Publish(ws.TopicDisasterUpdated, map[string]any{
		"action":   "update",
		"disaster": updated,
	})
	return updated, nil
}

func (s *Service) DeleteDisaster(ctx context.Context, id, userID string) error {
	if err := s.repo.DeleteDisaster(id); err != nil {
		return err
	}
	s.inval.Invalidate(ctx, cache.MutationDisaster, id)
	s.pub.Publish(ws.TopicDisasterUpdated, map[string]any{
		"action": "delete",
		"id":     id,
	})
	s.log.Info().Str("disaster_id", id).Str("user", userID).Msg("disaster deleted")
	return nil
}
