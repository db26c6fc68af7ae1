package service

import (
	"context"

	"github.com/satyam1256/disaster/internal/cache"
	"github.com/satyam1256/disaster/internal/ws"
	"github.com/satyam1256/disaster/pkg/models"
)

// CreateReport attaches a citizen report to an existing disaster. The social
// media cache for the disaster is invalidated before the broadcast goes out.
func (s *Service) CreateReport(ctx context.Context, r *models.Report) (*models.Report, error) {
	if _, err := s.repo.DisasterByID(r.DisasterID); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateReport(r)
	if err != nil {
		return nil, err
	}

	s.inval.Invalidate(ctx, cache.MutationReport, created.DisasterID)
	s.pub.Publish(ws.TopicSocialMediaUpdated, map[string]any{
		"action": "created",
		"report": created,
	})
	s.log.Info().Str("report_id", created.ID).Str("disaster_id", created.DisasterID).Msg("report created")
	return created, nil
}

func (s *Service) Report(ctx context.Context, id string) (*models.Report, error) {
	return s.repo.ReportByID(id)
}

func (s *Service) Reports(ctx context.Context, disasterID string, f models.ReportFilter) ([]*models.Report, error) {
	if f.VerificationStatus != "" && !models.ValidStatus(f.VerificationStatus) {
		return nil, ErrInvalidStatus
	}
	return s.repo.Reports(disasterID, f)
}

func (s *Service) AllReports(ctx context.Context, f models.ReportFilter) ([]*models.Report, error) {
	if f.VerificationStatus != "" && !models.ValidStatus(f.VerificationStatus) {
		return nil, ErrInvalidStatus
	}
	return s.repo.AllReports(f)
}

func (s *Service) UpdateReport(ctx context.Context, id string, patch models.ReportPatch) (*models.Report, error) {
	if patch.VerificationStatus != nil && !models.ValidStatus(*patch.VerificationStatus) {
		return nil, ErrInvalidStatus
	}
	updated, err := s.repo.UpdateReport(id, patch)
	if err != nil {
		return nil, err
	}

	s.inval.Invalidate(ctx, cache.MutationReport, updated.DisasterID)
	s.pub.Publish(ws.TopicSocialMediaUpdated, map[string]any{
		"action": "updated",
		"report": updated,
	})
	return updated, nil
}

// VerifyReport moves a report to verified or rejected.
func (s *Service) VerifyReport(ctx context.Context, id, status string) (*models.Report, error) {
	if status != models.StatusVerified && status != models.StatusRejected {
		return nil, ErrInvalidStatus
	}
	updated, err := s.repo.UpdateReport(id, models.ReportPatch{VerificationStatus: &status})
	if err != nil {
		return nil, err
	}

	s.inval.Invalidate(ctx, cache.MutationReport, updated.DisasterID)
	s.pub.Publish(ws.TopicSocialMediaUpdated, map[string]any{
		"action": "verified",
		"report": updated,
	})
	s.log.Info().Str("report_id", id).Str("status", status).Msg("report verification updated")
	return updated, nil
}

func (s *Service) DeleteReport(ctx context.Context, id string) error {
	r, err := s.repo.ReportByID(id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteReport(id); err != nil {
		return err
	}

	s.inval.Invalidate(ctx, cache.MutationReport, r.DisasterID)
	s.pub.Publish(ws.TopicSocialMediaUpdated, map[string]any{
		"action":      "deleted",
		"id":          id,
		"disaster_id": r.DisasterID,
	})
	return nil
}

func (s *Service) ReportStats(ctx context.Context, disasterID string) (*models.ReportStats, error) {
	if _, err := s.repo.DisasterByID(disasterID); err != nil {
		return nil, err
	}
	return s.repo.ReportStats(disasterID)
}
