package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/satyam1256/disaster/pkg/models"
)

const reportCols = `id,disaster_id,user_id,content,image_url,verification_status,created_at`

func (p *PgStore) CreateReport(r *models.Report) (*models.Report, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.VerificationStatus == "" {
		r.VerificationStatus = models.StatusPending
	}
	r.CreatedAt = time.Now().UTC()

	query := `
INSERT INTO reports (id, disaster_id, user_id, content, image_url, verification_status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`
	_, err := p.db.Exec(query,
		r.ID, r.DisasterID, r.UserID, r.Content, r.ImageURL, r.VerificationStatus, r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert report id=%s: %w", r.ID, err)
	}
	return r, nil
}

func (p *PgStore) ReportByID(id string) (*models.Report, error) {
	var r models.Report
	query := `SELECT ` + reportCols + ` FROM reports WHERE id = $1`
	if err := p.db.Get(&r, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// Reports lists reports for one disaster, newest first, with optional
// verification-status filtering and limit/offset pagination.
func (p *PgStore) Reports(disasterID string, f models.ReportFilter) ([]*models.Report, error) {
	where := []string{"disaster_id = $1"}
	args := []any{disasterID}
	if f.VerificationStatus != "" {
		args = append(args, f.VerificationStatus)
		where = append(where, fmt.Sprintf("verification_status = $%d", len(args)))
	}

	limit, offset := clampPage(f.Limit, f.Offset, 50)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
SELECT `+reportCols+`
FROM reports
WHERE %s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d
`, strings.Join(where, " AND "), len(args)-1, len(args))

	rows := []*models.Report{}
	err := p.db.Select(&rows, query, args...)
	return rows, err
}

// AllReports lists reports across disasters with optional status and user
// filters.
func (p *PgStore) AllReports(f models.ReportFilter) ([]*models.Report, error) {
	where := []string{"1=1"}
	args := []any{}
	if f.VerificationStatus != "" {
		args = append(args, f.VerificationStatus)
		where = append(where, fmt.Sprintf("verification_status = $%d", len(args)))
	}
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}

	limit, offset := clampPage(f.Limit, f.Offset, 100)
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
SELECT `+reportCols+`
FROM reports
WHERE %s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d
`, strings.Join(where, " AND "), len(args)-1, len(args))

	rows := []*models.Report{}
	err := p.db.Select(&rows, query, args...)
	return rows, err
}

func (p *PgStore) UpdateReport(id string, patch models.ReportPatch) (*models.Report, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if patch.VerificationStatus != nil {
		add("verification_status", *patch.VerificationStatus)
	}
	if len(sets) == 0 {
		return p.ReportByID(id)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE reports SET %s WHERE id = $%d RETURNING `+reportCols,
		strings.Join(sets, ", "), len(args),
	)

	var r models.Report
	if err := p.db.Get(&r, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update report id=%s: %w", id, err)
	}
	return &r, nil
}

func (p *PgStore) DeleteReport(id string) error {
	res, err := p.db.Exec(`DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete report id=%s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReportStats aggregates verification counts for one disaster in a single
// round trip.
func (p *PgStore) ReportStats(disasterID string) (*models.ReportStats, error) {
	query := `
SELECT
  COUNT(*) AS total,
  COUNT(*) FILTER (WHERE verification_status = 'pending')  AS pending,
  COUNT(*) FILTER (WHERE verification_status = 'verified') AS verified,
  COUNT(*) FILTER (WHERE verification_status = 'rejected') AS rejected,
  COUNT(*) FILTER (WHERE created_at > now() - interval '24 hours') AS recent
FROM reports
WHERE disaster_id = $1
`
	var s models.ReportStats
	if err := p.db.Get(&s, query, disasterID); err != nil {
		return nil, err
	}
	return &s, nil
}

// clampPage normalizes limit/offset to sane bounds.
func clampPage(limit, offset, def int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = def
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
