package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/satyam1256/disaster/internal/db"
	"github.com/satyam1256/disaster/pkg/models"
)

const disasterCols = `id,title,location_name,latitude,longitude,description,tags,owner_id,audit_trail,created_at,updated_at`

func (p *PgStore) CreateDisaster(d *models.Disaster) (*models.Disaster, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Tags == nil {
		d.Tags = dbtypes.StringSlice{}
	}
	if d.AuditTrail == nil {
		d.AuditTrail = dbtypes.AuditTrail{}
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	query := `
INSERT INTO disasters (id, title, location_name, latitude, longitude, description, tags, owner_id, audit_trail, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7::jsonb,$8,$9::jsonb,$10,$11)
`
	_, err := p.db.Exec(query,
		d.ID, d.Title, d.LocationName, d.Latitude, d.Longitude,
		d.Description, d.Tags, d.OwnerID, d.AuditTrail, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert disaster id=%s: %w", d.ID, err)
	}
	return d, nil
}

// Disasters lists all disasters, optionally narrowed to one tag. For a jsonb
// array of strings, the @> operator checks containment.
func (p *PgStore) Disasters(tag string) ([]*models.Disaster, error) {
	rows := []*models.Disaster{}
	if tag == "" {
		query := `SELECT ` + disasterCols + ` FROM disasters ORDER BY created_at DESC`
		err := p.db.Select(&rows, query)
		return rows, err
	}
	query := `
SELECT ` + disasterCols + `
FROM disasters
WHERE tags @> ('["' || $1 || '"]')::jsonb
ORDER BY created_at DESC
`
	err := p.db.Select(&rows, query, tag)
	return rows, err
}

func (p *PgStore) DisasterByID(id string) (*models.Disaster, error) {
	var d models.Disaster
	query := `SELECT ` + disasterCols + ` FROM disasters WHERE id = $1`
	if err := p.db.Get(&d, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (p *PgStore) UpdateDisaster(id string, patch models.DisasterPatch) (*models.Disaster, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.LocationName != nil {
		add("location_name", *patch.LocationName)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Tags != nil {
		add("tags", *patch.Tags)
	}
	if patch.Lat != nil {
		add("latitude", *patch.Lat)
	}
	if patch.Lng != nil {
		add("longitude", *patch.Lng)
	}
	add("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE disasters SET %s WHERE id = $%d RETURNING `+disasterCols,
		strings.Join(sets, ", "), len(args),
	)

	var d models.Disaster
	if err := p.db.Get(&d, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update disaster id=%s: %w", id, err)
	}
	return &d, nil
}

func (p *PgStore) DeleteDisaster(id string) error {
	res, err := p.db.Exec(`DELETE FROM disasters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete disaster id=%s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AppendAuditTrail pushes one action entry onto the disaster's audit trail.
// The append happens SQL-side (jsonb concatenation) so concurrent writers
// never clobber each other's entries.
func (p *PgStore) AppendAuditTrail(id, action, userID string) error {
	entry, err := json.Marshal(dbtypes.AuditEntry{
		Action:    action,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	query := `UPDATE disasters SET audit_trail = audit_trail || $2::jsonb WHERE id = $1`
	res, err := p.db.Exec(query, id, fmt.Sprintf("[%s]", entry))
	if err != nil {
		return fmt.Errorf("append audit trail id=%s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
