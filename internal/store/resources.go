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

const resourceCols = `id,disaster_id,name,type,latitude,longitude,capacity,contact_info,description,available,created_at`

func (p *PgStore) CreateResource(r *models.Resource) (*models.Resource, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.CreatedAt = time.Now().UTC()

	query := `
INSERT INTO resources (id, disaster_id, name, type, latitude, longitude, capacity, contact_info, description, available, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`
	_, err := p.db.Exec(query,
		r.ID, r.DisasterID, r.Name, r.Type, r.Latitude, r.Longitude,
		r.Capacity, r.ContactInfo, r.Description, r.Available, r.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert resource id=%s: %w", r.ID, err)
	}
	return r, nil
}

func (p *PgStore) ResourceByID(id string) (*models.Resource, error) {
	var r models.Resource
	query := `SELECT ` + resourceCols + ` FROM resources WHERE id = $1`
	if err := p.db.Get(&r, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// ResourcesForDisaster lists every resource attached to a disaster, without
// any spatial filtering. The fallback read path uses this.
func (p *PgStore) ResourcesForDisaster(disasterID string) ([]*models.Resource, error) {
	rows := []*models.Resource{}
	query := `SELECT ` + resourceCols + ` FROM resources WHERE disaster_id = $1 ORDER BY created_at DESC`
	err := p.db.Select(&rows, query, disasterID)
	return rows, err
}

// ResourcesWithinRadius runs the haversine radius query for one disaster.
// Distance is computed in a subquery so the WHERE clause can reference the
// alias; results come back nearest first.
func (p *PgStore) ResourcesWithinRadius(disasterID string, lat, lng, radiusKm float64) ([]*models.Resource, error) {
	rows := []*models.Resource{}
	query := `
SELECT * FROM (
  SELECT ` + resourceCols + `,
    (6371 * acos(
      cos(radians($2)) * cos(radians(latitude)) *
      cos(radians(longitude) - radians($3)) +
      sin(radians($2)) * sin(radians(latitude))
    )) AS distance_km
  FROM resources
  WHERE disaster_id = $1
) AS nearby
WHERE distance_km <= $4
ORDER BY distance_km ASC
`
	err := p.db.Select(&rows, query, disasterID, lat, lng, radiusKm)
	return rows, err
}

func (p *PgStore) UpdateResource(id string, patch models.ResourcePatch) (*models.Resource, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Type != nil {
		add("type", *patch.Type)
	}
	if patch.Lat != nil {
		add("latitude", *patch.Lat)
	}
	if patch.Lng != nil {
		add("longitude", *patch.Lng)
	}
	if patch.Capacity != nil {
		add("capacity", *patch.Capacity)
	}
	if patch.ContactInfo != nil {
		add("contact_info", *patch.ContactInfo)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Available != nil {
		add("available", *patch.Available)
	}
	if len(sets) == 0 {
		return p.ResourceByID(id)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE resources SET %s WHERE id = $%d RETURNING `+resourceCols,
		strings.Join(sets, ", "), len(args),
	)

	var r models.Resource
	if err := p.db.Get(&r, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update resource id=%s: %w", id, err)
	}
	return &r, nil
}

func (p *PgStore) DeleteResource(id string) error {
	res, err := p.db.Exec(`DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resource id=%s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
