// Package store is the Postgres persistence layer for disasters, reports and
// resources.
package store

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a row does not exist. Callers map it to a 404.
var ErrNotFound = errors.New("store: not found")

type PgStore struct {
	db *sqlx.DB
}

func NewPgStore(db *sql.DB) *PgStore {
	return &PgStore{db: sqlx.NewDb(db, "postgres")}
}

func RunMigrations(db *sql.DB) error {
	initSQL := `
CREATE TABLE IF NOT EXISTS disasters(
  id UUID PRIMARY KEY,
  title TEXT NOT NULL,
  location_name TEXT DEFAULT '',
  latitude DOUBLE PRECISION DEFAULT 0,
  longitude DOUBLE PRECISION DEFAULT 0,
  description TEXT DEFAULT '',
  tags JSONB DEFAULT '[]'::jsonb,
  owner_id TEXT DEFAULT '',
  audit_trail JSONB DEFAULT '[]'::jsonb,
  created_at TIMESTAMP DEFAULT now(),
  updated_at TIMESTAMP DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_disasters_owner ON disasters(owner_id);
-- GIN index for jsonb array search on tags
CREATE INDEX IF NOT EXISTS idx_disasters_tags ON disasters USING GIN (tags);

CREATE TABLE IF NOT EXISTS reports(
  id UUID PRIMARY KEY,
  disaster_id UUID REFERENCES disasters(id) ON DELETE CASCADE,
  user_id TEXT DEFAULT '',
  content TEXT DEFAULT '',
  image_url TEXT DEFAULT '',
  verification_status TEXT DEFAULT 'pending',
  created_at TIMESTAMP DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reports_disaster ON reports(disaster_id);
CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(verification_status);
CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at);

CREATE TABLE IF NOT EXISTS resources(
  id UUID PRIMARY KEY,
  disaster_id UUID REFERENCES disasters(id) ON DELETE CASCADE,
  name TEXT DEFAULT '',
  type TEXT DEFAULT '',
  latitude DOUBLE PRECISION DEFAULT 0,
  longitude DOUBLE PRECISION DEFAULT 0,
  capacity INTEGER DEFAULT 0,
  contact_info TEXT DEFAULT '',
  description TEXT DEFAULT '',
  available BOOLEAN DEFAULT TRUE,
  created_at TIMESTAMP DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_resources_disaster ON resources(disaster_id);
CREATE INDEX IF NOT EXISTS idx_resources_type ON resources(type);
`
	_, err := db.Exec(initSQL)
	return err
}
