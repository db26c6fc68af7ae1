package models

import (
	"time"

	dbtypes "github.com/satyam1256/disaster/internal/db"
)

// Disaster is the central incident record everything else hangs off.
type Disaster struct {
	ID           string              `db:"id" json:"id"`
	Title        string              `db:"title" json:"title"`
	LocationName string              `db:"location_name" json:"location_name"`
	Latitude     float64             `db:"latitude" json:"lat"`
	Longitude    float64             `db:"longitude" json:"lng"`
	Description  string              `db:"description" json:"description"`
	Tags         dbtypes.StringSlice `db:"tags" json:"tags"`
	OwnerID      string              `db:"owner_id" json:"owner_id"`
	AuditTrail   dbtypes.AuditTrail  `db:"audit_trail" json:"audit_trail"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `db:"updated_at" json:"updated_at"`
}

// Report verification statuses.
const (
	StatusPending  = "pending"
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

// ValidStatus reports whether s is a known verification status.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusVerified || s == StatusRejected
}

// Report is a citizen-submitted report (a social-media-style mention)
// attached to a disaster.
type Report struct {
	ID                 string    `db:"id" json:"id"`
	DisasterID         string    `db:"disaster_id" json:"disaster_id"`
	UserID             string    `db:"user_id" json:"user_id"`
	Content            string    `db:"content" json:"content"`
	ImageURL           string    `db:"image_url" json:"image_url"`
	VerificationStatus string    `db:"verification_status" json:"verification_status"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// ReportFilter narrows report listings.
type ReportFilter struct {
	VerificationStatus string
	UserID             string
	Limit              int
	Offset             int
}

// ReportStats summarizes report counts for one disaster.
type ReportStats struct {
	Total    int `db:"total" json:"total"`
	Pending  int `db:"pending" json:"pending"`
	Verified int `db:"verified" json:"verified"`
	Rejected int `db:"rejected" json:"rejected"`
	Recent   int `db:"recent" json:"recent"`
}

// Resource is a physical resource (shelter, food point, ...) located near
// a disaster.
type Resource struct {
	ID          string    `db:"id" json:"id"`
	DisasterID  string    `db:"disaster_id" json:"disaster_id"`
	Name        string    `db:"name" json:"name"`
	Type        string    `db:"type" json:"type"`
	Latitude    float64   `db:"latitude" json:"lat"`
	Longitude   float64   `db:"longitude" json:"lng"`
	Capacity    int       `db:"capacity" json:"capacity"`
	ContactInfo string    `db:"contact_info" json:"contact_info"`
	Description string    `db:"description" json:"description"`
	Available   bool      `db:"available" json:"available"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`

	// DistanceKm is computed by the radius query (not persisted).
	DistanceKm float64 `db:"distance_km" json:"distance_km,omitempty"`
}

// Geospatial statuses for a resource query result.
const (
	GeoActive   = "active"
	GeoFallback = "fallback"
)

// ResourceQueryParams echoes the query back to the caller.
type ResourceQueryParams struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Radius float64 `json:"radius"`
}

// ResourceQueryResult is the answer to "resources near point P for disaster D".
// GeospatialStatus tells the caller whether the list was distance-filtered
// (active) or is the full unfiltered set because the spatial query failed
// (fallback). The two must never be conflated.
type ResourceQueryResult struct {
	Resources        []*Resource         `json:"resources"`
	GeospatialStatus string              `json:"geospatial_status"`
	Note             string              `json:"note,omitempty"`
	QueryParams      ResourceQueryParams `json:"query_params"`
	TotalFound       *int                `json:"total_found,omitempty"`
	Type             string              `json:"type,omitempty"`
}

// SocialMediaPost is one entry of the social media feed for a disaster.
type SocialMediaPost struct {
	Post      string    `json:"post"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
}

// OfficialUpdate is one aggregated item from an official source
// (scraped page, syndicated feed, or generic fallback).
type OfficialUpdate struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	PubDate string `json:"pubDate"`
	Source  string `json:"source"`
}

// GeocodeResult is the cached outcome of the extract-then-geocode pipeline.
type GeocodeResult struct {
	LocationName string  `json:"location_name"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
}

// DisasterPatch carries partial updates to a disaster. Nil fields are left
// untouched.
type DisasterPatch struct {
	Title        *string              `json:"title"`
	LocationName *string              `json:"location_name"`
	Description  *string              `json:"description"`
	Tags         *dbtypes.StringSlice `json:"tags"`
	Lat          *float64             `json:"lat"`
	Lng          *float64             `json:"lng"`
}

// ReportPatch carries partial updates to a report.
type ReportPatch struct {
	Content            *string `json:"content"`
	ImageURL           *string `json:"image_url"`
	VerificationStatus *string `json:"verification_status"`
}

// ResourcePatch carries partial updates to a resource.
type ResourcePatch struct {
	Name        *string  `json:"name"`
	Type        *string  `json:"type"`
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Capacity    *int     `json:"capacity"`
	ContactInfo *string  `json:"contact_info"`
	Description *string  `json:"description"`
	Available   *bool    `json:"available"`
}
