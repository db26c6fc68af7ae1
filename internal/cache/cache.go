// Package cache implements the TTL cache layer fronting slow or rate-limited
// upstreams (geocoding, image verification, scraped official updates, social
// media feeds).
//
// Cache failures are advisory: every implementation logs and absorbs its own
// errors instead of propagating them, so a cache outage degrades the system to
// "always fetch upstream" rather than to total failure.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is the key-value contract shared by the Redis and in-memory
// implementations. Get treats an expired entry exactly like an absent one;
// callers cannot distinguish the two.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// Common TTLs. Scraped aggregates churn faster than geocodes, so they get a
// shorter window.
const (
	DefaultTTL         = time.Hour
	OfficialUpdatesTTL = 30 * time.Minute
)

// Key builders. Keys are namespaced by concern so the invalidation map can
// derive them from a mutation without a lookup.

func GeocodeKey(description string) string {
	return "geocode_" + description
}

func SocialMediaKey(disasterID string) string {
	return "social_media_" + disasterID
}

func OfficialUpdatesKey(disasterID string) string {
	return "official_updates_" + disasterID
}

func VerifyImageKey(disasterID, imageURL string) string {
	return fmt.Sprintf("verify_image_%s_%s", disasterID, imageURL)
}
