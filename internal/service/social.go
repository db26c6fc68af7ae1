package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/satyam1256/disaster/internal/cache"
	"github.com/satyam1256/disaster/internal/ws"
	"github.com/satyam1256/disaster/pkg/models"
)

// SocialMedia returns the social media feed for a disaster, cache-aside with
// a one hour TTL. The feed is synthesized from the disaster record and its
// recent verified reports; any report mutation on the disaster erases the
// cached feed, so the next read rebuilds it. Every read publishes the feed,
// cached or not, so subscribers track read activity.
func (s *Service) SocialMedia(ctx context.Context, disasterID string) ([]models.SocialMediaPost, error) {
	key := cache.SocialMediaKey(disasterID)
	if b, ok := s.cache.Get(ctx, key); ok {
		var posts []models.SocialMediaPost
		if err := json.Unmarshal(b, &posts); err == nil {
			s.publishFeed(disasterID, posts)
			return posts, nil
		}
		s.cache.Delete(ctx, key)
	}

	d, err := s.repo.DisasterByID(disasterID)
	if err != nil {
		return nil, err
	}
	posts := s.mockPosts(ctx, d)

	if b, err := json.Marshal(posts); err == nil {
		s.cache.Set(ctx, key, b, cache.DefaultTTL)
	}
	s.publishFeed(disasterID, posts)
	return posts, nil
}

func (s *Service) publishFeed(disasterID string, posts []models.SocialMediaPost) {
	s.pub.Publish(ws.TopicSocialMediaUpdated, map[string]any{
		"disaster_id": disasterID,
		"posts":       posts,
	})
}

// mockPosts stands in for a real social media API. Verified reports show up
// as posts so the feed reflects actual activity on the disaster.
func (s *Service) mockPosts(ctx context.Context, d *models.Disaster) []models.SocialMediaPost {
	tag := "disaster"
	if len(d.Tags) > 0 {
		tag = d.Tags[0]
	}
	now := time.Now().UTC()
	posts := []models.SocialMediaPost{
		{Post: fmt.Sprintf("#%srelief Need food and water in %s", tag, d.LocationName), User: "citizen1", Timestamp: now},
		{Post: fmt.Sprintf("Shelter available near %s #%s", d.LocationName, tag), User: "reliefvolunteer", Timestamp: now},
		{Post: fmt.Sprintf("Roads blocked around %s, avoid the area #%s", d.LocationName, tag), User: "localreporter", Timestamp: now},
	}

	reports, err := s.repo.Reports(d.ID, models.ReportFilter{
		VerificationStatus: models.StatusVerified,
		Limit:              5,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("disaster_id", d.ID).Msg("verified reports unavailable for feed")
		return posts
	}
	for _, r := range reports {
		posts = append(posts, models.SocialMediaPost{
			Post:      r.Content,
			User:      r.UserID,
			Timestamp: r.CreatedAt,
		})
	}
	return posts
}
