package service

import (
	"context"

	"github.com/satyam1256/disaster/internal/cache"
)

// VerifyImage asks the model whether an image attached to a disaster looks
// authentic. Verdicts are cached for an hour per (disaster, image URL) pair.
func (s *Service) VerifyImage(ctx context.Context, disasterID, imageURL string) (string, error) {
	if _, err := s.repo.DisasterByID(disasterID); err != nil {
		return "", err
	}

	key := cache.VerifyImageKey(disasterID, imageURL)
	if b, ok := s.cache.Get(ctx, key); ok {
		return string(b), nil
	}

	verdict, err := s.llm.VerifyImage(ctx, imageURL)
	if err != nil {
		return "", err
	}
	s.cache.Set(ctx, key, []byte(verdict), cache.DefaultTTL)
	return verdict, nil
}
