package service

import (
	"context"
	"strings"

	"github.com/cryptopulse/backend/internal/repository"
)

// WatchlistService manages the per-user watched asset list. Toggle
// reports whether the asset is watched after the call.
type WatchlistService interface {
	List(ctx context.Context, userID string) ([]string, error)
	Toggle(ctx context.Context, userID, assetID string) (bool, error)
	Remove(ctx context.Context, userID, assetID string) error
}

type watchlistService struct {
	store repository.WatchlistStore
}

func NewWatchlistService(store repository.WatchlistStore) WatchlistService {
	return &watchlistService{store: store}
}

func (s *watchlistService) List(ctx context.Context, userID string) ([]string, error) {
	return s.store.Load(ctx, userID)
}

func (s *watchlistService) Toggle(ctx context.Context, userID, assetID string) (bool, error) {
	assetID = strings.TrimSpace(assetID)
	list, err := s.store.Load(ctx, userID)
	if err != nil {
		return false, err
	}

	kept := list[:0]
	removed := false
	for _, id := range list {
		if id == assetID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if !removed {
		kept = append(kept, assetID)
	}

	if err := s.store.Save(ctx, userID, kept); err != nil {
		return false, err
	}
	return !removed, nil
}

func (s *watchlistService) Remove(ctx context.Context, userID, assetID string) error {
	list, err := s.store.Load(ctx, userID)
	if err != nil {
		return err
	}

	kept := list[:0]
	for _, id := range list {
		if id != assetID {
			kept = append(kept, id)
		}
	}
	return s.store.Save(ctx, userID, kept)
}
