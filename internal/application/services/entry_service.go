package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studydash/core/internal/domain/entities"
	"github.com/studydash/core/internal/infrastructure/logger"
	"github.com/studydash/core/internal/ports"
)

// EntryService handles operations on one entry collection. Listing goes
// through an optional read-through cache; every mutation drops the cached
// lists of its collection (refetch-on-mutation).
type EntryService[T entities.Entry] struct {
	collection entities.Collection
	repo       ports.EntryRepository[T]
	cache      ports.CacheRepository
	cacheTTL   time.Duration
	logger     *logger.Logger
}

// NewEntryService creates a new entry service. cache may be nil, in which
// case every List hits the store.
func NewEntryService[T entities.Entry](
	collection entities.Collection,
	repo ports.EntryRepository[T],
	cache ports.CacheRepository,
	cacheTTL time.Duration,
	logger *logger.Logger,
) *EntryService[T] {
	return &EntryService[T]{
		collection: collection,
		repo:       repo,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Collection returns the collection this service operates on.
func (s *EntryService[T]) Collection() entities.Collection {
	return s.collection
}

// List returns the collection's entries, narrowed by filter.
func (s *EntryService[T]) List(ctx context.Context, filter ports.EntryFilter) ([]T, error) {
	key := s.listKey(filter)

	if s.cache != nil {
		var cached []T
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, ports.ErrCacheMiss) {
			s.logger.Warnw("Cache read failed", "collection", s.collection, "error", err)
		}
	}

	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.collection, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, entries, s.cacheTTL); err != nil {
			s.logger.Warnw("Cache write failed", "collection", s.collection, "error", err)
		}
	}

	return entries, nil
}

// Create inserts a new entry and returns it with its store-assigned id.
func (s *EntryService[T]) Create(ctx context.Context, entry T) (T, error) {
	var zero T

	if !entry.EntryID().IsZero() {
		return zero, entities.ErrEntryIDAssigned
	}

	stored, err := s.repo.Insert(ctx, entry)
	if err != nil {
		return zero, fmt.Errorf("create %s entry: %w", s.collection, err)
	}

	s.invalidate(ctx)
	s.logger.Infow("Entry created", "collection", s.collection, "entry_id", stored.EntryID().Hex())

	return stored, nil
}

// Patch merge-updates the entry named by the patch: only the fields the
// patch carries change.
func (s *EntryService[T]) Patch(ctx context.Context, patch entities.Patch) error {
	id := patch.PatchID()
	if id.IsZero() {
		return entities.ErrMissingEntryID
	}

	if err := s.repo.Patch(ctx, id, patch); err != nil {
		if errors.Is(err, entities.ErrEntryNotFound) {
			return err
		}
		return fmt.Errorf("update %s entry: %w", s.collection, err)
	}

	s.invalidate(ctx)
	s.logger.Infow("Entry updated", "collection", s.collection, "entry_id", id.Hex())

	return nil
}

// Delete removes the entry with the given id.
func (s *EntryService[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	if id.IsZero() {
		return entities.ErrMissingEntryID
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, entities.ErrEntryNotFound) {
			return err
		}
		return fmt.Errorf("delete %s entry: %w", s.collection, err)
	}

	s.invalidate(ctx)
	s.logger.Infow("Entry deleted", "collection", s.collection, "entry_id", id.Hex())

	return nil
}

func (s *EntryService[T]) listKey(filter ports.EntryFilter) string {
	if filter.Bounded() {
		return fmt.Sprintf("entries:%s:range:%d-%d", s.collection, filter.Start.UnixMilli(), filter.End.UnixMilli())
	}
	return fmt.Sprintf("entries:%s:all", s.collection)
}

func (s *EntryService[T]) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, fmt.Sprintf("entries:%s:*", s.collection)); err != nil {
		s.logger.Warnw("Cache invalidation failed", "collection", s.collection, "error", err)
	}
}
