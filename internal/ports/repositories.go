package ports

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studydash/core/internal/domain/entities"
)

// ErrCacheMiss is returned by CacheRepository.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// EntryFilter narrows a collection listing. When both bounds are set the
// filter keeps documents whose date falls in [Start, End] inclusive; a filter
// with only one bound behaves like no filter at all.
type EntryFilter struct {
	Start *time.Time
	End   *time.Time
}

// Bounded reports whether both range bounds are present.
func (f EntryFilter) Bounded() bool {
	return f.Start != nil && f.End != nil
}

// EntryRepository defines the data operations for one entry collection.
type EntryRepository[T entities.Entry] interface {
	Insert(ctx context.Context, entry T) (T, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (T, error)
	List(ctx context.Context, filter EntryFilter) ([]T, error)
	Patch(ctx context.Context, id primitive.ObjectID, patch entities.Patch) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CacheRepository defines the interface for caching operations.
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
	DeletePattern(ctx context.Context, pattern string) error
}
