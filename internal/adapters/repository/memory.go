package repository

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/studydash/core/internal/domain/entities"
	"github.com/studydash/core/internal/ports"
)

// MemoryEntryRepository is an in-memory ports.EntryRepository with the same
// semantics as the document store implementation. It backs the handler,
// service and client tests.
type MemoryEntryRepository[T entities.Entry] struct {
	mu      sync.RWMutex
	entries map[primitive.ObjectID]T
	order   []primitive.ObjectID
}

// NewMemoryEntryRepository creates an empty in-memory repository
func NewMemoryEntryRepository[T entities.Entry]() *MemoryEntryRepository[T] {
	return &MemoryEntryRepository[T]{
		entries: make(map[primitive.ObjectID]T),
	}
}

func (r *MemoryEntryRepository[T]) Insert(ctx context.Context, entry T) (T, error) {
	var zero T

	id := primitive.NewObjectID()
	stored, err := reencode(entry, bson.M{"_id": id})
	if err != nil {
		return zero, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[id] = stored
	r.order = append(r.order, id)

	return stored, nil
}

func (r *MemoryEntryRepository[T]) GetByID(ctx context.Context, id primitive.ObjectID) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		var zero T
		return zero, entities.ErrEntryNotFound
	}

	return entry, nil
}

func (r *MemoryEntryRepository[T]) List(ctx context.Context, filter ports.EntryFilter) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := []T{}
	for _, id := range r.order {
		entry, ok := r.entries[id]
		if !ok {
			continue
		}
		if filter.Bounded() {
			date, hasDate := entry.RangeDate()
			if !hasDate || date.Before(*filter.Start) || date.After(*filter.End) {
				continue
			}
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (r *MemoryEntryRepository[T]) Patch(ctx context.Context, id primitive.ObjectID, patch entities.Patch) error {
	fields, err := patchFields(patch)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok {
		return entities.ErrEntryNotFound
	}

	if len(fields) == 0 {
		return nil
	}

	merged, err := reencode(entry, fields)
	if err != nil {
		return err
	}
	r.entries[id] = merged

	return nil
}

func (r *MemoryEntryRepository[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[id]; !ok {
		return entities.ErrEntryNotFound
	}
	delete(r.entries, id)

	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}

// reencode round-trips entry through BSON with overrides merged in, which
// mirrors how a $set lands on a stored document.
func reencode[T entities.Entry](entry T, overrides bson.M) (T, error) {
	var zero T

	data, err := bson.Marshal(entry)
	if err != nil {
		return zero, err
	}

	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return zero, err
	}
	for k, v := range overrides {
		doc[k] = v
	}

	merged, err := bson.Marshal(doc)
	if err != nil {
		return zero, err
	}

	var out T
	if err := bson.Unmarshal(merged, &out); err != nil {
		return zero, err
	}

	return out, nil
}
