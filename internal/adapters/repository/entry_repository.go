package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/studydash/core/internal/domain/entities"
	"github.com/studydash/core/internal/infrastructure/database"
	"github.com/studydash/core/internal/infrastructure/logger"
	"github.com/studydash/core/internal/ports"
)

// EntryRepository implements ports.EntryRepository on a document store
// collection. One instance is created per whitelisted collection.
type EntryRepository[T entities.Entry] struct {
	coll   *mongo.Collection
	logger *logger.Logger
}

// NewEntryRepository creates a repository bound to the given collection
func NewEntryRepository[T entities.Entry](db *database.DB, collection entities.Collection, logger *logger.Logger) *EntryRepository[T] {
	return &EntryRepository[T]{
		coll:   db.Collection(collection.String()),
		logger: logger,
	}
}

func (r *EntryRepository[T]) Insert(ctx context.Context, entry T) (T, error) {
	var zero T

	res, err := r.coll.InsertOne(ctx, entry)
	if err != nil {
		return zero, fmt.Errorf("insert entry: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return zero, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	// Read the document back so the caller sees exactly what the store
	// persisted, store-assigned identifier included.
	return r.GetByID(ctx, id)
}

func (r *EntryRepository[T]) GetByID(ctx context.Context, id primitive.ObjectID) (T, error) {
	var entry T

	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entry, entities.ErrEntryNotFound
		}
		return entry, fmt.Errorf("get entry by id: %w", err)
	}

	return entry, nil
}

func (r *EntryRepository[T]) List(ctx context.Context, filter ports.EntryFilter) ([]T, error) {
	query := bson.M{}
	if filter.Bounded() {
		query["date"] = bson.M{
			"$gte": primitive.NewDateTimeFromTime(*filter.Start),
			"$lte": primitive.NewDateTimeFromTime(*filter.End),
		}
	}

	cursor, err := r.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	entries := []T{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}

	return entries, nil
}

func (r *EntryRepository[T]) Patch(ctx context.Context, id primitive.ObjectID, patch entities.Patch) error {
	fields, err := patchFields(patch)
	if err != nil {
		return err
	}

	// An empty patch is a no-op, but the target must still exist.
	if len(fields) == 0 {
		_, err := r.GetByID(ctx, id)
		return err
	}

	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return entities.ErrEntryNotFound
	}

	return nil
}

func (r *EntryRepository[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return entities.ErrEntryNotFound
	}

	return nil
}

// patchFields reduces a patch to the document fields it actually sets.
func patchFields(patch entities.Patch) (bson.M, error) {
	data, err := bson.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("marshal patch: %w", err)
	}

	var fields bson.M
	if err := bson.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal patch: %w", err)
	}

	return fields, nil
}
