package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "courtbook/internal/bookings/errors"
	"courtbook/pkg/config"
	"courtbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const SlotLocksCollection = "Slot_locks"

// SlotLockRepository provides advisory locks keyed by resource and date.
// Lock documents expire through a TTL index on expires_at, so a crashed
// process cannot wedge a slot permanently.
type SlotLockRepository interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (*model.SlotLock, error)
	Release(ctx context.Context, key string) error
}

type mongoSlotLockRepository struct {
	collection *mongo.Collection
}

func NewMongoSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		collection: db.Collection(SlotLocksCollection),
	}
}

// Acquire inserts the lock document. A duplicate key means another request
// holds the lock; callers get ErrLockHeld and should surface a conflict.
func (r *mongoSlotLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (*model.SlotLock, error) {
	lock := &model.SlotLock{
		ID:        key,
		ExpiresAt: time.Now().Add(ttl),
		CreatedAt: time.Now(),
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, bookingserrors.ErrLockHeld
		}
		return nil, fmt.Errorf("failed to acquire slot lock: %w", err)
	}

	return lock, nil
}

func (r *mongoSlotLockRepository) Release(ctx context.Context, key string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}
