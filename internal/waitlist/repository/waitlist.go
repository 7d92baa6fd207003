package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	waitlisterrors "courtbook/internal/waitlist/errors"
	"courtbook/pkg/config"
	mongotx "courtbook/pkg/db/mongo"
	"courtbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Waitlists"

type mongoWaitlistRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type WaitlistRepository interface {
	Insert(ctx context.Context, entry *model.WaitlistEntry) error
	FindByID(ctx context.Context, id string) (*model.WaitlistEntry, error)
	FindByUser(ctx context.Context, userID string) ([]*model.WaitlistEntry, error)
	CountForSlot(ctx context.Context, courtID string, date time.Time, startTime, endTime string) (int64, error)
	ClaimNextUnnotified(ctx context.Context, courtID string, date time.Time, startTime, endTime string) (*model.WaitlistEntry, error)
	Delete(ctx context.Context, id string) error
	ShiftPositionsAfter(ctx context.Context, courtID string, date time.Time, startTime, endTime string, removedPosition int) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoWaitlistRepository(cfg *config.Config) WaitlistRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWaitlistRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
func (r *mongoWaitlistRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func slotFilter(courtID string, date time.Time, startTime, endTime string) bson.M {
	return bson.M{
		"court_id":   courtID,
		"date":       date,
		"start_time": startTime,
		"end_time":   endTime,
	}
}

func (r *mongoWaitlistRepository) Insert(ctx context.Context, entry *model.WaitlistEntry) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	entry.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to insert waitlist entry: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		entry.ID = oid.Hex()
	}
	return nil
}

func (r *mongoWaitlistRepository) FindByID(ctx context.Context, id string) (*model.WaitlistEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", waitlisterrors.ErrInvalidID, id)
	}

	var entry model.WaitlistEntry
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, waitlisterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find waitlist entry: %w", err)
	}

	return &entry, nil
}

func (r *mongoWaitlistRepository) FindByUser(ctx context.Context, userID string) ([]*model.WaitlistEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"requester.user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find waitlist entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*model.WaitlistEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode waitlist entries: %w", err)
	}

	return entries, nil
}

func (r *mongoWaitlistRepository) CountForSlot(ctx context.Context, courtID string, date time.Time, startTime, endTime string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, slotFilter(courtID, date, startTime, endTime))
	if err != nil {
		return 0, fmt.Errorf("failed to count waitlist entries: %w", err)
	}
	return count, nil
}

// ClaimNextUnnotified atomically selects the lowest-position entry for the
// slot that has not been promoted yet and flips it to notified, returning the
// claimed entry. The single findOneAndUpdate makes concurrent promotions for
// the same slot claim distinct entries. ErrNotFound means the queue is
// exhausted.
func (r *mongoWaitlistRepository) ClaimNextUnnotified(ctx context.Context, courtID string, date time.Time, startTime, endTime string) (*model.WaitlistEntry, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := slotFilter(courtID, date, startTime, endTime)
	filter["notified"] = false

	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "position", Value: 1}}).
		SetReturnDocument(options.After)

	var entry model.WaitlistEntry
	err := r.collection.FindOneAndUpdate(ctx, filter,
		bson.M{"$set": bson.M{"notified": true}},
		opts,
	).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, waitlisterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to claim next waitlist entry: %w", err)
	}

	return &entry, nil
}

func (r *mongoWaitlistRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", waitlisterrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete waitlist entry: %w", err)
	}

	if result.DeletedCount == 0 {
		return waitlisterrors.ErrNotFound
	}

	return nil
}

// ShiftPositionsAfter closes the gap a removed entry leaves, keeping each
// slot queue contiguous from 1.
func (r *mongoWaitlistRepository) ShiftPositionsAfter(ctx context.Context, courtID string, date time.Time, startTime, endTime string, removedPosition int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := slotFilter(courtID, date, startTime, endTime)
	filter["position"] = bson.M{"$gt": removedPosition}

	_, err := r.collection.UpdateMany(ctx, filter, bson.M{"$inc": bson.M{"position": -1}})
	if err != nil {
		return fmt.Errorf("failed to shift waitlist positions: %w", err)
	}

	return nil
}

func (r *mongoWaitlistRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
