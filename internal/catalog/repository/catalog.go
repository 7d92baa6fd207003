package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogerrors "courtbook/internal/catalog/errors"
	"courtbook/pkg/config"
	"courtbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CourtsCollection       = "Courts"
	EquipmentCollection    = "Equipment"
	CoachesCollection      = "Coaches"
	PricingRulesCollection = "Pricing_rules"
)

// CatalogRepository reads courts, equipment, coaches and pricing rules.
// The booking engine never mutates catalog data; seeding and administration
// happen out of band.
type CatalogRepository interface {
	GetCourt(ctx context.Context, id string) (*model.Court, error)
	GetEquipment(ctx context.Context, id string) (*model.Equipment, error)
	GetCoach(ctx context.Context, id string) (*model.Coach, error)
	ListActiveCourts(ctx context.Context) ([]*model.Court, error)
	ListActivePricingRules(ctx context.Context) ([]*model.PricingRule, error)
}

type mongoCatalogRepository struct {
	cfg     *config.Config
	courts  *mongo.Collection
	equip   *mongo.Collection
	coaches *mongo.Collection
	rules   *mongo.Collection
}

func NewMongoCatalogRepository(cfg *config.Config) CatalogRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCatalogRepository{
		cfg:     cfg,
		courts:  db.Collection(CourtsCollection),
		equip:   db.Collection(EquipmentCollection),
		coaches: db.Collection(CoachesCollection),
		rules:   db.Collection(PricingRulesCollection),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// SessionContext cannot be wrapped without breaking transaction semantics.
func (r *mongoCatalogRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoCatalogRepository) GetCourt(ctx context.Context, id string) (*model.Court, error) {
	var court model.Court
	if err := r.findByID(ctx, r.courts, id, &court); err != nil {
		return nil, err
	}
	return &court, nil
}

func (r *mongoCatalogRepository) GetEquipment(ctx context.Context, id string) (*model.Equipment, error) {
	var equipment model.Equipment
	if err := r.findByID(ctx, r.equip, id, &equipment); err != nil {
		return nil, err
	}
	return &equipment, nil
}

func (r *mongoCatalogRepository) GetCoach(ctx context.Context, id string) (*model.Coach, error) {
	var coach model.Coach
	if err := r.findByID(ctx, r.coaches, id, &coach); err != nil {
		return nil, err
	}
	return &coach, nil
}

func (r *mongoCatalogRepository) findByID(ctx context.Context, coll *mongo.Collection, id string, out any) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", catalogerrors.ErrInvalidID, id)
	}

	err = coll.FindOne(ctx, bson.M{"_id": objectID}).Decode(out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return catalogerrors.ErrNotFound
		}
		return fmt.Errorf("failed to find %s document: %w", coll.Name(), err)
	}

	return nil
}

func (r *mongoCatalogRepository) ListActiveCourts(ctx context.Context) ([]*model.Court, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.courts.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find courts: %w", err)
	}
	defer cursor.Close(ctx)

	var courts []*model.Court
	if err = cursor.All(ctx, &courts); err != nil {
		return nil, fmt.Errorf("failed to decode courts: %w", err)
	}

	return courts, nil
}

// ListActivePricingRules returns active rules in evaluation order: ascending
// priority, ties broken by _id.
func (r *mongoCatalogRepository) ListActivePricingRules(ctx context.Context) ([]*model.PricingRule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "priority", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.rules.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find pricing rules: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []*model.PricingRule
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode pricing rules: %w", err)
	}

	return rules, nil
}
