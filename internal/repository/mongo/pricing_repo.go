package mongo

import (
	"context"
	"errors"
	"focuscoach/coaching-app/internal/domain"
	"focuscoach/coaching-app/internal/repository"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const pricingCollectionName = "pricing_plans"

type mongoPricingRepository struct {
	collection *mongo.Collection
}

// NewMongoPricingRepository creates a new PricingPlan repository backed by MongoDB.
func NewMongoPricingRepository(db *mongo.Database) repository.PricingRepository {
	return &mongoPricingRepository{
		collection: db.Collection(pricingCollectionName),
	}
}

func (r *mongoPricingRepository) Create(ctx context.Context, plan *domain.PricingPlan) (primitive.ObjectID, error) {
	if plan.Name == "" || plan.Currency == "" {
		return primitive.NilObjectID, errors.New("pricing plan requires name and currency")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

func (r *mongoPricingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PricingPlan, error) {
	var plan domain.PricingPlan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// List returns plans cheapest first, optionally only the active ones.
func (r *mongoPricingRepository) List(ctx context.Context, activeOnly bool) ([]domain.PricingPlan, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	plans := []domain.PricingPlan{}
	findOptions := options.Find().SetSort(bson.D{{Key: "priceCents", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, cursor.Err()
}

func (r *mongoPricingRepository) Update(ctx context.Context, plan *domain.PricingPlan) error {
	if plan.ID == primitive.NilObjectID {
		return errors.New("pricing plan ID is required for update")
	}
	updateDoc := bson.M{
		"$set": bson.M{
			"name":        plan.Name,
			"description": plan.Description,
			"priceCents":  plan.PriceCents,
			"currency":    plan.Currency,
			"interval":    plan.Interval,
			"termWeeks":   plan.TermWeeks,
			"active":      plan.Active,
			"updatedAt":   time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": plan.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePricingIndexes creates necessary indexes for the pricing_plans collection.
func EnsurePricingIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "active", Value: 1}, {Key: "priceCents", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
