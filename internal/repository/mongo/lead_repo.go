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

const leadCollectionName = "leads"

// mongoLeadRepository implements repository.LeadRepository.
// Engagement tags are embedded in the lead document.
type mongoLeadRepository struct {
	collection *mongo.Collection
}

// NewMongoLeadRepository creates a new Lead repository backed by MongoDB.
func NewMongoLeadRepository(db *mongo.Database) repository.LeadRepository {
	return &mongoLeadRepository{
		collection: db.Collection(leadCollectionName),
	}
}

// Create inserts a new lead.
func (r *mongoLeadRepository) Create(ctx context.Context, lead *domain.Lead) (primitive.ObjectID, error) {
	if lead.OwnerID == primitive.NilObjectID || lead.FirstName == "" {
		return primitive.NilObjectID, errors.New("lead requires ownerId and firstName")
	}
	lead.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now
	if lead.Status == "" {
		lead.Status = domain.LeadStatusNew
	}
	if lead.EngagementTags == nil {
		lead.EngagementTags = []domain.EngagementTag{}
	}

	result, err := r.collection.InsertOne(ctx, lead)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted lead ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single lead.
func (r *mongoLeadRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Lead, error) {
	var lead domain.Lead
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&lead)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &lead, nil
}

// GetByOwnerID retrieves every lead a student owns, newest first.
func (r *mongoLeadRepository) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Lead, error) {
	leads := []domain.Lead{}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &leads); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return leads, nil
}

// Update sets the non-nil fields of upd and returns the lead as stored afterwards.
func (r *mongoLeadRepository) Update(ctx context.Context, id primitive.ObjectID, upd domain.LeadUpdate) (*domain.Lead, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if upd.FirstName != nil {
		set["firstName"] = *upd.FirstName
	}
	if upd.LastName != nil {
		set["lastName"] = *upd.LastName
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.SocialHandle != nil {
		set["socialHandle"] = *upd.SocialHandle
	}
	if upd.Source != nil {
		set["source"] = *upd.Source
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.ScriptComponents != nil {
		set["scriptComponents"] = *upd.ScriptComponents
	}
	if upd.Notes != nil {
		set["notes"] = *upd.Notes
	}
	if upd.FollowUpDate != nil {
		set["followUpDate"] = *upd.FollowUpDate
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var lead domain.Lead
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&lead)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &lead, nil
}

// Delete removes a lead, but only when it belongs to ownerID.
func (r *mongoLeadRepository) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "ownerId": ownerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddEngagementTag appends a tag to the lead and returns the tag's new ID.
func (r *mongoLeadRepository) AddEngagementTag(ctx context.Context, leadID primitive.ObjectID, tag domain.EngagementTag) (primitive.ObjectID, error) {
	tag.ID = primitive.NewObjectID()
	if tag.CompletedDate.IsZero() {
		tag.CompletedDate = time.Now().UTC()
	}
	update := bson.M{
		"$push": bson.M{"engagementTags": tag},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": leadID}, update)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if result.MatchedCount == 0 {
		return primitive.NilObjectID, repository.ErrNotFound
	}
	return tag.ID, nil
}

// RemoveEngagementTag pulls the tag with tagID off the lead.
func (r *mongoLeadRepository) RemoveEngagementTag(ctx context.Context, leadID, tagID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"engagementTags": bson.M{"_id": tagID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": leadID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureLeadIndexes creates necessary indexes for the leads collection.
func EnsureLeadIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main query: a student's leads, newest first
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
