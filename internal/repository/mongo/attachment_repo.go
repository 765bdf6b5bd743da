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

const attachmentCollectionName = "attachments"

// mongoAttachmentRepository implements repository.AttachmentRepository
type mongoAttachmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAttachmentRepository creates a new Attachment repository backed by MongoDB.
func NewMongoAttachmentRepository(db *mongo.Database) repository.AttachmentRepository {
	return &mongoAttachmentRepository{
		collection: db.Collection(attachmentCollectionName),
	}
}

// Create inserts new attachment metadata into the database.
func (r *mongoAttachmentRepository) Create(ctx context.Context, a *domain.Attachment) (primitive.ObjectID, error) {
	if a.ReportID == primitive.NilObjectID || a.StudentID == primitive.NilObjectID || a.S3ObjectKey == "" {
		return primitive.NilObjectID, errors.New("attachment requires reportId, studentId, and s3ObjectKey")
	}

	a.ID = primitive.NewObjectID()
	a.UploadedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, a)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateAttachment
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves attachment metadata by its ID.
func (r *mongoAttachmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Attachment, error) {
	var a domain.Attachment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// GetByReportID lists the attachments of one weekly report in upload order.
func (r *mongoAttachmentRepository) GetByReportID(ctx context.Context, reportID primitive.ObjectID) ([]domain.Attachment, error) {
	attachments := []domain.Attachment{}
	findOptions := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"reportId": reportID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &attachments); err != nil {
		return nil, err
	}
	return attachments, cursor.Err()
}

// EnsureAttachmentIndexes creates necessary indexes for the attachments collection.
func EnsureAttachmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reportId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "s3ObjectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
