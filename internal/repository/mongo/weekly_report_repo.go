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

const weeklyReportCollectionName = "weekly_reports"

type mongoWeeklyReportRepository struct {
	collection *mongo.Collection
}

// NewMongoWeeklyReportRepository creates a new WeeklyReport repository backed by MongoDB.
func NewMongoWeeklyReportRepository(db *mongo.Database) repository.WeeklyReportRepository {
	return &mongoWeeklyReportRepository{
		collection: db.Collection(weeklyReportCollectionName),
	}
}

func (r *mongoWeeklyReportRepository) Create(ctx context.Context, report *domain.WeeklyReport) (primitive.ObjectID, error) {
	if report.StudentID == primitive.NilObjectID || report.WeekNumber < 1 {
		return primitive.NilObjectID, errors.New("weekly report requires studentId and a week number of at least 1")
	}
	report.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	report.SubmittedAt = now
	report.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, report)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateReport
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted report ID")
	}
	return insertedID, nil
}

func (r *mongoWeeklyReportRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WeeklyReport, error) {
	var report domain.WeeklyReport
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// GetByStudentID lists a student's reports, latest week first.
func (r *mongoWeeklyReportRepository) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.WeeklyReport, error) {
	reports := []domain.WeeklyReport{}
	findOptions := options.Find().SetSort(bson.D{{Key: "weekNumber", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"studentId": studentID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, cursor.Err()
}

func (r *mongoWeeklyReportRepository) GetByStudentAndWeek(ctx context.Context, studentID primitive.ObjectID, weekNumber int) (*domain.WeeklyReport, error) {
	var report domain.WeeklyReport
	err := r.collection.FindOne(ctx, bson.M{"studentId": studentID, "weekNumber": weekNumber}).Decode(&report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (r *mongoWeeklyReportRepository) SetFeedback(ctx context.Context, id primitive.ObjectID, feedback string) error {
	update := bson.M{"$set": bson.M{"coachFeedback": feedback, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoWeeklyReportRepository) AddAttachmentID(ctx context.Context, id, attachmentID primitive.ObjectID) error {
	update := bson.M{
		"$addToSet": bson.M{"attachmentIds": attachmentID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureWeeklyReportIndexes creates necessary indexes for the weekly_reports collection.
func EnsureWeeklyReportIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One report per student per week
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "weekNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
