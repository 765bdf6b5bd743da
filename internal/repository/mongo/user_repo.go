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

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateUser
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	filter := bson.M{"email": email}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// AddStudentIDToCoach adds a student's ID to a coach's StudentIDs array.
func (r *mongoUserRepository) AddStudentIDToCoach(ctx context.Context, coachID, studentID primitive.ObjectID) error {
	filter := bson.M{"_id": coachID, "role": domain.RoleCoach}
	update := bson.M{
		"$addToSet": bson.M{"studentIds": studentID}, // $addToSet prevents duplicates
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	// ModifiedCount is 0 when the student was already in the set, which is fine.
	return nil
}

// GetStudentsByCoachID retrieves all students assigned to a coach.
// coachId on the student is authoritative; the coach's studentIds is a denormalized copy.
func (r *mongoUserRepository) GetStudentsByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	coach, err := r.GetByID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	if !coach.IsCoach() {
		return nil, errors.New("user is not a coach")
	}

	students := []domain.User{}
	filter := bson.M{"coachId": coachID, "role": domain.RoleStudent}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &students); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return students, nil
}

// SetCoachForStudent sets the CoachID of a student that has no coach yet (or already
// has this one). The check and the write are a single conditional update.
func (r *mongoUserRepository) SetCoachForStudent(ctx context.Context, studentID, coachID primitive.ObjectID) error {
	filter := bson.M{
		"_id":  studentID,
		"role": domain.RoleStudent,
		"$or": bson.A{
			bson.M{"coachId": bson.M{"$exists": false}},
			bson.M{"coachId": nil},
			bson.M{"coachId": coachID},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"coachId":   coachID,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount > 0 {
		return nil
	}

	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": studentID, "role": domain.RoleStudent})
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrCoachAssigned
}

// UpdateRole replaces the role of a user and unlinks it from coaches and students.
func (r *mongoUserRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, role domain.Role) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set":   bson.M{"role": role, "updatedAt": now},
		"$unset": bson.M{"coachId": "", "studentIds": ""},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	// Students of a former coach.
	if _, err := r.collection.UpdateMany(ctx,
		bson.M{"coachId": id},
		bson.M{"$unset": bson.M{"coachId": ""}, "$set": bson.M{"updatedAt": now}},
	); err != nil {
		return err
	}
	// The coach of a former student.
	if _, err := r.collection.UpdateMany(ctx,
		bson.M{"studentIds": id},
		bson.M{"$pull": bson.M{"studentIds": id}, "$set": bson.M{"updatedAt": now}},
	); err != nil {
		return err
	}
	return nil
}

// UpdateProgramAccess replaces the payment flag and both program windows of a student.
func (r *mongoUserRepository) UpdateProgramAccess(ctx context.Context, id primitive.ObjectID, access domain.ProgramAccess) error {
	filter := bson.M{"_id": id, "role": domain.RoleStudent}
	update := bson.M{
		"$set": bson.M{
			"hasPaid":           access.HasPaid,
			"coachingTermStart": access.CoachingTermStart,
			"coachingTermEnd":   access.CoachingTermEnd,
			"accessStart":       access.AccessStart,
			"accessEnd":         access.AccessEnd,
			"updatedAt":         time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}}, // Finding students by coach
			Options: options.Index().SetSparse(true),    // Only students carry coachId
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
