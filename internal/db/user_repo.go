package db

import (
	"context"
	"errors"
	"time"

	"github.com/arzan03/TaskManager/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository stores users and their session tokens in MongoDB.
type UserRepository struct {
	users *mongo.Collection
}

func NewUserRepository(database *mongo.Database) *UserRepository {
	return &UserRepository{users: database.Collection(UsersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Tokens == nil {
		user.Tokens = []models.AuthToken{}
	}
	_, err := r.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateEmail
	}
	return err
}

func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByToken returns the user with the given id only while token is still
// in its token list.
func (r *UserRepository) FindByToken(ctx context.Context, id primitive.ObjectID, token string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id, "tokens.token": token})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile persists the mutable profile fields. Tokens are left to
// PushToken/PullToken so concurrent logins are never overwritten.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()
	_, err := r.users.UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
		"name":      user.Name,
		"role":      user.Role,
		"contactno": user.ContactNo,
		"email":     user.Email,
		"password":  user.Password,
		"address":   user.Address,
		"updatedAt": user.UpdatedAt,
	}})
	if mongo.IsDuplicateKeyError(err) {
		return models.ErrDuplicateEmail
	}
	return err
}

func (r *UserRepository) PushToken(ctx context.Context, id primitive.ObjectID, token string) error {
	_, err := r.users.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"tokens": models.AuthToken{Token: token}},
	})
	return err
}

func (r *UserRepository) PullToken(ctx context.Context, id primitive.ObjectID, token string) error {
	_, err := r.users.UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{"tokens": bson.M{"token": token}},
	})
	return err
}

func (r *UserRepository) ClearTokens(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.users.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"tokens": []models.AuthToken{}},
	})
	return err
}

// List returns all users, optionally restricted to one role.
func (r *UserRepository) List(ctx context.Context, role string) ([]models.User, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}

	cursor, err := r.users.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Workload averages task priority per assignee. Users without tasks are
// dropped by the $unwind stage.
func (r *UserRepository) Workload(ctx context.Context, role string) ([]models.Workload, error) {
	pipeline := mongo.Pipeline{}
	if role != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"role": role}}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$lookup", Value: bson.M{
			"from": TasksCollection,
			"let":  bson.M{"userid": "$_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$assignto", "$$userid"}}}},
				bson.M{"$group": bson.M{"_id": "$assignto", "avgload": bson.M{"$avg": "$priority"}}},
			},
			"as": "result",
		}}},
		bson.D{{Key: "$unwind", Value: bson.M{"path": "$result"}}},
		bson.D{{Key: "$project", Value: bson.M{
			"_id":       0,
			"name":      1,
			"avgload":   "$result.avgload",
			"role":      1,
			"contactno": 1,
			"email":     1,
		}}},
	)

	cursor, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []models.Workload{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Delete removes the user and returns the deleted document, or nil if no
// user had that id.
func (r *UserRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.users.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
