package db

import (
	"context"
	"errors"
	"time"

	"github.com/arzan03/TaskManager/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepository stores tasks in MongoDB.
type TaskRepository struct {
	tasks *mongo.Collection
}

func NewTaskRepository(database *mongo.Database) *TaskRepository {
	return &TaskRepository{tasks: database.Collection(TasksCollection)}
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	_, err := r.tasks.InsertOne(ctx, task)
	return err
}

// FindByID returns the task with the given id. A non-nil assignee further
// restricts the match to tasks assigned to that user.
func (r *TaskRepository) FindByID(ctx context.Context, id primitive.ObjectID, assignee *primitive.ObjectID) (*models.Task, error) {
	filter := bson.M{"_id": id}
	if assignee != nil {
		filter["assignto"] = *assignee
	}

	var task models.Task
	err := r.tasks.FindOne(ctx, filter).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) Find(ctx context.Context, q models.TaskQuery) ([]models.Task, error) {
	filter := bson.M{}
	if q.AssignTo != nil {
		filter["assignto"] = *q.AssignTo
	}
	if q.MinDate != nil || q.MaxDate != nil {
		created := bson.M{}
		if q.MinDate != nil {
			created["$gte"] = *q.MinDate
		}
		if q.MaxDate != nil {
			created["$lte"] = *q.MaxDate
		}
		filter["createdAt"] = created
	}

	sort := bson.D{{Key: "createdAt", Value: -1}}
	if q.PrioritySort != 0 {
		sort = bson.D{{Key: "priority", Value: q.PrioritySort}, {Key: "createdAt", Value: -1}}
	}

	cursor, err := r.tasks.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now()
	_, err := r.tasks.ReplaceOne(ctx, bson.M{"_id": task.ID}, task)
	return err
}

// Delete removes the task and returns the deleted document, or nil.
func (r *TaskRepository) Delete(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := r.tasks.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteByAssignee removes every task assigned to the user.
func (r *TaskRepository) DeleteByAssignee(ctx context.Context, assignee primitive.ObjectID) (int64, error) {
	res, err := r.tasks.DeleteMany(ctx, bson.M{"assignto": assignee})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
