package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"task-manager.com/task-manager/internal/constants"
	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

const tasksCollection = "tasks"

type taskDocument struct {
	ID            primitive.ObjectID    `bson:"_id,omitempty"`
	Title         string                `bson:"title"`
	Description   string                `bson:"description"`
	Priority      string                `bson:"priority"`
	Status        string                `bson:"status"`
	DueDate       *time.Time            `bson:"dueDate,omitempty"`
	AssignedTo    []primitive.ObjectID  `bson:"assignedTo"`
	CreatedBy     primitive.ObjectID    `bson:"createdBy"`
	TodoChecklist []model.ChecklistItem `bson:"todoChecklist"`
	Progress      int                   `bson:"progress"`
	Attachments   []string              `bson:"attachments"`
	CreatedAt     time.Time             `bson:"createdAt"`
	UpdatedAt     time.Time             `bson:"updatedAt"`
}

// MongoTaskRepository keeps each task, checklist included, in a single
// document so every mutation is one atomic write.
type MongoTaskRepository struct {
	db *mongo.Database
}

var _ TaskRepository = (*MongoTaskRepository)(nil)

func NewMongoTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{db: db}
}

func (r *MongoTaskRepository) collection() *mongo.Collection {
	return r.db.Collection(tasksCollection)
}

// EnsureIndexes creates the indexes backing role-scoped and dashboard queries.
func (r *MongoTaskRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "assignedTo", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "dueDate", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create task indexes: %w", err)
	}
	return nil
}

func (r *MongoTaskRepository) Create(ctx context.Context, task *model.Task) error {
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	doc, err := toTaskDocument(task)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection().InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	task.ID = doc.ID.Hex()
	return nil
}

func (r *MongoTaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrTaskNotFound
	}

	var doc taskDocument
	err = r.collection().FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task %s: %w", id, err)
	}

	task := doc.toModel()
	return &task, nil
}

func (r *MongoTaskRepository) Find(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	query, err := taskQuery(filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return r.find(ctx, query, opts)
}

func (r *MongoTaskRepository) FindRecent(ctx context.Context, filter TaskFilter, limit int) ([]model.Task, error) {
	if limit <= 0 {
		return nil, apperrors.ErrInvalidLimit
	}

	query, err := taskQuery(filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, query, opts)
}

func (r *MongoTaskRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]model.Task, error) {
	cursor, err := r.collection().Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, doc.toModel())
	}
	return tasks, nil
}

func (r *MongoTaskRepository) Count(ctx context.Context, filter TaskFilter) (int64, error) {
	query, err := taskQuery(filter)
	if err != nil {
		return 0, err
	}

	count, err := r.collection().CountDocuments(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

type groupCountDocument struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

func (r *MongoTaskRepository) countBy(ctx context.Context, field string, filter TaskFilter) ([]groupCountDocument, error) {
	query, err := taskQuery(filter)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: query}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.collection().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count tasks by %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	var rows []groupCountDocument
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode %s counts: %w", field, err)
	}
	return rows, nil
}

func (r *MongoTaskRepository) CountByStatus(ctx context.Context, filter TaskFilter) (map[constants.TaskStatus]int64, error) {
	rows, err := r.countBy(ctx, "status", filter)
	if err != nil {
		return nil, err
	}

	counts := make(map[constants.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[constants.TaskStatus(row.Key)] = row.Count
	}
	return counts, nil
}

func (r *MongoTaskRepository) CountByPriority(ctx context.Context, filter TaskFilter) (map[constants.TaskPriority]int64, error) {
	rows, err := r.countBy(ctx, "priority", filter)
	if err != nil {
		return nil, err
	}

	counts := make(map[constants.TaskPriority]int64, len(rows))
	for _, row := range rows {
		counts[constants.TaskPriority(row.Key)] = row.Count
	}
	return counts, nil
}

func (r *MongoTaskRepository) Update(ctx context.Context, task *model.Task) error {
	objectID, err := primitive.ObjectIDFromHex(task.ID)
	if err != nil {
		return apperrors.ErrTaskNotFound
	}

	task.UpdatedAt = time.Now().UTC()
	doc, err := toTaskDocument(task)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"title":         doc.Title,
		"description":   doc.Description,
		"priority":      doc.Priority,
		"status":        doc.Status,
		"dueDate":       doc.DueDate,
		"assignedTo":    doc.AssignedTo,
		"todoChecklist": doc.TodoChecklist,
		"progress":      doc.Progress,
		"attachments":   doc.Attachments,
		"updatedAt":     doc.UpdatedAt,
	}}

	res, err := r.collection().UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("update task %s: %w", task.ID, err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

func (r *MongoTaskRepository) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperrors.ErrTaskNotFound
	}

	res, err := r.collection().DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrTaskNotFound
	}
	return nil
}

func (r *MongoTaskRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, readpref.Primary())
}

func taskQuery(filter TaskFilter) (bson.M, error) {
	query := bson.M{}

	status := bson.M{}
	if filter.Status != "" {
		status["$eq"] = string(filter.Status)
	}
	if filter.StatusNot != "" {
		status["$ne"] = string(filter.StatusNot)
	}
	if len(status) > 0 {
		query["status"] = status
	}

	if filter.AssignedTo != "" {
		userID, err := primitive.ObjectIDFromHex(filter.AssignedTo)
		if err != nil {
			return nil, fmt.Errorf("invalid assignee id %q: %w", filter.AssignedTo, err)
		}
		query["assignedTo"] = userID
	}

	if filter.DueBefore != nil {
		query["dueDate"] = bson.M{"$lt": filter.DueBefore.UTC()}
	}
	return query, nil
}

func toTaskDocument(task *model.Task) (taskDocument, error) {
	assignedTo, err := toObjectIDs(task.AssignedTo)
	if err != nil {
		return taskDocument{}, apperrors.NewValidationError("assignedTo must contain valid user IDs")
	}

	doc := taskDocument{
		Title:         task.Title,
		Description:   task.Description,
		Priority:      string(task.Priority),
		Status:        string(task.Status),
		AssignedTo:    assignedTo,
		TodoChecklist: task.TodoChecklist,
		Progress:      task.Progress,
		Attachments:   task.Attachments,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
	if task.CreatedBy != "" {
		createdBy, err := primitive.ObjectIDFromHex(task.CreatedBy)
		if err != nil {
			return taskDocument{}, fmt.Errorf("invalid creator id %q: %w", task.CreatedBy, err)
		}
		doc.CreatedBy = createdBy
	}
	if task.DueDate != nil {
		due := task.DueDate.UTC()
		doc.DueDate = &due
	}
	if doc.TodoChecklist == nil {
		doc.TodoChecklist = []model.ChecklistItem{}
	}
	if doc.Attachments == nil {
		doc.Attachments = []string{}
	}
	return doc, nil
}

func (d taskDocument) toModel() model.Task {
	task := model.Task{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Description:   d.Description,
		Priority:      constants.TaskPriority(d.Priority),
		Status:        constants.TaskStatus(d.Status),
		AssignedTo:    make([]string, 0, len(d.AssignedTo)),
		CreatedBy:     d.CreatedBy.Hex(),
		TodoChecklist: d.TodoChecklist,
		Progress:      d.Progress,
		Attachments:   d.Attachments,
		CreatedAt:     d.CreatedAt.UTC(),
		UpdatedAt:     d.UpdatedAt.UTC(),
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		task.DueDate = &due
	}
	if task.TodoChecklist == nil {
		task.TodoChecklist = []model.ChecklistItem{}
	}
	if task.Attachments == nil {
		task.Attachments = []string{}
	}
	for _, userID := range d.AssignedTo {
		task.AssignedTo = append(task.AssignedTo, userID.Hex())
	}
	return task
}

func toObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, err
		}
		objectIDs = append(objectIDs, objectID)
	}
	return objectIDs, nil
}
