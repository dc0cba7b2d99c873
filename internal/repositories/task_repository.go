package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task-manager.com/task-manager/internal/constants"
	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

type taskRecord struct {
	ID            string                `gorm:"primaryKey;size:36"`
	Title         string                `gorm:"not null"`
	Description   string                `gorm:"not null;default:''"`
	Priority      string                `gorm:"type:varchar(10);not null;index"`
	Status        string                `gorm:"type:varchar(20);not null;index"`
	DueDate       *time.Time            `gorm:"index"`
	CreatedBy     string                `gorm:"size:36;not null"`
	TodoChecklist []model.ChecklistItem `gorm:"serializer:json"`
	Progress      int                   `gorm:"not null;default:0"`
	Attachments   []string              `gorm:"serializer:json"`
	Assignees     []taskAssigneeRecord  `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time             `gorm:"index"`
	UpdatedAt     time.Time
}

func (taskRecord) TableName() string { return "tasks" }

type taskAssigneeRecord struct {
	TaskID string `gorm:"primaryKey;size:36"`
	UserID string `gorm:"primaryKey;size:36;index"`
}

func (taskAssigneeRecord) TableName() string { return "task_assignees" }

// Models lists the gorm models owned by the SQL repositories.
func Models() []interface{} {
	return []interface{}{&taskRecord{}, &taskAssigneeRecord{}, &userRecord{}}
}

// SQLTaskRepository stores tasks through gorm. Assignees live in a join
// table so membership filters stay indexable.
type SQLTaskRepository struct {
	db *gorm.DB
}

var _ TaskRepository = (*SQLTaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *SQLTaskRepository {
	return &SQLTaskRepository{db: db}
}

func (r *SQLTaskRepository) Create(ctx context.Context, task *model.Task) error {
	now := time.Now().UTC()
	task.ID = uuid.NewString()
	task.CreatedAt = now
	task.UpdatedAt = now

	record := toTaskRecord(task)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *SQLTaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	var record taskRecord
	err := r.db.WithContext(ctx).Preload("Assignees").First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task %s: %w", id, err)
	}

	task := record.toModel()
	return &task, nil
}

func (r *SQLTaskRepository) Find(ctx context.Context, filter TaskFilter) ([]model.Task, error) {
	var records []taskRecord
	query := r.applyFilter(r.db.WithContext(ctx), ctx, filter).
		Preload("Assignees").
		Order("created_at asc")

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	return toTaskModels(records), nil
}

func (r *SQLTaskRepository) FindRecent(ctx context.Context, filter TaskFilter, limit int) ([]model.Task, error) {
	if limit <= 0 {
		return nil, apperrors.ErrInvalidLimit
	}

	var records []taskRecord
	query := r.applyFilter(r.db.WithContext(ctx), ctx, filter).
		Preload("Assignees").
		Order("created_at desc").
		Limit(limit)

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("find recent tasks: %w", err)
	}
	return toTaskModels(records), nil
}

func (r *SQLTaskRepository) Count(ctx context.Context, filter TaskFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&taskRecord{}), ctx, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

type groupCount struct {
	GroupKey   string
	GroupCount int64
}

func (r *SQLTaskRepository) countBy(ctx context.Context, column string, filter TaskFilter) ([]groupCount, error) {
	var rows []groupCount
	query := r.applyFilter(r.db.WithContext(ctx).Model(&taskRecord{}), ctx, filter).
		Select(column + " AS group_key, COUNT(*) AS group_count").
		Group(column)

	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count tasks by %s: %w", column, err)
	}
	return rows, nil
}

func (r *SQLTaskRepository) CountByStatus(ctx context.Context, filter TaskFilter) (map[constants.TaskStatus]int64, error) {
	rows, err := r.countBy(ctx, "status", filter)
	if err != nil {
		return nil, err
	}

	counts := make(map[constants.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[constants.TaskStatus(row.GroupKey)] = row.GroupCount
	}
	return counts, nil
}

func (r *SQLTaskRepository) CountByPriority(ctx context.Context, filter TaskFilter) (map[constants.TaskPriority]int64, error) {
	rows, err := r.countBy(ctx, "priority", filter)
	if err != nil {
		return nil, err
	}

	counts := make(map[constants.TaskPriority]int64, len(rows))
	for _, row := range rows {
		counts[constants.TaskPriority(row.GroupKey)] = row.GroupCount
	}
	return counts, nil
}

// Update overwrites the stored task and its assignee set in one
// transaction. There is no version check: the last write wins.
func (r *SQLTaskRepository) Update(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now().UTC()
	record := toTaskRecord(task)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := record
		fields.Assignees = nil
		res := tx.Model(&taskRecord{}).
			Where("id = ?", record.ID).
			Select("title", "description", "priority", "status", "due_date",
				"todo_checklist", "progress", "attachments", "updated_at").
			Updates(&fields)
		if res.Error != nil {
			return fmt.Errorf("update task %s: %w", record.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrTaskNotFound
		}

		if err := tx.Where("task_id = ?", record.ID).Delete(&taskAssigneeRecord{}).Error; err != nil {
			return fmt.Errorf("clear assignees of task %s: %w", record.ID, err)
		}
		if len(record.Assignees) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&record.Assignees).Error; err != nil {
			return fmt.Errorf("store assignees of task %s: %w", record.ID, err)
		}
		return nil
	})
}

func (r *SQLTaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&taskRecord{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("delete task %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrTaskNotFound
		}
		if err := tx.Where("task_id = ?", id).Delete(&taskAssigneeRecord{}).Error; err != nil {
			return fmt.Errorf("delete assignees of task %s: %w", id, err)
		}
		return nil
	})
}

func (r *SQLTaskRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *SQLTaskRepository) applyFilter(query *gorm.DB, ctx context.Context, filter TaskFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.StatusNot != "" {
		query = query.Where("status <> ?", string(filter.StatusNot))
	}
	if filter.AssignedTo != "" {
		assigned := r.db.WithContext(ctx).
			Model(&taskAssigneeRecord{}).
			Select("task_id").
			Where("user_id = ?", filter.AssignedTo)
		query = query.Where("id IN (?)", assigned)
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date IS NOT NULL AND due_date < ?", filter.DueBefore.UTC())
	}
	return query
}

func toTaskRecord(task *model.Task) taskRecord {
	record := taskRecord{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		Priority:      string(task.Priority),
		Status:        string(task.Status),
		CreatedBy:     task.CreatedBy,
		TodoChecklist: task.TodoChecklist,
		Progress:      task.Progress,
		Attachments:   task.Attachments,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
	if task.DueDate != nil {
		due := task.DueDate.UTC()
		record.DueDate = &due
	}
	if record.TodoChecklist == nil {
		record.TodoChecklist = []model.ChecklistItem{}
	}
	if record.Attachments == nil {
		record.Attachments = []string{}
	}

	seen := make(map[string]struct{}, len(task.AssignedTo))
	for _, userID := range task.AssignedTo {
		if _, ok := seen[userID]; ok {
			continue
		}
		seen[userID] = struct{}{}
		record.Assignees = append(record.Assignees, taskAssigneeRecord{TaskID: task.ID, UserID: userID})
	}
	return record
}

func (r taskRecord) toModel() model.Task {
	task := model.Task{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Priority:      constants.TaskPriority(r.Priority),
		Status:        constants.TaskStatus(r.Status),
		CreatedBy:     r.CreatedBy,
		TodoChecklist: r.TodoChecklist,
		Progress:      r.Progress,
		Attachments:   r.Attachments,
		AssignedTo:    make([]string, 0, len(r.Assignees)),
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if r.DueDate != nil {
		due := r.DueDate.UTC()
		task.DueDate = &due
	}
	if task.TodoChecklist == nil {
		task.TodoChecklist = []model.ChecklistItem{}
	}
	if task.Attachments == nil {
		task.Attachments = []string{}
	}
	for _, assignee := range r.Assignees {
		task.AssignedTo = append(task.AssignedTo, assignee.UserID)
	}
	return task
}

func toTaskModels(records []taskRecord) []model.Task {
	tasks := make([]model.Task, 0, len(records))
	for _, record := range records {
		tasks = append(tasks, record.toModel())
	}
	return tasks
}
