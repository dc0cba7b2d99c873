package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"task-manager.com/task-manager/internal/constants"
	apperrors "task-manager.com/task-manager/internal/errors"
	model "task-manager.com/task-manager/internal/models"
)

type userRecord struct {
	ID              string `gorm:"primaryKey;size:36"`
	Name            string `gorm:"not null"`
	Email           string `gorm:"not null;uniqueIndex"`
	ProfileImageURL string
	Role            string `gorm:"type:varchar(10);not null;index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (userRecord) TableName() string { return "users" }

type SQLUserRepository struct {
	db *gorm.DB
}

var _ UserRepository = (*SQLUserRepository)(nil)

func NewUserRepository(db *gorm.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

func (r *SQLUserRepository) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now

	record := userRecord{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		ProfileImageURL: user.ProfileImageURL,
		Role:            string(user.Role),
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *SQLUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var record userRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}

	user := record.toModel()
	return &user, nil
}

func (r *SQLUserRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}

	var records []userRecord
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("find users by ids: %w", err)
	}
	return toUserModels(records), nil
}

func (r *SQLUserRepository) FindByRole(ctx context.Context, role constants.UserRole) ([]model.User, error) {
	var records []userRecord
	err := r.db.WithContext(ctx).
		Where("role = ?", string(role)).
		Order("created_at asc").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("find users by role %s: %w", role, err)
	}
	return toUserModels(records), nil
}

func (r userRecord) toModel() model.User {
	return model.User{
		ID:              r.ID,
		Name:            r.Name,
		Email:           r.Email,
		ProfileImageURL: r.ProfileImageURL,
		Role:            constants.UserRole(r.Role),
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

func toUserModels(records []userRecord) []model.User {
	users := make([]model.User, 0, len(records))
	for _, record := range records {
		users = append(users, record.toModel())
	}
	return users
}
