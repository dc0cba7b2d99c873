package model

import (
	"time"

	"task-manager.com/task-manager/internal/constants"
)

type User struct {
	ID              string             `json:"_id"`
	Name            string             `json:"name"`
	Email           string             `json:"email"`
	ProfileImageURL string             `json:"profileImageUrl"`
	Role            constants.UserRole `json:"role"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// UserSummary is the assignee projection embedded in task responses.
type UserSummary struct {
	ID              string `json:"_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	ProfileImageURL string `json:"profileImageUrl"`
}

func (u User) Summary() UserSummary {
	return UserSummary{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		ProfileImageURL: u.ProfileImageURL,
	}
}

// Actor is the authenticated caller of a request.
type Actor struct {
	ID   string
	Role constants.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == constants.RoleAdmin
}
