// Package api provides HTTP handlers for the API.
package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskboard/taskboard-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
// A client-supplied role is deliberately not part of the payload: everyone
// registers as a regular user and elevation is an admin-only operation.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Token    string    `json:"token"`
}

// ProfileResponse defines the response for the profile endpoint.
type ProfileResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
}

// UserResponse is the admin-facing projection of a user.
// The password hash is never part of any response.
type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     string    `json:"role"`
	Active   bool      `json:"active"`
}

// UpdateRoleRequest defines the payload for the admin role-change endpoint.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// UpdateActiveRequest defines the payload for the admin activation endpoint.
type UpdateActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// CreateTaskRequest defines the payload for task creation.
// Priority defaults to medium and AssignedTo defaults to the acting user.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=500"`
	DueDate     string `json:"due_date"    validate:"required"`
	Priority    string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	AssignedTo  string `json:"assigned_to" validate:"omitempty,uuid"`
}

// UpdateTaskRequest defines the whitelisted patch for task field edits.
// Absent fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string `json:"title"       validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	DueDate     *string `json:"due_date"`
	Priority    *string `json:"priority"    validate:"omitempty,oneof=low medium high"`
	AssignedTo  *string `json:"assigned_to" validate:"omitempty,uuid"`
}

// UpdateStatusRequest defines the payload for the status transition endpoint.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdatePriorityRequest defines the payload for the priority change endpoint.
type UpdatePriorityRequest struct {
	Priority string `json:"priority" validate:"required"`
}

// UserRefResponse is the public projection of a user embedded in task reads.
type UserRefResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// TaskResponse represents the response data for a task, with the creator and
// assignee expanded to their public profiles.
type TaskResponse struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     time.Time       `json:"due_date"`
	Priority    string          `json:"priority"`
	Status      string          `json:"status"`
	AssignedTo  UserRefResponse `json:"assigned_to"`
	CreatedBy   UserRefResponse `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MessageResponse is a bare confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// taskToResponse converts a domain.TaskDetail to a TaskResponse.
func taskToResponse(detail *domain.TaskDetail) TaskResponse {
	return TaskResponse{
		ID:          detail.ID,
		Title:       detail.Title,
		Description: detail.Description,
		DueDate:     detail.DueDate,
		Priority:    string(detail.Priority),
		Status:      string(detail.Status),
		AssignedTo: UserRefResponse{
			ID:       detail.Assignee.ID,
			Username: detail.Assignee.Username,
			Email:    detail.Assignee.Email,
		},
		CreatedBy: UserRefResponse{
			ID:       detail.Creator.ID,
			Username: detail.Creator.Username,
			Email:    detail.Creator.Email,
		},
		CreatedAt: detail.CreatedAt,
		UpdatedAt: detail.UpdatedAt,
	}
}

// tasksToResponse converts a slice of task details, never returning nil so
// empty lists serialize as [] rather than null.
func tasksToResponse(details []*domain.TaskDetail) []TaskResponse {
	out := make([]TaskResponse, 0, len(details))
	for _, d := range details {
		out = append(out, taskToResponse(d))
	}
	return out
}

// userToResponse converts a domain.User to a UserResponse.
func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
		Active:   user.Active,
	}
}

// parseDueDate accepts either an RFC 3339 timestamp or a bare calendar date.
func parseDueDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
