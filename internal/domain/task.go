package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Maximum lengths for task text fields.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Status identifies where a task sits in its lifecycle.
type Status string

// Valid task statuses. A task starts as pending and may move freely among
// the statuses; there is no enforced ordering.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

// IsValid reports whether the status is one of the known values.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// Priority identifies the urgency bucket of a task.
type Priority string

// Valid task priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValid reports whether the priority is one of the known values.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task validation errors. All wrap ErrValidation so callers can classify
// them with a single errors.Is check.
var (
	ErrEmptyTaskID  = fmt.Errorf("%w: task ID cannot be empty", ErrValidation)
	ErrEmptyTitle   = fmt.Errorf("%w: task title is required", ErrValidation)
	ErrTitleTooLong = fmt.Errorf(
		"%w: title cannot exceed %d characters", ErrValidation, MaxTitleLength)
	ErrEmptyDescription   = fmt.Errorf("%w: task description is required", ErrValidation)
	ErrDescriptionTooLong = fmt.Errorf(
		"%w: description cannot exceed %d characters", ErrValidation, MaxDescriptionLength)
	ErrEmptyDueDate    = fmt.Errorf("%w: due date is required", ErrValidation)
	ErrInvalidStatus   = fmt.Errorf("%w: invalid task status", ErrValidation)
	ErrInvalidPriority = fmt.Errorf("%w: invalid task priority", ErrValidation)
	ErrEmptyAssignee   = fmt.Errorf("%w: task must be assigned to a user", ErrValidation)
	ErrEmptyCreator    = fmt.Errorf("%w: task must have a creator", ErrValidation)
)

// Task represents a unit of work on the board. CreatedBy is immutable after
// creation; AssignedTo always references exactly one user.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Priority    Priority  `json:"priority"`
	Status      Status    `json:"status"`
	AssignedTo  uuid.UUID `json:"assigned_to"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTask creates a Task with a fresh ID and pending status. An empty
// priority defaults to medium; a zero assignee defaults to the creator.
func NewTask(
	title, description string,
	dueDate time.Time,
	priority Priority,
	assignedTo, createdBy uuid.UUID,
) (*Task, error) {
	if priority == "" {
		priority = PriorityMedium
	}
	if assignedTo == uuid.Nil {
		assignedTo = createdBy
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: description,
		DueDate:     dueDate,
		Priority:    priority,
		Status:      StatusPending,
		AssignedTo:  assignedTo,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// UserRef is the public projection of a user embedded in task reads.
type UserRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// TaskDetail is a Task with its creator and assignee expanded.
type TaskDetail struct {
	Task
	Creator  UserRef `json:"created_by_user"`
	Assignee UserRef `json:"assigned_to_user"`
}

// Validate checks that the Task carries valid data.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTaskID
	}

	if t.Title == "" {
		return ErrEmptyTitle
	}
	// Limits count runes, matching the validator max tags on the API structs.
	if utf8.RuneCountInString(t.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}

	if t.Description == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}

	if t.DueDate.IsZero() {
		return ErrEmptyDueDate
	}

	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}

	if !t.Priority.IsValid() {
		return ErrInvalidPriority
	}

	if t.AssignedTo == uuid.Nil {
		return ErrEmptyAssignee
	}

	if t.CreatedBy == uuid.Nil {
		return ErrEmptyCreator
	}

	return nil
}
