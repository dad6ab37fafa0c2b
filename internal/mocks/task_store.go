package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/store"
)

// MockTaskStore implements store.TaskStore backed by an in-memory map. It
// resolves creator and assignee references against the linked user store so
// reads return the same expanded shape the Postgres store produces.
type MockTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
	users *MockUserStore

	CreateFn      func(ctx context.Context, task *domain.Task) error
	GetByIDFn     func(ctx context.Context, id uuid.UUID) (*domain.TaskDetail, error)
	ListAllFn     func(ctx context.Context) ([]*domain.TaskDetail, error)
	ListForUserFn func(ctx context.Context, userID uuid.UUID) ([]*domain.TaskDetail, error)
	UpdateFn      func(ctx context.Context, task *domain.Task) error
	DeleteFn      func(ctx context.Context, id uuid.UUID) error
}

// NewMockTaskStore creates an empty in-memory task store that resolves user
// references against the given user store.
func NewMockTaskStore(users *MockUserStore) *MockTaskStore {
	return &MockTaskStore{
		tasks: make(map[uuid.UUID]*domain.Task),
		users: users,
	}
}

// AddTask seeds the store with a task, bypassing reference checks.
func (m *MockTaskStore) AddTask(task *domain.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := *task
	m.tasks[t.ID] = &t
}

func (m *MockTaskStore) detail(task *domain.Task) *domain.TaskDetail {
	d := &domain.TaskDetail{Task: *task}
	if m.users != nil {
		m.users.mu.Lock()
		defer m.users.mu.Unlock()
		if creator, ok := m.users.users[task.CreatedBy]; ok {
			d.Creator = domain.UserRef{ID: creator.ID, Username: creator.Username, Email: creator.Email}
		}
		if assignee, ok := m.users.users[task.AssignedTo]; ok {
			d.Assignee = domain.UserRef{ID: assignee.ID, Username: assignee.Username, Email: assignee.Email}
		}
	}
	return d
}

func (m *MockTaskStore) userExists(id uuid.UUID) bool {
	if m.users == nil {
		return true
	}
	m.users.mu.Lock()
	defer m.users.mu.Unlock()
	_, ok := m.users.users[id]
	return ok
}

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	if !m.userExists(task.CreatedBy) || !m.userExists(task.AssignedTo) {
		return store.ErrInvalidEntity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t := *task
	m.tasks[t.ID] = &t
	return nil
}

func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskDetail, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return m.detail(task), nil
}

func (m *MockTaskStore) ListAll(ctx context.Context) ([]*domain.TaskDetail, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.TaskDetail, 0, len(m.tasks))
	for _, task := range m.tasks {
		out = append(out, m.detail(task))
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *MockTaskStore) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.TaskDetail, error) {
	if m.ListForUserFn != nil {
		return m.ListForUserFn(ctx, userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.TaskDetail
	for _, task := range m.tasks {
		if task.CreatedBy == userID || task.AssignedTo == userID {
			out = append(out, m.detail(task))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	if !m.userExists(task.AssignedTo) {
		return store.ErrInvalidEntity
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}

	// The creator is immutable; the caller supplies updated_at, matching the
	// SQL store.
	t := *task
	t.CreatedBy = existing.CreatedBy
	t.CreatedAt = existing.CreatedAt
	m.tasks[t.ID] = &t
	return nil
}

func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

// WithTx returns the store itself; the in-memory store has no transactions.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

func sortNewestFirst(tasks []*domain.TaskDetail) {
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
