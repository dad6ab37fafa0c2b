package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/mocks"
	"github.com/taskboard/taskboard-api/internal/service"
	"github.com/taskboard/taskboard-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// taskFixture wires a task service against in-memory stores with four users
// covering every policy role: an admin, a creator, an assignee and an
// unrelated user.
type taskFixture struct {
	svc      service.TaskService
	tasks    *mocks.MockTaskStore
	users    *mocks.MockUserStore
	admin    *domain.User
	creator  *domain.User
	assignee *domain.User
	outsider *domain.User
	task     *domain.Task
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()

	users := mocks.NewMockUserStore()
	tasks := mocks.NewMockTaskStore(users)

	svc, err := service.NewTaskService(tasks, users, testLogger())
	require.NoError(t, err)

	f := &taskFixture{
		svc:      svc,
		tasks:    tasks,
		users:    users,
		admin:    fixtureUser(t, "admin", domain.RoleAdmin),
		creator:  fixtureUser(t, "creator", domain.RoleUser),
		assignee: fixtureUser(t, "assignee", domain.RoleUser),
		outsider: fixtureUser(t, "outsider", domain.RoleUser),
	}
	for _, u := range []*domain.User{f.admin, f.creator, f.assignee, f.outsider} {
		users.AddUser(u)
	}

	task, err := domain.NewTask(
		"Prepare demo",
		"Stage environment for the customer demo",
		time.Now().UTC().Add(72*time.Hour),
		domain.PriorityHigh,
		f.assignee.ID,
		f.creator.ID,
	)
	require.NoError(t, err)
	tasks.AddTask(task)
	f.task = task

	return f
}

func fixtureUser(t *testing.T, name string, role domain.Role) *domain.User {
	t.Helper()

	user, err := domain.NewUser(name, name+"@example.com", "password123")
	require.NoError(t, err)
	user.Role = role
	user.HashedPassword = "hash"
	user.Password = ""
	return user
}

func TestTaskServiceCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("defaults assignee to the creator", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		detail, err := f.svc.Create(ctx, f.creator, service.CreateTaskInput{
			Title:       "Write docs",
			Description: "API reference for the new endpoints",
			DueDate:     time.Now().UTC().Add(24 * time.Hour),
		})
		require.NoError(t, err)

		assert.Equal(t, f.creator.ID, detail.AssignedTo)
		assert.Equal(t, f.creator.ID, detail.CreatedBy)
		assert.Equal(t, domain.StatusPending, detail.Status)
		assert.Equal(t, domain.PriorityMedium, detail.Priority)
		assert.Equal(t, f.creator.Username, detail.Creator.Username)
		assert.Equal(t, f.creator.Username, detail.Assignee.Username)
	})

	t.Run("accepts an existing assignee", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		detail, err := f.svc.Create(ctx, f.creator, service.CreateTaskInput{
			Title:       "Review design",
			Description: "Second pair of eyes on the schema",
			DueDate:     time.Now().UTC().Add(24 * time.Hour),
			AssignedTo:  f.assignee.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, f.assignee.ID, detail.AssignedTo)
		assert.Equal(t, f.assignee.Email, detail.Assignee.Email)
	})

	t.Run("rejects an unknown assignee", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		_, err := f.svc.Create(ctx, f.creator, service.CreateTaskInput{
			Title:       "Review design",
			Description: "desc",
			DueDate:     time.Now().UTC().Add(24 * time.Hour),
			AssignedTo:  uuid.New(),
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)

		var vErr *domain.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "assigned_to", vErr.Field)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		_, err := f.svc.Create(ctx, f.creator, service.CreateTaskInput{
			Title:       "",
			Description: "desc",
			DueDate:     time.Now().UTC().Add(24 * time.Hour),
		})
		assert.ErrorIs(t, err, domain.ErrEmptyTitle)
	})

	t.Run("nil actor is forbidden", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		_, err := f.svc.Create(ctx, nil, service.CreateTaskInput{
			Title:       "x",
			Description: "y",
			DueDate:     time.Now().UTC().Add(24 * time.Hour),
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestTaskServiceGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creator, assignee and admin may read", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		for _, actor := range []*domain.User{f.creator, f.assignee, f.admin} {
			detail, err := f.svc.Get(ctx, actor, f.task.ID)
			require.NoError(t, err, "actor %s", actor.Username)
			assert.Equal(t, f.task.ID, detail.ID)
			assert.Equal(t, f.creator.Username, detail.Creator.Username)
			assert.Equal(t, f.assignee.Username, detail.Assignee.Username)
		}
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		_, err := f.svc.Get(ctx, f.outsider, f.task.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("missing task reports not found before policy", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		_, err := f.svc.Get(ctx, f.outsider, uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskServiceList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("admin sees every task", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		other, err := domain.NewTask(
			"Outsider task",
			"Visible only to its creator and admins",
			time.Now().UTC().Add(time.Hour),
			"",
			uuid.Nil,
			f.outsider.ID,
		)
		require.NoError(t, err)
		f.tasks.AddTask(other)

		tasks, err := f.svc.List(ctx, f.admin)
		require.NoError(t, err)
		assert.Len(t, tasks, 2)
	})

	t.Run("regular user sees only created or assigned", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		tasks, err := f.svc.List(ctx, f.assignee)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, f.task.ID, tasks[0].ID)

		tasks, err = f.svc.List(ctx, f.outsider)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})
}

func TestTaskServiceUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creator may edit fields", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		title := "Prepare demo v2"
		priority := domain.PriorityLow
		detail, err := f.svc.Update(ctx, f.creator, f.task.ID, service.UpdateTaskInput{
			Title:    &title,
			Priority: &priority,
		})
		require.NoError(t, err)
		assert.Equal(t, title, detail.Title)
		assert.Equal(t, priority, detail.Priority)
		assert.Equal(t, f.task.Description, detail.Description, "untouched fields survive")
	})

	t.Run("reassignment changes the assignee", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		detail, err := f.svc.Update(ctx, f.creator, f.task.ID, service.UpdateTaskInput{
			AssignedTo: &f.outsider.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, f.outsider.ID, detail.AssignedTo)
		assert.Equal(t, f.outsider.Username, detail.Assignee.Username)
	})

	t.Run("assignee may not edit fields", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		title := "hijacked"
		_, err := f.svc.Update(ctx, f.assignee, f.task.ID, service.UpdateTaskInput{Title: &title})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("empty patch is a validation error", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		_, err := f.svc.Update(ctx, f.creator, f.task.ID, service.UpdateTaskInput{})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unknown assignee is a validation error", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		ghost := uuid.New()
		_, err := f.svc.Update(ctx, f.creator, f.task.ID, service.UpdateTaskInput{AssignedTo: &ghost})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("missing task wins over forbidden", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		title := "whatever"
		_, err := f.svc.Update(ctx, f.outsider, uuid.New(), service.UpdateTaskInput{Title: &title})
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskServiceUpdateStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("assignee may move status", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		detail, err := f.svc.UpdateStatus(ctx, f.assignee, f.task.ID, domain.StatusInProgress)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, detail.Status)
	})

	t.Run("status may move in any direction", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		for _, s := range []domain.Status{
			domain.StatusCompleted,
			domain.StatusPending,
			domain.StatusRejected,
		} {
			detail, err := f.svc.UpdateStatus(ctx, f.creator, f.task.ID, s)
			require.NoError(t, err)
			assert.Equal(t, s, detail.Status)
		}
	})

	t.Run("setting the current status is a no-op success", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		detail, err := f.svc.UpdateStatus(ctx, f.creator, f.task.ID, f.task.Status)
		require.NoError(t, err)
		assert.Equal(t, f.task.Status, detail.Status)
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		_, err := f.svc.UpdateStatus(ctx, f.outsider, f.task.ID, domain.StatusCompleted)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("invalid status rejected before the task lookup", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		_, err := f.svc.UpdateStatus(ctx, f.creator, uuid.New(), domain.Status("done"))
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.NotErrorIs(t, err, store.ErrTaskNotFound)
	})
}

func TestTaskServiceUpdatePriority(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creator may change priority", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		detail, err := f.svc.UpdatePriority(ctx, f.creator, f.task.ID, domain.PriorityLow)
		require.NoError(t, err)
		assert.Equal(t, domain.PriorityLow, detail.Priority)
	})

	t.Run("assignee may not change priority", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		_, err := f.svc.UpdatePriority(ctx, f.assignee, f.task.ID, domain.PriorityLow)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("invalid priority is a validation error", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		_, err := f.svc.UpdatePriority(ctx, f.creator, f.task.ID, domain.Priority("urgent"))
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestTaskServiceDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creator may delete", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		require.NoError(t, f.svc.Delete(ctx, f.creator, f.task.ID))

		_, err := f.svc.Get(ctx, f.creator, f.task.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("admin may delete", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		assert.NoError(t, f.svc.Delete(ctx, f.admin, f.task.ID))
	})

	t.Run("assignee may not delete", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		err := f.svc.Delete(ctx, f.assignee, f.task.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)

		_, getErr := f.svc.Get(ctx, f.assignee, f.task.ID)
		assert.NoError(t, getErr, "task must survive the denied delete")
	})

	t.Run("missing task wins over forbidden", func(t *testing.T) {
		t.Parallel()
		f := newTaskFixture(t)

		err := f.svc.Delete(ctx, f.outsider, uuid.New())
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})
}
