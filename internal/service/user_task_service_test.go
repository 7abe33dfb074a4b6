package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

type userTaskFixture struct {
	creatorID  uuid.UUID
	assigneeID uuid.UUID
	task       *domain.Task
	userTask   *domain.UserTask
}

func newUserTaskFixture(t *testing.T) userTaskFixture {
	t.Helper()
	creatorID := uuid.New()
	assigneeID := uuid.New()
	task := mustNewTask(t, creatorID, assigneeID)
	userTask, err := domain.NewUserTask(task.ID, assigneeID, "", nil)
	require.NoError(t, err)
	return userTaskFixture{creatorID: creatorID, assigneeID: assigneeID, task: task, userTask: userTask}
}

func newUserTaskService(taskStore *MockTaskStore, userTaskStore *MockUserTaskStore, subTaskStore *MockSubTaskStore, userStore *MockUserStore) UserTaskService {
	return NewUserTaskService(nil, taskStore, userTaskStore, subTaskStore, userStore, testLogger())
}

func TestUserTaskService_Create_Preconditions(t *testing.T) {
	ctx := context.Background()
	fx := newUserTaskFixture(t)

	t.Run("missing base task", func(t *testing.T) {
		taskStore := new(MockTaskStore)
		taskStore.On("GetByID", ctx, fx.task.ID).Return(nil, store.ErrTaskNotFound)
		svc := newUserTaskService(taskStore, new(MockUserTaskStore), new(MockSubTaskStore), new(MockUserStore))

		_, err := svc.Create(ctx, domain.Principal{ID: fx.creatorID, Role: domain.RoleUser}, CreateUserTaskInput{
			BaseTaskID: fx.task.ID,
			AssignedTo: fx.assigneeID,
		})
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("missing assignee", func(t *testing.T) {
		taskStore := new(MockTaskStore)
		userStore := new(MockUserStore)
		taskStore.On("GetByID", ctx, fx.task.ID).Return(fx.task, nil)
		userStore.On("GetByID", ctx, fx.assigneeID).Return(nil, store.ErrUserNotFound)
		svc := newUserTaskService(taskStore, new(MockUserTaskStore), new(MockSubTaskStore), userStore)

		_, err := svc.Create(ctx, domain.Principal{ID: fx.creatorID, Role: domain.RoleUser}, CreateUserTaskInput{
			BaseTaskID: fx.task.ID,
			AssignedTo: fx.assigneeID,
		})
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})

	t.Run("only admin or creator may assign", func(t *testing.T) {
		taskStore := new(MockTaskStore)
		userStore := new(MockUserStore)
		taskStore.On("GetByID", ctx, fx.task.ID).Return(fx.task, nil)
		userStore.On("GetByID", ctx, fx.assigneeID).Return(&domain.User{ID: fx.assigneeID}, nil)
		svc := newUserTaskService(taskStore, new(MockUserTaskStore), new(MockSubTaskStore), userStore)

		// The assignee themselves cannot self-assign a user task.
		_, err := svc.Create(ctx, domain.Principal{ID: fx.assigneeID, Role: domain.RoleUser}, CreateUserTaskInput{
			BaseTaskID: fx.task.ID,
			AssignedTo: fx.assigneeID,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestUserTaskService_GetByID(t *testing.T) {
	ctx := context.Background()
	fx := newUserTaskFixture(t)

	setup := func() (*MockTaskStore, *MockUserTaskStore, *MockSubTaskStore, *MockUserStore) {
		taskStore := new(MockTaskStore)
		userTaskStore := new(MockUserTaskStore)
		subTaskStore := new(MockSubTaskStore)
		userStore := new(MockUserStore)
		userTaskStore.On("GetByID", ctx, fx.userTask.ID).Return(fx.userTask, nil)
		taskStore.On("GetByID", ctx, fx.task.ID).Return(fx.task, nil)
		subTaskStore.On("ListByParent", ctx, domain.ParentUserTask, fx.userTask.ID).Return([]*domain.SubTask{}, nil)
		userStore.On("GetRefs", ctx, mock.Anything).Return([]domain.UserRef{{ID: fx.assigneeID, Name: "Assignee"}}, nil)
		return taskStore, userTaskStore, subTaskStore, userStore
	}

	t.Run("assignee can view", func(t *testing.T) {
		svc := newUserTaskService(setup())
		detail, err := svc.GetByID(ctx, domain.Principal{ID: fx.assigneeID, Role: domain.RoleUser}, fx.userTask.ID)
		require.NoError(t, err)
		assert.Equal(t, fx.userTask.ID, detail.UserTask.ID)
		assert.Equal(t, fx.task.ID, detail.BaseTask.ID)
		assert.Equal(t, "Assignee", detail.AssignedTo.Name)
	})

	t.Run("base task creator can view", func(t *testing.T) {
		svc := newUserTaskService(setup())
		_, err := svc.GetByID(ctx, domain.Principal{ID: fx.creatorID, Role: domain.RoleUser}, fx.userTask.ID)
		assert.NoError(t, err)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		svc := newUserTaskService(setup())
		_, err := svc.GetByID(ctx, domain.Principal{ID: uuid.New(), Role: domain.RoleUser}, fx.userTask.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("not found", func(t *testing.T) {
		userTaskStore := new(MockUserTaskStore)
		userTaskStore.On("GetByID", ctx, fx.userTask.ID).Return(nil, store.ErrUserTaskNotFound)
		svc := newUserTaskService(new(MockTaskStore), userTaskStore, new(MockSubTaskStore), new(MockUserStore))

		_, err := svc.GetByID(ctx, domain.Principal{ID: fx.assigneeID, Role: domain.RoleUser}, fx.userTask.ID)
		assert.ErrorIs(t, err, store.ErrUserTaskNotFound)
	})
}

func TestUserTaskService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("base task is immutable", func(t *testing.T) {
		fx := newUserTaskFixture(t)
		taskStore := new(MockTaskStore)
		userTaskStore := new(MockUserTaskStore)
		userTaskStore.On("GetByID", ctx, fx.userTask.ID).Return(fx.userTask, nil)
		taskStore.On("GetByID", ctx, fx.task.ID).Return(fx.task, nil)
		svc := newUserTaskService(taskStore, userTaskStore, new(MockSubTaskStore), new(MockUserStore))

		otherID := uuid.New()
		_, err := svc.Update(ctx, domain.Principal{ID: fx.assigneeID, Role: domain.RoleUser}, fx.userTask.ID, UpdateUserTaskInput{
			BaseTaskID: &otherID,
		})
		assert.ErrorIs(t, err, domain.ErrImmutableField)
		userTaskStore.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("assignee is immutable", func(t *testing.T) {
		fx := newUserTaskFixture(t)
		taskStore := new(MockTaskStore)
		userTaskStore := new(MockUserTaskStore)
		userTaskStore.On("GetByID", ctx, fx.userTask.ID).Return(fx.userTask, nil)
		taskStore.On("GetByID", ctx, fx.task.ID).Return(fx.task, nil)
		svc := newUserTaskService(taskStore, userTaskStore, new(MockSubTaskStore), new(MockUserStore))

		otherID := uuid.New()
		_, err := svc.Update(ctx, domain.Principal{ID: fx.assigneeID, Role: domain.RoleUser}, fx.userTask.ID, UpdateUserTaskInput{
			AssignedTo: &otherID,
		})
		assert.ErrorIs(t, err, domain.ErrImmutableField)
	})

	t.Run("assignee updates status and deadline", func(t *testing.T) {
		fx := newUserTaskFixture(t)
		taskStore := new(MockTaskStore)
		userTaskStore := new(MockUserTaskStore)
		userTaskStore.On("GetByID", ctx, fx.userTask.ID).Return(fx.userTask, nil)
		taskStore.On("GetByID", ctx, fx.task.ID).Return(fx.task, nil)
		userTaskStore.On("Update", ctx, fx.userTask).Return(nil)
		svc := newUserTaskService(taskStore, userTaskStore, new(MockSubTaskStore), new(MockUserStore))

		status := domain.StatusCompleted
		deadline := time.Now().Add(24 * time.Hour).UTC()
		updated, err := svc.Update(ctx, domain.Principal{ID: fx.assigneeID, Role: domain.RoleUser}, fx.userTask.ID, UpdateUserTaskInput{
			Status:      &status,
			Deadline:    &deadline,
			DeadlineSet: true,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, updated.Status)
		require.NotNil(t, updated.Deadline)
		assert.Equal(t, deadline, *updated.Deadline)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		fx := newUserTaskFixture(t)
		taskStore := new(MockTaskStore)
		userTaskStore := new(MockUserTaskStore)
		userTaskStore.On("GetByID", ctx, fx.userTask.ID).Return(fx.userTask, nil)
		taskStore.On("GetByID", ctx, fx.task.ID).Return(fx.task, nil)
		svc := newUserTaskService(taskStore, userTaskStore, new(MockSubTaskStore), new(MockUserStore))

		status := domain.StatusCompleted
		_, err := svc.Update(ctx, domain.Principal{ID: uuid.New(), Role: domain.RoleUser}, fx.userTask.ID, UpdateUserTaskInput{
			Status: &status,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestUserTaskService_Delete_Permissions(t *testing.T) {
	ctx := context.Background()
	fx := newUserTaskFixture(t)

	t.Run("assignee alone cannot delete", func(t *testing.T) {
		taskStore := new(MockTaskStore)
		userTaskStore := new(MockUserTaskStore)
		userTaskStore.On("GetByID", ctx, fx.userTask.ID).Return(fx.userTask, nil)
		taskStore.On("GetByID", ctx, fx.task.ID).Return(fx.task, nil)
		svc := newUserTaskService(taskStore, userTaskStore, new(MockSubTaskStore), new(MockUserStore))

		err := svc.Delete(ctx, domain.Principal{ID: fx.assigneeID, Role: domain.RoleUser}, fx.userTask.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		userTaskStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestUserTaskService_AddSubtask(t *testing.T) {
	ctx := context.Background()

	t.Run("assignee adds a personal subtask with defaults", func(t *testing.T) {
		creatorID := uuid.New()
		assigneeID := uuid.New()
		deadline := time.Now().Add(72 * time.Hour).UTC()
		task := mustNewTask(t, creatorID, assigneeID)
		userTask, err := domain.NewUserTask(task.ID, assigneeID, "", &deadline)
		require.NoError(t, err)

		taskStore := new(MockTaskStore)
		userTaskStore := new(MockUserTaskStore)
		subTaskStore := new(MockSubTaskStore)
		userTaskStore.On("GetByID", ctx, userTask.ID).Return(userTask, nil)
		taskStore.On("GetByID", ctx, task.ID).Return(task, nil)
		subTaskStore.On("Create", ctx, mock.AnythingOfType("*domain.SubTask")).Return(nil)
		svc := newUserTaskService(taskStore, userTaskStore, subTaskStore, new(MockUserStore))

		subTask, err := svc.AddSubtask(ctx, domain.Principal{ID: assigneeID, Role: domain.RoleUser}, userTask.ID, SubTaskInput{
			Title: "write tests",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, subTask.Status)
		assert.Equal(t, domain.ParentUserTask, subTask.ParentType)
		assert.Equal(t, userTask.ID, subTask.ParentID)
		require.NotNil(t, subTask.Deadline)
		assert.Equal(t, deadline, *subTask.Deadline)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		fx := newUserTaskFixture(t)
		taskStore := new(MockTaskStore)
		userTaskStore := new(MockUserTaskStore)
		userTaskStore.On("GetByID", ctx, fx.userTask.ID).Return(fx.userTask, nil)
		taskStore.On("GetByID", ctx, fx.task.ID).Return(fx.task, nil)
		svc := newUserTaskService(taskStore, userTaskStore, new(MockSubTaskStore), new(MockUserStore))

		_, err := svc.AddSubtask(ctx, domain.Principal{ID: uuid.New(), Role: domain.RoleUser}, fx.userTask.ID, SubTaskInput{Title: "nope"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}
