package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

func newSubTaskService(taskStore *MockTaskStore, userTaskStore *MockUserTaskStore, subTaskStore *MockSubTaskStore) SubTaskService {
	return NewSubTaskService(nil, taskStore, userTaskStore, subTaskStore, testLogger())
}

func TestSubTaskService_Create(t *testing.T) {
	ctx := context.Background()
	creatorID := uuid.New()
	memberID := uuid.New()
	task := mustNewTask(t, creatorID, memberID)

	t.Run("taskId is required", func(t *testing.T) {
		svc := newSubTaskService(new(MockTaskStore), new(MockUserTaskStore), new(MockSubTaskStore))
		_, err := svc.Create(ctx, domain.Principal{ID: creatorID, Role: domain.RoleUser}, CreateSubTaskInput{Title: "orphan"})
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("missing task", func(t *testing.T) {
		taskStore := new(MockTaskStore)
		taskStore.On("GetByID", ctx, task.ID).Return(nil, store.ErrTaskNotFound)
		svc := newSubTaskService(taskStore, new(MockUserTaskStore), new(MockSubTaskStore))

		_, err := svc.Create(ctx, domain.Principal{ID: creatorID, Role: domain.RoleUser}, CreateSubTaskInput{TaskID: task.ID, Title: "x"})
		assert.ErrorIs(t, err, store.ErrTaskNotFound)
	})

	t.Run("assigned member creates with defaults", func(t *testing.T) {
		taskStore := new(MockTaskStore)
		subTaskStore := new(MockSubTaskStore)
		taskStore.On("GetByID", ctx, task.ID).Return(task, nil)
		subTaskStore.On("Create", ctx, mock.AnythingOfType("*domain.SubTask")).Return(nil)
		svc := newSubTaskService(taskStore, new(MockUserTaskStore), subTaskStore)

		subTask, err := svc.Create(ctx, domain.Principal{ID: memberID, Role: domain.RoleUser}, CreateSubTaskInput{
			TaskID: task.ID,
			Title:  "draft notes",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPending, subTask.Status)
		assert.Equal(t, domain.ParentTask, subTask.ParentType)
		assert.Equal(t, task.ID, subTask.ParentID)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		taskStore := new(MockTaskStore)
		taskStore.On("GetByID", ctx, task.ID).Return(task, nil)
		svc := newSubTaskService(taskStore, new(MockUserTaskStore), new(MockSubTaskStore))

		_, err := svc.Create(ctx, domain.Principal{ID: uuid.New(), Role: domain.RoleUser}, CreateSubTaskInput{TaskID: task.ID, Title: "x"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestSubTaskService_GetByID(t *testing.T) {
	ctx := context.Background()
	creatorID := uuid.New()
	memberID := uuid.New()
	assigneeID := uuid.New()
	task := mustNewTask(t, creatorID, memberID, assigneeID)
	userTask, err := domain.NewUserTask(task.ID, assigneeID, "", nil)
	require.NoError(t, err)

	globalSub, err := domain.NewSubTask(domain.ParentTask, task.ID, "shared step", "", nil, nil)
	require.NoError(t, err)
	personalSub, err := domain.NewSubTask(domain.ParentUserTask, userTask.ID, "my step", "", nil, nil)
	require.NoError(t, err)

	t.Run("task-owned subtask visible to assigned member", func(t *testing.T) {
		taskStore := new(MockTaskStore)
		subTaskStore := new(MockSubTaskStore)
		subTaskStore.On("GetByID", ctx, globalSub.ID).Return(globalSub, nil)
		taskStore.On("GetByID", ctx, task.ID).Return(task, nil)
		svc := newSubTaskService(taskStore, new(MockUserTaskStore), subTaskStore)

		got, err := svc.GetByID(ctx, domain.Principal{ID: memberID, Role: domain.RoleUser}, globalSub.ID)
		require.NoError(t, err)
		assert.Equal(t, globalSub.ID, got.ID)
	})

	t.Run("user-task-owned subtask visible to assignee and base creator only", func(t *testing.T) {
		setup := func() SubTaskService {
			taskStore := new(MockTaskStore)
			userTaskStore := new(MockUserTaskStore)
			subTaskStore := new(MockSubTaskStore)
			subTaskStore.On("GetByID", ctx, personalSub.ID).Return(personalSub, nil)
			userTaskStore.On("GetByID", ctx, userTask.ID).Return(userTask, nil)
			taskStore.On("GetByID", ctx, task.ID).Return(task, nil)
			return newSubTaskService(taskStore, userTaskStore, subTaskStore)
		}

		_, err := setup().GetByID(ctx, domain.Principal{ID: assigneeID, Role: domain.RoleUser}, personalSub.ID)
		assert.NoError(t, err)

		_, err = setup().GetByID(ctx, domain.Principal{ID: creatorID, Role: domain.RoleUser}, personalSub.ID)
		assert.NoError(t, err)

		// A plain task member has no access to another member's personal subtask.
		_, err = setup().GetByID(ctx, domain.Principal{ID: memberID, Role: domain.RoleUser}, personalSub.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("orphaned subtask is denied", func(t *testing.T) {
		taskStore := new(MockTaskStore)
		subTaskStore := new(MockSubTaskStore)
		subTaskStore.On("GetByID", ctx, globalSub.ID).Return(globalSub, nil)
		taskStore.On("GetByID", ctx, task.ID).Return(nil, store.ErrTaskNotFound)
		svc := newSubTaskService(taskStore, new(MockUserTaskStore), subTaskStore)

		_, err := svc.GetByID(ctx, domain.Principal{ID: creatorID, Role: domain.RoleUser}, globalSub.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("not found", func(t *testing.T) {
		subTaskStore := new(MockSubTaskStore)
		subTaskStore.On("GetByID", ctx, globalSub.ID).Return(nil, store.ErrSubTaskNotFound)
		svc := newSubTaskService(new(MockTaskStore), new(MockUserTaskStore), subTaskStore)

		_, err := svc.GetByID(ctx, domain.Principal{ID: creatorID, Role: domain.RoleUser}, globalSub.ID)
		assert.ErrorIs(t, err, store.ErrSubTaskNotFound)
	})
}

func TestSubTaskService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	creatorID := uuid.New()
	memberID := uuid.New()
	assigneeID := uuid.New()
	task := mustNewTask(t, creatorID, memberID, assigneeID)
	userTask, err := domain.NewUserTask(task.ID, assigneeID, "", nil)
	require.NoError(t, err)

	globalSub, err := domain.NewSubTask(domain.ParentTask, task.ID, "shared step", "", nil, nil)
	require.NoError(t, err)
	personalSub, err := domain.NewSubTask(domain.ParentUserTask, userTask.ID, "my step", "", nil, nil)
	require.NoError(t, err)

	personalSetup := func() (*MockSubTaskStore, SubTaskService) {
		taskStore := new(MockTaskStore)
		userTaskStore := new(MockUserTaskStore)
		subTaskStore := new(MockSubTaskStore)
		subTaskStore.On("GetByID", ctx, personalSub.ID).Return(personalSub, nil)
		userTaskStore.On("GetByID", ctx, userTask.ID).Return(userTask, nil)
		taskStore.On("GetByID", ctx, task.ID).Return(task, nil)
		subTaskStore.On("UpdateStatus", ctx, personalSub.ID, domain.StatusCompleted).Return(nil)
		return subTaskStore, newSubTaskService(taskStore, userTaskStore, subTaskStore)
	}

	globalSetup := func() (*MockSubTaskStore, SubTaskService) {
		taskStore := new(MockTaskStore)
		subTaskStore := new(MockSubTaskStore)
		subTaskStore.On("GetByID", ctx, globalSub.ID).Return(globalSub, nil)
		taskStore.On("GetByID", ctx, task.ID).Return(task, nil)
		subTaskStore.On("UpdateStatus", ctx, globalSub.ID, domain.StatusCompleted).Return(nil)
		return subTaskStore, newSubTaskService(taskStore, new(MockUserTaskStore), subTaskStore)
	}

	t.Run("invalid status is a validation error", func(t *testing.T) {
		svc := newSubTaskService(new(MockTaskStore), new(MockUserTaskStore), new(MockSubTaskStore))
		_, err := svc.UpdateStatus(ctx, domain.Principal{ID: creatorID, Role: domain.RoleUser}, personalSub.ID, "done")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("assignee updates a personal subtask", func(t *testing.T) {
		_, svc := personalSetup()
		got, err := svc.UpdateStatus(ctx, domain.Principal{ID: assigneeID, Role: domain.RoleUser}, personalSub.ID, domain.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, got.Status)
	})

	t.Run("unrelated user cannot update a personal subtask", func(t *testing.T) {
		subTaskStore, svc := personalSetup()
		_, err := svc.UpdateStatus(ctx, domain.Principal{ID: uuid.New(), Role: domain.RoleUser}, personalSub.ID, domain.StatusCompleted)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		subTaskStore.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("plain membership grants no write access to a global subtask", func(t *testing.T) {
		_, svc := globalSetup()
		_, err := svc.UpdateStatus(ctx, domain.Principal{ID: memberID, Role: domain.RoleUser}, globalSub.ID, domain.StatusCompleted)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("creator updates a global subtask", func(t *testing.T) {
		_, svc := globalSetup()
		_, err := svc.UpdateStatus(ctx, domain.Principal{ID: creatorID, Role: domain.RoleUser}, globalSub.ID, domain.StatusCompleted)
		assert.NoError(t, err)
	})
}

func TestSubTaskService_Delete(t *testing.T) {
	ctx := context.Background()
	creatorID := uuid.New()
	assigneeID := uuid.New()
	task := mustNewTask(t, creatorID, assigneeID)
	userTask, err := domain.NewUserTask(task.ID, assigneeID, "", nil)
	require.NoError(t, err)
	personalSub, err := domain.NewSubTask(domain.ParentUserTask, userTask.ID, "my step", "", nil, nil)
	require.NoError(t, err)

	setup := func() (*MockSubTaskStore, SubTaskService) {
		taskStore := new(MockTaskStore)
		userTaskStore := new(MockUserTaskStore)
		subTaskStore := new(MockSubTaskStore)
		subTaskStore.On("GetByID", ctx, personalSub.ID).Return(personalSub, nil)
		userTaskStore.On("GetByID", ctx, userTask.ID).Return(userTask, nil)
		taskStore.On("GetByID", ctx, task.ID).Return(task, nil)
		subTaskStore.On("Delete", ctx, personalSub.ID).Return(nil)
		return subTaskStore, newSubTaskService(taskStore, userTaskStore, subTaskStore)
	}

	t.Run("base task creator deletes", func(t *testing.T) {
		_, svc := setup()
		err := svc.Delete(ctx, domain.Principal{ID: creatorID, Role: domain.RoleUser}, personalSub.ID)
		assert.NoError(t, err)
	})

	t.Run("assignee cannot delete", func(t *testing.T) {
		subTaskStore, svc := setup()
		err := svc.Delete(ctx, domain.Principal{ID: assigneeID, Role: domain.RoleUser}, personalSub.ID)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		subTaskStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
