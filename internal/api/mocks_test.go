package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// MockTaskService mocks the service.TaskService interface
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Create(ctx context.Context, principal domain.Principal, input service.CreateTaskInput) (*service.TaskDetail, error) {
	args := m.Called(ctx, principal, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TaskDetail), args.Error(1)
}

func (m *MockTaskService) List(ctx context.Context, principal domain.Principal) ([]*service.TaskSummary, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.TaskSummary), args.Error(1)
}

func (m *MockTaskService) GetByID(ctx context.Context, principal domain.Principal, taskID uuid.UUID) (*service.TaskDetail, error) {
	args := m.Called(ctx, principal, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TaskDetail), args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, principal domain.Principal, taskID uuid.UUID, input service.UpdateTaskInput) (*domain.Task, error) {
	args := m.Called(ctx, principal, taskID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, principal domain.Principal, taskID uuid.UUID) error {
	args := m.Called(ctx, principal, taskID)
	return args.Error(0)
}

func (m *MockTaskService) ListSubtasks(ctx context.Context, principal domain.Principal, taskID uuid.UUID) ([]*domain.SubTask, error) {
	args := m.Called(ctx, principal, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SubTask), args.Error(1)
}

// MockUserTaskService mocks the service.UserTaskService interface
type MockUserTaskService struct {
	mock.Mock
}

func (m *MockUserTaskService) Create(ctx context.Context, principal domain.Principal, input service.CreateUserTaskInput) (*service.UserTaskDetail, error) {
	args := m.Called(ctx, principal, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserTaskDetail), args.Error(1)
}

func (m *MockUserTaskService) List(ctx context.Context, principal domain.Principal) ([]*service.UserTaskView, error) {
	args := m.Called(ctx, principal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*service.UserTaskView), args.Error(1)
}

func (m *MockUserTaskService) GetByID(ctx context.Context, principal domain.Principal, userTaskID uuid.UUID) (*service.UserTaskDetail, error) {
	args := m.Called(ctx, principal, userTaskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UserTaskDetail), args.Error(1)
}

func (m *MockUserTaskService) Update(ctx context.Context, principal domain.Principal, userTaskID uuid.UUID, input service.UpdateUserTaskInput) (*domain.UserTask, error) {
	args := m.Called(ctx, principal, userTaskID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserTask), args.Error(1)
}

func (m *MockUserTaskService) Delete(ctx context.Context, principal domain.Principal, userTaskID uuid.UUID) error {
	args := m.Called(ctx, principal, userTaskID)
	return args.Error(0)
}

func (m *MockUserTaskService) ListSubtasks(ctx context.Context, principal domain.Principal, userTaskID uuid.UUID) ([]*domain.SubTask, error) {
	args := m.Called(ctx, principal, userTaskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SubTask), args.Error(1)
}

func (m *MockUserTaskService) AddSubtask(ctx context.Context, principal domain.Principal, userTaskID uuid.UUID, input service.SubTaskInput) (*domain.SubTask, error) {
	args := m.Called(ctx, principal, userTaskID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubTask), args.Error(1)
}

// MockSubTaskService mocks the service.SubTaskService interface
type MockSubTaskService struct {
	mock.Mock
}

func (m *MockSubTaskService) Create(ctx context.Context, principal domain.Principal, input service.CreateSubTaskInput) (*domain.SubTask, error) {
	args := m.Called(ctx, principal, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubTask), args.Error(1)
}

func (m *MockSubTaskService) GetByID(ctx context.Context, principal domain.Principal, subTaskID uuid.UUID) (*domain.SubTask, error) {
	args := m.Called(ctx, principal, subTaskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubTask), args.Error(1)
}

func (m *MockSubTaskService) UpdateStatus(ctx context.Context, principal domain.Principal, subTaskID uuid.UUID, status domain.TaskStatus) (*domain.SubTask, error) {
	args := m.Called(ctx, principal, subTaskID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubTask), args.Error(1)
}

func (m *MockSubTaskService) Update(ctx context.Context, principal domain.Principal, subTaskID uuid.UUID, input service.UpdateSubTaskInput) (*domain.SubTask, error) {
	args := m.Called(ctx, principal, subTaskID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubTask), args.Error(1)
}

func (m *MockSubTaskService) Delete(ctx context.Context, principal domain.Principal, subTaskID uuid.UUID) error {
	args := m.Called(ctx, principal, subTaskID)
	return args.Error(0)
}

// MockAuthService mocks the service.AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input service.RegisterInput) (*domain.User, service.TokenPair, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, service.TokenPair{}, args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Get(1).(service.TokenPair), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*domain.User, service.TokenPair, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, service.TokenPair{}, args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Get(1).(service.TokenPair), args.Error(2)
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (service.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(service.TokenPair), args.Error(1)
}

func (m *MockAuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
