package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// MockTaskStore mocks the store.TaskStore interface
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskStore) ListAll(ctx context.Context) ([]*domain.Task, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) AddMember(ctx context.Context, taskID, userID uuid.UUID) error {
	args := m.Called(ctx, taskID, userID)
	return args.Error(0)
}

func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

// MockUserTaskStore mocks the store.UserTaskStore interface
type MockUserTaskStore struct {
	mock.Mock
}

func (m *MockUserTaskStore) Create(ctx context.Context, userTask *domain.UserTask) error {
	args := m.Called(ctx, userTask)
	return args.Error(0)
}

func (m *MockUserTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserTask, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserTask), args.Error(1)
}

func (m *MockUserTaskStore) ListAll(ctx context.Context) ([]*domain.UserTask, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.UserTask), args.Error(1)
}

func (m *MockUserTaskStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.UserTask, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*domain.UserTask), args.Error(1)
}

func (m *MockUserTaskStore) ListByTask(ctx context.Context, taskID uuid.UUID) ([]*domain.UserTask, error) {
	args := m.Called(ctx, taskID)
	return args.Get(0).([]*domain.UserTask), args.Error(1)
}

func (m *MockUserTaskStore) Update(ctx context.Context, userTask *domain.UserTask) error {
	args := m.Called(ctx, userTask)
	return args.Error(0)
}

func (m *MockUserTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserTaskStore) WithTx(tx *sql.Tx) store.UserTaskStore {
	return m
}

// MockSubTaskStore mocks the store.SubTaskStore interface
type MockSubTaskStore struct {
	mock.Mock
}

func (m *MockSubTaskStore) Create(ctx context.Context, subTask *domain.SubTask) error {
	args := m.Called(ctx, subTask)
	return args.Error(0)
}

func (m *MockSubTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.SubTask, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SubTask), args.Error(1)
}

func (m *MockSubTaskStore) ListByParent(ctx context.Context, parentType domain.ParentType, parentID uuid.UUID) ([]*domain.SubTask, error) {
	args := m.Called(ctx, parentType, parentID)
	return args.Get(0).([]*domain.SubTask), args.Error(1)
}

func (m *MockSubTaskStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TaskStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockSubTaskStore) Update(ctx context.Context, subTask *domain.SubTask) error {
	args := m.Called(ctx, subTask)
	return args.Error(0)
}

func (m *MockSubTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSubTaskStore) DeleteByParent(ctx context.Context, parentType domain.ParentType, parentID uuid.UUID) (int64, error) {
	args := m.Called(ctx, parentType, parentID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSubTaskStore) WithTx(tx *sql.Tx) store.SubTaskStore {
	return m
}

// MockUserStore mocks the store.UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetRefs(ctx context.Context, ids []uuid.UUID) ([]domain.UserRef, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]domain.UserRef), args.Error(1)
}

func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return m
}
