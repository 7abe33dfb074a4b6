package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask_Defaults(t *testing.T) {
	creator := uuid.New()

	task, err := NewTask(creator, "Ship release", "", "", "", nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, PriorityLow, task.Priority)
	assert.Equal(t, StatusPending, task.Status)
	assert.NotNil(t, task.Attachments)
	assert.Empty(t, task.Attachments)

	// With no explicit members the creator is auto-assigned.
	require.Len(t, task.AssignedMemberIDs, 1)
	assert.Equal(t, creator, task.AssignedMemberIDs[0])
}

func TestNewTask_ExplicitMembers(t *testing.T) {
	creator := uuid.New()
	members := []uuid.UUID{uuid.New(), uuid.New()}

	task, err := NewTask(creator, "Ship release", "", PriorityHigh, StatusInProgress, nil, nil, members)
	require.NoError(t, err)

	assert.Equal(t, members, task.AssignedMemberIDs)
	assert.Equal(t, PriorityHigh, task.Priority)
	assert.Equal(t, StatusInProgress, task.Status)
}

func TestNewTask_Validation(t *testing.T) {
	creator := uuid.New()

	t.Run("empty title", func(t *testing.T) {
		_, err := NewTask(creator, "  ", "", "", "", nil, nil, nil)
		assert.ErrorIs(t, err, ErrTaskTitleEmpty)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty creator", func(t *testing.T) {
		_, err := NewTask(uuid.Nil, "Ship release", "", "", "", nil, nil, nil)
		assert.ErrorIs(t, err, ErrTaskCreatorEmpty)
	})

	t.Run("bad priority", func(t *testing.T) {
		_, err := NewTask(creator, "Ship release", "", "urgent", "", nil, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidPriority)
	})

	t.Run("bad status", func(t *testing.T) {
		_, err := NewTask(creator, "Ship release", "", "", "done", nil, nil, nil)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestTaskPermissions(t *testing.T) {
	creator := uuid.New()
	member := uuid.New()
	stranger := uuid.New()

	task, err := NewTask(creator, "Ship release", "", "", "", nil, nil, []uuid.UUID{member})
	require.NoError(t, err)

	assert.True(t, task.IsCreator(creator))
	assert.False(t, task.IsCreator(member))
	assert.True(t, task.IsAssigned(member))
	assert.False(t, task.IsAssigned(stranger))

	t.Run("view", func(t *testing.T) {
		assert.True(t, task.CanBeViewedBy(Principal{ID: creator, Role: RoleUser}))
		assert.True(t, task.CanBeViewedBy(Principal{ID: member, Role: RoleUser}))
		assert.True(t, task.CanBeViewedBy(Principal{ID: stranger, Role: RoleAdmin}))
		assert.False(t, task.CanBeViewedBy(Principal{ID: stranger, Role: RoleUser}))
	})

	t.Run("manage", func(t *testing.T) {
		assert.True(t, task.CanBeManagedBy(Principal{ID: creator, Role: RoleUser}))
		assert.False(t, task.CanBeManagedBy(Principal{ID: member, Role: RoleUser}))
		assert.True(t, task.CanBeManagedBy(Principal{ID: stranger, Role: RoleAdmin}))
	})
}

func TestTaskStatusAndPriorityEnums(t *testing.T) {
	for _, s := range []TaskStatus{StatusPending, StatusInProgress, StatusCompleted, StatusOverdue} {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, TaskStatus("done").IsValid())
	assert.False(t, TaskStatus("").IsValid())

	for _, p := range []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh} {
		assert.True(t, p.IsValid(), p)
	}
	assert.False(t, TaskPriority("urgent").IsValid())
}

func TestNewTask_KeepsDeadline(t *testing.T) {
	creator := uuid.New()
	deadline := time.Now().Add(48 * time.Hour).UTC()

	task, err := NewTask(creator, "Ship release", "", "", "", &deadline, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, task.Deadline)
	assert.True(t, task.Deadline.Equal(deadline))
}
