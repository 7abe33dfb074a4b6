package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSubTask(t *testing.T) {
	parent := uuid.New()

	t.Run("defaults", func(t *testing.T) {
		st, err := NewSubTask(ParentTask, parent, "review PR", "", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, st.Status)
		assert.NotNil(t, st.Attachments)
		assert.Equal(t, ParentTask, st.ParentType)
		assert.Equal(t, parent, st.ParentID)
	})

	t.Run("empty title", func(t *testing.T) {
		_, err := NewSubTask(ParentUserTask, parent, "", "", nil, nil)
		assert.ErrorIs(t, err, ErrSubTaskTitleEmpty)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("bad parent type", func(t *testing.T) {
		_, err := NewSubTask("project", parent, "review PR", "", nil, nil)
		assert.ErrorIs(t, err, ErrSubTaskParentInvalid)
	})

	t.Run("nil parent id", func(t *testing.T) {
		_, err := NewSubTask(ParentTask, uuid.Nil, "review PR", "", nil, nil)
		assert.ErrorIs(t, err, ErrSubTaskParentEmpty)
	})
}

func TestNewAttachmentSubTask(t *testing.T) {
	parent := uuid.New()
	deadline := time.Now().Add(24 * time.Hour).UTC()

	st, err := NewAttachmentSubTask(ParentUserTask, parent, "http://x/doc", &deadline)
	require.NoError(t, err)

	assert.Equal(t, AttachmentTitle, st.Title)
	assert.Equal(t, StatusPending, st.Status)
	assert.Equal(t, []string{"http://x/doc"}, st.Attachments)
	require.NotNil(t, st.Deadline)
	assert.True(t, st.Deadline.Equal(deadline))
}

func TestParentTypeIsValid(t *testing.T) {
	assert.True(t, ParentTask.IsValid())
	assert.True(t, ParentUserTask.IsValid())
	assert.False(t, ParentType("note").IsValid())
	assert.False(t, ParentType("").IsValid())
}
