package services

import (
	"testing"

	"taskboard-notifier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateDenseFromCurrentMax(t *testing.T) {
	existing := []models.Task{
		{ID: "TASK-001", Row: 1},
		{ID: "TASK-003", Row: 2},
	}
	records := []models.ImportRecord{
		{TaskName: "first"},
		{TaskName: "second"},
	}

	tasks := NewAllocator().Allocate(existing, records)

	require.Len(t, tasks, 2)
	// Dense from the current max; the gap at TASK-002 is not backfilled
	assert.Equal(t, "TASK-004", tasks[0].ID)
	assert.Equal(t, "TASK-005", tasks[1].ID)
}

func TestAllocateIgnoresNonMatchingIDs(t *testing.T) {
	existing := []models.Task{
		{ID: "TASK-007", Row: 1},
		{ID: "legacy-42", Row: 2},
		{ID: "", Row: 3},
		{ID: "TASK-xyz", Row: 4},
	}

	tasks := NewAllocator().Allocate(existing, []models.ImportRecord{{TaskName: "next"}})

	require.Len(t, tasks, 1)
	assert.Equal(t, "TASK-008", tasks[0].ID)
}

func TestAllocateEmptyTableStartsAtOne(t *testing.T) {
	tasks := NewAllocator().Allocate(nil, []models.ImportRecord{{TaskName: "first"}})

	require.Len(t, tasks, 1)
	assert.Equal(t, "TASK-001", tasks[0].ID)
}

func TestAllocateAppliesDefaults(t *testing.T) {
	records := []models.ImportRecord{
		{TaskName: "a task", AssigneeName: "Alice", Description: "details"},
	}

	tasks := NewAllocator().Allocate(nil, records)

	require.Len(t, tasks, 1)
	assert.Equal(t, "a task", tasks[0].Name)
	assert.Equal(t, "Alice", tasks[0].Assignee)
	assert.Equal(t, "details", tasks[0].Note)
	assert.Equal(t, models.TaskStatusNotStarted, tasks[0].Status)
	assert.False(t, tasks[0].NotifyFlag)
}

func TestFormatIDWidensPastPadding(t *testing.T) {
	assert.Equal(t, "TASK-001", FormatID(1))
	assert.Equal(t, "TASK-042", FormatID(42))
	assert.Equal(t, "TASK-1000", FormatID(1000))
}
