package services

import (
	"fmt"
	"regexp"
	"strconv"

	"taskboard-notifier/internal/models"
)

// Task ID format: TASK- prefix plus a zero-padded numeric suffix
const (
	idPrefix = "TASK-"
	idWidth  = 3
)

var idPattern = regexp.MustCompile(`^TASK-(\d+)$`)

// Allocator assigns unique monotonic IDs to newly imported tasks. It takes
// no table lock: concurrent imports are not guaranteed race-free, which is a
// documented limitation of the import path.
type Allocator struct{}

// NewAllocator creates the ID allocator
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate assigns each record, in input order, an ID one past the highest
// numeric suffix currently in the table. Assignment is dense and contiguous:
// gaps in existing IDs are never backfilled. Existing values that do not
// match the ID pattern are ignored, not errors.
func (a *Allocator) Allocate(existing []models.Task, records []models.ImportRecord) []models.Task {
	max := 0
	for _, task := range existing {
		m := idPattern.FindStringSubmatch(task.ID)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}

	tasks := make([]models.Task, 0, len(records))
	for i, record := range records {
		tasks = append(tasks, models.Task{
			ID:         FormatID(max + i + 1),
			Name:       record.TaskName,
			Assignee:   record.AssigneeName,
			Status:     models.TaskStatusNotStarted,
			NotifyFlag: false,
			Note:       record.Description,
		})
	}

	return tasks
}

// FormatID renders a numeric suffix as a task ID, zero-padded to the fixed
// width (wider once the counter outgrows it).
func FormatID(n int) string {
	return fmt.Sprintf("%s%0*d", idPrefix, idWidth, n)
}
