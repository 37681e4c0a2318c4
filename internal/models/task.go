package models

import "time"

// TaskStatus represents the status of a task
type TaskStatus string

const (
	TaskStatusNotStarted   TaskStatus = "not-started"
	TaskStatusInProgress   TaskStatus = "in-progress"
	TaskStatusAwaitingConf TaskStatus = "awaiting-confirmation"
	TaskStatusDone         TaskStatus = "done"
)

// IsTerminal reports whether the status marks a task as completed and
// eligible for archiving.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusDone
}

// Task represents one row of the live task table
type Task struct {
	ID         string     `bson:"taskId" json:"id"`
	Row        int        `bson:"row" json:"row"`
	Name       string     `bson:"name" json:"name"`
	Assignee   string     `bson:"assignee" json:"assignee"`
	StartDate  *time.Time `bson:"startDate,omitempty" json:"startDate,omitempty"`
	DueDate    *time.Time `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	Status     TaskStatus `bson:"status" json:"status"`
	NotifyFlag bool       `bson:"notifyFlag" json:"notifyFlag"`
	Note       string     `bson:"note,omitempty" json:"note,omitempty"`
}

// AuditEntry is one append-only audit log row, written after every dispatch
// attempt. Column order on the wire is fixed:
// [timestamp, task_name, status, assignee, outcome, context].
type AuditEntry struct {
	ID        string    `bson:"_id" json:"id"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
	TaskName  string    `bson:"taskName" json:"task_name"`
	Status    string    `bson:"status" json:"status"`
	Assignee  string    `bson:"assignee" json:"assignee"`
	Outcome   string    `bson:"outcome" json:"outcome"`
	Context   string    `bson:"context" json:"context"`
}

// ImportRecord is one entry of an imported plan. All fields are optional;
// dates are YYYY-MM-DD strings.
type ImportRecord struct {
	TaskName     string `json:"task_name,omitempty"`
	AssigneeName string `json:"assignee_name,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	DueDate      string `json:"due_date,omitempty"`
	Description  string `json:"description,omitempty"`
}
