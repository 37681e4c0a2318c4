package services

import (
	"context"

	"taskboard-notifier/internal/models"
	"taskboard-notifier/internal/notify"
)

// TaskStore is the task table abstraction the services run against. The
// MongoDB client implements it; tests use an in-memory fake. Row numbers are
// stable sequence keys: deleting a row never renumbers the survivors.
type TaskStore interface {
	// ListTasks returns all live rows in row order
	ListTasks(ctx context.Context) ([]models.Task, error)
	// GetTask returns the live row with the given row number
	GetTask(ctx context.Context, row int) (models.Task, error)
	// SetNotifyFlag updates the notify flag of one live row
	SetNotifyFlag(ctx context.Context, row int, value bool) error
	// DeleteRow removes one live row
	DeleteRow(ctx context.Context, row int) error
	// InsertTasks appends tasks to the live table in input order
	InsertTasks(ctx context.Context, tasks []models.Task) error
	// AppendArchive appends tasks to the archive in batch order
	AppendArchive(ctx context.Context, tasks []models.Task) error
	// AppendAudit appends one audit log entry
	AppendAudit(ctx context.Context, entry models.AuditEntry) error
	// Directory loads the assignee name -> chat address mapping
	Directory(ctx context.Context) (map[string]string, error)
}

// CardDispatcher delivers a rendered card to the webhook endpoint
type CardDispatcher interface {
	Send(ctx context.Context, endpoint string, msg notify.ChatMessage) notify.Result
}
