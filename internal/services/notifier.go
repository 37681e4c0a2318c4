package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"taskboard-notifier/internal/config"
	"taskboard-notifier/internal/models"
	"taskboard-notifier/internal/notify"
	"taskboard-notifier/internal/utils"
)

// Notifier handles the edit-triggered, single-flight notification path.
// Exactly one invocation runs against the table at a time; every invocation
// that gets past the lock leaves the row's notify flag false.
type Notifier struct {
	store      TaskStore
	dispatcher CardDispatcher
	lock       *TableLock
	cfg        config.NotifyConfig
	location   *time.Location
}

// NewNotifier creates the single-flight notifier
func NewNotifier(store TaskStore, dispatcher CardDispatcher, lock *TableLock, cfg config.NotifyConfig, loc *time.Location) *Notifier {
	return &Notifier{
		store:      store,
		dispatcher: dispatcher,
		lock:       lock,
		cfg:        cfg,
		location:   loc,
	}
}

// HandleTrigger processes one trigger on the given row. The caller (the
// edit-event boundary) has already checked that the trigger column was set
// to the checked value. This path runs unattended: every outcome lands in
// the audit log and nothing propagates to the caller.
func (n *Notifier) HandleTrigger(ctx context.Context, row int) {
	timeout := time.Duration(n.cfg.LockTimeoutMs) * time.Millisecond
	if !n.lock.TryLock(timeout) {
		// Two racing triggers: the loser abandons silently. The flag stays
		// set, so the surviving invocation (or a later edit) still covers it.
		return
	}
	defer n.lock.Unlock()

	// The flag is reset no matter what happens below, so a future edit can
	// re-trigger and a retriggered edit cannot double-send.
	defer func() {
		if err := n.store.SetNotifyFlag(ctx, row, false); err != nil {
			log.Printf("ERROR: failed to reset notify flag on row %d: %v", row, err)
		}
	}()

	task, err := n.store.GetTask(ctx, row)
	if err != nil {
		log.Printf("ERROR: trigger on row %d: %v", row, err)
		n.audit(ctx, models.Task{}, fmt.Sprintf("error: %v", err), row)
		return
	}

	directory, err := n.store.Directory(ctx)
	if err != nil {
		log.Printf("WARNING: failed to load assignee directory: %v", err)
		directory = nil
	}

	msg := notify.Render(task, notify.ReasonStatusChange, notify.RenderOptions{
		Directory: directory,
		TableURL:  n.cfg.TableURL,
		Location:  n.location,
	})

	if n.cfg.WebhookURL == "" {
		n.audit(ctx, task, "error: endpoint not configured", row)
		return
	}

	result := n.dispatcher.Send(ctx, n.cfg.WebhookURL, msg)
	if result.OK {
		n.audit(ctx, task, "success", row)
	} else {
		n.audit(ctx, task, fmt.Sprintf("error: %s", result.Err), row)
	}
}

func (n *Notifier) audit(ctx context.Context, task models.Task, outcome string, row int) {
	entry := models.AuditEntry{
		ID:        utils.GenerateUUID(),
		Timestamp: time.Now(),
		TaskName:  task.Name,
		Status:    string(task.Status),
		Assignee:  task.Assignee,
		Outcome:   outcome,
		Context:   fmt.Sprintf("trigger row %d", row),
	}
	if err := n.store.AppendAudit(ctx, entry); err != nil {
		log.Printf("ERROR: failed to append audit entry: %v", err)
	}
}
