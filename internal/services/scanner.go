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

// Scanner runs the batch reminder path: classify every live row by deadline
// proximity and fan out one card per match. It takes no table lock;
// invocations are assumed not to overlap each other.
type Scanner struct {
	store      TaskStore
	dispatcher CardDispatcher
	cfg        config.NotifyConfig
	location   *time.Location

	// now and sleep are swapped out in tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewScanner creates the reminder scanner
func NewScanner(store TaskStore, dispatcher CardDispatcher, cfg config.NotifyConfig, loc *time.Location) *Scanner {
	return &Scanner{
		store:      store,
		dispatcher: dispatcher,
		cfg:        cfg,
		location:   loc,
		now:        time.Now,
		sleep:      time.Sleep,
	}
}

// Scan classifies all live rows and dispatches a reminder per match,
// returning the number of notifications sent. Scanning is read-only with
// respect to tasks and has no memory of prior runs, so back-to-back scans
// match the same rows. A failed delivery is audited and skipped, never
// aborting the remaining rows.
func (s *Scanner) Scan(ctx context.Context) (int, error) {
	if s.cfg.WebhookURL == "" {
		// Interactive path: configuration errors surface to the caller
		return 0, fmt.Errorf("webhook endpoint not configured")
	}

	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load tasks: %w", err)
	}

	directory, err := s.store.Directory(ctx)
	if err != nil {
		log.Printf("WARNING: failed to load assignee directory: %v", err)
		directory = nil
	}

	today := utils.Midnight(s.now(), s.location)
	pacing := time.Duration(s.cfg.PacingMs) * time.Millisecond

	sent := 0
	dispatched := false
	for _, task := range tasks {
		reason, ok := s.classify(task, today)
		if !ok {
			continue
		}

		// Fixed pacing between dispatches to respect downstream rate limits
		if dispatched {
			s.sleep(pacing)
		}
		dispatched = true

		msg := notify.Render(task, reason, notify.RenderOptions{
			Directory: directory,
			TableURL:  s.cfg.TableURL,
			Location:  s.location,
		})

		result := s.dispatcher.Send(ctx, s.cfg.WebhookURL, msg)
		if result.OK {
			s.audit(ctx, task, "success", reason)
			sent++
		} else {
			log.Printf("WARNING: reminder for %q (%s) failed: %s", task.Name, task.ID, result.Err)
			s.audit(ctx, task, fmt.Sprintf("error: %s", result.Err), reason)
		}
	}

	return sent, nil
}

// classify buckets a task by the whole-day distance from today to its due
// date: <0 overdue, 0 today, 1 tomorrow, anything else no match. Terminal
// rows, unnamed rows and rows without a due date are skipped unconditionally.
func (s *Scanner) classify(task models.Task, today time.Time) (notify.Reason, bool) {
	if task.Status.IsTerminal() || task.Name == "" || task.DueDate == nil {
		return "", false
	}

	switch days := utils.DaysBetween(today, *task.DueDate, s.location); {
	case days < 0:
		return notify.ReasonDeadlineOverdue, true
	case days == 0:
		return notify.ReasonDeadlineToday, true
	case days == 1:
		return notify.ReasonDeadlineTomorrow, true
	default:
		return "", false
	}
}

func (s *Scanner) audit(ctx context.Context, task models.Task, outcome string, reason notify.Reason) {
	entry := models.AuditEntry{
		ID:        utils.GenerateUUID(),
		Timestamp: time.Now(),
		TaskName:  task.Name,
		Status:    string(task.Status),
		Assignee:  task.Assignee,
		Outcome:   outcome,
		Context:   fmt.Sprintf("reminder scan (%s)", reason),
	}
	if err := s.store.AppendAudit(ctx, entry); err != nil {
		log.Printf("ERROR: failed to append audit entry: %v", err)
	}
}
