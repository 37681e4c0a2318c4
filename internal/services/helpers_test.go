package services

import (
	"context"
	"fmt"
	"sync"

	"taskboard-notifier/internal/models"
	"taskboard-notifier/internal/notify"
)

// memStore is an in-memory TaskStore used across the service tests. Rows
// keep their numbers when other rows are deleted, matching the store
// contract.
type memStore struct {
	mu        sync.Mutex
	tasks     []models.Task
	archive   []models.Task
	audit     []models.AuditEntry
	directory map[string]string

	failGet bool
}

func newMemStore(tasks ...models.Task) *memStore {
	return &memStore{tasks: tasks, directory: map[string]string{}}
}

func (s *memStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

func (s *memStore) GetTask(ctx context.Context, row int) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failGet {
		return models.Task{}, fmt.Errorf("store unavailable")
	}
	for _, task := range s.tasks {
		if task.Row == row {
			return task, nil
		}
	}
	return models.Task{}, fmt.Errorf("row %d not found", row)
}

func (s *memStore) SetNotifyFlag(ctx context.Context, row int, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].Row == row {
			s.tasks[i].NotifyFlag = value
			return nil
		}
	}
	return nil
}

func (s *memStore) DeleteRow(ctx context.Context, row int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].Row == row {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("row %d not found", row)
}

func (s *memStore) InsertTasks(ctx context.Context, tasks []models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := 1
	for _, task := range s.tasks {
		if task.Row >= next {
			next = task.Row + 1
		}
	}
	for i := range tasks {
		tasks[i].Row = next + i
		s.tasks = append(s.tasks, tasks[i])
	}
	return nil
}

func (s *memStore) AppendArchive(ctx context.Context, tasks []models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archive = append(s.archive, tasks...)
	return nil
}

func (s *memStore) AppendAudit(ctx context.Context, entry models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, entry)
	return nil
}

func (s *memStore) Directory(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.directory, nil
}

func (s *memStore) task(row int) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.tasks {
		if task.Row == row {
			return task
		}
	}
	return models.Task{}
}

// fakeDispatcher records sends and replies with scripted results (success
// once the script runs out).
type fakeDispatcher struct {
	mu      sync.Mutex
	script  []notify.Result
	sent    []notify.ChatMessage
	targets []string
}

func (d *fakeDispatcher) Send(ctx context.Context, endpoint string, msg notify.ChatMessage) notify.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, msg)
	d.targets = append(d.targets, endpoint)
	if len(d.script) > 0 {
		result := d.script[0]
		d.script = d.script[1:]
		return result
	}
	return notify.Result{OK: true, Status: 200, Attempts: 1}
}

func (d *fakeDispatcher) cardIDs() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var ids []string
	for _, msg := range d.sent {
		for _, card := range msg.CardsV2 {
			ids = append(ids, card.CardID)
		}
	}
	return ids
}
