package services

import (
	"context"
	"testing"
	"time"

	"taskboard-notifier/internal/config"
	"taskboard-notifier/internal/models"
	"taskboard-notifier/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func scannerConfig() config.NotifyConfig {
	return config.NotifyConfig{
		WebhookURL: "https://chat.example.com/hook",
		PacingMs:   500,
	}
}

// newTestScanner pins "today" to 2026-03-10 UTC and records pacing sleeps
func newTestScanner(store *memStore, dispatcher *fakeDispatcher) (*Scanner, *[]time.Duration) {
	scanner := NewScanner(store, dispatcher, scannerConfig(), time.UTC)
	scanner.now = func() time.Time {
		return time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)
	}
	var sleeps []time.Duration
	scanner.sleep = func(d time.Duration) { sleeps = append(sleeps, d) }
	return scanner, &sleeps
}

func scanFixture() *memStore {
	return newMemStore(
		models.Task{ID: "TASK-001", Row: 1, Name: "overdue", Status: models.TaskStatusInProgress, DueDate: date(2026, time.March, 9)},
		models.Task{ID: "TASK-002", Row: 2, Name: "due today", Status: models.TaskStatusNotStarted, DueDate: date(2026, time.March, 10)},
		models.Task{ID: "TASK-003", Row: 3, Name: "due tomorrow", Status: models.TaskStatusAwaitingConf, DueDate: date(2026, time.March, 11)},
		models.Task{ID: "TASK-004", Row: 4, Name: "two days out", Status: models.TaskStatusInProgress, DueDate: date(2026, time.March, 12)},
		models.Task{ID: "TASK-005", Row: 5, Name: "finished", Status: models.TaskStatusDone, DueDate: date(2026, time.March, 9)},
		models.Task{ID: "TASK-006", Row: 6, Name: "", Status: models.TaskStatusInProgress, DueDate: date(2026, time.March, 9)},
		models.Task{ID: "TASK-007", Row: 7, Name: "no due date", Status: models.TaskStatusInProgress},
	)
}

func TestScanClassification(t *testing.T) {
	store := scanFixture()
	dispatcher := &fakeDispatcher{}
	scanner, sleeps := newTestScanner(store, dispatcher)

	sent, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sent)

	// Exactly overdue, today and tomorrow match; a row two days out never does
	assert.Equal(t, []string{
		"TASK-001-deadline-overdue",
		"TASK-002-deadline-today",
		"TASK-003-deadline-tomorrow",
	}, dispatcher.cardIDs())

	// Fixed pacing between dispatches, none before the first
	assert.Equal(t, []time.Duration{500 * time.Millisecond, 500 * time.Millisecond}, *sleeps)

	require.Len(t, store.audit, 3)
	for _, entry := range store.audit {
		assert.Equal(t, "success", entry.Outcome)
		assert.Contains(t, entry.Context, "reminder scan")
	}
}

func TestScanClassificationInWesternZone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	dateIn := func(day int) *time.Time {
		d := time.Date(2026, time.March, day, 0, 0, 0, 0, loc)
		return &d
	}
	store := newMemStore(
		models.Task{ID: "TASK-001", Row: 1, Name: "overdue", Status: models.TaskStatusInProgress, DueDate: dateIn(9)},
		models.Task{ID: "TASK-002", Row: 2, Name: "due today", Status: models.TaskStatusInProgress, DueDate: dateIn(10)},
		models.Task{ID: "TASK-003", Row: 3, Name: "due tomorrow", Status: models.TaskStatusInProgress, DueDate: dateIn(11)},
		models.Task{ID: "TASK-004", Row: 4, Name: "two days out", Status: models.TaskStatusInProgress, DueDate: dateIn(12)},
	)
	dispatcher := &fakeDispatcher{}
	scanner := NewScanner(store, dispatcher, scannerConfig(), loc)
	scanner.now = func() time.Time {
		return time.Date(2026, time.March, 10, 15, 30, 0, 0, loc)
	}
	scanner.sleep = func(time.Duration) {}

	sent, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.Equal(t, []string{
		"TASK-001-deadline-overdue",
		"TASK-002-deadline-today",
		"TASK-003-deadline-tomorrow",
	}, dispatcher.cardIDs())
}

func TestScanClassificationAcrossDSTStart(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// US DST begins 2026-03-08, making that day 23 hours long
	dateIn := func(day int) *time.Time {
		d := time.Date(2026, time.March, day, 0, 0, 0, 0, loc)
		return &d
	}
	store := newMemStore(
		models.Task{ID: "TASK-001", Row: 1, Name: "overdue", Status: models.TaskStatusInProgress, DueDate: dateIn(7)},
		models.Task{ID: "TASK-002", Row: 2, Name: "due today", Status: models.TaskStatusInProgress, DueDate: dateIn(8)},
		models.Task{ID: "TASK-003", Row: 3, Name: "due tomorrow", Status: models.TaskStatusInProgress, DueDate: dateIn(9)},
	)
	dispatcher := &fakeDispatcher{}
	scanner := NewScanner(store, dispatcher, scannerConfig(), loc)
	scanner.now = func() time.Time {
		return time.Date(2026, time.March, 8, 12, 0, 0, 0, loc)
	}
	scanner.sleep = func(time.Duration) {}

	sent, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, sent)
	assert.Equal(t, []string{
		"TASK-001-deadline-overdue",
		"TASK-002-deadline-today",
		"TASK-003-deadline-tomorrow",
	}, dispatcher.cardIDs())
}

func TestScanIsIdempotent(t *testing.T) {
	store := scanFixture()
	dispatcher := &fakeDispatcher{}
	scanner, _ := newTestScanner(store, dispatcher)

	first, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	second, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	ids := dispatcher.cardIDs()
	assert.Equal(t, ids[:len(ids)/2], ids[len(ids)/2:], "both scans dispatch the same set of matches")
}

func TestScanContinuesPastDeliveryFailure(t *testing.T) {
	store := scanFixture()
	dispatcher := &fakeDispatcher{script: []notify.Result{{OK: false, Err: "status 503: unavailable"}}}
	scanner, _ := newTestScanner(store, dispatcher)

	sent, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	// First reminder fails, the remaining rows are still processed
	assert.Equal(t, 2, sent)
	assert.Len(t, dispatcher.sent, 3)

	require.Len(t, store.audit, 3)
	assert.Contains(t, store.audit[0].Outcome, "error: status 503")
	assert.Equal(t, "success", store.audit[1].Outcome)
	assert.Equal(t, "success", store.audit[2].Outcome)
}

func TestScanWithoutEndpointFails(t *testing.T) {
	store := scanFixture()
	dispatcher := &fakeDispatcher{}
	scanner, _ := newTestScanner(store, dispatcher)
	scanner.cfg.WebhookURL = ""

	_, err := scanner.Scan(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
	assert.Empty(t, dispatcher.sent)
}

func TestScanEmptyTable(t *testing.T) {
	scanner, sleeps := newTestScanner(newMemStore(), &fakeDispatcher{})

	sent, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, *sleeps)
}
