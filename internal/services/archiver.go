package services

import (
	"context"
	"fmt"
	"log"

	"taskboard-notifier/internal/models"
)

// Archiver migrates terminal rows from the live table to the archive
type Archiver struct {
	store TaskStore
}

// NewArchiver creates the archiver
func NewArchiver(store TaskStore) *Archiver {
	return &Archiver{store: store}
}

// Archive moves every row whose status is terminal into the archive and
// reports how many were moved. The scan walks rows in reverse order,
// prepending matches so the batch keeps the original forward order; deletes
// then run highest row first, so removing a row never shifts a row that is
// still pending deletion.
func (a *Archiver) Archive(ctx context.Context) (int, error) {
	tasks, err := a.store.ListTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load tasks: %w", err)
	}

	var batch []models.Task
	var rows []int
	for i := len(tasks) - 1; i >= 0; i-- {
		if !tasks[i].Status.IsTerminal() {
			continue
		}
		batch = append([]models.Task{tasks[i]}, batch...)
		rows = append(rows, tasks[i].Row)
	}

	if len(batch) == 0 {
		return 0, nil
	}

	// One bulk write; the archive is append-only from this side
	if err := a.store.AppendArchive(ctx, batch); err != nil {
		return 0, fmt.Errorf("failed to append to archive: %w", err)
	}

	// rows was collected walking backwards, so it is already descending
	for _, row := range rows {
		if err := a.store.DeleteRow(ctx, row); err != nil {
			return 0, fmt.Errorf("failed to delete row %d: %w", row, err)
		}
	}

	log.Printf("Archived %d completed tasks", len(batch))
	return len(batch), nil
}
