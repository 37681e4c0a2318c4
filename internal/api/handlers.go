package api

import (
	"context"
	"io"
	"net/http"

	"taskboard-notifier/internal/models"
	"taskboard-notifier/internal/services"

	"github.com/gin-gonic/gin"
)

// The designated trigger column and its checked value. Edits anywhere else,
// or un-checking, are no-ops at this boundary.
const (
	triggerColumn = "notify"
	checkedValue  = "TRUE"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	store    services.TaskStore
	notifier *services.Notifier
	scanner  *services.Scanner
	archiver *services.Archiver
	importer *services.Importer
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	store services.TaskStore,
	notifier *services.Notifier,
	scanner *services.Scanner,
	archiver *services.Archiver,
	importer *services.Importer,
) *Handlers {
	return &Handlers{
		store:    store,
		notifier: notifier,
		scanner:  scanner,
		archiver: archiver,
		importer: importer,
	}
}

// TriggerHandler handles POST /api/tasks/trigger — the edit-event boundary.
// Only an edit that sets the trigger column to the checked value starts a
// notification; the handler acknowledges and the notifier runs unattended,
// reporting outcomes only to the audit log.
func (h *Handlers) TriggerHandler(c *gin.Context) {
	var req models.EditEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Exact match only: un-checking or any other value is ignored
	if req.Column != triggerColumn || req.Value != checkedValue {
		c.Status(http.StatusNoContent)
		return
	}

	go h.notifier.HandleTrigger(context.Background(), req.Row)

	c.JSON(http.StatusAccepted, models.TriggerResponse{Status: "accepted"})
}

// ScanHandler handles POST /api/tasks/scan
func (h *Handlers) ScanHandler(c *gin.Context) {
	sent, err := h.scanner.Scan(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.ScanResponse{Sent: sent})
}

// ArchiveHandler handles POST /api/tasks/archive
func (h *Handlers) ArchiveHandler(c *gin.Context) {
	moved, err := h.archiver.Archive(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.ArchiveResponse{Moved: moved})
}

// ImportHandler handles POST /api/tasks/import. The body is the raw plan
// text; malformed input is rejected outright and nothing is inserted.
func (h *Handlers) ImportHandler(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	tasks, err := h.importer.Import(c.Request.Context(), raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}

	c.JSON(http.StatusOK, models.ImportResponse{Imported: len(tasks), IDs: ids})
}

// ListTasksHandler handles GET /api/tasks
func (h *Handlers) ListTasksHandler(c *gin.Context) {
	tasks, err := h.store.ListTasks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tasks)
}
