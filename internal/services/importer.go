package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"taskboard-notifier/internal/models"
	"taskboard-notifier/internal/utils"

	"github.com/xeipuuv/gojsonschema"
)

// Importer ingests an externally produced plan: a JSON array of task records
// without IDs. Malformed input is a hard error and no partial import is ever
// attempted.
type Importer struct {
	store      TaskStore
	allocator  *Allocator
	schemaPath string
	location   *time.Location
}

// NewImporter creates the importer. schemaPath points at the JSON schema the
// plan is validated against before decoding; loc is the table's zone, in
// which plan dates are interpreted.
func NewImporter(store TaskStore, allocator *Allocator, schemaPath string, loc *time.Location) *Importer {
	return &Importer{
		store:      store,
		allocator:  allocator,
		schemaPath: schemaPath,
		location:   loc,
	}
}

// Import validates and inserts a plan, returning the created tasks with
// their assigned IDs. The raw input may carry surrounding text; the
// bracket-delimited array is extracted first, and its absence is a hard
// error.
func (im *Importer) Import(ctx context.Context, raw []byte) ([]models.Task, error) {
	doc, err := extractArray(raw)
	if err != nil {
		return nil, err
	}

	if err := im.validate(doc); err != nil {
		return nil, err
	}

	var records []models.ImportRecord
	if err := json.Unmarshal(doc, &records); err != nil {
		return nil, fmt.Errorf("failed to parse import input: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("import input contains no records")
	}

	existing, err := im.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	tasks := im.allocator.Allocate(existing, records)
	for i, record := range records {
		start, err := parseOptionalDate(record.StartDate, im.location)
		if err != nil {
			return nil, fmt.Errorf("record %d: invalid start_date %q", i, record.StartDate)
		}
		due, err := parseOptionalDate(record.DueDate, im.location)
		if err != nil {
			return nil, fmt.Errorf("record %d: invalid due_date %q", i, record.DueDate)
		}
		tasks[i].StartDate = start
		tasks[i].DueDate = due
	}

	if err := im.store.InsertTasks(ctx, tasks); err != nil {
		return nil, fmt.Errorf("failed to insert tasks: %w", err)
	}

	return tasks, nil
}

// validate checks the extracted array against the import schema
func (im *Importer) validate(doc []byte) error {
	schemaData, err := os.ReadFile(im.schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaData))
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("failed to validate import input: %w", err)
	}

	if !result.Valid() {
		var errors []string
		for _, desc := range result.Errors() {
			errors = append(errors, desc.String())
		}
		return fmt.Errorf("import input validation failed: %v", errors)
	}

	return nil
}

// extractArray pulls the bracket-delimited JSON array out of the raw input.
// Plans often arrive wrapped in prose; everything outside the outermost
// brackets is discarded. Missing brackets are a hard error.
func extractArray(raw []byte) ([]byte, error) {
	s := string(raw)
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("import input contains no JSON array")
	}
	return []byte(s[start : end+1]), nil
}

func parseOptionalDate(value string, loc *time.Location) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := utils.ParseDateIn(value, loc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
