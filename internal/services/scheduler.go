package services

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the reminder scan and the archive migration on cron
// schedules. A failing job is logged and retried at the next tick, never
// fatal.
type Scheduler struct {
	scanner  *Scanner
	archiver *Archiver
	cron     *cron.Cron
}

// NewScheduler creates the scheduler
func NewScheduler(scanner *Scanner, archiver *Archiver) *Scheduler {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds())

	return &Scheduler{
		scanner:  scanner,
		archiver: archiver,
		cron:     c,
	}
}

// Start starts the cron scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("Task maintenance cron scheduler started")
}

// Stop stops the cron scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("Task maintenance cron scheduler stopped")
}

// ScheduleReminders registers the reminder scan at the given cron spec
// (seconds precision). An empty spec disables the job.
func (s *Scheduler) ScheduleReminders(spec string) error {
	if spec == "" {
		log.Printf("Reminder scan not scheduled (no cron spec configured)")
		return nil
	}

	_, err := s.cron.AddFunc(spec, func() {
		sent, err := s.scanner.Scan(context.Background())
		if err != nil {
			log.Printf("ERROR: scheduled reminder scan failed: %v", err)
			return
		}
		log.Printf("Scheduled reminder scan sent %d notifications", sent)
	})
	if err != nil {
		return err
	}

	log.Printf("Scheduled reminder scan with spec: %s", spec)
	return nil
}

// ScheduleArchive registers the archive migration at the given cron spec.
// An empty spec disables the job.
func (s *Scheduler) ScheduleArchive(spec string) error {
	if spec == "" {
		log.Printf("Archive migration not scheduled (no cron spec configured)")
		return nil
	}

	_, err := s.cron.AddFunc(spec, func() {
		moved, err := s.archiver.Archive(context.Background())
		if err != nil {
			log.Printf("ERROR: scheduled archive migration failed: %v", err)
			return
		}
		log.Printf("Scheduled archive migration moved %d tasks", moved)
	})
	if err != nil {
		return err
	}

	log.Printf("Scheduled archive migration with spec: %s", spec)
	return nil
}
