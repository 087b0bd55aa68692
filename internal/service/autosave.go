package service

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// DefaultAutosaveSchedule saves every thirty seconds.
const DefaultAutosaveSchedule = "@every 30s"

// Autosaver periodically saves the open document when it has unsaved changes.
type Autosaver struct {
	docs   *DocumentService
	logger *log.Logger
	cron   *cron.Cron
	entry  cron.EntryID
	ctx    context.Context
}

// NewAutosaver schedules saves with a cron expression (five fields or a
// descriptor such as "@every 1m"). The schedule does not run until Start.
func NewAutosaver(ctx context.Context, docs *DocumentService, schedule string, logger *log.Logger) (*Autosaver, error) {
	if schedule == "" {
		schedule = DefaultAutosaveSchedule
	}
	if logger == nil {
		logger = log.Default()
	}
	a := &Autosaver{docs: docs, logger: logger, cron: cron.New(), ctx: ctx}
	id, err := a.cron.AddFunc(schedule, a.Tick)
	if err != nil {
		return nil, fmt.Errorf("invalid autosave schedule %q: %w", schedule, err)
	}
	a.entry = id
	return a, nil
}

// Start begins the schedule in its own goroutine.
func (a *Autosaver) Start() {
	a.cron.Start()
	a.logger.Debug("autosave started", "next", a.Next())
}

// Stop halts the schedule and waits for a running tick to finish, up to the
// deadline of ctx. A final save is attempted when the document is dirty.
func (a *Autosaver) Stop(ctx context.Context) {
	done := a.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	a.Tick()
}

// Next returns the time of the next scheduled save.
func (a *Autosaver) Next() time.Time {
	return a.cron.Entry(a.entry).Next
}

// Tick saves the document if it is dirty.
func (a *Autosaver) Tick() {
	saved, err := a.docs.SaveIfDirty(a.ctx)
	if err != nil {
		a.logger.Error("autosave failed", "err", err)
		return
	}
	if saved {
		a.logger.Debug("autosaved")
	}
}
