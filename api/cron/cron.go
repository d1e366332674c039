// Package cron runs the optional scheduled re-analysis job spec.md §6.8
// describes, mirroring the teacher's CronManager: a single
// robfig/cron/v3 scheduler wrapping a task-executor-shaped callback, here
// re-running Analyze for every loaded deal instead of a data-collection
// sweep.
package cron

import (
	"performa/api/http/store"
	"performa/internal/logger"

	"github.com/robfig/cron/v3"
)

// Manager owns the cron scheduler that periodically re-analyzes every
// deal the DealStore knows about.
type Manager struct {
	cron  *cron.Cron
	store *store.DealStore
}

// NewManager builds a Manager bound to s.
func NewManager(s *store.DealStore) *Manager {
	return &Manager{
		cron:  cron.New(),
		store: s,
	}
}

// Start registers the reanalysis job on schedule (standard 5-field cron
// expression) and starts the scheduler. Disabled by default; callers only
// invoke this when config.CronConfig.Enabled is true.
func (m *Manager) Start(schedule string) error {
	if _, err := m.cron.AddFunc(schedule, m.reanalyzeAll); err != nil {
		return err
	}
	m.cron.Start()
	logger.WithField("schedule", schedule).Info("scheduled re-analysis job started")
	return nil
}

// Stop halts the scheduler, waiting for any in-flight run to finish.
func (m *Manager) Stop() {
	<-m.cron.Stop().Done()
	logger.Info("scheduled re-analysis job stopped")
}

// reanalyzeAll re-runs Analyze for every deal currently loaded, picking up
// an externally updated Deal/Settings pair without requiring a restart.
func (m *Manager) reanalyzeAll() {
	for _, dealID := range m.store.DealIDs() {
		if err := m.store.Reload(dealID); err != nil {
			logger.WithField("deal_id", dealID).Errorf("scheduled re-analysis failed: %v", err)
			continue
		}
		logger.WithField("deal_id", dealID).Info("scheduled re-analysis complete")
	}
}
