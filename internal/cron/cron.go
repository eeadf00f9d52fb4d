package cron

import (
	"context"
	"time"

	cronv3 "github.com/robfig/cron/v3"

	"github.com/inboxsweep/inboxsweep/config"
	"github.com/inboxsweep/inboxsweep/interfaces"
	"github.com/inboxsweep/inboxsweep/internal/logger"
	"github.com/inboxsweep/inboxsweep/internal/tracing"
)

const jobSessionSweep = "session_sweep"

// CronManager owns the background jobs of the service. The only job today is
// the session sweep that evicts sessions older than the configured TTL,
// taking their undo ledgers with them.
type CronManager struct {
	cfg      *config.Config
	log      logger.Logger
	sessions interfaces.SessionStore
	cron     *cronv3.Cron
	stopCh   chan struct{}
	jobIDs   map[string]cronv3.EntryID
}

func NewCronManager(cfg *config.Config, log logger.Logger, sessions interfaces.SessionStore) *CronManager {
	return &CronManager{
		cfg:      cfg,
		log:      log,
		sessions: sessions,
		stopCh:   make(chan struct{}),
		jobIDs:   make(map[string]cronv3.EntryID),
	}
}

func (cm *CronManager) Start() error {
	cm.cron = cronv3.New()

	id, err := cm.cron.AddFunc(cm.cfg.CleanupConfig.SessionSweepSchedule, cm.sweepSessions)
	if err != nil {
		return err
	}
	cm.jobIDs[jobSessionSweep] = id

	cm.cron.Start()
	cm.log.Infof("cron manager started with %d jobs", len(cm.jobIDs))
	return nil
}

func (cm *CronManager) Stop() {
	if cm.cron != nil {
		ctx := cm.cron.Stop()
		<-ctx.Done()
	}
	close(cm.stopCh)
	cm.log.Info("cron manager stopped")
}

func (cm *CronManager) sweepSessions() {
	span, ctx := tracing.StartTracerSpan(context.Background(), "CronManager.sweepSessions")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	cutoff := time.Now().Add(-cm.cfg.CleanupConfig.SessionTTL)
	removed := cm.sessions.DeleteExpired(ctx, cutoff)
	if removed > 0 {
		cm.log.Infof("session sweep removed %d expired sessions", removed)
	}
}
