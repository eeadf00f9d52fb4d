package cleanup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/inboxsweep/inboxsweep/config"
	"github.com/inboxsweep/inboxsweep/interfaces"
	"github.com/inboxsweep/inboxsweep/internal/enum"
	ierrors "github.com/inboxsweep/inboxsweep/internal/errors"
	"github.com/inboxsweep/inboxsweep/internal/logger"
	"github.com/inboxsweep/inboxsweep/internal/models"
	"github.com/inboxsweep/inboxsweep/internal/tracing"
	"github.com/inboxsweep/inboxsweep/internal/utils"
)

// metadataHeaders are the only headers the spam annotator ever needs.
var metadataHeaders = []string{"Subject", "From"}

// Service is the bulk-cleanup engine. One run per session at a time; the run
// itself is a single goroutine that owns all mutable run state and emits an
// ordered, lazy event stream over an unbuffered channel.
type Service struct {
	cfg      *config.CleanupConfig
	log      logger.Logger
	sessions interfaces.SessionStore
	spam     interfaces.SpamDetector

	mu     sync.Mutex
	active map[string]struct{}
}

func NewCleanupService(cfg *config.CleanupConfig, log logger.Logger, sessions interfaces.SessionStore, spam interfaces.SpamDetector) *Service {
	return &Service{
		cfg:      cfg,
		log:      log,
		sessions: sessions,
		spam:     spam,
		active:   map[string]struct{}{},
	}
}

var _ interfaces.CleanupService = (*Service)(nil)

func (s *Service) Run(ctx context.Context, sessionKey string, plan *models.CleanupPlan, client interfaces.MailboxClient) (<-chan models.ProgressEvent, error) {
	s.mu.Lock()
	if _, busy := s.active[sessionKey]; busy {
		s.mu.Unlock()
		return nil, ierrors.ErrRunInProgress
	}
	s.active[sessionKey] = struct{}{}
	s.mu.Unlock()

	plan = withDefaults(plan, s.cfg)

	events := make(chan models.ProgressEvent)
	go func() {
		defer tracing.RecoverAndLogToJaeger(s.log)
		defer close(events)
		defer s.release(sessionKey)
		s.execute(ctx, sessionKey, plan, client, events)
	}()

	return events, nil
}

func (s *Service) release(sessionKey string) {
	s.mu.Lock()
	delete(s.active, sessionKey)
	s.mu.Unlock()
}

// withDefaults repairs an empty or missing plan with the minimal safe query
// instead of failing the run.
func withDefaults(plan *models.CleanupPlan, cfg *config.CleanupConfig) *models.CleanupPlan {
	if plan == nil {
		plan = &models.CleanupPlan{SafetyCap: cfg.SafetyCap}
	}
	if len(plan.Queries) == 0 {
		copied := *plan
		copied.Queries = []string{baseUnreadQuery}
		return &copied
	}
	return plan
}

// execute drives the state machine. It is the only writer of run state, and
// every event send doubles as a cancellation check: once ctx is done no
// further remote call is started.
func (s *Service) execute(ctx context.Context, sessionKey string, plan *models.CleanupPlan, client interfaces.MailboxClient, events chan<- models.ProgressEvent) {
	span, ctx := tracing.StartTracerSpan(ctx, "CleanupService.execute")
	defer span.Finish()
	tracing.TagComponentService(span)
	tracing.TagSessionKey(span, sessionKey)

	run := models.NewCleanupRun(utils.NewRunID())
	span.SetTag(tracing.SpanTagRunID, run.ID)
	tracing.LogObjectAsJson(span, "plan", plan)

	emit := func(ev models.ProgressEvent) bool {
		ev.TotalDeleted = run.TotalDeleted
		ev.SpamFlagged = run.SpamFlagged
		ev.Restored = run.Restored
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	run.State = enum.RunRunning
	if !emit(models.ProgressEvent{Category: enum.EventStart, Message: "Starting cleanup..."}) {
		return
	}

	for _, query := range plan.Queries {
		if !s.processQuery(ctx, run, plan, client, query, emit) {
			s.recordUndo(ctx, sessionKey, run)
			return
		}
	}

	if plan.RestoreEnabled {
		if !s.restoreReadFromTrash(ctx, run, client, emit) {
			s.recordUndo(ctx, sessionKey, run)
			return
		}
	}

	run.State = enum.RunDone
	s.recordUndo(ctx, sessionKey, run)

	if !run.FoundAny {
		emit(models.ProgressEvent{
			Category: enum.EventNothingFound,
			Message:  "No matching emails found",
			Terminal: true,
		})
		return
	}

	msg := fmt.Sprintf("DONE. Total deleted: %d", run.TotalDeleted)
	if plan.SpamDetectionEnabled {
		msg = fmt.Sprintf("%s (%d likely spam, %d%%)", msg, run.SpamFlagged, run.SpamPercentage())
	}
	emit(models.ProgressEvent{Category: enum.EventDone, Message: msg, Terminal: true})
}

// processQuery paginates one query to exhaustion. Returns false when the run
// must stop entirely: cancellation, fatal error, or cap halt.
func (s *Service) processQuery(ctx context.Context, run *models.CleanupRun, plan *models.CleanupPlan, client interfaces.MailboxClient, query string, emit func(models.ProgressEvent) bool) bool {
	if !emit(models.ProgressEvent{
		Category: enum.EventProcessingQuery,
		Query:    query,
		Message:  fmt.Sprintf("Processing %s...", query),
	}) {
		return false
	}

	cursor := ""
	for {
		refs, next, err := client.List(ctx, query, s.cfg.PageSize, cursor)
		if err != nil {
			if ierrors.IsFatal(err) {
				return s.abort(run, err, emit)
			}
			// transient listing failure: give up on this query, keep the run
			s.log.Warnf("listing %q failed: %v", query, err)
			emit(models.ProgressEvent{
				Category: enum.EventError,
				Query:    query,
				Message:  fmt.Sprintf("Could not list messages for %s, skipping", query),
				Err:      err.Error(),
			})
			break
		}

		if len(refs) == 0 {
			break
		}

		// Cap check is pre-batch: the batch that would cross the cap is
		// never mutated, so TotalDeleted can never exceed the cap.
		if plan.SafetyCap > 0 && run.TotalDeleted+len(refs) > plan.SafetyCap {
			run.State = enum.RunHaltedByCap
			run.HaltedByCap = true
			emit(models.ProgressEvent{
				Category: enum.EventSafetyHalt,
				Query:    query,
				Message:  fmt.Sprintf("Safety cap of %d reached, stopping (%d deleted)", plan.SafetyCap, run.TotalDeleted),
				Terminal: true,
			})
			return false
		}

		if plan.SpamDetectionEnabled {
			s.annotateSpam(ctx, run, client, refs)
		}

		ids := make([]string, 0, len(refs))
		for _, ref := range refs {
			ids = append(ids, ref.ID)
		}

		err = client.BatchModifyLabels(ctx, ids, []string{models.LabelTrash}, nil)
		if err != nil {
			if ierrors.IsFatal(err) {
				return s.abort(run, err, emit)
			}
			// page-local failure: report and move on to the next page
			s.log.Warnf("trashing page of %d for %q failed: %v", len(ids), query, err)
			if !emit(models.ProgressEvent{
				Category: enum.EventError,
				Query:    query,
				Message:  fmt.Sprintf("Failed to delete a page of %d messages, continuing", len(ids)),
				Err:      err.Error(),
			}) {
				return false
			}
		} else {
			run.RecordBatch(query, ids)
			if !emit(models.ProgressEvent{
				Category: enum.EventPageProgress,
				Query:    query,
				Message:  fmt.Sprintf("Deleted %d emails...", run.TotalDeleted),
			}) {
				return false
			}
		}

		// deliberate rate-limit courtesy pause between batches
		if !s.pause(ctx) {
			return false
		}

		if next == "" {
			break
		}
		cursor = next
	}

	msg := fmt.Sprintf("%s: %d deleted", query, run.PerQueryDeleted[query])
	if plan.SpamDetectionEnabled {
		msg = fmt.Sprintf("%s (%d flagged as spam so far)", msg, run.SpamFlagged)
	}
	return emit(models.ProgressEvent{
		Category: enum.EventQueryComplete,
		Query:    query,
		Message:  msg,
	})
}

// restoreReadFromTrash moves read messages out of trash until none remain.
// No cap and no spam scoring here: restoring is inherently safe.
func (s *Service) restoreReadFromTrash(ctx context.Context, run *models.CleanupRun, client interfaces.MailboxClient, emit func(models.ProgressEvent) bool) bool {
	run.State = enum.RunRestoring
	if !emit(models.ProgressEvent{
		Category: enum.EventRestoreStart,
		Message:  "Restoring read emails from Trash...",
	}) {
		return false
	}

	for {
		// Always re-list from the first page: restored messages drop out of
		// the result set, so it shrinks until empty.
		refs, _, err := client.List(ctx, models.QueryReadInTrash, s.cfg.PageSize, "")
		if err != nil {
			if ierrors.IsFatal(err) {
				return s.abort(run, err, emit)
			}
			s.log.Warnf("listing trash for restore failed: %v", err)
			if !emit(models.ProgressEvent{
				Category: enum.EventError,
				Message:  "Could not list trash for restore, stopping restore phase",
				Err:      err.Error(),
			}) {
				return false
			}
			break
		}
		if len(refs) == 0 {
			break
		}

		ids := make([]string, 0, len(refs))
		for _, ref := range refs {
			ids = append(ids, ref.ID)
		}

		err = client.BatchModifyLabels(ctx, ids, []string{models.LabelInbox}, []string{models.LabelTrash})
		if err != nil {
			if ierrors.IsFatal(err) {
				return s.abort(run, err, emit)
			}
			// re-listing would return the same page again, so a failed
			// restore batch ends the phase instead of looping on it
			s.log.Warnf("restoring page of %d failed: %v", len(ids), err)
			if !emit(models.ProgressEvent{
				Category: enum.EventError,
				Message:  "Failed to restore a page from trash, stopping restore phase",
				Err:      err.Error(),
			}) {
				return false
			}
			break
		}

		run.Restored += len(ids)
		if !s.pause(ctx) {
			return false
		}
	}

	return emit(models.ProgressEvent{
		Category: enum.EventRestoreComplete,
		Message:  fmt.Sprintf("Restored %d read emails from Trash", run.Restored),
	})
}

// annotateSpam counts likely-spam messages in the page. Purely informational:
// metadata failures are skipped and nothing here influences deletion.
func (s *Service) annotateSpam(ctx context.Context, run *models.CleanupRun, client interfaces.MailboxClient, refs []models.MessageRef) {
	for _, ref := range refs {
		subject, from := ref.Subject, ref.From
		if subject == "" && from == "" {
			meta, err := client.GetMetadata(ctx, ref.ID, metadataHeaders)
			if err != nil {
				continue
			}
			subject, from = meta.Subject, meta.From
		}
		if isSpam, _, _ := s.spam.Score(subject, from); isSpam {
			run.SpamFlagged++
		}
	}
}

// abort ends the run on a fatal error with the single terminal error event.
func (s *Service) abort(run *models.CleanupRun, err error, emit func(models.ProgressEvent) bool) bool {
	run.State = enum.RunDone
	s.log.Errorf("cleanup run %s aborted: %v", run.ID, err)
	emit(models.ProgressEvent{
		Category: enum.EventError,
		Message:  "Cleanup aborted: " + err.Error(),
		Err:      err.Error(),
		Terminal: true,
	})
	return false
}

func (s *Service) pause(ctx context.Context) bool {
	if s.cfg.BatchPause <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-time.After(s.cfg.BatchPause):
		return true
	case <-ctx.Done():
		return false
	}
}

// recordUndo writes the run's deleted ids into the session's undo ledger,
// overwriting the previous entry. A run that deleted nothing leaves the
// ledger untouched.
func (s *Service) recordUndo(ctx context.Context, sessionKey string, run *models.CleanupRun) {
	if len(run.DeletedIDs) == 0 {
		return
	}

	entry := &models.UndoEntry{
		SessionKey: sessionKey,
		Timestamp:  time.Now().UTC(),
		EmailIDs:   run.DeletedIDs,
	}
	err := s.sessions.Update(ctx, sessionKey, func(sess *models.Session) {
		sess.LastRun = entry
	})
	if err != nil {
		s.log.Warnf("could not record undo ledger for session: %v", err)
	}
}
