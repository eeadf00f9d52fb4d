package cleanup

import (
	"context"
	"fmt"

	"github.com/inboxsweep/inboxsweep/interfaces"
	"github.com/inboxsweep/inboxsweep/internal/models"
	"github.com/inboxsweep/inboxsweep/internal/tracing"
)

// RestoreLast reverses the most recent run recorded in the session's undo
// ledger. Each identifier gets its own reverse mutation so one bad id cannot
// void the whole restore; failures are logged and skipped. The ledger entry
// is consumed, so a second call with no new run finds nothing to restore.
func (s *Service) RestoreLast(ctx context.Context, sessionKey string, client interfaces.MailboxClient) (int, string, error) {
	span, ctx := tracing.StartTracerSpan(ctx, "CleanupService.RestoreLast")
	defer span.Finish()
	tracing.TagComponentService(span)
	tracing.TagSessionKey(span, sessionKey)

	sess, err := s.sessions.Get(ctx, sessionKey)
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, "", err
	}

	if sess.LastRun == nil || len(sess.LastRun.EmailIDs) == 0 {
		return 0, "nothing to restore", nil
	}

	restored := 0
	for _, id := range sess.LastRun.EmailIDs {
		err := client.BatchModifyLabels(ctx, []string{id},
			[]string{models.LabelInbox}, []string{models.LabelTrash})
		if err != nil {
			s.log.Warnf("restoring message %s failed, skipping: %v", id, err)
			continue
		}
		restored++
	}

	// Consume the ledger regardless of per-id failures: the failed ids are
	// in an unknown remote state and retrying them blind is worse than
	// reporting the honest count.
	err = s.sessions.Update(ctx, sessionKey, func(se *models.Session) {
		se.LastRun = nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		s.log.Warnf("could not clear undo ledger: %v", err)
	}

	return restored, fmt.Sprintf("restored %d emails", restored), nil
}
