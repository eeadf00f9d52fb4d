package interfaces

import (
	"context"

	"github.com/inboxsweep/inboxsweep/internal/models"
)

// CleanupService runs the bulk-cleanup state machine and the undo path.
type CleanupService interface {
	// Run starts a single-shot cleanup for the session and returns the lazy
	// progress stream. The channel is unbuffered: the engine suspends until
	// the consumer pulls the next event, and stops issuing remote calls once
	// ctx is cancelled. Returns errors.ErrRunInProgress if the session
	// already has an active run.
	Run(ctx context.Context, sessionKey string, plan *models.CleanupPlan, client MailboxClient) (<-chan models.ProgressEvent, error)

	// RestoreLast reverses the most recent run's deletions. Restoring with
	// an empty ledger is not an error; restoredCount is 0 and message says
	// there was nothing to restore.
	RestoreLast(ctx context.Context, sessionKey string, client MailboxClient) (restoredCount int, message string, err error)
}
