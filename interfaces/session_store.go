package interfaces

import (
	"context"
	"time"

	"github.com/inboxsweep/inboxsweep/internal/models"
)

// SessionStore holds per-user interaction state keyed by an opaque token.
// Implementations must be safe for concurrent use.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) (string, error)
	Get(ctx context.Context, key string) (*models.Session, error)

	// Update applies fn to the stored session under the store's lock.
	Update(ctx context.Context, key string, fn func(*models.Session)) error
	Delete(ctx context.Context, key string) error

	// DeleteExpired removes sessions created before the given cutoff and
	// returns how many were dropped.
	DeleteExpired(ctx context.Context, olderThan time.Time) int
}
