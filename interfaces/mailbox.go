package interfaces

import (
	"context"

	"github.com/inboxsweep/inboxsweep/internal/models"
)

// MailboxClient is the abstract contract the cleanup engine drives. All calls
// are remote and may fail transiently; implementations surface errors as-is
// and never retry silently - retry/skip/abort policy belongs to the caller.
type MailboxClient interface {
	// List returns up to pageSize message references matching query, starting
	// at cursor (empty for the first page), plus the next cursor. An empty
	// next cursor means the query is exhausted.
	List(ctx context.Context, query string, pageSize int64, cursor string) ([]models.MessageRef, string, error)

	// BatchModifyLabels applies label additions/removals to all ids in one
	// call. Implementations treat partial application as failure.
	BatchModifyLabels(ctx context.Context, ids []string, addLabels []string, removeLabels []string) error

	// GetMetadata fetches the named headers for one message. Used by the
	// preview and spam-annotation paths only.
	GetMetadata(ctx context.Context, id string, headers []string) (models.MessageRef, error)
}
