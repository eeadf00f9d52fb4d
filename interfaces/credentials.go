package interfaces

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/inboxsweep/inboxsweep/internal/models"
)

// CredentialProvider wraps the OAuth2 handshake with the identity provider.
type CredentialProvider interface {
	// AuthorizationURL returns the consent URL plus the anti-forgery state
	// to persist on the session.
	AuthorizationURL() (url string, state string)

	// Exchange trades an authorization code for a token.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// ClientFor builds a MailboxClient from the session's stored token,
	// refreshing it when expired. Returns errors.ErrMissingCredential /
	// ErrInvalidCredential when no usable credential exists.
	ClientFor(ctx context.Context, session *models.Session) (MailboxClient, error)
}
