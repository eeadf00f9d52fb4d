package services

import (
	"context"

	"github.com/inboxsweep/inboxsweep/config"
	"github.com/inboxsweep/inboxsweep/interfaces"
	"github.com/inboxsweep/inboxsweep/internal/logger"
	"github.com/inboxsweep/inboxsweep/internal/models"
	"github.com/inboxsweep/inboxsweep/internal/session"
	"github.com/inboxsweep/inboxsweep/services/cleanup"
	"github.com/inboxsweep/inboxsweep/services/gmail"
	"github.com/inboxsweep/inboxsweep/services/imapbox"
	"github.com/inboxsweep/inboxsweep/services/spam"
)

type Services struct {
	SessionStore       interfaces.SessionStore
	CredentialProvider interfaces.CredentialProvider
	SpamDetector       interfaces.SpamDetector
	CleanupService     interfaces.CleanupService

	// IMAPClient is set when the IMAP backend is configured; it then replaces
	// the per-session Gmail client for all mailbox operations.
	IMAPClient *imapbox.Client

	imapEnabled bool
}

func InitServices(cfg *config.Config, log logger.Logger) *Services {
	store := session.NewInMemoryStore()
	spamDetector := spam.NewBayesianDetector()

	services := &Services{
		SessionStore:       store,
		CredentialProvider: gmail.NewCredentialProvider(cfg.GoogleOAuthConfig),
		SpamDetector:       spamDetector,
		CleanupService:     cleanup.NewCleanupService(cfg.CleanupConfig, log, store, spamDetector),
		imapEnabled:        cfg.IMAPConfig.Enabled,
	}

	if cfg.IMAPConfig.Enabled {
		services.IMAPClient = imapbox.NewClient(cfg.IMAPConfig, log)
	}

	return services
}

// MailboxClientFor resolves the mailbox backend for a session: the shared
// IMAP client when that backend is enabled, otherwise a Gmail client built
// from the session's OAuth token.
func (s *Services) MailboxClientFor(ctx context.Context, sess *models.Session) (interfaces.MailboxClient, error) {
	if s.imapEnabled {
		return s.IMAPClient, nil
	}
	return s.CredentialProvider.ClientFor(ctx, sess)
}

// AuthRequired reports whether sessions need the OAuth handshake before a
// cleanup can start.
func (s *Services) AuthRequired() bool {
	return !s.imapEnabled
}
