package gmail

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailv1 "google.golang.org/api/gmail/v1"

	"github.com/inboxsweep/inboxsweep/config"
	"github.com/inboxsweep/inboxsweep/interfaces"
	ierrors "github.com/inboxsweep/inboxsweep/internal/errors"
	"github.com/inboxsweep/inboxsweep/internal/models"
	"github.com/inboxsweep/inboxsweep/internal/utils"
)

// credentialProvider drives the Google OAuth2 code flow and turns stored
// tokens into mailbox clients, refreshing through the token source.
type credentialProvider struct {
	oauth *oauth2.Config
}

func NewCredentialProvider(cfg *config.GoogleOAuthConfig) interfaces.CredentialProvider {
	return &credentialProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{gmailv1.GmailModifyScope},
			Endpoint:     google.Endpoint,
		},
	}
}

func (p *credentialProvider) AuthorizationURL() (string, string) {
	state, err := utils.NewSessionKey()
	if err != nil {
		// nanoid only fails when the OS entropy source does; at that point
		// the process cannot mint any secret.
		panic(errors.Wrap(err, "generating oauth state"))
	}

	url := p.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	return url, state
}

func (p *credentialProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrapf(ierrors.ErrInvalidCredential, "exchanging authorization code: %v", err)
	}
	return token, nil
}

func (p *credentialProvider) ClientFor(ctx context.Context, session *models.Session) (interfaces.MailboxClient, error) {
	if session == nil || session.Token == nil {
		return nil, ierrors.ErrMissingCredential
	}
	if !session.Token.Valid() && session.Token.RefreshToken == "" {
		return nil, errors.Wrap(ierrors.ErrInvalidCredential, "token expired without refresh token")
	}

	return NewMailboxClient(ctx, p.oauth.TokenSource(ctx, session.Token))
}
