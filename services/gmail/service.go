package gmail

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/inboxsweep/inboxsweep/interfaces"
	ierrors "github.com/inboxsweep/inboxsweep/internal/errors"
	"github.com/inboxsweep/inboxsweep/internal/models"
)

const gmailUser = "me"

// mailboxClient implements interfaces.MailboxClient on the Gmail REST API.
// It does not retry; transient failures bubble up for the engine to decide.
type mailboxClient struct {
	svc *gmailv1.Service
}

func NewMailboxClient(ctx context.Context, tokenSource oauth2.TokenSource) (interfaces.MailboxClient, error) {
	svc, err := gmailv1.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, errors.Wrap(err, "building gmail service")
	}
	return &mailboxClient{svc: svc}, nil
}

func (c *mailboxClient) List(ctx context.Context, query string, pageSize int64, cursor string) ([]models.MessageRef, string, error) {
	call := c.svc.Users.Messages.List(gmailUser).
		Q(query).
		MaxResults(pageSize).
		Context(ctx)
	if cursor != "" {
		call = call.PageToken(cursor)
	}

	res, err := call.Do()
	if err != nil {
		return nil, "", classifyError(err, "listing messages")
	}

	refs := make([]models.MessageRef, 0, len(res.Messages))
	for _, m := range res.Messages {
		refs = append(refs, models.MessageRef{ID: m.Id})
	}
	return refs, res.NextPageToken, nil
}

func (c *mailboxClient) BatchModifyLabels(ctx context.Context, ids []string, addLabels []string, removeLabels []string) error {
	if len(ids) == 0 {
		return nil
	}

	err := c.svc.Users.Messages.BatchModify(gmailUser, &gmailv1.BatchModifyMessagesRequest{
		Ids:            ids,
		AddLabelIds:    addLabels,
		RemoveLabelIds: removeLabels,
	}).Context(ctx).Do()
	if err != nil {
		return classifyError(err, "batch modifying labels")
	}
	return nil
}

func (c *mailboxClient) GetMetadata(ctx context.Context, id string, headers []string) (models.MessageRef, error) {
	call := c.svc.Users.Messages.Get(gmailUser, id).
		Format("metadata").
		Context(ctx)
	if len(headers) > 0 {
		call = call.MetadataHeaders(headers...)
	}

	msg, err := call.Do()
	if err != nil {
		return models.MessageRef{}, classifyError(err, "fetching message metadata")
	}

	ref := models.MessageRef{ID: msg.Id}
	if msg.Payload == nil {
		return ref, nil
	}
	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "subject":
			ref.Subject = h.Value
		case "from":
			ref.From = h.Value
		case "date":
			ref.Date = h.Value
		}
	}
	return ref, nil
}

// classifyError folds Gmail API failures into the run error taxonomy:
// 401/403 are credential problems and fatal, everything else is a transient
// remote-call failure recovered at page granularity.
func classifyError(err error, op string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == 401 || apiErr.Code == 403 {
			return errors.Wrapf(ierrors.ErrInvalidCredential, "%s: %v", op, err)
		}
	}
	return errors.Wrapf(ierrors.ErrRemoteCall, "%s: %v", op, err)
}
