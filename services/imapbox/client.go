package imapbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/pkg/errors"

	"github.com/inboxsweep/inboxsweep/config"
	"github.com/inboxsweep/inboxsweep/interfaces"
	ierrors "github.com/inboxsweep/inboxsweep/internal/errors"
	"github.com/inboxsweep/inboxsweep/internal/logger"
	"github.com/inboxsweep/inboxsweep/internal/models"
	"github.com/inboxsweep/inboxsweep/internal/utils"
)

// Client implements interfaces.MailboxClient against a plain IMAP server, so
// the cleanup engine can run outside Gmail. Message identifiers are encoded
// as "<folder>/<uid>" because IMAP UIDs are only unique per folder.
//
// "Add TRASH" is rendered as copy-to-trash + \Deleted + expunge; "remove
// TRASH, add INBOX" as the reverse. Other label combinations are rejected.
type Client struct {
	cfg *config.IMAPConfig
	log logger.Logger

	mu   sync.Mutex
	conn *client.Client
}

func NewClient(cfg *config.IMAPConfig, log logger.Logger) *Client {
	return &Client{cfg: cfg, log: log}
}

var _ interfaces.MailboxClient = (*Client)(nil)

func (c *Client) List(ctx context.Context, query string, pageSize int64, cursor string) ([]models.MessageRef, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.connect()
	if err != nil {
		return nil, "", err
	}

	spec := parseQuery(query, c.cfg.TrashFolder, time.Now())
	if _, err := conn.Select(spec.folder, true); err != nil {
		return nil, "", errors.Wrapf(ierrors.ErrRemoteCall, "selecting %s: %v", spec.folder, err)
	}

	uids, err := conn.UidSearch(spec.criteria)
	if err != nil {
		return nil, "", errors.Wrapf(ierrors.ErrRemoteCall, "searching %s: %v", spec.folder, err)
	}

	offset := 0
	if cursor != "" {
		offset, err = strconv.Atoi(cursor)
		if err != nil || offset < 0 {
			return nil, "", errors.Wrapf(ierrors.ErrRemoteCall, "bad cursor %q", cursor)
		}
	}
	if offset >= len(uids) {
		return nil, "", nil
	}

	end := offset + int(pageSize)
	if end > len(uids) {
		end = len(uids)
	}

	refs := make([]models.MessageRef, 0, end-offset)
	for _, uid := range uids[offset:end] {
		refs = append(refs, models.MessageRef{ID: encodeID(spec.folder, uid)})
	}

	next := ""
	if end < len(uids) {
		next = strconv.Itoa(end)
	}
	return refs, next, nil
}

func (c *Client) BatchModifyLabels(ctx context.Context, ids []string, addLabels []string, removeLabels []string) error {
	if len(ids) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.connect()
	if err != nil {
		return err
	}

	byFolder, err := groupByFolder(ids)
	if err != nil {
		return err
	}

	switch {
	case utils.IsStringInSlice(models.LabelTrash, addLabels):
		return c.move(conn, byFolder, c.cfg.TrashFolder)
	case utils.IsStringInSlice(models.LabelInbox, addLabels) && utils.IsStringInSlice(models.LabelTrash, removeLabels):
		return c.move(conn, byFolder, "INBOX")
	default:
		return errors.Wrapf(ierrors.ErrRemoteCall,
			"unsupported label change add=%v remove=%v", addLabels, removeLabels)
	}
}

func (c *Client) GetMetadata(ctx context.Context, id string, headers []string) (models.MessageRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.connect()
	if err != nil {
		return models.MessageRef{}, err
	}

	folder, uid, err := decodeID(id)
	if err != nil {
		return models.MessageRef{}, err
	}

	if _, err := conn.Select(folder, true); err != nil {
		return models.MessageRef{}, errors.Wrapf(ierrors.ErrRemoteCall, "selecting %s: %v", folder, err)
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)

	messages := make(chan *imap.Message, 1)
	if err := conn.UidFetch(seqset, []imap.FetchItem{imap.FetchEnvelope}, messages); err != nil {
		return models.MessageRef{}, errors.Wrapf(ierrors.ErrRemoteCall, "fetching envelope: %v", err)
	}

	msg := <-messages
	if msg == nil || msg.Envelope == nil {
		return models.MessageRef{}, errors.Wrapf(ierrors.ErrRemoteCall, "no envelope for %s", id)
	}

	ref := models.MessageRef{
		ID:      id,
		Subject: msg.Envelope.Subject,
		From:    formatAddresses(msg.Envelope.From),
	}
	if !msg.Envelope.Date.IsZero() {
		ref.Date = msg.Envelope.Date.Format(time.RFC1123Z)
	}
	return ref, nil
}

// move copies the grouped uids into dest and expunges them from their source
// folders. Each source folder is one copy+store+expunge round.
func (c *Client) move(conn *client.Client, byFolder map[string][]uint32, dest string) error {
	for folder, uids := range byFolder {
		if folder == dest {
			continue
		}

		if _, err := conn.Select(folder, false); err != nil {
			return errors.Wrapf(ierrors.ErrRemoteCall, "selecting %s: %v", folder, err)
		}

		seqset := new(imap.SeqSet)
		seqset.AddNum(uids...)

		if err := conn.UidCopy(seqset, dest); err != nil {
			return errors.Wrapf(ierrors.ErrRemoteCall, "copying to %s: %v", dest, err)
		}

		item := imap.FormatFlagsOp(imap.AddFlags, true)
		if err := conn.UidStore(seqset, item, []interface{}{imap.DeletedFlag}, nil); err != nil {
			return errors.Wrapf(ierrors.ErrRemoteCall, "flagging deleted in %s: %v", folder, err)
		}
		if err := conn.Expunge(nil); err != nil {
			return errors.Wrapf(ierrors.ErrRemoteCall, "expunging %s: %v", folder, err)
		}
	}
	return nil
}

func (c *Client) connect() (*client.Client, error) {
	if c.conn != nil {
		return c.conn, nil
	}

	host, _, err := net.SplitHostPort(c.cfg.Server)
	if err != nil {
		return nil, errors.Wrapf(ierrors.ErrRemoteCall, "bad imap server address %q", c.cfg.Server)
	}

	conn, err := client.DialTLS(c.cfg.Server, &tls.Config{ServerName: host})
	if err != nil {
		return nil, errors.Wrapf(ierrors.ErrRemoteCall, "dialing %s: %v", c.cfg.Server, err)
	}

	if err := conn.Login(c.cfg.Username, c.cfg.Password); err != nil {
		conn.Logout()
		return nil, errors.Wrapf(ierrors.ErrInvalidCredential, "imap login as %s: %v", c.cfg.Username, err)
	}

	c.log.Infof("connected to imap server %s as %s", c.cfg.Server, c.cfg.Username)
	c.conn = conn
	return conn, nil
}

// Close logs out the underlying connection if one was established.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Logout()
	c.conn = nil
	return err
}

func encodeID(folder string, uid uint32) string {
	return fmt.Sprintf("%s/%d", folder, uid)
}

func decodeID(id string) (string, uint32, error) {
	idx := strings.LastIndex(id, "/")
	if idx <= 0 {
		return "", 0, errors.Wrapf(ierrors.ErrRemoteCall, "malformed message id %q", id)
	}
	uid, err := strconv.ParseUint(id[idx+1:], 10, 32)
	if err != nil {
		return "", 0, errors.Wrapf(ierrors.ErrRemoteCall, "malformed message id %q", id)
	}
	return id[:idx], uint32(uid), nil
}

func groupByFolder(ids []string) (map[string][]uint32, error) {
	byFolder := map[string][]uint32{}
	for _, id := range ids {
		folder, uid, err := decodeID(id)
		if err != nil {
			return nil, err
		}
		byFolder[folder] = append(byFolder[folder], uid)
	}
	return byFolder, nil
}

func formatAddresses(addrs []*imap.Address) string {
	if len(addrs) == 0 {
		return ""
	}
	a := addrs[0]
	if a.PersonalName != "" {
		return fmt.Sprintf("%s <%s@%s>", a.PersonalName, a.MailboxName, a.HostName)
	}
	return a.MailboxName + "@" + a.HostName
}
