package cleanup

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inboxsweep/inboxsweep/config"
	"github.com/inboxsweep/inboxsweep/interfaces"
	"github.com/inboxsweep/inboxsweep/internal/enum"
	ierrors "github.com/inboxsweep/inboxsweep/internal/errors"
	"github.com/inboxsweep/inboxsweep/internal/logger"
	"github.com/inboxsweep/inboxsweep/internal/models"
	"github.com/inboxsweep/inboxsweep/internal/session"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

// fakeMailbox serves canned pages per query and records every mutation. The
// read-in-trash query is backed by a live id list so restore passes observe a
// shrinking result set, like the real backend.
type fakeMailbox struct {
	mu sync.Mutex

	pages      map[string][][]models.MessageRef
	listErrs   map[string]error
	modifyHook func(ids, add, remove []string) error

	trashReadIDs []string
	trashed      []string
	restored     []string
}

func newFakeMailbox() *fakeMailbox {
	return &fakeMailbox{
		pages:    map[string][][]models.MessageRef{},
		listErrs: map[string]error{},
	}
}

func refs(ids ...string) []models.MessageRef {
	out := make([]models.MessageRef, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.MessageRef{ID: id, Subject: "hello", From: "sender@example.com"})
	}
	return out
}

func (f *fakeMailbox) List(ctx context.Context, query string, pageSize int64, cursor string) ([]models.MessageRef, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.listErrs[query]; err != nil {
		return nil, "", err
	}

	if query == models.QueryReadInTrash {
		n := len(f.trashReadIDs)
		if int64(n) > pageSize {
			n = int(pageSize)
		}
		return refs(f.trashReadIDs[:n]...), "", nil
	}

	pages := f.pages[query]
	idx := 0
	if cursor != "" {
		idx, _ = strconv.Atoi(cursor)
	}
	if idx >= len(pages) {
		return nil, "", nil
	}
	next := ""
	if idx+1 < len(pages) {
		next = strconv.Itoa(idx + 1)
	}
	return pages[idx], next, nil
}

func (f *fakeMailbox) BatchModifyLabels(ctx context.Context, ids []string, addLabels []string, removeLabels []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.modifyHook != nil {
		if err := f.modifyHook(ids, addLabels, removeLabels); err != nil {
			return err
		}
	}

	for _, label := range addLabels {
		switch label {
		case models.LabelTrash:
			f.trashed = append(f.trashed, ids...)
		case models.LabelInbox:
			f.restored = append(f.restored, ids...)
			f.dropFromTrash(ids)
		}
	}
	return nil
}

func (f *fakeMailbox) dropFromTrash(ids []string) {
	kept := f.trashReadIDs[:0]
	for _, id := range f.trashReadIDs {
		removed := false
		for _, gone := range ids {
			if id == gone {
				removed = true
				break
			}
		}
		if !removed {
			kept = append(kept, id)
		}
	}
	f.trashReadIDs = kept
}

func (f *fakeMailbox) GetMetadata(ctx context.Context, id string, headers []string) (models.MessageRef, error) {
	return models.MessageRef{ID: id, Subject: "hello", From: "sender@example.com"}, nil
}

var _ interfaces.MailboxClient = (*fakeMailbox)(nil)

// stubDetector flags nothing unless told otherwise.
type stubDetector struct {
	flagAll bool
}

func (d *stubDetector) Score(subject string, sender string) (bool, float64, string) {
	if d.flagAll {
		return true, 0.9, "stub"
	}
	return false, 0.1, "stub"
}

type engineFixture struct {
	svc   *Service
	store interfaces.SessionStore
	key   string
}

func newEngineFixture(t *testing.T, cfg *config.CleanupConfig) *engineFixture {
	t.Helper()

	store := session.NewInMemoryStore()
	key, err := store.Create(context.Background(), &models.Session{})
	require.NoError(t, err)

	return &engineFixture{
		svc:   NewCleanupService(cfg, getLogger(), store, &stubDetector{}),
		store: store,
		key:   key,
	}
}

func engineConfig() *config.CleanupConfig {
	return &config.CleanupConfig{
		SafetyCap:  2000,
		PageSize:   2,
		BatchPause: 0,
	}
}

func collect(t *testing.T, events <-chan models.ProgressEvent) []models.ProgressEvent {
	t.Helper()
	var out []models.ProgressEvent
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func terminalEvents(events []models.ProgressEvent) []models.ProgressEvent {
	var out []models.ProgressEvent
	for _, ev := range events {
		if ev.Terminal {
			out = append(out, ev)
		}
	}
	return out
}

func TestRun_DeletesMatchingEmails(t *testing.T) {
	// Arrange
	fx := newEngineFixture(t, engineConfig())
	mailbox := newFakeMailbox()
	mailbox.pages["is:unread"] = [][]models.MessageRef{
		refs("a", "b"),
		refs("c"),
	}
	plan := &models.CleanupPlan{Queries: []string{"is:unread"}, SafetyCap: 2000}

	// Act
	events, err := fx.svc.Run(context.Background(), fx.key, plan, mailbox)
	require.NoError(t, err)
	got := collect(t, events)

	// Assert
	assert.Equal(t, []string{"a", "b", "c"}, mailbox.trashed)

	terminals := terminalEvents(got)
	require.Len(t, terminals, 1)
	assert.Equal(t, enum.EventDone, terminals[0].Category)
	assert.Equal(t, 3, terminals[0].TotalDeleted)
	assert.Equal(t, enum.EventStart, got[0].Category)
	assert.Equal(t, terminals[0], got[len(got)-1])

	sess, err := fx.store.Get(context.Background(), fx.key)
	require.NoError(t, err)
	require.NotNil(t, sess.LastRun)
	assert.Equal(t, []string{"a", "b", "c"}, sess.LastRun.EmailIDs)
	assert.Equal(t, terminals[0].TotalDeleted, len(sess.LastRun.EmailIDs))
}

func TestRun_SafetyCapHaltsBeforeExceeding(t *testing.T) {
	// Arrange
	fx := newEngineFixture(t, engineConfig())
	mailbox := newFakeMailbox()
	mailbox.pages["is:unread"] = [][]models.MessageRef{
		refs("a", "b"),
		refs("c", "d"),
	}
	plan := &models.CleanupPlan{Queries: []string{"is:unread"}, SafetyCap: 3}

	// Act
	events, err := fx.svc.Run(context.Background(), fx.key, plan, mailbox)
	require.NoError(t, err)
	got := collect(t, events)

	// Assert
	terminals := terminalEvents(got)
	require.Len(t, terminals, 1)
	assert.Equal(t, enum.EventSafetyHalt, terminals[0].Category)
	assert.Equal(t, 2, terminals[0].TotalDeleted)
	assert.LessOrEqual(t, terminals[0].TotalDeleted, 3)
	assert.Equal(t, []string{"a", "b"}, mailbox.trashed)

	// the partial run is still undoable
	sess, err := fx.store.Get(context.Background(), fx.key)
	require.NoError(t, err)
	require.NotNil(t, sess.LastRun)
	assert.Equal(t, []string{"a", "b"}, sess.LastRun.EmailIDs)
}

func TestRun_NothingFound(t *testing.T) {
	// Arrange
	fx := newEngineFixture(t, engineConfig())
	mailbox := newFakeMailbox()
	plan := &models.CleanupPlan{Queries: []string{"is:unread"}, SafetyCap: 2000}

	// Act
	events, err := fx.svc.Run(context.Background(), fx.key, plan, mailbox)
	require.NoError(t, err)
	got := collect(t, events)

	// Assert
	terminals := terminalEvents(got)
	require.Len(t, terminals, 1)
	assert.Equal(t, enum.EventNothingFound, terminals[0].Category)
	assert.Zero(t, terminals[0].TotalDeleted)

	sess, err := fx.store.Get(context.Background(), fx.key)
	require.NoError(t, err)
	assert.Nil(t, sess.LastRun)
}

func TestRun_RestoresReadFromTrash(t *testing.T) {
	// Arrange
	fx := newEngineFixture(t, engineConfig())
	mailbox := newFakeMailbox()
	mailbox.trashReadIDs = []string{"x", "y", "z"}
	plan := &models.CleanupPlan{
		Queries:        []string{"is:unread"},
		RestoreEnabled: true,
		SafetyCap:      2000,
	}

	// Act
	events, err := fx.svc.Run(context.Background(), fx.key, plan, mailbox)
	require.NoError(t, err)
	got := collect(t, events)

	// Assert
	assert.Equal(t, []string{"x", "y", "z"}, mailbox.restored)
	assert.Empty(t, mailbox.trashReadIDs)

	var categories []enum.EventCategory
	for _, ev := range got {
		categories = append(categories, ev.Category)
	}
	assert.Contains(t, categories, enum.EventRestoreStart)
	assert.Contains(t, categories, enum.EventRestoreComplete)

	// restore events come before the terminal summary
	terminals := terminalEvents(got)
	require.Len(t, terminals, 1)
	assert.Equal(t, terminals[0], got[len(got)-1])
	assert.Equal(t, 3, terminals[0].Restored)
}

func TestRun_RestoreIsIdempotent(t *testing.T) {
	// Arrange
	fx := newEngineFixture(t, engineConfig())
	mailbox := newFakeMailbox()
	mailbox.trashReadIDs = []string{"x", "y"}
	plan := &models.CleanupPlan{
		Queries:        []string{"is:unread"},
		RestoreEnabled: true,
		SafetyCap:      2000,
	}

	// Act: two consecutive runs with nothing moved to trash in between
	events, err := fx.svc.Run(context.Background(), fx.key, plan, mailbox)
	require.NoError(t, err)
	first := collect(t, events)

	events, err = fx.svc.Run(context.Background(), fx.key, plan, mailbox)
	require.NoError(t, err)
	second := collect(t, events)

	// Assert
	firstTerminal := terminalEvents(first)
	require.Len(t, firstTerminal, 1)
	assert.Equal(t, 2, firstTerminal[0].Restored)

	secondTerminal := terminalEvents(second)
	require.Len(t, secondTerminal, 1)
	assert.Zero(t, secondTerminal[0].Restored)
}

func TestRun_PageFailureContinuesRun(t *testing.T) {
	// Arrange
	fx := newEngineFixture(t, engineConfig())
	mailbox := newFakeMailbox()
	mailbox.pages["is:unread"] = [][]models.MessageRef{
		refs("a", "b"),
		refs("c"),
	}
	failures := 0
	mailbox.modifyHook = func(ids, add, remove []string) error {
		if failures == 0 {
			failures++
			return ierrors.ErrRemoteCall
		}
		return nil
	}
	plan := &models.CleanupPlan{Queries: []string{"is:unread"}, SafetyCap: 2000}

	// Act
	events, err := fx.svc.Run(context.Background(), fx.key, plan, mailbox)
	require.NoError(t, err)
	got := collect(t, events)

	// Assert
	assert.Equal(t, []string{"c"}, mailbox.trashed)

	sawPageError := false
	for _, ev := range got {
		if ev.Category == enum.EventError && !ev.Terminal {
			sawPageError = true
		}
	}
	assert.True(t, sawPageError, "expected a non-terminal error event for the failed page")

	terminals := terminalEvents(got)
	require.Len(t, terminals, 1)
	assert.Equal(t, enum.EventDone, terminals[0].Category)
	assert.Equal(t, 1, terminals[0].TotalDeleted)
}

func TestRun_FatalAuthErrorAborts(t *testing.T) {
	// Arrange
	fx := newEngineFixture(t, engineConfig())
	mailbox := newFakeMailbox()
	mailbox.listErrs["is:unread"] = ierrors.ErrInvalidCredential
	plan := &models.CleanupPlan{Queries: []string{"is:unread"}, SafetyCap: 2000}

	// Act
	events, err := fx.svc.Run(context.Background(), fx.key, plan, mailbox)
	require.NoError(t, err)
	got := collect(t, events)

	// Assert
	terminals := terminalEvents(got)
	require.Len(t, terminals, 1)
	assert.Equal(t, enum.EventError, terminals[0].Category)
	assert.Empty(t, mailbox.trashed)
}

func TestRun_TransientListErrorSkipsQuery(t *testing.T) {
	// Arrange
	fx := newEngineFixture(t, engineConfig())
	mailbox := newFakeMailbox()
	mailbox.listErrs["is:unread category:promotions"] = ierrors.ErrRemoteCall
	mailbox.pages["is:unread"] = [][]models.MessageRef{refs("a")}
	plan := &models.CleanupPlan{
		Queries:   []string{"is:unread category:promotions", "is:unread"},
		SafetyCap: 2000,
	}

	// Act
	events, err := fx.svc.Run(context.Background(), fx.key, plan, mailbox)
	require.NoError(t, err)
	got := collect(t, events)

	// Assert
	assert.Equal(t, []string{"a"}, mailbox.trashed)

	terminals := terminalEvents(got)
	require.Len(t, terminals, 1)
	assert.Equal(t, enum.EventDone, terminals[0].Category)
	assert.Equal(t, 1, terminals[0].TotalDeleted)
}

func TestRun_SecondConcurrentRunRefused(t *testing.T) {
	// Arrange
	fx := newEngineFixture(t, engineConfig())
	mailbox := newFakeMailbox()
	plan := &models.CleanupPlan{Queries: []string{"is:unread"}, SafetyCap: 2000}

	ctx, cancel := context.WithCancel(context.Background())
	events, err := fx.svc.Run(ctx, fx.key, plan, mailbox)
	require.NoError(t, err)

	// Act: the first run has not been drained, so it is still active
	_, err = fx.svc.Run(context.Background(), fx.key, plan, mailbox)

	// Assert
	assert.ErrorIs(t, err, ierrors.ErrRunInProgress)

	cancel()
	collect(t, events)
}

func TestRun_CancellationReleasesSession(t *testing.T) {
	// Arrange
	fx := newEngineFixture(t, engineConfig())
	mailbox := newFakeMailbox()
	mailbox.pages["is:unread"] = [][]models.MessageRef{refs("a", "b"), refs("c", "d")}
	plan := &models.CleanupPlan{Queries: []string{"is:unread"}, SafetyCap: 2000}

	ctx, cancel := context.WithCancel(context.Background())
	events, err := fx.svc.Run(ctx, fx.key, plan, mailbox)
	require.NoError(t, err)

	// Act: take the first event, then walk away
	first := <-events
	cancel()
	collect(t, events)

	// Assert
	assert.Equal(t, enum.EventStart, first.Category)

	// the slot is released, a new run is accepted
	again, err := fx.svc.Run(context.Background(), fx.key, plan, mailbox)
	require.NoError(t, err)
	collect(t, again)
}

func TestRun_SpamAnnotationCountsFlagged(t *testing.T) {
	// Arrange
	store := session.NewInMemoryStore()
	key, err := store.Create(context.Background(), &models.Session{})
	require.NoError(t, err)
	svc := NewCleanupService(engineConfig(), getLogger(), store, &stubDetector{flagAll: true})

	mailbox := newFakeMailbox()
	mailbox.pages["is:unread"] = [][]models.MessageRef{refs("a", "b")}
	plan := &models.CleanupPlan{
		Queries:              []string{"is:unread"},
		SpamDetectionEnabled: true,
		SafetyCap:            2000,
	}

	// Act
	events, err := svc.Run(context.Background(), key, plan, mailbox)
	require.NoError(t, err)
	got := collect(t, events)

	// Assert
	terminals := terminalEvents(got)
	require.Len(t, terminals, 1)
	assert.Equal(t, 2, terminals[0].SpamFlagged)
	assert.Contains(t, terminals[0].Message, "likely spam")
}

func TestRun_NilPlanFallsBackToUnread(t *testing.T) {
	// Arrange
	fx := newEngineFixture(t, engineConfig())
	mailbox := newFakeMailbox()
	mailbox.pages["is:unread"] = [][]models.MessageRef{refs("a")}

	// Act
	events, err := fx.svc.Run(context.Background(), fx.key, nil, mailbox)
	require.NoError(t, err)
	got := collect(t, events)

	// Assert
	assert.Equal(t, []string{"a"}, mailbox.trashed)
	terminals := terminalEvents(got)
	require.Len(t, terminals, 1)
	assert.Equal(t, enum.EventDone, terminals[0].Category)
}
