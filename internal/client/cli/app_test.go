package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/config"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/models"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/preview"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/remote"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/session"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/store"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/common"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/events"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/logging"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeRemote is an in-memory backend standing in for the HTTP client.
// With offline set, every document call fails the way the HTTP client
// does when the server cannot be reached.
type fakeRemote struct {
	mu       sync.Mutex
	sessions map[string]string
	blobs    map[string][]byte
	fetched  []string
	offline  bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{sessions: map[string]string{}, blobs: map[string][]byte{}}
}

func (f *fakeRemote) Close() error { return nil }

func (f *fakeRemote) Login(_ context.Context, email string, _ []byte) (*remote.LoginResult, error) {
	return &remote.LoginResult{
		User:        &models.User{ID: "u1", Email: email},
		SessionID:   "s1",
		AccessToken: "t1",
	}, nil
}

func (f *fakeRemote) GetSession(_ context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[userID], nil
}

func (f *fakeRemote) UpdateSession(_ context.Context, userID, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[userID] = sessionID
	return nil
}

func (f *fakeRemote) ListDocuments(context.Context) ([]*models.Document, error) { return nil, nil }

func (f *fakeRemote) GetDocument(context.Context, string) (*models.Document, error) {
	if f.offline {
		return nil, remote.ErrUnavailable
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRemote) CreateDocument(_ context.Context, d *models.Document) (*models.Document, error) {
	if f.offline {
		return nil, remote.ErrUnavailable
	}
	return d, nil
}

func (f *fakeRemote) UploadDocument(context.Context, remote.UploadRequest) (*models.Document, error) {
	return nil, remote.ErrUnavailable
}

func (f *fakeRemote) DeleteDocument(context.Context, string) error { return nil }

func (f *fakeRemote) FetchBlob(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, url)
	return f.blobs[url], nil
}

func (f *fakeRemote) ListRooms(context.Context) ([]*models.Room, error)       { return nil, nil }
func (f *fakeRemote) ListMeetings(context.Context) ([]*models.Meeting, error) { return nil, nil }

func newTestApp(t *testing.T, rc remote.Client) *App {
	t.Helper()
	ctx := context.Background()
	logger := testLogger()

	st, err := store.InitDatabase(ctx, "file:"+t.Name()+"?mode=memory&cache=shared", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cfg := &config.Config{
		ServerURL:           "http://127.0.0.1:0",
		RequestTimeout:      time.Second,
		SessionPollInterval: 50 * time.Millisecond,
		DevicePixelRatio:    1.0,
	}

	a := &App{
		config:   cfg,
		logger:   logger,
		store:    st,
		remote:   rc,
		resolver: preview.NewResolver(st.Blobs, logger),
		cacher:   preview.NewCacher(st.Blobs, rc, logger),
		docs:     preview.NewManager(st.Blobs, rc, logger),
		reader:   bufio.NewReader(strings.NewReader("\n")),
		kicked:   make(chan session.LogoutReason, 1),
	}
	a.guard = session.NewGuard(st.KV, rc, cfg.SessionPollInterval, func(r session.LogoutReason) {
		select {
		case a.kicked <- r:
		default:
		}
	}, logger)
	return a
}

func TestRouteEvent_UserUpdateTriggersSessionCheck(t *testing.T) {
	ctx := context.Background()
	rc := newFakeRemote()
	a := newTestApp(t, rc)

	_, err := a.guard.Activate(ctx, "u1", "kim@example.com")
	require.NoError(t, err)
	a.stopGuard = a.guard.Start(ctx)
	defer a.detach()

	// Another device overwrote the session mark; the push arrives.
	rc.mu.Lock()
	rc.sessions["u1"] = "rival"
	rc.mu.Unlock()
	a.routeEvent(ctx, events.Event{Kind: events.KindUserUpdated})

	require.Eventually(t, func() bool {
		return a.guard.State() == session.StateInvalidatedPendingAck
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, a.isLoggedIn())
}

func TestRouteEvent_DocumentCreatedWarmsCache(t *testing.T) {
	ctx := context.Background()
	rc := newFakeRemote()
	rc.blobs["http://files.example.com/d1.pdf"] = []byte("%PDF bytes")
	a := newTestApp(t, rc)

	body, err := json.Marshal(models.Document{
		ID: "d1", Name: "d1.pdf", Type: models.DocTypePDF,
		URL: "http://files.example.com/d1.pdf",
	})
	require.NoError(t, err)
	a.routeEvent(ctx, events.Event{Kind: events.KindDocumentCreated, Body: body})
	a.cacher.Drain()

	blob, ok := a.store.Blobs.Get(ctx, "d1")
	require.True(t, ok)
	assert.Equal(t, []byte("%PDF bytes"), blob.Content)
}

func TestPreviewOffline_UsesCachedBlob(t *testing.T) {
	ctx := context.Background()
	rc := newFakeRemote()
	rc.offline = true
	a := newTestApp(t, rc)

	_, err := a.guard.Activate(ctx, "u1", "kim@example.com")
	require.NoError(t, err)

	// Upload with the server down: blob cached, transient reference kept.
	doc, warn := a.docs.Upload(ctx, "minutes.doc", []byte("Meeting minutes approved by the council."))
	require.NotNil(t, doc)
	require.Error(t, warn)
	require.True(t, a.store.Blobs.Has(ctx, doc.ID))

	// Preview of the same document must not need the server.
	p, err := a.resolvePreview(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, preview.TierLocalLegacy, p.Tier)
	assert.Contains(t, p.HTML, "Meeting minutes")
}

func TestPreviewOffline_UncachedDocumentStillFails(t *testing.T) {
	ctx := context.Background()
	rc := newFakeRemote()
	rc.offline = true
	a := newTestApp(t, rc)

	_, err := a.resolvePreview(ctx, "nowhere")
	require.ErrorIs(t, err, remote.ErrUnavailable)
}

func TestHandlePendingKick(t *testing.T) {
	ctx := context.Background()
	rc := newFakeRemote()
	a := newTestApp(t, rc)

	_, err := a.guard.Activate(ctx, "u1", "kim@example.com")
	require.NoError(t, err)

	rc.mu.Lock()
	rc.sessions["u1"] = "rival"
	rc.mu.Unlock()
	a.guard.CheckOnce(ctx)
	require.Equal(t, session.StateInvalidatedPendingAck, a.guard.State())

	// One queued kick, acknowledged by the Enter preloaded in the reader.
	assert.True(t, a.handlePendingKick())
	assert.Equal(t, session.StateUnauthenticated, a.guard.State())
	assert.False(t, a.handlePendingKick())
}

func TestShowLogin(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, newFakeRemote())

	assert.Equal(t, "guest", a.showLogin())

	_, err := a.guard.Activate(ctx, "u1", "kim@example.com")
	require.NoError(t, err)
	assert.Equal(t, "kim@example.com", a.showLogin())
}
