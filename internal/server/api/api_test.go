package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/common"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/cryptox"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/dbx"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/logging"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/auth"
	sc "github.com/nthieuit88-gif/ecabitnetv7/internal/server/config"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/hub"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/models"
	documentsrepo "github.com/nthieuit88-gif/ecabitnetv7/internal/server/repositories/documents"
	meetingsrepo "github.com/nthieuit88-gif/ecabitnetv7/internal/server/repositories/meetings"
	roomsrepo "github.com/nthieuit88-gif/ecabitnetv7/internal/server/repositories/rooms"
	usersrepo "github.com/nthieuit88-gif/ecabitnetv7/internal/server/repositories/users"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/services"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/storage"
)

// --- fakes ---

type fakeUsers struct {
	byEmail   map[string]*models.User
	byID      map[string]*models.User
	sessions  map[string]string
	createErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		byEmail:  map[string]*models.User{},
		byID:     map[string]*models.User{},
		sessions: map[string]string{},
	}
}

func (f *fakeUsers) add(u *models.User) {
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
}

func (f *fakeUsers) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.add(u)
	return u, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsers) List(ctx context.Context) ([]*models.User, error) {
	out := make([]*models.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) Update(ctx context.Context, u *models.User) error { return nil }
func (f *fakeUsers) Delete(ctx context.Context, id string) error      { return nil }

func (f *fakeUsers) GetCurrentSession(ctx context.Context, id string) (string, error) {
	if _, ok := f.byID[id]; !ok {
		return "", common.ErrorNotFound
	}
	return f.sessions[id], nil
}

func (f *fakeUsers) SetCurrentSession(ctx context.Context, id string, sessionID string) error {
	f.sessions[id] = sessionID
	return nil
}

type fakeDocs struct {
	byID map[string]*models.Document
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{byID: map[string]*models.Document{}}
}

func (f *fakeDocs) Create(ctx context.Context, doc *models.Document) error {
	f.byID[doc.ID] = doc
	return nil
}

func (f *fakeDocs) GetByID(ctx context.Context, id string) (*models.Document, error) {
	doc, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return doc, nil
}

func (f *fakeDocs) List(ctx context.Context) ([]*models.Document, error) {
	out := make([]*models.Document, 0, len(f.byID))
	for _, d := range f.byID {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDocs) Update(ctx context.Context, doc *models.Document) error {
	if _, ok := f.byID[doc.ID]; !ok {
		return common.ErrorNotFound
	}
	f.byID[doc.ID] = doc
	return nil
}

func (f *fakeDocs) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeRepos struct {
	u *fakeUsers
	d *fakeDocs
}

func (m *fakeRepos) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepos) Users(dbx.DBTX) usersrepo.Repository             { return m.u }
func (m *fakeRepos) Documents(dbx.DBTX) documentsrepo.Repository     { return m.d }
func (m *fakeRepos) Rooms(dbx.DBTX) roomsrepo.Repository             { return nil }
func (m *fakeRepos) Meetings(dbx.DBTX) meetingsrepo.Repository       { return nil }

// --- test wiring ---

type testEnv struct {
	router *gin.Engine
	users  *fakeUsers
	docs   *fakeDocs
	cfg    *sc.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &sc.Config{
		SecretKey:                   "test-secret",
		AccessTokenValidityDuration: time.Hour,
		MaxUploadSize:               1 << 20,
		S3BaseEndpoint:              "http://127.0.0.1:9000/",
		S3Bucket:                    "documents",
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	h := hub.New()

	fu := newFakeUsers()
	fd := newFakeDocs()
	rm := &fakeRepos{u: fu, d: fd}

	us := services.NewUserService(db, rm, h, cfg, logger)
	ds := services.NewDocumentService(db, rm, storage.NewBlobStore(cfg), h, cfg, logger)
	ss := services.NewScheduleService(db, rm, h, logger)

	a := New(us, ds, ss, h, cfg, logger)
	return &testEnv{router: a.Router(), users: fu, docs: fd, cfg: cfg}
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.GenerateToken(userID, []byte(e.cfg.SecretKey), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func addAccount(e *testEnv, id, email, password string) {
	salt := []byte("0123456789abcdef0123456789abcdef")
	e.users.add(&models.User{
		ID:       id,
		Email:    email,
		Salt:     salt,
		Verifier: cryptox.MakeVerifier(cryptox.DeriveKey([]byte(password), salt)),
	})
}

// --- tests ---

func TestAuthRequired(t *testing.T) {
	e := newTestEnv(t)

	if w := e.do(t, http.MethodGet, "/api/documents", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/api/documents", "garbage", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/api/documents", e.token(t, "u1"), nil); w.Code != http.StatusOK {
		t.Fatalf("good token: expected 200, got %d", w.Code)
	}
}

func TestLoginEndpoint(t *testing.T) {
	e := newTestEnv(t)
	addAccount(e, "u1", "alice@example.com", "pw")

	w := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "pw"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res struct {
		SessionID   string `json:"sessionId"`
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if res.SessionID == "" || res.AccessToken == "" {
		t.Fatalf("incomplete login result: %s", w.Body.String())
	}
	if e.users.sessions["u1"] != res.SessionID {
		t.Fatalf("session marker not written")
	}

	if w := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "nope"}); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", w.Code)
	}
	if w := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com"}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing password: expected 400, got %d", w.Code)
	}
}

func TestSecondLoginRotatesSession(t *testing.T) {
	e := newTestEnv(t)
	addAccount(e, "u1", "alice@example.com", "pw")

	first := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "pw"})
	second := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "pw"})
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("logins failed: %d, %d", first.Code, second.Code)
	}

	var a, b struct {
		SessionID string `json:"sessionId"`
	}
	_ = json.Unmarshal(first.Body.Bytes(), &a)
	_ = json.Unmarshal(second.Body.Bytes(), &b)
	if a.SessionID == b.SessionID {
		t.Fatalf("second login must mint a fresh session")
	}
	if e.users.sessions["u1"] != b.SessionID {
		t.Fatalf("marker must carry the newest session")
	}
}

func TestGetSession(t *testing.T) {
	e := newTestEnv(t)
	addAccount(e, "u1", "alice@example.com", "pw")
	e.users.sessions["u1"] = "sess-1"

	w := e.do(t, http.MethodGet, "/api/users/u1/session", e.token(t, "u2"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var res struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil || res.SessionID != "sess-1" {
		t.Fatalf("bad session read: %s (%v)", w.Body.String(), err)
	}

	if w := e.do(t, http.MethodGet, "/api/users/ghost/session", e.token(t, "u2"), nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown account: expected 404, got %d", w.Code)
	}
}

func TestPutSession_OwnerOnly(t *testing.T) {
	e := newTestEnv(t)
	addAccount(e, "u1", "alice@example.com", "pw")

	w := e.do(t, http.MethodPut, "/api/users/u1/session", e.token(t, "u2"), gin.H{"sessionId": "stolen"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign caller: expected 403, got %d", w.Code)
	}

	w = e.do(t, http.MethodPut, "/api/users/u1/session", e.token(t, "u1"), gin.H{"sessionId": "sess-9"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("owner: expected 204, got %d: %s", w.Code, w.Body.String())
	}
	if e.users.sessions["u1"] != "sess-9" {
		t.Fatalf("marker not moved: %q", e.users.sessions["u1"])
	}
}

func TestCreateDocument_DefaultsOwner(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(t, http.MethodPost, "/api/documents", e.token(t, "u1"), gin.H{"name": "agenda", "type": "doc"})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var doc models.Document
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if doc.OwnerID != "u1" {
		t.Fatalf("owner not defaulted to caller: %q", doc.OwnerID)
	}
	if doc.ID == "" {
		t.Fatalf("id not assigned")
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	e := newTestEnv(t)
	if w := e.do(t, http.MethodGet, "/api/documents/ghost", e.token(t, "u1"), nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestDocTypeFromFilename(t *testing.T) {
	cases := map[string]string{
		"report.PDF":   models.DocTypePDF,
		"minutes.docx": models.DocTypeDoc,
		"budget.xlsx":  models.DocTypeXLS,
		"deck.pptx":    models.DocTypePPT,
		"data.csv":     models.DocTypeXLS,
		"notes.txt":    models.DocTypeOther,
		"noext":        models.DocTypeOther,
	}
	for in, want := range cases {
		if got := DocTypeFromFilename(in); got != want {
			t.Errorf("DocTypeFromFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"quarterly report.pdf": "quarterly_report.pdf",
		"../../etc/passwd":     "....etcpasswd",
		"báo cáo.pdf":          "bo_co.pdf",
		"":                     "file",
		"ok-name_1.docx":       "ok-name_1.docx",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
