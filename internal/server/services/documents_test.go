package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/common"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/events"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/config"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/hub"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/models"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/storage"
)

type fakeDocumentsRepo struct {
	createErr error
	createdIn *models.Document

	byIDOut *models.Document
	byIDErr error

	listOut []*models.Document

	updateErr error

	deleteErr error
	deletedID string
}

func (f *fakeDocumentsRepo) Create(ctx context.Context, doc *models.Document) error {
	f.createdIn = doc
	return f.createErr
}

func (f *fakeDocumentsRepo) GetByID(ctx context.Context, id string) (*models.Document, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.byIDOut, nil
}

func (f *fakeDocumentsRepo) List(ctx context.Context) ([]*models.Document, error) {
	return f.listOut, nil
}

func (f *fakeDocumentsRepo) Update(ctx context.Context, doc *models.Document) error {
	return f.updateErr
}

func (f *fakeDocumentsRepo) Delete(ctx context.Context, id string) error {
	f.deletedID = id
	return f.deleteErr
}

func newDocService(t *testing.T, repo *fakeDocumentsRepo, h *hub.Hub) *DocumentService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		S3BaseEndpoint: "http://127.0.0.1:9000/",
		S3Bucket:       "documents",
	}
	if h == nil {
		h = hub.New()
	}
	rm := &fakeRepoManager{d: repo}
	return NewDocumentService(db, rm, storage.NewBlobStore(cfg), h, cfg, testLogger())
}

func docEvents(t *testing.T, w *collectWriter) []events.Event {
	t.Helper()
	out := make([]events.Event, 0, len(w.messages))
	for _, m := range w.messages {
		var ev events.Event
		if err := json.Unmarshal(m, &ev); err != nil {
			t.Fatalf("bad event payload: %v", err)
		}
		out = append(out, ev)
	}
	return out
}

func TestDocumentCreate_AssignsIDAndNotifies(t *testing.T) {
	repo := &fakeDocumentsRepo{}
	h := hub.New()
	w := &collectWriter{}
	h.Register(&hub.Connection{Topics: []string{"documents"}, Writer: w})

	s := newDocService(t, repo, h)

	doc := &models.Document{Name: "plan", Type: models.DocTypeDoc, OwnerID: "u1"}
	if err := s.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if doc.ID == "" {
		t.Fatalf("id not assigned")
	}
	if doc.UpdatedAt.IsZero() || time.Since(doc.UpdatedAt) > time.Minute {
		t.Fatalf("UpdatedAt not stamped: %v", doc.UpdatedAt)
	}

	evs := docEvents(t, w)
	if len(evs) != 1 || evs[0].Kind != events.KindDocumentCreated {
		t.Fatalf("expected one %s event, got %+v", events.KindDocumentCreated, evs)
	}
}

func TestDocumentCreate_RepoErr_NoNotification(t *testing.T) {
	repo := &fakeDocumentsRepo{createErr: errBoom{}}
	h := hub.New()
	w := &collectWriter{}
	h.Register(&hub.Connection{Topics: []string{"documents"}, Writer: w})

	s := newDocService(t, repo, h)

	if err := s.Create(context.Background(), &models.Document{Name: "x"}); err == nil {
		t.Fatalf("expected error")
	}
	if len(w.messages) != 0 {
		t.Fatalf("no notification expected on failure, got %d", len(w.messages))
	}
}

func TestDocumentUpdate_Notifies(t *testing.T) {
	repo := &fakeDocumentsRepo{}
	h := hub.New()
	w := &collectWriter{}
	h.Register(&hub.Connection{Topics: []string{"documents"}, Writer: w})

	s := newDocService(t, repo, h)

	if err := s.Update(context.Background(), &models.Document{ID: "d1", Name: "renamed"}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	evs := docEvents(t, w)
	if len(evs) != 1 || evs[0].Kind != events.KindDocumentUpdated {
		t.Fatalf("expected %s event, got %+v", events.KindDocumentUpdated, evs)
	}
}

func TestDocumentDelete_MetadataOnly(t *testing.T) {
	// A record without a store-owned URL must delete cleanly without ever
	// touching the blob backend.
	repo := &fakeDocumentsRepo{byIDOut: &models.Document{ID: "d1", Name: "offline", URL: ""}}
	h := hub.New()
	w := &collectWriter{}
	h.Register(&hub.Connection{Topics: []string{"documents"}, Writer: w})

	s := newDocService(t, repo, h)

	if err := s.Delete(context.Background(), "d1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if repo.deletedID != "d1" {
		t.Fatalf("metadata not deleted: %q", repo.deletedID)
	}
	evs := docEvents(t, w)
	if len(evs) != 1 || evs[0].Kind != events.KindDocumentDeleted {
		t.Fatalf("expected %s event, got %+v", events.KindDocumentDeleted, evs)
	}
}

func TestDocumentDelete_NotFound(t *testing.T) {
	repo := &fakeDocumentsRepo{byIDErr: common.ErrorNotFound}
	s := newDocService(t, repo, nil)

	if err := s.Delete(context.Background(), "ghost"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestDocumentGetAndList(t *testing.T) {
	repo := &fakeDocumentsRepo{
		byIDOut: &models.Document{ID: "d1"},
		listOut: []*models.Document{{ID: "d1"}, {ID: "d2"}},
	}
	s := newDocService(t, repo, nil)

	doc, err := s.Get(context.Background(), "d1")
	if err != nil || doc.ID != "d1" {
		t.Fatalf("Get: got (%+v, %v)", doc, err)
	}
	docs, err := s.List(context.Background())
	if err != nil || len(docs) != 2 {
		t.Fatalf("List: got (%d, %v)", len(docs), err)
	}
}
