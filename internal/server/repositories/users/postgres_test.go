package users

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/common"
)

func TestSetCurrentSession_PersistsMarkerAndStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	// The overwrite and the status flip are one statement: a login must
	// never leave the stored status behind the stored session marker.
	mock.ExpectExec(`UPDATE users SET current_session_id=\$2, status='active' WHERE id=\$1`).
		WithArgs("u1", "sess-9").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewPostgresRepository(db)
	if err := repo.SetCurrentSession(context.Background(), "u1", "sess-9"); err != nil {
		t.Fatalf("SetCurrentSession error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetCurrentSession_UnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET`).
		WithArgs("ghost", "sess-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostgresRepository(db)
	err = repo.SetCurrentSession(context.Background(), "ghost", "sess-9")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}
