package repomanager

import (
	"context"
	"database/sql"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/dbx"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/repositories/documents"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/repositories/meetings"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/repositories/rooms"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Documents(db dbx.DBTX) documents.Repository
	Rooms(db dbx.DBTX) rooms.Repository
	Meetings(db dbx.DBTX) meetings.Repository
}
