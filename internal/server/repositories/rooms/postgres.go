// Package rooms persists meeting-room records.
package rooms

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/common"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/dbx"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, room *models.Room) error
	List(ctx context.Context) ([]*models.Room, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	Delete(ctx context.Context, id string) error
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, room *models.Room) error {
	facilities, err := json.Marshal(room.Facilities)
	if err != nil {
		return fmt.Errorf("failed to encode facilities: %w", err)
	}
	query := `INSERT INTO rooms (id, name, capacity, status, facilities) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, room.ID, room.Name, room.Capacity, room.Status, facilities); err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Room, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, capacity, status, facilities FROM rooms ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error selecting rooms: %w", err)
	}
	defer rows.Close()

	var result []*models.Room
	for rows.Next() {
		room := &models.Room{}
		var facilities []byte
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.Status, &facilities); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(facilities, &room.Facilities); err != nil {
			return nil, fmt.Errorf("failed to decode facilities: %w", err)
		}
		result = append(result, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE rooms SET status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	return requireOneRow(result)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return requireOneRow(result)
}

func requireOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrorNotFound
	}
	return nil
}
