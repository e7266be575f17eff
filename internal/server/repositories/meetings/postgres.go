// Package meetings persists meeting records.
package meetings

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
	Create(ctx context.Context, m *models.Meeting) error
	List(ctx context.Context) ([]*models.Meeting, error)
	Update(ctx context.Context, m *models.Meeting) error
	Delete(ctx context.Context, id string) error
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Meeting) error {
	docIDs, err := encodeDocIDs(m.DocumentIDs)
	if err != nil {
		return err
	}
	query := `INSERT INTO meetings (id, title, room_id, host_id, date, start_time, end_time, status, participants, document_ids)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(ctx, query,
		m.ID, m.Title, m.RoomID, m.HostID, m.Date, m.StartTime, m.EndTime, m.Status, m.Participants, docIDs); err != nil {
		return fmt.Errorf("failed to insert meeting: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Meeting, error) {
	query := `SELECT id, title, room_id, host_id, date, start_time, end_time, status, participants, document_ids FROM meetings ORDER BY date, start_time`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error selecting meetings: %w", err)
	}
	defer rows.Close()

	var result []*models.Meeting
	for rows.Next() {
		m := &models.Meeting{}
		var docIDs []byte
		if err := rows.Scan(&m.ID, &m.Title, &m.RoomID, &m.HostID, &m.Date, &m.StartTime, &m.EndTime, &m.Status, &m.Participants, &docIDs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(docIDs, &m.DocumentIDs); err != nil {
			return nil, fmt.Errorf("failed to decode document ids: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, m *models.Meeting) error {
	docIDs, err := encodeDocIDs(m.DocumentIDs)
	if err != nil {
		return err
	}
	query := `UPDATE meetings SET title=$2, room_id=$3, host_id=$4, date=$5, start_time=$6, end_time=$7, status=$8, participants=$9, document_ids=$10 WHERE id=$1`
	result, err := r.db.ExecContext(ctx, query,
		m.ID, m.Title, m.RoomID, m.HostID, m.Date, m.StartTime, m.EndTime, m.Status, m.Participants, docIDs)
	if err != nil {
		return fmt.Errorf("failed to update meeting: %w", err)
	}
	return requireOneRow(result)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}
	return requireOneRow(result)
}

func encodeDocIDs(ids []string) ([]byte, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document ids: %w", err)
	}
	return b, nil
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
