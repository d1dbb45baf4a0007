// Package threads persists conversations.
package threads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chatbackup/internal/common"
	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/repositories/columns"
)

const selectColumns = `SELECT id, recipient_id, archived, pinned_order FROM threads`

type SQLiteRepository struct{}

func NewSQLiteRepository() *SQLiteRepository {
	return &SQLiteRepository{}
}

// Insert stores t and sets its RowID.
func (s *SQLiteRepository) Insert(ctx context.Context, tx dbx.DBTX, t *models.Thread) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO threads (recipient_id, archived, pinned_order) VALUES (?, ?, ?)`,
		t.RecipientRowID, t.Archived, t.PinnedOrder)
	if err != nil {
		return fmt.Errorf("failed to insert thread: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get thread id: %w", err)
	}
	t.RowID = id
	return nil
}

func (s *SQLiteRepository) ByRowID(ctx context.Context, tx dbx.DBTX, id int64) (*models.Thread, error) {
	return s.one(ctx, tx, selectColumns+` WHERE id = ?`, id)
}

func (s *SQLiteRepository) ByRecipient(ctx context.Context, tx dbx.DBTX, recipientRowID int64) (*models.Thread, error) {
	return s.one(ctx, tx, selectColumns+` WHERE recipient_id = ? ORDER BY id LIMIT 1`, recipientRowID)
}

func (s *SQLiteRepository) one(ctx context.Context, tx dbx.DBTX, query string, arg int64) (*models.Thread, error) {
	t, err := scanThread(tx.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("thread: %w", common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get thread: %w", err)
	}
	return t, nil
}

func (s *SQLiteRepository) All(ctx context.Context, tx dbx.DBTX) ([]*models.Thread, error) {
	rows, err := tx.QueryContext(ctx, selectColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select threads: %w", err)
	}
	defer rows.Close()

	var result []*models.Thread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanThread(row columns.Scanner) (*models.Thread, error) {
	var t models.Thread
	if err := row.Scan(&t.RowID, &t.RecipientRowID, &t.Archived, &t.PinnedOrder); err != nil {
		return nil, err
	}
	return &t, nil
}
