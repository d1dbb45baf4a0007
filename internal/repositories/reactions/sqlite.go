// Package reactions persists emoji reactions to messages.
package reactions

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/chatbackup/internal/common"
	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/repositories/columns"
)

type SQLiteRepository struct{}

func NewSQLiteRepository() *SQLiteRepository {
	return &SQLiteRepository{}
}

// ByMessage lists reactions in display order.
func (r *SQLiteRepository) ByMessage(ctx context.Context, tx dbx.DBTX, messageRowID int64) ([]*models.Reaction, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, message_id, emoji, reactor_aci, reactor_e164, sent_at, sort_order
		FROM reactions WHERE message_id = ? ORDER BY sort_order, id`, messageRowID)
	if err != nil {
		return nil, fmt.Errorf("failed to select reactions: %w", err)
	}
	defer rows.Close()

	var result []*models.Reaction
	for rows.Next() {
		var (
			re        models.Reaction
			aci, e164 string
		)
		if err := rows.Scan(&re.RowID, &re.MessageRowID, &re.Emoji, &aci, &e164, &re.SentAt, &re.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		if re.Reactor, err = columns.ParseAddress(aci, e164); err != nil {
			return nil, fmt.Errorf("reaction %d: %w", re.RowID, err)
		}
		result = append(result, &re)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Insert stores re and sets its RowID. The owning message must exist.
func (r *SQLiteRepository) Insert(ctx context.Context, tx dbx.DBTX, re *models.Reaction) error {
	if re.MessageRowID == 0 {
		return common.ErrorMissingRowID
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO reactions (message_id, emoji, reactor_aci, reactor_e164, sent_at, sort_order)
		VALUES (?, ?, ?, ?, ?, ?)`,
		re.MessageRowID, re.Emoji, columns.Aci(re.Reactor.Aci), re.Reactor.E164, re.SentAt, re.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to insert reaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get reaction id: %w", err)
	}
	re.RowID = id
	return nil
}
