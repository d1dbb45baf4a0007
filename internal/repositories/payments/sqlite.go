// Package payments persists the records behind payment notifications.
package payments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/google/uuid"
)

type SQLiteRepository struct{}

func NewSQLiteRepository() *SQLiteRepository {
	return &SQLiteRepository{}
}

// ByInteractionUniqueID returns (nil, nil) when the message has no record.
func (r *SQLiteRepository) ByInteractionUniqueID(ctx context.Context, tx dbx.DBTX, id uuid.UUID) (*models.ArchivedPayment, error) {
	var (
		p                         models.ArchivedPayment
		direction, status, reason int
	)
	err := tx.QueryRowContext(ctx, `
		SELECT id, direction, amount, fee, note, status, failure_reason, timestamp, block_index,
			block_timestamp, transaction_data, receipt
		FROM payments WHERE interaction_unique_id = ?`, id.String()).
		Scan(&p.RowID, &direction, &p.Amount, &p.Fee, &p.Note, &status, &reason, &p.Timestamp,
			&p.BlockIndex, &p.BlockTimestamp, &p.TransactionData, &p.Receipt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment for %s: %w", id, err)
	}
	p.InteractionUniqueID = id
	p.Direction = models.Direction(direction)
	p.Status = models.PaymentStatus(status)
	p.FailureReason = models.PaymentFailure(reason)
	return &p, nil
}

// Insert stores p and sets its RowID.
func (r *SQLiteRepository) Insert(ctx context.Context, tx dbx.DBTX, p *models.ArchivedPayment) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO payments (interaction_unique_id, direction, amount, fee, note, status,
			failure_reason, timestamp, block_index, block_timestamp, transaction_data, receipt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.InteractionUniqueID.String(), int(p.Direction), p.Amount, p.Fee, p.Note, int(p.Status),
		int(p.FailureReason), p.Timestamp, p.BlockIndex, p.BlockTimestamp, p.TransactionData, p.Receipt)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get payment id: %w", err)
	}
	p.RowID = id
	return nil
}
