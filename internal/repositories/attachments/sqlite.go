// Package attachments persists media pointers owned by messages.
package attachments

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/chatbackup/internal/common"
	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
)

type SQLiteRepository struct{}

func NewSQLiteRepository() *SQLiteRepository {
	return &SQLiteRepository{}
}

// ByOwner lists the attachments a message holds in role, in order.
func (r *SQLiteRepository) ByOwner(ctx context.Context, tx dbx.DBTX, ownerRowID int64, role models.AttachmentRole) ([]*models.Attachment, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, owner_id, role, ord, media_name, content_type, file_name, caption, size, key,
			digest, flag, was_downloaded
		FROM attachments WHERE owner_id = ? AND role = ? ORDER BY ord, id`, ownerRowID, int(role))
	if err != nil {
		return nil, fmt.Errorf("failed to select attachments: %w", err)
	}
	defer rows.Close()

	var result []*models.Attachment
	for rows.Next() {
		var (
			a            models.Attachment
			dbRole, flag int
		)
		if err := rows.Scan(&a.RowID, &a.OwnerRowID, &dbRole, &a.Order, &a.MediaName, &a.ContentType,
			&a.FileName, &a.Caption, &a.Size, &a.Key, &a.Digest, &flag, &a.WasDownloaded); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		a.Role = models.AttachmentRole(dbRole)
		a.Flag = models.AttachmentFlag(flag)
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Insert stores a and sets its RowID. The owning message must exist.
func (r *SQLiteRepository) Insert(ctx context.Context, tx dbx.DBTX, a *models.Attachment) error {
	if a.OwnerRowID == 0 {
		return common.ErrorMissingRowID
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO attachments (owner_id, role, ord, media_name, content_type, file_name, caption,
			size, key, digest, flag, was_downloaded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.OwnerRowID, int(a.Role), a.Order, a.MediaName, a.ContentType, a.FileName, a.Caption,
		a.Size, a.Key, a.Digest, int(a.Flag), a.WasDownloaded)
	if err != nil {
		return fmt.Errorf("failed to insert attachment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get attachment id: %w", err)
	}
	a.RowID = id
	return nil
}
