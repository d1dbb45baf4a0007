package threads

import (
	"context"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
)

type Repository interface {
	Insert(ctx context.Context, tx dbx.DBTX, t *models.Thread) error
	ByRowID(ctx context.Context, tx dbx.DBTX, id int64) (*models.Thread, error)
	ByRecipient(ctx context.Context, tx dbx.DBTX, recipientRowID int64) (*models.Thread, error)
	All(ctx context.Context, tx dbx.DBTX) ([]*models.Thread, error)
}
