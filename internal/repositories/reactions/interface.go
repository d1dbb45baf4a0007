package reactions

import (
	"context"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
)

type Repository interface {
	ByMessage(ctx context.Context, tx dbx.DBTX, messageRowID int64) ([]*models.Reaction, error)
	Insert(ctx context.Context, tx dbx.DBTX, r *models.Reaction) error
}
