package recipients

import (
	"context"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
)

type Repository interface {
	Insert(ctx context.Context, tx dbx.DBTX, r *models.Recipient) error
	ByRowID(ctx context.Context, tx dbx.DBTX, id int64) (*models.Recipient, error)
	ByAddress(ctx context.Context, tx dbx.DBTX, addr models.Address) (*models.Recipient, error)
	All(ctx context.Context, tx dbx.DBTX) ([]*models.Recipient, error)
}
