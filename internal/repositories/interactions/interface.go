package interactions

import (
	"context"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/google/uuid"
)

type Repository interface {
	Insert(ctx context.Context, tx dbx.DBTX, m *models.Message) error
	ByRowID(ctx context.Context, tx dbx.DBTX, id int64) (*models.Message, error)
	ByUniqueID(ctx context.Context, tx dbx.DBTX, id uuid.UUID) (*models.Message, error)
	WithTimestamp(ctx context.Context, tx dbx.DBTX, ts uint64) ([]*models.Message, error)
	TopLevel(ctx context.Context, tx dbx.DBTX) ([]*models.Message, error)
	EditRevisions(ctx context.Context, tx dbx.DBTX, target *models.Message) ([]*models.Message, error)
}
