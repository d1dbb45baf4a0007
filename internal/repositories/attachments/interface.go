package attachments

import (
	"context"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
)

type Repository interface {
	ByOwner(ctx context.Context, tx dbx.DBTX, ownerRowID int64, role models.AttachmentRole) ([]*models.Attachment, error)
	Insert(ctx context.Context, tx dbx.DBTX, a *models.Attachment) error
}
