package payments

import (
	"context"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/google/uuid"
)

type Repository interface {
	ByInteractionUniqueID(ctx context.Context, tx dbx.DBTX, id uuid.UUID) (*models.ArchivedPayment, error)
	Insert(ctx context.Context, tx dbx.DBTX, p *models.ArchivedPayment) error
}
