// Package archiver converts between the local message graph and backup
// frames.
//
// Every converter returns a result.Result. Recoverable problems are collected
// and returned with a usable value; structural problems drop the entity they
// concern and never the whole backup. Archivers only read, through a
// dbx.ReadTx. Restorers write through a dbx.WriteTx and work in two phases:
// RestoreContents builds the message without touching the store, and
// PendingInsert.RestoreDownstreamObjects links reactions, attachments and
// payment records once the message has a row id.
package archiver

import (
	"context"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/google/uuid"
)

type InteractionStore interface {
	Insert(ctx context.Context, tx dbx.DBTX, m *models.Message) error
	WithTimestamp(ctx context.Context, tx dbx.DBTX, ts uint64) ([]*models.Message, error)
	EditRevisions(ctx context.Context, tx dbx.DBTX, target *models.Message) ([]*models.Message, error)
}

// PaymentStore returns (nil, nil) from ByInteractionUniqueID when there is no
// record.
type PaymentStore interface {
	ByInteractionUniqueID(ctx context.Context, tx dbx.DBTX, id uuid.UUID) (*models.ArchivedPayment, error)
	Insert(ctx context.Context, tx dbx.DBTX, p *models.ArchivedPayment) error
}

type ReactionStore interface {
	ByMessage(ctx context.Context, tx dbx.DBTX, messageRowID int64) ([]*models.Reaction, error)
	Insert(ctx context.Context, tx dbx.DBTX, r *models.Reaction) error
}

type AttachmentStore interface {
	ByOwner(ctx context.Context, tx dbx.DBTX, ownerRowID int64, role models.AttachmentRole) ([]*models.Attachment, error)
	Insert(ctx context.Context, tx dbx.DBTX, a *models.Attachment) error
}

// Stores bundles the persistence collaborators of the archivers.
type Stores struct {
	Interactions InteractionStore
	Payments     PaymentStore
	Reactions    ReactionStore
	Attachments  AttachmentStore
}
