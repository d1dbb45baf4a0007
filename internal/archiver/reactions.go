package archiver

import (
	"context"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/result"
	"github.com/dmitrijs2005/chatbackup/internal/wire"
)

type ReactionArchiver interface {
	ArchiveReactions(ctx context.Context, actx *ArchivingContext, msg *models.Message, tx dbx.ReadTx) result.Result[[]*wire.Reaction, *ArchiveFrameError]
	RestoreReactions(ctx context.Context, rctx *RestoringContext, reactions []*wire.Reaction, id ChatItemID, msg *models.Message, tx dbx.WriteTx) DownstreamResult
}

// StoreReactionArchiver converts reactions held in a ReactionStore.
type StoreReactionArchiver struct {
	store ReactionStore
}

func NewReactionArchiver(store ReactionStore) *StoreReactionArchiver {
	return &StoreReactionArchiver{store: store}
}

// ArchiveReactions skips reactors that are not part of the backup.
func (a *StoreReactionArchiver) ArchiveReactions(ctx context.Context, actx *ArchivingContext, msg *models.Message, tx dbx.ReadTx) result.Result[[]*wire.Reaction, *ArchiveFrameError] {
	if msg.RowID == 0 {
		return result.Success[[]*wire.Reaction, *ArchiveFrameError](nil)
	}
	reactions, err := a.store.ByMessage(ctx, tx, msg.RowID)
	if err != nil {
		e := newArchiveError(ArchiveErrorFetchFailed, msg.UniqueID)
		e.Cause = err
		return result.Failure[[]*wire.Reaction](archiveErrors{e})
	}

	var (
		errs archiveErrors
		out  []*wire.Reaction
	)
	for _, r := range reactions {
		authorID, ok := actx.RecipientID(r.Reactor)
		if !ok {
			errs = append(errs, newArchiveError(ArchiveErrorInvalidReactionAddress, msg.UniqueID))
			continue
		}
		out = append(out, &wire.Reaction{
			Emoji:         r.Emoji,
			AuthorID:      uint64(authorID),
			SentTimestamp: r.SentAt,
			SortOrder:     r.SortOrder,
		})
	}
	return result.Fold(out, errs)
}

// RestoreReactions needs the owning message to be inserted already.
func (a *StoreReactionArchiver) RestoreReactions(ctx context.Context, rctx *RestoringContext, reactions []*wire.Reaction, id ChatItemID, msg *models.Message, tx dbx.WriteTx) DownstreamResult {
	if msg.RowID == 0 {
		return restoreFailure[result.Void](restoreError(RestoreErrorDatabaseModelMissingRowID, id, nil))
	}

	var errs restoreErrors
	for _, r := range reactions {
		rec, ok := rctx.Recipient(RecipientID(r.AuthorID))
		if !ok {
			errs = append(errs, recipientIDNotFound(RecipientID(r.AuthorID), id))
			continue
		}
		if !isContactLike(rec) {
			errs = append(errs, invalidProtoData(ProtoDataReactionNotFromContact, id))
			continue
		}
		reaction := &models.Reaction{
			MessageRowID: msg.RowID,
			Emoji:        r.Emoji,
			Reactor:      rec.Address,
			SentAt:       r.SentTimestamp,
			SortOrder:    r.SortOrder,
		}
		if err := a.store.Insert(ctx, tx, reaction); err != nil {
			errs = append(errs, restoreError(RestoreErrorDatabaseInsertionFailed, id, err))
		}
	}
	return result.Fold(result.Void{}, errs)
}
