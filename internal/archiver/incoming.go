package archiver

import (
	"context"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/result"
	"github.com/dmitrijs2005/chatbackup/internal/wire"
)

// IncomingMessageArchiver handles messages received from contacts.
type IncomingMessageArchiver struct {
	interactions InteractionStore
	contents     *ContentArchiver
}

func NewIncomingMessageArchiver(interactions InteractionStore, contents *ContentArchiver) *IncomingMessageArchiver {
	return &IncomingMessageArchiver{interactions: interactions, contents: contents}
}

func (a *IncomingMessageArchiver) Archive(ctx context.Context, actx *ArchivingContext, msg *models.Message, tx dbx.ReadTx) result.Result[*wire.ChatItem, *ArchiveFrameError] {
	return archiveWithRevisions(ctx, a.interactions, msg, tx, func(m *models.Message) result.Result[*wire.ChatItem, *ArchiveFrameError] {
		return a.archiveRevision(ctx, actx, m, tx)
	})
}

func (a *IncomingMessageArchiver) archiveRevision(ctx context.Context, actx *ArchivingContext, msg *models.Message, tx dbx.ReadTx) result.Result[*wire.ChatItem, *ArchiveFrameError] {
	item, ok := newChatItem(actx, msg)
	if !ok {
		return archiveFailure[*wire.ChatItem](ArchiveErrorReferencedChatIDMissing, msg.UniqueID)
	}
	if !msg.Author.IsValid() {
		return archiveFailure[*wire.ChatItem](ArchiveErrorInvalidMessageAddress, msg.UniqueID)
	}
	authorID, ok := actx.RecipientID(msg.Author)
	if !ok {
		return archiveFailure[*wire.ChatItem](ArchiveErrorReferencedRecipientIDMissing, msg.UniqueID)
	}
	item.AuthorID = uint64(authorID)
	item.Incoming = &wire.IncomingMessageDetails{
		DateReceived:   msg.ReceivedAt,
		DateServerSent: msg.ServerTimestamp,
		Read:           msg.Read,
		SealedSender:   msg.WasSealedSender,
	}

	var errs archiveErrors
	content, ok := result.BubbleUp(a.contents.Archive(ctx, actx, msg, tx), &errs)
	if !ok {
		return result.Failure[*wire.ChatItem](errs)
	}
	content.applyTo(item)

	return result.Fold(item, errs)
}

func (a *IncomingMessageArchiver) Restore(ctx context.Context, rctx *RestoringContext, item *wire.ChatItem, thread *models.Thread, tx dbx.WriteTx) result.Result[*models.Message, *RestoreFrameError] {
	return restoreWithRevisions(ctx, a.interactions, item, tx, func(rev *wire.ChatItem) result.Result[restoredRevision, *RestoreFrameError] {
		return a.restoreRevision(ctx, rctx, rev, thread, tx)
	})
}

func (a *IncomingMessageArchiver) restoreRevision(ctx context.Context, rctx *RestoringContext, rev *wire.ChatItem, thread *models.Thread, tx dbx.WriteTx) result.Result[restoredRevision, *RestoreFrameError] {
	id := chatItemIDOf(rev)
	details := rev.Incoming
	if details == nil {
		return restoreFailure[restoredRevision](invalidProtoData(ProtoDataChatItemMissingDirectionalDetails, id))
	}
	author, ok := rctx.Recipient(RecipientID(rev.AuthorID))
	if !ok {
		return restoreFailure[restoredRevision](invalidProtoData(ProtoDataMissingChatItemAuthor, id))
	}
	if author.Kind != models.RecipientKindContact {
		return restoreFailure[restoredRevision](invalidProtoData(ProtoDataIncomingMessageNotFromContact, id))
	}
	for _, ms := range []uint64{rev.DateSent, details.DateReceived} {
		if err := checkDate(ms, id); err != nil {
			return restoreFailure[restoredRevision](err)
		}
	}

	var errs restoreErrors
	serverSent := details.DateServerSent
	if serverSent != 0 {
		if err := checkDate(serverSent, id); err != nil {
			errs = append(errs, err)
			serverSent = 0
		}
	}

	pending, ok := a.contents.RestoreContents(ctx, rctx, rev, thread, models.DirectionIncoming, tx).Unwrap(&errs)
	if !ok {
		return result.Failure[restoredRevision](errs)
	}

	msg := &models.Message{
		ThreadRowID:     thread.RowID,
		Direction:       models.DirectionIncoming,
		Timestamp:       rev.DateSent,
		ReceivedAt:      details.DateReceived,
		ServerTimestamp: serverSent,
		ExpireStartedAt: rev.ExpireStartDate,
		ExpiresInMs:     rev.ExpiresInMs,
		Author:          author.Address,
		Read:            details.Read,
		WasSealedSender: details.SealedSender,
	}
	pending.ApplyTo(msg)

	return result.Fold(restoredRevision{msg: msg, pending: pending}, errs)
}
