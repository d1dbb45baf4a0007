package archiver

import (
	"context"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/result"
	"github.com/dmitrijs2005/chatbackup/internal/wire"
)

// OutgoingMessageArchiver handles messages sent by the local account.
type OutgoingMessageArchiver struct {
	interactions InteractionStore
	contents     *ContentArchiver
}

func NewOutgoingMessageArchiver(interactions InteractionStore, contents *ContentArchiver) *OutgoingMessageArchiver {
	return &OutgoingMessageArchiver{interactions: interactions, contents: contents}
}

func (a *OutgoingMessageArchiver) Archive(ctx context.Context, actx *ArchivingContext, msg *models.Message, tx dbx.ReadTx) result.Result[*wire.ChatItem, *ArchiveFrameError] {
	return archiveWithRevisions(ctx, a.interactions, msg, tx, func(m *models.Message) result.Result[*wire.ChatItem, *ArchiveFrameError] {
		return a.archiveRevision(ctx, actx, m, tx)
	})
}

func (a *OutgoingMessageArchiver) archiveRevision(ctx context.Context, actx *ArchivingContext, msg *models.Message, tx dbx.ReadTx) result.Result[*wire.ChatItem, *ArchiveFrameError] {
	item, ok := newChatItem(actx, msg)
	if !ok {
		return archiveFailure[*wire.ChatItem](ArchiveErrorReferencedChatIDMissing, msg.UniqueID)
	}
	selfID, ok := actx.SelfRecipientID()
	if !ok {
		return archiveFailure[*wire.ChatItem](ArchiveErrorReferencedRecipientIDMissing, msg.UniqueID)
	}
	item.AuthorID = uint64(selfID)

	var errs archiveErrors
	statuses, ok := result.BubbleUp(archiveSendStatuses(actx, msg), &errs)
	if !ok {
		return result.Failure[*wire.ChatItem](errs)
	}
	item.Outgoing = &wire.OutgoingMessageDetails{SendStatus: statuses}

	content, ok := result.BubbleUp(a.contents.Archive(ctx, actx, msg, tx), &errs)
	if !ok {
		return result.Failure[*wire.ChatItem](errs)
	}
	content.applyTo(item)

	return result.Fold(item, errs)
}

func (a *OutgoingMessageArchiver) Restore(ctx context.Context, rctx *RestoringContext, item *wire.ChatItem, thread *models.Thread, tx dbx.WriteTx) result.Result[*models.Message, *RestoreFrameError] {
	return restoreWithRevisions(ctx, a.interactions, item, tx, func(rev *wire.ChatItem) result.Result[restoredRevision, *RestoreFrameError] {
		return a.restoreRevision(ctx, rctx, rev, thread, tx)
	})
}

func (a *OutgoingMessageArchiver) restoreRevision(ctx context.Context, rctx *RestoringContext, rev *wire.ChatItem, thread *models.Thread, tx dbx.WriteTx) result.Result[restoredRevision, *RestoreFrameError] {
	id := chatItemIDOf(rev)
	if rev.Outgoing == nil {
		return restoreFailure[restoredRevision](invalidProtoData(ProtoDataChatItemMissingDirectionalDetails, id))
	}
	if err := checkDate(rev.DateSent, id); err != nil {
		return restoreFailure[restoredRevision](err)
	}

	var errs restoreErrors
	states, ok := restoreSendStatuses(rctx, rev.Outgoing.SendStatus, id).Unwrap(&errs)
	if !ok {
		return result.Failure[restoredRevision](errs)
	}

	pending, ok := a.contents.RestoreContents(ctx, rctx, rev, thread, models.DirectionOutgoing, tx).Unwrap(&errs)
	if !ok {
		return result.Failure[restoredRevision](errs)
	}

	msg := &models.Message{
		ThreadRowID:     thread.RowID,
		Direction:       models.DirectionOutgoing,
		Timestamp:       rev.DateSent,
		ExpireStartedAt: rev.ExpireStartDate,
		ExpiresInMs:     rev.ExpiresInMs,
		Read:            true,
		WasSealedSender: anySealedSender(states),
		RecipientStates: states,
	}
	pending.ApplyTo(msg)

	return result.Fold(restoredRevision{msg: msg, pending: pending}, errs)
}
