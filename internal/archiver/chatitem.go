package archiver

import (
	"context"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/result"
	"github.com/dmitrijs2005/chatbackup/internal/timex"
	"github.com/dmitrijs2005/chatbackup/internal/wire"
)

// ChatItemArchiver converts whole chat items, edit history included, and
// routes them by direction.
type ChatItemArchiver struct {
	outgoing *OutgoingMessageArchiver
	incoming *IncomingMessageArchiver
}

func NewChatItemArchiver(stores Stores) *ChatItemArchiver {
	contents := NewContentArchiver(
		stores.Interactions,
		stores.Payments,
		NewReactionArchiver(stores.Reactions),
		NewAttachmentsArchiver(stores.Attachments),
	)
	return &ChatItemArchiver{
		outgoing: NewOutgoingMessageArchiver(stores.Interactions, contents),
		incoming: NewIncomingMessageArchiver(stores.Interactions, contents),
	}
}

// Archive converts a top-level message into a chat item.
func (a *ChatItemArchiver) Archive(ctx context.Context, actx *ArchivingContext, msg *models.Message, tx dbx.ReadTx) result.Result[*wire.ChatItem, *ArchiveFrameError] {
	if msg.IsOutgoing() {
		return a.outgoing.Archive(ctx, actx, msg, tx)
	}
	return a.incoming.Archive(ctx, actx, msg, tx)
}

// Restore inserts the message described by item with its edit history and
// downstream objects. The returned message is the latest revision.
func (a *ChatItemArchiver) Restore(ctx context.Context, rctx *RestoringContext, item *wire.ChatItem, tx dbx.WriteTx) result.Result[*models.Message, *RestoreFrameError] {
	id := chatItemIDOf(item)
	thread, ok := rctx.Chat(ChatID(item.ChatID))
	if !ok {
		return restoreFailure[*models.Message](restoreError(RestoreErrorChatIDNotFound, id, nil))
	}

	switch {
	case item.Outgoing != nil:
		return a.outgoing.Restore(ctx, rctx, item, thread, tx)
	case item.Incoming != nil:
		return a.incoming.Restore(ctx, rctx, item, thread, tx)
	case item.Directionless != nil:
		return restoreFailure[*models.Message](restoreError(RestoreErrorUnimplemented, id, nil))
	default:
		return restoreFailure[*models.Message](invalidProtoData(ProtoDataChatItemMissingDirectionalDetails, id))
	}
}

// newChatItem fills the fields shared by both directions.
func newChatItem(actx *ArchivingContext, msg *models.Message) (*wire.ChatItem, bool) {
	chatID, ok := actx.ChatID(msg.ThreadRowID)
	if !ok {
		return nil, false
	}
	return &wire.ChatItem{
		ChatID:          uint64(chatID),
		DateSent:        msg.Timestamp,
		ExpireStartDate: msg.ExpireStartedAt,
		ExpiresInMs:     msg.ExpiresInMs,
	}, true
}

// archiveWithRevisions archives msg and, when it is the latest revision of
// an edited message, its past revisions. A revision that fails is dropped.
func archiveWithRevisions(
	ctx context.Context,
	interactions InteractionStore,
	msg *models.Message,
	tx dbx.ReadTx,
	archive func(*models.Message) result.Result[*wire.ChatItem, *ArchiveFrameError],
) result.Result[*wire.ChatItem, *ArchiveFrameError] {
	var errs archiveErrors
	item, ok := result.BubbleUp(archive(msg), &errs)
	if !ok {
		return result.Failure[*wire.ChatItem](errs)
	}
	if msg.EditState != models.EditStateLatestRevision {
		return result.Fold(item, errs)
	}

	revisions, err := interactions.EditRevisions(ctx, tx, msg)
	if err != nil {
		errs = append(errs, &ArchiveFrameError{Kind: ArchiveErrorFetchFailed, InteractionUniqueID: msg.UniqueID, Cause: err})
		return result.Fold(item, errs)
	}
	for _, rev := range revisions {
		r, ok := result.BubbleUp(archive(rev), &errs)
		if !ok {
			continue
		}
		item.Revisions = append(item.Revisions, r)
	}
	return result.Fold(item, errs)
}

// restoredRevision is one revision converted but not yet inserted.
type restoredRevision struct {
	msg     *models.Message
	pending *PendingInsert
}

// restoreWithRevisions inserts the latest revision first so that past
// revisions can point at it, then restores downstream objects of each
// inserted row. Errors after the latest revision is inserted only degrade
// the result.
func restoreWithRevisions(
	ctx context.Context,
	interactions InteractionStore,
	item *wire.ChatItem,
	tx dbx.WriteTx,
	build func(*wire.ChatItem) result.Result[restoredRevision, *RestoreFrameError],
) result.Result[*models.Message, *RestoreFrameError] {
	id := chatItemIDOf(item)
	var errs restoreErrors

	latest, ok := build(item).Unwrap(&errs)
	if !ok {
		return result.Failure[*models.Message](errs)
	}

	var past []restoredRevision
	for _, rev := range item.Revisions {
		if len(rev.Revisions) > 0 {
			errs = append(errs, invalidProtoData(ProtoDataRevisionOfRevision, chatItemIDOf(rev)))
			continue
		}
		r, ok := build(rev).Unwrap(&errs)
		if !ok {
			continue
		}
		past = append(past, r)
	}

	if len(past) > 0 {
		latest.msg.EditState = models.EditStateLatestRevision
	}
	if err := interactions.Insert(ctx, tx, latest.msg); err != nil {
		errs = append(errs, restoreError(RestoreErrorDatabaseInsertionFailed, id, err))
		return result.Failure[*models.Message](errs)
	}
	if latest.msg.RowID == 0 {
		errs = append(errs, restoreError(RestoreErrorDatabaseInsertionFailed, id, nil))
		return result.Failure[*models.Message](errs)
	}

	for _, r := range past {
		r.msg.EditState = models.EditStatePastRevision
		r.msg.EditTargetRowID = latest.msg.RowID
		if err := interactions.Insert(ctx, tx, r.msg); err != nil {
			errs = append(errs, restoreError(RestoreErrorDatabaseInsertionFailed, r.pending.chatItemID, err))
			continue
		}
		result.BubbleUp(result.Degrade(r.pending.RestoreDownstreamObjects(ctx, r.msg, tx), result.Void{}), &errs)
	}
	// The rows are committed to the transaction; downstream failures only degrade them.
	result.BubbleUp(result.Degrade(latest.pending.RestoreDownstreamObjects(ctx, latest.msg, tx), result.Void{}), &errs)

	return result.Fold(latest.msg, errs)
}

// checkDate reports an invalidDate error for a zero or out of range
// millisecond timestamp.
func checkDate(ms uint64, id ChatItemID) *RestoreFrameError {
	if timex.ValidMillis(ms) {
		return nil
	}
	return invalidProtoData(ProtoDataInvalidDate, id)
}
