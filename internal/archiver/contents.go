package archiver

import (
	"context"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/result"
	"github.com/dmitrijs2005/chatbackup/internal/wire"
)

// ContentArchiver converts the content of a message: text with quote,
// reactions, link preview and attachments, payments, and deletion tombstones.
type ContentArchiver struct {
	interactions InteractionStore
	payments     PaymentStore
	reactions    ReactionArchiver
	attachments  AttachmentsArchiver
}

func NewContentArchiver(interactions InteractionStore, payments PaymentStore, reactions ReactionArchiver, attachments AttachmentsArchiver) *ContentArchiver {
	return &ContentArchiver{
		interactions: interactions,
		payments:     payments,
		reactions:    reactions,
		attachments:  attachments,
	}
}

// ArchivedContent is the item oneof of a chat item; exactly one field is set.
type ArchivedContent struct {
	StandardMessage      *wire.StandardMessage
	PaymentNotification  *wire.PaymentNotification
	RemoteDeletedMessage *wire.RemoteDeletedMessage
}

func (c ArchivedContent) applyTo(item *wire.ChatItem) {
	item.StandardMessage = c.StandardMessage
	item.PaymentNotification = c.PaymentNotification
	item.RemoteDeletedMessage = c.RemoteDeletedMessage
}

// Archive dispatches on the message's content kind.
func (a *ContentArchiver) Archive(ctx context.Context, actx *ArchivingContext, msg *models.Message, tx dbx.ReadTx) result.Result[ArchivedContent, *ArchiveFrameError] {
	switch msg.Kind {
	case models.ContentKindPaymentNotification, models.ContentKindArchivedPayment:
		return result.Map(a.archivePayment(ctx, msg, tx), func(p *wire.PaymentNotification) ArchivedContent {
			return ArchivedContent{PaymentNotification: p}
		})
	case models.ContentKindText:
		return result.Map(a.archiveStandardMessage(ctx, actx, msg, tx), func(m *wire.StandardMessage) ArchivedContent {
			return ArchivedContent{StandardMessage: m}
		})
	case models.ContentKindRemoteDeleted:
		return result.Success[ArchivedContent, *ArchiveFrameError](ArchivedContent{RemoteDeletedMessage: &wire.RemoteDeletedMessage{}})
	default:
		return archiveFailure[ArchivedContent](ArchiveErrorNotYetImplemented, msg.UniqueID)
	}
}

func (a *ContentArchiver) archiveStandardMessage(ctx context.Context, actx *ArchivingContext, msg *models.Message, tx dbx.ReadTx) result.Result[*wire.StandardMessage, *ArchiveFrameError] {
	var errs archiveErrors
	out := &wire.StandardMessage{}

	atts, _ := result.BubbleUp(a.attachments.ArchiveBodyAttachments(ctx, msg, tx), &errs)
	out.Attachments = atts

	if msg.Body == "" && len(out.Attachments) == 0 {
		errs = append(errs, newArchiveError(ArchiveErrorEmptyMessageBody, msg.UniqueID))
		return result.Failure[*wire.StandardMessage](errs)
	}
	if msg.Body != "" {
		text, ok := result.BubbleUp(archiveText(msg.Body, msg.BodyRanges, msg.UniqueID), &errs)
		if !ok {
			return result.Failure[*wire.StandardMessage](errs)
		}
		out.Text = text
	}

	if msg.Quote != nil {
		quote, ok := result.BubbleUp(a.archiveQuote(ctx, actx, msg, tx), &errs)
		if !ok {
			return result.Failure[*wire.StandardMessage](errs)
		}
		out.Quote = quote
	}

	// Reactions are optional content: losing them degrades the message.
	reactions, _ := result.BubbleUp(a.reactions.ArchiveReactions(ctx, actx, msg, tx), &errs)
	out.Reactions = reactions

	if msg.LinkPreview != nil {
		image, _ := result.BubbleUp(a.attachments.ArchiveLinkPreviewImage(ctx, msg, tx), &errs)
		out.LinkPreviews = []*wire.LinkPreview{archiveLinkPreview(msg.LinkPreview, image)}
	}

	return result.Fold(out, errs)
}

// RestoredContents is what phase one produces for the caller to build the
// local message from.
type RestoredContents struct {
	Kind        models.ContentKind
	Body        string
	BodyRanges  models.BodyRanges
	Quote       *models.QuotedMessage
	LinkPreview *models.LinkPreview
	Payment     *models.ArchivedPayment
}

// PendingInsert is the token between the two restore phases. It holds the
// parts of a chat item that reference the message row and can only be
// written once the message is inserted.
type PendingInsert struct {
	Contents RestoredContents

	archiver   *ContentArchiver
	rctx       *RestoringContext
	chatItemID ChatItemID

	reactions        []*wire.Reaction
	bodyAttachments  []*wire.MessageAttachment
	quotedThumbnail  *wire.MessageAttachment
	linkPreviewImage *wire.FilePointer
}

// ApplyTo copies the restored contents into msg.
func (p *PendingInsert) ApplyTo(msg *models.Message) {
	c := p.Contents
	msg.Kind = c.Kind
	msg.Body = c.Body
	msg.BodyRanges = c.BodyRanges
	msg.Quote = c.Quote
	msg.LinkPreview = c.LinkPreview
	msg.Payment = c.Payment
}

// RestoreContents is phase one: it maps the item oneof to local contents. It
// may read the store but never writes to it.
func (a *ContentArchiver) RestoreContents(ctx context.Context, rctx *RestoringContext, item *wire.ChatItem, thread *models.Thread, direction models.Direction, tx dbx.WriteTx) result.Result[*PendingInsert, *RestoreFrameError] {
	id := chatItemIDOf(item)
	pending := &PendingInsert{archiver: a, rctx: rctx, chatItemID: id}

	switch {
	case item.StandardMessage != nil:
		return a.restoreStandardMessage(ctx, rctx, item.StandardMessage, thread, pending, tx)
	case item.RemoteDeletedMessage != nil:
		pending.Contents.Kind = models.ContentKindRemoteDeleted
		return result.Success[*PendingInsert, *RestoreFrameError](pending)
	case item.PaymentNotification != nil:
		return result.Map(restorePayment(item.PaymentNotification, direction, id), func(p *models.ArchivedPayment) *PendingInsert {
			pending.Contents.Kind = models.ContentKindArchivedPayment
			pending.Contents.Payment = p
			return pending
		})
	case item.ContactMessage != nil, item.StickerMessage != nil, item.GiftBadge != nil, item.UpdateMessage != nil:
		return restoreFailure[*PendingInsert](restoreError(RestoreErrorUnimplemented, id, nil))
	default:
		return restoreFailure[*PendingInsert](invalidProtoData(ProtoDataChatItemMissingItem, id))
	}
}

func (a *ContentArchiver) restoreStandardMessage(ctx context.Context, rctx *RestoringContext, sm *wire.StandardMessage, thread *models.Thread, pending *PendingInsert, tx dbx.WriteTx) result.Result[*PendingInsert, *RestoreFrameError] {
	id := pending.chatItemID
	if (sm.Text == nil || sm.Text.Body == "") && len(sm.Attachments) == 0 {
		return restoreFailure[*PendingInsert](invalidProtoData(ProtoDataEmptyStandardMessage, id))
	}

	var errs restoreErrors
	c := &pending.Contents
	c.Kind = models.ContentKindText

	if sm.Text != nil {
		text, ok := restoreText(sm.Text, id).Unwrap(&errs)
		if !ok {
			return result.Failure[*PendingInsert](errs)
		}
		c.Body = text.Body
		c.BodyRanges = text.Ranges
	}

	if sm.Quote != nil {
		q, ok := a.restoreQuote(ctx, rctx, sm.Quote, thread, id, tx).Unwrap(&errs)
		if !ok {
			return result.Failure[*PendingInsert](errs)
		}
		c.Quote = q.quote
		pending.quotedThumbnail = q.thumbnail
	}

	preview, image, previewErrs := restoreLinkPreview(sm.LinkPreviews, c.Body, id)
	errs = append(errs, previewErrs...)
	c.LinkPreview = preview
	pending.linkPreviewImage = image

	pending.reactions = sm.Reactions
	pending.bodyAttachments = sm.Attachments

	return result.Fold(pending, errs)
}

// RestoreDownstreamObjects is phase two. msg must already be inserted;
// otherwise nothing is written and the result is a Failure.
func (p *PendingInsert) RestoreDownstreamObjects(ctx context.Context, msg *models.Message, tx dbx.WriteTx) DownstreamResult {
	if msg.RowID == 0 {
		return restoreFailure[result.Void](restoreError(RestoreErrorDatabaseModelMissingRowID, p.chatItemID, nil))
	}
	a := p.archiver

	payment := downstreamSuccess()
	if rec := p.Contents.Payment; rec != nil {
		rec.InteractionUniqueID = msg.UniqueID
		if err := a.payments.Insert(ctx, tx, rec); err != nil {
			payment = restoreFailure[result.Void](restoreError(RestoreErrorDatabaseInsertionFailed, p.chatItemID, err))
		}
	}

	return result.CombineAll(
		payment,
		a.reactions.RestoreReactions(ctx, p.rctx, p.reactions, p.chatItemID, msg, tx),
		a.attachments.RestoreBodyAttachments(ctx, p.bodyAttachments, p.chatItemID, msg, tx),
		a.attachments.RestoreQuotedReplyThumbnailAttachment(ctx, p.quotedThumbnail, p.chatItemID, msg, tx),
		a.attachments.RestoreLinkPreviewAttachment(ctx, p.linkPreviewImage, p.chatItemID, msg, tx),
	)
}

func chatItemIDOf(item *wire.ChatItem) ChatItemID {
	return ChatItemID{
		ChatID:   ChatID(item.ChatID),
		AuthorID: RecipientID(item.AuthorID),
		DateSent: item.DateSent,
	}
}
