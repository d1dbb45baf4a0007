package archiver

import (
	"context"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/result"
	"github.com/dmitrijs2005/chatbackup/internal/wire"
)

// archiveQuote fails the whole message when the quote author cannot be
// attributed; range problems inside the quoted text only degrade it.
func (a *ContentArchiver) archiveQuote(ctx context.Context, actx *ArchivingContext, msg *models.Message, tx dbx.ReadTx) result.Result[*wire.Quote, *ArchiveFrameError] {
	q := msg.Quote
	if !q.Author.IsValid() {
		return archiveFailure[*wire.Quote](ArchiveErrorInvalidQuoteAuthor, msg.UniqueID)
	}
	authorID, ok := actx.RecipientID(q.Author)
	if !ok {
		return archiveFailure[*wire.Quote](ArchiveErrorReferencedRecipientIDMissing, msg.UniqueID)
	}

	var errs archiveErrors
	out := &wire.Quote{
		TargetSentTimestamp: q.TargetTimestamp,
		AuthorID:            uint64(authorID),
		Type:                wire.QuoteTypeNormal,
	}
	if q.IsGiftBadge {
		out.Type = wire.QuoteTypeGiftBadge
	}

	if q.Body != "" {
		text, ok := result.BubbleUp(archiveText(q.Body, q.BodyRanges, msg.UniqueID), &errs)
		if !ok {
			return result.Failure[*wire.Quote](errs)
		}
		out.Text = text
	}

	for _, att := range q.Attachments {
		out.Attachments = append(out.Attachments, &wire.QuotedAttachment{
			ContentType: att.ContentType,
			FileName:    att.FileName,
		})
	}
	if len(out.Attachments) > 0 {
		thumb, _ := result.BubbleUp(a.attachments.ArchiveQuotedReplyThumbnail(ctx, msg, tx), &errs)
		out.Attachments[0].Thumbnail = thumb
	}

	return result.Fold(out, errs)
}

type restoredQuote struct {
	quote     *models.QuotedMessage
	thumbnail *wire.MessageAttachment
}

// restoreQuote resolves the quoted original. Exactly one local candidate in
// the same thread from the same author yields a live link; zero or several
// fall back to the embedded snapshot.
func (a *ContentArchiver) restoreQuote(ctx context.Context, rctx *RestoringContext, q *wire.Quote, thread *models.Thread, id ChatItemID, tx dbx.WriteTx) result.Result[restoredQuote, *RestoreFrameError] {
	author, ok := rctx.Recipient(RecipientID(q.AuthorID))
	if !ok {
		return restoreFailure[restoredQuote](recipientIDNotFound(RecipientID(q.AuthorID), id))
	}
	if !isContactLike(author) {
		return restoreFailure[restoredQuote](invalidProtoData(ProtoDataQuoteAuthorNotContact, id))
	}

	var errs restoreErrors
	quote := &models.QuotedMessage{
		TargetTimestamp: q.TargetSentTimestamp,
		Author:          authorAddress(rctx, author),
		IsGiftBadge:     q.Type == wire.QuoteTypeGiftBadge,
	}

	if q.Text != nil {
		text, ok := restoreText(q.Text, id).Unwrap(&errs)
		if !ok {
			return result.Failure[restoredQuote](errs)
		}
		quote.Body = text.Body
		quote.BodyRanges = text.Ranges
	}

	var thumbnail *wire.MessageAttachment
	for _, att := range q.Attachments {
		quote.Attachments = append(quote.Attachments, models.QuotedAttachment{
			ContentType: att.ContentType,
			FileName:    att.FileName,
		})
		if thumbnail == nil && att.Thumbnail != nil {
			thumbnail = att.Thumbnail
		}
	}

	if quote.Body == "" && len(quote.Attachments) == 0 && !quote.IsGiftBadge {
		errs = append(errs, invalidProtoData(ProtoDataQuotedMessageEmptyContent, id))
		return result.Failure[restoredQuote](errs)
	}

	quote.IsOriginalMissing = true
	if q.TargetSentTimestamp != nil {
		candidates, err := a.interactions.WithTimestamp(ctx, tx, *q.TargetSentTimestamp)
		if err != nil {
			errs = append(errs, restoreError(RestoreErrorDatabaseQueryFailed, id, err))
			return result.Failure[restoredQuote](errs)
		}

		var match *models.Message
		matches := 0
		for _, c := range candidates {
			// a past revision shares the original's timestamp; only the latest counts
			if c.EditState == models.EditStatePastRevision {
				continue
			}
			if c.ThreadRowID != thread.RowID || !authoredBy(c, author) {
				continue
			}
			match = c
			matches++
		}
		if matches == 1 {
			quote.OriginalMessageUniqueID = match.UniqueID
			quote.IsOriginalMissing = false
		}
	}

	return result.Fold(restoredQuote{quote: quote, thumbnail: thumbnail}, errs)
}

// authorAddress returns the local address of a contact or of the local
// account.
func authorAddress(rctx *RestoringContext, r *models.Recipient) models.Address {
	if r.Kind == models.RecipientKindSelf && !r.Address.IsValid() {
		return models.NewAciAddress(rctx.LocalAci)
	}
	return r.Address
}

func authoredBy(m *models.Message, author *models.Recipient) bool {
	if author.Kind == models.RecipientKindSelf {
		return m.IsOutgoing()
	}
	return !m.IsOutgoing() && m.Author.Matches(author.Address)
}
