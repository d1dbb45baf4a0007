package archiver

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/result"
	"github.com/dmitrijs2005/chatbackup/internal/wire"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContentArchiver(s *fakeStores) *ContentArchiver {
	return NewContentArchiver(s.interactions, s.payments, NewReactionArchiver(s.reactions), NewAttachmentsArchiver(s.attachments))
}

func outgoingItem(f *fixture, sm *wire.StandardMessage) *wire.ChatItem {
	return &wire.ChatItem{
		ChatID:          uint64(f.chatID),
		AuthorID:        uint64(f.selfID),
		DateSent:        sentAt,
		Outgoing:        &wire.OutgoingMessageDetails{},
		StandardMessage: sm,
	}
}

func TestContentArchiver_ArchiveKinds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name     string
		msg      *models.Message
		wantKind ArchiveErrorKind
	}{
		{"empty body", &models.Message{Kind: models.ContentKindText}, ArchiveErrorEmptyMessageBody},
		{"sticker", &models.Message{Kind: models.ContentKindSticker, Body: "x"}, ArchiveErrorNotYetImplemented},
		{"contact share", &models.Message{Kind: models.ContentKindContactShare}, ArchiveErrorNotYetImplemented},
		{"gift badge", &models.Message{Kind: models.ContentKindGiftBadge}, ArchiveErrorNotYetImplemented},
		{"update", &models.Message{Kind: models.ContentKindUpdate}, ArchiveErrorNotYetImplemented},
		{"payment without record", &models.Message{Kind: models.ContentKindPaymentNotification}, ArchiveErrorMissingPaymentInformation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.msg.UniqueID = uuid.New()
			r := newContentArchiver(newFakeStores()).Archive(ctx, f.actx, tt.msg, dbx.ReadTx{})
			require.True(t, r.IsFailure())
			assert.Equal(t, []ArchiveErrorKind{tt.wantKind}, archiveKinds(r.Errors()))
			assert.Equal(t, tt.msg.UniqueID, r.Errors()[0].InteractionUniqueID)
		})
	}
}

func TestContentArchiver_RemoteDeleted(t *testing.T) {
	f := newFixture(t)
	content, ok := newContentArchiver(newFakeStores()).Archive(context.Background(), f.actx, &models.Message{Kind: models.ContentKindRemoteDeleted}, dbx.ReadTx{}).Value()
	require.True(t, ok)
	assert.NotNil(t, content.RemoteDeletedMessage)
	assert.Nil(t, content.StandardMessage)
}

func TestContentArchiver_PartialDegradations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	msg := helloBob(f)
	msg.BodyRanges.Mentions = append(msg.BodyRanges.Mentions, models.Mention{Start: 0, Length: 1})

	stores := newFakeStores()
	stores.reactions.fetchErr = errBoom
	stores.attachments.fetchErr = errBoom

	r := newContentArchiver(stores).Archive(ctx, f.actx, msg, dbx.ReadTx{})
	require.Equal(t, result.OutcomePartial, r.Outcome())
	assert.ElementsMatch(t, []ArchiveErrorKind{
		ArchiveErrorAttachmentFetchFailed,
		ArchiveErrorInvalidMessageAddress,
		ArchiveErrorFetchFailed,
	}, archiveKinds(r.Errors()))

	content, _ := r.Value()
	require.NotNil(t, content.StandardMessage)
	assert.Equal(t, "hello @Bob", content.StandardMessage.Text.Body)
	assert.Empty(t, content.StandardMessage.Reactions)
}

func TestContentArchiver_ReactionsSkipUnknownReactor(t *testing.T) {
	f := newFixture(t)
	stores := newFakeStores()
	msg := helloBob(f)
	stores.reactions.rows = []*models.Reaction{
		{MessageRowID: msg.RowID, Emoji: "👍", Reactor: f.carol.Address, SentAt: sentAt + 1, SortOrder: 1},
		{MessageRowID: msg.RowID, Emoji: "🎉", Reactor: models.NewAciAddress(uuid.New()), SentAt: sentAt + 2, SortOrder: 2},
	}

	r := newContentArchiver(stores).Archive(context.Background(), f.actx, msg, dbx.ReadTx{})
	require.Equal(t, result.OutcomePartial, r.Outcome())
	assert.Equal(t, []ArchiveErrorKind{ArchiveErrorInvalidReactionAddress}, archiveKinds(r.Errors()))

	content, _ := r.Value()
	require.Len(t, content.StandardMessage.Reactions, 1)
	assert.Equal(t, uint64(f.carolID), content.StandardMessage.Reactions[0].AuthorID)
}

func TestContentArchiver_QuoteAuthorErrorsAreFatal(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name   string
		author models.Address
		want   ArchiveErrorKind
	}{
		{"invalid address", models.Address{}, ArchiveErrorInvalidQuoteAuthor},
		{"unknown contact", models.NewAciAddress(uuid.New()), ArchiveErrorReferencedRecipientIDMissing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := helloBob(f)
			msg.Quote = &models.QuotedMessage{Author: tt.author, Body: "original"}
			r := newContentArchiver(newFakeStores()).Archive(context.Background(), f.actx, msg, dbx.ReadTx{})
			require.True(t, r.IsFailure())
			assert.Equal(t, []ArchiveErrorKind{tt.want}, archiveKinds(r.Errors()))
		})
	}
}

func TestContentArchiver_QuoteResolution(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	target := uint64(sentAt - 1000)

	incomingFromBob := func() *models.Message {
		return &models.Message{
			ThreadRowID: threadRowID,
			Direction:   models.DirectionIncoming,
			Author:      f.bob.Address,
			Timestamp:   target,
			Body:        "original",
		}
	}
	quote := &wire.Quote{
		TargetSentTimestamp: &target,
		AuthorID:            uint64(f.bobID),
		Text:                &wire.Text{Body: "original"},
		Type:                wire.QuoteTypeNormal,
	}
	item := outgoingItem(f, &wire.StandardMessage{Text: &wire.Text{Body: "reply"}, Quote: quote})

	t.Run("single candidate links", func(t *testing.T) {
		stores := newFakeStores()
		original := incomingFromBob()
		require.NoError(t, stores.interactions.Insert(ctx, nil, original))
		other := incomingFromBob()
		other.ThreadRowID = threadRowID + 1
		require.NoError(t, stores.interactions.Insert(ctx, nil, other))

		pending, ok := newContentArchiver(stores).RestoreContents(ctx, f.rctx, item, f.thread, models.DirectionOutgoing, dbx.WriteTx{}).Value()
		require.True(t, ok)
		q := pending.Contents.Quote
		require.NotNil(t, q)
		assert.False(t, q.IsOriginalMissing)
		assert.Equal(t, original.UniqueID, q.OriginalMessageUniqueID)
		assert.Equal(t, f.bob.Address, q.Author)
	})

	t.Run("ambiguous candidates keep snapshot", func(t *testing.T) {
		stores := newFakeStores()
		require.NoError(t, stores.interactions.Insert(ctx, nil, incomingFromBob()))
		require.NoError(t, stores.interactions.Insert(ctx, nil, incomingFromBob()))

		pending, ok := newContentArchiver(stores).RestoreContents(ctx, f.rctx, item, f.thread, models.DirectionOutgoing, dbx.WriteTx{}).Value()
		require.True(t, ok)
		q := pending.Contents.Quote
		assert.True(t, q.IsOriginalMissing)
		assert.Equal(t, uuid.Nil, q.OriginalMessageUniqueID)
		assert.Equal(t, "original", q.Body)
	})

	t.Run("past revision is not a candidate", func(t *testing.T) {
		stores := newFakeStores()
		latest := incomingFromBob()
		latest.EditState = models.EditStateLatestRevision
		require.NoError(t, stores.interactions.Insert(ctx, nil, latest))
		past := incomingFromBob()
		past.EditState = models.EditStatePastRevision
		past.EditTargetRowID = latest.RowID
		require.NoError(t, stores.interactions.Insert(ctx, nil, past))

		pending, ok := newContentArchiver(stores).RestoreContents(ctx, f.rctx, item, f.thread, models.DirectionOutgoing, dbx.WriteTx{}).Value()
		require.True(t, ok)
		q := pending.Contents.Quote
		assert.False(t, q.IsOriginalMissing)
		assert.Equal(t, latest.UniqueID, q.OriginalMessageUniqueID)
	})

	t.Run("lookup failure", func(t *testing.T) {
		stores := newFakeStores()
		stores.interactions.queryErr = errBoom
		r := newContentArchiver(stores).RestoreContents(ctx, f.rctx, item, f.thread, models.DirectionOutgoing, dbx.WriteTx{})
		require.True(t, r.IsFailure())
		assert.Equal(t, []RestoreErrorKind{RestoreErrorDatabaseQueryFailed}, restoreKinds(r.Errors()))
	})
}

func TestContentArchiver_QuoteRestoreErrors(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name      string
		quote     *wire.Quote
		wantKind  RestoreErrorKind
		wantProto ProtoDataError
	}{
		{"unknown author", &wire.Quote{AuthorID: 99, Text: &wire.Text{Body: "x"}}, RestoreErrorRecipientIDNotFound, 0},
		{"group author", &wire.Quote{AuthorID: uint64(f.groupID), Text: &wire.Text{Body: "x"}}, RestoreErrorInvalidProtoData, ProtoDataQuoteAuthorNotContact},
		{"empty", &wire.Quote{AuthorID: uint64(f.bobID)}, RestoreErrorInvalidProtoData, ProtoDataQuotedMessageEmptyContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := outgoingItem(f, &wire.StandardMessage{Text: &wire.Text{Body: "reply"}, Quote: tt.quote})
			r := newContentArchiver(newFakeStores()).RestoreContents(context.Background(), f.rctx, item, f.thread, models.DirectionOutgoing, dbx.WriteTx{})
			require.True(t, r.IsFailure())
			require.Len(t, r.Errors(), 1)
			assert.Equal(t, tt.wantKind, r.Errors()[0].Kind)
			assert.Equal(t, tt.wantProto, r.Errors()[0].ProtoData)
		})
	}

	t.Run("gift badge quote without content", func(t *testing.T) {
		item := outgoingItem(f, &wire.StandardMessage{Text: &wire.Text{Body: "thanks"}, Quote: &wire.Quote{AuthorID: uint64(f.selfID), Type: wire.QuoteTypeGiftBadge}})
		pending, ok := newContentArchiver(newFakeStores()).RestoreContents(context.Background(), f.rctx, item, f.thread, models.DirectionIncoming, dbx.WriteTx{}).Value()
		require.True(t, ok)
		assert.True(t, pending.Contents.Quote.IsGiftBadge)
		assert.Equal(t, f.self.Address, pending.Contents.Quote.Author)
	})
}

func TestContentArchiver_LinkPreviewRestore(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name      string
		body      string
		url       string
		wantProto []ProtoDataError
		wantKept  bool
	}{
		{"url in body", "see https://example.com/a", "https://example.com/a", nil, true},
		{"url not in body", "see this", "https://example.com/a", []ProtoDataError{ProtoDataLinkPreviewURLNotInBody}, false},
		{"empty url", "see this", "", []ProtoDataError{ProtoDataLinkPreviewEmptyURL}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := &wire.StandardMessage{
				Text:         &wire.Text{Body: tt.body},
				LinkPreviews: []*wire.LinkPreview{{URL: tt.url, Title: "Example"}},
			}
			r := newContentArchiver(newFakeStores()).RestoreContents(context.Background(), f.rctx, outgoingItem(f, sm), f.thread, models.DirectionOutgoing, dbx.WriteTx{})
			pending, ok := r.Value()
			require.True(t, ok)
			assert.Equal(t, tt.wantProto, protoKinds(r.Errors()))
			assert.Equal(t, tt.body, pending.Contents.Body)
			if tt.wantKept {
				require.NotNil(t, pending.Contents.LinkPreview)
				assert.Equal(t, "Example", pending.Contents.LinkPreview.Title)
			} else {
				assert.Nil(t, pending.Contents.LinkPreview)
			}
		})
	}
}

func TestPendingInsert_RequiresRowID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	stores := newFakeStores()
	sm := &wire.StandardMessage{
		Text:        &wire.Text{Body: "photo"},
		Attachments: []*wire.MessageAttachment{{Pointer: &wire.FilePointer{MediaName: "m1", ContentType: "image/png"}}},
		Reactions:   []*wire.Reaction{{Emoji: "👍", AuthorID: uint64(f.bobID), SentTimestamp: sentAt + 1}},
	}

	pending, ok := newContentArchiver(stores).RestoreContents(ctx, f.rctx, outgoingItem(f, sm), f.thread, models.DirectionOutgoing, dbx.WriteTx{}).Value()
	require.True(t, ok)

	msg := &models.Message{}
	pending.ApplyTo(msg)
	r := pending.RestoreDownstreamObjects(ctx, msg, dbx.WriteTx{})
	require.True(t, r.IsFailure())
	assert.Equal(t, []RestoreErrorKind{RestoreErrorDatabaseModelMissingRowID}, restoreKinds(r.Errors()))
	assert.Empty(t, stores.reactions.rows)
	assert.Empty(t, stores.attachments.rows)

	msg.RowID = 5
	r = pending.RestoreDownstreamObjects(ctx, msg, dbx.WriteTx{})
	require.Equal(t, result.OutcomeSuccess, r.Outcome())
	require.Len(t, stores.reactions.rows, 1)
	assert.Equal(t, int64(5), stores.reactions.rows[0].MessageRowID)
	assert.Equal(t, f.bob.Address, stores.reactions.rows[0].Reactor)
	require.Len(t, stores.attachments.rows, 1)
	assert.Equal(t, "m1", stores.attachments.rows[0].MediaName)
	assert.Equal(t, models.AttachmentRoleBody, stores.attachments.rows[0].Role)
}

func TestPendingInsert_ReactionErrorsAreRecoverable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	stores := newFakeStores()
	sm := &wire.StandardMessage{
		Text: &wire.Text{Body: "hi"},
		Reactions: []*wire.Reaction{
			{Emoji: "👍", AuthorID: uint64(f.bobID)},
			{Emoji: "👎", AuthorID: uint64(f.groupID)},
			{Emoji: "❤", AuthorID: 404},
		},
	}

	pending, ok := newContentArchiver(stores).RestoreContents(ctx, f.rctx, outgoingItem(f, sm), f.thread, models.DirectionOutgoing, dbx.WriteTx{}).Value()
	require.True(t, ok)

	r := pending.RestoreDownstreamObjects(ctx, &models.Message{RowID: 1}, dbx.WriteTx{})
	require.Equal(t, result.OutcomePartial, r.Outcome())
	assert.Equal(t, []RestoreErrorKind{RestoreErrorInvalidProtoData, RestoreErrorRecipientIDNotFound}, restoreKinds(r.Errors()))
	assert.Len(t, stores.reactions.rows, 1)
}

func TestContentArchiver_PaymentRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	src := newFakeStores()
	msgID := uuid.New()
	src.payments.byID = map[uuid.UUID]*models.ArchivedPayment{
		msgID: {
			InteractionUniqueID: msgID,
			Direction:           models.DirectionIncoming,
			Amount:              "1.5",
			Fee:                 "0.01",
			Note:                "lunch",
			Status:              models.PaymentStatusSuccessful,
			Timestamp:           sentAt,
			BlockIndex:          77,
			BlockTimestamp:      sentAt + 1,
			TransactionData:     []byte{1, 2},
			Receipt:             []byte{3},
		},
	}
	msg := &models.Message{UniqueID: msgID, Kind: models.ContentKindPaymentNotification}

	content, ok := newContentArchiver(src).Archive(ctx, f.actx, msg, dbx.ReadTx{}).Value()
	require.True(t, ok)
	require.NotNil(t, content.PaymentNotification)

	item := &wire.ChatItem{ChatID: uint64(f.chatID), DateSent: sentAt, PaymentNotification: content.PaymentNotification}
	dst := newFakeStores()
	pending, ok := newContentArchiver(dst).RestoreContents(ctx, f.rctx, item, f.thread, models.DirectionIncoming, dbx.WriteTx{}).Value()
	require.True(t, ok)
	assert.Equal(t, models.ContentKindArchivedPayment, pending.Contents.Kind)

	restored := &models.Message{RowID: 9, UniqueID: uuid.New()}
	pending.ApplyTo(restored)
	require.Equal(t, result.OutcomeSuccess, pending.RestoreDownstreamObjects(ctx, restored, dbx.WriteTx{}).Outcome())

	got := dst.payments.byID[restored.UniqueID]
	require.NotNil(t, got)
	want := *src.payments.byID[msgID]
	want.InteractionUniqueID = restored.UniqueID
	assert.Equal(t, want, *got)
}

func TestRestorePayment_MissingAmountIsPartial(t *testing.T) {
	n := &wire.PaymentNotification{
		Note: "oops",
		TransactionDetails: &wire.PaymentTransactionDetails{
			FailedTransaction: &wire.PaymentFailedTransaction{Reason: wire.PaymentFailureInsufficientFunds},
		},
	}
	r := restorePayment(n, models.DirectionOutgoing, ChatItemID{})
	require.Equal(t, result.OutcomePartial, r.Outcome())
	assert.Equal(t, []ProtoDataError{ProtoDataPaymentNotificationMissingAmount}, protoKinds(r.Errors()))
	p, _ := r.Value()
	assert.Equal(t, models.PaymentStatusFailed, p.Status)
	assert.Equal(t, models.PaymentFailureInsufficientFunds, p.FailureReason)
}

func TestRestoreText(t *testing.T) {
	aci := uuid.New()
	text := &wire.Text{
		Body: "hello @Bob",
		BodyRanges: []*wire.BodyRange{
			{Start: 0, Length: 5, Style: wire.StyleItalic},
			{Start: 6, Length: 4, MentionAci: aci[:]},
			{Start: 0, Length: 5, Style: wire.StyleBold},
			{Start: 1, Length: 1},
			{Start: 2, Length: 1, MentionAci: []byte{1, 2, 3}},
			{Start: 3, Length: 1, Style: wire.Style(42)},
		},
	}

	r := restoreText(text, ChatItemID{})
	require.Equal(t, result.OutcomePartial, r.Outcome())
	assert.Equal(t, []ProtoDataError{
		ProtoDataBodyRangeMissingPayload,
		ProtoDataInvalidAci,
		ProtoDataUnrecognizedBodyRangeStyle,
	}, protoKinds(r.Errors()))

	got, _ := r.Value()
	assert.Equal(t, models.BodyRanges{
		Mentions: []models.Mention{{Start: 6, Length: 4, Aci: aci}},
		Styles:   []models.StyleRange{{Start: 0, Length: 5, Style: models.StyleBold | models.StyleItalic}},
	}, got.Ranges)
}

func TestArchiveText_SplitsStyleBits(t *testing.T) {
	ranges := models.BodyRanges{
		Styles: []models.StyleRange{
			{Start: 0, Length: 3, Style: models.StyleSpoiler | models.StyleMonospace},
			{Start: 4, Length: 1, Style: models.Style(1 << 7)},
		},
	}
	r := archiveText("abc d", ranges, uuid.New())
	require.Equal(t, result.OutcomePartial, r.Outcome())
	assert.Equal(t, []ArchiveErrorKind{ArchiveErrorUnrecognizedBodyRangeStyle}, archiveKinds(r.Errors()))

	text, _ := r.Value()
	require.Len(t, text.BodyRanges, 2)
	assert.Equal(t, wire.StyleSpoiler, text.BodyRanges[0].Style)
	assert.Equal(t, wire.StyleMonospace, text.BodyRanges[1].Style)
}

func TestArchiveText_RejectsNegativeRanges(t *testing.T) {
	bob := uuid.New()
	ranges := models.BodyRanges{
		Mentions: []models.Mention{
			{Start: -1, Length: 4, Aci: bob},
			{Start: 6, Length: 4, Aci: bob},
		},
		Styles: []models.StyleRange{
			{Start: 0, Length: -2, Style: models.StyleBold},
			{Start: 0, Length: 5, Style: models.StyleItalic},
		},
	}
	r := archiveText("hello @Bob", ranges, uuid.New())
	require.Equal(t, result.OutcomePartial, r.Outcome())
	assert.Equal(t, []ArchiveErrorKind{ArchiveErrorInvalidBodyRange, ArchiveErrorInvalidBodyRange}, archiveKinds(r.Errors()))

	text, _ := r.Value()
	assert.Equal(t, "hello @Bob", text.Body)
	require.Len(t, text.BodyRanges, 2)
	assert.Equal(t, uint32(6), text.BodyRanges[0].Start)
	assert.Equal(t, wire.StyleItalic, text.BodyRanges[1].Style)
}

func TestWireSpan(t *testing.T) {
	tests := []struct {
		start, length int
		ok            bool
	}{
		{0, 0, true},
		{3, 7, true},
		{-1, 2, false},
		{2, -1, false},
		{1 << 32, 1, false},
	}
	for _, tt := range tests {
		s, l, ok := wireSpan(tt.start, tt.length)
		assert.Equal(t, tt.ok, ok, "wireSpan(%d, %d)", tt.start, tt.length)
		if ok {
			assert.Equal(t, uint32(tt.start), s)
			assert.Equal(t, uint32(tt.length), l)
		}
	}
}
