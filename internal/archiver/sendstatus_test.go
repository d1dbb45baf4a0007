package archiver

import (
	"testing"

	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/result"
	"github.com/dmitrijs2005/chatbackup/internal/wire"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailureReason(t *testing.T) {
	tests := []struct {
		name string
		code int
		want wire.FailureReason
	}{
		{"untrusted identity", models.ErrorCodeUntrustedIdentity, wire.FailureReasonIdentityKeyMismatch},
		{"network failure", models.ErrorCodeNetworkFailure, wire.FailureReasonNetwork},
		{"request timeout", models.ErrorCodeRequestTimeout, wire.FailureReasonNetwork},
		{"generic", models.ErrorCodeGenericFailure, wire.FailureReasonUnknown},
		{"missing", 0, wire.FailureReasonUnknown},
		{"unmapped", 42, wire.FailureReasonUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, failureReason(tt.code))
		})
	}
}

func TestErrorCode(t *testing.T) {
	code, ok := errorCode(wire.FailureReasonIdentityKeyMismatch)
	assert.True(t, ok)
	assert.Equal(t, models.ErrorCodeUntrustedIdentity, code)

	code, ok = errorCode(wire.FailureReasonNetwork)
	assert.True(t, ok)
	assert.Equal(t, models.ErrorCodeNetworkFailure, code)

	code, ok = errorCode(wire.FailureReasonUnknown)
	assert.True(t, ok)
	assert.Equal(t, models.ErrorCodeGenericFailure, code)

	code, ok = errorCode(wire.FailureReason(99))
	assert.False(t, ok)
	assert.Equal(t, models.ErrorCodeGenericFailure, code)
}

func TestSendStatus_Precedence(t *testing.T) {
	const sentAt = 1_700_000_000_000

	tests := []struct {
		name   string
		state  models.RecipientState
		check  func(t *testing.T, s *wire.SendStatus)
		wantTs uint64
	}{
		{
			name:   "read wins over delivered",
			state:  models.RecipientState{Status: models.OutgoingStatusSent, DeliveryTimestamp: sentAt + 1, ReadTimestamp: sentAt + 2, WasSentBySealedSender: true},
			check:  func(t *testing.T, s *wire.SendStatus) { require.NotNil(t, s.Read); assert.True(t, s.Read.SealedSender) },
			wantTs: sentAt + 2,
		},
		{
			name:   "viewed wins over delivered",
			state:  models.RecipientState{Status: models.OutgoingStatusSent, DeliveryTimestamp: sentAt + 1, ViewedTimestamp: sentAt + 3},
			check:  func(t *testing.T, s *wire.SendStatus) { require.NotNil(t, s.Viewed) },
			wantTs: sentAt + 3,
		},
		{
			name:   "delivered",
			state:  models.RecipientState{Status: models.OutgoingStatusSent, DeliveryTimestamp: sentAt + 1},
			check:  func(t *testing.T, s *wire.SendStatus) { require.NotNil(t, s.Delivered) },
			wantTs: sentAt + 1,
		},
		{
			name:   "sent without receipts",
			state:  models.RecipientState{Status: models.OutgoingStatusSent},
			check:  func(t *testing.T, s *wire.SendStatus) { require.NotNil(t, s.Sent) },
			wantTs: sentAt,
		},
		{
			name:   "sending is pending",
			state:  models.RecipientState{Status: models.OutgoingStatusSending},
			check:  func(t *testing.T, s *wire.SendStatus) { require.NotNil(t, s.Pending) },
			wantTs: sentAt,
		},
		{
			name:  "failed keeps reason",
			state: models.RecipientState{Status: models.OutgoingStatusFailed, ErrorCode: models.ErrorCodeRequestTimeout},
			check: func(t *testing.T, s *wire.SendStatus) {
				require.NotNil(t, s.Failed)
				assert.Equal(t, wire.FailureReasonNetwork, s.Failed.Reason)
			},
			wantTs: sentAt,
		},
		{
			name:   "skipped",
			state:  models.RecipientState{Status: models.OutgoingStatusSkipped},
			check:  func(t *testing.T, s *wire.SendStatus) { require.NotNil(t, s.Skipped) },
			wantTs: sentAt,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sendStatus(tt.state, 7, sentAt)
			assert.Equal(t, uint64(7), s.RecipientID)
			assert.Equal(t, tt.wantTs, s.Timestamp)
			tt.check(t, s)
		})
	}
}

func TestArchiveSendStatuses_OneUnresolved(t *testing.T) {
	f := newFixture(t)
	msg := &models.Message{
		UniqueID:  uuid.New(),
		Timestamp: 1_700_000_000_000,
		RecipientStates: []models.RecipientState{
			{Address: f.bob.Address, Status: models.OutgoingStatusSent},
			{Address: models.NewAciAddress(uuid.New()), Status: models.OutgoingStatusSent},
			{Address: f.carol.Address, Status: models.OutgoingStatusSent},
		},
	}

	r := archiveSendStatuses(f.actx, msg)
	require.Equal(t, result.OutcomePartial, r.Outcome())
	statuses, _ := r.Value()
	assert.Len(t, statuses, 2)
	assert.Equal(t, []ArchiveErrorKind{ArchiveErrorReferencedRecipientIDMissing}, archiveKinds(r.Errors()))
}

func TestArchiveSendStatuses_AllFail(t *testing.T) {
	f := newFixture(t)
	msg := &models.Message{
		UniqueID: uuid.New(),
		RecipientStates: []models.RecipientState{
			{Address: models.Address{}, Status: models.OutgoingStatusSent},
			{Address: models.NewAciAddress(uuid.New()), Status: models.OutgoingStatusSent},
		},
	}

	r := archiveSendStatuses(f.actx, msg)
	require.True(t, r.IsFailure())
	assert.Equal(t, []ArchiveErrorKind{
		ArchiveErrorInvalidOutgoingMessageRecipient,
		ArchiveErrorReferencedRecipientIDMissing,
	}, archiveKinds(r.Errors()))
}

func TestArchiveSendStatuses_Empty(t *testing.T) {
	f := newFixture(t)
	r := archiveSendStatuses(f.actx, &models.Message{})
	assert.Equal(t, result.OutcomeSuccess, r.Outcome())
}

func TestRestoreSendStatuses(t *testing.T) {
	f := newFixture(t)
	id := ChatItemID{ChatID: f.chatID, DateSent: 1}
	statuses := []*wire.SendStatus{
		{RecipientID: uint64(f.bobID), Timestamp: 5, Read: &wire.SendStatusRead{SealedSender: true}},
		{RecipientID: uint64(f.groupID), Timestamp: 5, Sent: &wire.SendStatusSent{}},
		{RecipientID: uint64(f.carolID), Timestamp: 6, Failed: &wire.SendStatusFailed{Reason: wire.FailureReason(9)}},
		{RecipientID: uint64(f.carolID), Timestamp: 6},
	}

	r := restoreSendStatuses(f.rctx, statuses, id)
	require.Equal(t, result.OutcomePartial, r.Outcome())
	states, _ := r.Value()
	require.Len(t, states, 2)

	assert.Equal(t, models.RecipientState{
		Address:               f.bob.Address,
		Status:                models.OutgoingStatusSent,
		DeliveryTimestamp:     5,
		ReadTimestamp:         5,
		WasSentBySealedSender: true,
	}, states[0])
	assert.Equal(t, models.OutgoingStatusFailed, states[1].Status)
	assert.Equal(t, models.ErrorCodeGenericFailure, states[1].ErrorCode)

	assert.Equal(t, []ProtoDataError{
		ProtoDataOutgoingNonContactMessageRecipient,
		ProtoDataUnrecognizedFailureReason,
		ProtoDataSendStatusMissingStatus,
	}, protoKinds(r.Errors()))
	assert.True(t, anySealedSender(states))
}

func TestRestoreSendStatuses_InvalidReceiptDates(t *testing.T) {
	f := newFixture(t)
	id := ChatItemID{ChatID: f.chatID, DateSent: 1}

	tests := []struct {
		name   string
		status *wire.SendStatus
	}{
		{"delivered high bit", &wire.SendStatus{RecipientID: uint64(f.bobID), Timestamp: 1 << 63, Delivered: &wire.SendStatusDelivered{}}},
		{"read zero", &wire.SendStatus{RecipientID: uint64(f.bobID), Read: &wire.SendStatusRead{}}},
		{"viewed past year 9999", &wire.SendStatus{RecipientID: uint64(f.bobID), Timestamp: 253402300800000, Viewed: &wire.SendStatusViewed{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := restoreSendStatuses(f.rctx, []*wire.SendStatus{tt.status}, id)
			assert.True(t, r.IsFailure())
			assert.Equal(t, []ProtoDataError{ProtoDataInvalidDate}, protoKinds(r.Errors()))
		})
	}

	// a bad receipt only drops its own recipient
	r := restoreSendStatuses(f.rctx, []*wire.SendStatus{
		tests[0].status,
		{RecipientID: uint64(f.carolID), Sent: &wire.SendStatusSent{}},
	}, id)
	require.Equal(t, result.OutcomePartial, r.Outcome())
	states, _ := r.Value()
	require.Len(t, states, 1)
	assert.Equal(t, f.carol.Address, states[0].Address)
}

func TestAnySealedSender(t *testing.T) {
	assert.False(t, anySealedSender(nil))
	assert.False(t, anySealedSender([]models.RecipientState{{}, {}}))
	assert.True(t, anySealedSender([]models.RecipientState{{}, {WasSentBySealedSender: true}}))
}
