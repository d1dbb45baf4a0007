package archiver

import (
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/result"
	"github.com/dmitrijs2005/chatbackup/internal/wire"
)

// failureReason maps an internal send error code to the stable exported
// reason. Unknown codes collapse to FailureReasonUnknown.
func failureReason(code int) wire.FailureReason {
	switch code {
	case models.ErrorCodeUntrustedIdentity:
		return wire.FailureReasonIdentityKeyMismatch
	case models.ErrorCodeNetworkFailure, models.ErrorCodeRequestTimeout:
		return wire.FailureReasonNetwork
	default:
		return wire.FailureReasonUnknown
	}
}

// errorCode is the inverse of failureReason. ok is false for reasons outside
// the known enumeration, which restore as a generic failure.
func errorCode(reason wire.FailureReason) (code int, ok bool) {
	switch reason {
	case wire.FailureReasonIdentityKeyMismatch:
		return models.ErrorCodeUntrustedIdentity, true
	case wire.FailureReasonNetwork:
		return models.ErrorCodeNetworkFailure, true
	case wire.FailureReasonUnknown:
		return models.ErrorCodeGenericFailure, true
	default:
		return models.ErrorCodeGenericFailure, false
	}
}

// sendStatus classifies one recipient state. For sent messages the most
// advanced receipt wins: read, then viewed, then delivered.
func sendStatus(state models.RecipientState, recipientID RecipientID, sentAt uint64) *wire.SendStatus {
	s := &wire.SendStatus{RecipientID: uint64(recipientID), Timestamp: sentAt}
	sealed := state.WasSentBySealedSender

	switch state.Status {
	case models.OutgoingStatusSending, models.OutgoingStatusPending:
		s.Pending = &wire.SendStatusPending{}
	case models.OutgoingStatusSkipped:
		s.Skipped = &wire.SendStatusSkipped{}
	case models.OutgoingStatusFailed:
		s.Failed = &wire.SendStatusFailed{Reason: failureReason(state.ErrorCode)}
	default:
		switch {
		case state.ReadTimestamp != 0:
			s.Read = &wire.SendStatusRead{SealedSender: sealed}
			s.Timestamp = state.ReadTimestamp
		case state.ViewedTimestamp != 0:
			s.Viewed = &wire.SendStatusViewed{SealedSender: sealed}
			s.Timestamp = state.ViewedTimestamp
		case state.DeliveryTimestamp != 0:
			s.Delivered = &wire.SendStatusDelivered{SealedSender: sealed}
			s.Timestamp = state.DeliveryTimestamp
		default:
			s.Sent = &wire.SendStatusSent{SealedSender: sealed}
		}
	}
	return s
}

// archiveSendStatuses converts every recipient state of msg. A recipient that
// cannot be resolved is skipped with a recoverable error; when none of a
// non-empty list survives the whole message fails.
func archiveSendStatuses(actx *ArchivingContext, msg *models.Message) result.Result[[]*wire.SendStatus, *ArchiveFrameError] {
	var (
		errs     archiveErrors
		statuses []*wire.SendStatus
	)

	for _, state := range msg.RecipientStates {
		if !state.Address.IsValid() {
			errs = append(errs, newArchiveError(ArchiveErrorInvalidOutgoingMessageRecipient, msg.UniqueID))
			continue
		}
		id, ok := actx.RecipientID(state.Address)
		if !ok {
			errs = append(errs, newArchiveError(ArchiveErrorReferencedRecipientIDMissing, msg.UniqueID))
			continue
		}
		statuses = append(statuses, sendStatus(state, id, msg.Timestamp))
	}

	if len(msg.RecipientStates) > 0 && len(statuses) == 0 {
		return result.Failure[[]*wire.SendStatus](errs)
	}
	return result.Fold(statuses, errs)
}

// restoreSendStatuses rebuilds recipient states keyed by local address.
// Outgoing messages are only ever sent to contacts.
func restoreSendStatuses(rctx *RestoringContext, statuses []*wire.SendStatus, id ChatItemID) result.Result[[]models.RecipientState, *RestoreFrameError] {
	var (
		errs   restoreErrors
		states []models.RecipientState
	)

	for _, s := range statuses {
		rec, ok := rctx.Recipient(RecipientID(s.RecipientID))
		if !ok {
			errs = append(errs, recipientIDNotFound(RecipientID(s.RecipientID), id))
			continue
		}
		if rec.Kind != models.RecipientKindContact {
			errs = append(errs, invalidProtoData(ProtoDataOutgoingNonContactMessageRecipient, id))
			continue
		}

		// receipts carry the time they arrived
		if s.Delivered != nil || s.Read != nil || s.Viewed != nil {
			if err := checkDate(s.Timestamp, id); err != nil {
				errs = append(errs, err)
				continue
			}
		}

		state := models.RecipientState{Address: rec.Address, Status: models.OutgoingStatusSent}
		switch {
		case s.Pending != nil:
			state.Status = models.OutgoingStatusPending
		case s.Sent != nil:
			state.WasSentBySealedSender = s.Sent.SealedSender
		case s.Delivered != nil:
			state.WasSentBySealedSender = s.Delivered.SealedSender
			state.DeliveryTimestamp = s.Timestamp
		case s.Read != nil:
			state.WasSentBySealedSender = s.Read.SealedSender
			state.DeliveryTimestamp = s.Timestamp
			state.ReadTimestamp = s.Timestamp
		case s.Viewed != nil:
			state.WasSentBySealedSender = s.Viewed.SealedSender
			state.DeliveryTimestamp = s.Timestamp
			state.ViewedTimestamp = s.Timestamp
		case s.Skipped != nil:
			state.Status = models.OutgoingStatusSkipped
		case s.Failed != nil:
			state.Status = models.OutgoingStatusFailed
			code, known := errorCode(s.Failed.Reason)
			if !known {
				errs = append(errs, invalidProtoData(ProtoDataUnrecognizedFailureReason, id))
			}
			state.ErrorCode = code
		default:
			errs = append(errs, invalidProtoData(ProtoDataSendStatusMissingStatus, id))
			continue
		}
		states = append(states, state)
	}

	if len(statuses) > 0 && len(states) == 0 {
		return result.Failure[[]models.RecipientState](errs)
	}
	return result.Fold(states, errs)
}

// anySealedSender reports whether at least one recipient got the message via
// sealed sender.
func anySealedSender(states []models.RecipientState) bool {
	for _, s := range states {
		if s.WasSentBySealedSender {
			return true
		}
	}
	return false
}
