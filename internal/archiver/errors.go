package archiver

import (
	"fmt"

	"github.com/dmitrijs2005/chatbackup/internal/result"
	"github.com/google/uuid"
)

// ArchiveErrorKind is the closed set of archive-side diagnostics.
type ArchiveErrorKind int

const (
	ArchiveErrorInvalidOutgoingMessageRecipient ArchiveErrorKind = iota + 1
	ArchiveErrorReferencedRecipientIDMissing
	ArchiveErrorInvalidQuoteAuthor
	ArchiveErrorMissingPaymentInformation
	ArchiveErrorUnrecognizedBodyRangeStyle
	ArchiveErrorInvalidMessageAddress
	ArchiveErrorNotYetImplemented
	ArchiveErrorFetchFailed
	ArchiveErrorInvalidReactionAddress
	ArchiveErrorAttachmentFetchFailed
	ArchiveErrorEmptyMessageBody
	ArchiveErrorReferencedChatIDMissing
	ArchiveErrorInvalidBodyRange
)

func (k ArchiveErrorKind) String() string {
	switch k {
	case ArchiveErrorInvalidOutgoingMessageRecipient:
		return "invalidOutgoingMessageRecipient"
	case ArchiveErrorReferencedRecipientIDMissing:
		return "referencedRecipientIdMissing"
	case ArchiveErrorInvalidQuoteAuthor:
		return "invalidQuoteAuthor"
	case ArchiveErrorMissingPaymentInformation:
		return "missingPaymentInformation"
	case ArchiveErrorUnrecognizedBodyRangeStyle:
		return "unrecognizedBodyRangeStyle"
	case ArchiveErrorInvalidMessageAddress:
		return "invalidMessageAddress"
	case ArchiveErrorNotYetImplemented:
		return "notYetImplemented"
	case ArchiveErrorFetchFailed:
		return "fetchFailed"
	case ArchiveErrorInvalidReactionAddress:
		return "invalidReactionAddress"
	case ArchiveErrorAttachmentFetchFailed:
		return "attachmentFetchFailed"
	case ArchiveErrorEmptyMessageBody:
		return "emptyMessageBody"
	case ArchiveErrorReferencedChatIDMissing:
		return "referencedChatIdMissing"
	case ArchiveErrorInvalidBodyRange:
		return "invalidBodyRange"
	default:
		return fmt.Sprintf("archiveErrorKind(%d)", int(k))
	}
}

// ArchiveFrameError is a diagnostic keyed by the local message it concerns.
type ArchiveFrameError struct {
	Kind                ArchiveErrorKind
	InteractionUniqueID uuid.UUID
	Cause               error
}

func newArchiveError(kind ArchiveErrorKind, id uuid.UUID) *ArchiveFrameError {
	return &ArchiveFrameError{Kind: kind, InteractionUniqueID: id}
}

func (e *ArchiveFrameError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("archive %s: %s: %v", e.InteractionUniqueID, e.Kind, e.Cause)
	}
	return fmt.Sprintf("archive %s: %s", e.InteractionUniqueID, e.Kind)
}

func (e *ArchiveFrameError) Unwrap() error { return e.Cause }

// RestoreErrorKind is the closed set of restore-side diagnostics.
type RestoreErrorKind int

const (
	RestoreErrorInvalidProtoData RestoreErrorKind = iota + 1
	RestoreErrorRecipientIDNotFound
	RestoreErrorChatIDNotFound
	RestoreErrorDatabaseInsertionFailed
	RestoreErrorDatabaseQueryFailed
	RestoreErrorDatabaseModelMissingRowID
	RestoreErrorDeveloperError
	RestoreErrorUnimplemented
)

func (k RestoreErrorKind) String() string {
	switch k {
	case RestoreErrorInvalidProtoData:
		return "invalidProtoData"
	case RestoreErrorRecipientIDNotFound:
		return "recipientIdNotFound"
	case RestoreErrorChatIDNotFound:
		return "chatIdNotFound"
	case RestoreErrorDatabaseInsertionFailed:
		return "databaseInsertionFailed"
	case RestoreErrorDatabaseQueryFailed:
		return "databaseQueryFailed"
	case RestoreErrorDatabaseModelMissingRowID:
		return "databaseModelMissingRowId"
	case RestoreErrorDeveloperError:
		return "developerError"
	case RestoreErrorUnimplemented:
		return "unimplemented"
	default:
		return fmt.Sprintf("restoreErrorKind(%d)", int(k))
	}
}

// ProtoDataError refines RestoreErrorInvalidProtoData: malformed or
// contradictory wire content.
type ProtoDataError int

const (
	ProtoDataChatItemMissingItem ProtoDataError = iota + 1
	ProtoDataChatItemMissingDirectionalDetails
	ProtoDataEmptyStandardMessage
	ProtoDataInvalidAci
	ProtoDataUnrecognizedBodyRangeStyle
	ProtoDataBodyRangeMissingPayload
	ProtoDataQuotedMessageEmptyContent
	ProtoDataQuoteAuthorNotContact
	ProtoDataReactionNotFromContact
	ProtoDataOutgoingNonContactMessageRecipient
	ProtoDataIncomingMessageNotFromContact
	ProtoDataSendStatusMissingStatus
	ProtoDataLinkPreviewEmptyURL
	ProtoDataLinkPreviewURLNotInBody
	ProtoDataInvalidDate
	ProtoDataPaymentNotificationMissingAmount
	ProtoDataUnrecognizedFailureReason
	ProtoDataRevisionOfRevision
	ProtoDataMissingChatItemAuthor
)

var protoDataNames = map[ProtoDataError]string{
	ProtoDataChatItemMissingItem:                "chatItemMissingItem",
	ProtoDataChatItemMissingDirectionalDetails:  "chatItemMissingDirectionalDetails",
	ProtoDataEmptyStandardMessage:               "emptyStandardMessage",
	ProtoDataInvalidAci:                         "invalidAci",
	ProtoDataUnrecognizedBodyRangeStyle:         "unrecognizedBodyRangeStyle",
	ProtoDataBodyRangeMissingPayload:            "bodyRangeMissingPayload",
	ProtoDataQuotedMessageEmptyContent:          "quotedMessageEmptyContent",
	ProtoDataQuoteAuthorNotContact:              "quoteAuthorNotContact",
	ProtoDataReactionNotFromContact:             "reactionNotFromContact",
	ProtoDataOutgoingNonContactMessageRecipient: "outgoingNonContactMessageRecipient",
	ProtoDataIncomingMessageNotFromContact:      "incomingMessageNotFromContact",
	ProtoDataSendStatusMissingStatus:            "sendStatusMissingStatus",
	ProtoDataLinkPreviewEmptyURL:                "linkPreviewEmptyUrl",
	ProtoDataLinkPreviewURLNotInBody:            "linkPreviewUrlNotInBody",
	ProtoDataInvalidDate:                        "invalidDate",
	ProtoDataPaymentNotificationMissingAmount:   "paymentNotificationMissingAmount",
	ProtoDataUnrecognizedFailureReason:          "unrecognizedFailureReason",
	ProtoDataRevisionOfRevision:                 "revisionOfRevision",
	ProtoDataMissingChatItemAuthor:              "missingChatItemAuthor",
}

func (p ProtoDataError) String() string {
	if s, ok := protoDataNames[p]; ok {
		return s
	}
	return fmt.Sprintf("protoDataError(%d)", int(p))
}

// ChatItemID identifies a chat item within one backup file.
type ChatItemID struct {
	ChatID   ChatID
	AuthorID RecipientID
	DateSent uint64
}

func (id ChatItemID) String() string {
	return fmt.Sprintf("chat=%d author=%d sent=%d", id.ChatID, id.AuthorID, id.DateSent)
}

// RestoreFrameError is a diagnostic keyed by the chat item it concerns.
type RestoreFrameError struct {
	Kind       RestoreErrorKind
	ProtoData  ProtoDataError
	ChatItemID ChatItemID
	// RecipientID names the unresolved reference for RestoreErrorRecipientIDNotFound.
	RecipientID RecipientID
	Cause       error
}

func (e *RestoreFrameError) Error() string {
	msg := fmt.Sprintf("restore %s: %s", e.ChatItemID, e.Kind)
	switch {
	case e.Kind == RestoreErrorInvalidProtoData:
		msg += "(" + e.ProtoData.String() + ")"
	case e.Kind == RestoreErrorRecipientIDNotFound:
		msg += fmt.Sprintf("(%d)", e.RecipientID)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *RestoreFrameError) Unwrap() error { return e.Cause }

func invalidProtoData(p ProtoDataError, id ChatItemID) *RestoreFrameError {
	return &RestoreFrameError{Kind: RestoreErrorInvalidProtoData, ProtoData: p, ChatItemID: id}
}

func recipientIDNotFound(rid RecipientID, id ChatItemID) *RestoreFrameError {
	return &RestoreFrameError{Kind: RestoreErrorRecipientIDNotFound, RecipientID: rid, ChatItemID: id}
}

func restoreError(kind RestoreErrorKind, id ChatItemID, cause error) *RestoreFrameError {
	return &RestoreFrameError{Kind: kind, ChatItemID: id, Cause: cause}
}

type (
	archiveErrors = []*ArchiveFrameError
	restoreErrors = []*RestoreFrameError

	// DownstreamResult reports the restoration of objects that hang off an
	// inserted message.
	DownstreamResult = result.Result[result.Void, *RestoreFrameError]
)

func archiveFailure[T any](kind ArchiveErrorKind, id uuid.UUID) result.Result[T, *ArchiveFrameError] {
	return result.Failure[T](archiveErrors{newArchiveError(kind, id)})
}

func restoreFailure[T any](err *RestoreFrameError) result.Result[T, *RestoreFrameError] {
	return result.Failure[T](restoreErrors{err})
}

func downstreamSuccess() DownstreamResult {
	return result.Success[result.Void, *RestoreFrameError](result.Void{})
}
