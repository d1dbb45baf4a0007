package models

import "github.com/google/uuid"

type Direction int

const (
	DirectionIncoming Direction = iota
	DirectionOutgoing
)

func (d Direction) String() string {
	if d == DirectionOutgoing {
		return "outgoing"
	}
	return "incoming"
}

// ContentKind is decided once when a message is constructed and never
// inferred from which fields happen to be set.
type ContentKind int

const (
	ContentKindText ContentKind = iota
	ContentKindPaymentNotification
	ContentKindArchivedPayment
	ContentKindRemoteDeleted
	ContentKindContactShare
	ContentKindSticker
	ContentKindGiftBadge
	ContentKindUpdate
)

func (k ContentKind) String() string {
	switch k {
	case ContentKindText:
		return "text"
	case ContentKindPaymentNotification:
		return "payment_notification"
	case ContentKindArchivedPayment:
		return "archived_payment"
	case ContentKindRemoteDeleted:
		return "remote_deleted"
	case ContentKindContactShare:
		return "contact_share"
	case ContentKindSticker:
		return "sticker"
	case ContentKindGiftBadge:
		return "gift_badge"
	case ContentKindUpdate:
		return "update"
	default:
		return "unknown"
	}
}

type EditState int

const (
	EditStateNone EditState = iota
	EditStateLatestRevision
	EditStatePastRevision
)

// Message is one interaction in a thread. RowID is zero until the message has
// been inserted.
type Message struct {
	RowID       int64
	UniqueID    uuid.UUID
	ThreadRowID int64
	Direction   Direction
	Kind        ContentKind

	// Timestamp is the sent timestamp in milliseconds.
	Timestamp       uint64
	ReceivedAt      uint64
	ServerTimestamp uint64
	ExpireStartedAt uint64
	ExpiresInMs     uint64

	// Author is set on incoming messages only.
	Author          Address
	Read            bool
	WasSealedSender bool

	Body        string
	BodyRanges  BodyRanges
	Quote       *QuotedMessage
	LinkPreview *LinkPreview
	// Payment is set for ContentKindArchivedPayment messages that already
	// carry their record.
	Payment *ArchivedPayment

	RecipientStates []RecipientState

	EditState       EditState
	EditTargetRowID int64
}

func (m *Message) IsOutgoing() bool { return m.Direction == DirectionOutgoing }

// QuotedMessage is the snapshot of a replied-to message.
type QuotedMessage struct {
	// TargetTimestamp is nil when the original was never seen locally.
	TargetTimestamp *uint64
	Author          Address
	Body            string
	BodyRanges      BodyRanges
	Attachments     []QuotedAttachment
	IsGiftBadge     bool

	// OriginalMessageUniqueID links to the local original; uuid.Nil when the
	// quote is only a snapshot.
	OriginalMessageUniqueID uuid.UUID
	IsOriginalMissing       bool
}

type QuotedAttachment struct {
	ContentType string
	FileName    string
}

type LinkPreview struct {
	URL         string
	Title       string
	Description string
	Date        uint64
}
