// Package wire holds the immutable, already-parsed representation of backup
// frames and their protobuf encoding.
//
// Oneof groups are modelled as sets of pointer fields of which at most one is
// non-nil; decoding keeps the last member seen, as protobuf does. Recipient
// and chat ids are local to one backup file.
package wire

// BackupInfo is the first message of every backup stream.
type BackupInfo struct {
	Version      uint64
	BackupTimeMs uint64
}

// Frame is one self-contained unit following the BackupInfo header.
type Frame struct {
	// oneof item
	Recipient *Recipient
	Chat      *Chat
	ChatItem  *ChatItem
}

type Recipient struct {
	ID uint64

	// oneof destination
	Contact          *Contact
	Group            *Group
	DistributionList *DistributionList
	Self             *Self
	ReleaseNotes     *ReleaseNotes
}

type Contact struct {
	Aci               []byte
	Pni               []byte
	E164              uint64
	ProfileGivenName  string
	ProfileFamilyName string
}

type Group struct {
	MasterKey []byte
	Title     string
}

type DistributionList struct {
	Name string
}

type Self struct{}

type ReleaseNotes struct{}

type Chat struct {
	ID          uint64
	RecipientID uint64
	Archived    bool
	PinnedOrder uint64
}

type ChatItem struct {
	ChatID          uint64
	AuthorID        uint64
	DateSent        uint64
	ExpireStartDate uint64
	ExpiresInMs     uint64
	// Revisions holds earlier versions of an edited message, oldest first.
	Revisions []*ChatItem
	Sms       bool

	// oneof directionalDetails
	Incoming      *IncomingMessageDetails
	Outgoing      *OutgoingMessageDetails
	Directionless *DirectionlessMessageDetails

	// oneof item
	StandardMessage      *StandardMessage
	ContactMessage       *ContactMessage
	StickerMessage       *StickerMessage
	RemoteDeletedMessage *RemoteDeletedMessage
	UpdateMessage        *UpdateMessage
	PaymentNotification  *PaymentNotification
	GiftBadge            *GiftBadge
}

// HasItem reports whether any member of the item oneof is set.
func (c *ChatItem) HasItem() bool {
	return c.StandardMessage != nil || c.ContactMessage != nil || c.StickerMessage != nil ||
		c.RemoteDeletedMessage != nil || c.UpdateMessage != nil || c.PaymentNotification != nil ||
		c.GiftBadge != nil
}

type IncomingMessageDetails struct {
	DateReceived   uint64
	DateServerSent uint64
	Read           bool
	SealedSender   bool
}

type OutgoingMessageDetails struct {
	SendStatus []*SendStatus
}

type DirectionlessMessageDetails struct{}

type SendStatus struct {
	RecipientID uint64
	Timestamp   uint64

	// oneof deliveryStatus
	Pending   *SendStatusPending
	Sent      *SendStatusSent
	Delivered *SendStatusDelivered
	Read      *SendStatusRead
	Viewed    *SendStatusViewed
	Skipped   *SendStatusSkipped
	Failed    *SendStatusFailed
}

type SendStatusPending struct{}

type SendStatusSent struct{ SealedSender bool }

type SendStatusDelivered struct{ SealedSender bool }

type SendStatusRead struct{ SealedSender bool }

type SendStatusViewed struct{ SealedSender bool }

type SendStatusSkipped struct{}

type SendStatusFailed struct{ Reason FailureReason }

// FailureReason is the stable, exported reason of a failed send.
type FailureReason int32

const (
	FailureReasonUnknown             FailureReason = 0
	FailureReasonNetwork             FailureReason = 1
	FailureReasonIdentityKeyMismatch FailureReason = 2
)

type StandardMessage struct {
	Quote        *Quote
	Text         *Text
	Attachments  []*MessageAttachment
	LinkPreviews []*LinkPreview
	LongText     *FilePointer
	Reactions    []*Reaction
}

type Text struct {
	Body       string
	BodyRanges []*BodyRange
}

type BodyRange struct {
	Start  uint32
	Length uint32

	// oneof associatedValue
	MentionAci []byte
	Style      Style
}

// Style is the closed set of text styles a body range may carry.
type Style int32

const (
	StyleNone          Style = 0
	StyleBold          Style = 1
	StyleItalic        Style = 2
	StyleSpoiler       Style = 3
	StyleStrikethrough Style = 4
	StyleMonospace     Style = 5
)

type QuoteType int32

const (
	QuoteTypeUnknown   QuoteType = 0
	QuoteTypeNormal    QuoteType = 1
	QuoteTypeGiftBadge QuoteType = 2
)

type Quote struct {
	// TargetSentTimestamp is nil when the original was never seen locally.
	TargetSentTimestamp *uint64
	AuthorID            uint64
	Text                *Text
	Attachments         []*QuotedAttachment
	Type                QuoteType
}

type QuotedAttachment struct {
	ContentType string
	FileName    string
	Thumbnail   *MessageAttachment
}

type Reaction struct {
	Emoji         string
	AuthorID      uint64
	SentTimestamp uint64
	SortOrder     uint64
}

type LinkPreview struct {
	URL         string
	Title       string
	Image       *FilePointer
	Description string
	Date        uint64
}

type AttachmentFlag int32

const (
	AttachmentFlagNone         AttachmentFlag = 0
	AttachmentFlagVoiceMessage AttachmentFlag = 1
	AttachmentFlagBorderless   AttachmentFlag = 2
	AttachmentFlagGif          AttachmentFlag = 3
)

type MessageAttachment struct {
	Pointer       *FilePointer
	Flag          AttachmentFlag
	WasDownloaded bool
}

type FilePointer struct {
	MediaName   string
	Key         []byte
	Digest      []byte
	Size        uint64
	ContentType string
	FileName    string
	Caption     string
}

type PaymentNotification struct {
	AmountMob          string
	FeeMob             string
	Note               string
	TransactionDetails *PaymentTransactionDetails
}

type PaymentTransactionDetails struct {
	// oneof payment
	Transaction       *PaymentTransaction
	FailedTransaction *PaymentFailedTransaction
}

type PaymentStatus int32

const (
	PaymentStatusInitial    PaymentStatus = 0
	PaymentStatusSubmitted  PaymentStatus = 1
	PaymentStatusSuccessful PaymentStatus = 2
)

type PaymentTransaction struct {
	Status          PaymentStatus
	Timestamp       uint64
	BlockIndex      uint64
	BlockTimestamp  uint64
	TransactionData []byte
	Receipt         []byte
}

type PaymentFailureReason int32

const (
	PaymentFailureGeneric           PaymentFailureReason = 0
	PaymentFailureNetwork           PaymentFailureReason = 1
	PaymentFailureInsufficientFunds PaymentFailureReason = 2
)

type PaymentFailedTransaction struct {
	Reason PaymentFailureReason
}

type RemoteDeletedMessage struct{}

// The following item kinds are carried opaquely: their encoded body is kept
// so a frame survives decode/encode unchanged even though no converter
// handles them yet.

type ContactMessage struct{ Raw []byte }

type StickerMessage struct{ Raw []byte }

type UpdateMessage struct{ Raw []byte }

type GiftBadge struct{ Raw []byte }
