package models

type AttachmentRole int

const (
	AttachmentRoleBody AttachmentRole = iota
	AttachmentRoleQuotedThumbnail
	AttachmentRoleLinkPreviewImage
	AttachmentRoleLongText
)

type AttachmentFlag int

const (
	AttachmentFlagNone AttachmentFlag = iota
	AttachmentFlagVoiceMessage
	AttachmentFlagBorderless
	AttachmentFlagGif
)

// Attachment references media owned by a message. Byte transfer is handled
// elsewhere; only the pointer is kept here.
type Attachment struct {
	RowID         int64
	OwnerRowID    int64
	Role          AttachmentRole
	Order         int
	MediaName     string
	ContentType   string
	FileName      string
	Caption       string
	Size          uint64
	Key           []byte
	Digest        []byte
	Flag          AttachmentFlag
	WasDownloaded bool
}

type Reaction struct {
	RowID        int64
	MessageRowID int64
	Emoji        string
	Reactor      Address
	SentAt       uint64
	SortOrder    uint64
}
