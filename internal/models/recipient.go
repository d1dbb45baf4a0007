package models

type RecipientKind int

const (
	RecipientKindContact RecipientKind = iota
	RecipientKindGroup
	RecipientKindDistributionList
	RecipientKindSelf
	RecipientKindReleaseNotes
)

func (k RecipientKind) String() string {
	switch k {
	case RecipientKindContact:
		return "contact"
	case RecipientKindGroup:
		return "group"
	case RecipientKindDistributionList:
		return "distribution_list"
	case RecipientKindSelf:
		return "self"
	case RecipientKindReleaseNotes:
		return "release_notes"
	default:
		return "unknown"
	}
}

type Recipient struct {
	RowID int64
	Kind  RecipientKind
	// Address is set for contacts and self.
	Address           Address
	GroupMasterKey    []byte
	Name              string
	ProfileGivenName  string
	ProfileFamilyName string
}

// Thread is a conversation with exactly one recipient.
type Thread struct {
	RowID          int64
	RecipientRowID int64
	Archived       bool
	PinnedOrder    uint64
}
