package wire

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

var ErrMalformed = errors.New("wire: malformed message")

// field is one decoded tag/value pair. Fields arriving with an unexpected
// wire type decode as their zero value.
type field struct {
	num protowire.Number
	typ protowire.Type
	v   uint64
	b   []byte
}

func (f field) bool() bool { return f.v != 0 }

func forEachField(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.b, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]

		if typ != protowire.VarintType && typ != protowire.BytesType {
			continue
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarint(b, num, 1)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// appendMessage always emits the field so that empty oneof members keep
// their presence.
func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func clone(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}

// MarshalBackupInfo encodes the stream header.
func MarshalBackupInfo(m *BackupInfo) []byte {
	var b []byte
	b = appendVarint(b, 1, m.Version)
	b = appendVarint(b, 2, m.BackupTimeMs)
	return b
}

// UnmarshalBackupInfo decodes the stream header.
func UnmarshalBackupInfo(b []byte) (*BackupInfo, error) {
	m := &BackupInfo{}
	err := forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			m.Version = f.v
		case 2:
			m.BackupTimeMs = f.v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// MarshalFrame encodes a frame body without its length prefix.
func MarshalFrame(m *Frame) []byte {
	var b []byte
	switch {
	case m.Recipient != nil:
		b = appendMessage(b, 1, marshalRecipient(m.Recipient))
	case m.Chat != nil:
		b = appendMessage(b, 2, marshalChat(m.Chat))
	case m.ChatItem != nil:
		b = appendMessage(b, 3, marshalChatItem(m.ChatItem))
	}
	return b
}

// UnmarshalFrame decodes a frame body.
func UnmarshalFrame(b []byte) (*Frame, error) {
	m := &Frame{}
	err := forEachField(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			*m = Frame{}
			m.Recipient, err = unmarshalRecipient(f.b)
		case 2:
			*m = Frame{}
			m.Chat, err = unmarshalChat(f.b)
		case 3:
			*m = Frame{}
			m.ChatItem, err = unmarshalChatItem(f.b)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func marshalRecipient(m *Recipient) []byte {
	var b []byte
	b = appendVarint(b, 1, m.ID)
	switch {
	case m.Contact != nil:
		var c []byte
		c = appendBytes(c, 1, m.Contact.Aci)
		c = appendBytes(c, 2, m.Contact.Pni)
		c = appendVarint(c, 3, m.Contact.E164)
		c = appendString(c, 4, m.Contact.ProfileGivenName)
		c = appendString(c, 5, m.Contact.ProfileFamilyName)
		b = appendMessage(b, 2, c)
	case m.Group != nil:
		var g []byte
		g = appendBytes(g, 1, m.Group.MasterKey)
		g = appendString(g, 2, m.Group.Title)
		b = appendMessage(b, 3, g)
	case m.DistributionList != nil:
		b = appendMessage(b, 4, appendString(nil, 1, m.DistributionList.Name))
	case m.Self != nil:
		b = appendMessage(b, 5, nil)
	case m.ReleaseNotes != nil:
		b = appendMessage(b, 6, nil)
	}
	return b
}

func (m *Recipient) clearDestination() {
	m.Contact, m.Group, m.DistributionList, m.Self, m.ReleaseNotes = nil, nil, nil, nil, nil
}

func unmarshalRecipient(b []byte) (*Recipient, error) {
	m := &Recipient{}
	err := forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			m.ID = f.v
		case 2:
			m.clearDestination()
			c := &Contact{}
			m.Contact = c
			return forEachField(f.b, func(f field) error {
				switch f.num {
				case 1:
					c.Aci = clone(f.b)
				case 2:
					c.Pni = clone(f.b)
				case 3:
					c.E164 = f.v
				case 4:
					c.ProfileGivenName = string(f.b)
				case 5:
					c.ProfileFamilyName = string(f.b)
				}
				return nil
			})
		case 3:
			m.clearDestination()
			g := &Group{}
			m.Group = g
			return forEachField(f.b, func(f field) error {
				switch f.num {
				case 1:
					g.MasterKey = clone(f.b)
				case 2:
					g.Title = string(f.b)
				}
				return nil
			})
		case 4:
			m.clearDestination()
			d := &DistributionList{}
			m.DistributionList = d
			return forEachField(f.b, func(f field) error {
				if f.num == 1 {
					d.Name = string(f.b)
				}
				return nil
			})
		case 5:
			m.clearDestination()
			m.Self = &Self{}
		case 6:
			m.clearDestination()
			m.ReleaseNotes = &ReleaseNotes{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func marshalChat(m *Chat) []byte {
	var b []byte
	b = appendVarint(b, 1, m.ID)
	b = appendVarint(b, 2, m.RecipientID)
	b = appendBool(b, 3, m.Archived)
	b = appendVarint(b, 4, m.PinnedOrder)
	return b
}

func unmarshalChat(b []byte) (*Chat, error) {
	m := &Chat{}
	err := forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			m.ID = f.v
		case 2:
			m.RecipientID = f.v
		case 3:
			m.Archived = f.bool()
		case 4:
			m.PinnedOrder = f.v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func marshalChatItem(m *ChatItem) []byte {
	var b []byte
	b = appendVarint(b, 1, m.ChatID)
	b = appendVarint(b, 2, m.AuthorID)
	b = appendVarint(b, 3, m.DateSent)
	b = appendVarint(b, 4, m.ExpireStartDate)
	b = appendVarint(b, 5, m.ExpiresInMs)
	for _, r := range m.Revisions {
		b = appendMessage(b, 6, marshalChatItem(r))
	}
	b = appendBool(b, 7, m.Sms)

	switch {
	case m.Incoming != nil:
		var d []byte
		d = appendVarint(d, 1, m.Incoming.DateReceived)
		d = appendVarint(d, 2, m.Incoming.DateServerSent)
		d = appendBool(d, 3, m.Incoming.Read)
		d = appendBool(d, 4, m.Incoming.SealedSender)
		b = appendMessage(b, 8, d)
	case m.Outgoing != nil:
		var d []byte
		for _, s := range m.Outgoing.SendStatus {
			d = appendMessage(d, 1, marshalSendStatus(s))
		}
		b = appendMessage(b, 9, d)
	case m.Directionless != nil:
		b = appendMessage(b, 10, nil)
	}

	switch {
	case m.StandardMessage != nil:
		b = appendMessage(b, 11, marshalStandardMessage(m.StandardMessage))
	case m.ContactMessage != nil:
		b = appendMessage(b, 12, m.ContactMessage.Raw)
	case m.StickerMessage != nil:
		b = appendMessage(b, 13, m.StickerMessage.Raw)
	case m.RemoteDeletedMessage != nil:
		b = appendMessage(b, 14, nil)
	case m.UpdateMessage != nil:
		b = appendMessage(b, 15, m.UpdateMessage.Raw)
	case m.PaymentNotification != nil:
		b = appendMessage(b, 16, marshalPaymentNotification(m.PaymentNotification))
	case m.GiftBadge != nil:
		b = appendMessage(b, 17, m.GiftBadge.Raw)
	}
	return b
}

func (m *ChatItem) clearDirectional() {
	m.Incoming, m.Outgoing, m.Directionless = nil, nil, nil
}

func (m *ChatItem) clearItem() {
	m.StandardMessage, m.ContactMessage, m.StickerMessage = nil, nil, nil
	m.RemoteDeletedMessage, m.UpdateMessage, m.PaymentNotification, m.GiftBadge = nil, nil, nil, nil
}

func unmarshalChatItem(b []byte) (*ChatItem, error) {
	m := &ChatItem{}
	err := forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			m.ChatID = f.v
		case 2:
			m.AuthorID = f.v
		case 3:
			m.DateSent = f.v
		case 4:
			m.ExpireStartDate = f.v
		case 5:
			m.ExpiresInMs = f.v
		case 6:
			r, err := unmarshalChatItem(f.b)
			if err != nil {
				return err
			}
			m.Revisions = append(m.Revisions, r)
		case 7:
			m.Sms = f.bool()
		case 8:
			m.clearDirectional()
			d := &IncomingMessageDetails{}
			m.Incoming = d
			return forEachField(f.b, func(f field) error {
				switch f.num {
				case 1:
					d.DateReceived = f.v
				case 2:
					d.DateServerSent = f.v
				case 3:
					d.Read = f.bool()
				case 4:
					d.SealedSender = f.bool()
				}
				return nil
			})
		case 9:
			m.clearDirectional()
			d := &OutgoingMessageDetails{}
			m.Outgoing = d
			return forEachField(f.b, func(f field) error {
				if f.num != 1 {
					return nil
				}
				s, err := unmarshalSendStatus(f.b)
				if err != nil {
					return err
				}
				d.SendStatus = append(d.SendStatus, s)
				return nil
			})
		case 10:
			m.clearDirectional()
			m.Directionless = &DirectionlessMessageDetails{}
		case 11:
			m.clearItem()
			s, err := unmarshalStandardMessage(f.b)
			if err != nil {
				return err
			}
			m.StandardMessage = s
		case 12:
			m.clearItem()
			m.ContactMessage = &ContactMessage{Raw: clone(f.b)}
		case 13:
			m.clearItem()
			m.StickerMessage = &StickerMessage{Raw: clone(f.b)}
		case 14:
			m.clearItem()
			m.RemoteDeletedMessage = &RemoteDeletedMessage{}
		case 15:
			m.clearItem()
			m.UpdateMessage = &UpdateMessage{Raw: clone(f.b)}
		case 16:
			m.clearItem()
			p, err := unmarshalPaymentNotification(f.b)
			if err != nil {
				return err
			}
			m.PaymentNotification = p
		case 17:
			m.clearItem()
			m.GiftBadge = &GiftBadge{Raw: clone(f.b)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func marshalSendStatus(m *SendStatus) []byte {
	var b []byte
	b = appendVarint(b, 1, m.RecipientID)
	b = appendVarint(b, 2, m.Timestamp)
	switch {
	case m.Pending != nil:
		b = appendMessage(b, 3, nil)
	case m.Sent != nil:
		b = appendMessage(b, 4, appendBool(nil, 1, m.Sent.SealedSender))
	case m.Delivered != nil:
		b = appendMessage(b, 5, appendBool(nil, 1, m.Delivered.SealedSender))
	case m.Read != nil:
		b = appendMessage(b, 6, appendBool(nil, 1, m.Read.SealedSender))
	case m.Viewed != nil:
		b = appendMessage(b, 7, appendBool(nil, 1, m.Viewed.SealedSender))
	case m.Skipped != nil:
		b = appendMessage(b, 8, nil)
	case m.Failed != nil:
		b = appendMessage(b, 9, appendVarint(nil, 1, uint64(m.Failed.Reason)))
	}
	return b
}

func (m *SendStatus) clearStatus() {
	m.Pending, m.Sent, m.Delivered, m.Read, m.Viewed, m.Skipped, m.Failed = nil, nil, nil, nil, nil, nil, nil
}

// sealedSenderOf reads the single sealedSender flag shared by the sent,
// delivered, read and viewed statuses.
func sealedSenderOf(b []byte) (bool, error) {
	var sealed bool
	err := forEachField(b, func(f field) error {
		if f.num == 1 {
			sealed = f.bool()
		}
		return nil
	})
	return sealed, err
}

func unmarshalSendStatus(b []byte) (*SendStatus, error) {
	m := &SendStatus{}
	err := forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			m.RecipientID = f.v
			return nil
		case 2:
			m.Timestamp = f.v
			return nil
		case 3:
			m.clearStatus()
			m.Pending = &SendStatusPending{}
			return nil
		case 8:
			m.clearStatus()
			m.Skipped = &SendStatusSkipped{}
			return nil
		case 9:
			m.clearStatus()
			failed := &SendStatusFailed{}
			m.Failed = failed
			return forEachField(f.b, func(f field) error {
				if f.num == 1 {
					failed.Reason = FailureReason(f.v)
				}
				return nil
			})
		}

		if f.num < 4 || f.num > 7 {
			return nil
		}
		sealed, err := sealedSenderOf(f.b)
		if err != nil {
			return err
		}
		m.clearStatus()
		switch f.num {
		case 4:
			m.Sent = &SendStatusSent{SealedSender: sealed}
		case 5:
			m.Delivered = &SendStatusDelivered{SealedSender: sealed}
		case 6:
			m.Read = &SendStatusRead{SealedSender: sealed}
		case 7:
			m.Viewed = &SendStatusViewed{SealedSender: sealed}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func marshalStandardMessage(m *StandardMessage) []byte {
	var b []byte
	if m.Quote != nil {
		b = appendMessage(b, 1, marshalQuote(m.Quote))
	}
	if m.Text != nil {
		b = appendMessage(b, 2, marshalText(m.Text))
	}
	for _, a := range m.Attachments {
		b = appendMessage(b, 3, marshalMessageAttachment(a))
	}
	for _, p := range m.LinkPreviews {
		b = appendMessage(b, 4, marshalLinkPreview(p))
	}
	if m.LongText != nil {
		b = appendMessage(b, 5, marshalFilePointer(m.LongText))
	}
	for _, r := range m.Reactions {
		b = appendMessage(b, 6, marshalReaction(r))
	}
	return b
}

func unmarshalStandardMessage(b []byte) (*StandardMessage, error) {
	m := &StandardMessage{}
	err := forEachField(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.Quote, err = unmarshalQuote(f.b)
		case 2:
			m.Text, err = unmarshalText(f.b)
		case 3:
			var a *MessageAttachment
			if a, err = unmarshalMessageAttachment(f.b); err == nil {
				m.Attachments = append(m.Attachments, a)
			}
		case 4:
			var p *LinkPreview
			if p, err = unmarshalLinkPreview(f.b); err == nil {
				m.LinkPreviews = append(m.LinkPreviews, p)
			}
		case 5:
			m.LongText, err = unmarshalFilePointer(f.b)
		case 6:
			var r *Reaction
			if r, err = unmarshalReaction(f.b); err == nil {
				m.Reactions = append(m.Reactions, r)
			}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func marshalText(m *Text) []byte {
	var b []byte
	b = appendString(b, 1, m.Body)
	for _, r := range m.BodyRanges {
		var rb []byte
		rb = appendVarint(rb, 1, uint64(r.Start))
		rb = appendVarint(rb, 2, uint64(r.Length))
		if r.MentionAci != nil {
			rb = appendBytes(rb, 3, r.MentionAci)
		} else {
			rb = protowire.AppendTag(rb, 4, protowire.VarintType)
			rb = protowire.AppendVarint(rb, uint64(r.Style))
		}
		b = appendMessage(b, 2, rb)
	}
	return b
}

func unmarshalText(b []byte) (*Text, error) {
	m := &Text{}
	err := forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			m.Body = string(f.b)
		case 2:
			r := &BodyRange{}
			m.BodyRanges = append(m.BodyRanges, r)
			return forEachField(f.b, func(f field) error {
				switch f.num {
				case 1:
					r.Start = uint32(f.v)
				case 2:
					r.Length = uint32(f.v)
				case 3:
					r.MentionAci = clone(f.b)
					r.Style = StyleNone
				case 4:
					r.MentionAci = nil
					r.Style = Style(f.v)
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func marshalQuote(m *Quote) []byte {
	var b []byte
	if m.TargetSentTimestamp != nil {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, *m.TargetSentTimestamp)
	}
	b = appendVarint(b, 2, m.AuthorID)
	if m.Text != nil {
		b = appendMessage(b, 3, marshalText(m.Text))
	}
	for _, a := range m.Attachments {
		var ab []byte
		ab = appendString(ab, 1, a.ContentType)
		ab = appendString(ab, 2, a.FileName)
		if a.Thumbnail != nil {
			ab = appendMessage(ab, 3, marshalMessageAttachment(a.Thumbnail))
		}
		b = appendMessage(b, 4, ab)
	}
	b = appendVarint(b, 5, uint64(m.Type))
	return b
}

func unmarshalQuote(b []byte) (*Quote, error) {
	m := &Quote{}
	err := forEachField(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			ts := f.v
			m.TargetSentTimestamp = &ts
		case 2:
			m.AuthorID = f.v
		case 3:
			m.Text, err = unmarshalText(f.b)
		case 4:
			a := &QuotedAttachment{}
			m.Attachments = append(m.Attachments, a)
			err = forEachField(f.b, func(f field) error {
				var err error
				switch f.num {
				case 1:
					a.ContentType = string(f.b)
				case 2:
					a.FileName = string(f.b)
				case 3:
					a.Thumbnail, err = unmarshalMessageAttachment(f.b)
				}
				return err
			})
		case 5:
			m.Type = QuoteType(f.v)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func marshalReaction(m *Reaction) []byte {
	var b []byte
	b = appendString(b, 1, m.Emoji)
	b = appendVarint(b, 2, m.AuthorID)
	b = appendVarint(b, 3, m.SentTimestamp)
	b = appendVarint(b, 4, m.SortOrder)
	return b
}

func unmarshalReaction(b []byte) (*Reaction, error) {
	m := &Reaction{}
	err := forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			m.Emoji = string(f.b)
		case 2:
			m.AuthorID = f.v
		case 3:
			m.SentTimestamp = f.v
		case 4:
			m.SortOrder = f.v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func marshalLinkPreview(m *LinkPreview) []byte {
	var b []byte
	b = appendString(b, 1, m.URL)
	b = appendString(b, 2, m.Title)
	if m.Image != nil {
		b = appendMessage(b, 3, marshalFilePointer(m.Image))
	}
	b = appendString(b, 4, m.Description)
	b = appendVarint(b, 5, m.Date)
	return b
}

func unmarshalLinkPreview(b []byte) (*LinkPreview, error) {
	m := &LinkPreview{}
	err := forEachField(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.URL = string(f.b)
		case 2:
			m.Title = string(f.b)
		case 3:
			m.Image, err = unmarshalFilePointer(f.b)
		case 4:
			m.Description = string(f.b)
		case 5:
			m.Date = f.v
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func marshalMessageAttachment(m *MessageAttachment) []byte {
	var b []byte
	if m.Pointer != nil {
		b = appendMessage(b, 1, marshalFilePointer(m.Pointer))
	}
	b = appendVarint(b, 2, uint64(m.Flag))
	b = appendBool(b, 3, m.WasDownloaded)
	return b
}

func unmarshalMessageAttachment(b []byte) (*MessageAttachment, error) {
	m := &MessageAttachment{}
	err := forEachField(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			m.Pointer, err = unmarshalFilePointer(f.b)
		case 2:
			m.Flag = AttachmentFlag(f.v)
		case 3:
			m.WasDownloaded = f.bool()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func marshalFilePointer(m *FilePointer) []byte {
	var b []byte
	b = appendString(b, 1, m.MediaName)
	b = appendBytes(b, 2, m.Key)
	b = appendBytes(b, 3, m.Digest)
	b = appendVarint(b, 4, m.Size)
	b = appendString(b, 5, m.ContentType)
	b = appendString(b, 6, m.FileName)
	b = appendString(b, 7, m.Caption)
	return b
}

func unmarshalFilePointer(b []byte) (*FilePointer, error) {
	m := &FilePointer{}
	err := forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			m.MediaName = string(f.b)
		case 2:
			m.Key = clone(f.b)
		case 3:
			m.Digest = clone(f.b)
		case 4:
			m.Size = f.v
		case 5:
			m.ContentType = string(f.b)
		case 6:
			m.FileName = string(f.b)
		case 7:
			m.Caption = string(f.b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func marshalPaymentNotification(m *PaymentNotification) []byte {
	var b []byte
	b = appendString(b, 1, m.AmountMob)
	b = appendString(b, 2, m.FeeMob)
	b = appendString(b, 3, m.Note)
	if d := m.TransactionDetails; d != nil {
		var db []byte
		switch {
		case d.Transaction != nil:
			t := d.Transaction
			var tb []byte
			tb = appendVarint(tb, 1, uint64(t.Status))
			tb = appendVarint(tb, 3, t.Timestamp)
			tb = appendVarint(tb, 4, t.BlockIndex)
			tb = appendVarint(tb, 5, t.BlockTimestamp)
			tb = appendBytes(tb, 6, t.TransactionData)
			tb = appendBytes(tb, 7, t.Receipt)
			db = appendMessage(db, 1, tb)
		case d.FailedTransaction != nil:
			db = appendMessage(db, 2, appendVarint(nil, 1, uint64(d.FailedTransaction.Reason)))
		}
		b = appendMessage(b, 4, db)
	}
	return b
}

func unmarshalPaymentNotification(b []byte) (*PaymentNotification, error) {
	m := &PaymentNotification{}
	err := forEachField(b, func(f field) error {
		switch f.num {
		case 1:
			m.AmountMob = string(f.b)
		case 2:
			m.FeeMob = string(f.b)
		case 3:
			m.Note = string(f.b)
		case 4:
			d := &PaymentTransactionDetails{}
			m.TransactionDetails = d
			return forEachField(f.b, func(f field) error {
				switch f.num {
				case 1:
					t := &PaymentTransaction{}
					d.Transaction, d.FailedTransaction = t, nil
					return forEachField(f.b, func(f field) error {
						switch f.num {
						case 1:
							t.Status = PaymentStatus(f.v)
						case 3:
							t.Timestamp = f.v
						case 4:
							t.BlockIndex = f.v
						case 5:
							t.BlockTimestamp = f.v
						case 6:
							t.TransactionData = clone(f.b)
						case 7:
							t.Receipt = clone(f.b)
						}
						return nil
					})
				case 2:
					ft := &PaymentFailedTransaction{}
					d.Transaction, d.FailedTransaction = nil, ft
					return forEachField(f.b, func(f field) error {
						if f.num == 1 {
							ft.Reason = PaymentFailureReason(f.v)
						}
						return nil
					})
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
