package archiver

import (
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/google/uuid"
)

// RecipientID is a recipient identifier local to one backup file.
type RecipientID uint64

// ChatID is a chat identifier local to one backup file.
type ChatID uint64

// ArchivingContext assigns backup-local ids during one export and resolves
// local addresses and threads to them.
type ArchivingContext struct {
	LocalAci uuid.UUID

	nextRecipient RecipientID
	nextChat      ChatID
	self          RecipientID
	byRow         map[int64]RecipientID
	byAci         map[uuid.UUID]RecipientID
	byE164        map[string]RecipientID
	chats         map[int64]ChatID
}

func NewArchivingContext(localAci uuid.UUID) *ArchivingContext {
	return &ArchivingContext{
		LocalAci: localAci,
		byRow:    make(map[int64]RecipientID),
		byAci:    make(map[uuid.UUID]RecipientID),
		byE164:   make(map[string]RecipientID),
		chats:    make(map[int64]ChatID),
	}
}

// AssignRecipient allocates the next id for r. Contacts and self become
// resolvable by address.
func (c *ArchivingContext) AssignRecipient(r *models.Recipient) RecipientID {
	if id, ok := c.byRow[r.RowID]; ok && r.RowID != 0 {
		return id
	}
	c.nextRecipient++
	id := c.nextRecipient
	if r.RowID != 0 {
		c.byRow[r.RowID] = id
	}

	switch r.Kind {
	case models.RecipientKindSelf:
		c.self = id
		c.index(r.Address, id)
		if r.Address.Aci == uuid.Nil && c.LocalAci != uuid.Nil {
			c.byAci[c.LocalAci] = id
		}
	case models.RecipientKindContact:
		c.index(r.Address, id)
	}
	return id
}

func (c *ArchivingContext) index(addr models.Address, id RecipientID) {
	if addr.Aci != uuid.Nil {
		c.byAci[addr.Aci] = id
	}
	if addr.E164 != "" {
		c.byE164[addr.E164] = id
	}
}

// SelfRecipientID returns the id of the local account, if assigned.
func (c *ArchivingContext) SelfRecipientID() (RecipientID, bool) {
	return c.self, c.self != 0
}

// RecipientID resolves a contact address. The service id is tried first.
func (c *ArchivingContext) RecipientID(addr models.Address) (RecipientID, bool) {
	if addr.Aci != uuid.Nil {
		if id, ok := c.byAci[addr.Aci]; ok {
			return id, true
		}
	}
	if addr.E164 != "" {
		if id, ok := c.byE164[addr.E164]; ok {
			return id, true
		}
	}
	return 0, false
}

func (c *ArchivingContext) RecipientIDForRow(rowID int64) (RecipientID, bool) {
	id, ok := c.byRow[rowID]
	return id, ok
}

// AssignChat allocates the next chat id for a thread.
func (c *ArchivingContext) AssignChat(t *models.Thread) ChatID {
	if id, ok := c.chats[t.RowID]; ok {
		return id
	}
	c.nextChat++
	c.chats[t.RowID] = c.nextChat
	return c.nextChat
}

func (c *ArchivingContext) ChatID(threadRowID int64) (ChatID, bool) {
	id, ok := c.chats[threadRowID]
	return id, ok
}

// RestoringContext maps backup-local ids back to the rows created for them
// during one import.
type RestoringContext struct {
	LocalAci uuid.UUID

	recipients map[RecipientID]*models.Recipient
	chats      map[ChatID]*models.Thread
}

func NewRestoringContext(localAci uuid.UUID) *RestoringContext {
	return &RestoringContext{
		LocalAci:   localAci,
		recipients: make(map[RecipientID]*models.Recipient),
		chats:      make(map[ChatID]*models.Thread),
	}
}

func (c *RestoringContext) AddRecipient(id RecipientID, r *models.Recipient) {
	c.recipients[id] = r
}

func (c *RestoringContext) Recipient(id RecipientID) (*models.Recipient, bool) {
	r, ok := c.recipients[id]
	return r, ok
}

func (c *RestoringContext) AddChat(id ChatID, t *models.Thread) {
	c.chats[id] = t
}

func (c *RestoringContext) Chat(id ChatID) (*models.Thread, bool) {
	t, ok := c.chats[id]
	return t, ok
}

// isContactLike reports whether r can author messages or reactions.
func isContactLike(r *models.Recipient) bool {
	return r.Kind == models.RecipientKindContact || r.Kind == models.RecipientKindSelf
}
