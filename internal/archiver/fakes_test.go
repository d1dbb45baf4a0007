package archiver

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/google/uuid"
)

var errBoom = errors.New("boom")

type fakeInteractions struct {
	rows      []*models.Message
	nextID    int64
	insertErr error
	queryErr  error
	editErr   error
	// zeroRowID makes Insert succeed without assigning a row id.
	zeroRowID bool
}

func (f *fakeInteractions) Insert(_ context.Context, _ dbx.DBTX, m *models.Message) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if m.UniqueID == uuid.Nil {
		m.UniqueID = uuid.New()
	}
	if !f.zeroRowID {
		f.nextID++
		m.RowID = f.nextID
	}
	f.rows = append(f.rows, m)
	return nil
}

func (f *fakeInteractions) WithTimestamp(_ context.Context, _ dbx.DBTX, ts uint64) ([]*models.Message, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var out []*models.Message
	for _, m := range f.rows {
		if m.Timestamp == ts {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeInteractions) EditRevisions(_ context.Context, _ dbx.DBTX, target *models.Message) ([]*models.Message, error) {
	if f.editErr != nil {
		return nil, f.editErr
	}
	var out []*models.Message
	for _, m := range f.rows {
		if m.EditState == models.EditStatePastRevision && m.EditTargetRowID == target.RowID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakePayments struct {
	byID     map[uuid.UUID]*models.ArchivedPayment
	fetchErr error
}

func (f *fakePayments) ByInteractionUniqueID(_ context.Context, _ dbx.DBTX, id uuid.UUID) (*models.ArchivedPayment, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.byID[id], nil
}

func (f *fakePayments) Insert(_ context.Context, _ dbx.DBTX, p *models.ArchivedPayment) error {
	if f.byID == nil {
		f.byID = make(map[uuid.UUID]*models.ArchivedPayment)
	}
	f.byID[p.InteractionUniqueID] = p
	return nil
}

type fakeReactions struct {
	rows     []*models.Reaction
	fetchErr error
}

func (f *fakeReactions) ByMessage(_ context.Context, _ dbx.DBTX, rowID int64) ([]*models.Reaction, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []*models.Reaction
	for _, r := range f.rows {
		if r.MessageRowID == rowID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeReactions) Insert(_ context.Context, _ dbx.DBTX, r *models.Reaction) error {
	f.rows = append(f.rows, r)
	return nil
}

type fakeAttachments struct {
	rows     []*models.Attachment
	fetchErr error
}

func (f *fakeAttachments) ByOwner(_ context.Context, _ dbx.DBTX, owner int64, role models.AttachmentRole) ([]*models.Attachment, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []*models.Attachment
	for _, a := range f.rows {
		if a.OwnerRowID == owner && a.Role == role {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttachments) Insert(_ context.Context, _ dbx.DBTX, a *models.Attachment) error {
	f.rows = append(f.rows, a)
	return nil
}

type fakeStores struct {
	interactions *fakeInteractions
	payments     *fakePayments
	reactions    *fakeReactions
	attachments  *fakeAttachments
}

func newFakeStores() *fakeStores {
	return &fakeStores{
		interactions: &fakeInteractions{},
		payments:     &fakePayments{},
		reactions:    &fakeReactions{},
		attachments:  &fakeAttachments{},
	}
}

func (f *fakeStores) Stores() Stores {
	return Stores{
		Interactions: f.interactions,
		Payments:     f.payments,
		Reactions:    f.reactions,
		Attachments:  f.attachments,
	}
}

const threadRowID = 10

// fixture is one local account with two contacts and a group, known to both
// an archiving and a restoring context under the same backup ids.
type fixture struct {
	selfAci, bobAci, carolAci uuid.UUID

	self, bob, carol, group *models.Recipient
	selfID, bobID, carolID  RecipientID
	groupID                 RecipientID
	chatID                  ChatID
	thread                  *models.Thread

	actx *ArchivingContext
	rctx *RestoringContext
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		selfAci:  uuid.New(),
		bobAci:   uuid.New(),
		carolAci: uuid.New(),
		thread:   &models.Thread{RowID: threadRowID, RecipientRowID: 2},
	}
	f.self = &models.Recipient{RowID: 1, Kind: models.RecipientKindSelf, Address: models.NewAciAddress(f.selfAci)}
	f.bob = &models.Recipient{RowID: 2, Kind: models.RecipientKindContact, Address: models.Address{Aci: f.bobAci, E164: "+15550001"}}
	f.carol = &models.Recipient{RowID: 3, Kind: models.RecipientKindContact, Address: models.NewAciAddress(f.carolAci)}
	f.group = &models.Recipient{RowID: 4, Kind: models.RecipientKindGroup, Name: "friends"}

	f.actx = NewArchivingContext(f.selfAci)
	f.selfID = f.actx.AssignRecipient(f.self)
	f.bobID = f.actx.AssignRecipient(f.bob)
	f.carolID = f.actx.AssignRecipient(f.carol)
	f.groupID = f.actx.AssignRecipient(f.group)
	f.chatID = f.actx.AssignChat(f.thread)

	f.rctx = NewRestoringContext(f.selfAci)
	f.rctx.AddRecipient(f.selfID, f.self)
	f.rctx.AddRecipient(f.bobID, f.bob)
	f.rctx.AddRecipient(f.carolID, f.carol)
	f.rctx.AddRecipient(f.groupID, f.group)
	f.rctx.AddChat(f.chatID, f.thread)
	return f
}

func archiveKinds(errs []*ArchiveFrameError) []ArchiveErrorKind {
	out := make([]ArchiveErrorKind, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Kind)
	}
	return out
}

func protoKinds(errs []*RestoreFrameError) []ProtoDataError {
	var out []ProtoDataError
	for _, e := range errs {
		if e.Kind == RestoreErrorInvalidProtoData {
			out = append(out, e.ProtoData)
		}
	}
	return out
}

func restoreKinds(errs []*RestoreFrameError) []RestoreErrorKind {
	out := make([]RestoreErrorKind, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Kind)
	}
	return out
}
