package archiver

import (
	"context"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/result"
	"github.com/dmitrijs2005/chatbackup/internal/wire"
)

type AttachmentsArchiver interface {
	ArchiveBodyAttachments(ctx context.Context, msg *models.Message, tx dbx.ReadTx) result.Result[[]*wire.MessageAttachment, *ArchiveFrameError]
	ArchiveQuotedReplyThumbnail(ctx context.Context, msg *models.Message, tx dbx.ReadTx) result.Result[*wire.MessageAttachment, *ArchiveFrameError]
	ArchiveLinkPreviewImage(ctx context.Context, msg *models.Message, tx dbx.ReadTx) result.Result[*wire.FilePointer, *ArchiveFrameError]

	RestoreBodyAttachments(ctx context.Context, atts []*wire.MessageAttachment, id ChatItemID, msg *models.Message, tx dbx.WriteTx) DownstreamResult
	RestoreQuotedReplyThumbnailAttachment(ctx context.Context, att *wire.MessageAttachment, id ChatItemID, msg *models.Message, tx dbx.WriteTx) DownstreamResult
	RestoreLinkPreviewAttachment(ctx context.Context, ptr *wire.FilePointer, id ChatItemID, msg *models.Message, tx dbx.WriteTx) DownstreamResult
}

// StoreAttachmentsArchiver converts attachment pointers held in an
// AttachmentStore. Media bytes are not touched.
type StoreAttachmentsArchiver struct {
	store AttachmentStore
}

func NewAttachmentsArchiver(store AttachmentStore) *StoreAttachmentsArchiver {
	return &StoreAttachmentsArchiver{store: store}
}

func (a *StoreAttachmentsArchiver) fetch(ctx context.Context, msg *models.Message, role models.AttachmentRole, tx dbx.ReadTx) ([]*models.Attachment, *ArchiveFrameError) {
	if msg.RowID == 0 {
		return nil, nil
	}
	atts, err := a.store.ByOwner(ctx, tx, msg.RowID, role)
	if err != nil {
		e := newArchiveError(ArchiveErrorAttachmentFetchFailed, msg.UniqueID)
		e.Cause = err
		return nil, e
	}
	return atts, nil
}

// ArchiveBodyAttachments degrades to an empty list if the store fails.
func (a *StoreAttachmentsArchiver) ArchiveBodyAttachments(ctx context.Context, msg *models.Message, tx dbx.ReadTx) result.Result[[]*wire.MessageAttachment, *ArchiveFrameError] {
	atts, ferr := a.fetch(ctx, msg, models.AttachmentRoleBody, tx)
	if ferr != nil {
		return result.Partial[[]*wire.MessageAttachment](nil, archiveErrors{ferr})
	}
	out := make([]*wire.MessageAttachment, 0, len(atts))
	for _, att := range atts {
		out = append(out, messageAttachment(att))
	}
	return result.Success[[]*wire.MessageAttachment, *ArchiveFrameError](out)
}

func (a *StoreAttachmentsArchiver) ArchiveQuotedReplyThumbnail(ctx context.Context, msg *models.Message, tx dbx.ReadTx) result.Result[*wire.MessageAttachment, *ArchiveFrameError] {
	atts, ferr := a.fetch(ctx, msg, models.AttachmentRoleQuotedThumbnail, tx)
	if ferr != nil {
		return result.Partial[*wire.MessageAttachment](nil, archiveErrors{ferr})
	}
	if len(atts) == 0 {
		return result.Success[*wire.MessageAttachment, *ArchiveFrameError](nil)
	}
	return result.Success[*wire.MessageAttachment, *ArchiveFrameError](messageAttachment(atts[0]))
}

func (a *StoreAttachmentsArchiver) ArchiveLinkPreviewImage(ctx context.Context, msg *models.Message, tx dbx.ReadTx) result.Result[*wire.FilePointer, *ArchiveFrameError] {
	atts, ferr := a.fetch(ctx, msg, models.AttachmentRoleLinkPreviewImage, tx)
	if ferr != nil {
		return result.Partial[*wire.FilePointer](nil, archiveErrors{ferr})
	}
	if len(atts) == 0 {
		return result.Success[*wire.FilePointer, *ArchiveFrameError](nil)
	}
	return result.Success[*wire.FilePointer, *ArchiveFrameError](filePointer(atts[0]))
}

func (a *StoreAttachmentsArchiver) RestoreBodyAttachments(ctx context.Context, atts []*wire.MessageAttachment, id ChatItemID, msg *models.Message, tx dbx.WriteTx) DownstreamResult {
	if msg.RowID == 0 {
		return restoreFailure[result.Void](restoreError(RestoreErrorDatabaseModelMissingRowID, id, nil))
	}
	var errs restoreErrors
	for i, att := range atts {
		if err := a.insert(ctx, msg, att, models.AttachmentRoleBody, i, tx); err != nil {
			errs = append(errs, restoreError(RestoreErrorDatabaseInsertionFailed, id, err))
		}
	}
	return result.Fold(result.Void{}, errs)
}

func (a *StoreAttachmentsArchiver) RestoreQuotedReplyThumbnailAttachment(ctx context.Context, att *wire.MessageAttachment, id ChatItemID, msg *models.Message, tx dbx.WriteTx) DownstreamResult {
	if msg.RowID == 0 {
		return restoreFailure[result.Void](restoreError(RestoreErrorDatabaseModelMissingRowID, id, nil))
	}
	if att == nil {
		return downstreamSuccess()
	}
	if err := a.insert(ctx, msg, att, models.AttachmentRoleQuotedThumbnail, 0, tx); err != nil {
		return result.Partial(result.Void{}, restoreErrors{restoreError(RestoreErrorDatabaseInsertionFailed, id, err)})
	}
	return downstreamSuccess()
}

func (a *StoreAttachmentsArchiver) RestoreLinkPreviewAttachment(ctx context.Context, ptr *wire.FilePointer, id ChatItemID, msg *models.Message, tx dbx.WriteTx) DownstreamResult {
	if msg.RowID == 0 {
		return restoreFailure[result.Void](restoreError(RestoreErrorDatabaseModelMissingRowID, id, nil))
	}
	if ptr == nil {
		return downstreamSuccess()
	}
	att := &wire.MessageAttachment{Pointer: ptr}
	if err := a.insert(ctx, msg, att, models.AttachmentRoleLinkPreviewImage, 0, tx); err != nil {
		return result.Partial(result.Void{}, restoreErrors{restoreError(RestoreErrorDatabaseInsertionFailed, id, err)})
	}
	return downstreamSuccess()
}

func (a *StoreAttachmentsArchiver) insert(ctx context.Context, msg *models.Message, att *wire.MessageAttachment, role models.AttachmentRole, order int, tx dbx.WriteTx) error {
	m := &models.Attachment{
		OwnerRowID:    msg.RowID,
		Role:          role,
		Order:         order,
		Flag:          models.AttachmentFlag(att.Flag),
		WasDownloaded: att.WasDownloaded,
	}
	if p := att.Pointer; p != nil {
		m.MediaName = p.MediaName
		m.ContentType = p.ContentType
		m.FileName = p.FileName
		m.Caption = p.Caption
		m.Size = p.Size
		m.Key = p.Key
		m.Digest = p.Digest
	}
	return a.store.Insert(ctx, tx, m)
}

func filePointer(a *models.Attachment) *wire.FilePointer {
	return &wire.FilePointer{
		MediaName:   a.MediaName,
		Key:         a.Key,
		Digest:      a.Digest,
		Size:        a.Size,
		ContentType: a.ContentType,
		FileName:    a.FileName,
		Caption:     a.Caption,
	}
}

func messageAttachment(a *models.Attachment) *wire.MessageAttachment {
	return &wire.MessageAttachment{
		Pointer:       filePointer(a),
		Flag:          wire.AttachmentFlag(a.Flag),
		WasDownloaded: a.WasDownloaded,
	}
}
