package backup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/chatbackup/internal/archiver"
	"github.com/dmitrijs2005/chatbackup/internal/backupkey"
	"github.com/dmitrijs2005/chatbackup/internal/common"
	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/logging"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/repositories"
	"github.com/dmitrijs2005/chatbackup/internal/result"
	"github.com/dmitrijs2005/chatbackup/internal/wire"
	"github.com/google/uuid"
)

// ImportSummary counts what one import restored.
type ImportSummary struct {
	BackupTimeMs uint64
	Recipients   int
	Chats        int
	ChatItems    int
	Partial      int
	Failed       int
	// SkippedFrames counts recipient and chat frames that could not be used.
	SkippedFrames int
	Errors        []*archiver.RestoreFrameError
}

// Importer restores an encrypted backup stream into the local store.
type Importer interface {
	Import(ctx context.Context, localAci uuid.UUID, rs io.ReadSeeker) (*ImportSummary, error)
}

type importer struct {
	db    *sql.DB
	repos *repositories.Repositories
	keys  *backupkey.Manager
	items *archiver.ChatItemArchiver
	log   logging.Logger
}

func NewImporter(db *sql.DB, repos *repositories.Repositories, log logging.Logger) Importer {
	return &importer{
		db:    db,
		repos: repos,
		keys:  backupkey.NewManager(repos.Metadata),
		items: archiver.NewChatItemArchiver(archiverStores(repos)),
		log:   log,
	}
}

// Import runs inside one write transaction. The stream is authenticated
// before any row is written; a stream that turns out corrupt later rolls the
// whole import back. Individual chat items that fail are skipped.
func (i *importer) Import(ctx context.Context, localAci uuid.UUID, rs io.ReadSeeker) (*ImportSummary, error) {
	summary := &ImportSummary{}

	err := dbx.WithWriteTx(ctx, i.db, func(ctx context.Context, tx dbx.WriteTx) error {
		br, err := i.keys.BackupReader(ctx, tx.AsRead(), localAci, rs)
		if err != nil {
			return fmt.Errorf("open backup reader: %w", err)
		}
		defer br.Close()

		fr := wire.NewFrameReader(br)
		info, err := fr.ReadBackupInfo()
		if err != nil {
			return err
		}
		if info.Version != common.BackupFormatVersion {
			return fmt.Errorf("%w: %d", ErrUnsupportedVersion, info.Version)
		}
		summary.BackupTimeMs = info.BackupTimeMs

		rctx := archiver.NewRestoringContext(localAci)
		for {
			frame, err := fr.ReadFrame()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := i.restoreFrame(ctx, rctx, frame, tx, summary); err != nil {
				return err
			}
		}
	})
	if err != nil {
		return nil, err
	}

	i.log.Info(ctx, "import finished",
		"recipients", summary.Recipients,
		"chats", summary.Chats,
		"chat_items", summary.ChatItems,
		"partial", summary.Partial,
		"failed", summary.Failed,
		"skipped_frames", summary.SkippedFrames,
	)
	return summary, nil
}

// restoreFrame returns an error only for store failures outside a chat item.
func (i *importer) restoreFrame(ctx context.Context, rctx *archiver.RestoringContext, frame *wire.Frame, tx dbx.WriteTx, s *ImportSummary) error {
	switch {
	case frame.Recipient != nil:
		return i.restoreRecipient(ctx, rctx, frame.Recipient, tx, s)
	case frame.Chat != nil:
		return i.restoreChat(ctx, rctx, frame.Chat, tx, s)
	case frame.ChatItem != nil:
		i.restoreChatItem(ctx, rctx, frame.ChatItem, tx, s)
		return nil
	default:
		i.log.Warn(ctx, "empty frame skipped")
		s.SkippedFrames++
		return nil
	}
}

func (i *importer) restoreRecipient(ctx context.Context, rctx *archiver.RestoringContext, wr *wire.Recipient, tx dbx.WriteTx, s *ImportSummary) error {
	r, err := localRecipient(wr, rctx.LocalAci)
	if err != nil {
		i.log.Warn(ctx, "recipient skipped", "recipient_id", wr.ID, "error", err)
		s.SkippedFrames++
		return nil
	}

	if r.Kind == models.RecipientKindContact || r.Kind == models.RecipientKindSelf {
		existing, err := i.repos.Recipients.ByAddress(ctx, tx, r.Address)
		switch {
		case err == nil:
			rctx.AddRecipient(archiver.RecipientID(wr.ID), existing)
			s.Recipients++
			return nil
		case !errors.Is(err, common.ErrorNotFound):
			return fmt.Errorf("look up recipient %d: %w", wr.ID, err)
		}
	}

	if err := i.repos.Recipients.Insert(ctx, tx, r); err != nil {
		return fmt.Errorf("insert recipient %d: %w", wr.ID, err)
	}
	rctx.AddRecipient(archiver.RecipientID(wr.ID), r)
	s.Recipients++
	return nil
}

func (i *importer) restoreChat(ctx context.Context, rctx *archiver.RestoringContext, c *wire.Chat, tx dbx.WriteTx, s *ImportSummary) error {
	r, ok := rctx.Recipient(archiver.RecipientID(c.RecipientID))
	if !ok {
		i.log.Warn(ctx, "chat skipped", "chat_id", c.ID, "error", errUnknownChat)
		s.SkippedFrames++
		return nil
	}

	t, err := i.repos.Threads.ByRecipient(ctx, tx, r.RowID)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrorNotFound):
		t = &models.Thread{RecipientRowID: r.RowID, Archived: c.Archived, PinnedOrder: c.PinnedOrder}
		if err := i.repos.Threads.Insert(ctx, tx, t); err != nil {
			return fmt.Errorf("insert chat %d: %w", c.ID, err)
		}
	default:
		return fmt.Errorf("look up chat %d: %w", c.ID, err)
	}

	rctx.AddChat(archiver.ChatID(c.ID), t)
	s.Chats++
	return nil
}

func (i *importer) restoreChatItem(ctx context.Context, rctx *archiver.RestoringContext, item *wire.ChatItem, tx dbx.WriteTx, s *ImportSummary) {
	r := i.items.Restore(ctx, rctx, item, tx)
	errs := r.Errors()
	s.Errors = append(s.Errors, errs...)
	for _, fe := range errs {
		i.log.Warn(ctx, "chat item problem",
			"chat_item_id", fe.ChatItemID.String(),
			"kind", fe.Kind.String(),
			"detail", fe.Error(),
			"outcome", r.Outcome().String(),
		)
	}

	switch r.Outcome() {
	case result.OutcomeFailure:
		s.Failed++
	case result.OutcomePartial:
		s.Partial++
		s.ChatItems++
	default:
		s.ChatItems++
	}
}
