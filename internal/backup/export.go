package backup

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/chatbackup/internal/archiver"
	"github.com/dmitrijs2005/chatbackup/internal/backupkey"
	"github.com/dmitrijs2005/chatbackup/internal/common"
	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/logging"
	"github.com/dmitrijs2005/chatbackup/internal/repositories"
	"github.com/dmitrijs2005/chatbackup/internal/result"
	"github.com/dmitrijs2005/chatbackup/internal/wire"
	"github.com/google/uuid"
)

// ExportSummary counts what one export wrote and what it had to leave out.
type ExportSummary struct {
	Recipients int
	Chats      int
	ChatItems  int
	// Partial items were written with some content missing.
	Partial int
	// Failed items were not written at all.
	Failed int
	Errors []*archiver.ArchiveFrameError
}

// Exporter writes the local store as an encrypted backup stream.
type Exporter interface {
	Export(ctx context.Context, localAci uuid.UUID, w io.Writer) (*ExportSummary, error)
}

type exporter struct {
	db    *sql.DB
	repos *repositories.Repositories
	keys  *backupkey.Manager
	items *archiver.ChatItemArchiver
	log   logging.Logger
	now   func() time.Time
}

func NewExporter(db *sql.DB, repos *repositories.Repositories, log logging.Logger) Exporter {
	return &exporter{
		db:    db,
		repos: repos,
		keys:  backupkey.NewManager(repos.Metadata),
		items: archiver.NewChatItemArchiver(archiverStores(repos)),
		log:   log,
		now:   time.Now,
	}
}

func archiverStores(repos *repositories.Repositories) archiver.Stores {
	return archiver.Stores{
		Interactions: repos.Interactions,
		Payments:     repos.Payments,
		Reactions:    repos.Reactions,
		Attachments:  repos.Attachments,
	}
}

// Export runs inside one read transaction so that every frame comes from the
// same snapshot. Item-level problems are reported in the summary; the
// returned error is reserved for failures that leave no usable backup.
func (e *exporter) Export(ctx context.Context, localAci uuid.UUID, w io.Writer) (*ExportSummary, error) {
	summary := &ExportSummary{}

	err := dbx.WithReadTx(ctx, e.db, func(ctx context.Context, tx dbx.ReadTx) error {
		bw, err := e.keys.BackupWriter(ctx, tx, localAci, w)
		if err != nil {
			return fmt.Errorf("open backup writer: %w", err)
		}
		fw := wire.NewFrameWriter(bw)

		info := &wire.BackupInfo{
			Version:      common.BackupFormatVersion,
			BackupTimeMs: uint64(e.now().UnixMilli()),
		}
		if err := fw.WriteBackupInfo(info); err != nil {
			return err
		}

		actx := archiver.NewArchivingContext(localAci)
		if err := e.writeRecipients(ctx, tx, actx, fw, summary); err != nil {
			return err
		}
		if err := e.writeChats(ctx, tx, actx, fw, summary); err != nil {
			return err
		}
		if err := e.writeChatItems(ctx, tx, actx, fw, summary); err != nil {
			return err
		}

		if err := bw.Close(); err != nil {
			return fmt.Errorf("finish backup stream: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info(ctx, "export finished",
		"recipients", summary.Recipients,
		"chats", summary.Chats,
		"chat_items", summary.ChatItems,
		"partial", summary.Partial,
		"failed", summary.Failed,
	)
	return summary, nil
}

func (e *exporter) writeRecipients(ctx context.Context, tx dbx.ReadTx, actx *archiver.ArchivingContext, fw *wire.FrameWriter, s *ExportSummary) error {
	recipients, err := e.repos.Recipients.All(ctx, tx)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}
	selfFirst(recipients)

	for _, r := range recipients {
		id := actx.AssignRecipient(r)
		if err := fw.WriteFrame(recipientFrame(id, r)); err != nil {
			return err
		}
		s.Recipients++
	}
	return nil
}

func (e *exporter) writeChats(ctx context.Context, tx dbx.ReadTx, actx *archiver.ArchivingContext, fw *wire.FrameWriter, s *ExportSummary) error {
	threads, err := e.repos.Threads.All(ctx, tx)
	if err != nil {
		return fmt.Errorf("list threads: %w", err)
	}

	for _, t := range threads {
		rid, ok := actx.RecipientIDForRow(t.RecipientRowID)
		if !ok {
			e.log.Warn(ctx, "thread skipped", "thread_id", t.RowID, "recipient_row_id", t.RecipientRowID)
			continue
		}
		chat := &wire.Chat{
			ID:          uint64(actx.AssignChat(t)),
			RecipientID: uint64(rid),
			Archived:    t.Archived,
			PinnedOrder: t.PinnedOrder,
		}
		if err := fw.WriteFrame(&wire.Frame{Chat: chat}); err != nil {
			return err
		}
		s.Chats++
	}
	return nil
}

func (e *exporter) writeChatItems(ctx context.Context, tx dbx.ReadTx, actx *archiver.ArchivingContext, fw *wire.FrameWriter, s *ExportSummary) error {
	messages, err := e.repos.Interactions.TopLevel(ctx, tx)
	if err != nil {
		return fmt.Errorf("list interactions: %w", err)
	}

	for _, m := range messages {
		r := e.items.Archive(ctx, actx, m, tx)
		errs := r.Errors()
		s.Errors = append(s.Errors, errs...)
		for _, fe := range errs {
			e.log.Warn(ctx, "chat item problem",
				"interaction_unique_id", fe.InteractionUniqueID,
				"kind", fe.Kind.String(),
				"outcome", r.Outcome().String(),
			)
		}

		item, ok := r.Value()
		if !ok {
			s.Failed++
			continue
		}
		if r.Outcome() == result.OutcomePartial {
			s.Partial++
		}
		if err := fw.WriteFrame(&wire.Frame{ChatItem: item}); err != nil {
			return err
		}
		s.ChatItems++
	}
	return nil
}
