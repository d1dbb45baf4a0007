// Package interactions persists messages together with their per-recipient
// delivery states.
package interactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chatbackup/internal/common"
	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/repositories/columns"
	"github.com/google/uuid"
)

const selectColumns = `SELECT id, unique_id, thread_id, direction, kind, timestamp, received_at,
	server_timestamp, expire_started_at, expires_in_ms, author_aci, author_e164, read,
	was_sealed_sender, body, body_ranges, quote, link_preview, edit_state, edit_target_id
	FROM interactions`

type SQLiteRepository struct{}

func NewSQLiteRepository() *SQLiteRepository {
	return &SQLiteRepository{}
}

// Insert stores m with its recipient states and sets m.RowID. A message
// without a UniqueID gets a fresh one.
func (r *SQLiteRepository) Insert(ctx context.Context, tx dbx.DBTX, m *models.Message) error {
	if m.UniqueID == uuid.Nil {
		m.UniqueID = uuid.New()
	}

	var ranges []byte
	if !m.BodyRanges.IsEmpty() {
		var err error
		if ranges, err = columns.JSON(&m.BodyRanges); err != nil {
			return fmt.Errorf("failed to encode body ranges: %w", err)
		}
	}
	quote, err := columns.JSON(m.Quote)
	if err != nil {
		return fmt.Errorf("failed to encode quote: %w", err)
	}
	preview, err := columns.JSON(m.LinkPreview)
	if err != nil {
		return fmt.Errorf("failed to encode link preview: %w", err)
	}

	states := make([][]any, 0, len(m.RecipientStates))
	for _, s := range m.RecipientStates {
		args, err := stateArgs(s)
		if err != nil {
			return fmt.Errorf("failed to encode recipient state: %w", err)
		}
		states = append(states, args)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO interactions (unique_id, thread_id, direction, kind, timestamp, received_at,
			server_timestamp, expire_started_at, expires_in_ms, author_aci, author_e164, read,
			was_sealed_sender, body, body_ranges, quote, link_preview, edit_state, edit_target_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.UniqueID.String(), m.ThreadRowID, int(m.Direction), int(m.Kind), m.Timestamp, m.ReceivedAt,
		m.ServerTimestamp, m.ExpireStartedAt, m.ExpiresInMs, columns.Aci(m.Author.Aci), m.Author.E164,
		m.Read, m.WasSealedSender, m.Body, ranges, quote, preview, int(m.EditState), m.EditTargetRowID)
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get interaction id: %w", err)
	}
	if id == 0 {
		return common.ErrorMissingRowID
	}

	for _, args := range states {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO recipient_states (interaction_id, aci, e164, status, delivery_timestamp,
				read_timestamp, viewed_timestamp, sealed_sender, error_code)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			append([]any{id}, args...)...)
		if err != nil {
			return errors.Join(fmt.Errorf("failed to insert recipient state: %w", err), r.discard(ctx, tx, id))
		}
	}

	m.RowID = id
	return nil
}

// stateArgs encodes s without the interaction id, so an unstorable state is
// rejected before the message row exists.
func stateArgs(s models.RecipientState) ([]any, error) {
	var ts [3]int64
	for i, v := range []uint64{s.DeliveryTimestamp, s.ReadTimestamp, s.ViewedTimestamp} {
		n, err := columns.Uint(v)
		if err != nil {
			return nil, err
		}
		ts[i] = n
	}
	return []any{columns.Aci(s.Address.Aci), s.Address.E164, int(s.Status), ts[0], ts[1], ts[2],
		s.WasSentBySealedSender, s.ErrorCode}, nil
}

// discard removes a partially written message.
func (r *SQLiteRepository) discard(ctx context.Context, tx dbx.DBTX, id int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM recipient_states WHERE interaction_id = ?`, id); err != nil {
		return fmt.Errorf("failed to discard recipient states: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM interactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to discard interaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ByRowID(ctx context.Context, tx dbx.DBTX, id int64) (*models.Message, error) {
	return r.one(ctx, tx, selectColumns+` WHERE id = ?`, id)
}

func (r *SQLiteRepository) ByUniqueID(ctx context.Context, tx dbx.DBTX, id uuid.UUID) (*models.Message, error) {
	return r.one(ctx, tx, selectColumns+` WHERE unique_id = ?`, id.String())
}

// WithTimestamp returns every message sent at ts, in any thread.
func (r *SQLiteRepository) WithTimestamp(ctx context.Context, tx dbx.DBTX, ts uint64) ([]*models.Message, error) {
	return r.many(ctx, tx, selectColumns+` WHERE timestamp = ? ORDER BY id`, ts)
}

// TopLevel lists every message that is not a past revision of another one.
func (r *SQLiteRepository) TopLevel(ctx context.Context, tx dbx.DBTX) ([]*models.Message, error) {
	return r.many(ctx, tx, selectColumns+` WHERE edit_state != ? ORDER BY id`, int(models.EditStatePastRevision))
}

// EditRevisions returns the past revisions of target, oldest first.
func (r *SQLiteRepository) EditRevisions(ctx context.Context, tx dbx.DBTX, target *models.Message) ([]*models.Message, error) {
	if target.RowID == 0 {
		return nil, common.ErrorMissingRowID
	}
	return r.many(ctx, tx, selectColumns+` WHERE edit_state = ? AND edit_target_id = ? ORDER BY timestamp, id`,
		int(models.EditStatePastRevision), target.RowID)
}

func (r *SQLiteRepository) one(ctx context.Context, tx dbx.DBTX, query string, arg any) (*models.Message, error) {
	m, err := scanMessage(tx.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("interaction: %w", common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get interaction: %w", err)
	}
	if err := r.loadStates(ctx, tx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *SQLiteRepository) many(ctx context.Context, tx dbx.DBTX, query string, args ...any) ([]*models.Message, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select interactions: %w", err)
	}
	defer rows.Close()

	var result []*models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan interaction: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// The cursor must be closed before issuing the per-message state queries.
	rows.Close()

	for _, m := range result {
		if err := r.loadStates(ctx, tx, m); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *SQLiteRepository) loadStates(ctx context.Context, tx dbx.DBTX, m *models.Message) error {
	if m.Direction != models.DirectionOutgoing {
		return nil
	}
	rows, err := tx.QueryContext(ctx, `
		SELECT aci, e164, status, delivery_timestamp, read_timestamp, viewed_timestamp,
			sealed_sender, error_code
		FROM recipient_states WHERE interaction_id = ? ORDER BY rowid`, m.RowID)
	if err != nil {
		return fmt.Errorf("failed to select recipient states: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			s         models.RecipientState
			aci, e164 string
			status    int
		)
		if err := rows.Scan(&aci, &e164, &status, &s.DeliveryTimestamp, &s.ReadTimestamp,
			&s.ViewedTimestamp, &s.WasSentBySealedSender, &s.ErrorCode); err != nil {
			return fmt.Errorf("failed to scan recipient state: %w", err)
		}
		addr, err := columns.ParseAddress(aci, e164)
		if err != nil {
			return fmt.Errorf("recipient state of interaction %d: %w", m.RowID, err)
		}
		s.Address = addr
		s.Status = models.OutgoingStatus(status)
		m.RecipientStates = append(m.RecipientStates, s)
	}
	return rows.Err()
}

func scanMessage(row columns.Scanner) (*models.Message, error) {
	var (
		m                          models.Message
		uniqueID, aci, e164        string
		direction, kind, editState int
		ranges, quote, preview     []byte
	)
	err := row.Scan(&m.RowID, &uniqueID, &m.ThreadRowID, &direction, &kind, &m.Timestamp, &m.ReceivedAt,
		&m.ServerTimestamp, &m.ExpireStartedAt, &m.ExpiresInMs, &aci, &e164, &m.Read,
		&m.WasSealedSender, &m.Body, &ranges, &quote, &preview, &editState, &m.EditTargetRowID)
	if err != nil {
		return nil, err
	}

	if m.UniqueID, err = uuid.Parse(uniqueID); err != nil {
		return nil, fmt.Errorf("interaction %d unique id: %w", m.RowID, err)
	}
	if m.Author, err = columns.ParseAddress(aci, e164); err != nil {
		return nil, fmt.Errorf("interaction %d author: %w", m.RowID, err)
	}
	m.Direction = models.Direction(direction)
	m.Kind = models.ContentKind(kind)
	m.EditState = models.EditState(editState)

	br, err := columns.FromJSON[models.BodyRanges](ranges)
	if err != nil {
		return nil, fmt.Errorf("interaction %d body ranges: %w", m.RowID, err)
	}
	if br != nil {
		m.BodyRanges = *br
	}
	if m.Quote, err = columns.FromJSON[models.QuotedMessage](quote); err != nil {
		return nil, fmt.Errorf("interaction %d quote: %w", m.RowID, err)
	}
	if m.LinkPreview, err = columns.FromJSON[models.LinkPreview](preview); err != nil {
		return nil, fmt.Errorf("interaction %d link preview: %w", m.RowID, err)
	}
	return &m, nil
}
