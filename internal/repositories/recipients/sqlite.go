// Package recipients persists contacts, groups and other conversation
// partners.
package recipients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/chatbackup/internal/common"
	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/repositories/columns"
)

const selectColumns = `SELECT id, kind, aci, e164, group_master_key, name, profile_given_name, profile_family_name FROM recipients`

type SQLiteRepository struct{}

func NewSQLiteRepository() *SQLiteRepository {
	return &SQLiteRepository{}
}

// Insert stores r and sets its RowID.
func (s *SQLiteRepository) Insert(ctx context.Context, tx dbx.DBTX, r *models.Recipient) error {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO recipients (kind, aci, e164, group_master_key, name, profile_given_name, profile_family_name)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		int(r.Kind), columns.Aci(r.Address.Aci), r.Address.E164, r.GroupMasterKey, r.Name,
		r.ProfileGivenName, r.ProfileFamilyName)
	if err != nil {
		return fmt.Errorf("failed to insert recipient: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get recipient id: %w", err)
	}
	r.RowID = id
	return nil
}

func (s *SQLiteRepository) ByRowID(ctx context.Context, tx dbx.DBTX, id int64) (*models.Recipient, error) {
	r, err := scanRecipient(tx.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recipient %d: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient %d: %w", id, err)
	}
	return r, nil
}

// ByAddress finds a contact or self recipient. The service id is matched
// first, the phone number second.
func (s *SQLiteRepository) ByAddress(ctx context.Context, tx dbx.DBTX, addr models.Address) (*models.Recipient, error) {
	if !addr.IsValid() {
		return nil, common.ErrorInvalidAddress
	}

	query := selectColumns + `
		WHERE kind IN (?, ?) AND ((? != '' AND aci = ?) OR (? != '' AND e164 = ?))
		ORDER BY CASE WHEN aci = ? THEN 0 ELSE 1 END, id
		LIMIT 1`
	aci := columns.Aci(addr.Aci)
	r, err := scanRecipient(tx.QueryRowContext(ctx, query,
		int(models.RecipientKindContact), int(models.RecipientKindSelf),
		aci, aci, addr.E164, addr.E164, aci))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recipient %s: %w", addr, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient %s: %w", addr, err)
	}
	return r, nil
}

// All lists every recipient ordered by row id.
func (s *SQLiteRepository) All(ctx context.Context, tx dbx.DBTX) ([]*models.Recipient, error) {
	rows, err := tx.QueryContext(ctx, selectColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select recipients: %w", err)
	}
	defer rows.Close()

	var result []*models.Recipient
	for rows.Next() {
		r, err := scanRecipient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanRecipient(row columns.Scanner) (*models.Recipient, error) {
	var (
		r    models.Recipient
		kind int
		aci  string
		e164 string
	)
	if err := row.Scan(&r.RowID, &kind, &aci, &e164, &r.GroupMasterKey, &r.Name,
		&r.ProfileGivenName, &r.ProfileFamilyName); err != nil {
		return nil, err
	}
	r.Kind = models.RecipientKind(kind)

	addr, err := columns.ParseAddress(aci, e164)
	if err != nil {
		return nil, fmt.Errorf("recipient %d: %w", r.RowID, err)
	}
	r.Address = addr
	return &r, nil
}
