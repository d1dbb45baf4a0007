package recipients

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/chatbackup/internal/common"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/repositories/repotest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndLookup(t *testing.T) {
	db := repotest.NewDB(t)
	r := NewSQLiteRepository()
	ctx := context.Background()

	self := &models.Recipient{Kind: models.RecipientKindSelf, Address: models.NewAciAddress(uuid.New())}
	bob := &models.Recipient{
		Kind:             models.RecipientKindContact,
		Address:          models.Address{Aci: uuid.New(), E164: "+15551234567"},
		ProfileGivenName: "Bob",
	}
	group := &models.Recipient{Kind: models.RecipientKindGroup, GroupMasterKey: []byte{1, 2, 3}, Name: "Friends"}
	for _, rec := range []*models.Recipient{self, bob, group} {
		require.NoError(t, r.Insert(ctx, db, rec))
		require.NotZero(t, rec.RowID)
	}

	got, err := r.ByRowID(ctx, db, bob.RowID)
	require.NoError(t, err)
	assert.Equal(t, bob, got)

	byAci, err := r.ByAddress(ctx, db, models.NewAciAddress(bob.Address.Aci))
	require.NoError(t, err)
	assert.Equal(t, bob.RowID, byAci.RowID)

	byPhone, err := r.ByAddress(ctx, db, models.Address{E164: "+15551234567"})
	require.NoError(t, err)
	assert.Equal(t, bob.RowID, byPhone.RowID)

	bySelf, err := r.ByAddress(ctx, db, self.Address)
	require.NoError(t, err)
	assert.Equal(t, models.RecipientKindSelf, bySelf.Kind)

	all, err := r.All(ctx, db)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, group, all[2])
}

func TestByAddress_Errors(t *testing.T) {
	db := repotest.NewDB(t)
	r := NewSQLiteRepository()
	ctx := context.Background()

	_, err := r.ByAddress(ctx, db, models.Address{})
	assert.ErrorIs(t, err, common.ErrorInvalidAddress)

	_, err = r.ByAddress(ctx, db, models.NewAciAddress(uuid.New()))
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = r.ByRowID(ctx, db, 99)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestByRowID_CorruptAciRejected(t *testing.T) {
	db := repotest.NewDB(t)
	_, err := db.Exec(`INSERT INTO recipients (id, kind, aci) VALUES (1, 0, 'not-a-uuid')`)
	require.NoError(t, err)

	_, err = NewSQLiteRepository().ByRowID(context.Background(), db, 1)
	assert.ErrorIs(t, err, common.ErrorInvalidAddress)
}

func TestInsert_DBErrorWrapped(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`(?s)^\s*INSERT\s+INTO\s+recipients\b`).WillReturnError(errors.New("boom"))

	err = NewSQLiteRepository().Insert(context.Background(), db, &models.Recipient{})
	assert.ErrorContains(t, err, "failed to insert recipient")
	assert.NoError(t, mock.ExpectationsWereMet())
}
