package threads

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/chatbackup/internal/common"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/dmitrijs2005/chatbackup/internal/repositories/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAndLookup(t *testing.T) {
	db := repotest.NewDB(t)
	r := NewSQLiteRepository()
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO recipients (id, kind) VALUES (1, 0), (2, 1)`)
	require.NoError(t, err)

	a := &models.Thread{RecipientRowID: 1}
	b := &models.Thread{RecipientRowID: 2, Archived: true, PinnedOrder: 3}
	require.NoError(t, r.Insert(ctx, db, a))
	require.NoError(t, r.Insert(ctx, db, b))

	got, err := r.ByRowID(ctx, db, b.RowID)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	byRecipient, err := r.ByRecipient(ctx, db, 1)
	require.NoError(t, err)
	assert.Equal(t, a, byRecipient)

	all, err := r.All(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []*models.Thread{a, b}, all)

	_, err = r.ByRecipient(ctx, db, 42)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestAll_DBErrorWrapped(t *testing.T) {
	db := repotest.NewDB(t)
	require.NoError(t, db.Close())

	_, err := NewSQLiteRepository().All(context.Background(), db)
	assert.ErrorContains(t, err, "failed to select threads")
}
