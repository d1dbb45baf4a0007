package metadata

import (
	"context"

	"github.com/dmitrijs2005/chatbackup/internal/dbx"
)

type Repository interface {
	Get(ctx context.Context, tx dbx.DBTX, key string) ([]byte, error)
	Set(ctx context.Context, tx dbx.DBTX, key string, value []byte) error
	Delete(ctx context.Context, tx dbx.DBTX, key string) error
	List(ctx context.Context, tx dbx.DBTX) (map[string][]byte, error)
}
