// Package columns converts model values to and from the column encodings the
// SQLite repositories share.
package columns

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/dmitrijs2005/chatbackup/internal/common"
	"github.com/dmitrijs2005/chatbackup/internal/models"
	"github.com/google/uuid"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Aci encodes a service id; uuid.Nil is stored as the empty string.
func Aci(aci uuid.UUID) string {
	if aci == uuid.Nil {
		return ""
	}
	return aci.String()
}

func ParseAci(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	aci, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", common.ErrorInvalidAddress, err)
	}
	return aci, nil
}

func ParseAddress(aci, e164 string) (models.Address, error) {
	parsed, err := ParseAci(aci)
	if err != nil {
		return models.Address{}, err
	}
	return models.Address{Aci: parsed, E164: e164}, nil
}

// ErrOutOfRange is returned for unsigned values SQLite cannot store.
var ErrOutOfRange = errors.New("value out of int64 range")

// Uint converts v to the signed integer SQLite stores.
func Uint(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d", ErrOutOfRange, v)
	}
	return int64(v), nil
}

// JSON encodes v, mapping nil pointers to SQL NULL.
func JSON[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// FromJSON decodes a column written by JSON; NULL yields nil.
func FromJSON[T any](b []byte) (*T, error) {
	if len(b) == 0 {
		return nil, nil
	}
	v := new(T)
	if err := json.Unmarshal(b, v); err != nil {
		return nil, err
	}
	return v, nil
}
