// Package models holds the mutable local conversation graph that the
// archivers read from and restore into.
package models

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Address identifies a contact by service id, phone number, or both.
type Address struct {
	Aci  uuid.UUID
	E164 string
}

func NewAciAddress(aci uuid.UUID) Address {
	return Address{Aci: aci}
}

func (a Address) IsValid() bool {
	return a.Aci != uuid.Nil || a.E164 != ""
}

// Matches reports whether both addresses name the same contact. The service
// id wins when both sides carry one.
func (a Address) Matches(b Address) bool {
	if a.Aci != uuid.Nil && b.Aci != uuid.Nil {
		return a.Aci == b.Aci
	}
	return a.E164 != "" && a.E164 == b.E164
}

func (a Address) String() string {
	switch {
	case a.Aci != uuid.Nil:
		return a.Aci.String()
	case a.E164 != "":
		return a.E164
	default:
		return "<invalid>"
	}
}

// E164Number returns the phone number as the bare integer used on the wire,
// or 0 when absent or unparsable.
func (a Address) E164Number() uint64 {
	n, err := strconv.ParseUint(strings.TrimPrefix(a.E164, "+"), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// E164FromNumber is the inverse of Address.E164Number.
func E164FromNumber(n uint64) string {
	if n == 0 {
		return ""
	}
	return "+" + strconv.FormatUint(n, 10)
}
