package backupkey

import "errors"

var (
	// ErrInvalidKeyInfo means an HKDF input was malformed (e.g. an empty media
	// name). Programmer error; never retried.
	ErrInvalidKeyInfo = errors.New("invalid key info")

	// ErrMissingMasterKey means the account has no master key yet.
	ErrMissingMasterKey = errors.New("missing master key")

	// ErrNotRegistered means no local ACI is available.
	ErrNotRegistered = errors.New("not registered")

	// ErrInvalidEncryptionKey means stored or derived key material has the
	// wrong shape. Data corruption; never retried.
	ErrInvalidEncryptionKey = errors.New("invalid encryption key")
)

// IsFatal reports whether err belongs to the programmer/data-corruption
// class. Callers abort the whole operation on these; missing master key and
// not-registered are environment states the caller may wait out.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidKeyInfo) || errors.Is(err, ErrInvalidEncryptionKey)
}
