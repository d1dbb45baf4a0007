// Package cryptox derives backup master keys from user passphrases.
package cryptox

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var saltPrefix = []byte("chatbackup master key v1:")

// DeriveMasterKey stretches passphrase into a key of size bytes using
// argon2id. The account service id salts the derivation, so the same
// passphrase yields the same key for the same account on any device.
func DeriveMasterKey(passphrase []byte, aci uuid.UUID, size int) []byte {
	salt := make([]byte, 0, len(saltPrefix)+len(aci))
	salt = append(salt, saltPrefix...)
	salt = append(salt, aci[:]...)
	return argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, uint32(size))
}
