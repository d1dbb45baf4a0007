// Package backupkey derives every key used by a backup from the account
// master key: the backup key, the backup ID, the signing key for
// presentation proofs, the credential request context, the message backup
// key and per-media encryption metadata. All derivations are deterministic
// HKDF-SHA256 expansions, so repeated calls yield byte-identical output.
package backupkey

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const (
	KeySize        = 32
	BackupIDSize   = 16
	MediaIDSize    = 15
	mediaKeyLength = 80

	infoBackupKey        = "20231003_Signal_Backups_GenerateBackupKey"
	infoBackupID         = "20241024_SIGNAL_BACKUP_ID:"
	infoBackupKeyPair    = "20241024_SIGNAL_BACKUP_ID_KEYPAIR:"
	infoAuthBlinding     = "20241024_SIGNAL_BACKUP_AUTH_CREDENTIAL_BLINDING:"
	infoMessageBackup    = "20241007_SIGNAL_BACKUP_ENCRYPT_MESSAGE_BACKUP:"
	infoMediaID          = "20241007_SIGNAL_BACKUP_MEDIA_ID:"
	infoEncryptMedia     = "20241007_SIGNAL_BACKUP_ENCRYPT_MEDIA:"
	infoEncryptThumbnail = "20241007_SIGNAL_BACKUP_ENCRYPT_THUMBNAIL:"

	thumbnailSuffix = "_thumbnail"
)

// MediaType selects which key family a media object uses.
type MediaType int

const (
	MediaTypeAttachment MediaType = iota
	MediaTypeThumbnail
)

func (t MediaType) String() string {
	if t == MediaTypeThumbnail {
		return "thumbnail"
	}
	return "attachment"
}

// BackupKey is the root of the backup hierarchy, itself derived from the
// account master key.
type BackupKey [KeySize]byte

// BackupID salts the whole backup and doubles as the server-side lookup key.
type BackupID [BackupIDSize]byte

// MessageBackupKey protects the backup file itself.
type MessageBackupKey struct {
	HMACKey []byte
	AESKey  []byte
}

// MediaEncryptionMetadata encrypts and authenticates one media object.
type MediaEncryptionMetadata struct {
	MediaName     string
	MediaID       []byte
	HMACKey       []byte
	EncryptionKey []byte
	IV            []byte
}

// AuthRequestContext is the opaque material used to request backup
// credentials. It is deterministic for a fixed backup key and ACI.
type AuthRequestContext struct {
	BackupID    BackupID
	Aci         uuid.UUID
	blindingKey []byte
}

// Request returns the serialized credential request.
func (c *AuthRequestContext) Request() []byte {
	mac := hmac.New(sha256.New, c.blindingKey)
	mac.Write(c.BackupID[:])
	mac.Write(c.Aci[:])
	return mac.Sum(nil)
}

// DeriveBackupKey derives the backup key from a 32-byte master key.
func DeriveBackupKey(masterKey []byte) (BackupKey, error) {
	var k BackupKey
	if len(masterKey) != KeySize {
		return k, fmt.Errorf("%w: master key must be %d bytes, got %d", ErrInvalidEncryptionKey, KeySize, len(masterKey))
	}
	out, err := expand(masterKey, nil, []byte(infoBackupKey), KeySize)
	if err != nil {
		return k, err
	}
	copy(k[:], out)
	return k, nil
}

// BackupID derives the backup identifier for aci.
func (k BackupKey) BackupID(aci uuid.UUID) (BackupID, error) {
	var id BackupID
	if aci == uuid.Nil {
		return id, ErrNotRegistered
	}
	out, err := expand(k[:], nil, withAci(infoBackupID, aci), BackupIDSize)
	if err != nil {
		return id, err
	}
	copy(id[:], out)
	return id, nil
}

// PrivateKey derives the signing key used for presentation proofs.
func (k BackupKey) PrivateKey(aci uuid.UUID) (ed25519.PrivateKey, error) {
	if aci == uuid.Nil {
		return nil, ErrNotRegistered
	}
	seed, err := expand(k[:], nil, withAci(infoBackupKeyPair, aci), ed25519.SeedSize)
	if err != nil {
		return nil, err
	}
	return ed25519.NewKeyFromSeed(seed), nil
}

// AuthRequestContext derives the credential request context for aci.
func (k BackupKey) AuthRequestContext(aci uuid.UUID) (*AuthRequestContext, error) {
	id, err := k.BackupID(aci)
	if err != nil {
		return nil, err
	}
	blinding, err := expand(k[:], nil, withAci(infoAuthBlinding, aci), KeySize)
	if err != nil {
		return nil, err
	}
	return &AuthRequestContext{BackupID: id, Aci: aci, blindingKey: blinding}, nil
}

// MessageBackupKey derives the key pair protecting the backup file.
func (k BackupKey) MessageBackupKey(aci uuid.UUID) (*MessageBackupKey, error) {
	id, err := k.BackupID(aci)
	if err != nil {
		return nil, err
	}
	out, err := expand(k[:], id[:], []byte(infoMessageBackup), 2*KeySize)
	if err != nil {
		return nil, err
	}
	return &MessageBackupKey{HMACKey: out[:KeySize], AESKey: out[KeySize:]}, nil
}

// MediaID derives the identifier under which a media object is stored.
func (k BackupKey) MediaID(mediaName string) ([]byte, error) {
	if mediaName == "" {
		return nil, fmt.Errorf("%w: empty media name", ErrInvalidKeyInfo)
	}
	return expand(k[:], nil, append([]byte(infoMediaID), mediaName...), MediaIDSize)
}

// MediaEncryptionMetadata derives key and IV material for one media object.
// Thumbnails use a distinct media name and info prefix, so an attachment and
// its thumbnail never share keys.
func (k BackupKey) MediaEncryptionMetadata(mediaName string, t MediaType) (*MediaEncryptionMetadata, error) {
	if mediaName == "" {
		return nil, fmt.Errorf("%w: empty media name", ErrInvalidKeyInfo)
	}

	info := infoEncryptMedia
	if t == MediaTypeThumbnail {
		mediaName += thumbnailSuffix
		info = infoEncryptThumbnail
	}

	mediaID, err := k.MediaID(mediaName)
	if err != nil {
		return nil, err
	}
	out, err := expand(k[:], mediaID, []byte(info), mediaKeyLength)
	if err != nil {
		return nil, err
	}
	return &MediaEncryptionMetadata{
		MediaName:     mediaName,
		MediaID:       mediaID,
		HMACKey:       out[:32],
		EncryptionKey: out[32:64],
		IV:            out[64:80],
	}, nil
}

func withAci(prefix string, aci uuid.UUID) []byte {
	return append([]byte(prefix), aci[:]...)
}

func expand(secret, salt, info []byte, n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, salt, info), out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyInfo, err)
	}
	return out, nil
}
