package backupkey

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/chatbackup/internal/backupstream"
	"github.com/dmitrijs2005/chatbackup/internal/common"
	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/google/uuid"
)

// MetadataStore is the key/value store holding the account master key.
// Get returns (nil, nil) when the key is absent.
type MetadataStore interface {
	Get(ctx context.Context, tx dbx.DBTX, key string) ([]byte, error)
}

// Manager derives key material for one account. Nothing is cached: each call
// reads the master key inside the caller's transaction and derives afresh.
type Manager struct {
	store MetadataStore
}

func NewManager(store MetadataStore) *Manager {
	return &Manager{store: store}
}

func (m *Manager) backupKey(ctx context.Context, tx dbx.ReadTx, aci uuid.UUID) (BackupKey, error) {
	if aci == uuid.Nil {
		return BackupKey{}, ErrNotRegistered
	}

	masterKey, err := m.store.Get(ctx, tx, common.MasterKeyMetadataKey)
	if err != nil {
		return BackupKey{}, fmt.Errorf("read master key: %w", err)
	}
	if masterKey == nil {
		return BackupKey{}, ErrMissingMasterKey
	}
	defer common.WipeByteArray(masterKey)

	return DeriveBackupKey(masterKey)
}

// BackupID returns the backup identifier for aci.
func (m *Manager) BackupID(ctx context.Context, tx dbx.ReadTx, aci uuid.UUID) (BackupID, error) {
	k, err := m.backupKey(ctx, tx, aci)
	if err != nil {
		return BackupID{}, err
	}
	return k.BackupID(aci)
}

// BackupPrivateKey returns the signing key for presentation proofs.
func (m *Manager) BackupPrivateKey(ctx context.Context, tx dbx.ReadTx, aci uuid.UUID) (ed25519.PrivateKey, error) {
	k, err := m.backupKey(ctx, tx, aci)
	if err != nil {
		return nil, err
	}
	return k.PrivateKey(aci)
}

// AuthRequestContext returns the credential request context for aci.
func (m *Manager) AuthRequestContext(ctx context.Context, tx dbx.ReadTx, aci uuid.UUID) (*AuthRequestContext, error) {
	k, err := m.backupKey(ctx, tx, aci)
	if err != nil {
		return nil, err
	}
	return k.AuthRequestContext(aci)
}

// MessageBackupKey returns the key pair protecting the backup file.
func (m *Manager) MessageBackupKey(ctx context.Context, tx dbx.ReadTx, aci uuid.UUID) (*MessageBackupKey, error) {
	k, err := m.backupKey(ctx, tx, aci)
	if err != nil {
		return nil, err
	}
	return k.MessageBackupKey(aci)
}

// MediaEncryptionMetadata returns the keys for one media object.
func (m *Manager) MediaEncryptionMetadata(ctx context.Context, tx dbx.ReadTx, aci uuid.UUID, mediaName string, t MediaType) (*MediaEncryptionMetadata, error) {
	k, err := m.backupKey(ctx, tx, aci)
	if err != nil {
		return nil, err
	}
	return k.MediaEncryptionMetadata(mediaName, t)
}

func (m *Manager) streamKeys(ctx context.Context, tx dbx.ReadTx, aci uuid.UUID) (backupstream.Keys, error) {
	mbk, err := m.MessageBackupKey(ctx, tx, aci)
	if err != nil {
		return backupstream.Keys{}, err
	}
	return backupstream.Keys{AESKey: mbk.AESKey, HMACKey: mbk.HMACKey}, nil
}

// EncryptingWriter wraps w with encryption under the message backup key.
func (m *Manager) EncryptingWriter(ctx context.Context, tx dbx.ReadTx, aci uuid.UUID, w io.Writer) (io.WriteCloser, error) {
	keys, err := m.streamKeys(ctx, tx, aci)
	if err != nil {
		return nil, err
	}
	enc, err := backupstream.NewEncryptingWriter(w, keys.AESKey, nil)
	return enc, streamError(err)
}

// DecryptingReader wraps r with decryption under the message backup key.
func (m *Manager) DecryptingReader(ctx context.Context, tx dbx.ReadTx, aci uuid.UUID, r io.Reader) (io.Reader, error) {
	keys, err := m.streamKeys(ctx, tx, aci)
	if err != nil {
		return nil, err
	}
	dec, err := backupstream.NewDecryptingReader(r, keys.AESKey)
	return dec, streamError(err)
}

// HMACWriter wraps w so that closing it appends the backup HMAC tag.
func (m *Manager) HMACWriter(ctx context.Context, tx dbx.ReadTx, aci uuid.UUID, w io.Writer) (io.WriteCloser, error) {
	keys, err := m.streamKeys(ctx, tx, aci)
	if err != nil {
		return nil, err
	}
	mw, err := backupstream.NewHMACWriter(w, keys.HMACKey)
	return mw, streamError(err)
}

// HMACValidatingReader verifies the backup HMAC tag of rs before exposing
// its body.
func (m *Manager) HMACValidatingReader(ctx context.Context, tx dbx.ReadTx, aci uuid.UUID, rs io.ReadSeeker) (io.Reader, error) {
	keys, err := m.streamKeys(ctx, tx, aci)
	if err != nil {
		return nil, err
	}
	r, err := backupstream.NewHMACValidatingReader(rs, keys.HMACKey)
	return r, streamError(err)
}

// BackupWriter composes compression, encryption and HMAC over w.
func (m *Manager) BackupWriter(ctx context.Context, tx dbx.ReadTx, aci uuid.UUID, w io.Writer) (io.WriteCloser, error) {
	keys, err := m.streamKeys(ctx, tx, aci)
	if err != nil {
		return nil, err
	}
	bw, err := backupstream.NewWriter(w, keys)
	return bw, streamError(err)
}

// BackupReader verifies, decrypts and decompresses rs.
func (m *Manager) BackupReader(ctx context.Context, tx dbx.ReadTx, aci uuid.UUID, rs io.ReadSeeker) (io.ReadCloser, error) {
	keys, err := m.streamKeys(ctx, tx, aci)
	if err != nil {
		return nil, err
	}
	br, err := backupstream.NewReader(rs, keys)
	return br, streamError(err)
}

// Keys returns the stream keys of one media object. The derived IV makes the
// ciphertext deterministic, which media dedup relies on.
func (md *MediaEncryptionMetadata) Keys() backupstream.Keys {
	return backupstream.Keys{AESKey: md.EncryptionKey, HMACKey: md.HMACKey, IV: md.IV}
}

// MediaWriter encrypts one media object into w.
func MediaWriter(md *MediaEncryptionMetadata, w io.Writer) (io.WriteCloser, error) {
	mw, err := backupstream.NewRawWriter(w, md.Keys())
	return mw, streamError(err)
}

// MediaReader verifies and decrypts one media object.
func MediaReader(md *MediaEncryptionMetadata, rs io.ReadSeeker) (io.Reader, error) {
	r, err := backupstream.NewRawReader(rs, md.Keys())
	return r, streamError(err)
}

func streamError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, backupstream.ErrInvalidKeyLength) || errors.Is(err, backupstream.ErrInvalidIVLength) {
		return fmt.Errorf("%w: %v", ErrInvalidEncryptionKey, err)
	}
	return err
}
