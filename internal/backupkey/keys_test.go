package backupkey

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"errors"
	"io"
	"testing"

	"github.com/dmitrijs2005/chatbackup/internal/backupstream"
	"github.com/dmitrijs2005/chatbackup/internal/dbx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testMasterKey = bytes.Repeat([]byte{0x5a}, KeySize)
	testAci       = uuid.MustParse("8a6e0c3b-6c2f-4c5e-9f57-2f1d1b4b9a01")
)

type fakeMetadata struct {
	values map[string][]byte
	err    error
}

func (f *fakeMetadata) Get(_ context.Context, _ dbx.DBTX, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.values[key]
	if !ok {
		return nil, nil
	}
	// the manager wipes what it reads
	return append([]byte(nil), v...), nil
}

func newTestManager() *Manager {
	return NewManager(&fakeMetadata{values: map[string][]byte{"master_key": testMasterKey}})
}

func mustBackupKey(t *testing.T) BackupKey {
	t.Helper()
	k, err := DeriveBackupKey(testMasterKey)
	require.NoError(t, err)
	return k
}

func TestDerivations_AreDeterministic(t *testing.T) {
	k1 := mustBackupKey(t)
	k2 := mustBackupKey(t)
	require.Equal(t, k1, k2)

	id1, err := k1.BackupID(testAci)
	require.NoError(t, err)
	id2, err := k2.BackupID(testAci)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	pk1, err := k1.PrivateKey(testAci)
	require.NoError(t, err)
	pk2, err := k2.PrivateKey(testAci)
	require.NoError(t, err)
	assert.True(t, pk1.Equal(pk2))

	for _, mt := range []MediaType{MediaTypeAttachment, MediaTypeThumbnail} {
		m1, err := k1.MediaEncryptionMetadata("media-a", mt)
		require.NoError(t, err)
		m2, err := k2.MediaEncryptionMetadata("media-a", mt)
		require.NoError(t, err)
		assert.Equal(t, m1, m2, mt.String())
	}

	c1, err := k1.AuthRequestContext(testAci)
	require.NoError(t, err)
	c2, err := k2.AuthRequestContext(testAci)
	require.NoError(t, err)
	assert.Equal(t, c1.Request(), c2.Request())
}

func TestMediaEncryptionMetadata_Uniqueness(t *testing.T) {
	k := mustBackupKey(t)

	aAtt, err := k.MediaEncryptionMetadata("A", MediaTypeAttachment)
	require.NoError(t, err)
	aThumb, err := k.MediaEncryptionMetadata("A", MediaTypeThumbnail)
	require.NoError(t, err)
	bAtt, err := k.MediaEncryptionMetadata("B", MediaTypeAttachment)
	require.NoError(t, err)
	bThumb, err := k.MediaEncryptionMetadata("B", MediaTypeThumbnail)
	require.NoError(t, err)

	all := []*MediaEncryptionMetadata{aAtt, aThumb, bAtt, bThumb}
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			assert.NotEqual(t, all[i].EncryptionKey, all[j].EncryptionKey)
			assert.NotEqual(t, all[i].HMACKey, all[j].HMACKey)
			assert.NotEqual(t, all[i].IV, all[j].IV)
			assert.NotEqual(t, all[i].MediaID, all[j].MediaID)
		}
	}
	assert.Len(t, aAtt.MediaID, MediaIDSize)
	assert.Len(t, aAtt.IV, backupstream.IVSize)
}

func TestDerivations_DifferByAci(t *testing.T) {
	k := mustBackupKey(t)
	other := uuid.MustParse("11111111-2222-4333-8444-555555555555")

	id1, err := k.BackupID(testAci)
	require.NoError(t, err)
	id2, err := k.BackupID(other)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	m1, err := k.MessageBackupKey(testAci)
	require.NoError(t, err)
	m2, err := k.MessageBackupKey(other)
	require.NoError(t, err)
	assert.NotEqual(t, m1.AESKey, m2.AESKey)
	assert.NotEqual(t, m1.HMACKey, m1.AESKey)
}

func TestDerivation_Errors(t *testing.T) {
	_, err := DeriveBackupKey([]byte("short"))
	require.ErrorIs(t, err, ErrInvalidEncryptionKey)
	require.True(t, IsFatal(err))

	k := mustBackupKey(t)
	_, err = k.BackupID(uuid.Nil)
	require.ErrorIs(t, err, ErrNotRegistered)
	require.False(t, IsFatal(err))

	_, err = k.MediaEncryptionMetadata("", MediaTypeAttachment)
	require.ErrorIs(t, err, ErrInvalidKeyInfo)
	require.True(t, IsFatal(err))
}

func TestManager_EnvironmentFailures(t *testing.T) {
	ctx := context.Background()
	tx := dbx.ReadTx{}

	empty := NewManager(&fakeMetadata{values: map[string][]byte{}})
	_, err := empty.BackupID(ctx, tx, testAci)
	require.ErrorIs(t, err, ErrMissingMasterKey)

	_, err = newTestManager().BackupID(ctx, tx, uuid.Nil)
	require.ErrorIs(t, err, ErrNotRegistered)

	corrupt := NewManager(&fakeMetadata{values: map[string][]byte{"master_key": {1, 2, 3}}})
	_, err = corrupt.MessageBackupKey(ctx, tx, testAci)
	require.ErrorIs(t, err, ErrInvalidEncryptionKey)

	boom := errors.New("db down")
	failing := NewManager(&fakeMetadata{err: boom})
	_, err = failing.BackupPrivateKey(ctx, tx, testAci)
	require.ErrorIs(t, err, boom)
}

func TestManager_MatchesPureDerivation(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	k := mustBackupKey(t)

	id, err := m.BackupID(ctx, dbx.ReadTx{}, testAci)
	require.NoError(t, err)
	want, err := k.BackupID(testAci)
	require.NoError(t, err)
	require.Equal(t, want, id)

	priv, err := m.BackupPrivateKey(ctx, dbx.ReadTx{}, testAci)
	require.NoError(t, err)
	sig := ed25519.Sign(priv, []byte("presentation"))
	require.True(t, ed25519.Verify(priv.Public().(ed25519.PublicKey), []byte("presentation"), sig))
}

func TestManager_BackupStreamsRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()

	var sealed bytes.Buffer
	w, err := m.BackupWriter(ctx, dbx.ReadTx{}, testAci, &sealed)
	require.NoError(t, err)
	_, err = w.Write([]byte("frames"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := m.BackupReader(ctx, dbx.ReadTx{}, testAci, bytes.NewReader(sealed.Bytes()))
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "frames", string(got))

	other := uuid.MustParse("11111111-2222-4333-8444-555555555555")
	_, err = m.BackupReader(ctx, dbx.ReadTx{}, other, bytes.NewReader(sealed.Bytes()))
	require.ErrorIs(t, err, backupstream.ErrHMACMismatch)
}

func TestManager_SeparateLayersCompose(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	tx := dbx.ReadTx{}

	var sealed bytes.Buffer
	mac, err := m.HMACWriter(ctx, tx, testAci, &sealed)
	require.NoError(t, err)
	enc, err := m.EncryptingWriter(ctx, tx, testAci, mac)
	require.NoError(t, err)
	_, err = enc.Write([]byte("plain"))
	require.NoError(t, err)
	require.NoError(t, enc.Close())

	body, err := m.HMACValidatingReader(ctx, tx, testAci, bytes.NewReader(sealed.Bytes()))
	require.NoError(t, err)
	dec, err := m.DecryptingReader(ctx, tx, testAci, body)
	require.NoError(t, err)
	got, err := io.ReadAll(dec)
	require.NoError(t, err)
	require.Equal(t, "plain", string(got))
}

func TestMediaStreams(t *testing.T) {
	md, err := mustBackupKey(t).MediaEncryptionMetadata("photo", MediaTypeAttachment)
	require.NoError(t, err)

	var sealed bytes.Buffer
	w, err := MediaWriter(md, &sealed)
	require.NoError(t, err)
	_, err = w.Write([]byte("jpeg"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	r, err := MediaReader(md, bytes.NewReader(sealed.Bytes()))
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "jpeg", string(got))
}
