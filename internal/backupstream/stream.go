// Package backupstream provides the byte-stream transforms wrapped around a
// backup file or a media object: AES-256-CTR encryption, HMAC-SHA256 tag
// generation, and tag validation that fails closed.
//
// Layout produced by the writers:
//
//	IV (16 bytes) || ciphertext || HMAC-SHA256(IV || ciphertext) (32 bytes)
//
// A write pass composes plaintext -> encrypt -> HMAC-append; a read pass
// composes verify-HMAC -> decrypt -> plaintext. The validating reader reads
// the whole body and checks the tag before any plaintext is handed out.
package backupstream

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"io"
)

const (
	KeySize = 32
	IVSize  = aes.BlockSize
	TagSize = sha256.Size
)

var (
	ErrInvalidKeyLength = errors.New("invalid key length")
	ErrInvalidIVLength  = errors.New("invalid iv length")
	ErrHMACMismatch     = errors.New("hmac mismatch")
	ErrTruncated        = errors.New("stream truncated")
)

// NewEncryptingWriter returns a writer that encrypts everything written to it
// into w. The IV is written to w first. A nil iv draws a random one; media
// objects pass their derived IV so the ciphertext is deterministic.
// Closing the returned writer closes w if w is an io.Closer.
func NewEncryptingWriter(w io.Writer, key, iv []byte) (io.WriteCloser, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}

	if iv == nil {
		iv = make([]byte, IVSize)
		if _, err := rand.Read(iv); err != nil {
			return nil, fmt.Errorf("generate iv: %w", err)
		}
	}
	if len(iv) != IVSize {
		return nil, ErrInvalidIVLength
	}

	if _, err := w.Write(iv); err != nil {
		return nil, fmt.Errorf("write iv: %w", err)
	}

	return &cipher.StreamWriter{S: cipher.NewCTR(block, iv), W: w}, nil
}

// NewDecryptingReader reads the IV prefix from r and returns a reader over
// the decrypted remainder.
func NewDecryptingReader(r io.Reader, key []byte) (io.Reader, error) {
	block, err := newBlock(key)
	if err != nil {
		return nil, err
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(r, iv); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncated
		}
		return nil, fmt.Errorf("read iv: %w", err)
	}

	return &cipher.StreamReader{S: cipher.NewCTR(block, iv), R: r}, nil
}

type hmacWriter struct {
	w      io.Writer
	mac    hash.Hash
	closed bool
}

// NewHMACWriter returns a writer that passes bytes through to w and, on
// Close, appends the HMAC-SHA256 tag of everything written. It does not
// close w.
func NewHMACWriter(w io.Writer, key []byte) (io.WriteCloser, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	return &hmacWriter{w: w, mac: hmac.New(sha256.New, key)}, nil
}

func (h *hmacWriter) Write(p []byte) (int, error) {
	if h.closed {
		return 0, errors.New("write after close")
	}
	n, err := h.w.Write(p)
	h.mac.Write(p[:n])
	return n, err
}

func (h *hmacWriter) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	if _, err := h.w.Write(h.mac.Sum(nil)); err != nil {
		return fmt.Errorf("write hmac: %w", err)
	}
	return nil
}

// NewHMACValidatingReader verifies the trailing tag of rs before returning a
// reader over the body with the tag stripped. On mismatch nothing of the body
// is returned. rs must be positioned at the start of the stream.
func NewHMACValidatingReader(rs io.ReadSeeker, key []byte) (io.Reader, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}

	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek end: %w", err)
	}
	if size < TagSize {
		return nil, ErrTruncated
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek start: %w", err)
	}

	bodySize := size - TagSize
	mac := hmac.New(sha256.New, key)
	if _, err := io.CopyN(mac, rs, bodySize); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	tag := make([]byte, TagSize)
	if _, err := io.ReadFull(rs, tag); err != nil {
		return nil, fmt.Errorf("read hmac: %w", err)
	}
	if !hmac.Equal(tag, mac.Sum(nil)) {
		return nil, ErrHMACMismatch
	}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind: %w", err)
	}
	return io.LimitReader(rs, bodySize), nil
}

func newBlock(key []byte) (cipher.Block, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	return aes.NewCipher(key)
}
