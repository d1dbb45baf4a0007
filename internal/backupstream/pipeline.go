package backupstream

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
)

// Keys is the symmetric key pair protecting one stream.
type Keys struct {
	AESKey  []byte
	HMACKey []byte
	// IV is optional; nil means a random IV per stream.
	IV []byte
}

type pipelineWriter struct {
	gz  *gzip.Writer
	enc io.WriteCloser
}

func (p *pipelineWriter) Write(b []byte) (int, error) {
	return p.gz.Write(b)
}

// Close flushes compression, then closes the encrypting layer, which in turn
// appends the HMAC tag.
func (p *pipelineWriter) Close() error {
	return errors.Join(p.gz.Close(), p.enc.Close())
}

// NewWriter composes plaintext -> gzip -> encrypt -> HMAC-append over w.
// The tag is written when the returned writer is closed; w itself is left
// open.
func NewWriter(w io.Writer, keys Keys) (io.WriteCloser, error) {
	mac, err := NewHMACWriter(w, keys.HMACKey)
	if err != nil {
		return nil, err
	}
	enc, err := NewEncryptingWriter(mac, keys.AESKey, keys.IV)
	if err != nil {
		return nil, err
	}
	return &pipelineWriter{gz: gzip.NewWriter(enc), enc: enc}, nil
}

// NewReader composes verify-HMAC -> decrypt -> gunzip over rs.
func NewReader(rs io.ReadSeeker, keys Keys) (io.ReadCloser, error) {
	body, err := NewHMACValidatingReader(rs, keys.HMACKey)
	if err != nil {
		return nil, err
	}
	plain, err := NewDecryptingReader(body, keys.AESKey)
	if err != nil {
		return nil, err
	}
	gz, err := gzip.NewReader(plain)
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	return gz, nil
}

// NewRawWriter is NewWriter without compression, used for media objects
// whose content is already compressed.
func NewRawWriter(w io.Writer, keys Keys) (io.WriteCloser, error) {
	mac, err := NewHMACWriter(w, keys.HMACKey)
	if err != nil {
		return nil, err
	}
	return NewEncryptingWriter(mac, keys.AESKey, keys.IV)
}

// NewRawReader is NewReader without decompression.
func NewRawReader(rs io.ReadSeeker, keys Keys) (io.Reader, error) {
	body, err := NewHMACValidatingReader(rs, keys.HMACKey)
	if err != nil {
		return nil, err
	}
	return NewDecryptingReader(body, keys.AESKey)
}
