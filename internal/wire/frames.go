package wire

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"
)

// MaxFrameSize bounds a single length-prefixed message.
const MaxFrameSize = 64 << 20

var (
	ErrFrameTooLarge = errors.New("wire: frame exceeds maximum size")
	ErrMissingHeader = errors.New("wire: backup info header not read")
)

// FrameWriter writes the varint-length-delimited message stream: one
// BackupInfo followed by any number of frames.
type FrameWriter struct {
	w          io.Writer
	buf        []byte
	wroteInfo  bool
	frameCount int
}

func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

func (fw *FrameWriter) writeDelimited(msg []byte) error {
	fw.buf = protowire.AppendVarint(fw.buf[:0], uint64(len(msg)))
	fw.buf = append(fw.buf, msg...)
	_, err := fw.w.Write(fw.buf)
	return err
}

func (fw *FrameWriter) WriteBackupInfo(info *BackupInfo) error {
	if fw.wroteInfo {
		return errors.New("wire: backup info already written")
	}
	if err := fw.writeDelimited(MarshalBackupInfo(info)); err != nil {
		return fmt.Errorf("write backup info: %w", err)
	}
	fw.wroteInfo = true
	return nil
}

func (fw *FrameWriter) WriteFrame(f *Frame) error {
	if !fw.wroteInfo {
		return ErrMissingHeader
	}
	if err := fw.writeDelimited(MarshalFrame(f)); err != nil {
		return fmt.Errorf("write frame %d: %w", fw.frameCount, err)
	}
	fw.frameCount++
	return nil
}

// FrameCount returns the number of frames written so far.
func (fw *FrameWriter) FrameCount() int { return fw.frameCount }

// FrameReader is the reading counterpart of FrameWriter.
type FrameReader struct {
	r        *bufio.Reader
	readInfo bool
}

func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReader(r)}
}

// readDelimited returns io.EOF only when the stream ends exactly on a
// message boundary.
func (fr *FrameReader) readDelimited() ([]byte, error) {
	size, err := binary.ReadUvarint(fr.r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: length prefix: %v", ErrMalformed, err)
	}
	if size > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	msg := make([]byte, size)
	if _, err := io.ReadFull(fr.r, msg); err != nil {
		return nil, fmt.Errorf("%w: truncated message: %v", ErrMalformed, err)
	}
	return msg, nil
}

func (fr *FrameReader) ReadBackupInfo() (*BackupInfo, error) {
	msg, err := fr.readDelimited()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty stream", ErrMalformed)
		}
		return nil, err
	}
	info, err := UnmarshalBackupInfo(msg)
	if err != nil {
		return nil, err
	}
	fr.readInfo = true
	return info, nil
}

// ReadFrame returns the next frame, or io.EOF after the last one.
func (fr *FrameReader) ReadFrame() (*Frame, error) {
	if !fr.readInfo {
		return nil, ErrMissingHeader
	}
	msg, err := fr.readDelimited()
	if err != nil {
		return nil, err
	}
	return UnmarshalFrame(msg)
}
