// Package xcfio provides the low-level byte-sink primitives used to write
// the XCF container format: big-endian scalar encoding, the format's
// length-prefixed string encoding, and pointer-width-aware offsets.
package xcfio

import (
	"encoding/binary"
	"io"
	"math"
)

// zeroes is an infinite reader of zero bytes. Each Read fills p by
// doubling the zeroed prefix, so a read of n bytes takes O(log n) copies
// instead of one store per byte.
type zeroes struct{}

func (z *zeroes) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = 0
	for n := 1; n < len(p); n *= 2 {
		copy(p[n:], p[:n])
	}
	return len(p), nil
}

// Zeroes is a io.Reader that produces an unbounded stream of zero bytes.
var Zeroes io.Reader = &zeroes{}

// Sink wraps a seekable output stream with the primitive writers the XCF
// encoder needs. It never buffers: every scalar call results in exactly one
// underlying Write; String writes its length, bytes and NUL separately, and
// ZeroFill issues one or more io.Copy-driven writes.
type Sink struct {
	w io.WriteSeeker
}

// New wraps w in a Sink.
func New(w io.WriteSeeker) *Sink {
	return &Sink{w: w}
}

// Tell returns the current write position.
func (s *Sink) Tell() (int64, error) {
	return s.w.Seek(0, io.SeekCurrent)
}

// SeekAbsolute moves the write position to an absolute file offset.
func (s *Sink) SeekAbsolute(offset int64) error {
	_, err := s.w.Seek(offset, io.SeekStart)
	return err
}

// SeekRelative moves the write position by delta bytes relative to the
// current position.
func (s *Sink) SeekRelative(delta int64) error {
	_, err := s.w.Seek(delta, io.SeekCurrent)
	return err
}

// SeekToEnd moves the write position to the end of the stream.
func (s *Sink) SeekToEnd() error {
	_, err := s.w.Seek(0, io.SeekEnd)
	return err
}

// U8 writes a single byte.
func (s *Sink) U8(v uint8) error {
	_, err := s.w.Write([]byte{v})
	return err
}

// U32 writes a uint32 in big-endian order.
func (s *Sink) U32(v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := s.w.Write(buf[:])
	return err
}

// I32 writes an int32 in big-endian order.
func (s *Sink) I32(v int32) error {
	return s.U32(uint32(v))
}

// U64 writes a uint64 in big-endian order.
func (s *Sink) U64(v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := s.w.Write(buf[:])
	return err
}

// F32 writes a float32 bit-cast then big-endian encoded.
func (s *Sink) F32(v float32) error {
	return s.U32(math.Float32bits(v))
}

// Pointer writes a file offset using the given pointer width (4 or 8 bytes).
// Callers choose the width based on the container version in force.
func (s *Sink) Pointer(ptrSize int, v uint64) error {
	if ptrSize == 4 {
		return s.U32(uint32(v))
	}
	return s.U64(v)
}

// String writes the XCF length-prefixed string encoding: a u32 byte count
// (string length + 1 for the trailing NUL, when non-empty) followed by the
// bytes including the NUL. An empty or absent string is a bare u32(0).
func (s *Sink) String(value string) error {
	if value == "" {
		return s.U32(0)
	}
	if err := s.U32(uint32(len(value) + 1)); err != nil {
		return err
	}
	if _, err := s.w.Write([]byte(value)); err != nil {
		return err
	}
	return s.U8(0)
}

// Raw writes p verbatim.
func (s *Sink) Raw(p []byte) error {
	_, err := s.w.Write(p)
	return err
}

// Writer exposes the underlying stream for callers that need to wrap it in
// their own io.Writer, such as a zlib compressor writing a tile payload of
// unknown compressed length.
func (s *Sink) Writer() io.Writer {
	return s.w
}

// ZeroFill writes n zero bytes, used to reserve pointer tables and other
// placeholder regions ahead of back-patching.
func (s *Sink) ZeroFill(n int64) error {
	_, err := io.CopyN(s.w, Zeroes, n)
	return err
}
