package io

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// ErrTooLong is returned when a length or a count doesn't fit into u32 prefix.
var ErrTooLong = errors.New("length exceeds u32 range")

// BinWriter is a convenient wrapper around an io.Writer and err object.
// Used to simplify error handling when writing into an io.Writer
// from a struct with many fields.
type BinWriter struct {
	w   io.Writer
	Err error
	uv  [16]byte
}

// NewBinWriterFromIO makes a BinWriter from io.Writer.
func NewBinWriterFromIO(iow io.Writer) *BinWriter {
	return &BinWriter{w: iow}
}

// WriteU128LE writes a 128-bit value given as its low and high 64-bit halves
// into the underlying io.Writer in little-endian format.
func (w *BinWriter) WriteU128LE(lo, hi uint64) {
	binary.LittleEndian.PutUint64(w.uv[:8], lo)
	binary.LittleEndian.PutUint64(w.uv[8:16], hi)
	w.WriteBytes(w.uv[:16])
}

// WriteU64LE writes a uint64 value into the underlying io.Writer in
// little-endian format.
func (w *BinWriter) WriteU64LE(u64 uint64) {
	binary.LittleEndian.PutUint64(w.uv[:8], u64)
	w.WriteBytes(w.uv[:8])
}

// WriteU32LE writes a uint32 value into the underlying io.Writer in
// little-endian format.
func (w *BinWriter) WriteU32LE(u32 uint32) {
	binary.LittleEndian.PutUint32(w.uv[:4], u32)
	w.WriteBytes(w.uv[:4])
}

// WriteB writes a byte into the underlying io.Writer.
func (w *BinWriter) WriteB(u8 byte) {
	w.uv[0] = u8
	w.WriteBytes(w.uv[:1])
}

// WriteBool writes a boolean value into the underlying io.Writer encoded as
// a byte with values of 0 or 1.
func (w *BinWriter) WriteBool(b bool) {
	var i byte
	if b {
		i = 1
	}
	w.WriteB(i)
}

// WriteLen writes a length or an item count as u32.
func (w *BinWriter) WriteLen(n int) {
	if w.Err != nil {
		return
	}
	if n < 0 || uint64(n) > math.MaxUint32 {
		w.Err = ErrTooLong
		return
	}
	w.WriteU32LE(uint32(n))
}

// WriteBytes writes a byte slice into the underlying io.Writer without prefix.
func (w *BinWriter) WriteBytes(b []byte) {
	if w.Err != nil {
		return
	}
	_, w.Err = w.w.Write(b)
}

// WriteVarBytes writes a length-prefixed byte slice into the underlying io.Writer.
func (w *BinWriter) WriteVarBytes(b []byte) {
	w.WriteLen(len(b))
	w.WriteBytes(b)
}

// WriteString writes a length-prefixed string into the underlying io.Writer.
func (w *BinWriter) WriteString(s string) {
	w.WriteLen(len(s))
	if w.Err != nil {
		return
	}
	_, w.Err = io.WriteString(w.w, s)
}

// WriteArray writes a slice arr into w prefixed with its length. Nil and
// empty slices are encoded the same way.
func WriteArray[Slice ~[]E, E encodable](w *BinWriter, arr Slice) {
	w.WriteLen(len(arr))
	for i := range arr {
		if w.Err != nil {
			return
		}
		arr[i].EncodeBinary(w)
	}
}

// WriteStrings writes a slice of strings prefixed with its length.
func (w *BinWriter) WriteStrings(arr []string) {
	w.WriteLen(len(arr))
	for _, s := range arr {
		w.WriteString(s)
	}
}
