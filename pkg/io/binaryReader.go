package io

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxArraySize is the maximum length or item count that can be decoded.
const MaxArraySize = 0x1000000

// BinReader is a convenient wrapper around a io.Reader and err object.
// Used to simplify error handling when reading into a struct with many fields.
type BinReader struct {
	r   io.Reader
	buf *bytes.Reader
	uv  [16]byte
	Err error
}

// NewBinReaderFromIO makes a BinReader from io.Reader.
func NewBinReaderFromIO(ior io.Reader) *BinReader {
	return &BinReader{r: ior}
}

// NewBinReaderFromBuf makes a BinReader from byte buffer.
func NewBinReaderFromBuf(b []byte) *BinReader {
	r := bytes.NewReader(b)
	return &BinReader{r: r, buf: r}
}

// Len returns the number of unread bytes for buffer-based readers and -1
// for others.
func (r *BinReader) Len() int {
	if r.buf == nil {
		return -1
	}
	return r.buf.Len()
}

// ReadU128LE reads a little-endian 128-bit value and returns its low and high
// 64-bit halves.
func (r *BinReader) ReadU128LE() (lo, hi uint64) {
	r.ReadBytes(r.uv[:16])
	if r.Err != nil {
		return 0, 0
	}
	return binary.LittleEndian.Uint64(r.uv[:8]), binary.LittleEndian.Uint64(r.uv[8:16])
}

// ReadU64LE reads a little-endian encoded uint64 value from the underlying
// io.Reader.
func (r *BinReader) ReadU64LE() uint64 {
	r.ReadBytes(r.uv[:8])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(r.uv[:8])
}

// ReadU32LE reads a little-endian encoded uint32 value from the underlying
// io.Reader.
func (r *BinReader) ReadU32LE() uint32 {
	r.ReadBytes(r.uv[:4])
	if r.Err != nil {
		return 0
	}
	return binary.LittleEndian.Uint32(r.uv[:4])
}

// ReadB reads a byte from the underlying io.Reader.
func (r *BinReader) ReadB() byte {
	r.ReadBytes(r.uv[:1])
	if r.Err != nil {
		return 0
	}
	return r.uv[0]
}

// ReadBool reads a boolean value encoded in a zero/non-zero byte from the
// underlying io.Reader. Values other than 0 and 1 are rejected.
func (r *BinReader) ReadBool() bool {
	b := r.ReadB()
	if r.Err == nil && b > 1 {
		r.Err = fmt.Errorf("invalid boolean value %d", b)
	}
	return b == 1
}

// ReadLen reads a u32 length or item count and checks it against
// MaxArraySize (or the given limit).
func (r *BinReader) ReadLen(maxSize ...int) int {
	n := r.ReadU32LE()
	if r.Err != nil {
		return 0
	}
	ms := MaxArraySize
	if len(maxSize) != 0 {
		ms = maxSize[0]
	}
	if uint64(n) > uint64(ms) {
		r.Err = fmt.Errorf("array is too big (%d)", n)
		return 0
	}
	return int(n)
}

// ReadBytes copies a fixed-size buffer from the reader to the provided slice.
func (r *BinReader) ReadBytes(buf []byte) {
	if r.Err != nil {
		return
	}
	_, r.Err = io.ReadFull(r.r, buf)
}

// ReadVarBytes reads the next length-prefixed byte slice.
func (r *BinReader) ReadVarBytes(maxSize ...int) []byte {
	n := r.ReadLen(maxSize...)
	if r.Err != nil {
		return nil
	}
	if r.buf != nil && n > r.buf.Len() {
		r.Err = io.ErrUnexpectedEOF
		return nil
	}
	b := make([]byte, n)
	r.ReadBytes(b)
	return b
}

// ReadString reads a length-prefixed string.
func (r *BinReader) ReadString(maxSize ...int) string {
	return string(r.ReadVarBytes(maxSize...))
}

// ReadStrings reads a length-prefixed slice of strings.
func (r *BinReader) ReadStrings() []string {
	n := r.ReadLen()
	if r.Err != nil || n == 0 {
		return nil
	}
	res := make([]string, 0, n)
	for i := 0; i < n && r.Err == nil; i++ {
		res = append(res, r.ReadString())
	}
	return res
}

// ReadArray reads a length-prefixed slice of items, each of which is
// decoded by a freshly allocated value of type T.
func ReadArray[T any, PT interface {
	*T
	decodable
}](r *BinReader) []T {
	n := r.ReadLen()
	if r.Err != nil || n == 0 {
		return nil
	}
	var res []T
	for i := 0; i < n; i++ {
		var item T
		PT(&item).DecodeBinary(r)
		if r.Err != nil {
			return nil
		}
		res = append(res, item)
	}
	return res
}

// ErrUnknownTag is wrapped by errors about unsupported enum tags.
var ErrUnknownTag = errors.New("unknown tag")
