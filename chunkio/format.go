package chunkio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
	"slices"

	"github.com/hupe1980/chunkarray/blobstore"
	"github.com/hupe1980/chunkarray/ndarray"
)

const (
	// Magic starts every chunk file.
	Magic = "CHNK"
	// Version is the current format version.
	Version = 1
	// MaxChunkBytes bounds the decoded size of a single chunk.
	MaxChunkBytes = 1 << 32

	fixedHeaderSize = len(Magic) + 4 + 16
)

// Header is the decoded fixed part of a chunk file.
type Header struct {
	Version     uint8
	DType       DType
	Compression Compression
	Shape       []int
	RawLen      uint64
	PayloadLen  uint64
}

// Size returns the encoded header size in bytes.
func (h *Header) Size() int {
	return fixedHeaderSize + 4*len(h.Shape)
}

func (h *Header) appendTo(dst []byte) []byte {
	dst = append(dst, Magic...)
	dst = append(dst, h.Version, byte(h.DType), byte(h.Compression), byte(len(h.Shape)))
	for _, d := range h.Shape {
		dst = binary.LittleEndian.AppendUint32(dst, uint32(d))
	}
	dst = binary.LittleEndian.AppendUint64(dst, h.RawLen)
	return binary.LittleEndian.AppendUint64(dst, h.PayloadLen)
}

// ReadHeader decodes the header at the start of data.
func ReadHeader(data []byte) (*Header, error) {
	if len(data) < fixedHeaderSize || string(data[:len(Magic)]) != Magic {
		return nil, fmt.Errorf("%w: bad magic", ErrInvalidFormat)
	}
	p := data[len(Magic):]

	h := &Header{
		Version:     p[0],
		DType:       DType(p[1]),
		Compression: Compression(p[2]),
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidFormat, h.Version)
	}
	if !h.DType.Valid() {
		return nil, fmt.Errorf("%w: unknown dtype %d", ErrInvalidFormat, h.DType)
	}

	ndims := int(p[3])
	if len(data) < fixedHeaderSize+4*ndims {
		return nil, fmt.Errorf("%w: truncated header", ErrInvalidFormat)
	}
	p = p[4:]

	h.Shape = make([]int, ndims)
	for i := range h.Shape {
		h.Shape[i] = int(binary.LittleEndian.Uint32(p))
		p = p[4:]
	}
	h.RawLen = binary.LittleEndian.Uint64(p)
	h.PayloadLen = binary.LittleEndian.Uint64(p[8:])

	want, ok := rawSize(h.Shape, h.DType.Size())
	if !ok {
		return nil, fmt.Errorf("%w: shape %v exceeds %d bytes", ErrInvalidFormat, h.Shape, uint64(MaxChunkBytes))
	}
	if h.RawLen != want {
		return nil, fmt.Errorf("%w: raw length %d does not match shape %v", ErrInvalidFormat, h.RawLen, h.Shape)
	}
	return h, nil
}

// rawSize returns the decoded byte size of a chunk of shape, or false if it
// overflows or exceeds MaxChunkBytes.
func rawSize(shape []int, elemSize int) (uint64, bool) {
	n := uint64(elemSize)
	for _, d := range shape {
		hi, lo := bits.Mul64(n, uint64(d))
		if hi != 0 || lo > MaxChunkBytes {
			return 0, false
		}
		n = lo
	}
	return n, true
}

// Encode serializes buf into a chunk file.
func Encode[T Numeric](buf *ndarray.Dense[T], c Compression) ([]byte, error) {
	shape := buf.Shape()
	if len(shape) > math.MaxUint8 {
		return nil, fmt.Errorf("chunkio: %d dimensions exceed the format limit", len(shape))
	}
	for _, d := range shape {
		if uint64(d) > math.MaxUint32 {
			return nil, fmt.Errorf("chunkio: dimension %d exceeds the format limit", d)
		}
	}

	if _, ok := rawSize(shape, DTypeOf[T]().Size()); !ok {
		return nil, fmt.Errorf("chunkio: chunk of shape %v exceeds %d bytes", shape, uint64(MaxChunkBytes))
	}

	raw, err := binary.Append(nil, binary.LittleEndian, buf.Data())
	if err != nil {
		return nil, err
	}

	payload, applied, err := compress(raw, c)
	if err != nil {
		return nil, err
	}

	h := Header{
		Version:     Version,
		DType:       DTypeOf[T](),
		Compression: applied,
		Shape:       shape,
		RawLen:      uint64(len(raw)),
		PayloadLen:  uint64(len(payload)),
	}

	out := make([]byte, 0, h.Size()+len(payload))
	out = h.appendTo(out)
	return append(out, payload...), nil
}

// Decode deserializes a chunk file into buf. The stored dtype and shape must
// match buf exactly.
func Decode[T Numeric](data []byte, buf *ndarray.Dense[T]) error {
	h, err := ReadHeader(data)
	if err != nil {
		return err
	}
	if want := DTypeOf[T](); h.DType != want {
		return &ErrDTypeMismatch{Expected: want, Actual: h.DType}
	}
	if shape := buf.Shape(); !slices.Equal(shape, h.Shape) {
		return &ErrChunkShape{Expected: shape, Actual: h.Shape}
	}
	return decodePayload(data, h, buf.Data())
}

// DecodeNew deserializes a chunk file into a newly allocated buffer.
func DecodeNew[T Numeric](data []byte) (*ndarray.Dense[T], error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, err
	}
	if want := DTypeOf[T](); h.DType != want {
		return nil, &ErrDTypeMismatch{Expected: want, Actual: h.DType}
	}
	if _, err := payload(data, h); err != nil {
		return nil, err
	}
	buf := ndarray.New[T](h.Shape...)
	if err := decodePayload(data, h, buf.Data()); err != nil {
		return nil, err
	}
	return buf, nil
}

// payload returns the payload bytes described by h.
func payload(data []byte, h *Header) ([]byte, error) {
	start := uint64(h.Size())
	if uint64(len(data)) < start || uint64(len(data))-start < h.PayloadLen {
		return nil, fmt.Errorf("%w: truncated payload", ErrInvalidFormat)
	}
	if h.Compression == CompressionNone && h.PayloadLen != h.RawLen {
		return nil, fmt.Errorf("%w: payload length %d does not match raw length %d", ErrInvalidFormat, h.PayloadLen, h.RawLen)
	}
	return data[start : start+h.PayloadLen], nil
}

func decodePayload[T Numeric](data []byte, h *Header, dst []T) error {
	p, err := payload(data, h)
	if err != nil {
		return err
	}

	raw, err := decompress(p, h.Compression, int(h.RawLen))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if _, err := binary.Decode(raw, binary.LittleEndian, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return nil
}

// WriteChunk encodes buf and stores it under name.
func WriteChunk[T Numeric](ctx context.Context, store blobstore.BlobStore, name string, buf *ndarray.Dense[T], c Compression) error {
	data, err := Encode(buf, c)
	if err != nil {
		return err
	}
	return store.Put(ctx, name, data)
}
