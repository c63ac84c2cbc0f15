package chunkio

import (
	"fmt"
)

// Numeric lists the element types a chunk file can hold.
type Numeric interface {
	int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

// DType identifies the element type stored in a chunk file.
type DType uint8

const (
	DTypeInvalid DType = iota
	DTypeInt8
	DTypeUint8
	DTypeInt16
	DTypeUint16
	DTypeInt32
	DTypeUint32
	DTypeInt64
	DTypeUint64
	DTypeFloat32
	DTypeFloat64
)

var dtypeNames = [...]string{
	DTypeInvalid: "invalid",
	DTypeInt8:    "int8",
	DTypeUint8:   "uint8",
	DTypeInt16:   "int16",
	DTypeUint16:  "uint16",
	DTypeInt32:   "int32",
	DTypeUint32:  "uint32",
	DTypeInt64:   "int64",
	DTypeUint64:  "uint64",
	DTypeFloat32: "float32",
	DTypeFloat64: "float64",
}

var dtypeSizes = [...]int{0, 1, 1, 2, 2, 4, 4, 8, 8, 4, 8}

// String returns the dtype name.
func (d DType) String() string {
	if int(d) < len(dtypeNames) {
		return dtypeNames[d]
	}
	return fmt.Sprintf("DType(%d)", d)
}

// Size returns the element size in bytes (0 for invalid dtypes).
func (d DType) Size() int {
	if int(d) < len(dtypeSizes) {
		return dtypeSizes[d]
	}
	return 0
}

// Valid reports whether d names a supported element type.
func (d DType) Valid() bool {
	return d > DTypeInvalid && int(d) < len(dtypeNames)
}

// ParseDType parses a dtype name such as "float32".
func ParseDType(name string) (DType, error) {
	for i, n := range dtypeNames {
		if i > 0 && n == name {
			return DType(i), nil
		}
	}
	return DTypeInvalid, fmt.Errorf("unknown dtype %q", name)
}

// DTypeOf returns the dtype of T.
func DTypeOf[T Numeric]() DType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return DTypeInt8
	case uint8:
		return DTypeUint8
	case int16:
		return DTypeInt16
	case uint16:
		return DTypeUint16
	case int32:
		return DTypeInt32
	case uint32:
		return DTypeUint32
	case int64:
		return DTypeInt64
	case uint64:
		return DTypeUint64
	case float32:
		return DTypeFloat32
	case float64:
		return DTypeFloat64
	default:
		return DTypeInvalid
	}
}
