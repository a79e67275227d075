package hyperband

import (
	"encoding/binary"
	"math"
)

// DataType is the ENVI header "data type" code (spec.md §6). Only DataFloat32
// participates in the scalar statistics/PCA math path; the rest are moved as
// raw bytes by conversion and cropping, which never interpret elements
// numerically.
type DataType int

const (
	DataUint8     DataType = 1
	DataInt16     DataType = 2
	DataInt32     DataType = 3
	DataFloat32   DataType = 4
	DataFloat64   DataType = 5
	DataComplex32 DataType = 6
	DataComplex64 DataType = 9
	DataUint16    DataType = 12
	DataUint32    DataType = 13
	DataInt64     DataType = 14
	DataUint64    DataType = 15
)

// ElemWidth returns the byte width of one element of this data type, or 0
// for an unrecognized code.
func (dt DataType) ElemWidth() int {
	switch dt {
	case DataUint8:
		return 1
	case DataInt16, DataUint16:
		return 2
	case DataInt32, DataUint32, DataFloat32:
		return 4
	case DataInt64, DataUint64, DataFloat64, DataComplex32:
		return 8
	case DataComplex64:
		return 16
	default:
		return 0
	}
}

// Valid reports whether dt is one of the recognized ENVI data-type codes.
func (dt DataType) Valid() bool { return dt.ElemWidth() != 0 }

// ParseDataType validates a raw ENVI header data-type integer code.
func ParseDataType(code int) (DataType, error) {
	dt := DataType(code)
	if !dt.Valid() {
		return 0, newError(KindInvalidHeader, "unrecognized data type code", nil)
	}
	return dt, nil
}

// DecodeFloat32LE reads one little-endian float32 out of buf at byte offset
// off. This is the only decode path on the scalar math hot path. The core
// itself does not check byte order: OpenRead and NewImage take no byte-order
// argument, and it is the CLI's openDataset that rejects any header whose
// byte order is not 0 (little-endian).
func DecodeFloat32LE(buf []byte, off int64) float32 {
	bits := binary.LittleEndian.Uint32(buf[off:])
	return math.Float32frombits(bits)
}

// EncodeFloat32LE writes v as little-endian float32 into buf at byte offset
// off.
func EncodeFloat32LE(buf []byte, off int64, v float32) {
	binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v))
}
