package nbt

import (
	"encoding/binary"
	"math"
)

// reader is a forward-only cursor over the input buffer. Multi-byte reads
// are big-endian. A failed read reports the offset it started at and does
// not advance; the decoder aborts on the first error.
type reader struct {
	buf []byte
	pos int
}

func (r *reader) remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) fail() error {
	return &SyntaxError{Err: ErrUnexpectedEnd, Offset: r.pos}
}

// readBytes returns the next n bytes without copying.
func (r *reader) readBytes(n int) ([]byte, error) {
	if n > r.remaining() {
		return nil, r.fail()
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *reader) readUint8() (uint8, error) {
	if r.remaining() < 1 {
		return 0, r.fail()
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readInt8() (int8, error) {
	v, err := r.readUint8()
	return int8(v), err
}

func (r *reader) readUint16() (uint16, error) {
	b, err := r.readBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) readInt16() (int16, error) {
	v, err := r.readUint16()
	return int16(v), err
}

func (r *reader) readUint32() (uint32, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) readInt32() (int32, error) {
	v, err := r.readUint32()
	return int32(v), err
}

func (r *reader) readUint64() (uint64, error) {
	b, err := r.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) readInt64() (int64, error) {
	v, err := r.readUint64()
	return int64(v), err
}

func (r *reader) readFloat32() (float32, error) {
	v, err := r.readUint32()
	return math.Float32frombits(v), err
}

func (r *reader) readFloat64() (float64, error) {
	v, err := r.readUint64()
	return math.Float64frombits(v), err
}

// readString reads a big-endian uint16 byte count followed by that many
// bytes of string data.
func (r *reader) readString() (string, error) {
	n, err := r.readUint16()
	if err != nil {
		return "", err
	}
	b, err := r.readBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
