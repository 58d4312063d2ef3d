// Package nbt2json renders decoded NBT values as JSON.
//
// The encoder walks the typed tree directly, so compound children keep
// their wire order instead of the randomized order a Go map would give.
package nbt2json

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"

	"github.com/ch-iv/nbt2dict/nbt"
)

// Marshal returns the JSON encoding of v.
//
// Byte, int and long arrays encode as arrays of numbers. JSON has no
// non-finite numbers, so NaN and the infinities encode as the strings
// "NaN", "Infinity" and "-Infinity".
func Marshal(v nbt.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalIndent is like Marshal with the output indented the way
// json.MarshalIndent indents it.
func MarshalIndent(v nbt.Value, prefix, indent string) ([]byte, error) {
	b, err := Marshal(v)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, b, prefix, indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func encodeValue(buf *bytes.Buffer, v nbt.Value) error {
	switch v := v.(type) {
	case nbt.Byte:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case nbt.Short:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case nbt.Int:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case nbt.Long:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case nbt.Float:
		encodeFloat(buf, float64(v), 32)
	case nbt.Double:
		encodeFloat(buf, float64(v), 64)
	case nbt.ByteArray:
		buf.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.FormatInt(int64(e), 10))
		}
		buf.WriteByte(']')
	case nbt.String:
		return encodeString(buf, string(v))
	case nbt.List:
		buf.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case nbt.Compound:
		buf.WriteByte('{')
		for i, tag := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeString(buf, tag.Name); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := encodeValue(buf, tag.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case nbt.IntArray:
		buf.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.FormatInt(int64(e), 10))
		}
		buf.WriteByte(']')
	case nbt.LongArray:
		buf.WriteByte('[')
		for i, e := range v {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(strconv.FormatInt(e, 10))
		}
		buf.WriteByte(']')
	default:
		return errors.New("nbt2json: nil value")
	}
	return nil
}

func encodeString(buf *bytes.Buffer, s string) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// encodeFloat formats finite floats the way encoding/json does and
// non-finite ones as strings.
func encodeFloat(buf *bytes.Buffer, f float64, bits int) {
	switch {
	case math.IsNaN(f):
		buf.WriteString(`"NaN"`)
	case math.IsInf(f, 1):
		buf.WriteString(`"Infinity"`)
	case math.IsInf(f, -1):
		buf.WriteString(`"-Infinity"`)
	default:
		abs := math.Abs(f)
		format := byte('f')
		// The cutoffs compare in the value's own width; the widths
		// disagree within one ULP of a boundary.
		if abs != 0 {
			if bits == 64 && (abs < 1e-6 || abs >= 1e21) ||
				bits == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
				format = 'e'
			}
		}
		b := strconv.AppendFloat(nil, f, format, -1, bits)
		if format == 'e' {
			// trim the leading zero of two-digit exponents: 2.5e-07 -> 2.5e-7
			if n := len(b); n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
				b[n-2] = b[n-1]
				b = b[:n-1]
			}
		}
		buf.Write(b)
	}
}
