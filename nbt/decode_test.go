package nbt

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendUint16(b []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(b, v)
}

func appendUint32(b []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(b, v)
}

func appendUint64(b []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(b, v)
}

func appendString(b []byte, s string) []byte {
	b = appendUint16(b, uint16(len(s)))
	return append(b, s...)
}

func appendNamed(b []byte, id TagID, name string) []byte {
	b = append(b, byte(id))
	return appendString(b, name)
}

// testDocument builds a document exercising every tag kind.
func testDocument() []byte {
	var b []byte
	b = appendNamed(b, TagCompound, "Data")

	b = appendNamed(b, TagByte, "b")
	b = append(b, 0xff)
	b = appendNamed(b, TagShort, "s")
	b = appendUint16(b, 0x0102)
	b = appendNamed(b, TagInt, "i")
	b = appendUint32(b, 70000)
	b = appendNamed(b, TagLong, "l")
	b = appendUint64(b, 1<<40)
	b = appendNamed(b, TagFloat, "f")
	b = appendUint32(b, math.Float32bits(0.5))
	b = appendNamed(b, TagDouble, "d")
	b = appendUint64(b, math.Float64bits(2.5))
	b = appendNamed(b, TagString, "str")
	b = appendString(b, "text")
	b = appendNamed(b, TagByteArray, "ba")
	b = appendUint32(b, 2)
	b = append(b, 0x01, 0x02)
	b = appendNamed(b, TagIntArray, "ia")
	b = appendUint32(b, 2)
	b = appendUint32(b, 1)
	b = appendUint32(b, 2)
	b = appendNamed(b, TagLongArray, "la")
	b = appendUint32(b, 1)
	b = appendUint64(b, 3)
	b = appendNamed(b, TagList, "list")
	b = append(b, byte(TagString))
	b = appendUint32(b, 2)
	b = appendString(b, "a")
	b = appendString(b, "bc")
	b = appendNamed(b, TagCompound, "nested")
	b = appendNamed(b, TagByte, "x")
	b = append(b, 0x01)
	b = append(b, byte(TagEnd))
	b = appendNamed(b, TagCompound, "empty")
	b = append(b, byte(TagEnd))

	return append(b, byte(TagEnd))
}

// nestedLists builds a root compound holding a chain of k nested lists.
func nestedLists(k int) []byte {
	buf := []byte{0x0a, 0x00, 0x00, 0x09, 0x00, 0x01, 'a'}
	buf = append(buf, bytes.Repeat([]byte{0x09, 0x00, 0x00, 0x00, 0x01}, k-1)...)
	buf = append(buf, 0x00, 0x00, 0x00, 0x00, 0x00)
	return append(buf, 0x00)
}

func TestParseSimpleCompound(t *testing.T) {
	root, err := Parse([]byte{0x0a, 0x00, 0x00, 0x01, 0x00, 0x01, 'A', 0x05, 0x00})
	require.NoError(t, err)

	assert.Equal(t, "", root.Name)
	assert.Equal(t, Compound{{Name: "A", Value: Byte(5)}}, root.Value)
}

func TestParseScalars(t *testing.T) {
	var b []byte
	b = appendNamed(b, TagCompound, "")
	b = appendNamed(b, TagByte, "byte")
	b = append(b, 0x80)
	b = appendNamed(b, TagShort, "short")
	b = appendUint16(b, 0xfffe)
	b = appendNamed(b, TagInt, "int")
	b = appendUint32(b, 0x80000000)
	b = appendNamed(b, TagLong, "long")
	b = appendUint64(b, 1<<62)
	b = appendNamed(b, TagFloat, "float")
	b = appendUint32(b, math.Float32bits(3.5))
	b = appendNamed(b, TagDouble, "double")
	b = appendUint64(b, math.Float64bits(-1e300))
	b = appendNamed(b, TagString, "string")
	b = appendString(b, "héllo")
	b = append(b, byte(TagEnd))

	root, err := Parse(b)
	require.NoError(t, err)

	assert.Equal(t, Compound{
		{Name: "byte", Value: Byte(-128)},
		{Name: "short", Value: Short(-2)},
		{Name: "int", Value: Int(math.MinInt32)},
		{Name: "long", Value: Long(1 << 62)},
		{Name: "float", Value: Float(3.5)},
		{Name: "double", Value: Double(-1e300)},
		{Name: "string", Value: String("héllo")},
	}, root.Value)
}

func TestParseArrays(t *testing.T) {
	var b []byte
	b = appendNamed(b, TagCompound, "")
	b = appendNamed(b, TagByteArray, "bytes")
	b = appendUint32(b, 3)
	b = append(b, 0x01, 0xff, 0x7f)
	b = appendNamed(b, TagIntArray, "ints")
	b = appendUint32(b, 2)
	b = appendUint32(b, 0xfffffffe)
	b = appendUint32(b, 7)
	b = appendNamed(b, TagLongArray, "longs")
	b = appendUint32(b, 1)
	b = appendUint64(b, math.MaxUint64)
	b = appendNamed(b, TagByteArray, "empty")
	b = appendUint32(b, 0)
	b = append(b, byte(TagEnd))

	root, err := Parse(b)
	require.NoError(t, err)

	assert.Equal(t, Compound{
		{Name: "bytes", Value: ByteArray{1, -1, 127}},
		{Name: "ints", Value: IntArray{-2, 7}},
		{Name: "longs", Value: LongArray{-1}},
		{Name: "empty", Value: ByteArray{}},
	}, root.Value)
}

func TestParseList(t *testing.T) {
	var b []byte
	b = appendNamed(b, TagCompound, "")
	b = appendNamed(b, TagList, "L")
	b = append(b, byte(TagInt))
	b = appendUint32(b, 2)
	b = appendUint32(b, 1)
	b = appendUint32(b, 2)
	b = append(b, byte(TagEnd))

	root, err := Parse(b)
	require.NoError(t, err)

	v, ok := root.Value.(Compound).Get("L")
	require.True(t, ok)
	assert.Equal(t, List{ElemID: TagInt, Items: []Value{Int(1), Int(2)}}, v)
}

func TestParseListOfLists(t *testing.T) {
	var b []byte
	b = appendNamed(b, TagCompound, "")
	b = appendNamed(b, TagList, "outer")
	b = append(b, byte(TagList))
	b = appendUint32(b, 2)
	b = append(b, byte(TagInt))
	b = appendUint32(b, 1)
	b = appendUint32(b, 5)
	b = append(b, byte(TagEnd))
	b = appendUint32(b, 0)
	b = append(b, byte(TagEnd))

	root, err := Parse(b)
	require.NoError(t, err)

	v, ok := root.Value.(Compound).Get("outer")
	require.True(t, ok)
	assert.Equal(t, List{
		ElemID: TagList,
		Items: []Value{
			List{ElemID: TagInt, Items: []Value{Int(5)}},
			List{ElemID: TagEnd},
		},
	}, v)
}

func TestParseListOfCompounds(t *testing.T) {
	var b []byte
	b = appendNamed(b, TagCompound, "")
	b = appendNamed(b, TagList, "items")
	b = append(b, byte(TagCompound))
	b = appendUint32(b, 2)
	b = appendNamed(b, TagByte, "a")
	b = append(b, 0x01)
	b = append(b, byte(TagEnd))
	b = append(b, byte(TagEnd))
	b = append(b, byte(TagEnd))

	root, err := Parse(b)
	require.NoError(t, err)

	v, ok := root.Value.(Compound).Get("items")
	require.True(t, ok)
	assert.Equal(t, List{
		ElemID: TagCompound,
		Items: []Value{
			Compound{{Name: "a", Value: Byte(1)}},
			Compound{},
		},
	}, v)
}

func TestParseEmptyContainers(t *testing.T) {
	root, err := Parse([]byte{0x0a, 0x00, 0x00, 0x00})
	require.NoError(t, err)
	assert.Equal(t, Compound{}, root.Value)

	var b []byte
	b = appendNamed(b, TagCompound, "")
	b = appendNamed(b, TagList, "end")
	b = append(b, byte(TagEnd))
	b = appendUint32(b, 0)
	b = appendNamed(b, TagList, "int")
	b = append(b, byte(TagInt))
	b = appendUint32(b, 0)
	b = append(b, byte(TagEnd))

	root, err = Parse(b)
	require.NoError(t, err)
	assert.Equal(t, Compound{
		{Name: "end", Value: List{ElemID: TagEnd}},
		{Name: "int", Value: List{ElemID: TagInt}},
	}, root.Value)
}

func TestParseRootName(t *testing.T) {
	var b []byte
	b = appendNamed(b, TagCompound, "Data")
	b = append(b, byte(TagEnd))

	root, err := Parse(b)
	require.NoError(t, err)
	assert.Equal(t, "Data", root.Name)
	assert.Equal(t, Compound{}, root.Value)
}

func TestParseTrailingBytes(t *testing.T) {
	doc := []byte{0x0a, 0x00, 0x00, 0x01, 0x00, 0x01, 'A', 0x05, 0x00}
	padded := append(append([]byte{}, doc...), 0xde, 0xad, 0xbe, 0xef)

	root, err := Parse(padded)
	require.NoError(t, err)
	assert.Equal(t, Compound{{Name: "A", Value: Byte(5)}}, root.Value)
}

func TestParseDuplicateName(t *testing.T) {
	_, err := Parse([]byte{
		0x0a, 0x00, 0x00,
		0x01, 0x00, 0x01, 'x', 0x01,
		0x01, 0x00, 0x01, 'x', 0x02,
		0x00,
	})
	require.ErrorIs(t, err, ErrDuplicateName)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "x", se.Path)
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name  string
		input []byte
		want  error
	}{
		{"empty input", nil, ErrUnexpectedEnd},
		{"root end", []byte{0x00}, ErrInvalidRoot},
		{"root scalar", []byte{0x01, 0x00, 0x01, 'a', 0x05}, ErrInvalidRoot},
		{"root list", []byte{0x09, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x05}, ErrInvalidRoot},
		{"root invalid id", []byte{0x1f}, ErrInvalidTagID},
		{"child invalid id", []byte{0x0a, 0x00, 0x00, 0xff}, ErrInvalidTagID},
		{"unterminated compound", []byte{0x0a, 0x00, 0x00, 0x01, 0x00, 0x01, 'a', 0x05}, ErrUnexpectedEnd},
		{"truncated name", []byte{0x0a, 0x00, 0x00, 0x01, 0x00, 0x05, 'a'}, ErrUnexpectedEnd},
		{"truncated scalar", []byte{0x0a, 0x00, 0x00, 0x03, 0x00, 0x01, 'a', 0x00, 0x00}, ErrUnexpectedEnd},
		{"truncated string payload", []byte{0x0a, 0x00, 0x00, 0x08, 0x00, 0x01, 'a', 0x00, 0x09, 'x'}, ErrUnexpectedEnd},
		{"negative byte array count", []byte{0x0a, 0x00, 0x00, 0x07, 0x00, 0x01, 'a', 0xff, 0xff, 0xff, 0xff}, ErrNegativeLength},
		{"negative list count", []byte{0x0a, 0x00, 0x00, 0x09, 0x00, 0x01, 'a', 0x01, 0xff, 0xff, 0xff, 0xff}, ErrNegativeLength},
		{"oversized byte array count", []byte{0x0a, 0x00, 0x00, 0x07, 0x00, 0x01, 'a', 0x7f, 0xff, 0xff, 0xff}, ErrUnexpectedEnd},
		{"oversized long array count", []byte{0x0a, 0x00, 0x00, 0x0c, 0x00, 0x01, 'a', 0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, ErrUnexpectedEnd},
		{"oversized list count", []byte{0x0a, 0x00, 0x00, 0x09, 0x00, 0x01, 'a', 0x01, 0x7f, 0xff, 0xff, 0xff}, ErrUnexpectedEnd},
		{"end list with items", []byte{0x0a, 0x00, 0x00, 0x09, 0x00, 0x01, 'a', 0x00, 0x00, 0x00, 0x00, 0x01}, ErrInvalidTagID},
		{"list invalid element id", []byte{0x0a, 0x00, 0x00, 0x09, 0x00, 0x01, 'a', 0x20, 0x00, 0x00, 0x00, 0x00}, ErrInvalidTagID},
		{"duplicate name", []byte{0x0a, 0x00, 0x00, 0x01, 0x00, 0x01, 'x', 0x01, 0x01, 0x00, 0x01, 'x', 0x02, 0x00}, ErrDuplicateName},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)

			var se *SyntaxError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestParseErrorPath(t *testing.T) {
	var b []byte
	b = appendNamed(b, TagCompound, "")
	b = appendNamed(b, TagCompound, "Level")
	b = appendNamed(b, TagCompound, "Sections")
	b = appendNamed(b, TagInt, "Y")
	b = append(b, 0x00, 0x00) // int payload cut short

	_, err := Parse(b)
	require.ErrorIs(t, err, ErrUnexpectedEnd)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Level.Sections.Y", se.Path)
	assert.Equal(t, len(b)-2, se.Offset)
	assert.Equal(t,
		"nbt: unexpected end of input at offset 26 (in Level.Sections.Y)",
		err.Error())
}

func TestParseErrorPathListIndex(t *testing.T) {
	b := []byte{
		0x0a, 0x00, 0x00,
		0x09, 0x00, 0x01, 'L',
		0x0a,
		0x00, 0x00, 0x00, 0x02,
		0x01, 0x00, 0x01, 'a', 0x05, 0x00,
		0xff,
	}

	_, err := Parse(b)
	require.ErrorIs(t, err, ErrInvalidTagID)

	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "L[1]", se.Path)
	assert.Equal(t, len(b)-1, se.Offset)
}

func TestParseDepthLimit(t *testing.T) {
	_, err := Parse(nestedLists(maxDepth - 1))
	require.NoError(t, err)

	_, err = Parse(nestedLists(maxDepth))
	require.ErrorIs(t, err, ErrDepthLimit)

	deep := append([]byte{0x0a, 0x00, 0x00}, bytes.Repeat([]byte{0x0a, 0x00, 0x01, 'c'}, maxDepth+10)...)
	_, err = Parse(deep)
	require.ErrorIs(t, err, ErrDepthLimit)
}

func TestParseTruncation(t *testing.T) {
	doc := testDocument()

	for i := 0; i < len(doc); i++ {
		_, err := Parse(doc[:i])
		require.Error(t, err, "prefix of %d bytes parsed successfully", i)
		require.ErrorIs(t, err, ErrUnexpectedEnd, "prefix of %d bytes", i)
	}

	_, err := Parse(doc)
	require.NoError(t, err)
}

func TestParseExactConsumption(t *testing.T) {
	doc := testDocument()

	r := &reader{buf: doc}
	root, err := decodeNamedTag(r, 0)
	require.NoError(t, err)
	require.IsType(t, Compound{}, root.Value)
	assert.Equal(t, len(doc), r.pos, "document must be consumed exactly")
}

func TestCompoundGet(t *testing.T) {
	c := Compound{
		{Name: "a", Value: Byte(1)},
		{Name: "b", Value: String("x")},
	}

	v, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, String("x"), v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}
