package nbt

import "fmt"

// Value is a single decoded tag payload.
//
// Value is a closed union: the twelve payload-carrying tag kinds are its
// only implementations. A nil Value never appears inside a decoded tree;
// the decoder uses it internally as the end-of-compound marker.
type Value interface {
	isValue()
}

// Byte, Short, Int, Long, Float and Double are the scalar payloads.
type (
	Byte   int8
	Short  int16
	Int    int32
	Long   int64
	Float  float32
	Double float64
)

// ByteArray is a TAG_Byte_Array payload of signed bytes.
type ByteArray []int8

// String is a TAG_String payload. String bytes are copied from the wire
// verbatim; well-formed documents hold UTF-8.
type String string

// List is a TAG_List payload: unnamed values sharing one element type.
// An empty list may declare ElemID TagEnd.
type List struct {
	ElemID TagID
	Items  []Value
}

// Tag is a name/value pair: a child of a compound, or the root of a
// decoded document.
type Tag struct {
	Name  string
	Value Value
}

// Compound is a TAG_Compound payload. Children keep their wire order and
// have unique names.
type Compound []Tag

// Get returns the value of the child with the given name.
func (c Compound) Get(name string) (Value, bool) {
	for _, t := range c {
		if t.Name == name {
			return t.Value, true
		}
	}
	return nil, false
}

// IntArray is a TAG_Int_Array payload.
type IntArray []int32

// LongArray is a TAG_Long_Array payload.
type LongArray []int64

func (Byte) isValue()      {}
func (Short) isValue()     {}
func (Int) isValue()       {}
func (Long) isValue()      {}
func (Float) isValue()     {}
func (Double) isValue()    {}
func (ByteArray) isValue() {}
func (String) isValue()    {}
func (List) isValue()      {}
func (Compound) isValue()  {}
func (IntArray) isValue()  {}
func (LongArray) isValue() {}

// TagIDOf returns the wire tag of v. A nil value maps to TagEnd.
func TagIDOf(v Value) TagID {
	switch v.(type) {
	case nil:
		return TagEnd
	case Byte:
		return TagByte
	case Short:
		return TagShort
	case Int:
		return TagInt
	case Long:
		return TagLong
	case Float:
		return TagFloat
	case Double:
		return TagDouble
	case ByteArray:
		return TagByteArray
	case String:
		return TagString
	case List:
		return TagList
	case Compound:
		return TagCompound
	case IntArray:
		return TagIntArray
	case LongArray:
		return TagLongArray
	}
	panic(fmt.Sprintf("nbt: unknown value type %T", v))
}
