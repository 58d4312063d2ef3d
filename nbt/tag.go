package nbt

import "fmt"

// TagID identifies the wire type of a tag. It is the first byte of every
// named tag and the element-type byte of a list payload.
type TagID byte

const (
	TagEnd       TagID = 0x00
	TagByte      TagID = 0x01
	TagShort     TagID = 0x02
	TagInt       TagID = 0x03
	TagLong      TagID = 0x04
	TagFloat     TagID = 0x05
	TagDouble    TagID = 0x06
	TagByteArray TagID = 0x07
	TagString    TagID = 0x08
	TagList      TagID = 0x09
	TagCompound  TagID = 0x0a
	TagIntArray  TagID = 0x0b
	TagLongArray TagID = 0x0c
)

var tagNames = [...]string{
	TagEnd:       "TAG_End",
	TagByte:      "TAG_Byte",
	TagShort:     "TAG_Short",
	TagInt:       "TAG_Int",
	TagLong:      "TAG_Long",
	TagFloat:     "TAG_Float",
	TagDouble:    "TAG_Double",
	TagByteArray: "TAG_Byte_Array",
	TagString:    "TAG_String",
	TagList:      "TAG_List",
	TagCompound:  "TAG_Compound",
	TagIntArray:  "TAG_Int_Array",
	TagLongArray: "TAG_Long_Array",
}

func (id TagID) String() string {
	if int(id) < len(tagNames) {
		return tagNames[id]
	}
	return fmt.Sprintf("TAG_Unknown(0x%02x)", byte(id))
}

func (id TagID) valid() bool {
	return id <= TagLongArray
}
