// Package nbt implements decoding of the NBT binary format.
//
// NBT (Named Binary Tag) is the tree-shaped binary format the Minecraft
// family of games stores structured data in: world chunks, player files,
// item stacks. A document is one named compound whose children are
// scalars, strings, arrays, lists and nested compounds, all big-endian.
//
// Parse decodes a document into a Tag tree:
//
//	root, err := nbt.Parse(data)
//	if err != nil {
//	    return err
//	}
//
//	if v, ok := root.Value.(nbt.Compound).Get("Level"); ok {
//	    ...
//	}
//
// Interface converts a decoded tree into plain maps, slices and scalars
// for code that does not care about exact wire types.
//
// The decoder never panics on malformed input. Any violation is reported
// as a *SyntaxError carrying the error kind, the byte offset and, where
// known, the path of the offending tag.
package nbt

import "fmt"

const maxDepth = 512

// Parse decodes a single NBT document.
//
// The root tag must be a compound. Bytes past the end of the root
// compound are ignored; exported blobs are commonly padded.
func Parse(data []byte) (Tag, error) {
	r := &reader{buf: data}

	root, err := decodeNamedTag(r, 0)
	if err != nil {
		return Tag{}, err
	}
	if _, ok := root.Value.(Compound); !ok {
		return Tag{}, &SyntaxError{Err: ErrInvalidRoot, Offset: 0}
	}
	return root, nil
}

// decodeNamedTag reads a tag id, a name and a payload. An end tag has
// neither name nor payload and decodes to a Tag with a nil Value.
func decodeNamedTag(r *reader, depth int) (Tag, error) {
	off := r.pos
	b, err := r.readUint8()
	if err != nil {
		return Tag{}, err
	}
	id := TagID(b)
	if !id.valid() {
		return Tag{}, &SyntaxError{Err: ErrInvalidTagID, Offset: off}
	}
	if id == TagEnd {
		return Tag{}, nil
	}

	name, err := r.readString()
	if err != nil {
		return Tag{}, err
	}

	v, err := decodePayload(r, id, depth)
	if err != nil {
		return Tag{}, annotate(err, name)
	}
	return Tag{Name: name, Value: v}, nil
}

func decodePayload(r *reader, id TagID, depth int) (Value, error) {
	switch id {
	case TagByte:
		v, err := r.readInt8()
		return Byte(v), err
	case TagShort:
		v, err := r.readInt16()
		return Short(v), err
	case TagInt:
		v, err := r.readInt32()
		return Int(v), err
	case TagLong:
		v, err := r.readInt64()
		return Long(v), err
	case TagFloat:
		v, err := r.readFloat32()
		return Float(v), err
	case TagDouble:
		v, err := r.readFloat64()
		return Double(v), err
	case TagByteArray:
		return decodeByteArray(r)
	case TagString:
		v, err := r.readString()
		return String(v), err
	case TagList:
		return decodeList(r, depth)
	case TagCompound:
		return decodeCompound(r, depth)
	case TagIntArray:
		return decodeIntArray(r)
	case TagLongArray:
		return decodeLongArray(r)
	}
	panic("invalid decoder state")
}

// readCount reads a signed 32-bit element count for an array payload.
// width is the wire size of one element; counts the remaining input could
// not possibly satisfy are rejected before anything is allocated.
func readCount(r *reader, width int) (int, error) {
	off := r.pos
	n, err := r.readInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, &SyntaxError{Err: ErrNegativeLength, Offset: off}
	}
	if int64(n)*int64(width) > int64(r.remaining()) {
		return 0, &SyntaxError{Err: ErrUnexpectedEnd, Offset: off}
	}
	return int(n), nil
}

func decodeByteArray(r *reader) (Value, error) {
	n, err := readCount(r, 1)
	if err != nil {
		return nil, err
	}
	b, err := r.readBytes(n)
	if err != nil {
		return nil, err
	}
	a := make(ByteArray, n)
	for i, c := range b {
		a[i] = int8(c)
	}
	return a, nil
}

func decodeIntArray(r *reader) (Value, error) {
	n, err := readCount(r, 4)
	if err != nil {
		return nil, err
	}
	a := make(IntArray, n)
	for i := range a {
		v, err := r.readInt32()
		if err != nil {
			return nil, err
		}
		a[i] = v
	}
	return a, nil
}

func decodeLongArray(r *reader) (Value, error) {
	n, err := readCount(r, 8)
	if err != nil {
		return nil, err
	}
	a := make(LongArray, n)
	for i := range a {
		v, err := r.readInt64()
		if err != nil {
			return nil, err
		}
		a[i] = v
	}
	return a, nil
}

func decodeList(r *reader, depth int) (Value, error) {
	if depth >= maxDepth {
		return nil, &SyntaxError{Err: ErrDepthLimit, Offset: r.pos}
	}

	elemOff := r.pos
	b, err := r.readUint8()
	if err != nil {
		return nil, err
	}
	elem := TagID(b)
	if !elem.valid() {
		return nil, &SyntaxError{Err: ErrInvalidTagID, Offset: elemOff}
	}

	cntOff := r.pos
	cnt, err := r.readInt32()
	if err != nil {
		return nil, err
	}
	if cnt < 0 {
		return nil, &SyntaxError{Err: ErrNegativeLength, Offset: cntOff}
	}
	// An end-typed element is zero bytes wide, so any positive count is
	// malformed. Empty lists commonly declare TagEnd.
	if elem == TagEnd && cnt > 0 {
		return nil, &SyntaxError{Err: ErrInvalidTagID, Offset: elemOff}
	}
	// Every element of any other kind consumes at least one byte.
	if int64(cnt) > int64(r.remaining()) {
		return nil, &SyntaxError{Err: ErrUnexpectedEnd, Offset: cntOff}
	}

	l := List{ElemID: elem}
	if cnt == 0 {
		return l, nil
	}

	l.Items = make([]Value, 0, cnt)
	for i := 0; i < int(cnt); i++ {
		v, err := decodePayload(r, elem, depth+1)
		if err != nil {
			return nil, annotate(err, fmt.Sprintf("[%d]", i))
		}
		l.Items = append(l.Items, v)
	}
	return l, nil
}

func decodeCompound(r *reader, depth int) (Value, error) {
	if depth >= maxDepth {
		return nil, &SyntaxError{Err: ErrDepthLimit, Offset: r.pos}
	}

	c := Compound{}
	var seen map[string]struct{}

	for {
		off := r.pos
		child, err := decodeNamedTag(r, depth+1)
		if err != nil {
			return nil, err
		}
		if child.Value == nil {
			return c, nil
		}

		if seen == nil {
			seen = make(map[string]struct{}, 8)
		}
		if _, dup := seen[child.Name]; dup {
			return nil, &SyntaxError{Err: ErrDuplicateName, Offset: off, Path: child.Name}
		}
		seen[child.Name] = struct{}{}

		c = append(c, child)
	}
}
