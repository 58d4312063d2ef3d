// Package compression implements the block codecs NBT containers store
// payloads with.
//
// Codec identifiers follow the compression scheme bytes of the Anvil
// region format. Gzip also covers standalone files such as level.dat and
// base64 API exports, zlib covers classic chunk payloads, and lz4 covers
// worlds written with modern region compression.
package compression

import "bytes"

// CodecID is the compression scheme byte of a stored payload.
type CodecID int8

const (
	CodecIDGzip CodecID = 1
	CodecIDZlib CodecID = 2
	CodecIDNone CodecID = 3
	CodecIDLz4  CodecID = 4

	// CodecIDCustom marks payloads whose codec is named out of band.
	// It is recognized but not supported.
	CodecIDCustom CodecID = 127
)

func (i CodecID) String() string {
	switch i {
	case CodecIDGzip:
		return "gzip"
	case CodecIDZlib:
		return "zlib"
	case CodecIDNone:
		return "none"
	case CodecIDLz4:
		return "lz4"
	case CodecIDCustom:
		return "custom"
	}
	return ""
}

// Codec is a generic interface for compression/decompression.
type Codec interface {
	// Compress compresses given block.
	Compress(block []byte) ([]byte, error)
	// Decompress decompresses given block.
	Decompress(block []byte) ([]byte, error)
	// GetID returns codec identifier.
	GetID() CodecID
}

// NewCodec creates codec by id. Unknown and custom schemes give nil.
func NewCodec(id CodecID) Codec {
	switch id {
	case CodecIDGzip:
		return CodecGzip{}
	case CodecIDZlib:
		return CodecZlib{}
	case CodecIDNone:
		return CodecNone{}
	case CodecIDLz4:
		return CodecLz4{}
	default:
		return nil
	}
}

// CodecNone stores blocks as is.
type CodecNone struct{}

// Compress returns block as is.
func (c CodecNone) Compress(block []byte) ([]byte, error) {
	return block, nil
}

// Decompress returns block as is.
func (c CodecNone) Decompress(block []byte) ([]byte, error) {
	return block, nil
}

func (c CodecNone) GetID() CodecID {
	return CodecIDNone
}

// DetectCodec sniffs the compression container of a raw blob by its
// magic bytes. Blobs with no recognized magic report CodecIDNone.
func DetectCodec(block []byte) CodecID {
	if len(block) >= 2 {
		if block[0] == 0x1f && block[1] == 0x8b {
			return CodecIDGzip
		}
		// zlib deflate with a valid FCHECK
		if block[0] == 0x78 && (uint32(block[0])<<8|uint32(block[1]))%31 == 0 {
			return CodecIDZlib
		}
	}
	if bytes.HasPrefix(block, lz4BlockMagic) {
		return CodecIDLz4
	}
	return CodecIDNone
}
