package compression

import (
	"bytes"
	"encoding/binary"

	"github.com/OneOfOne/xxhash"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/xerrors"
)

// Block stream framing used by region files with compression scheme 4.
// Every block carries a 21 byte header followed by the block data, and
// the stream is terminated by an empty block with a zero checksum.
const (
	lz4HeaderLen = 21 // magic, token and three little-endian int32 fields

	lz4MethodRaw = 0x10
	lz4MethodLz4 = 0x20

	// The low nibble of the token encodes ceil(log2(blockSize)) - 10.
	lz4LevelBase = 10

	lz4BlockSize = 1 << 16
	lz4Level     = 16

	lz4ChecksumSeed = 0x9747b28c
)

var lz4BlockMagic = []byte("LZ4Block")

// CodecLz4 implements the lz4 block stream of compression scheme 4.
type CodecLz4 struct{}

func (c CodecLz4) Compress(block []byte) ([]byte, error) {
	var (
		out bytes.Buffer
		bc  lz4.Compressor
	)

	for len(block) > 0 {
		n := len(block)
		if n > lz4BlockSize {
			n = lz4BlockSize
		}
		if err := lz4WriteBlock(&out, &bc, block[:n]); err != nil {
			return nil, err
		}
		block = block[n:]
	}

	var end [lz4HeaderLen]byte
	copy(end[:], lz4BlockMagic)
	end[8] = lz4MethodRaw | (lz4Level - lz4LevelBase)
	out.Write(end[:])

	return out.Bytes(), nil
}

// lz4WriteBlock frames one block. bc is reused across the blocks of a
// stream to amortize its match table.
func lz4WriteBlock(out *bytes.Buffer, bc *lz4.Compressor, src []byte) error {
	compressed := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := bc.CompressBlock(src, compressed)
	if err != nil {
		return err
	}

	method := byte(lz4MethodLz4)
	if n == 0 || n >= len(src) {
		// Incompressible blocks are stored raw.
		method = lz4MethodRaw
		compressed = src
		n = len(src)
	} else {
		compressed = compressed[:n]
	}

	var header [lz4HeaderLen]byte
	copy(header[:], lz4BlockMagic)
	header[8] = method | (lz4Level - lz4LevelBase)
	binary.LittleEndian.PutUint32(header[9:], uint32(n))
	binary.LittleEndian.PutUint32(header[13:], uint32(len(src)))
	binary.LittleEndian.PutUint32(header[17:], xxhash.Checksum32S(src, lz4ChecksumSeed))

	out.Write(header[:])
	out.Write(compressed)
	return nil
}

func (c CodecLz4) Decompress(block []byte) ([]byte, error) {
	var out bytes.Buffer

	for {
		if len(block) < lz4HeaderLen {
			return nil, xerrors.New("lz4: stream ended prematurely")
		}
		header := block[:lz4HeaderLen]
		block = block[lz4HeaderLen:]

		if !bytes.Equal(header[:8], lz4BlockMagic) {
			return nil, xerrors.New("lz4: stream is corrupted: bad block magic")
		}

		token := header[8]
		method := int(token) & 0xf0
		level := lz4LevelBase + int(token&0x0f)
		if method != lz4MethodRaw && method != lz4MethodLz4 {
			return nil, xerrors.Errorf("lz4: stream is corrupted: unknown method %#02x", method)
		}

		compressedLen := int(int32(binary.LittleEndian.Uint32(header[9:])))
		originalLen := int(int32(binary.LittleEndian.Uint32(header[13:])))
		check := binary.LittleEndian.Uint32(header[17:])

		if compressedLen < 0 || originalLen < 0 ||
			originalLen > 1<<level ||
			(originalLen == 0) != (compressedLen == 0) ||
			(method == lz4MethodRaw && originalLen != compressedLen) {
			return nil, xerrors.New("lz4: stream is corrupted: bad block header")
		}

		if originalLen == 0 {
			if check != 0 {
				return nil, xerrors.New("lz4: stream is corrupted: bad end mark")
			}
			break
		}

		if len(block) < compressedLen {
			return nil, xerrors.New("lz4: stream ended prematurely")
		}
		compressed := block[:compressedLen]
		block = block[compressedLen:]

		var original []byte
		if method == lz4MethodRaw {
			original = compressed
		} else {
			original = make([]byte, originalLen)
			n, err := lz4.UncompressBlock(compressed, original)
			if err != nil {
				return nil, xerrors.Errorf("lz4: %w", err)
			}
			if n != originalLen {
				return nil, xerrors.New("lz4: stream is corrupted: short block")
			}
		}

		if xxhash.Checksum32S(original, lz4ChecksumSeed) != check {
			return nil, xerrors.New("lz4: stream is corrupted: checksum mismatch")
		}

		out.Write(original)
	}

	return out.Bytes(), nil
}

func (c CodecLz4) GetID() CodecID {
	return CodecIDLz4
}
