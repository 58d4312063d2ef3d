// Package region reads the Anvil region containers world chunks are
// stored in.
//
// A region file holds up to 1024 chunks in 4 KiB sectors. The first two
// sectors form the header: 1024 big-endian chunk locations followed by
// 1024 big-endian save timestamps. A stored chunk starts with a
// big-endian length and a compression scheme byte; the bytes that follow
// hold a single compressed NBT document.
package region

import (
	"encoding/binary"
	"io"
	"time"

	"golang.org/x/xerrors"

	"github.com/ch-iv/nbt2dict/compression"
	"github.com/ch-iv/nbt2dict/nbt"
)

const (
	chunkCount = 1024
	sectorSize = 4096
	headerSize = 2 * sectorSize

	// Stored chunk header: big-endian length plus the scheme byte.
	// The length counts the scheme byte and the compressed data.
	chunkHeaderLen = 5

	// Chunks larger than 255 sectors are moved to external .mcc files
	// and marked by this bit in the scheme byte.
	externalFlag = 0x80
)

// ErrChunkMissing is returned when the requested chunk has never been
// saved to the region file.
var ErrChunkMissing = xerrors.New("region: chunk is not present")

// Reader reads chunks from a single region file.
//
// Methods are safe for concurrent use.
type Reader struct {
	r          io.ReaderAt
	locations  [chunkCount]uint32
	timestamps [chunkCount]uint32
}

// NewReader reads the region header from r.
//
// Chunk coordinates passed to the methods below are taken modulo 32, so
// both region-local and world chunk coordinates work.
func NewReader(r io.ReaderAt) (*Reader, error) {
	rd := &Reader{r: r}

	header := io.NewSectionReader(r, 0, headerSize)
	if err := binary.Read(header, binary.BigEndian, &rd.locations); err != nil {
		return nil, xerrors.Errorf("region: reading header: %w", err)
	}
	if err := binary.Read(header, binary.BigEndian, &rd.timestamps); err != nil {
		return nil, xerrors.Errorf("region: reading header: %w", err)
	}

	return rd, nil
}

func chunkIndex(x, z int) int {
	return x&31 | (z&31)<<5
}

// Present reports whether the chunk has been saved to this file.
func (r *Reader) Present(x, z int) bool {
	loc := r.locations[chunkIndex(x, z)]
	return loc>>8 != 0 && loc&0xff != 0
}

// Timestamp returns the time the chunk was last saved. Chunks that were
// never saved report the unix epoch.
func (r *Reader) Timestamp(x, z int) time.Time {
	return time.Unix(int64(r.timestamps[chunkIndex(x, z)]), 0)
}

// Chunk reads, decompresses and decodes the chunk document.
func (r *Reader) Chunk(x, z int) (nbt.Tag, error) {
	data, err := r.ChunkData(x, z)
	if err != nil {
		return nbt.Tag{}, err
	}

	root, err := nbt.Parse(data)
	if err != nil {
		return nbt.Tag{}, xerrors.Errorf("region: decoding chunk: %w", err)
	}
	return root, nil
}

// ChunkData reads and decompresses the chunk document, returning the raw
// NBT bytes.
func (r *Reader) ChunkData(x, z int) ([]byte, error) {
	loc := r.locations[chunkIndex(x, z)]
	sectorOffset := int64(loc >> 8)
	sectorCount := int64(loc & 0xff)
	if sectorOffset == 0 || sectorCount == 0 {
		return nil, ErrChunkMissing
	}
	if sectorOffset*sectorSize < headerSize {
		return nil, xerrors.New("region: chunk points into the header")
	}

	var header [chunkHeaderLen]byte
	if _, err := r.r.ReadAt(header[:], sectorOffset*sectorSize); err != nil {
		return nil, xerrors.Errorf("region: reading chunk header: %w", err)
	}

	length := int64(binary.BigEndian.Uint32(header[:]))
	scheme := header[4]

	if length == 0 {
		return nil, xerrors.New("region: chunk has zero length")
	}
	if length+4 > sectorCount*sectorSize {
		return nil, xerrors.New("region: chunk exceeds its allocated sectors")
	}
	if scheme&externalFlag != 0 {
		return nil, xerrors.Errorf("region: chunk is stored in an external file (scheme %d)", scheme)
	}

	codec := compression.NewCodec(compression.CodecID(scheme))
	if codec == nil {
		return nil, xerrors.Errorf("region: unsupported compression scheme %d", scheme)
	}

	compressed := make([]byte, length-1)
	if _, err := r.r.ReadAt(compressed, sectorOffset*sectorSize+chunkHeaderLen); err != nil {
		return nil, xerrors.Errorf("region: reading chunk payload: %w", err)
	}

	data, err := codec.Decompress(compressed)
	if err != nil {
		return nil, xerrors.Errorf("region: decompressing chunk: %w", err)
	}
	return data, nil
}
