package compression

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// CodecGzip implements the RFC 1952 container used for level.dat,
// player data and offline chunk exports.
type CodecGzip struct{}

func (c CodecGzip) Compress(block []byte) ([]byte, error) {
	var out bytes.Buffer

	w := gzip.NewWriter(&out)
	if _, err := w.Write(block); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

func (c CodecGzip) Decompress(block []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(block))
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return io.ReadAll(r)
}

func (c CodecGzip) GetID() CodecID {
	return CodecIDGzip
}
