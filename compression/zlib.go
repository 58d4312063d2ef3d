package compression

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// CodecZlib implements the RFC 1950 container used for chunk payloads
// inside region files.
type CodecZlib struct{}

func (c CodecZlib) Compress(block []byte) ([]byte, error) {
	var out bytes.Buffer

	w := zlib.NewWriter(&out)
	if _, err := w.Write(block); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

func (c CodecZlib) Decompress(block []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(block))
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	return io.ReadAll(r)
}

func (c CodecZlib) GetID() CodecID {
	return CodecIDZlib
}
