// Command nbt2json decodes NBT documents into JSON.
//
// The input is a file argument or stdin: a bare, gzip, zlib or lz4
// compressed NBT blob, base64 encoded text with one document per line
// (-base64), or a region file (-chunk). Region chunks can be dumped one
// at a time (-chunk X,Z) or as JSON lines for the whole file (-chunk all).
package main

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/ch-iv/nbt2dict/compression"
	"github.com/ch-iv/nbt2dict/nbt"
	"github.com/ch-iv/nbt2dict/nbt/nbt2json"
	"github.com/ch-iv/nbt2dict/region"
)

var (
	flagBase64  = flag.Bool("base64", false, "treat input as base64 encoded text, one document per line")
	flagChunk   = flag.String("chunk", "", "read chunk X,Z (or every chunk: \"all\") from a region file")
	flagCompact = flag.Bool("compact", false, "emit compact JSON instead of indented")
	flagJobs    = flag.Int("jobs", runtime.GOMAXPROCS(0), "decode this many documents or chunks in parallel")
	flagVerbose = flag.Bool("v", false, "log decoding details to stderr")
)

func jobLimit() int {
	if *flagJobs < 1 {
		return 1
	}
	return *flagJobs
}

func newLogger() *zap.Logger {
	if !*flagVerbose {
		return zap.NewNop()
	}

	conf := zap.NewDevelopmentConfig()
	conf.Level.SetLevel(zap.DebugLevel)
	conf.Sampling = nil
	conf.DisableStacktrace = true
	conf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	conf.OutputPaths = []string{"stderr"}

	l, err := conf.Build()
	if err != nil {
		panic(err)
	}
	return l
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(bufio.NewReaderSize(os.Stdin, 1<<18))
	}
	return os.ReadFile(path)
}

func decodeBlob(l *zap.Logger, blob []byte) (nbt.Tag, error) {
	id := compression.DetectCodec(blob)

	data, err := compression.NewCodec(id).Decompress(blob)
	if err != nil {
		return nbt.Tag{}, fmt.Errorf("decompressing input: %w", err)
	}

	start := time.Now()
	root, err := nbt.Parse(data)
	if err != nil {
		return nbt.Tag{}, err
	}

	l.Debug("decoded document",
		zap.String("codec", id.String()),
		zap.String("root", root.Name),
		zap.Int("input_size", len(blob)),
		zap.Int("decoded_size", len(data)),
		zap.Duration("parse_time", time.Since(start)))
	return root, nil
}

func writeJSON(out *bufio.Writer, v nbt.Value) error {
	var (
		js  []byte
		err error
	)
	if *flagCompact {
		js, err = nbt2json.Marshal(v)
	} else {
		js, err = nbt2json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return err
	}

	if _, err := out.Write(js); err != nil {
		return err
	}
	return out.WriteByte('\n')
}

func dumpBlob(l *zap.Logger, out *bufio.Writer, blob []byte) error {
	root, err := decodeBlob(l, blob)
	if err != nil {
		return err
	}
	return writeJSON(out, root.Value)
}

// dumpLines decodes one base64 wrapped document per input line. Lines
// decode in parallel but print in input order, so a malformed line fails
// the run before anything is written.
func dumpLines(l *zap.Logger, out *bufio.Writer, input []byte) error {
	type inputLine struct {
		n    int
		text []byte
	}

	var docs []inputLine
	for i, line := range bytes.Split(input, []byte("\n")) {
		if line = bytes.TrimSpace(line); len(line) > 0 {
			docs = append(docs, inputLine{n: i + 1, text: line})
		}
	}

	roots := make([]nbt.Tag, len(docs))

	var eg errgroup.Group
	eg.SetLimit(jobLimit())

	for i, doc := range docs {
		eg.Go(func() error {
			blob, err := base64.StdEncoding.DecodeString(string(doc.text))
			if err != nil {
				return fmt.Errorf("line %d: decoding base64: %w", doc.n, err)
			}

			root, err := decodeBlob(l, blob)
			if err != nil {
				return fmt.Errorf("line %d: %w", doc.n, err)
			}

			roots[i] = root
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, root := range roots {
		if err := writeJSON(out, root.Value); err != nil {
			return err
		}
	}
	return nil
}

func parseChunkCoords(s string) (x, z int, err error) {
	xs, zs, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid chunk %q: want X,Z", s)
	}
	if x, err = strconv.Atoi(strings.TrimSpace(xs)); err != nil {
		return 0, 0, fmt.Errorf("invalid chunk %q: %w", s, err)
	}
	if z, err = strconv.Atoi(strings.TrimSpace(zs)); err != nil {
		return 0, 0, fmt.Errorf("invalid chunk %q: %w", s, err)
	}
	return x, z, nil
}

func dumpChunk(l *zap.Logger, out *bufio.Writer, blob []byte) error {
	x, z, err := parseChunkCoords(*flagChunk)
	if err != nil {
		return err
	}

	r, err := region.NewReader(bytes.NewReader(blob))
	if err != nil {
		return err
	}

	root, err := r.Chunk(x, z)
	if err != nil {
		return err
	}

	l.Debug("decoded chunk",
		zap.Int("x", x), zap.Int("z", z),
		zap.Time("saved_at", r.Timestamp(x, z)))

	return writeJSON(out, root.Value)
}

func dumpAllChunks(l *zap.Logger, out *bufio.Writer, blob []byte) error {
	r, err := region.NewReader(bytes.NewReader(blob))
	if err != nil {
		return err
	}

	// Chunks decode in parallel but print in slot order.
	lines := make([][]byte, 1024)

	var eg errgroup.Group
	eg.SetLimit(jobLimit())

	for z := 0; z < 32; z++ {
		for x := 0; x < 32; x++ {
			if !r.Present(x, z) {
				continue
			}
			eg.Go(func() error {
				root, err := r.Chunk(x, z)
				if err != nil {
					return fmt.Errorf("chunk (%d, %d): %w", x, z, err)
				}

				js, err := nbt2json.Marshal(root.Value)
				if err != nil {
					return err
				}

				var line bytes.Buffer
				fmt.Fprintf(&line, `{"x":%d,"z":%d,"chunk":`, x, z)
				line.Write(js)
				line.WriteByte('}')

				lines[x|z<<5] = line.Bytes()
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	count := 0
	for _, line := range lines {
		if line == nil {
			continue
		}
		if _, err := out.Write(line); err != nil {
			return err
		}
		if err := out.WriteByte('\n'); err != nil {
			return err
		}
		count++
	}

	l.Debug("decoded region", zap.Int("chunks", count))
	return nil
}

func do() error {
	l := newLogger()
	defer func() { _ = l.Sync() }()

	if *flagBase64 && *flagChunk != "" {
		return errors.New("-base64 and -chunk are mutually exclusive")
	}

	input, err := readInput(flag.Arg(0))
	if err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)

	switch {
	case *flagBase64:
		err = dumpLines(l, out, input)
	case *flagChunk == "all":
		err = dumpAllChunks(l, out, input)
	case *flagChunk != "":
		err = dumpChunk(l, out, input)
	default:
		err = dumpBlob(l, out, input)
	}
	if err != nil {
		return err
	}

	return out.Flush()
}

func main() {
	flag.Parse()

	if flag.NArg() > 1 {
		fmt.Fprintf(os.Stderr, "usage: nbt2json [flags] [FILE]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := do(); err != nil {
		fmt.Fprintf(os.Stderr, "nbt2json: %v\n", err)
		os.Exit(1)
	}
}
