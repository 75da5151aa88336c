// Package chunkio reads and writes the PNG chunk framing: an 8-byte
// signature followed by length/type/data/CRC records. It never interprets
// chunk contents.
package chunkio

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

var signature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// ChunkType is a 4-byte chunk type identifier, e.g. "IHDR" or "gAMA".
type ChunkType [4]byte

// Well-known chunk types.
var (
	IHDR = ChunkType{'I', 'H', 'D', 'R'}
	PLTE = ChunkType{'P', 'L', 'T', 'E'}
	IDAT = ChunkType{'I', 'D', 'A', 'T'}
	IEND = ChunkType{'I', 'E', 'N', 'D'}
	TRNS = ChunkType{'t', 'R', 'N', 'S'}
	GAMA = ChunkType{'g', 'A', 'M', 'A'}
	SBIT = ChunkType{'s', 'B', 'I', 'T'}
	SPLT = ChunkType{'s', 'P', 'L', 'T'}
	ICCP = ChunkType{'i', 'C', 'C', 'P'}
	SRGB = ChunkType{'s', 'R', 'G', 'B'}
	TEXT = ChunkType{'t', 'E', 'X', 't'}
)

// TypeOf converts s to a ChunkType. The string must be exactly 4 bytes.
func TypeOf(s string) (ChunkType, error) {
	var t ChunkType
	if len(s) != 4 {
		return t, fmt.Errorf("chunk type %q must be exactly 4 bytes", s)
	}
	copy(t[:], s)
	return t, nil
}

func (t ChunkType) String() string {
	return string(t[:])
}

// Chunk is a single typed record. Length and CRC are framing concerns and
// are reconstructed on write.
type Chunk struct {
	Type ChunkType
	Data []byte
}

// Reader yields chunks from a PNG stream in file order, verifying the
// CRC-32 of each chunk as it goes.
type Reader struct {
	br   *bufio.Reader
	done bool
}

// NewReader validates the PNG signature and returns a chunk reader
// positioned at the first chunk.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	sig := make([]byte, len(signature))
	if _, err := io.ReadFull(br, sig); err != nil {
		return nil, fmt.Errorf("failed to read PNG signature: %w", err)
	}
	if !bytes.Equal(sig, signature) {
		return nil, fmt.Errorf("invalid PNG signature")
	}
	return &Reader{br: br}, nil
}

// Next returns the next chunk, or io.EOF once the stream is exhausted.
// Reading stops after IEND; trailing bytes are ignored.
func (r *Reader) Next() (Chunk, error) {
	if r.done {
		return Chunk{}, io.EOF
	}

	var header [8]byte
	if _, err := io.ReadFull(r.br, header[:4]); err != nil {
		if err == io.EOF {
			r.done = true
			return Chunk{}, io.EOF
		}
		return Chunk{}, fmt.Errorf("failed to read chunk length: %w", err)
	}
	length := binary.BigEndian.Uint32(header[:4])
	if length > 0x7fffffff {
		return Chunk{}, fmt.Errorf("chunk length %d out of range", length)
	}

	if _, err := io.ReadFull(r.br, header[4:]); err != nil {
		return Chunk{}, fmt.Errorf("failed to read chunk type: %w", err)
	}
	var c Chunk
	copy(c.Type[:], header[4:])

	c.Data = make([]byte, length)
	if _, err := io.ReadFull(r.br, c.Data); err != nil {
		return Chunk{}, fmt.Errorf("failed to read %q chunk data: %w", c.Type, err)
	}

	var sum [4]byte
	if _, err := io.ReadFull(r.br, sum[:]); err != nil {
		return Chunk{}, fmt.Errorf("failed to read %q chunk CRC: %w", c.Type, err)
	}
	crc := crc32.NewIEEE()
	crc.Write(c.Type[:])
	crc.Write(c.Data)
	if got, want := crc.Sum32(), binary.BigEndian.Uint32(sum[:]); got != want {
		return Chunk{}, fmt.Errorf("CRC mismatch in %q chunk: computed %08x, stored %08x", c.Type, got, want)
	}

	if c.Type == IEND {
		r.done = true
	}
	return c, nil
}

// Writer serializes chunks into PNG framing with freshly computed CRCs.
type Writer struct {
	bw *bufio.Writer
}

// NewWriter writes the PNG signature and returns a chunk writer.
func NewWriter(w io.Writer) (*Writer, error) {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(signature); err != nil {
		return nil, fmt.Errorf("failed to write PNG signature: %w", err)
	}
	return &Writer{bw: bw}, nil
}

// WriteChunk emits a single length/type/data/CRC record.
func (w *Writer) WriteChunk(c Chunk) error {
	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(c.Data)))
	copy(header[4:], c.Type[:])
	if _, err := w.bw.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write %q chunk header: %w", c.Type, err)
	}
	if _, err := w.bw.Write(c.Data); err != nil {
		return fmt.Errorf("failed to write %q chunk data: %w", c.Type, err)
	}
	crc := crc32.NewIEEE()
	crc.Write(c.Type[:])
	crc.Write(c.Data)
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	if _, err := w.bw.Write(sum[:]); err != nil {
		return fmt.Errorf("failed to write %q chunk CRC: %w", c.Type, err)
	}
	return nil
}

// Flush writes any buffered output to the underlying writer.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}
