package cmd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"

	bst "github.com/mixcode/binarystruct"
	"github.com/rm-hull/pngedit/internal/chunkio"
)

type ihdrFields struct {
	Width       uint32 `binary:"uint32"`
	Height      uint32 `binary:"uint32"`
	BitDepth    uint8  `binary:"uint8"`
	ColorType   uint8  `binary:"uint8"`
	Compression uint8  `binary:"uint8"`
	Filter      uint8  `binary:"uint8"`
	Interlace   uint8  `binary:"uint8"`
}

// List dumps the chunk sequence of the PNG at path to out, one line per
// chunk, decoding the details of a few well-known types.
func List(path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("warning: failed to close input file %s: %v", path, err)
		}
	}()

	reader, err := chunkio.NewReader(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for {
		c, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintf(out, "chunk %q (%d bytes)%s\n", c.Type, len(c.Data), describe(c))
	}
	return nil
}

func describe(c chunkio.Chunk) string {
	switch c.Type {
	case chunkio.IHDR:
		var h ihdrFields
		if _, err := bst.Read(bytes.NewReader(c.Data), bst.BigEndian, &h); err != nil {
			return ": corrupted!"
		}
		return fmt.Sprintf(": Width = %d, Height = %d, Bit depth = %d, Color type = %d, Interlace method = %d",
			h.Width, h.Height, h.BitDepth, h.ColorType, h.Interlace)
	case chunkio.GAMA:
		if len(c.Data) != 4 {
			return ": corrupted!"
		}
		return fmt.Sprintf(": Gamma = %g", float64(binary.BigEndian.Uint32(c.Data))/100000)
	case chunkio.SRGB:
		if len(c.Data) != 1 {
			return ": corrupted!"
		}
		return fmt.Sprintf(": Rendering intent = %d", c.Data[0])
	case chunkio.SBIT:
		return fmt.Sprintf(": Significant bits = %v", c.Data)
	case chunkio.TEXT:
		if i := bytes.IndexByte(c.Data, 0); i >= 0 {
			return fmt.Sprintf(": %s = %q", c.Data[:i], c.Data[i+1:])
		}
		return ": corrupted!"
	default:
		return ""
	}
}
