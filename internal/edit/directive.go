// Package edit implements the chunk-editing core: canonicalizing edit
// directives into (type, payload) pairs and streaming an existing chunk
// sequence through the resulting rewrite plan.
package edit

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/klauspost/compress/zlib"
	"github.com/rm-hull/pngedit/internal/chunkio"
)

// iccProfileName is the profile-name field written into iCCP chunks. The
// format requires a 1-79 byte Latin-1 name before the compressed profile.
const iccProfileName = "ICC Profile"

// Canonical is a directive reduced to its wire form: a 4-byte chunk type
// and either a payload to add/replace or a deletion marker.
type Canonical struct {
	Type   chunkio.ChunkType
	Data   []byte
	Delete bool
}

// Directive is a single user-specified edit. Each friendly directive kind
// carries its properly typed value, resolved at construction.
type Directive interface {
	canonicalize() (Canonical, error)
}

type gammaDirective struct {
	value float64
}

// Gamma sets the image gamma. The chunk stores round(v * 100000) as a
// big-endian uint32.
func Gamma(v float64) Directive {
	return gammaDirective{value: v}
}

func (d gammaDirective) canonicalize() (Canonical, error) {
	payload := make([]byte, 4)
	binary.BigEndian.PutUint32(payload, uint32(math.Round(d.value*100000)))
	return Canonical{Type: chunkio.GAMA, Data: payload}, nil
}

type sigBitsDirective struct {
	bits []int
}

// SigBits sets the significant bit count per channel, one byte per
// component in order. Between 1 and 3 components are accepted.
func SigBits(bits ...int) Directive {
	return sigBitsDirective{bits: bits}
}

func (d sigBitsDirective) canonicalize() (Canonical, error) {
	if len(d.bits) < 1 || len(d.bits) > 3 {
		return Canonical{}, fmt.Errorf("sigbit expects 1 to 3 components, got %d", len(d.bits))
	}
	payload := make([]byte, len(d.bits))
	for i, b := range d.bits {
		if b < 0 || b > 255 {
			return Canonical{}, fmt.Errorf("sigbit component %d out of range", b)
		}
		payload[i] = byte(b)
	}
	return Canonical{Type: chunkio.SBIT, Data: payload}, nil
}

type iccProfileDirective struct {
	profile []byte
}

// ICCProfile embeds an ICC colour profile. The chunk layout is a
// NUL-terminated profile name, a compression-method byte (0 = deflate) and
// the zlib-compressed profile bytes.
func ICCProfile(profile []byte) Directive {
	return iccProfileDirective{profile: profile}
}

func (d iccProfileDirective) canonicalize() (Canonical, error) {
	var buf bytes.Buffer
	buf.WriteString(iccProfileName)
	buf.WriteByte(0)
	buf.WriteByte(0) // compression method: deflate
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(d.profile); err != nil {
		return Canonical{}, fmt.Errorf("failed to compress ICC profile: %w", err)
	}
	if err := zw.Close(); err != nil {
		return Canonical{}, fmt.Errorf("failed to compress ICC profile: %w", err)
	}
	return Canonical{Type: chunkio.ICCP, Data: buf.Bytes()}, nil
}

type friendlyDirective struct {
	name  string
	data  []byte
	unset bool
}

// Friendly is the permissive escape hatch for directive names longer than
// 4 characters that no known friendly kind claims: the name is truncated
// to a 4-byte chunk type and the value passed through unchanged, with a
// warning. A nil value deletes the truncated type.
func Friendly(name string, data []byte) Directive {
	return friendlyDirective{name: name, data: data, unset: data == nil}
}

func (d friendlyDirective) canonicalize() (Canonical, error) {
	var t chunkio.ChunkType
	copy(t[:], d.name)
	log.Printf("warning: unknown chunk type %q, using %q", d.name, t)
	return Canonical{Type: t, Data: d.data, Delete: d.unset}, nil
}

type rawDirective struct {
	typ  chunkio.ChunkType
	data []byte
}

// SetChunk adds or replaces all chunks of the given type with the given
// payload.
func SetChunk(t chunkio.ChunkType, data []byte) Directive {
	return rawDirective{typ: t, data: data}
}

func (d rawDirective) canonicalize() (Canonical, error) {
	return Canonical{Type: d.typ, Data: d.data}, nil
}

type deleteDirective struct {
	typ chunkio.ChunkType
}

// DeleteChunk removes all chunks of the given type.
func DeleteChunk(t chunkio.ChunkType) Directive {
	return deleteDirective{typ: t}
}

func (d deleteDirective) canonicalize() (Canonical, error) {
	return Canonical{Type: d.typ, Delete: true}, nil
}

type fileDirective struct {
	typ  chunkio.ChunkType
	path string
}

// SetChunkFromFile adds or replaces all chunks of the given type with the
// contents of the named file, read when the plan is built.
func SetChunkFromFile(t chunkio.ChunkType, path string) Directive {
	return fileDirective{typ: t, path: path}
}

func (d fileDirective) canonicalize() (Canonical, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		return Canonical{}, fmt.Errorf("failed to read %q chunk payload: %w", d.typ, err)
	}
	return Canonical{Type: d.typ, Data: data}, nil
}
