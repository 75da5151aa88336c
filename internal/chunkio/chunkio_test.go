package chunkio

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader) []Chunk {
	t.Helper()
	var chunks []Chunk
	for {
		c, err := r.Next()
		if err == io.EOF {
			return chunks
		}
		require.NoError(t, err)
		chunks = append(chunks, c)
	}
}

func TestRoundTrip(t *testing.T) {
	in := []Chunk{
		{Type: IHDR, Data: []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0}},
		{Type: TEXT, Data: []byte("Comment\x00hello")},
		{Type: IDAT, Data: []byte{1, 2, 3}},
		{Type: IEND},
	}

	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	for _, c := range in {
		require.NoError(t, w.WriteChunk(c))
	}
	require.NoError(t, w.Flush())

	r, err := NewReader(&buf)
	require.NoError(t, err)
	out := readAll(t, r)

	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].Type, out[i].Type)
		assert.Equal(t, in[i].Data, out[i].Data)
	}
}

func TestReader_InvalidSignature(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte("definitely not a PNG")))
	assert.EqualError(t, err, "invalid PNG signature")
}

func TestReader_TruncatedSignature(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte{0x89, 0x50}))
	assert.ErrorContains(t, err, "failed to read PNG signature")
}

func TestReader_CRCMismatch(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.WriteChunk(Chunk{Type: GAMA, Data: []byte{0, 3, 91, 96}}))
	require.NoError(t, w.Flush())

	// Corrupt one payload byte; the stored CRC no longer matches.
	raw := buf.Bytes()
	raw[8+8] ^= 0xff

	r, err := NewReader(bytes.NewReader(raw))
	require.NoError(t, err)
	_, err = r.Next()
	assert.ErrorContains(t, err, "CRC mismatch")
}

func TestReader_StopsAfterIEND(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.WriteChunk(Chunk{Type: IEND}))
	require.NoError(t, w.Flush())
	buf.WriteString("trailing garbage")

	r, err := NewReader(&buf)
	require.NoError(t, err)
	c, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, IEND, c.Type)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReader_TruncatedChunk(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	require.NoError(t, err)
	require.NoError(t, w.WriteChunk(Chunk{Type: IDAT, Data: []byte{1, 2, 3, 4}}))
	require.NoError(t, w.Flush())

	r, err := NewReader(bytes.NewReader(buf.Bytes()[:buf.Len()-6]))
	require.NoError(t, err)
	_, err = r.Next()
	assert.Error(t, err)
}

func TestTypeOf(t *testing.T) {
	typ, err := TypeOf("zTXt")
	require.NoError(t, err)
	assert.Equal(t, "zTXt", typ.String())

	_, err = TypeOf("toolong")
	assert.Error(t, err)

	_, err = TypeOf("abc")
	assert.Error(t, err)
}
