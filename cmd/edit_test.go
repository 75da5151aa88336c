package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rm-hull/pngedit/internal/chunkio"
	"github.com/rm-hull/pngedit/internal/edit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ihdrData = []byte{0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0}

func writePNG(t *testing.T, path string, chunks []chunkio.Chunk) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	w, err := chunkio.NewWriter(f)
	require.NoError(t, err)
	for _, c := range chunks {
		require.NoError(t, w.WriteChunk(c))
	}
	require.NoError(t, w.Flush())
	require.NoError(t, f.Close())
}

func readPNG(t *testing.T, path string) []chunkio.Chunk {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r, err := chunkio.NewReader(f)
	require.NoError(t, err)
	var chunks []chunkio.Chunk
	for {
		c, err := r.Next()
		if err == io.EOF {
			return chunks
		}
		require.NoError(t, err)
		chunks = append(chunks, c)
	}
}

func TestEdit(t *testing.T) {
	basic := []chunkio.Chunk{
		{Type: chunkio.IHDR, Data: ihdrData},
		{Type: chunkio.IDAT, Data: []byte{1, 2, 3}},
		{Type: chunkio.IEND},
	}

	t.Run("inserts gamma before image data", func(t *testing.T) {
		dir := t.TempDir()
		inPath := filepath.Join(dir, "in.png")
		outPath := filepath.Join(dir, "out.png")
		writePNG(t, inPath, basic)

		err := Edit(inPath, outPath, []edit.Directive{edit.Gamma(2.2)}, false)
		require.NoError(t, err)

		out := readPNG(t, outPath)
		require.Len(t, out, 4)
		assert.Equal(t, chunkio.IHDR, out[0].Type)
		assert.Equal(t, chunkio.GAMA, out[1].Type)
		assert.Equal(t, chunkio.IDAT, out[2].Type)
		assert.Equal(t, chunkio.IEND, out[3].Type)
	})

	t.Run("deletes chunks by spec", func(t *testing.T) {
		dir := t.TempDir()
		inPath := filepath.Join(dir, "in.png")
		outPath := filepath.Join(dir, "out.png")
		writePNG(t, inPath, []chunkio.Chunk{
			{Type: chunkio.IHDR, Data: ihdrData},
			{Type: chunkio.TEXT, Data: []byte("Comment\x00secret")},
			{Type: chunkio.IDAT, Data: []byte{1, 2, 3}},
			{Type: chunkio.IEND},
		})

		d, err := edit.ParseChunkSpec("tEXt!")
		require.NoError(t, err)
		require.NoError(t, Edit(inPath, outPath, []edit.Directive{d}, false))

		for _, c := range readPNG(t, outPath) {
			assert.NotEqual(t, chunkio.TEXT, c.Type)
		}
	})

	t.Run("strict mode fails on unplaceable edits", func(t *testing.T) {
		dir := t.TempDir()
		inPath := filepath.Join(dir, "in.png")
		outPath := filepath.Join(dir, "out.png")
		writePNG(t, inPath, []chunkio.Chunk{
			{Type: chunkio.IHDR, Data: ihdrData},
			{Type: chunkio.IEND},
		})

		err := Edit(inPath, outPath, []edit.Directive{edit.Gamma(2.2)}, true)
		require.Error(t, err)

		// No partial output is left behind.
		_, statErr := os.Stat(outPath)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("missing input file", func(t *testing.T) {
		dir := t.TempDir()
		err := Edit(filepath.Join(dir, "missing.png"), filepath.Join(dir, "out.png"), nil, false)
		assert.Error(t, err)
	})

	t.Run("garbage input produces no output", func(t *testing.T) {
		dir := t.TempDir()
		inPath := filepath.Join(dir, "in.png")
		outPath := filepath.Join(dir, "out.png")
		require.NoError(t, os.WriteFile(inPath, []byte("not a PNG"), 0o644))

		err := Edit(inPath, outPath, nil, false)
		require.Error(t, err)
		_, statErr := os.Stat(outPath)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.png")
	writePNG(t, path, []chunkio.Chunk{
		{Type: chunkio.IHDR, Data: ihdrData},
		{Type: chunkio.GAMA, Data: []byte{0, 3, 91, 96}},
		{Type: chunkio.TEXT, Data: []byte("Comment\x00hello")},
		{Type: chunkio.IDAT, Data: []byte{1, 2, 3}},
		{Type: chunkio.IEND},
	})

	var buf bytes.Buffer
	require.NoError(t, List(path, &buf))

	out := buf.String()
	assert.Contains(t, out, `chunk "IHDR" (13 bytes): Width = 1, Height = 1, Bit depth = 8, Color type = 6`)
	assert.Contains(t, out, `chunk "gAMA" (4 bytes): Gamma = 2.2`)
	assert.Contains(t, out, `chunk "tEXt" (14 bytes): Comment = "hello"`)
	assert.Contains(t, out, `chunk "IDAT" (3 bytes)`)
	assert.Contains(t, out, `chunk "IEND" (0 bytes)`)
}
