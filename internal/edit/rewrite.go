package edit

import (
	"io"

	"github.com/rm-hull/pngedit/internal/chunkio"
)

// Source yields chunks in file order. chunkio.Reader satisfies it.
type Source interface {
	Next() (chunkio.Chunk, error)
}

// Rewriter streams an existing chunk sequence through a plan: deletions
// are dropped, singleton types are replaced at their original position,
// and any edits still pending when the first IDAT chunk appears are
// flushed immediately before it. Forward-only, no lookahead; one input
// chunk is consumed per output chunk except at the IDAT boundary.
type Rewriter struct {
	src      Source
	deletes  map[chunkio.ChunkType]struct{}
	replaces []pendingChunk
	inserts  []pendingChunk
	flushed  bool
	queue    []chunkio.Chunk
	err      error
}

// Rewrite binds the plan to a chunk source. The returned Rewriter owns a
// private copy of the pending edits, so the plan stays reusable.
func (p *Plan) Rewrite(src Source) *Rewriter {
	return &Rewriter{
		src:      src,
		deletes:  p.deletes,
		replaces: append([]pendingChunk(nil), p.replaces...),
		inserts:  append([]pendingChunk(nil), p.inserts...),
	}
}

// Next returns the next output chunk, or io.EOF when the input is
// exhausted. Any other error comes from the underlying source.
func (rw *Rewriter) Next() (chunkio.Chunk, error) {
	for {
		if len(rw.queue) > 0 {
			c := rw.queue[0]
			rw.queue = rw.queue[1:]
			return c, nil
		}
		if rw.err != nil {
			return chunkio.Chunk{}, rw.err
		}

		c, err := rw.src.Next()
		if err != nil {
			rw.err = err
			return chunkio.Chunk{}, err
		}

		out, emit := rw.apply(c)

		if c.Type == chunkio.IDAT && !rw.flushed {
			// Pending edits with no original counterpart must land
			// before the image data. This fires exactly once.
			rw.flushed = true
			for _, p := range rw.replaces {
				rw.queue = append(rw.queue, chunkio.Chunk{Type: p.typ, Data: p.data})
			}
			for _, p := range rw.inserts {
				rw.queue = append(rw.queue, chunkio.Chunk{Type: p.typ, Data: p.data})
			}
			rw.replaces, rw.inserts = nil, nil
			if emit {
				rw.queue = append(rw.queue, out)
			}
			continue
		}

		if emit {
			return out, nil
		}
	}
}

// apply runs the per-chunk policy: delete, replace in place, or pass
// through untouched.
func (rw *Rewriter) apply(c chunkio.Chunk) (chunkio.Chunk, bool) {
	if _, del := rw.deletes[c.Type]; del {
		return chunkio.Chunk{}, false
	}
	for i, p := range rw.replaces {
		if p.typ == c.Type {
			rw.replaces = append(rw.replaces[:i], rw.replaces[i+1:]...)
			return chunkio.Chunk{Type: c.Type, Data: p.data}, true
		}
	}
	return c, true
}

// Unapplied reports the chunk types of edits that were never flushed
// because no IDAT chunk was seen. Meaningful once Next has returned
// io.EOF; callers decide whether that is a warning or an error.
func (rw *Rewriter) Unapplied() []chunkio.ChunkType {
	if rw.err != io.EOF {
		return nil
	}
	var types []chunkio.ChunkType
	for _, p := range rw.replaces {
		types = append(types, p.typ)
	}
	for _, p := range rw.inserts {
		types = append(types, p.typ)
	}
	return types
}
