package edit

import (
	"github.com/rm-hull/pngedit/internal/chunkio"
)

// singletonTypes are the chunk types the format permits at most once per
// file; edits to these replace in place rather than append. Fixed by the
// format, not user-configurable.
var singletonTypes = map[chunkio.ChunkType]struct{}{
	chunkio.IHDR: {},
	chunkio.PLTE: {},
	chunkio.TRNS: {},
	chunkio.GAMA: {},
	chunkio.SBIT: {},
	chunkio.SPLT: {},
}

type pendingChunk struct {
	typ  chunkio.ChunkType
	data []byte
}

// Plan is the immutable result of canonicalizing and partitioning a
// directive list. A single Plan can drive any number of Rewrite calls;
// each call gets its own working copy of the pending edits.
type Plan struct {
	deletes  map[chunkio.ChunkType]struct{}
	replaces []pendingChunk
	inserts  []pendingChunk
}

// NewPlan canonicalizes the directives and partitions them into deletion,
// in-place replacement and insertion buckets. When several directives
// target the same chunk type, the last one wins outright; the type keeps
// the position of its first mention for ordering purposes.
func NewPlan(directives []Directive) (*Plan, error) {
	var order []chunkio.ChunkType
	final := make(map[chunkio.ChunkType]Canonical)

	for _, d := range directives {
		c, err := d.canonicalize()
		if err != nil {
			return nil, err
		}
		if _, seen := final[c.Type]; !seen {
			order = append(order, c.Type)
		}
		final[c.Type] = c
	}

	plan := &Plan{deletes: make(map[chunkio.ChunkType]struct{})}
	for _, t := range order {
		c := final[t]
		switch {
		case c.Delete:
			plan.deletes[t] = struct{}{}
		case isSingleton(t):
			plan.replaces = append(plan.replaces, pendingChunk{typ: t, data: c.Data})
		default:
			plan.inserts = append(plan.inserts, pendingChunk{typ: t, data: c.Data})
		}
	}
	return plan, nil
}

func isSingleton(t chunkio.ChunkType) bool {
	_, ok := singletonTypes[t]
	return ok
}
