package edit

import (
	"fmt"
	"strings"

	"github.com/rm-hull/pngedit/internal/chunkio"
)

// ParseChunkSpec parses a generic chunk-edit specification of the form
// "TYPE!" (delete), "TYPE:text" (inline payload) or "TYPE<path" (payload
// from file). A 4-character TYPE must be ASCII letters only; longer names
// fall through as friendly directives. Parsing is purely syntactic: file
// payloads are read later, when the plan is built.
func ParseChunkSpec(spec string) (Directive, error) {
	i := strings.IndexAny(spec, "!:<")
	if i < 0 {
		return nil, fmt.Errorf("invalid chunk spec %q: expected TYPE!, TYPE:text or TYPE<path", spec)
	}
	name, op, rest := spec[:i], spec[i], spec[i+1:]

	if len(name) < 4 {
		return nil, fmt.Errorf("invalid chunk spec %q: type %q is shorter than 4 characters", spec, name)
	}
	if len(name) == 4 && !asciiLetters(name) {
		return nil, fmt.Errorf("invalid chunk spec %q: type %q must be 4 ASCII letters", spec, name)
	}

	if len(name) > 4 {
		switch op {
		case '!':
			return Friendly(name, nil), nil
		case ':':
			return Friendly(name, []byte(rest)), nil
		default:
			return nil, fmt.Errorf("invalid chunk spec %q: file payloads need a 4-letter type", spec)
		}
	}

	t, err := chunkio.TypeOf(name)
	if err != nil {
		return nil, err
	}
	switch op {
	case '!':
		if rest != "" {
			return nil, fmt.Errorf("invalid chunk spec %q: unexpected content after '!'", spec)
		}
		return DeleteChunk(t), nil
	case ':':
		return SetChunk(t, []byte(rest)), nil
	default: // '<'
		if rest == "" {
			return nil, fmt.Errorf("invalid chunk spec %q: missing file path after '<'", spec)
		}
		return SetChunkFromFile(t, rest), nil
	}
}

func asciiLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}
