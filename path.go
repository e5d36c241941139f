package blueprint

import (
	"fmt"
	"strconv"
	"strings"
)

// Wildcard replaces array indices in a normalized path.
const Wildcard = "[*]"

// Segment is one step of a Path: either an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path addresses a node in a document tree. Paths are values; the builder
// methods never modify the receiver.
type Path []Segment

// ParsePath accepts either the dotted/bracket form ("entities[0].fields[1].type")
// or an RFC 6901 JSON Pointer ("/entities/0/fields/1/type"). The empty string
// and "/" both denote the root.
func ParsePath(s string) (Path, error) {
	if s == "" || s == "/" {
		return Path{}, nil
	}
	if strings.HasPrefix(s, "/") {
		return parsePointer(s)
	}
	return parseDotted(s)
}

// MustPath is like ParsePath but panics on malformed input.
func MustPath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func parsePointer(s string) (Path, error) {
	parts := strings.Split(s[1:], "/")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("path %q: empty pointer segment", s)
		}
		if i, err := strconv.Atoi(part); err == nil {
			if i < 0 {
				return nil, fmt.Errorf("path %q: negative index", s)
			}
			p = append(p, Segment{Index: i, IsIndex: true})
			continue
		}
		key := strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		p = append(p, Segment{Key: key})
	}
	return p, nil
}

func parseDotted(s string) (Path, error) {
	var p Path
	i := 0
	expectKey := true
	for i < len(s) {
		switch c := s[i]; {
		case c == '.':
			if expectKey {
				return nil, fmt.Errorf("path %q: empty key at offset %d", s, i)
			}
			expectKey = true
			i++
		case c == '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("path %q: unclosed bracket at offset %d", s, i)
			}
			raw := s[i+1 : i+end]
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("path %q: invalid index %q", s, raw)
			}
			if expectKey && len(p) > 0 {
				return nil, fmt.Errorf("path %q: index after '.'", s)
			}
			p = append(p, Segment{Index: n, IsIndex: true})
			expectKey = false
			i += end + 1
		default:
			if !expectKey {
				return nil, fmt.Errorf("path %q: missing '.' at offset %d", s, i)
			}
			j := i
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			p = append(p, Segment{Key: s[i:j]})
			expectKey = false
			i = j
		}
	}
	if expectKey && len(p) > 0 {
		return nil, fmt.Errorf("path %q: trailing '.'", s)
	}
	return p, nil
}

// Field returns p extended with an object key.
func (p Path) Field(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Segment{Key: name})
}

// Index returns p extended with an array index.
func (p Path) Index(i int) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, Segment{Index: i, IsIndex: true})
}

// Parent returns p without its last segment. The parent of the root is the root.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1:len(p)-1]
}

// Last returns the final segment, if any.
func (p Path) Last() (Segment, bool) {
	if len(p) == 0 {
		return Segment{}, false
	}
	return p[len(p)-1], true
}

// String renders the dotted/bracket form.
func (p Path) String() string {
	b := &strings.Builder{}
	for i, s := range p {
		if s.IsIndex {
			fmt.Fprintf(b, "[%d]", s.Index)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Key)
	}
	return b.String()
}

// Pointer renders an RFC 6901 JSON Pointer. The root renders as "/".
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p {
		b.WriteByte('/')
		if s.IsIndex {
			b.WriteString(strconv.Itoa(s.Index))
			continue
		}
		// escape '~' -> '~0', '/' -> '~1' per RFC6901
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s.Key, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// Normalize renders the registry key for p: every index becomes [*].
func (p Path) Normalize() string {
	b := &strings.Builder{}
	for i, s := range p {
		if s.IsIndex {
			b.WriteString(Wildcard)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Key)
	}
	return b.String()
}

// Equal reports whether p and q address the same node.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}
