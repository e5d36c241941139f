package blueprint

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/jarch-dev/blueprint/i18n"
)

// Violation is a single (path, kind) pair describing why a document is
// currently invalid.
type Violation struct {
	Path    Path
	Kind    Kind
	Message string
	Params  map[string]string
}

func newViolation(p Path, k Kind, params map[string]string) Violation {
	return Violation{Path: p, Kind: k, Message: i18n.T(string(k), params), Params: params}
}

// Violations is a path-keyed violation set that iterates in insertion order.
// Only the first violation recorded for a path is kept.
type Violations struct {
	order  []string
	byPath map[string]Violation
}

// NewViolations returns an empty set.
func NewViolations() *Violations {
	return &Violations{byPath: map[string]Violation{}}
}

// Add records v unless its path already holds a violation. It reports
// whether v was recorded.
func (vs *Violations) Add(v Violation) bool {
	key := v.Path.String()
	if _, ok := vs.byPath[key]; ok {
		return false
	}
	vs.order = append(vs.order, key)
	vs.byPath[key] = v
	return true
}

// Len returns the number of violating paths.
func (vs *Violations) Len() int {
	if vs == nil {
		return 0
	}
	return len(vs.order)
}

// Empty reports whether the document is valid.
func (vs *Violations) Empty() bool { return vs.Len() == 0 }

// Paths returns the violating paths in dotted form, in insertion order.
func (vs *Violations) Paths() []string {
	if vs == nil {
		return nil
	}
	return append([]string(nil), vs.order...)
}

// Get returns the violation recorded at path (dotted or pointer form).
func (vs *Violations) Get(path string) (Violation, bool) {
	if vs == nil {
		return Violation{}, false
	}
	p, err := ParsePath(path)
	if err != nil {
		return Violation{}, false
	}
	v, ok := vs.byPath[p.String()]
	return v, ok
}

// All returns the violations in insertion order.
func (vs *Violations) All() []Violation {
	if vs == nil {
		return nil
	}
	out := make([]Violation, 0, len(vs.order))
	for _, k := range vs.order {
		out = append(out, vs.byPath[k])
	}
	return out
}

// Count returns how many violations have kind k.
func (vs *Violations) Count(k Kind) int {
	n := 0
	for _, v := range vs.All() {
		if v.Kind == k {
			n++
		}
	}
	return n
}

// MarshalJSON renders an object keyed by dotted path, preserving order.
func (vs *Violations) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range vs.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(v.Path.String())
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(struct {
			Kind    Kind              `json:"kind"`
			Message string            `json:"message"`
			Params  map[string]string `json:"params,omitempty"`
		}{v.Kind, v.Message, v.Params})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Error summarizes the first few violations so a non-empty set can travel as
// an error.
func (vs *Violations) Error() string {
	all := vs.All()
	if len(all) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(all), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", all[i].Kind, all[i].Path)
	}
	if len(all) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(all))
	}
	return b.String()
}
