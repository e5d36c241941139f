package blueprint

import (
	"bytes"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	eng "github.com/jarch-dev/blueprint/internal/engine"
)

// DefaultMaxDepth bounds container nesting when decoding documents.
const DefaultMaxDepth = 32

// DecodeOptions controls DecodeDocument.
type DecodeOptions struct {
	// MaxDepth limits nesting; 0 selects DefaultMaxDepth.
	MaxDepth int
	// AllowDuplicateKeys lets the last duplicate win instead of failing.
	AllowDuplicateKeys bool
	// AllowUnknownKeys drops unregistered keys instead of failing.
	AllowUnknownKeys bool
}

// DecodeDocument parses data strictly against the kind's registry. Unknown
// keys, duplicate keys and container shape mismatches are returned as Issues.
// Missing keys are filled with their zero values and leaf values are kept as
// given, so type and range problems surface later as violations.
func DecodeDocument(kind DocKind, data []byte, opts ...DecodeOptions) (*Document, error) {
	var opt DecodeOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.MaxDepth == 0 {
		opt.MaxDepth = DefaultMaxDepth
	}
	dup := eng.DupError
	if opt.AllowDuplicateKeys {
		dup = eng.DupIgnore
	}
	v, simple, err := eng.Decode(data, eng.Options{OnDuplicate: dup, MaxDepth: opt.MaxDepth, MaxIssues: -1})
	if err != nil {
		if ie, ok := err.(eng.IssueError); ok {
			if len(simple) == 0 || simple[len(simple)-1] != ie.SimpleIssue {
				simple = append(simple, ie.SimpleIssue)
			}
		}
		return nil, fromEngineIssues(simple, err)
	}
	b := &builder{reg: kind.Registry(), opt: opt}
	root, err := b.build(Path{}, v)
	if err != nil {
		return nil, err
	}
	if len(b.issues) > 0 {
		return nil, b.issues
	}
	return NewDocument(kind, root), nil
}

// ReadDocument decodes the file at path.
func ReadDocument(kind DocKind, path string, opts ...DecodeOptions) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", kind, err)
	}
	return DecodeDocument(kind, data, opts...)
}

// EncodeIndent renders d as indented JSON with keys in schema order.
func EncodeIndent(d *Document) ([]byte, error) {
	raw, err := d.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func fromEngineIssues(si []eng.SimpleIssue, cause error) Issues {
	var iss Issues
	for _, s := range si {
		iss = AppendIssues(iss, Issue{Code: s.Code, Path: s.Path, Message: s.Message})
	}
	if len(iss) == 0 {
		iss = AppendIssues(iss, Issue{Code: CodeParseError, Path: "/", Message: cause.Error(), Cause: cause})
	}
	return iss
}

type builder struct {
	reg    *Registry
	opt    DecodeOptions
	issues Issues
}

func (b *builder) fail(p Path, code, format string, args ...any) {
	b.issues = AppendIssues(b.issues, Issue{Path: p.Pointer(), Code: code, Message: fmt.Sprintf(format, args...)})
}

// build converts v at p. Dynamic specs are resolved without a snapshot since
// they never change a node's structural kind.
func (b *builder) build(p Path, v *eng.Value) (*Node, error) {
	s, ok := b.reg.Lookup(p, nil)
	if !ok {
		return nil, fmt.Errorf("%s: no rule for %q", b.reg.Name(), p.Normalize())
	}
	switch s.Kind {
	case KindObject:
		if v.Kind != eng.KindObject {
			b.fail(p, CodeInvalidType, "expected object, got %s", v.Kind)
			return nil, nil
		}
		for _, k := range v.Keys {
			if _, ok := b.reg.Lookup(p.Field(k), nil); !ok && !b.opt.AllowUnknownKeys {
				b.fail(p.Field(k), CodeUnknownKey, "unknown key %q", k)
			}
		}
		children := map[string]*Node{}
		var keys []string
		for _, k := range s.Keys {
			cv, present := v.Fields[k]
			cs, _ := b.reg.Lookup(p.Field(k), nil)
			if present && cs.Optional && cv.Kind == eng.KindNull {
				continue
			}
			if !present {
				if cs.Optional {
					continue
				}
				z, err := b.reg.Zero(p.Field(k), nil)
				if err != nil {
					return nil, err
				}
				keys = append(keys, k)
				children[k] = z
				continue
			}
			c, err := b.build(p.Field(k), cv)
			if err != nil {
				return nil, err
			}
			if c == nil {
				continue
			}
			keys = append(keys, k)
			children[k] = c
		}
		return NewFixed(keys, children), nil
	case KindArray:
		if v.Kind != eng.KindArray {
			b.fail(p, CodeInvalidType, "expected array, got %s", v.Kind)
			return nil, nil
		}
		items := make([]*Node, 0, len(v.Items))
		for i, it := range v.Items {
			c, err := b.build(p.Index(i), it)
			if err != nil {
				return nil, err
			}
			if c != nil {
				items = append(items, c)
			}
		}
		return NewCollection(items...), nil
	}
	if v.Kind == eng.KindObject || v.Kind == eng.KindArray {
		b.fail(p, CodeInvalidType, "expected %s, got %s", s.Kind, v.Kind)
		return nil, nil
	}
	return NewLeaf(v.Scalar()), nil
}
