// Package engine reads JSON into an ordered value tree while enforcing
// duplicate-key and nesting-depth limits.
package engine

// Kind is the JSON type of a Value.
type Kind int

const (
	KindObject Kind = iota
	KindArray
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	}
	return "null"
}

// Value is a decoded JSON value. Objects keep their key order.
type Value struct {
	Kind   Kind
	Str    string
	Num    float64
	Bool   bool
	Keys   []string
	Fields map[string]*Value
	Items  []*Value
}

// Scalar returns the Go scalar for string, number, boolean and null values.
func (v *Value) Scalar() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	}
	return nil
}

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	DupIgnore DuplicateStrictness = iota
	DupWarn
	DupError
)

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// Options controls Decode.
type Options struct {
	OnDuplicate DuplicateStrictness
	// MaxDepth limits container nesting; 0 disables the check.
	MaxDepth int
	// MaxIssues caps reported issues: <0 unlimited, 0 disabled.
	MaxIssues int
}
