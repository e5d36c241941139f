package blueprint

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a violation or a rejected edit.
type Kind string

// Violation kinds. The string values double as i18n message codes.
const (
	TypeMismatch           Kind = "type_mismatch"
	EnumViolation          Kind = "enum_violation"
	RangeViolation         Kind = "range_violation"
	RequiredFieldMissing   Kind = "required_field_missing"
	DanglingReference      Kind = "dangling_reference"
	StructuralEditRejected Kind = "structural_edit_rejected"
	DuplicateName          Kind = "duplicate_name"
	PatternViolation       Kind = "pattern_violation"
)

// Sentinels matched by EditError.Is, one per kind.
var (
	ErrTypeMismatch           = errors.New("type mismatch")
	ErrEnumViolation          = errors.New("enum violation")
	ErrRangeViolation         = errors.New("range violation")
	ErrRequiredFieldMissing   = errors.New("required field missing")
	ErrDanglingReference      = errors.New("dangling reference")
	ErrStructuralEditRejected = errors.New("structural edit rejected")
	ErrDuplicateName          = errors.New("duplicate name")
	ErrPatternViolation       = errors.New("pattern violation")
)

var kindSentinels = map[Kind]error{
	TypeMismatch:           ErrTypeMismatch,
	EnumViolation:          ErrEnumViolation,
	RangeViolation:         ErrRangeViolation,
	RequiredFieldMissing:   ErrRequiredFieldMissing,
	DanglingReference:      ErrDanglingReference,
	StructuralEditRejected: ErrStructuralEditRejected,
	DuplicateName:          ErrDuplicateName,
	PatternViolation:       ErrPatternViolation,
}

// EditError is returned by Editor operations. For StructuralEditRejected the
// edit was refused and the document is unchanged; for every other kind the
// value was committed and the error only reports why it is invalid.
type EditError struct {
	Kind   Kind
	Path   Path
	Reason string
}

func (e *EditError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s at %s", e.Kind, e.Path.Pointer())
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Path.Pointer(), e.Reason)
}

// Is matches the sentinel for e.Kind.
func (e *EditError) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// Committed reports whether the edit that produced e was applied.
func (e *EditError) Committed() bool { return e.Kind != StructuralEditRejected }

func rejected(p Path, format string, args ...any) *EditError {
	return &EditError{Kind: StructuralEditRejected, Path: p, Reason: fmt.Sprintf(format, args...)}
}

// IsRejected reports whether err refused an edit.
func IsRejected(err error) bool { return errors.Is(err, ErrStructuralEditRejected) }

// Issue codes produced while decoding documents.
const (
	CodeInvalidType  = "invalid_type"
	CodeUnknownKey   = "unknown_key"
	CodeDuplicateKey = "duplicate_key"
	CodeParseError   = "parse_error"
	CodeTruncated    = "truncated"
)

// Issue is a single decode problem.
type Issue struct {
	Path    string // JSON Pointer (for example: /entities/2/fields).
	Code    string
	Message string
	Cause   error // Optional: underlying error.
}

// Issues is a collection of decode problems that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
