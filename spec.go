package blueprint

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"

	json "github.com/goccy/go-json"
)

// SpecKind is the shape of value a Spec admits.
type SpecKind uint8

const (
	KindString SpecKind = iota + 1
	KindNumber
	KindBoolean
	KindEnum
	// KindObject and KindArray are structural markers, never directly assignable.
	KindObject
	KindArray
)

func (k SpecKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindEnum:
		return "enum"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return "unknown"
}

// Spec describes the values allowed at a registry path.
type Spec struct {
	Kind SpecKind

	// Number bounds, inclusive.
	Min, Max *float64
	// Integer rejects non-integral numbers.
	Integer bool

	// Pattern applies to non-empty strings.
	Pattern *regexp.Regexp

	// Enum name, ordered values and precedence against other rules for the
	// same path.
	EnumName      string
	Values        []string
	MatchPriority int

	// Required leaves are checked by the required-field pass.
	Required bool
	// ZeroIsPresent makes a numeric 0 count as a value.
	ZeroIsPresent bool
	// Optional keys may be absent from their parent object.
	Optional bool

	// Keys is the ordered key set of an object.
	Keys []string
	// Via names the operations that change a managed collection.
	Via []string
}

// Assignable reports whether ReplaceValue may target this spec.
func (s Spec) Assignable() bool {
	return s.Kind != KindObject && s.Kind != KindArray && s.Kind != 0
}

// NodeKind is the tree classification of nodes governed by s.
func (s Spec) NodeKind() NodeKind {
	switch s.Kind {
	case KindObject:
		return Fixed
	case KindArray:
		return Collection
	}
	return Leaf
}

// Allows reports enum membership.
func (s Spec) Allows(v string) bool { return slices.Contains(s.Values, v) }

// Present reports whether v counts as a value for the required-field pass.
func (s Spec) Present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return true
	}
	if f, ok := toFloat(v); ok {
		return f != 0 || s.ZeroIsPresent
	}
	return true
}

// Check tests v against s. It returns the violated kind and false when v is
// not acceptable, along with message parameters. A required leaf without a
// value is missing whatever its type, matching the order Validate reports in;
// then the type is checked, then the enum, pattern or range constraint. An
// optional leaf without a value (empty string, or zero unless ZeroIsPresent)
// is unset and skips the constraint.
func (s Spec) Check(v any) (Kind, map[string]string, bool) {
	if v == nil || (s.Required && !s.Present(v)) {
		if s.Required {
			return RequiredFieldMissing, nil, false
		}
		return "", nil, true
	}
	if !s.Assignable() {
		return StructuralEditRejected, nil, false
	}
	if exp, ok := s.typeMatches(v); !ok {
		return TypeMismatch, map[string]string{"expected": exp}, false
	}
	if !s.Present(v) {
		if s.Required {
			return RequiredFieldMissing, nil, false
		}
		return "", nil, true
	}
	switch s.Kind {
	case KindString:
		if str := v.(string); s.Pattern != nil && !s.Pattern.MatchString(str) {
			return PatternViolation, map[string]string{"pattern": s.Pattern.String(), "got": str}, false
		}
	case KindEnum:
		if str := v.(string); !s.Allows(str) {
			return EnumViolation, map[string]string{"enum": s.EnumName, "got": str}, false
		}
	case KindNumber:
		f, _ := toFloat(v)
		if (s.Min != nil && f < *s.Min) || (s.Max != nil && f > *s.Max) {
			return RangeViolation, s.rangeParams(f), false
		}
	}
	return "", nil, true
}

func (s Spec) typeMatches(v any) (string, bool) {
	switch s.Kind {
	case KindString, KindEnum:
		_, ok := v.(string)
		return "string", ok
	case KindBoolean:
		_, ok := v.(bool)
		return "boolean", ok
	case KindNumber:
		f, ok := toFloat(v)
		if !ok {
			return "number", false
		}
		if s.Integer && f != math.Trunc(f) {
			return "integer", false
		}
	}
	return "", true
}

func (s Spec) rangeParams(got float64) map[string]string {
	m := map[string]string{"got": formatNumber(got)}
	if s.Min != nil {
		m["min"] = formatNumber(*s.Min)
	}
	if s.Max != nil {
		m["max"] = formatNumber(*s.Max)
	}
	return m
}

// zero returns the leaf value a fresh document holds at s.
func (s Spec) zero() any {
	switch s.Kind {
	case KindNumber:
		return float64(0)
	case KindBoolean:
		return false
	}
	return ""
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

// normalizeLeaf converts integer inputs to float64 so stored numbers have a
// single representation. Any other value is copied through JSON so the tree
// never shares memory with the caller; values JSON cannot carry are kept as
// their %v text.
func normalizeLeaf(v any) any {
	switch v.(type) {
	case nil, string, bool, float64:
		return v
	}
	if f, ok := toFloat(v); ok {
		return f
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Sprint(v)
	}
	return out
}

// detach deep-copies the maps and slices of a decoded JSON value.
func detach(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = detach(e)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = detach(e)
		}
		return out
	}
	return v
}

func formatNumber(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func bound(f float64) *float64 { return &f }
