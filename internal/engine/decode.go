package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"
)

type decoder struct {
	dec    *j.Decoder
	opt    Options
	depth  int
	issues []SimpleIssue
	capped bool
}

// Decode parses data into a Value. Duplicate keys are reported as issues
// (the last occurrence wins); with DupError the first duplicate aborts
// decoding. Syntax errors and depth overflow return an IssueError.
func Decode(data []byte, opt Options) (*Value, []SimpleIssue, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	d := &decoder{dec: dec, opt: opt}
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, d.issues, IssueError{SimpleIssue{Code: "parse_error", Path: "/", Message: "empty input"}}
		}
		return nil, d.issues, parseError("", err)
	}
	v, err := d.value("", tok)
	if err != nil {
		return nil, d.issues, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, d.issues, IssueError{SimpleIssue{Code: "parse_error", Path: "/", Message: "trailing data after document"}}
	}
	return v, d.issues, nil
}

func (d *decoder) report(si SimpleIssue) {
	if d.opt.MaxIssues == 0 || d.capped {
		return
	}
	d.issues = append(d.issues, si)
	if d.opt.MaxIssues > 0 && len(d.issues) >= d.opt.MaxIssues {
		d.issues = append(d.issues, SimpleIssue{Code: "truncated", Path: "/", Message: "max issues reached"})
		d.capped = true
	}
}

func (d *decoder) next(path string) (j.Token, error) {
	tok, err := d.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, parseError(path, err)
	}
	return tok, nil
}

func (d *decoder) value(path string, tok j.Token) (*Value, error) {
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			return d.object(path)
		case '[':
			return d.array(path)
		}
		return nil, IssueError{SimpleIssue{Code: "parse_error", Path: normalizeIssuePath(path), Message: fmt.Sprintf("unexpected %q", rune(v))}}
	case string:
		return &Value{Kind: KindString, Str: v}, nil
	case j.Number:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return nil, IssueError{SimpleIssue{Code: "overflow", Path: normalizeIssuePath(path), Message: err.Error()}}
		}
		return &Value{Kind: KindNumber, Num: f}, nil
	case float64:
		return &Value{Kind: KindNumber, Num: v}, nil
	case bool:
		return &Value{Kind: KindBool, Bool: v}, nil
	case nil:
		return &Value{Kind: KindNull}, nil
	}
	return nil, IssueError{SimpleIssue{Code: "parse_error", Path: normalizeIssuePath(path), Message: fmt.Sprintf("unexpected token %v", tok)}}
}

func (d *decoder) enter(path string) error {
	d.depth++
	if d.opt.MaxDepth > 0 && d.depth > d.opt.MaxDepth {
		return IssueError{SimpleIssue{Code: "parse_error", Path: normalizeIssuePath(path), Message: "max depth exceeded"}}
	}
	return nil
}

func (d *decoder) object(path string) (*Value, error) {
	if err := d.enter(path); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()
	out := &Value{Kind: KindObject, Fields: map[string]*Value{}}
	for {
		tok, err := d.next(path)
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(j.Delim); ok && delim == '}' {
			return out, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, IssueError{SimpleIssue{Code: "parse_error", Path: normalizeIssuePath(path), Message: "object key must be a string"}}
		}
		child := joinJSONPointer(path, key)
		if _, dup := out.Fields[key]; dup {
			if d.opt.OnDuplicate == DupError {
				si := SimpleIssue{Code: "duplicate_key", Path: child, Message: "key '" + key + "' duplicated"}
				d.report(si)
				return nil, IssueError{si}
			}
			if d.opt.OnDuplicate == DupWarn {
				d.report(SimpleIssue{Code: "duplicate_key", Path: child, Message: "key '" + key + "' duplicated"})
			}
		} else {
			out.Keys = append(out.Keys, key)
		}
		tok, err = d.next(child)
		if err != nil {
			return nil, err
		}
		v, err := d.value(child, tok)
		if err != nil {
			return nil, err
		}
		out.Fields[key] = v
	}
}

func (d *decoder) array(path string) (*Value, error) {
	if err := d.enter(path); err != nil {
		return nil, err
	}
	defer func() { d.depth-- }()
	out := &Value{Kind: KindArray}
	for {
		tok, err := d.next(path)
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(j.Delim); ok && delim == ']' {
			return out, nil
		}
		v, err := d.value(joinJSONPointer(path, strconv.Itoa(len(out.Items))), tok)
		if err != nil {
			return nil, err
		}
		out.Items = append(out.Items, v)
	}
}

func parseError(path string, err error) error {
	return IssueError{SimpleIssue{Code: "parse_error", Path: normalizeIssuePath(path), Message: err.Error()}}
}

func normalizeIssuePath(p string) string {
	if p == "" {
		return "/"
	}
	return p
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func joinJSONPointer(base, token string) string {
	return base + "/" + jsonPointerEscaper.Replace(token)
}
