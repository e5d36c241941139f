// Package editscript applies batches of editor operations read from YAML.
//
// A script looks like:
//
//	steps:
//	  - op: example
//	    doc: app
//	  - op: replace
//	    doc: app
//	    path: serverPort
//	    value: 9090
//	  - op: addEntity
//	  - op: replace
//	    path: entities[3].name
//	    value: invoice
//	  - op: addField
//	    entity: 3
//	    relation: true
//
// Every step goes through the session's editors, so the same permission
// checks apply as for interactive edits.
package editscript

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jarch-dev/blueprint"
)

// Op names a script operation.
type Op string

const (
	OpReplace      Op = "replace"
	OpAddEntity    Op = "addEntity"
	OpRemoveEntity Op = "removeEntity"
	OpAddField     Op = "addField"
	OpRemoveField  Op = "removeField"
	OpSetRelation  Op = "setRelation"
	OpSuggestTable Op = "suggestTable"
	OpReset        Op = "reset"
	OpExample      Op = "example"
	OpUndo         Op = "undo"
)

// Step is one operation. Doc selects the document ("app" or "graph"); it
// defaults to "graph" except for replace, where the path decides.
type Step struct {
	Op       Op     `yaml:"op"`
	Doc      string `yaml:"doc,omitempty"`
	Path     string `yaml:"path,omitempty"`
	Value    any    `yaml:"value,omitempty"`
	Entity   int    `yaml:"entity,omitempty"`
	Field    int    `yaml:"field,omitempty"`
	Relation bool   `yaml:"relation,omitempty"`
}

// Script is an ordered list of steps.
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Parse reads a script. Unknown keys and unknown operations are errors.
func Parse(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &s, nil
		}
		return nil, fmt.Errorf("parse edit script: %w", err)
	}
	for i, st := range s.Steps {
		if !st.Op.valid() {
			return nil, fmt.Errorf("parse edit script: step %d: unknown op %q", i, st.Op)
		}
		if st.Op == OpReplace && st.Path == "" {
			return nil, fmt.Errorf("parse edit script: step %d: replace needs a path", i)
		}
	}
	return &s, nil
}

// ReadFile parses the script at path.
func ReadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func (o Op) valid() bool {
	switch o {
	case OpReplace, OpAddEntity, OpRemoveEntity, OpAddField, OpRemoveField,
		OpSetRelation, OpSuggestTable, OpReset, OpExample, OpUndo:
		return true
	}
	return false
}

// Outcome records what a step did. Err is nil for a clean edit, an
// *blueprint.EditError for a committed but invalid value.
type Outcome struct {
	Index int
	Step  Step
	Err   error
}

// StepError stops a script at the first rejected step.
type StepError struct {
	Index int
	Op    Op
	Err   error
}

func (e *StepError) Error() string { return fmt.Sprintf("step %d (%s): %v", e.Index, e.Op, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

// Apply runs the script against s. It stops at the first structural
// rejection and returns the outcomes of the steps that ran, including the
// rejected one.
func Apply(s *blueprint.Session, script *Script) ([]Outcome, error) {
	out := make([]Outcome, 0, len(script.Steps))
	for i, st := range script.Steps {
		ed, err := editorFor(s, st)
		if err == nil {
			err = run(ed, st)
		}
		out = append(out, Outcome{Index: i, Step: st, Err: err})
		if err != nil && (blueprint.IsRejected(err) || !isEditError(err)) {
			return out, &StepError{Index: i, Op: st.Op, Err: err}
		}
	}
	return out, nil
}

func isEditError(err error) bool {
	var ee *blueprint.EditError
	return errors.As(err, &ee)
}

func editorFor(s *blueprint.Session, st Step) (*blueprint.Editor, error) {
	switch st.Doc {
	case "app", blueprint.AppConfigDoc.String():
		return s.App, nil
	case "graph", blueprint.EntityGraphDoc.String():
		return s.Graph, nil
	case "":
		if st.Op != OpReplace {
			return s.Graph, nil
		}
		p, err := blueprint.ParsePath(st.Path)
		if err != nil {
			return nil, err
		}
		if _, ok := s.App.Registry().Lookup(p, s.App.Document().Root()); ok {
			return s.App, nil
		}
		return s.Graph, nil
	}
	return nil, fmt.Errorf("unknown doc %q", st.Doc)
}

func run(ed *blueprint.Editor, st Step) error {
	var err error
	switch st.Op {
	case OpReplace:
		_, err = ed.Set(st.Path, st.Value)
	case OpAddEntity:
		_, err = ed.AddEntity()
	case OpRemoveEntity:
		_, err = ed.RemoveEntity(st.Entity)
	case OpAddField:
		_, err = ed.AddField(st.Entity, st.Relation)
	case OpRemoveField:
		_, err = ed.RemoveField(st.Entity, st.Field)
	case OpSetRelation:
		_, err = ed.SetRelation(st.Entity, st.Field, st.Relation)
	case OpSuggestTable:
		_, err = ed.SuggestTableName(st.Entity)
	case OpReset:
		ed.Reset()
	case OpExample:
		ed.LoadExample()
	case OpUndo:
		if _, ok := ed.Undo(); !ok {
			err = errors.New("nothing to undo")
		}
	}
	return err
}
