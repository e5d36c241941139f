package blueprint

import (
	"errors"
	"fmt"

	"github.com/jarch-dev/blueprint/handoff"
)

// ErrNotReady is matched by the error Handoff returns while either document
// has violations.
var ErrNotReady = errors.New("documents are not ready for hand-off")

// Session pairs the app-config and entity-config editors. The two documents
// do not reference each other; they are only ready together.
type Session struct {
	App   *Editor
	Graph *Editor
}

// NewSession starts both documents from their default shapes.
func NewSession(opts ...EditorOption) *Session {
	return &Session{
		App:   NewEditor(NewAppConfig(), opts...),
		Graph: NewEditor(NewEntityGraph(), opts...),
	}
}

// ExampleSession starts both documents from the example.
func ExampleSession(opts ...EditorOption) *Session {
	return &Session{
		App:   NewEditor(ExampleAppConfig(), opts...),
		Graph: NewEditor(ExampleEntityGraph(), opts...),
	}
}

// LoadSession decodes both documents.
func LoadSession(app, graph []byte, opts ...EditorOption) (*Session, error) {
	a, err := DecodeDocument(AppConfigDoc, app)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", AppConfigDoc, err)
	}
	g, err := DecodeDocument(EntityGraphDoc, graph)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", EntityGraphDoc, err)
	}
	return &Session{App: NewEditor(a, opts...), Graph: NewEditor(g, opts...)}, nil
}

// Editor returns the editor for kind.
func (s *Session) Editor(kind DocKind) *Editor {
	if kind == EntityGraphDoc {
		return s.Graph
	}
	return s.App
}

// Report holds the violations of both documents.
type Report struct {
	App   *Violations
	Graph *Violations
}

// Ready reports whether both documents are valid.
func (r Report) Ready() bool { return r.App.Empty() && r.Graph.Empty() }

// Report returns the current violations of both documents.
func (s *Session) Report() Report {
	return Report{App: s.App.Violations(), Graph: s.Graph.Violations()}
}

// Ready is the combined readiness flag.
func (s *Session) Ready() bool { return s.Report().Ready() }

// NotReadyError carries the violations that block a hand-off.
type NotReadyError struct {
	Report Report
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%v: %s %d violation(s), %s %d violation(s)", ErrNotReady,
		AppConfigDoc, e.Report.App.Len(), EntityGraphDoc, e.Report.Graph.Len())
}

func (e *NotReadyError) Unwrap() error { return ErrNotReady }

// Handoff serializes both documents when the session is ready. The bundle
// reflects the snapshots at the moment of the call.
func (s *Session) Handoff() (handoff.Bundle, error) {
	rep := s.Report()
	if !rep.Ready() {
		return handoff.Bundle{}, &NotReadyError{Report: rep}
	}
	app, err := EncodeIndent(s.App.Document())
	if err != nil {
		return handoff.Bundle{}, fmt.Errorf("encode %s: %w", AppConfigDoc, err)
	}
	graph, err := EncodeIndent(s.Graph.Document())
	if err != nil {
		return handoff.Bundle{}, fmt.Errorf("encode %s: %w", EntityGraphDoc, err)
	}
	return handoff.Bundle{AppConfig: app, EntityConfig: graph}, nil
}
