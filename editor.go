package blueprint

import (
	"strings"

	"github.com/jarch-dev/blueprint/i18n"
)

// DefaultHistoryDepth is the number of prior snapshots an Editor keeps.
const DefaultHistoryDepth = 50

// Result is the outcome of an edit: the current document and its violations.
type Result struct {
	Doc        *Document
	Violations *Violations
}

// Ready reports whether the document may be handed downstream.
func (r Result) Ready() bool { return r.Violations.Empty() }

// Editor is the only mutation surface for a document. Each operation
// produces a new snapshot, re-runs Validate and returns both. An Editor is
// meant to be driven by one caller at a time; the snapshots it hands out are
// immutable and may be shared freely.
type Editor struct {
	doc     *Document
	reg     *Registry
	current *Violations
	history []*Document
	depth   int
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithHistoryDepth bounds the undo history; 0 disables it.
func WithHistoryDepth(n int) EditorOption {
	return func(e *Editor) { e.depth = max(n, 0) }
}

// NewEditor starts editing doc.
func NewEditor(doc *Document, opts ...EditorOption) *Editor {
	e := &Editor{doc: doc, reg: doc.kind.Registry(), depth: DefaultHistoryDepth}
	for _, opt := range opts {
		opt(e)
	}
	e.current = Validate(doc)
	return e
}

// Document returns the current snapshot.
func (e *Editor) Document() *Document { return e.doc }

// Violations returns the violations of the current snapshot.
func (e *Editor) Violations() *Violations { return e.current }

// Result returns the current snapshot and its violations.
func (e *Editor) Result() Result { return Result{Doc: e.doc, Violations: e.current} }

// Registry returns the registry consulted for permission checks.
func (e *Editor) Registry() *Registry { return e.reg }

func (e *Editor) commit(root *Node) Result {
	if e.depth > 0 {
		e.history = append(e.history, e.doc)
		if len(e.history) > e.depth {
			e.history = e.history[len(e.history)-e.depth:]
		}
	}
	e.doc = NewDocument(e.doc.kind, root)
	e.current = Validate(e.doc)
	return e.Result()
}

func (e *Editor) reject(err *EditError) (Result, error) {
	return e.Result(), err
}

// ReplaceValue assigns value to the leaf at p. Unregistered and structural
// paths are rejected. Otherwise the value is committed even when it violates
// its spec; the returned error then carries the violated kind.
func (e *Editor) ReplaceValue(p Path, value any) (Result, error) {
	root := e.doc.root
	class, ok := e.reg.Classify(p)
	if !ok {
		return e.reject(rejected(p, "path %q is not editable", p.Normalize()))
	}
	if class != Leaf {
		return e.reject(e.structuralReason(p, class))
	}
	spec, _ := e.reg.Lookup(p, root)
	if n, ok := root.At(p); ok {
		if n.Kind() != Leaf {
			return e.reject(rejected(p, "%s is not a leaf", p))
		}
	} else if parent, ok := root.At(p.Parent()); !ok || parent.Kind() != Fixed || !spec.Optional {
		return e.reject(rejected(p, "%s does not exist", p))
	}
	leaf := NewLeaf(value)
	kind, params, valid := spec.Check(leaf.value)
	newRoot, err := root.replace(p, leaf, e.reg.keyOrder(root))
	if err != nil {
		return e.reject(rejected(p, "%v", err))
	}
	res := e.commit(newRoot)
	if !valid {
		return res, &EditError{Kind: kind, Path: p, Reason: i18n.T(string(kind), params)}
	}
	return res, nil
}

// Set is ReplaceValue with a path string in dotted or pointer form.
func (e *Editor) Set(path string, value any) (Result, error) {
	p, err := ParsePath(path)
	if err != nil {
		return e.reject(&EditError{Kind: StructuralEditRejected, Reason: err.Error()})
	}
	return e.ReplaceValue(p, value)
}

var entitiesPath = Path{}.Field("entities")

func fieldsPath(entity int) Path { return entitiesPath.Index(entity).Field("fields") }

func (e *Editor) requireGraph(op string) *EditError {
	if e.doc.kind != EntityGraphDoc {
		return rejected(Path{}, "%s applies to entity-config documents only", op)
	}
	return nil
}

// AddEntity appends an entity with an empty name, description and field list.
func (e *Editor) AddEntity() (Result, error) {
	if err := e.requireGraph("AddEntity"); err != nil {
		return e.reject(err)
	}
	root := e.doc.root
	entities, _ := root.At(entitiesPath)
	seed, err := e.reg.Zero(entitiesPath.Index(entities.Len()), root)
	if err != nil {
		return e.reject(rejected(entitiesPath, "%v", err))
	}
	return e.splice(entitiesPath, entities.appendItem(seed))
}

// RemoveEntity removes the entity at i. Relations elsewhere that target it
// are left in place and show up as dangling references.
func (e *Editor) RemoveEntity(i int) (Result, error) {
	if err := e.requireGraph("RemoveEntity"); err != nil {
		return e.reject(err)
	}
	entities, _ := e.doc.root.At(entitiesPath)
	if i < 0 || i >= entities.Len() {
		return e.reject(rejected(entitiesPath.Index(i), "no entity at index %d", i))
	}
	return e.splice(entitiesPath, entities.removeItem(i))
}

// AddField appends a field to entity i. With withRelation the field carries
// a MANY_TO_ONE relation whose target is still empty.
func (e *Editor) AddField(entity int, withRelation bool) (Result, error) {
	if err := e.requireGraph("AddField"); err != nil {
		return e.reject(err)
	}
	root := e.doc.root
	fp := fieldsPath(entity)
	fields, ok := root.At(fp)
	if !ok {
		return e.reject(rejected(entitiesPath.Index(entity), "no entity at index %d", entity))
	}
	at := fp.Index(fields.Len())
	seed, err := e.reg.Zero(at, root)
	if err != nil {
		return e.reject(rejected(at, "%v", err))
	}
	if withRelation {
		seed = seed.set("relation", seedRelation(), e.reg.keyOrder(root)(at))
	}
	return e.splice(fp, fields.appendItem(seed))
}

func seedRelation() *Node {
	return NewFixed([]string{"type", "targetEntity", "fetchType", "cascadeType"}, map[string]*Node{
		"type":         NewLeaf("MANY_TO_ONE"),
		"targetEntity": NewLeaf(""),
		"fetchType":    NewLeaf("LAZY"),
		"cascadeType":  NewLeaf("PERSIST"),
	})
}

// RemoveField removes field j of entity i. An entity's last field cannot be
// removed.
func (e *Editor) RemoveField(entity, field int) (Result, error) {
	if err := e.requireGraph("RemoveField"); err != nil {
		return e.reject(err)
	}
	fp := fieldsPath(entity)
	fields, ok := e.doc.root.At(fp)
	if !ok {
		return e.reject(rejected(entitiesPath.Index(entity), "no entity at index %d", entity))
	}
	if field < 0 || field >= fields.Len() {
		return e.reject(rejected(fp.Index(field), "no field at index %d", field))
	}
	if fields.Len() == 1 {
		name := e.doc.root.Str(entitiesPath.Index(entity).Field("name"))
		return e.reject(rejected(fp.Index(field), "cannot remove the last field of entity %q", name))
	}
	return e.splice(fp, fields.removeItem(field))
}

// SetRelation attaches a seeded relation to a field or detaches it.
func (e *Editor) SetRelation(entity, field int, present bool) (Result, error) {
	if err := e.requireGraph("SetRelation"); err != nil {
		return e.reject(err)
	}
	root := e.doc.root
	at := fieldsPath(entity).Index(field)
	f, ok := root.At(at)
	if !ok {
		return e.reject(rejected(at, "no field at %s", at))
	}
	_, has := f.Child("relation")
	switch {
	case present && !has:
		return e.splice(at, f.set("relation", seedRelation(), e.reg.keyOrder(root)(at)))
	case !present && has:
		return e.splice(at, f.unset("relation"))
	}
	return e.Result(), nil
}

// SuggestTableName sets the table name of entity i from its name.
func (e *Editor) SuggestTableName(entity int) (Result, error) {
	if err := e.requireGraph("SuggestTableName"); err != nil {
		return e.reject(err)
	}
	ep := entitiesPath.Index(entity)
	if _, ok := e.doc.root.At(ep); !ok {
		return e.reject(rejected(ep, "no entity at index %d", entity))
	}
	name := e.doc.root.Str(ep.Field("name"))
	if name == "" {
		return e.reject(rejected(ep.Field("tableName"), "entity %d has no name", entity))
	}
	return e.ReplaceValue(ep.Field("tableName"), TableName(name))
}

func (e *Editor) splice(at Path, n *Node) (Result, error) {
	root, err := e.doc.root.replace(at, n, nil)
	if err != nil {
		return e.reject(rejected(at, "%v", err))
	}
	return e.commit(root), nil
}

// Reset replaces the document with its default shape.
func (e *Editor) Reset() Result { return e.commit(NewDefault(e.doc.kind).root) }

// LoadExample replaces the document with the known-good example.
func (e *Editor) LoadExample() Result { return e.commit(Example(e.doc.kind).root) }

// Load replaces the document wholesale with d, which must have the same kind.
func (e *Editor) Load(d *Document) (Result, error) {
	if d.kind != e.doc.kind {
		return e.reject(rejected(Path{}, "cannot load %s into %s editor", d.kind, e.doc.kind))
	}
	return e.commit(d.root), nil
}

// Undo restores the previous snapshot. It reports false when there is none.
func (e *Editor) Undo() (Result, bool) {
	if len(e.history) == 0 {
		return e.Result(), false
	}
	e.doc = e.history[len(e.history)-1]
	e.history = e.history[:len(e.history)-1]
	e.current = Validate(e.doc)
	return e.Result(), true
}

// HistoryLen returns the number of snapshots Undo can restore.
func (e *Editor) HistoryLen() int { return len(e.history) }

// SpliceOp is a generic tree edit.
type SpliceOp string

const (
	SpliceAdd    SpliceOp = "add"
	SpliceDelete SpliceOp = "delete"
	SpliceRename SpliceOp = "rename"
	SpliceMove   SpliceOp = "move"
)

// Splice is the generic structural edit. It never changes the document:
// fixed objects and leaves do not admit structural edits, and managed
// collections only change through their dedicated operations.
func (e *Editor) Splice(op SpliceOp, p Path) (Result, error) {
	class, ok := e.reg.Classify(p)
	if !ok {
		return e.reject(rejected(p, "%s: path %q is not editable", op, p.Normalize()))
	}
	return e.reject(e.structuralReason(p, class).withOp(op))
}

func (e *Editor) structuralReason(p Path, class NodeKind) *EditError {
	switch class {
	case Collection:
		spec, _ := e.reg.Lookup(p, nil)
		return rejected(p, "%s is a managed collection; use %s", p, strings.Join(spec.Via, "/"))
	case Fixed:
		return rejected(p, "%s has a fixed key set", p)
	}
	return rejected(p, "%s is a leaf; use ReplaceValue", p)
}

func (err *EditError) withOp(op SpliceOp) *EditError {
	err.Reason = string(op) + ": " + err.Reason
	return err
}
