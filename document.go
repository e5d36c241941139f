package blueprint

import "fmt"

// DocKind identifies one of the two authored documents.
type DocKind uint8

const (
	AppConfigDoc DocKind = iota + 1
	EntityGraphDoc
)

func (k DocKind) String() string {
	switch k {
	case AppConfigDoc:
		return "app-config"
	case EntityGraphDoc:
		return "entity-config"
	}
	return "unknown"
}

// FileName is the name the document travels under when handed off.
func (k DocKind) FileName() string { return k.String() + ".json" }

// PartName is the multipart field name used by the generation collaborator.
func (k DocKind) PartName() string {
	switch k {
	case AppConfigDoc:
		return "appConfig"
	case EntityGraphDoc:
		return "entityConfig"
	}
	return ""
}

// Registry returns the constraint registry for the kind.
func (k DocKind) Registry() *Registry {
	if k == EntityGraphDoc {
		return entityGraphRegistry
	}
	return appConfigRegistry
}

// ParseDocKind accepts the String form or the file name.
func ParseDocKind(s string) (DocKind, error) {
	switch s {
	case "app-config", "app-config.json", "app", "appConfig":
		return AppConfigDoc, nil
	case "entity-config", "entity-config.json", "entities", "entityConfig":
		return EntityGraphDoc, nil
	}
	return 0, fmt.Errorf("unknown document kind %q", s)
}

// Document is an immutable snapshot of one authored document.
type Document struct {
	kind DocKind
	root *Node
}

// NewDocument wraps root. The caller guarantees root matches the kind's shape.
func NewDocument(kind DocKind, root *Node) *Document {
	return &Document{kind: kind, root: root}
}

// Kind returns the document kind.
func (d *Document) Kind() DocKind { return d.kind }

// Root returns the root node.
func (d *Document) Root() *Node { return d.root }

// At resolves p.
func (d *Document) At(p Path) (*Node, bool) { return d.root.At(p) }

// Get resolves a path string and returns the leaf value.
func (d *Document) Get(path string) (any, bool) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, false
	}
	n, ok := d.root.At(p)
	if !ok || n.Kind() != Leaf {
		return nil, false
	}
	return n.Value(), true
}

// Equal reports structural equality.
func (d *Document) Equal(o *Document) bool {
	return d.kind == o.kind && d.root.Equal(o.root)
}

// Stats counts entities and fields of an entity graph.
type Stats struct {
	Entities  int
	Fields    int
	Relations int
}

// Stats summarizes the document. App-config documents report zeros.
func (d *Document) Stats() Stats {
	var st Stats
	entities, ok := d.root.Child("entities")
	if !ok {
		return st
	}
	st.Entities = entities.Len()
	for i := 0; i < entities.Len(); i++ {
		e, _ := entities.Item(i)
		fields, ok := e.Child("fields")
		if !ok {
			continue
		}
		st.Fields += fields.Len()
		for j := 0; j < fields.Len(); j++ {
			f, _ := fields.Item(j)
			if _, ok := f.Child("relation"); ok {
				st.Relations++
			}
		}
	}
	return st
}

// MarshalJSON renders the document with keys in schema order.
func (d *Document) MarshalJSON() ([]byte, error) { return d.root.MarshalJSON() }
