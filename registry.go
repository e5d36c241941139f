package blueprint

import (
	"fmt"
	"regexp"
	"slices"
)

// Resolver computes a Spec from the live document snapshot at lookup time.
type Resolver func(snapshot *Node) Spec

type rule struct {
	pattern  string
	priority int
	resolve  Resolver
}

// Registry maps normalized paths to value specs. Lookups are default-deny: a
// path without a rule is not editable.
type Registry struct {
	name      string
	rules     []rule
	byPattern map[string][]int
}

// NewRegistry returns an empty registry.
func NewRegistry(name string) *Registry {
	return &Registry{name: name, byPattern: map[string][]int{}}
}

// Name identifies the document the registry governs.
func (r *Registry) Name() string { return r.name }

// Register adds a static rule.
func (r *Registry) Register(pattern string, s Spec) *Registry {
	return r.RegisterDynamic(pattern, s.MatchPriority, func(*Node) Spec { return s })
}

// RegisterDynamic adds a rule whose spec is recomputed on every lookup.
// When several rules share a pattern the highest priority wins.
func (r *Registry) RegisterDynamic(pattern string, priority int, fn Resolver) *Registry {
	r.byPattern[pattern] = append(r.byPattern[pattern], len(r.rules))
	r.rules = append(r.rules, rule{pattern: pattern, priority: priority, resolve: fn})
	return r
}

// Lookup returns the spec governing p given the current snapshot.
func (r *Registry) Lookup(p Path, snapshot *Node) (Spec, bool) {
	return r.LookupPattern(p.Normalize(), snapshot)
}

// LookupPattern is Lookup for an already normalized path.
func (r *Registry) LookupPattern(pattern string, snapshot *Node) (Spec, bool) {
	idx, ok := r.byPattern[pattern]
	if !ok {
		return Spec{}, false
	}
	best := r.rules[idx[0]]
	for _, i := range idx[1:] {
		if r.rules[i].priority > best.priority {
			best = r.rules[i]
		}
	}
	s := best.resolve(snapshot)
	s.MatchPriority = best.priority
	return s, true
}

// Paths lists the registered patterns in registration order.
func (r *Registry) Paths() []string {
	var out []string
	for _, ru := range r.rules {
		if !slices.Contains(out, ru.pattern) {
			out = append(out, ru.pattern)
		}
	}
	return out
}

// Classify returns the node kind the registry assigns to p.
func (r *Registry) Classify(p Path) (NodeKind, bool) {
	s, ok := r.Lookup(p, nil)
	if !ok {
		return 0, false
	}
	return s.NodeKind(), true
}

// Zero builds the default subtree at p: empty strings, zero numbers, false
// booleans, empty collections and objects without their optional keys.
func (r *Registry) Zero(p Path, snapshot *Node) (*Node, error) {
	s, ok := r.Lookup(p, snapshot)
	if !ok {
		return nil, fmt.Errorf("%s: no rule for %q", r.name, p.Normalize())
	}
	switch s.Kind {
	case KindArray:
		return NewCollection(), nil
	case KindObject:
		children := make(map[string]*Node, len(s.Keys))
		var keys []string
		for _, k := range s.Keys {
			cs, ok := r.Lookup(p.Field(k), snapshot)
			if !ok {
				return nil, fmt.Errorf("%s: no rule for %q", r.name, p.Field(k).Normalize())
			}
			if cs.Optional {
				continue
			}
			c, err := r.Zero(p.Field(k), snapshot)
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
			children[k] = c
		}
		return NewFixed(keys, children), nil
	}
	return NewLeaf(s.zero()), nil
}

func (r *Registry) keyOrder(snapshot *Node) keyOrder {
	return func(p Path) []string {
		s, _ := r.Lookup(p, snapshot)
		return s.Keys
	}
}

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	packagePattern    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)
)

// Enumerations shared by both documents.
var (
	BuildTools        = []string{"MAVEN", "GRADLE"}
	PropertiesFormats = []string{"YAML", "PROPERTIES"}
	DatabaseTypes     = []string{"POSTGRESQL", "MYSQL", "H2", "ORACLE", "MONGODB"}
	DDLAutoModes      = []string{"none", "validate", "update", "create", "create-drop"}
	PrimitiveTypes    = []string{"String", "Integer", "Long", "Double", "Float", "Boolean", "LocalDate", "LocalDateTime", "LocalTime", "BigDecimal"}
	RelationTypes     = []string{"ONE_TO_ONE", "ONE_TO_MANY", "MANY_TO_ONE", "MANY_TO_MANY"}
	FetchTypes        = []string{"LAZY", "EAGER"}
	CascadeTypes      = []string{"PERSIST", "MERGE", "REMOVE", "REFRESH", "DETACH", "ALL"}
)

func enumSpec(name string, values []string, required bool) Spec {
	return Spec{Kind: KindEnum, EnumName: name, Values: values, Required: required}
}

func portSpec(lo, hi float64) Spec {
	return Spec{Kind: KindNumber, Integer: true, Min: bound(lo), Max: bound(hi), Required: true}
}

func newAppConfigRegistry() *Registry {
	r := NewRegistry("app-config")
	r.Register("", Spec{Kind: KindObject, Keys: []string{
		"basePackage", "applicationName", "buildTool", "propertiesFormat", "serverPort", "database",
	}})
	r.Register("basePackage", Spec{Kind: KindString, Pattern: packagePattern, Required: true})
	r.Register("applicationName", Spec{Kind: KindString, Required: true})
	r.Register("buildTool", enumSpec("BuildTool", BuildTools, true))
	r.Register("propertiesFormat", enumSpec("PropertiesFormat", PropertiesFormats, true))
	r.Register("serverPort", portSpec(1024, 65535))
	r.Register("database", Spec{Kind: KindObject, Keys: []string{
		"type", "host", "port", "databaseName", "username", "password", "ddlAuto", "poolSize",
	}})
	r.Register("database.type", enumSpec("DatabaseType", DatabaseTypes, true))
	r.Register("database.host", Spec{Kind: KindString, Required: true})
	r.Register("database.port", portSpec(1, 65535))
	r.Register("database.databaseName", Spec{Kind: KindString, Required: true})
	r.Register("database.username", Spec{Kind: KindString, Required: true})
	r.Register("database.password", Spec{Kind: KindString})
	r.Register("database.ddlAuto", enumSpec("DDLAuto", DDLAutoModes, false))
	r.Register("database.poolSize", Spec{Kind: KindNumber, Integer: true, Min: bound(1), Max: bound(100)})
	return r
}

const (
	entityPattern   = "entities[*]"
	fieldPattern    = "entities[*].fields[*]"
	relationPattern = "entities[*].fields[*].relation"
)

func newEntityGraphRegistry() *Registry {
	r := NewRegistry("entity-config")
	r.Register("", Spec{Kind: KindObject, Keys: []string{"entities"}})
	r.Register("entities", Spec{Kind: KindArray, Via: []string{"AddEntity", "RemoveEntity"}})
	r.Register(entityPattern, Spec{Kind: KindObject, Keys: []string{"name", "description", "tableName", "fields"}})
	r.Register(entityPattern+".name", Spec{Kind: KindString, Pattern: identifierPattern, Required: true})
	r.Register(entityPattern+".description", Spec{Kind: KindString})
	r.Register(entityPattern+".tableName", Spec{Kind: KindString, Pattern: identifierPattern, Optional: true})
	r.Register(entityPattern+".fields", Spec{Kind: KindArray, Via: []string{"AddField", "RemoveField"}})
	r.Register(fieldPattern, Spec{Kind: KindObject, Keys: []string{"name", "type", "description", "required", "relation"}})
	r.Register(fieldPattern+".name", Spec{Kind: KindString, Pattern: identifierPattern, Required: true})
	r.Register(fieldPattern+".type", enumSpec("PrimitiveType", PrimitiveTypes, true))
	r.RegisterDynamic(fieldPattern+".type", 1, fieldTypeSpec)
	r.Register(fieldPattern+".description", Spec{Kind: KindString})
	r.Register(fieldPattern+".required", Spec{Kind: KindBoolean})
	r.Register(relationPattern, Spec{Kind: KindObject, Optional: true, Keys: []string{"type", "targetEntity", "fetchType", "cascadeType"}})
	r.Register(relationPattern+".type", enumSpec("RelationType", RelationTypes, false))
	r.Register(relationPattern+".targetEntity", Spec{Kind: KindString, Required: true})
	r.Register(relationPattern+".fetchType", enumSpec("FetchType", FetchTypes, false))
	r.Register(relationPattern+".cascadeType", enumSpec("CascadeType", CascadeTypes, false))
	return r
}

// fieldTypeSpec admits every primitive type plus the name of any entity in
// the snapshot. It is never cached.
func fieldTypeSpec(snapshot *Node) Spec {
	values := slices.Clone(PrimitiveTypes)
	for _, name := range EntityNames(snapshot) {
		if name != "" && !slices.Contains(values, name) {
			values = append(values, name)
		}
	}
	return Spec{Kind: KindEnum, EnumName: "FieldType", Values: values, Required: true}
}

// EntityNames returns entities[*].name in document order.
func EntityNames(root *Node) []string {
	if root == nil {
		return nil
	}
	entities, ok := root.Child("entities")
	if !ok || entities.Kind() != Collection {
		return nil
	}
	names := make([]string, 0, entities.Len())
	for i := 0; i < entities.Len(); i++ {
		e, _ := entities.Item(i)
		names = append(names, e.Str(Path{{Key: "name"}}))
	}
	return names
}

var (
	appConfigRegistry   = newAppConfigRegistry()
	entityGraphRegistry = newEntityGraphRegistry()
)

// AppConfigRegistry returns the registry governing app-config documents.
func AppConfigRegistry() *Registry { return appConfigRegistry }

// EntityGraphRegistry returns the registry governing entity-config documents.
func EntityGraphRegistry() *Registry { return entityGraphRegistry }
