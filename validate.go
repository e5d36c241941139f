package blueprint

// Validate runs the required-field, range/enum and cross-reference passes
// over d. The passes are pure; the result is empty when d may be handed off.
// When several passes flag the same path, the earliest pass wins.
func Validate(d *Document) *Violations {
	vs := NewViolations()
	reg := d.kind.Registry()
	requiredPass(reg, d.root, vs)
	constraintPass(reg, d.root, vs)
	if d.kind == EntityGraphDoc {
		referencePass(d.root, vs)
	}
	return vs
}

// walkLeaves visits every leaf under n in document order.
func walkLeaves(n *Node, p Path, fn func(Path, *Node)) {
	switch n.Kind() {
	case Leaf:
		fn(p, n)
	case Fixed:
		for _, k := range n.keys {
			walkLeaves(n.fields[k], p.Field(k), fn)
		}
	case Collection:
		for i, it := range n.items {
			walkLeaves(it, p.Index(i), fn)
		}
	}
}

// requiredPass flags every required leaf without a value. For app-config the
// leaves appear in checklist order because the document keeps schema order.
func requiredPass(reg *Registry, root *Node, vs *Violations) {
	walkLeaves(root, Path{}, func(p Path, n *Node) {
		s, ok := reg.Lookup(p, root)
		if !ok || !s.Required {
			return
		}
		if !s.Present(n.Value()) {
			vs.Add(newViolation(p, RequiredFieldMissing, map[string]string{"path": p.String()}))
		}
	})
}

func constraintPass(reg *Registry, root *Node, vs *Violations) {
	walkLeaves(root, Path{}, func(p Path, n *Node) {
		s, ok := reg.Lookup(p, root)
		if !ok {
			return
		}
		kind, params, ok := s.Check(n.Value())
		if ok || kind == RequiredFieldMissing {
			return
		}
		vs.Add(newViolation(p, kind, params))
	})
}

// referencePass checks name uniqueness and that every relation target names
// an entity of the same graph.
func referencePass(root *Node, vs *Violations) {
	entities, ok := root.Child("entities")
	if !ok {
		return
	}
	base := Path{}.Field("entities")
	known := map[string]bool{}
	for i := 0; i < entities.Len(); i++ {
		e, _ := entities.Item(i)
		name := e.Str(Path{}.Field("name"))
		if name == "" {
			continue
		}
		if known[name] {
			p := base.Index(i).Field("name")
			vs.Add(newViolation(p, DuplicateName, map[string]string{"name": name}))
		}
		known[name] = true
	}
	for i := 0; i < entities.Len(); i++ {
		e, _ := entities.Item(i)
		fields, ok := e.Child("fields")
		if !ok {
			continue
		}
		seen := map[string]bool{}
		for j := 0; j < fields.Len(); j++ {
			f, _ := fields.Item(j)
			fp := base.Index(i).Field("fields").Index(j)
			if name := f.Str(Path{}.Field("name")); name != "" {
				if seen[name] {
					vs.Add(newViolation(fp.Field("name"), DuplicateName, map[string]string{"name": name}))
				}
				seen[name] = true
			}
			rel, ok := f.Child("relation")
			if !ok {
				continue
			}
			target := rel.Str(Path{}.Field("targetEntity"))
			if target != "" && !known[target] {
				vs.Add(newViolation(fp.Field("relation").Field("targetEntity"), DanglingReference, map[string]string{"target": target}))
			}
		}
	}
}
