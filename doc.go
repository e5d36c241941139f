// Package blueprint edits and validates the two JSON documents a project
// generator consumes: the app-config document (application and database
// settings) and the entity-config document (entities, fields and relations).
//
// Every document is an immutable tree of Nodes. A path-scoped Registry
// decides what each location may hold; lookups are default-deny, so a path
// without a rule cannot be edited at all. Arrays are managed collections
// whose membership only changes through dedicated Editor operations, and
// objects have a fixed key set.
//
// An Editor applies one operation at a time, producing a new snapshot and
// re-running Validate, which reports Violations keyed by path:
//
//	ed := blueprint.NewEditor(blueprint.NewEntityGraph())
//	ed.AddEntity()
//	res, err := ed.Set("entities[0].name", "customer")
//	if blueprint.IsRejected(err) {
//		// structural edit; the document is unchanged
//	}
//	fmt.Println(res.Violations)
//
// A Session pairs both editors and hands off the documents only when
// neither has violations.
package blueprint
