package blueprint

import "github.com/go-openapi/inflect"

// TableName suggests a table name for an entity: the snake_case plural of its
// name ("orderItem" -> "order_items").
func TableName(entity string) string {
	if entity == "" {
		return ""
	}
	return inflect.Underscore(inflect.Pluralize(entity))
}
