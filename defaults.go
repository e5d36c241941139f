package blueprint

import "sync"

// NewAppConfig returns the default app-config shape: every string empty and
// every number zero.
func NewAppConfig() *Document { return NewDefault(AppConfigDoc) }

// NewEntityGraph returns an entity graph with no entities.
func NewEntityGraph() *Document { return NewDefault(EntityGraphDoc) }

// NewDefault returns the default document of kind.
func NewDefault(kind DocKind) *Document {
	root, err := kind.Registry().Zero(Path{}, nil)
	if err != nil {
		panic(err)
	}
	return NewDocument(kind, root)
}

// Example returns the known-good example document of kind.
func Example(kind DocKind) *Document {
	if kind == EntityGraphDoc {
		return exampleEntityGraph()
	}
	return exampleAppConfig()
}

// ExampleAppConfig returns the e-commerce example settings.
func ExampleAppConfig() *Document { return exampleAppConfig() }

// ExampleEntityGraph returns the e-commerce example graph.
func ExampleEntityGraph() *Document { return exampleEntityGraph() }

var (
	exampleAppConfig   = sync.OnceValue(func() *Document { return mustDecode(AppConfigDoc, exampleAppConfigJSON) })
	exampleEntityGraph = sync.OnceValue(func() *Document { return mustDecode(EntityGraphDoc, exampleEntityGraphJSON) })
)

func mustDecode(kind DocKind, src string) *Document {
	d, err := DecodeDocument(kind, []byte(src))
	if err != nil {
		panic(kind.String() + " example: " + err.Error())
	}
	return d
}

const exampleAppConfigJSON = `{
  "basePackage": "com.ecommerce.app",
  "applicationName": "E-Commerce Application",
  "buildTool": "MAVEN",
  "propertiesFormat": "YAML",
  "serverPort": 8080,
  "database": {
    "type": "POSTGRESQL",
    "host": "localhost",
    "port": 5432,
    "databaseName": "postgres",
    "username": "root",
    "password": "123",
    "ddlAuto": "update",
    "poolSize": 15
  }
}`

const exampleEntityGraphJSON = `{
  "entities": [
    {
      "name": "user",
      "description": "Application user",
      "tableName": "users",
      "fields": [
        {"name": "id", "type": "Long", "description": "Primary key", "required": true},
        {"name": "username", "type": "String", "description": "Login name", "required": true},
        {"name": "email", "type": "String", "description": "Contact address", "required": true}
      ]
    },
    {
      "name": "product",
      "description": "Catalog item",
      "tableName": "products",
      "fields": [
        {"name": "id", "type": "Long", "description": "Primary key", "required": true},
        {"name": "name", "type": "String", "description": "Display name", "required": true},
        {"name": "price", "type": "BigDecimal", "description": "Unit price", "required": true}
      ]
    },
    {
      "name": "order",
      "description": "Customer purchase",
      "tableName": "orders",
      "fields": [
        {"name": "id", "type": "Long", "description": "Primary key", "required": true},
        {"name": "orderDate", "type": "LocalDateTime", "description": "Placed at", "required": true},
        {
          "name": "user", "type": "Long", "description": "Buyer", "required": true,
          "relation": {"type": "MANY_TO_ONE", "targetEntity": "user", "fetchType": "LAZY", "cascadeType": "PERSIST"}
        },
        {
          "name": "product", "type": "Long", "description": "Purchased item", "required": true,
          "relation": {"type": "MANY_TO_ONE", "targetEntity": "product", "fetchType": "EAGER", "cascadeType": "MERGE"}
        }
      ]
    }
  ]
}`
