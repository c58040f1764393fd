package query

// Kind is the value type of a queryable field.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindTime
	KindID
	// KindRef is a nullable id; "" and null select documents without a reference.
	KindRef
	// KindIDSet is a set of ids; equality means membership.
	KindIDSet
)

// Field maps a JSON field name to a store column.
type Field struct {
	Name   string
	Column string
	Kind   Kind
}

func (f Field) sortable() bool {
	return f.Kind != KindIDSet
}

// Schema is the whitelist of fields a resource can be filtered, sorted and
// projected on.
type Schema struct {
	fields map[string]Field
}

func NewSchema(fields ...Field) Schema {
	s := Schema{fields: make(map[string]Field, len(fields))}
	for _, f := range fields {
		s.fields[f.Name] = f
	}
	return s
}

// Lookup resolves a field by name. "_id" is accepted for "id".
func (s Schema) Lookup(name string) (Field, bool) {
	if name == "_id" {
		name = "id"
	}
	f, ok := s.fields[name]
	return f, ok
}

var Tasks = NewSchema(
	Field{Name: "id", Column: "id", Kind: KindID},
	Field{Name: "name", Column: "name", Kind: KindString},
	Field{Name: "description", Column: "description", Kind: KindString},
	Field{Name: "deadline", Column: "deadline", Kind: KindTime},
	Field{Name: "completed", Column: "completed", Kind: KindBool},
	Field{Name: "assignedUser", Column: "assigned_user", Kind: KindRef},
	Field{Name: "assignedUserName", Column: "assigned_user_name", Kind: KindString},
	Field{Name: "dateCreated", Column: "date_created", Kind: KindTime},
)

var Users = NewSchema(
	Field{Name: "id", Column: "id", Kind: KindID},
	Field{Name: "name", Column: "name", Kind: KindString},
	Field{Name: "email", Column: "email", Kind: KindString},
	Field{Name: "pendingTasks", Column: "task_id", Kind: KindIDSet},
	Field{Name: "dateCreated", Column: "date_created", Kind: KindTime},
)
