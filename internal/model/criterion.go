package model

// Field is a searchable product column.
type Field string

const (
	FieldID       Field = "id"
	FieldName     Field = "name"
	FieldQuantity Field = "quantity"
	FieldPrice    Field = "price"
	FieldCategory Field = "category"
)

// Fields lists every searchable field.
var Fields = []Field{FieldID, FieldName, FieldQuantity, FieldPrice, FieldCategory}

// Valid reports whether f names a product column.
func (f Field) Valid() bool {
	for _, field := range Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Operator is the comparison applied by a Criterion.
type Operator uint8

const (
	// OpContains matches when the field's text contains Value, ignoring case.
	OpContains Operator = iota
)

// Criterion is a single search predicate. Criteria are combined with AND.
type Criterion struct {
	Field Field
	Op    Operator
	Value string
}
