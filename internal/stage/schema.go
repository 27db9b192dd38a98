package stage

// FieldType is the semantic type of a field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
)

// Field describes one position of a record.
type Field struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// Schema is the ordered list of fields a record is aligned with.
type Schema []Field

// IndexOf returns the position of the first field called name, or -1.
func (s Schema) IndexOf(name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Names returns the field names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Name
	}
	return out
}

// With returns a copy of s with fields appended. s is never modified.
func (s Schema) With(fields ...Field) Schema {
	out := make(Schema, 0, len(s)+len(fields))
	out = append(out, s...)
	return append(out, fields...)
}
