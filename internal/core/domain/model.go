package domain

import "slices"

// Source records whether an entity's last write came from local construction or a network resolve.
type Source string

const (
	// SourceLocal marks entities written by local construction.
	SourceLocal Source = "local"
	// SourceRemote marks entities written by a network resolve.
	SourceRemote Source = "remote"
)

// undefined is the type of Undefined.
type undefined struct{}

// Undefined marks a field as not selected. Merging a field whose value is Undefined
// leaves the existing value untouched, the same as omitting the key.
var Undefined = undefined{}

// IsUndefined reports whether v is the Undefined marker.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// FieldReader is the read side of an entity, handed to computed fields.
type FieldReader interface {
	Typename() string
	ID() string
	Get(field string) any
}

// Model describes one registered entity type.
type Model struct {
	// Name is the typename carried by payload objects of this type.
	Name string `yaml:"name"`
	// ReadOnly lists fields that merges never write.
	ReadOnly []string `yaml:"readOnly"`
	// Defaults seeds fields of newly constructed entities.
	Defaults map[string]any `yaml:"defaults"`
	// Computed lists read-derived fields. They are evaluated on read and never written.
	Computed map[string]func(FieldReader) any `yaml:"-"`
}

// Writable reports whether merges may assign the given field.
func (m *Model) Writable(field string) bool {
	if _, ok := m.Computed[field]; ok {
		return false
	}
	return !slices.Contains(m.ReadOnly, field)
}
