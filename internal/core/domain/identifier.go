package domain

import (
	"encoding/json"
	"strconv"
)

const (
	// DefaultIdentifierField is the payload field holding an entity identifier.
	DefaultIdentifierField = "id"
	// DefaultTypenameField is the payload field holding an entity discriminator.
	DefaultTypenameField = "__typename"
	// LocalIDPrefix namespaces identifiers generated for locally constructed entities.
	LocalIDPrefix = "local:"
)

// Conventions names the identifier and discriminator fields of a schema.
type Conventions struct {
	IdentifierField string `yaml:"identifierField"`
	TypenameField   string `yaml:"typenameField"`
}

// DefaultConventions returns the conventions used by most GraphQL schemas.
func DefaultConventions() Conventions {
	return Conventions{
		IdentifierField: DefaultIdentifierField,
		TypenameField:   DefaultTypenameField,
	}
}

// WithDefaults fills empty field names with their defaults.
func (c Conventions) WithDefaults() Conventions {
	if c.IdentifierField == "" {
		c.IdentifierField = DefaultIdentifierField
	}
	if c.TypenameField == "" {
		c.TypenameField = DefaultTypenameField
	}
	return c
}

// Typename returns the discriminator carried by obj, if any.
func (c Conventions) Typename(obj map[string]any) (string, bool) {
	name, ok := obj[c.TypenameField].(string)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

// Identifier returns the identifier carried by obj, if any.
func (c Conventions) Identifier(obj map[string]any) (string, bool) {
	v, ok := obj[c.IdentifierField]
	if !ok {
		return "", false
	}
	return NormalizeIdentifier(v)
}

// NormalizeIdentifier converts an identifier value into its canonical string form.
// Strings are used as-is and numbers are formatted in base 10. Any other value,
// including the empty string, is not an identifier.
func NormalizeIdentifier(v any) (string, bool) {
	var id string
	switch t := v.(type) {
	case string:
		id = t
	case json.Number:
		id = t.String()
	case int:
		id = strconv.Itoa(t)
	case int32:
		id = strconv.FormatInt(int64(t), 10)
	case int64:
		id = strconv.FormatInt(t, 10)
	case uint:
		id = strconv.FormatUint(uint64(t), 10)
	case uint32:
		id = strconv.FormatUint(uint64(t), 10)
	case uint64:
		id = strconv.FormatUint(t, 10)
	case float64:
		id = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return "", false
	}
	return id, id != ""
}
