package config

// File represents the structure of the gqlstore.yaml configuration file.
type File struct {
	Version            string            `yaml:"version"`
	Endpoint           string            `yaml:"endpoint"`
	Headers            map[string]string `yaml:"headers"`
	Timeout            string            `yaml:"timeout"`
	IdentifierField    string            `yaml:"identifierField"`
	TypenameField      string            `yaml:"typenameField"`
	DefaultCachePolicy string            `yaml:"defaultCachePolicy"`
	Strict             bool              `yaml:"strict"`
	Models             []ModelDTO        `yaml:"models"`
}

// ModelDTO represents a model definition in the configuration.
type ModelDTO struct {
	Name     string         `yaml:"name"`
	ReadOnly []string       `yaml:"readOnly"`
	Defaults map[string]any `yaml:"defaults"`
}
