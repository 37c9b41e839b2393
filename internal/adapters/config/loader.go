// Package config provides the configuration loader for gqlstore.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/gqlstore/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// validModelNameRegex matches a GraphQL name.
var validModelNameRegex = regexp.MustCompile("^[_A-Za-z][_0-9A-Za-z]*$")

// Load reads the configuration at path. When path is a directory, the nearest
// gqlstore.yaml in it or one of its parents is used.
func (l *Loader) Load(path string) (domain.Config, error) {
	configPath, err := findConfiguration(path)
	if err != nil {
		return domain.Config{}, err
	}

	var file File
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return domain.Config{}, err
	}

	cfg, err := file.toDomain()
	if err != nil {
		return domain.Config{}, zerr.With(err, "config", configPath)
	}
	if cfg.Endpoint == "" {
		l.Logger.Warn("no endpoint in " + configPath + ", only cache-only requests can succeed")
	}
	return cfg, nil
}

func findConfiguration(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, err.Error()), "path", path)
	}
	if !info.IsDir() {
		return path, nil
	}

	currentDir, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.Wrap(err, "resolve config directory")
	}
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "search parents"), "cwd", path)
}

// toDomain validates the file and applies defaults. Environment variables in
// the endpoint and header values are expanded.
func (f *File) toDomain() (domain.Config, error) {
	cfg := domain.DefaultConfig()
	cfg.Endpoint = os.ExpandEnv(f.Endpoint)
	cfg.Strict = f.Strict
	cfg.Conventions = domain.Conventions{
		IdentifierField: f.IdentifierField,
		TypenameField:   f.TypenameField,
	}.WithDefaults()

	if len(f.Headers) > 0 {
		cfg.Headers = make(map[string]string, len(f.Headers))
		for k, v := range f.Headers {
			cfg.Headers[k] = os.ExpandEnv(v)
		}
	}

	if f.Timeout != "" {
		timeout, err := time.ParseDuration(f.Timeout)
		if err != nil || timeout <= 0 {
			return domain.Config{}, zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, "invalid timeout"), "timeout", f.Timeout)
		}
		cfg.Timeout = timeout
	}

	if f.DefaultCachePolicy != "" {
		policy, err := domain.ParseCachePolicy(f.DefaultCachePolicy)
		if err != nil {
			return domain.Config{}, err
		}
		cfg.DefaultCachePolicy = policy
	}

	seen := make(map[string]bool, len(f.Models))
	for _, dto := range f.Models {
		if !validModelNameRegex.MatchString(dto.Name) {
			return domain.Config{}, zerr.With(zerr.Wrap(domain.ErrInvalidModelName, "model name is not a GraphQL name"), "model", dto.Name)
		}
		if seen[dto.Name] {
			return domain.Config{}, zerr.With(zerr.Wrap(domain.ErrInvalidModelName, "model declared twice"), "model", dto.Name)
		}
		seen[dto.Name] = true

		cfg.Models = append(cfg.Models, domain.Model{
			Name:     dto.Name,
			ReadOnly: dto.ReadOnly,
			Defaults: dto.Defaults,
		})
	}

	return cfg, nil
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is provided by the user
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigReadFailed, err.Error()), "path", configPath)
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.With(zerr.Wrap(domain.ErrConfigParseFailed, parseErr.Error()), "path", configPath)
	}
	return nil
}
