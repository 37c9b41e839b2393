package commands

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.trai.ch/gqlstore/internal/app"
	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	outputYAML = "yaml"
	outputJSON = "json"
)

func (c *CLI) newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run an operation and print every emission",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			documentPath, _ := cmd.Flags().GetString("document")
			inline, _ := cmd.Flags().GetString("query")
			rawVars, _ := cmd.Flags().GetStringArray("var")
			rawPolicy, _ := cmd.Flags().GetString("policy")
			output, _ := cmd.Flags().GetString("output")

			document, err := readDocument(cmd.InOrStdin(), documentPath, inline)
			if err != nil {
				return err
			}
			vars, err := parseVariables(rawVars)
			if err != nil {
				return err
			}
			policy, err := domain.ParseCachePolicy(rawPolicy)
			if err != nil {
				return err
			}
			encode, err := newEncoder(cmd.OutOrStdout(), output)
			if err != nil {
				return err
			}

			a, err := c.load(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			return a.Query(cmd.Context(), app.QueryInput{
				Name:      documentName(documentPath),
				Document:  document,
				Variables: vars,
				Policy:    policy,
			}, encode)
		},
	}
	cmd.Flags().StringP("document", "d", "", "Path to the operation document, or - for stdin")
	cmd.Flags().StringP("query", "q", "", "Inline operation document")
	cmd.Flags().StringArrayP("var", "v", nil, "Operation variable as name=value; JSON values are decoded")
	cmd.Flags().String("policy", "", "Cache policy (no-cache, cache-first, cache-only, network-only, cache-and-network)")
	cmd.Flags().StringP("output", "o", outputYAML, "Output format (yaml or json)")
	cmd.MarkFlagsMutuallyExclusive("document", "query")
	return cmd
}

// readDocument returns the inline document or the content of path, reading stdin for "-".
func readDocument(stdin io.Reader, path, inline string) (string, error) {
	if inline != "" {
		return inline, nil
	}
	if path == "" {
		return "", zerr.Wrap(domain.ErrMissingDocument, "pass --document or --query")
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		//nolint:gosec // Path is provided by the user on purpose
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to read document"), "path", path)
	}
	return string(data), nil
}

func documentName(path string) string {
	if path == "" || path == "-" {
		return "query"
	}
	return path
}

// parseVariables decodes name=value pairs. Values that parse as JSON keep their JSON
// type, anything else is taken as a string.
func parseVariables(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	vars := make(map[string]any, len(raw))
	for _, pair := range raw {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidVariable, "parse variable"), "variable", pair)
		}

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			decoded = value
		}
		vars[name] = decoded
	}
	return vars, nil
}

// newEncoder returns a func writing one emission to w in the requested format.
func newEncoder(w io.Writer, format string) (func(any) error, error) {
	switch strings.ToLower(format) {
	case outputYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return func(v any) error {
			if err := enc.Encode(v); err != nil {
				return zerr.Wrap(err, "failed to encode yaml")
			}
			return nil
		}, nil
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return func(v any) error {
			if err := enc.Encode(v); err != nil {
				return zerr.Wrap(err, "failed to encode json")
			}
			return nil
		}, nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidOutputFormat, "select encoder"), "output", format)
	}
}
