package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigPath is read when present. Missing files are ignored.
const DefaultConfigPath = "~/.stackdoc/config.toml"

// TOML loads flag values from a TOML document. Top-level keys match global
// flags and tables match commands, so
//
//	model = "gemini-2.5-pro"
//
//	[serve]
//	addr = ":9000"
//
// sets --model everywhere and --addr for serve. Underscores and dashes in
// keys are interchangeable. Flags given on the command line win.
func TOML(r io.Reader) (kong.Resolver, error) {
	var raw map[string]any
	if err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	values := flatten(raw, "")

	return kong.ResolverFunc(func(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		name := normalizeKey(flag.Name)
		if parent != nil && parent.Command != nil {
			if v, ok := values[normalizeKey(parent.Command.Name)+"."+name]; ok {
				return formatValue(v), nil
			}
		}
		if v, ok := values[name]; ok {
			return formatValue(v), nil
		}
		return nil, nil
	}), nil
}

// flatten converts nested tables to dot-separated keys.
func flatten(m map[string]any, prefix string) map[string]any {
	out := make(map[string]any)
	for key, value := range m {
		full := normalizeKey(key)
		if prefix != "" {
			full = prefix + "." + full
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range flatten(nested, full) {
				out[k] = v
			}
			continue
		}
		out[full] = value
	}
	return out
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "-")
}

// formatValue renders a TOML value the way it would be typed on the
// command line. Arrays become comma-separated lists.
func formatValue(v any) string {
	if items, ok := v.([]any); ok {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}
