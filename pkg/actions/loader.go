package actions

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.json
var embeddedActions embed.FS

// Format is the encoding of a definition file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return 0, false
	}
}

// LoadEmbedded loads a built-in action.
func LoadEmbedded(name string) (*Action, error) {
	data, err := embeddedActions.ReadFile("data/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	a, err := Parse(name, data, FormatJSON)
	if err != nil {
		return nil, err
	}
	a.Source = "embedded"
	return a, nil
}

// ListEmbedded returns the names of all built-in actions.
func ListEmbedded() ([]string, error) {
	entries, err := embeddedActions.ReadDir("data")
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded actions: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
		}
	}
	return names, nil
}

// LoadFromFile loads an action from a JSON or YAML file. The action is
// named after the file.
func LoadFromFile(path string) (*Action, error) {
	format, ok := FormatFor(path)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type %s", ErrInvalidDefinition, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read action file: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	a, err := Parse(name, data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	a.Source = path
	return a, nil
}

// LoadFromDirectory loads every .json, .yaml and .yml file in dir.
func LoadFromDirectory(dir string) ([]*Action, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list action files: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := FormatFor(e.Name()); ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	var actions []*Action
	for _, file := range files {
		a, err := LoadFromFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// Parse decodes a definition and compiles it. Unknown fields are rejected.
func Parse(name string, data []byte, format Format) (*Action, error) {
	def, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("action %q: %w", name, err)
	}
	return Compile(name, def)
}

// Decode parses a definition without compiling it.
func Decode(data []byte, format Format) (*Definition, error) {
	var def Definition
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %d", ErrInvalidDefinition, format)
	}
	return &def, nil
}
