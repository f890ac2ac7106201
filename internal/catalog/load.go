package catalog

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed banks/*.json
var banksFS embed.FS

// bank is the on-disk shape of a problem bank. Category, when set, is the
// default for problems that omit their own.
type bank struct {
	Category string    `json:"category,omitempty" yaml:"category,omitempty"`
	Problems []Problem `json:"problems" yaml:"problems"`
}

// Format identifies a bank encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("unsupported catalog file extension %q", filepath.Ext(path))
	}
}

// Parse decodes problems from a bank document.
func Parse(data []byte, format Format) ([]Problem, error) {
	var b bank
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&b); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&b); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %d", format)
	}

	for i := range b.Problems {
		if b.Problems[i].Category == "" {
			b.Problems[i].Category = b.Category
		}
		b.Problems[i].Difficulty = Difficulty(strings.ToLower(string(b.Problems[i].Difficulty)))
	}
	return b.Problems, nil
}

// LoadFile reads a single bank file and builds a catalog from it.
func LoadFile(path string) (*Catalog, error) {
	problems, err := readBank(os.ReadFile, path)
	if err != nil {
		return nil, err
	}
	c, err := New(problems...)
	if err != nil {
		return nil, withSource(path, err)
	}
	return c, nil
}

// LoadFiles loads and merges several bank files, in order.
func LoadFiles(paths ...string) (*Catalog, error) {
	var all []Problem
	for _, path := range paths {
		problems, err := readBank(os.ReadFile, path)
		if err != nil {
			return nil, err
		}
		all = append(all, problems...)
	}
	c, err := New(all...)
	if err != nil {
		return nil, withSource(strings.Join(paths, ", "), err)
	}
	return c, nil
}

var (
	builtinOnce sync.Once
	builtin     *Catalog
	builtinErr  error
)

// Builtin returns the catalog assembled from the embedded banks. It is
// built once and shared.
func Builtin() (*Catalog, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = loadFS(banksFS, "banks")
	})
	return builtin, builtinErr
}

func loadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read banks: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var all []Problem
	for _, name := range names {
		path := dir + "/" + name
		problems, err := readBank(func(p string) ([]byte, error) { return fs.ReadFile(fsys, p) }, path)
		if err != nil {
			return nil, err
		}
		all = append(all, problems...)
	}

	c, err := New(all...)
	if err != nil {
		return nil, withSource("builtin banks", err)
	}
	return c, nil
}

func readBank(read func(string) ([]byte, error), path string) ([]Problem, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := read(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	problems, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return problems, nil
}

// withSource stamps the source on every LoadError inside err.
func withSource(source string, err error) error {
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) {
		return err
	}
	for _, e := range joined.Unwrap() {
		var le *LoadError
		if errors.As(e, &le) && le.Source == "" {
			le.Source = source
		}
	}
	return err
}
