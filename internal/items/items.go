// Package items loads data items from YAML or JSON input files.
// Each document of a multi-document YAML file becomes one item.
package items

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Item is a single decoded data item.
type Item struct {
	// Source names where the item came from (file path or "-" for stdin).
	Source string `json:"source"`

	// Index is the position of the item's document within its source.
	Index int `json:"index"`

	// Value is the decoded document.
	Value any `json:"-"`
}

// ID returns a stable identifier of the form "<source>#<index>".
func (i Item) ID() string {
	return fmt.Sprintf("%s#%d", i.Source, i.Index)
}

// docSeparator matches YAML document separators: a line containing only "---"
// optionally followed by whitespace.
var docSeparator = regexp.MustCompile(`(?m)^---\s*$`)

// SplitDocuments splits a multi-document YAML byte slice into individual
// documents, filtering out empty ones.
func SplitDocuments(data []byte) [][]byte {
	parts := docSeparator.Split(string(data), -1)

	var docs [][]byte

	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			docs = append(docs, []byte(part))
		}
	}

	return docs
}

// Parse decodes every document in data into an item attributed to source.
func Parse(source string, data []byte) ([]Item, error) {
	docs := SplitDocuments(data)
	out := make([]Item, 0, len(docs))

	for i, doc := range docs {
		var v any
		if err := yaml.Unmarshal(doc, &v); err != nil {
			return nil, fmt.Errorf("parsing %s document %d: %w", source, i, err)
		}

		out = append(out, Item{Source: source, Index: i, Value: v})
	}

	return out, nil
}

// Load reads and parses the given files in order. The path "-" reads from
// stdin.
func Load(stdin io.Reader, paths ...string) ([]Item, error) {
	var all []Item

	for _, p := range paths {
		data, err := readSource(stdin, p)
		if err != nil {
			return nil, err
		}

		parsed, err := Parse(p, data)
		if err != nil {
			return nil, err
		}

		all = append(all, parsed...)
	}

	return all, nil
}

func readSource(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}

		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return data, nil
}

// Expand replaces every directory in paths with the YAML and JSON files
// below it, in lexical order. Other paths, including "-", are kept as given.
func Expand(paths ...string) ([]string, error) {
	var out []string

	for _, p := range paths {
		if p == "-" {
			out = append(out, p)
			continue
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}

		if !info.IsDir() {
			out = append(out, p)
			continue
		}

		var found []string

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != p {
					return filepath.SkipDir
				}

				return nil
			}

			if isDataFile(d.Name()) {
				found = append(found, path)
			}

			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", p, err)
		}

		sort.Strings(found)
		out = append(out, found...)
	}

	return out, nil
}

func isDataFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}
