// Package persona loads the catalog of named system instructions ("personas")
// that the dispatcher attaches to outgoing prompts.
package persona

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultKey is the persona used when a request names none or an unknown one.
const DefaultKey = "default"

var (
	// ErrMissingDefault is returned when a catalog lacks the "default" entry.
	ErrMissingDefault = errors.New("persona: catalog has no \"default\" entry")

	// ErrEmptyInstruction is returned for personas with blank text.
	ErrEmptyInstruction = errors.New("persona: instruction is empty")
)

// Catalog maps lowercase persona keys to instruction text. It is read-only
// after construction and safe for concurrent use.
type Catalog struct {
	entries map[string]string
	keys    []string
}

// Load reads a catalog file. JSON files parse as YAML, so both formats are accepted.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("persona: read %q: %w", path, err)
	}

	var raw map[string]string
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("persona: unmarshal %q: %w", path, err)
	}

	c, err := New(raw)
	if err != nil {
		return nil, fmt.Errorf("persona: %q: %w", path, err)
	}
	return c, nil
}

// New builds a catalog from an in-memory map. Keys are folded to lowercase.
func New(entries map[string]string) (*Catalog, error) {
	c := &Catalog{entries: make(map[string]string, len(entries))}

	for k, v := range entries {
		key := strings.ToLower(strings.TrimSpace(k))
		if key == "" {
			continue
		}
		if _, dup := c.entries[key]; dup {
			return nil, fmt.Errorf("persona: duplicate key %q after case folding", key)
		}
		if strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%w: %q", ErrEmptyInstruction, key)
		}
		c.entries[key] = v
	}

	if _, ok := c.entries[DefaultKey]; !ok {
		return nil, ErrMissingDefault
	}

	c.keys = make([]string, 0, len(c.entries))
	for k := range c.entries {
		c.keys = append(c.keys, k)
	}
	slices.Sort(c.keys)

	return c, nil
}

// Resolve returns the persona key and instruction for role. Unknown or empty
// roles resolve to the default persona.
func (c *Catalog) Resolve(role string) (string, string) {
	key := strings.ToLower(strings.TrimSpace(role))
	if text, ok := c.entries[key]; ok && key != "" {
		return key, text
	}
	return DefaultKey, c.entries[DefaultKey]
}

// Keys returns the persona keys in sorted order.
func (c *Catalog) Keys() []string {
	return slices.Clone(c.keys)
}

// Len returns the number of personas.
func (c *Catalog) Len() int {
	return len(c.keys)
}
