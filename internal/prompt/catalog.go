package prompt

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Template is a named preset that fills a whole FieldSet.
type Template struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label" yaml:"label"`
	Summary  string   `json:"summary" yaml:"summary"`
	Defaults FieldSet `json:"defaults" yaml:"defaults"`
}

// Option is a label/value pair offered by a form select.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Catalog holds the built-in templates and form options.
type Catalog struct {
	Personas  []Option   `json:"personas" yaml:"personas"`
	Lengths   []Option   `json:"lengths" yaml:"lengths"`
	Templates []Template `json:"templates" yaml:"templates"`
}

var (
	catalogOnce sync.Once
	catalog     *Catalog
	catalogErr  error
)

// ParseCatalog decodes a catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	seen := make(map[string]bool, len(c.Templates))
	for _, t := range c.Templates {
		if t.ID == "" {
			return nil, fmt.Errorf("parse catalog: template without id")
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("parse catalog: duplicate template id %q", t.ID)
		}
		seen[t.ID] = true
	}
	return &c, nil
}

// BuiltinCatalog returns the embedded catalog, decoded once.
func BuiltinCatalog() (*Catalog, error) {
	catalogOnce.Do(func() {
		catalog, catalogErr = ParseCatalog(catalogYAML)
	})
	return catalog, catalogErr
}

// FindTemplate returns the template with the given id.
func (c *Catalog) FindTemplate(id string) (Template, bool) {
	for _, t := range c.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}
