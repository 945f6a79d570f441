// Package catalog holds the curated set of text-to-speech models the service
// offers, together with the per-model language table used for compatibility
// checks.
//
// A Catalog is built once at startup and never mutated afterwards, so it is
// safe for concurrent readers without locking.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultDocument []byte

// Gender describes the voice of a model.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderMixed  Gender = "mixed"
)

// Quality is a coarse output quality tag.
type Quality string

const (
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// Family selects how speakers are resolved for a model.
type Family string

const (
	// FamilySingleSpeaker models take no speaker unless the caller names one.
	FamilySingleSpeaker Family = "single_speaker"

	// FamilyMultiSpeaker models are multilingual and always receive a
	// best-effort speaker choice.
	FamilyMultiSpeaker Family = "multi_speaker"

	// FamilyVoiceCloning models require either a voice sample or a
	// built-in speaker (the XTTS line).
	FamilyVoiceCloning Family = "voice_cloning"
)

// MultilingualLanguage is the language tag carried by multilingual models.
const MultilingualLanguage = "multilingual"

// Model describes one selectable model.
type Model struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	Description  string  `json:"description" yaml:"description"`
	Language     string  `json:"language" yaml:"language"`
	Gender       Gender  `json:"gender" yaml:"gender"`
	Quality      Quality `json:"quality" yaml:"quality"`
	VoiceCloning bool    `json:"voice_cloning" yaml:"voice_cloning"`
	MultiSpeaker bool    `json:"speakers" yaml:"multi_speaker"`
	Family       Family  `json:"family" yaml:"family,omitempty"`
}

// Multilingual reports whether the model accepts a language argument.
func (m Model) Multilingual() bool {
	return m.Language == MultilingualLanguage || m.Family != FamilySingleSpeaker
}

// Category is a named, ordered group of models.
type Category struct {
	Name   string  `json:"name" yaml:"name"`
	Models []Model `json:"models" yaml:"models"`
}

type document struct {
	Categories   []Category          `yaml:"categories"`
	Languages    map[string][]string `yaml:"languages"`
	Alternatives map[string][]string `yaml:"alternatives"`
}

// Catalog is the immutable, indexed model catalog.
type Catalog struct {
	categories   []Category
	byID         map[string]Model
	languages    map[string][]string
	alternatives map[string][]string
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultDocument)
}

// Load reads a catalog document from path. An empty path selects the
// embedded default.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse builds a Catalog from a YAML document, resolving each model's
// family and validating ids and tags.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	c := &Catalog{
		byID:         make(map[string]Model),
		languages:    make(map[string][]string, len(doc.Languages)),
		alternatives: make(map[string][]string, len(doc.Alternatives)),
	}

	for _, cat := range doc.Categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("category without a name")
		}

		resolved := Category{Name: cat.Name, Models: make([]Model, 0, len(cat.Models))}
		for _, m := range cat.Models {
			if err := validate(m); err != nil {
				return nil, fmt.Errorf("category %q: %w", cat.Name, err)
			}
			if _, dup := c.byID[m.ID]; dup {
				return nil, fmt.Errorf("duplicate model id %q", m.ID)
			}
			if m.Family == "" {
				m.Family = Classify(m.ID)
			}
			c.byID[m.ID] = m
			resolved.Models = append(resolved.Models, m)
		}
		c.categories = append(c.categories, resolved)
	}

	for id, langs := range doc.Languages {
		if _, ok := c.byID[id]; !ok {
			return nil, fmt.Errorf("language table references unknown model %q", id)
		}
		c.languages[id] = normalizeAll(langs)
	}

	for lang, ids := range doc.Alternatives {
		for _, id := range ids {
			if _, ok := c.byID[id]; !ok {
				return nil, fmt.Errorf("alternatives for %q reference unknown model %q", lang, id)
			}
		}
		c.alternatives[normalize(lang)] = slices.Clone(ids)
	}

	return c, nil
}

// Classify derives a model's family from markers in its id.
func Classify(id string) Family {
	lower := strings.ToLower(id)
	switch {
	case strings.Contains(lower, "xtts"):
		return FamilyVoiceCloning
	case strings.Contains(lower, "multilingual"):
		return FamilyMultiSpeaker
	default:
		return FamilySingleSpeaker
	}
}

func validate(m Model) error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("model without an id")
	}
	switch m.Gender {
	case GenderMale, GenderFemale, GenderMixed:
	default:
		return fmt.Errorf("model %q: invalid gender %q", m.ID, m.Gender)
	}
	switch m.Quality {
	case QualityMedium, QualityHigh:
	default:
		return fmt.Errorf("model %q: invalid quality %q", m.ID, m.Quality)
	}
	switch m.Family {
	case "", FamilySingleSpeaker, FamilyMultiSpeaker, FamilyVoiceCloning:
	default:
		return fmt.Errorf("model %q: invalid family %q", m.ID, m.Family)
	}
	return nil
}

// Lookup returns the model with the given id.
func (c *Catalog) Lookup(id string) (Model, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// Categories returns the categories in display order. The returned slice is
// a copy; models are values.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = Category{Name: cat.Name, Models: slices.Clone(cat.Models)}
	}
	return out
}

// Models returns every model in display order.
func (c *Catalog) Models() []Model {
	out := make([]Model, 0, len(c.byID))
	for _, cat := range c.categories {
		out = append(out, cat.Models...)
	}
	return out
}

// Len returns the number of models.
func (c *Catalog) Len() int {
	return len(c.byID)
}

// SupportedLanguages returns the declared languages of a model. ok is false
// when the model has no table entry, meaning no check applies.
func (c *Catalog) SupportedLanguages(id string) (langs []string, ok bool) {
	langs, ok = c.languages[id]
	return slices.Clone(langs), ok
}

// Alternatives returns model ids curated as supporting lang.
func (c *Catalog) Alternatives(lang string) []string {
	return slices.Clone(c.alternatives[normalize(lang)])
}

func normalize(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

func normalizeAll(langs []string) []string {
	out := make([]string, len(langs))
	for i, l := range langs {
		out[i] = normalize(l)
	}
	return out
}
