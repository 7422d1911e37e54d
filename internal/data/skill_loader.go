package data

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// definitionEntry is the YAML shape of one catalog entry.
type definitionEntry struct {
	ID                    string        `yaml:"id"`
	Name                  string        `yaml:"name"`
	Description           string        `yaml:"description"`
	Icon                  string        `yaml:"icon"`
	Kind                  string        `yaml:"kind"`
	Duration              time.Duration `yaml:"duration"`
	Cooldown              time.Duration `yaml:"cooldown"`
	MinCooldownMultiplier float64       `yaml:"min_cooldown_multiplier"`
	MaxUpgradedRepeatRate time.Duration `yaml:"max_upgraded_repeat_rate"`
	Damage                float64       `yaml:"damage"`
	Size                  float64       `yaml:"size"`
	Effect                string        `yaml:"effect"`
	Manual                bool          `yaml:"manual"`
}

type catalogFile struct {
	Skills []definitionEntry `yaml:"skills"`
}

// Catalog is the registry of all skill definitions known to a session.
// Read-only after loading.
type Catalog struct {
	defs  map[string]*Definition
	order []string
}

// NewCatalog builds a catalog from already validated definitions.
// Later duplicates are rejected.
func NewCatalog(defs ...*Definition) (*Catalog, error) {
	c := &Catalog{defs: make(map[string]*Definition, len(defs))}
	var errs []error
	for _, d := range defs {
		if err := c.add(d); err != nil {
			errs = append(errs, err)
		}
	}
	return c, errors.Join(errs...)
}

func (c *Catalog) add(d *Definition) error {
	if d == nil {
		return fmt.Errorf("%w: nil definition", ErrInvalidDefinition)
	}
	if _, ok := c.defs[d.ID]; ok {
		return fmt.Errorf("%w: duplicate id %q", ErrInvalidDefinition, d.ID)
	}
	c.defs[d.ID] = d
	c.order = append(c.order, d.ID)
	return nil
}

// LoadCatalog reads a YAML catalog file.
// See ParseCatalog for how invalid entries are handled.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog parses YAML catalog data.
//
// A YAML syntax error returns a nil catalog. Invalid entries are skipped and
// reported together in the returned error, while the catalog holding the
// valid entries is still returned so a bad skill degrades to unavailable.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{defs: make(map[string]*Definition, len(file.Skills))}
	var errs []error
	for i, e := range file.Skills {
		def, err := e.definition()
		if err == nil {
			err = c.add(def)
		}
		if err != nil {
			slog.Warn("skipping skill definition", "index", i, "skill", e.ID, "err", err)
			errs = append(errs, err)
		}
	}

	slog.Info("skill catalog loaded", "skills", len(c.defs), "rejected", len(errs))
	return c, errors.Join(errs...)
}

func (e definitionEntry) definition() (*Definition, error) {
	kind, err := ParseKind(e.Kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.ID, err)
	}
	return NewDefinition(Definition{
		ID:                    e.ID,
		Name:                  e.Name,
		Description:           e.Description,
		Icon:                  e.Icon,
		Kind:                  kind,
		BaseDuration:          e.Duration,
		BaseCooldown:          e.Cooldown,
		MinCooldownMultiplier: e.MinCooldownMultiplier,
		MaxUpgradedRepeatRate: e.MaxUpgradedRepeatRate,
		Damage:                e.Damage,
		Size:                  e.Size,
		Effect:                e.Effect,
		Manual:                e.Manual,
	})
}

// Get returns the definition for id.
func (c *Catalog) Get(id string) (*Definition, error) {
	d, ok := c.defs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSkill, id)
	}
	return d, nil
}

// IDs returns skill ids in catalog order.
func (c *Catalog) IDs() []string {
	return slices.Clone(c.order)
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.defs)
}
