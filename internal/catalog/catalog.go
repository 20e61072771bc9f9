// Package catalog holds the static brand → model → year-range reference dataset.
package catalog

import (
	"errors"
	"fmt"
	"iter"
)

var (
	ErrDuplicateBrand = errors.New("duplicate brand")
	ErrDuplicateModel = errors.New("duplicate model")
	ErrInvalidEntry   = errors.New("invalid catalog entry")
)

// Model is a vehicle model produced between YearFrom and YearTo inclusive.
type Model struct {
	Name     string `json:"name"      yaml:"name"`
	YearFrom int    `json:"year_from" yaml:"year_from"`
	YearTo   int    `json:"year_to"   yaml:"year_to"`
}

// Brand owns an ordered list of models.
type Brand struct {
	Name   string  `json:"name"   yaml:"name"`
	Models []Model `json:"models" yaml:"models"`
}

// Catalog is an immutable, read-only index over brands.
// Safe for concurrent use.
type Catalog struct {
	brands  []Brand
	byBrand map[string]int
}

// New builds a Catalog from brands. The slice is copied.
func New(brands []Brand) (*Catalog, error) {
	c := &Catalog{
		brands:  make([]Brand, 0, len(brands)),
		byBrand: make(map[string]int, len(brands)),
	}

	for _, b := range brands {
		if b.Name == "" {
			return nil, fmt.Errorf("%w: brand with empty name", ErrInvalidEntry)
		}
		if _, dup := c.byBrand[b.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateBrand, b.Name)
		}

		seen := make(map[string]bool, len(b.Models))
		models := make([]Model, 0, len(b.Models))
		for _, m := range b.Models {
			if m.Name == "" {
				return nil, fmt.Errorf("%w: %s has a model with empty name", ErrInvalidEntry, b.Name)
			}
			if m.YearFrom > m.YearTo {
				return nil, fmt.Errorf("%w: %s %s year_from %d > year_to %d",
					ErrInvalidEntry, b.Name, m.Name, m.YearFrom, m.YearTo)
			}
			if seen[m.Name] {
				return nil, fmt.Errorf("%w: %s %q", ErrDuplicateModel, b.Name, m.Name)
			}
			seen[m.Name] = true
			models = append(models, m)
		}

		c.byBrand[b.Name] = len(c.brands)
		c.brands = append(c.brands, Brand{Name: b.Name, Models: models})
	}

	return c, nil
}

// Brands returns all brands in dataset order.
func (c *Catalog) Brands() []Brand {
	out := make([]Brand, len(c.brands))
	copy(out, c.brands)
	return out
}

// Len returns the number of brands.
func (c *Catalog) Len() int { return len(c.brands) }

// FindBrand looks a brand up by its exact name.
func (c *Catalog) FindBrand(name string) (Brand, bool) {
	i, ok := c.byBrand[name]
	if !ok {
		return Brand{}, false
	}
	return c.brands[i], true
}

// FindModel looks a model up by its exact name within brand.
func (c *Catalog) FindModel(brand Brand, name string) (Model, bool) {
	for _, m := range brand.Models {
		if m.Name == name {
			return m, true
		}
	}
	return Model{}, false
}

// Lookup resolves a brand and model by name in one step.
func (c *Catalog) Lookup(brandName, modelName string) (Brand, Model, bool) {
	b, ok := c.FindBrand(brandName)
	if !ok {
		return Brand{}, Model{}, false
	}
	m, ok := c.FindModel(b, modelName)
	if !ok {
		return Brand{}, Model{}, false
	}
	return b, m, true
}

// Years yields every production year of m in ascending order.
// The sequence can be ranged over any number of times.
func (m Model) Years() iter.Seq[int] {
	return func(yield func(int) bool) {
		for y := m.YearFrom; y <= m.YearTo; y++ {
			if !yield(y) {
				return
			}
		}
	}
}

// HasYear reports whether year lies within the model's production range.
func (m Model) HasYear(year int) bool {
	return year >= m.YearFrom && year <= m.YearTo
}
