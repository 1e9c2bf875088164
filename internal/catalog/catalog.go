// Package catalog exposes the static, build-time content of the site:
// pricing tiers, rentable scooters, marketing models, store locations and
// testimonials. The data is embedded in the binary and never mutated.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/example/easyride/internal/geo"
)

//go:embed catalog.yaml
var embedded []byte

// PricingTier is a rental duration and its price in dirhams.
type PricingTier struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	Duration  string `yaml:"duration" json:"duration"`
	Price     int    `yaml:"price" json:"price"`
	IsPopular bool   `yaml:"popular" json:"is_popular,omitempty"`
}

// Scooter is a unit selectable on the rental form.
type Scooter struct {
	ID    string `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Speed int    `yaml:"speed" json:"speed"`
	Price int    `yaml:"price" json:"price"`
}

// Model is a scooter range advertised on the home page.
type Model struct {
	Name     string   `yaml:"name"`
	Price    string   `yaml:"price"`
	Features []string `yaml:"features"`
}

// Store is a physical pick-up location.
type Store struct {
	ID       string    `yaml:"id" json:"id"`
	Name     string    `yaml:"name" json:"name"`
	Address  string    `yaml:"address" json:"address"`
	Hours    string    `yaml:"hours" json:"hours"`
	Main     bool      `yaml:"main" json:"main,omitempty"`
	Position geo.Point `yaml:"position" json:"position"`
}

// Testimonial is a customer quote.
type Testimonial struct {
	Name  string `yaml:"name"`
	Quote string `yaml:"quote"`
}

// Catalog groups all static content.
type Catalog struct {
	Pricing      []PricingTier `yaml:"pricing"`
	Scooters     []Scooter     `yaml:"scooters"`
	Models       []Model       `yaml:"models"`
	Stores       []Store       `yaml:"stores"`
	Testimonials []Testimonial `yaml:"testimonials"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns a private copy of the embedded catalog. It panics if the
// embedded document is malformed, which can only happen with a broken build.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(embedded)
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultCatalog.Clone()
}

// Clone returns a deep copy of c.
func (c *Catalog) Clone() *Catalog {
	if c == nil {
		return nil
	}
	out := &Catalog{
		Pricing:      append([]PricingTier(nil), c.Pricing...),
		Scooters:     append([]Scooter(nil), c.Scooters...),
		Models:       make([]Model, len(c.Models)),
		Stores:       append([]Store(nil), c.Stores...),
		Testimonials: append([]Testimonial(nil), c.Testimonials...),
	}
	for i, m := range c.Models {
		m.Features = append([]string(nil), m.Features...)
		out.Models[i] = m
	}
	return out
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Pricing) == 0 {
		return fmt.Errorf("catalog: no pricing tiers")
	}
	seen := make(map[string]struct{}, len(c.Pricing))
	for _, tier := range c.Pricing {
		if tier.ID == "" {
			return fmt.Errorf("catalog: pricing tier without id")
		}
		if _, dup := seen[tier.ID]; dup {
			return fmt.Errorf("catalog: duplicate pricing tier %q", tier.ID)
		}
		if tier.Price < 0 {
			return fmt.Errorf("catalog: pricing tier %q has negative price", tier.ID)
		}
		seen[tier.ID] = struct{}{}
	}
	mains := 0
	for _, store := range c.Stores {
		if err := store.Position.Validate(); err != nil {
			return fmt.Errorf("catalog: store %q: %w", store.ID, err)
		}
		if store.Main {
			mains++
		}
	}
	if mains != 1 {
		return fmt.Errorf("catalog: expected exactly one main store, found %d", mains)
	}
	return nil
}

// MainStore returns the store the map measures distances to.
func (c *Catalog) MainStore() Store {
	for _, store := range c.Stores {
		if store.Main {
			return store
		}
	}
	return Store{}
}

// Scooter looks a scooter up by id.
func (c *Catalog) Scooter(id string) (Scooter, bool) {
	for _, s := range c.Scooters {
		if s.ID == id {
			return s, true
		}
	}
	return Scooter{}, false
}

// Tier looks a pricing tier up by id.
func (c *Catalog) Tier(id string) (PricingTier, bool) {
	for _, tier := range c.Pricing {
		if tier.ID == id {
			return tier, true
		}
	}
	return PricingTier{}, false
}
