package catalog

import (
	"slices"

	"techstore/internal/domain"
)

type modelKey struct{ category, manufacturer string }

// Catalog is the read-only product table plus the indexes built from it at
// load time. It is safe for concurrent readers.
type Catalog struct {
	products      []domain.Product
	byID          map[int64]domain.Product
	categories    []string
	manufacturers map[string][]string
	models        map[modelKey][]string
	configs       map[string]domain.Configuration
}

// New indexes products. Row order is significant: categories, manufacturers,
// models, colours and memory variants keep first-appearance order.
func New(products []domain.Product) *Catalog {
	c := &Catalog{
		products:      slices.Clone(products),
		byID:          make(map[int64]domain.Product, len(products)),
		manufacturers: map[string][]string{},
		models:        map[modelKey][]string{},
		configs:       map[string]domain.Configuration{},
	}
	seenCat := map[string]bool{}
	seenManu := map[modelKey]bool{}
	seenModel := map[string]bool{}
	var modelOrder []string

	for _, p := range c.products {
		if _, dup := c.byID[p.ID]; !dup {
			c.byID[p.ID] = p
		}
		if p.Category != "" && !seenCat[p.Category] {
			seenCat[p.Category] = true
			c.categories = append(c.categories, p.Category)
		}
		mk := modelKey{p.Category, p.Manufacturer}
		if p.Manufacturer != "" && !seenManu[mk] {
			seenManu[mk] = true
			c.manufacturers[p.Category] = append(c.manufacturers[p.Category], p.Manufacturer)
		}
		if p.InStock() && p.ShortName != "" && !slices.Contains(c.models[mk], p.ShortName) {
			c.models[mk] = append(c.models[mk], p.ShortName)
		}
		if !seenModel[p.ShortName] {
			seenModel[p.ShortName] = true
			modelOrder = append(modelOrder, p.ShortName)
		}
	}
	for _, m := range modelOrder {
		c.configs[m] = buildConfiguration(m, c.products)
	}
	return c
}

// buildConfiguration groups the in-stock rows of one model by colour and
// memory. A later row with the same (colour, memory) replaces the earlier one
// but keeps its position.
func buildConfiguration(model string, products []domain.Product) domain.Configuration {
	cfg := domain.Configuration{Model: model}
	var colors []string
	variants := map[string][]domain.Variant{}
	for _, p := range products {
		if p.ShortName != model {
			continue
		}
		if !slices.Contains(colors, p.Color) {
			colors = append(colors, p.Color)
		}
		if !p.InStock() {
			continue
		}
		vs := variants[p.Color]
		if i := slices.IndexFunc(vs, func(v domain.Variant) bool { return v.Memory == p.Memory }); i >= 0 {
			vs[i].Product = p
			continue
		}
		variants[p.Color] = append(vs, domain.Variant{Memory: p.Memory, Product: p})
	}
	for _, col := range colors {
		if vs := variants[col]; len(vs) > 0 {
			cfg.Colors = append(cfg.Colors, domain.ColorGroup{Color: col, Variants: vs})
		}
	}
	return cfg
}

func (c *Catalog) Len() int { return len(c.products) }

func (c *Catalog) Categories() []string { return slices.Clone(c.categories) }

// Manufacturers lists every manufacturer of a category, in stock or not.
func (c *Catalog) Manufacturers(category string) []string {
	return slices.Clone(c.manufacturers[category])
}

// Models lists models of (category, manufacturer) with at least one variant in
// stock.
func (c *Catalog) Models(category, manufacturer string) []string {
	return slices.Clone(c.models[modelKey{category, manufacturer}])
}

// Configuration returns the in-stock variant grid of a model. Unknown or sold
// out models yield an empty configuration.
func (c *Catalog) Configuration(model string) domain.Configuration {
	cfg, ok := c.configs[model]
	if !ok {
		return domain.Configuration{Model: model}
	}
	out := domain.Configuration{Model: cfg.Model, Colors: make([]domain.ColorGroup, len(cfg.Colors))}
	for i, g := range cfg.Colors {
		out.Colors[i] = domain.ColorGroup{Color: g.Color, Variants: slices.Clone(g.Variants)}
	}
	return out
}

func (c *Catalog) Product(id int64) (domain.Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}
