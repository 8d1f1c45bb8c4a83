// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/shopdesk-tui/internal/model"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the initial backend state.
type Seed struct {
	Users      []SeedUser     `yaml:"users"`
	Categories []SeedCategory `yaml:"categories"`
	Products   []SeedProduct  `yaml:"products"`
}

// SeedUser is an administrator with a plaintext password that is hashed
// on load.
type SeedUser struct {
	ID       int64  `yaml:"id"`
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Password string `yaml:"password"`
}

// SeedCategory mirrors model.Category.
type SeedCategory struct {
	ID          int64  `yaml:"id"`
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
}

// SeedProduct mirrors model.Product.
type SeedProduct struct {
	ID          int64  `yaml:"id"`
	SKU         string `yaml:"sku"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	PriceCents  int64  `yaml:"price_cents"`
	Stock       int    `yaml:"stock"`
	CategoryID  int64  `yaml:"category_id"`
}

// DefaultSeed returns the built-in catalog.
func DefaultSeed() (*Seed, error) {
	return ParseSeed(defaultSeed)
}

// LoadSeed reads a seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and checks a YAML seed.
func ParseSeed(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Seed) validate() error {
	var errs []error
	if len(s.Users) == 0 {
		errs = append(errs, errors.New("seed: at least one user is required"))
	}
	users := make(map[int64]bool)
	for _, u := range s.Users {
		if u.ID <= 0 || u.Email == "" || u.Password == "" {
			errs = append(errs, fmt.Errorf("seed: user %d needs id, email and password", u.ID))
		}
		if users[u.ID] {
			errs = append(errs, fmt.Errorf("seed: duplicate user id %d", u.ID))
		}
		users[u.ID] = true
	}
	cats := make(map[int64]bool)
	for _, c := range s.Categories {
		if c.ID <= 0 || cats[c.ID] {
			errs = append(errs, fmt.Errorf("seed: bad or duplicate category id %d", c.ID))
		}
		cats[c.ID] = true
	}
	for _, p := range s.Products {
		if p.ID <= 0 {
			errs = append(errs, fmt.Errorf("seed: product %q has no id", p.SKU))
		}
		if p.CategoryID != 0 && !cats[p.CategoryID] {
			errs = append(errs, fmt.Errorf("seed: product %d references unknown category %d", p.ID, p.CategoryID))
		}
		if err := p.model().Validate(); err != nil {
			errs = append(errs, fmt.Errorf("seed: product %d: %w", p.ID, err))
		}
	}
	return errors.Join(errs...)
}

func (p SeedProduct) model() model.Product {
	return model.Product{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		PriceCents:  p.PriceCents,
		Stock:       p.Stock,
		CategoryID:  p.CategoryID,
	}
}

func (c SeedCategory) model() model.Category {
	slug := c.Slug
	if slug == "" {
		slug = model.Slugify(c.Name)
	}
	return model.Category{ID: c.ID, Name: c.Name, Slug: slug, Description: c.Description}
}
