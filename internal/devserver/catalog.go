// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/shopdesk-tui/internal/model"
)

var (
	errNotFound = errors.New("not found")
	errConflict = errors.New("conflict")
)

type account struct {
	user model.User
	hash []byte
}

// catalog is the in-memory backend state.
type catalog struct {
	mu         sync.RWMutex
	accounts   map[string]account // by lower-case email
	products   map[int64]model.Product
	categories map[int64]model.Category
	nextID     int64
	now        func() time.Time
}

func newCatalog(seed *Seed, cost int, now func() time.Time) (*catalog, error) {
	c := &catalog{
		accounts:   make(map[string]account, len(seed.Users)),
		products:   make(map[int64]model.Product, len(seed.Products)),
		categories: make(map[int64]model.Category, len(seed.Categories)),
		now:        now,
	}
	for _, u := range seed.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
		if err != nil {
			return nil, err
		}
		c.accounts[strings.ToLower(u.Email)] = account{
			user: model.User{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role},
			hash: hash,
		}
	}
	for _, sc := range seed.Categories {
		c.categories[sc.ID] = sc.model()
		c.bump(sc.ID)
	}
	for _, sp := range seed.Products {
		p := sp.model()
		p.UpdatedAt = now().UTC()
		c.products[p.ID] = p
		c.bump(p.ID)
	}
	return c, nil
}

func (c *catalog) bump(id int64) {
	if id > c.nextID {
		c.nextID = id
	}
}

// authenticate checks a password. The bcrypt comparison runs even for
// unknown emails so both failures take similar time.
func (c *catalog) authenticate(email, password string) (model.User, bool) {
	c.mu.RLock()
	acct, ok := c.accounts[strings.ToLower(strings.TrimSpace(email))]
	c.mu.RUnlock()
	hash := acct.hash
	if !ok {
		hash = dummyHash
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil || !ok {
		return model.User{}, false
	}
	return acct.user, true
}

func (c *catalog) userByID(id int64) (model.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.accounts {
		if a.user.ID == id {
			return a.user, true
		}
	}
	return model.User{}, false
}

func (c *catalog) stats() model.DashboardStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	products := make([]model.Product, 0, len(c.products))
	for _, p := range c.products {
		products = append(products, p)
	}
	cats := make([]model.Category, 0, len(c.categories))
	for _, cat := range c.categories {
		cats = append(cats, cat)
	}
	return model.ComputeStats(products, cats)
}

func (c *catalog) listProducts(categoryID int64) []model.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Product, 0, len(c.products))
	for _, p := range c.products {
		if categoryID > 0 && p.CategoryID != categoryID {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *catalog) product(id int64) (model.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return model.Product{}, errNotFound
	}
	return p, nil
}

// putProduct inserts (ID 0) or replaces a product.
func (c *catalog) putProduct(p model.Product) (model.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.ID != 0 {
		if _, ok := c.products[p.ID]; !ok {
			return model.Product{}, errNotFound
		}
	}
	for _, other := range c.products {
		if other.ID != p.ID && strings.EqualFold(other.SKU, p.SKU) {
			return model.Product{}, errConflict
		}
	}
	if p.CategoryID != 0 {
		if _, ok := c.categories[p.CategoryID]; !ok {
			return model.Product{}, errConflict
		}
	}
	if p.ID == 0 {
		c.nextID++
		p.ID = c.nextID
	}
	p.UpdatedAt = c.now().UTC()
	c.products[p.ID] = p
	return p, nil
}

func (c *catalog) deleteProduct(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.products[id]; !ok {
		return errNotFound
	}
	delete(c.products, id)
	return nil
}

func (c *catalog) listCategories() []model.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Category, 0, len(c.categories))
	for _, cat := range c.categories {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *catalog) putCategory(cat model.Category) (model.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cat.ID != 0 {
		if _, ok := c.categories[cat.ID]; !ok {
			return model.Category{}, errNotFound
		}
	}
	if cat.Slug == "" {
		cat.Slug = model.Slugify(cat.Name)
	}
	for _, other := range c.categories {
		if other.ID != cat.ID && other.Slug == cat.Slug {
			return model.Category{}, errConflict
		}
	}
	if cat.ID == 0 {
		c.nextID++
		cat.ID = c.nextID
	}
	c.categories[cat.ID] = cat
	return cat, nil
}

// deleteCategory refuses while products still reference the category.
func (c *catalog) deleteCategory(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.categories[id]; !ok {
		return errNotFound
	}
	for _, p := range c.products {
		if p.CategoryID == id {
			return errConflict
		}
	}
	delete(c.categories, id)
	return nil
}

// dummyHash is compared against when the email is unknown.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("shopdesk-dummy"), bcrypt.MinCost)
