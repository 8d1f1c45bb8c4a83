// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jeranaias/shopdesk-tui/internal/util"
)

// LowStockThreshold is the stock level at or below which a product is
// flagged on the dashboard and in the product list.
const LowStockThreshold = 5

// =============================================================================
// USER
// =============================================================================

// User is an authenticated administrator.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// DisplayName returns the name, falling back to the email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// =============================================================================
// PRODUCT
// =============================================================================

// Product is a catalog item. Description is markdown.
type Product struct {
	ID          int64     `json:"id"`
	SKU         string    `json:"sku"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Stock       int       `json:"stock"`
	CategoryID  int64     `json:"category_id"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Price renders the product price.
func (p Product) Price() string {
	return Money(p.PriceCents)
}

// LowStock reports whether stock is at or below LowStockThreshold.
func (p Product) LowStock() bool {
	return p.Stock <= LowStockThreshold
}

// Validate checks the fields an admin form must supply.
func (p Product) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, &FieldError{Field: "name", Message: "is required"})
	}
	if strings.TrimSpace(p.SKU) == "" {
		errs = append(errs, &FieldError{Field: "sku", Message: "is required"})
	} else if strings.ContainsFunc(p.SKU, unicode.IsSpace) {
		errs = append(errs, &FieldError{Field: "sku", Message: "must not contain spaces"})
	}
	if p.PriceCents < 0 {
		errs = append(errs, &FieldError{Field: "price", Message: "must not be negative"})
	}
	if p.Stock < 0 {
		errs = append(errs, &FieldError{Field: "stock", Message: "must not be negative"})
	}
	return errors.Join(errs...)
}

// =============================================================================
// CATEGORY
// =============================================================================

// Category groups products.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Validate checks the fields an admin form must supply.
func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &FieldError{Field: "name", Message: "is required"}
	}
	return nil
}

// Slugify derives a URL slug from a category name: lower-case ASCII letters
// and digits joined by single hyphens.
func Slugify(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// =============================================================================
// DASHBOARD
// =============================================================================

// DashboardStats summarises the catalog.
type DashboardStats struct {
	Products            int   `json:"products"`
	Categories          int   `json:"categories"`
	LowStock            int   `json:"low_stock"`
	InventoryValueCents int64 `json:"inventory_value_cents"`
}

// ComputeStats derives dashboard counters from a catalog snapshot.
func ComputeStats(products []Product, categories []Category) DashboardStats {
	stats := DashboardStats{Products: len(products), Categories: len(categories)}
	for _, p := range products {
		if p.LowStock() {
			stats.LowStock++
		}
		stats.InventoryValueCents += p.PriceCents * int64(p.Stock)
	}
	return stats
}

// =============================================================================
// HELPERS
// =============================================================================

// Money renders cents as "$1,234.56".
func Money(cents int64) string {
	if cents < 0 {
		return "-$" + util.FormatCents(-cents)
	}
	return "$" + util.FormatCents(cents)
}

// FieldError reports one invalid form field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}
