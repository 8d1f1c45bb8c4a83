// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package navigation

import "github.com/jeranaias/shopdesk-tui/internal/model"

// Screen is one navigable view and the data it was opened with. The set of
// variants is closed: only types in this package implement it.
type Screen interface {
	screen()
}

// Login is the only screen reachable without a session.
type Login struct{}

// Dashboard is the landing screen after login.
type Dashboard struct{ User model.User }

// ProductList shows the catalog.
type ProductList struct{ User model.User }

// ProductDetail shows one product.
type ProductDetail struct {
	User    model.User
	Product model.Product
}

// ProductEdit edits an existing product.
type ProductEdit struct {
	User    model.User
	Product model.Product
}

// ProductAdd creates a product.
type ProductAdd struct{ User model.User }

// CategoryList shows all categories.
type CategoryList struct{ User model.User }

// CategoryAdd creates a category.
type CategoryAdd struct{ User model.User }

// CategoryEdit edits an existing category.
type CategoryEdit struct {
	User     model.User
	Category model.Category
}

func (Login) screen()         {}
func (Dashboard) screen()     {}
func (ProductList) screen()   {}
func (ProductDetail) screen() {}
func (ProductEdit) screen()   {}
func (ProductAdd) screen()    {}
func (CategoryList) screen()  {}
func (CategoryAdd) screen()   {}
func (CategoryEdit) screen()  {}

// Name returns a stable identifier for logs and the status bar.
func Name(s Screen) string {
	switch s.(type) {
	case Login:
		return "login"
	case Dashboard:
		return "dashboard"
	case ProductList:
		return "product-list"
	case ProductDetail:
		return "product-detail"
	case ProductEdit:
		return "product-edit"
	case ProductAdd:
		return "product-add"
	case CategoryList:
		return "category-list"
	case CategoryAdd:
		return "category-add"
	case CategoryEdit:
		return "category-edit"
	case nil:
		return "none"
	default:
		return "unknown"
	}
}

// Title returns the header text for a screen.
func Title(s Screen) string {
	switch v := s.(type) {
	case Login:
		return "Sign in"
	case Dashboard:
		return "Dashboard"
	case ProductList:
		return "Products"
	case ProductDetail:
		return v.Product.Name
	case ProductEdit:
		return "Edit " + v.Product.Name
	case ProductAdd:
		return "New product"
	case CategoryList:
		return "Categories"
	case CategoryAdd:
		return "New category"
	case CategoryEdit:
		return "Edit " + v.Category.Name
	default:
		return ""
	}
}

// Protected reports whether s requires an authenticated session. Every
// screen except Login does.
func Protected(s Screen) bool {
	if s == nil {
		return false
	}
	_, isLogin := s.(Login)
	return !isLogin
}

// UserOf returns the user payload carried by a protected screen.
func UserOf(s Screen) (model.User, bool) {
	switch v := s.(type) {
	case Dashboard:
		return v.User, true
	case ProductList:
		return v.User, true
	case ProductDetail:
		return v.User, true
	case ProductEdit:
		return v.User, true
	case ProductAdd:
		return v.User, true
	case CategoryList:
		return v.User, true
	case CategoryAdd:
		return v.User, true
	case CategoryEdit:
		return v.User, true
	default:
		return model.User{}, false
	}
}
