// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jeranaias/shopdesk-tui/internal/model"
)

// Paths served by the backend.
const (
	PathLogin      = "/api/auth/login"
	PathMe         = "/api/auth/me"
	PathDashboard  = "/api/dashboard"
	PathProducts   = "/api/products"
	PathCategories = "/api/categories"
)

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is a successful login.
type LoginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login exchanges credentials for a session token. A 401 here means bad
// credentials, not an expired session, and is reported as
// ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var resp LoginResponse
	err := c.do(ctx, http.MethodPost, PathLogin, nil, LoginRequest{Email: email, Password: password}, &resp, false)
	if errors.Is(err, ErrUnauthorized) {
		return LoginResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResponse{}, err
	}
	if resp.Token == "" || resp.User.ID <= 0 {
		return LoginResponse{}, errors.New("login response missing token or user")
	}
	return resp, nil
}

// Me returns the user the current token belongs to. It is used to resume a
// stored session at startup.
func (c *Client) Me(ctx context.Context) (model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, PathMe, nil, nil, &u, true); err != nil {
		return model.User{}, err
	}
	if u.ID <= 0 {
		return model.User{}, errors.New("me response missing user")
	}
	return u, nil
}

// Dashboard fetches catalog counters.
func (c *Client) Dashboard(ctx context.Context) (model.DashboardStats, error) {
	var stats model.DashboardStats
	err := c.do(ctx, http.MethodGet, PathDashboard, nil, nil, &stats, true)
	return stats, err
}

// ListProducts returns all products, or those in one category when
// categoryID > 0.
func (c *Client) ListProducts(ctx context.Context, categoryID int64) ([]model.Product, error) {
	var q url.Values
	if categoryID > 0 {
		q = url.Values{"category_id": {strconv.FormatInt(categoryID, 10)}}
	}
	var products []model.Product
	err := c.do(ctx, http.MethodGet, PathProducts, q, nil, &products, true)
	return products, err
}

// GetProduct fetches one product.
func (c *Client) GetProduct(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := c.do(ctx, http.MethodGet, productPath(id), nil, nil, &p, true)
	return p, err
}

// CreateProduct adds a product and returns it as stored.
func (c *Client) CreateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	var out model.Product
	err := c.do(ctx, http.MethodPost, PathProducts, nil, p, &out, true)
	return out, err
}

// UpdateProduct replaces a product and returns it as stored.
func (c *Client) UpdateProduct(ctx context.Context, p model.Product) (model.Product, error) {
	var out model.Product
	err := c.do(ctx, http.MethodPut, productPath(p.ID), nil, p, &out, true)
	return out, err
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, productPath(id), nil, nil, nil, true)
}

// ListCategories returns all categories.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	err := c.do(ctx, http.MethodGet, PathCategories, nil, nil, &cats, true)
	return cats, err
}

// CreateCategory adds a category.
func (c *Client) CreateCategory(ctx context.Context, cat model.Category) (model.Category, error) {
	var out model.Category
	err := c.do(ctx, http.MethodPost, PathCategories, nil, cat, &out, true)
	return out, err
}

// UpdateCategory replaces a category.
func (c *Client) UpdateCategory(ctx context.Context, cat model.Category) (model.Category, error) {
	var out model.Category
	err := c.do(ctx, http.MethodPut, categoryPath(cat.ID), nil, cat, &out, true)
	return out, err
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, categoryPath(id), nil, nil, nil, true)
}

func productPath(id int64) string {
	return PathProducts + "/" + strconv.FormatInt(id, 10)
}

func categoryPath(id int64) string {
	return PathCategories + "/" + strconv.FormatInt(id, 10)
}
