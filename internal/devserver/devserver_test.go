// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/shopdesk-tui/internal/clock"
	"github.com/jeranaias/shopdesk-tui/internal/model"
)

func newTestServer(t *testing.T, now func() time.Time) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(Config{
		Secret:     []byte("0123456789abcdef0123456789abcdef"),
		BcryptCost: bcrypt.MinCost,
		Now:        now,
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func call(t *testing.T, ts *httptest.Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func login(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := call(t, ts, http.MethodPost, "/api/auth/login", "", loginRequest{Email: "Admin@Example.com", Password: "admin123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out loginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	assert.Equal(t, int64(1), out.User.ID)
	return out.Token
}

func TestDefaultSeedParses(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)
	assert.NotEmpty(t, seed.Users)
	assert.Len(t, seed.Products, 4)
}

func TestParseSeedRejectsBadReferences(t *testing.T) {
	_, err := ParseSeed([]byte(`
users:
  - {id: 1, email: a@b.c, password: x}
products:
  - {id: 1, sku: A, name: A, category_id: 9}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category 9")

	_, err = ParseSeed([]byte("categories: []\n"))
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	_, ts := newTestServer(t, nil)
	login(t, ts)

	resp := call(t, ts, http.MethodPost, "/api/auth/login", "", loginRequest{Email: "admin@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = call(t, ts, http.MethodPost, "/api/auth/login", "", loginRequest{Email: "nobody@example.com", Password: "admin123"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRequired(t *testing.T) {
	_, ts := newTestServer(t, nil)
	assert.Equal(t, http.StatusUnauthorized, call(t, ts, http.MethodGet, "/api/dashboard", "", nil).StatusCode)
	assert.Equal(t, http.StatusUnauthorized, call(t, ts, http.MethodGet, "/api/dashboard", "garbage", nil).StatusCode)
	assert.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/healthz", "", nil).StatusCode)
}

func TestRevokeAll(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	token := login(t, ts)
	assert.Equal(t, http.StatusOK, call(t, ts, http.MethodGet, "/api/auth/me", token, nil).StatusCode)

	srv.RevokeAll()
	assert.Equal(t, http.StatusUnauthorized, call(t, ts, http.MethodGet, "/api/auth/me", token, nil).StatusCode)
}

func TestTokenExpiry(t *testing.T) {
	clk := clock.NewManual(time.Now())
	_, ts := newTestServer(t, clk.Now)
	token := login(t, ts)

	clk.Advance(13 * time.Hour)
	assert.Equal(t, http.StatusUnauthorized, call(t, ts, http.MethodGet, "/api/dashboard", token, nil).StatusCode)
}

func TestDashboard(t *testing.T) {
	_, ts := newTestServer(t, nil)
	token := login(t, ts)

	resp := call(t, ts, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats model.DashboardStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 4, stats.Products)
	assert.Equal(t, 2, stats.Categories)
	assert.Equal(t, 2, stats.LowStock)
}

func TestProductLifecycle(t *testing.T) {
	_, ts := newTestServer(t, nil)
	token := login(t, ts)

	resp := call(t, ts, http.MethodPost, "/api/products", token, model.Product{SKU: "NEW-1", Name: "New", PriceCents: 100, Stock: 9, CategoryID: 1})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, int64(5), created.ID)
	assert.False(t, created.UpdatedAt.IsZero())

	// Duplicate SKU.
	resp = call(t, ts, http.MethodPost, "/api/products", token, model.Product{SKU: "new-1", Name: "Dup"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Validation.
	resp = call(t, ts, http.MethodPost, "/api/products", token, model.Product{SKU: "X"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	created.Stock = 1
	resp = call(t, ts, http.MethodPut, "/api/products/5", token, created)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, ts, http.MethodGet, "/api/products?category_id=1", token, nil)
	var list []model.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 3)

	assert.Equal(t, http.StatusNoContent, call(t, ts, http.MethodDelete, "/api/products/5", token, nil).StatusCode)
	assert.Equal(t, http.StatusNotFound, call(t, ts, http.MethodGet, "/api/products/5", token, nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, call(t, ts, http.MethodGet, "/api/products/abc", token, nil).StatusCode)
}

func TestCategoryDeleteBlockedByProducts(t *testing.T) {
	_, ts := newTestServer(t, nil)
	token := login(t, ts)

	assert.Equal(t, http.StatusConflict, call(t, ts, http.MethodDelete, "/api/categories/1", token, nil).StatusCode)

	resp := call(t, ts, http.MethodPost, "/api/categories", token, model.Category{Name: "Tea & Tisanes"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var cat model.Category
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cat))
	assert.Equal(t, "tea-tisanes", cat.Slug)

	assert.Equal(t, http.StatusNoContent, call(t, ts, http.MethodDelete, "/api/categories/"+itoa(cat.ID), token, nil).StatusCode)
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
