// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/shopdesk-tui/internal/logging"
	"github.com/jeranaias/shopdesk-tui/internal/model"
)

const maxBodySize = 64 << 10

// Config configures a Server.
type Config struct {
	// Seed is the initial state; nil uses the built-in catalog.
	Seed *Seed
	// Secret signs tokens. Required.
	Secret []byte
	// TokenTTL defaults to 12h.
	TokenTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Logger     logging.Logger
	// Now overrides the clock for token issue and expiry.
	Now func() time.Time
}

// Server is a development implementation of the shop admin API.
type Server struct {
	cat      *catalog
	secret   []byte
	tokenTTL time.Duration
	log      logging.Logger
	now      func() time.Time
	gen      atomic.Int64
}

// New builds a server from cfg.
func New(cfg Config) (*Server, error) {
	if len(cfg.Secret) < 16 {
		return nil, errors.New("devserver: secret must be at least 16 bytes")
	}
	seed := cfg.Seed
	if seed == nil {
		var err error
		if seed, err = DefaultSeed(); err != nil {
			return nil, err
		}
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = tokenTTLDefault
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cat, err := newCatalog(seed, cfg.BcryptCost, cfg.Now)
	if err != nil {
		return nil, err
	}
	return &Server{
		cat:      cat,
		secret:   cfg.Secret,
		tokenTTL: cfg.TokenTTL,
		log:      cfg.Logger.With("component", "devserver"),
		now:      cfg.Now,
	}, nil
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/auth/me", s.me)
			r.Get("/dashboard", s.dashboard)

			r.Get("/products", s.listProducts)
			r.Post("/products", s.createProduct)
			r.Get("/products/{id}", s.getProduct)
			r.Put("/products/{id}", s.updateProduct)
			r.Delete("/products/{id}", s.deleteProduct)

			r.Get("/categories", s.listCategories)
			r.Post("/categories", s.createCategory)
			r.Put("/categories/{id}", s.updateCategory)
			r.Delete("/categories/{id}", s.deleteCategory)
		})
	})
	return r
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type userIDKey struct{}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		id, err := s.parseToken(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}
		if _, ok := s.cat.userByID(id); !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized", "unknown user")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, id)))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := s.now()
		next.ServeHTTP(ww, r)
		s.log.Info(r.Context(), "request", logging.Event("HTTP_REQUEST",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", s.now().Sub(start))...)
	})
}

// =============================================================================
// HANDLERS
// =============================================================================

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	user, ok := s.cat.authenticate(req.Email, req.Password)
	if !ok {
		s.log.Warn(r.Context(), "login refused", logging.Event("LOGIN_FAILED", "email", req.Email)...)
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}
	token, err := s.issueToken(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	id, _ := r.Context().Value(userIDKey{}).(int64)
	user, _ := s.cat.userByID(id)
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) dashboard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cat.stats())
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	var categoryID int64
	if v := r.URL.Query().Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "category_id must be an integer")
			return
		}
		categoryID = id
	}
	writeJSON(w, http.StatusOK, s.cat.listProducts(categoryID))
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.cat.product(id)
	if err != nil {
		writeStoreError(w, err, "product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if !decode(w, r, &p) {
		return
	}
	p.ID = 0
	s.saveProduct(w, p, http.StatusCreated)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p model.Product
	if !decode(w, r, &p) {
		return
	}
	p.ID = id
	s.saveProduct(w, p, http.StatusOK)
}

func (s *Server) saveProduct(w http.ResponseWriter, p model.Product, status int) {
	if err := p.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid", err.Error())
		return
	}
	out, err := s.cat.putProduct(p)
	if err != nil {
		writeStoreError(w, err, "product")
		return
	}
	writeJSON(w, status, out)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.cat.deleteProduct(id); err != nil {
		writeStoreError(w, err, "product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cat.listCategories())
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	var c model.Category
	if !decode(w, r, &c) {
		return
	}
	c.ID = 0
	s.saveCategory(w, c, http.StatusCreated)
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var c model.Category
	if !decode(w, r, &c) {
		return
	}
	c.ID = id
	s.saveCategory(w, c, http.StatusOK)
}

func (s *Server) saveCategory(w http.ResponseWriter, c model.Category, status int) {
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid", err.Error())
		return
	}
	out, err := s.cat.putCategory(c)
	if err != nil {
		writeStoreError(w, err, "category")
		return
	}
	writeJSON(w, status, out)
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.cat.deleteCategory(id); err != nil {
		writeStoreError(w, err, "category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// HELPERS
// =============================================================================

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeStoreError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, errNotFound):
		writeError(w, http.StatusNotFound, "not_found", what+" not found")
	case errors.Is(err, errConflict):
		writeError(w, http.StatusConflict, "conflict", what+" conflicts with existing data")
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	body := map[string]any{"error": map[string]string{"code": code, "message": msg}}
	writeJSON(w, status, body)
}
