// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopdesk-tui/internal/api"
	"github.com/jeranaias/shopdesk-tui/internal/logging"
	"github.com/jeranaias/shopdesk-tui/internal/model"
	"github.com/jeranaias/shopdesk-tui/internal/navigation"
	"github.com/jeranaias/shopdesk-tui/internal/session"
	"github.com/jeranaias/shopdesk-tui/internal/ui/components"
	"github.com/jeranaias/shopdesk-tui/internal/ui/styles"
)

var (
	// ErrNoSession is returned when a protected screen is built without a
	// session manager.
	ErrNoSession = errors.New("protected screen requires a session manager")

	// ErrNotProtected is returned by NewProtected for public screens.
	ErrNotProtected = errors.New("screen is not protected")
)

// Screen is one full-window view.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	// Bindings are shown in the status bar.
	Bindings() []key.Binding
	// SetSize is called with the area below the header.
	SetSize(width, height int)
}

// Backend is the shop API. *api.Client implements it.
type Backend interface {
	Login(ctx context.Context, email, password string) (api.LoginResponse, error)
	Dashboard(ctx context.Context) (model.DashboardStats, error)
	ListProducts(ctx context.Context, categoryID int64) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (model.Product, error)
	CreateProduct(ctx context.Context, p model.Product) (model.Product, error)
	UpdateProduct(ctx context.Context, p model.Product) (model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, c model.Category) (model.Category, error)
	UpdateCategory(ctx context.Context, c model.Category) (model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// Sessions is the part of *session.Manager the screens use.
type Sessions interface {
	CompleteLogin(ctx context.Context, res session.LoginResult) error
	Logout(ctx context.Context) error
	JustLoggedOut() bool
}

// Remembered reads saved login credentials. *auth.CredentialStore
// implements it.
type Remembered interface {
	Email(ctx context.Context) (string, bool)
	Password(ctx context.Context) (string, bool)
	RememberMe(ctx context.Context) bool
}

// Navigator moves between screens. *navigation.State implements it.
type Navigator interface {
	NavigateTo(s navigation.Screen)
	Back() bool
}

// Deps are the collaborators every screen may use.
type Deps struct {
	Ctx        context.Context
	API        Backend
	Session    Sessions
	Remembered Remembered
	Nav        Navigator
	Theme      *styles.Theme
	Markdown   *components.Markdown
	// Clipboard copies text; nil disables copying.
	Clipboard func(string) error
	Log       logging.Logger
}

func (d Deps) ctx() context.Context {
	if d.Ctx == nil {
		return context.Background()
	}
	return d.Ctx
}

// Build returns the model for s: the login form for Login and a protected
// screen for everything else.
func Build(d Deps, s navigation.Screen) (Screen, error) {
	if _, ok := s.(navigation.Login); ok {
		return newLogin(d), nil
	}
	return NewProtected(d, s)
}

// NewProtected builds a screen that requires a signed-in user. It fails
// when the session manager is missing.
func NewProtected(d Deps, s navigation.Screen) (Screen, error) {
	if isNil(d.Session) {
		return nil, fmt.Errorf("%s: %w", navigation.Name(s), ErrNoSession)
	}
	if !navigation.Protected(s) {
		return nil, fmt.Errorf("%s: %w", navigation.Name(s), ErrNotProtected)
	}
	if d.Theme == nil {
		d.Theme = styles.NewTheme("auto")
	}
	if d.Log == nil {
		d.Log = logging.Discard()
	}

	switch s := s.(type) {
	case navigation.Dashboard:
		return newDashboard(d, s.User), nil
	case navigation.ProductList:
		return newProductList(d, s.User), nil
	case navigation.ProductDetail:
		return newProductDetail(d, s.User, s.Product), nil
	case navigation.ProductAdd:
		return newProductForm(d, s.User, model.Product{}, false), nil
	case navigation.ProductEdit:
		return newProductForm(d, s.User, s.Product, true), nil
	case navigation.CategoryList:
		return newCategoryList(d, s.User), nil
	case navigation.CategoryAdd:
		return newCategoryForm(d, s.User, model.Category{}, false), nil
	case navigation.CategoryEdit:
		return newCategoryForm(d, s.User, s.Category, true), nil
	}
	return nil, fmt.Errorf("no view for screen %s", navigation.Name(s))
}

// navigate moves to next unless a logout happened after this screen was
// built. A key or async result landing between Logout and the reset to
// Login must not reopen a protected screen.
func (d Deps) navigate(next navigation.Screen) bool {
	if d.Session.JustLoggedOut() {
		d.Log.Debug(d.ctx(), "dropping navigation after logout",
			logging.Event("STALE_NAVIGATION", "to", navigation.Name(next))...)
		return false
	}
	d.Nav.NavigateTo(next)
	return true
}

func (d Deps) back() bool {
	if d.Session.JustLoggedOut() {
		return false
	}
	return d.Nav.Back()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
