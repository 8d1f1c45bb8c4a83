// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopdesk-tui/internal/model"
	"github.com/jeranaias/shopdesk-tui/internal/navigation"
	"github.com/jeranaias/shopdesk-tui/internal/ui/components"
	"github.com/jeranaias/shopdesk-tui/internal/util"
)

type productSavedMsg struct{ product model.Product }

// ProductForm adds a product or edits an existing one.
type ProductForm struct {
	deps    Deps
	user    model.User
	orig    model.Product
	editing bool
	form    *form
	saving  bool
}

func newProductForm(d Deps, u model.User, p model.Product, editing bool) *ProductForm {
	f := newForm(
		newField("sku", "SKU", "COF-ETH-250"),
		newField("name", "Name", "Ethiopia Yirgacheffe 250g"),
		newField("price", "Price", "12.50"),
		newField("stock", "Stock", "0"),
		newField("category", "Category ID", "1"),
		newAreaField("description", "Description (markdown)", "Tasting notes..."),
	)
	if editing {
		f.get("sku").SetValue(p.SKU)
		f.get("name").SetValue(p.Name)
		f.get("price").SetValue(util.FormatCents(p.PriceCents))
		f.get("stock").SetValue(util.IntToString(p.Stock))
		if p.CategoryID != 0 {
			f.get("category").SetValue(util.Int64ToString(p.CategoryID))
		}
		f.get("description").SetValue(p.Description)
	}
	return &ProductForm{deps: d, user: u, orig: p, editing: editing, form: f}
}

func (s *ProductForm) Init() tea.Cmd { return nil }

func (s *ProductForm) SetSize(int, int) {}

func (s *ProductForm) Bindings() []key.Binding {
	return []key.Binding{keyNext, keyPrev, keySave, keyCancel}
}

// product reads the form into a model.Product. Parse and validation errors
// are returned as model.FieldError values.
func (s *ProductForm) product() (model.Product, error) {
	p := s.orig
	p.SKU = s.form.value("sku")
	p.Name = s.form.value("name")
	p.Description = strings.TrimRight(s.form.get("description").Value(), "\n ")

	var errs []error
	if cents, err := util.ParseCents(s.form.value("price")); err != nil {
		errs = append(errs, &model.FieldError{Field: "price", Message: "must be an amount like 12.50"})
	} else {
		p.PriceCents = cents
	}
	if v := s.form.value("stock"); v == "" {
		p.Stock = 0
	} else if n, err := strconv.Atoi(v); err != nil {
		errs = append(errs, &model.FieldError{Field: "stock", Message: "must be a whole number"})
	} else {
		p.Stock = n
	}
	if v := s.form.value("category"); v == "" {
		p.CategoryID = 0
	} else if id, err := util.ParseInt64(v); err != nil || id < 0 {
		errs = append(errs, &model.FieldError{Field: "category", Message: "must be a category id"})
	} else {
		p.CategoryID = id
	}
	if err := p.Validate(); err != nil {
		errs = append(errs, err)
	}
	return p, errors.Join(errs...)
}

func (s *ProductForm) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case productSavedMsg:
		s.saving = false
		verb := "Created "
		if s.editing {
			verb = "Saved "
		}
		s.deps.navigate(navigation.ProductDetail{User: s.user, Product: msg.product})
		return s, toast(components.ToastKindSuccess, verb+msg.product.SKU)
	case ErrMsg:
		s.saving = false
		s.form.setErrors(msg.Err)
		return s, nil
	case tea.KeyMsg:
		if s.saving {
			return s, nil
		}
		switch {
		case key.Matches(msg, keySave):
			return s, s.save()
		case key.Matches(msg, keyCancel):
			s.cancel()
			return s, nil
		case key.Matches(msg, keyNext):
			return s, s.form.move(1)
		case key.Matches(msg, keyPrev):
			return s, s.form.move(-1)
		case msg.String() == "enter" && !s.form.onArea():
			if s.form.onSubmit() {
				return s, s.save()
			}
			return s, s.form.move(1)
		}
	}
	return s, s.form.update(msg)
}

// cancel returns to the previous screen, falling back to the detail or
// list view when there is no history.
func (s *ProductForm) cancel() {
	if s.deps.back() {
		return
	}
	if s.editing {
		s.deps.navigate(navigation.ProductDetail{User: s.user, Product: s.orig})
		return
	}
	s.deps.navigate(navigation.ProductList{User: s.user})
}

func (s *ProductForm) save() tea.Cmd {
	p, err := s.product()
	s.form.setErrors(err)
	if err != nil {
		return nil
	}
	s.saving = true
	d, editing := s.deps, s.editing
	return func() tea.Msg {
		var saved model.Product
		var err error
		if editing {
			saved, err = d.API.UpdateProduct(d.ctx(), p)
		} else {
			saved, err = d.API.CreateProduct(d.ctx(), p)
		}
		if err != nil {
			return failed("save product", err)
		}
		return productSavedMsg{product: saved}
	}
}

func (s *ProductForm) View() string {
	t := s.deps.Theme
	title := "New product"
	if s.editing {
		title = "Edit " + s.orig.SKU
	}
	submit := "Save"
	if s.saving {
		submit = "Saving..."
	}
	return t.Title.Render(title) + "\n\n" + s.form.view(t, submit)
}
