// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopdesk-tui/internal/model"
	"github.com/jeranaias/shopdesk-tui/internal/navigation"
	"github.com/jeranaias/shopdesk-tui/internal/ui/components"
	"github.com/jeranaias/shopdesk-tui/internal/util"
)

// =============================================================================
// CATEGORY LIST
// =============================================================================

type categoriesMsg struct{ categories []model.Category }

type categoryDeletedMsg struct{ name string }

// CategoryList lists categories.
type CategoryList struct {
	deps       Deps
	user       model.User
	categories []model.Category
	cursor     int
	loaded     bool
	confirm    bool
}

func newCategoryList(d Deps, u model.User) *CategoryList {
	return &CategoryList{deps: d, user: u}
}

func (s *CategoryList) Init() tea.Cmd { return s.load() }

func (s *CategoryList) load() tea.Cmd {
	d := s.deps
	return func() tea.Msg {
		cats, err := d.API.ListCategories(d.ctx())
		if err != nil {
			return failed("list categories", err)
		}
		return categoriesMsg{categories: cats}
	}
}

func (s *CategoryList) SetSize(int, int) {}

func (s *CategoryList) Bindings() []key.Binding {
	return []key.Binding{keyUp, keyDown, keyEdit, keyAdd, keyDelete, keyBack}
}

func (s *CategoryList) selected() (model.Category, bool) {
	if s.cursor < 0 || s.cursor >= len(s.categories) {
		return model.Category{}, false
	}
	return s.categories[s.cursor], true
}

func (s *CategoryList) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case categoriesMsg:
		s.loaded = true
		s.categories = msg.categories
		if s.cursor >= len(s.categories) {
			s.cursor = max(0, len(s.categories)-1)
		}
	case categoryDeletedMsg:
		return s, tea.Batch(toast(components.ToastKindSuccess, "Deleted "+msg.name), s.load())
	case tea.KeyMsg:
		if s.confirm {
			s.confirm = false
			if msg.String() == "y" {
				return s, s.delete()
			}
			return s, nil
		}
		switch {
		case key.Matches(msg, keyUp):
			if s.cursor > 0 {
				s.cursor--
			}
		case key.Matches(msg, keyDown):
			if s.cursor < len(s.categories)-1 {
				s.cursor++
			}
		case key.Matches(msg, keyEdit), key.Matches(msg, keyOpen):
			if c, ok := s.selected(); ok {
				s.deps.navigate(navigation.CategoryEdit{User: s.user, Category: c})
			}
		case key.Matches(msg, keyAdd):
			s.deps.navigate(navigation.CategoryAdd{User: s.user})
		case key.Matches(msg, keyDelete):
			if _, ok := s.selected(); ok {
				s.confirm = true
			}
		case key.Matches(msg, keyRefresh):
			return s, s.load()
		case key.Matches(msg, keyBack):
			s.deps.navigate(navigation.Dashboard{User: s.user})
		}
	}
	return s, nil
}

func (s *CategoryList) delete() tea.Cmd {
	c, ok := s.selected()
	if !ok {
		return nil
	}
	d := s.deps
	return func() tea.Msg {
		if err := d.API.DeleteCategory(d.ctx(), c.ID); err != nil {
			return failed("delete category", err)
		}
		return categoryDeletedMsg{name: c.Name}
	}
}

func (s *CategoryList) View() string {
	t := s.deps.Theme
	var b strings.Builder
	b.WriteString(t.Title.Render("Categories"))
	b.WriteString("\n")
	switch {
	case !s.loaded:
		b.WriteString(t.Muted.Render("Loading..."))
		return b.String()
	case len(s.categories) == 0:
		b.WriteString(t.Muted.Render("No categories. Press a to add one."))
		return b.String()
	}
	b.WriteString(t.TableHeader.Render(util.PadRight("Name", 24) + " " + util.PadRight("Slug", 24)))
	b.WriteString("\n")
	for i, c := range s.categories {
		row := util.PadRight(util.TruncateWidth(c.Name, 24), 24) + " " +
			util.PadRight(util.TruncateWidth(c.Slug, 24), 24)
		style := t.TableRow
		if i == s.cursor {
			style = t.TableRowSel
		}
		b.WriteString(style.Render(row))
		b.WriteString("\n")
	}
	if s.confirm {
		c, _ := s.selected()
		b.WriteString(t.ErrorText.Render("Delete " + c.Name + "? (y/N)"))
	}
	return b.String()
}

// =============================================================================
// CATEGORY FORM
// =============================================================================

type categorySavedMsg struct{ category model.Category }

// CategoryForm adds or edits a category. An empty slug is derived from the
// name.
type CategoryForm struct {
	deps    Deps
	user    model.User
	orig    model.Category
	editing bool
	form    *form
	saving  bool
}

func newCategoryForm(d Deps, u model.User, c model.Category, editing bool) *CategoryForm {
	f := newForm(
		newField("name", "Name", "Coffee"),
		newField("slug", "Slug", "derived from name"),
		newField("description", "Description", ""),
	)
	if editing {
		f.get("name").SetValue(c.Name)
		f.get("slug").SetValue(c.Slug)
		f.get("description").SetValue(c.Description)
	}
	return &CategoryForm{deps: d, user: u, orig: c, editing: editing, form: f}
}

func (s *CategoryForm) Init() tea.Cmd { return nil }

func (s *CategoryForm) SetSize(int, int) {}

func (s *CategoryForm) Bindings() []key.Binding {
	return []key.Binding{keyNext, keyPrev, keySave, keyCancel}
}

func (s *CategoryForm) category() (model.Category, error) {
	c := s.orig
	c.Name = s.form.value("name")
	c.Slug = s.form.value("slug")
	if c.Slug == "" {
		c.Slug = model.Slugify(c.Name)
	}
	c.Description = s.form.value("description")
	return c, c.Validate()
}

func (s *CategoryForm) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case categorySavedMsg:
		s.saving = false
		s.deps.navigate(navigation.CategoryList{User: s.user})
		return s, toast(components.ToastKindSuccess, "Saved "+msg.category.Name)
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
			if !s.deps.back() {
				s.deps.navigate(navigation.CategoryList{User: s.user})
			}
			return s, nil
		case key.Matches(msg, keyNext), msg.String() == "down":
			return s, s.form.move(1)
		case key.Matches(msg, keyPrev), msg.String() == "up":
			return s, s.form.move(-1)
		case msg.String() == "enter":
			if s.form.onSubmit() {
				return s, s.save()
			}
			return s, s.form.move(1)
		}
	}
	return s, s.form.update(msg)
}

func (s *CategoryForm) save() tea.Cmd {
	c, err := s.category()
	s.form.setErrors(err)
	if err != nil {
		return nil
	}
	s.saving = true
	d, editing := s.deps, s.editing
	return func() tea.Msg {
		var saved model.Category
		var err error
		if editing {
			saved, err = d.API.UpdateCategory(d.ctx(), c)
		} else {
			saved, err = d.API.CreateCategory(d.ctx(), c)
		}
		if err != nil {
			return failed("save category", err)
		}
		return categorySavedMsg{category: saved}
	}
}

func (s *CategoryForm) View() string {
	t := s.deps.Theme
	title := "New category"
	if s.editing {
		title = "Edit " + s.orig.Name
	}
	submit := "Save"
	if s.saving {
		submit = "Saving..."
	}
	return t.Title.Render(title) + "\n\n" + s.form.view(t, submit)
}
