// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shopdesk-tui/internal/model"
	"github.com/jeranaias/shopdesk-tui/internal/ui/styles"
)

const fieldWidth = 40

// field is one labelled input. Exactly one of input and area is used.
type field struct {
	name  string
	label string
	input textinput.Model
	area  *textarea.Model
	err   string
}

func newField(name, label, placeholder string) *field {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 200
	ti.Width = fieldWidth
	ti.Prompt = ""
	return &field{name: name, label: label, input: ti}
}

func newAreaField(name, label, placeholder string) *field {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.SetWidth(fieldWidth + 20)
	ta.SetHeight(5)
	ta.CharLimit = 4000
	return &field{name: name, label: label, area: &ta}
}

func (f *field) Value() string {
	if f.area != nil {
		return f.area.Value()
	}
	return f.input.Value()
}

func (f *field) SetValue(v string) {
	if f.area != nil {
		f.area.SetValue(v)
		return
	}
	f.input.SetValue(v)
}

func (f *field) focus() tea.Cmd {
	if f.area != nil {
		return f.area.Focus()
	}
	return f.input.Focus()
}

func (f *field) blur() {
	if f.area != nil {
		f.area.Blur()
		return
	}
	f.input.Blur()
}

func (f *field) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.area != nil {
		*f.area, cmd = f.area.Update(msg)
		return cmd
	}
	f.input, cmd = f.input.Update(msg)
	return cmd
}

// form cycles focus over its fields. Index len(fields) is the submit button.
type form struct {
	fields []*field
	focus  int
	err    string
}

func newForm(fields ...*field) *form {
	f := &form{fields: fields}
	if len(fields) > 0 {
		fields[0].focus()
	}
	return f
}

func (f *form) get(name string) *field {
	for _, fl := range f.fields {
		if fl.name == name {
			return fl
		}
	}
	return nil
}

func (f *form) value(name string) string {
	if fl := f.get(name); fl != nil {
		return strings.TrimSpace(fl.Value())
	}
	return ""
}

func (f *form) onSubmit() bool { return f.focus == len(f.fields) }

func (f *form) onArea() bool {
	return f.focus < len(f.fields) && f.fields[f.focus].area != nil
}

func (f *form) move(delta int) tea.Cmd {
	if f.focus < len(f.fields) {
		f.fields[f.focus].blur()
	}
	n := len(f.fields) + 1
	f.focus = ((f.focus+delta)%n + n) % n
	if f.focus < len(f.fields) {
		return f.fields[f.focus].focus()
	}
	return nil
}

func (f *form) update(msg tea.Msg) tea.Cmd {
	if f.focus < len(f.fields) {
		return f.fields[f.focus].update(msg)
	}
	return nil
}

func (f *form) clearErrors() {
	f.err = ""
	for _, fl := range f.fields {
		fl.err = ""
	}
}

// setErrors attaches model.FieldError values to their fields. Anything
// that is not a field error becomes the form error.
func (f *form) setErrors(err error) {
	f.clearErrors()
	if err == nil {
		return
	}
	var rest []string
	for _, e := range flatten(err) {
		var fe *model.FieldError
		if errors.As(e, &fe) {
			if fl := f.get(fe.Field); fl != nil {
				fl.err = fe.Message
				continue
			}
		}
		rest = append(rest, e.Error())
	}
	f.err = strings.Join(rest, "; ")
}

func (f *form) hasErrors() bool {
	if f.err != "" {
		return true
	}
	for _, fl := range f.fields {
		if fl.err != "" {
			return true
		}
	}
	return false
}

func flatten(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range j.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}

func (f *form) view(t *styles.Theme, submit string) string {
	var rows []string
	for i, fl := range f.fields {
		label := t.Label.Render(fl.label)
		var box string
		if fl.area != nil {
			box = fl.area.View()
		} else {
			box = fl.input.View()
		}
		style := t.Field
		switch {
		case fl.err != "":
			style = t.FieldError
		case i == f.focus:
			style = t.FieldFocused
		}
		row := lipgloss.JoinVertical(lipgloss.Left, label, style.Render(box))
		if fl.err != "" {
			row = lipgloss.JoinVertical(lipgloss.Left, row, t.ErrorText.Render(fl.label+" "+fl.err))
		}
		rows = append(rows, row)
	}
	btn := t.Button
	if f.onSubmit() {
		btn = t.ButtonActive
	}
	rows = append(rows, btn.Render(submit))
	if f.err != "" {
		rows = append(rows, t.ErrorText.Render(f.err))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
