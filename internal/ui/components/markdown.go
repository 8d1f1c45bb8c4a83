// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
)

// Markdown renders product descriptions. Renderers are cached per width.
type Markdown struct {
	style string

	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdown creates a renderer using a glamour style ("dark", "light",
// "notty"). An empty style picks dark or light from isDark.
func NewMarkdown(style string, isDark bool) *Markdown {
	if style == "" {
		style = "light"
		if isDark {
			style = "dark"
		}
	}
	return &Markdown{style: style, renderers: make(map[int]*glamour.TermRenderer)}
}

// Render formats src for width columns. If glamour fails the text is
// word-wrapped as is.
func (m *Markdown) Render(src string, width int) string {
	if width < 20 {
		width = 20
	}
	r, err := m.renderer(width)
	if err == nil {
		if out, err := r.Render(src); err == nil {
			return strings.Trim(out, "\n")
		}
	}
	return wordwrap.String(src, width)
}

func (m *Markdown) renderer(width int) (*glamour.TermRenderer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.renderers[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	m.renderers[width] = r
	return r, nil
}
