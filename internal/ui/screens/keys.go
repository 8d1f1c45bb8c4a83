// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package screens

import "github.com/charmbracelet/bubbles/key"

var (
	keyUp      = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	keyDown    = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	keyOpen    = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open"))
	keyBack    = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))
	keyAdd     = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	keyEdit    = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	keyDelete  = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	keyRefresh = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
	keyLogout  = key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "log out"))
	keyCopy    = key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy sku"))
	keyFilter  = key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "category"))

	keyNext   = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next"))
	keyPrev   = key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-tab", "prev"))
	keySubmit = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit"))
	keySave   = key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save"))
	keyToggle = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	keyCancel = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
)
