// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the shopdesk TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. The theme can be forced with ui.theme = "dark" or "light".

  - Purple - screen titles and selections
  - Cyan - brand, signed-in user, focused fields
  - Emerald / Amber / Rose - stock levels and status
  - StatusIndicators - ASCII shapes that accompany every status color
*/
package styles
