// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"time"

	"github.com/jeranaias/shopdesk-tui/internal/idle"
	"github.com/jeranaias/shopdesk-tui/internal/model"
	"github.com/jeranaias/shopdesk-tui/internal/navigation"
)

// IdleSettingsMsg replaces the idle configuration. It takes effect on the
// next protected-screen entry; a running watch keeps its settings.
type IdleSettingsMsg struct {
	Config idle.Config
}

type transitionMsg struct{ t navigation.Transition }

type subscriptionClosedMsg struct{ err error }

type idleWarningMsg struct{ remaining time.Duration }

type idleTimeoutMsg struct{ err error }

type resumeMsg struct {
	user model.User
	err  error
}

type clockTickMsg time.Time
