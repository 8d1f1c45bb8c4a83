// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive
// commands for shopdesk.
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	switch cmd {
//	case cli.CmdLogin:
//	    err = cli.HandleLogin(ctx, env, args, os.Stdout, prompter)
//	// ... other commands
//	}
//
// # Commands
//
//   - (none): start the terminal UI
//   - login, logout: manage the stored session
//   - status: show the stored session and idle state (--json)
//   - config: show, path, init, get and set configuration values
//   - version, help
//
// Every command accepts --config, --api, --ephemeral and --verbose.
package cli
