// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and the version and help commands for shopdesk.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdLogin:
		return "login"
	case CmdLogout:
		return "logout"
	case CmdStatus:
		return "status"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	}
	return "unknown"
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string
	APIURL     string
	Ephemeral  bool
	Verbose    bool
	JSON       bool

	// login
	Email    string
	Remember bool

	// config
	Subcommand string
	ConfigKey  string
	ConfigVal  string

	// Raw args (remaining after flag parsing)
	Raw []string
}

// boolFlags never take a value.
var boolFlags = []string{"ephemeral", "verbose", "v", "json", "remember", "help", "h", "version"}

const usageText = `shopdesk - terminal admin console for a shop backend

Usage:
  shopdesk                          Start the terminal UI (default)
  shopdesk login [--email E] [--remember]
                                    Sign in and store the session
  shopdesk logout                   End the stored session
  shopdesk status [--json]          Show session and idle state
  shopdesk config show              Print the effective configuration
  shopdesk config path              Print the configuration file path
  shopdesk config init              Write a default configuration file
  shopdesk config get <key>         Print one value (e.g. session.timeout_secs)
  shopdesk config set <key> <value> Change one value and save
  shopdesk version [--json]         Show version information
  shopdesk help                     Show this help

Global flags:
  --config PATH    Configuration file (default ~/.shopdesk/config.toml)
  --api URL        Backend base URL (overrides api.base_url)
  --ephemeral      Keep the session in memory only
  --verbose, -v    Debug logging (stderr for commands, log file for the UI)

Environment:
  SHOPDESK_API_URL, SHOPDESK_SESSION_TIMEOUT, SHOPDESK_CHECK_INTERVAL,
  SHOPDESK_DATA_DIR override the matching configuration values.
`

// Parse parses argv (without the program name).
func Parse(argv []string) (Command, Args, error) {
	p := NewArgParser(argv, boolFlags...)
	args := Args{
		ConfigPath: p.Flag("config"),
		APIURL:     p.Flag("api"),
		Ephemeral:  p.BoolFlag("ephemeral"),
		Verbose:    p.BoolFlag("verbose") || p.BoolFlag("v"),
		JSON:       p.BoolFlag("json"),
		Email:      p.Flag("email"),
		Remember:   p.BoolFlag("remember"),
		Raw:        p.PositionalFrom(1),
	}
	if p.HasFlag("config") && args.ConfigPath == "" {
		return CmdHelp, args, NewValidationErrorWithExample("--config", "", "requires a path", "shopdesk --config ~/.shopdesk/config.toml")
	}
	if p.HasFlag("api") && args.APIURL == "" {
		return CmdHelp, args, NewValidationErrorWithExample("--api", "", "requires a URL", "shopdesk --api http://localhost:8080")
	}
	if p.BoolFlag("help") || p.BoolFlag("h") {
		return CmdHelp, args, nil
	}
	if p.BoolFlag("version") {
		return CmdVersion, args, nil
	}

	switch cmd := strings.ToLower(p.Subcommand()); cmd {
	case "", "tui":
		return CmdTUI, args, nil
	case "login":
		if args.Email == "" {
			args.Email = p.Positional(1)
		}
		return CmdLogin, args, nil
	case "logout":
		return CmdLogout, args, nil
	case "status", "s":
		return CmdStatus, args, nil
	case "config", "cfg":
		args.Subcommand = strings.ToLower(p.Positional(1))
		args.ConfigKey = p.Positional(2)
		args.ConfigVal = JoinPositionalArgs(p, 3)
		if args.Subcommand == "" {
			args.Subcommand = "show"
		}
		return CmdConfig, args, nil
	case "version":
		return CmdVersion, args, nil
	case "help":
		return CmdHelp, args, nil
	default:
		return CmdHelp, args, NewValidationErrorWithExample("command", cmd, "unknown command", "shopdesk help")
	}
}

// PrintUsage writes the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// VersionData is the JSON shape of the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// HandleVersion prints version information.
func HandleVersion(w io.Writer, args Args) error {
	data := VersionData{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
	if args.JSON {
		return NewJSONResponse("version", data).Write(w)
	}
	fmt.Fprintf(w, "shopdesk %s (%s, built %s, %s)\n", data.Version, data.GitCommit, data.BuildDate, data.GoVersion)
	return nil
}
