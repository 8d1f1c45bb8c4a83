// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation for shopdesk.
//
// Command: config [subcommand]
//
// Subcommands:
//
//	show (default)      Display the effective configuration
//	path                Show the configuration file path
//	init                Write a default configuration file
//	get <key>           Print one value
//	set <key> <value>   Change one value and save
//
// Examples:
//
//	shopdesk config set session.timeout_secs 600
//	shopdesk config set api.base_url https://shop.example.com
//	shopdesk config get session.check_interval_secs
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/jeranaias/shopdesk-tui/internal/config"
)

// HandleConfig dispatches the config subcommands. None of them open the
// session store.
func HandleConfig(args Args, out io.Writer) error {
	switch args.Subcommand {
	case "show", "list":
		return handleConfigShow(args, out)
	case "path":
		return handleConfigPath(args, out)
	case "init":
		return handleConfigInit(args, out)
	case "get":
		return handleConfigGet(args, out)
	case "set":
		return handleConfigSet(args, out)
	default:
		return NewValidationErrorWithExample("config subcommand", args.Subcommand,
			"must be show, path, init, get or set", "shopdesk config show")
	}
}

// targetPath is the file init and set write to.
func targetPath(args Args) (string, error) {
	if args.ConfigPath != "" {
		return args.ConfigPath, nil
	}
	_, path, err := config.Load("")
	if err == nil && path != "" {
		return path, nil
	}
	return config.ConfigPathTOML()
}

func handleConfigShow(args Args, out io.Writer) error {
	cfg, path, err := config.Load(args.ConfigPath)
	if err != nil {
		return err
	}
	if args.JSON {
		values := make(map[string]any, len(config.Keys()))
		for _, key := range config.Keys() {
			v, err := cfg.Get(key)
			if err != nil {
				return err
			}
			values[key] = v
		}
		return NewJSONResponse("config show", ConfigData{Path: path, Values: values}).Write(out)
	}

	source := path
	if source == "" {
		source = "(built-in defaults)"
	}
	fmt.Fprintln(out, RenderConditional(TitleStyle, "shopdesk configuration"))
	fmt.Fprintln(out, RenderConditional(DimStyle, "# "+source))
	fmt.Fprint(out, cfg.String())
	return nil
}

func handleConfigPath(args Args, out io.Writer) error {
	path, err := targetPath(args)
	if err != nil {
		return err
	}
	_, statErr := os.Stat(path)
	exists := statErr == nil
	if args.JSON {
		return NewJSONResponse("config path", map[string]any{"path": path, "exists": exists}).Write(out)
	}
	fmt.Fprintln(out, path)
	if !exists {
		fmt.Fprintln(out, RenderConditional(DimStyle, "(not created yet, run: shopdesk config init)"))
	}
	return nil
}

func handleConfigInit(args Args, out io.Writer) error {
	path, err := targetPath(args)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return NewCommandError("config", "init", "file already exists: "+path, fs.ErrExist)
	}
	if err := config.Save(config.Default(), path); err != nil {
		return NewCommandError("config", "init", "could not write file", err)
	}
	fmt.Fprintf(out, "%s wrote %s\n", RenderConditional(SuccessStyle, "[OK]"), path)
	return nil
}

func handleConfigGet(args Args, out io.Writer) error {
	if args.ConfigKey == "" {
		return ErrMissingArgument("key", "shopdesk config get session.timeout_secs")
	}
	cfg, _, err := config.Load(args.ConfigPath)
	if err != nil {
		return err
	}
	v, err := cfg.Get(args.ConfigKey)
	if err != nil {
		return unknownKey(args.ConfigKey, err)
	}
	if args.JSON {
		return NewJSONResponse("config get", map[string]any{args.ConfigKey: v}).Write(out)
	}
	fmt.Fprintln(out, v)
	return nil
}

// handleConfigSet edits the file itself, so environment overrides are not
// written back.
func handleConfigSet(args Args, out io.Writer) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return ErrMissingArgument("key and value", "shopdesk config set session.timeout_secs 600")
	}
	path, err := targetPath(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		load := config.LoadTOML
		if strings.HasSuffix(path, ".json") {
			load = config.LoadJSON
		}
		if err := load(cfg, path); err != nil {
			return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return unknownKey(args.ConfigKey, err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	if err := config.Save(cfg, path); err != nil {
		return NewCommandError("config", "set", "could not write file", err)
	}
	if args.JSON {
		return NewJSONResponse("config set", map[string]any{"key": args.ConfigKey, "value": args.ConfigVal, "path": path}).Write(out)
	}
	fmt.Fprintf(out, "%s %s = %s\n", RenderConditional(SuccessStyle, "[OK]"), args.ConfigKey, args.ConfigVal)
	return nil
}

func unknownKey(key string, err error) error {
	return &ValidationError{
		Field:   "key",
		Value:   key,
		Reason:  err.Error(),
		Example: "valid keys: " + strings.Join(config.Keys(), ", "),
	}
}
