// shopdesk - terminal admin console for a shop backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/shopdesk-tui/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args, err := cli.Parse(os.Args[1:])
	if err == nil {
		err = run(cmd, args)
	}
	if err != nil {
		cli.DisplayError(os.Stderr, err, args.JSON)
		if cmd == cli.CmdHelp {
			fmt.Fprintln(os.Stderr)
			cli.PrintUsage(os.Stderr)
		}
		os.Exit(cli.GetExitCode(err))
	}
}

func run(cmd cli.Command, args cli.Args) error {
	switch cmd {
	case cli.CmdHelp:
		cli.PrintUsage(os.Stdout)
		return nil
	case cli.CmdVersion:
		return cli.HandleVersion(os.Stdout, args)
	case cli.CmdConfig:
		return cli.HandleConfig(args, os.Stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	target := cli.LogStderr
	if cmd == cli.CmdTUI {
		target = cli.LogFile
	}
	env, err := cli.OpenEnv(ctx, args, target, os.Stderr)
	if err != nil {
		return err
	}
	defer env.Close()

	switch cmd {
	case cli.CmdTUI:
		return cli.HandleTUI(ctx, env)
	case cli.CmdLogin:
		var prompter cli.Prompter
		if cli.IsTTY() {
			p, closeFn := cli.TerminalPrompter()
			defer closeFn()
			prompter = p
		}
		return cli.HandleLogin(ctx, env, args, os.Stdout, prompter)
	case cli.CmdLogout:
		return cli.HandleLogout(ctx, env, args, os.Stdout)
	case cli.CmdStatus:
		return cli.HandleStatus(ctx, env, args, os.Stdout)
	}
	return fmt.Errorf("unhandled command %s", cmd)
}
