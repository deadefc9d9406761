package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/app"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/config"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/logging"
	"github.com/Ponta-English-Teacher/domain-glossary-online/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"lookup": true, "add": true, "list": true, "edit": true,
	"undo": true, "redo": true, "status": true,
	"export": true, "sync": true, "clear": true,
	"serve": true, "shell": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isMCPMode reports an explicit request for the MCP server.
func isMCPMode() bool {
	return len(os.Args) >= 2 && os.Args[1] == "mcp"
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
    __ _  ___  ___ ___  __ _ _ __ _   _
   / _' |/ _ \/ __/ __|/ _' | '__| | | |
  | (_| | (_) \__ \__ \ (_| | |  | |_| |
   \__, |\___/|___/___/\__,_|_|   \__, |
   |___/                          |___/

  Look up terms, keep a personal glossary

  Usage: glossary <command> [options]
         glossary shell
         glossary --help

  MCP server mode requires piped input (or: glossary mcp).`)
}

// baseDirectory returns ~/.glossary.
func baseDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".glossary"), nil
}

func main() {
	os.Exit(run())
}

func run() int {
	// No args + interactive terminal → show banner and exit
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return 0
	}

	// Help and version need neither config nor database.
	if isHelpOrVersion() {
		if err := newCLIApp(nil).Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if !isCLIMode() && !isMCPMode() && len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'glossary --help' for usage.\n")
		return 1
	}

	baseDir, err := baseDirectory()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		return 1
	}

	// stdout belongs to command output and the MCP transport.
	log := logging.New(cfg.Log, os.Stderr, logging.NewOpID())

	ctx := context.Background()
	a, err := app.Open(ctx, cfg, baseDir, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close failed", "error", err)
		}
	}()

	if isCLIMode() {
		if err := newCLIApp(a).Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	// MCP server mode (default)
	if err := mcp.Run(a, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
