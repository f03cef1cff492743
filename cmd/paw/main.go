package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"paw/interpreter-go/pkg/ast"
	"paw/interpreter-go/pkg/diag"
	"paw/interpreter-go/pkg/driver"
	"paw/interpreter-go/pkg/interpreter"
	"paw/interpreter-go/pkg/typechecker"
)

const cliToolVersion = "paw-cli 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runScript(args[1:])
	case "check":
		return checkScript(args[1:])
	case "deps":
		return runDeps(args[1:])
	default:
		return runScript(args)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: paw <command> [arguments]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  run [script]    type-check and execute a script (or the manifest entry)")
	fmt.Fprintln(os.Stderr, "  check [script]  type-check without executing")
	fmt.Fprintln(os.Stderr, "  deps install    fetch the manifest's git dependencies")
	fmt.Fprintln(os.Stderr, "  version         print the CLI version")
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if env := strings.TrimSpace(os.Getenv("PAW_LOG")); env != "" {
		if parsed, err := zerolog.ParseLevel(env); err == nil {
			level = parsed
		}
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func runScript(args []string) int {
	stmts, file, loader, opts, code := prepare(args)
	if code != 0 {
		return code
	}
	opts.File = file
	opts.BaseDir = filepath.Dir(file)
	opts.Loader = loader
	if term.IsTerminal(int(os.Stdin.Fd())) {
		opts.ReadLine = linerReadLine()
	}
	if err := interpreter.Run(stmts, opts); err != nil {
		reportError(err)
		return 1
	}
	return 0
}

func checkScript(args []string) int {
	stmts, file, _, _, code := prepare(args)
	if code != 0 {
		return code
	}
	checker := typechecker.New()
	checker.SetFile(file)
	if err := checker.CheckProgram(stmts); err != nil {
		reportError(err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "%s: ok\n", file)
	return 0
}

// prepare resolves the target script, loads the surrounding manifest when one
// exists, decodes the script, and assembles interpreter options from the
// manifest's engine section.
func prepare(args []string) ([]ast.Statement, string, *driver.Loader, interpreter.Options, int) {
	var opts interpreter.Options
	log := newLogger()

	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return nil, "", nil, opts, 1
	}

	var manifest *driver.Manifest
	var file string
	if len(args) == 1 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "resolve %s: %v\n", args[0], err)
			return nil, "", nil, opts, 1
		}
		file = abs
		if path, err := driver.FindManifest(filepath.Dir(abs)); err == nil {
			manifest, err = driver.LoadManifest(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
				return nil, "", nil, opts, 1
			}
		} else if !errors.Is(err, driver.ErrManifestNotFound) {
			fmt.Fprintf(os.Stderr, "failed to locate manifest: %v\n", err)
			return nil, "", nil, opts, 1
		}
	} else {
		path, err := driver.FindManifest(".")
		if err != nil {
			fmt.Fprintf(os.Stderr, "paw run requires a script argument or a %s manifest: %v\n", driver.ManifestFileName, err)
			return nil, "", nil, opts, 1
		}
		manifest, err = driver.LoadManifest(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
			return nil, "", nil, opts, 1
		}
		file, err = manifest.EntryPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "manifest error: %v\n", err)
			return nil, "", nil, opts, 1
		}
	}

	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", file, err)
		return nil, "", nil, opts, 1
	}
	stmts, err := ast.DecodeProgram(data)
	if err != nil {
		reportError(err)
		return nil, "", nil, opts, 1
	}

	loader := driver.NewLoader(manifest, log)
	if manifest != nil {
		opts.MaxCallDepth = manifest.Engine.MaxCallDepth
		if len(manifest.Dependencies) > 0 {
			cacheDir, err := driver.DefaultCacheDir()
			if err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				return nil, "", nil, opts, 1
			}
			depPaths, err := driver.NewInstaller(manifest, cacheDir, log).SearchPaths()
			if err != nil {
				fmt.Fprintf(os.Stderr, "%v\n", err)
				return nil, "", nil, opts, 1
			}
			loader.SearchPaths = append(loader.SearchPaths, depPaths...)
		}
	}
	return stmts, file, loader, opts, 0
}

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "paw deps requires a subcommand (install)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "paw deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall()
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

func runDepsInstall() int {
	log := newLogger()
	path, err := driver.FindManifest(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate manifest: %v\n", err)
		return 1
	}
	manifest, err := driver.LoadManifest(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
		return 1
	}
	if len(manifest.Dependencies) == 0 {
		fmt.Fprintln(os.Stdout, "No dependencies to install.")
		return 0
	}
	cacheDir, err := driver.DefaultCacheDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	paths, err := driver.NewInstaller(manifest, cacheDir, log).Install()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	for _, p := range paths {
		fmt.Fprintf(os.Stdout, "  %s\n", p)
	}
	fmt.Fprintln(os.Stdout, "Dependencies installed.")
	return 0
}

// linerReadLine backs `ask` prompts with line editing when stdin is a
// terminal.
func linerReadLine() func(prompt string) (string, error) {
	return func(prompt string) (string, error) {
		state := liner.NewLiner()
		defer state.Close()
		state.SetCtrlCAborts(true)
		line, err := state.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", fmt.Errorf("input aborted")
		}
		return line, err
	}
}

func reportError(err error) {
	var d *diag.Error
	if errors.As(err, &d) {
		header := d.Kind.String()
		if d.Code != "" {
			header = fmt.Sprintf("%s [%s]", header, d.Code)
		}
		where := ""
		if d.Line > 0 {
			where = fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)
		} else if d.File != "" {
			where = d.File
		}
		pterm.Error.Printfln("%s: %s", header, d.Message)
		if where != "" {
			pterm.Println("  at " + where)
		}
		if d.Snippet != "" {
			pterm.Println("  " + d.Snippet)
		}
		if d.Hint != "" {
			pterm.Info.Printfln("hint: %s", d.Hint)
		}
		return
	}
	pterm.Error.Printfln("%v", err)
}
