// Command lava is the CLI entry point for the LAVA toolchain.
//
// Usage:
//
//	lava tokens <file> [--json]     Print tokens
//	lava parse  <file>              Print AST as JSON
//	lava run    <file> [flags]      Run a source file
//	lava <file>.lava                Same as run
//	lava repl   [flags]             Start interactive REPL
//	lava config [--config path]     Print the effective configuration
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"lava-lang/internal/ast"
	"lava-lang/internal/config"
	"lava-lang/internal/lexer"
	"lava-lang/internal/parser"
	"lava-lang/internal/runtime"
	"lava-lang/internal/session"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	command, args := os.Args[1], os.Args[2:]

	var err error
	switch command {
	case "tokens":
		err = cmdTokens(args)
	case "parse":
		err = cmdParse(args)
	case "run":
		err = cmdRun(args)
	case "repl":
		err = cmdRepl(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		if strings.HasSuffix(command, ".lava") {
			err = cmdRun(os.Args[1:])
			break
		}
		fmt.Fprintf(os.Stderr, "error: unknown command '%s'\n", command)
		usage()
		os.Exit(1)
	}

	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// errReported marks a failure whose details were already printed.
var errReported = errors.New("reported")

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  lava tokens <file> [--json]    Tokenize and print tokens")
	fmt.Fprintln(os.Stderr, "  lava parse  <file>             Parse and print AST (JSON)")
	fmt.Fprintln(os.Stderr, "  lava run    <file> [flags]     Run a source file")
	fmt.Fprintln(os.Stderr, "  lava repl   [flags]            Start interactive REPL")
	fmt.Fprintln(os.Stderr, "  lava config [--config path]    Print the effective configuration")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Run and repl flags:")
	fmt.Fprintln(os.Stderr, "  --config path   settings file (default $LAVA_CONFIG or ~/.lava.yaml)")
	fmt.Fprintln(os.Stderr, "  --trace         log calls, halts and caught errors to stderr")
	fmt.Fprintln(os.Stderr, "  --scope name    function frame parent: global or dynamic")
	fmt.Fprintln(os.Stderr, "  --input line    queue a line for gimme (repeatable, run only)")
	fmt.Fprintln(os.Stderr, "  --tokens --ast  dump tokens or AST to stderr (run only)")
}

func readFile(filename string) (string, error) {
	source, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("cannot read file %s: %w", filename, err)
	}
	return string(source), nil
}

// parseArgs parses flags that may appear before or after positional
// arguments and returns the positionals.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func fileArg(command string, positional []string) (string, error) {
	if len(positional) == 0 {
		return "", fmt.Errorf("%s: missing file argument", command)
	}
	if len(positional) > 1 {
		return "", fmt.Errorf("%s: unexpected arguments %v", command, positional[1:])
	}
	return positional[0], nil
}

// ---- tokens command ----

func cmdTokens(args []string) error {
	fs := flag.NewFlagSet("tokens", flag.ContinueOnError)
	jsonMode := fs.Bool("json", false, "print tokens as JSON")
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	filename, err := fileArg("tokens", positional)
	if err != nil {
		return err
	}
	source, err := readFile(filename)
	if err != nil {
		return err
	}

	tokens, diags := lexer.New(source, filename).Tokenize()
	if *jsonMode {
		if err := printTokensJSON(os.Stdout, tokens, diags); err != nil {
			return err
		}
	} else {
		printTokensText(os.Stdout, tokens)
		printDiagsText(os.Stderr, diags)
	}

	if len(diags) > 0 {
		return errReported
	}
	return nil
}

// ---- parse command ----

func cmdParse(args []string) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	filename, err := fileArg("parse", positional)
	if err != nil {
		return err
	}
	source, err := readFile(filename)
	if err != nil {
		return err
	}

	tokens, lexDiags := lexer.New(source, filename).Tokenize()
	file, parseDiags := parser.Parse(tokens)
	allDiags := append(lexDiags, parseDiags...)

	output := map[string]interface{}{
		"ast":         ast.NodeToMap(file),
		"diagnostics": diagsToSlice(allDiags),
	}
	if err := printJSON(os.Stdout, output); err != nil {
		return err
	}

	if len(allDiags) > 0 {
		return errReported
	}
	return nil
}

// ---- run command ----

type runFlags struct {
	configPath string
	trace      bool
	scope      string
	showTokens bool
	showAST    bool
	inputs     []string
}

func (f *runFlags) register(fs *flag.FlagSet, withRunOnly bool) {
	fs.StringVar(&f.configPath, "config", "", "path to a YAML settings file")
	fs.BoolVar(&f.trace, "trace", false, "log interpreter events to stderr")
	fs.StringVar(&f.scope, "scope", "", "function frame parent: global or dynamic")
	if !withRunOnly {
		return
	}
	fs.BoolVar(&f.showTokens, "tokens", false, "dump tokens to stderr")
	fs.BoolVar(&f.showAST, "ast", false, "dump the AST as JSON to stderr")
	fs.Func("input", "queue a line for gimme (repeatable)", func(s string) error {
		f.inputs = append(f.inputs, s)
		return nil
	})
}

// apply merges command-line flags over the loaded config. Flags only ever
// switch features on.
func (f *runFlags) apply(cfg *config.Config) error {
	if f.trace {
		cfg.Trace = true
	}
	if f.showTokens {
		cfg.ShowTokens = true
	}
	if f.showAST {
		cfg.ShowAST = true
	}
	if f.scope != "" {
		if _, err := runtime.ParseCallScope(f.scope); err != nil {
			return err
		}
		cfg.CallScope = f.scope
	}
	if len(f.inputs) > 0 {
		cfg.Inputs = f.inputs
	}
	return nil
}

func loadConfig(f *runFlags) (*config.Config, error) {
	cfg, err := config.Resolve(f.configPath)
	if err != nil {
		return nil, err
	}
	if err := f.apply(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	if !cfg.Trace {
		return nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// dumpResult writes the tokens and AST of an evaluated input when the
// show_tokens or show_ast settings ask for them.
func dumpResult(w io.Writer, cfg *config.Config, res session.Result) error {
	if cfg.ShowTokens {
		printTokensText(w, res.Tokens)
	}
	if cfg.ShowAST && res.File != nil {
		return printJSON(w, ast.NodeToMap(res.File))
	}
	return nil
}

func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	var flags runFlags
	flags.register(fs, true)
	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	filename, err := fileArg("run", positional)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(&flags)
	if err != nil {
		return err
	}
	source, err := readFile(filename)
	if err != nil {
		return err
	}

	var input runtime.InputSource = runtime.NewReaderInput(os.Stdin)
	if len(cfg.Inputs) > 0 {
		input = runtime.NewQueueInput(cfg.Inputs...)
	}

	sess := session.New(os.Stdout, session.WithRuntime(
		runtime.WithInput(input),
		runtime.WithLogger(newLogger(cfg, os.Stderr)),
		runtime.WithCallScope(cfg.Scope()),
	))
	res := sess.Eval(source, filename)
	if err := dumpResult(os.Stderr, cfg, res); err != nil {
		return err
	}

	if !res.OK() {
		return errReported
	}
	return nil
}

// ---- config command ----

func cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML settings file")
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	cfg, err := config.Resolve(*configPath)
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		fmt.Fprintf(os.Stdout, "# loaded from %s\n", cfg.Path)
	} else {
		fmt.Fprintln(os.Stdout, "# built-in defaults")
	}
	return cfg.Encode(os.Stdout)
}
