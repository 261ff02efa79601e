// Command xen is the CLI entry point for the xen toolchain.
//
// Usage:
//
//	xen tokens <file>            Print tokens
//	xen tokens <file> --json     Print tokens as JSON
//	xen parse  <file>            Print AST as JSON
//	xen run    <file>            Run a source file
//	xen repl                     Start interactive REPL
//
// Global flags: --config <path>, --verbose.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"xen-lang/internal/ast"
	"xen-lang/internal/config"
	"xen-lang/internal/diag"
	"xen-lang/internal/lexer"
	"xen-lang/internal/parser"
	"xen-lang/internal/runtime"
	"xen-lang/internal/token"
)

// cli holds the parsed command line.
type cli struct {
	command    string
	args       []string
	configPath string
	verbose    bool
	jsonMode   bool
}

func parseArgs(argv []string) (*cli, error) {
	c := &cli{}
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch arg {
		case "--config":
			if i+1 >= len(argv) {
				return nil, fmt.Errorf("--config requires a path")
			}
			i++
			c.configPath = argv[i]
		case "--verbose":
			c.verbose = true
		case "--json":
			c.jsonMode = true
		default:
			if c.command == "" {
				c.command = arg
			} else {
				c.args = append(c.args, arg)
			}
		}
	}
	if c.command == "" {
		return nil, fmt.Errorf("missing command")
	}
	return c, nil
}

func main() {
	c, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel(c.verbose)}))
	if cfg.Path != "" {
		logger.Debug("config loaded", slog.String("path", cfg.Path))
	}

	switch c.command {
	case "tokens":
		filename := requireFile(c)
		cmdTokens(readFile(filename), filename, c.jsonMode)
	case "parse":
		filename := requireFile(c)
		cmdParse(readFile(filename), filename)
	case "run":
		filename := requireFile(c)
		cmdRun(readFile(filename), filename, logger)
	case "repl":
		cmdRepl(cfg, logger)
	default:
		fmt.Fprintf(os.Stderr, "error: unknown command '%s'\n", c.command)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  xen tokens <file> [--json]   Tokenize and print tokens")
	fmt.Fprintln(os.Stderr, "  xen parse  <file>            Parse and print AST (JSON)")
	fmt.Fprintln(os.Stderr, "  xen run    <file>            Run a source file")
	fmt.Fprintln(os.Stderr, "  xen repl                     Start interactive REPL")
	fmt.Fprintln(os.Stderr, "Flags:")
	fmt.Fprintln(os.Stderr, "  --config <path>              Configuration file (default $XEN_CONFIG or ~/.xen.yml)")
	fmt.Fprintln(os.Stderr, "  --verbose                    Debug logging to stderr")
}

func requireFile(c *cli) string {
	if len(c.args) < 1 {
		fmt.Fprintln(os.Stderr, "error: missing file argument")
		os.Exit(1)
	}
	return c.args[0]
}

func readFile(filename string) string {
	source, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot read file %s: %v\n", filename, err)
		os.Exit(1)
	}
	return string(source)
}

// ---- tokens command ----

func cmdTokens(source, filename string, jsonMode bool) {
	tokens, diags := lexer.New(source, filename).Tokenize()

	if jsonMode {
		printTokensJSON(os.Stdout, tokens, diags)
	} else {
		printTokensText(os.Stdout, tokens)
		printDiagsText(os.Stderr, diags)
	}

	if diag.List(diags).HasErrors() {
		os.Exit(1)
	}
}

// ---- parse command ----

func cmdParse(source, filename string) {
	tokens, lexDiags := lexer.New(source, filename).Tokenize()
	prog, parseDiags := parser.New(tokens).ParseProgram()

	allDiags := append(lexDiags, parseDiags...)

	output := map[string]any{
		"ast":         ast.NodeToMap(prog),
		"diagnostics": diagsToSlice(allDiags),
	}
	printJSON(os.Stdout, output)

	if diag.List(allDiags).HasErrors() {
		os.Exit(1)
	}
}

// ---- run command ----

func cmdRun(source, filename string, logger *slog.Logger) {
	prog, diags := compile(source, filename, logger)
	printDiagsText(os.Stderr, diags)
	if diag.List(diags).HasErrors() {
		os.Exit(1)
	}

	start := time.Now()
	interp := runtime.NewInterpreter(os.Stdout, runtime.WithLogger(logger))
	err := interp.Run(prog)
	logger.Debug("evaluate",
		slog.Int("bindings", interp.Env().Len()),
		slog.Duration("elapsed", time.Since(start)))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// compile tokenizes and parses source. Parsing is skipped when the lexer
// already reported problems. The program is nil when any diagnostic is an
// error; warnings come back alongside a usable program.
func compile(source, filename string, logger *slog.Logger) (*ast.Program, []diag.Diagnostic) {
	start := time.Now()
	tokens, lexDiags := lexer.New(source, filename).Tokenize()
	logger.Debug("tokenize",
		slog.String("file", filename),
		slog.Int("tokens", len(tokens)),
		slog.Int("diagnostics", len(lexDiags)),
		slog.Duration("elapsed", time.Since(start)))
	if len(lexDiags) > 0 {
		return nil, lexDiags
	}

	start = time.Now()
	prog, parseDiags := parser.New(tokens).ParseProgram()
	logger.Debug("parse",
		slog.Int("statements", len(prog.Stmts)),
		slog.Int("diagnostics", len(parseDiags)),
		slog.Duration("elapsed", time.Since(start)))
	if diag.List(parseDiags).HasErrors() {
		return nil, parseDiags
	}
	return prog, parseDiags
}

// tokenText renders a token lexeme for the text listing.
func tokenText(tok token.Token) string {
	if tok.Kind == token.NEWLINE {
		return `\n`
	}
	return tok.Lexeme
}
