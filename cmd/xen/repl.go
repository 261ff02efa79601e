package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"xen-lang/internal/config"
	"xen-lang/internal/diag"
	"xen-lang/internal/lexer"
	"xen-lang/internal/parser"
	"xen-lang/internal/runtime"
)

// ---- ANSI colors ----

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorGray  = "\033[90m"
	colorBold  = "\033[1m"
)

// session is the state of one REPL: the interpreter, where its output goes
// and the partially entered multi-line chunk.
type session struct {
	out, errOut io.Writer
	color       bool
	echo        bool
	log         *slog.Logger

	interp      *runtime.Interpreter
	accumulated strings.Builder
	braceDepth  int
}

func newSession(cfg *config.Config, out, errOut io.Writer, logger *slog.Logger) *session {
	s := &session{
		out:    out,
		errOut: errOut,
		color:  cfg.REPL.Color,
		echo:   cfg.REPL.EchoAssignments,
		log:    logger,
	}
	s.reset()
	return s
}

// reset replaces the interpreter with a fresh one, dropping every binding.
func (s *session) reset() {
	s.interp = runtime.NewInterpreter(s.out,
		runtime.WithLogger(s.log),
		runtime.WithAssignHook(s.echoAssignment))
	s.accumulated.Reset()
	s.braceDepth = 0
}

func (s *session) echoAssignment(name string, prev runtime.Value, existed bool, value runtime.Value) {
	if !s.echo || !existed {
		return
	}
	fmt.Fprintf(s.out, "%s: %s -> %s\n", name, prev, value)
}

func (s *session) paint(color, text string) string {
	if !s.color {
		return text
	}
	return color + text + colorReset
}

func (s *session) pending() bool {
	return s.braceDepth > 0
}

// feed consumes one input line. It returns false when the session should end.
func (s *session) feed(line string) bool {
	if !s.pending() {
		switch strings.TrimSpace(line) {
		case "exit":
			return false
		case ":env":
			s.printEnv()
			return true
		case ":reset":
			s.reset()
			fmt.Fprintln(s.out, s.paint(colorGray, "environment cleared"))
			return true
		}
	}

	// Count braces for multi-line input
	s.braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
	s.accumulated.WriteString(line)
	s.accumulated.WriteString("\n")
	if s.braceDepth > 0 {
		return true
	}
	s.braceDepth = 0

	source := s.accumulated.String()
	s.accumulated.Reset()
	if strings.TrimSpace(source) != "" {
		s.eval(source)
	}
	return true
}

// cancel drops a partially entered chunk.
func (s *session) cancel() {
	s.accumulated.Reset()
	s.braceDepth = 0
}

func (s *session) eval(source string) {
	tokens, lexDiags := lexer.New(source, "<repl>").Tokenize()
	if len(lexDiags) > 0 {
		s.printDiags(lexDiags)
		return
	}

	prog, parseDiags := parser.New(tokens).ParseProgram()
	s.printDiags(parseDiags)
	if diag.List(parseDiags).HasErrors() {
		return
	}

	if err := s.interp.Run(prog); err != nil {
		fmt.Fprintln(s.errOut, s.paint(colorRed, "error: "+err.Error()))
	}
}

func (s *session) printDiags(diags []diag.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(s.errOut, s.paint(colorRed, d.String()))
	}
}

func (s *session) printEnv() {
	env := s.interp.Env()
	if env.Len() == 0 {
		fmt.Fprintln(s.out, s.paint(colorGray, "(no bindings)"))
		return
	}
	for _, name := range env.Names() {
		val, _ := env.Get(name)
		fmt.Fprintf(s.out, "%s = %s %s\n", name, val, s.paint(colorGray, "("+val.Kind().String()+")"))
	}
}

// ---- repl command ----

func cmdRepl(cfg *config.Config, logger *slog.Logger) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cfg.REPL.Prompt,
		HistoryFile:       cfg.REPL.HistoryFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline init failed: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	s := newSession(cfg, rl.Stdout(), rl.Stderr(), logger)
	logger.Debug("repl started", slog.String("history", cfg.REPL.HistoryFile))

	fmt.Fprintf(rl.Stdout(), "%s %s\n\n",
		s.paint(colorBold+colorCyan, "xen REPL"),
		s.paint(colorGray, "(type 'exit' or Ctrl+D to quit, ':env' to list variables, ':reset' to clear them)"))

	for {
		if s.pending() {
			rl.SetPrompt(s.paint(colorGray, "...   "))
		} else {
			rl.SetPrompt(s.paint(colorGreen, cfg.REPL.Prompt))
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if s.pending() {
					s.cancel()
					continue
				}
				fmt.Fprintf(rl.Stdout(), "\n%s\n", s.paint(colorGray, "(use 'exit' or Ctrl+D to quit)"))
				continue
			}
			// EOF (Ctrl+D) or any other error ends the session
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(rl.Stdout())
			}
			break
		}

		if !s.feed(line) {
			break
		}
	}
}
