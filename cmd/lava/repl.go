package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"lava-lang/internal/config"
	"lava-lang/internal/runtime"
	"lava-lang/internal/session"
)

// ---- ANSI colors ----

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// palette returns color codes, or empty strings when color is off.
type palette struct{ enabled bool }

func (p palette) wrap(color, s string) string {
	if !p.enabled {
		return s
	}
	return color + s + colorReset
}

// colorWriter colors each line written through it.
type colorWriter struct {
	w     io.Writer
	color string
}

func (c colorWriter) Write(p []byte) (int, error) {
	text := strings.TrimSuffix(string(p), "\n")
	if _, err := fmt.Fprintf(c.w, "%s%s%s\n", c.color, text, colorReset); err != nil {
		return 0, err
	}
	return len(p), nil
}

// lineBuffer accumulates REPL lines until braces balance.
type lineBuffer struct {
	sb         strings.Builder
	braceDepth int
}

// add appends line and reports whether a complete input is ready.
func (b *lineBuffer) add(line string) bool {
	b.braceDepth += strings.Count(line, "{") - strings.Count(line, "}")
	b.sb.WriteString(line)
	b.sb.WriteString("\n")
	if b.braceDepth > 0 {
		return false
	}
	b.braceDepth = 0
	return true
}

func (b *lineBuffer) pending() bool { return b.braceDepth > 0 }

// take returns the accumulated source and clears the buffer.
func (b *lineBuffer) take() string {
	source := b.sb.String()
	b.reset()
	return source
}

func (b *lineBuffer) reset() {
	b.sb.Reset()
	b.braceDepth = 0
}

// readlineInput serves gimme from the REPL's own line editor so the prompt
// and history behave like the rest of the session.
type readlineInput struct {
	rl *readline.Instance
}

func (in *readlineInput) ReadLine() (string, error) {
	return in.ReadLineWithPrompt("")
}

// ReadLineWithPrompt shows prompt in place of the REPL prompt. The REPL loop
// sets its own prompt again before the next read.
func (in *readlineInput) ReadLineWithPrompt(prompt string) (string, error) {
	in.rl.SetPrompt(prompt)
	line, err := in.rl.Readline()
	switch {
	case err == nil:
		return line, nil
	case errors.Is(err, io.EOF):
		return "", nil
	case errors.Is(err, readline.ErrInterrupt):
		return "", &runtime.RuntimeError{Kind: runtime.ErrInput, Message: "input interrupted"}
	default:
		return "", err
	}
}

// ---- repl command ----

func cmdRepl(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	var flags runFlags
	flags.register(fs, false)
	if _, err := parseArgs(fs, args); err != nil {
		return err
	}
	cfg, err := loadConfig(&flags)
	if err != nil {
		return err
	}
	return repl(cfg)
}

func repl(cfg *config.Config) error {
	colors := palette{enabled: cfg.Color}
	prompt := colors.wrap(colorGreen, cfg.Prompt)
	continuation := colors.wrap(colorGray, cfg.ContinuationPrompt)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       cfg.HistoryFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("readline init failed: %w", err)
	}
	defer rl.Close()

	// Welcome banner
	fmt.Fprintf(rl.Stdout(), "%s %s\n\n",
		colors.wrap(colorBold+colorCyan, "LAVA REPL"),
		colors.wrap(colorGray, "(type 'exit', 'skibidi' or Ctrl+D to quit)"))

	var reports io.Writer = rl.Stderr()
	if colors.enabled {
		reports = colorWriter{w: rl.Stderr(), color: colorRed}
	}
	sess := session.New(rl.Stdout(),
		session.WithReportWriter(reports),
		session.WithRuntime(
			runtime.WithInput(&readlineInput{rl: rl}),
			runtime.WithLogger(newLogger(cfg, os.Stderr)),
			runtime.WithCallScope(cfg.Scope()),
		),
	)

	var buf lineBuffer
	for {
		if buf.pending() {
			rl.SetPrompt(continuation)
		} else {
			rl.SetPrompt(prompt)
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if buf.pending() {
					buf.reset()
					continue
				}
				fmt.Fprintf(rl.Stdout(), "\n%s\n", colors.wrap(colorGray, "(use 'exit' or Ctrl+D to quit)"))
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(rl.Stdout())
				return nil
			}
			return err
		}

		if !buf.pending() && strings.TrimSpace(line) == "exit" {
			return nil
		}
		if !buf.add(line) {
			continue
		}

		source := buf.take()
		if strings.TrimSpace(source) == "" {
			continue
		}

		res := sess.Eval(source, "<repl>")
		if err := dumpResult(rl.Stderr(), cfg, res); err != nil {
			fmt.Fprintln(reports, err)
		}
		if res.Halted {
			fmt.Fprintln(rl.Stdout(), colors.wrap(colorYellow, "skibidi, bye"))
			return nil
		}
	}
}
