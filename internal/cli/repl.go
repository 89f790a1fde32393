package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/thomasrohde/tammr/internal/config"
	"github.com/thomasrohde/tammr/pkg/evaluator"
	"github.com/thomasrohde/tammr/pkg/help"
	"github.com/thomasrohde/tammr/pkg/parser"
)

const (
	replFile           = "<repl>"
	continuationPrompt = ".. "
)

// errExit is returned by readInput when a line is exactly "exit". It ends the
// session from any prompt and drops an unfinished input.
var errExit = errors.New("exit")

// lineReader is the part of *liner.State the REPL uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// scanReader reads lines without editing support, for piped input.
type scanReader struct {
	sc *bufio.Scanner
}

func (r *scanReader) Prompt(string) (string, error) {
	if r.sc.Scan() {
		return r.sc.Text(), nil
	}
	if err := r.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (r *scanReader) AppendHistory(string) {}
func (r *scanReader) Close() error         { return nil }

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok || f != os.Stdin {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

func runREPL(cfg *config.Config, stdin io.Reader, stdout, stderr io.Writer) int {
	if !isTerminal(stdin) {
		return repl(&scanReader{sc: bufio.NewScanner(stdin)}, cfg, stdout, stderr)
	}

	fmt.Fprintf(stdout, "tammr %s. Type exit or press Ctrl-D to quit; tammr help for topics.\n", help.Version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if cfg.HistoryFile != "" {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(cfg.HistoryFile); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	return repl(ln, cfg, stdout, stderr)
}

// repl evaluates input from r in one session until exit or end of input.
func repl(r lineReader, cfg *config.Config, stdout, stderr io.Writer) int {
	session := newRuntime(cfg, stdout, stderr).NewSession()
	for {
		src, err := readInput(r, cfg.Prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, errExit) {
			return ExitOK
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintf(stderr, "error: %s\n", err)
				return ExitUsage
			}
			return ExitOK
		}

		if strings.TrimSpace(src) == "" {
			continue
		}
		r.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		val, err := session.Eval(src, replFile)
		if err != nil {
			// Runtime errors were printed by the reporter.
			if !isRuntimeError(err) {
				printError(stderr, err, cfg.Pretty)
			}
			continue
		}
		if val.Type() != evaluator.EmptyObj {
			fmt.Fprintln(stdout, val.Inspect())
		}
	}
}

// readInput reads one complete input, prompting for more lines while the
// text so far only fails to parse because it ends early.
func readInput(r lineReader, prompt string) (string, error) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = continuationPrompt
		}
		line, err := r.Prompt(p)
		if err != nil {
			if errors.Is(err, io.EOF) && b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}
		if strings.TrimSpace(line) == "exit" {
			return "", errExit
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.TrimSpace(src) == "" {
			return src, nil
		}
		if _, diags := parser.Parse(src, replFile); !parser.Incomplete(diags) {
			return src, nil
		}
	}
}
