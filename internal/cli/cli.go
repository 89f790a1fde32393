// Package cli implements the tammr command line: file mode, help and the REPL.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thomasrohde/tammr/internal/config"
	"github.com/thomasrohde/tammr/pkg/diagnostics"
	"github.com/thomasrohde/tammr/pkg/evaluator"
	"github.com/thomasrohde/tammr/pkg/formatter"
	"github.com/thomasrohde/tammr/pkg/help"
	"github.com/thomasrohde/tammr/pkg/runtime"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitUsage   = 1
	ExitStatic  = 2
	ExitRuntime = 3
)

const usage = `usage: tammr [flags] [file.tmr | -]
       tammr help [topic] [--index]

With no file, tammr starts the interactive prompt.
`

type options struct {
	check      bool
	format     bool
	write      bool
	tokens     bool
	pretty     bool
	configPath string
	logLevel   string
}

// Main runs the command line with args (without the program name) and
// returns the process exit code.
func Main(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "help", "--help", "-h":
			return cmdHelp(args[1:], stdout, stderr)
		}
	}

	var opts options
	fs := flag.NewFlagSet("tammr", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	fs.BoolVar(&opts.check, "check", false, "parse and validate only")
	fs.BoolVar(&opts.format, "fmt", false, "print formatted source")
	fs.BoolVar(&opts.write, "write", false, "with --fmt, rewrite the file in place")
	fs.BoolVar(&opts.tokens, "tokens", false, "print the token stream")
	fs.BoolVar(&opts.pretty, "pretty", true, "human-readable diagnostics (false prints JSON)")
	fs.StringVar(&opts.configPath, "config", "", "configuration file")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		printError(stderr, err, true)
		return ExitUsage
	}
	if opts.logLevel != "" {
		level, err := config.ParseLevel(opts.logLevel)
		if err != nil {
			fmt.Fprintf(stderr, "error: %s\n", err)
			return ExitUsage
		}
		cfg.LogLevel = level
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "pretty" {
			cfg.Pretty = opts.pretty
		}
	})

	if err := opts.validate(fs.NArg()); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", err)
		fmt.Fprint(stderr, usage)
		return ExitUsage
	}

	if fs.NArg() == 0 {
		return runREPL(cfg, stdin, stdout, stderr)
	}

	file := fs.Arg(0)
	source, filename, err := readSource(file, stdin)
	if err != nil {
		printError(stderr, err, cfg.Pretty)
		return ExitUsage
	}

	rt := newRuntime(cfg, stdout, stderr)
	switch {
	case opts.check:
		return cmdCheck(rt, source, filename, cfg.Pretty, stdout, stderr)
	case opts.format:
		return cmdFmt(rt, source, filename, opts.write, cfg.Pretty, stdout, stderr)
	case opts.tokens:
		return cmdTokens(rt, source, filename, cfg.Pretty, stdout, stderr)
	}
	return cmdRun(rt, source, filename, cfg.Pretty, stderr)
}

func (o options) validate(nargs int) error {
	modes := 0
	for _, on := range []bool{o.check, o.format, o.tokens} {
		if on {
			modes++
		}
	}
	switch {
	case modes > 1:
		return errors.New("--check, --fmt and --tokens are mutually exclusive")
	case o.write && !o.format:
		return errors.New("--write requires --fmt")
	case nargs > 1:
		return fmt.Errorf("expected one file, got %d", nargs)
	case nargs == 0 && modes > 0:
		return errors.New("a file is required")
	}
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return config.Discover(cwd)
}

// newRuntime builds a runtime whose program output goes to stdout and whose
// top-level errors and logs go to stderr.
func newRuntime(cfg *config.Config, stdout, stderr io.Writer) *runtime.Runtime {
	return runtime.New(
		runtime.WithOutput(stdout),
		runtime.WithLogger(cfg.Logger(stderr)),
		runtime.WithMaxDepth(cfg.MaxCallDepth),
		runtime.WithReporter(func(e *evaluator.Error) {
			fmt.Fprintln(stderr, e.Inspect())
		}),
	)
}

// readSource reads file, or standard input when file is "-".
func readSource(file string, stdin io.Reader) (string, string, error) {
	if file == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", "", diagError(fmt.Sprintf("cannot read stdin: %s", err))
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", "", diagError(fmt.Sprintf("cannot read file: %s", file))
	}
	return string(data), file, nil
}

func diagError(msg string) error {
	return &runtime.DiagnosticError{Diagnostics: []diagnostics.Diagnostic{
		diagnostics.MakeDiag(diagnostics.EIO, msg, nil, ""),
	}}
}

// printError writes err as diagnostics when it carries them.
func printError(w io.Writer, err error, pretty bool) {
	var dErr *runtime.DiagnosticError
	var cErr *config.Error
	switch {
	case errors.As(err, &dErr):
		fmt.Fprintln(w, diagnostics.FormatDiagnostics(dErr.Diagnostics, pretty))
	case errors.As(err, &cErr):
		fmt.Fprintln(w, diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{cErr.Diagnostic()}, pretty))
	default:
		fmt.Fprintf(w, "error: %s\n", err)
	}
}

func cmdRun(rt *runtime.Runtime, source, filename string, pretty bool, stderr io.Writer) int {
	_, err := rt.Run(source, filename)
	if err == nil {
		return ExitOK
	}
	if isRuntimeError(err) {
		// Already printed by the reporter as each one was raised.
		return ExitRuntime
	}
	printError(stderr, err, pretty)
	return ExitStatic
}

func isRuntimeError(err error) bool {
	var rErr *runtime.RuntimeError
	return errors.As(err, &rErr)
}

func cmdCheck(rt *runtime.Runtime, source, filename string, pretty bool, stdout, stderr io.Writer) int {
	if diags := rt.Check(source, filename); len(diags) > 0 {
		fmt.Fprintln(stderr, diagnostics.FormatDiagnostics(diags, pretty))
		return ExitStatic
	}
	if pretty {
		fmt.Fprintln(stdout, "No errors found.")
	} else {
		fmt.Fprintln(stdout, "[]")
	}
	return ExitOK
}

func cmdFmt(rt *runtime.Runtime, source, filename string, write, pretty bool, stdout, stderr io.Writer) int {
	formatted, err := rt.Format(source, filename)
	if err != nil {
		printError(stderr, err, pretty)
		return ExitStatic
	}
	if formatter.HasComments(source) {
		fmt.Fprintln(stderr, "warning: comments are not preserved by the formatter")
	}
	if !write {
		fmt.Fprint(stdout, formatted)
		return ExitOK
	}
	if filename == "<stdin>" {
		fmt.Fprintln(stderr, "error: --write needs a file, not stdin")
		return ExitUsage
	}
	if err := os.WriteFile(filename, []byte(formatted), 0o644); err != nil {
		printError(stderr, diagError(fmt.Sprintf("cannot write file: %s", filename)), pretty)
		return ExitUsage
	}
	return ExitOK
}

func cmdTokens(rt *runtime.Runtime, source, filename string, pretty bool, stdout, stderr io.Writer) int {
	tokens, err := rt.Tokens(source, filename)
	if err != nil {
		printError(stderr, err, pretty)
		return ExitStatic
	}
	for _, tok := range tokens {
		fmt.Fprintln(stdout, tok)
	}
	return ExitOK
}

func cmdHelp(args []string, stdout, stderr io.Writer) int {
	showIndex := false
	topic := ""
	for _, arg := range args {
		if arg == "--index" {
			showIndex = true
		} else if !strings.HasPrefix(arg, "-") {
			topic = arg
		}
	}

	if showIndex {
		if topic == "" {
			fmt.Fprintln(stderr, "error: --index requires a topic (e.g., tammr help builtins --index)")
			return ExitUsage
		}
		name, _, err := help.MatchTopic(topic)
		if err != nil || (name != "builtins" && name != "strings") {
			fmt.Fprintln(stderr, "error: --index is only supported for the builtins and strings topics")
			return ExitUsage
		}
		fmt.Fprint(stdout, help.StdlibIndex())
		return ExitOK
	}

	if topic == "" {
		fmt.Fprint(stdout, help.QUICKREF)
		return ExitOK
	}

	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", err)
		return ExitUsage
	}
	fmt.Fprintln(stdout, content)
	return ExitOK
}
