package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/adammathes/fntverify/internal/logging"
	"github.com/adammathes/fntverify/pkg/config"
	"github.com/adammathes/fntverify/pkg/validate"
)

const version = "0.1.0"

// Exit codes: 0=clean, 1=diagnostics found, 2=fatal
const (
	exitClean  = 0
	exitIssues = 1
	exitFatal  = 2
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func fatal(err error) error { return &exitError{code: exitFatal, err: err} }

var errIssuesFound = &exitError{code: exitIssues}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	if err == nil {
		return exitClean
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "Fatal: %v\n", ee.err)
		}
		return ee.code
	}
	// Usage errors from cobra itself.
	fmt.Fprintln(stderr, err)
	return exitFatal
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "fntverify",
		Short: "Validate footnoted typesetting markup",
		Long: `fntverify checks documents written in an SGML-like typesetting dialect
with footnote shorthand tags and page markers.

It reports three classes of defects:
  - REPENT: invalid named entities and unescaped &, < or >
  - REPTAG: unknown tags, misnested tags, parent/child rule violations
  - CHECKSGM: structural problems the parser cannot get past`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "YAML config file (defaults plus FNTVERIFY_* environment when empty)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "Log format: console or json (overrides config)")

	root.AddCommand(checkCmd(g))
	root.AddCommand(fixCmd(g))
	root.AddCommand(watchCmd(g))
	root.AddCommand(entitiesCmd())
	root.AddCommand(configCmd(g))
	return root
}

// setup loads the configuration and logger every command needs.
func (g *globalFlags) setup(stderr io.Writer) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, zerolog.Nop(), fatal(err)
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	log, err := logging.Setup(cfg.Log.Level, cfg.Log.Format, stderr)
	if err != nil {
		return nil, zerolog.Nop(), fatal(err)
	}
	return cfg, log, nil
}

func (g *globalFlags) validator(stderr io.Writer, opts validate.Options) (*validate.Validator, error) {
	cfg, log, err := g.setup(stderr)
	if err != nil {
		return nil, err
	}
	opts.Logger = &log
	v, err := validate.New(cfg, opts)
	if err != nil {
		return nil, fatal(err)
	}
	log.Debug().Str("config", g.configPath).Int("tags", len(cfg.SupportedTags)).Msg("configuration loaded")
	return v, nil
}
