package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/adammathes/fntverify/pkg/config"
	"github.com/adammathes/fntverify/pkg/doctor"
	"github.com/adammathes/fntverify/pkg/entity"
	"github.com/adammathes/fntverify/pkg/report"
	"github.com/adammathes/fntverify/pkg/validate"
)

type checkFlags struct {
	format    string
	output    string
	recursive bool
	jobs      int
	color     string
	context   bool
}

func checkCmd(g *globalFlags) *cobra.Command {
	f := &checkFlags{}
	cmd := &cobra.Command{
		Use:   "check <file|dir>...",
		Short: "Validate documents and report defects",
		Long: `Validate one or more documents. Directories are scanned for files with
a configured extension (.fnt and .xml by default).

Exit status is 0 when no defects are found, 1 when any are, and 2 on a
fatal error such as a bad config or a missing directory.

Examples:
  fntverify check chapter01.fnt
  fntverify check --recursive --format pretty book/
  fntverify check --format checkstyle --output report.xml book/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := g.validator(cmd.ErrOrStderr(), validate.Options{Jobs: f.jobs})
			if err != nil {
				return err
			}
			results, err := collectResults(cmd.Context(), v, args, f.recursive)
			if err != nil {
				return fatal(err)
			}

			mode := f.color
			if !cmd.Flags().Changed("color") && v.Config().Color != "" {
				mode = v.Config().Color
			}
			out, closeOut, err := openOutput(cmd.OutOrStdout(), f.output)
			if err != nil {
				return fatal(err)
			}
			defer closeOut()

			if err := writeResults(out, results, f.format, report.PrettyOptions{
				Color:   useColor(mode, out),
				Context: f.context,
			}); err != nil {
				return fatal(err)
			}
			if !validate.Clean(results) {
				return errIssuesFound
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&f.format, "format", "f", "pretty", "Output format: text, pretty, json or checkstyle")
	cmd.Flags().StringVarP(&f.output, "output", "o", "-", "Write the report to this file ('-' for stdout)")
	cmd.Flags().BoolVarP(&f.recursive, "recursive", "r", false, "Descend into subdirectories")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", 0, "Documents validated in parallel (0 = config or GOMAXPROCS)")
	cmd.Flags().StringVar(&f.color, "color", "auto", "Colorize output: auto, always or never")
	cmd.Flags().BoolVar(&f.context, "context", true, "Print the source line under each diagnostic")
	return cmd
}

// collectResults validates every argument, expanding directories, and
// returns results in argument order.
func collectResults(ctx context.Context, v *validate.Validator, args []string, recursive bool) ([]validate.Result, error) {
	var results []validate.Result
	var files []string
	flush := func() error {
		if len(files) == 0 {
			return nil
		}
		rs, err := v.ValidatePaths(ctx, files)
		if err != nil {
			return err
		}
		results = append(results, rs...)
		files = nil
		return nil
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			// Missing files are reported as document diagnostics.
			files = append(files, arg)
			continue
		}
		if err := flush(); err != nil {
			return nil, err
		}
		rs, err := v.ValidateDir(ctx, arg, recursive)
		if err != nil {
			return nil, err
		}
		results = append(results, rs...)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeResults(w io.Writer, results []validate.Result, format string, opts report.PrettyOptions) error {
	files := validate.Files(results)
	switch format {
	case "json":
		return report.WriteJSON(w, files)
	case "checkstyle":
		return report.WriteCheckstyle(w, files)
	case "pretty":
		report.WritePretty(w, files, opts)
		return nil
	case "text":
		for _, f := range files {
			if len(files) > 1 {
				fmt.Fprintf(w, "== %s ==\n", f.Name)
			}
			f.Report.WriteText(w)
		}
		return nil
	}
	return fmt.Errorf("unknown format %q (must be text, pretty, json or checkstyle)", format)
}

func openOutput(stdout io.Writer, path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating report file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// useColor resolves a color mode against the output. Auto enables color
// only for a terminal and only when NO_COLOR is unset.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func fixCmd(g *globalFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "fix <file>",
		Short: "Escape stray characters and rewrite known entities",
		Long: `Repair the mechanical defects of a document: stray &, < and > are
escaped, and entities missing from the allow-list but present in the
resolver table become numeric character references. The repaired document
is written next to the input with a .fixed suffix unless --output is given,
then validated again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := g.validator(cmd.ErrOrStderr(), validate.Options{})
			if err != nil {
				return err
			}
			res, err := doctor.Repair(v, args[0], output)
			if err != nil {
				return fatal(err)
			}

			w := cmd.OutOrStdout()
			if len(res.Fixes) == 0 {
				fmt.Fprintf(w, "No fixes applied (%d issues before).\n", res.BeforeReport.Count())
			} else {
				for _, fix := range res.Fixes {
					fmt.Fprintf(w, "  [%s] Line %d, Col %d: %s\n", fix.CheckID, fix.Line, fix.Column, fix.Description)
				}
				fmt.Fprintf(w, "Applied %d fixes, wrote %s\n", len(res.Fixes), res.Output)
			}
			fmt.Fprintf(w, "Issues: %d before, %d after\n", res.BeforeReport.Count(), res.AfterReport.Count())
			if !res.AfterReport.IsClean() {
				res.AfterReport.WriteText(w)
				return errIssuesFound
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path of the repaired document (default <file>.fixed)")
	return cmd
}

func watchCmd(g *globalFlags) *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "watch <file|dir>...",
		Short: "Re-validate documents whenever they are saved",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := g.validator(cmd.ErrOrStderr(), validate.Options{})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			w := cmd.OutOrStdout()
			opts := report.PrettyOptions{Color: useColor(color, w), Context: true}
			fmt.Fprintf(w, "Watching %s (Ctrl-C to stop)\n", strings.Join(args, ", "))
			err = v.Watch(ctx, args, func(res validate.Result) {
				report.WritePretty(w, []report.File{res.File()}, opts)
			})
			if err != nil {
				return fatal(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&color, "color", "auto", "Colorize output: auto, always or never")
	return cmd
}

func entitiesCmd() *cobra.Command {
	var allowed bool
	cmd := &cobra.Command{
		Use:   "entities",
		Short: "List the entity table",
		Long: `List every named entity the resolver knows with its code point. With
--allowed, list only the entities accepted without configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			names := entity.Names()
			if allowed {
				names = entity.DefaultAllowed()
			}
			for _, name := range names {
				cp, ok := entity.CodePoint(name)
				if !ok {
					fmt.Fprintf(w, "&%s;\n", name)
					continue
				}
				fmt.Fprintf(w, "&%s;\t&#%d;\tU+%04X\n", name, cp, cp)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&allowed, "allowed", false, "List only the default allowed entities")
	return cmd
}

func configCmd(g *globalFlags) *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration a run would use: the built-in defaults merged
with the --config file and FNTVERIFY_* environment variables. The output
is a valid config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if !defaults {
				loaded, _, err := g.setup(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if err := cfg.WriteYAML(cmd.OutOrStdout()); err != nil {
				return fatal(err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "Print the built-in defaults, ignoring --config and the environment")
	return cmd
}
