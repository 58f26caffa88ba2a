package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rubiojr/py2scala/config"
	"github.com/rubiojr/py2scala/convert"
	"github.com/urfave/cli/v3"
)

// Execute runs the py2scala CLI with the given version string.
func Execute(version string) {
	cmd := newCommand(version, os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(version string, stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:                   "py2scala",
		Usage:                  "Convert Python source to Scala, heuristically",
		Version:                version,
		ArgsUsage:              "[FILE|DIR ...]",
		UseShortOptionHandling: true,
		Reader:                 stdin,
		Writer:                 stdout,
		ErrWriter:              stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "scala",
				Aliases: []string{"s"},
				Usage:   "Input is already partly Scala: // and /* */ comments, keep None",
			},
			&cli.BoolFlag{
				Name:    "remove-self",
				Aliases: []string{"r", "rs"},
				Usage:   "Remove self. and cls. receivers and self/cls parameters",
			},
			&cli.BoolFlag{
				Name:    "convert-brackets",
				Aliases: []string{"b", "cb"},
				Usage:   "Convert index brackets to parentheses, except generic types",
			},
			&cli.BoolFlag{
				Name:    "second-pass",
				Aliases: []string{"2"},
				Usage:   "Re-run over converted code; same as --scala --remove-self --convert-brackets",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file (default " + config.DefaultFile + " if present)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the result to this file instead of stdout",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Re-convert whenever an input changes (requires --output)",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Do not print warnings and notices",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable ANSI color output",
			},
			&cli.IntFlag{
				Name:  "tab-width",
				Usage: "Tab stop width used when expanding tabs",
			},
		},
		Action: convertAction,
	}
}

func convertAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	root := cmd.Root()
	quiet := cmd.Bool("quiet")
	j := &job{
		args:    cmd.Args().Slice(),
		sources: cfg.Sources,
		opts:    conversionOptions(cfg),
		output:  cmd.String("output"),
		stdin:   root.Reader,
		stdout:  root.Writer,
	}
	if !quiet {
		j.report = newReporter(root.ErrWriter, useColor(root.ErrWriter, cmd.Bool("no-color")))
	}

	if cmd.Bool("watch") {
		if j.output == "" {
			return fmt.Errorf("--watch requires --output")
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watch(ctx, j, cfg.Watch.Debounce, newLogger(root.ErrWriter, quiet))
	}
	_, err = j.run()
	return err
}

// resolveConfig loads the config file and lets explicitly set flags override
// it.
func resolveConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	for name, dst := range map[string]*bool{
		"scala":            &cfg.Scala,
		"remove-self":      &cfg.RemoveSelf,
		"convert-brackets": &cfg.ConvertBrackets,
		"second-pass":      &cfg.SecondPass,
	} {
		if cmd.IsSet(name) {
			*dst = cmd.Bool(name)
		}
	}
	if cmd.IsSet("tab-width") {
		w := cmd.Int("tab-width")
		if w <= 0 {
			return nil, fmt.Errorf("--tab-width must be positive, got %d", w)
		}
		cfg.TabWidth = w
	}
	return cfg, nil
}

func conversionOptions(cfg *config.Config) convert.Options {
	opts := convert.Options{
		Scala:           cfg.Scala,
		RemoveSelf:      cfg.RemoveSelf,
		ConvertBrackets: cfg.ConvertBrackets,
		TabWidth:        cfg.TabWidth,
	}
	if cfg.SecondPass {
		opts = opts.SecondPass()
	}
	return opts
}

// job is one conversion: every source concatenated into a single run.
type job struct {
	args    []string
	sources config.Sources
	opts    convert.Options
	output  string
	stdin   io.Reader
	stdout  io.Writer
	report  *reporter
}

func (j *job) run() (*convert.Result, error) {
	files, err := collectSources(j.args, j.sources)
	if err != nil {
		return nil, err
	}
	lines, err := readSources(files, j.stdin)
	if err != nil {
		return nil, err
	}
	opts := j.opts
	if j.report != nil {
		opts.Reporter = j.report.diagnostic
	}
	res, convErr := convert.Convert(lines, opts)
	// An internal error still leaves the output converted so far.
	if err := j.write(res.Lines); err != nil {
		return res, err
	}
	if convErr != nil {
		return res, convErr
	}
	if j.report != nil {
		j.report.summary(res.Diagnostics)
	}
	return res, nil
}

func (j *job) write(lines []string) error {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	if j.output == "" {
		_, err := io.WriteString(j.stdout, sb.String())
		return err
	}
	if err := os.WriteFile(j.output, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
