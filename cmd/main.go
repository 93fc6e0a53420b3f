package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/certify/internal/adapters/render"
	"github.com/okian/certify/internal/adapters/roster"
	service "github.com/okian/certify/internal/app"
	"github.com/okian/certify/internal/config"
	"github.com/okian/certify/internal/domain/merge"
	"github.com/okian/certify/pkg/logger"
	"github.com/okian/certify/pkg/metrics"
)

// Process exit codes.
const (
	exitOK           = 0
	exitInputMissing = 1
	exitFatal        = 2
	exitUsage        = 3
)

// cliFlags are the command-line overrides; they win over file and env.
type cliFlags struct {
	config   string
	input    string
	template string
	output   string
	logPath  string
	logLevel string
	strict   bool
	pause    bool
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// execute runs the command and returns the process exit code.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	code := exitOK
	pause := false

	cmd := newRootCmd(stdout, &code, &pause)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(context.Background()); err != nil && code == exitOK {
		code = exitUsage
	}

	if pause {
		_, _ = fmt.Fprintln(stdout, "Press Enter to exit.")
		_, _ = bufio.NewReader(stdin).ReadString('\n')
	}
	return code
}

func newRootCmd(console io.Writer, code *int, pause *bool) *cobra.Command {
	var f cliFlags

	cmd := &cobra.Command{
		Use:          "certify",
		Short:        "Generate training certificates for qualifying employees",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			*pause = f.pause

			cfg, err := config.Load(cmd.Context(), f.config)
			if err != nil {
				return err
			}
			applyFlags(cmd, &f, cfg)
			*pause = cfg.PauseOnExit
			if err := cfg.Validate(); err != nil {
				return err
			}

			*code = run(cmd.Context(), cfg, console)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "YAML config file (default $"+config.EnvFile+")")
	fl.StringVar(&f.input, "input", "", "roster CSV file")
	fl.StringVar(&f.template, "template", "", "document template")
	fl.StringVar(&f.output, "output", "", "output directory")
	fl.StringVar(&f.logPath, "log", "", "activity log file")
	fl.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fl.BoolVar(&f.strict, "strict", true, "reject roster lines whose scores are not integers")
	fl.BoolVar(&f.pause, "pause", false, "wait for Enter before exiting")
	return cmd
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(cmd *cobra.Command, f *cliFlags, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("input") {
		cfg.InputPath = f.input
	}
	if set("template") {
		cfg.TemplatePath = f.template
	}
	if set("output") {
		cfg.OutputDir = f.output
	}
	if set("log") {
		cfg.LogPath = f.logPath
	}
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if set("strict") {
		cfg.StrictScores = f.strict
	}
	if set("pause") {
		cfg.PauseOnExit = f.pause
	}
}

// run performs one certificate run and maps its result to an exit code.
func run(parent context.Context, cfg *config.Config, console io.Writer) int {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	activity := logger.New(logger.WithFile(cfg.LogPath), logger.WithConsole(console))
	defer func() {
		_ = activity.Sync()
		// The log cannot report its own failure, so say it on the console.
		if err := activity.WriteErr(); err != nil {
			_, _ = fmt.Fprintf(console, "activity log %s is incomplete: %v\n", activity.Path(), err)
		}
		_ = activity.Close()
	}()

	if err := activity.OpenErr(); err != nil {
		activity.Warn(ctx, "log file unavailable; logging to console only", logger.Error(err))
	}
	if err := activity.SetLevelString(cfg.LogLevel); err != nil {
		activity.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = activity.SetLevelString("info")
	}

	renderer := render.NewTextRenderer(cfg.OutputDir, render.WithExtension(cfg.OutputExt))
	svc := service.New(renderer,
		service.WithInput(cfg.InputPath),
		service.WithTemplate(cfg.TemplatePath),
		service.WithOutputDir(cfg.OutputDir),
		service.WithParserOptions(
			roster.WithStrictScores(cfg.StrictScores),
			roster.WithDelimiter(cfg.Delimiter),
		),
		service.WithResolver(merge.NewResolver(
			merge.WithPhone(cfg.Phone),
			merge.WithEmailDomain(cfg.EmailDomain),
			merge.WithBodies(cfg.DistinctionBody, cfg.StandardBody),
		)),
		service.WithLogger(activity),
		service.WithMetrics(metrics.NewManager()),
		service.WithMetricsFile(cfg.MetricsFile),
	)

	_, err := svc.Run(ctx)
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, service.ErrInputMissing):
		return exitInputMissing
	default:
		return exitFatal
	}
}
