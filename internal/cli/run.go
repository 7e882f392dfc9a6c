package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/macropower/zoorunner/pkg/check"
	"github.com/macropower/zoorunner/pkg/config"
	"github.com/macropower/zoorunner/pkg/plan"
	"github.com/macropower/zoorunner/pkg/render"
	"github.com/macropower/zoorunner/pkg/route"
	"github.com/macropower/zoorunner/pkg/rule"
)

const (
	cmdExamples = `  # Print the URLs to check, reading routes from a file:
  zoorunner --routes-file routes.txt

  # Ask the application for its routes:
  zoorunner --routes-command "python manage.py show_urls --format aligned"

  # Start a rule file from the application's routes:
  zoorunner -f routes.txt --gather-urls --categorize > wcag_zoo_runner.ini

  # Show what a regenerated rule file would change:
  zoorunner -f routes.txt --gather-urls --diff

  # Show each route's decision:
  zoorunner -f routes.txt -o table

  # Run the configured checker against every planned URL:
  zoorunner -f routes.txt --base-url http://localhost:8000 --check`

	outputTable = "table"
)

var (
	// ErrNoRouteSource is returned when no routes file or command is set.
	ErrNoRouteSource = errors.New("no route source, set --routes-file or --routes-command")

	// ErrNoChecker is returned by --check when no checker command is set.
	ErrNoChecker = errors.New("no checker command, set --checker or [runner] checker")
)

var allOutputs = []string{
	string(plan.FormatText),
	string(plan.FormatJSON),
	string(plan.FormatYAML),
	outputTable,
}

type RunArgs struct {
	*RootArgs

	BaseURL    string
	Output     string
	Checker    string
	Level      string
	StaticPath string
	Strict     bool
	Check      bool
	GatherURLs bool
	Categorize bool
	Diff       bool
}

func NewRunArgs(rootArgs *RootArgs) *RunArgs {
	return &RunArgs{
		RootArgs: rootArgs,
	}
}

func (ra *RunArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ra.BaseURL, "base-url", "", "URL that relative routes are joined onto")
	cmd.Flags().StringVarP(&ra.Output, "output", "o", string(plan.FormatText),
		fmt.Sprintf("Output format, one of: %s", allOutputs))
	cmd.Flags().BoolVar(&ra.Strict, "strict", false, "Fail on invalid rules instead of skipping them")
	cmd.Flags().BoolVar(&ra.Check, "check", false, "Run the checker command against every planned URL")
	cmd.Flags().StringVar(&ra.Checker, "checker", "", "Checker command, {url} is replaced with each URL")
	cmd.Flags().StringVar(&ra.Level, "level", "", "Value for {level} in the checker command (default AAA)")
	cmd.Flags().StringVar(&ra.StaticPath, "static-path", "",
		"Value for {static-path} in the checker command (default ./static)")
	cmd.Flags().BoolVar(&ra.GatherURLs, "gather-urls", false, "Print a rule file listing every route and exit")
	cmd.Flags().BoolVar(&ra.Categorize, "categorize", false,
		"With --gather-urls, sort routes into include, placeholder and exclude groups")
	cmd.Flags().BoolVar(&ra.Diff, "diff", false,
		"With --gather-urls, print a diff against the current rule file")

	err := cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions(allOutputs, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

func run(cmd *cobra.Command, ra *RunArgs) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ra.RootArgs)
	if err != nil {
		return err
	}

	routes, err := loadRoutes(ctx, cmd.InOrStdin(), ra.RootArgs, cfg)
	if err != nil {
		return err
	}

	if ra.GatherURLs {
		return gatherURLs(cmd.OutOrStdout(), routes, cfg, ra)
	}

	var opts []rule.Option
	if !ra.Strict {
		opts = append(opts, rule.WithSkipInvalid(func(err error) {
			slog.WarnContext(ctx, "skipping invalid rule", slog.Any("err", err))
		}))
	}

	m, err := rule.NewMatcher(cfg.Rules, opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Path, err)
	}

	p := plan.Build(routes, m, plan.WithBaseURL(first(ra.BaseURL, cfg.Runner.BaseURL)))

	err = writePlan(cmd.OutOrStdout(), cmd.ErrOrStderr(), p, ra.Output)
	if err != nil {
		return err
	}

	if !ra.Check {
		return nil
	}

	checker := first(ra.Checker, cfg.Runner.Checker)
	if checker == "" {
		return ErrNoChecker
	}

	runner, err := check.NewRunner(checker,
		check.WithLevel(first(ra.Level, cfg.Runner.Level)),
		check.WithStaticPath(first(ra.StaticPath, cfg.Runner.StaticPath)),
		check.WithDir(filepath.Dir(cfg.Path)),
		check.WithOutput(cmd.ErrOrStderr()),
	)
	if err != nil {
		return err
	}

	report := runner.Run(ctx, p.URLs)

	return report.Err()
}

func loadConfig(ra *RootArgs) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	path, err := config.Resolve(ra.ConfigPath, wd)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	slog.Debug("loading config", slog.String("path", path))

	return config.Load(path)
}

// loadRoutes reads the routes from the source named by flags, falling back
// to the [runner] section. Relative paths from the rule file are resolved
// against the rule file's directory.
func loadRoutes(ctx context.Context, stdin io.Reader, ra *RootArgs, cfg *config.Config) ([]route.Route, error) {
	configDir := filepath.Dir(cfg.Path)

	var src route.Source

	switch {
	case ra.RoutesFile != "":
		src = route.File{Path: ra.RoutesFile, Stdin: stdin}

	case ra.RoutesCommand != "":
		c, err := route.NewCommand(ra.RoutesCommand, "")
		if err != nil {
			return nil, err
		}

		src = c

	case cfg.Runner.RoutesFile != "":
		path := cfg.Runner.RoutesFile
		if path != "-" && !filepath.IsAbs(path) {
			path = filepath.Join(configDir, path)
		}

		src = route.File{Path: path, Stdin: stdin}

	case cfg.Runner.RoutesCommand != "":
		c, err := route.NewCommand(cfg.Runner.RoutesCommand, configDir)
		if err != nil {
			return nil, err
		}

		src = c

	default:
		return nil, ErrNoRouteSource
	}

	routes, err := src.Routes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load routes: %w", err)
	}

	routes = route.Unique(routes)
	slog.Debug("loaded routes", slog.Int("count", len(routes)))

	return routes, nil
}

func gatherURLs(w io.Writer, routes []route.Route, cfg *config.Config, ra *RunArgs) error {
	var opts []config.GenerateOption
	if ra.Categorize {
		opts = append(opts, config.WithCategories())
	}

	buf := &bytes.Buffer{}

	err := config.Generate(buf, routes, opts...)
	if err != nil {
		return err
	}

	if !ra.Diff {
		return render.Highlight(w, buf.String(), render.LanguageINI, colorProfile(w))
	}

	var current []byte
	if cfg.Found {
		current, err = config.ReadFile(cfg.Path)
		if err != nil {
			return err
		}
	}

	diff := render.Diff(cfg.Path, "generated", string(current), buf.String())
	if diff == "" {
		slog.Info("rule file is up to date", slog.String("path", cfg.Path))

		return nil
	}

	return render.Highlight(w, diff, render.LanguageDiff, colorProfile(w))
}

// writePlan writes the plan to out. Text output on a terminal is followed
// by the plan's warnings and a summary on errOut.
func writePlan(out, errOut io.Writer, p *plan.Plan, output string) error {
	if output == outputTable {
		return render.Table(out, p)
	}

	format, err := plan.GetFormat(output)
	if err != nil {
		return fmt.Errorf("%w, one of: %s", err, allOutputs)
	}

	err = plan.Encode(out, p, format)
	if err != nil {
		return err
	}

	if format == plan.FormatText && isTerminal(out) {
		s := render.NewStyles(errOut)
		mustN(fmt.Fprint(errOut, render.Warnings(s, p)))
		mustN(fmt.Fprintln(errOut, s.Subtle.Render(render.Summary(p))))
	}

	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

// colorProfile returns the colour profile for highlighting output to w.
func colorProfile(w io.Writer) termenv.Profile {
	if !isTerminal(w) {
		return termenv.Ascii
	}

	return termenv.NewOutput(w).Profile
}

// first returns the first non-empty value.
func first(values ...string) string {
	i := slices.IndexFunc(values, func(v string) bool { return v != "" })
	if i < 0 {
		return ""
	}

	return values[i]
}
