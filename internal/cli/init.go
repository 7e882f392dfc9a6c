package cli

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/macropower/zoorunner/pkg/config"
	"github.com/macropower/zoorunner/pkg/route"
)

// ErrCancelled is returned when the route selection is aborted.
var ErrCancelled = errors.New("init cancelled")

type InitArgs struct {
	*RootArgs

	Force bool
	Yes   bool
}

func NewInitArgs(rootArgs *RootArgs) *InitArgs {
	return &InitArgs{
		RootArgs: rootArgs,
	}
}

func (ia *InitArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&ia.Force, "force", false, "Replace an existing rule file, keeping a backup")
	cmd.Flags().BoolVarP(&ia.Yes, "yes", "y", false, "Keep every route without prompting")
}

func NewInitCmd(ia *InitArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a rule file from the application's routes",
		Long: `Create a rule file from the application's routes.

Routes are offered in a multi-select list. Selected routes without
placeholders are included, routes with placeholders are written as
comments to be replaced with example URLs, and admin, media, static and
debug routes are excluded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, ia)
		},
	}
	ia.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

func runInit(cmd *cobra.Command, ia *InitArgs) error {
	cfg, err := loadConfig(ia.RootArgs)
	if err != nil {
		return err
	}

	if cfg.Found && !ia.Force {
		return fmt.Errorf("%w: %s, use --force to replace it", config.ErrFileExists, cfg.Path)
	}

	routes, err := loadRoutes(cmd.Context(), cmd.InOrStdin(), ia.RootArgs, cfg)
	if err != nil {
		return err
	}

	if !ia.Yes && isTerminal(os.Stdin) {
		routes, err = selectRoutes(cmd, routes)
		if err != nil {
			return err
		}
	}

	buf := &bytes.Buffer{}

	err = config.Generate(buf, routes, config.WithCategories())
	if err != nil {
		return err
	}

	err = config.WriteFile(cfg.Path, buf.Bytes(), ia.Force)
	if err != nil {
		return err
	}

	slog.Info("created rule file",
		slog.String("path", cfg.Path),
		slog.Int("routes", len(routes)),
	)

	return nil
}

func selectRoutes(cmd *cobra.Command, routes []route.Route) ([]route.Route, error) {
	options := make([]huh.Option[string], 0, len(routes))
	for _, r := range routes {
		label := r.Path
		if r.Name != "" {
			label = fmt.Sprintf("%s (%s)", r.Path, r.Name)
		}

		options = append(options, huh.NewOption(label, r.Path).Selected(true))
	}

	var selected []string

	form := huh.NewForm(huh.NewGroup(
		huh.NewMultiSelect[string]().
			Title("Routes to add to the rule file").
			Description("Deselect routes to leave out.").
			Options(options...).
			Filterable(true).
			Value(&selected),
	)).WithOutput(cmd.ErrOrStderr())

	err := form.RunWithContext(cmd.Context())
	if errors.Is(err, huh.ErrUserAborted) {
		return nil, ErrCancelled
	}
	if err != nil {
		return nil, fmt.Errorf("select routes: %w", err)
	}

	keep := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		keep[s] = struct{}{}
	}

	out := make([]route.Route, 0, len(selected))
	for _, r := range routes {
		if _, ok := keep[r.Path]; ok {
			out = append(out, r)
		}
	}

	return out, nil
}
