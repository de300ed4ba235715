package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/do-nan-fer/Garden-CLI/internal/config"
	"github.com/do-nan-fer/Garden-CLI/internal/telemetry"
)

// app — состояние, общее для всех команд одного запуска.
// Заполняется в PersistentPreRunE после разбора флагов.
type app struct {
	configPath string
	verbose    bool
	apiURL     string
	output     string
	color      string
	timeout    time.Duration

	cfg     *config.Config
	client  *Client
	out     *Output
	metrics *telemetry.Metrics
}

// NewRootCmd создаёт корневую команду garden.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "garden",
		Short: "Garden CLI: manage plants, packages, workers and actions",
		Long: `Garden CLI talks to the garden backend over HTTP.

Configuration is read from $GARDEN_CONFIG (or ~/.config/garden/config.yaml),
then GARDEN_* environment variables, then flags.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file (default $GARDEN_CONFIG or ~/.config/garden/config.yaml)")
	pf.StringVar(&a.apiURL, "api-url", config.DefaultAPIURL, "API server URL")
	pf.StringVarP(&a.output, "output", "o", config.OutputTable, "Output format: table, json or yaml")
	pf.StringVar(&a.color, "color", config.ColorAuto, "Colorize output: auto, always or never")
	pf.DurationVar(&a.timeout, "timeout", 30*time.Second, "Timeout of a single API request")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging to stderr")

	clientFn := func() *Client { return a.client }
	outputFn := func() *Output { return a.out }
	configFn := func() *config.Config { return a.cfg }
	metricsFn := func() *telemetry.Metrics { return a.metrics }

	root.AddCommand(
		NewPlantCmd(clientFn, outputFn),
		NewListPlantsCmd(clientFn, outputFn),
		NewPackageCmd(clientFn, outputFn),
		NewWorkerCmd(clientFn, outputFn),
		NewActionCmd(clientFn, outputFn),
		NewWatchCmd(clientFn, outputFn, configFn, metricsFn),
		NewEventsCmd(outputFn, configFn),
		NewHistoryCmd(outputFn, configFn),
		NewConfigCmd(outputFn, configFn, a.resolvedConfigPath),
		NewVersionCmd(version, clientFn, outputFn),
	)

	return root
}

// setup загружает конфигурацию, применяет флаги и создаёт Client и Output.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	logger := telemetry.SetupLogger(cmd.ErrOrStderr(), a.verbose)
	cmd.SetContext(telemetry.WithLogger(cmd.Context(), logger))

	cfg, err := config.Load(a.resolvedConfigPath(), cmd.Flags())
	if err != nil {
		return err
	}

	out, err := NewOutputTo(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg.Output,
		ResolveColor(cfg.Color, cmd.OutOrStdout()))
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.out = out
	a.metrics = telemetry.NewMetrics()
	a.client = NewClient(cfg.APIURL,
		WithTimeout(cfg.Timeout),
		WithMetrics(a.metrics),
		WithLogger(logger),
	)

	logger.Debug("configuration loaded",
		"api_url", cfg.APIURL,
		"output", cfg.Output,
		"timeout", cfg.Timeout,
	)
	return nil
}

func (a *app) resolvedConfigPath() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.Path()
}

// Execute выполняет команду и печатает ошибку в stderr.
// Возвращает код завершения.
func Execute(ctx context.Context, root *cobra.Command) int {
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}
