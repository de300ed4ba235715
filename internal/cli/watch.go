package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/do-nan-fer/Garden-CLI/internal/config"
	"github.com/do-nan-fer/Garden-CLI/internal/domain"
	"github.com/do-nan-fer/Garden-CLI/internal/mq"
	"github.com/do-nan-fer/Garden-CLI/internal/render"
	"github.com/do-nan-fer/Garden-CLI/internal/repo"
	"github.com/do-nan-fer/Garden-CLI/internal/telemetry"
	"github.com/do-nan-fer/Garden-CLI/internal/watch"
)

var changeHeaders = []string{"OBSERVED", "ENTITY", "ID", "NAME", "FROM", "TO"}

// stateStyles — цвета состояний plants и workers.
var stateStyles = map[string]render.Style{
	string(domain.PlantStateAlive):     render.StyleCyan,
	string(domain.PlantStateDead):      render.StyleMagenta,
	string(domain.WorkerStatusRunning): render.StyleGreen,
	string(domain.WorkerStatusStopped): render.StyleDim,
	string(domain.WorkerStatusFailed):  render.StyleRed,
}

func stateCell(state string) render.Cell {
	return render.Styled(state, stateStyles[state])
}

func changeRow(c domain.StatusChange) render.Row {
	return render.NewRow(
		c.ObservedAt.Format(time.DateTime),
		string(c.Entity),
		c.EntityID,
		c.Name,
		stateCell(c.From),
		stateCell(c.To),
	)
}

func changeRows(changes []domain.StatusChange) []render.Row {
	rows := make([]render.Row, len(changes))
	for i, c := range changes {
		rows[i] = changeRow(c)
	}
	return rows
}

// NewWatchCmd создаёт команду watch.
func NewWatchCmd(
	clientFn func() *Client,
	outputFn func() *Output,
	configFn func() *config.Config,
	metricsFn func() *telemetry.Metrics,
) *cobra.Command {
	var (
		schedule    string
		once        bool
		metricsAddr string
		dbURL       string
		amqpURL     string
	)

	cmd := &cobra.Command{
		Use:   "watch [plants|workers]...",
		Short: "Poll plants and workers and report status changes",
		Long: `Poll the backend on a schedule, redraw the tables and forward every
observed status change to the configured sinks:

  log         always (visible with --verbose)
  prometheus  always; served on --metrics-addr when set
  rabbitmq    --amqp-url, routing key "<entity>.status" on exchange garden.events
  postgres    --db-url, table status_changes (see "garden history")

The first observation of an entity is not a change.`,
		Example: `  garden watch
  garden watch plants --schedule "@every 30s"
  garden watch workers --once -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := telemetry.FromContext(ctx)
			out := outputFn()
			cfg := configFn().Watch
			metrics := metricsFn()

			overrideString(cmd, "schedule", &cfg.Schedule, schedule)
			overrideString(cmd, "metrics-addr", &cfg.MetricsAddr, metricsAddr)
			overrideString(cmd, "db-url", &cfg.DBURL, dbURL)
			overrideString(cmd, "amqp-url", &cfg.AMQPURL, amqpURL)

			targets, err := watch.ParseTargets(args)
			if err != nil {
				return err
			}
			sched, err := watch.ParseSchedule(cfg.Schedule)
			if err != nil {
				return err
			}

			sinks, closeSinks, err := openSinks(ctx, cfg, metrics, logger)
			if err != nil {
				return err
			}
			defer closeSinks()

			if cfg.MetricsAddr != "" {
				srv, err := telemetry.StartMetricsServer(cfg.MetricsAddr, metrics, logger)
				if err != nil {
					return err
				}
				defer srv.Shutdown(context.Background())
				out.Success(fmt.Sprintf("Serving metrics on http://%s/metrics", srv.Addr()))
			}

			// Ошибка вывода (например, закрытый pipe) останавливает опрос.
			runCtx, cancel := context.WithCancel(ctx)
			defer cancel()

			var renderErr error
			w, err := watch.New(watch.Config{
				Source:   clientFn(),
				Targets:  targets,
				Schedule: sched,
				Sinks:    sinks,
				Metrics:  metrics,
				Logger:   logger,
				OnSnapshot: func(s watch.Snapshot) {
					if err := renderSnapshot(out, s, cfg.Schedule, !once); err != nil && renderErr == nil {
						renderErr = fmt.Errorf("render snapshot: %w", err)
						cancel()
					}
				},
			})
			if err != nil {
				return err
			}

			if once {
				if _, err := w.Tick(runCtx); err != nil {
					return err
				}
				return renderErr
			}
			if err := w.Run(runCtx); err != nil {
				return err
			}
			return renderErr
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", watch.DefaultSchedule, `Polling schedule: cron expression or "@every <duration>"`)
	cmd.Flags().BoolVar(&once, "once", false, "Poll once and exit")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9108)")
	cmd.Flags().StringVar(&dbURL, "db-url", "", "PostgreSQL DSN for status change history")
	cmd.Flags().StringVar(&amqpURL, "amqp-url", "", "RabbitMQ URL for status change events")

	return cmd
}

// overrideString применяет флаг, если он задан явно.
func overrideString(cmd *cobra.Command, flag string, dst *string, value string) {
	if cmd.Flags().Changed(flag) {
		*dst = value
	}
}

// openSinks подключает sink'и по конфигурации.
// Возвращённая функция закрывает все открытые соединения.
func openSinks(ctx context.Context, cfg config.WatchConfig, metrics *telemetry.Metrics, logger *slog.Logger) ([]watch.Sink, func(), error) {
	sinks := []watch.Sink{
		watch.LogSink{Logger: logger},
		watch.MetricsSink{Metrics: metrics},
	}
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.AMQPURL != "" {
		conn, err := mq.Dial(cfg.AMQPURL, mq.SetupTopology, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("rabbitmq sink: %w", err)
		}
		closers = append(closers, func() { conn.Close() })

		pub := mq.NewPublisher(conn, logger)
		sinks = append(sinks, watch.SinkFunc(pub.PublishStatusChange))
	}

	if cfg.DBURL != "" {
		pool, err := repo.NewPool(ctx, cfg.DBURL)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("postgres sink: %w", err)
		}
		closers = append(closers, pool.Close)

		history := repo.NewStatusChangeRepo(pool)
		if err := history.EnsureSchema(ctx); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("postgres sink: %w", err)
		}
		sinks = append(sinks, watch.SinkFunc(history.Create))
	}

	return sinks, closeAll, nil
}

// renderSnapshot выводит результат опроса. В режиме таблиц при redraw
// экран очищается перед выводом.
func renderSnapshot(out *Output, s watch.Snapshot, schedule string, redraw bool) error {
	if !out.IsTable() {
		return out.Print(nil, nil, s)
	}

	if redraw {
		out.Clear()
	}
	out.Println(fmt.Sprintf("%s  (%s)", s.At.Format(time.DateTime), schedule))

	if s.Plants != nil {
		out.Section("Plants:")
		if err := out.Table(plantHeaders, plantRows(s.Plants)); err != nil {
			return err
		}
	}
	if s.Workers != nil {
		out.Section("Workers:")
		if err := out.Table(workerHeaders, workerRows(s.Workers)); err != nil {
			return err
		}
	}
	if len(s.Changes) > 0 {
		out.Section("Changes:")
		if err := out.Table(changeHeaders, changeRows(s.Changes)); err != nil {
			return err
		}
	}
	return nil
}
