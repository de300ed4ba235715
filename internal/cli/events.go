package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/do-nan-fer/Garden-CLI/internal/config"
	"github.com/do-nan-fer/Garden-CLI/internal/domain"
	"github.com/do-nan-fer/Garden-CLI/internal/mq"
	"github.com/do-nan-fer/Garden-CLI/internal/telemetry"
)

// NewEventsCmd создаёт команду events — чтение событий из RabbitMQ.
func NewEventsCmd(outputFn func() *Output, configFn func() *config.Config) *cobra.Command {
	var (
		amqpURL string
		drain   bool
	)

	cmd := &cobra.Command{
		Use:   "events [plants|workers]",
		Short: "Follow status change events published by watch",
		Long: `Follow status change events from RabbitMQ.

By default a temporary queue is bound to exchange garden.events and removed on exit.
With --drain the durable garden.status_changes queue is consumed instead,
which includes events published while nobody was listening.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := telemetry.FromContext(ctx)
			out := outputFn()

			url := configFn().Watch.AMQPURL
			overrideString(cmd, "amqp-url", &url, amqpURL)
			if url == "" {
				return fmt.Errorf("no RabbitMQ URL: use --amqp-url, AMQP_URL or watch.amqp_url")
			}

			subCfg := mq.SubscriberConfig{}
			if len(args) == 1 {
				kind, ok := domain.ParseEntityKind(args[0])
				if !ok || (kind != domain.EntityPlant && kind != domain.EntityWorker) {
					return fmt.Errorf("cannot follow %q: expected plants or workers", args[0])
				}
				subCfg.RoutingKey = mq.StatusRoutingKey(kind)
			}
			if drain {
				if len(args) == 1 {
					return fmt.Errorf("--drain reads all entities and cannot be combined with a filter")
				}
				subCfg.Queue = mq.QueueStatusHistory
			}

			conn, err := mq.Dial(url, mq.SetupTopology, logger)
			if err != nil {
				return err
			}
			defer conn.Close()

			out.Success("Waiting for events, press Ctrl+C to stop")

			sub := mq.NewSubscriber(conn, logger, subCfg)
			return sub.Run(ctx, func(_ context.Context, c domain.StatusChange) error {
				return printEvent(out, c)
			})
		},
	}

	cmd.Flags().StringVar(&amqpURL, "amqp-url", "", "RabbitMQ URL (default from config or AMQP_URL)")
	cmd.Flags().BoolVar(&drain, "drain", false, "Consume the durable history queue")

	return cmd
}

// printEvent выводит одно событие строкой или документом JSON/YAML.
func printEvent(out *Output, c domain.StatusChange) error {
	if !out.IsTable() {
		return out.Print(nil, nil, c)
	}

	out.Println(fmt.Sprintf("%s  %s #%d %s: %s -> %s",
		c.ObservedAt.Format(time.DateTime),
		c.Entity,
		c.EntityID,
		c.Name,
		stateCell(c.From).Render(out.color),
		stateCell(c.To).Render(out.color),
	))
	return nil
}
