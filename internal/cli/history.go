package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/do-nan-fer/Garden-CLI/internal/config"
	"github.com/do-nan-fer/Garden-CLI/internal/domain"
	"github.com/do-nan-fer/Garden-CLI/internal/repo"
)

// NewHistoryCmd создаёт команду history — история смен состояний из PostgreSQL.
func NewHistoryCmd(outputFn func() *Output, configFn func() *config.Config) *cobra.Command {
	var (
		entity string
		id     int
		limit  int
		dbURL  string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show status change history recorded by watch --db-url",
		Example: `  garden history
  garden history --entity plant --id 3 --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := outputFn()

			filter := repo.HistoryFilter{EntityID: id, Limit: limit}
			if entity != "" {
				kind, ok := domain.ParseEntityKind(entity)
				if !ok {
					return fmt.Errorf("unknown entity %q", entity)
				}
				filter.Entity = kind
			}

			dsn := configFn().Watch.DBURL
			overrideString(cmd, "db-url", &dsn, dbURL)

			pool, err := repo.NewPool(ctx, dsn)
			if err != nil {
				return err
			}
			defer pool.Close()

			history := repo.NewStatusChangeRepo(pool)
			if err := history.EnsureSchema(ctx); err != nil {
				return err
			}

			changes, err := history.List(ctx, filter)
			if err != nil {
				return err
			}

			if len(changes) == 0 && out.IsTable() {
				out.Success("No status changes recorded")
				return nil
			}
			return out.Print(changeHeaders, changeRows(changes), changes)
		},
	}

	cmd.Flags().StringVar(&entity, "entity", "", "Only this entity kind (plant or worker)")
	cmd.Flags().IntVar(&id, "id", 0, "Only this entity ID")
	cmd.Flags().IntVar(&limit, "limit", repo.DefaultHistoryLimit, "Maximum number of records")
	cmd.Flags().StringVar(&dbURL, "db-url", "", "PostgreSQL DSN (default from config or DB_URL)")

	return cmd
}
