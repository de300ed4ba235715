package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/do-nan-fer/Garden-CLI/internal/domain"
	"github.com/do-nan-fer/Garden-CLI/internal/render"
)

var (
	workerHeaders = []string{"ID", "NAME", "STATUS", "INTERVAL", "SINCE"}
	pickHeaders   = []string{"PICK", "PLANT", "PACKAGE"}
)

var workerStatusStyles = map[domain.WorkerStatus]render.Style{
	domain.WorkerStatusRunning: render.StyleGreen,
	domain.WorkerStatusStopped: render.StyleDim,
	domain.WorkerStatusFailed:  render.StyleRed,
}

// NewWorkerCmd создаёт группу команд для управления workers.
func NewWorkerCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "worker",
		Aliases: []string{"workers"},
		Short:   "Manage workers",
	}

	cmd.AddCommand(
		newWorkerListCmd(clientFn, outputFn),
		newWorkerShowCmd(clientFn, outputFn),
		newWorkerCreateCmd(clientFn, outputFn),
		newWorkerEditCmd(clientFn, outputFn),
		newWorkerDeleteCmd(clientFn, outputFn),
		newWorkerStartCmd(clientFn, outputFn),
		newWorkerStopCmd(clientFn, outputFn),
		newWorkerPickCmd(clientFn, outputFn),
	)

	return cmd
}

func workerRow(w domain.Worker) render.Row {
	status := render.Styled(string(w.Status), workerStatusStyles[w.Status])
	interval := "-"
	if w.Interval > 0 {
		interval = strconv.Itoa(w.Interval) + "s"
	}
	return render.NewRow(w.ID, w.Name, status, interval, sinceCell(w.LastStatusChange))
}

func workerRows(workers []domain.Worker) []render.Row {
	rows := make([]render.Row, len(workers))
	for i, w := range workers {
		rows[i] = workerRow(w)
	}
	return rows
}

func newWorkerListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			workers, err := clientFn().ListWorkers(cmd.Context())
			if err != nil {
				return err
			}

			if len(workers) == 0 && out.IsTable() {
				out.Success("No workers found")
				return nil
			}
			return out.Print(workerHeaders, workerRows(workers), workers)
		},
	}
}

// workerDetails — worker вместе с его picks (для JSON/YAML вывода).
type workerDetails struct {
	domain.Worker `yaml:",inline"`
	Picks         []domain.Pick `json:"picks" yaml:"picks"`
}

func newWorkerShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show worker details and its picks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()
			ctx := cmd.Context()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			worker, err := client.GetWorker(ctx, id)
			if err != nil {
				return err
			}
			picks, err := client.ListPicks(ctx, id)
			if err != nil {
				return err
			}

			if !out.IsTable() {
				return out.Print(nil, nil, workerDetails{Worker: *worker, Picks: picks})
			}

			if err := out.Table(workerHeaders, []render.Row{workerRow(*worker)}); err != nil {
				return err
			}

			out.Section("Picks:")
			if len(picks) == 0 {
				out.Println("  (none)")
				return nil
			}

			// Plant запрашивается для каждого pick, одинаковые ID — один раз.
			names := make(map[int]render.Cell)
			rows := make([]render.Row, len(picks))
			for i, pick := range picks {
				cell, ok := names[pick.PlantID]
				if !ok {
					plant, err := client.GetPlant(ctx, pick.PlantID)
					switch {
					case errors.Is(err, ErrNotFound):
						cell = render.Styled(fmt.Sprintf("#%d (missing)", pick.PlantID), render.StyleRed)
					case err != nil:
						return err
					default:
						cell = plantLabel(*plant)
					}
					names[pick.PlantID] = cell
				}
				rows[i] = render.NewRow(pick.ID, cell, pick.PackageID)
			}
			return out.Table(pickHeaders, rows)
		},
	}
}

// plantLabel — имя plant с ID, раскрашенное по состоянию.
func plantLabel(p domain.Plant) render.Cell {
	label := fmt.Sprintf("%s (#%d)", p.Name, p.ID)
	switch p.State() {
	case domain.PlantStateAlive:
		return render.Styled(label, render.StyleCyan)
	case domain.PlantStateDead:
		return render.Styled(label, render.StyleMagenta)
	default:
		return render.Text(label)
	}
}

func newWorkerCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var in domain.WorkerInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new worker",
		Long:  "Create a new worker. Values not given as flags are asked on stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()
			p := NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())

			var err error
			if in.Name == "" {
				if in.Name, err = p.String("Name", ""); err != nil {
					return err
				}
			}
			if in.Interval <= 0 {
				if in.Interval, err = p.Int("Interval (seconds)", 60); err != nil {
					return err
				}
			}

			worker, err := client.CreateWorker(cmd.Context(), in)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Worker created: %d", worker.ID))
			return out.Print(workerHeaders, []render.Row{workerRow(*worker)}, worker)
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Worker name")
	cmd.Flags().IntVar(&in.Interval, "interval", 0, "Collection interval in seconds")

	return cmd
}

func newWorkerEditCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a worker in $EDITOR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			worker, err := client.GetWorker(cmd.Context(), id)
			if err != nil {
				return err
			}

			in, err := editYAML(cmd.Context(), "worker", worker.Input())
			if errors.Is(err, ErrEditAborted) {
				out.Success(fmt.Sprintf("Worker %d not changed (%v)", id, err))
				return nil
			}
			if err != nil {
				return err
			}

			worker, err = client.UpdateWorker(cmd.Context(), id, in)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Worker updated: %d", worker.ID))
			return out.Print(workerHeaders, []render.Row{workerRow(*worker)}, worker)
		},
	}
}

func newWorkerDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return deleteEntity(cmd, outputFn(), yes, domain.EntityWorker, id, clientFn().DeleteWorker)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newWorkerStartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "start ID",
		Short: "Start a worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			worker, err := clientFn().StartWorker(cmd.Context(), id)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Worker started: %d", id))
			return out.Print(workerHeaders, []render.Row{workerRow(*worker)}, worker)
		},
	}
}

func newWorkerStopCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "stop ID",
		Short: "Stop a worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			worker, err := clientFn().StopWorker(cmd.Context(), id)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Worker stopped: %d", id))
			return out.Print(workerHeaders, []render.Row{workerRow(*worker)}, worker)
		},
	}
}

func newWorkerPickCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pick",
		Aliases: []string{"picks"},
		Short:   "Manage worker picks",
	}

	cmd.AddCommand(
		newWorkerPickAddCmd(clientFn, outputFn),
		newWorkerPickRemoveCmd(clientFn, outputFn),
	)

	return cmd
}

func newWorkerPickAddCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var in domain.PickInput

	cmd := &cobra.Command{
		Use:   "add WORKER_ID",
		Short: "Assign a plant/package pair to a worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			workerID, err := parseID(args[0])
			if err != nil {
				return err
			}

			pick, err := clientFn().AddPick(cmd.Context(), workerID, in)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Pick added: %d", pick.ID))
			return out.Print(pickHeaders, []render.Row{render.NewRow(pick.ID, pick.PlantID, pick.PackageID)}, pick)
		},
	}

	cmd.Flags().IntVar(&in.PlantID, "plant", 0, "Plant ID (required)")
	cmd.Flags().IntVar(&in.PackageID, "package", 0, "Package ID (required)")
	cmd.MarkFlagRequired("plant")
	cmd.MarkFlagRequired("package")

	return cmd
}

func newWorkerPickRemoveCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "remove WORKER_ID PICK_ID",
		Short: "Remove a pick from a worker",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workerID, err := parseID(args[0])
			if err != nil {
				return err
			}
			pickID, err := parseID(args[1])
			if err != nil {
				return err
			}

			if err := clientFn().RemovePick(cmd.Context(), workerID, pickID); err != nil {
				return err
			}
			outputFn().Success(fmt.Sprintf("Pick removed: %d", pickID))
			return nil
		},
	}
}
