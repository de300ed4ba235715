package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/do-nan-fer/Garden-CLI/internal/domain"
	"github.com/do-nan-fer/Garden-CLI/internal/render"
)

var plantHeaders = []string{"ID", "NAME", "PICKS", "COLLECT", "STATUS", "SINCE"}

// NewPlantCmd создаёт группу команд для управления plants.
func NewPlantCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plant",
		Aliases: []string{"plants"},
		Short:   "Manage plants",
	}

	cmd.AddCommand(
		newPlantListCmd(clientFn, outputFn),
		newPlantShowCmd(clientFn, outputFn),
		newPlantDataCmd(clientFn, outputFn),
		newPlantCreateCmd(clientFn, outputFn),
		newPlantEditCmd(clientFn, outputFn),
		newPlantDeleteCmd(clientFn, outputFn),
	)

	return cmd
}

// NewListPlantsCmd — команда верхнего уровня list-plants, синоним "plant list".
func NewListPlantsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := newPlantListCmd(clientFn, outputFn)
	cmd.Use = "list-plants [ID]"
	return cmd
}

// plantRow строит строку таблицы plants.
//
//	collect=0 → COLLECT "NO",  STATUS "-"
//	collect=1 → COLLECT "YES", STATUS "ALIVE" (cyan) или "DEAD" (magenta)
func plantRow(p domain.Plant) render.Row {
	collect := render.Text("NO")
	status := render.Text("-")

	switch p.State() {
	case domain.PlantStateAlive:
		collect = render.Text("YES")
		status = render.Styled(string(domain.PlantStateAlive), render.StyleCyan)
	case domain.PlantStateDead:
		collect = render.Text("YES")
		status = render.Styled(string(domain.PlantStateDead), render.StyleMagenta)
	}

	return render.NewRow(p.ID, p.Name, p.PicksCount, collect, status, sinceCell(p.LastStatusChange))
}

func plantRows(plants []domain.Plant) []render.Row {
	rows := make([]render.Row, len(plants))
	for i, p := range plants {
		rows[i] = plantRow(p)
	}
	return rows
}

func newPlantListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list [ID]",
		Short: "List plants, or a single plant by ID",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			var plants []domain.Plant
			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				plant, err := client.GetPlant(cmd.Context(), id)
				if err != nil {
					return err
				}
				plants = []domain.Plant{*plant}
			} else {
				var err error
				plants, err = client.ListPlants(cmd.Context())
				if err != nil {
					return err
				}
			}

			if len(plants) == 0 && out.IsTable() {
				out.Success("No plants found")
				return nil
			}
			return out.Print(plantHeaders, plantRows(plants), plants)
		},
	}
}

func newPlantShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show plant details and its packages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			plant, err := client.GetPlant(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !out.IsTable() {
				return out.Print(nil, nil, plant)
			}

			if err := out.Table(plantHeaders, []render.Row{plantRow(*plant)}); err != nil {
				return err
			}

			packages, err := client.ListPackages(cmd.Context(), id)
			if err != nil {
				return err
			}
			out.Section("Packages:")
			if len(packages) == 0 {
				out.Println("  (none)")
				return nil
			}
			return out.Table(packageHeaders, packageRows(packages))
		},
	}
}

func newPlantDataCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "data ID",
		Short: "Show the latest data collected from a plant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			rec, err := clientFn().PlantData(cmd.Context(), id)
			if err != nil {
				return err
			}
			return outputFn().PrintRecord(rec)
		},
	}
}

func newPlantCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var in domain.PlantInput
	var collect bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new plant",
		Long:  "Create a new plant. Values not given as flags are asked on stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()
			p := NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())

			// Интерактивный режим — если не хватает обязательных флагов.
			interactive := in.Name == "" || in.URL == ""

			var err error
			if in.Name == "" {
				if in.Name, err = p.String("Name", ""); err != nil {
					return err
				}
			}
			if in.URL == "" {
				if in.URL, err = p.String("URL", ""); err != nil {
					return err
				}
			}
			if interactive && !cmd.Flags().Changed("collect") {
				if collect, err = p.Bool("Collect data", true); err != nil {
					return err
				}
			}
			in.Collect = boolToInt(collect)

			plant, err := client.CreatePlant(cmd.Context(), in)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Plant created: %d", plant.ID))
			return out.Print(plantHeaders, []render.Row{plantRow(*plant)}, plant)
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Plant name")
	cmd.Flags().StringVar(&in.URL, "url", "", "Plant data URL")
	cmd.Flags().BoolVar(&collect, "collect", true, "Collect data from the plant")

	return cmd
}

func newPlantEditCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a plant in $EDITOR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			plant, err := client.GetPlant(cmd.Context(), id)
			if err != nil {
				return err
			}

			in, err := editYAML(cmd.Context(), "plant", plant.Input())
			if errors.Is(err, ErrEditAborted) {
				out.Success(fmt.Sprintf("Plant %d not changed (%v)", id, err))
				return nil
			}
			if err != nil {
				return err
			}

			plant, err = client.UpdatePlant(cmd.Context(), id, in)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Plant updated: %d", plant.ID))
			return out.Print(plantHeaders, []render.Row{plantRow(*plant)}, plant)
		},
	}
}

func newPlantDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a plant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return deleteEntity(cmd, outputFn(), yes, domain.EntityPlant, id, clientFn().DeletePlant)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
