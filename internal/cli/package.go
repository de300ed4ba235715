package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/do-nan-fer/Garden-CLI/internal/domain"
	"github.com/do-nan-fer/Garden-CLI/internal/render"
)

var packageHeaders = []string{"ID", "NAME", "PLANT", "FIELDS"}

// NewPackageCmd создаёт группу команд для управления packages.
func NewPackageCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "package",
		Aliases: []string{"packages", "pkg"},
		Short:   "Manage packages",
	}

	cmd.AddCommand(
		newPackageListCmd(clientFn, outputFn),
		newPackageShowCmd(clientFn, outputFn),
		newPackageCreateCmd(clientFn, outputFn),
		newPackageEditCmd(clientFn, outputFn),
		newPackageDeleteCmd(clientFn, outputFn),
	)

	return cmd
}

func packageRow(p domain.Package) render.Row {
	fields := "-"
	if len(p.Fields) > 0 {
		fields = strings.Join(p.Fields, ",")
	}
	return render.NewRow(p.ID, p.Name, p.PlantID, fields)
}

func packageRows(packages []domain.Package) []render.Row {
	rows := make([]render.Row, len(packages))
	for i, p := range packages {
		rows[i] = packageRow(p)
	}
	return rows
}

func newPackageListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var plantID int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			packages, err := clientFn().ListPackages(cmd.Context(), plantID)
			if err != nil {
				return err
			}

			if len(packages) == 0 && out.IsTable() {
				out.Success("No packages found")
				return nil
			}
			return out.Print(packageHeaders, packageRows(packages), packages)
		},
	}

	cmd.Flags().IntVar(&plantID, "plant", 0, "Only packages of this plant")
	return cmd
}

func newPackageShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show package details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			pkg, err := clientFn().GetPackage(cmd.Context(), id)
			if err != nil {
				return err
			}
			return outputFn().Print(packageHeaders, []render.Row{packageRow(*pkg)}, pkg)
		},
	}
}

func newPackageCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var in domain.PackageInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new package",
		Long:  "Create a new package. Name and plant not given as flags are asked on stdin.",
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
			if in.PlantID <= 0 {
				if in.PlantID, err = p.Int("Plant ID", 0); err != nil {
					return err
				}
			}

			pkg, err := client.CreatePackage(cmd.Context(), in)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Package created: %d", pkg.ID))
			return out.Print(packageHeaders, []render.Row{packageRow(*pkg)}, pkg)
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Package name")
	cmd.Flags().IntVar(&in.PlantID, "plant", 0, "Plant ID")
	cmd.Flags().StringArrayVar(&in.Fields, "field", nil, "Data field to include (repeatable)")

	return cmd
}

func newPackageEditCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a package in $EDITOR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			pkg, err := client.GetPackage(cmd.Context(), id)
			if err != nil {
				return err
			}

			in, err := editYAML(cmd.Context(), "package", pkg.Input())
			if errors.Is(err, ErrEditAborted) {
				out.Success(fmt.Sprintf("Package %d not changed (%v)", id, err))
				return nil
			}
			if err != nil {
				return err
			}

			pkg, err = client.UpdatePackage(cmd.Context(), id, in)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Package updated: %d", pkg.ID))
			return out.Print(packageHeaders, []render.Row{packageRow(*pkg)}, pkg)
		},
	}
}

func newPackageDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return deleteEntity(cmd, outputFn(), yes, domain.EntityPackage, id, clientFn().DeletePackage)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
