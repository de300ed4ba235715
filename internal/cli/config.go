package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/do-nan-fer/Garden-CLI/internal/config"
)

// NewConfigCmd создаёт группу команд для работы с файлом конфигурации.
func NewConfigCmd(outputFn func() *Output, configFn func() *config.Config, pathFn func() string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change CLI configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "view",
			Short: "Show the effective configuration (file, environment and flags)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				out := outputFn()
				if out.IsTable() {
					return out.YAML(configFn())
				}
				return out.Print(nil, nil, configFn())
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				outputFn().Println(pathFn())
				return nil
			},
		},
		&cobra.Command{
			Use:   "set KEY VALUE",
			Short: "Set a value in the config file",
			Long:  "Set a value in the config file. Keys: " + strings.Join(config.Keys(), ", "),
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := pathFn()

				if err := config.SetInFile(path, args[0], args[1]); err != nil {
					return err
				}

				outputFn().Success(fmt.Sprintf("Set %s in %s", args[0], path))
				return nil
			},
		},
	)

	return cmd
}
