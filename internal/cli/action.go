package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/do-nan-fer/Garden-CLI/internal/domain"
	"github.com/do-nan-fer/Garden-CLI/internal/render"
)

var actionHeaders = []string{"ID", "NAME", "WORKER", "COMMAND", "LAST RUN"}

// NewActionCmd создаёт группу команд для управления actions.
func NewActionCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "action",
		Aliases: []string{"actions"},
		Short:   "Manage and run actions",
	}

	cmd.AddCommand(
		newActionListCmd(clientFn, outputFn),
		newActionShowCmd(clientFn, outputFn),
		newActionCreateCmd(clientFn, outputFn),
		newActionEditCmd(clientFn, outputFn),
		newActionDeleteCmd(clientFn, outputFn),
		newActionRunCmd(clientFn, outputFn),
	)

	return cmd
}

func actionRow(a domain.Action) render.Row {
	var worker any = "any"
	if a.WorkerID > 0 {
		worker = a.WorkerID
	}
	return render.NewRow(a.ID, a.Name, worker, a.Command, sinceCell(a.LastRunAt))
}

func newActionListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			actions, err := clientFn().ListActions(cmd.Context())
			if err != nil {
				return err
			}

			if len(actions) == 0 && out.IsTable() {
				out.Success("No actions found")
				return nil
			}

			rows := make([]render.Row, len(actions))
			for i, a := range actions {
				rows[i] = actionRow(a)
			}
			return out.Print(actionHeaders, rows, actions)
		},
	}
}

func newActionShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show action details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			action, err := clientFn().GetAction(cmd.Context(), id)
			if err != nil {
				return err
			}
			if err := out.Print(actionHeaders, []render.Row{actionRow(*action)}, action); err != nil {
				return err
			}
			if out.IsTable() && action.Description != "" {
				out.Section("Description:")
				out.Println(action.Description)
			}
			return nil
		},
	}
}

func newActionCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var in domain.ActionInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new action",
		Long:  "Create a new action. Name and command not given as flags are asked on stdin.",
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
			if in.Command == "" {
				if in.Command, err = p.String("Command", ""); err != nil {
					return err
				}
			}

			action, err := client.CreateAction(cmd.Context(), in)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Action created: %d", action.ID))
			return out.Print(actionHeaders, []render.Row{actionRow(*action)}, action)
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "Action name")
	cmd.Flags().StringVar(&in.Command, "command", "", "Command executed by the backend")
	cmd.Flags().StringVar(&in.Description, "description", "", "Action description")
	cmd.Flags().IntVar(&in.WorkerID, "worker", 0, "Worker ID to run on (0 means any)")

	return cmd
}

func newActionEditCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "edit ID",
		Short: "Edit an action in $EDITOR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			action, err := client.GetAction(cmd.Context(), id)
			if err != nil {
				return err
			}

			in, err := editYAML(cmd.Context(), "action", action.Input())
			if errors.Is(err, ErrEditAborted) {
				out.Success(fmt.Sprintf("Action %d not changed (%v)", id, err))
				return nil
			}
			if err != nil {
				return err
			}

			action, err = client.UpdateAction(cmd.Context(), id, in)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Action updated: %d", action.ID))
			return out.Print(actionHeaders, []render.Row{actionRow(*action)}, action)
		},
	}
}

func newActionDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return deleteEntity(cmd, outputFn(), yes, domain.EntityAction, id, clientFn().DeleteAction)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newActionRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var rawArgs []string

	cmd := &cobra.Command{
		Use:   "run ID",
		Short: "Run an action and show its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			actionArgs, err := parseKeyValues(rawArgs)
			if err != nil {
				return err
			}

			rec, err := clientFn().RunAction(cmd.Context(), id, actionArgs)
			if err != nil {
				return err
			}
			return outputFn().PrintRecord(rec)
		},
	}

	cmd.Flags().StringArrayVar(&rawArgs, "arg", nil, "Action argument as key=value (repeatable)")
	return cmd
}
