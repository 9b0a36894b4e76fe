package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStepsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the agent creation wizard steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := a.client.Steps(cmd.Context())
			if err != nil {
				return err
			}
			for i, s := range steps {
				fmt.Fprintf(a.out, "%d. %s %s\n", i+1, styleLabel.Render(s.ID), s.Title)
			}
			return nil
		},
	}
}
