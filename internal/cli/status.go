package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newStatusCmd(a *app) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "status <deployment-id>",
		Short: "Show a deployment and its log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid deployment id: %w", err)
			}

			d, err := a.client.Deployment(cmd.Context(), id)
			if err != nil {
				return err
			}

			row := func(label, value string) {
				fmt.Fprintf(a.out, "%s %s\n", styleLabel.Render(label), value)
			}
			row("Deployment", d.ID.String())
			row("Agent", d.AgentID.String())
			row("Version", d.VersionID)
			row("Environment", d.Environment)
			row("Status", renderStatus(d.Status))
			row("Progress", fmt.Sprintf("%d%%", d.Progress))
			row("Resources", fmt.Sprintf("%s cpu, %s memory", d.Resources.CPU, d.Resources.Memory))
			row("Replicas", fmt.Sprintf("%d-%d", d.Scaling.MinReplicas, d.Scaling.MaxReplicas))
			if d.ErrorMessage != nil {
				row("Error", styleFailed.Render(*d.ErrorMessage))
			}

			fmt.Fprintln(a.out)
			for _, l := range d.Logs {
				fmt.Fprintf(a.out, "%s %s\n", styleMuted.Render(l.Time.Format(time.TimeOnly)), l.Message)
			}

			if wait && !d.Status.Terminal() {
				return a.watchDeployment(cmd.Context(), d.ID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "keep watching until the deployment finishes")
	return cmd
}
