package cli

import (
	"context"
	"fmt"

	"github.com/JaimeStill/agent-market/internal/client"
	"github.com/JaimeStill/agent-market/internal/deployments"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newDeployCmd(a *app) *cobra.Command {
	var (
		cmd  deployments.StartCommand
		wait bool
	)

	c := &cobra.Command{
		Use:   "deploy <agent-id>",
		Short: "Deploy a submitted agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid agent id: %w", err)
			}
			cmd.AgentID = id
			return a.deploy(c.Context(), cmd, wait)
		},
	}

	c.Flags().StringVar(&cmd.Environment, "env", "production", "deployment environment")
	c.Flags().StringVar(&cmd.Resources.CPU, "cpu", "", "CPU per replica (e.g. 500m, 2)")
	c.Flags().StringVar(&cmd.Resources.Memory, "memory", "", "memory per replica (e.g. 512MiB, 2GiB)")
	c.Flags().IntVar(&cmd.Scaling.MinReplicas, "min", 0, "minimum replicas")
	c.Flags().IntVar(&cmd.Scaling.MaxReplicas, "max", 0, "maximum replicas")
	c.Flags().BoolVar(&wait, "wait", false, "watch the deployment until it finishes")

	return c
}

func (a *app) deploy(ctx context.Context, cmd deployments.StartCommand, wait bool) error {
	d, err := a.client.StartDeployment(ctx, cmd)
	if err != nil {
		return fmt.Errorf("start deployment: %w", err)
	}

	fmt.Fprintf(a.out, "deployment %s %s (%s, %s cpu, %s memory, %d-%d replicas)\n",
		d.ID, renderStatus(d.Status), d.Environment,
		d.Resources.CPU, d.Resources.Memory,
		d.Scaling.MinReplicas, d.Scaling.MaxReplicas,
	)

	if !wait {
		return nil
	}
	return a.watchDeployment(ctx, d.ID)
}

func (a *app) watchDeployment(ctx context.Context, id uuid.UUID) error {
	w := client.NewWatcher(a.client)
	w.Config = a.watch
	w.Logger = a.logger
	w.OnProgress = func(d deployments.Deployment) {
		fmt.Fprintln(a.out, progressLine(d))
	}
	w.OnActive = func(d deployments.Deployment) {
		fmt.Fprintf(a.out, "deployment %s is %s\n", d.ID, renderStatus(d.Status))
	}
	w.OnFailed = func(d deployments.Deployment) {
		reason := "unknown error"
		if d.ErrorMessage != nil {
			reason = *d.ErrorMessage
		}
		fmt.Fprintf(a.out, "deployment %s %s: %s\n", d.ID, renderStatus(d.Status), reason)
	}

	_, err := w.Watch(ctx, id)
	return err
}
