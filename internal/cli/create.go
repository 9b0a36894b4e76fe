package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/JaimeStill/agent-market/internal/deployments"
	"github.com/JaimeStill/agent-market/internal/wizard"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// agentFile is the YAML layout accepted by create. agent_config is an
// optional go-agents configuration carried into the runtime step.
type agentFile struct {
	wizard.Draft `yaml:",inline"`
	AgentConfig  map[string]any `yaml:"agent_config"`
}

type createOptions struct {
	file   string
	submit bool
	deploy bool
	env    string
	wait   bool
}

func newCreateCmd(a *app) *cobra.Command {
	var opts createOptions

	cmd := &cobra.Command{
		Use:   "create -f agent.yaml",
		Short: "Run an agent definition through the wizard and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.create(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "agent definition (YAML)")
	cmd.Flags().BoolVar(&opts.submit, "submit", false, "submit for review after saving")
	cmd.Flags().BoolVar(&opts.deploy, "deploy", false, "deploy after submitting (implies --submit)")
	cmd.Flags().StringVar(&opts.env, "env", "production", "deployment environment")
	cmd.Flags().BoolVar(&opts.wait, "wait", false, "watch the deployment until it finishes")
	cmd.MarkFlagRequired("file")

	return cmd
}

func loadAgentFile(path string) (wizard.Draft, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return wizard.Draft{}, fmt.Errorf("read agent file: %w", err)
	}

	var f agentFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return wizard.Draft{}, fmt.Errorf("parse agent file: %w", err)
	}

	if len(f.AgentConfig) > 0 {
		cfg, err := json.Marshal(f.AgentConfig)
		if err != nil {
			return wizard.Draft{}, fmt.Errorf("encode agent_config: %w", err)
		}
		f.Runtime.AgentConfig = cfg
	}
	return f.Draft, nil
}

func (a *app) create(ctx context.Context, opts createOptions) error {
	d, err := loadAgentFile(opts.file)
	if err != nil {
		return err
	}

	ctl := wizard.NewController(a.client.Store(), a.client.Session())
	ctl.SetBasicInfo(d.BasicInfo)
	ctl.SetRuntime(d.Runtime)
	ctl.SetIntegration(d.Integration)
	ctl.SetTestCases(d.TestCases)

	blocked, err := a.walk(ctx, ctl)
	if err != nil {
		return err
	}

	submit := opts.submit || opts.deploy
	if blocked != nil && submit {
		return fmt.Errorf("%w: step %q is not complete", wizard.ErrIncomplete, blocked.Title)
	}

	if !submit {
		id, err := ctl.SaveDraft(ctx)
		if err != nil {
			return fmt.Errorf("save draft: %w", err)
		}
		fmt.Fprintf(a.out, "saved draft %s\n", id)
		return nil
	}

	id, err := ctl.Submit(ctx)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fmt.Fprintf(a.out, "submitted agent %s for review\n", id)

	if !opts.deploy {
		return nil
	}
	return a.deploy(ctx, deployments.StartCommand{AgentID: id, Environment: opts.env}, opts.wait)
}

// walk advances the controller as far as the gates allow and returns the
// first blocked step, or nil when the last step was reached.
func (a *app) walk(ctx context.Context, ctl *wizard.Controller) (*wizard.Step, error) {
	for ctl.Current() < wizard.StepCount-1 {
		step := ctl.Steps()[ctl.Current()]

		ok, err := ctl.Advance(ctx)
		if err != nil {
			return nil, fmt.Errorf("save draft entering final step: %w", err)
		}
		if !ok {
			fmt.Fprintf(a.out, "%s %s\n", styleFailed.Render("[ ]"), step.Title)
			return &step, nil
		}
		fmt.Fprintf(a.out, "%s %s\n", styleActive.Render("[x]"), step.Title)
	}
	return nil, nil
}
