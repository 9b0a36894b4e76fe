// Package cli implements marketctl, a command line front end for the agent
// market API. It drives the creation wizard locally and persists through the
// same endpoints the dashboard uses.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JaimeStill/agent-market/internal/client"
	"github.com/JaimeStill/agent-market/internal/session"
	"github.com/JaimeStill/agent-market/pkg/logging"
	"github.com/JaimeStill/agent-market/pkg/poll"
	"github.com/spf13/cobra"
)

const (
	EnvServer = "MARKET_SERVER"
	EnvUser   = "MARKET_USER"

	defaultServer = "http://localhost:8080/api"
)

type app struct {
	server   string
	user     string
	logLevel string

	out    io.Writer
	logger *slog.Logger
	client *client.Client
	watch  poll.Config
}

func newApp(out io.Writer) *app {
	return &app{
		out:   out,
		watch: client.DefaultWatch,
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marketctl",
		Short: "Create and deploy marketplace agents",
		Long:  "marketctl walks an agent definition through the creation wizard, saves or submits it, and deploys it.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&a.server, "server", envOr(EnvServer, defaultServer), "API base URL")
	cmd.PersistentFlags().StringVar(&a.user, "user", os.Getenv(EnvUser), "user id sent as "+session.HeaderUserID)
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(newCreateCmd(a))
	cmd.AddCommand(newDeployCmd(a))
	cmd.AddCommand(newStatusCmd(a))
	cmd.AddCommand(newStepsCmd(a))

	return cmd
}

func (a *app) init() error {
	level, err := logging.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}
	a.logger = logging.NewWriter(os.Stderr, &logging.Config{Level: level, Format: logging.FormatText})

	s, err := session.Parse(a.user)
	if err != nil {
		return fmt.Errorf("%w (use --user or %s)", err, EnvUser)
	}

	a.client = client.New(a.server, s, client.WithLogger(a.logger))
	return nil
}

// Execute runs marketctl with the process arguments.
func Execute() error {
	return newRootCmd(newApp(os.Stdout)).Execute()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
