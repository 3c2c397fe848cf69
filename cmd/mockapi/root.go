package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mockapi/internal/config"
	"mockapi/internal/logging"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

type app struct {
	configPath string
	debug      bool

	cfg      *config.Config
	logger   zerolog.Logger
	logClose io.Closer

	stderr io.Writer
	// notify derives the serve context; replaced in tests.
	notify func(context.Context) (context.Context, context.CancelFunc)
	// ready is called with the bound address once a server is listening.
	ready func(addr string)
}

func newApp() *app {
	return &app{
		stderr: os.Stderr,
		notify: func(ctx context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "mockapi",
		Short:         "Mock simulation and student HTTP services",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger, a.logClose = logging.Setup(cfg.Logging, a.debug, a.stderr)
			if a.configPath != "" {
				a.logger.Debug().Str("path", a.configPath).Msg("configuration loaded")
			}
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.logClose != nil {
				return a.logClose.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to configuration file")
	root.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "Enable debug logging")

	root.AddCommand(newServeCmd(a), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "mockapi %s\n", version)
			return err
		},
	}
}
