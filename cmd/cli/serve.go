package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/giovaniif/e-commerce/pix/cmd/api"
	"github.com/giovaniif/e-commerce/pix/infra/config"
	"github.com/giovaniif/e-commerce/pix/infra/logging"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Pix HTTP API",
		Long: `Start the Pix HTTP API.

Configuration is read from the environment, e.g.:
  EFI_CLIENT_ID=... EFI_CLIENT_SECRET=... EFI_PIX_KEY=... PORT=3000 pix serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			logger, closeLogs := logging.New(cfg.ServiceName, cfg.LokiURL)
			defer closeLogs()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := api.StartServer(ctx, cfg, logger); err != nil {
				logger.Error("pix service stopped", "err", err)
				return err
			}
			return nil
		},
	}
}
