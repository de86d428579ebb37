package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dshills/logicflow/internal/evaluator"
	"github.com/dshills/logicflow/pkg/logging"
	"github.com/spf13/cobra"
)

// NewServeCommand runs the reference evaluation service
func NewServeCommand(opts *Options) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reference evaluation service",
		Long: `Run the reference evaluation service.

The service accepts POST /evaluate with a compiled graph and answers with the
values of its result nodes.

Examples:
  logicflow serve
  logicflow serve --listen 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := opts.Config.Server.Listen
			if listen != "" {
				addr = listen
			}

			logger := logging.Named(opts.Logger, "evaluator")
			ev, err := evaluator.New(logger)
			if err != nil {
				return fmt.Errorf("failed to create evaluator: %w", err)
			}
			server := evaluator.NewServer(ev, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() { errCh <- server.Listen(addr) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides server.listen)")
	return cmd
}
