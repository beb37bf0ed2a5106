package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezonia/billing/internal/billing"
	"github.com/rezonia/billing/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
	autoMigrate  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for clients and invoices.

The API provides endpoints for:
  - GET    /api/v1/clients                   - List clients
  - POST   /api/v1/clients                   - Create client
  - GET    /api/v1/clients/:id               - Get client
  - PUT    /api/v1/clients/:id               - Update client
  - DELETE /api/v1/clients/:id               - Delete client without invoices
  - GET    /api/v1/invoices                  - List invoices
  - POST   /api/v1/invoices                  - Create invoice
  - GET    /api/v1/invoices/:id              - Get invoice
  - GET    /api/v1/invoices/:id/export       - Download invoice as JSON
  - GET    /api/v1/invoices/client/:clientId - Invoices of a client
  - GET    /api/v1/invoices/date/:date       - Invoices of a day
  - GET    /api/v1/invoices/period?from=&to= - Invoices of a period
  - GET    /health                           - Health check

Examples:
  # Start server on default address
  billing serve

  # Start on custom address in debug mode
  billing serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (env: BILLING_ADDR)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode (env: BILLING_DEBUG)")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 0, "HTTP read timeout (env: BILLING_READ_TIMEOUT)")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 0, "HTTP write timeout (env: BILLING_WRITE_TIMEOUT)")
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", true, "Migrate the schema before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	config := &server.Config{
		Address:        cfg.Addr,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		RequestTimeout: cfg.RequestTimeout,
		Debug:          cfg.Debug,
	}
	if flags.Changed("address") {
		config.Address = serverAddr
	}
	if flags.Changed("debug") {
		config.Debug = serverDebug
	}
	if flags.Changed("read-timeout") {
		config.ReadTimeout = readTimeout
	}
	if flags.Changed("write-timeout") {
		config.WriteTimeout = writeTimeout
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if autoMigrate {
		if err := st.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	svc := billing.NewService(st,
		billing.WithRates(cfg.Rates),
		billing.WithLogger(logger.Named("billing")),
		billing.WithMaxRetries(cfg.MaxRetries),
	)

	srv := server.NewServer(config, svc, logger.Named("http"),
		server.WithHealthCheck(func(ctx context.Context) error {
			return st.Ping(ctx)
		}),
	)

	logger.Info("starting server",
		zap.String("address", config.Address),
		zap.String("db_driver", cfg.DBDriver),
		zap.String("vat_rates", cfg.Rates.String()),
	)

	return srv.Run(ctx)
}
