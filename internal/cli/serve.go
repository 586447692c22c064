package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ketoprak/askandsign/adapters/postgres"
	"github.com/ketoprak/askandsign/adapters/sqlite"
	"github.com/ketoprak/askandsign/domain/repositories"
	"github.com/ketoprak/askandsign/internal/api"
	"github.com/ketoprak/askandsign/internal/auth"
	"github.com/ketoprak/askandsign/internal/config"
	"github.com/ketoprak/askandsign/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the SQL query service (POST /query)",
	Long: `serve bootstraps the employees table and exposes POST /query, which executes
any SQL statement it receives. Turn on query.read_only or set query.auth_secret
before exposing it beyond localhost.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if serveAddr != "" {
			cfg.Query.Addr = serveAddr
		}

		exec, err := openExecutor(ctx, cfg.Query, cfg.Query.ReadOnly)
		if err != nil {
			return err
		}
		defer exec.Close()

		if err := exec.Bootstrap(ctx); err != nil {
			return fmt.Errorf("bootstrapping database: %w", err)
		}

		var signer *auth.Signer
		if cfg.Query.AuthSecret != "" {
			signer = auth.NewSigner(cfg.Query.AuthSecret)
		}
		if signer == nil && !cfg.Query.ReadOnly {
			logger.Warn("Query service executes arbitrary SQL without authentication; set query.read_only or query.auth_secret",
				zap.String("addr", cfg.Query.Addr))
		}

		e := api.NewServer(logger)
		api.InitQueryRoutes(e, usecase.NewQueryService(exec, logger), signer, logger)

		return runServer(ctx, e, cfg.Query.Addr, logger)
	},
}

var initdbCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create and seed the employees table",
	RunE: func(cmd *cobra.Command, args []string) error {
		exec, err := openExecutor(cmd.Context(), cfg.Query, false)
		if err != nil {
			return err
		}
		defer exec.Close()

		if err := exec.Bootstrap(cmd.Context()); err != nil {
			return fmt.Errorf("bootstrapping database: %w", err)
		}
		pterm.Success.Printfln("Database ready: %s", redactDSN(cfg.Query))
		return nil
	},
}

// openExecutor picks the Postgres or SQLite backend from the DSN.
func openExecutor(ctx context.Context, qc config.QueryConfig, readOnly bool) (repositories.QueryExecutor, error) {
	switch {
	case qc.Postgres():
		return postgres.New(ctx, qc.DSN, readOnly, logger)
	case qc.DSN == ":memory:":
		return sqlite.NewMemoryExecutor(logger, sqlite.Options{ReadOnly: readOnly})
	default:
		return sqlite.NewFileExecutor(qc.DSN, logger, sqlite.Options{ReadOnly: readOnly})
	}
}

func redactDSN(qc config.QueryConfig) string {
	if qc.Postgres() {
		return "postgres"
	}
	return qc.DSN
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides query.addr)")
	rootCmd.AddCommand(serveCmd, initdbCmd)
}
