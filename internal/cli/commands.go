package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dyike/compdata/config"
	"github.com/dyike/compdata/internal/api"
	"github.com/dyike/compdata/internal/display"
	"github.com/dyike/compdata/internal/logging"
	"github.com/dyike/compdata/models"
	"github.com/dyike/compdata/pkg/app"
)

const shutdownTimeout = 30 * time.Second

// Extra wait on a remote report beyond the server's own request budget.
const remoteMargin = 10 * time.Second

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "compdata",
		Short: "compdata - company research aggregation",
		Long: `compdata gathers a company's profile, recent news, social sentiment and
financial figures into a single report, served over HTTP or printed to the terminal.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				cfg.Debug = true
			}
		},
	}

	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newReportCmd(cfg))
	rootCmd.AddCommand(newConfigCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	return rootCmd
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if host, _ := cmd.Flags().GetString("host"); host != "" {
				cfg.ServerHost = host
			}
			if port, _ := cmd.Flags().GetInt("port"); port != 0 {
				cfg.ServerPort = port
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().String("host", "", "Listen host (overrides SERVER_HOST)")
	cmd.Flags().Int("port", 0, "Listen port (overrides SERVER_PORT)")

	return cmd
}

func runServe(cfg *config.Config) error {
	logger := logging.New(cfg)

	engine, err := app.BuildEngine(context.Background(), cfg, logger)
	if err != nil {
		logger.WithError(err).Error("startup failed")
		return err
	}

	server := api.NewServer(cfg, engine.Aggregator, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", server.Addr).Info("starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.WithField("signal", sig.String()).Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("server forced to shutdown")
		return err
	}

	logger.Info("server exited")
	return nil
}

func newReportCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report [COMPANY]",
		Short: "Build a company report and print it",
		Long: `Build the aggregated report for a company and render it in the terminal.
Without an argument the company name is asked for interactively.
Example: compdata report "Tesla, Inc." --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var company string
			if len(args) == 1 {
				company = args[0]
			} else {
				var err error
				if company, err = PromptForCompany(); err != nil {
					return err
				}
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			server, _ := cmd.Flags().GetString("server")
			return runReport(cmd.Context(), cfg, company, server, asJSON)
		},
	}

	cmd.Flags().Bool("json", false, "Print the raw JSON report")
	cmd.Flags().String("server", "", "Fetch the report from a running server, e.g. http://127.0.0.1:8000")

	return cmd
}

func runReport(ctx context.Context, cfg *config.Config, company, server string, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		report *models.AggregatedReport
		err    error
	)
	if server != "" {
		report, err = NewRemoteClient(server, cfg.RequestBudget()+remoteMargin).Report(ctx, company)
	} else {
		report, err = localReport(ctx, cfg, company)
	}
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return display.Render(os.Stdout, report)
}

func localReport(ctx context.Context, cfg *config.Config, company string) (*models.AggregatedReport, error) {
	logger := logging.New(cfg)
	if !cfg.Debug {
		logger.SetLevel(logrus.WarnLevel)
	}

	engine, err := app.BuildEngine(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return engine.Aggregator.Report(ctx, company)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("compdata %s\n", Version)
		},
	}
}

func newConfigCmd(cfg *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd, cfg)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check that every required credential is set",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "❌ %v\n", err)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✅ configuration is valid")
			return nil
		},
	})

	return configCmd
}

// showConfig prints non-secret settings and which credentials are present.
func showConfig(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return err
	}

	fmt.Fprintln(out, "\n🔌 Credentials:")
	for _, c := range []struct {
		name string
		set  bool
	}{
		{"LLM (" + cfg.LLMProvider + ")", cfg.LLMAPIKey() != ""},
		{"NewsAPI", cfg.NewsAPIKey != ""},
		{"Twitter consumer", cfg.TwitterAPIKey != "" && cfg.TwitterAPISecretKey != ""},
		{"Twitter access", cfg.TwitterAccessToken != "" && cfg.TwitterAccessTokenSecret != ""},
		{"Twitter bearer", cfg.TwitterBearerToken != ""},
		{"Longport", cfg.LongportAppKey != "" && cfg.LongportAppSecret != "" && cfg.LongportAccessToken != ""},
	} {
		status := "❌ not configured"
		if c.set {
			status = "✅ configured"
		}
		fmt.Fprintf(out, "  %-18s %s\n", c.name+":", status)
	}
	return nil
}
