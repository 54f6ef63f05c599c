// Package cmd contains all CLI commands for salesctl
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"sales_browser/internal/client"
	"sales_browser/internal/config"
	"sales_browser/internal/logging"
	"sales_browser/internal/output"
)

var (
	cfgFile string
	baseURL string
	verbose bool
	noColor bool
	cfg     *config.Config
	logger  *zap.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "salesctl",
	Short: "Browse and manage sales records",
	Long: `salesctl browses, filters, edits and deletes sales held by a sales REST backend.

Example usage:
  salesctl list --name ana --min-date 2024-01-01   # First page of matching sales
  salesctl list --all                              # Every sale, page by page
  salesctl browse                                  # Interactive list screen
  salesctl notify 7                                # Send the SMS of sale 7
  salesctl serve --seed                            # Local development backend`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .salesctl.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "sales backend URL (overrides api.base_url)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	v := viper.New()
	if baseURL != "" {
		v.Set("api.base_url", baseURL)
	}
	if verbose {
		v.Set("logging.level", "debug")
	}

	var err error
	cfg, err = config.Load(v, cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	logger.Debug("configuration loaded",
		zap.String("base_url", cfg.API.BaseURL),
		zap.Int("page_size", cfg.List.PageSize),
		zap.Duration("debounce", cfg.List.Debounce),
	)
	return nil
}

func newPrinter(cmd *cobra.Command) *output.Printer {
	return output.NewPrinterWithWriters(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ResolveColors(cfg.Output.Colors && !noColor))
}

// newSalesClient returns the API client and a func releasing it.
func newSalesClient() (*client.SalesClient, func()) {
	h := client.NewHTTPClient(client.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, logger)
	return client.NewSalesClient(h), func() { _ = h.Close() }
}

// stayNavigator is the navigator of one-shot commands, which have no
// previous screen.
type stayNavigator struct{}

func (stayNavigator) Back() {}

// yesConfirmer accepts every confirmation.
type yesConfirmer struct{}

func (yesConfirmer) Confirm(string, string) bool { return true }
