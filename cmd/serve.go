package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sales_browser/api"
)

const shutdownTimeout = 5 * time.Second

var (
	serveAddr      string
	serveSeed      bool
	serveSeedCount int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an in-memory sales backend",
	Long: `Run the sales REST backend on in-memory storage, for development and demos.

Examples:
  salesctl serve
  salesctl serve --addr :8081 --seed --seed-count 200`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "fill the store with generated sales")
	serveCmd.Flags().IntVar(&serveSeedCount, "seed-count", 0, "number of generated sales (overrides server.seed_count)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	count := cfg.Server.SeedCount
	if serveSeedCount > 0 {
		count = serveSeedCount
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, svc := api.NewServer(logger)
	if serveSeed || cfg.Server.Seed {
		if err := svc.Seed(count, time.Now().UnixNano()); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("sales backend listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	newPrinter(cmd).Info("Serving sales on %s (Ctrl+C to stop)", addr)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error trying to start server: %w", err)
		}
		return nil
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	logger.Info("sales backend stopped")
	return nil
}
