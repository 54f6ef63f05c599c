package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sales_browser/internal/listing"
	"sales_browser/internal/output"
	"sales_browser/internal/sales"
)

var (
	listName    string
	listMinDate string
	listMaxDate string
	listPages   int
	listAll     bool
	listJSON    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List sales page by page",
	Long: `List sales sorted by amount, highest first.

The first page is always fetched; --pages and --all keep loading pages the
way the list screen does when scrolled to the end.

Examples:
  salesctl list
  salesctl list --name "bruce" --pages 3
  salesctl list --min-date 2024-01-01 --max-date 2024-06-30 --all --json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listName, "name", "", "seller name contains (case-insensitive)")
	listCmd.Flags().StringVar(&listMinDate, "min-date", "", "earliest sale date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listMaxDate, "max-date", "", "latest sale date (YYYY-MM-DD)")
	listCmd.Flags().IntVar(&listPages, "pages", 1, "number of pages to load")
	listCmd.Flags().BoolVar(&listAll, "all", false, "load every page")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print the loaded sales as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	filters := sales.Filters{Name: listName, MinDate: listMinDate, MaxDate: listMaxDate}
	if err := filters.Validate(); err != nil {
		return err
	}
	if listPages < 1 && !listAll {
		return fmt.Errorf("--pages must be at least 1")
	}

	api, closeAPI := newSalesClient()
	defer closeAPI()

	ctrl := listing.New(api,
		listing.WithPageSize(cfg.List.PageSize),
		listing.WithFilters(filters),
		listing.WithLogger(logger),
	)
	defer ctrl.Close()

	p := newPrinter(cmd)
	ctx := cmd.Context()

	if err := ctrl.Start(ctx); err != nil {
		_ = output.RenderSales(p, ctrl.Snapshot())
		return fmt.Errorf("listing sales: %w", err)
	}

	for loaded := 1; listAll || loaded < listPages; loaded++ {
		err := ctrl.LoadMore(ctx)
		if errors.Is(err, listing.ErrNoMore) {
			break
		}
		if err != nil {
			logger.Debug("stopped loading pages", zap.Int("pages", loaded), zap.Error(err))
			break
		}
	}

	snap := ctrl.Snapshot()
	if listJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(snap.Items)
	}
	if err := output.RenderSales(p, snap); err != nil {
		return err
	}
	if snap.State == listing.Error {
		return fmt.Errorf("loading more sales: %w", snap.Err)
	}
	return nil
}
