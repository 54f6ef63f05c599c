package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sales_browser/internal/output"
	"sales_browser/internal/sales"
)

var (
	createSeller  string
	createDeals   int
	createAmount  float64
	createVisited int
	createDate    string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a sale",
	Long: `Create a sale on the backend and print it with its new id.

Examples:
  salesctl create --seller "Bruce Wayne" --deals 3 --amount 1500.50
  salesctl create --seller Logan --visited 40 --deals 12 --amount 980 --date 2024-05-02`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVar(&createSeller, "seller", "", "seller name (required)")
	createCmd.Flags().IntVar(&createDeals, "deals", 0, "closed deals")
	createCmd.Flags().Float64Var(&createAmount, "amount", 0, "sale amount")
	createCmd.Flags().IntVar(&createVisited, "visited", 0, "visited customers")
	createCmd.Flags().StringVar(&createDate, "date", "", "sale date (YYYY-MM-DD, default today)")
	_ = createCmd.MarkFlagRequired("seller")
}

func runCreate(cmd *cobra.Command, args []string) error {
	date := sales.NewDate(time.Now())
	if createDate != "" {
		d, err := sales.ParseDate(createDate)
		if err != nil {
			return fmt.Errorf("invalid --date: %w", err)
		}
		date = d
	}

	api, closeAPI := newSalesClient()
	defer closeAPI()

	created, err := api.CreateSale(cmd.Context(), sales.Sale{
		Date:       date,
		SellerName: createSeller,
		Visited:    createVisited,
		Deals:      createDeals,
		Amount:     createAmount,
	})
	if err != nil {
		return fmt.Errorf("creating sale: %w", err)
	}

	p := newPrinter(cmd)
	p.Success("Sale %d created.", created.ID)
	return output.RenderSale(p, *created)
}
