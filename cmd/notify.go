package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sales_browser/internal/output"
	"sales_browser/internal/sales"
	"sales_browser/internal/screens"
)

var notifyCmd = &cobra.Command{
	Use:   "notify <id>",
	Short: "Send the SMS notification of a sale",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	id, err := parseSaleID(args[0])
	if err != nil {
		return err
	}

	api, closeAPI := newSalesClient()
	defer closeAPI()

	detail := screens.NewDetail(sales.Sale{ID: id}, screens.Deps{
		API:       api,
		Toaster:   output.Toaster{P: newPrinter(cmd)},
		Navigator: stayNavigator{},
		Confirmer: yesConfirmer{},
		Logger:    logger,
	})
	if err := detail.Notify(cmd.Context()); err != nil {
		return fmt.Errorf("notifying sale %d: %w", id, err)
	}
	return nil
}
