package cmd

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sales_browser/internal/output"
	"sales_browser/internal/sales"
	"sales_browser/internal/screens"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a sale",
	Long: `Delete a sale by id after confirmation.

Examples:
  salesctl delete 7
  salesctl delete 7 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "do not ask for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseSaleID(args[0])
	if err != nil {
		return err
	}

	api, closeAPI := newSalesClient()
	defer closeAPI()

	p := newPrinter(cmd)
	var confirmer screens.Confirmer = yesConfirmer{}
	if !deleteYes {
		confirmer = &promptConfirmer{p: p, in: bufio.NewScanner(cmd.InOrStdin())}
	}

	detail := screens.NewDetail(sales.Sale{ID: id}, screens.Deps{
		API:       api,
		Toaster:   output.Toaster{P: p},
		Navigator: stayNavigator{},
		Confirmer: confirmer,
		Logger:    logger,
	})
	deleted, err := detail.Delete(cmd.Context())
	if err != nil {
		return fmt.Errorf("deleting sale %d: %w", id, err)
	}
	if !deleted {
		p.Info("Cancelled.")
	}
	return nil
}

func parseSaleID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid sale id %q", arg)
	}
	return id, nil
}

// promptConfirmer asks on the terminal; anything but y or yes declines.
type promptConfirmer struct {
	p  *output.Printer
	in *bufio.Scanner
}

func (c *promptConfirmer) Confirm(title, message string) bool {
	fmt.Fprintf(c.p.Out(), "%s: %s [y/N] ", c.p.Bold(title), message)
	if !c.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(c.in.Text()))
	return answer == "y" || answer == "yes"
}
