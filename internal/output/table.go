package output

import (
	"fmt"
	"io"
	"strconv"

	"sales_browser/internal/listing"
	"sales_browser/internal/sales"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Table provides table rendering utilities
type Table struct {
	table  *tablewriter.Table
	header []string
	rows   [][]string
}

// NewTable creates a new table writing to w
func NewTable(w io.Writer, headers []string) *Table {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
		}),
	)

	return &Table{table: table, header: headers}
}

// AddRow adds a row to the table
func (t *Table) AddRow(row []string) {
	t.rows = append(t.rows, row)
}

// Render outputs the table
func (t *Table) Render() error {
	t.table.Header(t.header)
	if err := t.table.Bulk(t.rows); err != nil {
		return err
	}
	return t.table.Render()
}

// FormatAmount renders a currency value with two decimals.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// SaleRow is the list row of one sale.
func SaleRow(s sales.Sale) []string {
	return []string{
		strconv.FormatInt(s.ID, 10),
		s.Date.String(),
		s.SellerName,
		strconv.Itoa(s.Deals),
		FormatAmount(s.Amount),
	}
}

// RenderSales prints the list screen: a counter, the rows and the trailing
// loading or end marker.
func RenderSales(p *Printer, snap listing.Snapshot) error {
	switch {
	case snap.LoadingInitial:
		p.Info("Loading sales...")
		return nil
	case snap.State == listing.Error && len(snap.Items) == 0:
		p.Error("Failed to load sales: %v", snap.Err)
		return nil
	}

	p.Header("Showing %d of %d items", len(snap.Items), snap.TotalItems)
	table := NewTable(p.Out(), []string{"ID", "DATE", "SELLER", "DEALS", "AMOUNT"})
	for _, s := range snap.Items {
		table.AddRow(SaleRow(s))
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("rendering sales: %w", err)
	}

	switch {
	case snap.LoadingMore:
		p.Info("Loading more...")
	case snap.State == listing.Error:
		p.Warning("Failed to load more sales: %v", snap.Err)
	case int64(len(snap.Items)) >= snap.TotalItems || !snap.HasMore:
		p.Success("All items loaded")
	}
	return nil
}

// RenderSale prints the detail of one sale.
func RenderSale(p *Printer, s sales.Sale) error {
	table := NewTable(p.Out(), []string{"FIELD", "VALUE"})
	table.AddRow([]string{"ID", strconv.FormatInt(s.ID, 10)})
	table.AddRow([]string{"Date", s.Date.String()})
	table.AddRow([]string{"Seller", s.SellerName})
	table.AddRow([]string{"Visited", strconv.Itoa(s.Visited)})
	table.AddRow([]string{"Deals", strconv.Itoa(s.Deals)})
	table.AddRow([]string{"Amount", FormatAmount(s.Amount)})
	return table.Render()
}
