package output

import (
	"bytes"
	"errors"
	"testing"

	"sales_browser/internal/listing"
	"sales_browser/internal/sales"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrinter() (*Printer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	return NewPrinterWithWriters(out, errOut, false), out, errOut
}

func twoSales() []sales.Sale {
	d, _ := sales.ParseDate("2024-06-01")
	return []sales.Sale{
		{ID: 1, Date: d, SellerName: "Ana", Deals: 2, Amount: 100},
		{ID: 2, Date: d, SellerName: "Logan", Deals: 5, Amount: 1234.5},
	}
}

func TestRenderSales_CounterAndRows(t *testing.T) {
	p, out, _ := newTestPrinter()

	err := RenderSales(p, listing.Snapshot{State: listing.Ready, Items: twoSales(), TotalItems: 5, HasMore: true})
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "Showing 2 of 5 items")
	assert.Contains(t, s, "Logan")
	assert.Contains(t, s, "1234.50")
	assert.Contains(t, s, "2024-06-01")
	assert.NotContains(t, s, "All items loaded")
}

func TestRenderSales_AllLoaded(t *testing.T) {
	p, out, _ := newTestPrinter()

	require.NoError(t, RenderSales(p, listing.Snapshot{State: listing.Ready, Items: twoSales(), TotalItems: 2}))
	assert.Contains(t, out.String(), "All items loaded")
}

func TestRenderSales_States(t *testing.T) {
	p, out, errOut := newTestPrinter()

	require.NoError(t, RenderSales(p, listing.Snapshot{State: listing.LoadingInitial, LoadingInitial: true}))
	assert.Contains(t, out.String(), "Loading sales...")

	require.NoError(t, RenderSales(p, listing.Snapshot{State: listing.Error, Err: errors.New("boom")}))
	assert.Contains(t, errOut.String(), "Failed to load sales: boom")

	errOut.Reset()
	require.NoError(t, RenderSales(p, listing.Snapshot{State: listing.Error, Items: twoSales(), TotalItems: 9, HasMore: true, Err: errors.New("timeout")}))
	assert.Contains(t, errOut.String(), "Failed to load more sales: timeout")
	assert.Contains(t, out.String(), "Showing 2 of 9 items")
}

func TestRenderSale(t *testing.T) {
	p, out, _ := newTestPrinter()

	require.NoError(t, RenderSale(p, twoSales()[0]))
	assert.Contains(t, out.String(), "Ana")
	assert.Contains(t, out.String(), "100.00")
}

func TestToaster(t *testing.T) {
	p, out, errOut := newTestPrinter()
	toast := Toaster{P: p}

	toast.Success("saved")
	toast.Error("failed")
	assert.Equal(t, "[OK] saved\n", out.String())
	assert.Equal(t, "[ERROR] failed\n", errOut.String())
}
