package screens

import (
	"context"
	"fmt"
	"sync"

	"sales_browser/internal/sales"

	"go.uber.org/zap"
)

// Detail presents one sale handed over from the list; it is never refetched.
type Detail struct {
	deps   Deps
	logger *zap.Logger

	// OnSaved is called with the updated sale after a successful edit.
	OnSaved func(sales.Sale)
	// OnDeleted is called with the id after the server accepted a delete.
	OnDeleted func(id int64)

	mu   sync.Mutex
	sale sales.Sale
}

// NewDetail creates the presenter of sale.
func NewDetail(sale sales.Sale, deps Deps) *Detail {
	return &Detail{
		deps:   deps,
		logger: deps.logger(),
		sale:   sale,
	}
}

// Sale returns the sale currently shown.
func (d *Detail) Sale() sales.Sale {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sale
}

func (d *Detail) setSale(s sales.Sale) {
	d.mu.Lock()
	d.sale = s
	d.mu.Unlock()
}

// Edit opens the edit form pre-populated with the shown sale. A successful
// save replaces the shown sale.
func (d *Detail) Edit() *EditForm {
	return NewEditForm(d.Sale(), d.deps, func(updated sales.Sale) {
		d.setSale(updated)
		if d.OnSaved != nil {
			d.OnSaved(updated)
		}
	})
}

// Delete asks for confirmation and deletes the sale. It reports whether the
// sale was deleted; a declined confirmation is not an error.
func (d *Detail) Delete(ctx context.Context) (bool, error) {
	sale := d.Sale()
	msg := fmt.Sprintf("Delete sale %d? This cannot be undone.", sale.ID)
	if sale.SellerName != "" {
		msg = fmt.Sprintf("Delete sale %d of %s? This cannot be undone.", sale.ID, sale.SellerName)
	}
	if !d.deps.Confirmer.Confirm("Delete sale", msg) {
		return false, nil
	}

	if err := d.deps.API.DeleteSale(ctx, sale.ID); err != nil {
		d.logger.Error("failed to delete sale", zap.Int64("sale_id", sale.ID), zap.Error(err))
		d.deps.Toaster.Error("Failed to delete the sale!")
		return false, err
	}

	d.deps.Toaster.Success("Sale deleted.")
	if d.OnDeleted != nil {
		d.OnDeleted(sale.ID)
	}
	d.deps.Navigator.Back()
	return true, nil
}

// Notify sends the sale's SMS notification.
func (d *Detail) Notify(ctx context.Context) error {
	id := d.Sale().ID
	if err := d.deps.API.SendNotification(ctx, id); err != nil {
		d.logger.Error("failed to send notification", zap.Int64("sale_id", id), zap.Error(err))
		d.deps.Toaster.Error("Failed to send SMS.")
		return err
	}
	d.deps.Toaster.Success("SMS sent successfully!")
	return nil
}
