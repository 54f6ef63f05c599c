// Package screens holds the presenters behind the sale detail and edit
// screens. Rendering, navigation and transient notifications are supplied by
// the front-end through small interfaces.
package screens

import (
	"context"

	"sales_browser/internal/sales"

	"go.uber.org/zap"
)

// SalesAPI is the part of the sales client the screens call.
type SalesAPI interface {
	UpdateSale(ctx context.Context, sale sales.Sale) (*sales.Sale, error)
	DeleteSale(ctx context.Context, id int64) error
	SendNotification(ctx context.Context, id int64) error
}

// Toaster shows transient notifications.
type Toaster interface {
	Success(msg string)
	Error(msg string)
}

// Navigator moves between screens.
type Navigator interface {
	Back()
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(title, message string) bool
}

// Deps bundles what every screen needs.
type Deps struct {
	API       SalesAPI
	Toaster   Toaster
	Navigator Navigator
	Confirmer Confirmer
	Logger    *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
