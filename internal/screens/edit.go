package screens

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"sales_browser/internal/sales"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// editInput is the raw text of the edit form.
type editInput struct {
	SellerName string `json:"sellerName" validate:"required,max=120"`
	Deals      string `json:"deals" validate:"required,number"`
	Amount     string `json:"amount" validate:"required,numeric"`
}

// ValidationError lists the form fields that could not be accepted.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// EditForm holds editable copies of a sale's fields as typed by the user.
type EditForm struct {
	SellerName string
	Deals      string
	Amount     string

	original sales.Sale
	deps     Deps
	logger   *zap.Logger
	onSave   func(sales.Sale)
}

// NewEditForm pre-populates a form from sale. onSave, if set, receives the
// updated record after the server accepted it.
func NewEditForm(sale sales.Sale, deps Deps, onSave func(sales.Sale)) *EditForm {
	return &EditForm{
		SellerName: sale.SellerName,
		Deals:      strconv.Itoa(sale.Deals),
		Amount:     strconv.FormatFloat(sale.Amount, 'f', -1, 64),
		original:   sale,
		deps:       deps,
		logger:     deps.logger(),
		onSave:     onSave,
	}
}

// Original returns the sale the form was opened with.
func (f *EditForm) Original() sales.Sale {
	return f.original
}

// Validate parses the form and returns the original sale with the edited
// fields merged in. Decimal commas are accepted in the amount.
func (f *EditForm) Validate() (sales.Sale, error) {
	in := editInput{
		SellerName: strings.TrimSpace(f.SellerName),
		Deals:      strings.TrimSpace(f.Deals),
		Amount:     strings.ReplaceAll(strings.TrimSpace(f.Amount), ",", "."),
	}

	verr := &ValidationError{Fields: map[string]string{}}
	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return sales.Sale{}, err
		}
		for _, fe := range fieldErrs {
			verr.Fields[fe.Field()] = describe(fe)
		}
	}

	sale := f.original
	sale.SellerName = in.SellerName

	if _, bad := verr.Fields["deals"]; !bad {
		deals, err := strconv.Atoi(in.Deals)
		if err != nil {
			verr.Fields["deals"] = "must be a whole number"
		}
		sale.Deals = deals
	}
	if _, bad := verr.Fields["amount"]; !bad {
		amount, err := strconv.ParseFloat(in.Amount, 64)
		switch {
		case err != nil:
			verr.Fields["amount"] = "must be a number"
		case validate.Var(amount, "gte=0") != nil:
			verr.Fields["amount"] = "must not be negative"
		}
		sale.Amount = amount
	}

	if len(verr.Fields) > 0 {
		return sales.Sale{}, verr
	}
	return sale, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "number":
		return "must be a whole number"
	case "numeric":
		return "must be a number"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return "is invalid"
}

// Save validates the form and pushes the merged sale to the server. Nothing
// is sent when validation fails.
func (f *EditForm) Save(ctx context.Context) (*sales.Sale, error) {
	sale, err := f.Validate()
	if err != nil {
		f.deps.Toaster.Error("Check the sale fields.")
		return nil, err
	}

	updated, err := f.deps.API.UpdateSale(ctx, sale)
	if err != nil {
		f.logger.Error("failed to update sale", zap.Int64("sale_id", sale.ID), zap.Error(err))
		f.deps.Toaster.Error("Failed to update the sale!")
		return nil, err
	}
	if updated == nil {
		updated = &sale
	}

	if f.onSave != nil {
		f.onSave(*updated)
	}
	f.deps.Toaster.Success("Sale updated successfully!")
	f.deps.Navigator.Back()
	return updated, nil
}

// Cancel leaves the form without saving.
func (f *EditForm) Cancel() {
	f.deps.Navigator.Back()
}
