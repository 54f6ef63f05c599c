package sales

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, *Sale) error { return errors.New("channel down") }

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc := NewService(NewLocalStorage(), nil, zaptest.NewLogger(t))
	svc.now = func() time.Time { return time.Date(2024, 6, 30, 15, 0, 0, 0, time.UTC) }
	return svc
}

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func seedSales(t *testing.T, svc *Service) {
	t.Helper()
	rows := []Sale{
		{Date: mustDate(t, "2024-06-01"), SellerName: "Anakin", Deals: 2, Amount: 100, Visited: 10},
		{Date: mustDate(t, "2024-06-10"), SellerName: "Logan", Deals: 5, Amount: 300, Visited: 20},
		{Date: mustDate(t, "2024-06-20"), SellerName: "Padmé", Deals: 1, Amount: 200, Visited: 5},
		{Date: mustDate(t, "2024-05-01"), SellerName: "anakin", Deals: 3, Amount: 50, Visited: 8},
		{Date: mustDate(t, "2024-07-15"), SellerName: "Thor", Deals: 9, Amount: 999, Visited: 30},
	}
	for _, r := range rows {
		_, err := svc.CreateSale(r)
		require.NoError(t, err)
	}
}

// TestNewService verifies service initialization.
func TestNewService(t *testing.T) {
	svc := NewService(NewLocalStorage(), nil, zaptest.NewLogger(t))

	if svc == nil {
		t.Fatal("NewService returned nil")
	}
	assert.NotNil(t, svc.storage, "Service storage was not initialized")
	assert.NotNil(t, svc.logger, "Service logger was not initialized")
	assert.NotNil(t, svc.notifier, "Service notifier should default to the log notifier")
}

func TestFindSales_DefaultsToAmountDescUpToToday(t *testing.T) {
	svc := newTestService(t)
	seedSales(t, svc)

	page, err := svc.FindSales(Query{Page: 0, Size: 10})
	require.NoError(t, err)

	// the July sale is after "today"
	require.Len(t, page.Content, 4)
	assert.Equal(t, int64(4), page.TotalElements)
	assert.Equal(t, []float64{300, 200, 100, 50}, amounts(page.Content))
	assert.True(t, page.First)
	assert.True(t, page.Last)
}

func TestFindSales_NameIsCaseInsensitiveSubstring(t *testing.T) {
	svc := newTestService(t)
	seedSales(t, svc)

	page, err := svc.FindSales(Query{Size: 10, Filters: Filters{Name: "AKI"}})
	require.NoError(t, err)

	assert.Equal(t, int64(2), page.TotalElements)
	for _, s := range page.Content {
		assert.Contains(t, []string{"Anakin", "anakin"}, s.SellerName)
	}
}

func TestFindSales_DateBoundsAreInclusive(t *testing.T) {
	svc := newTestService(t)
	seedSales(t, svc)

	page, err := svc.FindSales(Query{Size: 10, Filters: Filters{MinDate: "2024-06-10", MaxDate: "2024-07-15"}})
	require.NoError(t, err)

	assert.Equal(t, []float64{999, 300, 200}, amounts(page.Content))
}

func TestFindSales_Pagination(t *testing.T) {
	svc := newTestService(t)
	seedSales(t, svc)

	first, err := svc.FindSales(Query{Page: 0, Size: 3})
	require.NoError(t, err)
	assert.Len(t, first.Content, 3)
	assert.False(t, first.Last)
	assert.Equal(t, 2, first.TotalPages)

	second, err := svc.FindSales(Query{Page: 1, Size: 3})
	require.NoError(t, err)
	assert.Len(t, second.Content, 1)
	assert.True(t, second.Last)
	assert.False(t, second.First)

	beyond, err := svc.FindSales(Query{Page: 5, Size: 3})
	require.NoError(t, err)
	assert.True(t, beyond.Empty)
	assert.True(t, beyond.Last)

	var huge *Page
	require.NotPanics(t, func() {
		huge, err = svc.FindSales(Query{Page: math.MaxInt64 / 10, Size: 20})
	})
	require.NoError(t, err)
	assert.True(t, huge.Empty)
	assert.True(t, huge.Last)
	assert.Equal(t, first.TotalElements, huge.TotalElements)
}

func TestFindSales_InvalidInput(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.FindSales(Query{Size: 10, Filters: Filters{MinDate: "06/01/2024"}})
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = svc.FindSales(Query{Size: 10, Sort: "visited,desc"})
	assert.ErrorIs(t, err, ErrInvalidSort)

	_, err = svc.FindSales(Query{Size: 10, Sort: "amount,sideways"})
	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestFindSales_SortAscendingByDate(t *testing.T) {
	svc := newTestService(t)
	seedSales(t, svc)

	page, err := svc.FindSales(Query{Size: 10, Sort: "date,asc"})
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 100, 300, 200}, amounts(page.Content))
}

func TestCreateSale_Validation(t *testing.T) {
	svc := newTestService(t)

	cases := map[string]Sale{
		"blank seller":    {Date: mustDate(t, "2024-06-01"), SellerName: "  ", Amount: 1},
		"missing date":    {SellerName: "Ana", Amount: 1},
		"negative deals":  {Date: mustDate(t, "2024-06-01"), SellerName: "Ana", Deals: -1},
		"negative amount": {Date: mustDate(t, "2024-06-01"), SellerName: "Ana", Amount: -0.5},
	}
	for name, sale := range cases {
		t.Run(name, func(t *testing.T) {
			created, err := svc.CreateSale(sale)
			assert.ErrorIs(t, err, ErrInvalidSale)
			assert.Nil(t, created)
		})
	}
}

func TestCreateSale_AssignsID(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateSale(Sale{ID: 42, Date: mustDate(t, "2024-06-01"), SellerName: "Ana", Deals: 2, Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID, "server must assign the id")

	stored, err := svc.storage.Read(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", stored.SellerName)
}

func TestUpdateSale(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.CreateSale(Sale{Date: mustDate(t, "2024-06-01"), SellerName: "Ana", Deals: 2, Amount: 100})
	require.NoError(t, err)

	changed := *created
	changed.Deals = 5
	updated, err := svc.UpdateSale(created.ID, changed)
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Deals)

	stored, err := svc.storage.Read(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Deals)

	_, err = svc.UpdateSale(999, changed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSale(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.CreateSale(Sale{Date: mustDate(t, "2024-06-01"), SellerName: "Ana", Amount: 100})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSale(created.ID))
	assert.ErrorIs(t, svc.DeleteSale(created.ID), ErrNotFound)
}

func TestSendNotification(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.CreateSale(Sale{Date: mustDate(t, "2024-06-01"), SellerName: "Ana", Amount: 100})
	require.NoError(t, err)

	assert.NoError(t, svc.SendNotification(context.Background(), created.ID))
	assert.ErrorIs(t, svc.SendNotification(context.Background(), 404), ErrNotFound)

	svc.notifier = failingNotifier{}
	err = svc.SendNotification(context.Background(), created.ID)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSeed(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.Seed(25, 1))

	all, err := svc.storage.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 25)
	for _, s := range all {
		assert.NoError(t, validateSale(s))
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalJSON([]byte(`"2024-06-01"`)))
	assert.Equal(t, "2024-06-01", d.String())

	require.NoError(t, d.UnmarshalJSON([]byte(`"2024-06-01T23:10:00Z"`)))
	assert.Equal(t, "2024-06-01", d.String())

	assert.Error(t, d.UnmarshalJSON([]byte(`"yesterday"`)))

	b, err := mustDate(t, "2024-01-15").MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-15"`, string(b))
}

func amounts(sales []Sale) []float64 {
	out := make([]float64, len(sales))
	for i, s := range sales {
		out[i] = s.Amount
	}
	return out
}
