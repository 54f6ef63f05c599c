package sales

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidSale is returned when a sale payload fails validation.
var ErrInvalidSale = errors.New("invalid sale")

// ErrInvalidFilter is returned for malformed date bounds.
var ErrInvalidFilter = errors.New("invalid filter")

// ErrInvalidSort is returned for an unsupported sort expression.
var ErrInvalidSort = errors.New("invalid sort")

const (
	defaultPageSize = 20
	maxPageSize     = 2000
	// unbounded lower date when no minDate is given
	defaultLookbackDays = 10000
)

// Notifier delivers the out-of-band notification of a sale.
type Notifier interface {
	Notify(ctx context.Context, sale *Sale) error
}

// LogNotifier is a Notifier that only records the message it would send.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, sale *Sale) error {
	n.logger.Info("sms sent",
		zap.Int64("sale_id", sale.ID),
		zap.String("message", fmt.Sprintf("Seller %s had a total of %.2f in %s", sale.SellerName, sale.Amount, sale.Date)),
	)
	return nil
}

// Service provides high-level sales management operations on a Storage backend.
type Service struct {
	storage  Storage
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new Service.
func NewService(storage Storage, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}

	return &Service{
		storage:  storage,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// FindSales returns one page of sales between the filter dates whose seller
// name contains the filter name, ordered by q.Sort.
func (s *Service) FindSales(q Query) (*Page, error) {
	today := NewDate(s.now())
	minDate := Date{today.AddDate(0, 0, -defaultLookbackDays)}
	maxDate := today

	var err error
	if q.Filters.MinDate != "" {
		if minDate, err = ParseDate(q.Filters.MinDate); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
	}
	if q.Filters.MaxDate != "" {
		if maxDate, err = ParseDate(q.Filters.MaxDate); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
	}

	less, err := sortFunc(q.Sort)
	if err != nil {
		return nil, err
	}

	allSales, err := s.storage.GetAll()
	if err != nil {
		s.logger.Error("failed to get all sales from storage", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve sales: %w", err)
	}

	name := strings.ToLower(q.Filters.Name)
	filtered := make([]Sale, 0, len(allSales))
	for _, sale := range allSales {
		if sale.Date.Before(minDate.Time) || sale.Date.After(maxDate.Time) {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(sale.SellerName), name) {
			continue
		}
		filtered = append(filtered, *sale)
	}
	sort.SliceStable(filtered, func(i, j int) bool { return less(filtered[i], filtered[j]) })

	page := paginate(filtered, q.Page, q.Size)

	s.logger.Debug("sales search completed",
		zap.String("min_date", minDate.String()),
		zap.String("max_date", maxDate.String()),
		zap.String("name_filter", q.Filters.Name),
		zap.Int("page", page.Number),
		zap.Int("results_count", page.NumberOfElements),
		zap.Int64("total", page.TotalElements),
	)

	return page, nil
}

func paginate(all []Sale, number, size int) *Page {
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	if number < 0 {
		number = 0
	}

	total := len(all)
	totalPages := (total + size - 1) / size
	start := total
	if number <= total/size {
		start = min(number*size, total)
	}
	end := start + size
	if end > total {
		end = total
	}
	content := make([]Sale, end-start)
	copy(content, all[start:end])

	return &Page{
		Content:          content,
		TotalElements:    int64(total),
		TotalPages:       totalPages,
		Number:           number,
		Size:             size,
		NumberOfElements: len(content),
		First:            number == 0,
		Last:             number >= totalPages-1,
		Empty:            len(content) == 0,
	}
}

// sortFunc parses "field,dir" into an ordering. Ties keep ascending IDs.
func sortFunc(expr string) (func(a, b Sale) bool, error) {
	if expr == "" {
		expr = DefaultSort
	}
	field, dir, _ := strings.Cut(expr, ",")
	desc := false
	switch strings.ToLower(dir) {
	case "", "asc":
	case "desc":
		desc = true
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSort, expr)
	}

	var cmp func(a, b Sale) int
	switch field {
	case "amount":
		cmp = func(a, b Sale) int { return compare(a.Amount, b.Amount) }
	case "date":
		cmp = func(a, b Sale) int { return a.Date.Compare(b.Date.Time) }
	case "sellerName":
		cmp = func(a, b Sale) int { return strings.Compare(a.SellerName, b.SellerName) }
	case "deals":
		cmp = func(a, b Sale) int { return compare(a.Deals, b.Deals) }
	case "id":
		cmp = func(a, b Sale) int { return compare(a.ID, b.ID) }
	default:
		return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidSort, field)
	}

	return func(a, b Sale) bool {
		c := cmp(a, b)
		if desc {
			c = -c
		}
		if c == 0 {
			return a.ID < b.ID
		}
		return c < 0
	}, nil
}

func compare[T int | int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// CreateSale validates and stores a new sale. The ID in the payload is ignored.
func (s *Service) CreateSale(sale Sale) (*Sale, error) {
	if err := validateSale(&sale); err != nil {
		return nil, err
	}
	sale.ID = 0

	if err := s.storage.Insert(&sale); err != nil {
		s.logger.Error("failed to save sale", zap.Error(err))
		return nil, fmt.Errorf("failed to save sale: %w", err)
	}

	s.logger.Info("sale created", zap.Int64("sale_id", sale.ID), zap.Any("sale", sale))
	return &sale, nil
}

// UpdateSale replaces the sale with the given ID.
func (s *Service) UpdateSale(id int64, sale Sale) (*Sale, error) {
	if err := validateSale(&sale); err != nil {
		return nil, err
	}
	sale.ID = id

	if err := s.storage.Replace(&sale); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to update sale", zap.Int64("sale_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("sale updated", zap.Int64("sale_id", id))
	return &sale, nil
}

// DeleteSale removes the sale with the given ID.
func (s *Service) DeleteSale(id int64) error {
	if err := s.storage.Delete(id); err != nil {
		return err
	}
	s.logger.Info("sale deleted", zap.Int64("sale_id", id))
	return nil
}

// SendNotification hands the sale to the notifier.
func (s *Service) SendNotification(ctx context.Context, id int64) error {
	sale, err := s.storage.Read(id)
	if err != nil {
		return err
	}
	if err := s.notifier.Notify(ctx, sale); err != nil {
		s.logger.Error("failed to send notification", zap.Int64("sale_id", id), zap.Error(err))
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

// Seed inserts n generated sales spread over the last days.
func (s *Service) Seed(n int, seed int64) error {
	sellers := []string{"Anakin", "Barry Allen", "Bruce Wayne", "Kal-El", "Logan", "Padmé", "Thor", "Tony Stark"}
	rng := rand.New(rand.NewSource(seed))
	today := NewDate(s.now())

	for i := 0; i < n; i++ {
		visited := 20 + rng.Intn(100)
		sale := &Sale{
			Date:       Date{today.AddDate(0, 0, -rng.Intn(365))},
			SellerName: sellers[rng.Intn(len(sellers))],
			Visited:    visited,
			Deals:      rng.Intn(visited),
			Amount:     float64(rng.Intn(2000000)) / 100,
		}
		if err := s.storage.Insert(sale); err != nil {
			return fmt.Errorf("failed to seed sales: %w", err)
		}
	}
	s.logger.Info("sales seeded", zap.Int("count", n))
	return nil
}

func validateSale(sale *Sale) error {
	switch {
	case strings.TrimSpace(sale.SellerName) == "":
		return fmt.Errorf("%w: sellerName must not be blank", ErrInvalidSale)
	case sale.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalidSale)
	case sale.Deals < 0, sale.Visited < 0:
		return fmt.Errorf("%w: deals and visited must not be negative", ErrInvalidSale)
	case sale.Amount < 0:
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidSale)
	}
	return nil
}
