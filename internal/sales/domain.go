package sales

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of sale dates.
const DateLayout = "2006-01-02"

// DefaultSort is the list order used by every sales screen.
const DefaultSort = "amount,desc"

// Sale represents one recorded transaction of a seller.
type Sale struct {
	ID         int64   `json:"id,omitempty"`
	Date       Date    `json:"date"`
	SellerName string  `json:"sellerName" binding:"required"`
	Deals      int     `json:"deals" binding:"min=0"`
	Amount     float64 `json:"amount" binding:"min=0"`
	Visited    int     `json:"visited" binding:"min=0"`
}

// Date is a calendar day. It encodes as YYYY-MM-DD and decodes either that
// form or an RFC 3339 timestamp.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = NewDate(t)
	return nil
}

// Filters narrows a sales listing. Empty fields mean no constraint.
type Filters struct {
	MinDate string `json:"minDate,omitempty"`
	MaxDate string `json:"maxDate,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Validate checks that date bounds, when present, are calendar days.
func (f Filters) Validate() error {
	for _, s := range []string{f.MinDate, f.MaxDate} {
		if s == "" {
			continue
		}
		if _, err := ParseDate(s); err != nil {
			return err
		}
	}
	return nil
}

// Query is one page request of a filtered listing.
type Query struct {
	Page    int
	Size    int
	Sort    string
	Filters Filters
}

// Page is one page of sales as returned by the backend.
type Page struct {
	Content          []Sale `json:"content"`
	TotalElements    int64  `json:"totalElements"`
	TotalPages       int    `json:"totalPages"`
	Number           int    `json:"number"`
	Size             int    `json:"size"`
	NumberOfElements int    `json:"numberOfElements"`
	First            bool   `json:"first"`
	Last             bool   `json:"last"`
	Empty            bool   `json:"empty"`
}
