package sales

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when a sale with the given ID is not found.
var ErrNotFound = errors.New("sale not found")

// Storage is the main interface for our sales storage layer.
type Storage interface {
	Insert(sale *Sale) error
	Read(id int64) (*Sale, error)
	Replace(sale *Sale) error
	Delete(id int64) error
	GetAll() ([]*Sale, error)
}

// LocalStorage provides an in-memory implementation for storing sales.
type LocalStorage struct {
	mu   sync.RWMutex
	m    map[int64]*Sale
	next int64
}

// NewLocalStorage instantiates a new LocalStorage for sales with an empty map.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		m: map[int64]*Sale{},
	}
}

// Insert stores a new sale and assigns its ID.
func (l *LocalStorage) Insert(sale *Sale) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	sale.ID = l.next
	cp := *sale
	l.m[sale.ID] = &cp
	return nil
}

// Read retrieves a sale from the local storage by ID.
// Returns ErrNotFound if the sale is not found.
func (l *LocalStorage) Read(id int64) (*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// Replace overwrites an existing sale.
// Returns ErrNotFound if no sale has the given ID.
func (l *LocalStorage) Replace(sale *Sale) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.m[sale.ID]; !ok {
		return ErrNotFound
	}
	cp := *sale
	l.m[sale.ID] = &cp
	return nil
}

// Delete removes a sale by ID.
// Returns ErrNotFound if the sale is not found.
func (l *LocalStorage) Delete(id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.m[id]; !ok {
		return ErrNotFound
	}
	delete(l.m, id)
	return nil
}

// GetAll retrieves all sales from the local storage.
func (l *LocalStorage) GetAll() ([]*Sale, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sales := make([]*Sale, 0, len(l.m))
	for _, s := range l.m {
		cp := *s
		sales = append(sales, &cp)
	}
	return sales, nil
}
