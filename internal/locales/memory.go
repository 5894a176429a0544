package locales

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps the catalog in memory. Codes match case
// insensitively.
type MemoryRepository struct {
	mu      sync.RWMutex
	locales map[string]*Locale
}

// NewMemoryRepository returns an empty catalog, seeded with locales.
func NewMemoryRepository(locales ...*Locale) *MemoryRepository {
	repo := &MemoryRepository{locales: make(map[string]*Locale)}
	for _, locale := range locales {
		repo.Put(locale)
	}
	return repo
}

// Put inserts or replaces a locale.
func (m *MemoryRepository) Put(locale *Locale) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *locale
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	m.locales[strings.ToLower(locale.Code)] = &copied
}

func (m *MemoryRepository) Create(_ context.Context, locale *Locale) (*Locale, error) {
	m.Put(locale)
	return m.GetByCode(context.Background(), locale.Code)
}

func (m *MemoryRepository) GetByCode(_ context.Context, code string) (*Locale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	loc, ok := m.locales[strings.ToLower(code)]
	if !ok {
		return nil, &NotFoundError{Resource: "locale", Key: code}
	}
	copied := *loc
	return &copied, nil
}

func (m *MemoryRepository) List(context.Context) ([]*Locale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Locale, 0, len(m.locales))
	for _, loc := range m.locales {
		copied := *loc
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
