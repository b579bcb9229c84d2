// Package storetest provides an in-memory Store for service and server tests.
package storetest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/voyagen/channelvault/internal/models"
	"github.com/voyagen/channelvault/internal/store"
)

// Memory is a Store backed by maps. It mirrors the Postgres semantics the
// service layer relies on: upsert identity, name ordering and ErrNotFound.
type Memory struct {
	mu        sync.Mutex
	nextID    int64
	channels  map[int64]models.Channel
	countries map[string]models.Country

	// Err, when set, is returned by every method; for failure-path tests.
	Err error
}

var _ store.Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		channels:  make(map[int64]models.Channel),
		countries: make(map[string]models.Country),
	}
}

func (m *Memory) UpsertChannel(_ context.Context, ch *models.Channel) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}

	now := time.Now()
	for id, existing := range m.channels {
		if existing.ChannelID != "" && existing.ChannelID == ch.ChannelID {
			updated := *ch
			updated.ID = id
			updated.CreatedAt = existing.CreatedAt
			updated.UpdatedAt = &now
			m.channels[id] = updated
			return id, nil
		}
	}
	return m.insertChannel(ch, now), nil
}

func (m *Memory) UpsertPlaylistChannel(_ context.Context, ch *models.Channel) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}

	now := time.Now()
	for id, existing := range m.channels {
		if existing.ChannelID == "" && existing.Name == ch.Name && existing.CountryCode == ch.CountryCode {
			updated := *ch
			updated.ID = id
			updated.ChannelID = ""
			updated.CreatedAt = existing.CreatedAt
			updated.UpdatedAt = &now
			m.channels[id] = updated
			return id, nil
		}
	}
	cp := *ch
	cp.ChannelID = ""
	return m.insertChannel(&cp, now), nil
}

// insertChannel must be called with mu held.
func (m *Memory) insertChannel(ch *models.Channel, now time.Time) int64 {
	m.nextID++
	stored := *ch
	stored.ID = m.nextID
	stored.CreatedAt = &now
	stored.UpdatedAt = &now
	m.channels[stored.ID] = stored
	return stored.ID
}

func (m *Memory) GetChannelByID(_ context.Context, id int64) (*models.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	ch, ok := m.channels[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &ch, nil
}

func (m *Memory) ListActiveChannelsByCountry(_ context.Context, code string) ([]models.Channel, error) {
	return m.listChannels(func(ch *models.Channel) bool {
		return ch.IsActive && ch.CountryCode == code
	})
}

func (m *Memory) ListCategoriesByCountry(_ context.Context, code string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	seen := make(map[string]bool)
	for _, ch := range m.channels {
		if ch.IsActive && ch.CountryCode == code && ch.Category != nil && *ch.Category != "" {
			seen[*ch.Category] = true
		}
	}
	var out []string
	for cat := range seen {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) ListChannelsByCategory(_ context.Context, code, category string) ([]models.Channel, error) {
	return m.listChannels(func(ch *models.Channel) bool {
		return ch.IsActive && ch.CountryCode == code && ch.Category != nil && *ch.Category == category
	})
}

func (m *Memory) SearchChannels(_ context.Context, code, query string) ([]models.Channel, error) {
	q := strings.ToLower(query)
	return m.listChannels(func(ch *models.Channel) bool {
		return ch.IsActive && ch.CountryCode == code && strings.Contains(strings.ToLower(ch.Name), q)
	})
}

func (m *Memory) listChannels(match func(*models.Channel) bool) ([]models.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	var out []models.Channel
	for _, ch := range m.channels {
		if match(&ch) {
			out = append(out, ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) GetCountryByCode(_ context.Context, code string) (*models.Country, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	c, ok := m.countries[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (m *Memory) CreateCountry(_ context.Context, c *models.Country) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}

	m.nextID++
	now := time.Now()
	stored := *c
	stored.ID = m.nextID
	stored.CreatedAt = &now
	m.countries[stored.Code] = stored
	return stored.ID, nil
}

func (m *Memory) UpdateCountry(_ context.Context, c *models.Country) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	existing, ok := m.countries[c.Code]
	if !ok {
		return store.ErrNotFound
	}
	existing.Name = c.Name
	existing.FlagURL = c.FlagURL
	m.countries[c.Code] = existing
	return nil
}

func (m *Memory) ListActiveCountries(_ context.Context) ([]models.Country, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	var out []models.Country
	for _, c := range m.countries {
		if c.IsActive {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ChannelCount reports how many channels are stored; a test convenience.
func (m *Memory) ChannelCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.channels)
}
