package store

import (
	"context"
	"errors"

	"github.com/voyagen/channelvault/internal/models"
)

// ErrNotFound is returned when a channel or country does not exist.
var ErrNotFound = errors.New("not found")

// Store defines persistence for the channel/country catalog. Every upsert is
// atomic for a single record; a whole refresh cycle (many upserts) is not a
// transaction, so concurrent refreshes interleave with last-writer-wins
// semantics.
type Store interface {
	// UpsertChannel inserts or unconditionally overwrites a channel keyed by
	// its external channel id, bumping updated_at; returns the row id.
	UpsertChannel(ctx context.Context, ch *models.Channel) (int64, error)
	// UpsertPlaylistChannel inserts or updates a playlist-sourced channel
	// (no external id) keyed by (name, country_code); returns the row id.
	UpsertPlaylistChannel(ctx context.Context, ch *models.Channel) (int64, error)
	// GetChannelByID returns a single channel by row id.
	GetChannelByID(ctx context.Context, id int64) (*models.Channel, error)
	// ListActiveChannelsByCountry returns active channels for a country, ordered by name.
	ListActiveChannelsByCountry(ctx context.Context, code string) ([]models.Channel, error)
	// ListCategoriesByCountry returns the distinct categories of a country's active channels.
	ListCategoriesByCountry(ctx context.Context, code string) ([]string, error)
	// ListChannelsByCategory returns a country's active channels with an exact category match.
	ListChannelsByCategory(ctx context.Context, code, category string) ([]models.Channel, error)
	// SearchChannels returns a country's active channels whose name contains
	// query, case-insensitively, ordered by name.
	SearchChannels(ctx context.Context, code, query string) ([]models.Channel, error)

	// GetCountryByCode returns a single country by its 2-letter code.
	GetCountryByCode(ctx context.Context, code string) (*models.Country, error)
	// CreateCountry inserts a new country and returns its row id.
	CreateCountry(ctx context.Context, c *models.Country) (int64, error)
	// UpdateCountry overwrites name and flag URL of the country identified by code.
	UpdateCountry(ctx context.Context, c *models.Country) error
	// ListActiveCountries returns all active countries, ordered by name.
	ListActiveCountries(ctx context.Context) ([]models.Country, error)
}
