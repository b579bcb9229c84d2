package service

import (
	"context"
	"log"

	"github.com/voyagen/channelvault/internal/models"
)

// CountriesActive returns all active countries. An empty catalog triggers one
// refresh from the global sources before re-querying (self-healing on cold
// start); a refresh failure is swallowed and the empty result returned.
func (s *Service) CountriesActive(ctx context.Context) ([]models.Country, error) {
	countries, err := s.store.ListActiveCountries(ctx)
	if err != nil {
		return nil, err
	}
	if len(countries) > 0 || !s.cfg.RefreshOnEmpty {
		return countries, nil
	}

	log.Printf("query: no countries found, refreshing from global sources")
	if err := s.Refresh(ctx); err != nil {
		log.Printf("query: refresh: %v", err)
		return countries, nil
	}
	refetched, err := s.store.ListActiveCountries(ctx)
	if err != nil {
		log.Printf("query: re-query countries: %v", err)
		return countries, nil
	}
	return refetched, nil
}

// ChannelsByCountry returns a country's active channels ordered by name, with
// the same single-shot self-healing behavior as CountriesActive.
func (s *Service) ChannelsByCountry(ctx context.Context, code string) ([]models.Channel, error) {
	channels, err := s.store.ListActiveChannelsByCountry(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(channels) > 0 || !s.cfg.RefreshOnEmpty {
		return channels, nil
	}

	log.Printf("query: no channels for country %s, refreshing from global sources", code)
	if err := s.Refresh(ctx); err != nil {
		log.Printf("query: refresh: %v", err)
		return channels, nil
	}
	refetched, err := s.store.ListActiveChannelsByCountry(ctx, code)
	if err != nil {
		log.Printf("query: re-query channels for %s: %v", code, err)
		return channels, nil
	}
	return refetched, nil
}

// CategoriesByCountry returns the distinct categories among a country's
// active channels.
func (s *Service) CategoriesByCountry(ctx context.Context, code string) ([]string, error) {
	return s.store.ListCategoriesByCountry(ctx, code)
}

// ChannelsByCategory returns a country's active channels whose category
// matches exactly (case-sensitive).
func (s *Service) ChannelsByCategory(ctx context.Context, code, category string) ([]models.Channel, error) {
	return s.store.ListChannelsByCategory(ctx, code, category)
}

// Search finds active channels whose name contains query, case-insensitively.
// With an empty country code the query fans out across every active country
// and concatenates the per-country results in country order; there is no
// global relevance ranking.
func (s *Service) Search(ctx context.Context, query, code string) ([]models.Channel, error) {
	if code != "" {
		return s.store.SearchChannels(ctx, code, query)
	}

	countries, err := s.CountriesActive(ctx)
	if err != nil {
		return nil, err
	}
	var results []models.Channel
	for _, c := range countries {
		channels, err := s.store.SearchChannels(ctx, c.Code, query)
		if err != nil {
			log.Printf("query: search %q in %s: %v", query, c.Code, err)
			continue
		}
		results = append(results, channels...)
	}
	return results, nil
}

// ChannelByID returns a single channel, or store.ErrNotFound.
func (s *Service) ChannelByID(ctx context.Context, id int64) (*models.Channel, error) {
	return s.store.GetChannelByID(ctx, id)
}

// StreamURLByID returns a channel's stream URL, or store.ErrNotFound.
func (s *Service) StreamURLByID(ctx context.Context, id int64) (string, error) {
	ch, err := s.store.GetChannelByID(ctx, id)
	if err != nil {
		return "", err
	}
	return ch.StreamURL, nil
}
