package service

import (
	"context"
	"errors"
	"log"

	"github.com/voyagen/channelvault/internal/fetcher"
	"github.com/voyagen/channelvault/internal/models"
	"github.com/voyagen/channelvault/internal/store"
)

// reconcileChannel upserts one assembled channel record by its external
// channel id. A record that already exists is overwritten without diffing
// (the feeds are authoritative for every field); replaying the same record
// converges to the same stored state.
func (s *Service) reconcileChannel(ctx context.Context, ch *models.Channel) error {
	_, err := s.store.UpsertChannel(ctx, ch)
	return err
}

// reconcileCountries upserts every country the metadata index knows about.
// A failure on one country is logged and does not stop the rest.
func (s *Service) reconcileCountries(ctx context.Context, idx *fetcher.Index) {
	for _, meta := range idx.Countries {
		if err := s.upsertCountry(ctx, meta); err != nil {
			log.Printf("refresh: country %s: %v", meta.Code, err)
		}
	}
}

// upsertCountry creates the country on first sighting, and otherwise writes
// only when name or flag URL actually differ from the stored value, avoiding
// needless writes.
func (s *Service) upsertCountry(ctx context.Context, meta fetcher.CountryMeta) error {
	flag := optional(meta.Image)

	existing, err := s.store.GetCountryByCode(ctx, meta.Code)
	if errors.Is(err, store.ErrNotFound) {
		_, err := s.store.CreateCountry(ctx, &models.Country{
			Name:     meta.Name,
			Code:     meta.Code,
			FlagURL:  flag,
			IsActive: true,
		})
		return err
	}
	if err != nil {
		return err
	}

	if existing.Name == meta.Name && ptrEqual(existing.FlagURL, flag) {
		return nil
	}
	existing.Name = meta.Name
	existing.FlagURL = flag
	return s.store.UpdateCountry(ctx, existing)
}
