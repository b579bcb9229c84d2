package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/voyagen/channelvault/internal/fetcher"
	"github.com/voyagen/channelvault/internal/models"
)

// IngestPlaylist fetches the per-country extended-M3U playlist and upserts
// each parsed entry into the catalog. Playlist records carry no external
// channel id, so identity is bridged through the (name, country code) pair;
// repeated ingests update in place instead of duplicating. Returns the number
// of channels ingested.
func (s *Service) IngestPlaylist(ctx context.Context, countryCode string) (int, error) {
	url := fmt.Sprintf(s.cfg.PlaylistTemplate, strings.ToLower(countryCode))
	entries, err := fetcher.FetchPlaylist(ctx, s.client, url, countryCode, s.cfg.UserAgent, s.cfg.ProbeTimeout)
	if err != nil {
		return 0, fmt.Errorf("fetch playlist: %w", err)
	}

	count := 0
	for i := range entries {
		// Check for cancellation between iterations; country playlists can
		// run to thousands of entries.
		if err := ctx.Err(); err != nil {
			return count, fmt.Errorf("ingest cancelled: %w", err)
		}

		e := &entries[i]
		if e.Name == "" || e.StreamURL == "" {
			continue
		}
		ch := &models.Channel{
			Name:        e.Name,
			StreamURL:   e.StreamURL,
			LogoURL:     optional(e.LogoURL),
			Category:    optional(e.Category),
			CountryCode: e.CountryCode,
			IsActive:    true,
		}
		if _, err := s.store.UpsertPlaylistChannel(ctx, ch); err != nil {
			log.Printf("playlist %s: %q: %v", countryCode, e.Name, err)
			continue
		}
		count++
	}

	log.Printf("playlist %s: ingested %d of %d entries", countryCode, count, len(entries))
	return count, nil
}
