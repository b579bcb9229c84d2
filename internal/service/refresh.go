package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/voyagen/channelvault/internal/fetcher"
	"github.com/voyagen/channelvault/internal/models"
)

// Refresh runs the full ingestion cycle: build the metadata index from the
// channel/country/logo feeds, reconcile countries, then walk the bulk streams
// feed and reconcile every accepted channel. Individual feed or record
// failures degrade the result instead of aborting it; only an unusable
// streams feed is an error.
func (s *Service) Refresh(ctx context.Context) error {
	log.Printf("refresh: fetching channel metadata from global sources")

	idx := fetcher.BuildIndex(ctx, s.client, fetcher.Feeds{
		ChannelsURL: s.cfg.ChannelsURL,
		LogosURL:    s.cfg.LogosURL,
		UserAgent:   s.cfg.UserAgent,
		Timeout:     s.cfg.FeedTimeout,
	})
	s.reconcileCountries(ctx, idx)

	data, err := fetcher.Fetch(ctx, s.client, s.cfg.StreamsURL, s.cfg.UserAgent, s.cfg.FeedTimeout)
	if err != nil {
		return fmt.Errorf("streams feed: %w", err)
	}
	entries, skipped, err := fetcher.DecodeStreams(data)
	if err != nil {
		return err
	}
	if skipped > 0 {
		log.Printf("refresh: skipped %d malformed stream entries", skipped)
	}

	var total, accepted int
	countries := make(map[string]struct{})
	for _, e := range entries {
		total++
		rec, ok := assembleChannel(idx, e)
		if !ok {
			continue
		}
		if err := s.reconcileChannel(ctx, rec); err != nil {
			log.Printf("refresh: channel %s: %v", rec.ChannelID, err)
			continue
		}
		countries[rec.CountryCode] = struct{}{}
		accepted++
	}

	log.Printf("refresh: %d stream entries seen, %d HLS channels reconciled for %d countries",
		total, accepted, len(countries))
	return nil
}

// assembleChannel joins one stream entry against the metadata index and
// materializes a complete channel record. Entries whose URL is not HLS, or
// whose channel id the index does not know, are rejected.
func assembleChannel(idx *fetcher.Index, e fetcher.StreamEntry) (*models.Channel, bool) {
	if !strings.Contains(e.URL, hlsMarker) {
		return nil, false
	}
	meta, ok := idx.Channels[e.Channel]
	if !ok {
		return nil, false
	}

	name := meta.Name
	if name == "" {
		name = e.Channel
	}
	country := meta.Country
	if country == "" {
		country = "US"
	}
	category := "Global Stream"
	if len(meta.Categories) > 0 {
		category = meta.Categories[0]
	}
	language := "en"
	if len(meta.Languages) > 0 {
		language = meta.Languages[0]
	}

	ch := &models.Channel{
		ChannelID:   e.Channel,
		Name:        name,
		StreamURL:   e.URL,
		Category:    &category,
		Language:    &language,
		CountryCode: country,
		IsActive:    true,
	}
	if logo, ok := idx.Logos[e.Channel]; ok {
		ch.LogoURL = &logo
	}
	return ch, true
}
