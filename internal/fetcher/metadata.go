package fetcher

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// ChannelMeta is one record of the iptv-org channels.json feed.
type ChannelMeta struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Country    string   `json:"country"`
	Categories []string `json:"categories"`
	Languages  []string `json:"languages"`
}

// CountryMeta is one record of the bundled country metadata resource.
type CountryMeta struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type logoEntry struct {
	Channel string `json:"channel"`
	URL     string `json:"url"`
	Width   int    `json:"width"`
}

// A later logo entry replaces an earlier pick only when it is wider than this.
const logoWidthPreferred = 100

// countriesJSON is the baseline country metadata, bundled so countries exist
// even when the network is unavailable.
//
//go:embed countries.json
var countriesJSON []byte

// Index holds the per-refresh metadata lookup tables bridging stream entries
// to descriptive metadata. It is rebuilt from scratch by BuildIndex, owned by
// a single refresh invocation, and never persisted.
type Index struct {
	Channels  map[string]ChannelMeta
	Countries map[string]CountryMeta
	Logos     map[string]string
}

// Feeds configures where BuildIndex fetches metadata from.
type Feeds struct {
	ChannelsURL string
	LogosURL    string
	UserAgent   string
	Timeout     time.Duration
}

// BuildIndex fetches the channel and logo feeds, decodes the embedded country
// resource, and returns the populated index. A failed feed is logged and
// leaves its table empty; the other feeds still load, so downstream records
// simply miss optional fields.
func BuildIndex(ctx context.Context, client *http.Client, feeds Feeds) *Index {
	idx := &Index{
		Channels:  make(map[string]ChannelMeta),
		Countries: make(map[string]CountryMeta),
		Logos:     make(map[string]string),
	}

	if data, err := Fetch(ctx, client, feeds.ChannelsURL, feeds.UserAgent, feeds.Timeout); err != nil {
		log.Printf("metadata: channels feed: %v", err)
	} else if err := idx.loadChannels(data); err != nil {
		log.Printf("metadata: channels feed: %v", err)
	}

	if err := idx.loadCountries(countriesJSON); err != nil {
		log.Printf("metadata: countries resource: %v", err)
	}

	if data, err := Fetch(ctx, client, feeds.LogosURL, feeds.UserAgent, feeds.Timeout); err != nil {
		log.Printf("metadata: logos feed: %v", err)
	} else if err := idx.loadLogos(data); err != nil {
		log.Printf("metadata: logos feed: %v", err)
	}

	log.Printf("metadata: indexed %d channels, %d countries, %d logos",
		len(idx.Channels), len(idx.Countries), len(idx.Logos))
	return idx
}

func (idx *Index) loadChannels(data []byte) error {
	var metas []ChannelMeta
	if err := json.Unmarshal(data, &metas); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	for _, m := range metas {
		if m.ID == "" {
			continue
		}
		idx.Channels[m.ID] = m
	}
	return nil
}

func (idx *Index) loadCountries(data []byte) error {
	var metas []CountryMeta
	if err := json.Unmarshal(data, &metas); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	for _, m := range metas {
		if m.Code == "" {
			continue
		}
		idx.Countries[m.Code] = m
	}
	return nil
}

func (idx *Index) loadLogos(data []byte) error {
	var logos []logoEntry
	if err := json.Unmarshal(data, &logos); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	for _, l := range logos {
		if l.Channel == "" || l.URL == "" {
			continue
		}
		// First entry wins unless a later one is explicitly wider than the
		// threshold. Larger-is-better heuristic, not a strict max.
		if _, seen := idx.Logos[l.Channel]; !seen || l.Width > logoWidthPreferred {
			idx.Logos[l.Channel] = l.URL
		}
	}
	return nil
}
