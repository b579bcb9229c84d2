package fetcher

import (
	"encoding/json"
	"fmt"
)

// StreamEntry is one element of the bulk streams feed.
type StreamEntry struct {
	Channel string `json:"channel"`
	URL     string `json:"url"`
	Quality string `json:"quality"`
}

// DecodeStreams decodes the raw streams feed. Each element is decoded on its
// own, so one malformed entry is skipped (and counted) without aborting the
// batch. Only an unparseable outer array is an error.
func DecodeStreams(data []byte) (entries []StreamEntry, skipped int, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("streams feed: %w", err)
	}
	entries = make([]StreamEntry, 0, len(raw))
	for _, msg := range raw {
		var e StreamEntry
		if err := json.Unmarshal(msg, &e); err != nil {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	return entries, skipped, nil
}
