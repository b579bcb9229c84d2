package fetcher

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

var (
	reTvgLogo = regexp.MustCompile(`tvg-logo="([^"]*)"`)
	reGroup   = regexp.MustCompile(`group-title="([^"]*)"`)
)

// PlaylistChannel is one channel parsed from an extended-M3U playlist.
// Playlist entries carry no stable external id; Ordinal is a process-local
// monotonically increasing number, usable for display ordering only.
// Catalog identity for these records is the (Name, CountryCode) pair.
type PlaylistChannel struct {
	Ordinal     int64
	Name        string
	StreamURL   string
	LogoURL     string
	Category    string
	CountryCode string
}

var playlistOrdinal atomic.Int64

// ParsePlaylist reads extended-M3U text and returns channel entries for the
// given country. An #EXTINF line carries the display name after its last
// comma plus optional tvg-logo/group-title attributes (either order, quoted,
// possibly absent); the next line starting with a URL completes the entry.
// Info lines never followed by a URL line are dropped. Anything else is
// ignored.
func ParsePlaylist(r io.Reader, countryCode string) ([]PlaylistChannel, error) {
	var entries []PlaylistChannel
	scanner := bufio.NewScanner(r)
	// Some playlists have very long EXTINF lines.
	const maxSize = 1024 * 1024
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, maxSize)

	var pending *PlaylistChannel
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "#EXTINF:"):
			// A previous EXTINF without a URL is discarded.
			ch := PlaylistChannel{CountryCode: countryCode}
			if i := strings.LastIndex(line, ","); i >= 0 {
				ch.Name = strings.TrimSpace(line[i+1:])
			}
			ch.LogoURL = matchFirst(reTvgLogo, line)
			ch.Category = matchFirst(reGroup, line)
			pending = &ch
		case strings.HasPrefix(line, "http"):
			if pending == nil {
				continue
			}
			pending.StreamURL = line
			pending.Ordinal = playlistOrdinal.Add(1)
			entries = append(entries, *pending)
			pending = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// FetchPlaylist downloads a per-country M3U playlist and parses it.
func FetchPlaylist(ctx context.Context, client *http.Client, url, countryCode, userAgent string, timeout time.Duration) ([]PlaylistChannel, error) {
	body, err := Fetch(ctx, client, url, userAgent, timeout)
	if err != nil {
		return nil, err
	}
	return ParsePlaylist(bytes.NewReader(body), countryCode)
}

func matchFirst(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
