package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/voyagen/channelvault/internal/fetcher"
)

// Stream health classifications.
const (
	StatusOnline  = "online"
	StatusWarning = "warning"
	StatusOffline = "offline"
)

var (
	// ErrUnsupportedFormat rejects non-HLS stream URLs before any network call.
	ErrUnsupportedFormat = errors.New("not an HLS stream: only .m3u8 URLs are supported")
	// ErrInvalidStream means a fetched body does not look like an HLS playlist.
	ErrInvalidStream = errors.New("content does not appear to be a valid HLS stream")
)

// HealthReport classifies a channel's stream after a live probe.
type HealthReport struct {
	ChannelID    int64  `json:"channel_id"`
	ChannelName  string `json:"channel_name"`
	StreamURL    string `json:"stream_url"`
	CountryCode  string `json:"country_code"`
	StreamStatus string `json:"stream_status"`
	StreamType   string `json:"stream_type"`
	Message      string `json:"message"`
	Timestamp    int64  `json:"timestamp"`
}

// ChannelHealth fetches the channel's stream URL once, synchronously, and
// classifies the result: online when the body references HLS media, warning
// for a playlist that is not HLS, offline when the fetch failed or the body
// is unrecognizable. Results are not cached; every call probes live.
// Returns store.ErrNotFound when the channel id is unknown.
func (s *Service) ChannelHealth(ctx context.Context, id int64) (*HealthReport, error) {
	ch, err := s.store.GetChannelByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rep := &HealthReport{
		ChannelID:   ch.ID,
		ChannelName: ch.Name,
		StreamURL:   ch.StreamURL,
		CountryCode: ch.CountryCode,
		Timestamp:   time.Now().UnixMilli(),
	}

	body, err := fetcher.Fetch(ctx, s.client, ch.StreamURL, s.cfg.UserAgent, s.cfg.ProbeTimeout)
	content := string(body)
	switch {
	case err != nil:
		rep.StreamStatus = StatusOffline
		rep.StreamType = "Unknown"
		rep.Message = fmt.Sprintf("error checking stream: %v", err)
	case strings.Contains(content, hlsMarker):
		rep.StreamStatus = StatusOnline
		rep.StreamType = "HLS (.m3u8)"
		rep.Message = "HLS stream appears to be working"
	case strings.Contains(content, ".m3u") || strings.Contains(content, "#EXTM3U"):
		rep.StreamStatus = StatusWarning
		rep.StreamType = "Playlist (.m3u) - not supported"
		rep.Message = "non-HLS stream detected, only .m3u8 streams are supported"
	default:
		rep.StreamStatus = StatusOffline
		rep.StreamType = "Unknown"
		rep.Message = "stream may be offline or invalid"
	}
	return rep, nil
}

// ValidateHLS checks that streamURL is an HLS stream and that its content is
// a plausible HLS playlist, returning the raw body for preview. URLs without
// the .m3u8 marker fail with ErrUnsupportedFormat before any network call;
// empty bodies and bodies lacking both the #EXTM3U header and the .m3u8
// marker fail with ErrInvalidStream.
func (s *Service) ValidateHLS(ctx context.Context, streamURL string) (string, error) {
	if !strings.Contains(streamURL, hlsMarker) {
		return "", ErrUnsupportedFormat
	}

	body, err := fetcher.Fetch(ctx, s.client, streamURL, s.cfg.UserAgent, s.cfg.ProbeTimeout)
	if err != nil {
		return "", fmt.Errorf("fetch stream: %w", err)
	}
	content := string(body)
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: empty response body", ErrInvalidStream)
	}
	if !strings.Contains(content, "#EXTM3U") && !strings.Contains(content, hlsMarker) {
		return "", ErrInvalidStream
	}
	return content, nil
}
