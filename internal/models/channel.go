package models

import "time"

// Channel is one catalog entry for a live TV channel. ChannelID is the
// external iptv-org identifier; it is empty for playlist-sourced records,
// whose identity is the (Name, CountryCode) pair instead.
type Channel struct {
	ID          int64      `json:"id,omitempty"`
	ChannelID   string     `json:"channel_id,omitempty"`
	Name        string     `json:"name"`
	StreamURL   string     `json:"stream_url"`
	LogoURL     *string    `json:"logo_url,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Language    *string    `json:"language,omitempty"`
	CountryCode string     `json:"country_code"`
	EpgID       *string    `json:"epg_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
