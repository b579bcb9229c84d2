package models

import "time"

// Country represents a country the catalog has channels for.
// Code is the 2-letter upper-case country code and is unique.
type Country struct {
	ID        int64      `json:"id,omitempty"`
	Name      string     `json:"name"`
	Code      string     `json:"code"`
	FlagURL   *string    `json:"flag_url,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
