package storage

import "time"

// ScrapFile is a markdown file found in the scraps directory.
type ScrapFile struct {
	Path      string    `json:"path"`
	Title     string    `json:"title"`
	Ctx       string    `json:"ctx,omitempty"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
