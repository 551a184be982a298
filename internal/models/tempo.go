package models

import "time"

// TempoEntry caches a resolved song tempo
type TempoEntry struct {
	Key       string    `gorm:"primarykey" json:"key"` // normalised "artist|title"
	BPM       float64   `gorm:"not null" json:"bpm"`
	Source    string    `json:"source"`
	UpdatedAt time.Time `json:"updated_at"`
}
