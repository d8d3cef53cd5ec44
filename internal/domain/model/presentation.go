package model

import "time"

// Presentation is the durable catalog entry for a generation request.
type Presentation struct {
	ID          string     `json:"presentation_id" db:"id"`
	UserID      string     `json:"user_id"         db:"user_id"`
	ClientID    string     `json:"client_id"       db:"client_id"`
	Topic       string     `json:"topic"           db:"topic"`
	SlideCount  int        `json:"slide_count"     db:"slide_count"`
	Status      JobStatus  `json:"status"          db:"status"`
	StorageKey  *string    `json:"-"               db:"storage_key"`
	DownloadURL *string    `json:"download_url"    db:"download_url"`
	CreatedAt   time.Time  `json:"created_at"      db:"created_at"`
	CompletedAt *time.Time `json:"completed_at"    db:"completed_at"`
}

// UserStats summarizes a user's usage for the current day.
type UserStats struct {
	UserID             string `json:"user_id"`
	PresentationsToday int64  `json:"presentations_today"`
	DailyLimit         int    `json:"daily_limit"`
	Remaining          int64  `json:"remaining"`
}
