package model

// Service is immutable reference data for a booking.
type Service struct {
	Base
	Name            string   `db:"name" json:"name"`
	Description     string   `db:"description" json:"description"`
	DurationMinutes int      `db:"duration_minutes" json:"duration_minutes"`
	Price           *float64 `db:"price" json:"price,omitempty"`
	Active          bool     `db:"active" json:"active"`
}
