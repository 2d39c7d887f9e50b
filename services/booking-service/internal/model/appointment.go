package model

import "time"

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusDelayed    = "delayed"
)

// ValidStatus reports whether s is one of the appointment lifecycle states.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusDelayed:
		return true
	}
	return false
}

// SelectedService is one line item of an appointment. Duration and price
// are copied from the catalog at booking time so later catalog edits do not
// rewrite history.
type SelectedService struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	PriceCents      int64  `json:"price_cents"`
	DurationMinutes int    `json:"duration_minutes"`
}

type Appointment struct {
	ID              string
	Date            time.Time // date only, midnight UTC
	StartMinute     int
	DurationMinutes int
	Services        []SelectedService
	Status          string

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	VehicleMake  string
	VehicleModel string
	VehicleYear  string
	VehicleColor string

	Address string
	City    string
	State   string
	Zip     string
	Notes   string

	PaidAt       *time.Time
	CancelledAt  *time.Time
	CancelReason string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a Appointment) EndMinute() int {
	return a.StartMinute + a.DurationMinutes
}

// TotalPriceCents sums the selected services' prices.
func (a Appointment) TotalPriceCents() int64 {
	var sum int64
	for _, s := range a.Services {
		sum += s.PriceCents
	}
	return sum
}
