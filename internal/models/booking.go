package models

import "time"

type Booking struct {
	ID            int64          `json:"id"`
	Reference     string         `json:"reference"`
	Name          string         `json:"name"`
	Email         string         `json:"email,omitempty"`
	Phone         string         `json:"phone"`
	ServiceType   string         `json:"service_type"`
	Location      string         `json:"location"`
	PreferredDate string         `json:"preferred_date,omitempty"` // YYYY-MM-DD, optional
	Options       map[string]int `json:"options"`                  // option id -> quantity
	Modifiers     []string       `json:"modifiers,omitempty"`
	Message       string         `json:"message,omitempty"`
	Estimate      Estimate       `json:"estimate"`
	Status        string         `json:"status"` // new, contacted, confirmed, completed, cancelled
	AdminNote     string         `json:"admin_note,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Estimate is computed at creation time and stored as-is; admin edits to the
// record do not recalculate it.
type Estimate struct {
	Total     int64          `json:"total"`
	Currency  string         `json:"currency"`
	Breakdown []EstimateLine `json:"breakdown"`
}

type EstimateLine struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// SearchFilter narrows admin listings and exports. Zero values mean "no
// constraint". From/To bound created_at inclusively by calendar day.
type SearchFilter struct {
	Status string
	From   time.Time
	To     time.Time
	Query  string
}
