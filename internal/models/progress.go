package models

import "time"

// IntakeProgress holds a customer's partially filled booking form between
// steps. Keyed by an opaque token issued on the first request; nothing here
// is trusted, Submit re-validates everything.
type IntakeProgress struct {
	Token         string         `json:"token"`
	Step          string         `json:"step"`
	Name          string         `json:"name,omitempty"`
	Email         string         `json:"email,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	ServiceType   string         `json:"service_type,omitempty"`
	Location      string         `json:"location,omitempty"`
	PreferredDate string         `json:"preferred_date,omitempty"`
	Options       map[string]int `json:"options,omitempty"`
	Modifiers     []string       `json:"modifiers,omitempty"`
	Message       string         `json:"message,omitempty"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
