package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"storecrew/internal/models"
)

const (
	maxNameLength     = 120
	maxEmailLength    = 200
	maxLocationLength = 300
	maxMessageLength  = 500
)

// phoneRe допускает цифры, плюс, дефисы, скобки и пробелы
var phoneRe = regexp.MustCompile(`^[0-9+\-() ]{9,16}$`)

// IntakeRequest is the full booking form as submitted by the public API.
type IntakeRequest struct {
	Name          string         `json:"name"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	ServiceType   string         `json:"service_type"`
	Location      string         `json:"location"`
	PreferredDate string         `json:"preferred_date"`
	Options       map[string]int `json:"options"`
	Modifiers     []string       `json:"modifiers"`
	Message       string         `json:"message"`
}

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidateIntake checks the submitted form against the catalog. All fields
// are trimmed in place before validation so stored values carry no stray
// whitespace.
func ValidateIntake(req *IntakeRequest, cat *models.Catalog, now time.Time) error {
	verr := newValidationError()

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.ServiceType = strings.TrimSpace(req.ServiceType)
	req.Location = strings.TrimSpace(req.Location)
	req.PreferredDate = strings.TrimSpace(req.PreferredDate)
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" {
		verr.add("name", "name is required")
	} else if len(req.Name) > maxNameLength {
		verr.add("name", fmt.Sprintf("name must be at most %d characters", maxNameLength))
	}

	if req.Phone == "" {
		verr.add("phone", "phone is required")
	} else if !phoneRe.MatchString(req.Phone) {
		verr.add("phone", "phone must be 9-16 characters of digits, +, -, (), spaces")
	}

	if req.Email != "" {
		if len(req.Email) > maxEmailLength {
			verr.add("email", fmt.Sprintf("email must be at most %d characters", maxEmailLength))
		} else if !looksLikeEmail(req.Email) {
			verr.add("email", "email looks invalid")
		}
	}

	if req.ServiceType == "" {
		verr.add("service_type", "service type is required")
	} else if _, ok := cat.ServiceByID(req.ServiceType); !ok {
		verr.add("service_type", "unknown service type")
	}

	if req.Location == "" {
		verr.add("location", "location is required")
	} else if len(req.Location) > maxLocationLength {
		verr.add("location", fmt.Sprintf("location must be at most %d characters", maxLocationLength))
	}

	if len(req.Message) > maxMessageLength {
		verr.add("message", fmt.Sprintf("message must be at most %d characters", maxMessageLength))
	}

	if req.PreferredDate != "" {
		validatePreferredDate(verr, req.PreferredDate, now)
	}

	for id, qty := range req.Options {
		opt, ok := cat.OptionByID(id)
		if !ok {
			verr.add("options", "unknown option: "+id)
			continue
		}
		if qty < 0 {
			verr.add("options", "option quantity must not be negative: "+id)
			continue
		}
		if opt.MaxQuantity > 0 && qty > opt.MaxQuantity {
			verr.add("options", fmt.Sprintf("option %s quantity exceeds maximum %d", id, opt.MaxQuantity))
		}
	}

	seen := make(map[string]bool)
	for _, id := range req.Modifiers {
		if _, ok := cat.ModifierByID(id); !ok {
			verr.add("modifiers", "unknown modifier: "+id)
			continue
		}
		if seen[id] {
			verr.add("modifiers", "duplicate modifier: "+id)
		}
		seen[id] = true
	}

	return verr.orNil()
}

func validatePreferredDate(verr *ValidationError, value string, now time.Time) {
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		verr.add("preferred_date", "preferred date must be YYYY-MM-DD")
		return
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		verr.add("preferred_date", "preferred date must not be in the past")
		return
	}
	if date.After(today.AddDate(0, 0, models.MaxPreferredDateDays)) {
		verr.add("preferred_date", fmt.Sprintf("preferred date must be within %d days", models.MaxPreferredDateDays))
	}
}

// looksLikeEmail is deliberately loose. Real verification happens when staff
// reply to the customer, not here.
func looksLikeEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.Contains(email, " ")
}
