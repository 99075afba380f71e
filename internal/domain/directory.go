package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

type Client struct {
	ID        string       `json:"id"`
	Code      string       `json:"clientCode"`
	Name      string       `json:"name"`
	Company   string       `json:"company,omitempty"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone,omitempty"`
	Address   string       `json:"address,omitempty"`
	Status    RecordStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`

	// Derived from the client's invoices on read; never stored.
	Totals ClientTotals `json:"totals"`
}

// ClientTotals are the running financial figures of a client.
type ClientTotals struct {
	Billed      float64 `json:"totalBilled"`
	Paid        float64 `json:"totalPaid"`
	Outstanding float64 `json:"outstanding"`
}

func (c *Client) ValidateForCreate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("client name is required")
	}
	return validateEmail(c.Email)
}

type Employee struct {
	ID         string       `json:"id"`
	Code       string       `json:"employeeCode"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone,omitempty"`
	Department string       `json:"department,omitempty"`
	Position   string       `json:"position,omitempty"`
	Role       Role         `json:"role"`
	Status     RecordStatus `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

func (e *Employee) ValidateForCreate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("employee name is required")
	}
	switch e.Role {
	case RoleAdmin, RoleProjectManager, RoleEmployee:
	default:
		return fmt.Errorf("employee role %q is not an internal role", e.Role)
	}
	return validateEmail(e.Email)
}

func validateEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return fmt.Errorf("email %q is invalid", s)
	}
	return nil
}
