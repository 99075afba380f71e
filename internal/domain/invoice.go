package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Amount      float64 `json:"amount"`
}

type Payment struct {
	ID        string    `json:"id"`
	InvoiceID string    `json:"invoiceId"`
	Date      time.Time `json:"date"`
	Method    string    `json:"method"`
	Amount    float64   `json:"amount"`
	Reference string    `json:"reference,omitempty"`
}

type Invoice struct {
	ID        string        `json:"id"`
	Number    string        `json:"invoiceNumber"`
	ProjectID string        `json:"projectId"`
	ClientID  string        `json:"clientId"`
	Items     []LineItem    `json:"items"`
	Subtotal  float64       `json:"subtotal"`
	Discount  float64       `json:"discount"`
	TaxRate   float64       `json:"taxRate"`
	Tax       float64       `json:"tax"`
	Total     float64       `json:"total"`
	Status    InvoiceStatus `json:"status"`
	IssueDate time.Time     `json:"issueDate"`
	DueDate   time.Time     `json:"dueDate"`
	Payments  []Payment     `json:"payments"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Recalculate derives line amounts, subtotal, tax and total. Discount is an
// absolute amount taken off the subtotal before tax; TaxRate is a percentage.
func (inv *Invoice) Recalculate() {
	var subtotal float64
	for i := range inv.Items {
		inv.Items[i].Amount = roundCents(inv.Items[i].Quantity * inv.Items[i].UnitPrice)
		subtotal += inv.Items[i].Amount
	}
	inv.Subtotal = roundCents(subtotal)
	taxable := math.Max(inv.Subtotal-inv.Discount, 0)
	inv.Tax = roundCents(taxable * inv.TaxRate / 100)
	inv.Total = roundCents(taxable + inv.Tax)
}

func (inv *Invoice) ValidateForCreate() error {
	if inv.ClientID == "" {
		return fmt.Errorf("client is required")
	}
	if len(inv.Items) == 0 {
		return fmt.Errorf("at least one line item is required")
	}
	for i, it := range inv.Items {
		if strings.TrimSpace(it.Description) == "" {
			return fmt.Errorf("line item %d: description is required", i+1)
		}
		if it.Quantity <= 0 || it.UnitPrice < 0 {
			return fmt.Errorf("line item %d: quantity must be positive and price non-negative", i+1)
		}
	}
	if inv.Discount < 0 || inv.TaxRate < 0 {
		return fmt.Errorf("discount and tax rate must not be negative")
	}
	if !inv.DueDate.IsZero() && inv.DueDate.Before(inv.IssueDate) {
		return fmt.Errorf("due date is before issue date")
	}
	return nil
}

// PaidTotal sums all recorded payments.
func (inv *Invoice) PaidTotal() float64 {
	var sum float64
	for _, p := range inv.Payments {
		sum += p.Amount
	}
	return roundCents(sum)
}

// BalanceDue is total minus the sum of payments.
func (inv *Invoice) BalanceDue() float64 {
	return roundCents(inv.Total - inv.PaidTotal())
}

// ApplyPayment appends a payment and marks the invoice paid once nothing is
// left to pay.
func (inv *Invoice) ApplyPayment(p Payment, now time.Time) error {
	if p.Amount <= 0 {
		return fmt.Errorf("payment amount must be positive")
	}
	if strings.TrimSpace(p.Method) == "" {
		return fmt.Errorf("payment method is required")
	}
	inv.Payments = append(inv.Payments, p)
	if inv.BalanceDue() <= 0 {
		inv.Status = InvoicePaid
	}
	inv.UpdatedAt = now
	return nil
}

// SetStatus changes the status, refusing "paid" while a balance remains.
func (inv *Invoice) SetStatus(s InvoiceStatus, now time.Time) error {
	if s == InvoicePaid && inv.BalanceDue() > 0 {
		return fmt.Errorf("invoice %s still has %.2f due", inv.Number, inv.BalanceDue())
	}
	inv.Status = s
	inv.UpdatedAt = now
	return nil
}

// IsOverdue reports whether an unpaid invoice is past its due date.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	if inv.Status == InvoiceOverdue {
		return true
	}
	return inv.Status != InvoicePaid && inv.Status != InvoiceDraft &&
		!inv.DueDate.IsZero() && inv.DueDate.Before(now)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
