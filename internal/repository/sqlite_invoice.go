package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/domain"
)

// SQLiteInvoiceRepo stores invoices with their line items and payments.
type SQLiteInvoiceRepo struct {
	db db.DBTX
}

func NewSQLiteInvoiceRepo(conn db.DBTX) *SQLiteInvoiceRepo {
	return &SQLiteInvoiceRepo{db: conn}
}

const invoiceColumns = `id, number, project_id, client_id, subtotal, discount, tax_rate, tax, total,
	status, issue_date, due_date, created_at, updated_at`

// Create inserts the invoice, its items and any initial payments. Run it
// inside a transaction.
func (r *SQLiteInvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	var due any
	if !inv.DueDate.IsZero() {
		due = inv.DueDate.Format(dateLayout)
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Number, inv.ProjectID, inv.ClientID, inv.Subtotal, inv.Discount, inv.TaxRate,
		inv.Tax, inv.Total, string(inv.Status), inv.IssueDate.Format(dateLayout), due,
		formatTime(inv.CreatedAt), formatTime(inv.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting invoice: %w", err)
	}

	for i, it := range inv.Items {
		_, err := r.db.ExecContext(ctx, `INSERT INTO invoice_items
			(invoice_id, position, description, quantity, unit_price, amount)
			VALUES (?, ?, ?, ?, ?, ?)`,
			inv.ID, i, it.Description, it.Quantity, it.UnitPrice, it.Amount)
		if err != nil {
			return fmt.Errorf("inserting invoice item %d: %w", i, err)
		}
	}
	for i := range inv.Payments {
		if err := r.AddPayment(ctx, &inv.Payments[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteInvoiceRepo) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadChildren(ctx, []*domain.Invoice{inv}); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *SQLiteInvoiceRepo) List(ctx context.Context, f InvoiceFilter) ([]*domain.Invoice, error) {
	var w whereBuilder
	if f.ClientID != "" {
		w.add(`client_id = ?`, f.ClientID)
	}
	if f.ProjectID != "" {
		w.add(`project_id = ?`, f.ProjectID)
	}
	if f.Status != "" {
		w.add(`status = ?`, string(f.Status))
	}
	if f.Search != "" {
		w.add(`LOWER(number) LIKE ? ESCAPE '\'`, likePattern(f.Search))
	}
	if f.IssuedFrom != nil {
		w.add(`issue_date >= ?`, f.IssuedFrom.Format(dateLayout))
	}
	if f.IssuedTo != nil {
		w.add(`issue_date <= ?`, f.IssuedTo.Format(dateLayout))
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+invoiceColumns+` FROM invoices`+w.sql()+` ORDER BY issue_date, number`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	var out []*domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, inv)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoices: %w", err)
	}

	if err := r.loadChildren(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SQLiteInvoiceRepo) UpdateStatus(ctx context.Context, inv *domain.Invoice) error {
	res, err := r.db.ExecContext(ctx, `UPDATE invoices SET status = ?, updated_at = ? WHERE id = ?`,
		string(inv.Status), formatTime(inv.UpdatedAt), inv.ID)
	if err != nil {
		return fmt.Errorf("updating invoice status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("invoice: %w", ErrNotFound)
	}
	return nil
}

func (r *SQLiteInvoiceRepo) AddPayment(ctx context.Context, p *domain.Payment) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO invoice_payments
		(id, invoice_id, paid_at, method, amount, reference, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.InvoiceID, p.Date.Format(dateLayout), p.Method, p.Amount, p.Reference, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("inserting payment: %w", err)
	}
	return nil
}

// loadChildren fills items and payments. Rows of the parent query must be
// closed first: an in-memory store has a single connection.
func (r *SQLiteInvoiceRepo) loadChildren(ctx context.Context, invoices []*domain.Invoice) error {
	for _, inv := range invoices {
		items, err := r.db.QueryContext(ctx, `SELECT description, quantity, unit_price, amount
			FROM invoice_items WHERE invoice_id = ? ORDER BY position`, inv.ID)
		if err != nil {
			return fmt.Errorf("loading invoice items: %w", err)
		}
		inv.Items = []domain.LineItem{}
		for items.Next() {
			var it domain.LineItem
			if err := items.Scan(&it.Description, &it.Quantity, &it.UnitPrice, &it.Amount); err != nil {
				items.Close()
				return fmt.Errorf("scanning invoice item: %w", err)
			}
			inv.Items = append(inv.Items, it)
		}
		items.Close()

		pays, err := r.db.QueryContext(ctx, `SELECT id, invoice_id, paid_at, method, amount, reference
			FROM invoice_payments WHERE invoice_id = ? ORDER BY paid_at, created_at`, inv.ID)
		if err != nil {
			return fmt.Errorf("loading payments: %w", err)
		}
		inv.Payments = []domain.Payment{}
		for pays.Next() {
			var p domain.Payment
			var paidAt string
			if err := pays.Scan(&p.ID, &p.InvoiceID, &paidAt, &p.Method, &p.Amount, &p.Reference); err != nil {
				pays.Close()
				return fmt.Errorf("scanning payment: %w", err)
			}
			if p.Date, err = time.Parse(dateLayout, paidAt); err != nil {
				pays.Close()
				return fmt.Errorf("parsing payment date: %w", err)
			}
			inv.Payments = append(inv.Payments, p)
		}
		pays.Close()
	}
	return nil
}

func scanInvoice(row scanner) (*domain.Invoice, error) {
	var inv domain.Invoice
	var status, issue, createdAt, updatedAt string
	var due sql.NullString
	err := row.Scan(&inv.ID, &inv.Number, &inv.ProjectID, &inv.ClientID, &inv.Subtotal, &inv.Discount,
		&inv.TaxRate, &inv.Tax, &inv.Total, &status, &issue, &due, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning invoice: %w", err)
	}
	inv.Status = domain.InvoiceStatus(status)
	if inv.IssueDate, err = time.Parse(dateLayout, issue); err != nil {
		return nil, fmt.Errorf("parsing issue_date: %w", err)
	}
	if d := parseNullableTime(due, dateLayout); d != nil {
		inv.DueDate = *d
	}
	if inv.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing invoice created_at: %w", err)
	}
	if inv.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing invoice updated_at: %w", err)
	}
	return &inv, nil
}
