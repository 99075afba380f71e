package service

import (
	"context"
	"errors"
	"strings"

	"github.com/NandiniGupta213/crm/internal/app"
	"github.com/NandiniGupta213/crm/internal/authz"
	"github.com/NandiniGupta213/crm/internal/codegen"
	"github.com/NandiniGupta213/crm/internal/db"
	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/repository"
	"github.com/google/uuid"
)

type invoiceService struct {
	invoices repository.InvoiceRepo
	uow      db.UnitOfWork
	settings
}

func NewInvoiceService(invoices repository.InvoiceRepo, uow db.UnitOfWork, opts ...Option) InvoiceService {
	return &invoiceService{invoices: invoices, uow: uow, settings: newSettings(opts)}
}

func invoiceView(inv *domain.Invoice) *app.InvoiceView {
	if inv.Payments == nil {
		inv.Payments = []domain.Payment{}
	}
	return &app.InvoiceView{Invoice: inv, PaidTotal: inv.PaidTotal(), BalanceDue: inv.BalanceDue()}
}

func (s *invoiceService) Create(ctx context.Context, c domain.Caller, req app.CreateInvoiceRequest) (*app.InvoiceView, error) {
	fields := map[string]any{"client_id": req.ClientID, "actor": c.ID}
	var view *app.InvoiceView
	err := s.run(ctx, "create-invoice", fields, func(ctx context.Context) error {
		if err := authz.Precheck(c, authz.ActionBilling, domain.KindInvoice); err != nil {
			return err
		}
		status := domain.InvoiceDraft
		if strings.TrimSpace(req.Status) != "" {
			var ok bool
			if status, ok = domain.ParseInvoiceStatus(req.Status); !ok {
				return invalid("unknown invoice status %q", req.Status)
			}
		}
		if status == domain.InvoicePaid {
			return invalid("a new invoice cannot be paid; record a payment instead")
		}
		now := s.now()
		issue := req.IssueDate
		if issue.IsZero() {
			issue = now
		}
		inv := &domain.Invoice{
			ID:        uuid.New().String(),
			ProjectID: req.ProjectID,
			ClientID:  req.ClientID,
			Items:     append([]domain.LineItem(nil), req.Items...),
			Discount:  req.Discount,
			TaxRate:   req.TaxRate,
			Status:    status,
			IssueDate: issue,
			DueDate:   req.DueDate,
			Payments:  []domain.Payment{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := inv.ValidateForCreate(); err != nil {
			return invalid("%v", err)
		}
		inv.Recalculate()

		err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			if _, err := repository.NewSQLiteClientRepo(tx).GetByID(ctx, inv.ClientID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return invalid("client %s does not exist", inv.ClientID)
				}
				return err
			}
			if inv.ProjectID != "" {
				p, err := repository.NewSQLiteProjectRepo(tx).GetByID(ctx, inv.ProjectID)
				if errors.Is(err, repository.ErrNotFound) {
					return invalid("project %s does not exist", inv.ProjectID)
				}
				if err != nil {
					return err
				}
				if p.ClientID != inv.ClientID {
					return invalid("project %s belongs to another client", p.Code)
				}
			}
			txInvoices := repository.NewSQLiteInvoiceRepo(tx)
			gen := codegen.New(repository.NewSQLiteCodeCounterRepo(tx), s.codeAttempts)
			code, err := gen.Assign(ctx, domain.KindInvoice, now.Year(), db.IsUniqueViolation, func(code string) error {
				inv.Number = code
				return txInvoices.Create(ctx, inv)
			})
			fields["number"] = code
			return err
		})
		if err != nil {
			return err
		}
		view = invoiceView(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *invoiceService) Get(ctx context.Context, c domain.Caller, id string) (*app.InvoiceView, error) {
	var view *app.InvoiceView
	err := s.run(ctx, "get-invoice", map[string]any{"invoice_id": id}, func(ctx context.Context) error {
		if err := authz.KnownRole(c); err != nil {
			return err
		}
		inv, err := s.invoices.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) && !c.IsAdmin() {
			return app.Errorf(app.ErrForbidden, "invoice %s is not accessible", id)
		}
		if err != nil {
			return err
		}
		if err := authz.AuthorizeView(c, authz.ForInvoice(inv)); err != nil {
			return err
		}
		view = invoiceView(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *invoiceService) List(ctx context.Context, c domain.Caller, f app.ListFilter) ([]app.InvoiceView, error) {
	views := []app.InvoiceView{}
	err := s.run(ctx, "list-invoices", map[string]any{"actor": c.ID}, func(ctx context.Context) error {
		filter, err := invoiceScope(c)
		if err != nil {
			return err
		}
		if filter.Status, err = parseStatusFilter(f.Status, domain.ParseInvoiceStatus); err != nil {
			return err
		}
		if filter.ClientID == "" {
			filter.ClientID = f.ClientID
		}
		filter.ProjectID = f.ProjectID
		filter.Search = f.Search
		invoices, err := s.invoices.List(ctx, filter)
		if err != nil {
			return err
		}
		for _, inv := range invoices {
			views = append(views, *invoiceView(inv))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// RecordPayment adds a payment. The invoice turns paid once nothing is due.
func (s *invoiceService) RecordPayment(ctx context.Context, c domain.Caller, id string, req app.PaymentRequest) (*app.InvoiceView, error) {
	fields := map[string]any{"invoice_id": id, "amount": req.Amount, "actor": c.ID}
	var view *app.InvoiceView
	err := s.run(ctx, "record-payment", fields, func(ctx context.Context) error {
		if err := authz.Precheck(c, authz.ActionBilling, domain.KindInvoice); err != nil {
			return err
		}
		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txInvoices := repository.NewSQLiteInvoiceRepo(tx)
			inv, err := txInvoices.GetByID(ctx, id)
			if err != nil {
				return err
			}
			now := s.now()
			date := req.Date
			if date.IsZero() {
				date = now
			}
			payment := domain.Payment{
				ID:        uuid.New().String(),
				InvoiceID: inv.ID,
				Date:      date,
				Method:    strings.TrimSpace(req.Method),
				Amount:    req.Amount,
				Reference: req.Reference,
			}
			prev := inv.Status
			if err := inv.ApplyPayment(payment, now); err != nil {
				return invalid("%v", err)
			}
			if err := txInvoices.AddPayment(ctx, &payment); err != nil {
				return err
			}
			if inv.Status != prev {
				fields["status"] = string(inv.Status)
				if err := txInvoices.UpdateStatus(ctx, inv); err != nil {
					return err
				}
			}
			view = invoiceView(inv)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *invoiceService) SetStatus(ctx context.Context, c domain.Caller, id string, status string) (*app.InvoiceView, error) {
	fields := map[string]any{"invoice_id": id, "status": status, "actor": c.ID}
	var view *app.InvoiceView
	err := s.run(ctx, "set-invoice-status", fields, func(ctx context.Context) error {
		next, ok := domain.ParseInvoiceStatus(status)
		if !ok {
			return invalid("unknown invoice status %q", status)
		}
		if err := authz.Precheck(c, authz.ActionBilling, domain.KindInvoice); err != nil {
			return err
		}
		return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			txInvoices := repository.NewSQLiteInvoiceRepo(tx)
			inv, err := txInvoices.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if err := inv.SetStatus(next, s.now()); err != nil {
				return invalid("%v", err)
			}
			if err := txInvoices.UpdateStatus(ctx, inv); err != nil {
				return err
			}
			view = invoiceView(inv)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}
