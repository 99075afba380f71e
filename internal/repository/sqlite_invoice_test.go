package repository

import (
	"context"
	"testing"
	"time"

	"github.com/NandiniGupta213/crm/internal/domain"
	"github.com/NandiniGupta213/crm/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceRepo_RoundTripWithItemsAndPayments(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteInvoiceRepo(db)
	ctx := context.Background()
	client := seedClient(t, db)

	inv := testutil.NewTestInvoice(client.ID, 400)
	inv.Items = append(inv.Items, domain.LineItem{Description: "Hosting", Quantity: 2, UnitPrice: 50})
	inv.Recalculate()
	require.NoError(t, repo.Create(ctx, inv))

	pay := &domain.Payment{ID: "pay-1", InvoiceID: inv.ID, Date: time.Now().UTC(), Method: "bank", Amount: 150}
	require.NoError(t, repo.AddPayment(ctx, pay))

	fetched, err := repo.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Items, 2)
	assert.Equal(t, 100.0, fetched.Items[1].Amount)
	assert.Equal(t, 500.0, fetched.Total)
	require.Len(t, fetched.Payments, 1)
	assert.Equal(t, 350.0, fetched.BalanceDue())
}

func TestInvoiceRepo_ListAndUpdateStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteInvoiceRepo(db)
	ctx := context.Background()
	client := seedClient(t, db)

	a := testutil.NewTestInvoice(client.ID, 100)
	b := testutil.NewTestInvoice(client.ID, 200)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	b.Status = domain.InvoiceDraft
	require.NoError(t, repo.UpdateStatus(ctx, b))

	drafts, err := repo.List(ctx, InvoiceFilter{Status: domain.InvoiceDraft})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, b.ID, drafts[0].ID)
	assert.Len(t, drafts[0].Items, 1)

	all, err := repo.List(ctx, InvoiceFilter{ClientID: client.ID})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestInvoiceRepo_DuplicateNumberRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteInvoiceRepo(db)
	ctx := context.Background()
	client := seedClient(t, db)

	a := testutil.NewTestInvoice(client.ID, 100)
	require.NoError(t, repo.Create(ctx, a))
	b := testutil.NewTestInvoice(client.ID, 100)
	b.Number = a.Number
	assert.Error(t, repo.Create(ctx, b))
}
