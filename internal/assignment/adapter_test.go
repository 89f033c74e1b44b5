package assignment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decoraops/quotation-service/internal/model"
)

type fakeCustomerStore struct {
	existing   *model.Customer
	getCalls   int
	createErr  error
	created    []*model.Customer
	createCall int
}

func (f *fakeCustomerStore) GetByEmailForSales(ctx context.Context, email string, salesID uuid.UUID) (*model.Customer, error) {
	f.getCalls++
	if f.existing != nil && f.existing.Email == email && f.existing.SalesExecutiveID == salesID {
		return f.existing, nil
	}
	return nil, nil
}

func (f *fakeCustomerStore) Create(ctx context.Context, customer *model.Customer) error {
	f.createCall++
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, customer)
	return nil
}

type fakeQuotationStore struct {
	saveErr   error
	saveCalls int
	saved     []*model.PersistedQuotation
}

func (f *fakeQuotationStore) Save(ctx context.Context, q *model.PersistedQuotation) error {
	f.saveCalls++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, q)
	return nil
}

func testDraft() *model.QuotationDraft {
	return &model.QuotationDraft{
		QuotationNumber: "QT-AB12CD34",
		Date:            "2026-01-15",
		Items:           []model.LineItem{{ProductName: "work chair", Quantity: 6, UnitPrice: 2500, LineTotal: 15000}},
		Pricing:         &model.PricingSummary{Subtotal: 15000, TaxRate: 0.18, TaxAmount: 2700, GrandTotal: 17700},
		Terms:           model.StandardTerms,
	}
}

func salesPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), Role: model.RoleSales}
}

func TestAssignCreatesCustomerAndQuotation(t *testing.T) {
	customers := &fakeCustomerStore{}
	quotations := &fakeQuotationStore{}
	adapter := NewAdapter(customers, quotations, zerolog.Nop())
	principal := salesPrincipal()

	input := model.CustomerInput{Name: "Acme Interiors", Email: "buyer@acme.example", Phone: "555-0101"}
	persisted, err := adapter.Assign(context.Background(), testDraft(), input, principal)
	require.NoError(t, err)

	require.Len(t, customers.created, 1)
	assert.Equal(t, "Acme Interiors", customers.created[0].Name)
	assert.Equal(t, principal.UserID, customers.created[0].SalesExecutiveID)

	require.Len(t, quotations.saved, 1)
	assert.Equal(t, customers.created[0].ID, persisted.CustomerID)
	assert.Equal(t, model.QuotationStatusPending, persisted.Status)
	assert.Equal(t, "QT-AB12CD34", persisted.QuotationNumber)
	assert.Equal(t, principal.UserID, persisted.SalesExecutiveID)
}

func TestAssignReusesExistingCustomer(t *testing.T) {
	principal := salesPrincipal()
	existing := &model.Customer{
		ID:               uuid.New(),
		Name:             "Acme Interiors",
		Email:            "buyer@acme.example",
		SalesExecutiveID: principal.UserID,
	}
	customers := &fakeCustomerStore{existing: existing}
	quotations := &fakeQuotationStore{}
	adapter := NewAdapter(customers, quotations, zerolog.Nop())

	input := model.CustomerInput{Name: "Acme Interiors", Email: "buyer@acme.example"}
	persisted, err := adapter.Assign(context.Background(), testDraft(), input, principal)
	require.NoError(t, err)

	assert.Zero(t, customers.createCall)
	assert.Equal(t, existing.ID, persisted.CustomerID)
}

func TestAssignValidationFailsBeforeAnyCall(t *testing.T) {
	tests := []struct {
		name  string
		input model.CustomerInput
	}{
		{"empty name", model.CustomerInput{Email: "x@y.example"}},
		{"empty email", model.CustomerInput{Name: "Acme"}},
		{"whitespace name", model.CustomerInput{Name: "   ", Email: "x@y.example"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customers := &fakeCustomerStore{}
			quotations := &fakeQuotationStore{}
			adapter := NewAdapter(customers, quotations, zerolog.Nop())

			_, err := adapter.Assign(context.Background(), testDraft(), tt.input, salesPrincipal())
			require.ErrorIs(t, err, ErrValidation)
			assert.Zero(t, customers.getCalls)
			assert.Zero(t, customers.createCall)
			assert.Zero(t, quotations.saveCalls)
		})
	}
}

func TestAssignPartialFailure(t *testing.T) {
	customers := &fakeCustomerStore{}
	quotations := &fakeQuotationStore{saveErr: errors.New("store down")}
	adapter := NewAdapter(customers, quotations, zerolog.Nop())
	principal := salesPrincipal()

	input := model.CustomerInput{Name: "Acme Interiors", Email: "buyer@acme.example"}
	_, err := adapter.Assign(context.Background(), testDraft(), input, principal)

	var partial *PartialAssignmentError
	require.ErrorAs(t, err, &partial)
	require.Len(t, customers.created, 1)
	assert.Equal(t, customers.created[0].ID, partial.CustomerID)

	// Retry resolves the now-existing customer by email instead of creating a
	// second record.
	customers.existing = customers.created[0]
	quotations.saveErr = nil
	persisted, err := adapter.Assign(context.Background(), testDraft(), input, principal)
	require.NoError(t, err)
	assert.Equal(t, 1, customers.createCall)
	assert.Equal(t, customers.created[0].ID, persisted.CustomerID)
}

func TestAssignRejectsUnpricedDraft(t *testing.T) {
	customers := &fakeCustomerStore{}
	adapter := NewAdapter(customers, &fakeQuotationStore{}, zerolog.Nop())

	draft := testDraft()
	draft.Pricing = nil
	input := model.CustomerInput{Name: "Acme", Email: "x@y.example"}
	_, err := adapter.Assign(context.Background(), draft, input, salesPrincipal())
	require.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, customers.getCalls)
}
