package assignment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/decoraops/quotation-service/internal/model"
)

var ErrValidation = errors.New("customer name and email are required")

// PartialAssignmentError reports that the customer was resolved but the
// quotation write failed. The caller retries persistence only; the customer
// is found again by email and not re-created.
type PartialAssignmentError struct {
	CustomerID uuid.UUID
	Cause      error
}

func (e *PartialAssignmentError) Error() string {
	return fmt.Sprintf("customer %s created but quotation not persisted: %v", e.CustomerID, e.Cause)
}

func (e *PartialAssignmentError) Unwrap() error { return e.Cause }

type CustomerStore interface {
	// GetByEmailForSales returns (nil, nil) when no customer with that email
	// exists in the sales executive's book.
	GetByEmailForSales(ctx context.Context, email string, salesExecutiveID uuid.UUID) (*model.Customer, error)
	Create(ctx context.Context, customer *model.Customer) error
}

type QuotationStore interface {
	Save(ctx context.Context, quotation *model.PersistedQuotation) error
}

// Adapter performs the two-step assignment write: resolve the customer by
// email (create on first contact), then persist the quotation against it.
// The two steps are not one transaction; a failure between them surfaces as
// *PartialAssignmentError.
type Adapter struct {
	customers  CustomerStore
	quotations QuotationStore
	log        zerolog.Logger
	now        func() time.Time
}

func NewAdapter(customers CustomerStore, quotations QuotationStore, log zerolog.Logger) *Adapter {
	return &Adapter{
		customers:  customers,
		quotations: quotations,
		log:        log,
		now:        time.Now,
	}
}

func (a *Adapter) Assign(ctx context.Context, draft *model.QuotationDraft, input model.CustomerInput, principal model.Principal) (*model.PersistedQuotation, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" {
		return nil, ErrValidation
	}
	if draft == nil || draft.Pricing == nil {
		return nil, fmt.Errorf("%w: draft has no pricing summary", ErrValidation)
	}

	customer, err := a.customers.GetByEmailForSales(ctx, email, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolve customer: %w", err)
	}
	if customer == nil {
		customer = &model.Customer{
			ID:               uuid.New(),
			Name:             name,
			Email:            email,
			Phone:            strings.TrimSpace(input.Phone),
			Address:          strings.TrimSpace(input.Address),
			SalesExecutiveID: principal.UserID,
			CreatedAt:        a.now(),
		}
		if err := a.customers.Create(ctx, customer); err != nil {
			return nil, fmt.Errorf("create customer: %w", err)
		}
		a.log.Info().Str("customer_id", customer.ID.String()).Str("email", email).Msg("customer created")
	}

	quotation := &model.PersistedQuotation{
		ID:               uuid.New(),
		QuotationNumber:  draft.QuotationNumber,
		CustomerID:       customer.ID,
		SalesExecutiveID: principal.UserID,
		Date:             draft.Date,
		Items:            draft.Items,
		Pricing:          *draft.Pricing,
		Terms:            draft.Terms,
		Status:           model.QuotationStatusPending,
		CreatedAt:        a.now(),
	}

	if err := a.quotations.Save(ctx, quotation); err != nil {
		a.log.Error().Err(err).Str("customer_id", customer.ID.String()).Msg("quotation persistence failed after customer resolution")
		return nil, &PartialAssignmentError{CustomerID: customer.ID, Cause: err}
	}

	return quotation, nil
}
