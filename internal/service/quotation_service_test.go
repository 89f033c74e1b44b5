package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decoraops/quotation-service/internal/assignment"
	"github.com/decoraops/quotation-service/internal/config"
	"github.com/decoraops/quotation-service/internal/extraction"
	"github.com/decoraops/quotation-service/internal/model"
	"github.com/decoraops/quotation-service/internal/pricing"
	"github.com/decoraops/quotation-service/internal/workflow"
)

type fakeExtractor struct {
	mu    sync.Mutex
	calls int
	resp  *extraction.Response
	err   error
	// blocking, when set, maps artifact text to a channel the call waits on.
	blocking map[string]chan *extraction.Response
}

func (f *fakeExtractor) Extract(ctx context.Context, artifact model.RawArtifact, token string, onProgress extraction.ProgressFunc) (*extraction.Response, error) {
	f.mu.Lock()
	f.calls++
	waiter := f.blocking[artifact.Text]
	f.mu.Unlock()

	if onProgress != nil {
		onProgress(100)
	}
	if waiter != nil {
		resp, ok := <-waiter
		if !ok {
			return nil, extraction.ErrNetwork
		}
		return resp, nil
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeExtractor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memCustomerStore struct {
	mu       sync.Mutex
	byEmail  map[string]*model.Customer
	getCalls int
	creates  int
}

func newMemCustomerStore() *memCustomerStore {
	return &memCustomerStore{byEmail: make(map[string]*model.Customer)}
}

func (s *memCustomerStore) GetByEmailForSales(ctx context.Context, email string, salesID uuid.UUID) (*model.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if c, ok := s.byEmail[email]; ok && c.SalesExecutiveID == salesID {
		return c, nil
	}
	return nil, nil
}

func (s *memCustomerStore) Create(ctx context.Context, customer *model.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	s.byEmail[customer.Email] = customer
	return nil
}

type memQuotationStore struct {
	mu    sync.Mutex
	saved []*model.PersistedQuotation
	err   error
}

func (s *memQuotationStore) Save(ctx context.Context, q *model.PersistedQuotation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, q)
	return nil
}

func twoItemResponse() *extraction.Response {
	return &extraction.Response{
		Items: []model.LineItem{
			{ProductName: "work chair", ProductID: "P1", Quantity: 6, UnitPrice: 2500, MatchConfidence: 0.91},
			{ProductName: "work table", ProductID: "P2", Quantity: 1, UnitPrice: 12000, MatchConfidence: 0.88},
		},
		Pricing: &extraction.WirePricing{TaxRate: 0.18},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Pricing: config.PricingConfig{DefaultTaxRate: 0.18, MinorUnitExponent: 2},
	}
}

func newPipeline(t *testing.T, extractor Extractor, customers *memCustomerStore, quotations *memQuotationStore) *QuotationService {
	t.Helper()
	if customers == nil {
		customers = newMemCustomerStore()
	}
	if quotations == nil {
		quotations = &memQuotationStore{}
	}
	assigner := assignment.NewAdapter(customers, quotations, zerolog.Nop())
	return NewQuotationService(
		workflow.NewManager(),
		extractor,
		pricing.NewReconciler(2),
		assigner,
		nil, nil, nil, nil, nil,
		testConfig(),
		zerolog.Nop(),
	)
}

func salesPrincipal() model.Principal {
	return model.Principal{UserID: uuid.New(), Role: model.RoleSales, Token: "session-" + uuid.NewString()}
}

func TestPipelineHappyPath(t *testing.T) {
	extractor := &fakeExtractor{resp: twoItemResponse()}
	customers := newMemCustomerStore()
	quotations := &memQuotationStore{}
	svc := newPipeline(t, extractor, customers, quotations)
	principal := salesPrincipal()

	draft, err := svc.Ingest(context.Background(), principal, model.RawArtifact{Text: "6 work chairs, 1 work table"})
	require.NoError(t, err)
	require.Len(t, draft.Items, 2)
	require.NotNil(t, draft.Pricing)
	assert.InDelta(t, 27000, draft.Pricing.Subtotal, 1e-9)
	assert.InDelta(t, 4860, draft.Pricing.TaxAmount, 1e-9)
	assert.InDelta(t, 31860, draft.Pricing.GrandTotal, 1e-9)
	assert.Equal(t, "pasted text", draft.SourceDescription)
	assert.NotEmpty(t, draft.QuotationNumber)

	status := svc.Status(principal)
	assert.Equal(t, workflow.StateDrafted, status.State)
	assert.Equal(t, 100, status.Progress)

	require.NoError(t, svc.RequestAssignment(principal))
	assert.Equal(t, workflow.StateAssigning, svc.Status(principal).State)

	input := model.CustomerInput{Name: "Acme Interiors", Email: "buyer@acme.example"}
	persisted, err := svc.ConfirmAssignment(context.Background(), principal, input)
	require.NoError(t, err)
	assert.Equal(t, model.QuotationStatusPending, persisted.Status)
	assert.Equal(t, principal.UserID, persisted.SalesExecutiveID)
	require.Len(t, quotations.saved, 1)

	status = svc.Status(principal)
	assert.Equal(t, workflow.StatePersisted, status.State)
	assert.Nil(t, status.Draft)
	assert.Equal(t, persisted.ID, status.LastQuotationID)
}

func TestIngestRejectsMissingInputsWithoutNetworkCall(t *testing.T) {
	extractor := &fakeExtractor{resp: twoItemResponse()}
	svc := newPipeline(t, extractor, nil, nil)
	principal := salesPrincipal()

	_, err := svc.Ingest(context.Background(), principal, model.RawArtifact{})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, extractor.callCount())
	assert.Equal(t, workflow.StateIdle, svc.Status(principal).State)

	// Both inputs set is just as invalid.
	artifact := model.RawArtifact{Text: "chairs", Data: []byte("img"), FileName: "room.jpg"}
	_, err = svc.Ingest(context.Background(), principal, artifact)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, extractor.callCount())
}

func TestIngestRequiresSalesRole(t *testing.T) {
	extractor := &fakeExtractor{resp: twoItemResponse()}
	svc := newPipeline(t, extractor, nil, nil)

	customer := model.Principal{UserID: uuid.New(), Role: model.RoleCustomer, Token: "session-c"}
	_, err := svc.Ingest(context.Background(), customer, model.RawArtifact{Text: "chairs"})
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Zero(t, extractor.callCount())
}

func TestIngestDemoModeWhenEnabled(t *testing.T) {
	extractor := &fakeExtractor{resp: twoItemResponse()}
	svc := newPipeline(t, extractor, nil, nil)

	_, err := svc.Ingest(context.Background(), model.Principal{}, model.RawArtifact{Text: "chairs"})
	require.ErrorIs(t, err, ErrPermissionDenied)

	svc.cfg.Quotation.AllowDemoIngest = true
	draft, err := svc.Ingest(context.Background(), model.Principal{}, model.RawArtifact{Text: "chairs"})
	require.NoError(t, err)
	assert.NotNil(t, draft.Pricing)
}

func TestIngestFailureReturnsWorkflowToIdle(t *testing.T) {
	extractor := &fakeExtractor{err: extraction.ErrNetwork}
	svc := newPipeline(t, extractor, nil, nil)
	principal := salesPrincipal()

	_, err := svc.Ingest(context.Background(), principal, model.RawArtifact{Text: "chairs"})
	require.ErrorIs(t, err, extraction.ErrNetwork)

	status := svc.Status(principal)
	assert.Equal(t, workflow.StateIdle, status.State)
	assert.Nil(t, status.Draft)
	assert.NotEmpty(t, status.Message)
}

func TestSecondIngestionSupersedesFirst(t *testing.T) {
	firstCh := make(chan *extraction.Response, 1)
	secondCh := make(chan *extraction.Response, 1)
	extractor := &fakeExtractor{blocking: map[string]chan *extraction.Response{
		"first document":  firstCh,
		"second document": secondCh,
	}}
	svc := newPipeline(t, extractor, nil, nil)
	principal := salesPrincipal()

	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Ingest(context.Background(), principal, model.RawArtifact{Text: "first document"})
		firstErr <- err
	}()

	// Wait for the first extraction to be in flight.
	for extractor.callCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	type ingestResult struct {
		draft *model.QuotationDraft
		err   error
	}
	secondDone := make(chan ingestResult, 1)
	go func() {
		draft, err := svc.Ingest(context.Background(), principal, model.RawArtifact{Text: "second document"})
		secondDone <- ingestResult{draft: draft, err: err}
	}()
	for extractor.callCount() < 2 {
		time.Sleep(time.Millisecond)
	}

	// Release both extractions; the first finishes with stale results.
	first := twoItemResponse()
	first.QuotationID = "QT-FIRST"
	second := twoItemResponse()
	second.QuotationID = "QT-SECOND"
	firstCh <- first
	secondCh <- second

	require.ErrorIs(t, <-firstErr, workflow.ErrSuperseded)
	result := <-secondDone
	require.NoError(t, result.err)

	status := svc.Status(principal)
	require.NotNil(t, status.Draft)
	// Only the second ingestion's result is ever applied.
	assert.Equal(t, "QT-SECOND", status.Draft.QuotationNumber)
	assert.Equal(t, "QT-SECOND", result.draft.QuotationNumber)
}

func TestConfirmAssignmentValidationBeforeAnyWrite(t *testing.T) {
	extractor := &fakeExtractor{resp: twoItemResponse()}
	customers := newMemCustomerStore()
	quotations := &memQuotationStore{}
	svc := newPipeline(t, extractor, customers, quotations)
	principal := salesPrincipal()

	_, err := svc.Ingest(context.Background(), principal, model.RawArtifact{Text: "chairs"})
	require.NoError(t, err)
	require.NoError(t, svc.RequestAssignment(principal))

	_, err = svc.ConfirmAssignment(context.Background(), principal, model.CustomerInput{Email: "x@y.example"})
	require.ErrorIs(t, err, assignment.ErrValidation)
	assert.Zero(t, customers.getCalls)
	assert.Zero(t, customers.creates)
	assert.Empty(t, quotations.saved)

	// The draft survives for a corrected retry.
	status := svc.Status(principal)
	assert.Equal(t, workflow.StateAssigning, status.State)
	require.NotNil(t, status.Draft)
}

func TestConfirmAssignmentPartialFailureKeepsDraft(t *testing.T) {
	extractor := &fakeExtractor{resp: twoItemResponse()}
	customers := newMemCustomerStore()
	quotations := &memQuotationStore{err: errors.New("store down")}
	svc := newPipeline(t, extractor, customers, quotations)
	principal := salesPrincipal()

	_, err := svc.Ingest(context.Background(), principal, model.RawArtifact{Text: "chairs"})
	require.NoError(t, err)
	require.NoError(t, svc.RequestAssignment(principal))

	input := model.CustomerInput{Name: "Acme Interiors", Email: "buyer@acme.example"}
	_, err = svc.ConfirmAssignment(context.Background(), principal, input)

	var partial *assignment.PartialAssignmentError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 1, customers.creates)

	// Retry persists without creating a second customer.
	quotations.err = nil
	persisted, err := svc.ConfirmAssignment(context.Background(), principal, input)
	require.NoError(t, err)
	assert.Equal(t, 1, customers.creates)
	assert.Equal(t, partial.CustomerID, persisted.CustomerID)
	assert.Equal(t, workflow.StatePersisted, svc.Status(principal).State)
}

func TestRequestAssignmentRefusedWithoutDraft(t *testing.T) {
	svc := newPipeline(t, &fakeExtractor{resp: twoItemResponse()}, nil, nil)
	principal := salesPrincipal()

	err := svc.RequestAssignment(principal)
	require.ErrorIs(t, err, workflow.ErrInvalidState)
}

func TestDraftDefaultsFilledFromResponse(t *testing.T) {
	resp := twoItemResponse()
	resp.QuotationID = "QT-FROMWIRE"
	resp.FileName = "floorplan.pdf"
	extractor := &fakeExtractor{resp: resp}
	svc := newPipeline(t, extractor, nil, nil)
	principal := salesPrincipal()

	artifact := model.RawArtifact{FileName: "floorplan.pdf", Data: []byte("pdf-bytes")}
	draft, err := svc.Ingest(context.Background(), principal, artifact)
	require.NoError(t, err)

	assert.Equal(t, "QT-FROMWIRE", draft.QuotationNumber)
	assert.Equal(t, "floorplan.pdf", draft.SourceDescription)
	assert.Equal(t, "7 days", draft.Validity)
	assert.Equal(t, model.StandardTerms, draft.Terms)
	assert.NotEmpty(t, draft.Date)
	assert.Equal(t, principal.UserID, draft.CreatedBySalesUserID)
}

func TestIdenticalItemsMergedBeforePricing(t *testing.T) {
	resp := &extraction.Response{
		Items: []model.LineItem{
			{ProductName: "work chair", ProductID: "P1", Quantity: 4, UnitPrice: 2500},
			{ProductName: "work chair", ProductID: "P1", Quantity: 2, UnitPrice: 2500},
		},
	}
	svc := newPipeline(t, &fakeExtractor{resp: resp}, nil, nil)
	principal := salesPrincipal()

	draft, err := svc.Ingest(context.Background(), principal, model.RawArtifact{Text: "chairs"})
	require.NoError(t, err)
	require.Len(t, draft.Items, 1)
	assert.Equal(t, 6, draft.Items[0].Quantity)
	assert.InDelta(t, 15000, draft.Items[0].LineTotal, 1e-9)
	assert.InDelta(t, 15000, draft.Pricing.Subtotal, 1e-9)
}
