package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/decoraops/quotation-service/internal/config"
	"github.com/decoraops/quotation-service/internal/extraction"
	"github.com/decoraops/quotation-service/internal/model"
	"github.com/decoraops/quotation-service/internal/pricing"
	"github.com/decoraops/quotation-service/internal/repository"
	"github.com/decoraops/quotation-service/internal/workflow"
)

// Extractor is the gateway to the external extraction service.
type Extractor interface {
	Extract(ctx context.Context, artifact model.RawArtifact, sessionToken string, onProgress extraction.ProgressFunc) (*extraction.Response, error)
}

// Assigner performs the customer-resolution plus quotation-persistence write.
type Assigner interface {
	Assign(ctx context.Context, draft *model.QuotationDraft, input model.CustomerInput, principal model.Principal) (*model.PersistedQuotation, error)
}

type PDFGenerator interface {
	Generate(doc model.QuotationDocument) ([]byte, error)
}

type ExcelGenerator interface {
	Generate(book model.SalesBook) ([]byte, error)
}

// QuotationService drives the pipeline: ingest -> extract -> reconcile ->
// draft -> assign -> persist, one workflow per session.
type QuotationService struct {
	workflows  *workflow.Manager
	extractor  Extractor
	reconciler *pricing.Reconciler
	assigner   Assigner
	quotations *repository.QuotationRepository
	customers  *repository.CustomerRepository
	users      *repository.UserRepository
	pdf        PDFGenerator
	excel      ExcelGenerator
	cfg        *config.Config
	log        zerolog.Logger
	now        func() time.Time
}

func NewQuotationService(
	workflows *workflow.Manager,
	extractor Extractor,
	reconciler *pricing.Reconciler,
	assigner Assigner,
	quotations *repository.QuotationRepository,
	customers *repository.CustomerRepository,
	users *repository.UserRepository,
	pdf PDFGenerator,
	excel ExcelGenerator,
	cfg *config.Config,
	log zerolog.Logger,
) *QuotationService {
	return &QuotationService{
		workflows:  workflows,
		extractor:  extractor,
		reconciler: reconciler,
		assigner:   assigner,
		quotations: quotations,
		customers:  customers,
		users:      users,
		pdf:        pdf,
		excel:      excel,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

// Ingest validates the artifact, runs extraction and stores the resulting
// draft in the session's workflow. Precondition failures are rejected before
// the extraction service is contacted. A later ingestion from the same
// session supersedes this one; the superseded call reports
// workflow.ErrSuperseded and its results are discarded.
func (s *QuotationService) Ingest(ctx context.Context, principal model.Principal, artifact model.RawArtifact) (*model.QuotationDraft, error) {
	if err := s.checkIngestAccess(principal); err != nil {
		return nil, err
	}
	if err := artifact.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	machine := s.workflows.ForSession(principal.Token)
	gen, err := machine.StartIngestion()
	if err != nil {
		return nil, err
	}

	resp, err := s.extractor.Extract(ctx, artifact, principal.Token, func(pct int) {
		machine.ReportProgress(gen, pct)
	})
	if err != nil {
		if failErr := machine.FailExtraction(gen, err); errors.Is(failErr, workflow.ErrSuperseded) {
			return nil, workflow.ErrSuperseded
		}
		return nil, err
	}

	draft, err := s.buildDraft(resp, artifact, principal)
	if err != nil {
		if failErr := machine.FailExtraction(gen, err); errors.Is(failErr, workflow.ErrSuperseded) {
			return nil, workflow.ErrSuperseded
		}
		return nil, err
	}

	if err := machine.CompleteExtraction(gen, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *QuotationService) checkIngestAccess(principal model.Principal) error {
	if principal.IsSales() {
		return nil
	}
	if principal.IsAnonymous() && s.cfg.Quotation.AllowDemoIngest {
		return nil
	}
	return ErrPermissionDenied
}

// buildDraft maps the wire response into a draft and reconciles pricing from
// the items. The service's own totals are advisory only: the grand total is
// always recomputed, and a disagreement is logged rather than accepted.
func (s *QuotationService) buildDraft(resp *extraction.Response, artifact model.RawArtifact, principal model.Principal) (*model.QuotationDraft, error) {
	items := make([]model.LineItem, len(resp.Items))
	copy(items, resp.Items)
	for i := range items {
		if items[i].LineTotal == 0 {
			items[i].LineTotal = float64(items[i].Quantity) * items[i].UnitPrice
		}
	}
	items = pricing.MergeIdenticalItems(items)

	taxRate := s.cfg.Pricing.DefaultTaxRate
	discount := 0.0
	if resp.Pricing != nil {
		if resp.Pricing.TaxRate > 0 {
			taxRate = resp.Pricing.TaxRate
		}
		switch {
		case resp.Pricing.DiscountAmount > 0:
			discount = resp.Pricing.DiscountAmount
		case resp.Pricing.DiscountRate > 0:
			subtotal := 0.0
			for _, item := range items {
				subtotal += float64(item.Quantity) * item.UnitPrice
			}
			discount = s.reconciler.RoundMinorUnit(subtotal * resp.Pricing.DiscountRate)
		}
	}

	summary, err := s.reconciler.Reconcile(items, taxRate, discount)
	if err != nil {
		return nil, err
	}

	if resp.Pricing != nil && resp.Pricing.GrandTotal > 0 {
		if math.Abs(resp.Pricing.GrandTotal-summary.GrandTotal) > 0.005 {
			s.log.Warn().
				Float64("reported", resp.Pricing.GrandTotal).
				Float64("recomputed", summary.GrandTotal).
				Msg("extraction grand total disagrees with recomputed pricing")
		}
	}

	number := strings.TrimSpace(resp.QuotationID)
	if number == "" {
		number = model.NewQuotationNumber()
	}
	date := strings.TrimSpace(resp.Date)
	if date == "" {
		date = s.now().Format("2006-01-02")
	}
	validity := strings.TrimSpace(resp.Validity)
	if validity == "" {
		validity = "7 days"
	}
	terms := resp.Terms
	if len(terms) == 0 {
		terms = model.StandardTerms
	}
	source := strings.TrimSpace(resp.FileName)
	if source == "" {
		source = artifact.SourceDescription()
	}

	return &model.QuotationDraft{
		QuotationNumber:      number,
		Date:                 date,
		Validity:             validity,
		Items:                items,
		Pricing:              &summary,
		Terms:                terms,
		SourceDescription:    source,
		CreatedBySalesUserID: principal.UserID,
	}, nil
}

// Status reports the session's workflow snapshot.
func (s *QuotationService) Status(principal model.Principal) workflow.Status {
	return s.workflows.ForSession(principal.Token).Snapshot()
}

func (s *QuotationService) RequestAssignment(principal model.Principal) error {
	if !principal.IsSales() {
		return ErrPermissionDenied
	}
	return s.workflows.ForSession(principal.Token).RequestAssignment()
}

func (s *QuotationService) CancelAssignment(principal model.Principal) error {
	if !principal.IsSales() {
		return ErrPermissionDenied
	}
	return s.workflows.ForSession(principal.Token).CancelAssignment()
}

// ConfirmAssignment runs the assignment write. Only full success clears the
// draft; a partial failure keeps the workflow in assigning so persistence can
// be retried without re-creating the customer.
func (s *QuotationService) ConfirmAssignment(ctx context.Context, principal model.Principal, input model.CustomerInput) (*model.PersistedQuotation, error) {
	if !principal.IsSales() {
		return nil, ErrPermissionDenied
	}

	machine := s.workflows.ForSession(principal.Token)
	draft, err := machine.BeginConfirm()
	if err != nil {
		return nil, err
	}

	persisted, err := s.assigner.Assign(ctx, draft, input, principal)
	if err != nil {
		machine.FailConfirm(err)
		return nil, err
	}

	machine.CompleteConfirm(persisted.ID)
	s.log.Info().
		Str("quotation_id", persisted.ID.String()).
		Str("customer_id", persisted.CustomerID.String()).
		Msg("quotation assigned")
	return persisted, nil
}

func (s *QuotationService) Abandon(principal model.Principal) error {
	return s.workflows.ForSession(principal.Token).Abandon()
}

func (s *QuotationService) GetQuotation(ctx context.Context, id uuid.UUID) (*model.PersistedQuotation, error) {
	q, err := s.quotations.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return q, nil
}

func (s *QuotationService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.PersistedQuotation, error) {
	return s.quotations.ListByCustomer(ctx, customerID)
}

// ListBySales is restricted to the sales executive's own book; admins may
// read any book.
func (s *QuotationService) ListBySales(ctx context.Context, principal model.Principal, salesExecutiveID uuid.UUID) ([]model.PersistedQuotation, error) {
	if err := s.checkBookAccess(principal, salesExecutiveID); err != nil {
		return nil, err
	}
	return s.quotations.ListBySales(ctx, salesExecutiveID)
}

// UpdateStatus accepts a customer approval decision. The status value is the
// only thing this core validates; the decision itself is made outside.
func (s *QuotationService) UpdateStatus(ctx context.Context, principal model.Principal, id uuid.UUID, rawStatus string) error {
	if !(principal.IsCustomer() || principal.IsAdmin()) {
		return ErrPermissionDenied
	}
	status, ok := model.ParseQuotationStatus(rawStatus)
	if !ok {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, rawStatus)
	}
	if err := s.quotations.UpdateStatus(ctx, id, status); err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}
	return nil
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *QuotationService) ExportQuotationPDF(ctx context.Context, principal model.Principal, id uuid.UUID) (*ExportResult, error) {
	if !(principal.IsSales() || principal.IsAdmin()) {
		return nil, ErrPermissionDenied
	}

	quotation, err := s.GetQuotation(ctx, id)
	if err != nil {
		return nil, err
	}
	if principal.IsSales() && quotation.SalesExecutiveID != principal.UserID {
		return nil, ErrPermissionDenied
	}

	customer, err := s.customers.GetByID(ctx, quotation.CustomerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	salesName := ""
	if user, err := s.users.GetByID(ctx, quotation.SalesExecutiveID); err == nil {
		salesName = user.Name
	}

	content, err := s.pdf.Generate(model.QuotationDocument{
		Quotation:          *quotation,
		Customer:           *customer,
		SalesExecutiveName: salesName,
		MeanConfidence:     pricing.MeanConfidence(quotation.Items),
	})
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		FileName: fmt.Sprintf("quotation-%s.pdf", strings.ToLower(quotation.QuotationNumber)),
		Content:  content,
	}, nil
}

func (s *QuotationService) ExportSalesBook(ctx context.Context, principal model.Principal, salesExecutiveID uuid.UUID) (*ExportResult, error) {
	if err := s.checkBookAccess(principal, salesExecutiveID); err != nil {
		return nil, err
	}

	quotations, err := s.quotations.ListBySales(ctx, salesExecutiveID)
	if err != nil {
		return nil, err
	}

	customerNames := make(map[string]string)
	for _, q := range quotations {
		key := q.CustomerID.String()
		if _, ok := customerNames[key]; ok {
			continue
		}
		if customer, err := s.customers.GetByID(ctx, q.CustomerID); err == nil {
			customerNames[key] = customer.Name
		}
	}

	salesName := ""
	if user, err := s.users.GetByID(ctx, salesExecutiveID); err == nil {
		salesName = user.Name
	}

	content, err := s.excel.Generate(model.SalesBook{
		SalesExecutiveID:   salesExecutiveID.String(),
		SalesExecutiveName: salesName,
		Quotations:         quotations,
		CustomerNames:      customerNames,
	})
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		FileName: fmt.Sprintf("quotations-%s-%s.xlsx", salesExecutiveID, s.now().Format("20060102")),
		Content:  content,
	}, nil
}

func (s *QuotationService) checkBookAccess(principal model.Principal, salesExecutiveID uuid.UUID) error {
	if principal.IsAdmin() {
		return nil
	}
	if principal.IsSales() && principal.UserID == salesExecutiveID {
		return nil
	}
	return ErrPermissionDenied
}
