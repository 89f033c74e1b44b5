package workflow

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decoraops/quotation-service/internal/model"
)

func draftWithPricing() *model.QuotationDraft {
	return &model.QuotationDraft{
		QuotationNumber: "QT-TEST0001",
		Items:           []model.LineItem{{ProductName: "work chair", Quantity: 6, UnitPrice: 2500, LineTotal: 15000}},
		Pricing:         &model.PricingSummary{Subtotal: 15000, TaxRate: 0.18, TaxAmount: 2700, GrandTotal: 17700},
	}
}

func TestHappyPathTransitions(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, StateIdle, m.Snapshot().State)

	gen, err := m.StartIngestion()
	require.NoError(t, err)
	assert.Equal(t, StateUploading, m.Snapshot().State)
	assert.Equal(t, 0, m.Snapshot().Progress)

	m.ReportProgress(gen, 40)
	assert.Equal(t, 40, m.Snapshot().Progress)

	require.NoError(t, m.CompleteExtraction(gen, draftWithPricing()))
	status := m.Snapshot()
	assert.Equal(t, StateDrafted, status.State)
	assert.Equal(t, 100, status.Progress)
	require.NotNil(t, status.Draft)

	require.NoError(t, m.RequestAssignment())
	assert.Equal(t, StateAssigning, m.Snapshot().State)

	draft, err := m.BeginConfirm()
	require.NoError(t, err)
	assert.Equal(t, "QT-TEST0001", draft.QuotationNumber)

	quotationID := uuid.New()
	m.CompleteConfirm(quotationID)
	status = m.Snapshot()
	assert.Equal(t, StatePersisted, status.State)
	assert.Nil(t, status.Draft)
	assert.Equal(t, quotationID, status.LastQuotationID)
}

func TestExtractionFailureReturnsToIdle(t *testing.T) {
	m := NewMachine()
	gen, err := m.StartIngestion()
	require.NoError(t, err)

	require.NoError(t, m.FailExtraction(gen, errors.New("network error")))
	status := m.Snapshot()
	assert.Equal(t, StateIdle, status.State)
	assert.Nil(t, status.Draft)
	assert.Equal(t, 0, status.Progress)
	assert.Equal(t, "network error", status.Message)
}

func TestSupersededExtractionResultsAreDropped(t *testing.T) {
	m := NewMachine()
	first, err := m.StartIngestion()
	require.NoError(t, err)

	// A second ingestion supersedes the first.
	second, err := m.StartIngestion()
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// Late progress and completion from the first generation are ignored.
	m.ReportProgress(first, 90)
	assert.Equal(t, 0, m.Snapshot().Progress)

	stale := draftWithPricing()
	stale.QuotationNumber = "QT-STALE"
	require.ErrorIs(t, m.CompleteExtraction(first, stale), ErrSuperseded)
	require.ErrorIs(t, m.FailExtraction(first, errors.New("late failure")), ErrSuperseded)

	fresh := draftWithPricing()
	require.NoError(t, m.CompleteExtraction(second, fresh))
	status := m.Snapshot()
	require.NotNil(t, status.Draft)
	assert.Equal(t, "QT-TEST0001", status.Draft.QuotationNumber)
}

func TestProgressNeverDecreases(t *testing.T) {
	m := NewMachine()
	gen, _ := m.StartIngestion()

	m.ReportProgress(gen, 60)
	m.ReportProgress(gen, 30)
	assert.Equal(t, 60, m.Snapshot().Progress)

	m.ReportProgress(gen, 250)
	assert.Equal(t, 100, m.Snapshot().Progress)
}

func TestRequestAssignmentRequiresPricedDraft(t *testing.T) {
	m := NewMachine()

	// No draft at all.
	require.ErrorIs(t, m.RequestAssignment(), ErrInvalidState)

	gen, _ := m.StartIngestion()
	unpriced := draftWithPricing()
	unpriced.Pricing = nil
	require.NoError(t, m.CompleteExtraction(gen, unpriced))

	require.ErrorIs(t, m.RequestAssignment(), ErrInvalidState)
}

func TestCancelReturnsToDrafted(t *testing.T) {
	m := NewMachine()
	gen, _ := m.StartIngestion()
	require.NoError(t, m.CompleteExtraction(gen, draftWithPricing()))
	require.NoError(t, m.RequestAssignment())

	require.NoError(t, m.CancelAssignment())
	status := m.Snapshot()
	assert.Equal(t, StateDrafted, status.State)
	require.NotNil(t, status.Draft)
}

func TestConcurrentConfirmRejected(t *testing.T) {
	m := NewMachine()
	gen, _ := m.StartIngestion()
	require.NoError(t, m.CompleteExtraction(gen, draftWithPricing()))
	require.NoError(t, m.RequestAssignment())

	_, err := m.BeginConfirm()
	require.NoError(t, err)

	_, err = m.BeginConfirm()
	require.ErrorIs(t, err, ErrBusy)

	// While confirming, the machine refuses new ingestions and cancels too.
	_, err = m.StartIngestion()
	require.ErrorIs(t, err, ErrBusy)
	require.ErrorIs(t, m.CancelAssignment(), ErrBusy)
	require.ErrorIs(t, m.Abandon(), ErrBusy)
}

func TestFailConfirmKeepsDraftForRetry(t *testing.T) {
	m := NewMachine()
	gen, _ := m.StartIngestion()
	require.NoError(t, m.CompleteExtraction(gen, draftWithPricing()))
	require.NoError(t, m.RequestAssignment())

	_, err := m.BeginConfirm()
	require.NoError(t, err)
	m.FailConfirm(errors.New("persistence failed"))

	status := m.Snapshot()
	assert.Equal(t, StateAssigning, status.State)
	require.NotNil(t, status.Draft)
	assert.Equal(t, "persistence failed", status.Message)

	// Retry is possible.
	_, err = m.BeginConfirm()
	require.NoError(t, err)
}

func TestAbandonResetsToIdle(t *testing.T) {
	m := NewMachine()
	gen, _ := m.StartIngestion()
	require.NoError(t, m.CompleteExtraction(gen, draftWithPricing()))

	require.NoError(t, m.Abandon())
	status := m.Snapshot()
	assert.Equal(t, StateIdle, status.State)
	assert.Nil(t, status.Draft)
}

func TestNewIngestionAfterPersisted(t *testing.T) {
	m := NewMachine()
	gen, _ := m.StartIngestion()
	require.NoError(t, m.CompleteExtraction(gen, draftWithPricing()))
	require.NoError(t, m.RequestAssignment())
	_, err := m.BeginConfirm()
	require.NoError(t, err)
	m.CompleteConfirm(uuid.New())

	gen2, err := m.StartIngestion()
	require.NoError(t, err)
	assert.Equal(t, StateUploading, m.Snapshot().State)

	// The persisted flow's generation is gone for good.
	require.ErrorIs(t, m.CompleteExtraction(gen, draftWithPricing()), ErrSuperseded)
	require.NoError(t, m.CompleteExtraction(gen2, draftWithPricing()))
}

func TestManagerSeparatesSessions(t *testing.T) {
	mgr := NewManager()
	a := mgr.ForSession("session-a")
	b := mgr.ForSession("session-b")
	require.NotSame(t, a, b)

	gen, _ := a.StartIngestion()
	require.NoError(t, a.CompleteExtraction(gen, draftWithPricing()))
	assert.Equal(t, StateDrafted, a.Snapshot().State)
	assert.Equal(t, StateIdle, b.Snapshot().State)

	assert.Same(t, a, mgr.ForSession("session-a"))
	mgr.Drop("session-a")
	require.NotSame(t, a, mgr.ForSession("session-a"))
}
