package workflow

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/decoraops/quotation-service/internal/model"
)

type State string

const (
	StateIdle      State = "idle"
	StateUploading State = "uploading"
	StateDrafted   State = "drafted"
	StateAssigning State = "assigning"
	StatePersisted State = "persisted"
)

var (
	ErrBusy         = errors.New("another operation is in flight")
	ErrSuperseded   = errors.New("superseded by a newer ingestion")
	ErrInvalidState = errors.New("operation not allowed in current state")
)

// Status is a point-in-time view of one session's workflow. A consumer can
// poll it at any moment and always sees a consistent state, never a stuck
// progress indicator.
type Status struct {
	State           State                 `json:"state"`
	Progress        int                   `json:"progress"`
	Message         string                `json:"message"`
	Draft           *model.QuotationDraft `json:"draft,omitempty"`
	LastQuotationID uuid.UUID             `json:"lastQuotationId,omitempty"`
}

// Machine drives one session's quotation flow:
//
//	idle -> uploading -> drafted -> assigning -> persisted
//
// with an error path back to idle from every state except persisted. The
// draft is owned here until it is persisted. Every transition away from
// uploading bumps the generation counter, so results of a superseded
// extraction can never be applied: the stale generation no longer matches.
type Machine struct {
	mu            sync.Mutex
	state         State
	generation    uint64
	progress      int
	message       string
	draft         *model.QuotationDraft
	confirming    bool
	lastPersisted uuid.UUID
}

func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// StartIngestion discards any current draft and moves to uploading. An
// extraction already in flight is implicitly superseded; its late results are
// dropped by the generation check. While an assignment confirmation is being
// written the machine refuses re-entry instead.
func (m *Machine) StartIngestion() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.confirming {
		return 0, fmt.Errorf("%w: assignment confirmation in progress", ErrBusy)
	}

	m.generation++
	m.state = StateUploading
	m.progress = 0
	m.message = "Analyzing document..."
	m.draft = nil
	return m.generation, nil
}

// ReportProgress records upload progress for the given generation. Stale
// generations are ignored; progress never moves backwards.
func (m *Machine) ReportProgress(gen uint64, pct int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation || m.state != StateUploading {
		return
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if pct > m.progress {
		m.progress = pct
	}
}

// CompleteExtraction stores the draft and moves to drafted, forcing progress
// to 100. Returns ErrSuperseded when a newer ingestion has taken over.
func (m *Machine) CompleteExtraction(gen uint64, draft *model.QuotationDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation || m.state != StateUploading {
		return ErrSuperseded
	}

	m.draft = draft
	m.state = StateDrafted
	m.progress = 100
	m.message = "Quotation generated successfully"
	return nil
}

// FailExtraction surfaces the failure and returns the workflow to idle with
// no partial draft. Stale generations report ErrSuperseded and leave the
// machine untouched.
func (m *Machine) FailExtraction(gen uint64, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.generation || m.state != StateUploading {
		return ErrSuperseded
	}

	m.state = StateIdle
	m.draft = nil
	m.progress = 0
	if cause != nil {
		m.message = cause.Error()
	}
	return nil
}

// RequestAssignment opens the assignment step. A draft without a pricing
// summary is not eligible.
func (m *Machine) RequestAssignment() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateDrafted {
		return fmt.Errorf("%w: cannot assign from %s", ErrInvalidState, m.state)
	}
	if m.draft == nil || m.draft.Pricing == nil {
		return fmt.Errorf("%w: draft has no pricing summary", ErrInvalidState)
	}

	m.state = StateAssigning
	m.message = ""
	return nil
}

// CancelAssignment returns to drafted, keeping the draft.
func (m *Machine) CancelAssignment() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAssigning {
		return fmt.Errorf("%w: cannot cancel from %s", ErrInvalidState, m.state)
	}
	if m.confirming {
		return fmt.Errorf("%w: assignment confirmation in progress", ErrBusy)
	}

	m.state = StateDrafted
	return nil
}

// BeginConfirm marks the assignment write as in flight and hands out the
// draft. A second confirmation attempt while one runs is rejected.
func (m *Machine) BeginConfirm() (*model.QuotationDraft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAssigning {
		return nil, fmt.Errorf("%w: cannot confirm from %s", ErrInvalidState, m.state)
	}
	if m.confirming {
		return nil, fmt.Errorf("%w: assignment confirmation in progress", ErrBusy)
	}

	m.confirming = true
	draft := *m.draft
	return &draft, nil
}

// CompleteConfirm clears the draft and records the persisted quotation. The
// draft's lifecycle ends here; a new ingestion starts a fresh one.
func (m *Machine) CompleteConfirm(quotationID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.confirming = false
	m.generation++
	m.state = StatePersisted
	m.draft = nil
	m.lastPersisted = quotationID
	m.message = "Quotation assigned successfully"
}

// FailConfirm keeps the machine in assigning with the draft intact so the
// operator can retry or cancel. Nothing is left half-applied on this side.
func (m *Machine) FailConfirm(cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.confirming = false
	if cause != nil {
		m.message = cause.Error()
	}
}

// Abandon discards the draft and resets to idle.
func (m *Machine) Abandon() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.confirming {
		return fmt.Errorf("%w: assignment confirmation in progress", ErrBusy)
	}

	m.generation++
	m.state = StateIdle
	m.draft = nil
	m.progress = 0
	m.message = ""
	return nil
}

func (m *Machine) Snapshot() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := Status{
		State:           m.state,
		Progress:        m.progress,
		Message:         m.message,
		LastQuotationID: m.lastPersisted,
	}
	if m.draft != nil {
		draft := *m.draft
		status.Draft = &draft
	}
	return status
}
