package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/decoraops/quotation-service/internal/model"
)

type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

type quotationRow struct {
	ID               uuid.UUID
	QuotationNumber  string
	CustomerID       uuid.UUID
	SalesExecutiveID uuid.UUID
	QuotationDate    string
	Items            []byte
	Pricing          []byte
	Terms            []byte
	Status           string
	CreatedAt        time.Time
}

const quotationColumns = `id, quotation_number, customer_id, sales_executive_id, quotation_date, items, pricing, terms, status, created_at`

func (r *QuotationRepository) Save(ctx context.Context, q *model.PersistedQuotation) error {
	items, err := json.Marshal(q.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	pricing, err := json.Marshal(q.Pricing)
	if err != nil {
		return fmt.Errorf("marshal pricing: %w", err)
	}
	terms, err := json.Marshal(q.Terms)
	if err != nil {
		return fmt.Errorf("marshal terms: %w", err)
	}

	return r.db.WithContext(ctx).Exec(`
		INSERT INTO quotations (id, quotation_number, customer_id, sales_executive_id, quotation_date, items, pricing, terms, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?::jsonb, ?::jsonb, ?::jsonb, ?, ?)
	`, q.ID, q.QuotationNumber, q.CustomerID, q.SalesExecutiveID, q.Date, string(items), string(pricing), string(terms), string(q.Status), q.CreatedAt).Error
}

func (r *QuotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.PersistedQuotation, error) {
	var row quotationRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+quotationColumns+`
		FROM quotations
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return rowToQuotation(row)
}

func (r *QuotationRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.PersistedQuotation, error) {
	var rows []quotationRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+quotationColumns+`
		FROM quotations
		WHERE customer_id = ?
		ORDER BY created_at DESC
	`, customerID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rowsToQuotations(rows)
}

func (r *QuotationRepository) ListBySales(ctx context.Context, salesExecutiveID uuid.UUID) ([]model.PersistedQuotation, error) {
	var rows []quotationRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+quotationColumns+`
		FROM quotations
		WHERE sales_executive_id = ?
		ORDER BY created_at DESC
	`, salesExecutiveID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rowsToQuotations(rows)
}

func (r *QuotationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.QuotationStatus) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE quotations SET status = ? WHERE id = ?
	`, string(status), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func rowToQuotation(row quotationRow) (*model.PersistedQuotation, error) {
	q := &model.PersistedQuotation{
		ID:               row.ID,
		QuotationNumber:  row.QuotationNumber,
		CustomerID:       row.CustomerID,
		SalesExecutiveID: row.SalesExecutiveID,
		Date:             row.QuotationDate,
		Status:           model.QuotationStatus(row.Status),
		CreatedAt:        row.CreatedAt,
	}
	if len(row.Items) > 0 {
		if err := json.Unmarshal(row.Items, &q.Items); err != nil {
			return nil, fmt.Errorf("unmarshal items: %w", err)
		}
	}
	if len(row.Pricing) > 0 {
		if err := json.Unmarshal(row.Pricing, &q.Pricing); err != nil {
			return nil, fmt.Errorf("unmarshal pricing: %w", err)
		}
	}
	if len(row.Terms) > 0 {
		if err := json.Unmarshal(row.Terms, &q.Terms); err != nil {
			return nil, fmt.Errorf("unmarshal terms: %w", err)
		}
	}
	return q, nil
}

func rowsToQuotations(rows []quotationRow) ([]model.PersistedQuotation, error) {
	quotations := make([]model.PersistedQuotation, 0, len(rows))
	for _, row := range rows {
		q, err := rowToQuotation(row)
		if err != nil {
			return nil, err
		}
		quotations = append(quotations, *q)
	}
	return quotations, nil
}
