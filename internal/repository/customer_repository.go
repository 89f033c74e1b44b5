package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/decoraops/quotation-service/internal/model"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

type customerRow struct {
	ID               uuid.UUID
	Name             string
	Email            string
	Phone            string
	Address          string
	SalesExecutiveID uuid.UUID
	CreatedAt        time.Time
}

const customerColumns = `id, name, email, COALESCE(phone, '') AS phone, COALESCE(address, '') AS address, sales_executive_id, created_at`

// GetByEmailForSales returns (nil, nil) when the email is not in this sales
// executive's book. The assignment adapter relies on that to decide between
// create and reuse.
func (r *CustomerRepository) GetByEmailForSales(ctx context.Context, email string, salesExecutiveID uuid.UUID) (*model.Customer, error) {
	var row customerRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+customerColumns+`
		FROM customers
		WHERE email = ? AND sales_executive_id = ?
		LIMIT 1
	`, email, salesExecutiveID).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return rowToCustomer(row), nil
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var row customerRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+customerColumns+`
		FROM customers
		WHERE email = ?
		ORDER BY created_at ASC
		LIMIT 1
	`, email).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return rowToCustomer(row), nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var row customerRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+customerColumns+`
		FROM customers
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return rowToCustomer(row), nil
}

func (r *CustomerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO customers (id, name, email, phone, address, sales_executive_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, customer.ID, customer.Name, customer.Email, customer.Phone, customer.Address, customer.SalesExecutiveID, customer.CreatedAt).Error
}

func (r *CustomerRepository) ListBySales(ctx context.Context, salesExecutiveID uuid.UUID) ([]model.Customer, error) {
	var rows []customerRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT `+customerColumns+`
		FROM customers
		WHERE sales_executive_id = ?
		ORDER BY created_at DESC
	`, salesExecutiveID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rowsToCustomers(rows), nil
}

func (r *CustomerRepository) ListAll(ctx context.Context) ([]model.Customer, error) {
	var rows []customerRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT ` + customerColumns + `
		FROM customers
		ORDER BY created_at DESC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rowsToCustomers(rows), nil
}

func rowToCustomer(row customerRow) *model.Customer {
	return &model.Customer{
		ID:               row.ID,
		Name:             row.Name,
		Email:            row.Email,
		Phone:            row.Phone,
		Address:          row.Address,
		SalesExecutiveID: row.SalesExecutiveID,
		CreatedAt:        row.CreatedAt,
	}
}

func rowsToCustomers(rows []customerRow) []model.Customer {
	customers := make([]model.Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, *rowToCustomer(row))
	}
	return customers
}
