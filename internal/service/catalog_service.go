package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/decoraops/quotation-service/internal/model"
	"github.com/decoraops/quotation-service/internal/repository"
)

// CatalogService covers the simple CRUD surfaces around the pipeline:
// customers for the sales role and the product inventory for admins.
type CatalogService struct {
	customers *repository.CustomerRepository
	products  *repository.ProductRepository
	log       zerolog.Logger
	now       func() time.Time
}

func NewCatalogService(customers *repository.CustomerRepository, products *repository.ProductRepository, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		customers: customers,
		products:  products,
		log:       log,
		now:       time.Now,
	}
}

func (s *CatalogService) CreateCustomer(ctx context.Context, principal model.Principal, input model.CustomerInput) (*model.Customer, error) {
	if !principal.IsSales() {
		return nil, ErrPermissionDenied
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}

	customer := &model.Customer{
		ID:               uuid.New(),
		Name:             name,
		Email:            strings.TrimSpace(input.Email),
		Phone:            strings.TrimSpace(input.Phone),
		Address:          strings.TrimSpace(input.Address),
		SalesExecutiveID: principal.UserID,
		CreatedAt:        s.now(),
	}
	if err := s.customers.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CatalogService) GetCustomerByEmail(ctx context.Context, email string) (*model.Customer, error) {
	customer, err := s.customers.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (s *CatalogService) ListCustomersForSales(ctx context.Context, principal model.Principal, salesExecutiveID uuid.UUID) ([]model.Customer, error) {
	if !principal.IsAdmin() && !(principal.IsSales() && principal.UserID == salesExecutiveID) {
		return nil, ErrPermissionDenied
	}
	return s.customers.ListBySales(ctx, salesExecutiveID)
}

func (s *CatalogService) ListAllCustomers(ctx context.Context, principal model.Principal) ([]model.Customer, error) {
	if !(principal.IsSales() || principal.IsAdmin()) {
		return nil, ErrPermissionDenied
	}
	return s.customers.ListAll(ctx)
}

func (s *CatalogService) ListProducts(ctx context.Context, principal model.Principal) ([]model.Product, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return s.products.List(ctx)
}

func (s *CatalogService) AddProduct(ctx context.Context, principal model.Principal, product model.Product) (*model.Product, error) {
	if !principal.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(product.Name) == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if product.Price < 0 {
		return nil, fmt.Errorf("%w: product price cannot be negative", ErrInvalidInput)
	}

	product.ID = uuid.New()
	product.CreatedAt = s.now()
	if err := s.products.Create(ctx, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.IsAdmin() {
		return ErrPermissionDenied
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}
	return nil
}
