package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/decoraops/quotation-service/internal/model"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

type productRow struct {
	ID           uuid.UUID
	ItemNo       string
	Name         string
	ProductID    string
	ShortText    string
	ProductGroup string
	Price        float64
	Supplier     string
	Store        string
	CreatedAt    time.Time
}

func (r *ProductRepository) List(ctx context.Context) ([]model.Product, error) {
	var rows []productRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, COALESCE(item_no, '') AS item_no, name, COALESCE(product_id, '') AS product_id,
			COALESCE(short_text, '') AS short_text, COALESCE(product_group, '') AS product_group,
			price, COALESCE(supplier, '') AS supplier, COALESCE(store, '') AS store, created_at
		FROM products
		ORDER BY name ASC
	`).Scan(&rows).Error; err != nil {
		return nil, err
	}

	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, model.Product{
			ID:           row.ID,
			ItemNo:       row.ItemNo,
			Name:         row.Name,
			ProductID:    row.ProductID,
			ShortText:    row.ShortText,
			ProductGroup: row.ProductGroup,
			Price:        row.Price,
			Supplier:     row.Supplier,
			Store:        row.Store,
			CreatedAt:    row.CreatedAt,
		})
	}
	return products, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO products (id, item_no, name, product_id, short_text, product_group, price, supplier, store, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, product.ID, product.ItemNo, product.Name, product.ProductID, product.ShortText, product.ProductGroup,
		product.Price, product.Supplier, product.Store, product.CreatedAt).Error
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM products WHERE id = ?`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
