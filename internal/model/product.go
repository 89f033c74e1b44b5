package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is an inventory row the extraction service matches detected items
// against. Managed through the admin surface.
type Product struct {
	ID           uuid.UUID `json:"id"`
	ItemNo       string    `json:"itemNo"`
	Name         string    `json:"product"`
	ProductID    string    `json:"productId"`
	ShortText    string    `json:"shortText"`
	ProductGroup string    `json:"productGroup"`
	Price        float64   `json:"price"`
	Supplier     string    `json:"supplier"`
	Store        string    `json:"store"`
	CreatedAt    time.Time `json:"createdAt"`
}

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
