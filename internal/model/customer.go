package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer email is unique within one sales executive's book; the assignment
// adapter reuses an existing record rather than creating a duplicate.
type Customer struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Address          string    `json:"address"`
	SalesExecutiveID uuid.UUID `json:"salesExecutiveId"`
	CreatedAt        time.Time `json:"createdAt"`
}

// CustomerInput is the form payload supplied at assignment time.
type CustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}
