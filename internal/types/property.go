// Package types provides type definitions for structured data used throughout the relocation matcher.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Property is a listing in the relocation catalog. Scoring reads only
// Region and MonthlyCost; the remaining fields are echoed back to callers.
type Property struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Region      string    `json:"region"`
	City        string    `json:"city,omitempty"`
	MonthlyCost int       `json:"monthly_cost"` // yen per month
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PropertyInput is the admin request body for creating or replacing a property.
type PropertyInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Region      string `json:"region" validate:"required,max=100"`
	City        string `json:"city,omitempty" validate:"max=100"`
	MonthlyCost int    `json:"monthly_cost" validate:"gte=0"`
	Description string `json:"description,omitempty" validate:"max=4000"`
	ImageURL    string `json:"image_url,omitempty" validate:"omitempty,url"`
}

// Validate validates the PropertyInput using the validator.
func (p *PropertyInput) Validate() error {
	return validator.New().Struct(p)
}
