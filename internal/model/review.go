package model

import (
	"time"

	"github.com/google/uuid"
)

// Review is a free-text comment a user leaves on a material.
type Review struct {
	ID         int       `json:"id"`
	MaterialID uuid.UUID `json:"material_id"`
	OwnerID    int       `json:"owner_id"`
	OwnerName  string    `json:"owner_name,omitempty"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateReviewRequest is the payload for reviewing a material.
type CreateReviewRequest struct {
	Body string `json:"body" binding:"required,min=1,max=2000"`
}
