package model

import (
	"time"

	"github.com/google/uuid"
)

// Rating is a 1-5 star score a user gives a material. One rating per user per
// material; re-rating overwrites the previous value.
type Rating struct {
	ID         int       `json:"id"`
	MaterialID uuid.UUID `json:"material_id"`
	OwnerID    int       `json:"owner_id"`
	Stars      int       `json:"stars"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateRatingRequest is the payload for rating a material.
type CreateRatingRequest struct {
	Stars int `json:"stars" binding:"required,min=1,max=5"`
}

// RatingSummary aggregates ratings for a material.
type RatingSummary struct {
	MaterialID uuid.UUID `json:"material_id"`
	Average    float64   `json:"average"`
	Count      int       `json:"count"`
}
