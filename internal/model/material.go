package model

import (
	"time"

	"github.com/google/uuid"
)

// MaterialStatus is the moderation state of a submitted material.
type MaterialStatus string

const (
	// MaterialStatusPending is the initial state of every submission.
	MaterialStatusPending MaterialStatus = "PENDING"

	// MaterialStatusApproved marks a material visible in its course. Terminal.
	MaterialStatusApproved MaterialStatus = "APPROVED"

	// MaterialStatusRejected marks a material refused by the course owner.
	// Terminal; there is no resubmission path.
	MaterialStatusRejected MaterialStatus = "REJECTED"
)

// Material is a study material submitted into a course. OwnerID is the
// uploader and is fixed at creation; CourseOwnerID is denormalized from the
// course so moderation decisions can be authorized without a second lookup.
type Material struct {
	ID            uuid.UUID      `json:"id"`
	CourseID      uuid.UUID      `json:"course_id"`
	OwnerID       int            `json:"owner_id"`
	CourseOwnerID int            `json:"course_owner_id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	FilePath      string         `json:"file_path"`
	FileSize      int64          `json:"file_size"`
	MimeType      string         `json:"mime_type"`
	Status        MaterialStatus `json:"status"`
	Downloads     int64          `json:"downloads"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`

	Tags []Tag `json:"tags,omitempty"`
}

// UpdateMaterialRequest is the payload for editing material metadata.
type UpdateMaterialRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// ModerationEvent is published when a material changes moderation state.
// Course owners subscribe to these over the WebSocket feed.
type ModerationEvent struct {
	MaterialID uuid.UUID      `json:"material_id"`
	CourseID   uuid.UUID      `json:"course_id"`
	Title      string         `json:"title"`
	OwnerID    int            `json:"owner_id"`
	Status     MaterialStatus `json:"status"`
	DecidedBy  int            `json:"decided_by,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}
