package model

import "time"

// Tag is a shared label attachable to materials. Tags have an owner (their
// creator) but form a shared vocabulary: attaching is scoped to the material
// owner, deleting a tag itself is moderator-only.
type Tag struct {
	ID        int       `json:"id"`
	OwnerID   int       `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTagRequest is the payload for adding a tag to the vocabulary.
type CreateTagRequest struct {
	Name string `json:"name" binding:"required,min=2,max=50"`
}

// AttachTagRequest is the payload for linking a tag to a material.
type AttachTagRequest struct {
	TagID int `json:"tag_id" binding:"required"`
}
