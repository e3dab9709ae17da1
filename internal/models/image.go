package models

import (
	"github.com/google/uuid"
	"time"
)

// Image is a gallery entry owned by a single user. FileName is the name the file
// was uploaded under and FileURL is where it can be fetched from.
type Image struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Title     string    `json:"title" db:"title"`
	FileName  string    `json:"file_name" db:"file_name"`
	FileURL   string    `json:"file_url" db:"file_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ImagePatch lists the fields of an update. Nil fields are left unchanged.
type ImagePatch struct {
	Title    *string
	FileName *string
	FileURL  *string
}

func (p ImagePatch) Empty() bool {
	return p.Title == nil && p.FileName == nil && p.FileURL == nil
}

type EventType string

const (
	ImageCreated EventType = "image.created"
	ImageUpdated EventType = "image.updated"
	ImageDeleted EventType = "image.deleted"
)

// ImageEvent describes a committed change to an image.
type ImageEvent struct {
	Type       EventType `json:"type"`
	ImageID    uuid.UUID `json:"image_id"`
	OwnerID    string    `json:"owner_id"`
	Title      string    `json:"title"`
	FileURL    string    `json:"file_url"`
	OccurredAt time.Time `json:"occurred_at"`
}
