package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for persistent models kept in the client database.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations on append-only models.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Video is a catalog video as returned by the API.
type Video struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	AmazonLink      string    `json:"amazonLink"`
	Tags            []string  `json:"tags"`
	CategoryID      *int64    `json:"categoryId,omitempty"`
	ThumbnailURL    string    `json:"thumbnailUrl,omitempty"`
	VideoURL        string    `json:"videoUrl,omitempty"`
	MetaTitle       string    `json:"metaTitle,omitempty"`
	MetaDescription string    `json:"metaDescription,omitempty"`
	MetaKeywords    []string  `json:"metaKeywords,omitempty"`
	CreatedAt       time.Time `json:"createdAt,omitzero"`
}

// Category is a catalog category as returned by the API.
type Category struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	ImgURL string `json:"imgUrl,omitempty"`
}

// Page is the envelope returned by list endpoints.
type Page[T any] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ViewMode selects how the video list is rendered.
type ViewMode string

const (
	ViewCards ViewMode = "cards"
	ViewTable ViewMode = "table"
)

// ParseViewMode returns the mode named by s and whether it is known.
func ParseViewMode(s string) (ViewMode, bool) {
	switch m := ViewMode(s); m {
	case ViewCards, ViewTable:
		return m, true
	default:
		return ViewCards, false
	}
}

// Toggle returns the other view mode.
func (m ViewMode) Toggle() ViewMode {
	if m == ViewTable {
		return ViewCards
	}
	return ViewTable
}

// Session records the signed-in admin.
type Session struct {
	Username string    `json:"username"`
	LoginAt  time.Time `json:"loginAt"`
}

// Operation names a write sent to the API.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Submission is a local audit record of one write request.
type Submission struct {
	id        string
	entity    string
	entityID  int64
	operation Operation
	fields    []string
	multipart bool
	err       string
	createdAt time.Time
}

// NewSubmission creates a [Submission] stamped with the current time. The ID is assigned by the repository.
func NewSubmission(entity string, entityID int64, op Operation, fields []string, multipart bool) *Submission {
	return &Submission{
		entity:    entity,
		entityID:  entityID,
		operation: op,
		fields:    fields,
		multipart: multipart,
		createdAt: time.Now(),
	}
}

func (s *Submission) ID() string           { return s.id }
func (s *Submission) CreatedAt() time.Time { return s.createdAt }
func (s *Submission) Entity() string       { return s.entity }
func (s *Submission) EntityID() int64      { return s.entityID }
func (s *Submission) Operation() Operation { return s.operation }
func (s *Submission) Fields() []string     { return s.fields }
func (s *Submission) Multipart() bool      { return s.multipart }
func (s *Submission) Err() string          { return s.err }

func (s *Submission) SetID(id string)          { s.id = id }
func (s *Submission) SetEntityID(id int64)     { s.entityID = id }
func (s *Submission) SetErr(msg string)        { s.err = msg }
func (s *Submission) SetCreatedAt(t time.Time) { s.createdAt = t }

// Validate checks that the submission names an entity and a known operation.
func (s *Submission) Validate() error {
	if s.entity == "" {
		return fmt.Errorf("submission entity is required")
	}
	switch s.operation {
	case OpCreate, OpUpdate, OpDelete:
		return nil
	default:
		return fmt.Errorf("unknown submission operation: %q", s.operation)
	}
}
