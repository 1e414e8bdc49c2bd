package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/shopx/internal/models"
	"github.com/desertthunder/shopx/internal/shared"
)

// SubmissionRepository implements [models.Repository] for [models.Submission] records.
type SubmissionRepository struct {
	db *sql.DB
}

// NewSubmissionRepository creates a new [SubmissionRepository] with the given database connection
func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a submission with a generated ID
func (r *SubmissionRepository) Create(s *models.Submission) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	s.SetID(shared.GenerateID())

	query := `
		INSERT INTO submissions (id, entity, entity_id, operation, fields, multipart, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errText sql.NullString
	if s.Err() != "" {
		errText = sql.NullString{String: s.Err(), Valid: true}
	}

	_, err := r.db.Exec(query, s.ID(), s.Entity(), s.EntityID(), string(s.Operation()),
		strings.Join(s.Fields(), ","), s.Multipart(), errText, s.CreatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	return nil
}

// Get retrieves a submission by ID
func (r *SubmissionRepository) Get(id string) (*models.Submission, error) {
	query := `
		SELECT id, entity, entity_id, operation, fields, multipart, error, created_at
		FROM submissions
		WHERE id = ?
	`

	s, err := scanSubmission(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("submission not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query submission: %w", err)
	}
	return s, nil
}

// List retrieves submissions newest first. Supported criteria: "entity" (string), "entity_id" (int64) and
// "limit" (int).
func (r *SubmissionRepository) List(criteria map[string]any) ([]*models.Submission, error) {
	query := `
		SELECT id, entity, entity_id, operation, fields, multipart, error, created_at
		FROM submissions
		WHERE 1=1
	`
	var args []any

	if entity, ok := criteria["entity"].(string); ok && entity != "" {
		query += " AND entity = ?"
		args = append(args, entity)
	}
	if entityID, ok := criteria["entity_id"].(int64); ok {
		query += " AND entity_id = ?"
		args = append(args, entityID)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var out []*models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		out = append(out, s)
	}

	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*models.Submission, error) {
	var (
		id        string
		entity    string
		entityID  sql.NullInt64
		operation string
		fields    string
		multipart bool
		errText   sql.NullString
		createdAt time.Time
	)

	if err := row.Scan(&id, &entity, &entityID, &operation, &fields, &multipart, &errText, &createdAt); err != nil {
		return nil, err
	}

	var names []string
	if fields != "" {
		names = strings.Split(fields, ",")
	}

	s := models.NewSubmission(entity, entityID.Int64, models.Operation(operation), names, multipart)
	s.SetID(id)
	s.SetErr(errText.String)
	s.SetCreatedAt(createdAt)
	return s, nil
}

// SubmissionRecorder adapts [SubmissionRepository] to the write recorder used by the catalog engine.
//
// Recording failures are returned but never block the write they describe.
type SubmissionRecorder struct {
	repo *SubmissionRepository
}

// NewSubmissionRecorder creates a new SubmissionRecorder with the given repository
func NewSubmissionRecorder(repo *SubmissionRepository) *SubmissionRecorder {
	return &SubmissionRecorder{repo: repo}
}

// Record stores one write attempt. writeErr is the API error, if any.
func (a *SubmissionRecorder) Record(entity string, entityID int64, op models.Operation, fields []string, multipart bool, writeErr error) error {
	s := models.NewSubmission(entity, entityID, op, fields, multipart)
	if writeErr != nil {
		s.SetErr(writeErr.Error())
	}
	if err := a.repo.Create(s); err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	return nil
}
