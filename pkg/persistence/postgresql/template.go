package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustpress-net/flowstudio/pkg/models"
)

// TemplateRepository handles template-related database operations.
type TemplateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *sql.DB, logger *slog.Logger) *TemplateRepository {
	return &TemplateRepository{db: db, logger: logger}
}

// List returns all templates sorted by name.
func (r *TemplateRepository) List(ctx context.Context) ([]*models.WorkflowTemplate, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT snapshot FROM workflow_templates ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}

	defer func(ctx context.Context, r *TemplateRepository) {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}(ctx, r)

	templates := make([]*models.WorkflowTemplate, 0)

	for rows.Next() {
		var snapshot []byte

		if err := rows.Scan(&snapshot); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}

		var template models.WorkflowTemplate

		if err := json.Unmarshal(snapshot, &template); err != nil {
			return nil, fmt.Errorf("failed to unmarshal template: %w", err)
		}

		templates = append(templates, &template)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}

	return templates, nil
}

// GetByID retrieves a template snapshot by its ID.
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.WorkflowTemplate, error) {
	var snapshot []byte

	err := r.db.QueryRowContext(ctx, "SELECT snapshot FROM workflow_templates WHERE id = $1", id).Scan(&snapshot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to query template %s: %w", id, err)
	}

	var template models.WorkflowTemplate

	if err := json.Unmarshal(snapshot, &template); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template %s: %w", id, err)
	}

	return &template, nil
}

// Save upserts a template snapshot.
func (r *TemplateRepository) Save(ctx context.Context, template *models.WorkflowTemplate) error {
	if template.CreatedAt.IsZero() {
		template.CreatedAt = time.Now().UTC()
	}

	snapshot, err := json.Marshal(template)
	if err != nil {
		return fmt.Errorf("failed to marshal template %s: %w", template.ID, err)
	}

	query := `
		INSERT INTO workflow_templates (id, name, category, snapshot, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			snapshot = EXCLUDED.snapshot
	`

	_, err = r.db.ExecContext(ctx, query,
		template.ID,
		template.Name,
		template.Category,
		snapshot,
		template.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save template %s: %w", template.ID, err)
	}

	return nil
}

// Delete removes a template by its ID.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM workflow_templates WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete template %s: %w", id, err)
	}

	return nil
}
