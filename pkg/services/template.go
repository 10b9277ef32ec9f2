package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rustpress-net/flowstudio/pkg/models"
	"github.com/rustpress-net/flowstudio/pkg/persistence"
)

// CreateTemplateRequest carries the catalog metadata for a template
// snapshotted from an existing workflow.
type CreateTemplateRequest struct {
	Name        string   `json:"name"        validate:"required,min=3"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	Tags        []string `json:"tags"`
}

type Template struct {
	persistence persistence.Persistence
}

// NewTemplate creates a new template catalog service.
func NewTemplate(persistence persistence.Persistence) *Template {
	return &Template{
		persistence: persistence,
	}
}

// List returns the template catalog, optionally filtered by category.
func (t *Template) List(ctx context.Context, category string) ([]*models.WorkflowTemplate, error) {
	templates, err := t.persistence.TemplateRepository().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	if category == "" {
		return templates, nil
	}

	filtered := make([]*models.WorkflowTemplate, 0, len(templates))

	for _, template := range templates {
		if strings.EqualFold(template.Category, category) {
			filtered = append(filtered, template)
		}
	}

	return filtered, nil
}

// FetchByID fetches a template by ID.
func (t *Template) FetchByID(ctx context.Context, id string) (*models.WorkflowTemplate, error) {
	template, err := t.persistence.TemplateRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if template == nil {
		return nil, ErrTemplateNotFound
	}

	return template, nil
}

// CreateFromWorkflow snapshots a workflow into the template catalog. The
// embedded workflow keeps its ids, remapping happens on instantiation.
func (t *Template) CreateFromWorkflow(
	ctx context.Context,
	workflowID string,
	req *CreateTemplateRequest,
) (*models.WorkflowTemplate, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, ErrTemplateNameRequired
	}

	workflow, err := t.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	now := time.Now().UTC()

	template := &models.WorkflowTemplate{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Category:    req.Category,
		Icon:        req.Icon,
		Color:       req.Color,
		Tags:        req.Tags,
		Workflow:    workflow.Clone(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = t.persistence.TemplateRepository().Save(ctx, template)
	if err != nil {
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	return template, nil
}

// Delete removes a template from the catalog.
func (t *Template) Delete(ctx context.Context, id string) error {
	template, err := t.persistence.TemplateRepository().GetByID(ctx, id)
	if err != nil {
		return err
	}

	if template == nil {
		return ErrTemplateNotFound
	}

	return t.persistence.TemplateRepository().Delete(ctx, id)
}

// Instantiate creates a draft workflow from a template and saves it to the
// workflow catalog. Node, connection and variable ids are remapped so
// repeated instantiations of the same template never collide.
func (t *Template) Instantiate(ctx context.Context, templateID, name string) (*models.Workflow, error) {
	template, err := t.FetchByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if template.Workflow == nil {
		return nil, fmt.Errorf("template %s has no workflow snapshot", templateID)
	}

	now := time.Now().UTC()

	workflow := template.Workflow.Clone()
	workflow.ID = uuid.New().String()
	workflow.Status = models.WorkflowStatusDraft
	workflow.Version = 1
	workflow.Stats = models.WorkflowStats{}
	workflow.CreatedAt = now
	workflow.UpdatedAt = now

	if name = strings.TrimSpace(name); name != "" {
		workflow.Name = name
	} else {
		workflow.Name = template.Name
	}

	remapWorkflowIDs(workflow)

	err = t.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to save instantiated workflow: %w", err)
	}

	return workflow, nil
}
