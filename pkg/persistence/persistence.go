// Package persistence provides data storage abstraction layer for workflows and templates.
package persistence

import (
	"context"

	"github.com/rustpress-net/flowstudio/pkg/models"
)

// ListOptions controls filtering, sorting and pagination of workflow listings.
type ListOptions struct {
	Limit  int
	Offset int

	Status *models.WorkflowStatus
	Tag    string
	Query  string // case-insensitive substring match on the workflow name

	SortBy    string // created_at, updated_at or name
	SortOrder string // asc or desc
}

// ListResult is one page of workflows plus paging metadata.
type ListResult struct {
	Workflows   []*models.Workflow `json:"workflows"`
	TotalCount  int64              `json:"total_count"`
	HasNextPage bool               `json:"has_next_page"`
}

// WorkflowRepository stores flat workflow snapshots. GetByID returns
// (nil, nil) when no workflow exists under the id, callers decide whether
// that is an error.
type WorkflowRepository interface {
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
}

// TemplateRepository stores reusable workflow templates.
type TemplateRepository interface {
	List(ctx context.Context) ([]*models.WorkflowTemplate, error)
	GetByID(ctx context.Context, id string) (*models.WorkflowTemplate, error)
	Save(ctx context.Context, template *models.WorkflowTemplate) error
	Delete(ctx context.Context, id string) error
}

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	TemplateRepository() TemplateRepository
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
