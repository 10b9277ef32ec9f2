package models

import "time"

// WorkflowTemplate is a reusable workflow snapshot in the template catalog.
// Instantiating a template copies the embedded workflow with fresh ids.
type WorkflowTemplate struct {
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,min=3"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	Color       string    `json:"color,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Workflow    *Workflow `json:"workflow" validate:"required"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Clone returns a deep copy of the template.
func (t *WorkflowTemplate) Clone() *WorkflowTemplate {
	clone := *t

	if t.Tags != nil {
		clone.Tags = make([]string, len(t.Tags))
		copy(clone.Tags, t.Tags)
	}

	if t.Workflow != nil {
		clone.Workflow = t.Workflow.Clone()
	}

	return &clone
}
