// Package web provides HTTP request and response types for the workflow API.
package web

import "github.com/rustpress-net/flowstudio/pkg/models"

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	Name        string   `json:"name"                  validate:"required,min=3"`
	Description string   `json:"description"`
	Icon        string   `json:"icon,omitempty"`
	Color       string   `json:"color,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Status      string   `json:"status,omitempty"      validate:"omitempty,oneof=draft active paused archived"`
}

// UpdateWorkflowRequest represents the request body for updating an existing workflow.
// All fields are optional to support partial updates; nodes, connections and
// variables are managed through their own subroutes.
type UpdateWorkflowRequest struct {
	Name        *string                  `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string                  `json:"description,omitempty"`
	Icon        *string                  `json:"icon,omitempty"`
	Color       *string                  `json:"color,omitempty"`
	Status      *string                  `json:"status,omitempty"      validate:"omitempty,oneof=draft active paused archived"`
	Tags        []string                 `json:"tags,omitempty"`
	Settings    *models.WorkflowSettings `json:"settings,omitempty"`
}

// CreateNodeRequest represents the request body for adding a node to a workflow.
// Name and Config default to the registered node type's label and field defaults.
type CreateNodeRequest struct {
	Type     string          `json:"type"     validate:"required"`
	Name     string          `json:"name,omitempty"`
	Position models.Position `json:"position"`
	Config   map[string]any  `json:"config,omitempty"`
}

// UpdateNodeRequest represents the request body for updating an existing node.
// Type cannot be changed; a Position moves the node on the canvas.
type UpdateNodeRequest struct {
	Name     *string          `json:"name,omitempty"     validate:"omitempty,min=1"`
	Config   map[string]any   `json:"config,omitempty"`
	Position *models.Position `json:"position,omitempty"`
	Size     *models.Size     `json:"size,omitempty"`
}

// CreateConnectionRequest represents the request body for connecting two ports.
type CreateConnectionRequest struct {
	SourceNodeID string `json:"source_node_id" validate:"required"`
	SourcePortID string `json:"source_port_id" validate:"required"`
	TargetNodeID string `json:"target_node_id" validate:"required"`
	TargetPortID string `json:"target_port_id" validate:"required"`
	Label        string `json:"label,omitempty"`
	Condition    string `json:"condition,omitempty"`
}

// VariableRequest represents the request body for creating or replacing a
// workflow variable.
type VariableRequest struct {
	Name        string `json:"name"        validate:"required,min=1"`
	Type        string `json:"type"        validate:"required,oneof=string number boolean object array"`
	Value       any    `json:"value"`
	Description string `json:"description,omitempty"`
	Secret      bool   `json:"secret"`
}

// ExecuteWorkflowRequest represents the request body for starting a run.
// TriggerData is exposed to node config templates as .trigger.
type ExecuteWorkflowRequest struct {
	TriggerData map[string]any `json:"trigger_data,omitempty"`
}

// CreateTemplateRequest represents the request body for snapshotting a
// workflow into the template catalog.
type CreateTemplateRequest struct {
	WorkflowID  string   `json:"workflow_id" validate:"required"`
	Name        string   `json:"name"        validate:"required,min=3"`
	Description string   `json:"description"`
	Category    string   `json:"category,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	Color       string   `json:"color,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// InstantiateTemplateRequest represents the request body for creating a
// workflow from a template. An empty name falls back to the template's name.
type InstantiateTemplateRequest struct {
	Name string `json:"name,omitempty"`
}
