// Package models defines the core domain models for the workflow editor
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft    WorkflowStatus = "draft"    // Editable, never executed
	WorkflowStatusActive   WorkflowStatus = "active"   // Live, runnable
	WorkflowStatusPaused   WorkflowStatus = "paused"   // Temporarily disabled
	WorkflowStatusArchived WorkflowStatus = "archived" // Retired, read-only
)

// Valid reports whether the status is one of the known lifecycle states.
func (s WorkflowStatus) Valid() bool {
	switch s {
	case WorkflowStatusDraft, WorkflowStatusActive, WorkflowStatusPaused, WorkflowStatusArchived:
		return true
	}

	return false
}

// Workflow represents a node-based automation graph built in the editor.
type Workflow struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"        validate:"required,min=3"`
	Description string              `json:"description"`
	Icon        string              `json:"icon,omitempty"`
	Color       string              `json:"color,omitempty"`
	Status      WorkflowStatus      `json:"status"      validate:"required"`
	Nodes       []*WorkflowNode     `json:"nodes"`       // Node instances on the canvas
	Connections []*Connection       `json:"connections"` // Directed edges between ports
	Trigger     WorkflowTrigger     `json:"trigger"`
	Variables   []*WorkflowVariable `json:"variables"`
	Settings    WorkflowSettings    `json:"settings"`
	Tags        []string            `json:"tags,omitempty"`
	Version     int                 `json:"version"`
	Stats       WorkflowStats       `json:"stats"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// WorkflowTrigger describes how a workflow is started.
type WorkflowTrigger struct {
	Type   string         `json:"type"`
	Config map[string]any `json:"config,omitempty"`
}

// WorkflowSettings hold per-workflow execution policy.
type WorkflowSettings struct {
	TimeoutSeconds  int    `json:"timeout_seconds"`
	MaxRetries      int    `json:"max_retries"`
	LogLevel        string `json:"log_level,omitempty"`
	NotifyOnSuccess bool   `json:"notify_on_success"`
	NotifyOnFailure bool   `json:"notify_on_failure"`
}

// WorkflowStats aggregate run outcomes for the catalog list view.
type WorkflowStats struct {
	TotalRuns      int        `json:"total_runs"`
	SuccessfulRuns int        `json:"successful_runs"`
	FailedRuns     int        `json:"failed_runs"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	AverageRunMs   int64      `json:"average_run_ms"`
}

// NodeByID returns the node with the given ID, or nil when absent.
func (w *Workflow) NodeByID(id string) *WorkflowNode {
	for _, node := range w.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// ConnectionByID returns the connection with the given ID, or nil when absent.
func (w *Workflow) ConnectionByID(id string) *Connection {
	for _, conn := range w.Connections {
		if conn.ID == id {
			return conn
		}
	}

	return nil
}

// VariableByID returns the variable with the given ID, or nil when absent.
func (w *Workflow) VariableByID(id string) *WorkflowVariable {
	for _, variable := range w.Variables {
		if variable.ID == id {
			return variable
		}
	}

	return nil
}

// TriggerNodes returns the nodes in the trigger category, in graph order.
func (w *Workflow) TriggerNodes() []*WorkflowNode {
	var triggers []*WorkflowNode

	for _, node := range w.Nodes {
		if node.IsTrigger() {
			triggers = append(triggers, node)
		}
	}

	return triggers
}

// Clone returns a structurally independent deep copy of the workflow.
// Mutating the copy never alters the original.
func (w *Workflow) Clone() *Workflow {
	clone := *w

	clone.Nodes = make([]*WorkflowNode, len(w.Nodes))
	for i, node := range w.Nodes {
		clone.Nodes[i] = node.Clone()
	}

	clone.Connections = make([]*Connection, len(w.Connections))
	for i, conn := range w.Connections {
		clone.Connections[i] = conn.Clone()
	}

	clone.Variables = make([]*WorkflowVariable, len(w.Variables))
	for i, variable := range w.Variables {
		clone.Variables[i] = variable.Clone()
	}

	if w.Tags != nil {
		clone.Tags = make([]string, len(w.Tags))
		copy(clone.Tags, w.Tags)
	}

	clone.Trigger.Config = cloneMap(w.Trigger.Config)

	if w.Stats.LastRunAt != nil {
		lastRun := *w.Stats.LastRunAt
		clone.Stats.LastRunAt = &lastRun
	}

	return &clone
}
