package models

import (
	"maps"
	"time"
)

// ExecutionStatus represents the run state of a workflow execution.
type ExecutionStatus string

const (
	ExecutionStatusPending   ExecutionStatus = "pending"
	ExecutionStatusRunning   ExecutionStatus = "running"
	ExecutionStatusCompleted ExecutionStatus = "completed"
	ExecutionStatusFailed    ExecutionStatus = "failed"
	ExecutionStatusCancelled ExecutionStatus = "cancelled"
	ExecutionStatusPaused    ExecutionStatus = "paused"
)

// IsTerminal reports whether the status admits no further transitions.
func (s ExecutionStatus) IsTerminal() bool {
	switch s {
	case ExecutionStatusCompleted, ExecutionStatusFailed, ExecutionStatusCancelled:
		return true
	}

	return false
}

// WorkflowExecution is one run of a workflow, simulated or real.
type WorkflowExecution struct {
	ID              string              `json:"id"`
	WorkflowID      string              `json:"workflow_id"`
	WorkflowVersion int                 `json:"workflow_version"`
	Status          ExecutionStatus     `json:"status"`
	TriggeredBy     string              `json:"triggered_by"` // Trigger type that started the run
	TriggerData     map[string]any      `json:"trigger_data,omitempty"`
	StartedAt       time.Time           `json:"started_at"`
	CompletedAt     *time.Time          `json:"completed_at,omitempty"`
	NodeLogs        []*NodeExecutionLog `json:"node_logs"`
	Error           string              `json:"error,omitempty"`
}

// Duration returns the elapsed run time, using now for unfinished runs.
func (e *WorkflowExecution) Duration(now time.Time) time.Duration {
	if e.CompletedAt != nil {
		return e.CompletedAt.Sub(e.StartedAt)
	}

	return now.Sub(e.StartedAt)
}

// NodeLogByID returns the log entry for the given node, or nil when absent.
func (e *WorkflowExecution) NodeLogByID(nodeID string) *NodeExecutionLog {
	for _, log := range e.NodeLogs {
		if log.NodeID == nodeID {
			return log
		}
	}

	return nil
}

// Clone returns a deep copy of the execution record.
func (e *WorkflowExecution) Clone() *WorkflowExecution {
	clone := *e

	if e.TriggerData != nil {
		clone.TriggerData = maps.Clone(e.TriggerData)
	}

	if e.CompletedAt != nil {
		completedAt := *e.CompletedAt
		clone.CompletedAt = &completedAt
	}

	if e.NodeLogs != nil {
		clone.NodeLogs = make([]*NodeExecutionLog, len(e.NodeLogs))
		for i, log := range e.NodeLogs {
			clone.NodeLogs[i] = log.Clone()
		}
	}

	return &clone
}

// NodeLogStatus represents the run state of a single node within an execution.
type NodeLogStatus string

const (
	NodeLogStatusPending   NodeLogStatus = "pending"
	NodeLogStatusRunning   NodeLogStatus = "running"
	NodeLogStatusCompleted NodeLogStatus = "completed"
	NodeLogStatusFailed    NodeLogStatus = "failed"
	NodeLogStatusSkipped   NodeLogStatus = "skipped"
)

// NodeExecutionLog records one node's outcome within an execution.
type NodeExecutionLog struct {
	NodeID      string         `json:"node_id"`
	NodeName    string         `json:"node_name"`
	Status      NodeLogStatus  `json:"status"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	DurationMs  int64          `json:"duration_ms"`
	Input       map[string]any `json:"input,omitempty"`
	Output      map[string]any `json:"output,omitempty"`
	Error       string         `json:"error,omitempty"`
	Attempts    int            `json:"attempts"`
}

// Clone returns a deep copy of the log entry.
func (l *NodeExecutionLog) Clone() *NodeExecutionLog {
	clone := *l

	if l.StartedAt != nil {
		startedAt := *l.StartedAt
		clone.StartedAt = &startedAt
	}

	if l.CompletedAt != nil {
		completedAt := *l.CompletedAt
		clone.CompletedAt = &completedAt
	}

	if l.Input != nil {
		clone.Input = maps.Clone(l.Input)
	}

	if l.Output != nil {
		clone.Output = maps.Clone(l.Output)
	}

	return &clone
}
