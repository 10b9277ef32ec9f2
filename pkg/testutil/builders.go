// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/google/uuid"

	"github.com/rustpress-net/flowstudio/pkg/models"
)

// CreateTestNode creates a test WorkflowNode with default values that can be overridden.
func CreateTestNode(overrides ...func(*models.WorkflowNode)) *models.WorkflowNode {
	node := &models.WorkflowNode{
		ID:       uuid.New().String(),
		Type:     "log-message",
		Category: models.NodeCategoryAction,
		Name:     "Test Node",
		Position: models.Position{X: 100, Y: 200},
		Size:     models.Size{Width: 200, Height: 80},
		Config:   map[string]any{"message": "test", "level": "info"},
		Inputs:   []*models.Port{{ID: "main", Label: "Main", DataType: "any"}},
		Outputs:  []*models.Port{{ID: "main", Label: "Main", DataType: "any"}},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithTriggerNode configures the node as a manual trigger.
func WithTriggerNode() func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Type = "manual-trigger"
		n.Category = models.NodeCategoryTrigger
		n.Name = "Manual"
		n.Config = map[string]any{}
		n.Inputs = nil
		n.Outputs = []*models.Port{{ID: "main", Label: "Main", DataType: "any"}}
	}
}

// WithConfig sets the node configuration.
func WithConfig(config map[string]any) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Config = config
	}
}

// WithName sets the node name.
func WithName(name string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Name = name
	}
}

// WithPosition sets the node position.
func WithPosition(x, y float64) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Position = models.Position{X: x, Y: y}
	}
}

// WithType sets the node type.
func WithType(nodeType string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Type = nodeType
	}
}

// WithID sets the node ID.
func WithID(id string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.ID = id
	}
}

// WithPorts sets the node's input and output ports.
func WithPorts(inputs, outputs []*models.Port) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Inputs = inputs
		n.Outputs = outputs
	}
}

// CreateTestWorkflow creates a test workflow without nodes.
func CreateTestWorkflow() *models.Workflow {
	return &models.Workflow{
		ID:          uuid.New().String(),
		Name:        "Test Workflow",
		Description: "A workflow for testing",
		Status:      models.WorkflowStatusDraft,
		Trigger:     models.WorkflowTrigger{Type: "manual"},
		Version:     1,
		Nodes:       []*models.WorkflowNode{},
		Connections: []*models.Connection{},
	}
}

// CreateTestWorkflowWithNodes creates a test workflow with a trigger feeding
// an action node.
func CreateTestWorkflowWithNodes() *models.Workflow {
	workflow := CreateTestWorkflow()

	triggerNode := CreateTestNode(WithTriggerNode(), WithID("trigger-1"))
	actionNode := CreateTestNode(WithID("action-1"), WithName("Log Action"), WithPosition(400, 200))

	workflow.Nodes = []*models.WorkflowNode{triggerNode, actionNode}
	workflow.Connections = []*models.Connection{
		{
			ID:           "conn-1",
			SourceNodeID: "trigger-1",
			SourcePortID: "main",
			TargetNodeID: "action-1",
			TargetPortID: "main",
		},
	}

	workflow.RefreshPortFlags()

	return workflow
}

// CreateTestConnection creates a test connection between the main ports of
// two nodes.
func CreateTestConnection(sourceNodeID, targetNodeID string) *models.Connection {
	return &models.Connection{
		ID:           uuid.New().String(),
		SourceNodeID: sourceNodeID,
		SourcePortID: "main",
		TargetNodeID: targetNodeID,
		TargetPortID: "main",
	}
}

// CreateTestExecution creates a pending execution for a workflow.
func CreateTestExecution(workflowID string) *models.WorkflowExecution {
	return &models.WorkflowExecution{
		ID:          "exec-" + uuid.New().String()[:8],
		WorkflowID:  workflowID,
		Status:      models.ExecutionStatusPending,
		TriggeredBy: "manual",
	}
}
