// Package validation checks workflow graphs for structural problems before
// they are saved as active or executed. Checks accumulate; callers get every
// problem in one pass.
package validation

import (
	"fmt"
	"log/slog"

	"github.com/expr-lang/expr"

	"github.com/rustpress-net/flowstudio/pkg/models"
	"github.com/rustpress-net/flowstudio/pkg/registry"
)

// Result is the outcome of validating one workflow.
type Result struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *Result) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Result) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validator checks workflows against the node type catalog.
type Validator struct {
	registry *registry.Registry
	logger   *slog.Logger
}

func NewValidator(reg *registry.Registry, logger *slog.Logger) *Validator {
	return &Validator{
		registry: reg,
		logger:   logger.With("module", "validation"),
	}
}

// ValidateWorkflow runs every check and returns the combined result.
// The graph is never mutated.
func (v *Validator) ValidateWorkflow(workflow *models.Workflow) Result {
	result := Result{}

	v.checkStructure(workflow, &result)
	v.checkNodeTypes(workflow, &result)
	v.checkConnections(workflow, &result)
	v.checkReachability(workflow, &result)

	result.Valid = len(result.Errors) == 0

	v.logger.Debug("Validated workflow",
		"workflow_id", workflow.ID,
		"valid", result.Valid,
		"errors", len(result.Errors))

	return result
}

// checkStructure covers the editor's core rules: the graph is non-empty,
// starts somewhere, and every downstream node is fed.
func (v *Validator) checkStructure(workflow *models.Workflow, result *Result) {
	if len(workflow.Nodes) == 0 {
		result.addError("Workflow must contain at least one node")

		return
	}

	if len(workflow.TriggerNodes()) == 0 {
		result.addError("Workflow must contain at least one trigger node")
	}

	for _, node := range workflow.Nodes {
		if node.IsTrigger() {
			continue
		}

		// Input-less nodes (annotations) cannot receive connections.
		if len(node.Inputs) == 0 {
			continue
		}

		if len(workflow.IncomingConnections(node.ID)) == 0 {
			result.addError("Node %q has no incoming connections", node.Name)
		}
	}
}

func (v *Validator) checkNodeTypes(workflow *models.Workflow, result *Result) {
	for _, node := range workflow.Nodes {
		if _, err := v.registry.Lookup(node.Type); err != nil {
			result.addError("Node %q has unknown type %q", node.Name, node.Type)

			continue
		}

		if err := v.registry.ValidateConfig(node.Type, node.Config); err != nil {
			result.addError("Node %q has invalid configuration: %v", node.Name, err)
		}
	}
}

func (v *Validator) checkConnections(workflow *models.Workflow, result *Result) {
	for _, conn := range workflow.Connections {
		source := workflow.NodeByID(conn.SourceNodeID)
		target := workflow.NodeByID(conn.TargetNodeID)

		if source == nil || target == nil {
			result.addError("Connection %q references a missing node", conn.ID)

			continue
		}

		if source.OutputByID(conn.SourcePortID) == nil {
			result.addError("Connection %q references unknown output port %q on node %q",
				conn.ID, conn.SourcePortID, source.Name)
		}

		if target.InputByID(conn.TargetPortID) == nil {
			result.addError("Connection %q references unknown input port %q on node %q",
				conn.ID, conn.TargetPortID, target.Name)
		}

		if conn.Condition == "" {
			continue
		}

		compileOpts := []expr.Option{expr.Env(map[string]any{}), expr.AllowUndefinedVariables()}
		if _, err := expr.Compile(conn.Condition, compileOpts...); err != nil {
			result.addError("Connection %q has an invalid condition: %v", conn.ID, err)
		}
	}
}

// checkReachability walks the graph from trigger nodes and warns about
// nodes no run could ever reach.
func (v *Validator) checkReachability(workflow *models.Workflow, result *Result) {
	triggers := workflow.TriggerNodes()
	if len(triggers) == 0 {
		return
	}

	reachable := make(map[string]bool, len(workflow.Nodes))
	queue := make([]string, 0, len(triggers))

	for _, trigger := range triggers {
		reachable[trigger.ID] = true
		queue = append(queue, trigger.ID)
	}

	for len(queue) > 0 {
		nodeID := queue[0]
		queue = queue[1:]

		for _, conn := range workflow.OutgoingConnections(nodeID) {
			if !reachable[conn.TargetNodeID] {
				reachable[conn.TargetNodeID] = true
				queue = append(queue, conn.TargetNodeID)
			}
		}
	}

	for _, node := range workflow.Nodes {
		if reachable[node.ID] || len(node.Inputs) == 0 {
			continue
		}

		result.addWarning("Node %q is unreachable from any trigger", node.Name)
	}
}
