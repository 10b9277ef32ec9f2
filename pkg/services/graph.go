// Package services provides graph mutation operations for the REST surface.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rustpress-net/flowstudio/pkg/models"
	"github.com/rustpress-net/flowstudio/pkg/persistence"
	"github.com/rustpress-net/flowstudio/pkg/registry"
)

// CreateNodeRequest represents the request to add a node to a workflow.
type CreateNodeRequest struct {
	Type     string
	Name     string
	Position models.Position
	Config   map[string]any
}

// UpdateNodeRequest represents the request to update an existing node.
// Nil fields keep the current value.
type UpdateNodeRequest struct {
	Name   *string
	Config map[string]any
	Size   *models.Size
}

// CreateConnectionRequest represents the request to connect two ports.
type CreateConnectionRequest struct {
	SourceNodeID string
	SourcePortID string
	TargetNodeID string
	TargetPortID string
	Label        string
	Condition    string
}

// VariableRequest carries variable fields for create and update operations.
type VariableRequest struct {
	Name        string
	Type        models.VariableType
	Value       any
	Description string
	Secret      bool
}

// Graph applies structural mutations to stored workflows. Every operation
// loads the workflow, applies the change through the graph methods and saves
// the result back, so REST clients observe the same invariants as the editor.
type Graph struct {
	persistence persistence.Persistence
	registry    *registry.Registry
}

// NewGraph creates a new graph mutation service.
func NewGraph(persistence persistence.Persistence, registry *registry.Registry) *Graph {
	return &Graph{
		persistence: persistence,
		registry:    registry,
	}
}

// load fetches a workflow for mutation, mapping nil to ErrWorkflowNotFound.
func (g *Graph) load(ctx context.Context, workflowID string) (*models.Workflow, error) {
	workflow, err := g.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	if workflow == nil {
		return nil, ErrWorkflowNotFound
	}

	return workflow, nil
}

func (g *Graph) save(ctx context.Context, workflow *models.Workflow) error {
	err := g.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}

	return nil
}

// CreateNode materializes a node of the given type and attaches it to the workflow.
func (g *Graph) CreateNode(ctx context.Context, workflowID string, req *CreateNodeRequest) (*models.WorkflowNode, error) {
	workflow, err := g.load(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	def, err := g.registry.Lookup(req.Type)
	if err != nil {
		if errors.Is(err, registry.ErrTypeNotRegistered) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownNodeType, req.Type)
		}

		return nil, fmt.Errorf("failed to look up node type: %w", err)
	}

	node := def.Materialize(uuid.New().String(), req.Position)

	if req.Name != "" {
		node.Name = req.Name
	}

	for key, value := range req.Config {
		node.Config[key] = value
	}

	if err := g.registry.ValidateConfig(node.Type, node.Config); err != nil {
		return nil, err
	}

	if err := workflow.AttachNode(node); err != nil {
		return nil, err
	}

	if err := g.save(ctx, workflow); err != nil {
		return nil, err
	}

	return node, nil
}

// GetNode retrieves a single node from the workflow.
func (g *Graph) GetNode(ctx context.Context, workflowID, nodeID string) (*models.WorkflowNode, error) {
	workflow, err := g.load(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	node := workflow.NodeByID(nodeID)
	if node == nil {
		return nil, models.ErrNodeNotFound
	}

	return node, nil
}

// UpdateNode applies a partial update to a node's name, config and size.
func (g *Graph) UpdateNode(ctx context.Context, workflowID, nodeID string, req *UpdateNodeRequest) (*models.WorkflowNode, error) {
	workflow, err := g.load(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	node := workflow.NodeByID(nodeID)
	if node == nil {
		return nil, models.ErrNodeNotFound
	}

	if req.Name != nil {
		node.Name = *req.Name
	}

	if req.Config != nil {
		if err := g.registry.ValidateConfig(node.Type, req.Config); err != nil {
			return nil, err
		}

		node.Config = req.Config
	}

	if req.Size != nil {
		node.Size = *req.Size
	}

	if err := g.save(ctx, workflow); err != nil {
		return nil, err
	}

	return node, nil
}

// MoveNode updates a node's canvas position.
func (g *Graph) MoveNode(ctx context.Context, workflowID, nodeID string, position models.Position) (*models.WorkflowNode, error) {
	workflow, err := g.load(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	node := workflow.NodeByID(nodeID)
	if node == nil {
		return nil, models.ErrNodeNotFound
	}

	node.Position = position

	if err := g.save(ctx, workflow); err != nil {
		return nil, err
	}

	return node, nil
}

// DeleteNode removes a node and every connection touching it.
func (g *Graph) DeleteNode(ctx context.Context, workflowID, nodeID string) error {
	workflow, err := g.load(ctx, workflowID)
	if err != nil {
		return err
	}

	if err := workflow.RemoveNode(nodeID); err != nil {
		return err
	}

	return g.save(ctx, workflow)
}

// CreateConnection connects two ports, enforcing the graph invariants.
func (g *Graph) CreateConnection(ctx context.Context, workflowID string, req *CreateConnectionRequest) (*models.Connection, error) {
	workflow, err := g.load(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	connection := &models.Connection{
		ID:           uuid.New().String(),
		SourceNodeID: req.SourceNodeID,
		SourcePortID: req.SourcePortID,
		TargetNodeID: req.TargetNodeID,
		TargetPortID: req.TargetPortID,
		Label:        req.Label,
		Condition:    req.Condition,
	}

	if err := workflow.Connect(connection); err != nil {
		return nil, err
	}

	if err := g.save(ctx, workflow); err != nil {
		return nil, err
	}

	return connection, nil
}

// DeleteConnection removes a connection by its ID.
func (g *Graph) DeleteConnection(ctx context.Context, workflowID, connectionID string) error {
	workflow, err := g.load(ctx, workflowID)
	if err != nil {
		return err
	}

	if err := workflow.Disconnect(connectionID); err != nil {
		return err
	}

	return g.save(ctx, workflow)
}

// CreateVariable adds a workflow variable.
func (g *Graph) CreateVariable(ctx context.Context, workflowID string, req *VariableRequest) (*models.WorkflowVariable, error) {
	workflow, err := g.load(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if req.Name == "" || !req.Type.Valid() {
		return nil, ErrInvalidVariable
	}

	variable := &models.WorkflowVariable{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Type:        req.Type,
		Value:       req.Value,
		Description: req.Description,
		Secret:      req.Secret,
	}

	workflow.Variables = append(workflow.Variables, variable)

	if err := g.save(ctx, workflow); err != nil {
		return nil, err
	}

	return variable, nil
}

// UpdateVariable replaces the fields of an existing variable.
func (g *Graph) UpdateVariable(ctx context.Context, workflowID, variableID string, req *VariableRequest) (*models.WorkflowVariable, error) {
	workflow, err := g.load(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	variable := workflow.VariableByID(variableID)
	if variable == nil {
		return nil, models.ErrVariableNotFound
	}

	if req.Name == "" || !req.Type.Valid() {
		return nil, ErrInvalidVariable
	}

	variable.Name = req.Name
	variable.Type = req.Type
	variable.Value = req.Value
	variable.Description = req.Description
	variable.Secret = req.Secret

	if err := g.save(ctx, workflow); err != nil {
		return nil, err
	}

	return variable, nil
}

// DeleteVariable removes a variable by its ID.
func (g *Graph) DeleteVariable(ctx context.Context, workflowID, variableID string) error {
	workflow, err := g.load(ctx, workflowID)
	if err != nil {
		return err
	}

	if workflow.VariableByID(variableID) == nil {
		return models.ErrVariableNotFound
	}

	variables := make([]*models.WorkflowVariable, 0, len(workflow.Variables)-1)

	for _, variable := range workflow.Variables {
		if variable.ID != variableID {
			variables = append(variables, variable)
		}
	}

	workflow.Variables = variables

	return g.save(ctx, workflow)
}
