package editor

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/rustpress-net/flowstudio/pkg/models"
)

// NodeUpdate is a partial patch for a node. Nil fields are left untouched;
// config entries merge key by key.
type NodeUpdate struct {
	Name   *string
	Config map[string]any
	Size   *models.Size
}

// VariableUpdate is a partial patch for a workflow variable.
type VariableUpdate struct {
	Name        *string
	Type        *models.VariableType
	Value       any
	HasValue    bool
	Secret      *bool
	Description *string
}

// AddNode materializes a node of the given registry type at the position
// (snapped to the grid), records a history snapshot, and selects the new
// node.
func (s *Session) AddNode(nodeType string, position models.Position) (*models.WorkflowNode, error) {
	if s.workflow == nil {
		return nil, ErrNoWorkflow
	}

	def, err := s.registry.Lookup(nodeType)
	if err != nil {
		return nil, err
	}

	node := def.Materialize(uuid.New().String(), s.snapGrid(position))

	s.snapshot()

	if err := s.workflow.AttachNode(node); err != nil {
		return nil, fmt.Errorf("attach node: %w", err)
	}

	s.canvas.SelectedNodeIDs = []string{node.ID}
	s.canvas.SelectedConnectionIDs = nil

	s.logger.Debug("Added node", "workflow_id", s.workflow.ID, "node_id", node.ID, "type", nodeType)

	return node, nil
}

// UpdateNode merges a patch into a node. Unknown ids are a silent no-op and
// no history snapshot is taken; config edits are continuous gestures.
func (s *Session) UpdateNode(nodeID string, update NodeUpdate) {
	if s.workflow == nil {
		return
	}

	node := s.workflow.NodeByID(nodeID)
	if node == nil {
		return
	}

	if update.Name != nil {
		node.Name = *update.Name
	}

	if update.Size != nil {
		node.Size = *update.Size
	}

	if len(update.Config) > 0 {
		if node.Config == nil {
			node.Config = make(map[string]any, len(update.Config))
		}

		for key, value := range update.Config {
			node.Config[key] = value
		}
	}
}

// MoveNode snaps the node to the grid at the given position. Like
// UpdateNode it takes no snapshot and ignores unknown ids.
func (s *Session) MoveNode(nodeID string, position models.Position) {
	if s.workflow == nil {
		return
	}

	node := s.workflow.NodeByID(nodeID)
	if node == nil {
		return
	}

	node.Position = s.snapGrid(position)
}

// DeleteNode removes a node and its connections after recording a snapshot.
func (s *Session) DeleteNode(nodeID string) error {
	if s.workflow == nil {
		return ErrNoWorkflow
	}

	if s.workflow.NodeByID(nodeID) == nil {
		return models.ErrNodeNotFound
	}

	s.snapshot()

	if err := s.workflow.RemoveNode(nodeID); err != nil {
		return err
	}

	s.pruneSelection()

	s.logger.Debug("Deleted node", "workflow_id", s.workflow.ID, "node_id", nodeID)

	return nil
}

// DeleteSelectedNodes removes every selected node under a single snapshot.
// An empty selection is a silent no-op. Returns how many nodes were removed.
func (s *Session) DeleteSelectedNodes() int {
	if s.workflow == nil || len(s.canvas.SelectedNodeIDs) == 0 {
		return 0
	}

	ids := make([]string, len(s.canvas.SelectedNodeIDs))
	copy(ids, s.canvas.SelectedNodeIDs)

	s.snapshot()

	removed := 0

	for _, id := range ids {
		if err := s.workflow.RemoveNode(id); err == nil {
			removed++
		}
	}

	s.pruneSelection()

	return removed
}

// DuplicateNodes clones the given nodes with fresh ids at a fixed offset.
// Connections are not duplicated. The new nodes become the selection.
func (s *Session) DuplicateNodes(nodeIDs []string) []*models.WorkflowNode {
	if s.workflow == nil {
		return nil
	}

	var sources []*models.WorkflowNode

	for _, id := range nodeIDs {
		if node := s.workflow.NodeByID(id); node != nil {
			sources = append(sources, node)
		}
	}

	if len(sources) == 0 {
		return nil
	}

	s.snapshot()

	duplicates := make([]*models.WorkflowNode, 0, len(sources))
	selection := make([]string, 0, len(sources))

	for _, source := range sources {
		duplicate := source.Clone()
		duplicate.ID = uuid.New().String()
		duplicate.Position.X += PasteOffset
		duplicate.Position.Y += PasteOffset

		for _, port := range duplicate.Inputs {
			port.Connected = false
		}

		for _, port := range duplicate.Outputs {
			port.Connected = false
		}

		if err := s.workflow.AttachNode(duplicate); err != nil {
			continue
		}

		duplicates = append(duplicates, duplicate)
		selection = append(selection, duplicate.ID)
	}

	s.canvas.SelectedNodeIDs = selection
	s.canvas.SelectedConnectionIDs = nil

	return duplicates
}

// AddConnection joins an output port to an input port. Self-loops,
// duplicate endpoint tuples, and unknown endpoints are rejected without
// mutating the graph or the history.
func (s *Session) AddConnection(sourceNodeID, sourcePortID, targetNodeID, targetPortID string) (*models.Connection, error) {
	if s.workflow == nil {
		return nil, ErrNoWorkflow
	}

	conn := &models.Connection{
		ID:           uuid.New().String(),
		SourceNodeID: sourceNodeID,
		SourcePortID: sourcePortID,
		TargetNodeID: targetNodeID,
		TargetPortID: targetPortID,
	}

	// Snapshot only lands in history once the connect succeeds.
	snapshot := s.workflow.Clone()

	if err := s.workflow.Connect(conn); err != nil {
		return nil, err
	}

	s.history.push(snapshot)

	s.logger.Debug("Added connection",
		"workflow_id", s.workflow.ID,
		"connection_id", conn.ID,
		"source", sourceNodeID,
		"target", targetNodeID)

	return conn, nil
}

// DeleteConnection removes a connection after recording a snapshot.
func (s *Session) DeleteConnection(connectionID string) error {
	if s.workflow == nil {
		return ErrNoWorkflow
	}

	if s.workflow.ConnectionByID(connectionID) == nil {
		return models.ErrConnectionNotFound
	}

	s.snapshot()

	if err := s.workflow.Disconnect(connectionID); err != nil {
		return err
	}

	s.pruneSelection()

	return nil
}

// DeleteSelectedConnections removes every selected connection under a
// single snapshot and returns how many were removed.
func (s *Session) DeleteSelectedConnections() int {
	if s.workflow == nil || len(s.canvas.SelectedConnectionIDs) == 0 {
		return 0
	}

	ids := make([]string, len(s.canvas.SelectedConnectionIDs))
	copy(ids, s.canvas.SelectedConnectionIDs)

	s.snapshot()

	removed := 0

	for _, id := range ids {
		if err := s.workflow.Disconnect(id); err == nil {
			removed++
		}
	}

	s.pruneSelection()

	return removed
}

// AddVariable creates a workflow variable after recording a snapshot.
func (s *Session) AddVariable(name string, varType models.VariableType, value any, secret bool) (*models.WorkflowVariable, error) {
	if s.workflow == nil {
		return nil, ErrNoWorkflow
	}

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidVariable)
	}

	if !varType.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidVariable, varType)
	}

	variable := &models.WorkflowVariable{
		ID:     uuid.New().String(),
		Name:   name,
		Type:   varType,
		Value:  value,
		Secret: secret,
	}

	s.snapshot()
	s.workflow.Variables = append(s.workflow.Variables, variable)

	return variable, nil
}

// UpdateVariable merges a patch into a variable. Unknown ids are a silent
// no-op; no snapshot is taken.
func (s *Session) UpdateVariable(variableID string, update VariableUpdate) {
	if s.workflow == nil {
		return
	}

	variable := s.workflow.VariableByID(variableID)
	if variable == nil {
		return
	}

	if update.Name != nil {
		variable.Name = *update.Name
	}

	if update.Type != nil && update.Type.Valid() {
		variable.Type = *update.Type
	}

	if update.HasValue {
		variable.Value = update.Value
	}

	if update.Secret != nil {
		variable.Secret = *update.Secret
	}

	if update.Description != nil {
		variable.Description = *update.Description
	}
}

// DeleteVariable removes a variable after recording a snapshot.
func (s *Session) DeleteVariable(variableID string) error {
	if s.workflow == nil {
		return ErrNoWorkflow
	}

	if s.workflow.VariableByID(variableID) == nil {
		return models.ErrVariableNotFound
	}

	s.snapshot()

	variables := s.workflow.Variables[:0]

	for _, variable := range s.workflow.Variables {
		if variable.ID != variableID {
			variables = append(variables, variable)
		}
	}

	s.workflow.Variables = variables

	return nil
}
