package editor

import (
	"github.com/google/uuid"

	"github.com/rustpress-net/flowstudio/pkg/models"
)

// clipboard holds deep copies of nodes and the connections wholly between
// them. Copies are independent of the graph they came from, so later edits
// to the workflow never leak into a pending paste.
type clipboard struct {
	nodes       []*models.WorkflowNode
	connections []*models.Connection
}

func (c *clipboard) empty() bool {
	return len(c.nodes) == 0
}

// CopyNodes copies the selected nodes and their internal connections to the
// clipboard and returns how many nodes were copied. Empty selection is a
// silent no-op that leaves the clipboard untouched.
func (s *Session) CopyNodes() int {
	if s.workflow == nil || len(s.canvas.SelectedNodeIDs) == 0 {
		return 0
	}

	selected := make(map[string]bool, len(s.canvas.SelectedNodeIDs))

	var nodes []*models.WorkflowNode

	for _, id := range s.canvas.SelectedNodeIDs {
		node := s.workflow.NodeByID(id)
		if node == nil {
			continue
		}

		selected[id] = true
		nodes = append(nodes, node.Clone())
	}

	if len(nodes) == 0 {
		return 0
	}

	var connections []*models.Connection

	for _, conn := range s.workflow.Connections {
		if selected[conn.SourceNodeID] && selected[conn.TargetNodeID] {
			connections = append(connections, conn.Clone())
		}
	}

	s.clipboard.nodes = nodes
	s.clipboard.connections = connections

	s.logger.Debug("Copied nodes to clipboard", "nodes", len(nodes), "connections", len(connections))

	return len(nodes)
}

// CutNodes copies the selection and then deletes it under one snapshot.
func (s *Session) CutNodes() int {
	copied := s.CopyNodes()
	if copied == 0 {
		return 0
	}

	s.DeleteSelectedNodes()

	return copied
}

// PasteNodes inserts the clipboard contents with fresh ids at a fixed
// offset from the copied positions. Connections between pasted nodes are
// recreated against the new ids; connections to nodes outside the copied
// set were never captured. The pasted nodes become the selection.
func (s *Session) PasteNodes() []*models.WorkflowNode {
	if s.workflow == nil || s.clipboard.empty() {
		return nil
	}

	s.snapshot()

	remap := make(map[string]string, len(s.clipboard.nodes))
	pasted := make([]*models.WorkflowNode, 0, len(s.clipboard.nodes))
	selection := make([]string, 0, len(s.clipboard.nodes))

	for _, source := range s.clipboard.nodes {
		node := source.Clone()
		node.ID = uuid.New().String()
		node.Position.X += PasteOffset
		node.Position.Y += PasteOffset

		for _, port := range node.Inputs {
			port.Connected = false
		}

		for _, port := range node.Outputs {
			port.Connected = false
		}

		if err := s.workflow.AttachNode(node); err != nil {
			continue
		}

		remap[source.ID] = node.ID
		pasted = append(pasted, node)
		selection = append(selection, node.ID)
	}

	for _, source := range s.clipboard.connections {
		sourceNodeID, okSource := remap[source.SourceNodeID]
		targetNodeID, okTarget := remap[source.TargetNodeID]

		if !okSource || !okTarget {
			continue
		}

		conn := source.Clone()
		conn.ID = uuid.New().String()
		conn.SourceNodeID = sourceNodeID
		conn.TargetNodeID = targetNodeID

		if err := s.workflow.Connect(conn); err != nil {
			continue
		}
	}

	s.canvas.SelectedNodeIDs = selection
	s.canvas.SelectedConnectionIDs = nil

	s.logger.Debug("Pasted nodes from clipboard", "nodes", len(pasted))

	return pasted
}

// ClipboardSize returns how many nodes a paste would insert.
func (s *Session) ClipboardSize() int {
	return len(s.clipboard.nodes)
}
