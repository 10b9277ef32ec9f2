package editor

import (
	"math"

	"github.com/rustpress-net/flowstudio/pkg/models"
)

// SelectNode adds a node to the selection, or replaces the selection when
// additive is false. Unknown ids are ignored.
func (s *Session) SelectNode(nodeID string, additive bool) {
	if s.workflow == nil || s.workflow.NodeByID(nodeID) == nil {
		return
	}

	if !additive {
		s.canvas.SelectedNodeIDs = []string{nodeID}
		s.canvas.SelectedConnectionIDs = nil

		return
	}

	if s.canvas.NodeSelected(nodeID) {
		return
	}

	s.canvas.SelectedNodeIDs = append(s.canvas.SelectedNodeIDs, nodeID)
}

// SelectNodes replaces the node selection with the resolvable ids.
func (s *Session) SelectNodes(nodeIDs []string) {
	if s.workflow == nil {
		return
	}

	var selection []string

	for _, id := range nodeIDs {
		if s.workflow.NodeByID(id) != nil && !contains(selection, id) {
			selection = append(selection, id)
		}
	}

	s.canvas.SelectedNodeIDs = selection
	s.canvas.SelectedConnectionIDs = nil
}

// SelectConnection adds a connection to the selection, or replaces the
// selection when additive is false.
func (s *Session) SelectConnection(connectionID string, additive bool) {
	if s.workflow == nil || s.workflow.ConnectionByID(connectionID) == nil {
		return
	}

	if !additive {
		s.canvas.SelectedConnectionIDs = []string{connectionID}
		s.canvas.SelectedNodeIDs = nil

		return
	}

	if s.canvas.ConnectionSelected(connectionID) {
		return
	}

	s.canvas.SelectedConnectionIDs = append(s.canvas.SelectedConnectionIDs, connectionID)
}

// DeselectAll clears both selections.
func (s *Session) DeselectAll() {
	s.canvas.ClearSelection()
}

// StartConnecting arms a connect gesture from the given port.
func (s *Session) StartConnecting(nodeID, portID string, direction models.PortDirection) error {
	if s.workflow == nil {
		return ErrNoWorkflow
	}

	node := s.workflow.NodeByID(nodeID)
	if node == nil {
		return models.ErrNodeNotFound
	}

	var port *models.Port
	if direction == models.PortDirectionOutput {
		port = node.OutputByID(portID)
	} else {
		port = node.InputByID(portID)
	}

	if port == nil {
		return models.ErrPortNotFound
	}

	s.canvas.ConnectingFrom = &models.PortRef{NodeID: nodeID, PortID: portID, Direction: direction}

	return nil
}

// FinishConnecting completes the armed gesture on the given port and
// creates the connection. The armed state always clears, whether or not the
// connection is accepted. Source and target resolve by which side armed the
// gesture, so dragging input-to-output works the same as output-to-input.
func (s *Session) FinishConnecting(nodeID, portID string, direction models.PortDirection) (*models.Connection, error) {
	if s.workflow == nil {
		return nil, ErrNoWorkflow
	}

	from := s.canvas.ConnectingFrom
	if from == nil {
		return nil, ErrNotConnecting
	}

	s.canvas.ConnectingFrom = nil
	s.canvas.HoveredPortID = ""

	if from.Direction == direction {
		return nil, ErrSamePortSide
	}

	if from.Direction == models.PortDirectionOutput {
		return s.AddConnection(from.NodeID, from.PortID, nodeID, portID)
	}

	return s.AddConnection(nodeID, portID, from.NodeID, from.PortID)
}

// StopConnecting aborts the armed gesture, if any.
func (s *Session) StopConnecting() {
	s.canvas.ConnectingFrom = nil
	s.canvas.HoveredPortID = ""
}

// Connecting reports whether a connect gesture is armed.
func (s *Session) Connecting() bool {
	return s.canvas.ConnectingFrom != nil
}

// HoverNode tracks the node under the pointer. Empty clears it.
func (s *Session) HoverNode(nodeID string) {
	s.canvas.HoveredNodeID = nodeID
}

// HoverPort tracks the port under the pointer, used to highlight drop
// targets while connecting. Empty ids clear it.
func (s *Session) HoverPort(nodeID, portID string) {
	s.canvas.HoveredNodeID = nodeID
	s.canvas.HoveredPortID = portID
}

// StartSelection begins a marquee at the given canvas position and clears
// the current selection.
func (s *Session) StartSelection(pos models.Position) {
	s.canvas.ClearSelection()
	s.canvas.SelectionBox = &models.SelectionBox{Start: pos, End: pos}
}

// UpdateSelection moves the marquee's tracking corner. No-op when no
// marquee is active.
func (s *Session) UpdateSelection(pos models.Position) {
	if s.canvas.SelectionBox == nil {
		return
	}

	s.canvas.SelectionBox.End = pos
}

// EndSelection selects every node intersecting the marquee, clears the box,
// and returns the selected ids.
func (s *Session) EndSelection() []string {
	box := s.canvas.SelectionBox
	if box == nil {
		return nil
	}

	s.canvas.SelectionBox = nil

	if s.workflow == nil {
		return nil
	}

	var ids []string

	for _, node := range s.NodesIntersecting(*box) {
		ids = append(ids, node.ID)
	}

	s.canvas.SelectedNodeIDs = ids

	return ids
}

// NodesIntersecting returns the nodes whose rectangles intersect the box.
func (s *Session) NodesIntersecting(box models.SelectionBox) []*models.WorkflowNode {
	if s.workflow == nil {
		return nil
	}

	var nodes []*models.WorkflowNode

	for _, node := range s.workflow.Nodes {
		if box.ContainsNode(node) {
			nodes = append(nodes, node)
		}
	}

	return nodes
}

// SetZoom clamps and applies a zoom level.
func (s *Session) SetZoom(zoom float64) {
	s.canvas.Zoom = clampZoom(zoom)
}

// ZoomIn raises zoom by one step.
func (s *Session) ZoomIn() {
	s.SetZoom(roundZoom(s.canvas.Zoom + models.ZoomStep))
}

// ZoomOut lowers zoom by one step.
func (s *Session) ZoomOut() {
	s.SetZoom(roundZoom(s.canvas.Zoom - models.ZoomStep))
}

// SetPan moves the viewport origin.
func (s *Session) SetPan(pan models.Position) {
	s.canvas.Pan = pan
}

// ResetView restores unit zoom at the origin.
func (s *Session) ResetView() {
	s.canvas.Zoom = 1.0
	s.canvas.Pan = models.Position{}
}

// FitToScreen computes the bounding box of all nodes and sets zoom and pan
// so the whole graph is visible and centered in the viewport. An empty
// graph resets the view.
func (s *Session) FitToScreen(viewportWidth, viewportHeight float64) {
	if s.workflow == nil || len(s.workflow.Nodes) == 0 || viewportWidth <= 0 || viewportHeight <= 0 {
		s.ResetView()

		return
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, node := range s.workflow.Nodes {
		nodeMinX, nodeMinY, nodeMaxX, nodeMaxY := node.Rect()
		minX = math.Min(minX, nodeMinX)
		minY = math.Min(minY, nodeMinY)
		maxX = math.Max(maxX, nodeMaxX)
		maxY = math.Max(maxY, nodeMaxY)
	}

	boundsWidth := maxX - minX + 2*fitPadding
	boundsHeight := maxY - minY + 2*fitPadding

	zoom := math.Min(viewportWidth/boundsWidth, viewportHeight/boundsHeight)
	zoom = clampZoom(zoom)

	centerX := (minX + maxX) / 2
	centerY := (minY + maxY) / 2

	s.canvas.Zoom = zoom
	s.canvas.Pan = models.Position{
		X: viewportWidth/2 - centerX*zoom,
		Y: viewportHeight/2 - centerY*zoom,
	}
}

// SetDragging flags an in-progress node drag.
func (s *Session) SetDragging(dragging bool) {
	s.canvas.IsDragging = dragging
}

func clampZoom(zoom float64) float64 {
	if zoom < models.MinZoom {
		return models.MinZoom
	}

	if zoom > models.MaxZoom {
		return models.MaxZoom
	}

	return zoom
}

// roundZoom keeps stepped zoom on tenth boundaries despite float drift.
func roundZoom(zoom float64) float64 {
	return math.Round(zoom*10) / 10
}

func contains(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}

	return false
}
