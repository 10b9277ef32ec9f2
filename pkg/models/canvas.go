package models

// Viewport bounds. Zoom is clamped to [MinZoom, MaxZoom] in ZoomStep
// increments by the editor.
const (
	MinZoom  = 0.1
	MaxZoom  = 2.0
	ZoomStep = 0.1
)

// SelectionBox is a marquee rectangle in canvas coordinates. Start is where
// the drag began; End tracks the pointer and may lie in any direction.
type SelectionBox struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Bounds returns the normalized rectangle regardless of drag direction.
func (b SelectionBox) Bounds() (minX, minY, maxX, maxY float64) {
	minX, maxX = b.Start.X, b.End.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}

	minY, maxY = b.Start.Y, b.End.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	return minX, minY, maxX, maxY
}

// ContainsNode reports whether the box intersects the node's rectangle.
func (b SelectionBox) ContainsNode(node *WorkflowNode) bool {
	minX, minY, maxX, maxY := b.Bounds()
	nodeMinX, nodeMinY, nodeMaxX, nodeMaxY := node.Rect()

	return nodeMinX <= maxX && nodeMaxX >= minX && nodeMinY <= maxY && nodeMaxY >= minY
}

// CanvasState is the transient view and interaction state of the editor. It
// is never persisted with the workflow.
type CanvasState struct {
	Zoom                  float64       `json:"zoom"`
	Pan                   Position      `json:"pan"`
	SelectedNodeIDs       []string      `json:"selected_node_ids"`
	SelectedConnectionIDs []string      `json:"selected_connection_ids"`
	HoveredNodeID         string        `json:"hovered_node_id,omitempty"`
	HoveredPortID         string        `json:"hovered_port_id,omitempty"`
	ConnectingFrom        *PortRef      `json:"connecting_from,omitempty"`
	SelectionBox          *SelectionBox `json:"selection_box,omitempty"`
	IsDragging            bool          `json:"is_dragging"`
}

// NewCanvasState returns the default viewport: unit zoom, origin pan,
// nothing selected.
func NewCanvasState() *CanvasState {
	return &CanvasState{Zoom: 1.0}
}

// NodeSelected reports whether the node is in the current selection.
func (c *CanvasState) NodeSelected(nodeID string) bool {
	for _, id := range c.SelectedNodeIDs {
		if id == nodeID {
			return true
		}
	}

	return false
}

// ConnectionSelected reports whether the connection is in the current selection.
func (c *CanvasState) ConnectionSelected(connectionID string) bool {
	for _, id := range c.SelectedConnectionIDs {
		if id == connectionID {
			return true
		}
	}

	return false
}

// ClearSelection drops all selected nodes and connections.
func (c *CanvasState) ClearSelection() {
	c.SelectedNodeIDs = nil
	c.SelectedConnectionIDs = nil
}

// DropNodeFromSelection removes one node id from the selection, keeping order.
func (c *CanvasState) DropNodeFromSelection(nodeID string) {
	ids := c.SelectedNodeIDs[:0]

	for _, id := range c.SelectedNodeIDs {
		if id != nodeID {
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		c.SelectedNodeIDs = nil

		return
	}

	c.SelectedNodeIDs = ids
}

// DropConnectionFromSelection removes one connection id from the selection.
func (c *CanvasState) DropConnectionFromSelection(connectionID string) {
	ids := c.SelectedConnectionIDs[:0]

	for _, id := range c.SelectedConnectionIDs {
		if id != connectionID {
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		c.SelectedConnectionIDs = nil

		return
	}

	c.SelectedConnectionIDs = ids
}
