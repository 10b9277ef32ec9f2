package models

// Connection is a directed edge from an output port on one node to an input
// port on another. A workflow never contains two connections with the same
// endpoint tuple, and never a connection from a node to itself.
type Connection struct {
	ID           string `json:"id"`
	SourceNodeID string `json:"source_node_id" validate:"required"`
	SourcePortID string `json:"source_port_id" validate:"required"`
	TargetNodeID string `json:"target_node_id" validate:"required"`
	TargetPortID string `json:"target_port_id" validate:"required"`
	Label        string `json:"label,omitempty"`
	Condition    string `json:"condition,omitempty"` // Optional expr source gating the edge
}

// Clone returns a copy of the connection.
func (c *Connection) Clone() *Connection {
	clone := *c

	return &clone
}

// SameEndpoints reports whether two connections join the same port pair.
func (c *Connection) SameEndpoints(other *Connection) bool {
	return c.SourceNodeID == other.SourceNodeID &&
		c.SourcePortID == other.SourcePortID &&
		c.TargetNodeID == other.TargetNodeID &&
		c.TargetPortID == other.TargetPortID
}

// Touches reports whether the connection references the given node.
func (c *Connection) Touches(nodeID string) bool {
	return c.SourceNodeID == nodeID || c.TargetNodeID == nodeID
}
