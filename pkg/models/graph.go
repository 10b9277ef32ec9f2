package models

import "errors"

// Structural rules every workflow graph upholds. Mutation helpers return
// these sentinels and leave the graph untouched on rejection.
var (
	ErrNodeNotFound        = errors.New("node not found")
	ErrPortNotFound        = errors.New("port not found")
	ErrConnectionNotFound  = errors.New("connection not found")
	ErrVariableNotFound    = errors.New("variable not found")
	ErrSelfConnection      = errors.New("connection endpoints are on the same node")
	ErrDuplicateConnection = errors.New("connection already exists between these ports")
	ErrDuplicateNode       = errors.New("node id already present in workflow")
)

// AttachNode adds a node instance to the graph.
func (w *Workflow) AttachNode(node *WorkflowNode) error {
	if w.NodeByID(node.ID) != nil {
		return ErrDuplicateNode
	}

	w.Nodes = append(w.Nodes, node)

	return nil
}

// RemoveNode deletes a node and every connection touching it, then refreshes
// the Connected flags of the surviving peer ports.
func (w *Workflow) RemoveNode(nodeID string) error {
	if w.NodeByID(nodeID) == nil {
		return ErrNodeNotFound
	}

	nodes := w.Nodes[:0]
	for _, node := range w.Nodes {
		if node.ID != nodeID {
			nodes = append(nodes, node)
		}
	}

	w.Nodes = nodes

	conns := w.Connections[:0]
	for _, conn := range w.Connections {
		if !conn.Touches(nodeID) {
			conns = append(conns, conn)
		}
	}

	w.Connections = conns
	w.RefreshPortFlags()

	return nil
}

// Connect validates and appends a connection. The source endpoint must be an
// output port and the target an input port on a different node, and no
// connection with the same endpoint tuple may already exist. On any
// rejection the graph is unchanged.
func (w *Workflow) Connect(conn *Connection) error {
	if conn.SourceNodeID == conn.TargetNodeID {
		return ErrSelfConnection
	}

	source := w.NodeByID(conn.SourceNodeID)
	target := w.NodeByID(conn.TargetNodeID)

	if source == nil || target == nil {
		return ErrNodeNotFound
	}

	sourcePort := source.OutputByID(conn.SourcePortID)
	targetPort := target.InputByID(conn.TargetPortID)

	if sourcePort == nil || targetPort == nil {
		return ErrPortNotFound
	}

	for _, existing := range w.Connections {
		if existing.SameEndpoints(conn) {
			return ErrDuplicateConnection
		}
	}

	w.Connections = append(w.Connections, conn)
	sourcePort.Connected = true
	targetPort.Connected = true

	return nil
}

// Disconnect removes a connection and refreshes the Connected flags of the
// two ports it joined.
func (w *Workflow) Disconnect(connectionID string) error {
	var removed *Connection

	conns := w.Connections[:0]

	for _, conn := range w.Connections {
		if conn.ID == connectionID {
			removed = conn

			continue
		}

		conns = append(conns, conn)
	}

	if removed == nil {
		return ErrConnectionNotFound
	}

	w.Connections = conns
	w.refreshPort(removed.SourceNodeID, removed.SourcePortID)
	w.refreshPort(removed.TargetNodeID, removed.TargetPortID)

	return nil
}

// RefreshPortFlags recomputes every port's Connected flag from the live
// connection list. Bulk operations (paste, load) call this once instead of
// tracking each endpoint.
func (w *Workflow) RefreshPortFlags() {
	for _, node := range w.Nodes {
		for _, port := range node.Inputs {
			port.Connected = w.portConnected(node.ID, port.ID)
		}

		for _, port := range node.Outputs {
			port.Connected = w.portConnected(node.ID, port.ID)
		}
	}
}

// IncomingConnections returns the connections targeting the given node.
func (w *Workflow) IncomingConnections(nodeID string) []*Connection {
	var incoming []*Connection

	for _, conn := range w.Connections {
		if conn.TargetNodeID == nodeID {
			incoming = append(incoming, conn)
		}
	}

	return incoming
}

// OutgoingConnections returns the connections originating at the given node.
func (w *Workflow) OutgoingConnections(nodeID string) []*Connection {
	var outgoing []*Connection

	for _, conn := range w.Connections {
		if conn.SourceNodeID == nodeID {
			outgoing = append(outgoing, conn)
		}
	}

	return outgoing
}

func (w *Workflow) portConnected(nodeID, portID string) bool {
	for _, conn := range w.Connections {
		if conn.SourceNodeID == nodeID && conn.SourcePortID == portID {
			return true
		}

		if conn.TargetNodeID == nodeID && conn.TargetPortID == portID {
			return true
		}
	}

	return false
}

func (w *Workflow) refreshPort(nodeID, portID string) {
	node := w.NodeByID(nodeID)
	if node == nil {
		return
	}

	if port := node.InputByID(portID); port != nil {
		port.Connected = w.portConnected(nodeID, portID)
	}

	if port := node.OutputByID(portID); port != nil {
		port.Connected = w.portConnected(nodeID, portID)
	}
}
