package models

// PortDirection represents the direction of data flow for a port.
type PortDirection string

const (
	PortDirectionInput  PortDirection = "input"
	PortDirectionOutput PortDirection = "output"
)

// Opposite returns the other direction.
func (d PortDirection) Opposite() PortDirection {
	if d == PortDirectionInput {
		return PortDirectionOutput
	}

	return PortDirectionInput
}

// Port represents a connection point on a node instance. The Connected flag
// is derived state: it is true exactly when at least one live connection
// references the port.
type Port struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	DataType  string `json:"data_type"` // any, string, number, boolean, object, array
	Multiple  bool   `json:"multiple"`  // Accepts more than one connection
	Connected bool   `json:"connected"`
}

// Clone returns a copy of the port.
func (p *Port) Clone() *Port {
	clone := *p

	return &clone
}

// PortRef addresses one port on one node during a connect gesture.
type PortRef struct {
	NodeID    string        `json:"node_id"`
	PortID    string        `json:"port_id"`
	Direction PortDirection `json:"direction"`
}
