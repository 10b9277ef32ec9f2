package models

// NodeCategory represents the palette category of a node type.
type NodeCategory string

const (
	NodeCategoryTrigger     NodeCategory = "trigger"     // Workflow entry points (manual, webhook, schedule, event)
	NodeCategoryAction      NodeCategory = "action"      // Side-effectful steps (http, email, database, log)
	NodeCategoryLogic       NodeCategory = "logic"       // Branching and flow control
	NodeCategoryTransform   NodeCategory = "transform"   // Data shaping
	NodeCategoryUtility     NodeCategory = "utility"     // Helpers (merge, note)
	NodeCategoryIntegration NodeCategory = "integration" // Third-party services
	NodeCategoryAI          NodeCategory = "ai"          // Model-backed steps
	NodeCategoryCustom      NodeCategory = "custom"      // User-defined types
)

// Valid reports whether the category is one of the known palette categories.
func (c NodeCategory) Valid() bool {
	switch c {
	case NodeCategoryTrigger, NodeCategoryAction, NodeCategoryLogic, NodeCategoryTransform,
		NodeCategoryUtility, NodeCategoryIntegration, NodeCategoryAI, NodeCategoryCustom:
		return true
	}

	return false
}

// Position is a point on the canvas in canvas units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is the rendered extent of a node on the canvas.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// WorkflowNode represents a node instance placed on the canvas.
type WorkflowNode struct {
	ID       string         `json:"id"       validate:"required"`
	Type     string         `json:"type"     validate:"required"`
	Category NodeCategory   `json:"category" validate:"required"`
	Name     string         `json:"name"     validate:"required,min=1"`
	Position Position       `json:"position"`
	Size     Size           `json:"size"`
	Config   map[string]any `json:"config"`
	Inputs   []*Port        `json:"inputs"`
	Outputs  []*Port        `json:"outputs"`
}

// IsTrigger reports whether the node starts workflow runs.
func (n *WorkflowNode) IsTrigger() bool {
	return n.Category == NodeCategoryTrigger
}

// InputByID returns the input port with the given ID, or nil when absent.
func (n *WorkflowNode) InputByID(id string) *Port {
	for _, port := range n.Inputs {
		if port.ID == id {
			return port
		}
	}

	return nil
}

// OutputByID returns the output port with the given ID, or nil when absent.
func (n *WorkflowNode) OutputByID(id string) *Port {
	for _, port := range n.Outputs {
		if port.ID == id {
			return port
		}
	}

	return nil
}

// Rect returns the canvas rectangle occupied by the node.
func (n *WorkflowNode) Rect() (minX, minY, maxX, maxY float64) {
	return n.Position.X, n.Position.Y, n.Position.X + n.Size.Width, n.Position.Y + n.Size.Height
}

// Clone returns a deep copy of the node, including ports and config.
func (n *WorkflowNode) Clone() *WorkflowNode {
	clone := *n
	clone.Config = cloneMap(n.Config)

	clone.Inputs = make([]*Port, len(n.Inputs))
	for i, port := range n.Inputs {
		clone.Inputs[i] = port.Clone()
	}

	clone.Outputs = make([]*Port, len(n.Outputs))
	for i, port := range n.Outputs {
		clone.Outputs[i] = port.Clone()
	}

	return &clone
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	out := make(map[string]any, len(m))

	for key, value := range m {
		if nested, ok := value.(map[string]any); ok {
			out[key] = cloneMap(nested)

			continue
		}

		if list, ok := value.([]any); ok {
			out[key] = cloneSlice(list)

			continue
		}

		out[key] = value
	}

	return out
}

func cloneSlice(s []any) []any {
	out := make([]any, len(s))

	for i, value := range s {
		if nested, ok := value.(map[string]any); ok {
			out[i] = cloneMap(nested)

			continue
		}

		if list, ok := value.([]any); ok {
			out[i] = cloneSlice(list)

			continue
		}

		out[i] = value
	}

	return out
}
