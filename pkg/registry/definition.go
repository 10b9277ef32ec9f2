// Package registry holds the catalog of node types available in the editor
// palette: their categories, ports, and configuration fields.
package registry

import (
	"github.com/rustpress-net/flowstudio/pkg/models"
)

// Default canvas extent for newly materialized nodes.
const (
	DefaultNodeWidth  = 200.0
	DefaultNodeHeight = 80.0
)

// FieldType enumerates the editor widgets a config field can render as.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeSelect   FieldType = "select"
	FieldTypeJSON     FieldType = "json"
	FieldTypeCode     FieldType = "code"
	FieldTypeCron     FieldType = "cron"
)

// PortSpec declares a port a node type exposes. Materialized ports use Name
// as their instance ID, unique within the node.
type PortSpec struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	DataType string `json:"data_type"`
	Multiple bool   `json:"multiple"`
}

// ConfigField declares one entry in a node type's configuration form.
type ConfigField struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Default     any       `json:"default,omitempty"`
	Options     []string  `json:"options,omitempty"` // Select choices
	Description string    `json:"description,omitempty"`
}

// NodeTypeDefinition describes a node type in the palette.
type NodeTypeDefinition struct {
	Type        string              `json:"type"`
	Category    models.NodeCategory `json:"category"`
	Label       string              `json:"label"`
	Description string              `json:"description"`
	Icon        string              `json:"icon,omitempty"`
	Color       string              `json:"color,omitempty"`
	Inputs      []PortSpec          `json:"inputs"`
	Outputs     []PortSpec          `json:"outputs"`
	Fields      []ConfigField       `json:"fields"`
}

// Materialize builds a node instance of this type: ports realized from the
// specs, config seeded with field defaults, default size, given position.
func (d NodeTypeDefinition) Materialize(id string, position models.Position) *models.WorkflowNode {
	node := &models.WorkflowNode{
		ID:       id,
		Type:     d.Type,
		Category: d.Category,
		Name:     d.Label,
		Position: position,
		Size:     models.Size{Width: DefaultNodeWidth, Height: DefaultNodeHeight},
		Config:   make(map[string]any),
		Inputs:   materializePorts(d.Inputs),
		Outputs:  materializePorts(d.Outputs),
	}

	for _, field := range d.Fields {
		if field.Default != nil {
			node.Config[field.Name] = field.Default
		}
	}

	return node
}

func materializePorts(specs []PortSpec) []*models.Port {
	ports := make([]*models.Port, len(specs))

	for i, spec := range specs {
		dataType := spec.DataType
		if dataType == "" {
			dataType = "any"
		}

		ports[i] = &models.Port{
			ID:       spec.Name,
			Label:    spec.Label,
			DataType: dataType,
			Multiple: spec.Multiple,
		}
	}

	return ports
}
