package models

// VariableType constrains the value shape of a workflow variable.
type VariableType string

const (
	VariableTypeString  VariableType = "string"
	VariableTypeNumber  VariableType = "number"
	VariableTypeBoolean VariableType = "boolean"
	VariableTypeObject  VariableType = "object"
	VariableTypeArray   VariableType = "array"
)

// Valid reports whether the type is one of the known variable types.
func (t VariableType) Valid() bool {
	switch t {
	case VariableTypeString, VariableTypeNumber, VariableTypeBoolean, VariableTypeObject, VariableTypeArray:
		return true
	}

	return false
}

// WorkflowVariable is a named value nodes can reference through templates.
// Secret variables are masked in list views but stored as given.
type WorkflowVariable struct {
	ID          string       `json:"id"`
	Name        string       `json:"name" validate:"required,min=1"`
	Type        VariableType `json:"type" validate:"required"`
	Value       any          `json:"value"`
	Secret      bool         `json:"secret"`
	Description string       `json:"description,omitempty"`
}

// Clone returns a copy of the variable. Object and array values are
// deep-copied so snapshots stay independent.
func (v *WorkflowVariable) Clone() *WorkflowVariable {
	clone := *v

	if nested, ok := v.Value.(map[string]any); ok {
		clone.Value = cloneMap(nested)
	}

	if list, ok := v.Value.([]any); ok {
		clone.Value = cloneSlice(list)
	}

	return &clone
}
