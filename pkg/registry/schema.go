package registry

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/xeipuuv/gojsonschema"

	"github.com/rustpress-net/flowstudio/pkg/models"
)

// ConfigSchema derives the JSON schema for a definition's config form.
func (d NodeTypeDefinition) ConfigSchema() *models.JSONSchema {
	schema := &models.JSONSchema{
		Type:       "object",
		Title:      d.Label,
		Properties: make(map[string]*models.Property, len(d.Fields)),
	}

	for _, field := range d.Fields {
		property := &models.Property{
			Type:        propertyType(field.Type),
			Description: field.Description,
			Default:     field.Default,
		}

		if field.Type == FieldTypeSelect && len(field.Options) > 0 {
			property.Enum = make([]any, len(field.Options))
			for i, option := range field.Options {
				property.Enum[i] = option
			}
		}

		schema.Properties[field.Name] = property

		if field.Required {
			schema.Required = append(schema.Required, field.Name)
		}
	}

	return schema
}

// ValidateConfig checks a config map against the type's schema. Cron fields
// are additionally parsed so malformed schedules fail before save.
func (r *Registry) ValidateConfig(nodeType string, config map[string]any) error {
	def, err := r.Lookup(nodeType)
	if err != nil {
		return err
	}

	if config == nil {
		config = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(def.ConfigSchema())
	dataLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if !result.Valid() {
		var details []string
		for _, resultError := range result.Errors() {
			details = append(details, resultError.String())
		}

		return fmt.Errorf("%w: type %q: %s", ErrInvalidConfig, nodeType, strings.Join(details, "; "))
	}

	for _, field := range def.Fields {
		if field.Type != FieldTypeCron {
			continue
		}

		expression, ok := config[field.Name].(string)
		if !ok || expression == "" {
			continue
		}

		if _, err := cron.ParseStandard(expression); err != nil {
			return fmt.Errorf("%w: type %q field %q: %w", ErrInvalidConfig, nodeType, field.Name, err)
		}
	}

	return nil
}

func propertyType(fieldType FieldType) string {
	switch fieldType {
	case FieldTypeNumber:
		return "number"
	case FieldTypeBoolean:
		return "boolean"
	case FieldTypeJSON:
		return "object"
	case FieldTypeText, FieldTypeTextarea, FieldTypeSelect, FieldTypeCode, FieldTypeCron:
		return "string"
	}

	return "string"
}
