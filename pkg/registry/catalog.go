package registry

import "github.com/rustpress-net/flowstudio/pkg/models"

// RegisterDefaults installs the built-in node type catalog. The custom
// category stays empty; user-defined types register through Register at
// startup.
func (r *Registry) RegisterDefaults() error {
	sections := []func() []NodeTypeDefinition{
		triggerTypes,
		actionTypes,
		logicTypes,
		transformTypes,
		utilityTypes,
		integrationTypes,
		aiTypes,
	}

	for _, section := range sections {
		for _, def := range section() {
			if err := r.Register(def); err != nil {
				return err
			}
		}
	}

	return nil
}

func mainInput() []PortSpec {
	return []PortSpec{{Name: "main", Label: "Main", DataType: "any"}}
}

func successErrorOutputs() []PortSpec {
	return []PortSpec{
		{Name: "success", Label: "Success", DataType: "any"},
		{Name: "error", Label: "Error", DataType: "object"},
	}
}

// Execution policy fields carried by side-effectful nodes. The editor only
// stores them; runtimes read them when a workflow goes live.
func executionPolicyFields() []ConfigField {
	return []ConfigField{
		{
			Name:        "retry_policy",
			Label:       "Retry Policy",
			Type:        FieldTypeSelect,
			Options:     []string{"none", "linear", "exponential"},
			Default:     "none",
			Description: "How failed attempts are retried",
		},
		{
			Name:        "timeout_seconds",
			Label:       "Timeout (seconds)",
			Type:        FieldTypeNumber,
			Default:     float64(30),
			Description: "Per-node execution deadline",
		},
		{
			Name:        "error_handling",
			Label:       "On Error",
			Type:        FieldTypeSelect,
			Options:     []string{"stop", "continue", "branch"},
			Default:     "stop",
			Description: "Whether a failure stops the run, is ignored, or follows the error port",
		},
	}
}

func triggerTypes() []NodeTypeDefinition {
	return []NodeTypeDefinition{
		{
			Type:        "manual-trigger",
			Category:    models.NodeCategoryTrigger,
			Label:       "Manual",
			Description: "Starts the workflow when triggered from the dashboard",
			Icon:        "play",
			Color:       "#22c55e",
			Outputs:     []PortSpec{{Name: "main", Label: "Main", DataType: "any"}},
		},
		{
			Type:        "webhook-trigger",
			Category:    models.NodeCategoryTrigger,
			Label:       "Webhook",
			Description: "Starts the workflow on an incoming HTTP request",
			Icon:        "webhook",
			Color:       "#22c55e",
			Outputs:     []PortSpec{{Name: "main", Label: "Main", DataType: "object"}},
			Fields: []ConfigField{
				{Name: "path", Label: "Path", Type: FieldTypeText, Required: true, Description: "URL path the webhook listens on"},
				{Name: "method", Label: "Method", Type: FieldTypeSelect, Options: []string{"GET", "POST", "PUT", "DELETE"}, Default: "POST"},
				{Name: "secret", Label: "Secret", Type: FieldTypeText, Description: "Shared secret for request signing"},
			},
		},
		{
			Type:        "schedule-trigger",
			Category:    models.NodeCategoryTrigger,
			Label:       "Schedule",
			Description: "Starts the workflow on a cron schedule",
			Icon:        "clock",
			Color:       "#22c55e",
			Outputs:     []PortSpec{{Name: "main", Label: "Main", DataType: "object"}},
			Fields: []ConfigField{
				{Name: "cron", Label: "Cron Expression", Type: FieldTypeCron, Required: true, Description: "Standard 5-field cron expression"},
				{Name: "timezone", Label: "Timezone", Type: FieldTypeText, Default: "UTC"},
			},
		},
		{
			Type:        "event-trigger",
			Category:    models.NodeCategoryTrigger,
			Label:       "Content Event",
			Description: "Starts the workflow when a content event fires",
			Icon:        "bolt",
			Color:       "#22c55e",
			Outputs:     []PortSpec{{Name: "main", Label: "Main", DataType: "object"}},
			Fields: []ConfigField{
				{
					Name:     "event",
					Label:    "Event",
					Type:     FieldTypeSelect,
					Required: true,
					Options: []string{
						"post.published", "post.updated", "post.deleted",
						"comment.created", "user.registered", "media.uploaded",
					},
				},
			},
		},
	}
}

func actionTypes() []NodeTypeDefinition {
	return []NodeTypeDefinition{
		{
			Type:        "http-request",
			Category:    models.NodeCategoryAction,
			Label:       "HTTP Request",
			Description: "Calls an external HTTP endpoint with templated URL and body",
			Icon:        "globe",
			Color:       "#3b82f6",
			Inputs:      mainInput(),
			Outputs:     successErrorOutputs(),
			Fields: append([]ConfigField{
				{Name: "url", Label: "URL", Type: FieldTypeText, Required: true, Description: "Request URL. Supports templating with workflow variables."},
				{Name: "method", Label: "Method", Type: FieldTypeSelect, Options: []string{"GET", "POST", "PUT", "PATCH", "DELETE"}, Default: "GET"},
				{Name: "headers", Label: "Headers", Type: FieldTypeJSON},
				{Name: "body", Label: "Body", Type: FieldTypeTextarea},
			}, executionPolicyFields()...),
		},
		{
			Type:        "send-email",
			Category:    models.NodeCategoryAction,
			Label:       "Send Email",
			Description: "Sends an email through the configured provider",
			Icon:        "mail",
			Color:       "#3b82f6",
			Inputs:      mainInput(),
			Outputs:     successErrorOutputs(),
			Fields: append([]ConfigField{
				{Name: "to", Label: "To", Type: FieldTypeText, Required: true},
				{Name: "subject", Label: "Subject", Type: FieldTypeText, Required: true},
				{Name: "body", Label: "Body", Type: FieldTypeTextarea},
			}, executionPolicyFields()...),
		},
		{
			Type:        "database-write",
			Category:    models.NodeCategoryAction,
			Label:       "Database Write",
			Description: "Writes a document to a site collection",
			Icon:        "database",
			Color:       "#3b82f6",
			Inputs:      mainInput(),
			Outputs:     successErrorOutputs(),
			Fields: append([]ConfigField{
				{Name: "collection", Label: "Collection", Type: FieldTypeText, Required: true},
				{Name: "operation", Label: "Operation", Type: FieldTypeSelect, Options: []string{"insert", "update", "upsert", "delete"}, Default: "insert"},
				{Name: "document", Label: "Document", Type: FieldTypeJSON},
			}, executionPolicyFields()...),
		},
		{
			Type:        "log-message",
			Category:    models.NodeCategoryAction,
			Label:       "Log",
			Description: "Logs a templated message at the chosen level",
			Icon:        "terminal",
			Color:       "#3b82f6",
			Inputs:      mainInput(),
			Outputs:     []PortSpec{{Name: "main", Label: "Main", DataType: "any"}},
			Fields: []ConfigField{
				{Name: "message", Label: "Message", Type: FieldTypeText, Required: true, Description: "Message to log. Supports templating with workflow variables."},
				{Name: "level", Label: "Level", Type: FieldTypeSelect, Options: []string{"debug", "info", "warn", "error"}, Default: "info"},
			},
		},
	}
}

func logicTypes() []NodeTypeDefinition {
	return []NodeTypeDefinition{
		{
			Type:        "condition",
			Category:    models.NodeCategoryLogic,
			Label:       "Condition",
			Description: "Routes items to the true or false branch",
			Icon:        "git-branch",
			Color:       "#f59e0b",
			Inputs:      mainInput(),
			Outputs: []PortSpec{
				{Name: "true", Label: "True", DataType: "any"},
				{Name: "false", Label: "False", DataType: "any"},
			},
			Fields: []ConfigField{
				{Name: "expression", Label: "Expression", Type: FieldTypeCode, Required: true, Description: "Boolean expression evaluated against the item"},
			},
		},
		{
			Type:        "switch",
			Category:    models.NodeCategoryLogic,
			Label:       "Switch",
			Description: "Routes items to the first matching case",
			Icon:        "split",
			Color:       "#f59e0b",
			Inputs:      mainInput(),
			Outputs: []PortSpec{
				{Name: "case_1", Label: "Case 1", DataType: "any"},
				{Name: "case_2", Label: "Case 2", DataType: "any"},
				{Name: "default", Label: "Default", DataType: "any"},
			},
			Fields: []ConfigField{
				{Name: "cases", Label: "Cases", Type: FieldTypeJSON, Required: true, Description: "Ordered case expressions mapped to output ports"},
			},
		},
		{
			Type:        "delay",
			Category:    models.NodeCategoryLogic,
			Label:       "Delay",
			Description: "Holds items for a fixed duration",
			Icon:        "hourglass",
			Color:       "#f59e0b",
			Inputs:      mainInput(),
			Outputs:     []PortSpec{{Name: "main", Label: "Main", DataType: "any"}},
			Fields: []ConfigField{
				{Name: "duration_ms", Label: "Duration (ms)", Type: FieldTypeNumber, Required: true, Default: float64(1000)},
			},
		},
	}
}

func transformTypes() []NodeTypeDefinition {
	return []NodeTypeDefinition{
		{
			Type:        "map-fields",
			Category:    models.NodeCategoryTransform,
			Label:       "Map Fields",
			Description: "Reshapes items with a field mapping",
			Icon:        "shuffle",
			Color:       "#8b5cf6",
			Inputs:      mainInput(),
			Outputs:     []PortSpec{{Name: "main", Label: "Main", DataType: "object"}},
			Fields: []ConfigField{
				{Name: "mapping", Label: "Mapping", Type: FieldTypeJSON, Required: true, Description: "Output field to source expression map"},
			},
		},
		{
			Type:        "filter-items",
			Category:    models.NodeCategoryTransform,
			Label:       "Filter",
			Description: "Splits items into passed and rejected branches",
			Icon:        "filter",
			Color:       "#8b5cf6",
			Inputs:      mainInput(),
			Outputs: []PortSpec{
				{Name: "passed", Label: "Passed", DataType: "any"},
				{Name: "rejected", Label: "Rejected", DataType: "any"},
			},
			Fields: []ConfigField{
				{Name: "expression", Label: "Expression", Type: FieldTypeCode, Required: true},
			},
		},
		{
			Type:        "code",
			Category:    models.NodeCategoryTransform,
			Label:       "Code",
			Description: "Transforms items with a custom expression",
			Icon:        "code",
			Color:       "#8b5cf6",
			Inputs:      mainInput(),
			Outputs:     []PortSpec{{Name: "main", Label: "Main", DataType: "any"}},
			Fields: []ConfigField{
				{Name: "source", Label: "Source", Type: FieldTypeCode, Required: true},
			},
		},
	}
}

func utilityTypes() []NodeTypeDefinition {
	return []NodeTypeDefinition{
		{
			Type:        "merge",
			Category:    models.NodeCategoryUtility,
			Label:       "Merge",
			Description: "Joins items from multiple branches",
			Icon:        "merge",
			Color:       "#64748b",
			Inputs:      []PortSpec{{Name: "main", Label: "Main", DataType: "any", Multiple: true}},
			Outputs:     []PortSpec{{Name: "main", Label: "Main", DataType: "any"}},
			Fields: []ConfigField{
				{Name: "strategy", Label: "Strategy", Type: FieldTypeSelect, Options: []string{"append", "combine", "wait_all"}, Default: "append"},
			},
		},
		{
			Type:        "note",
			Category:    models.NodeCategoryUtility,
			Label:       "Note",
			Description: "Free-form annotation pinned to the canvas",
			Icon:        "sticky-note",
			Color:       "#64748b",
			Fields: []ConfigField{
				{Name: "text", Label: "Text", Type: FieldTypeTextarea},
			},
		},
	}
}

func integrationTypes() []NodeTypeDefinition {
	return []NodeTypeDefinition{
		{
			Type:        "slack-message",
			Category:    models.NodeCategoryIntegration,
			Label:       "Slack",
			Description: "Posts a message to a Slack channel",
			Icon:        "slack",
			Color:       "#ec4899",
			Inputs:      mainInput(),
			Outputs:     successErrorOutputs(),
			Fields: append([]ConfigField{
				{Name: "channel", Label: "Channel", Type: FieldTypeText, Required: true},
				{Name: "message", Label: "Message", Type: FieldTypeTextarea, Required: true},
				{Name: "webhook_url", Label: "Webhook URL", Type: FieldTypeText},
			}, executionPolicyFields()...),
		},
		{
			Type:        "google-sheets",
			Category:    models.NodeCategoryIntegration,
			Label:       "Google Sheets",
			Description: "Appends or reads rows in a spreadsheet",
			Icon:        "table",
			Color:       "#ec4899",
			Inputs:      mainInput(),
			Outputs:     successErrorOutputs(),
			Fields: append([]ConfigField{
				{Name: "spreadsheet_id", Label: "Spreadsheet ID", Type: FieldTypeText, Required: true},
				{Name: "range", Label: "Range", Type: FieldTypeText, Required: true},
				{Name: "operation", Label: "Operation", Type: FieldTypeSelect, Options: []string{"append", "read", "update"}, Default: "append"},
			}, executionPolicyFields()...),
		},
	}
}

func aiTypes() []NodeTypeDefinition {
	return []NodeTypeDefinition{
		{
			Type:        "ai-generate-text",
			Category:    models.NodeCategoryAI,
			Label:       "Generate Text",
			Description: "Generates text from a templated prompt",
			Icon:        "sparkles",
			Color:       "#14b8a6",
			Inputs:      mainInput(),
			Outputs:     successErrorOutputs(),
			Fields: []ConfigField{
				{Name: "prompt", Label: "Prompt", Type: FieldTypeTextarea, Required: true},
				{Name: "model", Label: "Model", Type: FieldTypeSelect, Options: []string{"standard", "advanced"}, Default: "standard"},
				{Name: "temperature", Label: "Temperature", Type: FieldTypeNumber, Default: 0.7},
			},
		},
		{
			Type:        "ai-classify",
			Category:    models.NodeCategoryAI,
			Label:       "Classify",
			Description: "Assigns one of the given labels to each item",
			Icon:        "tags",
			Color:       "#14b8a6",
			Inputs:      mainInput(),
			Outputs:     successErrorOutputs(),
			Fields: []ConfigField{
				{Name: "input", Label: "Input", Type: FieldTypeText, Required: true},
				{Name: "labels", Label: "Labels", Type: FieldTypeJSON, Required: true},
				{Name: "model", Label: "Model", Type: FieldTypeSelect, Options: []string{"standard", "advanced"}, Default: "standard"},
			},
		},
	}
}
