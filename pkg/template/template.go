// Package template renders workflow configuration values against the data
// visible to a run: variables, trigger payload and upstream node outputs.
package template

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/template"
	"time"
)

// RenderContext carries the data a config template can reference.
type RenderContext struct {
	ExecutionID string
	WorkflowID  string
	Variables   map[string]any
	TriggerData map[string]any
	NodeOutputs map[string]any
}

// RenderWithContext renders input with the run data bound under the names
// templates use: .variables (alias .vars), .trigger, .nodes, .env and
// .execution.
func RenderWithContext(input string, rc *RenderContext) (any, error) {
	data := map[string]any{
		"variables": rc.Variables,
		"vars":      rc.Variables, // Support both .vars and .variables
		"trigger":   rc.TriggerData,
		"nodes":     rc.NodeOutputs,
		"env":       getEnvVars(),
		"execution": map[string]any{
			"id":          rc.ExecutionID,
			"workflow_id": rc.WorkflowID,
		},
	}

	return Render(input, data)
}

// RenderConfig renders every templated string value of a config map. Values
// without template markers and non-string values pass through unchanged.
func RenderConfig(config map[string]any, rc *RenderContext) (map[string]any, error) {
	if len(config) == 0 {
		return map[string]any{}, nil
	}

	rendered := make(map[string]any, len(config))

	for key, value := range config {
		str, ok := value.(string)
		if !ok || !NeedsTemplating(str) {
			rendered[key] = value

			continue
		}

		result, err := RenderWithContext(str, rc)
		if err != nil {
			return nil, fmt.Errorf("failed to render config field %q: %w", key, err)
		}

		rendered[key] = result
	}

	return rendered, nil
}

// NeedsTemplating reports whether a string contains template actions.
func NeedsTemplating(input string) bool {
	return strings.Contains(input, "{{")
}

// Render parses and executes a template string, then coerces the output:
// JSON-looking results are unmarshalled, numeric and boolean strings are
// converted, everything else stays a string.
func Render(templateStr string, data any) (any, error) {
	tmpl, err := template.
		New("config").
		Funcs(template.FuncMap{
			"now": func() string {
				return time.Now().UTC().Format(time.RFC3339)
			},
			"rand": func(max int) int {
				if max <= 0 {
					return 0
				}
				num := make([]byte, 1)
				_, err := rand.Read(num)
				if err != nil {
					return 0
				}

				return int(num[0]) % max
			},
		}).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template '%s': %w", templateStr, err)
	}

	var buf strings.Builder

	err = tmpl.Execute(&buf, data)
	if err != nil {
		return nil, fmt.Errorf("failed to execute template '%s': %w", templateStr, err)
	}

	result := strings.TrimSpace(buf.String())

	if (strings.HasPrefix(result, "{") && strings.HasSuffix(result, "}")) ||
		(strings.HasPrefix(result, "[") && strings.HasSuffix(result, "]")) {
		var jsonResult any

		err := json.Unmarshal([]byte(result), &jsonResult)
		if err == nil {
			return jsonResult, nil
		}

		return jsonResult, fmt.Errorf("failed to parse json '%s': %w", templateStr, err)
	}

	if num, err := strconv.ParseFloat(result, 64); err == nil {
		return num, nil
	}

	if b, err := strconv.ParseBool(result); err == nil {
		return b, nil
	}

	return result, nil
}

// getEnvVars returns environment variables as a map.
func getEnvVars() map[string]any {
	envMap := make(map[string]any)

	for _, env := range os.Environ() {
		parts := strings.SplitN(env, "=", 2)
		if len(parts) == 2 {
			envMap[parts[0]] = parts[1]
		}
	}

	return envMap
}
