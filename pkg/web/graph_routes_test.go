package web_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustpress-net/flowstudio/pkg/models"
	"github.com/rustpress-net/flowstudio/pkg/registry"
	"github.com/rustpress-net/flowstudio/pkg/web"
)

func TestAPIHandlers_CreateWorkflowNode(t *testing.T) {
	t.Parallel()

	app, workflowService := setupTestApp(t)

	created, err := workflowService.Create(t.Context(), &models.Workflow{Name: "Publish pipeline"})
	require.NoError(t, err)

	resp := doRequest(t, app, http.MethodPost, "/workflows/"+created.ID+"/nodes", web.CreateNodeRequest{
		Type:     "log-message",
		Position: models.Position{X: 120, Y: 80},
		Config:   map[string]any{"message": "post published"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var node models.WorkflowNode

	decodeJSON(t, resp, &node)
	assert.NotEmpty(t, node.ID)
	assert.Equal(t, "log-message", node.Type)
	assert.Equal(t, "Log", node.Name)
	assert.Equal(t, models.NodeCategoryAction, node.Category)
	assert.InEpsilon(t, 120.0, node.Position.X, 0.001)
	assert.Equal(t, "post published", node.Config["message"])

	// Defaults from the type definition survive the config merge
	assert.Equal(t, "info", node.Config["level"])

	// Ports come from the type definition
	require.Len(t, node.Inputs, 1)
	assert.Equal(t, "main", node.Inputs[0].ID)
}

func TestAPIHandlers_CreateWorkflowNode_Errors(t *testing.T) {
	t.Parallel()

	app, workflowService := setupTestApp(t)

	created, err := workflowService.Create(t.Context(), &models.Workflow{Name: "Publish pipeline"})
	require.NoError(t, err)

	tests := []struct {
		name           string
		workflowID     string
		requestBody    web.CreateNodeRequest
		expectedStatus int
	}{
		{
			name:           "unknown node type",
			workflowID:     created.ID,
			requestBody:    web.CreateNodeRequest{Type: "teleport"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing required config",
			workflowID:     created.ID,
			requestBody:    web.CreateNodeRequest{Type: "http-request", Config: map[string]any{"method": "POST"}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing type",
			workflowID:     created.ID,
			requestBody:    web.CreateNodeRequest{Name: "No type"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "workflow not found",
			workflowID:     "missing",
			requestBody:    web.CreateNodeRequest{Type: "log-message", Config: map[string]any{"message": "x"}},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, http.MethodPost, "/workflows/"+tt.workflowID+"/nodes", tt.requestBody)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestAPIHandlers_GetWorkflowNode(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	workflowID, triggerID, _ := buildGraphFixture(t, app)

	resp := doRequest(t, app, http.MethodGet, "/workflows/"+workflowID+"/nodes/"+triggerID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var node models.WorkflowNode

	decodeJSON(t, resp, &node)
	assert.Equal(t, triggerID, node.ID)
	assert.Equal(t, "manual-trigger", node.Type)

	resp = doRequest(t, app, http.MethodGet, "/workflows/"+workflowID+"/nodes/missing", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_UpdateWorkflowNode(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	workflowID, _, actionID := buildGraphFixture(t, app)

	// Rename and replace config
	resp := doRequest(t, app, http.MethodPatch, "/workflows/"+workflowID+"/nodes/"+actionID, web.UpdateNodeRequest{
		Name:   stringPtr("Notify editors"),
		Config: map[string]any{"message": "review the homepage", "level": "warn"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var node models.WorkflowNode

	decodeJSON(t, resp, &node)
	assert.Equal(t, "Notify editors", node.Name)
	assert.Equal(t, "warn", node.Config["level"])

	// Move on the canvas
	resp = doRequest(t, app, http.MethodPatch, "/workflows/"+workflowID+"/nodes/"+actionID, web.UpdateNodeRequest{
		Position: &models.Position{X: 500, Y: 260},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	decodeJSON(t, resp, &node)
	assert.InEpsilon(t, 500.0, node.Position.X, 0.001)
	assert.InEpsilon(t, 260.0, node.Position.Y, 0.001)
	assert.Equal(t, "Notify editors", node.Name) // earlier update survived

	// Empty patch responds with the current state
	resp = doRequest(t, app, http.MethodPatch, "/workflows/"+workflowID+"/nodes/"+actionID, web.UpdateNodeRequest{})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	decodeJSON(t, resp, &node)
	assert.Equal(t, "Notify editors", node.Name)
}

func TestAPIHandlers_UpdateWorkflowNode_InvalidConfig(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	workflowID, _, actionID := buildGraphFixture(t, app)

	// log-message requires a message
	resp := doRequest(t, app, http.MethodPatch, "/workflows/"+workflowID+"/nodes/"+actionID, web.UpdateNodeRequest{
		Config: map[string]any{"level": "debug"},
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_DeleteWorkflowNode(t *testing.T) {
	t.Parallel()

	app, workflowService := setupTestApp(t)

	workflowID, triggerID, _ := buildGraphFixture(t, app)

	resp := doRequest(t, app, http.MethodDelete, "/workflows/"+workflowID+"/nodes/"+triggerID, nil)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Connections touching the node are removed with it
	stored, err := workflowService.FetchByID(t.Context(), workflowID)
	require.NoError(t, err)
	assert.Len(t, stored.Nodes, 1)
	assert.Empty(t, stored.Connections)

	resp = doRequest(t, app, http.MethodDelete, "/workflows/"+workflowID+"/nodes/"+triggerID, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_CreateWorkflowConnection(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	workflowID, triggerID, actionID := buildGraphFixture(t, app)

	// The fixture already connected main -> main, a second identical edge
	// is rejected as a duplicate
	resp := doRequest(t, app, http.MethodPost, "/workflows/"+workflowID+"/connections", web.CreateConnectionRequest{
		SourceNodeID: triggerID,
		SourcePortID: "main",
		TargetNodeID: actionID,
		TargetPortID: "main",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Connecting a node to itself is rejected
	resp = doRequest(t, app, http.MethodPost, "/workflows/"+workflowID+"/connections", web.CreateConnectionRequest{
		SourceNodeID: actionID,
		SourcePortID: "main",
		TargetNodeID: actionID,
		TargetPortID: "main",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown endpoint node
	resp = doRequest(t, app, http.MethodPost, "/workflows/"+workflowID+"/connections", web.CreateConnectionRequest{
		SourceNodeID: "missing",
		SourcePortID: "main",
		TargetNodeID: actionID,
		TargetPortID: "main",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Missing body fields fail request validation
	resp = doRequest(t, app, http.MethodPost, "/workflows/"+workflowID+"/connections", web.CreateConnectionRequest{
		SourceNodeID: triggerID,
		SourcePortID: "main",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_CreateWorkflowConnection_WithCondition(t *testing.T) {
	t.Parallel()

	app, workflowService := setupTestApp(t)

	workflowID, triggerID, actionID := buildGraphFixture(t, app)

	// Remove the fixture edge and reconnect with a label and condition
	stored, err := workflowService.FetchByID(t.Context(), workflowID)
	require.NoError(t, err)
	require.Len(t, stored.Connections, 1)

	resp := doRequest(t, app, http.MethodDelete,
		"/workflows/"+workflowID+"/connections/"+stored.Connections[0].ID, nil)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPost, "/workflows/"+workflowID+"/connections", web.CreateConnectionRequest{
		SourceNodeID: triggerID,
		SourcePortID: "main",
		TargetNodeID: actionID,
		TargetPortID: "main",
		Label:        "on publish",
		Condition:    "trigger.post_id != nil",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var connection models.Connection

	decodeJSON(t, resp, &connection)
	assert.NotEmpty(t, connection.ID)
	assert.Equal(t, "on publish", connection.Label)
	assert.Equal(t, "trigger.post_id != nil", connection.Condition)
}

func TestAPIHandlers_DeleteWorkflowConnection_NotFound(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	workflowID, _, _ := buildGraphFixture(t, app)

	resp := doRequest(t, app, http.MethodDelete, "/workflows/"+workflowID+"/connections/missing", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_WorkflowVariables(t *testing.T) {
	t.Parallel()

	app, workflowService := setupTestApp(t)

	created, err := workflowService.Create(t.Context(), &models.Workflow{Name: "Publish pipeline"})
	require.NoError(t, err)

	// Create
	resp := doRequest(t, app, http.MethodPost, "/workflows/"+created.ID+"/variables", web.VariableRequest{
		Name:  "site_url",
		Type:  "string",
		Value: "https://blog.example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var variable models.WorkflowVariable

	decodeJSON(t, resp, &variable)
	assert.NotEmpty(t, variable.ID)
	assert.Equal(t, "site_url", variable.Name)
	assert.Equal(t, models.VariableTypeString, variable.Type)

	// Update replaces every field
	resp = doRequest(t, app, http.MethodPatch, "/workflows/"+created.ID+"/variables/"+variable.ID, web.VariableRequest{
		Name:   "api_token",
		Type:   "string",
		Value:  "secret-value",
		Secret: true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	decodeJSON(t, resp, &variable)
	assert.Equal(t, "api_token", variable.Name)
	assert.True(t, variable.Secret)

	// Delete
	resp = doRequest(t, app, http.MethodDelete, "/workflows/"+created.ID+"/variables/"+variable.ID, nil)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, app, http.MethodDelete, "/workflows/"+created.ID+"/variables/"+variable.ID, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_WorkflowVariables_Invalid(t *testing.T) {
	t.Parallel()

	app, workflowService := setupTestApp(t)

	created, err := workflowService.Create(t.Context(), &models.Workflow{Name: "Publish pipeline"})
	require.NoError(t, err)

	// Unknown type never reaches the service
	resp := doRequest(t, app, http.MethodPost, "/workflows/"+created.ID+"/variables", web.VariableRequest{
		Name: "broken",
		Type: "uuid",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Missing name
	resp = doRequest(t, app, http.MethodPost, "/workflows/"+created.ID+"/variables", web.VariableRequest{
		Type: "string",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Update on a missing variable
	resp = doRequest(t, app, http.MethodPatch, "/workflows/"+created.ID+"/variables/missing", web.VariableRequest{
		Name: "site_url",
		Type: "string",
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_ValidateWorkflow(t *testing.T) {
	t.Parallel()

	app, workflowService := setupTestApp(t)

	type validationResponse struct {
		Valid    bool     `json:"valid"`
		Errors   []string `json:"errors"`
		Warnings []string `json:"warnings"`
	}

	t.Run("complete graph is valid", func(t *testing.T) {
		workflowID, _, _ := buildGraphFixture(t, app)

		resp := doRequest(t, app, http.MethodPost, "/workflows/"+workflowID+"/validate", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result validationResponse

		decodeJSON(t, resp, &result)
		assert.True(t, result.Valid)
		assert.Empty(t, result.Errors)
	})

	t.Run("empty graph reports errors", func(t *testing.T) {
		created, err := workflowService.Create(t.Context(), &models.Workflow{Name: "Empty canvas"})
		require.NoError(t, err)

		resp := doRequest(t, app, http.MethodPost, "/workflows/"+created.ID+"/validate", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result validationResponse

		decodeJSON(t, resp, &result)
		assert.False(t, result.Valid)
		assert.NotEmpty(t, result.Errors)
	})

	t.Run("workflow not found", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodPost, "/workflows/missing/validate", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAPIHandlers_GetNodeTypes(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	type nodeTypesResponse struct {
		NodeTypes  []registry.NodeTypeDefinition `json:"node_types"`
		TotalCount int                           `json:"total_count"`
	}

	t.Run("full palette", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/node-types", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var response nodeTypesResponse

		decodeJSON(t, resp, &response)
		assert.Equal(t, 20, response.TotalCount)
		assert.Len(t, response.NodeTypes, 20)
	})

	t.Run("filter by category", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/node-types?category=trigger", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var response nodeTypesResponse

		decodeJSON(t, resp, &response)
		require.NotEmpty(t, response.NodeTypes)

		for _, definition := range response.NodeTypes {
			assert.Equal(t, models.NodeCategoryTrigger, definition.Category)
		}
	})

	t.Run("unknown category", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/node-types?category=gadgets", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
