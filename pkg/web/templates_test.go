package web_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustpress-net/flowstudio/pkg/models"
	"github.com/rustpress-net/flowstudio/pkg/web"
)

// createTemplateFixture snapshots the standard graph fixture into the
// template catalog and returns the template with its source workflow id.
func createTemplateFixture(t *testing.T, app *fiber.App, name, category string) (models.WorkflowTemplate, string) {
	t.Helper()

	workflowID, _, _ := buildGraphFixture(t, app)

	resp := doRequest(t, app, http.MethodPost, "/templates", web.CreateTemplateRequest{
		WorkflowID: workflowID,
		Name:       name,
		Category:   category,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var template models.WorkflowTemplate

	decodeJSON(t, resp, &template)

	return template, workflowID
}

func TestAPIHandlers_CreateTemplate(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	template, workflowID := createTemplateFixture(t, app, "Publishing starter", "content")

	assert.NotEmpty(t, template.ID)
	assert.Equal(t, "Publishing starter", template.Name)
	assert.Equal(t, "content", template.Category)

	// The snapshot embeds the full graph
	require.NotNil(t, template.Workflow)
	assert.Equal(t, workflowID, template.Workflow.ID)
	assert.Len(t, template.Workflow.Nodes, 2)
	assert.Len(t, template.Workflow.Connections, 1)
}

func TestAPIHandlers_CreateTemplate_Errors(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	workflowID, _, _ := buildGraphFixture(t, app)

	tests := []struct {
		name           string
		requestBody    web.CreateTemplateRequest
		expectedStatus int
	}{
		{
			name:           "workflow not found",
			requestBody:    web.CreateTemplateRequest{WorkflowID: "missing", Name: "Orphan template"},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "missing name",
			requestBody:    web.CreateTemplateRequest{WorkflowID: workflowID},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "name too short",
			requestBody:    web.CreateTemplateRequest{WorkflowID: workflowID, Name: "Hi"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, app, http.MethodPost, "/templates", tt.requestBody)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestAPIHandlers_GetTemplates(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	createTemplateFixture(t, app, "Publishing starter", "content")
	createTemplateFixture(t, app, "Backup routine", "maintenance")

	type templatesResponse struct {
		Templates  []models.WorkflowTemplate `json:"templates"`
		TotalCount int                       `json:"total_count"`
	}

	t.Run("full catalog", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/templates", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var response templatesResponse

		decodeJSON(t, resp, &response)
		assert.Equal(t, 2, response.TotalCount)
		assert.Len(t, response.Templates, 2)
	})

	t.Run("filter by category", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/templates?category=content", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var response templatesResponse

		decodeJSON(t, resp, &response)
		require.Len(t, response.Templates, 1)
		assert.Equal(t, "Publishing starter", response.Templates[0].Name)
	})
}

func TestAPIHandlers_GetTemplate(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	template, _ := createTemplateFixture(t, app, "Publishing starter", "content")

	resp := doRequest(t, app, http.MethodGet, "/templates/"+template.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.WorkflowTemplate

	decodeJSON(t, resp, &fetched)
	assert.Equal(t, template.ID, fetched.ID)
	assert.Equal(t, "Publishing starter", fetched.Name)

	resp = doRequest(t, app, http.MethodGet, "/templates/missing", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_InstantiateTemplate(t *testing.T) {
	t.Parallel()

	app, workflowService := setupTestApp(t)

	template, sourceID := createTemplateFixture(t, app, "Publishing starter", "content")

	resp := doRequest(t, app, http.MethodPost, "/templates/"+template.ID+"/instantiate", web.InstantiateTemplateRequest{
		Name: "August pipeline",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var workflow models.Workflow

	decodeJSON(t, resp, &workflow)
	assert.NotEqual(t, sourceID, workflow.ID)
	assert.Equal(t, "August pipeline", workflow.Name)
	assert.Equal(t, models.WorkflowStatusDraft, workflow.Status)
	assert.Equal(t, 1, workflow.Version)
	require.Len(t, workflow.Nodes, 2)
	require.Len(t, workflow.Connections, 1)

	// Graph ids are remapped, connections follow the new node ids
	sourceNodes := make(map[string]bool)
	for _, node := range template.Workflow.Nodes {
		sourceNodes[node.ID] = true
	}

	newNodes := make(map[string]bool)

	for _, node := range workflow.Nodes {
		assert.False(t, sourceNodes[node.ID])

		newNodes[node.ID] = true
	}

	assert.True(t, newNodes[workflow.Connections[0].SourceNodeID])
	assert.True(t, newNodes[workflow.Connections[0].TargetNodeID])

	// The instantiated workflow landed in the catalog
	stored, err := workflowService.FetchByID(t.Context(), workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, "August pipeline", stored.Name)
}

func TestAPIHandlers_InstantiateTemplate_DefaultName(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	template, _ := createTemplateFixture(t, app, "Publishing starter", "content")

	// Without a body the workflow takes the template's name
	resp := doRequest(t, app, http.MethodPost, "/templates/"+template.ID+"/instantiate", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var workflow models.Workflow

	decodeJSON(t, resp, &workflow)
	assert.Equal(t, "Publishing starter", workflow.Name)
}

func TestAPIHandlers_InstantiateTemplate_NotFound(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp := doRequest(t, app, http.MethodPost, "/templates/missing/instantiate", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_DeleteTemplate(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	template, _ := createTemplateFixture(t, app, "Publishing starter", "content")

	resp := doRequest(t, app, http.MethodDelete, "/templates/"+template.ID, nil)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/templates/"+template.ID, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, app, http.MethodDelete, "/templates/"+template.ID, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
