package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustpress-net/flowstudio/pkg/eventbus"
	"github.com/rustpress-net/flowstudio/pkg/models"
	"github.com/rustpress-net/flowstudio/pkg/persistence"
	"github.com/rustpress-net/flowstudio/pkg/persistence/file"
	"github.com/rustpress-net/flowstudio/pkg/registry"
	"github.com/rustpress-net/flowstudio/pkg/runner"
	"github.com/rustpress-net/flowstudio/pkg/services"
	"github.com/rustpress-net/flowstudio/pkg/validation"
	"github.com/rustpress-net/flowstudio/pkg/web"
)

const testCompletionDelay = 40 * time.Millisecond

func setupTestApp(t *testing.T) (*fiber.App, *services.Workflow) {
	t.Helper()

	return setupTestAppWithDelay(t, testCompletionDelay)
}

func setupTestAppWithDelay(t *testing.T, delay time.Duration) (*fiber.App, *services.Workflow) {
	t.Helper()

	return buildTestApp(t, delay, file.NewPersistence(t.TempDir()), nil)
}

func buildTestApp(
	t *testing.T,
	delay time.Duration,
	store persistence.Persistence,
	bus eventbus.EventPublisher,
) (*fiber.App, *services.Workflow) {
	t.Helper()

	reg := registry.NewRegistry(slog.Default())
	require.NoError(t, reg.RegisterDefaults())

	workflowService := services.NewWorkflow(store)
	graphService := services.NewGraph(store, reg)
	templateService := services.NewTemplate(store)
	workflowValidator := validation.NewValidator(reg, slog.Default())
	executionRunner := runner.NewRunner(store, workflowValidator, bus, slog.Default(),
		runner.WithCompletionDelay(delay))
	validate := validator.New(validator.WithRequiredStructEnabled())

	handlers := web.NewAPIHandlers(
		workflowService,
		graphService,
		templateService,
		executionRunner,
		workflowValidator,
		validate,
		reg,
		bus,
		slog.Default(),
	)

	app := fiber.New()
	web.RegisterRoutes(app, handlers)

	return app, workflowService
}

// doRequest runs a request against the app, marshalling body as JSON when set.
func doRequest(t *testing.T, app *fiber.App, method, url string, body any) *http.Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	defer func() { _ = resp.Body.Close() }()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

// buildGraphFixture assembles a runnable two node workflow entirely over the
// REST surface and returns the workflow and node ids.
func buildGraphFixture(t *testing.T, app *fiber.App) (workflowID, triggerID, actionID string) {
	t.Helper()

	resp := doRequest(t, app, http.MethodPost, "/workflows", web.CreateWorkflowRequest{
		Name:        "Publish pipeline",
		Description: "Notifies the team when a post goes live",
		Tags:        []string{"content"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var workflow models.Workflow

	decodeJSON(t, resp, &workflow)

	resp = doRequest(t, app, http.MethodPost, "/workflows/"+workflow.ID+"/nodes", web.CreateNodeRequest{
		Type:     "manual-trigger",
		Position: models.Position{X: 40, Y: 40},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var trigger models.WorkflowNode

	decodeJSON(t, resp, &trigger)

	resp = doRequest(t, app, http.MethodPost, "/workflows/"+workflow.ID+"/nodes", web.CreateNodeRequest{
		Type:     "log-message",
		Position: models.Position{X: 320, Y: 40},
		Config:   map[string]any{"message": "post {{ .trigger.post_id }} published"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var action models.WorkflowNode

	decodeJSON(t, resp, &action)

	resp = doRequest(t, app, http.MethodPost, "/workflows/"+workflow.ID+"/connections", web.CreateConnectionRequest{
		SourceNodeID: trigger.ID,
		SourcePortID: "main",
		TargetNodeID: action.ID,
		TargetPortID: "main",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	_ = resp.Body.Close()

	return workflow.ID, trigger.ID, action.ID
}

func TestAPIHandlers_CreateWorkflow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		validateResult func(t *testing.T, body []byte)
	}{
		{
			name: "successful creation",
			requestBody: web.CreateWorkflowRequest{
				Name:        "Newsletter digest",
				Description: "Collects the week's posts into a digest",
				Tags:        []string{"email", "content"},
			},
			expectedStatus: http.StatusCreated,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var workflow models.Workflow

				err := json.Unmarshal(body, &workflow)
				require.NoError(t, err)
				assert.Equal(t, "Newsletter digest", workflow.Name)
				assert.Equal(t, "Collects the week's posts into a digest", workflow.Description)
				assert.Equal(t, models.WorkflowStatusDraft, workflow.Status)
				assert.Equal(t, []string{"email", "content"}, workflow.Tags)
				assert.Equal(t, 1, workflow.Version)
				assert.Empty(t, workflow.Nodes)
				assert.Empty(t, workflow.Connections)
				assert.NotEmpty(t, workflow.ID)
			},
		},
		{
			name: "explicit status",
			requestBody: web.CreateWorkflowRequest{
				Name:   "Comment moderation",
				Status: "active",
			},
			expectedStatus: http.StatusCreated,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var workflow models.Workflow

				err := json.Unmarshal(body, &workflow)
				require.NoError(t, err)
				assert.Equal(t, models.WorkflowStatusActive, workflow.Status)
			},
		},
		{
			name:           "validation error - missing name",
			requestBody:    web.CreateWorkflowRequest{Description: "No name"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "validation error - name too short",
			requestBody:    web.CreateWorkflowRequest{Name: "Hi"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "validation error - unknown status",
			requestBody:    web.CreateWorkflowRequest{Name: "Bad status", Status: "published"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid-json",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, _ := setupTestApp(t)

			var (
				body []byte
				err  error
			)

			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/workflows", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.validateResult != nil && tt.expectedStatus == http.StatusCreated {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				tt.validateResult(t, body)
			}
		})
	}
}

func TestAPIHandlers_GetWorkflow(t *testing.T) {
	t.Parallel()

	app, workflowService := setupTestApp(t)

	created, err := workflowService.Create(t.Context(), &models.Workflow{Name: "Publish pipeline"})
	require.NoError(t, err)

	resp := doRequest(t, app, http.MethodGet, "/workflows/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var workflow models.Workflow

	decodeJSON(t, resp, &workflow)
	assert.Equal(t, created.ID, workflow.ID)
	assert.Equal(t, "Publish pipeline", workflow.Name)

	resp = doRequest(t, app, http.MethodGet, "/workflows/missing", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_UpdateWorkflow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		setupWorkflow  *models.Workflow
		requestBody    interface{}
		expectedStatus int
		validateResult func(t *testing.T, body []byte)
	}{
		{
			name:          "successful partial update - name only",
			setupWorkflow: &models.Workflow{Name: "Original Name", Description: "Original Description"},
			requestBody: web.UpdateWorkflowRequest{
				Name: stringPtr("Updated Name"),
			},
			expectedStatus: http.StatusOK,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var workflow models.Workflow

				err := json.Unmarshal(body, &workflow)
				require.NoError(t, err)
				assert.Equal(t, "Updated Name", workflow.Name)
				assert.Equal(t, "Original Description", workflow.Description) // unchanged
				assert.Equal(t, 2, workflow.Version)
			},
		},
		{
			name:          "successful partial update - multiple fields",
			setupWorkflow: &models.Workflow{Name: "Original Name"},
			requestBody: web.UpdateWorkflowRequest{
				Description: stringPtr("Pings the editors channel"),
				Status:      stringPtr("active"),
				Tags:        []string{"notifications"},
				Settings:    &models.WorkflowSettings{TimeoutSeconds: 120, NotifyOnFailure: true},
			},
			expectedStatus: http.StatusOK,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var workflow models.Workflow

				err := json.Unmarshal(body, &workflow)
				require.NoError(t, err)
				assert.Equal(t, "Original Name", workflow.Name) // unchanged
				assert.Equal(t, "Pings the editors channel", workflow.Description)
				assert.Equal(t, models.WorkflowStatusActive, workflow.Status)
				assert.Equal(t, []string{"notifications"}, workflow.Tags)
				assert.Equal(t, 120, workflow.Settings.TimeoutSeconds)
				assert.True(t, workflow.Settings.NotifyOnFailure)
			},
		},
		{
			name:           "workflow not found",
			setupWorkflow:  nil,
			requestBody:    web.UpdateWorkflowRequest{Name: stringPtr("New Name")},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "validation error - name too short",
			setupWorkflow:  &models.Workflow{Name: "Original Name"},
			requestBody:    web.UpdateWorkflowRequest{Name: stringPtr("Hi")},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty update request",
			setupWorkflow:  &models.Workflow{Name: "Original Name"},
			requestBody:    web.UpdateWorkflowRequest{},
			expectedStatus: http.StatusOK,
			validateResult: func(t *testing.T, body []byte) {
				t.Helper()

				var workflow models.Workflow

				err := json.Unmarshal(body, &workflow)
				require.NoError(t, err)
				assert.Equal(t, "Original Name", workflow.Name) // unchanged
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, workflowService := setupTestApp(t)

			workflowID := "non-existent-id"

			if tt.setupWorkflow != nil {
				created, err := workflowService.Create(t.Context(), tt.setupWorkflow)
				require.NoError(t, err)

				workflowID = created.ID
			}

			resp := doRequest(t, app, http.MethodPatch, "/workflows/"+workflowID, tt.requestBody)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.validateResult != nil && tt.expectedStatus == http.StatusOK {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				tt.validateResult(t, body)
			}
		})
	}
}

func TestAPIHandlers_UpdateWorkflow_Archived(t *testing.T) {
	t.Parallel()

	app, workflowService := setupTestApp(t)

	created, err := workflowService.Create(t.Context(), &models.Workflow{
		Name:   "Retired pipeline",
		Status: models.WorkflowStatusArchived,
	})
	require.NoError(t, err)

	// Archived workflows reject edits
	resp := doRequest(t, app, http.MethodPatch, "/workflows/"+created.ID, web.UpdateWorkflowRequest{
		Name: stringPtr("Still retired"),
	})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Restoring the status to draft is the one allowed transition
	resp = doRequest(t, app, http.MethodPatch, "/workflows/"+created.ID, web.UpdateWorkflowRequest{
		Status: stringPtr("draft"),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var workflow models.Workflow

	decodeJSON(t, resp, &workflow)
	assert.Equal(t, models.WorkflowStatusDraft, workflow.Status)
}

func TestAPIHandlers_DeleteWorkflow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		setupWorkflow  *models.Workflow
		expectedStatus int
	}{
		{
			name:           "successful deletion",
			setupWorkflow:  &models.Workflow{Name: "Publish pipeline"},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "workflow not found",
			setupWorkflow:  nil,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, workflowService := setupTestApp(t)

			workflowID := "non-existent-id"

			if tt.setupWorkflow != nil {
				created, err := workflowService.Create(t.Context(), tt.setupWorkflow)
				require.NoError(t, err)

				workflowID = created.ID
			}

			resp := doRequest(t, app, http.MethodDelete, "/workflows/"+workflowID, nil)

			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusNoContent {
				// Verify workflow was actually deleted
				_, err := workflowService.FetchByID(t.Context(), workflowID)
				assert.Error(t, err)
			}
		})
	}
}

func TestAPIHandlers_GetWorkflows(t *testing.T) {
	t.Parallel()

	app, workflowService := setupTestApp(t)

	fixtures := []*models.Workflow{
		{Name: "Publish notifier", Status: models.WorkflowStatusActive, Tags: []string{"content"}},
		{Name: "Comment digest", Status: models.WorkflowStatusActive, Tags: []string{"email"}},
		{Name: "Backup sweeper", Status: models.WorkflowStatusDraft, Tags: []string{"maintenance"}},
	}

	for _, fixture := range fixtures {
		_, err := workflowService.Create(t.Context(), fixture)
		require.NoError(t, err)
	}

	type listResponse struct {
		Workflows   []models.Workflow `json:"workflows"`
		TotalCount  int64             `json:"total_count"`
		HasNextPage bool              `json:"has_next_page"`
	}

	t.Run("all workflows", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/workflows", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var response listResponse

		decodeJSON(t, resp, &response)
		assert.Len(t, response.Workflows, 3)
		assert.Equal(t, int64(3), response.TotalCount)
		assert.False(t, response.HasNextPage)
	})

	t.Run("filter by status", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/workflows?status=active", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var response listResponse

		decodeJSON(t, resp, &response)
		assert.Len(t, response.Workflows, 2)

		for _, workflow := range response.Workflows {
			assert.Equal(t, models.WorkflowStatusActive, workflow.Status)
		}
	})

	t.Run("filter by tag", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/workflows?tag=email", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var response listResponse

		decodeJSON(t, resp, &response)
		require.Len(t, response.Workflows, 1)
		assert.Equal(t, "Comment digest", response.Workflows[0].Name)
	})

	t.Run("text search", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/workflows?q=digest", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var response listResponse

		decodeJSON(t, resp, &response)
		require.Len(t, response.Workflows, 1)
		assert.Equal(t, "Comment digest", response.Workflows[0].Name)
	})

	t.Run("pagination", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/workflows?limit=2&sort_by=name&sort_order=asc", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var response listResponse

		decodeJSON(t, resp, &response)
		assert.Len(t, response.Workflows, 2)
		assert.Equal(t, int64(3), response.TotalCount)
		assert.True(t, response.HasNextPage)
		assert.Equal(t, "Backup sweeper", response.Workflows[0].Name)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/workflows?status=published", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid limit", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/workflows?limit=lots", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid sort field", func(t *testing.T) {
		resp := doRequest(t, app, http.MethodGet, "/workflows?sort_by=popularity", nil)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAPIHandlers_DuplicateWorkflow(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	workflowID, triggerID, _ := buildGraphFixture(t, app)

	resp := doRequest(t, app, http.MethodPost, "/workflows/"+workflowID+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var duplicate models.Workflow

	decodeJSON(t, resp, &duplicate)
	assert.NotEqual(t, workflowID, duplicate.ID)
	assert.Equal(t, "Publish pipeline (Copy)", duplicate.Name)
	assert.Equal(t, models.WorkflowStatusDraft, duplicate.Status)
	require.Len(t, duplicate.Nodes, 2)
	require.Len(t, duplicate.Connections, 1)

	// Node ids are remapped, so the copy never references the original
	for _, node := range duplicate.Nodes {
		assert.NotEqual(t, triggerID, node.ID)
	}
}

func TestAPIHandlers_DuplicateWorkflow_NotFound(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp := doRequest(t, app, http.MethodPost, "/workflows/missing/duplicate", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	t.Parallel()

	app, _ := setupTestApp(t)

	resp := doRequest(t, app, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status   string            `json:"status"`
		Message  string            `json:"message"`
		Checkers map[string]string `json:"checkers"`
	}

	decodeJSON(t, resp, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Contains(t, health.Checkers, "registry")
	assert.Contains(t, health.Checkers, "repository")
}

func stringPtr(s string) *string {
	return &s
}
