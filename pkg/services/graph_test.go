package services

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustpress-net/flowstudio/pkg/models"
	"github.com/rustpress-net/flowstudio/pkg/persistence/file"
	"github.com/rustpress-net/flowstudio/pkg/registry"
)

// newGraphFixture saves an empty draft workflow and returns the graph
// service plus the workflow id to mutate.
func newGraphFixture(t *testing.T) (*Graph, *Workflow, string) {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())

	reg := registry.NewRegistry(slog.Default())
	require.NoError(t, reg.RegisterDefaults())

	workflowService := NewWorkflow(persistence)

	created, err := workflowService.Create(t.Context(), &models.Workflow{Name: "Editorial automation"})
	require.NoError(t, err)

	return NewGraph(persistence, reg), workflowService, created.ID
}

func TestGraph_CreateNode(t *testing.T) {
	service, workflows, workflowID := newGraphFixture(t)

	node, err := service.CreateNode(t.Context(), workflowID, &CreateNodeRequest{
		Type:     "log-message",
		Position: models.Position{X: 120, Y: 80},
		Config:   map[string]any{"message": "post published"},
	})
	require.NoError(t, err)
	require.NotNil(t, node)

	assert.NotEmpty(t, node.ID)
	assert.Equal(t, "log-message", node.Type)
	assert.Equal(t, models.NodeCategoryAction, node.Category)
	assert.Equal(t, "Log", node.Name)
	assert.InEpsilon(t, 120.0, node.Position.X, 0.001)
	assert.Equal(t, "post published", node.Config["message"])

	// Defaults from the type definition survive the config merge
	assert.Equal(t, "info", node.Config["level"])

	// The mutation is persisted
	stored, err := workflows.FetchByID(t.Context(), workflowID)
	require.NoError(t, err)
	require.Len(t, stored.Nodes, 1)
	assert.Equal(t, node.ID, stored.Nodes[0].ID)
}

func TestGraph_CreateNode_NameOverride(t *testing.T) {
	service, _, workflowID := newGraphFixture(t)

	node, err := service.CreateNode(t.Context(), workflowID, &CreateNodeRequest{
		Type:   "manual-trigger",
		Name:   "Editor kickoff",
		Config: map[string]any{},
	})
	require.NoError(t, err)
	assert.Equal(t, "Editor kickoff", node.Name)
}

func TestGraph_CreateNode_UnknownType(t *testing.T) {
	service, _, workflowID := newGraphFixture(t)

	node, err := service.CreateNode(t.Context(), workflowID, &CreateNodeRequest{Type: "teleport"})
	require.Error(t, err)
	assert.Nil(t, node)
	assert.ErrorIs(t, err, ErrUnknownNodeType)
	assert.True(t, IsValidationError(err))
}

func TestGraph_CreateNode_InvalidConfig(t *testing.T) {
	service, workflows, workflowID := newGraphFixture(t)

	// http-request requires a url
	node, err := service.CreateNode(t.Context(), workflowID, &CreateNodeRequest{
		Type:   "http-request",
		Config: map[string]any{"method": "POST"},
	})
	require.Error(t, err)
	assert.Nil(t, node)
	assert.ErrorIs(t, err, registry.ErrInvalidConfig)

	// Nothing was attached
	stored, err := workflows.FetchByID(t.Context(), workflowID)
	require.NoError(t, err)
	assert.Empty(t, stored.Nodes)
}

func TestGraph_CreateNode_WorkflowNotFound(t *testing.T) {
	service, _, _ := newGraphFixture(t)

	node, err := service.CreateNode(t.Context(), "non-existent", &CreateNodeRequest{Type: "log-message"})
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
	assert.Nil(t, node)
}

func TestGraph_GetNode(t *testing.T) {
	service, _, workflowID := newGraphFixture(t)

	created, err := service.CreateNode(t.Context(), workflowID, &CreateNodeRequest{
		Type:   "log-message",
		Config: map[string]any{"message": "hello"},
	})
	require.NoError(t, err)

	node, err := service.GetNode(t.Context(), workflowID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, node.ID)

	_, err = service.GetNode(t.Context(), workflowID, "missing")
	assert.ErrorIs(t, err, models.ErrNodeNotFound)
}

func TestGraph_UpdateNode(t *testing.T) {
	service, workflows, workflowID := newGraphFixture(t)

	created, err := service.CreateNode(t.Context(), workflowID, &CreateNodeRequest{
		Type:   "log-message",
		Config: map[string]any{"message": "before"},
	})
	require.NoError(t, err)

	name := "Audit log"

	updated, err := service.UpdateNode(t.Context(), workflowID, created.ID, &UpdateNodeRequest{
		Name:   &name,
		Config: map[string]any{"message": "after", "level": "warn"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Audit log", updated.Name)
	assert.Equal(t, "after", updated.Config["message"])
	assert.Equal(t, "warn", updated.Config["level"])

	stored, err := workflows.FetchByID(t.Context(), workflowID)
	require.NoError(t, err)
	assert.Equal(t, "Audit log", stored.Nodes[0].Name)
}

func TestGraph_UpdateNode_InvalidConfigRejected(t *testing.T) {
	service, _, workflowID := newGraphFixture(t)

	created, err := service.CreateNode(t.Context(), workflowID, &CreateNodeRequest{
		Type:   "log-message",
		Config: map[string]any{"message": "keep me"},
	})
	require.NoError(t, err)

	// Required field removed, the old config must survive
	_, err = service.UpdateNode(t.Context(), workflowID, created.ID, &UpdateNodeRequest{
		Config: map[string]any{"level": "debug"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrInvalidConfig)

	node, err := service.GetNode(t.Context(), workflowID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep me", node.Config["message"])
}

func TestGraph_MoveNode(t *testing.T) {
	service, workflows, workflowID := newGraphFixture(t)

	created, err := service.CreateNode(t.Context(), workflowID, &CreateNodeRequest{
		Type:   "manual-trigger",
		Config: map[string]any{},
	})
	require.NoError(t, err)

	moved, err := service.MoveNode(t.Context(), workflowID, created.ID, models.Position{X: 300, Y: 450})
	require.NoError(t, err)
	assert.InEpsilon(t, 300.0, moved.Position.X, 0.001)
	assert.InEpsilon(t, 450.0, moved.Position.Y, 0.001)

	stored, err := workflows.FetchByID(t.Context(), workflowID)
	require.NoError(t, err)
	assert.InEpsilon(t, 300.0, stored.Nodes[0].Position.X, 0.001)
}

func TestGraph_Connections(t *testing.T) {
	service, workflows, workflowID := newGraphFixture(t)

	trigger, err := service.CreateNode(t.Context(), workflowID, &CreateNodeRequest{
		Type:   "manual-trigger",
		Config: map[string]any{},
	})
	require.NoError(t, err)

	action, err := service.CreateNode(t.Context(), workflowID, &CreateNodeRequest{
		Type:   "log-message",
		Config: map[string]any{"message": "fired"},
	})
	require.NoError(t, err)

	connection, err := service.CreateConnection(t.Context(), workflowID, &CreateConnectionRequest{
		SourceNodeID: trigger.ID,
		SourcePortID: trigger.Outputs[0].ID,
		TargetNodeID: action.ID,
		TargetPortID: action.Inputs[0].ID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, connection.ID)

	// A second identical connection violates the uniqueness rule
	_, err = service.CreateConnection(t.Context(), workflowID, &CreateConnectionRequest{
		SourceNodeID: trigger.ID,
		SourcePortID: trigger.Outputs[0].ID,
		TargetNodeID: action.ID,
		TargetPortID: action.Inputs[0].ID,
	})
	assert.ErrorIs(t, err, models.ErrDuplicateConnection)

	err = service.DeleteConnection(t.Context(), workflowID, connection.ID)
	require.NoError(t, err)

	stored, err := workflows.FetchByID(t.Context(), workflowID)
	require.NoError(t, err)
	assert.Empty(t, stored.Connections)

	err = service.DeleteConnection(t.Context(), workflowID, connection.ID)
	assert.ErrorIs(t, err, models.ErrConnectionNotFound)
}

func TestGraph_DeleteNode_CascadesConnections(t *testing.T) {
	service, workflows, workflowID := newGraphFixture(t)

	trigger, err := service.CreateNode(t.Context(), workflowID, &CreateNodeRequest{
		Type:   "manual-trigger",
		Config: map[string]any{},
	})
	require.NoError(t, err)

	action, err := service.CreateNode(t.Context(), workflowID, &CreateNodeRequest{
		Type:   "log-message",
		Config: map[string]any{"message": "fired"},
	})
	require.NoError(t, err)

	_, err = service.CreateConnection(t.Context(), workflowID, &CreateConnectionRequest{
		SourceNodeID: trigger.ID,
		SourcePortID: trigger.Outputs[0].ID,
		TargetNodeID: action.ID,
		TargetPortID: action.Inputs[0].ID,
	})
	require.NoError(t, err)

	err = service.DeleteNode(t.Context(), workflowID, trigger.ID)
	require.NoError(t, err)

	stored, err := workflows.FetchByID(t.Context(), workflowID)
	require.NoError(t, err)
	assert.Len(t, stored.Nodes, 1)
	assert.Empty(t, stored.Connections)
}

func TestGraph_Variables(t *testing.T) {
	service, workflows, workflowID := newGraphFixture(t)

	variable, err := service.CreateVariable(t.Context(), workflowID, &VariableRequest{
		Name:  "site_url",
		Type:  models.VariableTypeString,
		Value: "https://blog.example.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, variable.ID)

	updated, err := service.UpdateVariable(t.Context(), workflowID, variable.ID, &VariableRequest{
		Name:   "site_url",
		Type:   models.VariableTypeString,
		Value:  "https://news.example.com",
		Secret: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://news.example.com", updated.Value)
	assert.True(t, updated.Secret)

	err = service.DeleteVariable(t.Context(), workflowID, variable.ID)
	require.NoError(t, err)

	stored, err := workflows.FetchByID(t.Context(), workflowID)
	require.NoError(t, err)
	assert.Empty(t, stored.Variables)

	err = service.DeleteVariable(t.Context(), workflowID, variable.ID)
	assert.ErrorIs(t, err, models.ErrVariableNotFound)
}

func TestGraph_CreateVariable_Invalid(t *testing.T) {
	service, _, workflowID := newGraphFixture(t)

	_, err := service.CreateVariable(t.Context(), workflowID, &VariableRequest{
		Type: models.VariableTypeString,
	})
	assert.ErrorIs(t, err, ErrInvalidVariable)

	_, err = service.CreateVariable(t.Context(), workflowID, &VariableRequest{
		Name: "broken",
		Type: models.VariableType("uuid"),
	})
	assert.ErrorIs(t, err, ErrInvalidVariable)
	assert.True(t, IsValidationError(err))
}
