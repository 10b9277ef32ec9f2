// Package web provides HTTP handlers and REST API endpoints for workflow management.
package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/rustpress-net/flowstudio/pkg/eventbus"
	"github.com/rustpress-net/flowstudio/pkg/events"
	"github.com/rustpress-net/flowstudio/pkg/models"
	"github.com/rustpress-net/flowstudio/pkg/persistence"
	"github.com/rustpress-net/flowstudio/pkg/registry"
	"github.com/rustpress-net/flowstudio/pkg/runner"
	"github.com/rustpress-net/flowstudio/pkg/services"
	"github.com/rustpress-net/flowstudio/pkg/validation"
)

type APIHandlers struct {
	workflowService   *services.Workflow
	graphService      *services.Graph
	templateService   *services.Template
	runner            *runner.Runner
	workflowValidator *validation.Validator
	validator         *validator.Validate
	registry          *registry.Registry
	eventBus          eventbus.EventPublisher
	logger            *slog.Logger
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	graphService *services.Graph,
	templateService *services.Template,
	executionRunner *runner.Runner,
	workflowValidator *validation.Validator,
	validator *validator.Validate,
	registry *registry.Registry,
	eventBus eventbus.EventPublisher,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		workflowService:   workflowService,
		graphService:      graphService,
		templateService:   templateService,
		runner:            executionRunner,
		workflowValidator: workflowValidator,
		validator:         validator,
		registry:          registry,
		eventBus:          eventBus,
		logger:            logger.With("module", "web"),
	}
}

// publish emits a catalog event. Failures are logged and never affect the
// HTTP response.
func (h *APIHandlers) publish(c fiber.Ctx, workflowID string, event eventbus.Event) {
	if h.eventBus == nil {
		return
	}

	err := h.eventBus.Publish(c.Context(), workflowID, event)
	if err != nil {
		h.logger.ErrorContext(c.Context(), "Failed to publish event",
			"event_type", event.GetType(),
			"workflow_id", workflowID,
			"error", err)
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	req, err := h.parseListWorkflowsRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.workflowService.ListWorkflows(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":     result.Workflows,
		"total_count":   result.TotalCount,
		"has_next_page": result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
		"sorting": fiber.Map{
			"sort_by":    req.SortBy,
			"sort_order": req.SortOrder,
		},
	})
}

// parseListWorkflowsRequest parses and validates query parameters for listing workflows.
func (h *APIHandlers) parseListWorkflowsRequest(c fiber.Ctx) (*services.ListWorkflowsRequest, error) {
	req := &services.ListWorkflowsRequest{}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		req.Offset = offset
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.WorkflowStatus(statusStr)
		req.Status = &status
	}

	req.Tag = c.Query("tag")
	req.Query = c.Query("q")
	req.SortBy = c.Query("sort_by")
	req.SortOrder = c.Query("sort_order")

	return req, nil
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")

	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow := &models.Workflow{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		Tags:        req.Tags,
		Status:      models.WorkflowStatus(req.Status),
	}

	created, err := h.workflowService.Create(c.Context(), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publish(c, created.ID, events.WorkflowCreated{
		BaseEvent:    events.NewBaseEvent(events.WorkflowCreatedEvent, created.ID),
		WorkflowName: created.Name,
	})

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	// Get existing workflow and merge changes
	existing, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	// Apply partial updates (nodes, connections and variables are managed
	// through their own subroutes)
	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Description != nil {
		existing.Description = *req.Description
	}

	if req.Icon != nil {
		existing.Icon = *req.Icon
	}

	if req.Color != nil {
		existing.Color = *req.Color
	}

	if req.Status != nil {
		existing.Status = models.WorkflowStatus(*req.Status)
	}

	if req.Tags != nil {
		existing.Tags = req.Tags
	}

	if req.Settings != nil {
		existing.Settings = *req.Settings
	}

	updated, err := h.workflowService.Update(c.Context(), id, existing)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publish(c, updated.ID, events.WorkflowUpdated{
		BaseEvent:    events.NewBaseEvent(events.WorkflowUpdatedEvent, updated.ID),
		WorkflowName: updated.Name,
		Version:      updated.Version,
	})

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	err := h.workflowService.Delete(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	h.publish(c, id, events.WorkflowDeleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, id),
	})

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) DuplicateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	duplicate, err := h.workflowService.Duplicate(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publish(c, duplicate.ID, events.WorkflowCreated{
		BaseEvent:    events.NewBaseEvent(events.WorkflowCreatedEvent, duplicate.ID),
		WorkflowName: duplicate.Name,
	})

	return c.Status(fiber.StatusCreated).JSON(duplicate)
}

func (h *APIHandlers) ValidateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	result := h.workflowValidator.ValidateWorkflow(workflow)

	return c.JSON(result)
}

func (h *APIHandlers) CreateWorkflowNode(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req CreateNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	node, err := h.graphService.CreateNode(c.Context(), id, &services.CreateNodeRequest{
		Type:     req.Type,
		Name:     req.Name,
		Position: req.Position,
		Config:   req.Config,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(node)
}

func (h *APIHandlers) GetWorkflowNode(c fiber.Ctx) error {
	id := c.Params("id")
	nodeID := c.Params("nodeId")

	if id == "" || nodeID == "" {
		return badRequest(c, "Workflow ID and node ID are required")
	}

	node, err := h.graphService.GetNode(c.Context(), id, nodeID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(node)
}

func (h *APIHandlers) UpdateWorkflowNode(c fiber.Ctx) error {
	id := c.Params("id")
	nodeID := c.Params("nodeId")

	if id == "" || nodeID == "" {
		return badRequest(c, "Workflow ID and node ID are required")
	}

	var req UpdateNodeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	var (
		node *models.WorkflowNode
		err  error
	)

	if req.Name != nil || req.Config != nil || req.Size != nil {
		node, err = h.graphService.UpdateNode(c.Context(), id, nodeID, &services.UpdateNodeRequest{
			Name:   req.Name,
			Config: req.Config,
			Size:   req.Size,
		})
		if err != nil {
			return handleServiceError(c, err)
		}
	}

	if req.Position != nil {
		node, err = h.graphService.MoveNode(c.Context(), id, nodeID, *req.Position)
		if err != nil {
			return handleServiceError(c, err)
		}
	}

	// Empty patch: respond with the current node state
	if node == nil {
		node, err = h.graphService.GetNode(c.Context(), id, nodeID)
		if err != nil {
			return handleServiceError(c, err)
		}
	}

	return c.JSON(node)
}

func (h *APIHandlers) DeleteWorkflowNode(c fiber.Ctx) error {
	id := c.Params("id")
	nodeID := c.Params("nodeId")

	if id == "" || nodeID == "" {
		return badRequest(c, "Workflow ID and node ID are required")
	}

	err := h.graphService.DeleteNode(c.Context(), id, nodeID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) CreateWorkflowConnection(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req CreateConnectionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	connection, err := h.graphService.CreateConnection(c.Context(), id, &services.CreateConnectionRequest{
		SourceNodeID: req.SourceNodeID,
		SourcePortID: req.SourcePortID,
		TargetNodeID: req.TargetNodeID,
		TargetPortID: req.TargetPortID,
		Label:        req.Label,
		Condition:    req.Condition,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(connection)
}

func (h *APIHandlers) DeleteWorkflowConnection(c fiber.Ctx) error {
	id := c.Params("id")
	connectionID := c.Params("connectionId")

	if id == "" || connectionID == "" {
		return badRequest(c, "Workflow ID and connection ID are required")
	}

	err := h.graphService.DeleteConnection(c.Context(), id, connectionID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) CreateWorkflowVariable(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req VariableRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	variable, err := h.graphService.CreateVariable(c.Context(), id, &services.VariableRequest{
		Name:        req.Name,
		Type:        models.VariableType(req.Type),
		Value:       req.Value,
		Description: req.Description,
		Secret:      req.Secret,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(variable)
}

func (h *APIHandlers) UpdateWorkflowVariable(c fiber.Ctx) error {
	id := c.Params("id")
	variableID := c.Params("variableId")

	if id == "" || variableID == "" {
		return badRequest(c, "Workflow ID and variable ID are required")
	}

	var req VariableRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	variable, err := h.graphService.UpdateVariable(c.Context(), id, variableID, &services.VariableRequest{
		Name:        req.Name,
		Type:        models.VariableType(req.Type),
		Value:       req.Value,
		Description: req.Description,
		Secret:      req.Secret,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(variable)
}

func (h *APIHandlers) DeleteWorkflowVariable(c fiber.Ctx) error {
	id := c.Params("id")
	variableID := c.Params("variableId")

	if id == "" || variableID == "" {
		return badRequest(c, "Workflow ID and variable ID are required")
	}

	err := h.graphService.DeleteVariable(c.Context(), id, variableID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req ExecuteWorkflowRequest

	// The trigger data body is optional
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	execution, err := h.runner.Execute(c.Context(), id, req.TriggerData)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(execution)
}

func (h *APIHandlers) GetWorkflowExecutions(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	_, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	executions := h.runner.History(id)

	return c.JSON(fiber.Map{
		"executions":  executions,
		"total_count": len(executions),
	})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.runner.Get(id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) CancelExecution(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Execution ID is required")
	}

	execution, err := h.runner.Stop(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetNodeTypes(c fiber.Ctx) error {
	var definitions []registry.NodeTypeDefinition

	if category := c.Query("category"); category != "" {
		nodeCategory := models.NodeCategory(category)
		if !nodeCategory.Valid() {
			return badRequest(c, "Unknown node category: "+category)
		}

		definitions = h.registry.ByCategory(nodeCategory)
	} else {
		definitions = h.registry.Definitions()
	}

	return c.JSON(fiber.Map{
		"node_types":  definitions,
		"total_count": len(definitions),
	})
}

func (h *APIHandlers) GetTemplates(c fiber.Ctx) error {
	templates, err := h.templateService.List(c.Context(), c.Query("category"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"templates":   templates,
		"total_count": len(templates),
	})
}

func (h *APIHandlers) CreateTemplate(c fiber.Ctx) error {
	var req CreateTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	template, err := h.templateService.CreateFromWorkflow(c.Context(), req.WorkflowID, &services.CreateTemplateRequest{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Icon:        req.Icon,
		Color:       req.Color,
		Tags:        req.Tags,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(template)
}

func (h *APIHandlers) GetTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	template, err := h.templateService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(template)
}

func (h *APIHandlers) DeleteTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	err := h.templateService.Delete(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) InstantiateTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Template ID is required")
	}

	var req InstantiateTemplateRequest

	// The name body is optional, the template name is the fallback
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	workflow, err := h.templateService.Instantiate(c.Context(), id, req.Name)
	if err != nil {
		return handleServiceError(c, err)
	}

	h.publish(c, workflow.ID, events.WorkflowCreated{
		BaseEvent:    events.NewBaseEvent(events.WorkflowCreatedEvent, workflow.ID),
		WorkflowName: workflow.Name,
	})

	return c.Status(fiber.StatusCreated).JSON(workflow)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck := "Node type catalog is healthy"
	regOk := true

	if err := h.registry.HealthCheck(); err != nil {
		registryCheck = "Node type catalog is unhealthy: " + err.Error()
		regOk = false
	}

	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "FlowStudio API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "FlowStudio API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
