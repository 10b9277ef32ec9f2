package web

import (
	"github.com/gofiber/fiber/v3"
)

// RegisterRoutes mounts every API route on the app.
func RegisterRoutes(app *fiber.App, handlers *APIHandlers) {
	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/duplicate", handlers.DuplicateWorkflow)
	w.Post("/:id/validate", handlers.ValidateWorkflow)

	// Node endpoints:
	w.Post("/:id/nodes", handlers.CreateWorkflowNode)
	w.Get("/:id/nodes/:nodeId", handlers.GetWorkflowNode)
	w.Patch("/:id/nodes/:nodeId", handlers.UpdateWorkflowNode)
	w.Delete("/:id/nodes/:nodeId", handlers.DeleteWorkflowNode)

	// Connection endpoints:
	w.Post("/:id/connections", handlers.CreateWorkflowConnection)
	w.Delete("/:id/connections/:connectionId", handlers.DeleteWorkflowConnection)

	// Variable endpoints:
	w.Post("/:id/variables", handlers.CreateWorkflowVariable)
	w.Patch("/:id/variables/:variableId", handlers.UpdateWorkflowVariable)
	w.Delete("/:id/variables/:variableId", handlers.DeleteWorkflowVariable)

	// Execution endpoints:
	w.Post("/:id/executions", handlers.ExecuteWorkflow)
	w.Get("/:id/executions", handlers.GetWorkflowExecutions)

	e := app.Group("/executions")
	e.Get("/:id", handlers.GetExecution)
	e.Post("/:id/cancel", handlers.CancelExecution)

	app.Get("/node-types", handlers.GetNodeTypes)

	t := app.Group("/templates")
	t.Get("/", handlers.GetTemplates)
	t.Post("/", handlers.CreateTemplate)
	t.Get("/:id", handlers.GetTemplate)
	t.Delete("/:id", handlers.DeleteTemplate)
	t.Post("/:id/instantiate", handlers.InstantiateTemplate)

	app.Get("/health", handlers.HealthCheck)
}
