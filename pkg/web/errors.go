package web

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/rustpress-net/flowstudio/pkg/models"
	"github.com/rustpress-net/flowstudio/pkg/persistence"
	"github.com/rustpress-net/flowstudio/pkg/registry"
	"github.com/rustpress-net/flowstudio/pkg/runner"
	"github.com/rustpress-net/flowstudio/pkg/services"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

func notFoundProblem(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

// handleServiceError maps the service, graph and runner error taxonomy onto
// RFC 7807 problem responses.
func handleServiceError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, runner.ErrWorkflowInvalid):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("workflow_invalid").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case errors.Is(err, registry.ErrInvalidConfig):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("invalid_node_config").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case errors.Is(err, models.ErrSelfConnection),
		errors.Is(err, models.ErrPortNotFound):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("invalid_connection").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case services.IsValidationError(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case services.IsConflictError(err),
		errors.Is(err, models.ErrDuplicateConnection),
		errors.Is(err, models.ErrDuplicateNode):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case persistence.IsWorkflowNotFound(err):
		return notFoundProblem(c, "workflow_not_found", "workflow not found")

	case persistence.IsTemplateNotFound(err):
		return notFoundProblem(c, "template_not_found", "template not found")

	case errors.Is(err, models.ErrNodeNotFound):
		return notFoundProblem(c, "node_not_found", "node not found")

	case errors.Is(err, models.ErrConnectionNotFound):
		return notFoundProblem(c, "connection_not_found", "connection not found")

	case errors.Is(err, models.ErrVariableNotFound):
		return notFoundProblem(c, "variable_not_found", "variable not found")

	case errors.Is(err, runner.ErrExecutionNotFound):
		return notFoundProblem(c, "execution_not_found", "execution not found")

	default:
		// Log unexpected errors but don't expose details
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithError(err)

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
