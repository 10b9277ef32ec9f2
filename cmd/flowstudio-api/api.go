// Package main provides the FlowStudio API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/rustpress-net/flowstudio/pkg/eventbus"
	"github.com/rustpress-net/flowstudio/pkg/persistence"
	"github.com/rustpress-net/flowstudio/pkg/registry"
	"github.com/rustpress-net/flowstudio/pkg/runner"
	"github.com/rustpress-net/flowstudio/pkg/services"
	"github.com/rustpress-net/flowstudio/pkg/validation"
	"github.com/rustpress-net/flowstudio/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		eventBus:    eventBus,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	workflowService := services.NewWorkflow(a.persistence)
	graphService := services.NewGraph(a.persistence, a.registry)
	templateService := services.NewTemplate(a.persistence)
	workflowValidator := validation.NewValidator(a.registry, a.logger)

	runnerOpts := []runner.Option{}
	if a.tracer != nil {
		runnerOpts = append(runnerOpts, runner.WithTracer(a.tracer))
	}

	executionRunner := runner.NewRunner(a.persistence, workflowValidator, a.eventBus, a.logger, runnerOpts...)

	handlers := web.NewAPIHandlers(
		workflowService,
		graphService,
		templateService,
		executionRunner,
		workflowValidator,
		a.validate,
		a.registry,
		a.eventBus,
		a.logger,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("FlowStudio API")
	})

	web.RegisterRoutes(app, handlers)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
