// Package runner coordinates simulated workflow executions: it validates
// the graph, creates the execution record, plans per-node logs and drives
// the record to a terminal status through an asynchronous completion task.
// Actual node side effects stay with external executors, the runner only
// models status transitions and timing.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/rustpress-net/flowstudio/pkg/eventbus"
	"github.com/rustpress-net/flowstudio/pkg/events"
	"github.com/rustpress-net/flowstudio/pkg/models"
	"github.com/rustpress-net/flowstudio/pkg/otelhelper"
	"github.com/rustpress-net/flowstudio/pkg/persistence"
	"github.com/rustpress-net/flowstudio/pkg/validation"
)

// DefaultCompletionDelay is the simulated run time of a workflow.
const DefaultCompletionDelay = 2 * time.Second

// historyLimit bounds the per-workflow execution list kept for display.
const historyLimit = 50

var (
	// ErrWorkflowInvalid is returned when validation blocks a run.
	ErrWorkflowInvalid = errors.New("workflow failed validation")

	// ErrExecutionNotFound is returned when no execution exists under the id.
	ErrExecutionNotFound = errors.New("execution not found")
)

// InvalidWorkflowError carries the validation messages that blocked a run.
type InvalidWorkflowError struct {
	WorkflowID string
	Messages   []string
}

func (e *InvalidWorkflowError) Error() string {
	return fmt.Sprintf("workflow %s failed validation: %s", e.WorkflowID, strings.Join(e.Messages, "; "))
}

func (e *InvalidWorkflowError) Is(target error) bool {
	return target == ErrWorkflowInvalid
}

// Option configures a Runner.
type Option func(*Runner)

// WithCompletionDelay overrides the simulated run time.
func WithCompletionDelay(delay time.Duration) Option {
	return func(r *Runner) {
		r.completionDelay = delay
	}
}

// WithTracer attaches a tracer so every run produces a span.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runner) {
		r.tracer = tracer
	}
}

// run pairs a live execution record with its cancellation token and span.
type run struct {
	record   *models.WorkflowExecution
	workflow *models.Workflow
	cancel   context.CancelFunc
	span     trace.Span
}

// Runner orchestrates workflow executions. Execution records are process
// local: the per-workflow history is bounded and never persisted.
type Runner struct {
	persistence persistence.Persistence
	validator   *validation.Validator
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
	tracer      trace.Tracer

	completionDelay time.Duration

	mu      sync.Mutex
	runs    map[string]*run
	history map[string][]*models.WorkflowExecution
	current string
}

// NewRunner creates an execution coordinator.
func NewRunner(
	persistence persistence.Persistence,
	validator *validation.Validator,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
	opts ...Option,
) *Runner {
	r := &Runner{
		persistence:     persistence,
		validator:       validator,
		publisher:       publisher,
		logger:          logger.With("module", "runner"),
		tracer:          noop.NewTracerProvider().Tracer("runner"),
		completionDelay: DefaultCompletionDelay,
		runs:            make(map[string]*run),
		history:         make(map[string][]*models.WorkflowExecution),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Execute starts a run of the workflow. The returned record is already
// running; completion, failure or cancellation happens asynchronously.
func (r *Runner) Execute(ctx context.Context, workflowID string, triggerData map[string]any) (*models.WorkflowExecution, error) {
	workflow, err := r.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow: %w", err)
	}

	if workflow == nil {
		return nil, persistence.ErrWorkflowNotFound
	}

	result := r.validator.ValidateWorkflow(workflow)
	if !result.Valid {
		return nil, &InvalidWorkflowError{WorkflowID: workflowID, Messages: result.Errors}
	}

	// The run works on a snapshot so later edits never affect it.
	snapshot := workflow.Clone()
	trigger := snapshot.TriggerNodes()[0]

	record := &models.WorkflowExecution{
		ID:              uuid.New().String(),
		WorkflowID:      workflowID,
		WorkflowVersion: snapshot.Version,
		Status:          models.ExecutionStatusPending,
		TriggeredBy:     trigger.Type,
		TriggerData:     triggerData,
		StartedAt:       time.Now().UTC(),
		NodeLogs:        planNodeLogs(snapshot, triggerData),
	}

	spanCtx, span := otelhelper.StartSpan(ctx, r.tracer, "workflow.execute",
		attribute.String(otelhelper.WorkflowIDKey, workflowID),
		attribute.String(otelhelper.WorkflowNameKey, snapshot.Name),
		attribute.String(otelhelper.ExecutionIDKey, record.ID),
	)

	// The completion task outlives the request, only its token cancels it.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(spanCtx))

	active := &run{
		record:   record,
		workflow: snapshot,
		cancel:   cancel,
		span:     span,
	}

	record.Status = models.ExecutionStatusRunning

	r.mu.Lock()
	r.runs[record.ID] = active
	r.remember(workflowID, record)
	r.current = record.ID
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "Started workflow execution",
		"workflow_id", workflowID,
		"execution_id", record.ID,
		"nodes_planned", len(record.NodeLogs))

	r.publish(ctx, workflowID, events.ExecutionStarted{
		BaseEvent:     events.NewBaseEvent(events.ExecutionStartedEvent, workflowID),
		ExecutionID:   record.ID,
		WorkflowName:  snapshot.Name,
		TriggerNodeID: trigger.ID,
		Variables:     variablesMap(snapshot),
	})

	started := record.Clone()

	go r.finish(runCtx, active)

	return started, nil
}

// Stop cancels a live execution through its token. Terminal executions are
// left unchanged, so stopping twice is harmless.
func (r *Runner) Stop(ctx context.Context, executionID string) (*models.WorkflowExecution, error) {
	r.mu.Lock()

	active, ok := r.runs[executionID]
	if !ok {
		r.mu.Unlock()

		return nil, ErrExecutionNotFound
	}

	record := active.record
	if record.Status.IsTerminal() {
		snapshot := record.Clone()
		r.mu.Unlock()

		return snapshot, nil
	}

	active.cancel()

	now := time.Now().UTC()
	record.Status = models.ExecutionStatusCancelled
	record.CompletedAt = &now
	skipUnfinishedLogs(record)

	snapshot := record.Clone()
	r.mu.Unlock()

	r.logger.InfoContext(ctx, "Cancelled workflow execution",
		"workflow_id", record.WorkflowID,
		"execution_id", executionID)

	r.conclude(ctx, active)

	return snapshot, nil
}

// Get returns a snapshot of the execution record.
func (r *Runner) Get(executionID string) (*models.WorkflowExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	active, ok := r.runs[executionID]
	if !ok {
		return nil, ErrExecutionNotFound
	}

	return active.record.Clone(), nil
}

// History returns the workflow's executions, most recent first.
func (r *Runner) History(workflowID string) []*models.WorkflowExecution {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.history[workflowID]
	snapshots := make([]*models.WorkflowExecution, len(records))

	for i, record := range records {
		snapshots[i] = record.Clone()
	}

	return snapshots
}

// Current returns the most recently started execution, or nil when none
// has run yet.
func (r *Runner) Current() *models.WorkflowExecution {
	r.mu.Lock()
	defer r.mu.Unlock()

	active, ok := r.runs[r.current]
	if !ok {
		return nil
	}

	return active.record.Clone()
}

// remember prepends the record to the workflow's history, trimming evicted
// records out of the run index. Callers hold the lock.
func (r *Runner) remember(workflowID string, record *models.WorkflowExecution) {
	records := append([]*models.WorkflowExecution{record}, r.history[workflowID]...)

	if len(records) > historyLimit {
		for _, evicted := range records[historyLimit:] {
			delete(r.runs, evicted.ID)
		}

		records = records[:historyLimit]
	}

	r.history[workflowID] = records
}

func (r *Runner) publish(ctx context.Context, workflowID string, event eventbus.Event) {
	if r.publisher == nil {
		return
	}

	if err := r.publisher.Publish(ctx, workflowID, event); err != nil {
		r.logger.ErrorContext(ctx, "Failed to publish execution event",
			"workflow_id", workflowID,
			"event_type", event.GetType(),
			"error", err)
	}
}

func variablesMap(workflow *models.Workflow) map[string]any {
	vars := make(map[string]any, len(workflow.Variables))

	for _, variable := range workflow.Variables {
		vars[variable.Name] = variable.Value
	}

	return vars
}
