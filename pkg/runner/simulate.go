package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rustpress-net/flowstudio/pkg/events"
	"github.com/rustpress-net/flowstudio/pkg/models"
	"github.com/rustpress-net/flowstudio/pkg/otelhelper"
	"github.com/rustpress-net/flowstudio/pkg/template"
)

// planNodeLogs prepares a pending log entry for every node reachable from
// the trigger nodes, breadth-first over the connections. A connection
// condition that cleanly evaluates to false against the trigger data and
// variables prunes that edge.
func planNodeLogs(workflow *models.Workflow, triggerData map[string]any) []*models.NodeExecutionLog {
	if triggerData == nil {
		triggerData = map[string]any{}
	}

	env := map[string]any{
		"trigger": triggerData,
		"vars":    variablesMap(workflow),
	}

	triggers := workflow.TriggerNodes()
	queue := make([]string, 0, len(triggers))
	visited := make(map[string]bool, len(workflow.Nodes))

	for _, trigger := range triggers {
		visited[trigger.ID] = true
		queue = append(queue, trigger.ID)
	}

	logs := make([]*models.NodeExecutionLog, 0, len(workflow.Nodes))

	for len(queue) > 0 {
		nodeID := queue[0]
		queue = queue[1:]

		node := workflow.NodeByID(nodeID)
		if node == nil {
			continue
		}

		logs = append(logs, &models.NodeExecutionLog{
			NodeID:   node.ID,
			NodeName: node.Name,
			Status:   models.NodeLogStatusPending,
		})

		for _, conn := range workflow.OutgoingConnections(nodeID) {
			if visited[conn.TargetNodeID] || !edgeOpen(conn, env) {
				continue
			}

			visited[conn.TargetNodeID] = true
			queue = append(queue, conn.TargetNodeID)
		}
	}

	return logs
}

// edgeOpen evaluates a connection condition. Empty conditions and conditions
// that fail to compile or evaluate keep the edge open, only a clean false
// prunes it.
func edgeOpen(conn *models.Connection, env map[string]any) bool {
	if conn.Condition == "" {
		return true
	}

	program, err := expr.Compile(conn.Condition, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return true
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return true
	}

	open, ok := out.(bool)

	return !ok || open
}

// finish waits out the completion delay and drives the record to a terminal
// status. The cancellation token wins the race: once Stop fires, the record
// is already cancelled and this task just returns.
func (r *Runner) finish(ctx context.Context, active *run) {
	wait := r.completionDelay
	timedOut := false

	if seconds := active.workflow.Settings.TimeoutSeconds; seconds > 0 {
		if timeout := time.Duration(seconds) * time.Second; timeout < wait {
			wait = timeout
			timedOut = true
		}
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	if timedOut {
		r.fail(ctx, active, fmt.Sprintf("execution timed out after %s", wait))

		return
	}

	r.complete(ctx, active)
}

// complete finalizes the node logs and transitions the record to completed,
// or to failed when a node's config fails to render. The status re-check
// under the lock keeps a stale completion from overwriting a cancellation.
func (r *Runner) complete(ctx context.Context, active *run) {
	r.mu.Lock()

	record := active.record
	if record.Status.IsTerminal() {
		r.mu.Unlock()

		return
	}

	failedNode := r.finalizeLogs(active)

	now := time.Now().UTC()
	record.CompletedAt = &now

	if failedNode != "" {
		record.Status = models.ExecutionStatusFailed
	} else {
		record.Status = models.ExecutionStatusCompleted
	}

	r.mu.Unlock()

	r.logger.InfoContext(ctx, "Finished workflow execution",
		"workflow_id", record.WorkflowID,
		"execution_id", record.ID,
		"status", record.Status)

	r.conclude(ctx, active)
}

// fail transitions the record to failed with the given message, skipping
// logs that never got to run.
func (r *Runner) fail(ctx context.Context, active *run, message string) {
	r.mu.Lock()

	record := active.record
	if record.Status.IsTerminal() {
		r.mu.Unlock()

		return
	}

	now := time.Now().UTC()
	record.Status = models.ExecutionStatusFailed
	record.Error = message
	record.CompletedAt = &now
	skipUnfinishedLogs(record)

	r.mu.Unlock()

	r.logger.WarnContext(ctx, "Workflow execution failed",
		"workflow_id", record.WorkflowID,
		"execution_id", record.ID,
		"error", message)

	r.conclude(ctx, active)
}

// finalizeLogs marks the planned logs completed with simulated timings and
// template-rendered input snapshots. The first node whose config fails to
// render is marked failed, the rest skipped, and its id returned. Callers
// hold the lock.
func (r *Runner) finalizeLogs(active *run) string {
	record := active.record
	workflow := active.workflow

	count := len(record.NodeLogs)
	if count == 0 {
		return ""
	}

	rc := &template.RenderContext{
		ExecutionID: record.ID,
		WorkflowID:  record.WorkflowID,
		Variables:   variablesMap(workflow),
		TriggerData: record.TriggerData,
		NodeOutputs: make(map[string]any, count),
	}

	// Simulated timings split the completion window evenly across nodes.
	slot := r.completionDelay / time.Duration(count)
	cursor := record.StartedAt
	failedNode := ""

	for _, log := range record.NodeLogs {
		if failedNode != "" {
			log.Status = models.NodeLogStatusSkipped

			continue
		}

		config := map[string]any{}
		if node := workflow.NodeByID(log.NodeID); node != nil {
			config = node.Config
		}

		startedAt := cursor
		completedAt := cursor.Add(slot)
		cursor = completedAt

		log.StartedAt = &startedAt
		log.CompletedAt = &completedAt
		log.DurationMs = slot.Milliseconds()
		log.Attempts = 1

		input, err := template.RenderConfig(config, rc)
		if err != nil {
			log.Status = models.NodeLogStatusFailed
			log.Error = err.Error()
			record.Error = fmt.Sprintf("node %q failed: %v", log.NodeName, err)
			failedNode = log.NodeID

			continue
		}

		log.Status = models.NodeLogStatusCompleted
		log.Input = input
		log.Output = map[string]any{"status": "ok"}
		rc.NodeOutputs[log.NodeID] = log.Output
	}

	return failedNode
}

// skipUnfinishedLogs marks logs that never reached a terminal state as
// skipped. Callers hold the lock.
func skipUnfinishedLogs(record *models.WorkflowExecution) {
	for _, log := range record.NodeLogs {
		if log.Status == models.NodeLogStatusPending || log.Status == models.NodeLogStatusRunning {
			log.Status = models.NodeLogStatusSkipped
		}
	}
}

// conclude publishes the terminal event, updates the workflow's run stats
// and ends the span. The record is terminal by now, exactly one caller
// reaches this per run.
func (r *Runner) conclude(ctx context.Context, active *run) {
	record := active.record
	durationMs := record.Duration(*record.CompletedAt).Milliseconds()

	executed := 0

	for _, log := range record.NodeLogs {
		if log.Status == models.NodeLogStatusCompleted {
			executed++
		}
	}

	switch record.Status {
	case models.ExecutionStatusCompleted:
		r.publish(ctx, record.WorkflowID, events.ExecutionCompleted{
			BaseEvent:     events.NewBaseEvent(events.ExecutionCompletedEvent, record.WorkflowID),
			ExecutionID:   record.ID,
			DurationMs:    durationMs,
			NodesExecuted: executed,
		})
	case models.ExecutionStatusFailed:
		r.publish(ctx, record.WorkflowID, events.ExecutionFailed{
			BaseEvent:     events.NewBaseEvent(events.ExecutionFailedEvent, record.WorkflowID),
			ExecutionID:   record.ID,
			NodeID:        firstFailedNode(record),
			Error:         record.Error,
			DurationMs:    durationMs,
			NodesExecuted: executed,
		})
	case models.ExecutionStatusCancelled:
		r.publish(ctx, record.WorkflowID, events.ExecutionCancelled{
			BaseEvent:     events.NewBaseEvent(events.ExecutionCancelledEvent, record.WorkflowID),
			ExecutionID:   record.ID,
			DurationMs:    durationMs,
			NodesExecuted: executed,
		})
	}

	r.updateStats(ctx, record)

	if record.Status == models.ExecutionStatusFailed && record.Error != "" {
		otelhelper.SetError(active.span, errors.New(record.Error))
	}

	active.span.SetAttributes(attribute.String("flowstudio.execution.status", string(record.Status)))
	active.span.End()
}

func firstFailedNode(record *models.WorkflowExecution) string {
	for _, log := range record.NodeLogs {
		if log.Status == models.NodeLogStatusFailed {
			return log.NodeID
		}
	}

	return ""
}

// updateStats folds the run outcome into the workflow's catalog stats. A
// stats write failing never affects the finished run.
func (r *Runner) updateStats(ctx context.Context, record *models.WorkflowExecution) {
	repo := r.persistence.WorkflowRepository()

	workflow, err := repo.GetByID(ctx, record.WorkflowID)
	if err != nil || workflow == nil {
		r.logger.ErrorContext(ctx, "Failed to load workflow for stats update",
			"workflow_id", record.WorkflowID,
			"error", err)

		return
	}

	durationMs := record.Duration(*record.CompletedAt).Milliseconds()
	previous := workflow.Stats.TotalRuns

	workflow.Stats.TotalRuns++
	workflow.Stats.AverageRunMs = (workflow.Stats.AverageRunMs*int64(previous) + durationMs) / int64(workflow.Stats.TotalRuns)

	switch record.Status {
	case models.ExecutionStatusCompleted:
		workflow.Stats.SuccessfulRuns++
	case models.ExecutionStatusFailed:
		workflow.Stats.FailedRuns++
	}

	lastRun := record.StartedAt
	workflow.Stats.LastRunAt = &lastRun

	if err := repo.Save(ctx, workflow); err != nil {
		r.logger.ErrorContext(ctx, "Failed to update workflow stats",
			"workflow_id", record.WorkflowID,
			"error", err)
	}
}
