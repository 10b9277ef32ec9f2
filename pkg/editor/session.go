// Package editor implements the in-process editing session behind the
// visual workflow builder: graph mutations, canvas interaction, snapshot
// history, and the clipboard. A session edits one workflow at a time and is
// not safe for concurrent use.
package editor

import (
	"errors"
	"log/slog"
	"math"

	"github.com/rustpress-net/flowstudio/pkg/models"
	"github.com/rustpress-net/flowstudio/pkg/registry"
)

var (
	ErrNoWorkflow      = errors.New("no workflow loaded in session")
	ErrNotConnecting   = errors.New("no connect gesture in progress")
	ErrSamePortSide    = errors.New("connection requires one output and one input port")
	ErrInvalidVariable = errors.New("invalid variable")
)

// Defaults for canvas geometry and history depth.
const (
	DefaultGridSize     = 20.0
	DefaultHistoryLimit = 50
	PasteOffset         = 50.0
	fitPadding          = 50.0
)

// Session is one user's editing state for one workflow.
type Session struct {
	logger   *slog.Logger
	registry *registry.Registry

	workflow *models.Workflow
	canvas   *models.CanvasState

	history   *history
	clipboard *clipboard

	gridSize float64
}

// Option configures a session.
type Option func(*Session)

// WithGridSize overrides the snap grid unit.
func WithGridSize(size float64) Option {
	return func(s *Session) {
		if size > 0 {
			s.gridSize = size
		}
	}
}

// WithHistoryLimit overrides the undo stack depth.
func WithHistoryLimit(limit int) Option {
	return func(s *Session) {
		if limit > 0 {
			s.history.limit = limit
		}
	}
}

func NewSession(reg *registry.Registry, logger *slog.Logger, opts ...Option) *Session {
	session := &Session{
		logger:    logger.With("module", "editor"),
		registry:  reg,
		canvas:    models.NewCanvasState(),
		history:   newHistory(DefaultHistoryLimit),
		clipboard: &clipboard{},
		gridSize:  DefaultGridSize,
	}

	for _, opt := range opts {
		opt(session)
	}

	return session
}

// Load replaces the edited workflow. The canvas resets and history is
// cleared so snapshots never restore across workflows. The clipboard
// survives, allowing paste between workflows.
func (s *Session) Load(workflow *models.Workflow) {
	s.workflow = workflow
	s.canvas = models.NewCanvasState()
	s.history.reset()

	if workflow != nil {
		// Persisted flags may be stale; the connection list is the truth.
		workflow.RefreshPortFlags()

		s.logger.Debug("Loaded workflow into session",
			"workflow_id", workflow.ID,
			"nodes", len(workflow.Nodes),
			"connections", len(workflow.Connections))
	}
}

// Workflow returns the currently edited workflow, nil when none is loaded.
func (s *Session) Workflow() *models.Workflow {
	return s.workflow
}

// Canvas returns the transient canvas state.
func (s *Session) Canvas() *models.CanvasState {
	return s.canvas
}

// snapGrid rounds a position to the session grid.
func (s *Session) snapGrid(pos models.Position) models.Position {
	return models.Position{
		X: math.Round(pos.X/s.gridSize) * s.gridSize,
		Y: math.Round(pos.Y/s.gridSize) * s.gridSize,
	}
}

// pruneSelection drops selected ids that no longer resolve, after undo,
// redo, or cascading deletes.
func (s *Session) pruneSelection() {
	if s.workflow == nil {
		s.canvas.ClearSelection()

		return
	}

	nodeIDs := s.canvas.SelectedNodeIDs[:0]
	for _, id := range s.canvas.SelectedNodeIDs {
		if s.workflow.NodeByID(id) != nil {
			nodeIDs = append(nodeIDs, id)
		}
	}

	if len(nodeIDs) == 0 {
		s.canvas.SelectedNodeIDs = nil
	} else {
		s.canvas.SelectedNodeIDs = nodeIDs
	}

	connIDs := s.canvas.SelectedConnectionIDs[:0]
	for _, id := range s.canvas.SelectedConnectionIDs {
		if s.workflow.ConnectionByID(id) != nil {
			connIDs = append(connIDs, id)
		}
	}

	if len(connIDs) == 0 {
		s.canvas.SelectedConnectionIDs = nil
	} else {
		s.canvas.SelectedConnectionIDs = connIDs
	}
}
