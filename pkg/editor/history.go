package editor

import "github.com/rustpress-net/flowstudio/pkg/models"

// history keeps deep-copy snapshots of the workflow for undo and redo.
// Pushing a new snapshot clears the redo stack; the undo stack is capped and
// trims its oldest entry when full.
type history struct {
	limit int
	undo  []*models.Workflow
	redo  []*models.Workflow
}

func newHistory(limit int) *history {
	return &history{limit: limit}
}

func (h *history) push(snapshot *models.Workflow) {
	h.undo = append(h.undo, snapshot)

	if len(h.undo) > h.limit {
		h.undo = h.undo[1:]
	}

	h.redo = nil
}

func (h *history) reset() {
	h.undo = nil
	h.redo = nil
}

func (h *history) canUndo() bool { return len(h.undo) > 0 }
func (h *history) canRedo() bool { return len(h.redo) > 0 }

// stepBack swaps the current state for the latest snapshot. The current
// state moves to the redo stack as-is; it is no longer referenced elsewhere.
func (h *history) stepBack(current *models.Workflow) (*models.Workflow, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}

	restored := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, current)

	return restored, true
}

func (h *history) stepForward(current *models.Workflow) (*models.Workflow, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}

	restored := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, current)

	return restored, true
}

// snapshot records the current workflow before a structural mutation.
func (s *Session) snapshot() {
	if s.workflow == nil {
		return
	}

	s.history.push(s.workflow.Clone())
}

// Undo restores the previous snapshot. It reports whether anything changed;
// an empty undo stack is a silent no-op.
func (s *Session) Undo() bool {
	if s.workflow == nil {
		return false
	}

	restored, ok := s.history.stepBack(s.workflow)
	if !ok {
		return false
	}

	s.workflow = restored
	s.pruneSelection()

	return true
}

// Redo reapplies the most recently undone snapshot.
func (s *Session) Redo() bool {
	if s.workflow == nil {
		return false
	}

	restored, ok := s.history.stepForward(s.workflow)
	if !ok {
		return false
	}

	s.workflow = restored
	s.pruneSelection()

	return true
}

// CanUndo reports whether an undo snapshot is available.
func (s *Session) CanUndo() bool { return s.history.canUndo() }

// CanRedo reports whether a redo snapshot is available.
func (s *Session) CanRedo() bool { return s.history.canRedo() }
