// Package board holds the decision logic of the kanban board: the column
// transition policy and the search filter. Everything here is pure.
package board

import dom "kanban/internal/domain"

// Transition computes where a task ends up and which status it carries when it
// is dropped on dst. Dropping on the current column is a no-op. A move that
// regresses along todo -> doing -> done yields reassigned; any other move takes
// the destination's baseline status.
func Transition(cur, dst dom.Column, status dom.Status) (dom.Column, dom.Status) {
	if dst == cur {
		return cur, status
	}
	if IsBackward(cur, dst) {
		return dst, dom.StatusReassigned
	}
	return dst, dst.Baseline()
}

// IsBackward reports whether moving from cur to dst regresses progress.
func IsBackward(cur, dst dom.Column) bool {
	return dst.Rank() < cur.Rank()
}

// Apply runs Transition against t and returns the moved copy. changed is false
// when the drop was on the task's own column.
func Apply(t dom.Task, dst dom.Column) (moved dom.Task, changed bool) {
	col, st := Transition(t.Column, dst, t.Status)
	moved = t
	moved.Column = col
	moved.Status = st
	return moved, col != t.Column || st != t.Status
}
