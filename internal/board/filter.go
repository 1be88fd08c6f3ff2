package board

import (
	"strings"

	dom "kanban/internal/domain"
)

// NormalizeQuery trims and lower-cases a free-text query.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Matches reports whether t contains the already normalized query in its
// title, detail, assignee, status or id, ignoring case.
func Matches(t dom.Task, q string) bool {
	if q == "" {
		return true
	}
	for _, field := range []string{t.Title, t.Detail, t.AssignedTo, string(t.Status), t.ID} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Filter returns the tasks matching query, in input order. An empty or blank
// query returns tasks unchanged.
func Filter(tasks []dom.Task, query string) []dom.Task {
	q := NormalizeQuery(query)
	if q == "" {
		return tasks
	}
	out := make([]dom.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, q) {
			out = append(out, t)
		}
	}
	return out
}

// GroupByColumn splits tasks by lane keeping their relative order. Every
// column is present in the result, possibly empty.
func GroupByColumn(tasks []dom.Task) map[dom.Column][]dom.Task {
	out := make(map[dom.Column][]dom.Task, 3)
	for _, c := range dom.Columns() {
		out[c] = []dom.Task{}
	}
	for _, t := range tasks {
		out[t.Column] = append(out[t.Column], t)
	}
	return out
}

// InColumn returns the tasks of a single lane.
func InColumn(tasks []dom.Task, c dom.Column) []dom.Task {
	out := make([]dom.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.Column == c {
			out = append(out, t)
		}
	}
	return out
}

// View is the board as rendered for a query: one lane per column plus the
// number of tasks the query matched.
type View struct {
	Query   string
	Matched int
	Columns map[dom.Column][]dom.Task
}

// NewView filters once and groups the result, so the per-column counts always
// add up to Matched.
func NewView(tasks []dom.Task, query string) View {
	filtered := Filter(tasks, query)
	return View{
		Query:   NormalizeQuery(query),
		Matched: len(filtered),
		Columns: GroupByColumn(filtered),
	}
}
