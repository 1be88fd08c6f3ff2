package board

import dom "kanban/internal/domain"

const copySuffix = " (Copy)"

type Stats struct {
	Total    int
	Todo     int
	Doing    int
	Done     int
	ByStatus map[dom.Status]int
}

// Summarize counts tasks per column and per status.
func Summarize(tasks []dom.Task) Stats {
	s := Stats{Total: len(tasks), ByStatus: map[dom.Status]int{}}
	for _, t := range tasks {
		switch t.Column {
		case dom.ColumnTodo:
			s.Todo++
		case dom.ColumnDoing:
			s.Doing++
		case dom.ColumnDone:
			s.Done++
		}
		s.ByStatus[t.Status]++
	}
	return s
}

// DuplicateTitle marks a copied task's title. The source title is cut so the
// result still fits the title limit.
func DuplicateTitle(title string) string {
	r := []rune(title)
	if limit := dom.MaxTitleLen - len([]rune(copySuffix)); len(r) > limit {
		title = string(r[:limit])
	}
	return title + copySuffix
}

// Duplicate copies every field of t except its identity and timestamps.
func Duplicate(t dom.Task) dom.Task {
	return dom.Task{
		Title:      DuplicateTitle(t.Title),
		Detail:     t.Detail,
		AssignedTo: t.AssignedTo,
		Column:     t.Column,
		Status:     t.Status,
	}
}
