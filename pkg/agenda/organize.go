// Package agenda turns the flat task collections into the ordered, rendered
// task blocks of the daily note.
package agenda

import (
	"sort"

	"github.com/ronilaukkarinen/obsidian-todoist-day-planner/pkg/todoist"
)

// Organize deduplicates a task collection, groups children under their
// parents and applies the display ordering: incomplete before completed,
// high priority first, earliest scheduled time first, newest id first.
// Each root task is followed immediately by its children; children never
// interleave across parents. A child whose parent is absent from the batch
// is treated as its own root.
func Organize(tasks []todoist.Task) []todoist.Task {
	tasks = Dedup(tasks)

	present := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		present[t.ID] = true
	}

	var roots []todoist.Task
	children := make(map[string][]todoist.Task)
	for _, t := range tasks {
		if t.ParentID != "" && present[t.ParentID] {
			t.IsSubtask = true
			children[t.ParentID] = append(children[t.ParentID], t)
		} else {
			t.IsSubtask = false
			roots = append(roots, t)
		}
	}

	sort.SliceStable(roots, func(i, j int) bool { return less(roots[i], roots[j]) })
	for _, group := range children {
		sort.SliceStable(group, func(i, j int) bool { return less(group[i], group[j]) })
	}

	out := make([]todoist.Task, 0, len(tasks))
	for _, root := range roots {
		out = append(out, root)
		out = append(out, children[root.ID]...)
	}
	return out
}

// Dedup removes tasks sharing a (normalized content, parent) key; among
// collisions the task with the numerically largest id survives.
func Dedup(tasks []todoist.Task) []todoist.Task {
	type key struct {
		content string
		parent  string
	}
	winners := make(map[key]todoist.Task, len(tasks))
	order := make([]key, 0, len(tasks))
	for _, t := range tasks {
		k := key{content: t.NormalizedContent(), parent: t.ParentID}
		current, seen := winners[k]
		if !seen {
			order = append(order, k)
			winners[k] = t
			continue
		}
		if t.IDNum() > current.IDNum() {
			winners[k] = t
		}
	}

	out := make([]todoist.Task, 0, len(order))
	for _, k := range order {
		out = append(out, winners[k])
	}
	return out
}

// less is the display ordering within one parent group.
func less(a, b todoist.Task) bool {
	if a.Completed != b.Completed {
		return !a.Completed
	}
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	at, aok := a.ScheduledAt()
	bt, bok := b.ScheduledAt()
	if aok != bok {
		// Tasks without a time sort after all scheduled ones.
		return aok
	}
	if aok && !at.Equal(bt) {
		return at.Before(bt)
	}
	return a.IDNum() > b.IDNum()
}

// ResolveProjects fills in each task's project name from the id → name
// mapping fetched once per render.
func ResolveProjects(tasks []todoist.Task, names map[string]string) {
	for i := range tasks {
		tasks[i].ProjectName = names[tasks[i].ProjectID]
	}
}
