package todoist

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// The fetch methods implement the task source contract: on transport error
// they log and return an empty collection, so a failed fetch degrades to an
// empty note section instead of aborting the run.

// TodayTasks returns tasks due today plus any of their subtasks that carry
// no date of their own.
func (c *Client) TodayTasks(ctx context.Context) []Task {
	c.logger.Info("Fetching active tasks from Todoist...")
	today, err := c.ListTasks(ctx, "today")
	if err != nil {
		c.logger.Error("Error fetching today's tasks", zap.Error(err))
		return nil
	}
	return c.withSubtasks(ctx, today)
}

// FutureTasks returns tasks due after today plus their non-dated subtasks,
// priority sorted.
func (c *Client) FutureTasks(ctx context.Context) []Task {
	c.logger.Info("Fetching future tasks...")
	future, err := c.ListTasks(ctx, "due after: today")
	if err != nil {
		c.logger.Error("Error fetching future tasks", zap.Error(err))
		return nil
	}
	tasks := c.withSubtasks(ctx, future)
	sortByPriority(tasks)
	return tasks
}

// BacklogTasks returns overdue and undated tasks, excluding subtasks of
// today's tasks (those already ride along with the today set), priority
// sorted.
func (c *Client) BacklogTasks(ctx context.Context) []Task {
	c.logger.Info("Fetching backlog tasks...")
	backlog, err := c.ListTasks(ctx, "overdue | no date")
	if err != nil {
		c.logger.Error("Error fetching backlog tasks", zap.Error(err))
		return nil
	}

	todayIDs := make(map[string]bool)
	if today, err := c.ListTasks(ctx, "today"); err != nil {
		c.logger.Warn("Could not fetch today's tasks for backlog filtering", zap.Error(err))
	} else {
		for _, t := range today {
			todayIDs[t.ID] = true
		}
	}

	kept := backlog[:0]
	for _, t := range backlog {
		if t.ParentID != "" && todayIDs[t.ParentID] {
			continue
		}
		kept = append(kept, t)
	}
	sortByTime(kept)
	sortByPriority(kept)
	return kept
}

// timeRangePattern matches a legacy embedded time range such as
// "14:00 - 14:30" or a bare "14:00" inside a task title.
var timeRangePattern = regexp.MustCompile(`(\d{1,2}:\d{2})(?:\s*-\s*(\d{1,2}:\d{2}))?`)

// CompletedToday returns tasks completed during the local calendar day. The
// full task record is re-fetched per item when possible; otherwise the
// minimal completed event is used, scraping a legacy time range out of the
// content if one is embedded there.
func (c *Client) CompletedToday(ctx context.Context, now time.Time, loc *time.Location) []Task {
	c.logger.Info("Fetching completed tasks...")
	items, err := c.CompletedItems(ctx, 30)
	if err != nil {
		c.logger.Error("Error fetching completed tasks", zap.Error(err))
		return nil
	}

	today := now.In(loc).Format("2006-01-02")
	var tasks []Task
	for _, item := range items {
		if item.CompletedAt == nil || item.CompletedAt.In(loc).Format("2006-01-02") != today {
			continue
		}

		var task *Task
		if item.TaskID != "" {
			task, err = c.GetTask(ctx, item.TaskID)
			if err != nil {
				c.logger.Warn("Could not fetch completed task details, falling back to event record",
					zap.String("task_id", item.TaskID), zap.Error(err))
				task = nil
			}
		}
		if task == nil {
			task = fallbackCompletedTask(item, now.In(loc))
		}
		task.Completed = true
		completedAt := item.CompletedAt.Time
		task.CompletedAt = &completedAt
		tasks = append(tasks, *task)
	}

	c.logger.Info("Found completed tasks", zap.Int("count", len(tasks)))
	sortByTime(tasks)
	return tasks
}

// fallbackCompletedTask builds a minimal task from a completed event record,
// recovering a scheduled time from a legacy range embedded in the content.
func fallbackCompletedTask(item CompletedItem, day time.Time) *Task {
	task := &Task{
		ID:       item.TaskID,
		Content:  item.Content,
		Priority: 1,
	}

	match := timeRangePattern.FindStringSubmatch(item.Content)
	if match == nil {
		return task
	}
	task.Content = strings.TrimSpace(strings.Replace(item.Content, match[0], "", 1))

	start, err := clockOn(match[1], day)
	if err != nil {
		return task
	}
	task.Due = &Due{
		Date:     day.Format("2006-01-02"),
		Datetime: &Timestamp{Time: start},
	}
	if match[2] != "" {
		if end, err := clockOn(match[2], day); err == nil && end.After(start) {
			task.Duration = &Duration{Minutes: int(end.Sub(start) / time.Minute)}
		}
	}
	return task
}

func clockOn(clock string, day time.Time) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// withSubtasks pulls in subtasks of the given tasks that are not already in
// the set, marks subtask flags and orders parents before children.
func (c *Client) withSubtasks(ctx context.Context, tasks []Task) []Task {
	ids := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		ids[t.ID] = true
	}

	all, err := c.ListTasks(ctx, "")
	if err != nil {
		c.logger.Warn("Could not fetch full task list for subtask resolution", zap.Error(err))
	} else {
		for _, t := range all {
			if t.ParentID != "" && ids[t.ParentID] && !ids[t.ID] {
				tasks = append(tasks, t)
				ids[t.ID] = true
			}
		}
	}

	for i := range tasks {
		tasks[i].IsSubtask = tasks[i].ParentID != "" && ids[tasks[i].ParentID]
	}
	sortByTime(tasks)
	return tasks
}

// sortByTime orders tasks by scheduled time, unscheduled last, stable.
func sortByTime(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, aok := tasks[i].ScheduledAt()
		b, bok := tasks[j].ScheduledAt()
		if aok != bok {
			return aok
		}
		if !aok {
			return false
		}
		return a.Before(b)
	})
}

// sortByPriority orders tasks by priority descending, stable.
func sortByPriority(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Priority > tasks[j].Priority
	})
}
