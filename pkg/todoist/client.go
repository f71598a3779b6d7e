package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultRestBaseURL = "https://api.todoist.com/rest/v2"
	defaultSyncBaseURL = "https://api.todoist.com/sync/v9"
)

// Client talks to the Todoist REST and Sync APIs with a bearer token.
// Every mutation carries a fresh X-Request-Id so retried writes are safe.
type Client struct {
	httpClient *http.Client
	restBase   string
	syncBase   string
	token      string
	logger     *zap.Logger
}

// NewClient creates a Todoist API client.
func NewClient(token string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		restBase:   defaultRestBaseURL,
		syncBase:   defaultSyncBaseURL,
		token:      token,
		logger:     logger,
	}
}

func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if method != http.MethodGet {
		req.Header.Set("X-Request-Id", uuid.NewString())
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("todoist request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("todoist %s %s: status %d: %s", method, req.URL.Path, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode todoist response: %w", err)
		}
	}
	return nil
}

// ListTasks returns active tasks, optionally narrowed by a Todoist filter
// expression such as "today" or "overdue | no date".
func (c *Client) ListTasks(ctx context.Context, filter string) ([]Task, error) {
	u := c.restBase + "/tasks"
	if filter != "" {
		u += "?filter=" + url.QueryEscape(filter)
	}
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, u, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask fetches the full current record of a single task.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, c.restBase+"/tasks/"+url.PathEscape(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// NewTask is the creation payload for a task imported from a calendar event.
type NewTask struct {
	Content         string
	ProjectID       string
	DueDatetime     time.Time
	DurationMinutes int
	Labels          []string
}

// CreateTask creates a new remote task.
func (c *Client) CreateTask(ctx context.Context, nt NewTask) (*Task, error) {
	body := map[string]any{
		"content": nt.Content,
	}
	if nt.ProjectID != "" {
		body["project_id"] = nt.ProjectID
	}
	if !nt.DueDatetime.IsZero() {
		body["due_datetime"] = nt.DueDatetime.UTC().Format("2006-01-02T15:04:05Z")
	}
	if nt.DurationMinutes > 0 {
		body["duration"] = nt.DurationMinutes
		body["duration_unit"] = "minute"
	}
	if len(nt.Labels) > 0 {
		body["labels"] = nt.Labels
	}
	var task Task
	if err := c.do(ctx, http.MethodPost, c.restBase+"/tasks", body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTaskContent pushes an edited title to the remote task.
func (c *Client) UpdateTaskContent(ctx context.Context, id, content string) error {
	body := map[string]any{"content": content}
	return c.do(ctx, http.MethodPost, c.restBase+"/tasks/"+url.PathEscape(id), body, nil)
}

// UpdateTaskDue rewrites a task's scheduled time and duration.
func (c *Client) UpdateTaskDue(ctx context.Context, id string, due time.Time, durationMinutes int) error {
	body := map[string]any{
		"due_datetime": due.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if durationMinutes > 0 {
		body["duration"] = durationMinutes
		body["duration_unit"] = "minute"
	}
	return c.do(ctx, http.MethodPost, c.restBase+"/tasks/"+url.PathEscape(id), body, nil)
}

// CloseTask marks a task completed.
func (c *Client) CloseTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, c.restBase+"/tasks/"+url.PathEscape(id)+"/close", nil, nil)
}

// ReopenTask reopens a completed task.
func (c *Client) ReopenTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, c.restBase+"/tasks/"+url.PathEscape(id)+"/reopen", nil, nil)
}

// Projects returns the project id → name mapping, fetched once per render.
func (c *Client) Projects(ctx context.Context) (map[string]string, error) {
	var projects []Project
	if err := c.do(ctx, http.MethodGet, c.restBase+"/projects", nil, &projects); err != nil {
		return nil, err
	}
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ID] = p.Name
	}
	return names, nil
}

// CompletedItems returns recent entries from the completed-items feed.
func (c *Client) CompletedItems(ctx context.Context, limit int) ([]CompletedItem, error) {
	u := fmt.Sprintf("%s/completed/get_all?limit=%d", c.syncBase, limit)
	var data struct {
		Items []CompletedItem `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, u, nil, &data); err != nil {
		return nil, err
	}
	return data.Items, nil
}

// LastDueChange returns when the task's due date was last rewritten,
// according to the activity feed. Nil means no update event is recorded.
func (c *Client) LastDueChange(ctx context.Context, id string) (*time.Time, error) {
	u := fmt.Sprintf("%s/activity/get?object_type=item&object_id=%s&event_type=updated", c.syncBase, url.QueryEscape(id))
	var data struct {
		Events []ActivityEvent `json:"events"`
	}
	if err := c.do(ctx, http.MethodGet, u, nil, &data); err != nil {
		return nil, err
	}
	for _, ev := range data.Events {
		if ev.ExtraData.DueDate == "" && ev.ExtraData.LastDueDate == "" {
			continue
		}
		if ev.EventDate == nil || ev.EventDate.IsZero() {
			continue
		}
		// Events arrive newest first.
		t := ev.EventDate.Time
		return &t, nil
	}
	return nil, nil
}
