// Package todo is the typed client for the task CRUD endpoints. The
// assistant mutates tasks server-side through its own tools; this client
// exists so the task panel can read and edit the same data directly.
package todo

import (
	"context"
	"strconv"
	"time"

	"github.com/SyedSaudAli-gh/todochat/internal/api"
)

// Todo is a single task as stored by the backend.
type Todo struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Create is the payload for creating a task.
type Create struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// Update is a partial update. Nil fields are left unchanged.
type Update struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// ListResponse is a page of tasks.
type ListResponse struct {
	Todos []Todo `json:"todos"`
	Total int    `json:"total"`
}

// Client wraps the task endpoints.
type Client struct {
	api *api.Client
}

// NewClient creates a task client on top of the request client.
func NewClient(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

// List fetches all tasks for the authenticated user.
func (c *Client) List(ctx context.Context) (*ListResponse, error) {
	var resp ListResponse
	if err := c.api.Get(ctx, "/api/v1/tasks", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateTodo creates a task.
func (c *Client) CreateTodo(ctx context.Context, in Create) (*Todo, error) {
	var resp Todo
	if err := c.api.Post(ctx, "/api/v1/tasks", in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get fetches one task by id.
func (c *Client) Get(ctx context.Context, id int) (*Todo, error) {
	var resp Todo
	if err := c.api.Get(ctx, taskPath(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateTodo applies a partial update to a task.
func (c *Client) UpdateTodo(ctx context.Context, id int, in Update) (*Todo, error) {
	var resp Todo
	if err := c.api.Patch(ctx, taskPath(id), in, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTodo removes a task.
func (c *Client) DeleteTodo(ctx context.Context, id int) error {
	return c.api.Delete(ctx, taskPath(id))
}

func taskPath(id int) string {
	return "/api/v1/tasks/" + strconv.Itoa(id)
}

// Stats summarizes a task list for display.
type Stats struct {
	Total     int
	Completed int
	Remaining int
}

// Tally computes completion stats over a task list.
func Tally(todos []Todo) Stats {
	s := Stats{Total: len(todos)}
	for _, t := range todos {
		if t.Completed {
			s.Completed++
		}
	}
	s.Remaining = s.Total - s.Completed
	return s
}
