package client

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const tasksPath = "/api/db/taskEntries"

// Task mirrors one task document. Type is the free-text label the dashboard
// uses as a color key.
type Task struct {
	ID          string    `json:"_id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	DueDate     time.Time `json:"dueDate"`
	Priority    string    `json:"priority"`
	Progress    int       `json:"progress"`
	Completed   bool      `json:"completed"`
}

// TaskPatch updates a task; only non-nil fields are sent.
type TaskPatch struct {
	ID          string     `json:"_id"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Type        *string    `json:"type,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Progress    *int       `json:"progress,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
}

// TaskState partitions tasks by completion and due date.
type TaskState string

const (
	TaskStateCompleted TaskState = "completed"
	TaskStatePending   TaskState = "pending"
	TaskStateOverdue   TaskState = "overdue"
)

// TaskStats counts tasks per state.
type TaskStats struct {
	Completed int
	Pending   int
	Overdue   int
}

// TaskViewModel holds the locally cached task list plus the active search,
// type and state filters.
type TaskViewModel struct {
	api        *Client
	tasks      []Task
	search     string
	typeFilter []string
	states     []TaskState
	now        func() time.Time
}

// NewTaskViewModel creates a task view-model with every state visible.
func NewTaskViewModel(api *Client) *TaskViewModel {
	return &TaskViewModel{
		api:    api,
		states: []TaskState{TaskStateCompleted, TaskStatePending, TaskStateOverdue},
		now:    time.Now,
	}
}

// Load replaces the local list with the full collection.
func (vm *TaskViewModel) Load(ctx context.Context) error {
	tasks := []Task{}
	if err := vm.api.do(ctx, http.MethodGet, tasksPath, nil, nil, &tasks); err != nil {
		return err
	}
	vm.tasks = tasks
	return nil
}

// Add inserts a new task (never completed on creation) and reloads the list.
func (vm *TaskViewModel) Add(ctx context.Context, draft Task) (Task, error) {
	draft.ID = ""
	draft.Completed = false

	var inserted Task
	if err := vm.api.do(ctx, http.MethodPost, tasksPath, nil, draft, &inserted); err != nil {
		return Task{}, err
	}
	if err := vm.Load(ctx); err != nil {
		return Task{}, err
	}
	return inserted, nil
}

// Apply merge-updates one task and reloads the list.
func (vm *TaskViewModel) Apply(ctx context.Context, patch TaskPatch) error {
	if err := vm.api.do(ctx, http.MethodPut, tasksPath, nil, patch, nil); err != nil {
		return err
	}
	return vm.Load(ctx)
}

// Remove deletes one task and reloads the list.
func (vm *TaskViewModel) Remove(ctx context.Context, id string) error {
	if err := vm.api.do(ctx, http.MethodDelete, tasksPath, nil, map[string]string{"id": id}, nil); err != nil {
		return err
	}
	return vm.Load(ctx)
}

// ToggleCompleted flips one task's completed flag.
func (vm *TaskViewModel) ToggleCompleted(ctx context.Context, id string) error {
	for _, t := range vm.tasks {
		if t.ID == id {
			completed := !t.Completed
			return vm.Apply(ctx, TaskPatch{ID: id, Completed: &completed})
		}
	}
	return &FetchError{StatusCode: http.StatusNotFound, Message: "unknown task id"}
}

// Tasks returns the cached list.
func (vm *TaskViewModel) Tasks() []Task {
	out := make([]Task, len(vm.tasks))
	copy(out, vm.tasks)
	return out
}

// State classifies a task relative to the current time.
func (vm *TaskViewModel) State(t Task) TaskState {
	switch {
	case t.Completed:
		return TaskStateCompleted
	case t.DueDate.Before(vm.now()):
		return TaskStateOverdue
	default:
		return TaskStatePending
	}
}

// SetSearch sets the free-text filter over title and description.
func (vm *TaskViewModel) SetSearch(query string) {
	vm.search = query
}

// SetTypeFilter sets the multi-select type filter. An empty filter keeps
// every type.
func (vm *TaskViewModel) SetTypeFilter(types []string) {
	vm.typeFilter = types
}

// SetStates sets which task states remain visible.
func (vm *TaskViewModel) SetStates(states []TaskState) {
	vm.states = states
}

// Visible applies the state, search and type filters to the cached list.
func (vm *TaskViewModel) Visible() []Task {
	out := []Task{}
	for _, t := range vm.tasks {
		if !vm.stateVisible(vm.State(t)) {
			continue
		}
		if !vm.matchesSearch(t) {
			continue
		}
		if !vm.matchesType(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Stats counts the cached tasks per state.
func (vm *TaskViewModel) Stats() TaskStats {
	var stats TaskStats
	for _, t := range vm.tasks {
		switch vm.State(t) {
		case TaskStateCompleted:
			stats.Completed++
		case TaskStatePending:
			stats.Pending++
		case TaskStateOverdue:
			stats.Overdue++
		}
	}
	return stats
}

func (vm *TaskViewModel) stateVisible(state TaskState) bool {
	for _, s := range vm.states {
		if s == state {
			return true
		}
	}
	return false
}

func (vm *TaskViewModel) matchesSearch(t Task) bool {
	if vm.search == "" {
		return true
	}
	query := strings.ToLower(vm.search)
	return strings.Contains(strings.ToLower(t.Title), query) ||
		strings.Contains(strings.ToLower(t.Description), query)
}

func (vm *TaskViewModel) matchesType(t Task) bool {
	if len(vm.typeFilter) == 0 {
		return true
	}
	for _, typ := range vm.typeFilter {
		if typ == t.Type {
			return true
		}
	}
	return false
}
