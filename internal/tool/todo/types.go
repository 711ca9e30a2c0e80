package todo

import (
	"strings"

	"github.com/Cyclone1070/iavtools/internal/config"
)

// Status represents the status of a todo item.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusBlocked, StatusDone:
		return true
	}
	return false
}

// Item is a single task.
type Item struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Status Status `json:"status"`
}

// Document is the on-disk form of the todo list.
type Document struct {
	NextID int    `json:"nextId"`
	Items  []Item `json:"items"`
}

func newDocument() *Document {
	return &Document{NextID: 1, Items: []Item{}}
}

func (d *Document) find(id int) (int, bool) {
	for i, item := range d.Items {
		if item.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Action names a todo operation.
type Action string

const (
	ActionAdd       Action = "add"
	ActionDone      Action = "done"
	ActionSetStatus Action = "set_status"
	ActionRemove    Action = "remove"
	ActionList      Action = "list"
)

type TodoRequest struct {
	Action Action `json:"action"`
	Title  string `json:"title,omitempty"`
	ID     int    `json:"id,omitempty"`
	Status Status `json:"status,omitempty"`
}

// Validate checks that the fields the action needs are present.
func (r *TodoRequest) Validate(cfg *config.Config) error {
	switch r.Action {
	case ActionAdd:
		if strings.TrimSpace(r.Title) == "" {
			return ErrTitleRequired
		}
	case ActionDone, ActionRemove:
		if r.ID < 1 {
			return &InvalidIDError{ID: r.ID}
		}
	case ActionSetStatus:
		if r.ID < 1 {
			return &InvalidIDError{ID: r.ID}
		}
		if !r.Status.Valid() {
			return &InvalidStatusError{Status: r.Status}
		}
	case ActionList:
	default:
		return &InvalidActionError{Action: r.Action}
	}
	return nil
}

// TodoResponse carries the rendered list after the action.
type TodoResponse struct {
	Output string `json:"output"`
	Items  []Item `json:"items"`
}
