// Package model defines the project and task records shared by every layer.
package model

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for createdAt and dueDate.
const DateLayout = "2006-01-02"

// Status is the shared three-value workflow state of projects and tasks.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusToDo, StatusInProgress, StatusDone}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Next returns the status that follows s, wrapping around.
func (s Status) Next() Status {
	for i, known := range Statuses {
		if s == known {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusToDo
}

// Project mirrors a record of the projects collection.
type Project struct {
	ID          ID     `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TaskCount   int    `json:"taskCount"`
	Status      Status `json:"status"`
	CreatedAt   string `json:"createdAt"`
}

// ProjectDraft carries the user-authored fields of a new project.
type ProjectDraft struct {
	Name        string
	Description string
}

// ErrEmptyName is returned by ProjectDraft.Validate.
var ErrEmptyName = errors.New("project name is required")

// Validate checks the draft before it is sent anywhere.
func (d ProjectDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Task mirrors a record of the tasks collection.
type Task struct {
	ID        ID     `json:"id,omitempty"`
	ProjectID ID     `json:"projectId"`
	Title     string `json:"title"`
	Assignee  string `json:"assignee"`
	Status    Status `json:"status"`
	DueDate   string `json:"dueDate"`
}

// Today formats t as a UTC calendar date.
func Today(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a calendar date, returning the zero time when invalid.
func ParseDate(value string) time.Time {
	t, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}
	}
	return t
}
