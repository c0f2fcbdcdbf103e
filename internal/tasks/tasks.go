// Package tasks defines the external collaborator interfaces the memory
// core calls as side effects: a task manager and a calendar. Real
// deployments wire Google-backed implementations; tests and the CLI use the
// in-memory recorders.
package tasks

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxTitleLength is the longest title accepted by task managers.
const MaxTitleLength = 500

// Manager creates and completes tasks in the external system of record.
type Manager interface {
	CreateTask(title, notes string) (string, error)
	CompleteTask(id string) error
}

// Event is a calendar event as the core sees it.
type Event struct {
	ID       string
	Title    string
	Start    time.Time
	Duration time.Duration
}

// Calendar finds and creates events. FindEvent returns false when nothing
// matches within the lookahead window.
type Calendar interface {
	FindEvent(query string, daysAhead int) (Event, bool, error)
	CreateEvent(title string, start time.Time, durationMinutes int, description string) (Event, error)
}

// RecordedTask is one task captured by the Recorder.
type RecordedTask struct {
	ID    string
	Title string
	Notes string
	Done  bool
}

// Recorder is an in-memory Manager. It stands in for Google Tasks in tests
// and in CLI preview runs.
type Recorder struct {
	mu    sync.Mutex
	tasks []RecordedTask
}

// NewRecorder creates an empty in-memory task manager.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// CreateTask records a task and returns its generated ID.
func (r *Recorder) CreateTask(title, notes string) (string, error) {
	if title == "" {
		return "", fmt.Errorf("task title is empty")
	}
	if len(title) > MaxTitleLength {
		title = title[:MaxTitleLength]
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	task := RecordedTask{ID: uuid.New().String(), Title: title, Notes: notes}
	r.tasks = append(r.tasks, task)
	return task.ID, nil
}

// CompleteTask marks a recorded task done.
func (r *Recorder) CompleteTask(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks[i].Done = true
			return nil
		}
	}
	return fmt.Errorf("task %s not found", id)
}

// Tasks returns a snapshot of everything recorded so far.
func (r *Recorder) Tasks() []RecordedTask {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]RecordedTask, len(r.tasks))
	copy(out, r.tasks)
	return out
}

// FailingManager always errors; used to verify that task-creation failures
// stay best-effort.
type FailingManager struct{}

func (FailingManager) CreateTask(title, notes string) (string, error) {
	return "", fmt.Errorf("task manager unavailable")
}

func (FailingManager) CompleteTask(id string) error {
	return fmt.Errorf("task manager unavailable")
}

// MemoryCalendar is an in-memory Calendar.
type MemoryCalendar struct {
	mu     sync.Mutex
	events []Event
	now    func() time.Time
}

// NewMemoryCalendar creates an empty in-memory calendar.
func NewMemoryCalendar() *MemoryCalendar {
	return &MemoryCalendar{now: time.Now}
}

// NewMemoryCalendarAt creates an in-memory calendar with a pinned clock.
func NewMemoryCalendarAt(now func() time.Time) *MemoryCalendar {
	return &MemoryCalendar{now: now}
}

// FindEvent returns the first upcoming event whose title contains query,
// case-insensitively, within daysAhead days. Events already started do not
// match.
func (c *MemoryCalendar) FindEvent(query string, daysAhead int) (Event, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	cutoff := now.AddDate(0, 0, daysAhead)
	for _, ev := range c.events {
		if ev.Start.Before(now) || ev.Start.After(cutoff) {
			continue
		}
		if strings.Contains(strings.ToLower(ev.Title), strings.ToLower(query)) {
			return ev, true, nil
		}
	}
	return Event{}, false, nil
}

// CreateEvent records an event and returns it with a generated ID.
func (c *MemoryCalendar) CreateEvent(title string, start time.Time, durationMinutes int, description string) (Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev := Event{
		ID:       uuid.New().String(),
		Title:    title,
		Start:    start,
		Duration: time.Duration(durationMinutes) * time.Minute,
	}
	c.events = append(c.events, ev)
	return ev, nil
}
