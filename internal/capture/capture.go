// Package capture turns free-text "brain dump" blocks into classified
// items: tasks worth pushing to the task manager, ideas, and plain notes.
package capture

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"secondbrain/internal/logging"
	"secondbrain/internal/memstore"
	"secondbrain/internal/tasks"
)

// Item types
const (
	TypeNote = "note"
	TypeTask = "task"
	TypeIdea = "idea"
)

// Lines shorter than this are discarded as noise.
const minLineLength = 3

// How much of a task line is sent to the task manager as the title.
const taskTitleLimit = 100

// Bullet glyphs and newlines delimit candidate lines. A dash only splits
// when followed by whitespace, so hyphenated words survive.
var lineSplitRe = regexp.MustCompile(`\n|•|◦|▪|►|-\s`)

// Trigger lines are prompts, not content.
var triggerLines = map[string]bool{
	"capture:":     true,
	"notes:":       true,
	"brain dump:":  true,
	"paper notes:": true,
}

// Imperative openers and deadline phrasing mark a line as a task.
var taskPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(todo|task|do|need to|must|should|follow up|schedule|call|email|send|review|check|update|create|build|fix|finish)[\s:]+`),
	regexp.MustCompile(`(by|due|before|deadline)\s+(monday|tuesday|wednesday|thursday|friday|tomorrow|eod|eow|next week|\d{1,2}[/-]\d{1,2})`),
}

// Speculative phrasing marks a line as an idea, overriding a task match.
var ideaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(idea|maybe|could|what if|consider|explore|look into|research)`),
}

var dueHintRe = regexp.MustCompile(`(by|due|before)\s+(monday|tuesday|wednesday|thursday|friday|tomorrow|eod|eow|\d{1,2}[/-]\d{1,2})`)

// Classify splits a brain-dump block into lines and classifies each one.
// Classification is single-pass and line-local. It never fails; unusable
// input yields an empty list.
func Classify(raw string) []memstore.CaptureItem {
	var items []memstore.CaptureItem

	for _, line := range lineSplitRe.Split(raw, -1) {
		line = strings.TrimSpace(line)
		if len(line) < minLineLength {
			continue
		}
		if triggerLines[strings.ToLower(line)] {
			continue
		}

		lower := strings.ToLower(line)
		item := memstore.CaptureItem{Raw: line, Type: TypeNote, Content: line}

		for _, re := range taskPatterns {
			if re.MatchString(lower) {
				item.Type = TypeTask
				break
			}
		}
		for _, re := range ideaPatterns {
			if re.MatchString(lower) {
				item.Type = TypeIdea
				break
			}
		}

		if m := dueHintRe.FindStringSubmatch(lower); m != nil {
			item.DueHint = m[2]
		}

		items = append(items, item)
	}

	return items
}

// Processor stores captures and pushes task-classified items to the task
// manager.
type Processor struct {
	Store memstore.Store
	Tasks tasks.Manager
	Log   *logging.Logger
	Now   func() time.Time
}

// NewProcessor wires a capture processor. Log and Now default sensibly.
func NewProcessor(store memstore.Store, manager tasks.Manager) *Processor {
	return &Processor{
		Store: store,
		Tasks: manager,
		Log:   logging.Get(),
		Now:   time.Now,
	}
}

// Result summarizes one processed capture.
type Result struct {
	Capture      memstore.Capture
	TasksCreated int
	IdeasStored  int
	NotesStored  int
}

// Process classifies text, creates a task for every task item (best
// effort), and appends one capture record. No items means no store write.
func (p *Processor) Process(text, user string) (Result, error) {
	items := Classify(text)
	if len(items) == 0 {
		return Result{}, nil
	}

	now := p.Now()
	var res Result

	for i := range items {
		switch items[i].Type {
		case TypeTask:
			title := items[i].Content
			if len(title) > taskTitleLimit {
				title = title[:taskTitleLimit]
			}
			notes := fmt.Sprintf("Captured from paper notes on %s", now.Format("2006-01-02"))
			id, err := p.Tasks.CreateTask(title, notes)
			if err != nil {
				// Best effort: the capture is still stored
				p.Log.Warn("task creation failed", "title", title, "error", err.Error())
				continue
			}
			items[i].GoogleTaskID = id
			res.TasksCreated++
		case TypeIdea:
			res.IdeasStored++
		default:
			res.NotesStored++
		}
	}

	entry := memstore.Capture{
		ID:    uuid.New().String(),
		Date:  now.Format("2006-01-02"),
		User:  user,
		Items: items,
	}

	err := p.Store.Update(func(doc *memstore.Document) error {
		doc.AppendCapture(entry)
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to store capture: %w", err)
	}

	res.Capture = entry
	return res, nil
}

// Summary renders the counts the way the capture bot replied in Slack.
func (r Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Captured %d items:\n", len(r.Capture.Items))
	if r.TasksCreated > 0 {
		fmt.Fprintf(&b, "- %d task(s) -> task manager\n", r.TasksCreated)
	}
	if r.IdeasStored > 0 {
		fmt.Fprintf(&b, "- %d idea(s) -> memory\n", r.IdeasStored)
	}
	if r.NotesStored > 0 {
		fmt.Fprintf(&b, "- %d note(s) -> memory\n", r.NotesStored)
	}
	return b.String()
}
