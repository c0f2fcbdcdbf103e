// Package briefing renders the morning digest: open actions, deadlines,
// blockers, curated notes and channel activity, with calendar and task
// sections filled in when those collaborators are available.
package briefing

import (
	"fmt"
	"strings"
	"time"

	"secondbrain/internal/memstore"
	"secondbrain/internal/tasks"
)

const (
	maxActions      = 5
	maxDeadlines    = 3
	maxBlockers     = 3
	maxCuratedNotes = 3
	maxTaskLines    = 5
	actionWidth     = 100
	deadlineWidth   = 60
	blockerWidth    = 80
	curatedWidth    = 150
)

// Builder assembles one briefing. Events and OpenTasks are optional; a nil
// or failing collaborator just drops its section.
type Builder struct {
	Memory    memstore.Store
	Name      string
	Events    func() ([]tasks.Event, error)
	OpenTasks func() ([]string, error)
	Now       func() time.Time
}

// NewBuilder wires a briefing builder. Name is the greeting name.
func NewBuilder(memory memstore.Store, name string) *Builder {
	if name == "" {
		name = "there"
	}
	return &Builder{Memory: memory, Name: name, Now: time.Now}
}

// Build renders the briefing as plain text.
func (b *Builder) Build() (string, error) {
	doc, err := b.Memory.Load()
	if err != nil {
		return "", err
	}

	var actions, deadlines []memstore.InboxItem
	for _, item := range doc.Inbox {
		if item.Status != memstore.StatusOpen {
			continue
		}
		switch item.Type {
		case memstore.InboxAction:
			actions = append(actions, item)
		case memstore.InboxDeadline:
			deadlines = append(deadlines, item)
		}
	}

	meetings := doc.Meetings
	if len(meetings) > 10 {
		meetings = meetings[len(meetings)-10:]
	}
	var blockers []string
	for _, m := range meetings {
		blockers = append(blockers, m.Signals.Blockers...)
	}

	observations := doc.Observations
	if len(observations) > 10 {
		observations = observations[len(observations)-10:]
	}

	var out strings.Builder
	out.WriteString(b.greeting(len(actions)))
	out.WriteString("\n")

	b.writeEvents(&out)

	if len(actions) > 0 {
		out.WriteString("\nOn your plate:\n")
		for i, item := range actions {
			if i == maxActions {
				fmt.Fprintf(&out, "  ...plus %d more\n", len(actions)-maxActions)
				break
			}
			fmt.Fprintf(&out, "  - %s\n", clip(item.Content, actionWidth))
		}
	}

	if len(deadlines) > 0 {
		out.WriteString("\nDeadlines coming up:\n")
		for i, item := range deadlines {
			if i == maxDeadlines {
				break
			}
			fmt.Fprintf(&out, "  - %s\n", clip(item.Content, deadlineWidth))
		}
	}

	b.writeTasks(&out)

	if len(blockers) > 0 {
		out.WriteString("\nHeads up, blockers:\n")
		for i, blk := range blockers {
			if i == maxBlockers {
				break
			}
			fmt.Fprintf(&out, "  - %s\n", clip(blk, blockerWidth))
		}
	}

	var curatedNotes []string
	for _, obs := range observations {
		if obs.Curated {
			curatedNotes = append(curatedNotes, clip(obs.Text(), curatedWidth))
		}
	}
	if len(curatedNotes) > maxCuratedNotes {
		curatedNotes = curatedNotes[len(curatedNotes)-maxCuratedNotes:]
	}
	if len(curatedNotes) > 0 {
		out.WriteString("\nNotes you captured:\n")
		for _, note := range curatedNotes {
			fmt.Fprintf(&out, "  - %s\n", note)
		}
	}

	if line := themeActivity(observations); line != "" {
		out.WriteString("\n" + line + "\n")
	}

	return out.String(), nil
}

// greeting sets the tone from how loaded the day looks.
func (b *Builder) greeting(openActions int) string {
	day := b.Now().Format("Monday")
	switch {
	case openActions == 0:
		return fmt.Sprintf("Hey %s, light %s. Nothing urgent on your plate.", b.Name, day)
	case openActions == 1:
		return fmt.Sprintf("Hey %s, one thing needs your attention today.", b.Name)
	case openActions <= 3:
		return fmt.Sprintf("Hey %s, %d things on your plate today.", b.Name, openActions)
	default:
		return fmt.Sprintf("Hey %s, busy day ahead. %d items need attention.", b.Name, openActions)
	}
}

func (b *Builder) writeEvents(out *strings.Builder) {
	if b.Events == nil {
		return
	}
	events, err := b.Events()
	if err != nil || len(events) == 0 {
		return
	}
	out.WriteString("\nToday's calendar:\n")
	for i, ev := range events {
		if i == 5 {
			break
		}
		fmt.Fprintf(out, "  - %s: %s\n", ev.Start.Format("15:04"), clip(ev.Title, 50))
	}
}

func (b *Builder) writeTasks(out *strings.Builder) {
	if b.OpenTasks == nil {
		return
	}
	open, err := b.OpenTasks()
	if err != nil || len(open) == 0 {
		return
	}
	out.WriteString("\nOpen tasks:\n")
	for i, title := range open {
		if i == maxTaskLines {
			fmt.Fprintf(out, "  ...plus %d more\n", len(open)-maxTaskLines)
			break
		}
		fmt.Fprintf(out, "  - %s\n", clip(title, deadlineWidth))
	}
}

// themeActivity summarizes the top three themes of the recent observations.
func themeActivity(observations []memstore.Observation) string {
	counts := map[string]int{}
	var order []string
	for _, obs := range observations {
		for _, t := range obs.Themes {
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
		}
	}
	if len(order) == 0 {
		return ""
	}

	// Stable selection sort on count, first-seen order breaking ties
	for i := 0; i < len(order); i++ {
		best := i
		for j := i + 1; j < len(order); j++ {
			if counts[order[j]] > counts[order[best]] {
				best = j
			}
		}
		order[i], order[best] = order[best], order[i]
	}
	if len(order) > 3 {
		order = order[:3]
	}

	parts := make([]string, 0, len(order))
	for _, t := range order {
		parts = append(parts, fmt.Sprintf("%s (%d)", t, counts[t]))
	}
	return "Channel activity: " + strings.Join(parts, ", ")
}

func clip(s string, max int) string {
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
