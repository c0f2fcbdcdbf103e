// Package meetings processes transcription-vendor meeting payloads into
// persisted meeting records, inbox entries and task-manager side effects.
package meetings

import (
	"fmt"
	"math"
	"strings"
	"time"

	"secondbrain/internal/config"
	"secondbrain/internal/logging"
	"secondbrain/internal/memstore"
	"secondbrain/internal/signals"
	"secondbrain/internal/tasks"
)

// Vendor action items below/above these bounds are discarded as noise.
const (
	minVendorItemLength = 10
	maxVendorItemLength = 500
)

// Summary text stored on the record is capped here.
const summaryLimit = 500

// Input is the meeting payload as it arrives from the transcription
// vendor's webhook. Transcript and Summary are deliberately untyped: the
// vendor sends a plain string, a list of segments, or a nested object
// depending on the meeting, and normalization happens here so nothing
// downstream has to care.
type Input struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Transcript      any      `json:"transcript"`
	Summary         any      `json:"summary"`
	ActionItems     []any    `json:"action_items"`
	Attendees       []string `json:"attendees"`
	DurationSeconds float64  `json:"duration_seconds"`
}

// Processor turns meeting inputs into stored records.
type Processor struct {
	Store     memstore.Store
	Tasks     tasks.Manager
	Extractor *signals.Extractor
	Identity  config.Identity
	Roster    map[string][]string
	Log       *logging.Logger
	Now       func() time.Time
}

// NewProcessor wires a meeting processor.
func NewProcessor(store memstore.Store, manager tasks.Manager, extractor *signals.Extractor, cfg *config.Config) *Processor {
	return &Processor{
		Store:     store,
		Tasks:     manager,
		Extractor: extractor,
		Identity:  cfg.Identity,
		Roster:    cfg.Roster,
		Log:       logging.Get(),
		Now:       time.Now,
	}
}

// Process extracts signals from the meeting, persists exactly one meeting
// record (idempotent on the meeting ID), fans surfaced actions and
// deadlines out to the inbox, and issues best-effort task creations.
func (p *Processor) Process(input Input) (memstore.MeetingRecord, error) {
	title := input.Title
	if title == "" {
		title = "Untitled Meeting"
	}

	transcript := CoerceText(input.Transcript, "text")
	summary := CoerceText(input.Summary, "text", "summary")

	set := p.Extractor.Extract(strings.TrimSpace(transcript + "\n" + summary))

	// Vendor-supplied action items land in follow_ups, filtered to the
	// configured identity
	for _, item := range input.ActionItems {
		if text, ok := p.vendorItemForMe(item); ok {
			set.FollowUps = append(set.FollowUps, text)
		}
	}
	set.Dedupe()

	now := p.Now()
	record := memstore.MeetingRecord{
		Date:            now.Format("2006-01-02"),
		Time:            now.Format("15:04"),
		Title:           title,
		MeetingID:       input.ID,
		DurationMinutes: int(math.RoundToEven(input.DurationSeconds / 60)),
		Attendees:       input.Attendees,
		Signals:         set,
		Summary:         truncate(summary, summaryLimit),
		HasActions:      set.HasActions(),
	}
	if record.Attendees == nil {
		record.Attendees = []string{}
	}

	if wellness := signals.TeamWellness(transcript, input.Attendees, p.Roster); wellness != nil {
		record.TeamWellness = wellness
	}

	stored := record
	duplicate := false
	err := p.Store.Update(func(doc *memstore.Document) error {
		if doc.HasMeeting(input.ID) {
			duplicate = true
			for _, m := range doc.Meetings {
				if m.MeetingID == input.ID {
					stored = m
					break
				}
			}
			return nil
		}

		doc.AppendMeeting(record)

		for _, action := range set.ActionsForMe {
			doc.AppendInbox(memstore.InboxItem{
				Type:        memstore.InboxAction,
				FromMeeting: title,
				Date:        record.Date,
				Content:     action,
				Status:      memstore.StatusOpen,
			})
		}
		for _, followUp := range set.FollowUps {
			doc.AppendInbox(memstore.InboxItem{
				Type:        memstore.InboxAction,
				FromMeeting: title,
				Date:        record.Date,
				Content:     followUp,
				Status:      memstore.StatusOpen,
			})
		}
		for _, deadline := range set.Deadlines {
			doc.AppendInbox(memstore.InboxItem{
				Type:        memstore.InboxDeadline,
				FromMeeting: title,
				Date:        record.Date,
				Content:     deadline,
				Status:      memstore.StatusOpen,
			})
		}
		return nil
	})
	if err != nil {
		return memstore.MeetingRecord{}, fmt.Errorf("failed to store meeting: %w", err)
	}

	if duplicate {
		p.Log.Info("meeting already processed, skipping", "meeting_id", input.ID)
		return stored, nil
	}

	// Task creation is best effort: one failure neither aborts the batch
	// nor unwinds the stored record
	for _, action := range append(append([]string{}, set.ActionsForMe...), set.FollowUps...) {
		p.createTask(action, fmt.Sprintf("From meeting: %s (%s)", title, record.Date))
	}
	for _, deadline := range set.Deadlines {
		p.createTask(deadline, fmt.Sprintf("Deadline from: %s (%s)", title, record.Date))
	}

	return record, nil
}

// createTask issues one task creation, logging instead of failing.
func (p *Processor) createTask(title, notes string) {
	if _, err := p.Tasks.CreateTask(truncate(title, tasks.MaxTitleLength), notes); err != nil {
		p.Log.Warn("could not create task", "title", title, "error", err.Error())
	}
}

// vendorItemForMe decides whether one vendor action item belongs to the
// configured identity and returns its cleaned text. Plain strings carry no
// assignee metadata and are kept as ambiguous-but-relevant; structured items
// without an assignee are dropped as general. Items bearing structural
// noise (braces, the literal word "speaker") are parsing artifacts.
func (p *Processor) vendorItemForMe(item any) (string, bool) {
	var text string
	mine := false

	switch v := item.(type) {
	case string:
		if len(v) > minVendorItemLength {
			text = v
			mine = true
		}
	case map[string]any:
		text = firstString(v, "text", "content", "description")

		if assignee, ok := v["assignee"].(map[string]any); ok && len(assignee) > 0 {
			name := strings.ToLower(firstString(assignee, "name"))
			email := strings.ToLower(firstString(assignee, "email"))
			for _, alias := range p.Identity.Names {
				if alias != "" && strings.Contains(name, strings.ToLower(alias)) {
					mine = true
				}
			}
			for _, fragment := range p.Identity.Emails {
				if fragment != "" && strings.Contains(email, strings.ToLower(fragment)) {
					mine = true
				}
			}
		}
	}

	if !mine || text == "" {
		return "", false
	}
	if len(text) <= minVendorItemLength || len(text) >= maxVendorItemLength {
		return "", false
	}
	if strings.Contains(text, "{") || strings.Contains(strings.ToLower(text), "speaker") {
		return "", false
	}
	return strings.TrimSpace(text), true
}

// CoerceText flattens the shape-varying transcript/summary fields to a
// single string: strings pass through, lists join with spaces, objects
// yield the first of the preferred keys.
func CoerceText(v any, preferredKeys ...string) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, CoerceText(e, preferredKeys...))
		}
		return strings.Join(parts, " ")
	case []string:
		return strings.Join(t, " ")
	case map[string]any:
		if s := firstString(t, preferredKeys...); s != "" {
			return s
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// firstString returns the first of the keys holding a non-empty string.
func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
