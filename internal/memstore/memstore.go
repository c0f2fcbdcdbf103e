package memstore

import "secondbrain/internal/signals"

// Retention limits for the bounded lists. Oldest entries are evicted first;
// the newest append is never dropped.
const (
	MaxMeetings     = 50
	MaxCaptures     = 50
	MaxObservations = 100
	MaxInbox        = 100
)

// Inbox item types
const (
	InboxAction   = "action"
	InboxDeadline = "deadline"
	InboxMeeting  = "meeting"
)

// Inbox statuses. Open transitions to done, never back.
const (
	StatusOpen = "open"
	StatusDone = "done"
)

// Customer pattern sentiments
const (
	SentimentNeutral    = "neutral"
	SentimentConcerned  = "concerned"
	SentimentFrustrated = "frustrated"
)

// Incident represents a production incident worth remembering.
type Incident struct {
	ID                string   `json:"id"`
	Date              string   `json:"date"`
	Summary           string   `json:"summary"`
	AffectedCustomers []string `json:"affected_customers"`
	Resolution        string   `json:"resolution,omitempty"`
	Lessons           string   `json:"lessons,omitempty"`
}

// Decision records a decision with its topic and optional rationale.
type Decision struct {
	Date      string `json:"date"`
	Topic     string `json:"topic"`
	Decision  string `json:"decision"`
	Rationale string `json:"rationale,omitempty"`
}

// CustomerPattern tracks rolling support posture for one account.
type CustomerPattern struct {
	Customer      string `json:"customer"`
	LastUpdated   string `json:"last_updated"`
	RecentTickets int    `json:"recent_tickets"`
	Sentiment     string `json:"sentiment"`
	Notes         string `json:"notes,omitempty"`
}

// Observation is one scanned channel message that carried a signal, or a
// curated message persisted in full.
type Observation struct {
	ID        string   `json:"id,omitempty"`
	Date      string   `json:"date"`
	Time      string   `json:"time"`
	Channel   string   `json:"channel"`
	Customers []string `json:"customers"`
	Projects  []string `json:"projects"`
	Themes    []string `json:"themes"`
	Snippet   string   `json:"snippet,omitempty"`
	Content   string   `json:"content,omitempty"` // full text, curated only
	Curated   bool     `json:"curated,omitempty"`
	Parsed    any      `json:"parsed,omitempty"`
}

// Text returns whichever of content/snippet is populated.
func (o Observation) Text() string {
	if o.Content != "" {
		return o.Content
	}
	return o.Snippet
}

// CaptureItem is one classified line of a brain dump.
type CaptureItem struct {
	Raw          string `json:"raw"`
	Type         string `json:"type"` // "note", "task" or "idea"
	Content      string `json:"content"`
	DueHint      string `json:"due_hint,omitempty"`
	GoogleTaskID string `json:"google_task_id,omitempty"`
}

// Capture is one processed brain-dump block.
type Capture struct {
	ID    string        `json:"id,omitempty"`
	Date  string        `json:"date"`
	User  string        `json:"user"`
	Items []CaptureItem `json:"items"`
}

// MeetingRecord is the persisted outcome of processing one meeting.
type MeetingRecord struct {
	Date            string                      `json:"date"`
	Time            string                      `json:"time"`
	Title           string                      `json:"title"`
	MeetingID       string                      `json:"meeting_id"`
	DurationMinutes int                         `json:"duration_minutes"`
	Attendees       []string                    `json:"attendees"`
	Signals         signals.Set                 `json:"signals"`
	Summary         string                      `json:"summary"`
	HasActions      bool                        `json:"has_actions"`
	TeamWellness    map[string]signals.Wellness `json:"team_wellness,omitempty"`
}

// InboxItem is an open action or deadline pending completion.
type InboxItem struct {
	Type        string `json:"type"`
	FromMeeting string `json:"from_meeting"`
	Date        string `json:"date"`
	Content     string `json:"content"`
	Status      string `json:"status"`
}

// Document is the whole shared memory: every bot reads and writes this one
// JSON object.
type Document struct {
	Incidents        []Incident        `json:"incidents"`
	Decisions        []Decision        `json:"decisions"`
	CustomerPatterns []CustomerPattern `json:"customer_patterns"`
	Observations     []Observation     `json:"observations"`
	Captures         []Capture         `json:"captures"`
	Meetings         []MeetingRecord   `json:"meetings"`
	Inbox            []InboxItem       `json:"inbox"`
}

// NewDocument returns an empty document with all lists initialized, so a
// fresh store marshals to the same shape as a used one.
func NewDocument() *Document {
	return &Document{
		Incidents:        []Incident{},
		Decisions:        []Decision{},
		CustomerPatterns: []CustomerPattern{},
		Observations:     []Observation{},
		Captures:         []Capture{},
		Meetings:         []MeetingRecord{},
		Inbox:            []InboxItem{},
	}
}

// appendBounded appends rec and evicts from the front when the list exceeds
// max.
func appendBounded[T any](list []T, rec T, max int) []T {
	list = append(list, rec)
	if len(list) > max {
		list = list[len(list)-max:]
	}
	return list
}

// AppendMeeting appends with retention trimming.
func (d *Document) AppendMeeting(m MeetingRecord) {
	d.Meetings = appendBounded(d.Meetings, m, MaxMeetings)
}

// AppendCapture appends with retention trimming.
func (d *Document) AppendCapture(c Capture) {
	d.Captures = appendBounded(d.Captures, c, MaxCaptures)
}

// AppendObservation appends with retention trimming.
func (d *Document) AppendObservation(o Observation) {
	d.Observations = appendBounded(d.Observations, o, MaxObservations)
}

// AppendInbox appends with retention trimming.
func (d *Document) AppendInbox(i InboxItem) {
	d.Inbox = appendBounded(d.Inbox, i, MaxInbox)
}

// HasMeeting reports whether a meeting with the given vendor ID is already
// stored. The meeting ID is the idempotency key for reprocessing.
func (d *Document) HasMeeting(meetingID string) bool {
	if meetingID == "" {
		return false
	}
	for _, m := range d.Meetings {
		if m.MeetingID == meetingID {
			return true
		}
	}
	return false
}

// Store is the persistence interface for the shared memory document.
// Update is the load-modify-save critical section every writer must use.
type Store interface {
	Open() error                          // Open/Load datastore
	Load() (*Document, error)             // Snapshot of the current document
	Save(doc *Document) error             // Replace the document
	Update(fn func(*Document) error) error // Atomic load-modify-save
	Flush() error                         // Write any pending data to storage
	Close() error                         // Close storage (files/db connections)
	Info() (map[string]string, error)     // Implementation specific information
}
