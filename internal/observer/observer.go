// Package observer scans channel messages for signals worth remembering.
// Regular channels only yield an observation when a customer, project or
// theme matched; curated channels are the user's own forwards and are
// always persisted in full.
package observer

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"secondbrain/internal/config"
	"secondbrain/internal/curated"
	"secondbrain/internal/logging"
	"secondbrain/internal/memstore"
	"secondbrain/internal/tasks"
)

const snippetLimit = 200

// Message is one channel message to scan.
type Message struct {
	Channel string
	Text    string
	Note    string // optional user annotation, curated channels only
	TS      string // message timestamp, used for dedup
	Bot     bool
}

// Theme checks run in a fixed order so theme lists come out stable.
var themePatterns = []struct {
	name string
	re   *regexp.Regexp
}{
	{"customer_issue", regexp.MustCompile(`(issue|problem|bug|broken|not working|error)`)},
	{"feature_request", regexp.MustCompile(`(would be nice|feature request|can we add|should have)`)},
	{"positive_feedback", regexp.MustCompile(`(love|great|awesome|excited|happy)`)},
	{"deadline", regexp.MustCompile(`(deadline|due|by end of|eod|eow|asap)`)},
	{"blocker", regexp.MustCompile(`(blocked|waiting on|dependency|need.*before)`)},
}

// Scanner turns channel messages into stored observations.
// Not safe for concurrent use; run one scanner per polling loop.
type Scanner struct {
	Store     memstore.Store
	Customers []string
	Projects  []string
	Curated   map[string]bool
	Calendar  tasks.Calendar // optional
	Log       *logging.Logger
	Now       func() time.Time

	seen map[string]bool
}

// NewScanner wires a channel scanner from the config.
func NewScanner(store memstore.Store, cfg *config.Config) *Scanner {
	cur := make(map[string]bool, len(cfg.CuratedChannels))
	for _, ch := range cfg.CuratedChannels {
		cur[ch] = true
	}
	return &Scanner{
		Store:     store,
		Customers: cfg.CustomerKeywords,
		Projects:  cfg.ProjectKeywords,
		Curated:   cur,
		Log:       logging.Get(),
		Now:       time.Now,
		seen:      make(map[string]bool),
	}
}

// Insights is what one message yielded.
type Insights struct {
	Customers []string
	Projects  []string
	Themes    []string
}

// Empty reports whether nothing of interest matched.
func (i Insights) Empty() bool {
	return len(i.Customers) == 0 && len(i.Projects) == 0 && len(i.Themes) == 0
}

// ExtractInsights scans one message body for customer and project mentions
// and theme matches. Matching is case-insensitive substring or regex over
// the lowered text.
func (s *Scanner) ExtractInsights(text string) Insights {
	lower := strings.ToLower(text)
	in := Insights{Customers: []string{}, Projects: []string{}, Themes: []string{}}

	for _, customer := range s.Customers {
		if strings.Contains(lower, strings.ToLower(customer)) {
			in.Customers = append(in.Customers, customer)
		}
	}
	for _, project := range s.Projects {
		if strings.Contains(lower, strings.ToLower(project)) {
			in.Projects = append(in.Projects, project)
		}
	}
	for _, tp := range themePatterns {
		if tp.re.MatchString(lower) {
			in.Themes = append(in.Themes, tp.name)
		}
	}
	return in
}

// Observe processes one message. It returns the stored observation, or nil
// when the message carried nothing worth keeping.
func (s *Scanner) Observe(msg Message) (*memstore.Observation, error) {
	insights := s.ExtractInsights(msg.Text)
	isCurated := s.Curated[msg.Channel]
	if insights.Empty() && !isCurated {
		return nil, nil
	}

	now := s.Now()
	obs := memstore.Observation{
		ID:        uuid.New().String(),
		Date:      now.Format("2006-01-02"),
		Time:      now.Format("15:04"),
		Channel:   msg.Channel,
		Customers: insights.Customers,
		Projects:  insights.Projects,
		Themes:    insights.Themes,
	}

	var parsed curated.Parsed
	if isCurated {
		obs.Content = msg.Text
		obs.Curated = true
		parsed = curated.Parse(msg.Text, msg.Note, now)
		obs.Parsed = parsed
	} else {
		obs.Snippet = snippet(msg.Text)
	}

	err := s.Store.Update(func(doc *memstore.Document) error {
		doc.AppendObservation(obs)
		if item, ok := parsed.InboxItem(now); ok {
			doc.AppendInbox(item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if isCurated {
		s.scheduleMeeting(parsed)
	}
	return &obs, nil
}

// ScanBatch runs Observe over a batch, skipping bot messages and
// already-seen timestamps, and returns how many observations stuck.
func (s *Scanner) ScanBatch(msgs []Message) int {
	stored := 0
	for _, msg := range msgs {
		if msg.Bot {
			continue
		}
		if msg.TS != "" {
			if s.seen[msg.TS] {
				continue
			}
			s.seen[msg.TS] = true
		}
		obs, err := s.Observe(msg)
		if err != nil {
			s.Log.Error("could not store observation", "channel", msg.Channel, "error", err.Error())
			continue
		}
		if obs != nil {
			stored++
		}
	}
	return stored
}

// scheduleMeeting creates a calendar event for a parsed meeting when a
// concrete date came out of the parse. Best effort: calendar failures are
// logged, never propagated.
func (s *Scanner) scheduleMeeting(p curated.Parsed) {
	if s.Calendar == nil || !p.HasMeeting || p.MeetingDate == "" {
		return
	}
	day, err := time.ParseInLocation("2006-01-02", p.MeetingDate, time.Local)
	if err != nil {
		return
	}

	title := "Sync"
	if len(p.People) > 0 {
		title = "Sync with " + strings.Join(p.People, ", ")
	}
	if _, found, err := s.Calendar.FindEvent(title, 60); err == nil && found {
		return
	}

	duration := p.DurationMinutes
	if duration == 0 {
		duration = 30
	}
	start := day.Add(10 * time.Hour) // default mid-morning slot
	if _, err := s.Calendar.CreateEvent(title, start, duration, strings.Join(p.Topics, "; ")); err != nil {
		s.Log.Warn("could not create calendar event", "title", title, "error", err.Error())
	}
}

func snippet(text string) string {
	if len(text) > snippetLimit {
		return text[:snippetLimit] + "..."
	}
	return text
}
