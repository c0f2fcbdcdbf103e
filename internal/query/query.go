// Package query is the read side of the shared memory: summaries, searches
// and customer context for the CLI and the briefing, plus the inbox
// completion and incident/decision logging helpers.
package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"secondbrain/internal/entities"
	"secondbrain/internal/memstore"
)

// Facade reads across the memory and entity stores.
type Facade struct {
	Memory   memstore.Store
	Entities entities.Store
	Now      func() time.Time
}

// NewFacade wires a facade over the two stores.
func NewFacade(memory memstore.Store, ents entities.Store) *Facade {
	return &Facade{Memory: memory, Entities: ents, Now: time.Now}
}

// InboxEntry pairs an inbox item with its position in the document, so a
// caller can complete the exact item it displayed.
type InboxEntry struct {
	Index int
	memstore.InboxItem
}

// OpenInbox returns inbox items with the given status, or all items when
// status is empty. Positions refer to the full inbox list.
func (f *Facade) OpenInbox(status string) ([]InboxEntry, error) {
	doc, err := f.Memory.Load()
	if err != nil {
		return nil, err
	}
	var entries []InboxEntry
	for i, item := range doc.Inbox {
		if status == "" || item.Status == status {
			entries = append(entries, InboxEntry{Index: i, InboxItem: item})
		}
	}
	return entries, nil
}

// CompleteInbox marks the inbox item at index done. Only open items can be
// completed; done items stay done.
func (f *Facade) CompleteInbox(index int) error {
	return f.Memory.Update(func(doc *memstore.Document) error {
		if index < 0 || index >= len(doc.Inbox) {
			return fmt.Errorf("no inbox item at position %d", index)
		}
		if doc.Inbox[index].Status != memstore.StatusOpen {
			return fmt.Errorf("inbox item %d is not open", index)
		}
		doc.Inbox[index].Status = memstore.StatusDone
		return nil
	})
}

// WeekSummary is the recent-activity digest.
type WeekSummary struct {
	Meetings           []memstore.MeetingRecord
	OpenActions        []string
	Deadlines          []string
	CustomersDiscussed []string
	ProjectsDiscussed  []string
	KeyDecisions       []string
}

// SummarizeWeek digests the last 10 meetings plus the open inbox, with
// duplicate contents collapsed in arrival order. Customers and projects
// aggregate deduped across the meetings' signals; decisions keep every
// occurrence in meeting order.
func (f *Facade) SummarizeWeek() (WeekSummary, error) {
	doc, err := f.Memory.Load()
	if err != nil {
		return WeekSummary{}, err
	}

	meetings := doc.Meetings
	if len(meetings) > 10 {
		meetings = meetings[len(meetings)-10:]
	}

	summary := WeekSummary{Meetings: meetings}
	customers := map[string]bool{}
	projects := map[string]bool{}
	for _, m := range meetings {
		for _, c := range m.Signals.CustomersMentioned {
			if !customers[c] {
				customers[c] = true
				summary.CustomersDiscussed = append(summary.CustomersDiscussed, c)
			}
		}
		for _, pr := range m.Signals.ProjectsMentioned {
			if !projects[pr] {
				projects[pr] = true
				summary.ProjectsDiscussed = append(summary.ProjectsDiscussed, pr)
			}
		}
		summary.KeyDecisions = append(summary.KeyDecisions, m.Signals.Decisions...)
	}

	seen := map[string]bool{}
	for _, item := range doc.Inbox {
		if item.Status != memstore.StatusOpen || seen[item.Content] {
			continue
		}
		seen[item.Content] = true
		switch item.Type {
		case memstore.InboxDeadline:
			summary.Deadlines = append(summary.Deadlines, item.Content)
		default:
			summary.OpenActions = append(summary.OpenActions, item.Content)
		}
	}
	return summary, nil
}

// CustomerContext is everything remembered about one customer.
type CustomerContext struct {
	Entity    *entities.Profile
	Incidents []memstore.Incident
	Patterns  []memstore.CustomerPattern
}

// Context gathers the customer's entity profile plus every incident and
// pattern naming them. Matching is case-insensitive substring.
func (f *Facade) Context(customerName string) (CustomerContext, error) {
	doc, err := f.Memory.Load()
	if err != nil {
		return CustomerContext{}, err
	}
	ents, err := f.Entities.Load()
	if err != nil {
		return CustomerContext{}, err
	}

	ctx := CustomerContext{}
	needle := strings.ToLower(customerName)

	if profile, ok := ents.FindCustomer(customerName); ok {
		ctx.Entity = &profile
	}
	for _, inc := range doc.Incidents {
		for _, affected := range inc.AffectedCustomers {
			if strings.Contains(strings.ToLower(affected), needle) {
				ctx.Incidents = append(ctx.Incidents, inc)
				break
			}
		}
	}
	for _, pat := range doc.CustomerPatterns {
		if strings.Contains(strings.ToLower(pat.Customer), needle) {
			ctx.Patterns = append(ctx.Patterns, pat)
		}
	}
	return ctx, nil
}

// SearchObservations returns observations whose text contains the term,
// case-insensitively, oldest first.
func (f *Facade) SearchObservations(term string) ([]memstore.Observation, error) {
	doc, err := f.Memory.Load()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	var results []memstore.Observation
	for _, obs := range doc.Observations {
		if strings.Contains(strings.ToLower(obs.Text()), needle) {
			results = append(results, obs)
		}
	}
	return results, nil
}

// RecentObservations returns the n newest observations, newest first.
func (f *Facade) RecentObservations(n int) ([]memstore.Observation, error) {
	doc, err := f.Memory.Load()
	if err != nil {
		return nil, err
	}
	obs := doc.Observations
	if len(obs) > n {
		obs = obs[len(obs)-n:]
	}
	out := make([]memstore.Observation, 0, len(obs))
	for i := len(obs) - 1; i >= 0; i-- {
		out = append(out, obs[i])
	}
	return out, nil
}

// Count is a name with how often it appeared.
type Count struct {
	Name  string
	Count int
}

// Summary is the top-level memory overview.
type Summary struct {
	Incidents    int
	Patterns     int
	Decisions    int
	Observations int
	Entities     int
	TopThemes    []Count
	TopChannels  []Count
}

// Summarize counts everything and ranks the top 5 themes and channels.
func (f *Facade) Summarize() (Summary, error) {
	doc, err := f.Memory.Load()
	if err != nil {
		return Summary{}, err
	}
	ents, err := f.Entities.Load()
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Incidents:    len(doc.Incidents),
		Patterns:     len(doc.CustomerPatterns),
		Decisions:    len(doc.Decisions),
		Observations: len(doc.Observations),
		Entities:     len(ents.Customers) + len(ents.Projects),
	}

	themes := map[string]int{}
	channels := map[string]int{}
	for _, obs := range doc.Observations {
		for _, t := range obs.Themes {
			themes[t]++
		}
		ch := obs.Channel
		if ch == "" {
			ch = "unknown"
		}
		channels[ch]++
	}
	s.TopThemes = topCounts(themes, 5)
	s.TopChannels = topCounts(channels, 5)
	return s, nil
}

// ThemeDetail is one theme with sample snippets.
type ThemeDetail struct {
	Name     string
	Count    int
	Examples []string
}

// ThemeBreakdown ranks every theme by frequency with up to three example
// snippets each, the examples capped at 100 characters.
func (f *Facade) ThemeBreakdown() ([]ThemeDetail, error) {
	doc, err := f.Memory.Load()
	if err != nil {
		return nil, err
	}

	details := map[string]*ThemeDetail{}
	for _, obs := range doc.Observations {
		for _, t := range obs.Themes {
			d, ok := details[t]
			if !ok {
				d = &ThemeDetail{Name: t}
				details[t] = d
			}
			d.Count++
			if len(d.Examples) < 3 {
				text := obs.Text()
				if len(text) > 100 {
					text = text[:100]
				}
				d.Examples = append(d.Examples, text)
			}
		}
	}

	out := make([]ThemeDetail, 0, len(details))
	for _, d := range details {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// LogIncident appends an incident record dated today.
func (f *Facade) LogIncident(id, summary string, affected []string, resolution string) error {
	if affected == nil {
		affected = []string{}
	}
	return f.Memory.Update(func(doc *memstore.Document) error {
		doc.Incidents = append(doc.Incidents, memstore.Incident{
			ID:                id,
			Date:              f.Now().Format("2006-01-02"),
			Summary:           summary,
			AffectedCustomers: affected,
			Resolution:        resolution,
		})
		return nil
	})
}

// LogDecision appends a decision record dated today.
func (f *Facade) LogDecision(topic, decision, rationale string) error {
	return f.Memory.Update(func(doc *memstore.Document) error {
		doc.Decisions = append(doc.Decisions, memstore.Decision{
			Date:      f.Now().Format("2006-01-02"),
			Topic:     topic,
			Decision:  decision,
			Rationale: rationale,
		})
		return nil
	})
}

func topCounts(m map[string]int, n int) []Count {
	out := make([]Count, 0, len(m))
	for name, count := range m {
		out = append(out, Count{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
