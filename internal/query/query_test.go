package query

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secondbrain/internal/entities"
	"secondbrain/internal/memstore"
	"secondbrain/internal/signals"
)

func newTestFacade(t *testing.T) (*Facade, *memstore.FileStore, *entities.FileStore) {
	t.Helper()
	dir := t.TempDir()

	memory, err := memstore.NewFileStore(filepath.Join(dir, "memory.json"), memstore.CreateIfMissing())
	require.NoError(t, err)
	require.NoError(t, memory.Open())
	t.Cleanup(func() { memory.Close() })

	ents, err := entities.NewFileStore(filepath.Join(dir, "entities.json"), entities.CreateIfMissing())
	require.NoError(t, err)
	require.NoError(t, ents.Open())
	t.Cleanup(func() { ents.Close() })

	f := NewFacade(memory, ents)
	f.Now = func() time.Time { return time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC) }
	return f, memory, ents
}

func TestInboxCompletion(t *testing.T) {
	f, memory, _ := newTestFacade(t)

	require.NoError(t, memory.Update(func(doc *memstore.Document) error {
		doc.AppendInbox(memstore.InboxItem{Type: memstore.InboxAction, Content: "a", Status: memstore.StatusOpen})
		doc.AppendInbox(memstore.InboxItem{Type: memstore.InboxAction, Content: "b", Status: memstore.StatusDone})
		doc.AppendInbox(memstore.InboxItem{Type: memstore.InboxDeadline, Content: "c", Status: memstore.StatusOpen})
		return nil
	}))

	open, err := f.OpenInbox(memstore.StatusOpen)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, 0, open[0].Index)
	assert.Equal(t, 2, open[1].Index)

	all, err := f.OpenInbox("")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, f.CompleteInbox(open[0].Index))

	open, err = f.OpenInbox(memstore.StatusOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "c", open[0].Content)

	// Done stays done
	err = f.CompleteInbox(1)
	assert.Error(t, err)

	err = f.CompleteInbox(99)
	assert.Error(t, err)
}

func TestSummarizeWeek(t *testing.T) {
	f, memory, _ := newTestFacade(t)

	require.NoError(t, memory.Update(func(doc *memstore.Document) error {
		// The oldest two fall outside the trailing window; their signals
		// must not leak into the aggregates.
		doc.AppendMeeting(memstore.MeetingRecord{MeetingID: "old-1", Title: "sync", Signals: signals.Set{
			CustomersMentioned: []string{"stale co"}, ProjectsMentioned: []string{"legacy"}}})
		doc.AppendMeeting(memstore.MeetingRecord{MeetingID: "old-2", Title: "sync"})
		for i := 0; i < 8; i++ {
			doc.AppendMeeting(memstore.MeetingRecord{MeetingID: "m", Title: "sync"})
		}
		doc.AppendMeeting(memstore.MeetingRecord{MeetingID: "m-acme", Title: "renewal", Signals: signals.Set{
			CustomersMentioned: []string{"acme"},
			ProjectsMentioned:  []string{"embed"},
			Decisions:          []string{"ship the widget"},
		}})
		doc.AppendMeeting(memstore.MeetingRecord{MeetingID: "m-both", Title: "roadmap", Signals: signals.Set{
			CustomersMentioned: []string{"acme", "bigco"},
			ProjectsMentioned:  []string{"embed"},
			Decisions:          []string{"keep annual billing"},
		}})
		doc.AppendInbox(memstore.InboxItem{Type: memstore.InboxAction, Content: "send the deck", Status: memstore.StatusOpen})
		doc.AppendInbox(memstore.InboxItem{Type: memstore.InboxAction, Content: "send the deck", Status: memstore.StatusOpen})
		doc.AppendInbox(memstore.InboxItem{Type: memstore.InboxDeadline, Content: "friday", Status: memstore.StatusOpen})
		doc.AppendInbox(memstore.InboxItem{Type: memstore.InboxAction, Content: "closed already", Status: memstore.StatusDone})
		return nil
	}))

	week, err := f.SummarizeWeek()
	require.NoError(t, err)

	assert.Len(t, week.Meetings, 10)
	assert.Equal(t, []string{"send the deck"}, week.OpenActions) // duplicate collapsed
	assert.Equal(t, []string{"friday"}, week.Deadlines)
	assert.Equal(t, []string{"acme", "bigco"}, week.CustomersDiscussed)
	assert.Equal(t, []string{"embed"}, week.ProjectsDiscussed)
	assert.Equal(t, []string{"ship the widget", "keep annual billing"}, week.KeyDecisions)
}

func TestCustomerContext(t *testing.T) {
	f, memory, ents := newTestFacade(t)

	require.NoError(t, entities.UpdateCustomer(ents, "acme", map[string]string{"name": "Acme Corp"}, f.Now()))
	require.NoError(t, f.LogIncident("inc-1", "export outage", []string{"Acme Corp", "BigCo"}, "restarted workers"))
	require.NoError(t, f.LogIncident("inc-2", "unrelated", []string{"Other"}, ""))
	require.NoError(t, memory.Update(func(doc *memstore.Document) error {
		doc.CustomerPatterns = append(doc.CustomerPatterns, memstore.CustomerPattern{
			Customer: "acme", RecentTickets: 4, Sentiment: memstore.SentimentConcerned,
		})
		return nil
	}))

	ctx, err := f.Context("acme")
	require.NoError(t, err)

	require.NotNil(t, ctx.Entity)
	assert.Equal(t, "Acme Corp", ctx.Entity.Name)

	require.Len(t, ctx.Incidents, 1)
	assert.Equal(t, "inc-1", ctx.Incidents[0].ID)
	assert.Equal(t, "2024-03-04", ctx.Incidents[0].Date)

	require.Len(t, ctx.Patterns, 1)
	assert.Equal(t, memstore.SentimentConcerned, ctx.Patterns[0].Sentiment)
}

func TestSearchObservations(t *testing.T) {
	f, memory, _ := newTestFacade(t)

	require.NoError(t, memory.Update(func(doc *memstore.Document) error {
		doc.AppendObservation(memstore.Observation{Snippet: "Acme embed rollout is on track"})
		doc.AppendObservation(memstore.Observation{Content: "curated note about the EMBED player", Curated: true})
		doc.AppendObservation(memstore.Observation{Snippet: "nothing relevant"})
		return nil
	}))

	results, err := f.SearchObservations("embed")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSummarizeAndThemes(t *testing.T) {
	f, memory, ents := newTestFacade(t)

	require.NoError(t, entities.UpdateCustomer(ents, "acme", nil, f.Now()))
	require.NoError(t, f.LogDecision("pricing", "keep annual billing", "simpler renewals"))
	require.NoError(t, memory.Update(func(doc *memstore.Document) error {
		doc.AppendObservation(memstore.Observation{Channel: "support-desk", Themes: []string{"customer_issue", "deadline"}, Snippet: "a"})
		doc.AppendObservation(memstore.Observation{Channel: "support-desk", Themes: []string{"customer_issue"}, Snippet: "b"})
		doc.AppendObservation(memstore.Observation{Channel: "product", Themes: []string{"feature_request"}, Snippet: "c"})
		return nil
	}))

	s, err := f.Summarize()
	require.NoError(t, err)
	assert.Equal(t, 1, s.Decisions)
	assert.Equal(t, 3, s.Observations)
	assert.Equal(t, 1, s.Entities)
	require.NotEmpty(t, s.TopThemes)
	assert.Equal(t, Count{Name: "customer_issue", Count: 2}, s.TopThemes[0])
	assert.Equal(t, Count{Name: "support-desk", Count: 2}, s.TopChannels[0])

	themes, err := f.ThemeBreakdown()
	require.NoError(t, err)
	require.NotEmpty(t, themes)
	assert.Equal(t, "customer_issue", themes[0].Name)
	assert.Equal(t, 2, themes[0].Count)
	assert.Equal(t, []string{"a", "b"}, themes[0].Examples)
}

func TestRecentObservationsNewestFirst(t *testing.T) {
	f, memory, _ := newTestFacade(t)

	require.NoError(t, memory.Update(func(doc *memstore.Document) error {
		doc.AppendObservation(memstore.Observation{Snippet: "first"})
		doc.AppendObservation(memstore.Observation{Snippet: "second"})
		doc.AppendObservation(memstore.Observation{Snippet: "third"})
		return nil
	}))

	recent, err := f.RecentObservations(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "third", recent[0].Snippet)
	assert.Equal(t, "second", recent[1].Snippet)
}
