package meetings

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secondbrain/internal/config"
	"secondbrain/internal/logging"
	"secondbrain/internal/memstore"
	"secondbrain/internal/signals"
	"secondbrain/internal/tasks"
)

func init() {
	logging.Init(logging.DevNull())
}

func newTestProcessor(t *testing.T, manager tasks.Manager) (*Processor, *memstore.FileStore) {
	t.Helper()

	store, err := memstore.NewFileStore(filepath.Join(t.TempDir(), "memory.json"), memstore.CreateIfMissing())
	require.NoError(t, err)
	require.NoError(t, store.Open())
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	extractor := signals.NewExtractor(signals.Context{
		SelfNames:       cfg.Identity.Names,
		CustomerNames:   cfg.CustomerKeywords,
		ProjectKeywords: cfg.ProjectKeywords,
	})

	proc := NewProcessor(store, manager, extractor, cfg)
	proc.Now = func() time.Time { return time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC) }
	return proc, store
}

func TestProcessMeeting(t *testing.T) {
	recorder := tasks.NewRecorder()
	proc, store := newTestProcessor(t, recorder)

	record, err := proc.Process(Input{
		ID:              "mt-1",
		Title:           "Acme renewal sync",
		Transcript:      "lucas, can you send the acme contract by friday.",
		Summary:         "Renewal discussion with acme.",
		Attendees:       []string{"lucas", "jane"},
		DurationSeconds: 1830,
		ActionItems: []any{
			"Share the updated pricing sheet",
			map[string]any{
				"text":     "Send the contract",
				"assignee": map[string]any{"name": "Lucas Willett"},
			},
			map[string]any{
				"text":     "General team cleanup item",
				"assignee": map[string]any{"name": "Jane Doe"},
			},
			map[string]any{"text": "No assignee, so not mine"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-04", record.Date)
	assert.Equal(t, "14:30", record.Time)
	assert.Equal(t, 30, record.DurationMinutes) // 30.5 min rounds to even
	assert.True(t, record.HasActions)

	assert.Equal(t, []string{"send the acme contract by friday"}, record.Signals.ActionsForMe)
	assert.Equal(t, []string{"friday"}, record.Signals.Deadlines)
	assert.Contains(t, record.Signals.CustomersMentioned, "acme")

	// The unassigned plain string and the item assigned by name are kept;
	// items assigned to someone else or carrying no assignee are not
	assert.Equal(t, []string{"Share the updated pricing sheet", "Send the contract"}, record.Signals.FollowUps)

	doc, err := store.Load()
	require.NoError(t, err)
	require.Len(t, doc.Meetings, 1)

	// 1 action + 2 follow-ups + 1 deadline
	require.Len(t, doc.Inbox, 4)
	assert.Equal(t, memstore.InboxAction, doc.Inbox[0].Type)
	assert.Equal(t, memstore.InboxDeadline, doc.Inbox[3].Type)
	for _, item := range doc.Inbox {
		assert.Equal(t, memstore.StatusOpen, item.Status)
		assert.Equal(t, "Acme renewal sync", item.FromMeeting)
	}

	created := recorder.Tasks()
	require.Len(t, created, 4)
	assert.Contains(t, created[0].Notes, "From meeting: Acme renewal sync (2024-03-04)")
	assert.Contains(t, created[3].Notes, "Deadline from:")
}

func TestProcessMeetingDurationRounding(t *testing.T) {
	// Half-minute durations round to the nearest even minute
	for _, tc := range []struct {
		seconds float64
		minutes int
	}{
		{1830, 30},
		{1770, 30},
		{2130, 36},
		{1850, 31},
	} {
		proc, _ := newTestProcessor(t, tasks.NewRecorder())
		record, err := proc.Process(Input{ID: "mt-round", Transcript: "status update", DurationSeconds: tc.seconds})
		require.NoError(t, err)
		assert.Equal(t, tc.minutes, record.DurationMinutes, "%v seconds", tc.seconds)
	}
}

func TestProcessMeetingIdempotent(t *testing.T) {
	proc, store := newTestProcessor(t, tasks.NewRecorder())

	input := Input{
		ID:         "mt-dup",
		Title:      "Planning",
		Transcript: "lucas, can you review the rollout checklist.",
	}

	first, err := proc.Process(input)
	require.NoError(t, err)
	second, err := proc.Process(input)
	require.NoError(t, err)

	assert.Equal(t, first.MeetingID, second.MeetingID)
	assert.Equal(t, first.Title, second.Title)

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, doc.Meetings, 1)
	assert.Len(t, doc.Inbox, 1) // no duplicate fan-out
}

func TestProcessMeetingVendorNoiseRejected(t *testing.T) {
	proc, _ := newTestProcessor(t, tasks.NewRecorder())

	record, err := proc.Process(Input{
		ID:         "mt-noise",
		Title:      "Noise check",
		Transcript: "nothing actionable here.",
		ActionItems: []any{
			"too short",
			`{"broken": "json fragment that leaked in}`,
			"Speaker 2 said something about the roadmap",
			strings.Repeat("x", 600),
			map[string]any{
				"text":     "Check the {template} output",
				"assignee": map[string]any{"name": "lucas"},
			},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, record.Signals.FollowUps)
	assert.False(t, record.HasActions)
}

func TestProcessMeetingAssigneeEmailMatch(t *testing.T) {
	proc, _ := newTestProcessor(t, tasks.NewRecorder())

	record, err := proc.Process(Input{
		ID:    "mt-email",
		Title: "Email match",
		ActionItems: []any{
			map[string]any{
				"content":  "Confirm the migration window",
				"assignee": map[string]any{"email": "lucas.willett@visitingmedia.com"},
			},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Confirm the migration window"}, record.Signals.FollowUps)
}

func TestProcessMeetingShapeNormalization(t *testing.T) {
	proc, store := newTestProcessor(t, tasks.NewRecorder())

	record, err := proc.Process(Input{
		ID: "mt-shapes",
		Transcript: []any{
			map[string]any{"text": "lucas, can you draft the beta comms."},
			map[string]any{"text": "sounds good."},
		},
		Summary: map[string]any{"summary": "Beta launch prep."},
	})
	require.NoError(t, err)

	assert.Equal(t, "Untitled Meeting", record.Title)
	assert.Equal(t, []string{"draft the beta comms"}, record.Signals.ActionsForMe)
	assert.Equal(t, "Beta launch prep.", record.Summary)

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "Untitled Meeting", doc.Meetings[0].Title)
}

func TestProcessMeetingSummaryTruncated(t *testing.T) {
	proc, _ := newTestProcessor(t, tasks.NewRecorder())

	record, err := proc.Process(Input{
		ID:      "mt-long",
		Title:   "Long summary",
		Summary: strings.Repeat("a", 900),
	})
	require.NoError(t, err)
	assert.Len(t, record.Summary, 500)
}

func TestProcessMeetingWellness(t *testing.T) {
	proc, _ := newTestProcessor(t, tasks.NewRecorder())

	record, err := proc.Process(Input{
		ID:         "mt-wellness",
		Title:      "1:1",
		Transcript: "christian: i'm overwhelmed and swamped. worried and frustrated about the backlog.",
		Attendees:  []string{"christian"},
	})
	require.NoError(t, err)

	require.Contains(t, record.TeamWellness, "christian")
	assert.Equal(t, signals.MoodStressed, record.TeamWellness["christian"].Sentiment)
}

func TestProcessMeetingTaskFailureIsNotFatal(t *testing.T) {
	proc, store := newTestProcessor(t, tasks.FailingManager{})

	_, err := proc.Process(Input{
		ID:         "mt-fail",
		Title:      "Failure tolerance",
		Transcript: "lucas, can you send the onboarding doc.",
	})
	require.NoError(t, err)

	doc, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, doc.Meetings, 1)
}

func TestCoerceText(t *testing.T) {
	assert.Equal(t, "", CoerceText(nil))
	assert.Equal(t, "plain", CoerceText("plain"))
	assert.Equal(t, "a b", CoerceText([]any{"a", "b"}))
	assert.Equal(t, "x", CoerceText(map[string]any{"text": "x"}, "text"))
	assert.Equal(t, "joined segments", CoerceText([]any{
		map[string]any{"text": "joined"},
		map[string]any{"text": "segments"},
	}, "text"))
}
