package tasks

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCreateAndComplete(t *testing.T) {
	r := NewRecorder()

	id, err := r.CreateTask("send the deck", "From meeting: sync (2024-03-04)")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	require.NoError(t, r.CompleteTask(id))

	recorded := r.Tasks()
	require.Len(t, recorded, 1)
	assert.True(t, recorded[0].Done)
	assert.Equal(t, "send the deck", recorded[0].Title)
}

func TestRecorderRejectsEmptyTitle(t *testing.T) {
	_, err := NewRecorder().CreateTask("", "notes")
	assert.Error(t, err)
}

func TestRecorderTruncatesTitle(t *testing.T) {
	r := NewRecorder()
	_, err := r.CreateTask(strings.Repeat("a", MaxTitleLength+50), "")
	require.NoError(t, err)
	assert.Len(t, r.Tasks()[0].Title, MaxTitleLength)
}

func TestRecorderCompleteUnknown(t *testing.T) {
	assert.Error(t, NewRecorder().CompleteTask("missing"))
}

func TestMemoryCalendar(t *testing.T) {
	c := NewMemoryCalendar()

	start := time.Now().Add(48 * time.Hour)
	created, err := c.CreateEvent("Sync with Hannah", start, 30, "automation scope")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	ev, found, err := c.FindEvent("hannah", 7)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, created.ID, ev.ID)

	_, found, err = c.FindEvent("nobody", 7)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCalendarWindowBounds(t *testing.T) {
	clock := func() time.Time { return time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC) }
	c := NewMemoryCalendarAt(clock)

	_, err := c.CreateEvent("Sync with Hannah", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), 30, "")
	require.NoError(t, err)
	_, err = c.CreateEvent("Sync with Gino", time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC), 30, "")
	require.NoError(t, err)

	// Already started
	_, found, err := c.FindEvent("hannah", 7)
	require.NoError(t, err)
	assert.False(t, found)

	// Beyond the lookahead window
	_, found, err = c.FindEvent("gino", 7)
	require.NoError(t, err)
	assert.False(t, found)

	ev, found, err := c.FindEvent("gino", 30)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Sync with Gino", ev.Title)
}
