package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExtractor() *Extractor {
	return NewExtractor(Context{
		SelfNames:       []string{"lucas", "luke", "support team"},
		CustomerNames:   []string{"acme", "bigco"},
		ProjectKeywords: []string{"embed", "migration"},
	})
}

func TestExtractCategories(t *testing.T) {
	e := testExtractor()

	transcript := "Lucas, can you send the acme contract by friday. " +
		"We decided to ship the embed widget. " +
		"I'll circle back on pricing. " +
		"Blocked on legal review. " +
		"Next steps: update the migration runbook."

	set := e.Extract(transcript)

	t.Run("actions", func(t *testing.T) {
		require.Len(t, set.ActionsForMe, 1)
		assert.Equal(t, "send the acme contract by friday", set.ActionsForMe[0])
	})

	t.Run("decisions", func(t *testing.T) {
		assert.Contains(t, set.Decisions, "ship the embed widget")
	})

	t.Run("commitments", func(t *testing.T) {
		assert.Contains(t, set.Commitments, "pricing")
	})

	t.Run("deadlines", func(t *testing.T) {
		assert.Contains(t, set.Deadlines, "friday")
	})

	t.Run("blockers", func(t *testing.T) {
		assert.Contains(t, set.Blockers, "legal review")
	})

	t.Run("follow ups", func(t *testing.T) {
		assert.Contains(t, set.FollowUps, "update the migration runbook")
	})

	t.Run("mentions", func(t *testing.T) {
		assert.Equal(t, []string{"acme"}, set.CustomersMentioned)
		assert.Equal(t, []string{"embed", "migration"}, set.ProjectsMentioned)
	})

	assert.True(t, set.HasActions())
}

func TestExtractEmptyInput(t *testing.T) {
	set := testExtractor().Extract("")

	assert.NotNil(t, set.ActionsForMe)
	assert.Empty(t, set.ActionsForMe)
	assert.NotNil(t, set.Deadlines)
	assert.Empty(t, set.Deadlines)
	assert.False(t, set.HasActions())
}

func TestExtractMinLength(t *testing.T) {
	// "go" is below the minimum span length and must be dropped
	set := testExtractor().Extract("luke, can you go.")
	assert.Empty(t, set.ActionsForMe)
}

func TestExtractDedup(t *testing.T) {
	text := "Lucas, can you send the deck. Lucas, can you send the deck."
	set := testExtractor().Extract(text)
	assert.Equal(t, []string{"send the deck"}, set.ActionsForMe)
}

func TestExtractAliasCaseInsensitive(t *testing.T) {
	set := testExtractor().Extract("LUKE, can you review the renewal terms.")
	require.Len(t, set.ActionsForMe, 1)
	assert.Equal(t, "review the renewal terms", set.ActionsForMe[0])
}

func TestExtractMultiWordAlias(t *testing.T) {
	set := testExtractor().Extract("support team, please update the status page.")
	assert.Contains(t, set.ActionsForMe, "update the status page")
}

func TestExtractNoSelfNames(t *testing.T) {
	e := NewExtractor(Context{})
	set := e.Extract("lucas, can you send the contract.")
	assert.Empty(t, set.ActionsForMe)
}

func TestSetDedupeKeepsOrder(t *testing.T) {
	s := NewSet()
	s.Decisions = []string{"b", "a", "b", "c", "a"}
	s.Dedupe()
	assert.Equal(t, []string{"b", "a", "c"}, s.Decisions)
}
