// Package curated parses messages forwarded into the personal briefing
// channel. These are messages the user chose to keep, so they are stored
// in full and mined for meeting intent, people, topics and dates.
package curated

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"secondbrain/internal/dates"
	"secondbrain/internal/memstore"
)

// Parsed is what a curated message yields.
type Parsed struct {
	HasMeeting      bool     `json:"has_meeting"`
	MeetingDate     string   `json:"meeting_date,omitempty"`
	MeetingDateText string   `json:"meeting_date_text,omitempty"`
	People          []string `json:"people"`
	Topics          []string `json:"topics"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	Scheduled       bool     `json:"is_scheduled"`
	RawText         string   `json:"raw_text"`
}

var meetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:can we|let's|want to|should we) (?:grab|get|schedule|set up|have) (\d+) minutes`),
	regexp.MustCompile(`(?:grab|get|schedule) (?:some )?time`),
	regexp.MustCompile(`(?:can we|let's) (?:sync|meet|chat|talk|connect)`),
	regexp.MustCompile(`(?:set up|schedule) a (?:call|meeting|sync)`),
	regexp.MustCompile(`(?:20|30|15|45|60) minutes`),
	regexp.MustCompile(`quick (?:call|chat|sync)`),
}

// Capitalized words matched by the people patterns that are not names.
var falsePositiveNames = map[string]bool{
	"the": true, "a": true, "an": true, "this": true, "that": true,
	"our": true, "my": true, "your": true, "we": true, "i": true,
	"what": true, "when": true, "where": true, "why": true, "how": true,
	"which": true, "who": true,
	"can": true, "could": true, "would": true, "should": true,
	"will": true, "may": true, "might": true,
	"let": true, "get": true, "got": true, "have": true, "has": true, "had": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
	"january": true, "february": true, "march": true, "april": true,
	"june": true, "july": true, "august": true, "september": true,
	"october": true, "november": true, "december": true,
	"technical": true, "timeline": true, "scope": true, "automation": true,
	"feasibility": true, "whether": true, "since": true, "about": true,
	"through": true, "spazious": true, "cvent": true,
}

var peoplePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:Hey|Hi|Hello),?\s+([A-Z][a-z]{2,})`),
	regexp.MustCompile(`(?:bring|include|invite|cc)\s+([A-Z][a-z]{2,})`),
	regexp.MustCompile(`I'll bring ([A-Z][a-z]{2,})`),
	regexp.MustCompile(`@([a-z]+(?:\.[a-z]+)?)`),
}

var topicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:about|regarding|re:|discuss|walk through|cover)[:\s]+(.+?)(?:\.|$|\n)`),
	regexp.MustCompile(`(?:conversation|meeting|call) (?:about|on|regarding) (.+?)(?:\.|$|\n)`),
}

var (
	durationRe      = regexp.MustCompile(`(\d+)\s*(?:min|minutes)`)
	bulletRe        = regexp.MustCompile(`[•\-\*]\s*(.+?)(?:\n|$)`)
	scheduledPhrases = []string{"scheduled", "booked", "set up", "confirmed", "on the calendar"}
)

const (
	rawTextLimit   = 500
	topicLimit     = 100
	minTopicLength = 5
	maxBullets     = 5
)

// Parse mines a curated message plus the user's optional annotation note.
// The note wins when both carry a date: the annotation is the user stating
// what the message means.
func Parse(text, note string, now time.Time) Parsed {
	combined := strings.ToLower(note + "\n" + text)
	original := note + "\n" + text

	p := Parsed{
		People:  []string{},
		Topics:  []string{},
		RawText: truncate(text, rawTextLimit),
	}

	for _, re := range meetingPatterns {
		if re.MatchString(combined) {
			p.HasMeeting = true
			break
		}
	}

	for _, phrase := range scheduledPhrases {
		if strings.Contains(combined, phrase) {
			p.Scheduled = true
			break
		}
	}

	if m := durationRe.FindStringSubmatch(combined); m != nil {
		p.DurationMinutes, _ = strconv.Atoi(m[1])
	}

	if note != "" {
		if res, ok := dates.Resolve(strings.ToLower(note), now); ok {
			p.MeetingDate = res.Date
			p.MeetingDateText = res.Matched
		}
	}
	if p.MeetingDate == "" {
		if res, ok := dates.Resolve(combined, now); ok {
			p.MeetingDate = res.Date
			p.MeetingDateText = res.Matched
		}
	}

	for _, re := range peoplePatterns {
		for _, m := range re.FindAllStringSubmatch(original, -1) {
			name := strings.TrimSpace(m[1])
			if falsePositiveNames[strings.ToLower(name)] {
				continue
			}
			if len(name) > 2 && !contains(p.People, name) {
				p.People = append(p.People, name)
			}
		}
	}

	for _, re := range topicPatterns {
		if m := re.FindStringSubmatch(combined); m != nil {
			topic := truncate(strings.TrimSpace(m[1]), topicLimit)
			if len(topic) > minTopicLength {
				p.Topics = append(p.Topics, topic)
			}
		}
	}

	bullets := bulletRe.FindAllStringSubmatch(text, -1)
	if len(bullets) > maxBullets {
		bullets = bullets[:maxBullets]
	}
	for _, m := range bullets {
		bullet := strings.TrimSpace(m[1])
		if len(bullet) > minTopicLength && len(bullet) < topicLimit {
			p.Topics = append(p.Topics, bullet)
		}
	}

	return p
}

// InboxItem builds a meeting inbox entry from a parse. The second return
// is false when the message carried no meeting intent.
func (p Parsed) InboxItem(now time.Time) (memstore.InboxItem, bool) {
	if !p.HasMeeting {
		return memstore.InboxItem{}, false
	}

	var parts []string
	if len(p.People) > 0 {
		parts = append(parts, "With: "+strings.Join(p.People, ", "))
	}
	if len(p.Topics) > 0 {
		topics := p.Topics
		if len(topics) > 3 {
			topics = topics[:3]
		}
		parts = append(parts, "Topics: "+strings.Join(topics, "; "))
	}
	if p.DurationMinutes > 0 {
		parts = append(parts, fmt.Sprintf("Duration: %d min", p.DurationMinutes))
	}
	if p.MeetingDateText != "" {
		parts = append(parts, "When: "+p.MeetingDateText)
	}

	content := truncate(p.RawText, 100)
	if len(parts) > 0 {
		content = strings.Join(parts, " | ")
	}

	return memstore.InboxItem{
		Type:        memstore.InboxMeeting,
		FromMeeting: "curated",
		Date:        now.Format("2006-01-02"),
		Content:     content,
		Status:      memstore.StatusOpen,
	}, true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
