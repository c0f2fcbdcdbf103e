package signals

import (
	"regexp"
	"strings"
)

// Wellness sentiments
const (
	MoodStressed = "stressed"
	MoodPositive = "positive"
	MoodNeutral  = "neutral"
)

// Wellness holds the stress and positivity phrases found for one tracked
// person in a meeting, with the derived overall sentiment.
type Wellness struct {
	Stress    []string `json:"stress"`
	Positive  []string `json:"positive"`
	Blockers  []string `json:"blockers"`
	Sentiment string   `json:"sentiment"`
}

// Stress indicators in speech patterns
var stressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(overwhelmed|swamped|drowning|slammed|buried)\b`),
	regexp.MustCompile(`\b(frustrated|annoying|annoyed|struggling)\b`),
	regexp.MustCompile(`\b(worried|concerned|anxious|stressed)\b`),
	regexp.MustCompile(`\b(can't keep up|too much|falling behind|behind on)\b`),
	regexp.MustCompile(`\b(exhausted|tired|burnt out|burning out)\b`),
}

// Positive indicators
var positivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(excited|looking forward|enjoying|proud)\b`),
	regexp.MustCompile(`\b(good progress|on track|ahead of|nailed|crushed)\b`),
	regexp.MustCompile(`\b(feeling good|going well|things are good)\b`),
}

// First-person blocker statements
var personalBlockerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:i'm|i am) (?:blocked|waiting) on (.+?)(?:\.|$)`),
	regexp.MustCompile(`(?:can't|cannot) (?:proceed|move forward) (?:until|without) (.+?)(?:\.|$)`),
}

// Sentiment flips away from neutral only when one side outweighs the other
// by more than this margin.
const sentimentMargin = 2

// TeamWellness scans a transcript for wellness signals of roster members who
// attended the meeting or are mentioned early in it. Only non-neutral or
// blocker-bearing results are returned; everyone else is dropped as not
// worth persisting.
func TeamWellness(transcript string, attendees []string, roster map[string][]string) map[string]Wellness {
	if transcript == "" || len(roster) == 0 {
		return nil
	}

	text := strings.ToLower(transcript)
	opening := text
	if len(opening) > 500 {
		opening = opening[:500]
	}

	attendeesLower := make([]string, 0, len(attendees))
	for _, a := range attendees {
		attendeesLower = append(attendeesLower, strings.ToLower(a))
	}

	result := make(map[string]Wellness)

	for person, names := range roster {
		if !personPresent(names, attendeesLower, opening) {
			continue
		}

		w := Wellness{Stress: []string{}, Positive: []string{}, Blockers: []string{}}

		for _, re := range stressPatterns {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				w.Stress = append(w.Stress, m[1])
			}
		}
		for _, re := range positivePatterns {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				w.Positive = append(w.Positive, m[1])
			}
		}
		for _, re := range personalBlockerPatterns {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				blocker := strings.TrimSpace(m[1])
				if len(blocker) > 100 {
					blocker = blocker[:100]
				}
				w.Blockers = append(w.Blockers, blocker)
			}
		}

		switch {
		case len(w.Stress) > len(w.Positive)+sentimentMargin:
			w.Sentiment = MoodStressed
		case len(w.Positive) > len(w.Stress)+sentimentMargin:
			w.Sentiment = MoodPositive
		default:
			w.Sentiment = MoodNeutral
		}

		if w.Sentiment == MoodNeutral && len(w.Blockers) == 0 {
			continue
		}
		result[person] = w
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// personPresent checks the attendee list for an exact name match, then the
// opening of the transcript for a mention.
func personPresent(names, attendeesLower []string, opening string) bool {
	for _, name := range names {
		n := strings.ToLower(name)
		for _, a := range attendeesLower {
			if a == n {
				return true
			}
		}
		if strings.Contains(opening, n) {
			return true
		}
	}
	return false
}
