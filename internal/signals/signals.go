package signals

import (
	"regexp"
	"strings"
)

// MinLength is the shortest span kept as a signal. Anything shorter is
// treated as pattern noise.
const MinLength = 5

// Category constants
const (
	CategoryActionForMe = "action_for_me" // Action items assigned to the owner
	CategoryDecision    = "decision"      // Decisions made
	CategoryCommitment  = "commitment"    // Commitments from others
	CategoryFollowUp    = "follow_up"     // Follow-ups needed
	CategoryDeadline    = "deadline"      // Deadlines and dates
	CategoryBlocker     = "blocker"       // Blockers and issues
)

// Set is the structured output of extraction: six categorized signal lists
// plus two mention lists. All lists are deduplicated, insertion order kept.
type Set struct {
	ActionsForMe       []string `json:"actions_for_me"`
	Decisions          []string `json:"decisions"`
	Commitments        []string `json:"commitments"`
	FollowUps          []string `json:"follow_ups"`
	Deadlines          []string `json:"deadlines"`
	Blockers           []string `json:"blockers"`
	CustomersMentioned []string `json:"customers_mentioned"`
	ProjectsMentioned  []string `json:"projects_mentioned"`
}

// NewSet returns a Set with every list initialized, so an empty extraction
// still marshals with all eight keys present.
func NewSet() Set {
	return Set{
		ActionsForMe:       []string{},
		Decisions:          []string{},
		Commitments:        []string{},
		FollowUps:          []string{},
		Deadlines:          []string{},
		Blockers:           []string{},
		CustomersMentioned: []string{},
		ProjectsMentioned:  []string{},
	}
}

// HasActions reports whether anything actionable for the owner was found.
func (s Set) HasActions() bool {
	return len(s.ActionsForMe) > 0 || len(s.FollowUps) > 0
}

// Dedupe removes duplicates from every list, keeping first occurrence order.
func (s *Set) Dedupe() {
	s.ActionsForMe = dedupe(s.ActionsForMe)
	s.Decisions = dedupe(s.Decisions)
	s.Commitments = dedupe(s.Commitments)
	s.FollowUps = dedupe(s.FollowUps)
	s.Deadlines = dedupe(s.Deadlines)
	s.Blockers = dedupe(s.Blockers)
	s.CustomersMentioned = dedupe(s.CustomersMentioned)
	s.ProjectsMentioned = dedupe(s.ProjectsMentioned)
}

func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, v := range list {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Rule matches a single pattern against lower-cased text and returns the
// captured spans. Implementations must be total: no input may cause an
// error.
type Rule interface {
	Matches(text string) []string
}

// regexRule captures group 1 of every non-overlapping match.
type regexRule struct {
	re *regexp.Regexp
}

func (r regexRule) Matches(text string) []string {
	var spans []string
	for _, m := range r.re.FindAllStringSubmatch(text, -1) {
		if len(m) > 1 {
			spans = append(spans, strings.TrimSpace(m[1]))
		}
	}
	return spans
}

// Pattern compiles a regex rule. The expression must contain exactly one
// capturing group for the signal payload.
func Pattern(expr string) Rule {
	return regexRule{re: regexp.MustCompile(expr)}
}

// Context carries the deployment-specific matching configuration: who the
// owner is, and which account names and project keywords to watch for.
type Context struct {
	SelfNames       []string
	CustomerNames   []string
	ProjectKeywords []string
}

type category struct {
	name  string
	rules []Rule
}

// Extractor applies an ordered set of pattern rules to produce categorized,
// deduplicated signal lists. Construction compiles every pattern once.
type Extractor struct {
	categories []category
	customers  []string
	projects   []string
}

// NewExtractor builds an extractor for the given context.
func NewExtractor(ctx Context) *Extractor {
	names := aliasAlternation(ctx.SelfNames)

	e := &Extractor{
		categories: []category{
			{CategoryActionForMe, actionRules(names)},
			{CategoryDecision, decisionRules()},
			{CategoryCommitment, commitmentRules()},
			{CategoryFollowUp, followUpRules()},
			{CategoryDeadline, deadlineRules()},
			{CategoryBlocker, blockerRules()},
		},
	}
	for _, c := range ctx.CustomerNames {
		e.customers = append(e.customers, strings.ToLower(c))
	}
	for _, p := range ctx.ProjectKeywords {
		e.projects = append(e.projects, strings.ToLower(p))
	}
	return e
}

// aliasAlternation builds a non-capturing alternation of quoted aliases for
// embedding in the identity-bearing patterns.
func aliasAlternation(aliases []string) string {
	if len(aliases) == 0 {
		return "(?:\\bnobody\\b)" // matches no real transcript
	}
	quoted := make([]string, 0, len(aliases))
	for _, a := range aliases {
		quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(a)))
	}
	return "(?:" + strings.Join(quoted, "|") + ")"
}

// Extract applies every category's rules against the lower-cased input and
// returns the deduplicated signal set. It never fails: malformed or empty
// input yields empty lists.
func (e *Extractor) Extract(text string) Set {
	set := NewSet()
	if text == "" {
		return set
	}

	lower := strings.ToLower(text)

	for _, cat := range e.categories {
		for _, rule := range cat.rules {
			for _, span := range rule.Matches(lower) {
				if len(span) < MinLength {
					continue
				}
				set.add(cat.name, span)
			}
		}
	}

	// Mentions are plain substring containment, not patterns
	for _, customer := range e.customers {
		if strings.Contains(lower, customer) {
			set.CustomersMentioned = append(set.CustomersMentioned, customer)
		}
	}
	for _, project := range e.projects {
		if strings.Contains(lower, project) {
			set.ProjectsMentioned = append(set.ProjectsMentioned, project)
		}
	}

	set.Dedupe()
	return set
}

// add routes a span into the list for its category.
func (s *Set) add(cat, span string) {
	switch cat {
	case CategoryActionForMe:
		s.ActionsForMe = append(s.ActionsForMe, span)
	case CategoryDecision:
		s.Decisions = append(s.Decisions, span)
	case CategoryCommitment:
		s.Commitments = append(s.Commitments, span)
	case CategoryFollowUp:
		s.FollowUps = append(s.FollowUps, span)
	case CategoryDeadline:
		s.Deadlines = append(s.Deadlines, span)
	case CategoryBlocker:
		s.Blockers = append(s.Blockers, span)
	}
}
