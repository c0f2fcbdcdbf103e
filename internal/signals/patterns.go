package signals

import "fmt"

// The pattern lists intentionally encode identity with literal name tokens
// (the alias alternation) rather than structural NLU. Missed mentions phrased
// unusually are expected; the minimum span length keeps false positives down.

func actionRules(names string) []Rule {
	return []Rule{
		Pattern(fmt.Sprintf(`%s[,:]?\s+can you\s+(.+?)(?:\.|$|\?)`, names)),
		Pattern(fmt.Sprintf(`%s[,:]?\s+(?:will you|could you|would you)\s+(.+?)(?:\.|$|\?)`, names)),
		Pattern(fmt.Sprintf(`%s[,:]?\s+(?:please|pls)\s+(.+?)(?:\.|$)`, names)),
		Pattern(fmt.Sprintf(`%s\s+(?:needs to|should|will|to)\s+(.+?)(?:\.|$)`, names)),
		Pattern(fmt.Sprintf(`can\s+%s\s+(.+?)(?:\.|$|\?)`, names)),
		Pattern(fmt.Sprintf(`%s[,:]?\s+(?:follow up|look into|check on|handle|take care of)\s+(.+?)(?:\.|$)`, names)),
		Pattern(fmt.Sprintf(`(?:assign(?:ed)?|task(?:ed)?)\s+(?:to\s+)?%s[:\s]+(.+?)(?:\.|$)`, names)),
	}
}

func decisionRules() []Rule {
	return []Rule{
		Pattern(`(?:we(?:'ve)?|let's)\s+decided?\s+(?:to\s+)?(.+?)(?:\.|$)`),
		Pattern(`decision[:\s]+(.+?)(?:\.|$)`),
		Pattern(`(?:we're|we are)\s+going\s+(?:to|with)\s+(.+?)(?:\.|$)`),
		Pattern(`(?:final|agreed)[:\s]+(.+?)(?:\.|$)`),
		Pattern(`(?:the plan is|plan is to)\s+(.+?)(?:\.|$)`),
	}
}

func commitmentRules() []Rule {
	return []Rule{
		Pattern(`i(?:'ll| will)\s+(?:get|send|share|provide|follow up|check|look into)\s+(.+?)(?:\.|$)`),
		Pattern(`i(?:'ll| will)\s+have\s+(?:that|this|it)\s+(.+?)(?:\.|$)`),
		Pattern(`(?:i can|i'll)\s+(.+?)\s+by\s+(?:.+?)(?:\.|$)`),
		Pattern(`let me\s+(.+?)(?:\.|$)`),
		Pattern(`i(?:'ll| will)\s+circle back\s+(?:on\s+)?(.+?)(?:\.|$)`),
	}
}

func followUpRules() []Rule {
	return []Rule{
		Pattern(`(?:let's|we should|need to)\s+(?:circle back|follow up|revisit)\s+(?:on\s+)?(.+?)(?:\.|$)`),
		Pattern(`(?:follow up|following up)\s+(?:on|about|with)\s+(.+?)(?:\.|$)`),
		Pattern(`(?:don't forget|remember)\s+(?:to\s+)?(.+?)(?:\.|$)`),
		Pattern(`(?:next steps?|action items?)[:\s]+(.+?)(?:\.|$)`),
		Pattern(`(?:to do|todo)[:\s]+(.+?)(?:\.|$)`),
	}
}

func deadlineRules() []Rule {
	return []Rule{
		Pattern(`by\s+(end of (?:day|week|month)|eod|eow|eom|friday|monday|tomorrow|next week)(?:\.|,|$)`),
		Pattern(`(?:due|deadline)[:\s]+(.+?)(?:\.|$)`),
		Pattern(`(?:need|needs)\s+(?:to be|this)\s+(?:done|ready|completed)\s+by\s+(.+?)(?:\.|$)`),
		Pattern(`before\s+(launch|release|go[- ]live|the meeting|monday|friday)(?:\.|,|$)`),
	}
}

func blockerRules() []Rule {
	return []Rule{
		Pattern(`(?:blocked|waiting)\s+(?:on|for)\s+(.+?)(?:\.|$)`),
		Pattern(`(?:can't|cannot)\s+(?:proceed|move forward|continue)\s+(?:until|without)\s+(.+?)(?:\.|$)`),
		Pattern(`(?:dependency|dependencies)[:\s]+(.+?)(?:\.|$)`),
		Pattern(`(?:need|needs)\s+(.+?)\s+(?:first|before)(?:\.|$)`),
	}
}
