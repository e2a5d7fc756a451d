package classify

// Ruleset is the immutable configuration of the classifier: keyword
// vocabularies per tier plus sender substrings that are never allowed
// to trigger the high tier.
type Ruleset struct {
	High   []string
	Medium []string
	Low    []string

	// ExcludedSenders suppresses the high-keyword rule for matching
	// senders. This is a deliberate allow-list override for known
	// noisy senders, not a classification signal of its own.
	ExcludedSenders []string
}

// DefaultRuleset returns the production keyword vocabulary.
func DefaultRuleset() Ruleset {
	return Ruleset{
		High: []string{
			"urgent", "important", "immediate", "asap", "action required", "deadline", "final notice",
			"critical", "alert", "respond now", "response needed", "attention", "overdue", "fail", "failed",
			"payment due", "last chance", "security", "suspended", "blocked", "account locked", "warning",
			"reminder", "today", "expire", "expiring", "submission", "result declared", "result out",
		},
		Medium: []string{
			"reminder", "upcoming", "soon", "scheduled", "meeting", "appointment", "follow up", "pending",
			"review", "update", "notification", "invitation", "invite", "request", "expected", "processing",
			"awaiting", "in progress", "due", "next week", "tomorrow", "event", "exam", "assessment",
		},
		Low: []string{
			"newsletter", "promotion", "offer", "discount", "sale", "info", "information", "news", "update",
			"welcome", "thank you", "thanks", "subscribed", "subscription", "registered", "registration",
			"survey", "feedback", "report", "summary", "digest",
		},
		ExcludedSenders: []string{"stake"},
	}
}
