// Package classify assigns priority tiers to mail records using
// keyword rules and a date-proximity fallback.
package classify

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"prioritymail/internal/mail"
)

const (
	ReasonHighKeywords   = "Matched high-priority keywords"
	ReasonMediumKeywords = "Matched medium-priority keywords"
	ReasonLowKeywords    = "Matched low-priority keywords"
	ReasonDateVeryClose  = "Date is very close"
	ReasonDateSoon       = "Date is soon"
	ReasonDateFar        = "Date is far"
	ReasonDefault        = "No priority keywords or dates found"
)

// dateToken matches an ISO date or a day/month/year slash date inside
// free text.
var dateToken = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4})\b`)

// Input is the subset of a mail record the classifier inspects.
type Input struct {
	Subject  string
	BodyText string
	Snippet  string
	From     string
}

// Result is the classification outcome: exactly one tier and one
// human-readable reason.
type Result struct {
	Tier   mail.Priority
	Reason string
}

// Classifier is a pure keyword/date classifier. It performs no I/O;
// the same input always yields the same result for a fixed clock.
type Classifier struct {
	rules Ruleset
	now   func() time.Time
}

// New creates a classifier using the wall clock.
func New(rules Ruleset) *Classifier {
	return NewWithClock(rules, time.Now)
}

// NewWithClock creates a classifier with an explicit clock. Tests use
// this to pin "now" for the date-proximity rules.
func NewWithClock(rules Ruleset, now func() time.Time) *Classifier {
	return &Classifier{rules: rules, now: now}
}

// Classify assigns a tier to the given input. Rules apply in strict
// precedence order, first match wins: high keywords (subject to the
// sender exclusion), medium keywords, low keywords, date proximity,
// then the low default. Keyword matching is substring search on the
// lowercased concatenation of subject, body and snippet.
func (c *Classifier) Classify(in Input) Result {
	content := strings.ToLower(in.Subject + " " + in.BodyText + " " + in.Snippet)
	from := strings.ToLower(in.From)

	if containsAny(content, c.rules.High) && !containsAny(from, c.rules.ExcludedSenders) {
		return Result{Tier: mail.PriorityHigh, Reason: ReasonHighKeywords}
	}
	if containsAny(content, c.rules.Medium) {
		return Result{Tier: mail.PriorityMedium, Reason: ReasonMediumKeywords}
	}
	if containsAny(content, c.rules.Low) {
		return Result{Tier: mail.PriorityLow, Reason: ReasonLowKeywords}
	}

	if res, ok := c.classifyByDate(content); ok {
		return res
	}

	return Result{Tier: mail.PriorityLow, Reason: ReasonDefault}
}

// classifyByDate searches the content for a date token and grades it
// by proximity to now. A past date flows through the same arithmetic:
// anything less than three days away in either direction is high. An
// unparseable token reports no match and the caller falls through to
// the default tier.
func (c *Classifier) classifyByDate(content string) (Result, bool) {
	token := dateToken.FindString(content)
	if token == "" {
		return Result{}, false
	}

	if strings.Contains(token, "/") {
		// Day/month/year, rewritten to ISO before parsing.
		parts := strings.SplitN(token, "/", 3)
		token = fmt.Sprintf("%s-%s-%s", parts[2], parts[1], parts[0])
	}

	date, err := time.Parse("2006-01-02", token)
	if err != nil {
		return Result{}, false
	}

	diffDays := date.Sub(c.now()).Hours() / 24

	switch {
	case diffDays < 3:
		return Result{Tier: mail.PriorityHigh, Reason: ReasonDateVeryClose}, true
	case diffDays < 7:
		return Result{Tier: mail.PriorityMedium, Reason: ReasonDateSoon}, true
	default:
		return Result{Tier: mail.PriorityLow, Reason: ReasonDateFar}, true
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
