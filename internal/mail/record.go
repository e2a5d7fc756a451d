// Package mail defines the canonical mail record shared by every
// stage of the retrieval pipeline.
package mail

import (
	"regexp"
	"strings"
	"time"
)

// Priority is the classification tier assigned to a message.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Ordinal maps a tier to its sort rank. Unset or unknown tiers rank
// after every concrete tier.
func (p Priority) Ordinal() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Valid reports whether p is one of the three concrete tiers.
func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Record is the normalized in-memory representation of a message. It
// is constructed fresh for every retrieval, classified, ranked and
// projected into a response; nothing is persisted across requests.
type Record struct {
	ID       string
	From     string
	To       string
	Subject  string
	Date     string
	BodyText string
	BodyHTML string
	Snippet  string

	Priority       Priority
	PriorityReason string
}

// dateComment matches a trailing parenthesized zone comment such as
// "(UTC)" that some providers append to RFC 2822 dates.
var dateComment = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses a provider-formatted date header. Records keep the
// raw string; parsing happens lazily wherever an actual instant is
// needed. Returns false when no known layout matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(dateComment.ReplaceAllString(s, ""))
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
