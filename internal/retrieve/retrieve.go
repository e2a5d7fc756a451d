// Package retrieve drives the retrieval pipeline: fetch messages from
// a source, classify, rank, filter and project the response.
package retrieve

import (
	"context"
	"fmt"
	"strings"

	gmailv1 "google.golang.org/api/gmail/v1"

	"prioritymail/internal/classify"
	"prioritymail/internal/extract"
	"prioritymail/internal/mail"
	"prioritymail/internal/rank"
	"prioritymail/internal/source"
)

const (
	// recentCap bounds the lightweight "recent mail" listing.
	recentCap = 10
	// fullCap bounds the classified full listing.
	fullCap = 50
)

// GmailSource is the narrow Gmail contract the orchestrator consumes.
type GmailSource interface {
	ListMessages(ctx context.Context, q string, maxResults int64) (*gmailv1.ListMessagesResponse, error)
	GetMessageMetadata(ctx context.Context, msgID string) (*gmailv1.Message, error)
	GetMessage(ctx context.Context, msgID string) (*gmailv1.Message, error)
}

// MailboxSource yields canonical records from an IMAP mailbox.
type MailboxSource interface {
	FetchMailbox(ctx context.Context, keywords []string, limit int, withBody bool) ([]mail.Record, error)
}

// GmailRequest is a retrieval request against the Gmail source. The
// access token is supplied by the caller on every request.
type GmailRequest struct {
	AccessToken   string
	Keywords      []string
	Priority      string
	SortDirection string
}

// MailboxRequest is a retrieval request against the configured IMAP
// account.
type MailboxRequest struct {
	Keywords      []string
	Priority      string
	SortDirection string
}

// MailView is the response-safe projection of a record.
type MailView struct {
	From           string `json:"from"`
	To             string `json:"to,omitempty"`
	Subject        string `json:"subject"`
	Date           string `json:"date"`
	Priority       string `json:"priority,omitempty"`
	PriorityReason string `json:"priorityReason,omitempty"`
}

// ListResponse is the ordered result of a retrieval.
type ListResponse struct {
	Mails []MailView `json:"mails"`
}

// NewRetriever creates the orchestrator. newGmail builds a Gmail
// source for a request credential; mailbox may be nil when no IMAP
// account is configured.
func NewRetriever(classifier *classify.Classifier, newGmail func(accessToken string) GmailSource, mailbox MailboxSource) *Retriever {
	return &Retriever{
		classifier: classifier,
		newGmail:   newGmail,
		mailbox:    mailbox,
	}
}

// Retriever coordinates sources, the classifier and the ranking stage.
// It holds no per-request state; every retrieval builds its records
// fresh and discards them after projection.
type Retriever struct {
	classifier *classify.Classifier
	newGmail   func(accessToken string) GmailSource
	mailbox    MailboxSource
}

// ListRecent fetches up to ten of the most recent Gmail messages
// matching the optional keywords, headers only, without running the
// classifier. Ranking still applies: with no tiers assigned it reduces
// to most-recent-first.
func (r *Retriever) ListRecent(ctx context.Context, req GmailRequest) (ListResponse, error) {
	records, err := r.fetchGmailHeaders(ctx, req, recentCap)
	if err != nil {
		return ListResponse{}, err
	}

	rank.Sort(records, rank.Direction(req.SortDirection))
	records = rank.Filter(records, mail.Priority(req.Priority))

	return ListResponse{Mails: project(records, false)}, nil
}

// ListAll fetches up to fifty matching Gmail messages, classifies each
// from subject and sender (bodies are not fetched in this mode, so
// body-based keyword rules cannot fire), ranks and filters.
func (r *Retriever) ListAll(ctx context.Context, req GmailRequest) (ListResponse, error) {
	records, err := r.fetchGmailHeaders(ctx, req, fullCap)
	if err != nil {
		return ListResponse{}, err
	}

	for i := range records {
		res := r.classifier.Classify(classify.Input{
			Subject: records[i].Subject,
			From:    records[i].From,
		})
		records[i].Priority = res.Tier
		records[i].PriorityReason = res.Reason
	}

	rank.Sort(records, rank.Direction(req.SortDirection))
	records = rank.Filter(records, mail.Priority(req.Priority))

	return ListResponse{Mails: project(records, false)}, nil
}

// ListMailbox lists the configured IMAP account. Without a priority
// filter or sort direction it returns the mailbox as-is, headers only.
// When either is requested, message bodies are fetched and parsed so
// the classifier can see body text, and the projection carries the
// assigned tier and reason.
func (r *Retriever) ListMailbox(ctx context.Context, req MailboxRequest) (ListResponse, error) {
	if r.mailbox == nil {
		return ListResponse{}, &source.ValidationError{Message: "IMAP account not configured"}
	}

	classified := req.Priority != "" || req.SortDirection != ""

	limit := 0
	if classified {
		limit = fullCap
	}

	records, err := r.mailbox.FetchMailbox(ctx, req.Keywords, limit, classified)
	if err != nil {
		return ListResponse{}, &source.ConnectionError{Source: "imap", Err: err}
	}

	if !classified {
		return ListResponse{Mails: project(records, false)}, nil
	}

	for i := range records {
		res := r.classifier.Classify(classify.Input{
			Subject:  records[i].Subject,
			BodyText: records[i].BodyText,
			From:     records[i].From,
		})
		records[i].Priority = res.Tier
		records[i].PriorityReason = res.Reason
	}

	rank.Sort(records, rank.Direction(req.SortDirection))
	records = rank.Filter(records, mail.Priority(req.Priority))

	return ListResponse{Mails: project(records, true)}, nil
}

// GmailDetailRequest asks for one fully-fetched Gmail message.
type GmailDetailRequest struct {
	AccessToken string
	MessageID   string
}

// MailDetail is the projection of a single message including its
// extracted bodies.
type MailDetail struct {
	MailView
	Snippet  string `json:"snippet,omitempty"`
	BodyText string `json:"bodyText,omitempty"`
	BodyHTML string `json:"bodyHtml,omitempty"`
}

// GetMail fetches one Gmail message with its full part tree, extracts
// the text and HTML bodies and classifies it with everything the
// classifier can use: subject, body text, snippet and sender.
func (r *Retriever) GetMail(ctx context.Context, req GmailDetailRequest) (MailDetail, error) {
	if strings.TrimSpace(req.AccessToken) == "" {
		return MailDetail{}, &source.ValidationError{Message: "Missing access token"}
	}
	if strings.TrimSpace(req.MessageID) == "" {
		return MailDetail{}, &source.ValidationError{Message: "Missing message id"}
	}

	gm := r.newGmail(req.AccessToken)

	msg, err := gm.GetMessage(ctx, req.MessageID)
	if err != nil {
		return MailDetail{}, &source.ConnectionError{
			Source: "gmail",
			Err:    fmt.Errorf("get message %s failed: %w", req.MessageID, err),
		}
	}

	rec := recordFromMetadata(msg)
	content := extract.Extract(extract.FromGmail(msg.Payload))
	rec.BodyText = content.BodyText
	rec.BodyHTML = content.BodyHTML

	res := r.classifier.Classify(classify.Input{
		Subject:  rec.Subject,
		BodyText: rec.BodyText,
		Snippet:  rec.Snippet,
		From:     rec.From,
	})
	rec.Priority = res.Tier
	rec.PriorityReason = res.Reason

	return MailDetail{
		MailView: MailView{
			From:           rec.From,
			Subject:        rec.Subject,
			Date:           rec.Date,
			Priority:       string(rec.Priority),
			PriorityReason: rec.PriorityReason,
		},
		Snippet:  rec.Snippet,
		BodyText: rec.BodyText,
		BodyHTML: rec.BodyHTML,
	}, nil
}

// fetchGmailHeaders lists matching message IDs and resolves each to
// its header metadata, one message at a time. Any failure discards the
// whole retrieval.
func (r *Retriever) fetchGmailHeaders(ctx context.Context, req GmailRequest, maxResults int64) ([]mail.Record, error) {
	if strings.TrimSpace(req.AccessToken) == "" {
		return nil, &source.ValidationError{Message: "Missing access token"}
	}

	gm := r.newGmail(req.AccessToken)

	list, err := gm.ListMessages(ctx, BuildQuery(req.Keywords), maxResults)
	if err != nil {
		return nil, &source.ConnectionError{Source: "gmail", Err: err}
	}

	records := make([]mail.Record, 0, len(list.Messages))
	for _, m := range list.Messages {
		msg, err := gm.GetMessageMetadata(ctx, m.Id)
		if err != nil {
			return nil, &source.ConnectionError{
				Source: "gmail",
				Err:    fmt.Errorf("get message %s failed: %w", m.Id, err),
			}
		}
		records = append(records, recordFromMetadata(msg))
	}

	return records, nil
}

// BuildQuery OR-combines keywords into Gmail search syntax, quoting
// each keyword. Empty input yields an empty query.
func BuildQuery(keywords []string) string {
	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			quoted = append(quoted, fmt.Sprintf("%q", k))
		}
	}
	return strings.Join(quoted, " OR ")
}

func recordFromMetadata(msg *gmailv1.Message) mail.Record {
	rec := mail.Record{
		ID:      msg.Id,
		Snippet: msg.Snippet,
	}

	if msg.Payload == nil {
		return rec
	}

	for _, header := range msg.Payload.Headers {
		switch header.Name {
		case "From":
			rec.From = header.Value
		case "Subject":
			rec.Subject = header.Value
		case "Date":
			rec.Date = header.Value
		}
	}

	return rec
}

func project(records []mail.Record, withPriority bool) []MailView {
	views := make([]MailView, 0, len(records))
	for _, r := range records {
		v := MailView{
			From:    r.From,
			To:      r.To,
			Subject: r.Subject,
			Date:    r.Date,
		}
		if withPriority {
			v.Priority = string(r.Priority)
			v.PriorityReason = r.PriorityReason
		}
		views = append(views, v)
	}
	return views
}
