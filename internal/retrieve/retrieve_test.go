package retrieve_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmailv1 "google.golang.org/api/gmail/v1"

	"prioritymail/internal/classify"
	"prioritymail/internal/mail"
	"prioritymail/internal/retrieve"
	"prioritymail/internal/source"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newRetriever(gm *gmailSrcMock, mailbox retrieve.MailboxSource) *retrieve.Retriever {
	classifier := classify.NewWithClock(classify.DefaultRuleset(), func() time.Time { return now })

	return retrieve.NewRetriever(classifier, func(_ string) retrieve.GmailSource { return gm }, mailbox)
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "", retrieve.BuildQuery(nil))
	assert.Equal(t, `"invoice"`, retrieve.BuildQuery([]string{"invoice"}))
	assert.Equal(t, `"invoice" OR "deadline"`, retrieve.BuildQuery([]string{"invoice", "deadline"}))
	assert.Equal(t, `"invoice"`, retrieve.BuildQuery([]string{" invoice ", "  "}))
}

func TestListRecentMissingCredential(t *testing.T) {
	r := newRetriever(&gmailSrcMock{}, nil)

	_, err := r.ListRecent(context.Background(), retrieve.GmailRequest{})

	require.Error(t, err)
	assert.True(t, source.IsValidationError(err))
}

func TestListRecent(t *testing.T) {
	var gotQuery string
	var gotMax int64

	gm := &gmailSrcMock{
		ListMessagesFunc: func(_ context.Context, q string, maxResults int64) (*gmailv1.ListMessagesResponse, error) {
			gotQuery, gotMax = q, maxResults
			return &gmailv1.ListMessagesResponse{
				Messages: []*gmailv1.Message{{Id: "m-1"}, {Id: "m-2"}},
			}, nil
		},
		GetMessageMetadataFunc: func(_ context.Context, msgID string) (*gmailv1.Message, error) {
			dates := map[string]string{
				"m-1": "Tue, 02 Jan 2024 10:00:00 +0000",
				"m-2": "Wed, 03 Jan 2024 10:00:00 +0000",
			}
			return metadataMessage(msgID, "sender@example.com", "hello "+msgID, dates[msgID]), nil
		},
	}

	r := newRetriever(gm, nil)

	resp, err := r.ListRecent(context.Background(), retrieve.GmailRequest{
		AccessToken: "tok",
		Keywords:    []string{"invoice", "deadline"},
	})
	require.NoError(t, err)

	assert.Equal(t, `"invoice" OR "deadline"`, gotQuery)
	assert.Equal(t, int64(10), gotMax)

	require.Len(t, resp.Mails, 2)
	// No classification in this mode, so ranking reduces to most
	// recent first.
	assert.Equal(t, "hello m-2", resp.Mails[0].Subject)
	assert.Equal(t, "hello m-1", resp.Mails[1].Subject)
	assert.Empty(t, resp.Mails[0].Priority)
	assert.Empty(t, resp.Mails[0].PriorityReason)
}

func TestListRecentAggregateFailure(t *testing.T) {
	gm := &gmailSrcMock{
		ListMessagesFunc: func(_ context.Context, _ string, _ int64) (*gmailv1.ListMessagesResponse, error) {
			return &gmailv1.ListMessagesResponse{
				Messages: []*gmailv1.Message{{Id: "m-1"}, {Id: "m-2"}},
			}, nil
		},
		GetMessageMetadataFunc: func(_ context.Context, msgID string) (*gmailv1.Message, error) {
			if msgID == "m-2" {
				return nil, fmt.Errorf("simulated error: %s", msgID)
			}
			return metadataMessage(msgID, "sender@example.com", "hello", "2024-01-02"), nil
		},
	}

	r := newRetriever(gm, nil)

	resp, err := r.ListRecent(context.Background(), retrieve.GmailRequest{AccessToken: "tok"})

	require.Error(t, err)
	assert.True(t, source.IsConnectionError(err), "per-message failure discards the whole retrieval")
	assert.Contains(t, err.Error(), "m-2")
	assert.Empty(t, resp.Mails, "no partial results")
}

func TestListAll(t *testing.T) {
	var gotMax int64

	gm := &gmailSrcMock{
		ListMessagesFunc: func(_ context.Context, _ string, maxResults int64) (*gmailv1.ListMessagesResponse, error) {
			gotMax = maxResults
			return &gmailv1.ListMessagesResponse{
				Messages: []*gmailv1.Message{{Id: "m-1"}, {Id: "m-2"}, {Id: "m-3"}},
			}, nil
		},
		GetMessageMetadataFunc: func(_ context.Context, msgID string) (*gmailv1.Message, error) {
			subjects := map[string]string{
				"m-1": "monthly newsletter",
				"m-2": "urgent: action required",
				"m-3": "meeting notes",
			}
			return metadataMessage(msgID, "sender@example.com", subjects[msgID], "Tue, 02 Jan 2024 10:00:00 +0000"), nil
		},
	}

	r := newRetriever(gm, nil)

	resp, err := r.ListAll(context.Background(), retrieve.GmailRequest{AccessToken: "tok"})
	require.NoError(t, err)

	assert.Equal(t, int64(50), gotMax)
	require.Len(t, resp.Mails, 3)

	// Classified from subject/sender, ranked high to low; the
	// projection still carries only from/subject/date.
	assert.Equal(t, "urgent: action required", resp.Mails[0].Subject)
	assert.Equal(t, "meeting notes", resp.Mails[1].Subject)
	assert.Equal(t, "monthly newsletter", resp.Mails[2].Subject)
	for _, m := range resp.Mails {
		assert.Empty(t, m.Priority)
		assert.Empty(t, m.PriorityReason)
	}
}

func TestListAllFilterAndDirection(t *testing.T) {
	gm := &gmailSrcMock{
		ListMessagesFunc: func(_ context.Context, _ string, _ int64) (*gmailv1.ListMessagesResponse, error) {
			return &gmailv1.ListMessagesResponse{
				Messages: []*gmailv1.Message{{Id: "m-1"}, {Id: "m-2"}, {Id: "m-3"}},
			}, nil
		},
		GetMessageMetadataFunc: func(_ context.Context, msgID string) (*gmailv1.Message, error) {
			subjects := map[string]string{
				"m-1": "urgent: action required",
				"m-2": "meeting notes",
				"m-3": "pending review",
			}
			dates := map[string]string{
				"m-1": "Tue, 02 Jan 2024 10:00:00 +0000",
				"m-2": "Wed, 03 Jan 2024 10:00:00 +0000",
				"m-3": "Thu, 04 Jan 2024 10:00:00 +0000",
			}
			return metadataMessage(msgID, "sender@example.com", subjects[msgID], dates[msgID]), nil
		},
	}

	r := newRetriever(gm, nil)

	resp, err := r.ListAll(context.Background(), retrieve.GmailRequest{
		AccessToken: "tok",
		Priority:    "medium",
	})
	require.NoError(t, err)

	// Both medium records survive the filter in ranked order: equal
	// tier, most recent first.
	require.Len(t, resp.Mails, 2)
	assert.Equal(t, "pending review", resp.Mails[0].Subject)
	assert.Equal(t, "meeting notes", resp.Mails[1].Subject)
}

func TestListAllSourceFailure(t *testing.T) {
	gm := &gmailSrcMock{
		ListMessagesFunc: func(_ context.Context, _ string, _ int64) (*gmailv1.ListMessagesResponse, error) {
			return nil, fmt.Errorf("401 invalid credentials")
		},
	}

	r := newRetriever(gm, nil)

	_, err := r.ListAll(context.Background(), retrieve.GmailRequest{AccessToken: "bad"})

	require.Error(t, err)
	assert.True(t, source.IsConnectionError(err))
}

func TestGetMail(t *testing.T) {
	gm := &gmailSrcMock{
		GetMessageFunc: func(_ context.Context, msgID string) (*gmailv1.Message, error) {
			msg := metadataMessage(msgID, "boss@example.com", "notes", "Tue, 02 Jan 2024 10:00:00 +0000")
			msg.Payload.MimeType = "multipart/alternative"
			msg.Payload.Parts = []*gmailv1.MessagePart{
				{
					MimeType: "text/plain",
					// "please respond now"
					Body: &gmailv1.MessagePartBody{Data: "cGxlYXNlIHJlc3BvbmQgbm93"},
				},
				{
					MimeType: "text/html",
					// "<p>please respond now</p>"
					Body: &gmailv1.MessagePartBody{Data: "PHA+cGxlYXNlIHJlc3BvbmQgbm93PC9wPg=="},
				},
			}
			return msg, nil
		},
	}

	r := newRetriever(gm, nil)

	detail, err := r.GetMail(context.Background(), retrieve.GmailDetailRequest{
		AccessToken: "tok",
		MessageID:   "m-9",
	})
	require.NoError(t, err)

	assert.Equal(t, "please respond now", detail.BodyText)
	assert.Equal(t, "<p>please respond now</p>", detail.BodyHTML)
	assert.Equal(t, "snippet m-9", detail.Snippet)

	// The body-based high keyword fires in this mode.
	assert.Equal(t, string(mail.PriorityHigh), detail.Priority)
	assert.Equal(t, classify.ReasonHighKeywords, detail.PriorityReason)
}

func TestGetMailValidation(t *testing.T) {
	r := newRetriever(&gmailSrcMock{}, nil)

	_, err := r.GetMail(context.Background(), retrieve.GmailDetailRequest{AccessToken: "tok"})
	require.Error(t, err)
	assert.True(t, source.IsValidationError(err))

	_, err = r.GetMail(context.Background(), retrieve.GmailDetailRequest{MessageID: "m-1"})
	require.Error(t, err)
	assert.True(t, source.IsValidationError(err))
}

func TestListMailboxUnconfigured(t *testing.T) {
	r := newRetriever(&gmailSrcMock{}, nil)

	_, err := r.ListMailbox(context.Background(), retrieve.MailboxRequest{})

	require.Error(t, err)
	assert.True(t, source.IsValidationError(err))
}

func TestListMailboxPlain(t *testing.T) {
	var gotLimit int
	var gotWithBody bool

	mailbox := &mailboxSrcMock{
		FetchMailboxFunc: func(_ context.Context, _ []string, limit int, withBody bool) ([]mail.Record, error) {
			gotLimit, gotWithBody = limit, withBody
			return []mail.Record{
				{From: "a@example.com", To: "me@example.com", Subject: "one", Date: "Tue, 02 Jan 2024 10:00:00 +0000"},
			}, nil
		},
	}

	r := newRetriever(&gmailSrcMock{}, mailbox)

	resp, err := r.ListMailbox(context.Background(), retrieve.MailboxRequest{})
	require.NoError(t, err)

	assert.Equal(t, 0, gotLimit, "plain listing is unbounded")
	assert.False(t, gotWithBody)

	require.Len(t, resp.Mails, 1)
	assert.Equal(t, "me@example.com", resp.Mails[0].To)
	assert.Empty(t, resp.Mails[0].Priority)
}

func TestListMailboxClassified(t *testing.T) {
	var gotLimit int
	var gotWithBody bool

	mailbox := &mailboxSrcMock{
		FetchMailboxFunc: func(_ context.Context, _ []string, limit int, withBody bool) ([]mail.Record, error) {
			gotLimit, gotWithBody = limit, withBody
			return []mail.Record{
				{From: "a@example.com", Subject: "newsletter time", Date: "Tue, 02 Jan 2024 10:00:00 +0000"},
				{From: "b@example.com", Subject: "hello", BodyText: "deadline is tomorrow", Date: "Wed, 03 Jan 2024 10:00:00 +0000"},
			}, nil
		},
	}

	r := newRetriever(&gmailSrcMock{}, mailbox)

	resp, err := r.ListMailbox(context.Background(), retrieve.MailboxRequest{
		SortDirection: "high-to-low",
	})
	require.NoError(t, err)

	assert.Equal(t, 50, gotLimit)
	assert.True(t, gotWithBody, "classified listing fetches bodies")

	require.Len(t, resp.Mails, 2)
	assert.Equal(t, "hello", resp.Mails[0].Subject)
	assert.Equal(t, string(mail.PriorityHigh), resp.Mails[0].Priority)
	assert.Equal(t, string(mail.PriorityLow), resp.Mails[1].Priority)
	assert.NotEmpty(t, resp.Mails[0].PriorityReason)
}

func TestListMailboxSourceFailure(t *testing.T) {
	mailbox := &mailboxSrcMock{
		FetchMailboxFunc: func(_ context.Context, _ []string, _ int, _ bool) ([]mail.Record, error) {
			return nil, fmt.Errorf("dial tcp: connection refused")
		},
	}

	r := newRetriever(&gmailSrcMock{}, mailbox)

	_, err := r.ListMailbox(context.Background(), retrieve.MailboxRequest{})

	require.Error(t, err)
	assert.True(t, source.IsConnectionError(err))
}
