package retrieve_test

import (
	"context"

	gmailv1 "google.golang.org/api/gmail/v1"

	"prioritymail/internal/mail"
)

type gmailSrcMock struct {
	ListMessagesFunc       func(ctx context.Context, q string, maxResults int64) (*gmailv1.ListMessagesResponse, error)
	GetMessageMetadataFunc func(ctx context.Context, msgID string) (*gmailv1.Message, error)
	GetMessageFunc         func(ctx context.Context, msgID string) (*gmailv1.Message, error)
}

func (m *gmailSrcMock) ListMessages(ctx context.Context, q string, maxResults int64) (*gmailv1.ListMessagesResponse, error) {
	return m.ListMessagesFunc(ctx, q, maxResults)
}

func (m *gmailSrcMock) GetMessageMetadata(ctx context.Context, msgID string) (*gmailv1.Message, error) {
	return m.GetMessageMetadataFunc(ctx, msgID)
}

func (m *gmailSrcMock) GetMessage(ctx context.Context, msgID string) (*gmailv1.Message, error) {
	return m.GetMessageFunc(ctx, msgID)
}

type mailboxSrcMock struct {
	FetchMailboxFunc func(ctx context.Context, keywords []string, limit int, withBody bool) ([]mail.Record, error)
}

func (m *mailboxSrcMock) FetchMailbox(ctx context.Context, keywords []string, limit int, withBody bool) ([]mail.Record, error) {
	return m.FetchMailboxFunc(ctx, keywords, limit, withBody)
}

func metadataMessage(id, from, subject, date string) *gmailv1.Message {
	return &gmailv1.Message{
		Id:      id,
		Snippet: "snippet " + id,
		Payload: &gmailv1.MessagePart{
			Headers: []*gmailv1.MessagePartHeader{
				{Name: "From", Value: from},
				{Name: "Subject", Value: subject},
				{Name: "Date", Value: date},
			},
		},
	}
}
