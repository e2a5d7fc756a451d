// Package gmail adapts the Gmail API as a message source. A client is
// created per retrieval from the caller-supplied access token; nothing
// is cached across requests.
package gmail

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const gmailUserID = "me"

// NewClient creates a Gmail client authorized with the given OAuth2
// access token.
func NewClient(accessToken string) *Client {
	return &Client{accessToken: accessToken}
}

// Client wraps the Gmail API for a single caller credential.
type Client struct {
	accessToken string
}

// ListMessages returns up to maxResults message references matching
// the query. An empty query lists the most recent messages.
func (c *Client) ListMessages(ctx context.Context, q string, maxResults int64) (*gmailv1.ListMessagesResponse, error) {
	svc, err := c.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	call := svc.Users.Messages.List(gmailUserID).MaxResults(maxResults)
	if q != "" {
		call = call.Q(q)
	}

	result, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("messages.List failed: %w", err)
	}

	return result, nil
}

// GetMessageMetadata fetches the From, Subject and Date headers of a
// message without its body.
func (c *Client) GetMessageMetadata(ctx context.Context, msgID string) (*gmailv1.Message, error) {
	svc, err := c.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	msg, err := svc.Users.Messages.Get(gmailUserID, msgID).
		Format("metadata").
		MetadataHeaders("From", "Subject", "Date").
		Do()
	if err != nil {
		return nil, fmt.Errorf("messages.Get failed: %w", err)
	}

	return msg, nil
}

// GetMessage fetches a message with its full MIME part tree.
func (c *Client) GetMessage(ctx context.Context, msgID string) (*gmailv1.Message, error) {
	svc, err := c.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	msg, err := svc.Users.Messages.Get(gmailUserID, msgID).Do()
	if err != nil {
		return nil, fmt.Errorf("messages.Get failed: %w", err)
	}

	return msg, nil
}

func (c *Client) newSvc(ctx context.Context) (*gmailv1.Service, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.accessToken})

	svc, err := gmailv1.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}

	return svc, nil
}
