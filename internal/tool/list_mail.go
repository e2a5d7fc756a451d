package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"prioritymail/internal/retrieve"
)

// ListMailRequest is the input of the listing tools.
type ListMailRequest struct {
	AccessToken string   `json:"access_token" jsonschema:"Gmail OAuth2 access token"`
	Keywords    []string `json:"keywords,omitempty" jsonschema:"keywords OR-combined into the Gmail search"`
	Priority    string   `json:"priority,omitempty" jsonschema:"tier filter: high, medium, low or all"`
	Sort        string   `json:"sort,omitempty" jsonschema:"tier ordering: high-to-low or low-to-high"`
}

// GetMailRequest is the input of the single-message tool.
type GetMailRequest struct {
	AccessToken string `json:"access_token" jsonschema:"Gmail OAuth2 access token"`
	MessageID   string `json:"message_id" jsonschema:"Gmail message ID"`
}

// NewListMail creates the mail tools around the orchestrator.
func NewListMail(r retriever) *ListMail {
	return &ListMail{retriever: r}
}

// ListMail serves the mail retrieval tools.
type ListMail struct {
	retriever retriever
}

// ListRecent returns the bounded unclassified listing.
func (t *ListMail) ListRecent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListMailRequest,
) (*mcp.CallToolResult, retrieve.ListResponse, error) {
	resp, err := t.retriever.ListRecent(ctx, gmailRequest(input))
	if err != nil {
		return nil, retrieve.ListResponse{}, fmt.Errorf("retriever.ListRecent failed: %w", err)
	}

	return nil, resp, nil
}

// ListPrioritized returns the classified, ranked and filtered listing.
func (t *ListMail) ListPrioritized(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListMailRequest,
) (*mcp.CallToolResult, retrieve.ListResponse, error) {
	resp, err := t.retriever.ListAll(ctx, gmailRequest(input))
	if err != nil {
		return nil, retrieve.ListResponse{}, fmt.Errorf("retriever.ListAll failed: %w", err)
	}

	return nil, resp, nil
}

// GetMail returns a single message with extracted bodies.
func (t *ListMail) GetMail(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetMailRequest,
) (*mcp.CallToolResult, retrieve.MailDetail, error) {
	resp, err := t.retriever.GetMail(ctx, retrieve.GmailDetailRequest{
		AccessToken: input.AccessToken,
		MessageID:   input.MessageID,
	})
	if err != nil {
		return nil, retrieve.MailDetail{}, fmt.Errorf("retriever.GetMail failed: %w", err)
	}

	return nil, resp, nil
}

func gmailRequest(input ListMailRequest) retrieve.GmailRequest {
	return retrieve.GmailRequest{
		AccessToken:   input.AccessToken,
		Keywords:      input.Keywords,
		Priority:      input.Priority,
		SortDirection: input.Sort,
	}
}
