// Package tool exposes the mail retrieval pipeline as MCP tools.
package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"prioritymail/internal/retrieve"
)

type retriever interface {
	ListRecent(ctx context.Context, req retrieve.GmailRequest) (retrieve.ListResponse, error)
	ListAll(ctx context.Context, req retrieve.GmailRequest) (retrieve.ListResponse, error)
	GetMail(ctx context.Context, req retrieve.GmailDetailRequest) (retrieve.MailDetail, error)
}

// NewServer creates an MCP server with the mail retrieval tools.
func NewServer(r retriever) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "prioritymail", Version: "v1.0.0"}, nil)

	lm := NewListMail(r)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_recent_mail",
		Description: "List the ten most recent Gmail messages matching optional keywords",
	}, lm.ListRecent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_prioritized_mail",
		Description: "List up to fifty Gmail messages ranked by priority tier, optionally filtered",
	}, lm.ListPrioritized)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_mail",
		Description: "Get one Gmail message with extracted body content and its priority classification",
	}, lm.GetMail)

	return server
}
