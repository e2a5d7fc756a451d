package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"prioritymail/internal/retrieve"
	"prioritymail/internal/source"
)

type retriever interface {
	ListRecent(ctx context.Context, req retrieve.GmailRequest) (retrieve.ListResponse, error)
	ListAll(ctx context.Context, req retrieve.GmailRequest) (retrieve.ListResponse, error)
	GetMail(ctx context.Context, req retrieve.GmailDetailRequest) (retrieve.MailDetail, error)
	ListMailbox(ctx context.Context, req retrieve.MailboxRequest) (retrieve.ListResponse, error)
}

// MailHandler serves the mail retrieval endpoints.
type MailHandler struct {
	retriever retriever
}

// NewMailHandler creates the handler around the orchestrator.
func NewMailHandler(r retriever) *MailHandler {
	return &MailHandler{retriever: r}
}

// GmailListRequest is the JSON body of the Gmail listing endpoints.
type GmailListRequest struct {
	GoogleAccessToken string   `json:"googleAccessToken"`
	Keywords          []string `json:"keywords"`
	Priority          string   `json:"priority"`
	PrioritySort      string   `json:"prioritySort"`
}

// GmailDetailRequest is the JSON body of the single-message endpoint.
type GmailDetailRequest struct {
	GoogleAccessToken string `json:"googleAccessToken"`
	ID                string `json:"id"`
}

// ListMailbox returns the configured IMAP inbox. Adding a priority or
// sort query switches to the classified listing.
func (h *MailHandler) ListMailbox(c *fiber.Ctx) error {
	req := retrieve.MailboxRequest{
		Priority:      c.Query("priority"),
		SortDirection: c.Query("sort"),
	}
	if kw := c.Query("keywords"); kw != "" {
		for _, k := range strings.Split(kw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				req.Keywords = append(req.Keywords, k)
			}
		}
	}

	resp, err := h.retriever.ListMailbox(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "Failed to fetch mails")
	}

	return c.JSON(resp)
}

// ListRecent returns up to ten recent Gmail messages, unclassified.
func (h *MailHandler) ListRecent(c *fiber.Ctx) error {
	var body GmailListRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}

	resp, err := h.retriever.ListRecent(c.UserContext(), gmailRequest(body))
	if err != nil {
		return respondError(c, err, "Failed to fetch emails")
	}

	return c.JSON(resp)
}

// ListAll returns up to fifty Gmail messages, classified, ranked and
// filtered.
func (h *MailHandler) ListAll(c *fiber.Ctx) error {
	var body GmailListRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}

	resp, err := h.retriever.ListAll(c.UserContext(), gmailRequest(body))
	if err != nil {
		return respondError(c, err, "Failed to fetch all emails")
	}

	return c.JSON(resp)
}

// GetMail returns one Gmail message with extracted bodies and its
// classification.
func (h *MailHandler) GetMail(c *fiber.Ctx) error {
	var body GmailDetailRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}

	resp, err := h.retriever.GetMail(c.UserContext(), retrieve.GmailDetailRequest{
		AccessToken: body.GoogleAccessToken,
		MessageID:   body.ID,
	})
	if err != nil {
		return respondError(c, err, "Failed to fetch email")
	}

	return c.JSON(resp)
}

func gmailRequest(body GmailListRequest) retrieve.GmailRequest {
	return retrieve.GmailRequest{
		AccessToken:   body.GoogleAccessToken,
		Keywords:      body.Keywords,
		Priority:      body.Priority,
		SortDirection: body.PrioritySort,
	}
}

func respondError(c *fiber.Ctx, err error, message string) error {
	if source.IsValidationError(err) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   message,
		Details: err.Error(),
	})
}
